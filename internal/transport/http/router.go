package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assettrack/internal/platform/metrics"
	"assettrack/internal/platform/middleware"
	"assettrack/internal/transport/http/shared"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports backend liveness for the health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router needs. Public registrars run without
// authentication; Protected ones sit behind the token check.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.TokenValidator
	Public    []Registrar
	Protected []Registrar
	Checks    map[string]HealthChecker
}

// NewRouter wires the middleware chain and mounts every handler.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.LatencyMiddleware(deps.Metrics))

	r.Get("/healthz", handleHealth(deps.Checks))
	r.Handle("/metrics", promhttp.Handler())

	for _, reg := range deps.Public {
		reg.Register(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		for _, reg := range deps.Protected {
			reg.Register(r)
		}
	})

	return r
}

// handleHealth pings each registered backend and reports per-check state.
// The endpoint returns 503 if any backend is down.
func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check.Health(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result[name] = "down"
				result["status"] = "degraded"
				continue
			}
			result[name] = "up"
		}
		shared.WriteJSON(w, status, result)
	}
}
