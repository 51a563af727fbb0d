package stats

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authModel "assettrack/internal/auth/models"
	"assettrack/internal/platform/middleware"
	"assettrack/internal/transport/http/shared"
	"assettrack/pkg/requestcontext"
)

// Handler serves the dashboard summary endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates a stats Handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the dashboard route behind the authenticated chain.
func (h *Handler) Register(r chi.Router) {
	r.With(middleware.RequireCapability(authModel.CapRead, h.logger)).
		Get("/dashboard/stats", h.handleStats)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.Summarize(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to summarize dashboard",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, summary)
}
