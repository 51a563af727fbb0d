package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	"assettrack/internal/asset/handler"
	assetService "assettrack/internal/asset/service"
	assetStore "assettrack/internal/asset/store"
	"assettrack/internal/audit"
	"assettrack/internal/audit/publisher"
	authHandler "assettrack/internal/auth/handler"
	authModel "assettrack/internal/auth/models"
	authService "assettrack/internal/auth/service"
	sessionStore "assettrack/internal/auth/store/session"
	userStore "assettrack/internal/auth/store/user"
	issuanceHandler "assettrack/internal/issuance/handler"
	issuanceService "assettrack/internal/issuance/service"
	issuanceStore "assettrack/internal/issuance/store"
	"assettrack/internal/lifecycle"
	"assettrack/internal/platform/config"
	"assettrack/internal/platform/httpserver"
	"assettrack/internal/platform/logger"
	"assettrack/internal/platform/metrics"
	platformRedis "assettrack/internal/platform/redis"
	"assettrack/internal/stats"
	httptransport "assettrack/internal/transport/http"
)

// assetRegistry is the full method set shared by the memory and Postgres
// asset stores; services consume narrower slices of it.
type assetRegistry interface {
	assetService.AssetStore
	lifecycle.Registry
}

// issuanceLedger is the full method set shared by the memory and Postgres
// issuance stores.
type issuanceLedger interface {
	lifecycle.Ledger
	issuanceService.LedgerReader
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(logger.LevelFromString(cfg.LogLevel))
	m := metrics.New()

	checks := map[string]httptransport.HealthChecker{}

	var (
		assets    assetRegistry
		issuances issuanceLedger
		db        *sql.DB
	)
	if cfg.PostgresURL != "" {
		var err error
		db, err = openPostgres(cfg.PostgresURL)
		if err != nil {
			log.Error("postgres setup failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		assets = assetStore.NewPostgres(db)
		issuances = issuanceStore.NewPostgres(db)
		checks["postgres"] = dbChecker{db}
		log.Info("using postgres stores")
	} else {
		assets = assetStore.NewInMemory()
		issuances = issuanceStore.NewInMemory()
		log.Info("using in-memory stores")
	}

	var sessions authService.SessionStore = sessionStore.NewInMemory()
	redisClient, err := platformRedis.New(cfg.Redis)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = sessionStore.NewRedis(redisClient.Client)
		checks["redis"] = redisClient
		log.Info("using redis session store")
	}

	auditOpts := []publisher.Option{publisher.WithLogger(log)}
	kafkaSink, err := publisher.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		log.Error("kafka audit sink setup failed", "error", err)
		os.Exit(1)
	}
	if kafkaSink != nil {
		auditOpts = append(auditOpts, publisher.WithSink(kafkaSink))
		log.Info("audit events streaming to kafka", "topic", cfg.Kafka.Topic)
	}
	auditor := publisher.New(audit.NewInMemoryStore(), auditOpts...)
	defer auditor.Close()

	assetSvc := assetService.New(assets,
		assetService.WithLogger(log),
		assetService.WithAuditPublisher(auditor),
		assetService.WithMetrics(m),
	)
	coordinator := lifecycle.New(assets, issuances,
		lifecycle.WithLogger(log),
		lifecycle.WithAuditPublisher(auditor),
		lifecycle.WithMetrics(m),
	)
	issuanceSvc := issuanceService.New(issuances, issuanceService.WithLogger(log))
	statsSvc := stats.NewService(assets, issuances, stats.WithLogger(log))

	authSvc := authService.New(userStore.New(), sessions, cfg.JWTSigningKey, cfg.SessionTTL,
		authService.WithLogger(log),
		authService.WithAuditPublisher(auditor),
		authService.WithMetrics(m),
	)
	seedUsers(log, authSvc)
	validator := authService.NewValidatorAdapter(authSvc)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Metrics:   m,
		Validator: validator,
		Public: []httptransport.Registrar{
			authHandler.New(authSvc, validator, log),
		},
		Protected: []httptransport.Registrar{
			handler.New(assetSvc, coordinator, log),
			issuanceHandler.New(issuanceSvc, coordinator, log),
			stats.NewHandler(statsSvc, log),
		},
		Checks: checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting assettrack", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// openPostgres connects and applies the table schemas.
func openPostgres(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	for _, schema := range []string{assetStore.Schema, issuanceStore.Schema} {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

type dbChecker struct {
	db *sql.DB
}

func (c dbChecker) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// seedUsers provisions the initial accounts. Duplicate seeding (e.g. after a
// restart against a shared store) is not an error.
func seedUsers(log *slog.Logger, svc *authService.Service) {
	ctx := context.Background()
	defaults := []struct {
		email      string
		name       string
		role       authModel.Role
		department string
		passEnv    string
		fallback   string
	}{
		{"admin@assettrack.local", "System Administrator", authModel.RoleAdmin, "IT", "SEED_ADMIN_PASSWORD", "admin123!"},
		{"manager@assettrack.local", "Asset Manager", authModel.RoleManager, "Operations", "SEED_MANAGER_PASSWORD", "manager123!"},
		{"employee@assettrack.local", "Staff Member", authModel.RoleEmployee, "General", "SEED_EMPLOYEE_PASSWORD", "employee123!"},
	}
	for _, d := range defaults {
		password := os.Getenv(d.passEnv)
		if password == "" {
			password = d.fallback
		}
		if _, err := svc.SeedUser(ctx, d.email, d.name, d.role, d.department, password); err != nil {
			log.Warn("seed user skipped", "email", d.email, "error", err)
		}
	}
}
