package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/isobridge/internal/adapter/http/handler"
	"github.com/iho/isobridge/internal/adapter/http/middleware"
	"github.com/iho/isobridge/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BridgeHandler    *handler.BridgeHandler
	StatementHandler *handler.StatementHandler
	ExportHandler    *handler.ExportHandler
	AuditHandler     *handler.AuditHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Settlements
		r.Route("/settlements", func(r chi.Router) {
			r.Post("/", cfg.BridgeHandler.Submit)
			r.Get("/{uetr}", cfg.BridgeHandler.Get)
			r.Get("/{uetr}/messages", cfg.ExportHandler.Messages)
		})

		// Parties
		r.Route("/parties", func(r chi.Router) {
			r.Get("/{id}/settlements", cfg.BridgeHandler.ListByParty)
		})

		// Messages
		r.Route("/messages", func(r chi.Router) {
			r.Get("/", cfg.ExportHandler.MessagesByRange)
			r.Get("/{id}", cfg.ExportHandler.Message)
		})

		// Statements
		r.Post("/statements", cfg.StatementHandler.Generate)

		// Audit trail
		r.Get("/audit/{subjectID}", cfg.AuditHandler.GetTrail)
	})

	return r
}
