package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ASP-NET-2/ReviewProvider/internal/service"
	"github.com/ASP-NET-2/ReviewProvider/pkg/health"
	"github.com/ASP-NET-2/ReviewProvider/pkg/middleware"
)

// RouterConfig holds the dependencies and settings for building the router.
type RouterConfig struct {
	FeedbackService *service.FeedbackService
	HealthHandler   *health.Handler
	Logger          *slog.Logger
	Environment     string
	PprofCIDRs      []string
}

// NewRouter creates a chi router with all feedback service routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.CORSConfig{Environment: cfg.Environment}))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("feedback"))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints, gated by IP allowlist
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	feedbackHandler := NewFeedbackHandler(cfg.FeedbackService, cfg.Logger)

	// Per-product feedback endpoints
	r.Route("/api/v1/products/{productId}/feedback", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Put("/rating", feedbackHandler.PutRating)
		r.Delete("/rating", feedbackHandler.DeleteRating)
		r.Put("/review", feedbackHandler.PutReview)
		r.Delete("/review", feedbackHandler.DeleteReview)
		r.Get("/me", feedbackHandler.GetMyFeedback)
		r.Get("/summary", feedbackHandler.GetSummary)
	})

	// Cross-product feedback listing
	r.Route("/api/v1/feedback", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", feedbackHandler.ListFeedback)
	})

	return r
}
