package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/ecommerce-query/internal/service"
	"github.com/utafrali/ecommerce-query/pkg/health"
	"github.com/utafrali/ecommerce-query/pkg/middleware"
)

const serviceName = "ecommerce-query"

// RouterConfig carries the cross-cutting HTTP settings.
type RouterConfig struct {
	CORS              middleware.CORSConfig
	CacheMaxAge       int
	PprofAllowedCIDRs []string
	RequestTimeout    time.Duration
}

// NewRouter creates a chi router with all e-commerce query routes registered.
func NewRouter(
	ecommerceService *service.ECommerceService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	h := NewECommerceHandler(ecommerceService, logger)

	r.Route("/api/v1/ecommerce", func(r chi.Router) {
		r.Use(middleware.CacheControl(cfg.CacheMaxAge))

		r.Get("/term", h.Term)
		r.Get("/prefix", h.Prefix)
		r.Get("/range", h.Range)
		r.Get("/match-all", h.MatchAll)
		r.Get("/pagination", h.Pagination)
		r.Get("/wildcard", h.Wildcard)
		r.Get("/fuzzy", h.Fuzzy)
		r.Get("/match", h.Match)
		r.Get("/match-bool-prefix", h.MatchBoolPrefix)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/terms", h.Terms)
		})
	})

	return r
}
