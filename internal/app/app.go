package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/ecommerce-query/internal/config"
	"github.com/utafrali/ecommerce-query/internal/engine"
	esengine "github.com/utafrali/ecommerce-query/internal/engine/elasticsearch"
	"github.com/utafrali/ecommerce-query/internal/engine/memory"
	handler "github.com/utafrali/ecommerce-query/internal/handler/http"
	"github.com/utafrali/ecommerce-query/internal/service"
	"github.com/utafrali/ecommerce-query/pkg/health"
	"github.com/utafrali/ecommerce-query/pkg/middleware"
	"github.com/utafrali/ecommerce-query/pkg/tracing"
)

const serviceName = "ecommerce-query"

// Version is stamped at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

// App wires together all dependencies and runs the ecommerce query service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	shutdownTracer tracing.ShutdownFunc
	// closers run after the tracer is flushed, in order.
	closers []io.Closer
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:        cfg.OTelEnabled,
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTelEndpoint,
		SampleRate:     cfg.OTelSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		shutdownTracer: shutdownTracer,
	}

	healthHandler := health.NewHandler(health.DefaultTimeout)

	eng, err := a.newEngine(ctx, healthHandler)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, err
	}

	// Build the service layer.
	ecommerceService := service.NewECommerceService(eng, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(ecommerceService, healthHandler, handler.RouterConfig{
		CORS:              corsCfg,
		CacheMaxAge:       cfg.CacheMaxAgeSeconds,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Above the 30s request timeout so the timeout envelope reaches the client.
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// newEngine builds the configured backend, registers its readiness check and
// wraps it with engine metrics.
func (a *App) newEngine(ctx context.Context, hh *health.Handler) (engine.QueryEngine, error) {
	switch a.cfg.SearchEngine {
	case config.EngineMemory:
		memEng, err := memory.New(a.logger)
		if err != nil {
			return nil, fmt.Errorf("init memory engine: %w", err)
		}
		a.closers = append(a.closers, memEng)

		if a.cfg.MemorySeedFile != "" {
			if err := memEng.LoadFile(ctx, a.cfg.MemorySeedFile); err != nil {
				_ = memEng.Close()
				return nil, fmt.Errorf("seed memory engine: %w", err)
			}
		}
		hh.Register("memory", memEng.Ping)
		a.logger.Info("in-memory query engine initialized",
			slog.String("seed_file", a.cfg.MemorySeedFile),
			slog.Int("records", memEng.Count()),
		)
		return engine.Instrument(config.EngineMemory, memEng), nil

	default:
		esCfg := esengine.Config{
			Addresses: a.cfg.ElasticsearchURLs,
			Username:  a.cfg.ElasticsearchUsername,
			Password:  a.cfg.ElasticsearchPassword,
			Index:     a.cfg.ElasticsearchIndex,
			Tracing:   a.cfg.OTelEnabled,
		}
		if a.cfg.CBEnabled {
			cb := a.cfg.CircuitBreaker()
			esCfg.CircuitBreaker = &cb
		}

		esEng, err := esengine.New(esCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		hh.Register("elasticsearch", esEng.Ping)
		a.logger.Info("elasticsearch query engine initialized",
			slog.Any("urls", a.cfg.ElasticsearchURLs),
			slog.String("index", esEng.Index()),
			slog.Bool("circuit_breaker", a.cfg.CBEnabled),
		)
		return engine.Instrument(config.EngineElasticsearch, esEng), nil
	}
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown drains HTTP, then flushes the tracer, then closes the engine.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Error("engine close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
