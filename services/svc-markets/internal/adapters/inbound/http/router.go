package http

import (
	"fmt"
	"net/http"

	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/pkg/metrics"
	"github.com/architeacher/markets/services/svc-markets/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/markets/services/svc-markets/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/markets/services/svc-markets/internal/config"
	"github.com/architeacher/markets/services/svc-markets/internal/usecases"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/throttled/throttled/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const baseURL = "/v1"

type RouterConfig struct {
	App            *usecases.Application
	Logger         logger.Logger
	MetricsClient  metrics.Client
	TracerProvider otelTrace.TracerProvider
	// RateLimitStore is required when rate limiting is enabled.
	RateLimitStore throttled.GCRAStoreCtx
	Config         *config.ServiceConfig
}

func NewRouter(cfg RouterConfig) (http.Handler, error) {
	router := chi.NewRouter()

	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestTracking())
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(chimiddleware.Timeout(cfg.Config.HTTPServer.RequestTimeout))
	router.Use(middleware.SecurityHeaders(cfg.Config.App.APIVersion))

	if cfg.Config.Telemetry.Metrics.Enabled {
		router.Use(middleware.Metrics(cfg.MetricsClient))
		cfg.Logger.Info().Msg("HTTP metrics collection enabled")
	}

	if cfg.Config.Logging.AccessLog.Enabled {
		router.Use(middleware.NewHealthCheckFilter(cfg.Config.Logging.AccessLog.LogHealthChecks).Middleware)
		router.Use(middleware.AccessLogger(cfg.Logger, cfg.Config.Logging.AccessLog.IncludeQueryParams))
	}

	if cfg.Config.RateLimiting.Enabled {
		rateLimiting, err := middleware.RateLimiting(cfg.Config.RateLimiting, cfg.RateLimitStore, cfg.Logger)
		if err != nil {
			return nil, fmt.Errorf("configuring rate limiting: %w", err)
		}

		router.Use(rateLimiting)
	}

	if cfg.Config.Compression.Enabled {
		router.Use(middleware.Compression(cfg.Config.Compression.Level))
	}

	if cfg.Config.Telemetry.Metrics.Enabled {
		router.Method(http.MethodGet, "/metrics", cfg.MetricsClient.Handler())
	}

	markets := handlers.NewMarketsHandler(cfg.App, baseURL, cfg.Logger)
	health := handlers.NewHealthHandler(cfg.App)

	router.Route(baseURL, func(r chi.Router) {
		r.Get("/liveness", health.Liveness)
		r.Get("/readiness", health.Readiness)
		r.Get("/health", health.Health)

		r.Route("/markets", func(r chi.Router) {
			r.Post("/", markets.CreateMarket)
			r.Get("/", markets.SearchMarkets)
			r.With(middleware.ConditionalGET).Get("/{"+handlers.PathParamID+"}", markets.GetMarket)
			r.Patch("/{"+handlers.PathParamRegistryCode+"}", markets.UpdateMarket)
			r.Delete("/{"+handlers.PathParamRegistryCode+"}", markets.DeleteMarket)
		})
	})

	if !cfg.Config.Telemetry.Traces.Enabled {
		return router, nil
	}

	cfg.Logger.Info().Msg("distributed tracing enabled")

	return otelhttp.NewHandler(
		router,
		cfg.Config.Telemetry.ServiceName,
		otelhttp.WithTracerProvider(cfg.TracerProvider),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	), nil
}
