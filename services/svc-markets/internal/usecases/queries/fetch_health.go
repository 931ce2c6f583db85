package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/architeacher/markets/pkg/decorator"
	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/pkg/metrics"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	FetchHealthReportQuery struct{}

	HealthResult struct {
		Status       string                            `json:"status"`
		Version      string                            `json:"version"`
		Uptime       string                            `json:"uptime"`
		Dependencies map[string]ports.DependencyStatus `json:"dependencies"`
	}

	FetchHealthReportQueryHandler = decorator.QueryHandler[FetchHealthReportQuery, *HealthResult]

	fetchHealthReportQueryHandler struct {
		dbHealthChecker    ports.DatabaseHealthChecker
		cacheHealthChecker ports.CacheHealthChecker
		version            string
		startTime          time.Time
	}
)

// NewFetchHealthReportQueryHandler reports the cache only when cacheHealthChecker is not nil.
// The cache never makes the service unhealthy: lookups fall back to the store.
func NewFetchHealthReportQueryHandler(
	dbHealthChecker ports.DatabaseHealthChecker,
	cacheHealthChecker ports.CacheHealthChecker,
	version string,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchHealthReportQueryHandler {
	return decorator.ApplyQueryDecorators[FetchHealthReportQuery, *HealthResult](
		fetchHealthReportQueryHandler{
			dbHealthChecker:    dbHealthChecker,
			cacheHealthChecker: cacheHealthChecker,
			version:            version,
			startTime:          time.Now(),
		},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchHealthReportQueryHandler) Execute(ctx context.Context, _ FetchHealthReportQuery) (*HealthResult, error) {
	dependencies := make(map[string]ports.DependencyStatus)

	dbStatus := probe(ctx, h.dbHealthChecker.Ping)
	dependencies["mongodb"] = dbStatus

	if h.cacheHealthChecker != nil {
		dependencies["cache"] = probe(ctx, h.cacheHealthChecker.Ping)
	}

	overallStatus := "healthy"
	if !dbStatus.Healthy {
		overallStatus = "unhealthy"
	}

	return &HealthResult{
		Status:       overallStatus,
		Version:      h.version,
		Uptime:       time.Since(h.startTime).String(),
		Dependencies: dependencies,
	}, nil
}

func probe(ctx context.Context, ping func(context.Context) error) ports.DependencyStatus {
	start := time.Now()
	err := ping(ctx)
	latency := time.Since(start)

	status := ports.DependencyStatus{
		Healthy: err == nil,
		Latency: fmt.Sprintf("%dms", latency.Milliseconds()),
	}

	if err != nil {
		status.Message = err.Error()
	}

	return status
}
