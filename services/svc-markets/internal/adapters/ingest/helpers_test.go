package ingest_test

import (
	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/pkg/metrics"
	"github.com/architeacher/markets/pkg/metrics/noop"
	"github.com/architeacher/markets/services/svc-markets/internal/infrastructure"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
	"github.com/architeacher/markets/services/svc-markets/internal/services"
	otelTrace "go.opentelemetry.io/otel/trace"
)

func newMarketsService(store ports.MarketStore, log logger.Logger) *services.MarketsService {
	return services.NewMarketsService(store, log)
}

func noopMetrics() metrics.Client {
	return noop.NewMetricsClient()
}

func noopTracer() otelTrace.TracerProvider {
	return infrastructure.NewNoopTracerProvider()
}
