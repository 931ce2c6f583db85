package runtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/pkg/metrics"
	"github.com/architeacher/markets/services/svc-markets/internal/config"
	"github.com/architeacher/markets/services/svc-markets/internal/infrastructure"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
	"github.com/architeacher/markets/services/svc-markets/internal/usecases"
	"github.com/throttled/throttled/v2"
	"go.mongodb.org/mongo-driver/mongo"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	infrastructureDep struct {
		httpServer     *http.Server
		mongoClient    *mongo.Client
		cacheClient    *infrastructure.CacheClient
		logger         logger.Logger
		metricsClient  metrics.Client
		tracerProvider otelTrace.TracerProvider
	}

	repositories struct {
		secretsRepo    ports.SecretsRepository
		marketStore    ports.MarketStore
		marketsCache   ports.MarketsCache
		rateLimitStore throttled.GCRAStoreCtx
	}

	dependencies struct {
		config *config.ServiceConfig

		infra infrastructureDep

		repos repositories

		marketsService ports.MarketsService

		app *usecases.Application

		cleanupFuncs map[string]func(ctx context.Context) error
	}

	DependencyOption func(*dependencies) error
)

func initializeDependencies(ctx context.Context, opts ...DependencyOption) (*dependencies, error) {
	return applyOptions(append(defaultOptions(ctx), opts...)...)
}

func applyOptions(opts ...DependencyOption) (*dependencies, error) {
	deps := &dependencies{
		cleanupFuncs: make(map[string]func(ctx context.Context) error),
	}

	for _, opt := range opts {
		if err := opt(deps); err != nil {
			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}

func (d *dependencies) getDBHealthChecker() ports.DatabaseHealthChecker {
	return d.repos.marketStore
}
