package queries

import (
	"context"

	"github.com/architeacher/markets/pkg/decorator"
	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/pkg/metrics"
	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	GetMarketQuery struct {
		ID model.MarketID
	}

	GetMarketQueryHandler = decorator.QueryHandler[GetMarketQuery, *model.Market]

	getMarketQueryHandler struct {
		marketsService ports.MarketsService
	}
)

// NewGetMarketQueryHandler serves lookups through cache when cacheCfg is enabled.
// A nil cache disables caching.
func NewGetMarketQueryHandler(
	svc ports.MarketsService,
	cache decorator.Cache[GetMarketQuery, *model.Market],
	cacheCfg decorator.CacheConfig,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) GetMarketQueryHandler {
	var handler GetMarketQueryHandler = getMarketQueryHandler{marketsService: svc}

	if cache != nil {
		handler = decorator.NewQueryCachingDecorator(handler, cache, cacheCfg, metricsClient)
	}

	return decorator.ApplyQueryDecorators[GetMarketQuery, *model.Market](
		handler,
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h getMarketQueryHandler) Execute(ctx context.Context, query GetMarketQuery) (*model.Market, error) {
	return h.marketsService.GetMarket(ctx, query.ID)
}
