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
	SearchMarketsQuery struct {
		Criteria model.SearchCriteria
		Page     model.PageRequest
	}

	SearchMarketsQueryHandler = decorator.QueryHandler[SearchMarketsQuery, *model.Page[*model.Market]]

	searchMarketsQueryHandler struct {
		marketsService ports.MarketsService
	}
)

func NewSearchMarketsQueryHandler(
	svc ports.MarketsService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) SearchMarketsQueryHandler {
	return decorator.ApplyQueryDecorators[SearchMarketsQuery, *model.Page[*model.Market]](
		searchMarketsQueryHandler{marketsService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h searchMarketsQueryHandler) Execute(ctx context.Context, query SearchMarketsQuery) (*model.Page[*model.Market], error) {
	return h.marketsService.SearchMarkets(ctx, query.Criteria, query.Page)
}
