package commands

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
	UpdateMarketCommand struct {
		RegistryCode string
		Payload      *model.Market
	}

	UpdateMarketCommandHandler = decorator.CommandHandler[UpdateMarketCommand, *model.Market]

	updateMarketCommandHandler struct {
		marketsService ports.MarketsService
	}
)

func NewUpdateMarketCommandHandler(
	svc ports.MarketsService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) UpdateMarketCommandHandler {
	return decorator.ApplyCommandDecorators[UpdateMarketCommand, *model.Market](
		updateMarketCommandHandler{marketsService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h updateMarketCommandHandler) Handle(ctx context.Context, cmd UpdateMarketCommand) (*model.Market, error) {
	return h.marketsService.UpdateMarket(ctx, cmd.RegistryCode, cmd.Payload)
}
