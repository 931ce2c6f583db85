package commands

import (
	"context"

	"github.com/architeacher/markets/pkg/decorator"
	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/pkg/metrics"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	DeleteMarketCommand struct {
		RegistryCode string
	}

	DeleteMarketCommandHandler = decorator.CommandHandler[DeleteMarketCommand, struct{}]

	deleteMarketCommandHandler struct {
		marketsService ports.MarketsService
	}
)

func NewDeleteMarketCommandHandler(
	svc ports.MarketsService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) DeleteMarketCommandHandler {
	return decorator.ApplyCommandDecorators[DeleteMarketCommand, struct{}](
		deleteMarketCommandHandler{marketsService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h deleteMarketCommandHandler) Handle(ctx context.Context, cmd DeleteMarketCommand) (struct{}, error) {
	if err := h.marketsService.DeleteMarket(ctx, cmd.RegistryCode); err != nil {
		return struct{}{}, err
	}

	return struct{}{}, nil
}
