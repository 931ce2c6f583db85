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
	CreateMarketCommand struct {
		Market *model.Market
	}

	CreateMarketResult struct {
		Market *model.Market
		// Created is false when a market with the same registry code already existed.
		Created bool
	}

	CreateMarketCommandHandler = decorator.CommandHandler[CreateMarketCommand, *CreateMarketResult]

	createMarketCommandHandler struct {
		marketsService ports.MarketsService
	}
)

func NewCreateMarketCommandHandler(
	svc ports.MarketsService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CreateMarketCommandHandler {
	return decorator.ApplyCommandDecorators[CreateMarketCommand, *CreateMarketResult](
		createMarketCommandHandler{marketsService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h createMarketCommandHandler) Handle(ctx context.Context, cmd CreateMarketCommand) (*CreateMarketResult, error) {
	market, created, err := h.marketsService.RegisterMarket(ctx, cmd.Market)
	if err != nil {
		return nil, err
	}

	return &CreateMarketResult{Market: market, Created: created}, nil
}
