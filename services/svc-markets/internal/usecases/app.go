package usecases

import (
	"github.com/architeacher/markets/pkg/decorator"
	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/pkg/metrics"
	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
	"github.com/architeacher/markets/services/svc-markets/internal/usecases/commands"
	"github.com/architeacher/markets/services/svc-markets/internal/usecases/queries"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Commands struct {
		CreateMarket commands.CreateMarketCommandHandler
		UpdateMarket commands.UpdateMarketCommandHandler
		DeleteMarket commands.DeleteMarketCommandHandler
	}

	Queries struct {
		GetMarket         queries.GetMarketQueryHandler
		SearchMarkets     queries.SearchMarketsQueryHandler
		FetchLiveness     queries.FetchLivenessQueryHandler
		FetchReadiness    queries.FetchReadinessQueryHandler
		FetchHealthReport queries.FetchHealthReportQueryHandler
	}

	Application struct {
		Commands Commands
		Queries  Queries
	}

	// Caching configures GetMarket lookups. A nil Cache disables caching.
	Caching struct {
		Cache   decorator.Cache[queries.GetMarketQuery, *model.Market]
		Config  decorator.CacheConfig
		Checker ports.CacheHealthChecker
	}
)

func NewApplication(
	marketsSvc ports.MarketsService,
	dbHealthChecker ports.DatabaseHealthChecker,
	caching Caching,
	version string,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) *Application {
	return &Application{
		Commands: Commands{
			CreateMarket: commands.NewCreateMarketCommandHandler(marketsSvc, log, metricsClient, tracerProvider),
			UpdateMarket: commands.NewUpdateMarketCommandHandler(marketsSvc, log, metricsClient, tracerProvider),
			DeleteMarket: commands.NewDeleteMarketCommandHandler(marketsSvc, log, metricsClient, tracerProvider),
		},
		Queries: Queries{
			GetMarket: queries.NewGetMarketQueryHandler(
				marketsSvc, caching.Cache, caching.Config, log, metricsClient, tracerProvider,
			),
			SearchMarkets:  queries.NewSearchMarketsQueryHandler(marketsSvc, log, metricsClient, tracerProvider),
			FetchLiveness:  queries.NewFetchLivenessQueryHandler(log, metricsClient, tracerProvider),
			FetchReadiness: queries.NewFetchReadinessQueryHandler(dbHealthChecker, log, metricsClient, tracerProvider),
			FetchHealthReport: queries.NewFetchHealthReportQueryHandler(
				dbHealthChecker, caching.Checker, version, log, metricsClient, tracerProvider,
			),
		},
	}
}
