package runtime

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"

	"github.com/architeacher/markets/pkg/circuitbreaker"
	"github.com/architeacher/markets/pkg/decorator"
	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/pkg/metrics/noop"
	"github.com/architeacher/markets/pkg/metrics/prometheus"
	inboundhttp "github.com/architeacher/markets/services/svc-markets/internal/adapters/inbound/http"
	"github.com/architeacher/markets/services/svc-markets/internal/adapters/repos"
	"github.com/architeacher/markets/services/svc-markets/internal/config"
	"github.com/architeacher/markets/services/svc-markets/internal/infrastructure"
	"github.com/architeacher/markets/services/svc-markets/internal/infrastructure/mongodb"
	"github.com/architeacher/markets/services/svc-markets/internal/services"
	"github.com/architeacher/markets/services/svc-markets/internal/usecases"
	"github.com/hashicorp/vault/api"
	"github.com/throttled/throttled/v2/store/memstore"
)

const metricsNamespace = "markets"

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithSecretsRepository(),
		WithSecrets(ctx),
		WithLogger(),
		WithTracing(ctx),
		WithMetrics(),
		WithMarketStore(ctx),
		WithCache(),
		WithRateLimitStore(),
		WithMarketsService(),
		WithApplication(),
		WithHTTPServer(),
	}
}

// storeOptions wires everything a one-off job needs to write markets,
// without the HTTP surface.
func storeOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithSecretsRepository(),
		WithSecrets(ctx),
		WithLogger(),
		WithTracing(ctx),
		WithMetrics(),
		WithMarketStore(ctx),
		WithCache(),
		WithMarketsService(),
		WithApplication(),
	}
}

func WithConfig() DependencyOption {
	return func(d *dependencies) error {
		cfg, err := config.Init()
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		d.config = cfg

		return nil
	}
}

func WithSecretsRepository() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.SecretsStorage.Enabled {
			return nil
		}

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = d.config.SecretsStorage.Address
		vaultConfig.Timeout = d.config.SecretsStorage.Timeout
		vaultConfig.MaxRetries = int(d.config.SecretsStorage.MaxRetries)

		if d.config.SecretsStorage.TLSSkipVerify {
			vaultConfig.HttpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("creating Vault client: %w", err)
		}

		if d.config.SecretsStorage.Namespace != "" {
			client.SetNamespace(d.config.SecretsStorage.Namespace)
		}

		d.repos.secretsRepo = repos.NewVaultRepository(client)

		return nil
	}
}

// WithSecrets overlays Vault secrets onto the configuration before any
// connection is opened.
func WithSecrets(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if d.repos.secretsRepo == nil {
			return nil
		}

		if _, err := config.NewSecretsLoader(d.config, d.repos.secretsRepo).Load(ctx); err != nil {
			return fmt.Errorf("loading secrets from Vault: %w", err)
		}

		return nil
	}
}

func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		d.infra.logger = logger.New(d.config.Logging.Level, d.config.Logging.Format)

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Enabled || !d.config.Telemetry.Traces.Enabled {
			d.infra.tracerProvider = infrastructure.NewNoopTracerProvider()

			return nil
		}

		tp, shutdown, err := infrastructure.NewTracerProvider(ctx, d.config.Telemetry, os.Stdout)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tp
		d.cleanupFuncs["tracer"] = shutdown

		return nil
	}
}

func WithMetrics() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Metrics.Enabled {
			d.infra.metricsClient = noop.NewMetricsClient()

			return nil
		}

		d.infra.metricsClient = prometheus.NewClient(metricsNamespace)

		return nil
	}
}

func WithMarketStore(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		client, err := mongodb.NewClient(ctx, d.config.Database, d.infra.logger.WithComponent("mongodb"))
		if err != nil {
			return fmt.Errorf("connecting to mongodb: %w", err)
		}

		d.infra.mongoClient = client
		d.cleanupFuncs["mongodb"] = client.Disconnect

		collection := client.Database(d.config.Database.Database).Collection(d.config.Database.Collection)
		if err := mongodb.EnsureIndexes(ctx, collection); err != nil {
			return fmt.Errorf("ensuring market indexes: %w", err)
		}

		storeLogger := d.infra.logger.WithComponent("markets-repository")
		repository := repos.NewMarketsRepository(collection, repos.NewCriteriaTranslator(&storeLogger), storeLogger)

		d.repos.marketStore = repos.NewBreakingMarketStore(repository, circuitbreaker.Config{
			Name:             "markets-store",
			Enabled:          d.config.CircuitBreaker.Enabled,
			MaxRequests:      d.config.CircuitBreaker.MaxRequests,
			Interval:         d.config.CircuitBreaker.Interval,
			Timeout:          d.config.CircuitBreaker.Timeout,
			FailureThreshold: d.config.CircuitBreaker.FailureThreshold,
		}, d.infra.logger)

		return nil
	}
}

// WithCache puts the market cache in front of lookups and makes every write
// through the store evict the cached copy.
func WithCache() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Cache.Enabled {
			return nil
		}

		client := infrastructure.NewCacheClient(d.config.Cache, d.infra.logger.WithComponent("cache"))
		d.infra.cacheClient = client
		d.cleanupFuncs["cache"] = func(context.Context) error {
			return client.Close()
		}

		d.repos.marketsCache = repos.NewMarketsCacheRepository(client, d.infra.logger.WithComponent("markets-cache"))
		d.repos.marketStore = repos.NewInvalidatingMarketStore(d.repos.marketStore, d.repos.marketsCache, d.infra.logger)

		return nil
	}
}

// WithRateLimitStore shares rate limit state through the cache when one is
// configured and keeps it in process otherwise.
func WithRateLimitStore() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.RateLimiting.Enabled {
			return nil
		}

		if d.infra.cacheClient != nil {
			d.repos.rateLimitStore = repos.NewRateLimitStore(d.infra.cacheClient)

			return nil
		}

		store, err := memstore.NewCtx(int(d.config.RateLimiting.MaxKeys))
		if err != nil {
			return fmt.Errorf("creating rate limit store: %w", err)
		}

		d.repos.rateLimitStore = store

		return nil
	}
}

func WithMarketsService() DependencyOption {
	return func(d *dependencies) error {
		d.marketsService = services.NewMarketsService(d.repos.marketStore, d.infra.logger)

		return nil
	}
}

func WithApplication() DependencyOption {
	return func(d *dependencies) error {
		caching := usecases.Caching{}

		if d.repos.marketsCache != nil {
			caching = usecases.Caching{
				Cache: repos.NewGetMarketCacheAdapter(d.repos.marketsCache),
				Config: decorator.CacheConfig{
					Enabled: true,
					TTL:     d.config.Cache.MarketTTL,
				},
				Checker: d.infra.cacheClient,
			}
		}

		d.app = usecases.NewApplication(
			d.marketsService,
			d.getDBHealthChecker(),
			caching,
			d.config.App.ServiceVersion,
			d.infra.logger,
			d.infra.metricsClient,
			d.infra.tracerProvider,
		)

		return nil
	}
}

func WithHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		router, err := inboundhttp.NewRouter(inboundhttp.RouterConfig{
			App:            d.app,
			Logger:         d.infra.logger,
			MetricsClient:  d.infra.metricsClient,
			TracerProvider: d.infra.tracerProvider,
			RateLimitStore: d.repos.rateLimitStore,
			Config:         d.config,
		})
		if err != nil {
			return fmt.Errorf("building router: %w", err)
		}

		d.infra.httpServer = &http.Server{
			Addr:         d.config.HTTPServer.Address(),
			Handler:      router,
			ReadTimeout:  d.config.HTTPServer.ReadTimeout,
			WriteTimeout: d.config.HTTPServer.WriteTimeout,
			IdleTimeout:  d.config.HTTPServer.IdleTimeout,
		}

		return nil
	}
}
