// Package testserver runs the markets HTTP API over a MongoDB container for
// integration testing.
package testserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/architeacher/markets/pkg/decorator"
	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/pkg/metrics/noop"
	inboundhttp "github.com/architeacher/markets/services/svc-markets/internal/adapters/inbound/http"
	"github.com/architeacher/markets/services/svc-markets/internal/adapters/repos"
	"github.com/architeacher/markets/services/svc-markets/internal/config"
	"github.com/architeacher/markets/services/svc-markets/internal/infrastructure"
	infraMongo "github.com/architeacher/markets/services/svc-markets/internal/infrastructure/mongodb"
	"github.com/architeacher/markets/services/svc-markets/internal/services"
	"github.com/architeacher/markets/services/svc-markets/internal/usecases"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	otelNoop "go.opentelemetry.io/otel/trace/noop"
)

const MongoImage = "mongo:7.0"

// TestServer serves the API backed by MongoDB, with the market cache on an
// in-process Redis.
type TestServer struct {
	HTTPServer    *httptest.Server
	Client        *mongo.Client
	Collection    *mongo.Collection
	Container     *mongodb.MongoDBContainer
	Cache         *miniredis.Miniredis
	cacheClient   *infrastructure.CacheClient
	containerCtx  context.Context
	containerStop context.CancelFunc
}

// New starts the MongoDB container and the HTTP server.
func New(ctx context.Context) (*TestServer, error) {
	containerCtx, containerStop := context.WithTimeout(ctx, 5*time.Minute)

	srv := &TestServer{
		containerCtx:  containerCtx,
		containerStop: containerStop,
	}

	container, err := mongodb.Run(containerCtx, MongoImage)
	if err != nil {
		srv.Close()

		return nil, fmt.Errorf("starting mongodb container: %w", err)
	}

	srv.Container = container

	uri, err := container.ConnectionString(containerCtx)
	if err != nil {
		srv.Close()

		return nil, fmt.Errorf("getting connection string: %w", err)
	}

	cfg, err := config.Init()
	if err != nil {
		srv.Close()

		return nil, fmt.Errorf("initializing configuration: %w", err)
	}

	cfg.Database.URI = uri
	cfg.Database.Database = "markets_test"
	cfg.RateLimiting.Enabled = false

	log := logger.NewTestLogger()

	client, err := infraMongo.NewClient(containerCtx, cfg.Database, log)
	if err != nil {
		srv.Close()

		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	srv.Client = client
	srv.Collection = client.Database(cfg.Database.Database).Collection(cfg.Database.Collection)

	if err := infraMongo.EnsureIndexes(containerCtx, srv.Collection); err != nil {
		srv.Close()

		return nil, err
	}

	cache, err := miniredis.Run()
	if err != nil {
		srv.Close()

		return nil, fmt.Errorf("starting cache: %w", err)
	}

	srv.Cache = cache
	cfg.Cache.Enabled = true
	cfg.Cache.Address = cache.Addr()
	srv.cacheClient = infrastructure.NewCacheClient(cfg.Cache, log)

	marketsCache := repos.NewMarketsCacheRepository(srv.cacheClient, log)
	store := repos.NewInvalidatingMarketStore(
		repos.NewMarketsRepository(srv.Collection, repos.NewCriteriaTranslator(&log), log),
		marketsCache,
		log,
	)

	metricsClient := noop.NewMetricsClient()
	tracerProvider := otelNoop.NewTracerProvider()

	app := usecases.NewApplication(
		services.NewMarketsService(store, log),
		store,
		usecases.Caching{
			Cache:   repos.NewGetMarketCacheAdapter(marketsCache),
			Config:  decorator.CacheConfig{Enabled: true, TTL: cfg.Cache.MarketTTL},
			Checker: srv.cacheClient,
		},
		"itest",
		log,
		metricsClient,
		tracerProvider,
	)

	router, err := inboundhttp.NewRouter(inboundhttp.RouterConfig{
		App:            app,
		Logger:         log,
		MetricsClient:  metricsClient,
		TracerProvider: tracerProvider,
		Config:         cfg,
	})
	if err != nil {
		srv.Close()

		return nil, fmt.Errorf("building router: %w", err)
	}

	srv.HTTPServer = httptest.NewServer(router)

	return srv, nil
}

// URL is the base URL of the HTTP server.
func (s *TestServer) URL() string {
	return s.HTTPServer.URL
}

// Reset removes every market and flushes the cache.
func (s *TestServer) Reset(ctx context.Context) error {
	s.Cache.FlushAll()

	_, err := s.Collection.DeleteMany(ctx, bson.D{})

	return err
}

// Close shuts down the server and cleans up resources.
func (s *TestServer) Close() {
	if s.HTTPServer != nil {
		s.HTTPServer.Close()
	}

	if s.cacheClient != nil {
		_ = s.cacheClient.Close()
	}

	if s.Cache != nil {
		s.Cache.Close()
	}

	if s.Client != nil {
		_ = s.Client.Disconnect(s.containerCtx)
	}

	if s.Container != nil {
		_ = s.Container.Terminate(s.containerCtx)
	}

	if s.containerStop != nil {
		s.containerStop()
	}
}
