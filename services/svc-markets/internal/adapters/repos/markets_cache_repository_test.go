package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/adapters/repos"
	"github.com/architeacher/markets/services/svc-markets/internal/config"
	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/architeacher/markets/services/svc-markets/internal/infrastructure"
	"github.com/stretchr/testify/suite"
	"github.com/throttled/throttled/v2"
)

type MarketsCacheRepositoryTestSuite struct {
	suite.Suite
	miniRedis   *miniredis.Miniredis
	cacheClient *infrastructure.CacheClient
	repo        *repos.MarketsCacheRepository
}

func TestMarketsCacheRepositoryTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(MarketsCacheRepositoryTestSuite))
}

func (s *MarketsCacheRepositoryTestSuite) SetupTest() {
	var err error
	s.miniRedis, err = miniredis.Run()
	s.Require().NoError(err)

	cfg := config.Cache{
		Address:       s.miniRedis.Addr(),
		PoolSize:      5,
		DialTimeout:   time.Second,
		ReadTimeout:   time.Second,
		WriteTimeout:  time.Second,
		DefaultExpiry: time.Hour,
	}

	s.cacheClient = infrastructure.NewCacheClient(cfg, logger.NewTestLogger())
	s.repo = repos.NewMarketsCacheRepository(s.cacheClient, logger.NewTestLogger())
}

func (s *MarketsCacheRepositoryTestSuite) TearDownTest() {
	if s.cacheClient != nil {
		_ = s.cacheClient.Close()
	}

	if s.miniRedis != nil {
		s.miniRedis.Close()
	}
}

func (s *MarketsCacheRepositoryTestSuite) cachedFixture() *model.Market {
	market := candidateMarket("4041-0")
	market.ID = "65f1c0a2b3d4e5f6a7b8c9d0"
	market.CreatedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	return market
}

func (s *MarketsCacheRepositoryTestSuite) store(market *model.Market, ttl time.Duration) {
	ctx := context.Background()

	generation, err := s.repo.Generation(ctx, market.ID)
	s.Require().NoError(err)

	stored, err := s.repo.Set(ctx, market, generation, ttl)
	s.Require().NoError(err)
	s.Require().True(stored)
}

func (s *MarketsCacheRepositoryTestSuite) TestGet_NotCached() {
	market, hit, err := s.repo.Get(context.Background(), "65f1c0a2b3d4e5f6a7b8c9d0")

	s.Require().NoError(err)
	s.Require().False(hit)
	s.Require().Nil(market)
}

func (s *MarketsCacheRepositoryTestSuite) TestSetAndGet() {
	ctx := context.Background()
	market := s.cachedFixture()

	s.store(market, time.Minute)

	cached, hit, err := s.repo.Get(ctx, market.ID)

	s.Require().NoError(err)
	s.Require().True(hit)
	s.Require().Equal(market, cached)
	s.Require().True(s.miniRedis.Exists("market:v1:65f1c0a2b3d4e5f6a7b8c9d0"))
}

func (s *MarketsCacheRepositoryTestSuite) TestSet_KeepsAbsentOptionalFieldsAbsent() {
	ctx := context.Background()
	market := s.cachedFixture()
	market.Number = nil
	market.Reference = nil

	s.store(market, time.Minute)

	cached, hit, err := s.repo.Get(ctx, market.ID)

	s.Require().NoError(err)
	s.Require().True(hit)
	s.Require().Nil(cached.Number)
	s.Require().Nil(cached.Reference)
	s.Require().Nil(cached.UpdatedAt)
}

func (s *MarketsCacheRepositoryTestSuite) TestSet_IgnoresUnsavedMarket() {
	stored, err := s.repo.Set(context.Background(), candidateMarket("4041-0"), 0, time.Minute)
	s.Require().NoError(err)
	s.Require().False(stored)
	s.Require().Empty(s.miniRedis.Keys())
}

func (s *MarketsCacheRepositoryTestSuite) TestInvalidate() {
	ctx := context.Background()
	market := s.cachedFixture()

	s.store(market, time.Minute)
	s.Require().NoError(s.repo.Invalidate(ctx, market.ID))

	_, hit, err := s.repo.Get(ctx, market.ID)
	s.Require().NoError(err)
	s.Require().False(hit)
}

func (s *MarketsCacheRepositoryTestSuite) TestSet_RejectsWriteReadBeforeInvalidation() {
	ctx := context.Background()
	market := s.cachedFixture()

	generation, err := s.repo.Generation(ctx, market.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Invalidate(ctx, market.ID))

	stored, err := s.repo.Set(ctx, market, generation, time.Minute)
	s.Require().NoError(err)
	s.Require().False(stored)

	_, hit, err := s.repo.Get(ctx, market.ID)
	s.Require().NoError(err)
	s.Require().False(hit)

	s.store(market, time.Minute)

	_, hit, err = s.repo.Get(ctx, market.ID)
	s.Require().NoError(err)
	s.Require().True(hit)
}

func (s *MarketsCacheRepositoryTestSuite) TestInvalidate_NonExistent() {
	s.Require().NoError(s.repo.Invalidate(context.Background(), "65f1c0a2b3d4e5f6a7b8c9d1"))
}

func (s *MarketsCacheRepositoryTestSuite) TestExpiration() {
	ctx := context.Background()
	market := s.cachedFixture()

	s.store(market, 100*time.Millisecond)

	s.miniRedis.FastForward(200 * time.Millisecond)

	_, hit, err := s.repo.Get(ctx, market.ID)
	s.Require().NoError(err)
	s.Require().False(hit)
}

func (s *MarketsCacheRepositoryTestSuite) TestGet_CorruptedEntry() {
	s.Require().NoError(s.miniRedis.Set("market:v1:65f1c0a2b3d4e5f6a7b8c9d0", "{not json"))

	_, hit, err := s.repo.Get(context.Background(), "65f1c0a2b3d4e5f6a7b8c9d0")

	s.Require().Error(err)
	s.Require().False(hit)
}

func (s *MarketsCacheRepositoryTestSuite) TestGet_ServerDown() {
	s.miniRedis.Close()

	_, hit, err := s.repo.Get(context.Background(), "65f1c0a2b3d4e5f6a7b8c9d0")

	s.Require().Error(err)
	s.Require().False(hit)
	s.miniRedis = nil
}

func (s *MarketsCacheRepositoryTestSuite) TestRateLimitStore_EnforcesQuota() {
	limiter, err := throttled.NewGCRARateLimiterCtx(
		repos.NewRateLimitStore(s.cacheClient),
		throttled.RateQuota{MaxRate: throttled.PerMin(1), MaxBurst: 1},
	)
	s.Require().NoError(err)

	ctx := context.Background()

	for range 2 {
		limited, _, err := limiter.RateLimitCtx(ctx, "ip:10.0.0.7", 1)
		s.Require().NoError(err)
		s.Require().False(limited)
	}

	limited, result, err := limiter.RateLimitCtx(ctx, "ip:10.0.0.7", 1)
	s.Require().NoError(err)
	s.Require().True(limited)
	s.Require().Positive(result.RetryAfter)
	s.Require().True(s.miniRedis.Exists("ratelimit:ip:10.0.0.7"))

	limited, _, err = limiter.RateLimitCtx(ctx, "ip:10.0.0.8", 1)
	s.Require().NoError(err)
	s.Require().False(limited)
}
