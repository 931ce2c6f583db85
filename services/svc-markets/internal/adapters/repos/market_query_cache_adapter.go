package repos

import (
	"context"
	"time"

	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
	"github.com/architeacher/markets/services/svc-markets/internal/usecases/queries"
)

// GetMarketCacheAdapter adapts MarketsCache for GetMarketQuery.
type GetMarketCacheAdapter struct {
	cache ports.MarketsCache
}

func NewGetMarketCacheAdapter(cache ports.MarketsCache) *GetMarketCacheAdapter {
	return &GetMarketCacheAdapter{cache: cache}
}

func (a *GetMarketCacheAdapter) Get(ctx context.Context, query queries.GetMarketQuery) (*model.Market, bool, error) {
	return a.cache.Get(ctx, query.ID)
}

func (a *GetMarketCacheAdapter) Version(ctx context.Context, query queries.GetMarketQuery) (int64, error) {
	return a.cache.Generation(ctx, query.ID)
}

func (a *GetMarketCacheAdapter) Set(
	ctx context.Context,
	_ queries.GetMarketQuery,
	result *model.Market,
	version int64,
	ttl time.Duration,
) (bool, error) {
	return a.cache.Set(ctx, result, version, ttl)
}
