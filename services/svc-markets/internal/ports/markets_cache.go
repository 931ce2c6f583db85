package ports

import (
	"context"
	"time"

	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
)

// MarketsCache keeps recently read markets keyed by ID. Every invalidation
// advances the ID's generation, and Set writes only while the generation it
// was given is still current.
type MarketsCache interface {
	Get(ctx context.Context, id model.MarketID) (*model.Market, bool, error)
	Generation(ctx context.Context, id model.MarketID) (int64, error)
	Set(ctx context.Context, market *model.Market, generation int64, ttl time.Duration) (bool, error)
	Invalidate(ctx context.Context, id model.MarketID) error
}
