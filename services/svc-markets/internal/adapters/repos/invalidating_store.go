package repos

import (
	"context"

	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
)

// InvalidatingMarketStore evicts cached markets after every successful replace
// or delete. A failed eviction is logged and never fails the write.
type InvalidatingMarketStore struct {
	ports.MarketStore
	cache  ports.MarketsCache
	logger logger.Logger
}

var _ ports.MarketStore = (*InvalidatingMarketStore)(nil)

func NewInvalidatingMarketStore(store ports.MarketStore, cache ports.MarketsCache, log logger.Logger) *InvalidatingMarketStore {
	return &InvalidatingMarketStore{
		MarketStore: store,
		cache:       cache,
		logger:      log,
	}
}

func (s *InvalidatingMarketStore) Save(ctx context.Context, market *model.Market) (*model.Market, error) {
	saved, err := s.MarketStore.Save(ctx, market)
	if err != nil {
		return nil, err
	}

	if !market.ID.IsZero() {
		s.invalidate(ctx, saved.ID)
	}

	return saved, nil
}

func (s *InvalidatingMarketStore) Delete(ctx context.Context, id model.MarketID) error {
	if err := s.MarketStore.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *InvalidatingMarketStore) invalidate(ctx context.Context, id model.MarketID) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log := s.logger.WithContext(ctx)
		log.Warn().
			Err(err).
			Str("market_id", id.String()).
			Msg("failed to invalidate cached market")
	}
}
