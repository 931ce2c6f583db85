package repos

import (
	"context"
	"errors"

	"github.com/architeacher/markets/pkg/circuitbreaker"
	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
)

type (
	// BreakingMarketStore guards a MarketStore with a circuit breaker.
	// Domain outcomes such as not found or duplicate never trip it.
	BreakingMarketStore struct {
		store   ports.MarketStore
		market  *circuitbreaker.CircuitBreaker[*model.Market]
		page    *circuitbreaker.CircuitBreaker[foundPage]
		command *circuitbreaker.CircuitBreaker[struct{}]
	}

	foundPage struct {
		markets []*model.Market
		total   uint
	}
)

var _ ports.MarketStore = (*BreakingMarketStore)(nil)

// NewBreakingMarketStore returns store unchanged when the breaker is disabled.
func NewBreakingMarketStore(store ports.MarketStore, cfg circuitbreaker.Config, log logger.Logger) ports.MarketStore {
	if !cfg.Enabled {
		return store
	}

	opts := []circuitbreaker.Option{
		circuitbreaker.WithSuccessPredicate(isStoreHealthy),
		circuitbreaker.WithStateObserver(func(name, from, to string) {
			log.Warn().
				Str("breaker", name).
				Str("from", from).
				Str("to", to).
				Msg("market store circuit breaker changed state")
		}),
	}

	return &BreakingMarketStore{
		store:   store,
		market:  circuitbreaker.New[*model.Market](withName(cfg, "market"), opts...),
		page:    circuitbreaker.New[foundPage](withName(cfg, "find"), opts...),
		command: circuitbreaker.New[struct{}](withName(cfg, "command"), opts...),
	}
}

func (s *BreakingMarketStore) FetchByID(ctx context.Context, id model.MarketID) (*model.Market, error) {
	return circuitbreaker.Execute(s.market, func() (*model.Market, error) {
		return s.store.FetchByID(ctx, id)
	})
}

func (s *BreakingMarketStore) FetchByRegistryCode(ctx context.Context, registryCode string) (*model.Market, error) {
	return circuitbreaker.Execute(s.market, func() (*model.Market, error) {
		return s.store.FetchByRegistryCode(ctx, registryCode)
	})
}

func (s *BreakingMarketStore) Save(ctx context.Context, market *model.Market) (*model.Market, error) {
	return circuitbreaker.Execute(s.market, func() (*model.Market, error) {
		return s.store.Save(ctx, market)
	})
}

func (s *BreakingMarketStore) Delete(ctx context.Context, id model.MarketID) error {
	_, err := circuitbreaker.Execute(s.command, func() (struct{}, error) {
		return struct{}{}, s.store.Delete(ctx, id)
	})

	return err
}

func (s *BreakingMarketStore) Find(ctx context.Context, criteria model.Criteria) ([]*model.Market, uint, error) {
	result, err := circuitbreaker.Execute(s.page, func() (foundPage, error) {
		markets, total, err := s.store.Find(ctx, criteria)

		return foundPage{markets: markets, total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}

	return result.markets, result.total, nil
}

// Ping bypasses the breaker so readiness reflects the store itself.
func (s *BreakingMarketStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func withName(cfg circuitbreaker.Config, operation string) circuitbreaker.Config {
	cfg.Name = cfg.Name + "-" + operation

	return cfg
}

func isStoreHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, model.ErrMarketNotFound) ||
		errors.Is(err, model.ErrDuplicateMarket) ||
		errors.Is(err, model.ErrInvalidMarketID) ||
		errors.Is(err, context.Canceled)
}
