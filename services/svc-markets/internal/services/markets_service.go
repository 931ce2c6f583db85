package services

import (
	"context"
	"errors"

	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
)

type MarketsService struct {
	store  ports.MarketStore
	logger logger.Logger
}

var _ ports.MarketsService = (*MarketsService)(nil)

func NewMarketsService(store ports.MarketStore, log logger.Logger) *MarketsService {
	return &MarketsService{
		store:  store,
		logger: log.WithComponent("markets-service"),
	}
}

func (s *MarketsService) CreateMarket(ctx context.Context, candidate *model.Market) (*model.Market, error) {
	market, _, err := s.RegisterMarket(ctx, candidate)

	return market, err
}

func (s *MarketsService) RegisterMarket(ctx context.Context, candidate *model.Market) (*model.Market, bool, error) {
	log := s.logger.WithContext(ctx).With().Str("registry_code", candidate.RegistryCode).Logger()

	existing, err := s.store.FetchByRegistryCode(ctx, candidate.RegistryCode)
	if err == nil {
		log.Info().Str("market_id", existing.ID.String()).Msg("market already exists")

		return existing, false, nil
	}

	if !errors.Is(err, model.ErrMarketNotFound) {
		return nil, false, err
	}

	fresh := candidate.Clone()
	fresh.ID = ""
	fresh.UpdatedAt = nil

	persisted, err := s.store.Save(ctx, fresh)
	if errors.Is(err, model.ErrDuplicateMarket) {
		// A concurrent create won the unique index.
		log.Info().Msg("market created concurrently")

		existing, err := s.store.FetchByRegistryCode(ctx, candidate.RegistryCode)
		if err != nil {
			return nil, false, err
		}

		return existing, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	log.Info().Str("market_id", persisted.ID.String()).Msg("market created")

	return persisted, true, nil
}

func (s *MarketsService) GetMarket(ctx context.Context, id model.MarketID) (*model.Market, error) {
	return s.store.FetchByID(ctx, id)
}

func (s *MarketsService) UpdateMarket(ctx context.Context, registryCode string, payload *model.Market) (*model.Market, error) {
	existing, err := s.store.FetchByRegistryCode(ctx, registryCode)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Save(ctx, existing.MergeWith(*payload))
	if err != nil {
		return nil, err
	}

	log := s.logger.WithContext(ctx)
	log.Info().
		Str("registry_code", registryCode).
		Str("market_id", updated.ID.String()).
		Msg("market updated")

	return updated, nil
}

func (s *MarketsService) DeleteMarket(ctx context.Context, registryCode string) error {
	existing, err := s.store.FetchByRegistryCode(ctx, registryCode)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, existing.ID); err != nil {
		return err
	}

	log := s.logger.WithContext(ctx)
	log.Info().
		Str("registry_code", registryCode).
		Str("market_id", existing.ID.String()).
		Msg("market deleted")

	return nil
}

func (s *MarketsService) SearchMarkets(
	ctx context.Context,
	criteria model.SearchCriteria,
	page model.PageRequest,
) (*model.Page[*model.Market], error) {
	if page.Size == 0 {
		page.Size = model.DefaultPageSize
	}

	markets, total, err := s.store.Find(ctx, model.FromSearchCriteria(criteria, page))
	if err != nil {
		return nil, err
	}

	return model.NewPage(markets, total, page), nil
}
