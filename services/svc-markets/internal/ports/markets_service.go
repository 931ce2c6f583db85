package ports

import (
	"context"

	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
)

// MarketsService holds the catalog business rules.
type MarketsService interface {
	// CreateMarket persists candidate unless a market with the same registry
	// code exists, in which case the existing market is returned unchanged.
	CreateMarket(ctx context.Context, candidate *model.Market) (*model.Market, error)

	// RegisterMarket behaves like CreateMarket and also reports whether a new
	// market was stored.
	RegisterMarket(ctx context.Context, candidate *model.Market) (*model.Market, bool, error)

	GetMarket(ctx context.Context, id model.MarketID) (*model.Market, error)

	// UpdateMarket replaces every mutable field of the market identified by
	// registryCode with the values in payload.
	UpdateMarket(ctx context.Context, registryCode string, payload *model.Market) (*model.Market, error)

	DeleteMarket(ctx context.Context, registryCode string) error

	SearchMarkets(ctx context.Context, criteria model.SearchCriteria, page model.PageRequest) (*model.Page[*model.Market], error)
}
