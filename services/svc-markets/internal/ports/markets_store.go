package ports

import (
	"context"

	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
)

type (
	Fetcher interface {
		// FetchByID returns model.ErrMarketNotFound when no market has the ID.
		FetchByID(ctx context.Context, id model.MarketID) (*model.Market, error)

		// FetchByRegistryCode returns model.ErrMarketNotFound when no market has the code.
		FetchByRegistryCode(ctx context.Context, registryCode string) (*model.Market, error)
	}

	Finder interface {
		// Find returns the markets in the criteria page window and the total
		// number of markets matching the criteria spec.
		Find(ctx context.Context, criteria model.Criteria) ([]*model.Market, uint, error)
	}

	Saver interface {
		// Save inserts a market without ID, assigning ID and CreatedAt, or
		// replaces the stored market with the same ID, refreshing UpdatedAt.
		// Inserting a second market with an existing registry code fails with
		// model.ErrDuplicateMarket.
		Save(ctx context.Context, market *model.Market) (*model.Market, error)
	}

	Deleter interface {
		Delete(ctx context.Context, id model.MarketID) error
	}

	// MarketStore is the persistence capability the catalog is built on.
	MarketStore interface {
		Fetcher
		Finder
		Saver
		Deleter
		DatabaseHealthChecker
	}
)
