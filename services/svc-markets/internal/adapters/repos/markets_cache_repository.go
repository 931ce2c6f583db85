package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/architeacher/markets/services/svc-markets/internal/infrastructure"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
	"github.com/redis/go-redis/v9"
)

const (
	marketCacheVersion  = "v1"
	marketKeyPrefix     = "market:" + marketCacheVersion + ":"
	generationKeyPrefix = marketKeyPrefix + "gen:"

	// generationTTL outlives any in-flight lookup holding an older generation.
	generationTTL = 24 * time.Hour
)

type (
	// cachedMarket is the JSON shape of a market held in the cache.
	cachedMarket struct {
		ID               string     `json:"id"`
		LegacyIdentifier int        `json:"legacy_identifier"`
		Longitude        int64      `json:"longitude"`
		Latitude         int64      `json:"latitude"`
		SetCens          int64      `json:"set_cens"`
		Area             int64      `json:"area"`
		DistrictCode     int        `json:"district_code"`
		District         string     `json:"district"`
		TownCode         int        `json:"town_code"`
		Town             string     `json:"town"`
		FirstZone        string     `json:"first_zone"`
		SecondZone       string     `json:"second_zone"`
		Name             string     `json:"name"`
		RegistryCode     string     `json:"registry_code"`
		PublicArea       string     `json:"public_area"`
		Number           *string    `json:"number,omitempty"`
		Neighborhood     string     `json:"neighborhood"`
		Reference        *string    `json:"reference,omitempty"`
		CreatedAt        time.Time  `json:"created_at"`
		UpdatedAt        *time.Time `json:"updated_at,omitempty"`
	}

	// MarketsCacheRepository implements ports.MarketsCache on a Redis compatible server.
	MarketsCacheRepository struct {
		client *infrastructure.CacheClient
		logger logger.Logger
	}
)

var _ ports.MarketsCache = (*MarketsCacheRepository)(nil)

func NewMarketsCacheRepository(client *infrastructure.CacheClient, log logger.Logger) *MarketsCacheRepository {
	return &MarketsCacheRepository{
		client: client,
		logger: log,
	}
}

// Get reports a miss as (nil, false, nil).
func (r *MarketsCacheRepository) Get(ctx context.Context, id model.MarketID) (*model.Market, bool, error) {
	data, err := r.client.Get(ctx, marketKey(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("getting cached market: %w", err)
	}

	var cached cachedMarket
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("unmarshalling cached market: %w", err)
	}

	return cached.toDomain(), true, nil
}

func (r *MarketsCacheRepository) Generation(ctx context.Context, id model.MarketID) (int64, error) {
	generation, _, err := r.client.GetInt64(ctx, generationKey(id))
	if err != nil {
		return 0, fmt.Errorf("reading market cache generation: %w", err)
	}

	return generation, nil
}

// Set reports false when the market was invalidated since generation was read.
func (r *MarketsCacheRepository) Set(ctx context.Context, market *model.Market, generation int64, ttl time.Duration) (bool, error) {
	if market == nil || market.ID.IsZero() {
		return false, nil
	}

	data, err := json.Marshal(toCachedMarket(market))
	if err != nil {
		return false, fmt.Errorf("marshalling market: %w", err)
	}

	stored, err := r.client.SetIfGeneration(ctx, marketKey(market.ID), data, generationKey(market.ID), generation, ttl)
	if err != nil {
		return false, fmt.Errorf("setting cached market: %w", err)
	}

	if !stored {
		r.logger.Debug().Str("market_id", market.ID.String()).Msg("stale market not cached")
	}

	return stored, nil
}

func (r *MarketsCacheRepository) Invalidate(ctx context.Context, id model.MarketID) error {
	if err := r.client.BumpGenerationAndDelete(ctx, marketKey(id), generationKey(id), generationTTL); err != nil {
		return fmt.Errorf("invalidating cached market: %w", err)
	}

	r.logger.Debug().Str("market_id", id.String()).Msg("market cache invalidated")

	return nil
}

func marketKey(id model.MarketID) string {
	return marketKeyPrefix + id.String()
}

func generationKey(id model.MarketID) string {
	return generationKeyPrefix + id.String()
}

func toCachedMarket(m *model.Market) cachedMarket {
	return cachedMarket{
		ID:               m.ID.String(),
		LegacyIdentifier: m.LegacyIdentifier,
		Longitude:        m.Longitude,
		Latitude:         m.Latitude,
		SetCens:          m.SetCens,
		Area:             m.Area,
		DistrictCode:     m.DistrictCode,
		District:         m.District,
		TownCode:         m.TownCode,
		Town:             m.Town,
		FirstZone:        m.FirstZone,
		SecondZone:       m.SecondZone,
		Name:             m.Name,
		RegistryCode:     m.RegistryCode,
		PublicArea:       m.PublicArea,
		Number:           m.Number,
		Neighborhood:     m.Neighborhood,
		Reference:        m.Reference,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (c cachedMarket) toDomain() *model.Market {
	return &model.Market{
		ID:               model.MarketID(c.ID),
		LegacyIdentifier: c.LegacyIdentifier,
		Longitude:        c.Longitude,
		Latitude:         c.Latitude,
		SetCens:          c.SetCens,
		Area:             c.Area,
		DistrictCode:     c.DistrictCode,
		District:         c.District,
		TownCode:         c.TownCode,
		Town:             c.Town,
		FirstZone:        c.FirstZone,
		SecondZone:       c.SecondZone,
		Name:             c.Name,
		RegistryCode:     c.RegistryCode,
		PublicArea:       c.PublicArea,
		Number:           c.Number,
		Neighborhood:     c.Neighborhood,
		Reference:        c.Reference,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
