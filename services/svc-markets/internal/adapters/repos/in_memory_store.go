package repos

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InMemoryMarketStore keeps markets in process memory. Registry code
// uniqueness is checked under the write lock, standing in for the unique
// index of the MongoDB store.
type InMemoryMarketStore struct {
	mu             sync.RWMutex
	byID           map[model.MarketID]*model.Market
	byRegistryCode map[string]model.MarketID
	order          []model.MarketID
	now            func() time.Time
}

var _ ports.MarketStore = (*InMemoryMarketStore)(nil)

func NewInMemoryMarketStore() *InMemoryMarketStore {
	return &InMemoryMarketStore{
		byID:           make(map[model.MarketID]*model.Market),
		byRegistryCode: make(map[string]model.MarketID),
		order:          make([]model.MarketID, 0),
		now:            storeNow,
	}
}

func (s *InMemoryMarketStore) FetchByID(_ context.Context, id model.MarketID) (*model.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	market, ok := s.byID[id]
	if !ok {
		return nil, model.ErrMarketNotFound
	}

	return market.Clone(), nil
}

func (s *InMemoryMarketStore) FetchByRegistryCode(_ context.Context, registryCode string) (*model.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRegistryCode[registryCode]
	if !ok {
		return nil, model.ErrMarketNotFound
	}

	return s.byID[id].Clone(), nil
}

func (s *InMemoryMarketStore) Save(ctx context.Context, market *model.Market) (*model.Market, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if market.ID.IsZero() {
		return s.insert(market)
	}

	existing, ok := s.byID[market.ID]
	if !ok {
		return nil, model.ErrMarketNotFound
	}

	if owner, taken := s.byRegistryCode[market.RegistryCode]; taken && owner != market.ID {
		return nil, model.ErrDuplicateMarket
	}

	stored := market.Clone()
	stored.CreatedAt = existing.CreatedAt
	updatedAt := s.now()
	stored.UpdatedAt = &updatedAt

	delete(s.byRegistryCode, existing.RegistryCode)
	s.byRegistryCode[stored.RegistryCode] = stored.ID
	s.byID[stored.ID] = stored

	return stored.Clone(), nil
}

func (s *InMemoryMarketStore) Delete(_ context.Context, id model.MarketID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	market, ok := s.byID[id]
	if !ok {
		return model.ErrMarketNotFound
	}

	delete(s.byID, id)
	delete(s.byRegistryCode, market.RegistryCode)
	s.order = slices.DeleteFunc(s.order, func(candidate model.MarketID) bool {
		return candidate == id
	})

	return nil
}

func (s *InMemoryMarketStore) Find(ctx context.Context, criteria model.Criteria) ([]*model.Market, uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()

	matched := make([]*model.Market, 0)

	for _, id := range s.order {
		if market := s.byID[id]; satisfies(criteria.Spec(), market) {
			matched = append(matched, market.Clone())
		}
	}

	s.mu.RUnlock()

	if criteria.HasSorting() {
		slices.SortStableFunc(matched, func(a, b *model.Market) int {
			for _, sort := range criteria.Sorting() {
				result := compareValues(fieldValue(a, sort.Field), fieldValue(b, sort.Field))
				if sort.Direction == model.SortDesc {
					result = -result
				}

				if result != 0 {
					return result
				}
			}

			return 0
		})
	}

	total := uint(len(matched))
	start := min(criteria.Offset(), total)
	end := min(start+criteria.Size(), total)

	return matched[start:end], total, nil
}

func (s *InMemoryMarketStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len reports the number of stored markets.
func (s *InMemoryMarketStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byID)
}

func (s *InMemoryMarketStore) insert(market *model.Market) (*model.Market, error) {
	if _, taken := s.byRegistryCode[market.RegistryCode]; taken {
		return nil, model.ErrDuplicateMarket
	}

	stored := market.Clone()
	stored.ID = model.MarketID(primitive.NewObjectID().Hex())
	stored.CreatedAt = s.now()
	stored.UpdatedAt = nil

	s.byID[stored.ID] = stored
	s.byRegistryCode[stored.RegistryCode] = stored.ID
	s.order = append(s.order, stored.ID)

	return stored.Clone(), nil
}
