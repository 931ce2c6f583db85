package repos

import (
	"context"
	"time"

	"github.com/architeacher/markets/services/svc-markets/internal/infrastructure"
	"github.com/throttled/throttled/v2"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimitStore implements throttled.GCRAStoreCtx on the shared cache so limits
// hold across replicas.
type RateLimitStore struct {
	client *infrastructure.CacheClient
	prefix string
}

var _ throttled.GCRAStoreCtx = (*RateLimitStore)(nil)

func NewRateLimitStore(client *infrastructure.CacheClient) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: rateLimitKeyPrefix,
	}
}

// GetWithTime returns -1 for an unknown key, which throttled reads as "no state yet".
func (s *RateLimitStore) GetWithTime(ctx context.Context, key string) (int64, time.Time, error) {
	value, found, err := s.client.GetInt64(ctx, s.prefix+key)
	if err != nil {
		return 0, time.Time{}, err
	}

	if !found {
		return -1, time.Now(), nil
	}

	return value, time.Now(), nil
}

func (s *RateLimitStore) SetIfNotExistsWithTTL(ctx context.Context, key string, value int64, ttl time.Duration) (bool, error) {
	return s.client.SetInt64NX(ctx, s.prefix+key, value, ttl)
}

func (s *RateLimitStore) CompareAndSwapWithTTL(ctx context.Context, key string, old, new int64, ttl time.Duration) (bool, error) {
	return s.client.CompareAndSwapInt64(ctx, s.prefix+key, old, new, ttl)
}
