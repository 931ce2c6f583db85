package decorator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/architeacher/markets/pkg/metrics"
)

type (
	// CacheStatus is the outcome of a cache lookup, reported as a metric label.
	CacheStatus string

	CacheConfig struct {
		Enabled bool
		TTL     time.Duration
	}

	CacheGetter[Q Query, R Result] interface {
		Get(ctx context.Context, query Q) (R, bool, error)
	}

	// CacheVersioner reports the invalidation generation of a query's entry.
	CacheVersioner[Q Query] interface {
		Version(ctx context.Context, query Q) (int64, error)
	}

	// CacheSetter stores result only while the entry is still at version,
	// reporting whether the write happened.
	CacheSetter[Q Query, R Result] interface {
		Set(ctx context.Context, query Q, result R, version int64, ttl time.Duration) (bool, error)
	}

	Cache[Q Query, R Result] interface {
		CacheGetter[Q, R]
		CacheVersioner[Q]
		CacheSetter[Q, R]
	}

	queryCachingDecorator[Q Query, R Result] struct {
		base    QueryHandler[Q, R]
		cache   Cache[Q, R]
		config  CacheConfig
		metrics metrics.Client
	}
)

const (
	CacheStatusHit    CacheStatus = "hit"
	CacheStatusMiss   CacheStatus = "miss"
	CacheStatusBypass CacheStatus = "bypass"
	CacheStatusError  CacheStatus = "error"
	CacheStatusStale  CacheStatus = "stale"
)

// NewQueryCachingDecorator serves query results from cache when enabled.
// Lookup failures fall through to the wrapped handler. The entry version is
// read before the wrapped handler runs and the result is stored only if no
// invalidation happened in between.
func NewQueryCachingDecorator[Q Query, R Result](
	base QueryHandler[Q, R],
	cache Cache[Q, R],
	config CacheConfig,
	metricsClient metrics.Client,
) QueryHandler[Q, R] {
	return queryCachingDecorator[Q, R]{
		base:    base,
		cache:   cache,
		config:  config,
		metrics: metricsClient,
	}
}

func (d queryCachingDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	var zero R

	if !d.config.Enabled || d.cache == nil {
		d.observe(ctx, query, CacheStatusBypass)

		return d.base.Execute(ctx, query)
	}

	cached, hit, err := d.cache.Get(ctx, query)

	switch {
	case err != nil:
		d.observe(ctx, query, CacheStatusError)
	case hit:
		d.observe(ctx, query, CacheStatusHit)

		return cached, nil
	default:
		d.observe(ctx, query, CacheStatusMiss)
	}

	version, err := d.cache.Version(ctx, query)
	if err != nil {
		d.observe(ctx, query, CacheStatusError)

		return d.base.Execute(ctx, query)
	}

	result, err := d.base.Execute(ctx, query)
	if err != nil {
		return zero, err
	}

	stored, err := d.cache.Set(ctx, query, result, version, d.config.TTL)

	switch {
	case err != nil:
		d.observe(ctx, query, CacheStatusError)
	case !stored:
		d.observe(ctx, query, CacheStatusStale)
	}

	return result, nil
}

func (d queryCachingDecorator[Q, R]) observe(ctx context.Context, query Q, status CacheStatus) {
	if d.metrics == nil {
		return
	}

	d.metrics.Inc(ctx, fmt.Sprintf("cache.%s.%s", strings.ToLower(generateActionName(query)), status), 1)
}
