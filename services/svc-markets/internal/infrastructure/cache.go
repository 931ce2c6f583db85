package infrastructure

import (
	"context"
	"errors"
	"time"

	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/config"
	"github.com/redis/go-redis/v9"
)

// casScript swaps KEYS[1] from ARGV[1] to ARGV[2] with a PX expiry of ARGV[3].
var casScript = redis.NewScript(`
	local current = redis.call("GET", KEYS[1])
	if current == false or tonumber(current) ~= tonumber(ARGV[1]) then
		return 0
	end
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
`)

// guardedSetScript stores ARGV[2] under KEYS[1] with a PX expiry of ARGV[3]
// only while the integer at KEYS[2] equals ARGV[1]. A missing KEYS[2] reads as 0.
var guardedSetScript = redis.NewScript(`
	local current = tonumber(redis.call("GET", KEYS[2]) or "0")
	if current ~= tonumber(ARGV[1]) then
		return 0
	end
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
`)

// bumpAndDeleteScript increments KEYS[2], refreshes its PX expiry to ARGV[1]
// and removes KEYS[1].
var bumpAndDeleteScript = redis.NewScript(`
	redis.call("INCR", KEYS[2])
	redis.call("PEXPIRE", KEYS[2], ARGV[1])
	redis.call("DEL", KEYS[1])
	return 1
`)

// CacheClient is a thin, logged wrapper over a Redis compatible server.
type CacheClient struct {
	client *redis.Client
	logger logger.Logger
	config config.Cache
}

func NewCacheClient(cfg config.Cache, log logger.Logger) *CacheClient {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           int(cfg.DB),
		PoolSize:     int(cfg.PoolSize),
		MinIdleConns: int(cfg.MinIdleConns),
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
		MaxRetries:   int(cfg.MaxRetries),
	})

	return &CacheClient{
		client: client,
		logger: log.WithComponent("cache"),
		config: cfg,
	}
}

func (c *CacheClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *CacheClient) Close() error {
	return c.client.Close()
}

// Get returns redis.Nil on a miss.
func (c *CacheClient) Get(ctx context.Context, key string) ([]byte, error) {
	startTime := time.Now()

	result, err := c.client.Get(ctx, key).Bytes()

	c.logger.Debug().
		Str("key", key).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Bool("hit", err == nil).
		Msg("cache get operation")

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}

		c.logger.Error().Err(err).Str("key", key).Msg("cache get operation failed")

		return nil, err
	}

	return result, nil
}

// Set falls back to the configured default expiry when ttl is zero.
func (c *CacheClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.config.DefaultExpiry
	}

	startTime := time.Now()
	err := c.client.Set(ctx, key, value, ttl).Err()

	c.logger.Debug().
		Str("key", key).
		Str("expiry", ttl.String()).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Bool("success", err == nil).
		Msg("cache set operation")

	return err
}

func (c *CacheClient) Delete(ctx context.Context, key string) error {
	startTime := time.Now()
	err := c.client.Del(ctx, key).Err()

	c.logger.Debug().
		Str("key", key).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Bool("success", err == nil).
		Msg("cache delete operation")

	return err
}

// IsHealthy checks if the cache is available.
func (c *CacheClient) IsHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return c.Ping(ctx) == nil
}

// GetInt64 retrieves an int64 value, reporting whether the key exists.
func (c *CacheClient) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}

		return 0, false, err
	}

	return val, true, nil
}

// SetInt64NX sets an int64 value if the key doesn't exist.
func (c *CacheClient) SetInt64NX(ctx context.Context, key string, value int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

// CompareAndSwapInt64 atomically updates a value if it matches the expected old value.
func (c *CacheClient) CompareAndSwapInt64(ctx context.Context, key string, old, new int64, ttl time.Duration) (bool, error) {
	result, err := casScript.Run(ctx, c.client, []string{key}, old, new, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

// SetIfGeneration stores value under key while guardKey still holds generation.
func (c *CacheClient) SetIfGeneration(
	ctx context.Context,
	key string,
	value []byte,
	guardKey string,
	generation int64,
	ttl time.Duration,
) (bool, error) {
	if ttl == 0 {
		ttl = c.config.DefaultExpiry
	}

	result, err := guardedSetScript.Run(ctx, c.client, []string{key, guardKey}, generation, value, ttl.Milliseconds()).Int64()

	c.logger.Debug().
		Str("key", key).
		Int64("generation", generation).
		Bool("stored", err == nil && result == 1).
		Msg("cache guarded set operation")

	if err != nil {
		return false, err
	}

	return result == 1, nil
}

// BumpGenerationAndDelete advances guardKey so pending guarded writes to key
// are rejected, then removes key.
func (c *CacheClient) BumpGenerationAndDelete(ctx context.Context, key, guardKey string, guardTTL time.Duration) error {
	err := bumpAndDeleteScript.Run(ctx, c.client, []string{key, guardKey}, guardTTL.Milliseconds()).Err()

	c.logger.Debug().
		Str("key", key).
		Bool("success", err == nil).
		Msg("cache invalidate operation")

	return err
}
