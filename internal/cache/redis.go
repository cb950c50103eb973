package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "animeproviders:"
	opTimeout  = 2 * time.Second
	dialTimeout = 5 * time.Second
)

func init() {
	Register("redis", newRedisCache)
}

// redisCache stores every entry as a plain string key with a server-side
// expiry. Capacity is bounded by the server maxmemory policy, so Size and
// OnEvict are ignored.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger loggerFunc
}

type loggerFunc func(msg string, err error)

func newRedisCache(cfg BackendConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddress, err)
	}

	logError := func(string, error) {}
	if cfg.Logger != nil {
		l := cfg.Logger
		logError = func(msg string, err error) { l.Error().Err(err).Msg(msg) }
	}

	return &redisCache{client: client, ttl: cfg.TTL, logger: logError}, nil
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger("redis cache Get failed", err)
		}
		return nil, false
	}
	return val, true
}

func (r *redisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.Set(ctx, keyPrefix+key, value, r.ttl).Err(); err != nil {
		r.logger("redis cache Set failed", err)
	}
}

func (r *redisCache) Contains(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		r.logger("redis cache Contains failed", err)
		return false
	}
	return n > 0
}

// Len reports the key count of the whole database, which includes keys
// written by other applications sharing it.
func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := r.client.DBSize(ctx).Result()
	if err != nil {
		r.logger("redis cache Len failed", err)
		return 0
	}
	return int(n)
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
