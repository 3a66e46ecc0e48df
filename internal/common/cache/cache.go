package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	gocache "github.com/patrickmn/go-cache"
)

// Cache stores JSON encoded values. Get decodes into dest and reports
// whether the key was present.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// LocalCache wraps patrickmn/go-cache for in-memory caching
type LocalCache struct {
	cache *gocache.Cache
}

// NewLocalCache creates a new local cache instance
func NewLocalCache(defaultTTL, cleanupInterval time.Duration) *LocalCache {
	return &LocalCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the local cache
func (l *LocalCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, found := l.cache.Get(key)
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(val.([]byte), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value in the local cache. Values are encoded so callers never
// share memory with the cache.
func (l *LocalCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	l.cache.Set(key, data, ttl)
	return nil
}

// Delete removes a value from the local cache
func (l *LocalCache) Delete(ctx context.Context, key string) error {
	l.cache.Delete(key)
	return nil
}

// RedisCache wraps go-redis for distributed caching
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, keyPrefix string) *RedisCache {
	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a value from Redis
func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value in Redis
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.keyPrefix+key, data, ttl).Err()
}

// Delete removes a value from Redis
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.keyPrefix+key).Err()
}

// maxLocalTTL bounds how long the L1 tier of a TwoTierCache may serve a
// value that another instance has since invalidated in Redis.
const maxLocalTTL = 30 * time.Second

// TwoTierCache combines local and Redis cache
type TwoTierCache struct {
	l1 *LocalCache
	l2 *RedisCache
}

// NewTwoTierCache creates a cache with local L1 and Redis L2
func NewTwoTierCache(cleanupInterval time.Duration, redisClient *redis.Client, keyPrefix string) *TwoTierCache {
	return &TwoTierCache{
		l1: NewLocalCache(maxLocalTTL, cleanupInterval),
		l2: NewRedisCache(redisClient, keyPrefix),
	}
}

func localTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > maxLocalTTL {
		return maxLocalTTL
	}
	return ttl
}

// Get checks L1 first, then L2
func (t *TwoTierCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if found, err := t.l1.Get(ctx, key, dest); err == nil && found {
		return true, nil
	}

	found, err := t.l2.Get(ctx, key, dest)
	if err != nil || !found {
		return found, err
	}

	t.l1.Set(ctx, key, dest, maxLocalTTL)
	return true, nil
}

// Set stores in both L1 and L2
func (t *TwoTierCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	// L2 is the source of truth
	if err := t.l2.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return t.l1.Set(ctx, key, value, localTTL(ttl))
}

// Delete removes from both L1 and L2
func (t *TwoTierCache) Delete(ctx context.Context, key string) error {
	t.l1.Delete(ctx, key)
	return t.l2.Delete(ctx, key)
}

