package cache

import (
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Backend names a tier layout.
type Backend string

const (
	BackendLocal   Backend = "local"
	BackendRedis   Backend = "redis"
	BackendTwoTier Backend = "two_tier"
)

const defaultCleanup = 10 * time.Minute

// Options describes the cache a process should build.
type Options struct {
	Backend    Backend
	DefaultTTL time.Duration
	Cleanup    time.Duration
	KeyPrefix  string
	Client     *redis.Client
}

// ForDeployment returns the layout used by the router: two tiers when a
// Redis client is shared between instances, a process-local cache otherwise.
func ForDeployment(client *redis.Client, keyPrefix string, ttl time.Duration) Options {
	opts := Options{
		Backend:    BackendLocal,
		DefaultTTL: ttl,
		Cleanup:    defaultCleanup,
		KeyPrefix:  keyPrefix,
	}
	if client != nil {
		opts.Backend = BackendTwoTier
		opts.Client = client
	}
	return opts
}

// Build constructs the cache o describes.
func (o Options) Build() (Cache, error) {
	cleanup := o.Cleanup
	if cleanup <= 0 {
		cleanup = defaultCleanup
	}

	switch o.Backend {
	case BackendLocal, "":
		return NewLocalCache(o.DefaultTTL, cleanup), nil
	case BackendRedis, BackendTwoTier:
		if o.Client == nil {
			return nil, fmt.Errorf("%s cache requires a redis client", o.Backend)
		}
		if o.Backend == BackendRedis {
			return NewRedisCache(o.Client, o.KeyPrefix), nil
		}
		return NewTwoTierCache(cleanup, o.Client, o.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", o.Backend)
	}
}
