// Package locks serializes mutations across router instances that share a
// Redis server, using the Redlock implementation from go-redsync.
package locks

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"

	"content-router/internal/common/errors"
	"content-router/internal/common/logging"
	"content-router/internal/redis"
)

// DefaultExpiry bounds how long a crashed holder can block other instances.
const DefaultExpiry = 10 * time.Second

const releaseTimeout = 5 * time.Second

// Locker hands out named distributed mutexes.
type Locker struct {
	redsync *redsync.Redsync
	client  *redis.Client
	expiry  time.Duration
	logger  logging.Logger
}

// NewLocker creates a Locker on top of client. expiry <= 0 selects
// DefaultExpiry.
func NewLocker(client *redis.Client, expiry time.Duration, logger logging.Logger) (*Locker, error) {
	if client == nil {
		return nil, errors.ConfigError("redis client is required")
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &Locker{
		redsync: redsync.New(goredis.NewPool(client.Redis())),
		client:  client,
		expiry:  expiry,
		logger:  logger.WithFields(logging.Field{Key: "component", Value: "locks"}),
	}, nil
}

// Lock blocks until key is held or ctx is done. The returned function
// releases the lock.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	mutex := l.redsync.NewMutex(l.client.Key("lock", key), redsync.WithExpiry(l.expiry))

	if err := mutex.LockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.InternalError("failed to acquire distributed lock", err).
			WithContext("key", key)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		if ok, err := mutex.UnlockContext(releaseCtx); err != nil || !ok {
			l.logger.Warn("Failed to release distributed lock",
				logging.String("key", key),
				logging.Err(err),
			)
		}
	}, nil
}
