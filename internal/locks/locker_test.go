package locks

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-router/internal/common/logging"
	"content-router/internal/redis"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient(&redis.Config{Address: mr.Addr(), KeyPrefix: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	locker, err := NewLocker(client, 30*time.Second, logging.NewNopLogger())
	require.NoError(t, err)
	return locker, mr
}

func TestNewLocker_RequiresClient(t *testing.T) {
	_, err := NewLocker(nil, 0, nil)
	assert.Error(t, err)
}

func TestLocker_LockAndRelease(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "scheme:abc")
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:scheme:abc"))

	unlock()
	assert.False(t, mr.Exists("test:lock:scheme:abc"))

	unlock, err = locker.Lock(ctx, "scheme:abc")
	require.NoError(t, err)
	unlock()
}

func TestLocker_Contention(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "scheme:busy")
	require.NoError(t, err)
	defer unlock()

	shortCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	second, err := locker.Lock(shortCtx, "scheme:busy")
	assert.Error(t, err)
	assert.Nil(t, second)
}

func TestLocker_IndependentKeys(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	first, err := locker.Lock(ctx, "scheme:one")
	require.NoError(t, err)
	defer first()

	second, err := locker.Lock(ctx, "scheme:two")
	require.NoError(t, err)
	second()
}
