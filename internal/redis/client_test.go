package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	config := &Config{
		Address:  mr.Addr(),
		Password: "",
		DB:       0,
		PoolSize: 10,
	}

	client, err := NewClient(config)
	require.NoError(t, err)

	return client, mr
}

func TestNewClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	t.Run("applies defaults", func(t *testing.T) {
		config := &Config{Address: mr.Addr()}

		client, err := NewClient(config)
		require.NoError(t, err)
		defer client.Close()

		assert.Equal(t, 10, config.PoolSize)
		assert.Equal(t, "content-router", config.KeyPrefix)
	})

	t.Run("nil config", func(t *testing.T) {
		client, err := NewClient(nil)
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "redis config is required")
	})

	t.Run("connection failure", func(t *testing.T) {
		config := &Config{
			Address:  "invalid:99999",
			PoolSize: 5,
		}

		client, err := NewClient(config)
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})
}

func TestClient_Health(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()

	assert.NoError(t, client.Health())

	mr.Close()
	assert.Error(t, client.Health())
}

func TestClient_Key(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	assert.Equal(t, "content-router:ingest", client.Key(IngestQueue))
	assert.Equal(t, "content-router:cache:scheme", client.Key("cache", "scheme"))
}

func TestClient_KeyValue(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()

	t.Run("set and get string", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "test:string", "hello world", time.Hour))

		result, err := client.Get(ctx, "test:string")
		assert.NoError(t, err)
		assert.Equal(t, "hello world", result)
	})

	t.Run("set and get JSON", func(t *testing.T) {
		value := map[string]interface{}{
			"name":   "test",
			"count":  42,
			"active": true,
		}
		require.NoError(t, client.Set(ctx, "test:json", value, time.Hour))

		var result map[string]interface{}
		require.NoError(t, client.GetJSON(ctx, "test:json", &result))
		assert.Equal(t, "test", result["name"])
		assert.Equal(t, float64(42), result["count"])
		assert.Equal(t, true, result["active"])
	})

	t.Run("get non-existent key", func(t *testing.T) {
		_, err := client.Get(ctx, "non:existent")
		assert.Equal(t, redis.Nil, err)
	})

	t.Run("exists and delete", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "test:delete", "value", time.Hour))

		exists, err := client.Exists(ctx, "test:delete")
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, client.Delete(ctx, "test:delete"))

		exists, err = client.Exists(ctx, "test:delete")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("set with expiration", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "test:expiry", "soon", time.Second))

		mr.FastForward(2 * time.Second)

		_, err := client.Get(ctx, "test:expiry")
		assert.Equal(t, redis.Nil, err)
	})
}

func TestClient_PublishAndReceive(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	channel := client.Key(PublishedChannel)

	pubsub := client.Subscribe(ctx, channel)
	defer pubsub.Close()

	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Publish(ctx, channel, map[string]string{"item_id": "item-1"}))

	msg, err := pubsub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, channel, msg.Channel)
	assert.JSONEq(t, `{"item_id":"item-1"}`, msg.Payload)
}

func TestClient_Queue(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	queue := client.Key(IngestQueue)

	require.NoError(t, client.Push(ctx, queue, map[string]string{"n": "1"}))
	require.NoError(t, client.Push(ctx, queue, "second"))

	n, err := client.Len(ctx, queue)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	data, ok, err := client.Pop(ctx, queue, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"n":"1"}`, string(data))

	data, ok, err = client.Pop(ctx, queue, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", string(data))
}

func TestClient_PopTimesOut(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	data, ok, err := client.Pop(context.Background(), client.Key(IngestQueue), 100*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}
