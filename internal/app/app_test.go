package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"content-router/internal/config"
	"content-router/internal/ingest"
	"content-router/internal/models"
	"content-router/internal/redis"
	"content-router/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, redisAddress string) *config.Config {
	t.Helper()
	return &config.Config{
		LogLevel:           "error",
		DefaultRuleHandler: "desk_fetch_publish",
		DatabaseType:       "sqlite",
		DatabasePath:       filepath.Join(t.TempDir(), "router.db"),
		RedisAddress:       redisAddress,
		RedisDB:            "0",
		RedisPoolSize:      "5",
		RedisKeyPrefix:     "test",
		SchemeCacheTTL:     "1m",
		IngestWorkers:      "2",
		IngestPopTimeout:   "1s",
		IngestRateLimit:    "0",
	}
}

func TestNew_WithoutRedis(t *testing.T) {
	cfg := testConfig(t, "")
	require.NoError(t, cfg.Validate())

	app, err := New(cfg)
	require.NoError(t, err)
	defer app.Cleanup()

	assert.Nil(t, app.RedisClient)
	assert.Nil(t, app.Ingest)
	assert.NotNil(t, app.Cache)
	assert.Equal(t, []string{"desk_fetch_publish"}, app.Handlers.Names())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, app.RunIngest(ctx))
}

func TestNew_UnknownDefaultHandler(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.DefaultRuleHandler = "teletype"

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teletype")
}

func TestApp_RoutesQueuedItems(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr.Addr())
	require.NoError(t, cfg.Validate())

	app, err := New(cfg)
	require.NoError(t, err)
	defer app.Cleanup()
	require.NotNil(t, app.Ingest)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	filter := &models.ContentFilter{Name: "text only", Expression: `type == "text"`}
	require.NoError(t, app.Filters.Create(ctx, filter))

	scheme := testutil.NewSchemeBuilder("wire").WithRules(
		testutil.NewRuleBuilder("text to sport").
			WithFilter(filter.ID).
			WithActions(&models.ActionSet{
				Fetch:   []models.FetchAction{{Desk: "sport", Stage: "incoming"}},
				Publish: []models.PublishAction{{Desk: "sport", TargetTypes: []string{"wire"}}},
				Exit:    testutil.BoolPtr(true),
			}).Build(),
		testutil.NewRuleBuilder("never reached").Build(),
	).Build()
	require.NoError(t, app.Schemes.Create(ctx, scheme))

	provider := &models.Provider{Name: "AAP", RoutingScheme: scheme.ID}
	require.NoError(t, app.Storage.CreateProvider(ctx, provider))

	sub := app.RedisClient.Subscribe(ctx, app.RedisClient.Key(redis.PublishedChannel))
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.RunIngest(ctx) }()

	queue := app.RedisClient.Key(redis.IngestQueue)
	require.NoError(t, app.RedisClient.Push(ctx, queue, ingest.Envelope{Item: testutil.TextItem("i1"), ProviderID: provider.ID}))
	require.NoError(t, app.RedisClient.Push(ctx, queue, ingest.Envelope{
		Item:       &models.Item{ID: "i2", Type: "picture"},
		ProviderID: provider.ID,
	}))

	var routed []*models.RoutedItem
	require.Eventually(t, func() bool {
		routed, err = app.Storage.ListRoutedItems(ctx, "i1")
		return err == nil && len(routed) == 2
	}, 5*time.Second, 20*time.Millisecond)

	actions := []string{routed[0].Action, routed[1].Action}
	assert.ElementsMatch(t, []string{models.ActionFetch, models.ActionPublish}, actions)
	assert.Equal(t, "text to sport", routed[0].RuleName)

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, `"item_id":"i1"`)
	case <-time.After(5 * time.Second):
		t.Fatal("no publish notification")
	}

	// i2 is a picture, so only the second rule applies.
	require.Eventually(t, func() bool {
		items, err := app.Storage.ListRoutedItems(ctx, "i2")
		return err == nil && len(items) == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ingest did not stop")
	}
}
