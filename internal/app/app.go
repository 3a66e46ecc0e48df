package app

import (
	"context"

	"content-router/internal/common/cache"
	"content-router/internal/common/logging"
	"content-router/internal/config"
	"content-router/internal/filters"
	"content-router/internal/ingest"
	"content-router/internal/redis"
	"content-router/internal/routing"
	"content-router/internal/schemes"
	"content-router/internal/storage"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Storage     storage.Store
	RedisClient *redis.Client
	Cache       cache.Cache
	Schemes     *schemes.Service
	Filters     *filters.ExprMatcher
	Handlers    *routing.HandlerRegistry
	Router      *routing.SchemeRouter
	Ingest      *ingest.Worker
	Logger      logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.String("component", "app")),
	}

	// Initialize components in order of dependency
	if err := app.initializeStorage(); err != nil {
		return nil, err
	}

	if err := app.initializeRedis(); err != nil {
		// Redis is optional, just log the error
		app.Logger.Warn("Redis initialization failed, continuing without Redis", logging.Err(err))
	}

	app.initializeCache()

	if err := app.initializeRouting(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeIngest(); err != nil {
		app.Cleanup()
		return nil, err
	}

	return app, nil
}

// RunIngest consumes the ingest queue until ctx is cancelled. Without Redis
// there is no queue and it returns once ctx is done.
func (app *App) RunIngest(ctx context.Context) error {
	if app.Ingest == nil {
		app.Logger.Warn("Ingest queue disabled: Redis is not available")
		<-ctx.Done()
		return nil
	}
	return app.Ingest.Run(ctx)
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.Storage != nil {
		if err := app.Storage.Close(); err != nil {
			app.Logger.Warn("Failed to close storage", logging.Err(err))
		}
	}
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Logger.Warn("Failed to close Redis client", logging.Err(err))
		}
	}
}
