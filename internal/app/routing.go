package app

import (
	"fmt"
	"time"

	"content-router/internal/circuitbreaker"
	"content-router/internal/common/logging"
	"content-router/internal/common/ratelimit"
	"content-router/internal/filters"
	"content-router/internal/ingest"
	"content-router/internal/locks"
	"content-router/internal/redis"
	"content-router/internal/routing"
	"content-router/internal/routing/handlers"
	"content-router/internal/schemes"
)

func (app *App) initializeRouting() error {
	var handlerOpts []handlers.Option
	if app.RedisClient != nil {
		handlerOpts = append(handlerOpts,
			handlers.WithPublisher(app.RedisClient, app.RedisClient.Key(redis.PublishedChannel)),
			handlers.WithBreaker(circuitbreaker.New("publish_notifications", circuitbreaker.DefaultConfig(), app.Logger)),
		)
	}

	registry, err := routing.NewHandlerRegistry(
		handlers.NewDeskFetchPublish(app.Storage, app.Logger, handlerOpts...),
	)
	if err != nil {
		return fmt.Errorf("failed to register rule handlers: %w", err)
	}
	if !registry.Has(app.Config.DefaultRuleHandler) {
		return fmt.Errorf("default rule handler %q is not registered", app.Config.DefaultRuleHandler)
	}
	app.Handlers = registry

	validator := schemes.NewValidator(
		schemes.WithHandlers(registry),
		schemes.WithDefaultHandler(app.Config.DefaultRuleHandler),
	)
	var serviceOpts []schemes.ServiceOption
	if app.RedisClient != nil {
		locker, err := locks.NewLocker(app.RedisClient, locks.DefaultExpiry, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to create scheme locker: %w", err)
		}
		serviceOpts = append(serviceOpts, schemes.WithLocker(locker))
	}
	app.Schemes = schemes.NewService(app.Storage, validator, app.Cache, app.Config.SchemeCacheDuration(), app.Logger, serviceOpts...)

	app.Filters = filters.NewExprMatcher(app.Storage, 10*time.Minute, app.Logger)
	app.Router = routing.NewSchemeRouter(registry, app.Filters, app.Logger,
		routing.WithDefaultHandler(app.Config.DefaultRuleHandler),
	)

	app.Logger.Info("Routing: Ready", logging.Strings("handlers", registry.Names()))
	return nil
}

func (app *App) initializeIngest() error {
	if app.RedisClient == nil {
		return nil
	}

	limiter, err := ratelimit.NewLimiter(ratelimit.ConfigFor(app.Config.IngestRateLimitPerSecond()))
	if err != nil {
		return fmt.Errorf("invalid ingest rate limit: %w", err)
	}

	app.Ingest = ingest.NewWorker(ingest.Config{
		QueueKey:   app.RedisClient.Key(redis.IngestQueue),
		Workers:    app.Config.IngestWorkerCount(),
		PopTimeout: app.Config.IngestPopTimeoutDuration(),
		Limiter:    limiter,
	}, app.RedisClient, app.Storage, app.Schemes, app.Router, app.Logger)
	return nil
}
