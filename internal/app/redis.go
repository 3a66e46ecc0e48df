package app

import (
	"content-router/internal/common/cache"
	"content-router/internal/common/logging"
	"content-router/internal/redis"
)

func (app *App) initializeRedis() error {
	if app.Config.RedisAddress == "" {
		app.Logger.Info("Redis: Not configured (ingest queue and publish notifications disabled)")
		return nil
	}

	redisConfig := &redis.Config{
		Address:   app.Config.RedisAddress,
		Password:  app.Config.RedisPassword,
		DB:        app.Config.RedisDBNumber(),
		PoolSize:  app.Config.RedisPoolSizeNumber(),
		KeyPrefix: app.Config.RedisKeyPrefix,
	}

	redisClient, err := redis.NewClient(redisConfig)
	if err != nil {
		return err
	}

	app.RedisClient = redisClient
	app.Logger.Info("Redis: Connected", logging.String("address", app.Config.RedisAddress))
	return nil
}

// initializeCache picks a two-tier scheme cache when Redis is up and a
// process-local one otherwise.
func (app *App) initializeCache() {
	var opts cache.Options
	if app.RedisClient != nil {
		opts = cache.ForDeployment(app.RedisClient.Redis(), app.RedisClient.Key("cache")+":", app.Config.SchemeCacheDuration())
	} else {
		opts = cache.ForDeployment(nil, "", app.Config.SchemeCacheDuration())
	}

	c, err := opts.Build()
	if err != nil {
		app.Logger.Warn("Scheme cache disabled", logging.Err(err))
		return
	}
	app.Cache = c
	app.Logger.Info("Scheme cache: Enabled",
		logging.String("backend", string(opts.Backend)),
		logging.Duration("ttl", opts.DefaultTTL),
	)
}
