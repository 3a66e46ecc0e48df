// Package cache stores routing documents close to the router.
//
// Three backends share the Cache interface:
//
//  1. LocalCache, in-process, backed by github.com/patrickmn/go-cache.
//  2. RedisCache, shared between instances, backed by github.com/go-redis/redis/v8.
//  3. TwoTierCache, a short-lived local tier in front of Redis.
//
// Values are stored JSON encoded in every backend, so a cached document is a
// copy and mutating it does not affect the cache.
//
// Usage:
//
//	c, err := cache.ForDeployment(redisClient, "content-router:cache:", 5*time.Minute).Build()
//
//	var scheme models.RoutingScheme
//	found, err := c.Get(ctx, "scheme:"+id, &scheme)
package cache
