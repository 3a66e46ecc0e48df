// Package ratelimit throttles in-process work with golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"
)

// Config represents rate limiter configuration
type Config struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	BurstSize         int     `json:"burst_size"`
	Enabled           bool    `json:"enabled"`
}

// ConfigFor returns an enabled config for perSecond, or a disabled one when
// perSecond is zero.
func ConfigFor(perSecond float64) Config {
	if perSecond <= 0 {
		return Config{}
	}
	return Config{
		RequestsPerSecond: perSecond,
		BurstSize:         int(math.Max(1, math.Ceil(perSecond))),
		Enabled:           true,
	}
}

// Validate validates the rate limiter configuration
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive, got %v", c.RequestsPerSecond)
	}
	if c.BurstSize <= 0 {
		return fmt.Errorf("burst size must be positive, got %d", c.BurstSize)
	}
	return nil
}

// Limiter is a token bucket shared by all callers. A disabled limiter never
// blocks.
type Limiter struct {
	config  Config
	limiter *rate.Limiter
}

// NewLimiter creates a limiter.
func NewLimiter(config Config) (*Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	l := &Limiter{config: config}
	if config.Enabled {
		l.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.BurstSize)
	}
	return l, nil
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

// TryAcquire takes a token without blocking.
func (l *Limiter) TryAcquire() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}

// Enabled reports whether the limiter throttles at all.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limiter != nil
}
