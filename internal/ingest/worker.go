// Package ingest consumes ingest envelopes from a Redis list and routes each
// item through its provider's routing scheme.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"content-router/internal/common/errors"
	"content-router/internal/common/logging"
	"content-router/internal/common/ratelimit"
	"content-router/internal/common/validation"
	"content-router/internal/models"
	"content-router/internal/routing"

	"golang.org/x/sync/errgroup"
)

// Envelope is one queued item together with the provider that delivered it.
type Envelope struct {
	Item       *models.Item `json:"item" validate:"required"`
	ProviderID string       `json:"provider_id" validate:"required"`
}

// Queue is a blocking FIFO of encoded envelopes.
type Queue interface {
	Pop(ctx context.Context, key string, timeout time.Duration) ([]byte, bool, error)
}

// ProviderStore resolves ingest providers.
type ProviderStore interface {
	GetProvider(ctx context.Context, id string) (*models.Provider, error)
}

// SchemeSource loads routing schemes by id.
type SchemeSource interface {
	Get(ctx context.Context, id string) (*models.RoutingScheme, error)
}

// Config controls the worker pool.
type Config struct {
	QueueKey   string
	Workers    int
	PopTimeout time.Duration
	// RetryDelay is how long a consumer waits after a queue error.
	RetryDelay time.Duration
	Limiter    *ratelimit.Limiter
}

// Worker runs the ingest consumers.
type Worker struct {
	config    Config
	queue     Queue
	providers ProviderStore
	schemes   SchemeSource
	router    routing.Router
	logger    logging.Logger
}

// NewWorker creates a worker. Zero config values get defaults.
func NewWorker(config Config, queue Queue, providers ProviderStore, schemes SchemeSource, router routing.Router, logger logging.Logger) *Worker {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.PopTimeout <= 0 {
		config.PopTimeout = 5 * time.Second
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Worker{
		config:    config,
		queue:     queue,
		providers: providers,
		schemes:   schemes,
		router:    router,
		logger:    logger.WithFields(logging.String("component", "ingest_worker")),
	}
}

// Run starts the consumers and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Ingest worker started",
		logging.String("queue", w.config.QueueKey),
		logging.Int("workers", w.config.Workers),
	)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.config.Workers; i++ {
		id := i
		g.Go(func() error {
			return w.consume(ctx, id)
		})
	}

	err := g.Wait()
	w.logger.Info("Ingest worker stopped")
	return err
}

func (w *Worker) consume(ctx context.Context, id int) error {
	logger := w.logger.WithFields(logging.Int("consumer", id))

	for {
		if err := w.config.Limiter.Wait(ctx); err != nil {
			return nil
		}

		data, ok, err := w.queue.Pop(ctx, w.config.QueueKey, w.config.PopTimeout)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			logger.Warn("Failed to read ingest queue", logging.Err(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.config.RetryDelay):
			}
			continue
		}
		if !ok {
			continue
		}

		// A popped envelope is no longer queued, so it is routed to the end
		// even when shutdown starts meanwhile.
		if _, err := w.Process(context.WithoutCancel(ctx), data); err != nil {
			logger.Error("Failed to route ingested item", err)
		}
	}
}

// Process routes one encoded envelope. It returns a nil result without error
// when the provider has no routing scheme.
func (w *Worker) Process(ctx context.Context, data []byte) (*routing.RoutingResult, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("malformed ingest envelope: %v", err))
	}
	if err := validation.ValidateStruct(&env); err != nil {
		return nil, err
	}

	provider, err := w.providers.GetProvider(ctx, env.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider %q: %w", env.ProviderID, err)
	}

	ctx = logging.ContextWithRouting(ctx, env.Item.ID, provider.ID, provider.RoutingScheme)
	logger := w.logger.WithContext(ctx)

	if provider.RoutingScheme == "" {
		logger.Debug("Provider has no routing scheme")
		return nil, nil
	}

	scheme, err := w.schemes.Get(ctx, provider.RoutingScheme)
	if err != nil {
		return nil, fmt.Errorf("failed to load routing scheme %q: %w", provider.RoutingScheme, err)
	}

	result, err := w.router.ApplyRoutingScheme(ctx, env.Item, provider, scheme)
	if err != nil {
		return result, err
	}

	logger.Info("Item routed", logging.Strings("applied", result.Applied))
	return result, nil
}
