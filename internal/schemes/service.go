package schemes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"content-router/internal/common/cache"
	"content-router/internal/common/errors"
	"content-router/internal/common/logging"
	"content-router/internal/models"
)

// Store is the slice of storage.Store the service needs.
type Store interface {
	CreateScheme(ctx context.Context, scheme *models.RoutingScheme) error
	GetScheme(ctx context.Context, id string) (*models.RoutingScheme, error)
	GetSchemeByName(ctx context.Context, name string) (*models.RoutingScheme, error)
	ListSchemes(ctx context.Context) ([]*models.RoutingScheme, error)
	UpdateScheme(ctx context.Context, scheme *models.RoutingScheme) error
	DeleteScheme(ctx context.Context, id string) error
	IsSchemeReferenced(ctx context.Context, schemeID string) (bool, error)
}

// Locker serializes scheme mutations across instances.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLocker makes Create, Update and Delete hold a distributed lock on the
// scheme id or name they touch.
func WithLocker(l Locker) ServiceOption {
	return func(s *Service) {
		s.locker = l
	}
}

// Service is the validated entry point for scheme mutations and the cached
// read path used during routing.
type Service struct {
	store     Store
	validator *Validator
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    logging.Logger
	locker    Locker
}

// NewService creates a Service. c may be nil to disable caching.
func NewService(store Store, validator *Validator, c cache.Cache, cacheTTL time.Duration, logger logging.Logger, opts ...ServiceOption) *Service {
	if validator == nil {
		validator = NewValidator()
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	s := &Service{
		store:     store,
		validator: validator,
		cache:     c,
		cacheTTL:  cacheTTL,
		logger:    logger.WithFields(logging.Field{Key: "component", Value: "scheme_service"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(id string) string {
	return "scheme:" + id
}

func nameLockKey(name string) string {
	return "scheme-name:" + strings.ToLower(strings.TrimSpace(name))
}

func (s *Service) lock(ctx context.Context, key string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	unlock, err := s.locker.Lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", key, err)
	}
	return unlock, nil
}

// Create validates scheme and persists it. The store assigns the id.
func (s *Service) Create(ctx context.Context, scheme *models.RoutingScheme) error {
	if err := s.validator.ValidateCreate(scheme); err != nil {
		return err
	}

	unlock, err := s.lock(ctx, nameLockKey(scheme.Name))
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.ensureNameFree(ctx, scheme.Name, ""); err != nil {
		return err
	}

	if err := s.store.CreateScheme(ctx, scheme); err != nil {
		return fmt.Errorf("failed to create routing scheme: %w", err)
	}

	s.logger.Info("Routing scheme created",
		logging.String("scheme_id", scheme.ID),
		logging.String("scheme_name", scheme.Name),
		logging.Int("rules", len(scheme.Rules)),
	)
	return nil
}

// Update replaces the stored scheme with the same id after validating the
// new document.
func (s *Service) Update(ctx context.Context, scheme *models.RoutingScheme) error {
	unlock, err := s.lock(ctx, cacheKey(scheme.ID))
	if err != nil {
		return err
	}
	defer unlock()

	original, err := s.store.GetScheme(ctx, scheme.ID)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(scheme); err != nil {
		return err
	}

	if !strings.EqualFold(original.Name, scheme.Name) {
		unlockName, err := s.lock(ctx, nameLockKey(scheme.Name))
		if err != nil {
			return err
		}
		defer unlockName()

		if err := s.ensureNameFree(ctx, scheme.Name, scheme.ID); err != nil {
			return err
		}
	}

	scheme.CreatedAt = original.CreatedAt
	if err := s.store.UpdateScheme(ctx, scheme); err != nil {
		return fmt.Errorf("failed to update routing scheme: %w", err)
	}

	s.invalidate(ctx, scheme.ID)
	s.logger.Info("Routing scheme updated",
		logging.String("scheme_id", scheme.ID),
		logging.String("scheme_name", scheme.Name),
	)
	return nil
}

// Delete removes a scheme unless a provider still routes through it.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock, err := s.lock(ctx, cacheKey(id))
	if err != nil {
		return err
	}
	defer unlock()

	scheme, err := s.store.GetScheme(ctx, id)
	if err != nil {
		return err
	}

	referenced, err := s.store.IsSchemeReferenced(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check routing scheme references: %w", err)
	}
	if referenced {
		return conflict(SchemeInUse, "routing scheme %q is in use by an ingest provider", scheme.Name).
			WithContext("scheme_id", id)
	}

	if err := s.store.DeleteScheme(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.logger.Info("Routing scheme deleted", logging.String("scheme_id", id))
	return nil
}

// Get returns a scheme, reading through the cache when one is configured.
func (s *Service) Get(ctx context.Context, id string) (*models.RoutingScheme, error) {
	if s.cache != nil {
		var cached models.RoutingScheme
		found, err := s.cache.Get(ctx, cacheKey(id), &cached)
		if err != nil {
			s.logger.Warn("Scheme cache read failed",
				logging.String("scheme_id", id),
				logging.Err(err),
			)
		}
		if found {
			return &cached, nil
		}
	}

	scheme, err := s.store.GetScheme(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(id), scheme, s.cacheTTL); err != nil {
			s.logger.Warn("Scheme cache write failed",
				logging.String("scheme_id", id),
				logging.Err(err),
			)
		}
	}
	return scheme, nil
}

// List returns every stored scheme.
func (s *Service) List(ctx context.Context) ([]*models.RoutingScheme, error) {
	return s.store.ListSchemes(ctx)
}

func (s *Service) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.store.GetSchemeByName(ctx, name)
	if err != nil {
		if errors.IsType(err, errors.ErrTypeNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up routing scheme name: %w", err)
	}
	if existing.ID == selfID {
		return nil
	}
	return invalid(DuplicateSchemeName, "routing scheme name %q is already taken", name)
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.logger.Warn("Scheme cache invalidation failed",
			logging.String("scheme_id", id),
			logging.Err(err),
		)
	}
}
