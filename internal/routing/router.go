package routing

import (
	"context"
	"fmt"
	"time"

	"content-router/internal/common/logging"
	"content-router/internal/models"
	"content-router/internal/schedule"
)

// SchemeRouter evaluates routing schemes. Its only state is the read-only
// handler registry, the filter matcher and the clock.
type SchemeRouter struct {
	registry       *HandlerRegistry
	matcher        FilterMatcher
	logger         logging.Logger
	clock          func() time.Time
	defaultHandler string
}

// Option configures a SchemeRouter.
type Option func(*SchemeRouter)

// WithClock replaces time.Now as the source of the evaluation instant.
func WithClock(clock func() time.Time) Option {
	return func(r *SchemeRouter) {
		r.clock = clock
	}
}

// WithDefaultHandler sets the handler used by rules that name none.
func WithDefaultHandler(name string) Option {
	return func(r *SchemeRouter) {
		if name != "" {
			r.defaultHandler = name
		}
	}
}

// NewSchemeRouter creates a router dispatching to the handlers in registry.
func NewSchemeRouter(registry *HandlerRegistry, matcher FilterMatcher, logger logging.Logger, opts ...Option) *SchemeRouter {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	r := &SchemeRouter{
		registry:       registry,
		matcher:        matcher,
		logger:         logger.WithFields(logging.Field{Key: "component", Value: "scheme_router"}),
		clock:          time.Now,
		defaultHandler: models.DefaultRuleHandler,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ApplyRoutingScheme applies scheme to item on behalf of provider.
//
// Rules run in scheme order. The first handler error aborts evaluation and is
// returned wrapped; rules after it are not attempted. The scheme is not
// modified.
func (r *SchemeRouter) ApplyRoutingScheme(ctx context.Context, item *models.Item, provider *models.Provider, scheme *models.RoutingScheme) (*RoutingResult, error) {
	result := &RoutingResult{
		Scheduled: []string{},
		Applied:   []string{},
	}
	if item != nil {
		result.ItemID = item.ID
	}
	if provider != nil {
		result.ProviderID = provider.ID
	}
	if scheme == nil {
		return result, fmt.Errorf("routing scheme is nil")
	}
	result.SchemeID = scheme.ID

	logger := r.logger.WithFields(
		logging.String("scheme_id", scheme.ID),
		logging.String("item_id", result.ItemID),
	)

	if len(scheme.Rules) == 0 {
		logger.Warn("Routing scheme has no rules", logging.String("scheme_name", scheme.Name))
		return result, nil
	}

	now := r.clock().UTC()
	rules := schedule.ScheduledRules(scheme.Rules, now)
	for _, rule := range rules {
		result.Scheduled = append(result.Scheduled, rule.Name)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	// Once the first rule starts the pass runs to completion, an exit or a
	// handler failure. Cancelling ctx mid-pass does not reach handlers.
	ctx = context.WithoutCancel(ctx)

	for i := range rules {

		rule := &rules[i]
		handlerID := rule.HandlerName(r.defaultHandler)
		handler, err := r.registry.Get(handlerID)
		if err != nil {
			return result, fmt.Errorf("routing rule %q: %w", rule.Name, err)
		}

		if !handler.CanHandle(rule, item, scheme) {
			logger.Info("Handler declined item",
				logging.String("rule", rule.Name),
				logging.String("handler", handlerID),
			)
			result.Skipped = append(result.Skipped, SkippedRule{Rule: rule.Name, Reason: SkipHandlerDeclined})
			continue
		}

		matched, err := r.matcher.DoesMatch(ctx, rule.Filter, item)
		if err != nil {
			return result, fmt.Errorf("content filter of routing rule %q: %w", rule.Name, err)
		}
		if !matched {
			logger.Info("Item does not match rule filter", logging.String("rule", rule.Name))
			result.Skipped = append(result.Skipped, SkippedRule{Rule: rule.Name, Reason: SkipFilterMismatch})
			continue
		}

		if err := handler.ApplyRule(ctx, rule, item, scheme); err != nil {
			logger.Error("Routing rule failed", err,
				logging.String("rule", rule.Name),
				logging.String("handler", handlerID),
			)
			return result, fmt.Errorf("routing rule %q failed: %w", rule.Name, err)
		}
		result.Applied = append(result.Applied, rule.Name)

		if rule.ShouldExit() {
			logger.Debug("Routing stopped by exit action", logging.String("rule", rule.Name))
			result.ExitedAt = rule.Name
			break
		}
	}

	return result, nil
}
