package routing

import (
	"context"

	"content-router/internal/models"
)

// RuleHandler carries out the actions of a routing rule.
type RuleHandler interface {
	// Name is the id rules use to select this handler.
	Name() string

	// CanHandle reports whether the handler accepts the item under this rule.
	// It must not have side effects.
	CanHandle(rule *models.RoutingRule, item *models.Item, scheme *models.RoutingScheme) bool

	// ApplyRule performs the rule's actions on the item.
	ApplyRule(ctx context.Context, rule *models.RoutingRule, item *models.Item, scheme *models.RoutingScheme) error
}

// FilterMatcher evaluates a rule's content filter against an item. A nil or
// empty filter reference matches every item.
type FilterMatcher interface {
	DoesMatch(ctx context.Context, filterRef *string, item *models.Item) (bool, error)
}

// Router applies a provider's routing scheme to an item.
type Router interface {
	ApplyRoutingScheme(ctx context.Context, item *models.Item, provider *models.Provider, scheme *models.RoutingScheme) (*RoutingResult, error)
}

// SkipReason explains why a scheduled rule was not applied.
type SkipReason string

const (
	// SkipHandlerDeclined means the handler's CanHandle returned false.
	SkipHandlerDeclined SkipReason = "handler_declined"
	// SkipFilterMismatch means the rule's content filter did not match.
	SkipFilterMismatch SkipReason = "filter_mismatch"
)

// SkippedRule is a scheduled rule that was passed over.
type SkippedRule struct {
	Rule   string     `json:"rule"`
	Reason SkipReason `json:"reason"`
}

// RoutingResult summarises one evaluation of a scheme.
type RoutingResult struct {
	ItemID     string        `json:"item_id"`
	SchemeID   string        `json:"scheme_id"`
	ProviderID string        `json:"provider_id,omitempty"`
	Scheduled  []string      `json:"scheduled"`
	Applied    []string      `json:"applied"`
	Skipped    []SkippedRule `json:"skipped,omitempty"`
	ExitedAt   string        `json:"exited_at,omitempty"`
}

// Exited reports whether a rule with exit=true stopped evaluation.
func (r *RoutingResult) Exited() bool {
	return r.ExitedAt != ""
}
