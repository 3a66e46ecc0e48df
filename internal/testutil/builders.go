package testutil

import (
	"content-router/internal/models"
)

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// RuleBuilder helps build test routing rules
type RuleBuilder struct {
	rule models.RoutingRule
}

// NewRuleBuilder starts a rule with the given name and a single fetch action.
func NewRuleBuilder(name string) *RuleBuilder {
	return &RuleBuilder{
		rule: models.RoutingRule{
			Name:    name,
			Actions: &models.ActionSet{Fetch: []models.FetchAction{{Desk: "desk-1", Stage: "incoming"}}},
		},
	}
}

func (b *RuleBuilder) WithHandler(handler string) *RuleBuilder {
	b.rule.Handler = handler
	return b
}

func (b *RuleBuilder) WithFilter(filterID string) *RuleBuilder {
	b.rule.Filter = StringPtr(filterID)
	return b
}

func (b *RuleBuilder) WithActions(actions *models.ActionSet) *RuleBuilder {
	b.rule.Actions = actions
	return b
}

func (b *RuleBuilder) WithPublish(actions ...models.PublishAction) *RuleBuilder {
	if b.rule.Actions == nil {
		b.rule.Actions = &models.ActionSet{}
	}
	b.rule.Actions.Publish = actions
	return b
}

func (b *RuleBuilder) WithExit(exit bool) *RuleBuilder {
	if b.rule.Actions == nil {
		b.rule.Actions = &models.ActionSet{}
	}
	b.rule.Actions.Exit = BoolPtr(exit)
	return b
}

func (b *RuleBuilder) WithSchedule(s *models.Schedule) *RuleBuilder {
	b.rule.Schedule = s
	return b
}

func (b *RuleBuilder) WithUnknownFields(fields ...string) *RuleBuilder {
	b.rule.UnknownFields = fields
	return b
}

func (b *RuleBuilder) Build() models.RoutingRule {
	return b.rule
}

// SchemeBuilder helps build test routing schemes
type SchemeBuilder struct {
	scheme *models.RoutingScheme
}

// NewSchemeBuilder creates a scheme with the given name and no rules.
func NewSchemeBuilder(name string) *SchemeBuilder {
	return &SchemeBuilder{
		scheme: &models.RoutingScheme{Name: name},
	}
}

func (b *SchemeBuilder) WithID(id string) *SchemeBuilder {
	b.scheme.ID = id
	return b
}

func (b *SchemeBuilder) WithRules(rules ...models.RoutingRule) *SchemeBuilder {
	b.scheme.Rules = append(b.scheme.Rules, rules...)
	return b
}

func (b *SchemeBuilder) Build() *models.RoutingScheme {
	return b.scheme
}
