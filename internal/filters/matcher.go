// Package filters evaluates content filters: named boolean expressions over
// an ingested item, written in expr-lang syntax.
//
//	type == "text" && source in ["AAP", "Reuters"]
//	fields.urgency <= 2 || headline contains "BREAKING"
package filters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"content-router/internal/common/errors"
	"content-router/internal/common/logging"
	"content-router/internal/models"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	gocache "github.com/patrickmn/go-cache"
)

// Store is the storage the matcher needs.
type Store interface {
	GetContentFilter(ctx context.Context, id string) (*models.ContentFilter, error)
	CreateContentFilter(ctx context.Context, filter *models.ContentFilter) error
}

// env is what an expression sees.
type env struct {
	ID       string                 `expr:"id"`
	GUID     string                 `expr:"guid"`
	Type     string                 `expr:"type"`
	Headline string                 `expr:"headline"`
	Source   string                 `expr:"source"`
	Fields   map[string]interface{} `expr:"fields"`
}

func newEnv(item *models.Item) env {
	if item == nil {
		return env{Fields: map[string]interface{}{}}
	}
	fields := item.Fields
	if fields == nil {
		fields = map[string]interface{}{}
	}
	return env{
		ID:       item.ID,
		GUID:     item.GUID,
		Type:     item.Type,
		Headline: item.Headline,
		Source:   item.Source,
		Fields:   fields,
	}
}

func options() []expr.Option {
	return []expr.Option{
		expr.Env(env{}),
		expr.AsBool(),
		expr.DisableBuiltin("now"),
		expr.DisableBuiltin("date"),
	}
}

// Compile checks that expression is a valid boolean filter.
func Compile(expression string) (*vm.Program, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, errors.ValidationError("content filter expression is empty")
	}
	program, err := expr.Compile(expression, options()...)
	if err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("invalid content filter expression: %v", err)).
			WithContext("expression", expression)
	}
	return program, nil
}

// ExprMatcher resolves filter references through the store and evaluates
// them against items. Compiled programs are cached by expression text.
type ExprMatcher struct {
	store    Store
	programs *gocache.Cache
	logger   logging.Logger
}

// NewExprMatcher creates a matcher. A compiled program expires ttl after it
// was compiled, however often it is used in between.
func NewExprMatcher(store Store, ttl time.Duration, logger logging.Logger) *ExprMatcher {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &ExprMatcher{
		store:    store,
		programs: gocache.New(ttl, 2*ttl),
		logger:   logger.WithFields(logging.String("component", "filter_matcher")),
	}
}

// Create validates the filter expression and stores the filter.
func (m *ExprMatcher) Create(ctx context.Context, filter *models.ContentFilter) error {
	if strings.TrimSpace(filter.Name) == "" {
		return errors.ValidationError("content filter must have a name")
	}
	if _, err := Compile(filter.Expression); err != nil {
		return err
	}
	return m.store.CreateContentFilter(ctx, filter)
}

// DoesMatch reports whether item satisfies the filter with id *filterRef.
// A nil or empty reference matches everything. A reference to a filter that
// does not exist is an error.
func (m *ExprMatcher) DoesMatch(ctx context.Context, filterRef *string, item *models.Item) (bool, error) {
	if filterRef == nil || *filterRef == "" {
		return true, nil
	}

	filter, err := m.store.GetContentFilter(ctx, *filterRef)
	if err != nil {
		return false, fmt.Errorf("failed to load content filter %q: %w", *filterRef, err)
	}

	matched, err := m.Match(filter.Expression, item)
	if err != nil {
		return false, fmt.Errorf("content filter %q: %w", filter.Name, err)
	}

	m.logger.Debug("Content filter evaluated",
		logging.String("filter", filter.Name),
		logging.Bool("matched", matched),
	)
	return matched, nil
}

// Match evaluates expression against item.
func (m *ExprMatcher) Match(expression string, item *models.Item) (bool, error) {
	program, err := m.program(expression)
	if err != nil {
		return false, err
	}

	out, err := expr.Run(program, newEnv(item))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate expression: %w", err)
	}

	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression returned %T, expected bool", out)
	}
	return matched, nil
}

func (m *ExprMatcher) program(expression string) (*vm.Program, error) {
	if cached, found := m.programs.Get(expression); found {
		if program, ok := cached.(*vm.Program); ok {
			return program, nil
		}
	}

	program, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	m.programs.SetDefault(expression, program)
	return program, nil
}

// CachedPrograms returns the number of compiled programs held.
func (m *ExprMatcher) CachedPrograms() int {
	return m.programs.ItemCount()
}
