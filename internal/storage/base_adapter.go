package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"content-router/internal/common/errors"
	"content-router/internal/models"

	"github.com/lucsky/cuid"
)

// Placeholder selects the bind parameter syntax of a SQL dialect.
type Placeholder int

const (
	// Question binds parameters as ?, as SQLite does.
	Question Placeholder = iota
	// Dollar binds parameters as $1, $2, ..., as PostgreSQL does.
	Dollar
)

// BaseAdapter implements Store over database/sql. Backend packages open the
// connection, run their migrations and embed a BaseAdapter for the queries,
// which are written with ? placeholders and rebound per dialect.
type BaseAdapter struct {
	db          *sql.DB
	placeholder Placeholder
	now         func() time.Time
}

// NewBaseAdapter wraps an open database.
func NewBaseAdapter(db *sql.DB, placeholder Placeholder) *BaseAdapter {
	return &BaseAdapter{
		db:          db,
		placeholder: placeholder,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// DB returns the underlying connection pool.
func (b *BaseAdapter) DB() *sql.DB {
	return b.db
}

func (b *BaseAdapter) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *BaseAdapter) Health() error {
	return b.db.Ping()
}

// rebind rewrites ? placeholders for the adapter's dialect.
func (b *BaseAdapter) rebind(query string) string {
	if b.placeholder != Dollar {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (b *BaseAdapter) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return b.db.ExecContext(ctx, b.rebind(query), args...)
}

// execOne runs a statement that must touch exactly one row.
func (b *BaseAdapter) execOne(ctx context.Context, resource, query string, args ...interface{}) error {
	res, err := b.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFoundError(resource)
	}
	return nil
}

func marshalJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Routing schemes

const schemeColumns = `id, name, rules, created_at, updated_at`

func (b *BaseAdapter) CreateScheme(ctx context.Context, scheme *models.RoutingScheme) error {
	if scheme.ID == "" {
		scheme.ID = cuid.New()
	}
	now := b.now()
	scheme.CreatedAt = now
	scheme.UpdatedAt = now

	rules, err := marshalJSON(scheme.Rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	_, err = b.exec(ctx,
		`INSERT INTO routing_schemes (`+schemeColumns+`) VALUES (?, ?, ?, ?, ?)`,
		scheme.ID, scheme.Name, rules, scheme.CreatedAt, scheme.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create routing scheme: %w", err)
	}
	return nil
}

func (b *BaseAdapter) scanScheme(row interface{ Scan(...interface{}) error }) (*models.RoutingScheme, error) {
	scheme := &models.RoutingScheme{}
	var rules string
	if err := row.Scan(&scheme.ID, &scheme.Name, &rules, &scheme.CreatedAt, &scheme.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rules), &scheme.Rules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rules of scheme %s: %w", scheme.ID, err)
	}
	return scheme, nil
}

func (b *BaseAdapter) getSchemeWhere(ctx context.Context, where string, arg interface{}) (*models.RoutingScheme, error) {
	row := b.db.QueryRowContext(ctx, b.rebind(`SELECT `+schemeColumns+` FROM routing_schemes WHERE `+where), arg)
	scheme, err := b.scanScheme(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundError("routing scheme")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get routing scheme: %w", err)
	}
	return scheme, nil
}

func (b *BaseAdapter) GetScheme(ctx context.Context, id string) (*models.RoutingScheme, error) {
	return b.getSchemeWhere(ctx, `id = ?`, id)
}

func (b *BaseAdapter) GetSchemeByName(ctx context.Context, name string) (*models.RoutingScheme, error) {
	return b.getSchemeWhere(ctx, `LOWER(name) = LOWER(?)`, name)
}

func (b *BaseAdapter) ListSchemes(ctx context.Context) ([]*models.RoutingScheme, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT `+schemeColumns+` FROM routing_schemes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list routing schemes: %w", err)
	}
	defer rows.Close()

	var schemes []*models.RoutingScheme
	for rows.Next() {
		scheme, err := b.scanScheme(rows)
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, scheme)
	}
	return schemes, rows.Err()
}

func (b *BaseAdapter) UpdateScheme(ctx context.Context, scheme *models.RoutingScheme) error {
	scheme.UpdatedAt = b.now()

	rules, err := marshalJSON(scheme.Rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	return b.execOne(ctx, "routing scheme",
		`UPDATE routing_schemes SET name = ?, rules = ?, updated_at = ? WHERE id = ?`,
		scheme.Name, rules, scheme.UpdatedAt, scheme.ID)
}

func (b *BaseAdapter) DeleteScheme(ctx context.Context, id string) error {
	return b.execOne(ctx, "routing scheme", `DELETE FROM routing_schemes WHERE id = ?`, id)
}

// Providers

func (b *BaseAdapter) CreateProvider(ctx context.Context, provider *models.Provider) error {
	if provider.ID == "" {
		provider.ID = cuid.New()
	}
	now := b.now()
	provider.CreatedAt = now
	provider.UpdatedAt = now

	_, err := b.exec(ctx,
		`INSERT INTO providers (id, name, routing_scheme, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		provider.ID, provider.Name, provider.RoutingScheme, provider.CreatedAt, provider.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	return nil
}

func (b *BaseAdapter) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	provider := &models.Provider{}
	err := b.db.QueryRowContext(ctx,
		b.rebind(`SELECT id, name, routing_scheme, created_at, updated_at FROM providers WHERE id = ?`), id).
		Scan(&provider.ID, &provider.Name, &provider.RoutingScheme, &provider.CreatedAt, &provider.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundError("provider")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return provider, nil
}

func (b *BaseAdapter) IsSchemeReferenced(ctx context.Context, schemeID string) (bool, error) {
	var count int
	err := b.db.QueryRowContext(ctx,
		b.rebind(`SELECT COUNT(*) FROM providers WHERE routing_scheme = ?`), schemeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check scheme references: %w", err)
	}
	return count > 0, nil
}

// Content filters

func (b *BaseAdapter) CreateContentFilter(ctx context.Context, filter *models.ContentFilter) error {
	if filter.ID == "" {
		filter.ID = cuid.New()
	}
	filter.CreatedAt = b.now()

	_, err := b.exec(ctx,
		`INSERT INTO content_filters (id, name, expression, created_at) VALUES (?, ?, ?, ?)`,
		filter.ID, filter.Name, filter.Expression, filter.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create content filter: %w", err)
	}
	return nil
}

func (b *BaseAdapter) GetContentFilter(ctx context.Context, id string) (*models.ContentFilter, error) {
	filter := &models.ContentFilter{}
	err := b.db.QueryRowContext(ctx,
		b.rebind(`SELECT id, name, expression, created_at FROM content_filters WHERE id = ?`), id).
		Scan(&filter.ID, &filter.Name, &filter.Expression, &filter.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundError("content filter")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content filter: %w", err)
	}
	return filter, nil
}

// Routed items

// routedItemPayload holds the list and map columns of a routed item.
type routedItemPayload struct {
	TargetSubscribers []string               `json:"target_subscribers,omitempty"`
	TargetTypes       []string               `json:"target_types,omitempty"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
}

func (b *BaseAdapter) CreateRoutedItem(ctx context.Context, item *models.RoutedItem) error {
	if item.ID == "" {
		item.ID = cuid.New()
	}
	item.CreatedAt = b.now()

	payload, err := marshalJSON(routedItemPayload{
		TargetSubscribers: item.TargetSubscribers,
		TargetTypes:       item.TargetTypes,
		Extra:             item.Extra,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal routed item payload: %w", err)
	}

	_, err = b.exec(ctx,
		`INSERT INTO routed_items (id, item_id, scheme_id, rule_name, action, desk, stage, macro, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.ItemID, item.SchemeID, item.RuleName, item.Action,
		item.Desk, item.Stage, item.Macro, payload, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create routed item: %w", err)
	}
	return nil
}

func (b *BaseAdapter) ListRoutedItems(ctx context.Context, itemID string) ([]*models.RoutedItem, error) {
	rows, err := b.db.QueryContext(ctx, b.rebind(
		`SELECT id, item_id, scheme_id, rule_name, action, desk, stage, macro, payload, created_at
		 FROM routed_items WHERE item_id = ? ORDER BY created_at, id`), itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list routed items: %w", err)
	}
	defer rows.Close()

	var items []*models.RoutedItem
	for rows.Next() {
		item := &models.RoutedItem{}
		var payload string
		if err := rows.Scan(&item.ID, &item.ItemID, &item.SchemeID, &item.RuleName, &item.Action,
			&item.Desk, &item.Stage, &item.Macro, &payload, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan routed item: %w", err)
		}

		var p routedItemPayload
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal routed item payload: %w", err)
		}
		item.TargetSubscribers = p.TargetSubscribers
		item.TargetTypes = p.TargetTypes
		item.Extra = p.Extra

		items = append(items, item)
	}
	return items, rows.Err()
}
