package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"content-router/internal/common/errors"
	"content-router/internal/models"
)

// MockStorage is an in-memory storage.Store for tests.
type MockStorage struct {
	mu          sync.RWMutex
	schemes     map[string]*models.RoutingScheme
	providers   map[string]*models.Provider
	filters     map[string]*models.ContentFilter
	routedItems []*models.RoutedItem
	nextID      int

	// Control error injection
	ErrorOnMethod map[string]error

	// Calls counts invocations per method name.
	Calls map[string]int
}

// NewMockStorage creates a new mock storage instance
func NewMockStorage() *MockStorage {
	return &MockStorage{
		schemes:       make(map[string]*models.RoutingScheme),
		providers:     make(map[string]*models.Provider),
		filters:       make(map[string]*models.ContentFilter),
		nextID:        1,
		ErrorOnMethod: make(map[string]error),
		Calls:         make(map[string]int),
	}
}

// enter records a call and returns the injected error for method, if any.
// Callers must hold mu.
func (m *MockStorage) enter(method string) error {
	m.Calls[method]++
	return m.ErrorOnMethod[method]
}

func (m *MockStorage) id(prefix string) string {
	id := fmt.Sprintf("%s-%d", prefix, m.nextID)
	m.nextID++
	return id
}

// CallCount returns how many times method was called.
func (m *MockStorage) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Calls[method]
}

// Connection management
func (m *MockStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enter("Close")
}

func (m *MockStorage) Health() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enter("Health")
}

// Routing schemes

func cloneScheme(s *models.RoutingScheme) *models.RoutingScheme {
	c := *s
	c.Rules = append([]models.RoutingRule(nil), s.Rules...)
	return &c
}

func (m *MockStorage) CreateScheme(ctx context.Context, scheme *models.RoutingScheme) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("CreateScheme"); err != nil {
		return err
	}
	for _, existing := range m.schemes {
		if strings.EqualFold(existing.Name, scheme.Name) {
			return fmt.Errorf("routing scheme name %q already exists", scheme.Name)
		}
	}

	if scheme.ID == "" {
		scheme.ID = m.id("scheme")
	}
	scheme.CreatedAt = time.Now()
	scheme.UpdatedAt = scheme.CreatedAt
	m.schemes[scheme.ID] = cloneScheme(scheme)
	return nil
}

func (m *MockStorage) GetScheme(ctx context.Context, id string) (*models.RoutingScheme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("GetScheme"); err != nil {
		return nil, err
	}
	scheme, ok := m.schemes[id]
	if !ok {
		return nil, errors.NotFoundError("routing scheme")
	}
	return cloneScheme(scheme), nil
}

func (m *MockStorage) GetSchemeByName(ctx context.Context, name string) (*models.RoutingScheme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("GetSchemeByName"); err != nil {
		return nil, err
	}
	for _, scheme := range m.schemes {
		if strings.EqualFold(scheme.Name, name) {
			return cloneScheme(scheme), nil
		}
	}
	return nil, errors.NotFoundError("routing scheme")
}

func (m *MockStorage) ListSchemes(ctx context.Context) ([]*models.RoutingScheme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("ListSchemes"); err != nil {
		return nil, err
	}
	schemes := make([]*models.RoutingScheme, 0, len(m.schemes))
	for _, scheme := range m.schemes {
		schemes = append(schemes, cloneScheme(scheme))
	}
	sort.Slice(schemes, func(i, j int) bool { return schemes[i].Name < schemes[j].Name })
	return schemes, nil
}

func (m *MockStorage) UpdateScheme(ctx context.Context, scheme *models.RoutingScheme) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("UpdateScheme"); err != nil {
		return err
	}
	if _, ok := m.schemes[scheme.ID]; !ok {
		return errors.NotFoundError("routing scheme")
	}
	scheme.UpdatedAt = time.Now()
	m.schemes[scheme.ID] = cloneScheme(scheme)
	return nil
}

func (m *MockStorage) DeleteScheme(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("DeleteScheme"); err != nil {
		return err
	}
	if _, ok := m.schemes[id]; !ok {
		return errors.NotFoundError("routing scheme")
	}
	delete(m.schemes, id)
	return nil
}

// Providers

func (m *MockStorage) CreateProvider(ctx context.Context, provider *models.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("CreateProvider"); err != nil {
		return err
	}
	if provider.ID == "" {
		provider.ID = m.id("provider")
	}
	p := *provider
	m.providers[provider.ID] = &p
	return nil
}

func (m *MockStorage) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("GetProvider"); err != nil {
		return nil, err
	}
	provider, ok := m.providers[id]
	if !ok {
		return nil, errors.NotFoundError("provider")
	}
	p := *provider
	return &p, nil
}

func (m *MockStorage) IsSchemeReferenced(ctx context.Context, schemeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("IsSchemeReferenced"); err != nil {
		return false, err
	}
	for _, provider := range m.providers {
		if provider.RoutingScheme == schemeID {
			return true, nil
		}
	}
	return false, nil
}

// Content filters

func (m *MockStorage) CreateContentFilter(ctx context.Context, filter *models.ContentFilter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("CreateContentFilter"); err != nil {
		return err
	}
	if filter.ID == "" {
		filter.ID = m.id("filter")
	}
	f := *filter
	m.filters[filter.ID] = &f
	return nil
}

func (m *MockStorage) GetContentFilter(ctx context.Context, id string) (*models.ContentFilter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("GetContentFilter"); err != nil {
		return nil, err
	}
	filter, ok := m.filters[id]
	if !ok {
		return nil, errors.NotFoundError("content filter")
	}
	f := *filter
	return &f, nil
}

// Routed items

func (m *MockStorage) CreateRoutedItem(ctx context.Context, item *models.RoutedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("CreateRoutedItem"); err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = m.id("routed")
	}
	r := *item
	m.routedItems = append(m.routedItems, &r)
	return nil
}

func (m *MockStorage) ListRoutedItems(ctx context.Context, itemID string) ([]*models.RoutedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.enter("ListRoutedItems"); err != nil {
		return nil, err
	}
	var items []*models.RoutedItem
	for _, item := range m.routedItems {
		if item.ItemID == itemID {
			r := *item
			items = append(items, &r)
		}
	}
	return items, nil
}

// RoutedItems returns every routed item written so far, in write order.
func (m *MockStorage) RoutedItems() []*models.RoutedItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.RoutedItem(nil), m.routedItems...)
}
