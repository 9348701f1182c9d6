package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/pkg/errors"
)

// MemItemStore is an in-memory item store for service and handler tests
type MemItemStore struct {
	mu      sync.Mutex
	byOwner map[string][]domain.Item
	// Err fails list and replace calls when set
	Err error
}

func NewMemItemStore() *MemItemStore {
	return &MemItemStore{byOwner: map[string][]domain.Item{}}
}

func (m *MemItemStore) Seed(owner string, items ...domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byOwner[owner] = append(m.byOwner[owner], items...)
}

func (m *MemItemStore) ListByOwner(_ context.Context, owner string) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]domain.Item{}, m.byOwner[owner]...), nil
}

func (m *MemItemStore) ReplaceAllForOwner(_ context.Context, owner string, items []domain.Item) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	rows := make([]domain.Item, len(items))
	for i, it := range items {
		it.OwnerID = owner
		it.Position = i
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		rows[i] = it
	}
	m.byOwner[owner] = rows
	return len(rows), nil
}

func (m *MemItemStore) Create(_ context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = uuid.New().String()
	item.Position = len(m.byOwner[item.OwnerID])
	m.byOwner[item.OwnerID] = append(m.byOwner[item.OwnerID], *item)
	return nil
}

func (m *MemItemStore) GetByID(_ context.Context, owner, id string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.byOwner[owner] {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, errors.NotFound("item")
}

func (m *MemItemStore) Update(_ context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.byOwner[item.OwnerID]
	for i := range rows {
		if rows[i].ID == item.ID {
			item.Position = rows[i].Position
			rows[i] = *item
			return nil
		}
	}
	return errors.NotFound("item")
}

func (m *MemItemStore) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.byOwner[owner]
	for i := range rows {
		if rows[i].ID == id {
			m.byOwner[owner] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("item")
}

func (m *MemItemStore) ListOwners(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var owners []string
	for owner, rows := range m.byOwner {
		for _, it := range rows {
			if it.ExpiryDate != nil {
				owners = append(owners, owner)
				break
			}
		}
	}
	sort.Strings(owners)
	return owners, nil
}

// MemSettingsStore keeps thresholds in a map
type MemSettingsStore struct {
	ByOwner map[string]domain.Thresholds
}

func NewMemSettingsStore() *MemSettingsStore {
	return &MemSettingsStore{ByOwner: map[string]domain.Thresholds{}}
}

func (m *MemSettingsStore) GetThresholds(_ context.Context, owner string) (*domain.Thresholds, error) {
	th, ok := m.ByOwner[owner]
	if !ok {
		return nil, nil
	}
	return &th, nil
}

func (m *MemSettingsStore) SaveThresholds(_ context.Context, owner string, th domain.Thresholds) (*domain.Thresholds, error) {
	m.ByOwner[owner] = th
	return &th, nil
}

// MemShoppingStore keeps whole shopping lists in a map
type MemShoppingStore struct {
	byOwner map[string]domain.ShoppingList
}

// NewMemShoppingStore creates an empty shopping store
func NewMemShoppingStore() *MemShoppingStore {
	return &MemShoppingStore{byOwner: map[string]domain.ShoppingList{}}
}

func (m *MemShoppingStore) Load(_ context.Context, owner string) (*domain.ShoppingList, error) {
	list, ok := m.byOwner[owner]
	if !ok {
		return &domain.ShoppingList{Groups: []domain.ShoppingGroup{}, Items: []domain.ShoppingItem{}}, nil
	}
	return &list, nil
}

func (m *MemShoppingStore) ReplaceAll(_ context.Context, owner string, list domain.ShoppingList) (int, error) {
	m.byOwner[owner] = list
	return len(list.Items), nil
}

// StubExtractor returns canned model output
type StubExtractor struct {
	Text       []byte
	Image      []byte
	Transcript string
	Err        error

	GotText  string
	GotToday domain.Date
}

func (s *StubExtractor) ParseText(_ context.Context, text string, today domain.Date) ([]byte, error) {
	s.GotText, s.GotToday = text, today
	return s.Text, s.Err
}

func (s *StubExtractor) AnalyzeImage(_ context.Context, _ []byte, _ string, today domain.Date) ([]byte, error) {
	s.GotToday = today
	return s.Image, s.Err
}

func (s *StubExtractor) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	return s.Transcript, s.Err
}

// QuotaError mimics an upstream error that knows about rate limits
type QuotaError struct{ Limited bool }

func (e *QuotaError) Error() string     { return "upstream status" }
func (e *QuotaError) RateLimited() bool { return e.Limited }
