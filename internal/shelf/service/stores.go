package service

import (
	"context"
	"time"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
)

// ItemStore is the item persistence the services need. *repository.ItemRepository implements it.
type ItemStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error)
	ReplaceAllForOwner(ctx context.Context, ownerID string, items []domain.Item) (int, error)
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, ownerID, id string) error
	ListOwners(ctx context.Context) ([]string, error)
}

// SettingsStore persists per-owner thresholds. GetThresholds returns nil when none are stored.
type SettingsStore interface {
	GetThresholds(ctx context.Context, ownerID string) (*domain.Thresholds, error)
	SaveThresholds(ctx context.Context, ownerID string, th domain.Thresholds) (*domain.Thresholds, error)
}

// ShoppingStore persists the shopping list as a whole
type ShoppingStore interface {
	Load(ctx context.Context, ownerID string) (*domain.ShoppingList, error)
	ReplaceAll(ctx context.Context, ownerID string, list domain.ShoppingList) (int, error)
}

// Clock yields "today" in the service's timezone. Tests pass a fixed now.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock uses time.Now when now is nil and UTC when loc is nil.
func NewClock(now func() time.Time, loc *time.Location) Clock {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return Clock{now: now, loc: loc}
}

// Today is the calendar day of now in the configured location
func (c Clock) Today() domain.Date {
	return domain.Today(c.now(), c.loc)
}
