package service

import (
	"context"
	"fmt"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/collection"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/events"
	"github.com/trackshelf/trackshelf-backend/pkg/errors"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
)

// ShelfService handles the owner's items and thresholds
type ShelfService struct {
	items     ItemStore
	settings  SettingsStore
	catalog   *domain.Catalog
	clock     Clock
	defaults  domain.Thresholds
	publisher *events.ShelfEventPublisher
	logger    *logger.Logger
}

// NewShelfService creates a new shelf service. defaults apply to owners
// without stored thresholds.
func NewShelfService(
	items ItemStore,
	settings SettingsStore,
	catalog *domain.Catalog,
	clock Clock,
	defaults domain.Thresholds,
	publisher *events.ShelfEventPublisher,
	log *logger.Logger,
) *ShelfService {
	return &ShelfService{
		items:     items,
		settings:  settings,
		catalog:   catalog,
		clock:     clock,
		defaults:  defaults.Clamp(),
		publisher: publisher,
		logger:    log,
	}
}

// ItemView is the annotated, filtered and sorted shelf
type ItemView struct {
	Items      []collection.Entry `json:"items"`
	Summary    collection.Summary `json:"summary"`
	Thresholds domain.Thresholds  `json:"thresholds"`
	Today      domain.Date        `json:"today"`
}

// ListItems loads the shelf and applies q. The summary counts the whole shelf,
// not just the filtered entries.
func (s *ShelfService) ListItems(ctx context.Context, ownerID string, q collection.Query) (*ItemView, error) {
	items, err := s.items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	th, err := s.GetThresholds(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	return &ItemView{
		Items:      collection.Apply(items, q, today, th),
		Summary:    collection.Summarize(collection.Annotate(items, today, th)),
		Thresholds: th,
		Today:      today,
	}, nil
}

// ReplaceAll validates every item and swaps the owner's shelf for them.
// One invalid item rejects the whole save; details are keyed items[index].field.
func (s *ShelfService) ReplaceAll(ctx context.Context, ownerID string, items []domain.Item) (int, error) {
	details := map[string]string{}
	for i := range items {
		items[i].Normalize()
		if err := items[i].Validate(s.catalog); err != nil {
			var appErr *errors.AppError
			if !errors.As(err, &appErr) {
				return 0, err
			}
			for field, msg := range appErr.Details {
				details[fmt.Sprintf("items[%d].%s", i, field)] = msg
			}
		}
	}
	if len(details) > 0 {
		return 0, errors.Validation(details)
	}

	n, err := s.items.ReplaceAllForOwner(ctx, ownerID, items)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Str("owner_id", ownerID).Int("count", n).Msg("shelf replaced")
	s.publisher.PublishItemsReplaced(ctx, ownerID, n)
	return n, nil
}

// GetItem returns one item with its warn level
func (s *ShelfService) GetItem(ctx context.Context, ownerID, id string) (*collection.Entry, error) {
	item, err := s.items.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, ownerID, *item)
}

// CreateItem appends an item to the shelf
func (s *ShelfService) CreateItem(ctx context.Context, ownerID string, item domain.Item) (*collection.Entry, error) {
	item.Normalize()
	item.ID = ""
	item.OwnerID = ownerID
	if err := item.Validate(s.catalog); err != nil {
		return nil, err
	}

	if err := s.items.Create(ctx, &item); err != nil {
		return nil, err
	}

	s.publisher.PublishItemCreated(ctx, &item)
	return s.annotate(ctx, ownerID, item)
}

// UpdateItem overwrites an existing item
func (s *ShelfService) UpdateItem(ctx context.Context, ownerID, id string, item domain.Item) (*collection.Entry, error) {
	item.Normalize()
	item.ID = id
	item.OwnerID = ownerID
	if err := item.Validate(s.catalog); err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, &item); err != nil {
		return nil, err
	}

	s.publisher.PublishItemUpdated(ctx, &item)
	return s.annotate(ctx, ownerID, item)
}

// DeleteItem removes an item
func (s *ShelfService) DeleteItem(ctx context.Context, ownerID, id string) error {
	if err := s.items.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.publisher.PublishItemDeleted(ctx, ownerID, id)
	return nil
}

// GetThresholds returns the stored thresholds, clamped, or the defaults
func (s *ShelfService) GetThresholds(ctx context.Context, ownerID string) (domain.Thresholds, error) {
	stored, err := s.settings.GetThresholds(ctx, ownerID)
	if err != nil {
		return domain.Thresholds{}, err
	}
	if stored == nil {
		return s.defaults, nil
	}
	return stored.Clamp(), nil
}

// SaveThresholds clamps th into range and stores it
func (s *ShelfService) SaveThresholds(ctx context.Context, ownerID string, th domain.Thresholds) (domain.Thresholds, error) {
	stored, err := s.settings.SaveThresholds(ctx, ownerID, th.Clamp())
	if err != nil {
		return domain.Thresholds{}, err
	}

	s.publisher.PublishSettingsUpdated(ctx, ownerID, *stored)
	return *stored, nil
}

func (s *ShelfService) annotate(ctx context.Context, ownerID string, item domain.Item) (*collection.Entry, error) {
	th, err := s.GetThresholds(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	entries := collection.Annotate([]domain.Item{item}, s.clock.Today(), th)
	return &entries[0], nil
}
