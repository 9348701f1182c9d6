package service

import (
	"context"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/events"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
)

// ShoppingService loads and saves the shopping list
type ShoppingService struct {
	store     ShoppingStore
	publisher *events.ShelfEventPublisher
	logger    *logger.Logger
}

// NewShoppingService creates a new shopping list service
func NewShoppingService(store ShoppingStore, publisher *events.ShelfEventPublisher, log *logger.Logger) *ShoppingService {
	return &ShoppingService{store: store, publisher: publisher, logger: log}
}

// Load returns the owner's list; never nil slices
func (s *ShoppingService) Load(ctx context.Context, ownerID string) (*domain.ShoppingList, error) {
	return s.store.Load(ctx, ownerID)
}

// Save sanitizes list and replaces the stored one. An empty list deletes everything.
func (s *ShoppingService) Save(ctx context.Context, ownerID string, list domain.ShoppingList) (*domain.ShoppingList, error) {
	list.Sanitize()

	if _, err := s.store.ReplaceAll(ctx, ownerID, list); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("owner_id", ownerID).Int("groups", len(list.Groups)).Int("items", len(list.Items)).
		Msg("shopping list saved")
	s.publisher.PublishShoppingSaved(ctx, ownerID, &list)
	return &list, nil
}
