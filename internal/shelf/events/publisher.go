package events

import (
	"context"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
	"github.com/trackshelf/trackshelf-backend/pkg/messaging"
)

// ItemsReplacedEvent is published after a replace-all save
type ItemsReplacedEvent struct {
	OwnerID string `json:"owner_id"`
	Count   int    `json:"count"`
}

// ItemChangedEvent is published for single-item create, update and delete
type ItemChangedEvent struct {
	OwnerID    string `json:"owner_id"`
	ItemID     string `json:"item_id"`
	Name       string `json:"name,omitempty"`
	ExpiryDate string `json:"expiry_date,omitempty"`
}

// SettingsUpdatedEvent carries the stored (clamped) thresholds
type SettingsUpdatedEvent struct {
	OwnerID          string `json:"owner_id"`
	SoonDays         int    `json:"soon_days"`
	ExpiredGraceDays int    `json:"expired_grace_days"`
}

// ShoppingSavedEvent is published after the shopping list was replaced
type ShoppingSavedEvent struct {
	OwnerID string `json:"owner_id"`
	Groups  int    `json:"groups"`
	Items   int    `json:"items"`
}

// DigestItem is one entry of an expiry digest
type DigestItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Unit       string `json:"unit"`
	ExpiryDate string `json:"expiry_date"`
	DaysLeft   int    `json:"days_left"`
}

// ExpiryDigestEvent lists an owner's urgent items for the notification service
type ExpiryDigestEvent struct {
	OwnerID string       `json:"owner_id"`
	Date    string       `json:"date"`
	Soon    []DigestItem `json:"soon"`
	Expired []DigestItem `json:"expired"`
}

// ShelfEventPublisher publishes shelf events. A nil publisher, or one without
// a broker, drops events silently.
type ShelfEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewShelfEventPublisher wraps pub. pub may be nil when RabbitMQ is disabled.
func NewShelfEventPublisher(pub messaging.EventPublisher, log *logger.Logger) *ShelfEventPublisher {
	return &ShelfEventPublisher{publisher: pub, logger: log}
}

func (p *ShelfEventPublisher) publish(ctx context.Context, eventType, ownerID string, data interface{}) {
	if p == nil || p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Str("owner_id", ownerID).Msg("failed to publish event")
	}
}

// PublishItemsReplaced publishes a shelf.items.replaced event
func (p *ShelfEventPublisher) PublishItemsReplaced(ctx context.Context, ownerID string, count int) {
	p.publish(ctx, messaging.EventItemsReplaced, ownerID, ItemsReplacedEvent{OwnerID: ownerID, Count: count})
}

// PublishItemCreated publishes a shelf.item.created event
func (p *ShelfEventPublisher) PublishItemCreated(ctx context.Context, item *domain.Item) {
	p.publish(ctx, messaging.EventItemCreated, item.OwnerID, itemChanged(item))
}

// PublishItemUpdated publishes a shelf.item.updated event
func (p *ShelfEventPublisher) PublishItemUpdated(ctx context.Context, item *domain.Item) {
	p.publish(ctx, messaging.EventItemUpdated, item.OwnerID, itemChanged(item))
}

// PublishItemDeleted publishes a shelf.item.deleted event
func (p *ShelfEventPublisher) PublishItemDeleted(ctx context.Context, ownerID, itemID string) {
	p.publish(ctx, messaging.EventItemDeleted, ownerID, ItemChangedEvent{OwnerID: ownerID, ItemID: itemID})
}

// PublishSettingsUpdated publishes a shelf.settings.updated event
func (p *ShelfEventPublisher) PublishSettingsUpdated(ctx context.Context, ownerID string, th domain.Thresholds) {
	p.publish(ctx, messaging.EventSettingsUpdated, ownerID, SettingsUpdatedEvent{
		OwnerID:          ownerID,
		SoonDays:         th.SoonDays,
		ExpiredGraceDays: th.ExpiredGraceDays,
	})
}

// PublishShoppingSaved publishes a shelf.shopping.saved event
func (p *ShelfEventPublisher) PublishShoppingSaved(ctx context.Context, ownerID string, list *domain.ShoppingList) {
	p.publish(ctx, messaging.EventShoppingSaved, ownerID, ShoppingSavedEvent{
		OwnerID: ownerID,
		Groups:  len(list.Groups),
		Items:   len(list.Items),
	})
}

// PublishExpiryDigest publishes a shelf.expiry.digest event
func (p *ShelfEventPublisher) PublishExpiryDigest(ctx context.Context, digest ExpiryDigestEvent) {
	p.publish(ctx, messaging.EventExpiryDigest, digest.OwnerID, digest)
}

func itemChanged(item *domain.Item) ItemChangedEvent {
	e := ItemChangedEvent{OwnerID: item.OwnerID, ItemID: item.ID, Name: item.Name}
	if item.ExpiryDate != nil {
		e.ExpiryDate = item.ExpiryDate.String()
	}
	return e
}
