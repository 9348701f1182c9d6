// Package consumers reacts to events from other services.
package consumers

import (
	"context"
	"fmt"
	"strings"

	"github.com/trackshelf/trackshelf-backend/pkg/logger"
	"github.com/trackshelf/trackshelf-backend/pkg/messaging"
)

// OwnerPurger removes all data stored for an owner
type OwnerPurger interface {
	Purge(ctx context.Context, ownerID string) (int64, error)
}

// OwnerEventConsumer deletes a shelf when its account is deleted
type OwnerEventConsumer struct {
	consumer *messaging.Consumer
	purger   OwnerPurger
	logger   *logger.Logger
}

// NewOwnerEventConsumer declares queue, binds it to the account exchange and
// registers the handlers
func NewOwnerEventConsumer(
	rmq *messaging.RabbitMQ,
	exchange, queue string,
	purger OwnerPurger,
	log *logger.Logger,
) (*OwnerEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, queue, log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(exchange, "user.#"); err != nil {
		return nil, err
	}

	c := newOwnerEventConsumer(purger, log)
	c.consumer = consumer
	consumer.RegisterHandler(messaging.EventUserDeleted, c.handleUserDeleted)

	return c, nil
}

func newOwnerEventConsumer(purger OwnerPurger, log *logger.Logger) *OwnerEventConsumer {
	return &OwnerEventConsumer{purger: purger, logger: log}
}

// Start starts consuming messages
func (c *OwnerEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *OwnerEventConsumer) handleUserDeleted(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserDeletedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	ownerID := strings.TrimSpace(data.UserID)
	if ownerID == "" {
		// Nothing to purge; redelivery would not help
		c.logger.Warn().Str("event_id", event.ID).Msg("user deleted event without user id")
		return nil
	}

	removed, err := c.purger.Purge(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("purge owner %s: %w", ownerID, err)
	}

	c.logger.Info().
		Str("owner_id", ownerID).
		Int64("rows", removed).
		Str("correlation_id", messaging.CorrelationID(ctx)).
		Msg("purged shelf of deleted user")
	return nil
}
