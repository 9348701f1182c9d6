package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackshelf/trackshelf-backend/pkg/logger"
)

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func TestPublisher_Publish(t *testing.T) {
	ch := &recordingChannel{}
	p := newPublisher(ch, "shelf.events", "shelf-service", logger.Nop())
	p.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }

	ctx := WithCorrelationID(context.Background(), "corr-1")
	require.NoError(t, p.Publish(ctx, EventItemCreated, map[string]string{"item_id": "i-1"}))

	assert.Equal(t, "shelf.events", ch.exchange)
	assert.Equal(t, EventItemCreated, ch.key)
	assert.Equal(t, uint8(amqp.Persistent), ch.msg.DeliveryMode)
	assert.Equal(t, "corr-1", ch.msg.CorrelationId)

	var event Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &event))
	assert.Equal(t, EventItemCreated, event.Type)
	assert.Equal(t, "shelf-service", event.Source)
	assert.Equal(t, ch.msg.MessageId, event.ID)

	var data map[string]string
	require.NoError(t, event.UnmarshalData(&data))
	assert.Equal(t, "i-1", data["item_id"])
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &recordingChannel{err: amqp.ErrClosed}
	p := newPublisher(ch, "shelf.events", "shelf-service", logger.Nop())

	err := p.Publish(context.Background(), EventItemDeleted, nil)
	assert.ErrorIs(t, err, amqp.ErrClosed)
}
