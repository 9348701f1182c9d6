package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/trackshelf/trackshelf-backend/pkg/logger"
)

// maxRetries is how often a failing message is redelivered before it is dead-lettered
const maxRetries = 3

// retryHeader counts redeliveries made by the consumer itself
const retryHeader = "x-retry-count"

// MessageHandler is a function that handles a message
type MessageHandler func(ctx context.Context, event *Event) error

// Consumer dispatches events from one queue to handlers registered per event type
type Consumer struct {
	rmq       *RabbitMQ
	channel   amqpChannel
	queueName string
	handlers  map[string]MessageHandler
	logger    *logger.Logger
}

// NewConsumer declares the queue and returns a consumer for it
func NewConsumer(rmq *RabbitMQ, queueName string, log *logger.Logger) (*Consumer, error) {
	if _, err := rmq.DeclareQueue(queueName); err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	return &Consumer{
		rmq:       rmq,
		channel:   rmq.Channel(),
		queueName: queueName,
		handlers:  make(map[string]MessageHandler),
		logger:    log,
	}, nil
}

// Subscribe binds the queue to exchange with a routing key pattern
func (c *Consumer) Subscribe(exchange, routingKeyPattern string) error {
	if err := c.rmq.DeclareExchange(exchange); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := c.rmq.BindQueue(c.queueName, exchange, routingKeyPattern); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	c.logger.Info().
		Str("queue", c.queueName).
		Str("exchange", exchange).
		Str("routing_key", routingKeyPattern).
		Msg("subscribed to exchange")

	return nil
}

// RegisterHandler registers a handler for a specific event type
func (c *Consumer) RegisterHandler(eventType string, handler MessageHandler) {
	c.handlers[eventType] = handler
}

// Start consumes in a background goroutine until ctx is done
func (c *Consumer) Start(ctx context.Context) error {
	msgs, err := c.rmq.Channel().Consume(
		c.queueName, // queue
		"",          // consumer tag (auto-generated)
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info().Str("queue", c.queueName).Msg("consumer started")

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.Info().Str("queue", c.queueName).Msg("consumer stopped")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Warn().Msg("message channel closed")
					return
				}
				c.handleMessage(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var event Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.logger.Error().Err(err).Msg("failed to unmarshal event")
		// Malformed messages are never retried
		_ = msg.Reject(false)
		return
	}

	ctx = WithCorrelationID(ctx, event.CorrelationID)

	handler, ok := c.handlers[event.Type]
	if !ok {
		c.logger.Debug().Str("event_type", event.Type).Msg("no handler registered for event type")
		_ = msg.Ack(false)
		return
	}

	retries := retryCount(msg)
	c.logger.Debug().
		Str("event_type", event.Type).
		Str("event_id", event.ID).
		Str("source", event.Source).
		Str("correlation_id", event.CorrelationID).
		Int("retry_count", retries).
		Msg("processing event")

	if err := handler(ctx, &event); err != nil {
		c.logger.Error().
			Err(err).
			Str("event_type", event.Type).
			Str("event_id", event.ID).
			Msg("failed to process event")

		if retries >= maxRetries {
			c.logger.Warn().
				Str("event_id", event.ID).
				Int("retry_count", retries).
				Msg("max retries exceeded, sending to DLQ")
			_ = msg.Reject(false)
			return
		}
		c.retry(ctx, msg, retries+1)
		return
	}

	_ = msg.Ack(false)
}

// retry republishes the delivery to the queue with an incremented retry
// header, then acks the original. A plain requeue would not count attempts.
func (c *Consumer) retry(ctx context.Context, msg amqp.Delivery, attempt int) {
	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[retryHeader] = int32(attempt)

	err := c.channel.PublishWithContext(ctx, "", c.queueName, false, false, amqp.Publishing{
		ContentType:   msg.ContentType,
		DeliveryMode:  amqp.Persistent,
		MessageId:     msg.MessageId,
		CorrelationId: msg.CorrelationId,
		Headers:       headers,
		Body:          msg.Body,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to republish event, requeueing")
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

// retryCount is the highest of our retry header and the broker's x-death count
func retryCount(msg amqp.Delivery) int {
	count := 0
	switch v := msg.Headers[retryHeader].(type) {
	case int32:
		count = int(v)
	case int64:
		count = int(v)
	case int:
		count = v
	}

	deaths, _ := msg.Headers["x-death"].([]interface{})
	for _, death := range deaths {
		if d, ok := death.(amqp.Table); ok {
			if n, ok := d["count"].(int64); ok && int(n) > count {
				count = int(n)
			}
		}
	}
	return count
}
