package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"product-catalog/internal/products"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	consumerTag   = "notifications-service"
	prefetchCount = 10
)

var knownEvents = map[string]bool{
	products.EventCreated:         true,
	products.EventUpdated:         true,
	products.EventDeleted:         true,
	products.EventQuantityReduced: true,
}

// HandledEvents lists the catalog event types the consumer accepts.
func HandledEvents() []string {
	events := make([]string, 0, len(knownEvents))
	for event := range knownEvents {
		events = append(events, event)
	}
	sort.Strings(events)
	return events
}

type Consumer struct {
	channel  *amqp.Channel
	queue    string
	logger   zerolog.Logger
	lowStock int64
}

// NewConsumer declares queue and limits unacknowledged deliveries. A quantity
// reduction leaving lowStockThreshold units or fewer raises a low stock alert.
func NewConsumer(conn *amqp.Connection, queue string, logger zerolog.Logger, lowStockThreshold int64) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{
		channel:  ch,
		queue:    queue,
		logger:   logger,
		lowStock: lowStockThreshold,
	}, nil
}

func (c *Consumer) Listen(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue,
		consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}

			if err := c.handleMessage(msg.Body); err != nil {
				c.logger.Error().Err(err).Str("message_id", msg.MessageId).Msg("handle message failed")
				// Malformed payloads never become valid; drop instead of requeueing.
				_ = msg.Nack(false, false)
				continue
			}

			_ = msg.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(body []byte) error {
	var event products.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	if !knownEvents[event.EventType] {
		return fmt.Errorf("unknown event type %q", event.EventType)
	}

	entry := c.logger.Info().
		Str("event_type", event.EventType).
		Int64("product_id", event.ProductID).
		Time("timestamp", event.Timestamp)
	if event.Name != "" {
		entry = entry.Str("name", event.Name)
	}
	if event.Quantity != nil {
		entry = entry.Int64("quantity", *event.Quantity)
	}
	if event.Actor != "" {
		entry = entry.Str("actor", event.Actor)
	}
	entry.Msg("notification event")

	if event.EventType == products.EventQuantityReduced && event.Quantity != nil && *event.Quantity <= c.lowStock {
		c.logger.Warn().
			Int64("product_id", event.ProductID).
			Str("name", event.Name).
			Int64("quantity", *event.Quantity).
			Int64("threshold", c.lowStock).
			Msg("low stock")
	}

	return nil
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
