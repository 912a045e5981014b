// Package events publishes status-change events to RabbitMQ so kitchen
// displays and other consumers can react to workflow changes. The broker
// is optional; without one the coordinator gets a no-op publisher.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const exchange = "restaurant.events"

// StatusEvent describes a single entity status change.
type StatusEvent struct {
	ID         string    `json:"id"`
	Entity     string    `json:"entity"` // order | reservation | table
	EntityID   int64     `json:"entityId"`
	OldStatus  string    `json:"oldStatus,omitempty"`
	NewStatus  string    `json:"newStatus"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher emits status-change events.
type Publisher interface {
	PublishStatusChange(ctx context.Context, ev StatusEvent) error
}

// AMQPPublisher publishes events to a RabbitMQ topic exchange with
// routing keys of the form "<entity>.status".
type AMQPPublisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	log     *slog.Logger
}

// Dial connects to the broker and declares the events exchange.
func Dial(url string, log *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: channel, log: log}, nil
}

// PublishStatusChange publishes the event as a persistent JSON message.
// Failures are logged but reported to the caller, which treats event
// delivery as best effort.
func (p *AMQPPublisher) PublishStatusChange(ctx context.Context, ev StatusEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	routingKey := ev.Entity + ".status"

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		MessageId:    ev.ID,
		Timestamp:    ev.OccurredAt,
	})
	if err != nil {
		p.log.Error("failed to publish status event",
			"routing_key", routingKey,
			"entity_id", ev.EntityID,
			"error", err,
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.Debug("published status event",
		"routing_key", routingKey,
		"entity_id", ev.EntityID,
		"new_status", ev.NewStatus,
	)
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Noop is a Publisher that drops all events, used when no broker is
// configured.
type Noop struct{}

func (Noop) PublishStatusChange(context.Context, StatusEvent) error { return nil }
