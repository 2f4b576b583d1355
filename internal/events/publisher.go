package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher holds one AMQP connection and channel for the process. A nil
// *Publisher is valid and drops all events, so wiring stays unconditional
// when no broker is configured.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

// NewPublisher dials the broker and declares the ticket queues as durable.
// Returns (nil, nil) when url is empty.
func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	for _, queue := range []string{QueueTicketIssued, QueueTicketCancelled} {
		if _, err := ch.QueueDeclare(
			queue,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,
		); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
	}

	return &Publisher{
		conn: conn,
		ch:   ch,
		log:  log.With(zap.String("component", "events")),
	}, nil
}

func (p *Publisher) publish(ctx context.Context, queue string, payload any) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", queue, err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.log.Warn("Failed to publish event",
			zap.Error(err),
			zap.String("queue", queue),
		)
		return fmt.Errorf("publish %s event: %w", queue, err)
	}

	return nil
}

// TicketIssued publishes a ticket.issued message. Errors are already
// logged; callers may ignore the return value.
func (p *Publisher) TicketIssued(ctx context.Context, event TicketIssuedEvent) error {
	return p.publish(ctx, QueueTicketIssued, event)
}

// TicketCancelled publishes a ticket.cancelled message.
func (p *Publisher) TicketCancelled(ctx context.Context, event TicketCancelledEvent) error {
	return p.publish(ctx, QueueTicketCancelled, event)
}

// Close tears down the channel and connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	_ = p.ch.Close()
	_ = p.conn.Close()
}
