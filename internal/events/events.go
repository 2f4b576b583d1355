// Package events publishes ticket lifecycle messages to RabbitMQ for
// downstream consumers (notifications, the payment back office). The
// booking flow never depends on a publish succeeding.
package events

import "time"

const (
	QueueTicketIssued    = "ticket.issued"
	QueueTicketCancelled = "ticket.cancelled"
)

// TicketIssuedEvent is published when a hold is confirmed into a ticket.
type TicketIssuedEvent struct {
	TicketID   string    `json:"ticket_id"`
	UserID     string    `json:"user_id"`
	ShowID     string    `json:"show_id"`
	SeatLabels []string  `json:"seats"`
	TotalCents int64     `json:"total_cents"`
	IssuedAt   time.Time `json:"issued_at"`
}

// TicketCancelledEvent is published when a ticket's seats are freed.
type TicketCancelledEvent struct {
	TicketID    string    `json:"ticket_id"`
	UserID      string    `json:"user_id"`
	SeatsFreed  int       `json:"seats_freed"`
	CancelledAt time.Time `json:"cancelled_at"`
}
