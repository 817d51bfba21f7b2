package application

import (
	"context"
	"time"
)

// Identity event types published after a successful flow.
const (
	EventUserRegistered = "user.registered"
	EventRoleAssigned   = "role.assigned"
)

// IdentityEvent is the message body published to the events queue.
type IdentityEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	Role       string    `json:"role,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher is satisfied by helpers.RabbitPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// EventType names the event for the transport's type property.
func (e IdentityEvent) EventType() string { return e.Type }
