package domain

import (
	"context"
	"time"
)

// Ticket statuses.
const (
	TicketStatusConfirmed = "confirmed"
	TicketStatusCancelled = "cancelled"
)

// Ticket links a user to an event they registered for.
// swagger:model Ticket
type Ticket struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketWithEvent bundles a ticket with its event projection for the
// ticket-holder's own listings.
type TicketWithEvent struct {
	Ticket *Ticket    `json:"ticket"`
	Event  *EventView `json:"event"`
}

// TicketWithUser bundles a ticket with basic holder identity for
// organizer-facing attendee listings.
type TicketWithUser struct {
	Ticket    *Ticket `json:"ticket"`
	UserName  string  `json:"user_name"`
	UserEmail string  `json:"user_email"`
}

// TicketRepository defines storage operations for tickets.
type TicketRepository interface {
	// CreateConfirmed inserts a confirmed ticket for (event, user) inside a
	// transaction that locks the event row and re-checks, in order: capacity,
	// event timing against now, and absence of any prior ticket for the pair.
	// It returns ErrCapacityExceeded, ErrEventAlreadyOccurred, or
	// ErrAlreadyRegistered when the corresponding precondition fails; no
	// partial writes remain in any error case.
	CreateConfirmed(ctx context.Context, event *Event, userID string, now time.Time) (*Ticket, error)
	GetByID(ctx context.Context, id string) (*Ticket, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Ticket, error)
	CountConfirmedByEventID(ctx context.Context, eventID string) (int, error)
	UpdateStatus(ctx context.Context, id, status string) (*Ticket, error)
	Delete(ctx context.Context, id string) error
	ListByUserID(ctx context.Context, userID string, params PaginationParams) ([]*Ticket, int, error)
	ListByEventID(ctx context.Context, eventID string) ([]*TicketWithUser, error)
}

// RegistrationService is the only path that can create a ticket.
type RegistrationService interface {
	Register(ctx context.Context, eventID, userID string) (*Ticket, error)
	Cancel(ctx context.Context, ticketID, userID string) (*Ticket, error)
	Withdraw(ctx context.Context, ticketID, userID string) error
	IsFull(ctx context.Context, event *Event) (bool, error)
	ListMyTickets(ctx context.Context, userID string, params PaginationParams) ([]*TicketWithEvent, int, error)
}
