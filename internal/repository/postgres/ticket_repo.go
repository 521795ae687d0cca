package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventlive/internal/domain"
)

const ticketColumns = `id, event_id, user_id, status, created_at, updated_at`

type ticketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{
		DB: db,
	}
}

// CreateConfirmed performs the registration write path. The event row is
// locked for the duration of the transaction, so the capacity count cannot
// go stale between the check and the insert: two concurrent registrations
// serialize on the lock and the second one re-counts after the first commit.
// Precondition order is capacity, then timing, then duplicate; the first
// failure wins and nothing is written.
func (r *ticketRepository) CreateConfirmed(ctx context.Context, event *domain.Event, userID string, now time.Time) (*domain.Ticket, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var lockedID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, event.ID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}

	if event.Capacity != nil {
		var confirmed int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tickets WHERE event_id = $1 AND status = $2`,
			event.ID, domain.TicketStatusConfirmed,
		).Scan(&confirmed)
		if err != nil {
			return nil, fmt.Errorf("count confirmed tickets: %w", err)
		}
		if confirmed >= *event.Capacity {
			return nil, domain.ErrCapacityExceeded
		}
	}

	if event.HasStarted(now) {
		return nil, domain.ErrEventAlreadyOccurred
	}

	// Any prior ticket blocks re-registration, cancelled ones included.
	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE event_id = $1 AND user_id = $2)`,
		event.ID, userID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check existing ticket: %w", err)
	}
	if exists {
		return nil, domain.ErrAlreadyRegistered
	}

	ticket := &domain.Ticket{
		EventID:   event.ID,
		UserID:    userID,
		Status:    domain.TicketStatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO tickets (event_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		ticket.EventID, ticket.UserID, ticket.Status, ticket.CreatedAt, ticket.UpdatedAt,
	).Scan(&ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return ticket, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	t := &domain.Ticket{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.EventID, &t.UserID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE event_id = $1 AND user_id = $2`
	t := &domain.Ticket{}
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&t.ID, &t.EventID, &t.UserID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) CountConfirmedByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE event_id = $1 AND status = $2`,
		eventID, domain.TicketStatusConfirmed,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id, status string) (*domain.Ticket, error) {
	query := `
		UPDATE tickets SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + ticketColumns
	t := &domain.Ticket{}
	err := r.DB.QueryRowContext(ctx, query, status, id).
		Scan(&t.ID, &t.EventID, &t.UserID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ticketRepository) ListByUserID(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Ticket, int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE user_id = $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		t := &domain.Ticket{}
		if err := rows.Scan(&t.ID, &t.EventID, &t.UserID, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, t)
	}
	return tickets, total, rows.Err()
}

func (r *ticketRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.TicketWithUser, error) {
	query := `
		SELECT t.id, t.event_id, t.user_id, t.status, t.created_at, t.updated_at, u.name, u.email
		FROM tickets t
		JOIN users u ON u.id = t.user_id
		WHERE t.event_id = $1
		ORDER BY t.created_at ASC, t.id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.TicketWithUser, 0)
	for rows.Next() {
		t := &domain.Ticket{}
		item := &domain.TicketWithUser{Ticket: t}
		if err := rows.Scan(&t.ID, &t.EventID, &t.UserID, &t.Status, &t.CreatedAt, &t.UpdatedAt, &item.UserName, &item.UserEmail); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
