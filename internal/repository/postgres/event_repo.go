package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventlive/internal/domain"
)

const eventColumns = `id, organizer_id, title, slug, description, status, platform_name, meeting_link,
		start_time, end_time, capacity, speaker, cover_image, is_featured, timezone, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var (
		desc, platform, link, speaker, cover sql.NullString
		start, end                           sql.NullTime
		capacity                             sql.NullInt64
	)
	err := s.Scan(
		&e.ID, &e.OrganizerID, &e.Title, &e.Slug, &desc, &e.Status, &platform, &link,
		&start, &end, &capacity, &speaker, &cover, &e.IsFeatured, &e.Timezone, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		e.Description = &desc.String
	}
	if platform.Valid {
		e.PlatformName = &platform.String
	}
	if link.Valid {
		e.MeetingLink = &link.String
	}
	if start.Valid {
		t := start.Time
		e.StartTime = &t
	}
	if end.Valid {
		t := end.Time
		e.EndTime = &t
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		e.Capacity = &c
	}
	if speaker.Valid {
		e.Speaker = &speaker.String
	}
	if cover.Valid {
		e.CoverImage = &cover.String
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (organizer_id, title, slug, description, status, platform_name, meeting_link,
			start_time, end_time, capacity, speaker, cover_image, is_featured, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.OrganizerID, e.Title, e.Slug, e.Description, e.Status, e.PlatformName, e.MeetingLink,
		e.StartTime, e.EndTime, e.Capacity, e.Speaker, e.CoverImage, e.IsFeatured, e.Timezone,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, slug = $2, description = $3, status = $4, platform_name = $5, meeting_link = $6,
			start_time = $7, end_time = $8, capacity = $9, speaker = $10, cover_image = $11,
			is_featured = $12, updated_at = $13
		WHERE id = $14
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Slug, e.Description, e.Status, e.PlatformName, e.MeetingLink,
		e.StartTime, e.EndTime, e.Capacity, e.Speaker, e.CoverImage,
		e.IsFeatured, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCascade removes the event's tickets, category links, and the event
// itself in one transaction.
func (r *eventRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete tickets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM category_event WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete category links: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

// orderClause maps a sort variant to a deterministic ORDER BY; every variant
// tie-breaks by id ascending so pagination is stable.
func orderClause(sort domain.SortOrder) string {
	switch sort {
	case domain.SortAlphabetical:
		return "LOWER(title) ASC, id ASC"
	case domain.SortJustAdded:
		return "created_at DESC, id ASC"
	default:
		return "start_time ASC, id ASC"
	}
}

func (r *eventRepository) ListPublishedUpcoming(ctx context.Context, filter domain.ListingFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where := `WHERE status = $1 AND start_time > NOW()`
	args := []any{domain.EventStatusPublished}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND title ILIKE $%d", len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}
	return r.listPage(ctx, where, orderClause(filter.Sort), args, params)
}

func (r *eventRepository) ListByCategory(ctx context.Context, categoryID string, filter domain.ListingFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where := `WHERE status = $1 AND start_time > NOW()
		AND EXISTS (SELECT 1 FROM category_event ce WHERE ce.event_id = events.id AND ce.category_id = $2)`
	args := []any{domain.EventStatusPublished, categoryID}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND title ILIKE $%d", len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}
	return r.listPage(ctx, where, orderClause(filter.Sort), args, params)
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID, search string, bucket domain.OrganizerBucket, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where := `WHERE organizer_id = $1`
	order := ""
	switch bucket {
	case domain.BucketPast:
		where += ` AND end_time <= NOW()`
		order = "start_time DESC, id ASC"
	case domain.BucketDraft:
		where += ` AND status = '` + domain.EventStatusDraft + `'`
		order = "start_time ASC NULLS LAST, id ASC"
	default:
		where += ` AND end_time > NOW()`
		order = "start_time ASC, id ASC"
	}
	args := []any{organizerID}
	if search != "" {
		where += fmt.Sprintf(" AND title ILIKE $%d", len(args)+1)
		args = append(args, "%"+search+"%")
	}
	return r.listPage(ctx, where, order, args, params)
}

// listPage runs the shared count+page query pair for event listings.
func (r *eventRepository) listPage(ctx context.Context, where, order string, args []any, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM events ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM events %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		eventColumns, where, order, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) ListSimilar(ctx context.Context, eventID string, categoryIDs []string, limit int) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id != $1 AND status = $2
			AND EXISTS (
				SELECT 1 FROM category_event ce
				WHERE ce.event_id = events.id AND ce.category_id = ANY($3)
			)
		ORDER BY created_at DESC, id ASC
		LIMIT $4
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, domain.EventStatusPublished, pq.Array(categoryIDs), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) ListUpcomingFeatured(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = $1 AND start_time > NOW() AND is_featured = TRUE
		ORDER BY created_at DESC, id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, domain.EventStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) ListNextUpcoming(ctx context.Context, limit int) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = $1 AND start_time > NOW()
		ORDER BY start_time ASC, id ASC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, domain.EventStatusPublished, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) ListWithTicketCounts(ctx context.Context, organizerID, search string, params domain.PaginationParams) ([]*domain.EventWithTicketCount, int, error) {
	where := `WHERE organizer_id = $1 AND status = $2`
	args := []any{organizerID, domain.EventStatusPublished}
	if search != "" {
		where += fmt.Sprintf(" AND title ILIKE $%d", len(args)+1)
		args = append(args, "%"+search+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM events ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s,
			(SELECT COUNT(*) FROM tickets t WHERE t.event_id = events.id AND t.status = '%s') AS ticket_count
		FROM events %s
		ORDER BY created_at DESC, id ASC
		LIMIT $%d OFFSET $%d`,
		eventColumns, domain.TicketStatusConfirmed, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events with ticket counts: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.EventWithTicketCount, 0)
	for rows.Next() {
		e := &domain.Event{}
		var (
			desc, platform, link, speaker, cover sql.NullString
			start, end                           sql.NullTime
			capacity                             sql.NullInt64
			count                                int
		)
		err := rows.Scan(
			&e.ID, &e.OrganizerID, &e.Title, &e.Slug, &desc, &e.Status, &platform, &link,
			&start, &end, &capacity, &speaker, &cover, &e.IsFeatured, &e.Timezone, &e.CreatedAt, &e.UpdatedAt,
			&count,
		)
		if err != nil {
			return nil, 0, err
		}
		if desc.Valid {
			e.Description = &desc.String
		}
		if platform.Valid {
			e.PlatformName = &platform.String
		}
		if link.Valid {
			e.MeetingLink = &link.String
		}
		if start.Valid {
			t := start.Time
			e.StartTime = &t
		}
		if end.Valid {
			t := end.Time
			e.EndTime = &t
		}
		if capacity.Valid {
			c := int(capacity.Int64)
			e.Capacity = &c
		}
		if speaker.Valid {
			e.Speaker = &speaker.String
		}
		if cover.Valid {
			e.CoverImage = &cover.String
		}
		items = append(items, &domain.EventWithTicketCount{Event: e, TicketCount: count})
	}
	return items, total, rows.Err()
}
