package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventlive/internal/domain"
)

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepository(db *sql.DB) domain.CategoryRepository {
	return &categoryRepository{
		DB: db,
	}
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT id, name, slug, icon FROM categories ORDER BY name ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := `SELECT id, name, slug, icon FROM categories WHERE slug = $1`
	c := &domain.Category{}
	err := r.DB.QueryRowContext(ctx, query, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.Icon)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *categoryRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.icon
		FROM categories c
		JOIN category_event ce ON ce.category_id = c.id
		WHERE ce.event_id = $1
		ORDER BY c.name ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SetEventCategories replaces the event's category links in one transaction.
func (r *categoryRepository) SetEventCategories(ctx context.Context, eventID string, categoryIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM category_event WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("clear category links: %w", err)
	}
	for _, categoryID := range categoryIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO category_event (event_id, category_id) VALUES ($1, $2)`,
			eventID, categoryID,
		)
		if err != nil {
			return fmt.Errorf("link category %s: %w", categoryID, err)
		}
	}
	return tx.Commit()
}
