package domain

import "context"

// Category is read-only reference data grouping events.
// swagger:model Category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon"`
}

// CategoryRepository defines storage for categories and event-category links.
type CategoryRepository interface {
	List(ctx context.Context) ([]*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Category, error)
	// SetEventCategories replaces the event's category associations with the
	// given set.
	SetEventCategories(ctx context.Context, eventID string, categoryIDs []string) error
}
