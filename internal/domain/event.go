package domain

import (
	"context"
	"time"
)

// Event lifecycle statuses.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
)

// Event represents an online event listed on the platform.
// MeetingLink is sensitive and never serialized from the entity itself;
// use NewEventView to build a response shape for a given viewer.
// swagger:model Event
type Event struct {
	ID           string     `json:"id"`
	OrganizerID  string     `json:"organizer_id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Description  *string    `json:"description"`
	Status       string     `json:"status"`
	PlatformName *string    `json:"platform_name"`
	MeetingLink  *string    `json:"-"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Capacity     *int       `json:"capacity"`
	Speaker      *string    `json:"speaker"`
	CoverImage   *string    `json:"cover_image"`
	IsFeatured   bool       `json:"is_featured"`
	Timezone     string     `json:"timezone"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasStarted reports whether the event's start time is at or before now.
// Events without a start time (drafts) are never considered started.
func (e *Event) HasStarted(now time.Time) bool {
	return e.StartTime != nil && !e.StartTime.After(now)
}

// EventPayload carries the organizer-submitted fields for create and update.
// Which fields are required depends on Status; see ValidateEventPayload.
type EventPayload struct {
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	Description  *string    `json:"description"`
	PlatformName *string    `json:"platform_name"`
	MeetingLink  *string    `json:"meeting_link"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Capacity     *int       `json:"capacity"`
	Speaker      *string    `json:"speaker"`
	CoverImage   *string    `json:"cover_image"`
	IsFeatured   bool       `json:"is_featured"`
	CategoryIDs  []string   `json:"category_ids"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	// DeleteCascade removes the event and all of its tickets in a single
	// transaction; both succeed or neither does.
	DeleteCascade(ctx context.Context, id string) error
	ListPublishedUpcoming(ctx context.Context, filter ListingFilter, params PaginationParams) ([]*Event, int, error)
	ListByCategory(ctx context.Context, categoryID string, filter ListingFilter, params PaginationParams) ([]*Event, int, error)
	ListByOrganizer(ctx context.Context, organizerID, search string, bucket OrganizerBucket, params PaginationParams) ([]*Event, int, error)
	// ListSimilar returns up to limit events other than eventID that share at
	// least one of the given categories, newest first.
	ListSimilar(ctx context.Context, eventID string, categoryIDs []string, limit int) ([]*Event, error)
	ListUpcomingFeatured(ctx context.Context) ([]*Event, error)
	ListNextUpcoming(ctx context.Context, limit int) ([]*Event, error)
	// ListWithTicketCounts returns the organizer's published events together
	// with their confirmed ticket counts, newest first.
	ListWithTicketCounts(ctx context.Context, organizerID, search string, params PaginationParams) ([]*EventWithTicketCount, int, error)
}

// EventWithTicketCount pairs an event with its confirmed registration count.
type EventWithTicketCount struct {
	Event       *Event `json:"event"`
	TicketCount int    `json:"ticket_count"`
}
