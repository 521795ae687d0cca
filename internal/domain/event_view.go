package domain

import (
	"context"
	"time"
)

// EventView is the serializable projection of an Event for a particular
// viewer. MeetingLink is populated only when the viewer is the organizer or
// holds a non-cancelled ticket; the underlying Event is never mutated.
// swagger:model EventView
type EventView struct {
	ID           string      `json:"id"`
	OrganizerID  string      `json:"organizer_id"`
	Title        string      `json:"title"`
	Slug         string      `json:"slug"`
	Description  *string     `json:"description"`
	Status       string      `json:"status"`
	PlatformName *string     `json:"platform_name"`
	MeetingLink  *string     `json:"meeting_link,omitempty"`
	StartTime    *time.Time  `json:"start_time"`
	EndTime      *time.Time  `json:"end_time"`
	Capacity     *int        `json:"capacity"`
	Speaker      *string     `json:"speaker"`
	CoverImage   *string     `json:"cover_image"`
	IsFeatured   bool        `json:"is_featured"`
	Timezone     string      `json:"timezone"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Categories   []*Category `json:"categories,omitempty"`
}

// NewEventView projects an event for serialization. includeMeetingLink
// controls whether the sensitive meeting link is present in the output.
func NewEventView(e *Event, includeMeetingLink bool) *EventView {
	v := &EventView{
		ID:           e.ID,
		OrganizerID:  e.OrganizerID,
		Title:        e.Title,
		Slug:         e.Slug,
		Description:  e.Description,
		Status:       e.Status,
		PlatformName: e.PlatformName,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Capacity:     e.Capacity,
		Speaker:      e.Speaker,
		CoverImage:   e.CoverImage,
		IsFeatured:   e.IsFeatured,
		Timezone:     e.Timezone,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if includeMeetingLink {
		v.MeetingLink = e.MeetingLink
	}
	return v
}

// EventDetail is the full event page payload for a viewer.
type EventDetail struct {
	Event         *EventView   `json:"event"`
	IsFull        bool         `json:"is_full"`
	IsOrganizer   bool         `json:"is_organizer"`
	HasTicket     bool         `json:"has_ticket"`
	TicketStatus  *string      `json:"ticket_status"`
	SimilarEvents []*EventView `json:"similar_events"`
}

// HomePage is the landing page payload.
type HomePage struct {
	UpcomingEvents []*EventView `json:"upcoming_events"`
	FeaturedEvents []*EventView `json:"featured_events"`
	Categories     []*Category  `json:"categories"`
}

// ListingService reads events for browsing. It never writes.
type ListingService interface {
	ListPublished(ctx context.Context, filter ListingFilter, params PaginationParams) ([]*EventView, int, error)
	ListByCategory(ctx context.Context, categorySlug string, filter ListingFilter, params PaginationParams) (*Category, []*EventView, int, error)
	ListOrganized(ctx context.Context, organizerID, search string, bucket OrganizerBucket, params PaginationParams) ([]*EventView, int, error)
	GetBySlug(ctx context.Context, slug, viewerID string) (*EventDetail, error)
	Home(ctx context.Context) (*HomePage, error)
}
