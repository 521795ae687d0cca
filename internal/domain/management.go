package domain

import "context"

// ImageStore persists cover images and hands back the stored reference the
// organizer submits in an event payload. Resizing happens elsewhere.
type ImageStore interface {
	// Save writes the image bytes and returns a fresh reference for them.
	Save(ctx context.Context, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}

// EventManagementService defines organizer-facing event CRUD.
type EventManagementService interface {
	Create(ctx context.Context, organizerID string, payload *EventPayload) (*Event, error)
	// GetForEdit returns an owned event with the meeting link visible.
	GetForEdit(ctx context.Context, eventID, organizerID string) (*EventView, error)
	Update(ctx context.Context, eventID, organizerID string, payload *EventPayload) (*Event, error)
	Delete(ctx context.Context, eventID, organizerID string) error
	// UploadCover stores an uploaded cover image and returns its reference.
	UploadCover(ctx context.Context, data []byte) (string, error)
	ListRegistrations(ctx context.Context, organizerID, search string, params PaginationParams) ([]*EventWithTicketCount, int, error)
	ListAttendees(ctx context.Context, eventID, organizerID string) ([]*TicketWithUser, error)
}
