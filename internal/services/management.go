package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"
	"unicode"

	"eventlive/internal/clock"
	"eventlive/internal/domain"
)

type managementService struct {
	eventRepo      domain.EventRepository
	ticketRepo     domain.TicketRepository
	categoryRepo   domain.CategoryRepository
	imageStore     domain.ImageStore
	clock          clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewManagementService creates the organizer-facing event CRUD service.
func NewManagementService(
	eventRepo domain.EventRepository,
	ticketRepo domain.TicketRepository,
	categoryRepo domain.CategoryRepository,
	imageStore domain.ImageStore,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventManagementService {
	return &managementService{
		eventRepo:      eventRepo,
		ticketRepo:     ticketRepo,
		categoryRepo:   categoryRepo,
		imageStore:     imageStore,
		clock:          clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

const slugSuffixLength = 5

var slugSuffixAlphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

// newSlug derives a URL slug from the title plus a random suffix. Titles are
// never trusted to be unique, so the suffix guarantees global uniqueness
// even for identical titles.
func newSlug(title string) (string, error) {
	suffix := make([]rune, slugSuffixLength)
	max := big.NewInt(int64(len(slugSuffixAlphabet)))
	for i := 0; i < slugSuffixLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = slugSuffixAlphabet[n.Int64()]
	}
	base := slugify(title)
	if base == "" {
		return string(suffix), nil
	}
	return base + "-" + string(suffix), nil
}

// slugify lowercases the title and collapses every non-alphanumeric run into
// a single hyphen.
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func (s *managementService) Create(ctx context.Context, organizerID string, payload *domain.EventPayload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return nil, domain.ErrInvalidInput
	}
	if verrs := domain.ValidateEventPayload(payload, nil, s.clock.Now()); verrs != nil {
		return nil, verrs
	}

	slug, err := newSlug(payload.Title)
	if err != nil {
		return nil, fmt.Errorf("generate slug: %w", err)
	}

	now := s.clock.Now()
	event := &domain.Event{
		OrganizerID:  organizerID,
		Title:        payload.Title,
		Slug:         slug,
		Description:  payload.Description,
		Status:       payload.Status,
		PlatformName: payload.PlatformName,
		MeetingLink:  payload.MeetingLink,
		StartTime:    payload.StartTime,
		EndTime:      payload.EndTime,
		Capacity:     payload.Capacity,
		Speaker:      payload.Speaker,
		CoverImage:   payload.CoverImage,
		IsFeatured:   payload.IsFeatured,
		Timezone:     "UTC",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	if len(payload.CategoryIDs) > 0 {
		if err := s.categoryRepo.SetEventCategories(ctx, event.ID, payload.CategoryIDs); err != nil {
			return nil, fmt.Errorf("set event categories: %w", err)
		}
	}
	return event, nil
}

func (s *managementService) GetForEdit(ctx context.Context, eventID, organizerID string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}
	categories, err := s.categoryRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event categories: %w", err)
	}
	view := domain.NewEventView(event, true)
	view.Categories = categories
	return view, nil
}

func (s *managementService) Update(ctx context.Context, eventID, organizerID string, payload *domain.EventPayload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	// Ownership is checked before validation.
	if event.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}
	if verrs := domain.ValidateEventPayload(payload, event.CoverImage, s.clock.Now()); verrs != nil {
		return nil, verrs
	}

	if payload.Title != event.Title {
		slug, err := newSlug(payload.Title)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		event.Slug = slug
	}

	if payload.CoverImage != nil {
		if event.CoverImage != nil && *event.CoverImage != *payload.CoverImage {
			if err := s.imageStore.Delete(ctx, *event.CoverImage); err != nil {
				s.logger.Warn("delete replaced cover image", "event_id", eventID, "ref", *event.CoverImage, "err", err)
			}
		}
		event.CoverImage = payload.CoverImage
	}

	event.Title = payload.Title
	event.Status = payload.Status
	event.Description = payload.Description
	event.PlatformName = payload.PlatformName
	event.MeetingLink = payload.MeetingLink
	event.StartTime = payload.StartTime
	event.EndTime = payload.EndTime
	event.Capacity = payload.Capacity
	event.Speaker = payload.Speaker
	event.IsFeatured = payload.IsFeatured
	event.UpdatedAt = s.clock.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if err := s.categoryRepo.SetEventCategories(ctx, eventID, payload.CategoryIDs); err != nil {
		return nil, fmt.Errorf("set event categories: %w", err)
	}
	return event, nil
}

func (s *managementService) Delete(ctx context.Context, eventID, organizerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.DeleteCascade(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if event.CoverImage != nil {
		if err := s.imageStore.Delete(ctx, *event.CoverImage); err != nil {
			s.logger.Warn("delete cover image", "event_id", eventID, "ref", *event.CoverImage, "err", err)
		}
	}
	return nil
}

func (s *managementService) UploadCover(ctx context.Context, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if len(data) == 0 {
		return "", domain.ValidationErrors{"cover_image": "image file is required"}
	}
	ref, err := s.imageStore.Save(ctx, data)
	if err != nil {
		return "", fmt.Errorf("save cover image: %w", err)
	}
	return ref, nil
}

func (s *managementService) ListRegistrations(ctx context.Context, organizerID, search string, params domain.PaginationParams) ([]*domain.EventWithTicketCount, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, total, err := s.eventRepo.ListWithTicketCounts(ctx, organizerID, search, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events with ticket counts: %w", err)
	}
	if items == nil {
		items = []*domain.EventWithTicketCount{}
	}
	return items, total, nil
}

func (s *managementService) ListAttendees(ctx context.Context, eventID, organizerID string) ([]*domain.TicketWithUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}
	tickets, err := s.ticketRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event tickets: %w", err)
	}
	if tickets == nil {
		tickets = []*domain.TicketWithUser{}
	}
	return tickets, nil
}
