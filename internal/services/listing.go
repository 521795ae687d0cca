package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventlive/internal/clock"
	"eventlive/internal/domain"
)

const (
	similarEventsLimit = 4
	homeUpcomingLimit  = 6
)

type listingService struct {
	eventRepo      domain.EventRepository
	ticketRepo     domain.TicketRepository
	categoryRepo   domain.CategoryRepository
	clock          clock.Clock
	contextTimeout time.Duration
}

// NewListingService creates the read-only browsing service.
func NewListingService(
	eventRepo domain.EventRepository,
	ticketRepo domain.TicketRepository,
	categoryRepo domain.CategoryRepository,
	clk clock.Clock,
	timeout time.Duration,
) domain.ListingService {
	return &listingService{
		eventRepo:      eventRepo,
		ticketRepo:     ticketRepo,
		categoryRepo:   categoryRepo,
		clock:          clk,
		contextTimeout: timeout,
	}
}

func (s *listingService) ListPublished(ctx context.Context, filter domain.ListingFilter, params domain.PaginationParams) ([]*domain.EventView, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListPublishedUpcoming(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list published events: %w", err)
	}
	return projectAll(events, false), total, nil
}

func (s *listingService) ListByCategory(ctx context.Context, categorySlug string, filter domain.ListingFilter, params domain.PaginationParams) (*domain.Category, []*domain.EventView, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	category, err := s.categoryRepo.GetBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, 0, domain.ErrNotFound
		}
		return nil, nil, 0, fmt.Errorf("get category: %w", err)
	}
	events, total, err := s.eventRepo.ListByCategory(ctx, category.ID, filter, params)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("list events by category: %w", err)
	}
	return category, projectAll(events, false), total, nil
}

func (s *listingService) ListOrganized(ctx context.Context, organizerID, search string, bucket domain.OrganizerBucket, params domain.PaginationParams) ([]*domain.EventView, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListByOrganizer(ctx, organizerID, search, bucket, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list organized events: %w", err)
	}
	// The organizer is viewing their own events; meeting links stay visible.
	return projectAll(events, true), total, nil
}

func (s *listingService) GetBySlug(ctx context.Context, slug, viewerID string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	isOrganizer := viewerID != "" && viewerID == event.OrganizerID

	// Past events are reported as missing to everyone but their organizer,
	// so their existence is not leaked.
	if event.HasStarted(s.clock.Now()) && !isOrganizer {
		return nil, domain.ErrNotFound
	}

	var ticket *domain.Ticket
	if viewerID != "" && !isOrganizer {
		ticket, err = s.ticketRepo.GetByEventAndUser(ctx, event.ID, viewerID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get viewer ticket: %w", err)
		}
	}
	hasActiveTicket := ticket != nil && ticket.Status != domain.TicketStatusCancelled

	isFull := false
	if event.Capacity != nil {
		count, err := s.ticketRepo.CountConfirmedByEventID(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("count confirmed tickets: %w", err)
		}
		isFull = count >= *event.Capacity
	}

	categories, err := s.categoryRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list event categories: %w", err)
	}
	categoryIDs := make([]string, 0, len(categories))
	for _, c := range categories {
		categoryIDs = append(categoryIDs, c.ID)
	}

	var similar []*domain.Event
	if len(categoryIDs) > 0 {
		similar, err = s.eventRepo.ListSimilar(ctx, event.ID, categoryIDs, similarEventsLimit)
		if err != nil {
			return nil, fmt.Errorf("list similar events: %w", err)
		}
	}

	view := domain.NewEventView(event, isOrganizer || hasActiveTicket)
	view.Categories = categories

	detail := &domain.EventDetail{
		Event:         view,
		IsFull:        isFull,
		IsOrganizer:   isOrganizer,
		HasTicket:     hasActiveTicket,
		SimilarEvents: projectAll(similar, false),
	}
	if ticket != nil {
		detail.TicketStatus = &ticket.Status
	}
	return detail, nil
}

func (s *listingService) Home(ctx context.Context) (*domain.HomePage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	upcoming, err := s.eventRepo.ListNextUpcoming(ctx, homeUpcomingLimit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	featured, err := s.eventRepo.ListUpcomingFeatured(ctx)
	if err != nil {
		return nil, fmt.Errorf("list featured events: %w", err)
	}
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	return &domain.HomePage{
		UpcomingEvents: projectAll(upcoming, false),
		FeaturedEvents: projectAll(featured, false),
		Categories:     categories,
	}, nil
}

func projectAll(events []*domain.Event, includeMeetingLink bool) []*domain.EventView {
	views := make([]*domain.EventView, 0, len(events))
	for _, e := range events {
		views = append(views, domain.NewEventView(e, includeMeetingLink))
	}
	return views
}
