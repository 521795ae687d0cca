package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventlive/internal/clock"
	"eventlive/internal/domain"
)

type registrationService struct {
	eventRepo      domain.EventRepository
	ticketRepo     domain.TicketRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	clock          clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewRegistrationService creates the registration workflow. All ticket
// creation goes through Register; controllers never touch the ticket
// repository directly.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	ticketRepo domain.TicketRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:      eventRepo,
		ticketRepo:     ticketRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		clock:          clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID, userID string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	// Draft and cancelled events are not registrable; their existence is not
	// disclosed to attendees.
	if event.Status != domain.EventStatusPublished {
		return nil, domain.ErrNotFound
	}

	// Capacity, timing, and duplicate checks run inside the repository
	// transaction under a lock on the event row, so two concurrent
	// registrations cannot both pass the capacity count.
	ticket, err := s.ticketRepo.CreateConfirmed(ctx, event, userID, s.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCapacityExceeded),
			errors.Is(err, domain.ErrEventAlreadyOccurred),
			errors.Is(err, domain.ErrAlreadyRegistered):
			return nil, err
		}
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.dispatchConfirmation(event, userID)
	return ticket, nil
}

// dispatchConfirmation sends the confirmation email in the background.
// Failures are logged and never affect the registration outcome.
func (s *registrationService) dispatchConfirmation(event *domain.Event, userID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.contextTimeout)
		defer cancel()

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			s.logger.Error("confirmation email skipped", "event_id", event.ID, "user_id", userID, "err", err)
			return
		}
		data := &domain.RegistrationConfirmedEmailData{
			Email:      user.Email,
			UserName:   user.Name,
			EventTitle: event.Title,
		}
		if event.MeetingLink != nil {
			data.MeetingLink = *event.MeetingLink
		}
		if event.StartTime != nil {
			data.StartTime = event.StartTime.Format("Mon, Jan 2 2006 15:04 MST")
		}
		if err := s.emailService.SendRegistrationConfirmed(ctx, data); err != nil {
			s.logger.Error("confirmation email failed", "event_id", event.ID, "user_id", userID, "err", err)
		}
	}()
}

func (s *registrationService) Cancel(ctx context.Context, ticketID, userID string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if ticket.UserID != userID {
		return nil, domain.ErrForbidden
	}
	updated, err := s.ticketRepo.UpdateStatus(ctx, ticketID, domain.TicketStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel ticket: %w", err)
	}
	return updated, nil
}

func (s *registrationService) Withdraw(ctx context.Context, ticketID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get ticket: %w", err)
	}
	if ticket.UserID != userID {
		return domain.ErrForbidden
	}
	if err := s.ticketRepo.Delete(ctx, ticketID); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	return nil
}

// IsFull recomputes the confirmed count on every call; registrations are
// concurrent across users, so the result is never cached.
func (s *registrationService) IsFull(ctx context.Context, event *domain.Event) (bool, error) {
	if event.Capacity == nil {
		return false, nil
	}
	count, err := s.ticketRepo.CountConfirmedByEventID(ctx, event.ID)
	if err != nil {
		return false, fmt.Errorf("count confirmed tickets: %w", err)
	}
	return count >= *event.Capacity, nil
}

func (s *registrationService) ListMyTickets(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.TicketWithEvent, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tickets, total, err := s.ticketRepo.ListByUserID(ctx, userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}

	result := make([]*domain.TicketWithEvent, 0, len(tickets))
	eventsByID := make(map[string]*domain.Event)
	for _, t := range tickets {
		event, ok := eventsByID[t.EventID]
		if !ok {
			event, err = s.eventRepo.GetByID(ctx, t.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// Event deleted but ticket remains; skip the entry.
					continue
				}
				return nil, 0, fmt.Errorf("get event for ticket: %w", err)
			}
			eventsByID[t.EventID] = event
		}
		// The meeting link stays visible for the holder as long as the ticket
		// is not cancelled.
		includeLink := t.Status != domain.TicketStatusCancelled
		result = append(result, &domain.TicketWithEvent{
			Ticket: t,
			Event:  domain.NewEventView(event, includeLink),
		})
	}
	return result, total, nil
}
