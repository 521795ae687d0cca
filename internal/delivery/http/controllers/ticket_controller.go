package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventlive/internal/delivery/http/helpers"
	"eventlive/internal/delivery/http/middleware"
	"eventlive/internal/domain"
)

// TicketController serves the attendee side of registration: registering for
// an event, listing own tickets, cancelling, and withdrawing.
type TicketController struct {
	Logger       *slog.Logger
	Registration domain.RegistrationService
}

func NewTicketController(logger *slog.Logger, registration domain.RegistrationService) *TicketController {
	return &TicketController{
		Logger:       logger,
		Registration: registration,
	}
}

// registrationFailure maps a business precondition failure to its response
// message, or returns false when err is not one of the registration sentinels.
func registrationFailure(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "this event is fully booked", true
	case errors.Is(err, domain.ErrEventAlreadyOccurred):
		return "this event has already started", true
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return "you are already registered for this event", true
	}
	return "", false
}

// Register godoc
// @Summary Register for an event
// @Description Creates a confirmed ticket for the authenticated user. Fails with 409 and a registration field message when the event is full, has already started, or the user already holds a ticket for it in any status.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 201 {object} helpers.APIResponse "data contains the created ticket"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict, error.fields.registration explains the failed precondition"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/tickets [post]
func (c *TicketController) Register(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing event ID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}

	ticket, err := c.Registration.Register(r.Context(), eventID, userID)
	if err != nil {
		if msg, isBusiness := registrationFailure(err); isBusiness {
			helpers.WriteJSONErrorFields(w, http.StatusConflict, helpers.ErrCodeConflict, "registration failed", map[string]string{"registration": msg})
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, ticket)
}

// MyTicketsResponse is the data payload for GET /my-tickets.
type MyTicketsResponse struct {
	Tickets []*domain.TicketWithEvent `json:"tickets"`
	Meta    helpers.PaginationMeta    `json:"meta"`
}

// ListMyTickets godoc
// @Summary List the authenticated user's tickets
// @Description Paginated, newest first. Each entry carries the event projection; the meeting link is present unless the ticket is cancelled.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Success 200 {object} helpers.APIResponse "data contains tickets and meta"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /my-tickets [get]
func (c *TicketController) ListMyTickets(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	params := helpers.ParsePagination(r)

	tickets, total, err := c.Registration.ListMyTickets(r.Context(), userID, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MyTicketsResponse{
		Tickets: tickets,
		Meta:    helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Cancel godoc
// @Summary Cancel a ticket
// @Description Marks the ticket cancelled. The ticket row is kept. Only the ticket holder may cancel.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param ticketID path string true "Ticket ID"
// @Success 200 {object} helpers.APIResponse "data contains the updated ticket"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/{ticketID}/cancel [put]
func (c *TicketController) Cancel(w http.ResponseWriter, r *http.Request) {
	ticketID := r.PathValue("ticketID")
	if ticketID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing ticket ID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}

	ticket, err := c.Registration.Cancel(r.Context(), ticketID, userID)
	if err != nil {
		c.writeTicketError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}

// Withdraw godoc
// @Summary Withdraw from an event
// @Description Deletes the ticket row entirely, freeing a capacity slot. Only the ticket holder may withdraw.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param ticketID path string true "Ticket ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/{ticketID} [delete]
func (c *TicketController) Withdraw(w http.ResponseWriter, r *http.Request) {
	ticketID := r.PathValue("ticketID")
	if ticketID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing ticket ID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}

	if err := c.Registration.Withdraw(r.Context(), ticketID, userID); err != nil {
		c.writeTicketError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *TicketController) writeTicketError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "ticket not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "you do not own this ticket")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
