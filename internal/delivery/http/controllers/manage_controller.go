package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"eventlive/internal/delivery/http/helpers"
	"eventlive/internal/delivery/http/middleware"
	"eventlive/internal/domain"
)

// maxCoverBytes caps cover image uploads at 5 MiB.
const maxCoverBytes = 5 << 20

// ManageController serves the organizer dashboard: event CRUD, draft and
// organized listings, and registration overviews.
type ManageController struct {
	Logger     *slog.Logger
	Management domain.EventManagementService
	Listing    domain.ListingService
}

func NewManageController(logger *slog.Logger, management domain.EventManagementService, listing domain.ListingService) *ManageController {
	return &ManageController{
		Logger:     logger,
		Management: management,
		Listing:    listing,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates a draft or published event for the authenticated organizer. Drafts need only a title; publishing requires the full field set.
// @Tags manage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.EventPayload true "Event fields"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed with per-field messages"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /manage/events [post]
func (c *ManageController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	var payload domain.EventPayload
	if !helpers.DecodeAndValidate(w, r, &payload) {
		return
	}

	event, err := c.Management.Create(r.Context(), userID, &payload)
	if err != nil {
		c.writeManageError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, domain.NewEventView(event, true))
}

// GetEventForEdit godoc
// @Summary Fetch an owned event for editing
// @Description Returns the event with the meeting link visible. Only the organizer may fetch it.
// @Tags manage
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /manage/events/{eventID} [get]
func (c *ManageController) GetEventForEdit(w http.ResponseWriter, r *http.Request) {
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

	view, err := c.Management.GetForEdit(r.Context(), eventID, userID)
	if err != nil {
		c.writeManageError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Replaces the event's fields. Ownership is checked before validation, so a non-owner gets 403 even with an invalid payload. Changing the title regenerates the slug.
// @Tags manage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param payload body domain.EventPayload true "Event fields"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed with per-field messages"
// @Router /manage/events/{eventID} [put]
func (c *ManageController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
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
	var payload domain.EventPayload
	if !helpers.DecodeAndValidate(w, r, &payload) {
		return
	}

	event, err := c.Management.Update(r.Context(), eventID, userID, &payload)
	if err != nil {
		c.writeManageError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, domain.NewEventView(event, true))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Removes the event and every ticket attached to it. Only the organizer may delete.
// @Tags manage
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /manage/events/{eventID} [delete]
func (c *ManageController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
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

	if err := c.Management.Delete(r.Context(), eventID, userID); err != nil {
		c.writeManageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadCover godoc
// @Summary Upload a cover image
// @Description Stores an uploaded cover image and returns the reference to submit as cover_image when creating or updating an event.
// @Tags manage
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Cover image file"
// @Success 201 {object} helpers.APIResponse "data contains cover_image"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /manage/events/cover [post]
func (c *ManageController) UploadCover(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxCoverBytes)
	if err := r.ParseMultipartForm(maxCoverBytes); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "expected multipart form data with an image file")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing image file")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read image file")
		return
	}

	ref, err := c.Management.UploadCover(r.Context(), data)
	if err != nil {
		c.writeManageError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, map[string]string{"cover_image": ref})
}

// ListOrganized godoc
// @Summary List the organizer's events
// @Description Non-draft events bucketed by sort=upcoming (default) or sort=past, with optional title search. Meeting links are visible to the owner.
// @Tags manage
// @Produce json
// @Security BearerAuth
// @Param sort query string false "Bucket: upcoming | past"
// @Param search query string false "Title substring filter"
// @Param page query int false "Page number"
// @Success 200 {object} helpers.APIResponse "data contains events and meta"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /manage/events [get]
func (c *ManageController) ListOrganized(w http.ResponseWriter, r *http.Request) {
	c.listOrganized(w, r, domain.ParseOrganizerBucket(r.URL.Query().Get("sort")))
}

// ListDrafts godoc
// @Summary List the organizer's draft events
// @Tags manage
// @Produce json
// @Security BearerAuth
// @Param search query string false "Title substring filter"
// @Param page query int false "Page number"
// @Success 200 {object} helpers.APIResponse "data contains events and meta"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /manage/events/drafts [get]
func (c *ManageController) ListDrafts(w http.ResponseWriter, r *http.Request) {
	c.listOrganized(w, r, domain.BucketDraft)
}

func (c *ManageController) listOrganized(w http.ResponseWriter, r *http.Request, bucket domain.OrganizerBucket) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	search := r.URL.Query().Get("search")
	params := helpers.ParsePagination(r)

	events, total, err := c.Listing.ListOrganized(r.Context(), userID, search, bucket, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Events: events,
		Meta:   helpers.NewPaginationMeta(params.Page, params.PageSize, total),
		Filters: map[string]string{
			"search": search,
			"sort":   string(bucket),
		},
	})
}

// RegistrationsResponse is the data payload for the registrations overview.
type RegistrationsResponse struct {
	Events []*domain.EventWithTicketCount `json:"events"`
	Meta   helpers.PaginationMeta         `json:"meta"`
}

// ListRegistrations godoc
// @Summary Registration counts for the organizer's published events
// @Tags manage
// @Produce json
// @Security BearerAuth
// @Param search query string false "Title substring filter"
// @Param page query int false "Page number"
// @Success 200 {object} helpers.APIResponse "data contains events with confirmed ticket counts"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /manage/events/registrations [get]
func (c *ManageController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	search := r.URL.Query().Get("search")
	params := helpers.ParsePagination(r)

	events, total, err := c.Management.ListRegistrations(r.Context(), userID, search, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RegistrationsResponse{
		Events: events,
		Meta:   helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// ListAttendees godoc
// @Summary List attendees of an owned event
// @Tags manage
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the attendee list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /manage/events/{eventID}/attendees [get]
func (c *ManageController) ListAttendees(w http.ResponseWriter, r *http.Request) {
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

	attendees, err := c.Management.ListAttendees(r.Context(), eventID, userID)
	if err != nil {
		c.writeManageError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]any{"attendees": attendees})
}

func (c *ManageController) writeManageError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs domain.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		helpers.WriteFieldErrors(w, fieldErrs)
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "you do not own this event")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
