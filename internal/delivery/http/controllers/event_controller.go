package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventlive/internal/delivery/http/helpers"
	"eventlive/internal/delivery/http/middleware"
	"eventlive/internal/domain"
)

// EventController serves the public browse surface: home, listings,
// category pages, and the event detail page.
type EventController struct {
	Logger     *slog.Logger
	Listing    domain.ListingService
	Categories domain.CategoryRepository
}

func NewEventController(logger *slog.Logger, listing domain.ListingService, categories domain.CategoryRepository) *EventController {
	return &EventController{
		Logger:     logger,
		Listing:    listing,
		Categories: categories,
	}
}

// EventListResponse is the data payload for paginated event listings.
type EventListResponse struct {
	Events  []*domain.EventView    `json:"events"`
	Meta    helpers.PaginationMeta `json:"meta"`
	Filters map[string]string      `json:"filters"`
}

func listingFilterFromQuery(r *http.Request) domain.ListingFilter {
	q := r.URL.Query()
	return domain.ListingFilter{
		Search: q.Get("search"),
		Sort:   domain.ParseSortOrder(q.Get("sort")),
	}
}

// ListEvents godoc
// @Summary List published upcoming events
// @Description Paginated listing of published events whose start time is in the future. Supports search (title substring, case-insensitive) and sort (alp, just_added, upcoming).
// @Tags events
// @Produce json
// @Param search query string false "Title substring filter"
// @Param sort query string false "Sort order: alp | just_added | upcoming"
// @Param page query int false "Page number (9 events per page)"
// @Success 200 {object} helpers.APIResponse "data contains events, meta, and filters"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := listingFilterFromQuery(r)
	params := helpers.ParsePagination(r)

	events, total, err := c.Listing.ListPublished(r.Context(), filter, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Events: events,
		Meta:   helpers.NewPaginationMeta(params.Page, params.PageSize, total),
		Filters: map[string]string{
			"search": filter.Search,
			"sort":   string(filter.Sort),
		},
	})
}

// ShowEvent godoc
// @Summary Show an event by slug
// @Description Event detail page. The meeting link is included only for the organizer or a holder of a non-cancelled ticket. Past events are 404 for everyone but their organizer.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} helpers.APIResponse "data contains the event detail"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug} [get]
func (c *EventController) ShowEvent(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing slug")
		return
	}
	// Anonymous viewers are fine here; the viewer ID only widens visibility.
	viewerID, _ := middleware.UserIDFromContext(r.Context())

	detail, err := c.Listing.GetBySlug(r.Context(), slug, viewerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// CategoryEventsResponse is the data payload for GET /categories/{slug}.
type CategoryEventsResponse struct {
	Category *domain.Category       `json:"category"`
	Events   []*domain.EventView    `json:"events"`
	Meta     helpers.PaginationMeta `json:"meta"`
	Filters  map[string]string      `json:"filters"`
}

// ListByCategory godoc
// @Summary List events in a category
// @Description Paginated listing of published upcoming events for one category; same sort vocabulary as /events.
// @Tags events
// @Produce json
// @Param slug path string true "Category slug"
// @Param sort query string false "Sort order: alp | just_added | upcoming"
// @Param page query int false "Page number"
// @Success 200 {object} helpers.APIResponse "data contains category, events, meta, filters"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /categories/{slug} [get]
func (c *EventController) ListByCategory(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing slug")
		return
	}
	filter := listingFilterFromQuery(r)
	params := helpers.ParsePagination(r)

	category, events, total, err := c.Listing.ListByCategory(r.Context(), slug, filter, params)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "category not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CategoryEventsResponse{
		Category: category,
		Events:   events,
		Meta:     helpers.NewPaginationMeta(params.Page, params.PageSize, total),
		Filters: map[string]string{
			"search": filter.Search,
			"sort":   string(filter.Sort),
		},
	})
}

// ListCategories godoc
// @Summary List all categories
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the category list"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /categories [get]
func (c *EventController) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.Categories.List(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]any{"categories": categories})
}

// Home godoc
// @Summary Landing page data
// @Description The next six upcoming events, featured upcoming events, and all categories.
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains upcoming_events, featured_events, categories"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /home [get]
func (c *EventController) Home(w http.ResponseWriter, r *http.Request) {
	page, err := c.Listing.Home(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}
