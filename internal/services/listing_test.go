package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlive/internal/clock"
	"eventlive/internal/domain"
)

type listingFixture struct {
	events     *fakeEventRepo
	tickets    *fakeTicketRepo
	categories *fakeCategoryRepo
	now        time.Time
	svc        domain.ListingService
}

func newListingFixture(t *testing.T) *listingFixture {
	t.Helper()
	f := &listingFixture{
		events:     newFakeEventRepo(),
		tickets:    newFakeTicketRepo(),
		categories: newFakeCategoryRepo(),
		now:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewListingService(f.events, f.tickets, f.categories, clock.NewFixed(f.now), 5*time.Second)
	return f
}

func (f *listingFixture) upcomingEvent(title, organizerID string) *domain.Event {
	return f.events.add(&domain.Event{
		Title:       title,
		Slug:        slugify(title),
		OrganizerID: organizerID,
		Status:      domain.EventStatusPublished,
		StartTime:   timePtr(f.now.Add(24 * time.Hour)),
		EndTime:     timePtr(f.now.Add(26 * time.Hour)),
		Capacity:    intPtr(10),
		MeetingLink: strPtr("https://meet.example.com/x"),
	})
}

func TestListPublished(t *testing.T) {
	f := newListingFixture(t)
	f.upcomingEvent("Go Meetup", "u-org")
	f.upcomingEvent("Rust Meetup", "u-org")

	views, total, err := f.svc.ListPublished(context.Background(), domain.ListingFilter{Sort: domain.SortUpcoming}, domain.PaginationParams{Page: 1, PageSize: 9})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.Nil(t, v.MeetingLink, "public listings never expose meeting links")
	}
}

func TestListByCategory(t *testing.T) {
	t.Run("unknown category", func(t *testing.T) {
		f := newListingFixture(t)
		_, _, _, err := f.svc.ListByCategory(context.Background(), "nope", domain.ListingFilter{}, domain.PaginationParams{Page: 1, PageSize: 9})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("returns the category with its events", func(t *testing.T) {
		f := newListingFixture(t)
		f.categories.categories = []*domain.Category{{ID: "c-1", Name: "Tech", Slug: "tech"}}
		f.upcomingEvent("Go Meetup", "u-org")

		category, views, total, err := f.svc.ListByCategory(context.Background(), "tech", domain.ListingFilter{}, domain.PaginationParams{Page: 1, PageSize: 9})
		require.NoError(t, err)
		assert.Equal(t, "Tech", category.Name)
		assert.Equal(t, 1, total)
		assert.Len(t, views, 1)
	})
}

func TestListOrganized(t *testing.T) {
	f := newListingFixture(t)
	f.upcomingEvent("Mine", "u-org")
	f.upcomingEvent("Theirs", "u-other")

	views, total, err := f.svc.ListOrganized(context.Background(), "u-org", "", domain.BucketUpcoming, domain.PaginationParams{Page: 1, PageSize: 9})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, views, 1)
	assert.Equal(t, "Mine", views[0].Title)
	// The organizer sees their own meeting links.
	assert.NotNil(t, views[0].MeetingLink)
}

func TestGetBySlug(t *testing.T) {
	t.Run("anonymous viewer gets no meeting link", func(t *testing.T) {
		f := newListingFixture(t)
		f.upcomingEvent("Go Meetup", "u-org")

		detail, err := f.svc.GetBySlug(context.Background(), "go-meetup", "")
		require.NoError(t, err)
		assert.Nil(t, detail.Event.MeetingLink)
		assert.False(t, detail.IsOrganizer)
		assert.False(t, detail.HasTicket)
		assert.Nil(t, detail.TicketStatus)
	})

	t.Run("organizer sees the meeting link", func(t *testing.T) {
		f := newListingFixture(t)
		f.upcomingEvent("Go Meetup", "u-org")

		detail, err := f.svc.GetBySlug(context.Background(), "go-meetup", "u-org")
		require.NoError(t, err)
		assert.True(t, detail.IsOrganizer)
		assert.NotNil(t, detail.Event.MeetingLink)
	})

	t.Run("active ticket holder sees the meeting link", func(t *testing.T) {
		f := newListingFixture(t)
		event := f.upcomingEvent("Go Meetup", "u-org")
		f.tickets.add(&domain.Ticket{EventID: event.ID, UserID: "u-viewer", Status: domain.TicketStatusConfirmed})

		detail, err := f.svc.GetBySlug(context.Background(), "go-meetup", "u-viewer")
		require.NoError(t, err)
		assert.True(t, detail.HasTicket)
		require.NotNil(t, detail.TicketStatus)
		assert.Equal(t, domain.TicketStatusConfirmed, *detail.TicketStatus)
		assert.NotNil(t, detail.Event.MeetingLink)
	})

	t.Run("cancelled ticket holder loses the meeting link", func(t *testing.T) {
		f := newListingFixture(t)
		event := f.upcomingEvent("Go Meetup", "u-org")
		f.tickets.add(&domain.Ticket{EventID: event.ID, UserID: "u-viewer", Status: domain.TicketStatusCancelled})

		detail, err := f.svc.GetBySlug(context.Background(), "go-meetup", "u-viewer")
		require.NoError(t, err)
		assert.False(t, detail.HasTicket)
		require.NotNil(t, detail.TicketStatus)
		assert.Equal(t, domain.TicketStatusCancelled, *detail.TicketStatus)
		assert.Nil(t, detail.Event.MeetingLink)
	})

	t.Run("past event is missing for non-organizers", func(t *testing.T) {
		f := newListingFixture(t)
		event := f.upcomingEvent("Go Meetup", "u-org")
		event.StartTime = timePtr(f.now.Add(-2 * time.Hour))

		_, err := f.svc.GetBySlug(context.Background(), "go-meetup", "u-viewer")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		// The organizer can still open it.
		detail, err := f.svc.GetBySlug(context.Background(), "go-meetup", "u-org")
		require.NoError(t, err)
		assert.True(t, detail.IsOrganizer)
	})

	t.Run("full event is flagged", func(t *testing.T) {
		f := newListingFixture(t)
		event := f.upcomingEvent("Go Meetup", "u-org")
		event.Capacity = intPtr(1)
		f.tickets.add(&domain.Ticket{EventID: event.ID, UserID: "u-x", Status: domain.TicketStatusConfirmed})

		detail, err := f.svc.GetBySlug(context.Background(), "go-meetup", "")
		require.NoError(t, err)
		assert.True(t, detail.IsFull)
	})

	t.Run("similar events come from shared categories", func(t *testing.T) {
		f := newListingFixture(t)
		event := f.upcomingEvent("Go Meetup", "u-org")
		f.categories.categories = []*domain.Category{{ID: "c-1", Name: "Tech", Slug: "tech"}}
		f.categories.byEvent[event.ID] = []string{"c-1"}
		f.events.similar = []*domain.Event{
			{ID: "ev-similar", Title: "GopherCon", Status: domain.EventStatusPublished},
		}

		detail, err := f.svc.GetBySlug(context.Background(), "go-meetup", "")
		require.NoError(t, err)
		require.Len(t, detail.SimilarEvents, 1)
		assert.Equal(t, "GopherCon", detail.SimilarEvents[0].Title)
		require.Len(t, detail.Event.Categories, 1)
	})
}

func TestHome(t *testing.T) {
	f := newListingFixture(t)
	featured := f.upcomingEvent("Featured", "u-org")
	featured.IsFeatured = true
	f.upcomingEvent("Plain", "u-org")
	f.categories.categories = []*domain.Category{{ID: "c-1", Name: "Tech", Slug: "tech"}}

	page, err := f.svc.Home(context.Background())
	require.NoError(t, err)
	assert.Len(t, page.UpcomingEvents, 2)
	require.Len(t, page.FeaturedEvents, 1)
	assert.Equal(t, "Featured", page.FeaturedEvents[0].Title)
	assert.Len(t, page.Categories, 1)
}
