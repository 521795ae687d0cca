package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventlive/internal/delivery/http/helpers"
	"eventlive/internal/domain"
)

// testLogger is a no-op logger so tests don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// fakeRegistrationService implements domain.RegistrationService.
type fakeRegistrationService struct {
	registerResult *domain.Ticket
	registerErr    error
	lastEventID    string
	lastUserID     string

	cancelResult *domain.Ticket
	cancelErr    error
	withdrawErr  error
	lastTicketID string

	listResult []*domain.TicketWithEvent
	listTotal  int
	listErr    error
}

func (f *fakeRegistrationService) Register(ctx context.Context, eventID, userID string) (*domain.Ticket, error) {
	f.lastEventID, f.lastUserID = eventID, userID
	return f.registerResult, f.registerErr
}

func (f *fakeRegistrationService) Cancel(ctx context.Context, ticketID, userID string) (*domain.Ticket, error) {
	f.lastTicketID, f.lastUserID = ticketID, userID
	return f.cancelResult, f.cancelErr
}

func (f *fakeRegistrationService) Withdraw(ctx context.Context, ticketID, userID string) error {
	f.lastTicketID, f.lastUserID = ticketID, userID
	return f.withdrawErr
}

func (f *fakeRegistrationService) IsFull(ctx context.Context, event *domain.Event) (bool, error) {
	return false, nil
}

func (f *fakeRegistrationService) ListMyTickets(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.TicketWithEvent, int, error) {
	f.lastUserID = userID
	return f.listResult, f.listTotal, f.listErr
}

// fakeListingService implements domain.ListingService.
type fakeListingService struct {
	listResult []*domain.EventView
	listTotal  int
	listErr    error
	lastFilter domain.ListingFilter
	lastBucket domain.OrganizerBucket
	lastSearch string

	categoryResult *domain.Category

	detailResult *domain.EventDetail
	detailErr    error
	lastSlug     string
	lastViewerID string

	homeResult *domain.HomePage
	homeErr    error
}

func (f *fakeListingService) ListPublished(ctx context.Context, filter domain.ListingFilter, params domain.PaginationParams) ([]*domain.EventView, int, error) {
	f.lastFilter = filter
	return f.listResult, f.listTotal, f.listErr
}

func (f *fakeListingService) ListByCategory(ctx context.Context, categorySlug string, filter domain.ListingFilter, params domain.PaginationParams) (*domain.Category, []*domain.EventView, int, error) {
	f.lastSlug, f.lastFilter = categorySlug, filter
	if f.listErr != nil {
		return nil, nil, 0, f.listErr
	}
	return f.categoryResult, f.listResult, f.listTotal, nil
}

func (f *fakeListingService) ListOrganized(ctx context.Context, organizerID, search string, bucket domain.OrganizerBucket, params domain.PaginationParams) ([]*domain.EventView, int, error) {
	f.lastSearch, f.lastBucket = search, bucket
	return f.listResult, f.listTotal, f.listErr
}

func (f *fakeListingService) GetBySlug(ctx context.Context, slug, viewerID string) (*domain.EventDetail, error) {
	f.lastSlug, f.lastViewerID = slug, viewerID
	return f.detailResult, f.detailErr
}

func (f *fakeListingService) Home(ctx context.Context) (*domain.HomePage, error) {
	return f.homeResult, f.homeErr
}

// fakeManagementService implements domain.EventManagementService.
type fakeManagementService struct {
	createResult *domain.Event
	createErr    error
	lastPayload  *domain.EventPayload

	getResult *domain.EventView
	getErr    error

	updateResult *domain.Event
	updateErr    error

	deleteErr error

	uploadRef  string
	uploadErr  error
	lastUpload []byte

	registrationsResult []*domain.EventWithTicketCount
	registrationsTotal  int
	registrationsErr    error

	attendeesResult []*domain.TicketWithUser
	attendeesErr    error

	lastEventID     string
	lastOrganizerID string
}

func (f *fakeManagementService) Create(ctx context.Context, organizerID string, payload *domain.EventPayload) (*domain.Event, error) {
	f.lastOrganizerID, f.lastPayload = organizerID, payload
	return f.createResult, f.createErr
}

func (f *fakeManagementService) GetForEdit(ctx context.Context, eventID, organizerID string) (*domain.EventView, error) {
	f.lastEventID, f.lastOrganizerID = eventID, organizerID
	return f.getResult, f.getErr
}

func (f *fakeManagementService) Update(ctx context.Context, eventID, organizerID string, payload *domain.EventPayload) (*domain.Event, error) {
	f.lastEventID, f.lastOrganizerID, f.lastPayload = eventID, organizerID, payload
	return f.updateResult, f.updateErr
}

func (f *fakeManagementService) Delete(ctx context.Context, eventID, organizerID string) error {
	f.lastEventID, f.lastOrganizerID = eventID, organizerID
	return f.deleteErr
}

func (f *fakeManagementService) UploadCover(ctx context.Context, data []byte) (string, error) {
	f.lastUpload = data
	return f.uploadRef, f.uploadErr
}

func (f *fakeManagementService) ListRegistrations(ctx context.Context, organizerID, search string, params domain.PaginationParams) ([]*domain.EventWithTicketCount, int, error) {
	f.lastOrganizerID = organizerID
	return f.registrationsResult, f.registrationsTotal, f.registrationsErr
}

func (f *fakeManagementService) ListAttendees(ctx context.Context, eventID, organizerID string) ([]*domain.TicketWithUser, error) {
	f.lastEventID, f.lastOrganizerID = eventID, organizerID
	return f.attendeesResult, f.attendeesErr
}

// fakeAuthService implements domain.AuthService.
type fakeAuthService struct {
	signUpResult *domain.User
	signUpErr    error
	loginToken   string
	loginUser    *domain.User
	loginErr     error
	lastEmail    string
}

func (f *fakeAuthService) SignUp(ctx context.Context, name, email, password string) (*domain.User, error) {
	f.lastEmail = email
	return f.signUpResult, f.signUpErr
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail = email
	return f.loginToken, f.loginUser, f.loginErr
}
