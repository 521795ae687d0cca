package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventlive/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID    map[string]*domain.Event
	nextID  int
	err     error // if set, every method returns this error
	similar []*domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	if e.ID == "" {
		e.ID = fmt.Sprintf("ev-%d", f.nextID)
		f.nextID++
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.add(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.byID {
		if e.Slug == slug {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) DeleteCascade(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) list(match func(*domain.Event) bool) []*domain.Event {
	var out []*domain.Event
	for _, e := range f.byID {
		if match(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matchesSearch(e *domain.Event, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(e.Title), strings.ToLower(search))
}

func (f *fakeEventRepo) ListPublishedUpcoming(ctx context.Context, filter domain.ListingFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	out := f.list(func(e *domain.Event) bool {
		return e.Status == domain.EventStatusPublished && matchesSearch(e, filter.Search)
	})
	return out, len(out), nil
}

func (f *fakeEventRepo) ListByCategory(ctx context.Context, categoryID string, filter domain.ListingFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	out := f.list(func(e *domain.Event) bool { return e.Status == domain.EventStatusPublished })
	return out, len(out), nil
}

func (f *fakeEventRepo) ListByOrganizer(ctx context.Context, organizerID, search string, bucket domain.OrganizerBucket, params domain.PaginationParams) ([]*domain.Event, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	out := f.list(func(e *domain.Event) bool {
		if e.OrganizerID != organizerID || !matchesSearch(e, search) {
			return false
		}
		if bucket == domain.BucketDraft {
			return e.Status == domain.EventStatusDraft
		}
		return e.Status != domain.EventStatusDraft
	})
	return out, len(out), nil
}

func (f *fakeEventRepo) ListSimilar(ctx context.Context, eventID string, categoryIDs []string, limit int) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.similar, nil
}

func (f *fakeEventRepo) ListUpcomingFeatured(ctx context.Context) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(e *domain.Event) bool { return e.IsFeatured }), nil
}

func (f *fakeEventRepo) ListNextUpcoming(ctx context.Context, limit int) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.list(func(e *domain.Event) bool { return e.Status == domain.EventStatusPublished })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEventRepo) ListWithTicketCounts(ctx context.Context, organizerID, search string, params domain.PaginationParams) ([]*domain.EventWithTicketCount, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	events := f.list(func(e *domain.Event) bool {
		return e.OrganizerID == organizerID && e.Status == domain.EventStatusPublished && matchesSearch(e, search)
	})
	out := make([]*domain.EventWithTicketCount, 0, len(events))
	for _, e := range events {
		out = append(out, &domain.EventWithTicketCount{Event: e})
	}
	return out, len(out), nil
}

// fakeTicketRepo is an in-memory TicketRepository. CreateConfirmed applies
// the same precondition order as the real repository and holds the mutex
// for check plus insert, mirroring the event row lock.
type fakeTicketRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Ticket
	nextID int
	err    error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{byID: make(map[string]*domain.Ticket), nextID: 1}
}

func (f *fakeTicketRepo) add(t *domain.Ticket) *domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(t)
}

func (f *fakeTicketRepo) addLocked(t *domain.Ticket) *domain.Ticket {
	if t.ID == "" {
		t.ID = fmt.Sprintf("tk-%d", f.nextID)
		f.nextID++
	}
	f.byID[t.ID] = t
	return t
}

func (f *fakeTicketRepo) CreateConfirmed(ctx context.Context, event *domain.Event, userID string, now time.Time) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	confirmed := 0
	for _, t := range f.byID {
		if t.EventID == event.ID && t.Status == domain.TicketStatusConfirmed {
			confirmed++
		}
	}
	if event.Capacity != nil && confirmed >= *event.Capacity {
		return nil, domain.ErrCapacityExceeded
	}
	if event.HasStarted(now) {
		return nil, domain.ErrEventAlreadyOccurred
	}
	for _, t := range f.byID {
		if t.EventID == event.ID && t.UserID == userID {
			return nil, domain.ErrAlreadyRegistered
		}
	}
	return f.addLocked(&domain.Ticket{
		EventID:   event.ID,
		UserID:    userID,
		Status:    domain.TicketStatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}), nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTicketRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, t := range f.byID {
		if t.EventID == eventID && t.UserID == userID {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTicketRepo) CountConfirmedByEventID(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	count := 0
	for _, t := range f.byID {
		if t.EventID == eventID && t.Status == domain.TicketStatusConfirmed {
			count++
		}
	}
	return count, nil
}

func (f *fakeTicketRepo) UpdateStatus(ctx context.Context, id, status string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	t.Status = status
	return t, nil
}

func (f *fakeTicketRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTicketRepo) ListByUserID(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Ticket, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []*domain.Ticket
	for _, t := range f.byID {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeTicketRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.TicketWithUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.TicketWithUser
	for _, t := range f.byID {
		if t.EventID == eventID {
			out = append(out, &domain.TicketWithUser{Ticket: t})
		}
	}
	return out, nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	byID   map[string]*domain.User
	nextID int
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	if u.ID == "" {
		u.ID = fmt.Sprintf("u-%d", f.nextID)
		f.nextID++
	}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	f.add(u)
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

// fakeCategoryRepo is an in-memory CategoryRepository.
type fakeCategoryRepo struct {
	categories []*domain.Category
	byEvent    map[string][]string
	err        error
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{byEvent: make(map[string][]string)}
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fakeCategoryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Category
	for _, id := range f.byEvent[eventID] {
		for _, c := range f.categories {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) SetEventCategories(ctx context.Context, eventID string, categoryIDs []string) error {
	if f.err != nil {
		return f.err
	}
	f.byEvent[eventID] = categoryIDs
	return nil
}

// fakeEmailService records confirmation sends; sent is buffered so the
// background dispatch goroutine never blocks.
type fakeEmailService struct {
	mu   sync.Mutex
	sent chan *domain.RegistrationConfirmedEmailData
	err  error
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{sent: make(chan *domain.RegistrationConfirmedEmailData, 8)}
}

func (f *fakeEmailService) SendRegistrationConfirmed(ctx context.Context, data *domain.RegistrationConfirmedEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent <- data
	return nil
}

// fakeImageStore records saved and deleted refs.
type fakeImageStore struct {
	saved   [][]byte
	deleted []string
	err     error
}

func (f *fakeImageStore) Save(ctx context.Context, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, data)
	return fmt.Sprintf("/events/upload-%d.webp", len(f.saved)), nil
}

func (f *fakeImageStore) Delete(ctx context.Context, ref string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, ref)
	return nil
}
