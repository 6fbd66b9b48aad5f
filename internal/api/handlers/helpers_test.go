package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/portal-acara/server/internal/api/middleware"
	"github.com/portal-acara/server/internal/domain/approval"
	"github.com/portal-acara/server/internal/domain/events"
	"github.com/portal-acara/server/internal/domain/ids"
	"github.com/portal-acara/server/internal/domain/organizers"
	"github.com/portal-acara/server/internal/domain/users"
)

const testEnv = "test"

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestULID(t *testing.T) string {
	t.Helper()
	id, err := ids.NewULID()
	if err != nil {
		t.Fatalf("generate ulid: %v", err)
	}
	return id
}

// authedRequest builds a request carrying an authenticated actor, the way
// the bearer middleware would after validating a token.
func authedRequest(t *testing.T, method, target string, body io.Reader, actor approval.Actor) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

// testAssets builds deterministic URLs so tests can assert on them.
type testAssets struct{}

func (testAssets) URL(key string) string {
	if key == "" {
		return ""
	}
	return "https://assets.test/" + key
}

// fakeUserRepo is an in-memory users.Repository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*users.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*users.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *users.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return users.ErrEmailTaken
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, users.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *users.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return users.ErrNotFound
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

// fakeOrganizerRepo is an in-memory organizers.Repository.
type fakeOrganizerRepo struct {
	mu         sync.Mutex
	links      map[string]*organizers.Link
	organizers map[string]*organizers.Organizer
}

func newFakeOrganizerRepo() *fakeOrganizerRepo {
	return &fakeOrganizerRepo{
		links:      make(map[string]*organizers.Link),
		organizers: make(map[string]*organizers.Organizer),
	}
}

func (f *fakeOrganizerRepo) CreateWithLink(ctx context.Context, organizer *organizers.Organizer, link *organizers.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.organizers {
		if existing.Name == organizer.Name {
			return organizers.ErrDuplicateName
		}
	}
	for _, existing := range f.links {
		if existing.UserID == link.UserID && existing.Status == organizers.StatusPending {
			return organizers.ErrPendingExists
		}
	}
	orgClone := *organizer
	linkClone := *link
	f.organizers[organizer.ID] = &orgClone
	f.links[link.ID] = &linkClone
	return nil
}

func (f *fakeOrganizerRepo) GetLink(ctx context.Context, linkID string) (*organizers.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[linkID]
	if !ok {
		return nil, organizers.ErrNotFound
	}
	return f.withOrganizer(link), nil
}

func (f *fakeOrganizerRepo) DecideLink(ctx context.Context, linkID string, status organizers.LinkStatus, note, adminID string, decidedAt time.Time) (*organizers.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[linkID]
	if !ok {
		return nil, organizers.ErrNotFound
	}
	if link.Status != organizers.StatusPending {
		return nil, organizers.ErrInvalidTransition
	}
	link.Status = status
	link.AdminNote = note
	link.DecidedBy = adminID
	link.DecidedAt = &decidedAt
	return f.withOrganizer(link), nil
}

func (f *fakeOrganizerRepo) LatestLinkFor(ctx context.Context, userID string) (*organizers.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *organizers.Link
	for _, link := range f.links {
		if link.UserID != userID {
			continue
		}
		if latest == nil || link.CreatedAt.After(latest.CreatedAt) {
			latest = link
		}
	}
	if latest == nil {
		return nil, organizers.ErrNoSubmission
	}
	return f.withOrganizer(latest), nil
}

func (f *fakeOrganizerRepo) ApprovedLinkFor(ctx context.Context, userID string) (*organizers.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, link := range f.links {
		if link.UserID == userID && link.Status == organizers.StatusApproved {
			return f.withOrganizer(link), nil
		}
	}
	return nil, organizers.ErrNoSubmission
}

func (f *fakeOrganizerRepo) ListPendingLinks(ctx context.Context) ([]organizers.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pending []organizers.Link
	for _, link := range f.links {
		if link.Status == organizers.StatusPending {
			pending = append(pending, *f.withOrganizer(link))
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

func (f *fakeOrganizerRepo) GetOrganizer(ctx context.Context, organizerID string) (*organizers.Organizer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	organizer, ok := f.organizers[organizerID]
	if !ok {
		return nil, organizers.ErrOrganizerNotFound
	}
	clone := *organizer
	return &clone, nil
}

func (f *fakeOrganizerRepo) withOrganizer(link *organizers.Link) *organizers.Link {
	clone := *link
	if organizer, ok := f.organizers[link.OrganizerID]; ok {
		orgClone := *organizer
		clone.Organizer = &orgClone
	}
	return &clone
}

// addApprovedLink seeds an approved organizer for userID and returns the
// organizer ID.
func (f *fakeOrganizerRepo) addApprovedLink(t *testing.T, userID string, orgType organizers.OrganizerType) string {
	t.Helper()
	organizer := &organizers.Organizer{
		ID:        newTestULID(t),
		Name:      "Org " + userID,
		Type:      orgType,
		CreatedAt: time.Now().UTC(),
	}
	decidedAt := time.Now().UTC()
	link := &organizers.Link{
		ID:          newTestULID(t),
		UserID:      userID,
		OrganizerID: organizer.ID,
		Status:      organizers.StatusApproved,
		DecidedAt:   &decidedAt,
		CreatedAt:   decidedAt,
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.organizers[organizer.ID] = organizer
	f.links[link.ID] = link
	return organizer.ID
}

// fakeEventRepo is an in-memory events.Repository. Category slugs are
// resolved through a fixed map; any category ID present there is valid.
type fakeEventRepo struct {
	mu       sync.Mutex
	events   map[string]*events.Event
	catSlugs map[string]string // category ID -> slug
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:   make(map[string]*events.Event),
		catSlugs: make(map[string]string),
	}
}

func (f *fakeEventRepo) addCategory(id, slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catSlugs[id] = slug
}

func (f *fakeEventRepo) Create(ctx context.Context, event *events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.catSlugs[event.CategoryID]; !ok {
		return events.ErrCategoryNotFound
	}
	for _, existing := range f.events {
		if existing.Slug == event.Slug {
			return events.ErrDuplicateSlug
		}
	}
	clone := *event
	f.events[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*events.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (f *fakeEventRepo) GetPublishedBySlug(ctx context.Context, slug string) (*events.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, event := range f.events {
		if event.Slug == slug && event.Status == events.StatusPublished {
			clone := *event
			return &clone, nil
		}
	}
	return nil, events.ErrNotFound
}

func (f *fakeEventRepo) ListPublished(ctx context.Context, filters events.Filters, pagination events.Pagination) (events.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []events.Event
	for _, event := range f.events {
		if event.Status != events.StatusPublished {
			continue
		}
		if filters.CategorySlug != "" && f.catSlugs[event.CategoryID] != filters.CategorySlug {
			continue
		}
		if filters.Query != "" && !containsFold(event.Title, filters.Query) && !containsFold(event.Description, filters.Query) {
			continue
		}
		matched = append(matched, *event)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartTime.Before(matched[j].StartTime) })

	total := len(matched)
	if pagination.Offset > 0 {
		if pagination.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[pagination.Offset:]
		}
	}
	if pagination.Limit > 0 && len(matched) > pagination.Limit {
		matched = matched[:pagination.Limit]
	}
	return events.ListResult{Events: matched, Total: total}, nil
}

func (f *fakeEventRepo) ListByOwner(ctx context.Context, userID string) ([]events.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var owned []events.Event
	for _, event := range f.events {
		if event.SubmitterID == userID {
			owned = append(owned, *event)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	return owned, nil
}

func (f *fakeEventRepo) ListByStatus(ctx context.Context, status events.Status) ([]events.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []events.Event
	for _, event := range f.events {
		if event.Status == status {
			matched = append(matched, *event)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	return matched, nil
}

func (f *fakeEventRepo) Transition(ctx context.Context, id string, from, to events.Status, note, adminID string, decidedAt time.Time) (*events.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	if event.Status != from {
		return nil, events.ErrInvalidTransition
	}
	event.Status = to
	event.AdminNote = note
	event.DecidedBy = adminID
	event.DecidedAt = &decidedAt
	clone := *event
	return &clone, nil
}

func (f *fakeEventRepo) DeleteOwned(ctx context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return events.ErrNotFound
	}
	if event.SubmitterID != userID || event.Status == events.StatusPublished {
		return events.ErrForbidden
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) (*events.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	delete(f.events, id)
	clone := *event
	return &clone, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
