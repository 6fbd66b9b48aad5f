package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound           = errors.New("event not found")
	ErrDuplicateSlug      = errors.New("slug already in use")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrNotOrganizer       = errors.New("submitter has no approved organizer link")
	ErrLocationNotAllowed = errors.New("external organizers must hold events on campus")
	ErrInvalidTransition  = errors.New("event is not in a state that allows this transition")
	ErrForbidden          = errors.New("not allowed")
)

// Status is the publication state of an event. Canonical representation is
// lowercase; all comparisons are normalized through ParseStatus.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
)

func ParseStatus(value string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(StatusPending):
		return StatusPending, true
	case string(StatusPublished):
		return StatusPublished, true
	case string(StatusRejected):
		return StatusRejected, true
	default:
		return "", false
	}
}

// Event is a publishable activity record owned by an organizer and submitted
// by a user. AdminNote is populated only while the event is rejected.
type Event struct {
	ID               string
	Title            string
	Slug             string
	Description      string
	Location         string
	StartTime        time.Time
	EndTime          *time.Time
	RegistrationLink string
	PosterKey        string
	CategoryID       string
	OrganizerID      string
	SubmitterID      string
	Status           Status
	AdminNote        string
	DecidedBy        string
	DecidedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Display names populated on reads that join the related rows.
	OrganizerName string
	CategoryName  string
}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Filters narrow the public published-events listing.
type Filters struct {
	CategorySlug string
	Query        string
}

type Pagination struct {
	Limit  int
	Offset int
}

type ListResult struct {
	Events []Event
	Total  int
}

type Repository interface {
	// Create inserts a pending event. Slug collisions surface as
	// ErrDuplicateSlug and unknown categories as ErrCategoryNotFound, both
	// enforced by storage constraints.
	Create(ctx context.Context, event *Event) error

	GetByID(ctx context.Context, id string) (*Event, error)

	// GetPublishedBySlug returns a published event; pending and rejected
	// events are invisible on the public surface.
	GetPublishedBySlug(ctx context.Context, slug string) (*Event, error)

	ListPublished(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error)
	ListByOwner(ctx context.Context, userID string) ([]Event, error)
	ListByStatus(ctx context.Context, status Status) ([]Event, error)

	// Transition moves an event from one status to another as a single
	// conditional update. ErrInvalidTransition when the event exists but is
	// not in the expected state, ErrNotFound when it does not exist.
	Transition(ctx context.Context, id string, from, to Status, note, adminID string, decidedAt time.Time) (*Event, error)

	// DeleteOwned removes the submitter's own non-published event.
	// ErrForbidden covers both ownership and status mismatches.
	DeleteOwned(ctx context.Context, id, userID string) error

	// Delete removes an event unconditionally and returns the removed row so
	// the caller can dispose of its poster asset.
	Delete(ctx context.Context, id string) (*Event, error)
}
