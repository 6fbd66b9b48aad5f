package bookmarks

import (
	"context"
	"errors"
	"time"

	"github.com/portal-acara/server/internal/domain/events"
)

var (
	// ErrEventNotFound is returned when the referenced event does not exist
	// or is not published.
	ErrEventNotFound = errors.New("event not found")
)

// Bookmark links a user to a published event they saved.
type Bookmark struct {
	ID        string
	UserID    string
	EventID   string
	CreatedAt time.Time
}

// Outcome describes the state a toggle converged to.
type Outcome string

const (
	OutcomeSaved   Outcome = "saved"
	OutcomeRemoved Outcome = "removed"
)

// Repository persists bookmarks. Save must be idempotent for a
// (user, event) pair; Remove must tolerate an absent row.
type Repository interface {
	// Save records the bookmark if it does not already exist. It returns
	// ErrEventNotFound when the event is missing or not published.
	Save(ctx context.Context, b *Bookmark) error
	// Remove deletes the bookmark if present. Removing an absent bookmark
	// is not an error.
	Remove(ctx context.Context, userID, eventID string) error
	// Exists reports whether the user has saved the event.
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	// ListForUser returns the published events the user saved, newest
	// bookmark first.
	ListForUser(ctx context.Context, userID string, p events.Pagination) (*events.ListResult, error)
}
