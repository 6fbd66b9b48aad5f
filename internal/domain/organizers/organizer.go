package organizers

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("organizer link not found")
	ErrOrganizerNotFound = errors.New("organizer not found")
	ErrDuplicateName     = errors.New("organizer name already registered")
	ErrPendingExists     = errors.New("a pending organizer submission already exists for this user")
	ErrInvalidTransition = errors.New("link is not pending")
	ErrNoSubmission      = errors.New("no organizer submission")
)

// OrganizerType distinguishes campus organizations from external ones.
// External organizers are subject to the campus-location rule on events.
type OrganizerType string

const (
	TypeInternal OrganizerType = "internal"
	TypeExternal OrganizerType = "external"
)

func ParseOrganizerType(value string) (OrganizerType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(TypeInternal):
		return TypeInternal, true
	case string(TypeExternal):
		return TypeExternal, true
	default:
		return "", false
	}
}

// LinkStatus is the approval state of a user↔organizer link. The canonical
// representation is lowercase; any stored or transmitted casing is normalized
// through ParseLinkStatus.
type LinkStatus string

const (
	StatusPending  LinkStatus = "pending"
	StatusApproved LinkStatus = "approved"
	StatusRejected LinkStatus = "rejected"
)

func ParseLinkStatus(value string) (LinkStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(StatusPending):
		return StatusPending, true
	case string(StatusApproved):
		return StatusApproved, true
	case string(StatusRejected):
		return StatusRejected, true
	default:
		return "", false
	}
}

// Organizer is an organization entitled to submit events once a link to a
// sponsoring user is approved. Created once per approved organization and
// referenced by many events.
type Organizer struct {
	ID          string
	Name        string
	Type        OrganizerType
	Description string
	LogoKey     string
	DocumentKey string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Link is the approval relationship between a user and an organizer. A
// decided link is terminal; a fresh submission creates a new link row.
type Link struct {
	ID          string
	UserID      string
	OrganizerID string
	Status      LinkStatus
	AdminNote   string
	DecidedBy   string
	DecidedAt   *time.Time
	CreatedAt   time.Time

	// Organizer is populated on reads that join the organizer row.
	Organizer *Organizer
}

type Repository interface {
	// CreateWithLink inserts the organizer and its pending link atomically:
	// both rows or neither. Name collisions surface as ErrDuplicateName and
	// an outstanding pending link for the user as ErrPendingExists, both
	// enforced by storage-level uniqueness.
	CreateWithLink(ctx context.Context, organizer *Organizer, link *Link) error

	GetLink(ctx context.Context, linkID string) (*Link, error)

	// DecideLink transitions a link out of pending as a single conditional
	// update. ErrInvalidTransition when the link exists but is already
	// decided, ErrNotFound when it does not exist.
	DecideLink(ctx context.Context, linkID string, status LinkStatus, note, adminID string, decidedAt time.Time) (*Link, error)

	// LatestLinkFor returns the user's most recent link, ErrNoSubmission when
	// the user never submitted.
	LatestLinkFor(ctx context.Context, userID string) (*Link, error)

	// ApprovedLinkFor returns one approved link for the user, ErrNoSubmission
	// when none exists.
	ApprovedLinkFor(ctx context.Context, userID string) (*Link, error)

	ListPendingLinks(ctx context.Context) ([]Link, error)

	GetOrganizer(ctx context.Context, organizerID string) (*Organizer, error)
}
