package approval

import (
	"context"
	"errors"

	"github.com/portal-acara/server/internal/auth"
	"github.com/portal-acara/server/internal/domain/organizers"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrNotOrganizer = errors.New("user has no approved organizer link")
)

// Actor identifies the authenticated caller of an operation. Every gated
// operation takes an explicit actor; nothing is read from ambient state.
type Actor struct {
	ID   string
	Role auth.Role
}

// Gate is the stateless policy layer that authorizes workflow transitions
// and derives organizer capability. Capability is recomputed from storage on
// every call so an admin decision takes effect on the affected user's next
// request; it is never cached on a session or embedded in a token.
type Gate struct {
	links organizers.Repository
}

func NewGate(links organizers.Repository) *Gate {
	return &Gate{links: links}
}

// IsOrganizer reports whether the user holds at least one approved link.
func (g *Gate) IsOrganizer(ctx context.Context, userID string) (bool, error) {
	_, err := g.links.ApprovedLinkFor(ctx, userID)
	if err != nil {
		if errors.Is(err, organizers.ErrNoSubmission) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RequireAdmin authorizes admin-only transitions.
func (g *Gate) RequireAdmin(actor Actor) error {
	if !auth.IsAdmin(string(actor.Role)) {
		return ErrForbidden
	}
	return nil
}

// RequireApprovedOrganizerFor returns the user's approved link, or
// ErrNotOrganizer when the user holds none.
func (g *Gate) RequireApprovedOrganizerFor(ctx context.Context, userID string) (*organizers.Link, error) {
	link, err := g.links.ApprovedLinkFor(ctx, userID)
	if err != nil {
		if errors.Is(err, organizers.ErrNoSubmission) {
			return nil, ErrNotOrganizer
		}
		return nil, err
	}
	return link, nil
}
