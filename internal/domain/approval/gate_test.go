package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/portal-acara/server/internal/auth"
	"github.com/portal-acara/server/internal/domain/organizers"
	"github.com/stretchr/testify/require"
)

// linkStore implements the subset of organizers.Repository the gate uses.
type linkStore struct {
	approved map[string]*organizers.Link
	err      error
}

func (s *linkStore) ApprovedLinkFor(_ context.Context, userID string) (*organizers.Link, error) {
	if s.err != nil {
		return nil, s.err
	}
	link, ok := s.approved[userID]
	if !ok {
		return nil, organizers.ErrNoSubmission
	}
	return link, nil
}

func (s *linkStore) CreateWithLink(context.Context, *organizers.Organizer, *organizers.Link) error {
	return nil
}

func (s *linkStore) GetLink(context.Context, string) (*organizers.Link, error) {
	return nil, organizers.ErrNotFound
}

func (s *linkStore) DecideLink(context.Context, string, organizers.LinkStatus, string, string, time.Time) (*organizers.Link, error) {
	return nil, organizers.ErrNotFound
}

func (s *linkStore) LatestLinkFor(context.Context, string) (*organizers.Link, error) {
	return nil, organizers.ErrNoSubmission
}

func (s *linkStore) ListPendingLinks(context.Context) ([]organizers.Link, error) {
	return nil, nil
}

func (s *linkStore) GetOrganizer(context.Context, string) (*organizers.Organizer, error) {
	return nil, organizers.ErrOrganizerNotFound
}

func TestIsOrganizer(t *testing.T) {
	store := &linkStore{approved: map[string]*organizers.Link{
		"user-1": {ID: "link-1", UserID: "user-1", Status: organizers.StatusApproved},
	}}
	gate := NewGate(store)

	ok, err := gate.IsOrganizer(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = gate.IsOrganizer(context.Background(), "user-2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIsOrganizerPropagatesStorageErrors(t *testing.T) {
	storageErr := errors.New("connection refused")
	gate := NewGate(&linkStore{err: storageErr})

	_, err := gate.IsOrganizer(context.Background(), "user-1")
	require.ErrorIs(t, err, storageErr)
}

func TestRequireAdmin(t *testing.T) {
	gate := NewGate(&linkStore{})

	require.NoError(t, gate.RequireAdmin(Actor{ID: "admin-1", Role: auth.RoleAdmin}))
	require.ErrorIs(t, gate.RequireAdmin(Actor{ID: "user-1", Role: auth.RoleUser}), ErrForbidden)
	require.ErrorIs(t, gate.RequireAdmin(Actor{ID: "anon"}), ErrForbidden)
}

func TestRequireApprovedOrganizerFor(t *testing.T) {
	store := &linkStore{approved: map[string]*organizers.Link{
		"user-1": {ID: "link-1", UserID: "user-1", OrganizerID: "org-1", Status: organizers.StatusApproved},
	}}
	gate := NewGate(store)

	link, err := gate.RequireApprovedOrganizerFor(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "org-1", link.OrganizerID)

	_, err = gate.RequireApprovedOrganizerFor(context.Background(), "user-2")
	require.ErrorIs(t, err, ErrNotOrganizer)
}
