package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/portal-acara/server/internal/audit"
	"github.com/portal-acara/server/internal/domain/organizers"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakePosterStore struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (s *fakePosterStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, key)
	return nil
}

type adminFixture struct {
	admin   *AdminService
	posters *fakePosterStore
	*fixture
}

func newAdminFixture() *adminFixture {
	f := newFixture()
	posters := &fakePosterStore{}
	admin := NewAdminService(f.repo, posters, audit.NewLogger(zerolog.Nop()), zerolog.Nop())
	return &adminFixture{admin: admin, posters: posters, fixture: f}
}

func (f *adminFixture) submitPending(t *testing.T, posterKey string) *Event {
	t.Helper()
	f.approveOrganizer("user-1", "org-1", organizers.TypeInternal)

	draft := validDraft()
	draft.PosterKey = posterKey

	event, err := f.service.Submit(context.Background(), "user-1", draft)
	require.NoError(t, err)
	return event
}

func TestDecidePublish(t *testing.T) {
	f := newAdminFixture()
	event := f.submitPending(t, "")

	decided, err := f.admin.Decide(context.Background(), "admin-1", event.ID, StatusPublished, "catatan lama")
	require.NoError(t, err)
	require.Equal(t, StatusPublished, decided.Status)
	require.Empty(t, decided.AdminNote, "publication clears the note")
	require.Equal(t, "admin-1", decided.DecidedBy)
}

func TestDecideRejectRequiresNote(t *testing.T) {
	f := newAdminFixture()
	event := f.submitPending(t, "")

	_, err := f.admin.Decide(context.Background(), "admin-1", event.ID, StatusRejected, " ")
	var vErr ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "note", vErr.Field)

	decided, err := f.admin.Decide(context.Background(), "admin-1", event.ID, StatusRejected, "poster tidak terbaca")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, decided.Status)
	require.Equal(t, "poster tidak terbaca", decided.AdminNote)
}

func TestDecideValidatesOutcome(t *testing.T) {
	f := newAdminFixture()

	_, err := f.admin.Decide(context.Background(), "admin-1", "01HQZX3Y4K6F7G8H9J0K1M2N3P", StatusPending, "")
	var vErr ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "status", vErr.Field)
}

func TestDecideIsTerminal(t *testing.T) {
	f := newAdminFixture()
	event := f.submitPending(t, "")

	_, err := f.admin.Decide(context.Background(), "admin-1", event.ID, StatusPublished, "")
	require.NoError(t, err)

	_, err = f.admin.Decide(context.Background(), "admin-2", event.ID, StatusRejected, "berubah pikiran")
	require.ErrorIs(t, err, ErrInvalidTransition)

	final, err := f.repo.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPublished, final.Status)
}

func TestDecideUnknownEvent(t *testing.T) {
	f := newAdminFixture()

	_, err := f.admin.Decide(context.Background(), "admin-1", "01HQZX3Y4K6F7G8H9J0K1M2N3P", StatusPublished, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRetract(t *testing.T) {
	f := newAdminFixture()
	event := f.submitPending(t, "posters/seminar.png")

	_, err := f.admin.Decide(context.Background(), "admin-1", event.ID, StatusPublished, "")
	require.NoError(t, err)

	t.Run("requires a reason", func(t *testing.T) {
		_, err := f.admin.Retract(context.Background(), "admin-1", event.ID, "  ")
		var vErr ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Equal(t, "reason", vErr.Field)
	})

	t.Run("moves published to rejected and disposes the poster", func(t *testing.T) {
		retracted, err := f.admin.Retract(context.Background(), "admin-1", event.ID, "acara dibatalkan penyelenggara")
		require.NoError(t, err)
		require.Equal(t, StatusRejected, retracted.Status)
		require.Equal(t, "acara dibatalkan penyelenggara", retracted.AdminNote)
		require.Equal(t, []string{"posters/seminar.png"}, f.posters.deleted)
	})

	t.Run("only published events can be retracted", func(t *testing.T) {
		_, err := f.admin.Retract(context.Background(), "admin-1", event.ID, "sudah ditarik")
		require.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestRetractSurvivesPosterCleanupFailure(t *testing.T) {
	f := newAdminFixture()
	event := f.submitPending(t, "posters/seminar.png")

	_, err := f.admin.Decide(context.Background(), "admin-1", event.ID, StatusPublished, "")
	require.NoError(t, err)

	f.posters.err = errors.New("bucket unreachable")

	retracted, err := f.admin.Retract(context.Background(), "admin-1", event.ID, "alasan kuat")
	require.NoError(t, err, "transition commits even when cleanup fails")
	require.Equal(t, StatusRejected, retracted.Status)
}

func TestHardDelete(t *testing.T) {
	f := newAdminFixture()
	event := f.submitPending(t, "posters/seminar.png")

	require.NoError(t, f.admin.HardDelete(context.Background(), "admin-1", event.ID))

	_, err := f.repo.GetByID(context.Background(), event.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, []string{"posters/seminar.png"}, f.posters.deleted)

	require.ErrorIs(t, f.admin.HardDelete(context.Background(), "admin-1", event.ID), ErrNotFound)
}

// Status transitions only follow pending→published, pending→rejected and
// published→rejected (retract); decided states are never re-entered.
func TestStatusTransitionMatrix(t *testing.T) {
	f := newAdminFixture()

	type step struct {
		from, to Status
	}
	allowed := map[step]bool{
		{StatusPending, StatusPublished}:  true,
		{StatusPending, StatusRejected}:   true,
		{StatusPublished, StatusRejected}: true,
	}

	statuses := []Status{StatusPending, StatusPublished, StatusRejected}
	for _, from := range statuses {
		for _, to := range statuses {
			if from == to {
				continue
			}

			event := f.submitPending(t, "")
			if from != StatusPending {
				_, err := f.repo.Transition(context.Background(), event.ID, StatusPending, from, "n", "admin-0", event.CreatedAt)
				require.NoError(t, err)
			}

			var err error
			switch {
			case from == StatusPending:
				_, err = f.admin.Decide(context.Background(), "admin-1", event.ID, to, "catatan wajib")
			case from == StatusPublished && to == StatusRejected:
				_, err = f.admin.Retract(context.Background(), "admin-1", event.ID, "alasan")
			default:
				// No operation exposes this transition; attempting the
				// conditional update directly must fail.
				_, err = f.repo.Transition(context.Background(), event.ID, StatusPending, to, "", "admin-1", event.CreatedAt)
			}

			if allowed[step{from, to}] {
				require.NoError(t, err, "%s -> %s should be allowed", from, to)
			} else {
				require.Error(t, err, "%s -> %s should be blocked", from, to)
			}
		}
	}
}
