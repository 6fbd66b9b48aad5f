package events

import (
	"context"
	"strings"
	"time"

	"github.com/portal-acara/server/internal/audit"
	"github.com/portal-acara/server/internal/metrics"
	"github.com/rs/zerolog"
)

// PosterStore disposes of stored poster assets. Satisfied by the blob store.
type PosterStore interface {
	Delete(ctx context.Context, key string) error
}

// AdminService owns the admin side of the event workflow: the review queue
// decision, retraction of published events, and hard deletion.
type AdminService struct {
	repo        Repository
	posters     PosterStore
	auditLogger *audit.Logger
	logger      zerolog.Logger
}

func NewAdminService(repo Repository, posters PosterStore, auditLogger *audit.Logger, logger zerolog.Logger) *AdminService {
	return &AdminService{
		repo:        repo,
		posters:     posters,
		auditLogger: auditLogger,
		logger:      logger.With().Str("component", "events_admin").Logger(),
	}
}

// Decide finalizes a pending event. Only pending events may transition;
// re-deciding a decided event fails with ErrInvalidTransition. Rejection
// requires a fresh non-empty note; publication clears any previous note.
func (s *AdminService) Decide(ctx context.Context, adminID, eventID string, outcome Status, note string) (*Event, error) {
	if outcome != StatusPublished && outcome != StatusRejected {
		return nil, ValidationError{Field: "status", Message: "must be published or rejected"}
	}

	note = strings.TrimSpace(note)
	if outcome == StatusRejected && note == "" {
		return nil, ValidationError{Field: "note", Message: "required when rejecting"}
	}
	if outcome == StatusPublished {
		note = ""
	}

	event, err := s.repo.Transition(ctx, eventID, StatusPending, outcome, note, adminID, time.Now().UTC())
	if err != nil {
		s.auditLogger.Failure("event.decide", adminID, "event", eventID)
		return nil, err
	}

	metrics.DecisionsTotal.WithLabelValues("event", string(outcome)).Inc()
	s.auditLogger.Decision("event.decide", adminID, "event", eventID, string(outcome), note)
	return event, nil
}

// Retract pulls a published event back to rejected with a mandatory reason.
// This is a distinct operator action, not a review decision, and it disposes
// of the stored poster asset.
func (s *AdminService) Retract(ctx context.Context, adminID, eventID, reason string) (*Event, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ValidationError{Field: "reason", Message: "cannot be empty"}
	}

	event, err := s.repo.Transition(ctx, eventID, StatusPublished, StatusRejected, reason, adminID, time.Now().UTC())
	if err != nil {
		s.auditLogger.Failure("event.retract", adminID, "event", eventID)
		return nil, err
	}

	s.disposePoster(ctx, event)

	metrics.DecisionsTotal.WithLabelValues("event", "retracted").Inc()
	s.auditLogger.Decision("event.retract", adminID, "event", eventID, string(StatusRejected), reason)
	return event, nil
}

// HardDelete removes an event regardless of status, bypassing the workflow.
func (s *AdminService) HardDelete(ctx context.Context, adminID, eventID string) error {
	event, err := s.repo.Delete(ctx, eventID)
	if err != nil {
		s.auditLogger.Failure("event.delete", adminID, "event", eventID)
		return err
	}

	s.disposePoster(ctx, event)

	s.auditLogger.Decision("event.delete", adminID, "event", eventID, "deleted", "")
	return nil
}

// ListPending returns the admin review queue.
func (s *AdminService) ListPending(ctx context.Context) ([]Event, error) {
	return s.repo.ListByStatus(ctx, StatusPending)
}

// ListManaged returns published events for the management view.
func (s *AdminService) ListManaged(ctx context.Context) ([]Event, error) {
	return s.repo.ListByStatus(ctx, StatusPublished)
}

// disposePoster deletes the poster asset. Failures are logged, not returned:
// the status transition has already committed and a dangling object is
// preferable to a half-applied decision.
func (s *AdminService) disposePoster(ctx context.Context, event *Event) {
	if event == nil || event.PosterKey == "" || s.posters == nil {
		return
	}
	if err := s.posters.Delete(ctx, event.PosterKey); err != nil {
		s.logger.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("poster_key", event.PosterKey).
			Msg("poster cleanup failed")
	}
}
