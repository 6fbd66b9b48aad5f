package organizers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/portal-acara/server/internal/audit"
	"github.com/portal-acara/server/internal/domain/ids"
	"github.com/portal-acara/server/internal/metrics"
	"github.com/rs/zerolog"
)

// Service owns the organizer registration workflow: a user submits an
// organization, an admin approves or rejects the resulting link.
type Service struct {
	repo        Repository
	auditLogger *audit.Logger
	logger      zerolog.Logger
}

func NewService(repo Repository, auditLogger *audit.Logger, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
		logger:      logger.With().Str("component", "organizers").Logger(),
	}
}

type Draft struct {
	Name        string
	Type        OrganizerType
	Description string
	LogoKey     string
	DocumentKey string
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

// Submit registers a new organizer on behalf of userID and opens a pending
// link. The organizer row and the link row are written atomically; a
// half-created organizer without a link is never observable.
func (s *Service) Submit(ctx context.Context, userID string, draft Draft) (*Link, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if len(name) > 255 {
		return nil, ValidationError{Field: "name", Message: "exceeds maximum length of 255 characters"}
	}
	if draft.Type != TypeInternal && draft.Type != TypeExternal {
		return nil, ValidationError{Field: "type", Message: "must be internal or external"}
	}

	organizerID, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate organizer id: %w", err)
	}
	linkID, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate link id: %w", err)
	}

	now := time.Now().UTC()
	organizer := &Organizer{
		ID:          organizerID,
		Name:        name,
		Type:        draft.Type,
		Description: strings.TrimSpace(draft.Description),
		LogoKey:     draft.LogoKey,
		DocumentKey: draft.DocumentKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	link := &Link{
		ID:          linkID,
		UserID:      userID,
		OrganizerID: organizerID,
		Status:      StatusPending,
		CreatedAt:   now,
	}

	if err := s.repo.CreateWithLink(ctx, organizer, link); err != nil {
		return nil, err
	}

	metrics.SubmissionsTotal.WithLabelValues("organizer").Inc()
	s.logger.Info().
		Str("user_id", userID).
		Str("organizer_id", organizerID).
		Str("link_id", linkID).
		Msg("organizer submitted")

	link.Organizer = organizer
	return link, nil
}

// Decide finalizes a pending link. Decisions are terminal: re-deciding an
// already decided link fails with ErrInvalidTransition rather than silently
// overwriting. A note is required on rejection and stored empty on approval.
func (s *Service) Decide(ctx context.Context, adminID, linkID string, outcome LinkStatus, note string) (*Link, error) {
	if outcome != StatusApproved && outcome != StatusRejected {
		return nil, ValidationError{Field: "status", Message: "must be approved or rejected"}
	}

	note = strings.TrimSpace(note)
	if outcome == StatusRejected && note == "" {
		return nil, ValidationError{Field: "note", Message: "required when rejecting"}
	}
	if outcome == StatusApproved {
		note = ""
	}

	link, err := s.repo.DecideLink(ctx, linkID, outcome, note, adminID, time.Now().UTC())
	if err != nil {
		s.auditLogger.Failure("organizer.decide", adminID, "organizer_link", linkID)
		return nil, err
	}

	metrics.DecisionsTotal.WithLabelValues("organizer", string(outcome)).Inc()
	s.auditLogger.Decision("organizer.decide", adminID, "organizer_link", linkID, string(outcome), note)
	return link, nil
}

// StatusFor returns the user's most recent link for profile display.
func (s *Service) StatusFor(ctx context.Context, userID string) (*Link, error) {
	return s.repo.LatestLinkFor(ctx, userID)
}

// ListPending returns the admin review queue.
func (s *Service) ListPending(ctx context.Context) ([]Link, error) {
	return s.repo.ListPendingLinks(ctx)
}
