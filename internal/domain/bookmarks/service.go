package bookmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/portal-acara/server/internal/domain/events"
	"github.com/portal-acara/server/internal/domain/ids"
)

// Service implements the saved-events feature for authenticated users.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "bookmarks").Logger(),
	}
}

// Toggle drives the bookmark toward the wanted state. It is idempotent:
// saving an already-saved event or removing an absent bookmark succeeds
// and reports the state the pair converged to.
func (s *Service) Toggle(ctx context.Context, userID, eventID string, want bool) (Outcome, error) {
	if err := ids.ValidateULID(eventID); err != nil {
		return "", ErrEventNotFound
	}

	if !want {
		if err := s.repo.Remove(ctx, userID, eventID); err != nil {
			return "", fmt.Errorf("removing bookmark: %w", err)
		}
		return OutcomeRemoved, nil
	}

	id, err := ids.NewULID()
	if err != nil {
		return "", fmt.Errorf("generate bookmark id: %w", err)
	}
	b := &Bookmark{
		ID:        id,
		UserID:    userID,
		EventID:   eventID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, b); err != nil {
		return "", err
	}
	return OutcomeSaved, nil
}

// IsSaved reports whether the user has bookmarked the event.
func (s *Service) IsSaved(ctx context.Context, userID, eventID string) (bool, error) {
	if err := ids.ValidateULID(eventID); err != nil {
		return false, nil
	}
	return s.repo.Exists(ctx, userID, eventID)
}

// ListSaved returns the user's saved events, newest bookmark first.
// Events that left the published state no longer appear.
func (s *Service) ListSaved(ctx context.Context, userID string, p events.Pagination) (*events.ListResult, error) {
	return s.repo.ListForUser(ctx, userID, p)
}
