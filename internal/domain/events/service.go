package events

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/portal-acara/server/internal/domain/approval"
	"github.com/portal-acara/server/internal/domain/ids"
	"github.com/portal-acara/server/internal/domain/organizers"
	"github.com/portal-acara/server/internal/metrics"
	"github.com/rs/zerolog"
)

// maxSlugAttempts bounds the collision-retry loop on event creation.
const maxSlugAttempts = 5

// Gate authorizes event submission. Satisfied by approval.Gate.
type Gate interface {
	RequireApprovedOrganizerFor(ctx context.Context, userID string) (*organizers.Link, error)
}

// OrganizerDirectory resolves organizer records. Satisfied by the organizers
// repository.
type OrganizerDirectory interface {
	GetOrganizer(ctx context.Context, organizerID string) (*organizers.Organizer, error)
}

// Service owns event submission and the submitter-facing reads.
type Service struct {
	repo           Repository
	organizers     OrganizerDirectory
	gate           Gate
	campusKeywords []string
	logger         zerolog.Logger
}

func NewService(repo Repository, organizerRepo OrganizerDirectory, gate Gate, campusKeywords []string, logger zerolog.Logger) *Service {
	return &Service{
		repo:           repo,
		organizers:     organizerRepo,
		gate:           gate,
		campusKeywords: campusKeywords,
		logger:         logger.With().Str("component", "events").Logger(),
	}
}

type Draft struct {
	Title            string
	Description      string
	Location         string
	StartTime        time.Time
	EndTime          *time.Time
	RegistrationLink string
	PosterKey        string
	CategoryID       string
}

// Submit creates a pending event on behalf of userID. The submitter must
// hold an approved organizer link; external organizers must name a campus
// location. The slug is derived from the title with a disambiguating suffix
// on collision.
func (s *Service) Submit(ctx context.Context, userID string, draft Draft) (*Event, error) {
	link, err := s.gate.RequireApprovedOrganizerFor(ctx, userID)
	if err != nil {
		if errors.Is(err, approval.ErrNotOrganizer) {
			return nil, ErrNotOrganizer
		}
		return nil, err
	}

	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	organizer, err := s.organizers.GetOrganizer(ctx, link.OrganizerID)
	if err != nil {
		return nil, fmt.Errorf("resolve organizer: %w", err)
	}

	if organizer.Type == organizers.TypeExternal && !LocationAllowed(draft.Location, s.campusKeywords) {
		return nil, ErrLocationNotAllowed
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}

	now := time.Now().UTC()
	event := &Event{
		ID:               id,
		Title:            strings.TrimSpace(draft.Title),
		Description:      strings.TrimSpace(draft.Description),
		Location:         strings.TrimSpace(draft.Location),
		StartTime:        draft.StartTime,
		EndTime:          draft.EndTime,
		RegistrationLink: strings.TrimSpace(draft.RegistrationLink),
		PosterKey:        draft.PosterKey,
		CategoryID:       draft.CategoryID,
		OrganizerID:      organizer.ID,
		SubmitterID:      userID,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	base := Slugify(event.Title)
	if base == "" {
		return nil, ValidationError{Field: "title", Message: "must contain letters or digits"}
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		event.Slug = base
		if attempt > 0 {
			suffix, err := slugSuffix()
			if err != nil {
				return nil, err
			}
			event.Slug = base + "-" + suffix
		}

		err = s.repo.Create(ctx, event)
		if errors.Is(err, ErrDuplicateSlug) {
			continue
		}
		if err != nil {
			return nil, err
		}

		metrics.SubmissionsTotal.WithLabelValues("event").Inc()
		s.logger.Info().
			Str("event_id", event.ID).
			Str("slug", event.Slug).
			Str("user_id", userID).
			Str("organizer_id", organizer.ID).
			Msg("event submitted")
		return event, nil
	}

	return nil, fmt.Errorf("allocate slug for %q: %w", base, ErrDuplicateSlug)
}

// Withdraw lets the original submitter delete a still-pending or rejected
// event. Published events and other users' events are off limits.
func (s *Service) Withdraw(ctx context.Context, userID, eventID string) error {
	if err := s.repo.DeleteOwned(ctx, eventID, userID); err != nil {
		return err
	}
	s.logger.Info().Str("event_id", eventID).Str("user_id", userID).Msg("event withdrawn")
	return nil
}

// ListOwn returns the user's submitted events, newest first.
func (s *Service) ListOwn(ctx context.Context, userID string) ([]Event, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// ListPublished serves the public catalog.
func (s *Service) ListPublished(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error) {
	return s.repo.ListPublished(ctx, filters, pagination)
}

// GetBySlug serves the public detail page; only published events resolve.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Event, error) {
	return s.repo.GetPublishedBySlug(ctx, slug)
}

func validateDraft(draft Draft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if len(draft.Title) > 255 {
		return ValidationError{Field: "title", Message: "exceeds maximum length of 255 characters"}
	}
	if strings.TrimSpace(draft.Description) == "" {
		return ValidationError{Field: "description", Message: "cannot be empty"}
	}
	if strings.TrimSpace(draft.Location) == "" {
		return ValidationError{Field: "location", Message: "cannot be empty"}
	}
	if draft.CategoryID == "" {
		return ValidationError{Field: "category_id", Message: "cannot be empty"}
	}
	if draft.StartTime.IsZero() {
		return ValidationError{Field: "start_time", Message: "cannot be empty"}
	}
	if draft.EndTime != nil && draft.EndTime.Before(draft.StartTime) {
		return ValidationError{Field: "end_time", Message: "must be on or after start_time"}
	}
	if link := strings.TrimSpace(draft.RegistrationLink); link != "" {
		parsed, err := url.Parse(link)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return ValidationError{Field: "registration_link", Message: "must be an absolute URL"}
		}
	}
	return nil
}

func slugSuffix() (string, error) {
	id, err := ids.NewULID()
	if err != nil {
		return "", fmt.Errorf("generate slug suffix: %w", err)
	}
	return strings.ToLower(id[len(id)-6:]), nil
}
