package categories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/portal-acara/server/internal/domain/events"
	"github.com/portal-acara/server/internal/domain/ids"
)

// ValidationError rejects a malformed category name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

const maxNameLength = 100

// Service manages the category vocabulary. Creation and changes are
// admin-only; the list is public.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "categories").Logger(),
	}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Message: "is required"}
	}
	if len(name) > maxNameLength {
		return "", &ValidationError{Field: "name", Message: "must be at most 100 characters"}
	}
	return name, nil
}

func (s *Service) Create(ctx context.Context, name string) (*Category, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate category id: %w", err)
	}

	now := time.Now().UTC()
	c := &Category{
		ID:        id,
		Name:      name,
		Slug:      events.Slugify(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", c.ID).Str("slug", c.Slug).Msg("category created")
	return c, nil
}

func (s *Service) Rename(ctx context.Context, id, name string) (*Category, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Name = name
	c.Slug = events.Slugify(name)
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes an unused category. Categories still referenced by
// events are kept and reported as ErrInUse.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	return s.repo.GetBySlug(ctx, slug)
}
