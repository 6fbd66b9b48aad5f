package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/portal-acara/server/internal/auth"
	"github.com/portal-acara/server/internal/domain/ids"
	"github.com/rs/zerolog"
)

// Service handles account registration, authentication and profile updates.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     auth.Role
}

// Register creates a new account. Email is stored lowercase; the unique
// constraint on email is enforced by the repository and surfaces as
// ErrEmailTaken.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}

	role := params.Role
	if role == "" {
		role = auth.RoleUser
	}

	now := time.Now().UTC()
	user := &User{
		ID:           id,
		Name:         strings.TrimSpace(params.Name),
		Email:        normalizeEmail(params.Email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Authenticate verifies credentials. Unknown email and wrong password return
// the same error so callers cannot probe for registered addresses.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

type UpdateProfileParams struct {
	Name     *string
	Password *string
}

func (s *Service) UpdateProfile(ctx context.Context, id string, params UpdateProfileParams) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name != "" {
			user.Name = name
		}
	}
	if params.Password != nil && *params.Password != "" {
		hash, err := auth.HashPassword(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
