package categories

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("category not found")
	ErrDuplicateName = errors.New("category name already exists")
	ErrInUse         = errors.New("category is referenced by events")
)

// Category groups events for public browsing.
type Category struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository persists event categories.
type Repository interface {
	// Create inserts the category, returning ErrDuplicateName when the
	// name or slug is already taken.
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	// Update renames the category, returning ErrDuplicateName on
	// collision.
	Update(ctx context.Context, c *Category) error
	// Delete removes the category. It returns ErrInUse when any event
	// still references it.
	Delete(ctx context.Context, id string) error
}
