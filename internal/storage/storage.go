// Package storage defines the persistence boundary consumed by the domain
// services. Implementations live in subpackages (postgres).
package storage

import (
	"context"

	"github.com/portal-acara/server/internal/domain/bookmarks"
	"github.com/portal-acara/server/internal/domain/categories"
	"github.com/portal-acara/server/internal/domain/events"
	"github.com/portal-acara/server/internal/domain/organizers"
	"github.com/portal-acara/server/internal/domain/reporting"
	"github.com/portal-acara/server/internal/domain/users"
)

// Repository aggregates the per-domain repositories behind one handle so
// callers can run multi-repository work inside a single transaction.
type Repository interface {
	Users() users.Repository
	Organizers() organizers.Repository
	Events() events.Repository
	Bookmarks() bookmarks.Repository
	Categories() categories.Repository
	Reporting() reporting.Repository

	// WithTx runs fn inside a transaction; the Repository passed to fn
	// routes every call through that transaction.
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
