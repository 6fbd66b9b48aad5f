package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portal-acara/server/internal/domain/bookmarks"
	"github.com/portal-acara/server/internal/domain/events"
)

type BookmarkRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *BookmarkRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// Save inserts the bookmark; concurrent or repeated saves of the same
// pair collapse into one row via ON CONFLICT DO NOTHING.
func (r *BookmarkRepository) Save(ctx context.Context, b *bookmarks.Bookmark) error {
	queryer := r.queryer()
	var exists bool
	err := queryer.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM events WHERE id = $1 AND status = 'published')
`, b.EventID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if !exists {
		return bookmarks.ErrEventNotFound
	}

	_, err = queryer.Exec(ctx, `
INSERT INTO bookmarks (id, user_id, event_id, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, event_id) DO NOTHING
`,
		b.ID,
		b.UserID,
		b.EventID,
		b.CreatedAt,
	)
	if err != nil {
		if violatesForeignKey(err, "bookmarks_event_id_fkey") {
			return bookmarks.ErrEventNotFound
		}
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

func (r *BookmarkRepository) Remove(ctx context.Context, userID, eventID string) error {
	_, err := r.queryer().Exec(ctx, `
DELETE FROM bookmarks WHERE user_id = $1 AND event_id = $2
`, userID, eventID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

func (r *BookmarkRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = $1 AND event_id = $2)
`, userID, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check bookmark: %w", err)
	}
	return exists, nil
}

func (r *BookmarkRepository) ListForUser(ctx context.Context, userID string, pagination events.Pagination) (*events.ListResult, error) {
	queryer := r.queryer()

	limit := pagination.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := pagination.Offset
	if offset < 0 {
		offset = 0
	}

	var total int
	err := queryer.QueryRow(ctx, `
SELECT count(*)
  FROM bookmarks b
  JOIN events e ON e.id = b.event_id
 WHERE b.user_id = $1 AND e.status = 'published'
`, userID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count bookmarks: %w", err)
	}

	rows, err := queryer.Query(ctx, `
SELECT `+eventColumns+`
  FROM bookmarks b
  JOIN events e ON e.id = b.event_id
  JOIN organizers o ON o.id = e.organizer_id
  JOIN categories c ON c.id = e.category_id
 WHERE b.user_id = $1 AND e.status = 'published'
 ORDER BY b.created_at DESC
 LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	items, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}
	return &events.ListResult{Events: items, Total: total}, nil
}
