package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portal-acara/server/internal/domain/events"
)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const eventColumns = `
e.id, e.title, e.slug, e.description, e.location, e.start_time, e.end_time,
e.registration_link, e.poster_key, e.category_id, e.organizer_id, e.submitter_id,
e.status, e.admin_note, e.decided_by, e.decided_at, e.created_at, e.updated_at,
o.name, c.name
`

const eventJoins = `
  FROM events e
  JOIN organizers o ON o.id = e.organizer_id
  JOIN categories c ON c.id = e.category_id
`

func (r *EventRepository) Create(ctx context.Context, event *events.Event) error {
	queryer := r.queryer()
	_, err := queryer.Exec(ctx, `
INSERT INTO events (
    id, title, slug, description, location, start_time, end_time,
    registration_link, poster_key, category_id, organizer_id, submitter_id,
    status, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`,
		event.ID,
		event.Title,
		event.Slug,
		event.Description,
		event.Location,
		event.StartTime,
		event.EndTime,
		nullableString(event.RegistrationLink),
		nullableString(event.PosterKey),
		event.CategoryID,
		event.OrganizerID,
		event.SubmitterID,
		string(event.Status),
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		if violatesUnique(err, "events_slug_key") {
			return events.ErrDuplicateSlug
		}
		if violatesForeignKey(err, "events_category_id_fkey") {
			return events.ErrCategoryNotFound
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+eventJoins+`
 WHERE e.id = $1
`, id)

	event, err := scanEvent(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) GetPublishedBySlug(ctx context.Context, slug string) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+eventJoins+`
 WHERE e.slug = $1 AND e.status = 'published'
`, slug)

	event, err := scanEvent(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get published event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) ListPublished(ctx context.Context, filters events.Filters, pagination events.Pagination) (events.ListResult, error) {
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
`+eventJoins+`
 WHERE e.status = 'published'
   AND ($1 = '' OR c.slug = $1)
   AND ($2 = '' OR e.title ILIKE '%' || $2 || '%' OR e.description ILIKE '%' || $2 || '%')
`,
		filters.CategorySlug,
		filters.Query,
	).Scan(&total)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("count published events: %w", err)
	}

	rows, err := queryer.Query(ctx, `
SELECT `+eventColumns+eventJoins+`
 WHERE e.status = 'published'
   AND ($1 = '' OR c.slug = $1)
   AND ($2 = '' OR e.title ILIKE '%' || $2 || '%' OR e.description ILIKE '%' || $2 || '%')
 ORDER BY e.start_time ASC, e.id ASC
 LIMIT $3 OFFSET $4
`,
		filters.CategorySlug,
		filters.Query,
		limit,
		offset,
	)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list published events: %w", err)
	}
	defer rows.Close()

	items, err := collectEvents(rows)
	if err != nil {
		return events.ListResult{}, err
	}
	return events.ListResult{Events: items, Total: total}, nil
}

func (r *EventRepository) ListByOwner(ctx context.Context, userID string) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+eventJoins+`
 WHERE e.submitter_id = $1
 ORDER BY e.created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list events by owner: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *EventRepository) ListByStatus(ctx context.Context, status events.Status) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+eventJoins+`
 WHERE e.status = $1
 ORDER BY e.created_at ASC
`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list events by status: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *EventRepository) Transition(ctx context.Context, id string, from, to events.Status, note, adminID string, decidedAt time.Time) (*events.Event, error) {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `
UPDATE events
   SET status = $3, admin_note = $4, decided_by = $5, decided_at = $6, updated_at = $6
 WHERE id = $1 AND status = $2
`,
		id,
		string(from),
		string(to),
		nullableString(note),
		adminID,
		decidedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("transition event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, events.ErrInvalidTransition
	}
	return r.GetByID(ctx, id)
}

func (r *EventRepository) DeleteOwned(ctx context.Context, id, userID string) error {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `
DELETE FROM events
 WHERE id = $1 AND submitter_id = $2 AND status <> 'published'
`, id, userID)
	if err != nil {
		return fmt.Errorf("delete owned event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return events.ErrForbidden
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) (*events.Event, error) {
	event, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, events.ErrNotFound
	}
	return event, nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var (
		event     events.Event
		status    string
		regLink   *string
		posterKey *string
		adminNote *string
		decidedBy *string
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Slug,
		&event.Description,
		&event.Location,
		&event.StartTime,
		&event.EndTime,
		&regLink,
		&posterKey,
		&event.CategoryID,
		&event.OrganizerID,
		&event.SubmitterID,
		&status,
		&adminNote,
		&decidedBy,
		&event.DecidedAt,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.OrganizerName,
		&event.CategoryName,
	); err != nil {
		return nil, err
	}
	if parsed, ok := events.ParseStatus(status); ok {
		event.Status = parsed
	}
	event.RegistrationLink = derefString(regLink)
	event.PosterKey = derefString(posterKey)
	event.AdminNote = derefString(adminNote)
	event.DecidedBy = derefString(decidedBy)
	return &event, nil
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	var items []events.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}
