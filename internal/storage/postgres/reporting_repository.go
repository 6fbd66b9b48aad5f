package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portal-acara/server/internal/domain/reporting"
)

type ReportingRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *ReportingRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *ReportingRepository) Counts(ctx context.Context) (*reporting.Stats, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT
    (SELECT count(*) FROM users),
    (SELECT count(*) FROM organizers),
    (SELECT count(*) FROM events),
    (SELECT count(*) FROM organizer_links WHERE status = 'pending'),
    (SELECT count(*) FROM events WHERE status = 'pending'),
    (SELECT count(*) FROM events WHERE status = 'published'),
    (SELECT count(*) FROM events WHERE status = 'rejected')
`)

	var stats reporting.Stats
	if err := row.Scan(
		&stats.TotalUsers,
		&stats.TotalOrganizers,
		&stats.TotalEvents,
		&stats.PendingOrganizers,
		&stats.PendingEvents,
		&stats.PublishedEvents,
		&stats.RejectedEvents,
	); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &stats, nil
}

func (r *ReportingRepository) RegistrationsPerDay(ctx context.Context, from, until time.Time) (map[string]int, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, count(*)
  FROM users
 WHERE created_at >= $1 AND created_at < $2
 GROUP BY day
`, from, until)
	if err != nil {
		return nil, fmt.Errorf("registrations per day: %w", err)
	}
	defer rows.Close()

	perDay := make(map[string]int)
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan registration day: %w", err)
		}
		perDay[day] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registration days: %w", err)
	}
	return perDay, nil
}
