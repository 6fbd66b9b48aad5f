package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portal-acara/server/internal/domain/organizers"
)

type OrganizerRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *OrganizerRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const linkColumns = `
l.id, l.user_id, l.organizer_id, l.status, l.admin_note, l.decided_by, l.decided_at, l.created_at,
o.id, o.name, o.type, o.description, o.logo_key, o.document_key, o.created_at, o.updated_at
`

func (r *OrganizerRepository) CreateWithLink(ctx context.Context, organizer *organizers.Organizer, link *organizers.Link) error {
	run := func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO organizers (id, name, type, description, logo_key, document_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`,
			organizer.ID,
			organizer.Name,
			string(organizer.Type),
			nullableString(organizer.Description),
			nullableString(organizer.LogoKey),
			nullableString(organizer.DocumentKey),
			organizer.CreatedAt,
			organizer.UpdatedAt,
		)
		if err != nil {
			if violatesUnique(err, "organizers_name_key") {
				return organizers.ErrDuplicateName
			}
			return fmt.Errorf("insert organizer: %w", err)
		}

		_, err = tx.Exec(ctx, `
INSERT INTO organizer_links (id, user_id, organizer_id, status, created_at)
VALUES ($1, $2, $3, $4, $5)
`,
			link.ID,
			link.UserID,
			link.OrganizerID,
			string(link.Status),
			link.CreatedAt,
		)
		if err != nil {
			if violatesUnique(err, "organizer_links_one_pending") {
				return organizers.ErrPendingExists
			}
			return fmt.Errorf("insert organizer link: %w", err)
		}
		return nil
	}

	if r.tx != nil {
		return run(ctx, r.tx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := run(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *OrganizerRepository) GetLink(ctx context.Context, linkID string) (*organizers.Link, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+linkColumns+`
  FROM organizer_links l
  JOIN organizers o ON o.id = l.organizer_id
 WHERE l.id = $1
`, linkID)

	link, err := scanLink(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, organizers.ErrNotFound
		}
		return nil, fmt.Errorf("get organizer link: %w", err)
	}
	return link, nil
}

func (r *OrganizerRepository) DecideLink(ctx context.Context, linkID string, status organizers.LinkStatus, note, adminID string, decidedAt time.Time) (*organizers.Link, error) {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `
UPDATE organizer_links
   SET status = $2, admin_note = $3, decided_by = $4, decided_at = $5
 WHERE id = $1 AND status = 'pending'
`,
		linkID,
		string(status),
		nullableString(note),
		adminID,
		decidedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("decide organizer link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a decided link from a missing one.
		if _, err := r.GetLink(ctx, linkID); err != nil {
			return nil, err
		}
		return nil, organizers.ErrInvalidTransition
	}
	return r.GetLink(ctx, linkID)
}

func (r *OrganizerRepository) LatestLinkFor(ctx context.Context, userID string) (*organizers.Link, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+linkColumns+`
  FROM organizer_links l
  JOIN organizers o ON o.id = l.organizer_id
 WHERE l.user_id = $1
 ORDER BY l.created_at DESC, l.id DESC
 LIMIT 1
`, userID)

	link, err := scanLink(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, organizers.ErrNoSubmission
		}
		return nil, fmt.Errorf("latest organizer link: %w", err)
	}
	return link, nil
}

func (r *OrganizerRepository) ApprovedLinkFor(ctx context.Context, userID string) (*organizers.Link, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+linkColumns+`
  FROM organizer_links l
  JOIN organizers o ON o.id = l.organizer_id
 WHERE l.user_id = $1 AND l.status = 'approved'
 ORDER BY l.decided_at DESC
 LIMIT 1
`, userID)

	link, err := scanLink(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, organizers.ErrNoSubmission
		}
		return nil, fmt.Errorf("approved organizer link: %w", err)
	}
	return link, nil
}

func (r *OrganizerRepository) ListPendingLinks(ctx context.Context) ([]organizers.Link, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+linkColumns+`
  FROM organizer_links l
  JOIN organizers o ON o.id = l.organizer_id
 WHERE l.status = 'pending'
 ORDER BY l.created_at ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list pending organizer links: %w", err)
	}
	defer rows.Close()

	var links []organizers.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organizer link: %w", err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizer links: %w", err)
	}
	return links, nil
}

func (r *OrganizerRepository) GetOrganizer(ctx context.Context, organizerID string) (*organizers.Organizer, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT id, name, type, description, logo_key, document_key, created_at, updated_at
  FROM organizers
 WHERE id = $1
`, organizerID)

	organizer, err := scanOrganizer(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, organizers.ErrOrganizerNotFound
		}
		return nil, fmt.Errorf("get organizer: %w", err)
	}
	return organizer, nil
}

func scanLink(row pgx.Row) (*organizers.Link, error) {
	var (
		link      organizers.Link
		organizer organizers.Organizer
		status    string
		orgType   string
		adminNote *string
		decidedBy *string
		orgDesc   *string
		logoKey   *string
		docKey    *string
	)
	if err := row.Scan(
		&link.ID,
		&link.UserID,
		&link.OrganizerID,
		&status,
		&adminNote,
		&decidedBy,
		&link.DecidedAt,
		&link.CreatedAt,
		&organizer.ID,
		&organizer.Name,
		&orgType,
		&orgDesc,
		&logoKey,
		&docKey,
		&organizer.CreatedAt,
		&organizer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if parsed, ok := organizers.ParseLinkStatus(status); ok {
		link.Status = parsed
	}
	if parsed, ok := organizers.ParseOrganizerType(orgType); ok {
		organizer.Type = parsed
	}
	link.AdminNote = derefString(adminNote)
	link.DecidedBy = derefString(decidedBy)
	organizer.Description = derefString(orgDesc)
	organizer.LogoKey = derefString(logoKey)
	organizer.DocumentKey = derefString(docKey)
	link.Organizer = &organizer
	return &link, nil
}

func scanOrganizer(row pgx.Row) (*organizers.Organizer, error) {
	var (
		organizer organizers.Organizer
		orgType   string
		desc      *string
		logoKey   *string
		docKey    *string
	)
	if err := row.Scan(
		&organizer.ID,
		&organizer.Name,
		&orgType,
		&desc,
		&logoKey,
		&docKey,
		&organizer.CreatedAt,
		&organizer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if parsed, ok := organizers.ParseOrganizerType(orgType); ok {
		organizer.Type = parsed
	}
	organizer.Description = derefString(desc)
	organizer.LogoKey = derefString(logoKey)
	organizer.DocumentKey = derefString(docKey)
	return &organizer, nil
}
