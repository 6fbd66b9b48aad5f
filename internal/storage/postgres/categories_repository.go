package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portal-acara/server/internal/domain/categories"
)

type CategoryRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *CategoryRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *CategoryRepository) Create(ctx context.Context, c *categories.Category) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO categories (id, name, slug, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
`,
		c.ID,
		c.Name,
		c.Slug,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if violatesUnique(err, "") {
			return categories.ErrDuplicateName
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*categories.Category, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*categories.Category, error) {
	return r.getBy(ctx, `WHERE slug = $1`, slug)
}

func (r *CategoryRepository) getBy(ctx context.Context, where string, arg any) (*categories.Category, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT id, name, slug, created_at, updated_at
  FROM categories
 `+where+`
 LIMIT 1
`, arg)

	var c categories.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, categories.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*categories.Category, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, name, slug, created_at, updated_at
  FROM categories
 ORDER BY name ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []*categories.Category
	for rows.Next() {
		var c categories.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *categories.Category) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE categories
   SET name = $2, slug = $3, updated_at = $4
 WHERE id = $1
`,
		c.ID,
		c.Name,
		c.Slug,
		c.UpdatedAt,
	)
	if err != nil {
		if violatesUnique(err, "") {
			return categories.ErrDuplicateName
		}
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return categories.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if violatesForeignKey(err, "events_category_id_fkey") {
			return categories.ErrInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return categories.ErrNotFound
	}
	return nil
}
