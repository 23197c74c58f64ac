package catalog

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"strings"
)

type CategoryRepo struct{ DB *pgxpool.Pool }

func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT category_id, category_name, created_at FROM categories ORDER BY category_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.DB.QueryRow(ctx, `SELECT category_id, category_name, created_at FROM categories WHERE category_id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrCategoryNotFound
	}
	return c, err
}

func (r *CategoryRepo) Create(ctx context.Context, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrCategoryName
	}
	var c Category
	err := r.DB.QueryRow(ctx, `
		INSERT INTO categories (category_name) VALUES ($1)
		RETURNING category_id, category_name, created_at`, name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if postgres.IsUniqueViolation(err) {
		return Category{}, ErrCategoryExists
	}
	if err != nil {
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepo) Update(ctx context.Context, id int64, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrCategoryName
	}
	var c Category
	err := r.DB.QueryRow(ctx, `
		UPDATE categories SET category_name = $2 WHERE category_id = $1
		RETURNING category_id, category_name, created_at`, id, name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Category{}, ErrCategoryNotFound
	case postgres.IsUniqueViolation(err):
		return Category{}, ErrCategoryExists
	case err != nil:
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes a category. Its products stay, with category_id set to NULL by the foreign key.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM categories WHERE category_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
