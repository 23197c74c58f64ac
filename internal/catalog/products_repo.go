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

type ProductRepo struct{ DB *pgxpool.Pool }

const productSelect = `
	SELECT p.product_id, p.category_id, c.category_name, p.product_name, p.price, p.stock_quantity,
	       COALESCE(p.description, ''), COALESCE(p.image, ''), p.status, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.category_id = p.category_id`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.CategoryName, &p.Name, &p.Price, &p.Stock,
		&p.Description, &p.Image, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]Product, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.CategoryID != nil {
		add("p.category_id = $%d", *f.CategoryID)
	}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.product_name ILIKE $%d OR p.description ILIKE $%d)", n, n))
	}
	if f.MinPrice != nil {
		add("p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= $%d", *f.MaxPrice)
	}
	if f.Status != "" {
		add("p.status = $%d", f.Status)
	}

	q := productSelect
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY p.created_at DESC, p.product_id DESC"
	return r.query(ctx, q, args...)
}

// All returns every product regardless of status, used by the export.
func (r *ProductRepo) All(ctx context.Context) ([]Product, error) {
	return r.query(ctx, productSelect+" ORDER BY p.product_id")
}

func (r *ProductRepo) query(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, productSelect+" WHERE p.product_id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *ProductRepo) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products (category_id, product_name, price, stock_quantity, description, image, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
		RETURNING product_id`,
		in.CategoryID, strings.TrimSpace(in.Name), in.Price, in.Stock, in.Description, in.Image, in.Status).Scan(&id)
	if err != nil {
		return Product{}, translateWriteErr("insert product", err)
	}
	return r.Get(ctx, id)
}

func (r *ProductRepo) Update(ctx context.Context, id int64, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET category_id = $2, product_name = $3, price = $4, stock_quantity = $5,
		    description = NULLIF($6, ''), image = NULLIF($7, ''), status = $8, updated_at = now()
		WHERE product_id = $1`,
		id, in.CategoryID, strings.TrimSpace(in.Name), in.Price, in.Stock, in.Description, in.Image, in.Status)
	if err != nil {
		return Product{}, translateWriteErr("update product", err)
	}
	if ct.RowsAffected() == 0 {
		return Product{}, ErrProductNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a product and returns its image path so the caller can clean it up.
func (r *ProductRepo) Delete(ctx context.Context, id int64) (string, error) {
	var image string
	err := r.DB.QueryRow(ctx, `DELETE FROM products WHERE product_id = $1 RETURNING COALESCE(image, '')`, id).Scan(&image)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrProductNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete product: %w", err)
	}
	return image, nil
}

func translateWriteErr(op string, err error) error {
	if postgres.IsForeignKeyViolation(err) {
		return ErrUnknownCategory
	}
	return fmt.Errorf("%s: %w", op, err)
}
