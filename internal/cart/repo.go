package cart

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) List(ctx context.Context, userID int64) (Cart, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT c.cart_id, c.product_id, p.product_name, p.price, COALESCE(p.image, ''), p.stock_quantity,
		       c.quantity, c.added_at
		FROM cart c
		JOIN products p ON p.product_id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.added_at DESC, c.cart_id DESC`, userID)
	if err != nil {
		return Cart{}, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Price, &it.Image, &it.Stock,
			&it.Quantity, &it.AddedAt); err != nil {
			return Cart{}, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return Cart{}, err
	}
	return NewCart(items), nil
}

// Add puts qty of a product in the user's cart, merging with an existing line.
// created reports whether a new line was inserted.
func (r *Repo) Add(ctx context.Context, userID, productID int64, qty int) (cartID int64, created bool, err error) {
	if qty < 1 {
		return 0, false, ErrQuantity
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback(ctx)

	var (
		stock  int
		status string
	)
	err = tx.QueryRow(ctx, `SELECT stock_quantity, status FROM products WHERE product_id = $1 FOR UPDATE`, productID).
		Scan(&stock, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, ErrProductNotFound
	}
	if err != nil {
		return 0, false, err
	}
	if status != "active" {
		return 0, false, ErrProductInactive
	}
	if err := CheckQuantity(qty, stock); err != nil {
		return 0, false, err
	}

	// the upsert merges with a line inserted concurrently; the stock check runs on the merged total
	var merged int
	err = tx.QueryRow(ctx, `
		INSERT INTO cart AS c (user_id, product_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = c.quantity + EXCLUDED.quantity
		RETURNING c.cart_id, c.quantity, (xmax = 0)`, userID, productID, qty).Scan(&cartID, &merged, &created)
	if err != nil {
		return 0, false, fmt.Errorf("write cart line: %w", err)
	}
	if err := CheckQuantity(merged, stock); err != nil {
		return 0, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, false, err
	}
	return cartID, created, nil
}

// Update sets the quantity of one of the user's cart lines.
func (r *Repo) Update(ctx context.Context, userID, cartID int64, qty int) error {
	if qty < 1 {
		return ErrQuantity
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var stock int
	err = tx.QueryRow(ctx, `
		SELECT p.stock_quantity
		FROM cart c
		JOIN products p ON p.product_id = c.product_id
		WHERE c.cart_id = $1 AND c.user_id = $2
		FOR UPDATE OF c`, cartID, userID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrItemNotFound
	}
	if err != nil {
		return err
	}
	if err := CheckQuantity(qty, stock); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE cart SET quantity = $2 WHERE cart_id = $1`, cartID, qty); err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *Repo) Remove(ctx context.Context, userID, cartID int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM cart WHERE cart_id = $1 AND user_id = $2`, cartID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repo) Clear(ctx context.Context, userID int64) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart WHERE user_id = $1`, userID)
	return err
}
