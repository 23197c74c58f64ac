package orders

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

// decrementStock is replaced in tests to simulate a failing stock update.
var decrementStock = func(ctx context.Context, tx pgx.Tx, productID int64, qty int) error {
	ct, err := tx.Exec(ctx, `
		UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE product_id = $1`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("product %d vanished during checkout", productID)
	}
	return nil
}

// PlaceOrder turns the user's cart into an order in one transaction: insert the order and
// its items, decrement stock, clear the cart. Product rows are locked before the stock
// check so concurrent checkouts of the same product serialize.
func (r *Repo) PlaceOrder(ctx context.Context, userID int64, in PlaceInput) (Placed, error) {
	in, method, err := in.Normalize()
	if err != nil {
		return Placed{}, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Placed{}, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT c.product_id, p.product_name, p.price, p.stock_quantity, p.status = 'active', c.quantity
		FROM cart c
		JOIN products p ON p.product_id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.product_id
		FOR UPDATE OF p, c`, userID)
	if err != nil {
		return Placed{}, err
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Line, error) {
		var l Line
		err := row.Scan(&l.ProductID, &l.Name, &l.Price, &l.Stock, &l.Active, &l.Quantity)
		return l, err
	})
	if err != nil {
		return Placed{}, fmt.Errorf("load cart: %w", err)
	}

	total, err := Plan(lines)
	if err != nil {
		return Placed{}, err
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, total_amount, payment_method, order_status, delivery_address, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING order_id`,
		userID, total, method, StatusPending, in.DeliveryAddress, in.Phone).Scan(&orderID)
	if err != nil {
		return Placed{}, fmt.Errorf("insert order: %w", err)
	}

	for _, l := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, l.ProductID, l.Name, l.Quantity, l.Price); err != nil {
			return Placed{}, fmt.Errorf("insert order item: %w", err)
		}
	}
	for _, l := range lines {
		if err := decrementStock(ctx, tx, l.ProductID, l.Quantity); err != nil {
			return Placed{}, fmt.Errorf("decrement stock: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart WHERE user_id = $1`, userID); err != nil {
		return Placed{}, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Placed{}, err
	}
	return Placed{OrderID: orderID, UserID: userID, Total: total, Lines: lines}, nil
}

const orderListSelect = `
	SELECT o.order_id, o.user_id, o.total_amount, o.payment_method, o.order_status,
	       o.delivery_address, o.phone, o.created_at,
	       u.name, COALESCE(u.phone, ''),
	       COALESCE(s.item_count, 0), COALESCE(s.summary, '')
	FROM orders o
	JOIN users u ON u.user_id = o.user_id
	LEFT JOIN (
		SELECT order_id, SUM(quantity)::int AS item_count,
		       string_agg(product_name || ' x' || quantity, ', ' ORDER BY order_item_id) AS summary
		FROM order_items
		GROUP BY order_id
	) s ON s.order_id = o.order_id`

func (r *Repo) listOrders(ctx context.Context, where string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, orderListSelect+where+` ORDER BY o.created_at DESC, o.order_id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.PaymentMethod, &o.Status,
			&o.DeliveryAddress, &o.Phone, &o.CreatedAt,
			&o.CustomerName, &o.CustomerPhone, &o.ItemCount, &o.ItemSummary); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListByUser returns the user's orders, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	out, err := r.listOrders(ctx, ` WHERE o.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CustomerName, out[i].CustomerPhone = "", ""
	}
	return out, nil
}

// ListAll returns every order, optionally restricted to one status.
func (r *Repo) ListAll(ctx context.Context, status Status) ([]Order, error) {
	if status == "" {
		return r.listOrders(ctx, "")
	}
	return r.listOrders(ctx, ` WHERE o.order_status = $1`, status)
}

// Get loads an order with its items. Unless admin is set, orders owned by
// other users are reported as not found.
func (r *Repo) Get(ctx context.Context, orderID, viewerID int64, admin bool) (Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT order_id, user_id, total_amount, payment_method, order_status, delivery_address, phone, created_at
		FROM orders WHERE order_id = $1`, orderID).
		Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.PaymentMethod, &o.Status, &o.DeliveryAddress, &o.Phone, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if !admin && o.UserID != viewerID {
		return Order{}, ErrNotFound
	}

	rows, err := r.DB.Query(ctx, `
		SELECT order_item_id, product_id, product_name, quantity, price
		FROM order_items WHERE order_id = $1 ORDER BY order_item_id`, orderID)
	if err != nil {
		return Order{}, err
	}
	o.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (Item, error) {
		var it Item
		if err := row.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return it, err
		}
		it.Subtotal = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		return it, nil
	})
	if err != nil {
		return Order{}, err
	}
	for _, it := range o.Items {
		o.ItemCount += it.Quantity
	}
	return o, nil
}

// UpdateStatus moves an order along the status machine. Cancelling puts the
// ordered quantities back in stock within the same transaction.
func (r *Repo) UpdateStatus(ctx context.Context, orderID int64, to Status) (Change, error) {
	if _, ok := validNext[to]; !ok {
		return Change{}, ErrInvalidStatus
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Change{}, err
	}
	defer tx.Rollback(ctx)

	ch := Change{OrderID: orderID, To: to}
	err = tx.QueryRow(ctx, `SELECT order_status, user_id FROM orders WHERE order_id = $1 FOR UPDATE`, orderID).
		Scan(&ch.From, &ch.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Change{}, ErrNotFound
	}
	if err != nil {
		return Change{}, err
	}
	if ch.From == to {
		return ch, nil
	}
	if !CanTransition(ch.From, to) {
		return Change{}, ErrInvalidTransition
	}

	if to == StatusCancelled {
		if _, err := tx.Exec(ctx, `
			UPDATE products p
			SET stock_quantity = p.stock_quantity + oi.quantity, updated_at = now()
			FROM order_items oi
			WHERE oi.order_id = $1 AND p.product_id = oi.product_id`, orderID); err != nil {
			return Change{}, fmt.Errorf("restock: %w", err)
		}
		ch.Restocked = true
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET order_status = $2 WHERE order_id = $1`, orderID, to); err != nil {
		return Change{}, fmt.Errorf("update status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Change{}, err
	}
	ch.Changed = true
	return ch, nil
}
