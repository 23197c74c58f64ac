// Package reports runs the read-only sales aggregates shown on the admin dashboard.
package reports

import (
	"context"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Summary struct {
	TotalOrders     int             `json:"total_orders"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	CompletedSales  decimal.Decimal `json:"completed_sales"`
	PendingOrders   int             `json:"pending_orders"`
	ConfirmedOrders int             `json:"confirmed_orders"`
}

type DailySales struct {
	SaleDate   string          `json:"sale_date"`
	OrderCount int             `json:"order_count"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type ProductSales struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	TotalSold    int             `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100
	dateLayout      = "2006-01-02"
)

type Repo struct{ DB *pgxpool.Pool }

// Summary aggregates over every order, whatever its status.
func (r *Repo) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	err := r.DB.QueryRow(ctx, `
		SELECT count(*),
		       COALESCE(SUM(total_amount), 0),
		       COALESCE(SUM(total_amount) FILTER (WHERE order_status = 'Delivered'), 0),
		       count(*) FILTER (WHERE order_status = 'Pending'),
		       count(*) FILTER (WHERE order_status = 'Confirmed')
		FROM orders`).Scan(&s.TotalOrders, &s.TotalSales, &s.CompletedSales, &s.PendingOrders, &s.ConfirmedOrders)
	return s, err
}

// Daily aggregates one calendar day (UTC). A day without orders yields a zero row.
func (r *Repo) Daily(ctx context.Context, day time.Time) (DailySales, error) {
	start := truncateDay(day)
	d := DailySales{SaleDate: start.Format(dateLayout)}
	err := r.DB.QueryRow(ctx, `
		SELECT count(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2`,
		start, start.AddDate(0, 0, 1)).Scan(&d.OrderCount, &d.TotalSales)
	return d, err
}

// Monthly returns one row per day of the month that has orders.
func (r *Repo) Monthly(ctx context.Context, year int, month time.Month) ([]DailySales, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	rows, err := r.DB.Query(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS sale_date,
		       count(*), SUM(total_amount)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY sale_date
		ORDER BY sale_date`, start, start.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (DailySales, error) {
		var d DailySales
		err := row.Scan(&d.SaleDate, &d.OrderCount, &d.TotalSales)
		return d, err
	})
}

// TopProducts ranks existing products by units sold over non-cancelled orders.
func (r *Repo) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.product_id, p.product_name, SUM(oi.quantity)::int, SUM(oi.quantity * oi.price)
		FROM order_items oi
		JOIN products p ON p.product_id = oi.product_id
		JOIN orders o ON o.order_id = oi.order_id
		WHERE o.order_status <> 'Cancelled'
		GROUP BY p.product_id, p.product_name
		ORDER BY 3 DESC, 4 DESC, p.product_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ProductSales, error) {
		var p ProductSales
		err := row.Scan(&p.ProductID, &p.ProductName, &p.TotalSold, &p.TotalRevenue)
		return p, err
	})
}

// ParseDay reads ?date=YYYY-MM-DD, defaulting to today.
func ParseDay(q url.Values, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(q.Get("date"))
	if v == "" {
		return truncateDay(now), nil
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, apperr.Invalid("Invalid date, expected YYYY-MM-DD")
	}
	return d, nil
}

// ParseMonth reads ?month=&year=, defaulting to the current month and year.
func ParseMonth(q url.Values, now time.Time) (int, time.Month, error) {
	now = now.UTC()
	year, month := now.Year(), now.Month()
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			return 0, 0, apperr.Invalid("Invalid year")
		}
		year = y
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, apperr.Invalid("Invalid month")
		}
		month = time.Month(m)
	}
	return year, month, nil
}

// ParseLimit reads ?limit=, defaulting to DefaultTopLimit and capped at MaxTopLimit.
func ParseLimit(q url.Values) (int, error) {
	v := strings.TrimSpace(q.Get("limit"))
	if v == "" {
		return DefaultTopLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, apperr.Invalid("Invalid limit")
	}
	return min(n, MaxTopLimit), nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
