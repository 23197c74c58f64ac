package reports

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/postgres/pgtest"
)

func TestReports(t *testing.T) {
	db := pgtest.Open(t)
	repo := &Repo{DB: db}
	ctx := context.Background()

	uid := pgtest.MustInsertID(t, db, `INSERT INTO users (name, email, password) VALUES ('A', 'a@example.com', 'x') RETURNING user_id`)
	tea := pgtest.MustInsertID(t, db, `INSERT INTO products (product_name, price, stock_quantity) VALUES ('Tea', 2, 50) RETURNING product_id`)
	mug := pgtest.MustInsertID(t, db, `INSERT INTO products (product_name, price, stock_quantity) VALUES ('Mug', 10, 50) RETURNING product_id`)

	order := func(status string, at time.Time, productID int64, name string, qty int, price string) {
		t.Helper()
		id := pgtest.MustInsertID(t, db, `
			INSERT INTO orders (user_id, total_amount, payment_method, order_status, delivery_address, phone, created_at)
			VALUES ($1, $2::numeric * $3, 'COD', $4, 'addr', '98', $5) RETURNING order_id`, uid, price, qty, status, at)
		pgtest.MustExec(t, db, `INSERT INTO order_items (order_id, product_id, product_name, quantity, price) VALUES ($1, $2, $3, $4, $5)`,
			id, productID, name, qty, price)
	}
	day := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	order("Delivered", day, tea, "Tea", 5, "2")
	order("Pending", day.Add(2*time.Hour), mug, "Mug", 1, "10")
	order("Confirmed", day.AddDate(0, 0, 3), mug, "Mug", 2, "10")
	order("Cancelled", day.AddDate(0, 0, 3), tea, "Tea", 40, "2")

	s, err := repo.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalOrders != 4 || s.PendingOrders != 1 || s.ConfirmedOrders != 1 {
		t.Errorf("summary counts = %+v", s)
	}
	if s.CompletedSales.StringFixed(2) != "10.00" || s.TotalSales.StringFixed(2) != "120.00" {
		t.Errorf("summary sales = %s / %s", s.CompletedSales, s.TotalSales)
	}

	d, err := repo.Daily(ctx, day)
	if err != nil || d.OrderCount != 2 || d.TotalSales.StringFixed(2) != "20.00" || d.SaleDate != "2024-05-10" {
		t.Errorf("daily = %+v, %v", d, err)
	}
	empty, err := repo.Daily(ctx, day.AddDate(0, 0, 1))
	if err != nil || empty.OrderCount != 0 || !empty.TotalSales.IsZero() {
		t.Errorf("empty day = %+v, %v", empty, err)
	}

	m, err := repo.Monthly(ctx, 2024, time.May)
	if err != nil || len(m) != 2 || m[1].SaleDate != "2024-05-13" || m[1].OrderCount != 2 {
		t.Errorf("monthly = %+v, %v", m, err)
	}

	top, err := repo.TopProducts(ctx, 10)
	if err != nil || len(top) != 2 {
		t.Fatalf("top = %+v, %v", top, err)
	}
	if top[0].ProductName != "Tea" || top[0].TotalSold != 5 || top[1].TotalRevenue.StringFixed(2) != "30.00" {
		t.Errorf("top = %+v", top)
	}
}
