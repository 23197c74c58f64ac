// Package pgtest opens a disposable storefront database for integration tests.
package pgtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnvDSN names the variable holding the test database DSN. Tests are skipped when it is unset.
const EnvDSN = "STOREFRONT_TEST_DSN"

// Open connects, applies the schema and empties every table. The pool is closed on cleanup.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set; skipping database test", EnvDSN)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)

	if err := postgres.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.Exec(ctx, `TRUNCATE order_items, orders, cart, products, categories, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

// MustExec runs a statement and fails the test on error.
func MustExec(t *testing.T, db *pgxpool.Pool, sql string, args ...any) {
	t.Helper()
	if _, err := db.Exec(context.Background(), sql, args...); err != nil {
		t.Fatalf("exec %q: %v", sql, err)
	}
}

// MustInsertID runs an INSERT ... RETURNING id statement and returns the id.
func MustInsertID(t *testing.T, db *pgxpool.Pool, sql string, args ...any) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRow(context.Background(), sql, args...).Scan(&id); err != nil {
		t.Fatalf("insert %q: %v", sql, err)
	}
	return id
}
