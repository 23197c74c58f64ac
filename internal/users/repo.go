package users

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const userColumns = `user_id, name, COALESCE(email, ''), COALESCE(phone, ''), password, role, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// Create inserts a user. Empty email or phone are stored as NULL so the unique
// constraints only apply to values that were actually given.
func (r *Repo) Create(ctx context.Context, nu NewUser) (User, error) {
	u, err := scanUser(r.DB.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, password, role)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5)
		RETURNING `+userColumns,
		nu.Name, nu.Email, nu.Phone, nu.PasswordHash, nu.Role))
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return User{}, ErrExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// ExistsByContact reports whether any user already has the email or the phone.
func (r *Repo) ExistsByContact(ctx context.Context, email, phone string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE ($1 <> '' AND email = $1) OR ($2 <> '' AND phone = $2)
		)`, email, phone).Scan(&exists)
	return exists, err
}

// FindByContact looks a user up by email, or by phone when email is empty.
func (r *Repo) FindByContact(ctx context.Context, email, phone string) (User, error) {
	var row pgx.Row
	if email != "" {
		row = r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	} else {
		row = r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	}
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// AnyAdmin returns an existing admin, used by the seeding tool to stay idempotent.
func (r *Repo) AnyAdmin(ctx context.Context) (User, bool, error) {
	u, err := scanUser(r.DB.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = 'admin' ORDER BY user_id LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}
