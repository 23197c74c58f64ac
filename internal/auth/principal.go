package auth

import (
	"context"
	"github.com/ariefcatur/go-storefront/internal/users"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID int64
	Role   users.Role
}

func (p Principal) Has(role users.Role) bool { return p.Role == role }

func (p Principal) IsAdmin() bool { return p.Has(users.RoleAdmin) }

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
