package httpx

import (
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/users"
	"net/http"
	"strings"
)

var (
	errTokenRequired = apperr.Unauthorized("Access token required")
	errTokenInvalid  = apperr.Unauthorized("Invalid or expired token")
	errAdminOnly     = apperr.Forbidden("Admin access required")
)

// Guard authenticates bearer tokens and gates routes by role.
type Guard struct {
	Tokens TokenParser
}

func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearer(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, r, errTokenRequired)
			return
		}
		p, err := g.Tokens.Parse(raw)
		if err != nil {
			writeError(w, r, errTokenInvalid)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

// RequireRole must run after Authenticate.
func (g *Guard) RequireRole(role users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.FromContext(r.Context())
			if !ok {
				writeError(w, r, errTokenRequired)
				return
			}
			if !p.Has(role) {
				writeError(w, r, errAdminOnly)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// principal returns the caller set by Authenticate.
func principal(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}
