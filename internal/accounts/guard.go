package accounts

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/newsletter/handler"
	"github.com/dmitrymomot/newsletter/internal/domain"
	"github.com/dmitrymomot/newsletter/pkg/session"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   domain.UserRole
}

func (p Principal) IsAdmin() bool { return p.Role.IsAdmin() }

// CurrentPrincipal reads the caller from the session in ctx.
func CurrentPrincipal(ctx context.Context) (Principal, bool) {
	s, ok := session.FromContext(ctx)
	if !ok || !s.IsAuthenticated() {
		return Principal{}, false
	}
	role, err := domain.ParseUserRole(s.Role)
	if err != nil {
		return Principal{}, false
	}
	return Principal{UserID: s.UserID, Role: role}, true
}

// RedirectToLogin answers anonymous requests to protected pages.
func RedirectToLogin() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

// AdminOnly rejects callers without the admin role with 405.
func AdminOnly[R any]() handler.Decorator[handler.Context, R] {
	return func(next handler.HandlerFunc[handler.Context, R]) handler.HandlerFunc[handler.Context, R] {
		return func(ctx handler.Context, req R) handler.Response {
			p, ok := CurrentPrincipal(ctx)
			if !ok {
				return handler.Error(handler.ErrUnauthorized)
			}
			if !p.IsAdmin() {
				return handler.Error(handler.ErrMethodNotAllowed)
			}
			return next(ctx, req)
		}
	}
}
