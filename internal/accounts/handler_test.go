package accounts_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsletter/handler"
	"github.com/dmitrymomot/newsletter/internal/accounts"
	"github.com/dmitrymomot/newsletter/internal/domain"
	"github.com/dmitrymomot/newsletter/internal/views"
	"github.com/dmitrymomot/newsletter/pkg/cookie"
	"github.com/dmitrymomot/newsletter/pkg/flash"
	"github.com/dmitrymomot/newsletter/pkg/session"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) UserByUsername(ctx context.Context, username string) (accounts.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(accounts.User), args.Error(1)
}

func (m *mockStore) UserByID(ctx context.Context, id uuid.UUID) (accounts.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(accounts.User), args.Error(1)
}

func (m *mockStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

type app struct {
	store    *mockStore
	hasher   *accounts.Hasher
	sessions *session.Manager
	router   http.Handler
}

func newApp(t *testing.T) app {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cookies, err := cookie.New([]string{"accounts-test-secret-0123456789abcdef"})
	require.NoError(t, err)

	sessions := session.New(session.NewRedisStore(rdb, "session:"), cookies, session.DefaultConfig())
	t.Cleanup(func() { _ = sessions.Close() })

	store := &mockStore{}
	hasher := newHasher(t)
	svc := accounts.NewService(store, hasher, sessions, flash.New(cookies, nil), views.MustNew())

	r := chi.NewRouter()
	r.Use(sessions.Middleware)
	r.Mount("/login", svc.LoginHandler())
	r.Route("/admin", func(r chi.Router) {
		r.Use(sessions.RequireAuth(accounts.RedirectToLogin()))
		svc.AdminRoutes(r)
	})

	return app{store: store, hasher: hasher, sessions: sessions, router: r}
}

type client struct {
	h       http.Handler
	cookies map[string]*http.Cookie
}

func newClient(h http.Handler) *client {
	return &client{h: h, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (a app) seedUser(t *testing.T, username, password string, role domain.UserRole) accounts.User {
	t.Helper()
	hash, err := a.hasher.Hash(password)
	require.NoError(t, err)
	u := accounts.User{ID: uuid.New(), Username: username, PasswordHash: hash, Role: role}
	a.store.On("UserByUsername", mock.Anything, username).Return(u, nil).Maybe()
	a.store.On("UserByID", mock.Anything, u.ID).Return(u, nil).Maybe()
	return u
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("wrong password flashes and redirects", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)
		a.seedUser(t, "admin", "correct-horse", domain.RoleAdmin)
		c := newClient(a.router)

		rec := c.do(http.MethodPost, "/login", url.Values{"username": {"admin"}, "password": {"battery-staple"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))

		page := c.do(http.MethodGet, "/login", nil)
		assert.Equal(t, http.StatusOK, page.Code)
		assert.Contains(t, page.Body.String(), "Authentication failed")

		again := c.do(http.MethodGet, "/login", nil)
		assert.NotContains(t, again.Body.String(), "Authentication failed")
	})

	t.Run("unknown user gets the same answer", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)
		a.store.On("UserByUsername", mock.Anything, "ghost").Return(accounts.User{}, accounts.ErrUserNotFound)
		c := newClient(a.router)

		rec := c.do(http.MethodPost, "/login", url.Values{"username": {"ghost"}, "password": {"whatever"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("success opens the dashboard", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)
		a.seedUser(t, "admin", "correct-horse", domain.RoleAdmin)
		c := newClient(a.router)

		rec := c.do(http.MethodPost, "/login", url.Values{"username": {"admin"}, "password": {"correct-horse"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))

		dash := c.do(http.MethodGet, "/admin/dashboard", nil)
		assert.Equal(t, http.StatusOK, dash.Code)
		assert.Contains(t, dash.Body.String(), "Welcome admin!")

		out := c.do(http.MethodPost, "/admin/logout", nil)
		assert.Equal(t, http.StatusSeeOther, out.Code)
		assert.Equal(t, "/login", out.Header().Get("Location"))

		page := c.do(http.MethodGet, "/login", nil)
		assert.Contains(t, page.Body.String(), "You have successfully logged out.")

		after := c.do(http.MethodGet, "/admin/dashboard", nil)
		assert.Equal(t, http.StatusSeeOther, after.Code)
		assert.Equal(t, "/login", after.Header().Get("Location"))
	})
}

func TestAnonymousAdminAccess(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	c := newClient(a.router)
	for _, path := range []string{"/admin/dashboard", "/admin/password"} {
		rec := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		form        url.Values
		wantMessage string
		wantUpdate  bool
	}{
		{
			name:        "fields differ",
			form:        url.Values{"current_password": {"correct-horse"}, "new_password": {"new-password-1"}, "new_password_check": {"new-password-2"}},
			wantMessage: "You entered two different new passwords - the field values must match.",
		},
		{
			name:        "too short",
			form:        url.Values{"current_password": {"correct-horse"}, "new_password": {"short"}, "new_password_check": {"short"}},
			wantMessage: "New password must contain at least 8 and up to 64 characters.",
		},
		{
			name:        "wrong current password",
			form:        url.Values{"current_password": {"wrong-horse"}, "new_password": {"new-password-1"}, "new_password_check": {"new-password-1"}},
			wantMessage: "The current password is incorrect.",
		},
		{
			name:        "changed",
			form:        url.Values{"current_password": {"correct-horse"}, "new_password": {"new-password-1"}, "new_password_check": {"new-password-1"}},
			wantMessage: "Your password has been changed.",
			wantUpdate:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := newApp(t)
			u := a.seedUser(t, "admin", "correct-horse", domain.RoleAdmin)
			a.store.On("UpdatePasswordHash", mock.Anything, u.ID, mock.AnythingOfType("string")).Return(nil).Maybe()
			c := newClient(a.router)

			require.Equal(t, http.StatusSeeOther, c.do(http.MethodPost, "/login",
				url.Values{"username": {"admin"}, "password": {"correct-horse"}}).Code)

			rec := c.do(http.MethodPost, "/admin/password", tt.form)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/admin/password", rec.Header().Get("Location"))

			page := c.do(http.MethodGet, "/admin/password", nil)
			assert.Contains(t, page.Body.String(), tt.wantMessage)

			if tt.wantUpdate {
				a.store.AssertCalled(t, "UpdatePasswordHash", mock.Anything, u.ID, mock.AnythingOfType("string"))
			} else {
				a.store.AssertNotCalled(t, "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(func(handler.Context, struct{}) handler.Response {
		return handler.Empty(http.StatusNoContent)
	}, handler.WithDecorators[handler.Context, struct{}](accounts.AdminOnly[struct{}]()))

	call := func(s *session.Session) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if s != nil {
			req = req.WithContext(session.WithSession(req.Context(), s))
		}
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec.Code
	}

	now := time.Now()
	assert.Equal(t, http.StatusUnauthorized, call(nil))
	assert.Equal(t, http.StatusMethodNotAllowed, call(&session.Session{UserID: uuid.New(), Role: "collaborator", CreatedAt: now}))
	assert.Equal(t, http.StatusNoContent, call(&session.Session{UserID: uuid.New(), Role: "admin", CreatedAt: now}))
}
