package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsletter/pkg/cookie"
)

const (
	secret    = "this-is-a-very-long-secret-key-32-chars-long"
	oldSecret = "this-is-old-very-long-secret-key-32-chars-ok"
)

// replay copies Set-Cookie headers from rec onto a fresh request.
func replay(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func newManager(t *testing.T, secrets ...string) *cookie.Manager {
	t.Helper()
	if len(secrets) == 0 {
		secrets = []string{secret}
	}
	m, err := cookie.New(secrets)
	require.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secrets []string
		wantErr error
	}{
		{"no secrets", nil, cookie.ErrNoSecret},
		{"blank secrets", []string{"", "  "}, cookie.ErrNoSecret},
		{"too short", []string{"short"}, cookie.ErrSecretTooShort},
		{"valid", []string{secret}, nil},
		{"rotation", []string{secret, oldSecret}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := cookie.New(tt.secrets)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestManager_Defaults(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	rec := httptest.NewRecorder()
	m.Set(rec, "plain", "value")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "/", cookies[0].Path)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	got, err := m.Get(replay(t, rec), "plain")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "plain")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()

	m := newManager(t)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		m.SetSigned(rec, "sid", "session-123")
		got, err := m.GetSigned(replay(t, rec), "sid")
		require.NoError(t, err)
		assert.Equal(t, "session-123", got)
	})

	t.Run("tampered value", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		m.SetSigned(rec, "sid", "session-123")
		c := rec.Result().Cookies()[0]

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, sig, _ := strings.Cut(c.Value, ".")
		req.AddCookie(&http.Cookie{Name: "sid", Value: "c2Vzc2lvbi05OTk." + sig})
		_, err := m.GetSigned(req, "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("renamed cookie", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		m.SetSigned(rec, "sid", "session-123")
		c := rec.Result().Cookies()[0]

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "other", Value: c.Value})
		_, err := m.GetSigned(req, "other")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "no-separator"})
		_, err := m.GetSigned(req, "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})
}

func TestManager_Rotation(t *testing.T) {
	t.Parallel()

	old := newManager(t, oldSecret)
	rotated := newManager(t, secret, oldSecret)

	rec := httptest.NewRecorder()
	old.SetSigned(rec, "sid", "v1")
	require.NoError(t, old.SetEncrypted(rec, "enc", "v2"))
	req := replay(t, rec)

	got, err := rotated.GetSigned(req, "sid")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	got, err = rotated.GetEncrypted(req, "enc")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	_, err = newManager(t, secret).GetEncrypted(req, "enc")
	assert.ErrorIs(t, err, cookie.ErrDecryptionFailed)
}

func TestManager_Encrypted(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	rec := httptest.NewRecorder()
	require.NoError(t, m.SetEncrypted(rec, "enc", "top secret"))

	c := rec.Result().Cookies()[0]
	assert.NotContains(t, c.Value, "top secret")

	got, err := m.GetEncrypted(replay(t, rec), "enc")
	require.NoError(t, err)
	assert.Equal(t, "top secret", got)
}

func TestManager_Flash(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	rec := httptest.NewRecorder()
	require.NoError(t, m.SetFlash(rec, "messages", []string{"Authentication failed"}))

	req := replay(t, rec)
	read := httptest.NewRecorder()
	var msgs []string
	require.NoError(t, m.GetFlash(read, req, "messages", &msgs))
	assert.Equal(t, []string{"Authentication failed"}, msgs)

	deleted := read.Result().Cookies()
	require.Len(t, deleted, 1)
	assert.Equal(t, -1, deleted[0].MaxAge)

	err := m.GetFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "messages", &msgs)
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewFromConfig(cookie.Config{
		Secrets:  []string{secret},
		Path:     "/app",
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Set(rec, "x", "y")
	c := rec.Result().Cookies()[0]
	assert.Equal(t, "/app", c.Path)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	_, err = cookie.NewFromConfig(cookie.Config{})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)
}
