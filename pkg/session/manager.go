package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/newsletter/pkg/cookie"
	"github.com/dmitrymomot/newsletter/pkg/logger"
)

type Manager struct {
	store   Store
	cookies *cookie.Manager
	config  Config
	log     *slog.Logger

	touches   chan *Session
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// New starts a Manager. Close stops its background activity writer.
func New(store Store, cookies *cookie.Manager, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		cookies: cookies,
		config:  cfg.withDefaults(),
		log:     logger.Discard(),
		touches: make(chan *Session, 256),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.wg.Add(1)
	go m.activityWorker()

	return m
}

// Get resolves the request's cookie to a live session.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.cookies.GetSigned(r, m.config.CookieName)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	s, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.IsExpired() {
		_ = m.store.Delete(ctx, token)
		return nil, ErrSessionExpired
	}
	return s, nil
}

// Authenticate drops any current session and issues a fresh one for userID.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uuid.UUID, role string) (*Session, error) {
	if old, err := m.cookies.GetSigned(r, m.config.CookieName); err == nil {
		_ = m.store.Delete(ctx, old)
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &Session{
		Token:          token,
		UserID:         userID,
		Role:           role,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      expiry(now, now, m.config.IdleTimeout, m.config.MaxLifetime),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}

	m.setCookie(w, s)
	return s, nil
}

// Destroy removes the session from the store and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var err error
	if token, cerr := m.cookies.GetSigned(r, m.config.CookieName); cerr == nil {
		err = m.store.Delete(ctx, token)
	}
	m.cookies.Delete(w, m.config.CookieName)
	return err
}

// Close stops the activity writer after flushing queued updates.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	m.wg.Wait()
	return nil
}

func (m *Manager) setCookie(w http.ResponseWriter, s *Session) {
	m.cookies.SetSigned(w, m.config.CookieName, s.Token, cookie.WithMaxAge(int(time.Until(s.ExpiresAt).Seconds())))
}

// touch slides the expiry forward when the last extension is older than the threshold.
func (m *Manager) touch(w http.ResponseWriter, s *Session) {
	now := time.Now()
	if now.Sub(s.LastActivityAt) < m.config.ActivityUpdateThreshold {
		return
	}

	next := *s
	next.LastActivityAt = now
	next.ExpiresAt = expiry(s.CreatedAt, now, m.config.IdleTimeout, m.config.MaxLifetime)
	m.setCookie(w, &next)

	select {
	case m.touches <- &next:
	default:
		// Queue full: the cookie is already extended and the next request retries the store write.
	}
}

func (m *Manager) activityWorker() {
	defer m.wg.Done()

	save := func(s *Session) {
		if err := m.store.Save(context.Background(), s); err != nil {
			m.log.Error("failed to extend session", logger.Error(err), logger.Component("session"))
		}
	}

	for {
		select {
		case s := <-m.touches:
			save(s)
		case <-m.done:
			for {
				select {
				case s := <-m.touches:
					save(s)
				default:
					return
				}
			}
		}
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
