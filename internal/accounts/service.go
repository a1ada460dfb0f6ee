// Package accounts authenticates admins and collaborators with argon2id
// password hashes, keeps their Redis backed session, and guards admin routes.
package accounts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/newsletter/handler"
	"github.com/dmitrymomot/newsletter/internal/views"
	"github.com/dmitrymomot/newsletter/pkg/flash"
	"github.com/dmitrymomot/newsletter/pkg/logger"
	"github.com/dmitrymomot/newsletter/pkg/session"
)

type Store interface {
	UserByUsername(ctx context.Context, username string) (User, error)
	UserByID(ctx context.Context, id uuid.UUID) (User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type Service struct {
	store        Store
	hasher       *Hasher
	sessions     *session.Manager
	flash        *flash.Messenger
	views        *views.Views
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

type Option func(*Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(s *Service) {
		if h != nil {
			s.errorHandler = h
		}
	}
}

func NewService(store Store, hasher *Hasher, sessions *session.Manager, messages *flash.Messenger, pages *views.Views, opts ...Option) *Service {
	s := &Service{
		store:    store,
		hasher:   hasher,
		sessions: sessions,
		flash:    messages,
		views:    pages,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.log)
	}
	return s
}

// ValidateCredentials returns the user when password matches. Unknown users
// cost as much as wrong passwords and yield the same ErrInvalidCredentials.
func (s *Service) ValidateCredentials(ctx context.Context, username, password string) (User, error) {
	u, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, s.hasher.VerifyDummy(password)
	}
	if err != nil {
		return User{}, err
	}
	if err := s.hasher.Verify(u.PasswordHash, password); err != nil {
		return User{}, err
	}
	return u, nil
}

// ChangePassword replaces the password of userID after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next, nextCheck string) error {
	if next != nextCheck {
		return ErrPasswordMismatch
	}
	if err := ValidatePasswordLength(next); err != nil {
		return err
	}

	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Verify(u.PasswordHash, current); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "password changed",
		logger.UserID(userID),
		logger.Event("account.password_changed"),
		logger.Component("accounts"),
	)
	return nil
}
