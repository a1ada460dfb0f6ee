// Package subscriptions runs the subscriber lifecycle: an upserting subscribe
// that mails a confirmation link, and a one-shot confirm that consumes it.
package subscriptions

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/newsletter/handler"
	"github.com/dmitrymomot/newsletter/internal/domain"
	"github.com/dmitrymomot/newsletter/internal/templates"
	"github.com/dmitrymomot/newsletter/pkg/email"
	"github.com/dmitrymomot/newsletter/pkg/logger"
)

const confirmationSubject = "Welcome!"

type Store interface {
	Register(ctx context.Context, id uuid.UUID, sub domain.NewSubscriber, token domain.Token) (domain.Token, error)
	Confirm(ctx context.Context, token domain.Token) (uuid.UUID, error)
}

type Renderer interface {
	SubscriptionConfirmation(ctx context.Context, link string) (templates.Message, error)
}

type Service struct {
	store        Store
	mailer       email.EmailSender
	renderer     Renderer
	baseURL      string
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

// NewService builds the service. baseURL is the public origin used in links.
func NewService(store Store, mailer email.EmailSender, renderer Renderer, baseURL string, opts ...Option) *Service {
	s := &Service{
		store:    store,
		mailer:   mailer,
		renderer: renderer,
		baseURL:  strings.TrimRight(baseURL, "/"),
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

// Subscribe registers the subscriber and mails the confirmation link. Pending
// subscribers get the link they were sent before.
func (s *Service) Subscribe(ctx context.Context, rawEmail, rawName string) error {
	sub, err := domain.ParseNewSubscriber(rawEmail, rawName)
	if err != nil {
		return errors.Join(ErrInvalidSubscriber, err)
	}

	fresh, err := domain.NewToken()
	if err != nil {
		return err
	}

	token, err := s.store.Register(ctx, uuid.New(), sub, fresh)
	if err != nil {
		return err
	}

	link := s.baseURL + "/subscriptions/confirm?subscription_token=" + url.QueryEscape(token.String())
	msg, err := s.renderer.SubscriptionConfirmation(ctx, link)
	if err != nil {
		return err
	}

	if err := s.mailer.SendEmail(ctx, email.SendEmailParams{
		To:      sub.Email.String(),
		Subject: confirmationSubject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		Tag:     "subscription-confirmation",
	}); err != nil {
		return errors.Join(ErrSendConfirmation, err)
	}

	s.log.InfoContext(ctx, "confirmation email sent",
		logger.Recipient(sub.Email.String()),
		logger.Event("subscription.requested"),
		logger.Component("subscriptions"),
	)
	return nil
}

// Confirm redeems a confirmation token. Each token works once.
func (s *Service) Confirm(ctx context.Context, rawToken string) error {
	token, err := domain.ParseToken(rawToken)
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}

	subscriberID, err := s.store.Confirm(ctx, token)
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "subscription confirmed",
		logger.SubscriberID(subscriberID),
		logger.Event("subscription.confirmed"),
		logger.Component("subscriptions"),
	)
	return nil
}
