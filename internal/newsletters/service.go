// Package newsletters publishes an issue to every confirmed subscriber.
//
// Publishing is idempotent per (publisher, idempotency key): the first request
// reserves the key, sends the whole batch and saves its response in the same
// transaction; retries replay that response without sending anything. A
// failure before the response is saved leaves the key retryable, and the
// retry sends the batch again from the start.
package newsletters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/newsletter/handler"
	"github.com/dmitrymomot/newsletter/internal/accounts"
	"github.com/dmitrymomot/newsletter/internal/domain"
	"github.com/dmitrymomot/newsletter/internal/idempotency"
	"github.com/dmitrymomot/newsletter/internal/subscriptions"
	"github.com/dmitrymomot/newsletter/internal/views"
	"github.com/dmitrymomot/newsletter/pkg/archive"
	"github.com/dmitrymomot/newsletter/pkg/email"
	"github.com/dmitrymomot/newsletter/pkg/flash"
	"github.com/dmitrymomot/newsletter/pkg/logger"
	"github.com/dmitrymomot/newsletter/pkg/pg"
)

const publishedLocation = "/admin/newsletters"

type Idempotency interface {
	TryProcessing(ctx context.Context, userID uuid.UUID, key idempotency.Key) (idempotency.NextAction, error)
	SaveResponse(ctx context.Context, tx pgx.Tx, userID uuid.UUID, key idempotency.Key, resp idempotency.Response) (idempotency.Response, error)
}

// RecipientsFunc lists raw subscriber addresses through q.
type RecipientsFunc func(ctx context.Context, q pg.Querier) ([]string, error)

// Issue is one newsletter edition.
type Issue struct {
	Title string
	HTML  string
	Text  string
}

func (i Issue) validate() error {
	v := handler.NewValidationError()
	if strings.TrimSpace(i.Title) == "" {
		v.Add("title", "cannot be empty")
	}
	if strings.TrimSpace(i.HTML) == "" && strings.TrimSpace(i.Text) == "" {
		v.Add("content", "html or text content is required")
	}
	return v.Err()
}

type Service struct {
	idempotency  Idempotency
	recipients   RecipientsFunc
	mailer       email.EmailSender
	archive      archive.Storage
	flash        *flash.Messenger
	views        *views.Views
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
	now          func() time.Time
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

// WithArchive stores a JSON copy of every published issue.
func WithArchive(a archive.Storage) Option {
	return func(s *Service) {
		if a != nil {
			s.archive = a
		}
	}
}

// WithRecipients replaces the confirmed subscriber query.
func WithRecipients(f RecipientsFunc) Option {
	return func(s *Service) {
		if f != nil {
			s.recipients = f
		}
	}
}

func NewService(idem Idempotency, mailer email.EmailSender, messages *flash.Messenger, pages *views.Views, opts ...Option) *Service {
	s := &Service{
		idempotency: idem,
		recipients:  subscriptions.ConfirmedEmails,
		mailer:      mailer,
		archive:     archive.Nop{},
		flash:       messages,
		views:       pages,
		log:         logger.Discard(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.log)
	}
	return s
}

// Publish sends issue once per (publisher, rawKey) and returns the response to
// show the publisher, fresh or replayed.
func (s *Service) Publish(ctx context.Context, publisher accounts.Principal, rawKey string, issue Issue) (idempotency.Response, error) {
	key, err := idempotency.ParseKey(rawKey)
	if err != nil {
		return idempotency.Response{}, err
	}
	if !publisher.IsAdmin() {
		return idempotency.Response{}, ErrNotAdmin
	}
	if err := issue.validate(); err != nil {
		return idempotency.Response{}, err
	}

	action, err := s.idempotency.TryProcessing(ctx, publisher.UserID, key)
	if err != nil {
		return idempotency.Response{}, err
	}
	if action.Saved != nil {
		s.log.InfoContext(ctx, "replaying saved publish response",
			logger.UserID(publisher.UserID),
			logger.IdempotencyKey(key.String()),
			logger.Component("newsletters"),
		)
		return *action.Saved, nil
	}

	// The batch runs to completion once started, even if the client goes away.
	ctx = context.WithoutCancel(ctx)
	tx := action.Tx
	defer func() { _ = tx.Rollback(ctx) }()

	start := s.now()
	sent, err := s.deliver(ctx, tx, issue)
	if err != nil {
		return idempotency.Response{}, err
	}

	if err := s.store(ctx, publisher.UserID, key, issue); err != nil {
		return idempotency.Response{}, err
	}

	resp, err := s.idempotency.SaveResponse(ctx, tx, publisher.UserID, key, idempotency.SeeOther(publishedLocation))
	if err != nil {
		return idempotency.Response{}, err
	}

	s.log.InfoContext(ctx, "newsletter issue published",
		logger.UserID(publisher.UserID),
		logger.IdempotencyKey(key.String()),
		logger.Count("recipients", sent),
		logger.Duration(s.now().Sub(start)),
		logger.Event("newsletter.published"),
		logger.Component("newsletters"),
	)
	return resp, nil
}

// deliver mails issue to every confirmed subscriber in fetch order and stops
// at the first failure. Invalid stored addresses are skipped.
func (s *Service) deliver(ctx context.Context, q pg.Querier, issue Issue) (int, error) {
	emails, err := s.recipients(ctx, q)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, raw := range emails {
		to, err := domain.ParseEmail(raw)
		if err != nil {
			s.log.WarnContext(ctx, "skipping confirmed subscriber with invalid stored email",
				logger.Error(err),
				logger.Component("newsletters"),
			)
			continue
		}

		if err := s.mailer.SendEmail(ctx, email.SendEmailParams{
			To:      to.String(),
			Subject: issue.Title,
			HTML:    issue.HTML,
			Text:    issue.Text,
			Tag:     "newsletter-issue",
		}); err != nil {
			return sent, errors.Join(ErrDelivery, fmt.Errorf("send newsletter issue to %s: %w", to, err))
		}
		sent++
	}
	return sent, nil
}

type archivedIssue struct {
	Title       string    `json:"title"`
	HTML        string    `json:"html"`
	Text        string    `json:"text"`
	PublishedBy uuid.UUID `json:"published_by"`
	PublishedAt time.Time `json:"published_at"`
}

// ArchiveKey is where an issue is stored. Retries of one request share it.
func ArchiveKey(publisher uuid.UUID, key idempotency.Key) string {
	sum := sha256.Sum256([]byte(key.String()))
	return path.Join("issues", publisher.String(), hex.EncodeToString(sum[:])+".json")
}

func (s *Service) store(ctx context.Context, publisher uuid.UUID, key idempotency.Key, issue Issue) error {
	if _, ok := s.archive.(archive.Nop); ok {
		return nil
	}
	data, err := json.Marshal(archivedIssue{
		Title:       issue.Title,
		HTML:        issue.HTML,
		Text:        issue.Text,
		PublishedBy: publisher,
		PublishedAt: s.now().UTC(),
	})
	if err != nil {
		return errors.Join(ErrArchive, err)
	}
	if err := s.archive.Put(ctx, ArchiveKey(publisher, key), data, "application/json"); err != nil {
		return errors.Join(ErrArchive, err)
	}
	return nil
}
