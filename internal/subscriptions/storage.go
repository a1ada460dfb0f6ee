package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/newsletter/internal/domain"
	"github.com/dmitrymomot/newsletter/pkg/pg"
)

// Storage keeps subscribers and their confirmation tokens in Postgres.
type Storage struct {
	db  pg.DB
	now func() time.Time
}

func NewStorage(db pg.DB) *Storage {
	return &Storage{db: db, now: time.Now}
}

// Register upserts the subscriber and returns the token to mail.
//
// A new row gets token stored for it. A pending row keeps its existing token,
// so repeated submissions resend the same link. A confirmed row yields
// ErrSubscriberConfirmed. Everything runs in one transaction.
func (s *Storage) Register(ctx context.Context, id uuid.UUID, sub domain.NewSubscriber, token domain.Token) (domain.Token, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Token{}, errors.Join(ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		storedID uuid.UUID
		status   string
	)
	err = tx.QueryRow(ctx, `
		INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, $4, 'pending_confirmation')
		ON CONFLICT (email) DO UPDATE SET status = subscriptions.status
		RETURNING id, status`,
		id, sub.Email.String(), sub.Name.String(), s.now().UTC(),
	).Scan(&storedID, &status)
	if err != nil {
		return domain.Token{}, errors.Join(ErrStorage, err)
	}

	switch {
	case storedID == id:
		if _, err := tx.Exec(ctx, `
			INSERT INTO subscription_tokens (subscription_token, subscriber_id)
			VALUES ($1, $2)`,
			token.String(), id,
		); err != nil {
			return domain.Token{}, errors.Join(ErrStorage, err)
		}
	case domain.SubscriptionStatus(status) == domain.StatusConfirmed:
		return domain.Token{}, ErrSubscriberConfirmed
	default:
		token, err = pendingToken(ctx, tx, storedID)
		if err != nil {
			return domain.Token{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Token{}, errors.Join(ErrStorage, err)
	}
	return token, nil
}

func pendingToken(ctx context.Context, tx pgx.Tx, subscriberID uuid.UUID) (domain.Token, error) {
	var raw string
	err := tx.QueryRow(ctx, `
		SELECT subscription_token FROM subscription_tokens WHERE subscriber_id = $1`,
		subscriberID,
	).Scan(&raw)
	if err != nil {
		return domain.Token{}, errors.Join(ErrStorage, err)
	}
	token, err := domain.ParseToken(raw)
	if err != nil {
		return domain.Token{}, errors.Join(ErrStorage, err)
	}
	return token, nil
}

// Confirm consumes token and marks its subscriber confirmed. An unknown or
// already consumed token yields ErrTokenNotFound.
func (s *Storage) Confirm(ctx context.Context, token domain.Token) (uuid.UUID, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, errors.Join(ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var subscriberID uuid.UUID
	err = tx.QueryRow(ctx, `
		DELETE FROM subscription_tokens
		WHERE subscription_token = $1
		RETURNING subscriber_id`,
		token.String(),
	).Scan(&subscriberID)
	if pg.IsNotFoundError(err) {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, errors.Join(ErrStorage, err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE subscriptions SET status = 'confirmed' WHERE id = $1`,
		subscriberID,
	); err != nil {
		return uuid.Nil, errors.Join(ErrStorage, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, errors.Join(ErrStorage, err)
	}
	return subscriberID, nil
}

// ConfirmedEmails lists the stored addresses of confirmed subscribers through q,
// which may be a transaction. Addresses are returned raw; callers re-validate.
func ConfirmedEmails(ctx context.Context, q pg.Querier) ([]string, error) {
	rows, err := q.Query(ctx, `SELECT email FROM subscriptions WHERE status = 'confirmed'`)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	emails, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return emails, nil
}
