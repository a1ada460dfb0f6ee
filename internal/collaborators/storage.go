package collaborators

import (
	"context"
	"errors"

	"github.com/dmitrymomot/newsletter/internal/accounts"
	"github.com/dmitrymomot/newsletter/internal/domain"
	"github.com/dmitrymomot/newsletter/pkg/pg"
)

// Storage keeps pending invitations in Postgres.
type Storage struct {
	db pg.DB
}

func NewStorage(db pg.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) CreateInvitation(ctx context.Context, token domain.Token, code domain.ValidationCode) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO invitation_tokens (invitation_token, validation_code)
		VALUES ($1, $2)`,
		token.String(), code.String(),
	); err != nil {
		return errors.Join(ErrStorage, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *Storage) InvitationExists(ctx context.Context, token domain.Token) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM invitation_tokens WHERE invitation_token = $1)`,
		token.String(),
	).Scan(&exists)
	if err != nil {
		return false, errors.Join(ErrStorage, err)
	}
	return exists, nil
}

// Redeem consumes the (token, code) pair and inserts u in the same
// transaction. A taken username rolls back, so the invitation stays usable.
func (s *Storage) Redeem(ctx context.Context, token domain.Token, code domain.ValidationCode, u accounts.User) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var one int
	err = tx.QueryRow(ctx, `
		DELETE FROM invitation_tokens
		WHERE invitation_token = $1 AND validation_code = $2
		RETURNING 1`,
		token.String(), code.String(),
	).Scan(&one)
	if pg.IsNotFoundError(err) {
		return ErrInvitationNotFound
	}
	if err != nil {
		return errors.Join(ErrStorage, err)
	}

	if err := accounts.InsertUser(ctx, tx, u); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}
