package idempotency

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dmitrymomot/newsletter/pkg/pg"
)

type Store struct {
	db pg.DB
}

func NewStore(db pg.DB) *Store {
	return &Store{db: db}
}

// NextAction is exactly one of: an open transaction holding a fresh
// reservation, or the response saved by an earlier request.
type NextAction struct {
	Tx    pgx.Tx
	Saved *Response
}

// TryProcessing reserves (userID, key). A concurrent request holding the same
// reservation makes the insert wait on its row lock until that request commits
// or rolls back.
func (s *Store) TryProcessing(ctx context.Context, userID uuid.UUID, key Key) (NextAction, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return NextAction{}, errors.Join(ErrStorage, err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO idempotency (user_id, idempotency_key, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT DO NOTHING`,
		userID, key.String(),
	)
	if err != nil {
		_ = tx.Rollback(ctx)
		return NextAction{}, errors.Join(ErrStorage, err)
	}
	if tag.RowsAffected() > 0 {
		return NextAction{Tx: tx}, nil
	}

	if err := tx.Rollback(ctx); err != nil {
		return NextAction{}, errors.Join(ErrStorage, err)
	}

	saved, err := s.SavedResponse(ctx, userID, key)
	if err != nil {
		return NextAction{}, err
	}
	return NextAction{Saved: &saved}, nil
}

// SavedResponse loads the response stored for (userID, key). A reservation
// without a response yields ErrResponseNotSaved.
func (s *Store) SavedResponse(ctx context.Context, userID uuid.UUID, key Key) (Response, error) {
	var (
		status  pgtype.Int2
		headers []byte
		body    []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT response_status_code, response_headers, response_body
		FROM idempotency
		WHERE user_id = $1 AND idempotency_key = $2`,
		userID, key.String(),
	).Scan(&status, &headers, &body)
	if pg.IsNotFoundError(err) {
		return Response{}, ErrResponseNotSaved
	}
	if err != nil {
		return Response{}, errors.Join(ErrStorage, err)
	}
	if !status.Valid {
		return Response{}, ErrResponseNotSaved
	}

	resp := Response{StatusCode: int(status.Int16), Body: body}
	if len(headers) > 0 {
		if err := json.Unmarshal(headers, &resp.Headers); err != nil {
			return Response{}, errors.Join(ErrStorage, err)
		}
	}
	return resp, nil
}

// SaveResponse stores resp on the reservation and commits tx. The transaction
// is rolled back if anything fails before the commit.
func (s *Store) SaveResponse(ctx context.Context, tx pgx.Tx, userID uuid.UUID, key Key, resp Response) (Response, error) {
	headers, err := json.Marshal(resp.Headers)
	if err != nil {
		_ = tx.Rollback(ctx)
		return Response{}, errors.Join(ErrStorage, err)
	}
	body := resp.Body
	if body == nil {
		body = []byte{}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE idempotency
		SET response_status_code = $3, response_headers = $4, response_body = $5
		WHERE user_id = $1 AND idempotency_key = $2`,
		userID, key.String(), int16(resp.StatusCode), headers, body,
	); err != nil {
		_ = tx.Rollback(ctx)
		return Response{}, errors.Join(ErrStorage, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Response{}, errors.Join(ErrStorage, err)
	}
	return resp, nil
}
