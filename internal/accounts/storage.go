package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/newsletter/internal/domain"
	"github.com/dmitrymomot/newsletter/pkg/pg"
)

const usernameConstraint = "users_username_key"

// User is a row of the users table.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         domain.UserRole
}

type Storage struct {
	db pg.Querier
}

func NewStorage(db pg.Querier) *Storage {
	return &Storage{db: db}
}

func (s *Storage) UserByUsername(ctx context.Context, username string) (User, error) {
	u := User{Username: username}
	var role string
	err := s.db.QueryRow(ctx, `
		SELECT user_id, password_hash, role FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.PasswordHash, &role)
	if pg.IsNotFoundError(err) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, errors.Join(ErrStorage, err)
	}
	if u.Role, err = domain.ParseUserRole(role); err != nil {
		return User{}, errors.Join(ErrStorage, err)
	}
	return u, nil
}

func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (User, error) {
	u := User{ID: id}
	var role string
	err := s.db.QueryRow(ctx, `
		SELECT username, password_hash, role FROM users WHERE user_id = $1`,
		id,
	).Scan(&u.Username, &u.PasswordHash, &role)
	if pg.IsNotFoundError(err) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, errors.Join(ErrStorage, err)
	}
	if u.Role, err = domain.ParseUserRole(role); err != nil {
		return User{}, errors.Join(ErrStorage, err)
	}
	return u, nil
}

func (s *Storage) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE user_id = $1`, id, hash)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// InsertUser adds u through q, which may be a transaction. A taken username
// yields ErrUsernameTaken.
func InsertUser(ctx context.Context, q pg.Querier, u User) error {
	_, err := q.Exec(ctx, `
		INSERT INTO users (user_id, username, password_hash, role)
		VALUES ($1, $2, $3, $4)`,
		u.ID, u.Username, u.PasswordHash, string(u.Role),
	)
	if pg.IsConstraintViolation(err, usernameConstraint) {
		return ErrUsernameTaken
	}
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}
