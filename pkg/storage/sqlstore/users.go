package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/platinummonkey/poolguide/pkg/auth"
	"github.com/platinummonkey/poolguide/pkg/storage"
)

// CreateUser inserts u. A duplicate username or email yields storage.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	now := s.timestamp()

	query := s.q(`
		INSERT INTO users (username, email, password_hash, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := s.writer().QueryRowContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.IsAdmin, now, now,
	).Scan(&u.ID)
	if err != nil {
		return classify("create user", err)
	}

	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// GetUserByID returns the user without its password hash
func (s *Store) GetUserByID(ctx context.Context, id int64) (*auth.User, error) {
	query := s.q(`
		SELECT id, username, email, is_admin, created_at, updated_at
		FROM users WHERE id = ?
	`)

	u := &auth.User{}
	err := s.reader().QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns the user including its password hash
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.scanUser(ctx, s.q(`
		SELECT id, username, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE email = ?
	`), email)
}

// FindUserByUsernameOrEmail returns the first user holding either value
func (s *Store) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*auth.User, error) {
	return s.scanUser(ctx, s.q(`
		SELECT id, username, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE username = ? OR email = ?
		ORDER BY id LIMIT 1
	`), username, email)
}

func (s *Store) scanUser(ctx context.Context, query string, args ...interface{}) (*auth.User, error) {
	u := &auth.User{}
	err := s.writer().QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// SetAdmin changes the admin flag of the user with the given email
func (s *Store) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	res, err := s.writer().ExecContext(ctx,
		s.q(`UPDATE users SET is_admin = ?, updated_at = ? WHERE email = ?`),
		isAdmin, s.timestamp(), email,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectAffected(res, "user "+email)
}

func expectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}
