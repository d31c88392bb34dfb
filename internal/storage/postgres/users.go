package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/messagely/internal/models"
	"github.com/hongminglow/messagely/internal/storage"
)

const userColumns = `username, password, first_name, last_name, phone, join_at, last_login_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (username, password, first_name, last_name, phone, join_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.JoinedAt)
	created, err := scanUser(row)
	if err != nil {
		if pgErrorCode(err) == codeUniqueViolation {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

// TouchLogin records a successful login.
func (s *Store) TouchLogin(ctx context.Context, username string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE username = $1`, username, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListUsers returns every user ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	rows, err := s.pool.Query(ctx, `SELECT username, first_name, last_name FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UserSummary, error) {
		var u models.UserSummary
		err := row.Scan(&u.Username, &u.FirstName, &u.LastName)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.Username, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Phone, &user.JoinedAt, &user.LastLoginAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
