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

const messageColumns = `id, from_username, to_username, body, sent_at, read_at`

// CreateMessage inserts a message and returns it with its generated id.
func (s *Store) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	const query = `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + messageColumns
	created, err := scanMessage(s.pool.QueryRow(ctx, query, msg.FromUsername, msg.ToUsername, msg.Body, msg.SentAt))
	if err != nil {
		if pgErrorCode(err) == codeForeignKeyViolation {
			return models.Message{}, storage.ErrUnknownUser
		}
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return created, nil
}

// FindMessage fetches a message by id.
func (s *Store) FindMessage(ctx context.Context, id int64) (models.Message, error) {
	const query = `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	return scanMessage(s.pool.QueryRow(ctx, query, id))
}

// MarkRead stamps read_at once; later calls return the row unchanged.
func (s *Store) MarkRead(ctx context.Context, id int64, at time.Time) (models.Message, error) {
	const query = `
		UPDATE messages SET read_at = COALESCE(read_at, $2)
		WHERE id = $1
		RETURNING ` + messageColumns
	return scanMessage(s.pool.QueryRow(ctx, query, id, at))
}

// ListFrom returns messages sent by username in send order.
func (s *Store) ListFrom(ctx context.Context, username string) ([]models.Message, error) {
	const query = `SELECT ` + messageColumns + ` FROM messages WHERE from_username = $1 ORDER BY id`
	return s.listMessages(ctx, query, username)
}

// ListTo returns messages received by username in send order.
func (s *Store) ListTo(ctx context.Context, username string) ([]models.Message, error) {
	const query = `SELECT ` + messageColumns + ` FROM messages WHERE to_username = $1 ORDER BY id`
	return s.listMessages(ctx, query, username)
}

func (s *Store) listMessages(ctx context.Context, query, username string) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Message, error) {
		return scanMessage(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}
	return msgs, nil
}

func scanMessage(row pgx.Row) (models.Message, error) {
	var msg models.Message
	if err := row.Scan(&msg.ID, &msg.FromUsername, &msg.ToUsername, &msg.Body, &msg.SentAt, &msg.ReadAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Message{}, storage.ErrNotFound
		}
		return models.Message{}, err
	}
	return msg, nil
}
