package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/messagely/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrUnknownUser indicates a message references a username with no user row.
var ErrUnknownUser = errors.New("referenced user does not exist")

// UserStore captures persistence operations on user records.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	TouchLogin(ctx context.Context, username string, at time.Time) error
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
}

// MessageStore captures persistence operations on messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, msg models.Message) (models.Message, error)
	FindMessage(ctx context.Context, id int64) (models.Message, error)
	// MarkRead sets read_at to at unless it is already set, and returns the row.
	MarkRead(ctx context.Context, id int64, at time.Time) (models.Message, error)
	ListFrom(ctx context.Context, username string) ([]models.Message, error)
	ListTo(ctx context.Context, username string) ([]models.Message, error)
}

// Store is the full persistence surface the service needs.
type Store interface {
	UserStore
	MessageStore
	Ping(ctx context.Context) error
	Close()
}
