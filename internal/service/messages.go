package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hongminglow/messagely/internal/apperr"
	"github.com/hongminglow/messagely/internal/models"
	"github.com/hongminglow/messagely/internal/storage"
)

// ErrNotRecipient is returned when anyone but the recipient marks a message read.
var ErrNotRecipient = apperr.Unauthorized("Unauthorized to read/mark message")

// Messages owns the message lifecycle: create, read-marking and lookups.
type Messages struct {
	messages storage.MessageStore
	users    storage.UserStore
	now      func() time.Time
}

// NewMessages wires the message store.
func NewMessages(messages storage.MessageStore, users storage.UserStore) *Messages {
	return &Messages{messages: messages, users: users, now: time.Now}
}

// Create sends body from one user to another.
func (m *Messages) Create(ctx context.Context, from, to, body string) (models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return models.Message{}, apperr.ErrEmptyBody
	}
	if err := m.requireUser(ctx, from, apperr.ErrInvalidSender); err != nil {
		return models.Message{}, err
	}
	if err := m.requireUser(ctx, to, apperr.ErrInvalidRecipient); err != nil {
		return models.Message{}, err
	}

	msg, err := m.messages.CreateMessage(ctx, models.Message{
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
		SentAt:       m.now().UTC(),
	})
	if err != nil {
		// A user row vanishing between the check and the insert; the recipient
		// is the only side a caller can influence.
		if errors.Is(err, storage.ErrUnknownUser) {
			return models.Message{}, apperr.ErrInvalidRecipient
		}
		return models.Message{}, apperr.Internal(fmt.Errorf("create message: %w", err))
	}
	return msg, nil
}

// Find returns the bare message row.
func (m *Messages) Find(ctx context.Context, id int64) (models.Message, error) {
	msg, err := m.messages.FindMessage(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Message{}, apperr.NotFound(fmt.Sprintf("No such message: %d", id))
		}
		return models.Message{}, apperr.Internal(fmt.Errorf("find message: %w", err))
	}
	return msg, nil
}

// Get returns the message with both participants' public profiles.
func (m *Messages) Get(ctx context.Context, id int64) (models.MessageDetail, error) {
	msg, err := m.Find(ctx, id)
	if err != nil {
		return models.MessageDetail{}, err
	}
	from, err := m.profile(ctx, msg.FromUsername)
	if err != nil {
		return models.MessageDetail{}, err
	}
	to, err := m.profile(ctx, msg.ToUsername)
	if err != nil {
		return models.MessageDetail{}, err
	}
	return models.MessageDetail{
		ID:       msg.ID,
		Body:     msg.Body,
		SentAt:   msg.SentAt,
		ReadAt:   msg.ReadAt,
		FromUser: from,
		ToUser:   to,
	}, nil
}

// MarkRead stamps read_at on behalf of requester, who must be the recipient.
// Marking an already-read message returns it with its original read_at.
func (m *Messages) MarkRead(ctx context.Context, id int64, requester string) (models.Message, error) {
	msg, err := m.Find(ctx, id)
	if err != nil {
		return models.Message{}, err
	}
	if msg.ToUsername != requester {
		return models.Message{}, ErrNotRecipient
	}
	if msg.IsRead() {
		return msg, nil
	}

	read, err := m.messages.MarkRead(ctx, id, m.now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Message{}, apperr.NotFound(fmt.Sprintf("No such message: %d", id))
		}
		return models.Message{}, apperr.Internal(fmt.Errorf("mark read: %w", err))
	}
	return read, nil
}

// ListFrom returns messages sent by username in send order.
func (m *Messages) ListFrom(ctx context.Context, username string) ([]models.Message, error) {
	msgs, err := m.messages.ListFrom(ctx, username)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list sent messages: %w", err))
	}
	return msgs, nil
}

// ListTo returns messages received by username in send order.
func (m *Messages) ListTo(ctx context.Context, username string) ([]models.Message, error) {
	msgs, err := m.messages.ListTo(ctx, username)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list received messages: %w", err))
	}
	return msgs, nil
}

func (m *Messages) requireUser(ctx context.Context, username string, missing error) error {
	if strings.TrimSpace(username) == "" {
		return missing
	}
	_, err := m.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return missing
		}
		return apperr.Internal(fmt.Errorf("find user: %w", err))
	}
	return nil
}

func (m *Messages) profile(ctx context.Context, username string) (models.Profile, error) {
	user, err := m.users.FindByUsername(ctx, username)
	if err != nil {
		return models.Profile{}, apperr.Internal(fmt.Errorf("resolve participant %s: %w", username, err))
	}
	return user.Profile(), nil
}
