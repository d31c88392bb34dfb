package service

import (
	"context"

	"github.com/hongminglow/messagely/internal/models"
)

// Directory answers user listings and per-user message threads.
type Directory struct {
	credentials *Credentials
	messages    *Messages
}

func NewDirectory(credentials *Credentials, messages *Messages) *Directory {
	return &Directory{credentials: credentials, messages: messages}
}

func (d *Directory) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	return d.credentials.ListAll(ctx)
}

// GetUserDetail returns the full profile of username; the hash never serializes.
func (d *Directory) GetUserDetail(ctx context.Context, username string) (models.User, error) {
	return d.credentials.Get(ctx, username)
}

// ThreadTo lists messages received by username with each sender resolved.
func (d *Directory) ThreadTo(ctx context.Context, username string) ([]models.InboxEntry, error) {
	msgs, err := d.messages.ListTo(ctx, username)
	if err != nil {
		return nil, err
	}
	profiles := d.profileCache(ctx)
	out := make([]models.InboxEntry, 0, len(msgs))
	for _, m := range msgs {
		from, err := profiles(m.FromUsername)
		if err != nil {
			return nil, err
		}
		out = append(out, models.InboxEntry{ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt, FromUser: from})
	}
	return out, nil
}

// ThreadFrom lists messages sent by username with each recipient resolved.
func (d *Directory) ThreadFrom(ctx context.Context, username string) ([]models.OutboxEntry, error) {
	msgs, err := d.messages.ListFrom(ctx, username)
	if err != nil {
		return nil, err
	}
	profiles := d.profileCache(ctx)
	out := make([]models.OutboxEntry, 0, len(msgs))
	for _, m := range msgs {
		to, err := profiles(m.ToUsername)
		if err != nil {
			return nil, err
		}
		out = append(out, models.OutboxEntry{ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt, ToUser: to})
	}
	return out, nil
}

// profileCache resolves each counterpart once per call.
func (d *Directory) profileCache(ctx context.Context) func(string) (models.Profile, error) {
	seen := make(map[string]models.Profile)
	return func(username string) (models.Profile, error) {
		if p, ok := seen[username]; ok {
			return p, nil
		}
		user, err := d.credentials.Get(ctx, username)
		if err != nil {
			return models.Profile{}, err
		}
		seen[username] = user.Profile()
		return seen[username], nil
	}
}
