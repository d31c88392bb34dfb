package models

import "time"

// Message is a direct message between two users.
type Message struct {
	ID           int64      `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

// IsRead reports whether the recipient has marked the message read.
func (m Message) IsRead() bool {
	return m.ReadAt != nil
}

// Participants returns the sender and recipient usernames.
func (m Message) Participants() (from, to string) {
	return m.FromUsername, m.ToUsername
}

// MessageDetail is a message with both participants resolved.
type MessageDetail struct {
	ID       int64      `json:"id"`
	Body     string     `json:"body"`
	SentAt   time.Time  `json:"sent_at"`
	ReadAt   *time.Time `json:"read_at"`
	FromUser Profile    `json:"from_user"`
	ToUser   Profile    `json:"to_user"`
}

func (d MessageDetail) Participants() (from, to string) {
	return d.FromUser.Username, d.ToUser.Username
}

// InboxEntry is a received message with the sender resolved.
type InboxEntry struct {
	ID       int64      `json:"id"`
	Body     string     `json:"body"`
	SentAt   time.Time  `json:"sent_at"`
	ReadAt   *time.Time `json:"read_at"`
	FromUser Profile    `json:"from_user"`
}

// OutboxEntry is a sent message with the recipient resolved.
type OutboxEntry struct {
	ID     int64      `json:"id"`
	Body   string     `json:"body"`
	SentAt time.Time  `json:"sent_at"`
	ReadAt *time.Time `json:"read_at"`
	ToUser Profile    `json:"to_user"`
}
