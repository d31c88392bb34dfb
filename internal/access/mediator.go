// Package access decides whether the holder of a token may act on a resource.
package access

import (
	"github.com/hongminglow/messagely/internal/apperr"
)

// TokenVerifier resolves a token to the username it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Owned is anything with a sender and a recipient.
type Owned interface {
	Participants() (from, to string)
}

// Mediator holds no state of its own; every check either resolves a username
// or fails with apperr.ErrUnauthorized.
type Mediator struct {
	tokens TokenVerifier
}

func NewMediator(tokens TokenVerifier) *Mediator {
	return &Mediator{tokens: tokens}
}

// Token picks the token from the request body, falling back to the query string.
func Token(bodyToken, queryToken string) string {
	if bodyToken != "" {
		return bodyToken
	}
	return queryToken
}

// RequireAuthenticated resolves token to a username.
func (m *Mediator) RequireAuthenticated(token string) (string, error) {
	username, err := m.tokens.Verify(token)
	if err != nil || username == "" {
		return "", apperr.ErrUnauthorized
	}
	return username, nil
}

// RequireSelf additionally requires the token to belong to username.
func (m *Mediator) RequireSelf(token, username string) (string, error) {
	resolved, err := m.RequireAuthenticated(token)
	if err != nil {
		return "", err
	}
	if resolved != username {
		return "", apperr.ErrUnauthorized
	}
	return resolved, nil
}

// RequireParticipant requires the token to belong to the sender or recipient.
func (m *Mediator) RequireParticipant(token string, msg Owned) (string, error) {
	resolved, err := m.RequireAuthenticated(token)
	if err != nil {
		return "", err
	}
	from, to := msg.Participants()
	if resolved != from && resolved != to {
		return "", apperr.ErrUnauthorized
	}
	return resolved, nil
}

// RequireRecipient requires the token to belong to the recipient.
func (m *Mediator) RequireRecipient(token string, msg Owned) (string, error) {
	resolved, err := m.RequireAuthenticated(token)
	if err != nil {
		return "", err
	}
	if _, to := msg.Participants(); resolved != to {
		return "", apperr.ErrUnauthorized
	}
	return resolved, nil
}
