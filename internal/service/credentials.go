// Package service holds the data-access rules of messagely: registration and
// login, the message lifecycle, and the user directory.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/messagely/internal/apperr"
	"github.com/hongminglow/messagely/internal/auth"
	"github.com/hongminglow/messagely/internal/models"
	"github.com/hongminglow/messagely/internal/storage"
)

const maxUsernameLength = 64

// ErrInvalidCredentials is returned by Login for any unknown user or wrong password.
var ErrInvalidCredentials = apperr.Unauthorized("Invalid user/password")

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Credentials registers and authenticates users.
type Credentials struct {
	store      storage.UserStore
	tokens     *auth.TokenManager
	bcryptCost int
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
	dummyErr  error
}

// NewCredentials wires the credential store to persistence and the token service.
func NewCredentials(store storage.UserStore, tokens *auth.TokenManager, bcryptCost int) *Credentials {
	return &Credentials{store: store, tokens: tokens, bcryptCost: bcryptCost, now: time.Now}
}

// dummy returns a hash at the configured cost, compared against when the
// user does not exist so that a missing account costs as much as a wrong
// password.
func (c *Credentials) dummy() (string, error) {
	c.dummyOnce.Do(func() {
		c.dummyHash, c.dummyErr = auth.DummyHash(c.bcryptCost)
	})
	return c.dummyHash, c.dummyErr
}

// Register validates and stores a new user. The password is only kept as a bcrypt hash.
func (c *Credentials) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateRegistration(in); err != nil {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password, c.bcryptCost)
	if err != nil {
		return models.User{}, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	user := models.User{
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		JoinedAt:     c.now().UTC(),
	}
	created, err := c.store.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, apperr.ErrDuplicateUser
		}
		return models.User{}, apperr.Internal(fmt.Errorf("create user: %w", err))
	}
	return created, nil
}

// Authenticate reports whether password is correct for username. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (c *Credentials) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := c.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			hash, err := c.dummy()
			if err != nil {
				return false, apperr.Internal(fmt.Errorf("dummy hash: %w", err))
			}
			_ = auth.ComparePassword(hash, password)
			return false, nil
		}
		return false, apperr.Internal(fmt.Errorf("find user: %w", err))
	}
	return auth.ComparePassword(user.PasswordHash, password), nil
}

// TouchLogin records a successful login for username.
func (c *Credentials) TouchLogin(ctx context.Context, username string) error {
	if err := c.store.TouchLogin(ctx, username, c.now().UTC()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("No such user: " + username)
		}
		return apperr.Internal(fmt.Errorf("touch login: %w", err))
	}
	return nil
}

// Get returns the user record for username.
func (c *Credentials) Get(ctx context.Context, username string) (models.User, error) {
	user, err := c.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, apperr.NotFound("No such user: " + username)
		}
		return models.User{}, apperr.Internal(fmt.Errorf("find user: %w", err))
	}
	return user, nil
}

// ListAll returns the listing projection of every user.
func (c *Credentials) ListAll(ctx context.Context) ([]models.UserSummary, error) {
	users, err := c.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list users: %w", err))
	}
	return users, nil
}

// Login authenticates, records the login and issues a token. The username is
// trimmed the same way Register trims it.
func (c *Credentials) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	ok, err := c.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := c.TouchLogin(ctx, username); err != nil {
		return "", err
	}
	return c.IssueToken(username)
}

// IssueToken signs a token for username.
func (c *Credentials) IssueToken(username string) (string, error) {
	token, err := c.tokens.Issue(username)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

func validateRegistration(in RegisterInput) error {
	var missing []string
	if in.Username == "" {
		missing = append(missing, "username")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if in.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if in.LastName == "" {
		missing = append(missing, "last_name")
	}
	if len(missing) > 0 {
		return apperr.InvalidInput(strings.Join(missing, ", ") + " required")
	}
	if len(in.Username) > maxUsernameLength {
		return apperr.InvalidInput(fmt.Sprintf("username must be at most %d characters", maxUsernameLength))
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return apperr.InvalidInput(fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}
	return nil
}
