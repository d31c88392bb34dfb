package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/messagely/internal/apperr"
	"github.com/hongminglow/messagely/internal/auth"
	"github.com/hongminglow/messagely/internal/models"
	"github.com/hongminglow/messagely/internal/storage/memory"
)

type fixture struct {
	store       *memory.Store
	tokens      *auth.TokenManager
	credentials *Credentials
	messages    *Messages
	directory   *Directory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	tokens := auth.NewTokenManager("test-secret", "", 0)
	creds := NewCredentials(store, tokens, bcrypt.MinCost)
	msgs := NewMessages(store, store)
	return &fixture{
		store:       store,
		tokens:      tokens,
		credentials: creds,
		messages:    msgs,
		directory:   NewDirectory(creds, msgs),
	}
}

func (f *fixture) register(t *testing.T, username string) models.User {
	t.Helper()
	u, err := f.credentials.Register(context.Background(), RegisterInput{
		Username:  username,
		Password:  "1234567",
		FirstName: username,
		LastName:  "awesome",
		Phone:     "14151231234",
	})
	require.NoError(t, err)
	return u
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "bob")

	assert.Equal(t, "bob", u.Username)
	assert.NotEqual(t, "1234567", u.PasswordHash)
	assert.True(t, auth.ComparePassword(u.PasswordHash, "1234567"))
	assert.False(t, u.JoinedAt.IsZero())
	assert.Nil(t, u.LastLoginAt)

	token, err := f.credentials.IssueToken(u.Username)
	require.NoError(t, err)
	assert.NotContains(t, token, "1234567")
	username, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", username)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	f.register(t, "bob")

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"missing username", RegisterInput{Password: "x", FirstName: "a", LastName: "b"}, apperr.ErrInvalidInput},
		{"blank username", RegisterInput{Username: "  ", Password: "x", FirstName: "a", LastName: "b"}, apperr.ErrInvalidInput},
		{"missing password", RegisterInput{Username: "ann", FirstName: "a", LastName: "b"}, apperr.ErrInvalidInput},
		{"missing names", RegisterInput{Username: "ann", Password: "x"}, apperr.ErrInvalidInput},
		{"long password", RegisterInput{Username: "ann", Password: strings.Repeat("p", 73), FirstName: "a", LastName: "b"}, apperr.ErrInvalidInput},
		{"long username", RegisterInput{Username: strings.Repeat("u", 65), Password: "x", FirstName: "a", LastName: "b"}, apperr.ErrInvalidInput},
		{"duplicate", RegisterInput{Username: "bob", Password: "x", FirstName: "a", LastName: "b"}, apperr.ErrDuplicateUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.credentials.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	users, err := f.credentials.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1, "failed registrations leave no rows")
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "bob")

	ok, err := f.credentials.Authenticate(ctx, "bob", "1234567")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.credentials.Authenticate(ctx, "bob", "000")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.credentials.Authenticate(ctx, "nobody", "1234567")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthenticate_DummyHashUsesConfiguredCost(t *testing.T) {
	cost := bcrypt.MinCost + 1
	creds := NewCredentials(memory.New(), auth.NewTokenManager("test-secret", "", 0), cost)

	ok, err := creds.Authenticate(context.Background(), "nobody", "1234567")
	require.NoError(t, err)
	assert.False(t, ok)

	hash, err := creds.dummy()
	require.NoError(t, err)
	got, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, cost, got)
}

func TestLogin_TrimsUsernameLikeRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, " bob ")
	require.Equal(t, "bob", u.Username)

	for _, name := range []string{" bob ", "bob"} {
		token, err := f.credentials.Login(ctx, name, "1234567")
		require.NoError(t, err, name)
		username, err := f.tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "bob", username)
	}
}

func TestLogin_TouchesLastLoginOnlyOnSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "bob")

	_, err := f.credentials.Login(ctx, "bob", "000")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Equal(t, "Invalid user/password", apperr.PublicMessage(err))
	u, err := f.credentials.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, u.LastLoginAt)

	_, unknownErr := f.credentials.Login(ctx, "nobody", "000")
	assert.Equal(t, err.Error(), unknownErr.Error(), "unknown user and wrong password look the same")

	token, err := f.credentials.Login(ctx, "bob", "1234567")
	require.NoError(t, err)
	username, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", username)

	u, err = f.credentials.Get(ctx, "bob")
	require.NoError(t, err)
	assert.NotNil(t, u.LastLoginAt)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.credentials.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, f.credentials.TouchLogin(context.Background(), "ghost"), apperr.ErrNotFound)
}

func TestCreateAndGetMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "bob")
	f.register(t, "joe")

	msg, err := f.messages.Create(ctx, "bob", "joe", "Hello From Bob!")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Nil(t, msg.ReadAt)
	assert.False(t, msg.SentAt.IsZero())

	detail, err := f.messages.Get(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello From Bob!", detail.Body)
	assert.Equal(t, "bob", detail.FromUser.Username)
	assert.Equal(t, "joe", detail.ToUser.Username)
	assert.Equal(t, "14151231234", detail.ToUser.Phone)
	assert.Nil(t, detail.ReadAt)

	_, err = f.messages.Get(ctx, msg.ID+1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateMessage_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "bob")

	_, err := f.messages.Create(ctx, "bob", "ghost", "hi")
	assert.ErrorIs(t, err, apperr.ErrInvalidRecipient)

	_, err = f.messages.Create(ctx, "ghost", "bob", "hi")
	assert.ErrorIs(t, err, apperr.ErrInvalidSender)

	_, err = f.messages.Create(ctx, "bob", "bob", "   ")
	assert.ErrorIs(t, err, apperr.ErrEmptyBody)

	_, err = f.messages.Create(ctx, "bob", "", "hi")
	assert.ErrorIs(t, err, apperr.ErrInvalidRecipient)
}

func TestMarkRead_OnlyRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "bob")
	f.register(t, "joe")
	f.register(t, "ann")

	msg, err := f.messages.Create(ctx, "bob", "joe", "hi joe")
	require.NoError(t, err)

	_, err = f.messages.MarkRead(ctx, msg.ID, "bob")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	unread, err := f.messages.Find(ctx, msg.ID)
	require.NoError(t, err)
	assert.Nil(t, unread.ReadAt)

	read, err := f.messages.MarkRead(ctx, msg.ID, "joe")
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)
	firstRead := *read.ReadAt

	_, err = f.messages.MarkRead(ctx, msg.ID, "ann")
	assert.ErrorIs(t, err, ErrNotRecipient)
	after, err := f.messages.Find(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, firstRead, *after.ReadAt)

	_, err = f.messages.MarkRead(ctx, 999, "joe")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMarkRead_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "bob")
	f.register(t, "joe")
	msg, err := f.messages.Create(ctx, "bob", "joe", "hi")
	require.NoError(t, err)

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.messages.now = func() time.Time { return first }
	_, err = f.messages.MarkRead(ctx, msg.ID, "joe")
	require.NoError(t, err)

	f.messages.now = func() time.Time { return first.Add(time.Hour) }
	again, err := f.messages.MarkRead(ctx, msg.ID, "joe")
	require.NoError(t, err)
	assert.Equal(t, first, *again.ReadAt)
}

func TestDirectory_Threads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, u := range []string{"bob", "jon", "ann"} {
		f.register(t, u)
	}
	_, err := f.messages.Create(ctx, "bob", "jon", "Hello From Bob!")
	require.NoError(t, err)
	_, err = f.messages.Create(ctx, "bob", "jon", "Bob Sends XMas Greetings!")
	require.NoError(t, err)
	_, err = f.messages.Create(ctx, "jon", "bob", "Jon says hello!")
	require.NoError(t, err)
	_, err = f.messages.Create(ctx, "ann", "jon", "Ann here")
	require.NoError(t, err)

	from, err := f.directory.ThreadFrom(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, from, 2)
	assert.Equal(t, "Hello From Bob!", from[0].Body)
	assert.Equal(t, "Bob Sends XMas Greetings!", from[1].Body)
	assert.Equal(t, "jon", from[0].ToUser.Username)

	to, err := f.directory.ThreadTo(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "jon", to[0].FromUser.Username)
	assert.Equal(t, "Jon says hello!", to[0].Body)

	// Every listed message involves the user it was listed for.
	for _, u := range []string{"bob", "jon", "ann"} {
		sent, err := f.messages.ListFrom(ctx, u)
		require.NoError(t, err)
		for _, m := range sent {
			assert.Equal(t, u, m.FromUsername)
		}
		received, err := f.messages.ListTo(ctx, u)
		require.NoError(t, err)
		for _, m := range received {
			assert.Equal(t, u, m.ToUsername)
		}
	}

	users, err := f.directory.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	detail, err := f.directory.GetUserDetail(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, "ann", detail.FirstName)

	empty, err := f.directory.ThreadTo(ctx, "ann")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
