// Package memory keeps users and messages in process memory. It backs the
// test suites and STORAGE=memory local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hongminglow/messagely/internal/models"
	"github.com/hongminglow/messagely/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store is a mutex-guarded in-memory storage.Store.
type Store struct {
	mu       sync.RWMutex
	users    map[string]models.User
	messages []models.Message
	nextID   int64
}

// New returns an empty store.
func New() *Store {
	return &Store{users: make(map[string]models.User), nextID: 1}
}

func (s *Store) Close() {}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.users[user.Username] = user
	return user, nil
}

func (s *Store) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *Store) TouchLogin(_ context.Context, username string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return storage.ErrNotFound
	}
	user.LastLoginAt = &at
	s.users[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserSummary, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) CreateMessage(_ context.Context, msg models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[msg.FromUsername]; !ok {
		return models.Message{}, storage.ErrUnknownUser
	}
	if _, ok := s.users[msg.ToUsername]; !ok {
		return models.Message{}, storage.ErrUnknownUser
	}
	msg.ID = s.nextID
	msg.ReadAt = nil
	s.nextID++
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *Store) FindMessage(_ context.Context, id int64) (models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.indexOf(id)
	if !ok {
		return models.Message{}, storage.ErrNotFound
	}
	return s.messages[i], nil
}

func (s *Store) MarkRead(_ context.Context, id int64, at time.Time) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.indexOf(id)
	if !ok {
		return models.Message{}, storage.ErrNotFound
	}
	if s.messages[i].ReadAt == nil {
		s.messages[i].ReadAt = &at
	}
	return s.messages[i], nil
}

func (s *Store) ListFrom(_ context.Context, username string) ([]models.Message, error) {
	return s.filter(func(m models.Message) bool { return m.FromUsername == username }), nil
}

func (s *Store) ListTo(_ context.Context, username string) ([]models.Message, error) {
	return s.filter(func(m models.Message) bool { return m.ToUsername == username }), nil
}

func (s *Store) filter(keep func(models.Message) bool) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Message{}
	for _, m := range s.messages {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// messages are appended with increasing ids, so a binary search finds them.
func (s *Store) indexOf(id int64) (int, bool) {
	i := sort.Search(len(s.messages), func(i int) bool { return s.messages[i].ID >= id })
	if i < len(s.messages) && s.messages[i].ID == id {
		return i, true
	}
	return 0, false
}
