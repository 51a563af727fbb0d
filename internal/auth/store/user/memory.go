package user

import (
	"context"
	"strings"
	"sync"

	"assettrack/internal/auth/models"
	"assettrack/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded user store keyed by id with an email index.
type InMemory struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	byEmail map[string]string
}

// New creates an empty in-memory user store.
func New() *InMemory {
	return &InMemory{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

// Save inserts or replaces a user. Email uniqueness is case-insensitive.
func (s *InMemory) Save(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(u.Email)
	if existingID, ok := s.byEmail[email]; ok && existingID != u.ID {
		return sentinel.ErrConflict
	}
	cp := *u
	s.users[u.ID] = &cp
	s.byEmail[email] = u.ID
	return nil
}

// FindByID returns a copy of the user with the given id.
func (s *InMemory) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// FindByEmail returns a copy of the user with the given email,
// case-insensitively.
func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}
