package session

import (
	"context"
	"sync"
	"time"

	"assettrack/internal/auth/models"
	"assettrack/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded session store. Expired sessions are treated as
// absent on read.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewInMemory creates an empty in-memory session store.
func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[string]*models.Session)}
}

// Save inserts or replaces a session.
func (s *InMemory) Save(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

// FindByID returns a copy of the unexpired session with the given id.
func (s *InMemory) FindByID(_ context.Context, id string, now time.Time) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok || now.After(sess.ExpiresAt) {
		return nil, sentinel.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

// Delete removes a session.
func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}
