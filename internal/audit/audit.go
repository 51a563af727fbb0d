// Package audit captures key domain actions as transport-agnostic events so
// stores and sinks can fan out.
package audit

import (
	"context"
	"sync"
	"time"
)

// Action identifies what happened.
type Action string

const (
	ActionAssetCreated    Action = "asset_created"
	ActionAssetUpdated    Action = "asset_updated"
	ActionAssetDeleted    Action = "asset_deleted"
	ActionIssuanceOpened  Action = "issuance_opened"
	ActionIssuanceClosed  Action = "issuance_returned"
	ActionIssueRolledBack Action = "issuance_rolled_back"
	ActionUserLoggedIn    Action = "user_logged_in"
)

// Event is emitted from domain logic to record who did what to which entity.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Actor     string    `json:"actor"`
	EntityID  string    `json:"entity_id"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// InMemoryStore keeps events in process memory, newest last.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListRecent returns up to limit of the most recent events, newest last.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := len(s.events) - limit
	if limit <= 0 || start < 0 {
		start = 0
	}
	return append([]Event{}, s.events[start:]...), nil
}
