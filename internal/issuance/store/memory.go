package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"assettrack/internal/issuance/models"
	"assettrack/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded issuance ledger. It enforces the ledger-local
// half of the single-open-issuance rule: Open refuses a second stored-issued
// record for the same asset. The coordinator performs the authoritative
// asset-level gate before calling in; this check is the defensive backstop.
type InMemory struct {
	mu        sync.RWMutex
	issuances map[string]*models.Issuance
}

// NewInMemory creates an empty in-memory issuance store.
func NewInMemory() *InMemory {
	return &InMemory{issuances: make(map[string]*models.Issuance)}
}

// Open appends a new issuance with stored status issued. Fails with
// ErrConflict when the asset already has an open issuance.
func (s *InMemory) Open(_ context.Context, issuance *models.Issuance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.issuances {
		if existing.AssetID == issuance.AssetID && existing.IsOpen() {
			return sentinel.ErrConflict
		}
	}
	cp := *issuance
	s.issuances[issuance.ID] = &cp
	return nil
}

// Close transitions an open issuance to returned, recording the return date.
// Fails with ErrInvalidState when the stored status is not issued.
func (s *InMemory) Close(_ context.Context, id string, now time.Time) (*models.Issuance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issuance, exists := s.issuances[id]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	if !issuance.IsOpen() {
		return nil, sentinel.ErrInvalidState
	}
	returned := now
	issuance.Status = models.StatusReturned
	issuance.ActualReturnDate = &returned
	issuance.UpdatedAt = now
	cp := *issuance
	return &cp, nil
}

// Reopen reverts a Close or MarkLostOrDamaged. Reserved for the lifecycle
// coordinator's rollback path when the registry write after a ledger
// transition cannot complete.
func (s *InMemory) Reopen(_ context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	issuance, exists := s.issuances[id]
	if !exists {
		return sentinel.ErrNotFound
	}
	if issuance.IsOpen() {
		return sentinel.ErrInvalidState
	}
	issuance.Status = models.StatusIssued
	issuance.ActualReturnDate = nil
	issuance.UpdatedAt = now
	return nil
}

// MarkLostOrDamaged applies the administrative transition from issued to
// lost or damaged. Not reachable from the issue/return happy path.
func (s *InMemory) MarkLostOrDamaged(_ context.Context, id string, status models.IssuanceStatus, now time.Time) (*models.Issuance, error) {
	if status != models.StatusLost && status != models.StatusDamaged {
		return nil, sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	issuance, exists := s.issuances[id]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	if !issuance.IsOpen() {
		return nil, sentinel.ErrInvalidState
	}
	issuance.Status = status
	issuance.UpdatedAt = now
	cp := *issuance
	return &cp, nil
}

// Delete removes an issuance outright. Reserved for the coordinator rolling
// back a half-applied issue operation; issuances are otherwise never deleted.
func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.issuances[id]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.issuances, id)
	return nil
}

// FindByID returns a copy of the issuance with the given id.
func (s *InMemory) FindByID(_ context.Context, id string) (*models.Issuance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	issuance, exists := s.issuances[id]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	cp := *issuance
	return &cp, nil
}

// FindOpenByAsset returns the open issuance for an asset, or ErrNotFound
// when the asset is unissued.
func (s *InMemory) FindOpenByAsset(_ context.Context, assetID string) (*models.Issuance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, issuance := range s.issuances {
		if issuance.AssetID == assetID && issuance.IsOpen() {
			cp := *issuance
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// List returns copies of every issuance matching the filter, newest first.
func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Issuance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*models.Issuance, 0, len(s.issuances))
	for _, issuance := range s.issuances {
		if filter.Matches(issuance) {
			cp := *issuance
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}
