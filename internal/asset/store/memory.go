package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"assettrack/internal/asset/models"
	"assettrack/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded asset registry. The backing map is never
// exposed; callers only see copies, so readers observe consistent snapshots
// while mutations are in flight.
type InMemory struct {
	mu     sync.RWMutex
	assets map[string]*models.Asset
}

// NewInMemory creates an empty in-memory asset store.
func NewInMemory() *InMemory {
	return &InMemory{assets: make(map[string]*models.Asset)}
}

// Create inserts a new asset. Fails with ErrConflict if the id is taken.
func (s *InMemory) Create(_ context.Context, asset *models.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assets[asset.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *asset
	s.assets[asset.ID] = &cp
	return nil
}

// Update replaces an existing asset record.
func (s *InMemory) Update(_ context.Context, asset *models.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assets[asset.ID]; !exists {
		return sentinel.ErrNotFound
	}
	cp := *asset
	s.assets[asset.ID] = &cp
	return nil
}

// SetAssignedTo updates the holder and stamps LastUpdated. Reserved for the
// lifecycle coordinator; no other caller may change assignment.
func (s *InMemory) SetAssignedTo(_ context.Context, id, holder string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, exists := s.assets[id]
	if !exists {
		return sentinel.ErrNotFound
	}
	asset.AssignedTo = holder
	asset.LastUpdated = now
	return nil
}

// Delete removes an asset record.
func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assets[id]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.assets, id)
	return nil
}

// FindByID returns a copy of the asset with the given id.
func (s *InMemory) FindByID(_ context.Context, id string) (*models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, exists := s.assets[id]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	cp := *asset
	return &cp, nil
}

// List returns copies of every asset matching the filter, ordered by name
// for stable pagination-free display.
func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*models.Asset, 0, len(s.assets))
	for _, asset := range s.assets {
		if filter.Matches(asset) {
			cp := *asset
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

// Count returns the number of stored assets.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets), nil
}
