// Package checkpoint provides the in-memory reference implementation of the
// checkpoint store contract. Durable implementations live outside the
// engine.
package checkpoint

import (
	"context"
	"sync"

	"metasync/internal/domain"
)

// MemoryStore is a mutex-guarded in-memory fingerprint store.
type MemoryStore struct {
	mu           sync.RWMutex
	fingerprints map[string]domain.Fingerprint
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{fingerprints: make(map[string]domain.Fingerprint)}
}

// Get implements domain.CheckpointStore.
func (s *MemoryStore) Get(_ context.Context, assetID string) (domain.Fingerprint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fp, ok := s.fingerprints[assetID]
	return fp, ok, nil
}

// Put implements domain.CheckpointStore.
func (s *MemoryStore) Put(_ context.Context, assetID string, fp domain.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints[assetID] = fp
	return nil
}

// Delete implements domain.CheckpointStore.
func (s *MemoryStore) Delete(_ context.Context, assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fingerprints, assetID)
	return nil
}

// List implements domain.CheckpointStore.
func (s *MemoryStore) List(_ context.Context) (map[string]domain.Fingerprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Fingerprint, len(s.fingerprints))
	for k, v := range s.fingerprints {
		out[k] = v
	}
	return out, nil
}

var _ domain.CheckpointStore = (*MemoryStore)(nil)
