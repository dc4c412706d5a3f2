package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"nhlstats/ingestion/internal/models"
)

// MemoryStore keeps JSON-encoded entries in process memory. Values are copied
// through JSON on both Put and Get, so it behaves like the persistent backends.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func memoryKey(season models.Season, key Key) string {
	return season.Dir() + "/" + key.Path()
}

// Put replaces the entry
func (s *MemoryStore) Put(ctx context.Context, season models.Season, key Key, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := key.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	s.mu.Lock()
	s.entries[memoryKey(season, key)] = data
	s.mu.Unlock()
	return nil
}

// Get decodes the entry into out
func (s *MemoryStore) Get(ctx context.Context, season models.Season, key Key, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := key.Validate(); err != nil {
		return err
	}

	s.mu.RLock()
	data, ok := s.entries[memoryKey(season, key)]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, memoryKey(season, key))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// Len returns the number of stored entries
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
