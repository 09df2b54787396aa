package tracker

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps run times in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]time.Time)}
}

func (s *MemoryStore) LastRun(_ context.Context, name string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.runs[name]
	return t, ok, nil
}

func (s *MemoryStore) SetLastRun(_ context.Context, name string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[name] = t.UTC()
	return nil
}
