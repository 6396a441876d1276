package quota

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It backs tests and makes the quota
// path runnable without a live metadata store.
type MemoryStore struct {
	mu   sync.Mutex
	used map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{used: make(map[string]int64)}
}

func (s *MemoryStore) UsedBytes(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used[userID], nil
}

func (s *MemoryStore) ReserveBytes(_ context.Context, userID string, n, limit int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.used[userID]+n > limit {
		return false, nil
	}
	s.used[userID] += n
	return true, nil
}

func (s *MemoryStore) ReleaseBytes(_ context.Context, userID string, n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used[userID] -= n
	if s.used[userID] < 0 {
		s.used[userID] = 0
	}
	return nil
}
