package notify

import (
	"context"
	"sync"
)

// SentStore claims a reminder key. MarkSent returns true only for the first
// caller; the Redis implementation shares this across worker replicas.
type SentStore interface {
	MarkSent(ctx context.Context, key string) (bool, error)
}

type MemorySentStore struct {
	mu   sync.Mutex
	sent map[string]struct{}
}

func NewMemorySentStore() *MemorySentStore {
	return &MemorySentStore{sent: make(map[string]struct{})}
}

func (s *MemorySentStore) MarkSent(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sent[key]; ok {
		return false, nil
	}
	s.sent[key] = struct{}{}
	return true, nil
}
