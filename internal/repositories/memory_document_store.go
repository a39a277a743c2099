package repositories

import (
	"context"
	"sync"
)

// MemoryDocumentStore keeps documents in process memory. It backs tests and
// STORE_DRIVER=memory; nothing survives a restart.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[string][]byte)}
}

func (s *MemoryDocumentStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.docs[key]
	if !ok {
		return nil, nil
	}
	return clone(v), nil
}

func (s *MemoryDocumentStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = clone(value)
	return nil
}

func (s *MemoryDocumentStore) Push(ctx context.Context, value []byte) (string, error) {
	key := NewKey()
	return key, s.Set(ctx, key, value)
}

func (s *MemoryDocumentStore) Ping(context.Context) error { return nil }

func (s *MemoryDocumentStore) Close() {}

// Len reports how many documents are stored.
func (s *MemoryDocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
