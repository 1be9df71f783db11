package storage

import (
	"context"
	"errors"
	"io"
	"sync"
)

// MemoryStore keeps blobs in a map (BLOB_BACKEND=memory, and tests).
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	// FailPut makes every Put fail, for exercising rollback paths.
	FailPut bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if m.FailPut {
		return "", errors.New("memory store: put disabled")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = b
	return "mem://" + key, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
