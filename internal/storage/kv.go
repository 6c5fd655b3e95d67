package storage

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrRead wraps failures of the underlying slot when reading.
	ErrRead = errors.New("storage read failed")
	// ErrWrite wraps failures of the underlying slot when writing.
	ErrWrite = errors.New("storage write failed")
)

// KV is a local key-value storage slot holding opaque blobs.
type KV interface {
	// Get returns the blob stored at key. ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set overwrites the blob stored at key.
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryKV keeps blobs in process memory.
type MemoryKV struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: map[string][]byte{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
