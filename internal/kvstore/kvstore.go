// Package kvstore is the persistent key-value mapping behind per-file
// player preferences. Keys are file names, values are opaque records.
package kvstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type Store interface {
	// Get reports ok=false for a missing key.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys returns all keys in ascending order.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// storage backend
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// creates store for backend rooted at path
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendFile:
		return OpenFile(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}

// Memory keeps everything in process and forgets it on exit.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error {
	return nil
}
