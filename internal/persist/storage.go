// Package persist saves the session state to a key-value backend and restores
// it defensively on startup.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DefaultKey is the storage key of the session envelope.
const DefaultKey = "cv-data"

var (
	// ErrNotFound is returned by Get when the key holds no value.
	ErrNotFound = errors.New("persist: key not found")
	// ErrQuotaExceeded is returned by Set when the backend refuses the write
	// for lack of space.
	ErrQuotaExceeded = errors.New("persist: storage quota exceeded")
)

// Storage is a key-value store of opaque byte values.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// StorageError wraps a backend failure with the operation that caused it.
type StorageError struct {
	Backend string
	Op      string
	Key     string
	Cause   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s storage: %s %q: %v", e.Backend, e.Op, e.Key, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// MemoryStorage keeps values in process memory. A positive quota caps the
// total size of all stored values.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
	quota  int
}

// NewMemoryStorage creates an empty in-memory store. quota <= 0 means no limit.
func NewMemoryStorage(quota int) *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte), quota: quota}
}

// Get implements Storage.
func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set implements Storage.
func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quota > 0 {
		used := len(value)
		for k, v := range m.values {
			if k != key {
				used += len(v)
			}
		}
		if used > m.quota {
			return ErrQuotaExceeded
		}
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Remove implements Storage.
func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Close implements Storage.
func (m *MemoryStorage) Close() error {
	return nil
}
