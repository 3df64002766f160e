package session

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// Durable keys written by [Store].
const (
	StateKey        = "movie-app-storage"
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

var (
	// ErrNotFound is returned by [Storage.Get] for a missing key.
	ErrNotFound = errors.New("session storage key not found")
	// ErrStorageUnavailable wraps backend failures.
	ErrStorageUnavailable = errors.New("session storage unavailable")
	// ErrInvalidKey is returned for keys a backend cannot address.
	ErrInvalidKey = errors.New("invalid session storage key")
)

// Storage is a durable key-value backend. Delete of a missing key is not an
// error.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage is a process-local [Storage]. The zero value is not usable;
// call [NewMemoryStorage].
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStorage returns an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *MemoryStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = slices.Clone(value)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	slices.Sort(keys)
	return keys
}
