package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Backend is durable key/value storage. Write must replace the value
// atomically: after a failed Write the previous value is still readable.
type Backend interface {
	// Read returns the value stored under key, or ErrKeyNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write replaces the value stored under key.
	Write(ctx context.Context, key string, value []byte) error

	// Close releases the backend's resources.
	Close() error
}

// MemoryBackend keeps values in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBackend) Write(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}

// capacityBackend enforces a byte quota over every key it has seen plus the
// keys it was told to account for. A key/value pair costs len(key)+len(value).
type capacityBackend struct {
	Backend
	max int64

	mu     sync.Mutex
	sizes  map[string]int64
	loaded map[string]bool
}

// WithCapacity limits the total size stored through b to maxBytes. Keys
// listed in accounted are counted even if they were written by an earlier
// process. A non-positive maxBytes disables the limit.
func WithCapacity(b Backend, maxBytes int64, accounted ...string) Backend {
	if maxBytes <= 0 {
		return b
	}
	c := &capacityBackend{
		Backend: b,
		max:     maxBytes,
		sizes:   make(map[string]int64),
		loaded:  make(map[string]bool),
	}
	for _, key := range accounted {
		c.sizes[key] = 0
	}
	return c
}

func (c *capacityBackend) Read(ctx context.Context, key string) ([]byte, error) {
	v, err := c.Backend.Read(ctx, key)
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case err == nil:
		c.sizes[key] = cost(key, v)
		c.loaded[key] = true
	case errors.Is(err, ErrKeyNotFound):
		c.sizes[key] = 0
		c.loaded[key] = true
	}
	return v, err
}

func (c *capacityBackend) Write(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadSizes(ctx, key); err != nil {
		return err
	}

	var used int64
	for k, size := range c.sizes {
		if k != key {
			used += size
		}
	}
	need := cost(key, value)
	if used+need > c.max {
		return newStorageError("Write", key, ErrCapacityExceeded,
			fmt.Sprintf("%d bytes needed, %d of %d available", need, c.max-used, c.max))
	}

	if err := c.Backend.Write(ctx, key, value); err != nil {
		return err
	}
	c.sizes[key] = need
	c.loaded[key] = true
	return nil
}

// loadSizes reads every accounted key other than skip whose size is unknown.
func (c *capacityBackend) loadSizes(ctx context.Context, skip string) error {
	for key := range c.sizes {
		if key == skip || c.loaded[key] {
			continue
		}
		v, err := c.Backend.Read(ctx, key)
		switch {
		case err == nil:
			c.sizes[key] = cost(key, v)
		case errors.Is(err, ErrKeyNotFound):
			c.sizes[key] = 0
		default:
			return wrapStorageError("Write", key, err)
		}
		c.loaded[key] = true
	}
	return nil
}

func cost(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}
