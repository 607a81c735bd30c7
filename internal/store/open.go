package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindRedis  = "redis"
	KindMemory = "memory"
)

// DefaultCapacity matches the per-origin quota browsers give localStorage.
const DefaultCapacity int64 = 5 * 1024 * 1024

// BackendConfig selects and configures a Backend.
type BackendConfig struct {
	Kind string // file, sqlite, redis, memory

	// Path is the directory for file storage or the database file for sqlite.
	Path string

	// CapacityBytes caps the total stored size; 0 disables the cap.
	CapacityBytes int64

	Redis RedisOptions
}

// Open builds the configured backend wrapped in the capacity limit.
func Open(ctx context.Context, cfg BackendConfig) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch strings.ToLower(cfg.Kind) {
	case KindFile, "":
		b, err = NewFileBackend(cfg.Path)
	case KindSQLite:
		path := cfg.Path
		if path != ":memory:" && filepath.Ext(path) == "" {
			path = filepath.Join(path, "invoices.db")
		}
		if path != ":memory:" {
			if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
				return nil, newStorageError("Open", "", ErrBackendUnavailable, mkErr.Error())
			}
		}
		b, err = NewSQLiteBackend(path)
	case KindRedis:
		b, err = NewRedisBackend(ctx, cfg.Redis)
	case KindMemory:
		b = NewMemoryBackend()
	default:
		return nil, newStorageError("Open", "", ErrUnknownBackend, fmt.Sprintf("kind %q", cfg.Kind))
	}
	if err != nil {
		return nil, err
	}
	return WithCapacity(b, cfg.CapacityBytes, KeyInvoices, KeyBusinessInfo), nil
}
