package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
)

var safeKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileBackend stores each key as a JSON file inside a directory. Writes go
// to a temporary file that is renamed over the old one, so a crash mid-write
// leaves the previous value intact.
type FileBackend struct {
	dir string
}

// NewFileBackend creates dir if needed and returns a backend rooted there.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, newStorageError("Open", "", ErrBackendUnavailable, err.Error())
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) path(key string) (string, error) {
	if !safeKey.MatchString(key) {
		return "", newStorageError("Path", key, errors.New("invalid key"), "")
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileBackend) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, newStorageError("Read", key, err, "")
	}
	return data, nil
}

func (f *FileBackend) Write(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return newStorageError("Write", key, err, "create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return newStorageError("Write", key, err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return newStorageError("Write", key, err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return newStorageError("Write", key, err, "close temp file")
	}
	if err := os.Rename(tmpName, p); err != nil {
		return newStorageError("Write", key, err, "replace file")
	}
	return nil
}

func (f *FileBackend) Close() error {
	return nil
}
