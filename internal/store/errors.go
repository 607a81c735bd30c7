package store

import (
	"errors"
	"fmt"
)

// Common storage errors
var (
	// ErrKeyNotFound is returned by a Backend when nothing is stored under a key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrCapacityExceeded is returned when a write would take the backend past
	// its configured capacity. Nothing is written.
	ErrCapacityExceeded = errors.New("storage capacity exceeded")

	// ErrSerialization is returned when the collection cannot be encoded.
	ErrSerialization = errors.New("failed to serialize invoice collection")

	// ErrCorruptCollection is returned when the stored collection cannot be decoded.
	ErrCorruptCollection = errors.New("stored invoice collection is corrupt")

	// ErrDuplicateID is returned when a collection being written contains the
	// same invoice id twice.
	ErrDuplicateID = errors.New("duplicate invoice id")

	// ErrUnknownBackend is returned when the configured backend kind is not supported.
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrBackendUnavailable is returned when a backend cannot be reached.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)

// StorageError wraps errors with the storage operation that failed.
type StorageError struct {
	// Op is the operation that failed (e.g., "Save", "Write", "Load").
	Op string

	// Key is the backend key involved (if any).
	Key string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	msg := fmt.Sprintf("store: %s failed", e.Op)
	if e.Key != "" {
		msg += fmt.Sprintf(" (key: %s)", e.Key)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *StorageError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newStorageError(op, key string, err error, details string) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err, Details: details}
}

// wrapStorageError wraps err unless it already is a StorageError.
func wrapStorageError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return newStorageError(op, key, err, "")
}
