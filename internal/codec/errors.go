package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload is returned when an import payload is not valid JSON
	// or does not have the shape of a backup or an invoice.
	ErrMalformedPayload = errors.New("malformed import payload")

	// ErrNotADocument is returned when a single invoice was expected but the
	// payload is a backup.
	ErrNotADocument = errors.New("payload is not a single invoice")

	// ErrExportFailed is returned when the backup payload cannot be written.
	ErrExportFailed = errors.New("export failed")
)

// ImportError carries a human-readable cause for a failed import. The store
// is untouched whenever an ImportError wraps ErrMalformedPayload.
type ImportError struct {
	Cause string
	Err   error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	return fmt.Sprintf("codec: import failed: %s: %v", e.Cause, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ImportError) Unwrap() error {
	return e.Err
}

func malformed(cause string, err error) *ImportError {
	if err != nil {
		cause = fmt.Sprintf("%s (%v)", cause, err)
	}
	return &ImportError{Cause: cause, Err: ErrMalformedPayload}
}
