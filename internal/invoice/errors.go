package invoice

import (
	"errors"
	"fmt"
)

// Common editing errors
var (
	// ErrUnknownField is returned when an edit names a field the document or
	// line item does not have.
	ErrUnknownField = errors.New("unknown field")

	// ErrItemNotFound is returned when an edit targets a line item id that is
	// not part of the document.
	ErrItemNotFound = errors.New("line item not found")

	// ErrDerivedField is returned when an edit targets a computed value such
	// as a line item amount or a document total.
	ErrDerivedField = errors.New("field is derived and cannot be edited")

	// ErrNothingToUndo is returned by Session.Undo when no edit has been applied.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrInvalidDocument is returned when a document fails validation.
	ErrInvalidDocument = errors.New("invalid invoice document")
)

// EditError wraps errors with the edit that caused them.
type EditError struct {
	// Op is the edit that failed (e.g., "SetField", "UpdateItem").
	Op string

	// Field is the field name the edit targeted.
	Field string

	// ItemID is the line item the edit targeted (if any).
	ItemID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *EditError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("invoice: %s failed (item: %s, field: %s): %v", e.Op, e.ItemID, e.Field, e.Err)
	}
	return fmt.Sprintf("invoice: %s failed (field: %s): %v", e.Op, e.Field, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *EditError) Unwrap() error {
	return e.Err
}

func newEditError(op, field, itemID string, err error) *EditError {
	return &EditError{Op: op, Field: field, ItemID: itemID, Err: err}
}

// ValidationError represents errors in invoice data validation.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ValidationErrors collects every failed check of a document.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	switch len(v) {
	case 0:
		return "no validation errors"
	case 1:
		return v[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", v[0].Error(), len(v)-1)
}

// Is lets callers match any ValidationErrors against ErrInvalidDocument.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidDocument
}
