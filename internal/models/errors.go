package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph definition management.
var (
	ErrGraphNotFound      = errors.New("graph not found")
	ErrDuplicateGraphName = errors.New("graph already exists")
	ErrInvalidDefinition  = errors.New("invalid graph definition")
)

// Sentinel errors for document lookups.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrVertexNotFound   = errors.New("vertex not found")
)

// ErrInvalidDocument is wrapped by every bulk import validation failure.
var ErrInvalidDocument = errors.New("invalid document")

// ErrInvalidDirection is matched by every InvalidDirectionError.
var ErrInvalidDirection = errors.New("invalid direction")

// ErrStorageUnavailable is matched by every StorageError returned from a
// document accessor or definition store backend.
var ErrStorageUnavailable = errors.New("storage unavailable")

// InvalidDirectionError reports a direction argument that is not one of
// any, inbound or outbound.
type InvalidDirectionError struct {
	Function string
	Value    string
}

// Error implements the error interface.
func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("invalid argument type used in call to function '%s()': direction %q", e.Function, e.Value)
}

// Is reports whether target is ErrInvalidDirection.
func (e *InvalidDirectionError) Is(target error) bool {
	return target == ErrInvalidDirection
}

// StorageError wraps a backend failure. The original error stays reachable
// through Unwrap so drivers' own error types can still be inspected.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the backend error.
func (e *StorageError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStorageUnavailable.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// Unavailable wraps err as a StorageError for operation op. A nil err stays nil.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}

	return &StorageError{Op: op, Err: err}
}

// invalidDefinition returns an ErrInvalidDefinition carrying a reason.
func invalidDefinition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, fmt.Sprintf(format, args...))
}

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}
