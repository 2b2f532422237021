package entity

import "fmt"

// ValidationError reports a malformed user field.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError { return &ValidationError{Message: msg} }

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a business-rule clash such as a duplicate email.
type ConflictError struct {
	Message string
}

func NewConflictError(msg string) *ConflictError { return &ConflictError{Message: msg} }

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError reports a missing lookup or update target.
type NotFoundError struct {
	Message string
}

func NewNotFoundError(msg string) *NotFoundError { return &NotFoundError{Message: msg} }

func (e *NotFoundError) Error() string { return e.Message }

// StorageError wraps a failure of the persistence backend.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError { return &StorageError{Op: op, Err: err} }

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

const (
	MsgEmailTaken   = "User with this email already exists"
	MsgUserNotFound = "User not found"
)
