package base

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ===================================================================
// CUSTOM ERROR TYPES
// ===================================================================

// RepositoryError represents a store-level failure. Its cause is kept for
// logging only; user-facing messages never include driver internals.
type RepositoryError struct {
	Operation string
	Table     string
	Message   string
	Cause     error
}

func (e *RepositoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to %s %s: %s (caused by: %v)", e.Operation, e.Table, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Table, e.Message)
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// EntityNotFoundError represents an entity not found error.
type EntityNotFoundError struct {
	Table      string
	Identifier string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s with %s not found", e.Table, e.Identifier)
}

// ConflictError represents a state conflict, e.g. a station already occupied
// by another robot.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s (value: %s): %s", e.Field, e.Value, e.Message)
}

// TransactionError represents a transaction-related error.
type TransactionError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed during %s: %s (caused by: %v)", e.Operation, e.Message, e.Cause)
}

func (e *TransactionError) Unwrap() error {
	return e.Cause
}

// ===================================================================
// ERROR CONSTRUCTORS
// ===================================================================

func NewRepositoryError(operation, table, message string, cause error) *RepositoryError {
	return &RepositoryError{
		Operation: operation,
		Table:     table,
		Message:   message,
		Cause:     cause,
	}
}

func NewEntityNotFoundError(table, identifier string) *EntityNotFoundError {
	return &EntityNotFoundError{
		Table:      table,
		Identifier: identifier,
	}
}

func NewConflictError(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

func NewTransactionError(operation, message string, cause error) *TransactionError {
	return &TransactionError{
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// ===================================================================
// ERROR HANDLING HELPERS
// ===================================================================

// HandleDBError handles database errors with consistent error wrapping.
func HandleDBError(operation, table, identifier string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewEntityNotFoundError(table, identifier)
	}

	return NewRepositoryError(operation, table, "database operation failed", err)
}

// WrapDBError wraps a database error with operation context.
func WrapDBError(operation, table string, err error) error {
	if err == nil {
		return nil
	}

	return NewRepositoryError(operation, table, "database operation failed", err)
}

func IsEntityNotFound(err error) bool {
	var entityNotFoundError *EntityNotFoundError
	return errors.As(err, &entityNotFoundError)
}

func IsConflict(err error) bool {
	var conflictError *ConflictError
	return errors.As(err, &conflictError)
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

func IsRepositoryError(err error) bool {
	var repositoryError *RepositoryError
	return errors.As(err, &repositoryError)
}

// GetErrorMessage extracts a user-facing error message. Store failures are
// reported generically; their cause stays in the logs.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	switch e := err.(type) {
	case *EntityNotFoundError:
		return e.Error()
	case *ConflictError:
		return e.Error()
	case *ValidationError:
		return e.Error()
	case *RepositoryError:
		return fmt.Sprintf("Database operation failed: %s", e.Message)
	case *TransactionError:
		return fmt.Sprintf("Transaction failed: %s", e.Message)
	default:
		return "An unexpected error occurred"
	}
}
