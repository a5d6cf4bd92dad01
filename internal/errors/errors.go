// Package errors is the error taxonomy shared by every layer. Storage and
// services return *AppError; the CLI and HTTP API turn it into messages and
// status codes.
package errors

import (
	"context"
	"errors"
	"fmt"
)

func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, message, cause)
}

// NewNotFoundError reports a record that does not exist or is owned by
// another user. The two cases are indistinguishable on purpose.
func NewNotFoundError(resource, identifier string) *AppError {
	return newError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", resource, identifier), nil,
		"resource", resource, "identifier", identifier)
}

func NewDatabaseError(operation string, cause error) *AppError {
	return newError(ErrorTypeDatabase, "database operation failed: "+operation, cause,
		"operation", operation)
}

// NewConflictError reports a write rejected by a uniqueness rule, such as a
// second active timer for the same user.
func NewConflictError(resource, reason string, cause error) *AppError {
	return newError(ErrorTypeConflict, fmt.Sprintf("%s conflict: %s", resource, reason), cause,
		"resource", resource, "reason", reason)
}

// NewInvalidInputError reports an argument that could not be parsed, before
// any business rule ran.
func NewInvalidInputError(field string, value any, reason string) *AppError {
	return newError(ErrorTypeInvalidInput, fmt.Sprintf("invalid input for %s: %s", field, reason), nil,
		"field", field, "value", value)
}

func NewTimeoutError(operation string, timeout any) *AppError {
	return newError(ErrorTypeTimeout, "operation timed out: "+operation, nil,
		"operation", operation, "timeout", timeout)
}

// NewPermissionError reports an unresolved or foreign identity.
func NewPermissionError(operation, resource string) *AppError {
	return newError(ErrorTypePermission, fmt.Sprintf("permission denied for %s on %s", operation, resource), nil,
		"operation", operation, "resource", resource)
}

// FromContext converts a context deadline into a timeout error.
// Other errors are returned unchanged.
func FromContext(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(operation, err.Error())
	}
	return err
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsErrorType(err error, t ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.IsType(t)
}

// GetUserMessage returns what an end user should see. Internal failures are
// replaced by a generic sentence.
func GetUserMessage(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return err.Error()
	}
	if k := appErr.Type.kind(); !k.public {
		return k.generic
	}
	return appErr.Message
}

func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return unknownKind.code
}

// ShouldLogError reports whether err is a system error worth logging.
// Mistakes made by the caller are not logged; conflicts are, since the
// per-user lock should have prevented them.
func ShouldLogError(err error) bool {
	appErr, ok := AsAppError(err)
	if !ok {
		return true
	}
	return !appErr.Type.kind().public || appErr.Type == ErrorTypeConflict
}
