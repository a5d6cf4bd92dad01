package errors

import "fmt"

// ErrorType classifies an AppError. The classification decides the user
// message, the HTTP status and whether the error is logged.
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeDatabase
	ErrorTypeInvalidInput
	ErrorTypeTimeout
	ErrorTypePermission
	ErrorTypeConflict
)

// kind is the fixed behaviour of an ErrorType.
type kind struct {
	name string
	code string
	// public errors show their own message; the rest show generic.
	public  bool
	generic string
}

var kinds = map[ErrorType]kind{
	ErrorTypeValidation:   {name: "validation", code: "VALIDATION_FAILED", public: true},
	ErrorTypeNotFound:     {name: "not_found", code: "NOT_FOUND", public: true},
	ErrorTypeInvalidInput: {name: "invalid_input", code: "INVALID_INPUT", public: true},
	ErrorTypePermission:   {name: "permission", code: "PERMISSION_DENIED", public: true},
	ErrorTypeConflict:     {name: "conflict", code: "CONFLICT", public: true},
	ErrorTypeDatabase:     {name: "database", code: "DATABASE_ERROR", generic: "A database error occurred. Please try again."},
	ErrorTypeTimeout:      {name: "timeout", code: "TIMEOUT", generic: "The operation timed out. Please try again."},
}

var unknownKind = kind{name: "unknown", code: "UNKNOWN_ERROR", generic: "An unexpected error occurred. Please try again."}

func (et ErrorType) kind() kind {
	if k, ok := kinds[et]; ok {
		return k
	}
	return unknownKind
}

func (et ErrorType) String() string {
	return et.kind().name
}

// AppError is the structured error returned across package boundaries.
// Details carries machine-readable facts about the failure, such as the
// offending field or record id.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Details map[string]any
}

func newError(t ErrorType, message string, cause error, details ...any) *AppError {
	e := &AppError{Type: t, Message: message, Code: t.kind().code, Cause: cause}
	for i := 0; i+1 < len(details); i += 2 {
		e.setDetail(fmt.Sprint(details[i]), details[i+1])
	}
	return e
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError with the same type and code.
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	return ok && e.Type == other.Type && e.Code == other.Code
}

// IsType reports whether e is of type t.
func (e *AppError) IsType(t ErrorType) bool {
	return e.Type == t
}

// Detail returns one entry of Details.
func (e *AppError) Detail(key string) (any, bool) {
	v, ok := e.Details[key]
	return v, ok
}

func (e *AppError) setDetail(key string, value any) {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
}
