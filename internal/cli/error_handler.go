package cli

import (
	"fmt"
	"sort"
	"strings"

	"tracker/internal/errors"
	"tracker/internal/validation"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	return fmt.Errorf("failed to %s: %s", operation, eh.message(err))
}

// HandleSimple provides user-friendly error messages without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	return fmt.Errorf("%s", eh.message(err))
}

// message lists every field message of a validation failure, sorted by
// field, one per line.
func (eh *ErrorHandler) message(err error) string {
	if err == nil {
		return "unknown error"
	}
	if ve, ok := validation.AsValidationError(err); ok && ve.HasErrors() {
		fields := ve.Fields()
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)

		var lines []string
		for _, name := range names {
			for _, msg := range fields[name] {
				lines = append(lines, fmt.Sprintf("  %s: %s", name, msg))
			}
		}
		if len(lines) == 1 {
			return strings.TrimSpace(lines[0])
		}
		return "\n" + strings.Join(lines, "\n")
	}

	if _, ok := errors.AsAppError(err); ok {
		return errors.GetUserMessage(err)
	}
	return err.Error()
}
