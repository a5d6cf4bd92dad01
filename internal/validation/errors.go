package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Rule names the kind of check a field failed.
type Rule string

const (
	RuleRequired   Rule = "required"
	RuleLength     Rule = "length"
	RuleValue      Rule = "value"
	RuleRange      Rule = "range"
	RuleCharacters Rule = "characters"
	RuleChoice     Rule = "choice"
)

// MsgInvalidChoice is shown for a reference to a record the user may not
// pick, such as another user's project.
const MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."

// FieldError is one failed check.
type FieldError struct {
	Field   string
	Rule    Rule
	Message string
	Value   any
}

func (fe *FieldError) Error() string {
	return fe.Field + ": " + fe.Message
}

// ValidationError collects every failed check of one input. Checks never
// stop at the first failure, so callers see all problems at once.
type ValidationError struct {
	Errors []FieldError
}

func NewValidationError() *ValidationError {
	return &ValidationError{}
}

func (ve *ValidationError) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + ve.Errors[0].Error()
	}
	parts := make([]string, len(ve.Errors))
	for i := range ve.Errors {
		parts[i] = ve.Errors[i].Error()
	}
	return fmt.Sprintf("validation failed (%d errors): %s", len(parts), strings.Join(parts, "; "))
}

// AsValidationError extracts a ValidationError from err's chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func IsValidationError(err error) bool {
	_, ok := AsValidationError(err)
	return ok
}

func (ve *ValidationError) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ErrOrNil returns ve when it holds errors and nil otherwise. Returning ve
// unconditionally would produce a non-nil error interface.
func (ve *ValidationError) ErrOrNil() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Merge appends the field errors of other; other errors are ignored.
func (ve *ValidationError) Merge(other error) {
	if o, ok := AsValidationError(other); ok {
		ve.Errors = append(ve.Errors, o.Errors...)
	}
}

func (ve *ValidationError) Add(field string, rule Rule, message string, value any) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Rule: rule, Message: message, Value: value})
}

func (ve *ValidationError) Required(field string) {
	ve.Add(field, RuleRequired, field+" is required", nil)
}

// Length records a length outside [min, max]. A zero bound is open.
func (ve *ValidationError) Length(field string, value any, min, max int) {
	var message string
	switch {
	case min > 0 && max > 0:
		message = fmt.Sprintf("%s must be between %d and %d characters long", field, min, max)
	case min > 0:
		message = fmt.Sprintf("%s must be at least %d characters long", field, min)
	case max > 0:
		message = fmt.Sprintf("%s must be at most %d characters long", field, max)
	default:
		message = field + " has invalid length"
	}
	ve.Add(field, RuleLength, message, value)
}

func (ve *ValidationError) Invalid(field string, value any, reason string) {
	ve.Add(field, RuleValue, fmt.Sprintf("%s is invalid: %s", field, reason), value)
}

func (ve *ValidationError) OutOfRange(field string, value any, reason string) {
	ve.Add(field, RuleRange, fmt.Sprintf("%s is out of range: %s", field, reason), value)
}

func (ve *ValidationError) BadCharacters(field string, value any) {
	ve.Add(field, RuleCharacters, field+" contains invalid characters", value)
}

func (ve *ValidationError) BadChoice(field string, value any) {
	ve.Add(field, RuleChoice, MsgInvalidChoice, value)
}

// For returns the errors recorded against field.
func (ve *ValidationError) For(field string) []FieldError {
	var out []FieldError
	for _, fe := range ve.Errors {
		if fe.Field == field {
			out = append(out, fe)
		}
	}
	return out
}

// Fields groups the messages by field, in the order they were added.
func (ve *ValidationError) Fields() map[string][]string {
	fields := make(map[string][]string, len(ve.Errors))
	for _, fe := range ve.Errors {
		fields[fe.Field] = append(fields[fe.Field], fe.Message)
	}
	return fields
}
