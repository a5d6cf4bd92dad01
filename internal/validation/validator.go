package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"tracker/internal/domain"
)

// Limits are the configurable bounds applied to user-supplied text.
type Limits struct {
	NameMinLength        int
	NameMaxLength        int
	DescriptionMaxLength int
}

// DefaultLimits returns the limits used when no configuration is given.
func DefaultLimits() Limits {
	return Limits{
		NameMinLength:        1,
		NameMaxLength:        255,
		DescriptionMaxLength: 1000,
	}
}

// Validator provides common validation utilities
type Validator struct {
	limits Limits
}

// NewValidator creates a new validator instance with default limits
func NewValidator() *Validator {
	return &Validator{limits: DefaultLimits()}
}

// NewValidatorWithLimits creates a new validator instance with the given limits.
// Non-positive values fall back to the defaults.
func NewValidatorWithLimits(limits Limits) *Validator {
	def := DefaultLimits()
	if limits.NameMinLength <= 0 {
		limits.NameMinLength = def.NameMinLength
	}
	if limits.NameMaxLength <= 0 {
		limits.NameMaxLength = def.NameMaxLength
	}
	if limits.DescriptionMaxLength <= 0 {
		limits.DescriptionMaxLength = def.DescriptionMaxLength
	}
	return &Validator{limits: limits}
}

// Limits returns the active limits.
func (v *Validator) Limits() Limits {
	return v.limits
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a string length in characters is within the specified range
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && length <= max
}

// IsValidNameLength checks a name against the configured limits
func (v *Validator) IsValidNameLength(name string) bool {
	return v.IsValidStringLength(name, v.limits.NameMinLength, v.limits.NameMaxLength)
}

// IsValidName rejects control characters such as newlines and tabs.
// Letters of any script are allowed.
func (v *Validator) IsValidName(name string) bool {
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// IsValidDescriptionLength checks a description against the configured maximum
func (v *Validator) IsValidDescriptionLength(description string) bool {
	return utf8.RuneCountInString(description) <= v.limits.DescriptionMaxLength
}

// IsValidTimeRange checks that stop, when set, is not before start
func (v *Validator) IsValidTimeRange(start domain.TimeOfDay, stop *domain.TimeOfDay) bool {
	if stop == nil {
		return true
	}
	return *stop >= start
}

// IsValidID checks if a record ID is valid (positive)
func (v *Validator) IsValidID(id int64) bool {
	return id > 0
}

// IsValidDateRange checks that from is not after to. Open ends are valid.
func (v *Validator) IsValidDateRange(from, to *domain.Date) bool {
	if from == nil || to == nil {
		return true
	}
	return !from.After(*to)
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}
