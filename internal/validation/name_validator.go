package validation

// NameValidator validates the names of users, clients and projects.
type NameValidator struct {
	validator *Validator
}

// NewNameValidator creates a new name validator
func NewNameValidator(v *Validator) *NameValidator {
	if v == nil {
		v = NewValidator()
	}
	return &NameValidator{validator: v}
}

// ValidateName validates a name for creation or update
func (nv *NameValidator) ValidateName(field, name string) error {
	validationError := NewValidationError()

	trimmedName := nv.validator.TrimAndValidateString(name)

	if !nv.validator.IsNonEmptyString(trimmedName) {
		validationError.Required(field)
		return validationError
	}

	limits := nv.validator.Limits()
	if !nv.validator.IsValidNameLength(trimmedName) {
		validationError.Length(field, trimmedName, limits.NameMinLength, limits.NameMaxLength)
	}

	if !nv.validator.IsValidName(trimmedName) {
		validationError.BadCharacters(field, trimmedName)
	}

	return validationError.ErrOrNil()
}

// GetValidName returns a cleaned name if valid
func (nv *NameValidator) GetValidName(field, name string) (string, error) {
	if err := nv.ValidateName(field, name); err != nil {
		return "", err
	}
	return nv.validator.TrimAndValidateString(name), nil
}

// ValidateID validates a record ID
func (nv *NameValidator) ValidateID(field string, id int64) error {
	if !nv.validator.IsValidID(id) {
		validationError := NewValidationError()
		validationError.Invalid(field, id, "must be a positive integer")
		return validationError
	}
	return nil
}
