package validation

import (
	"fmt"

	"tracker/internal/clock"
	"tracker/internal/domain"
)

// Messages reported for time entries. Clients match on them, so they are
// part of the interface.
const (
	MsgStopRequiredForPastDay = "If date is not today then the end time should be filled in."
	MsgStopBeforeStart        = "The stop time cannot be less than the start time."
	MsgStartInFuture          = "The start time cannot be greater than the current one."
	MsgStopInFuture           = "The stop time cannot be greater than the current one."
)

// TimeEntryValidator checks submitted time entries against the clock.
// Every check runs; all failures are reported together.
type TimeEntryValidator struct {
	validator *Validator
	clock     clock.Clock
}

// NewTimeEntryValidator creates a new time entry validator
func NewTimeEntryValidator(v *Validator, c clock.Clock) *TimeEntryValidator {
	if v == nil {
		v = NewValidator()
	}
	if c == nil {
		c = clock.NewSystem(nil)
	}
	return &TimeEntryValidator{validator: v, clock: c}
}

// ValidateTimeEntry validates a submitted entry. project is the record the
// entry's ProjectID resolved to for the entry's user, or nil when it did
// not resolve.
func (tev *TimeEntryValidator) ValidateTimeEntry(entry domain.TimeEntry, project *domain.Project) error {
	return tev.check(entry, true, project)
}

// ValidateSubmission is ValidateTimeEntry for input whose start may have
// been omitted. A missing start is reported as required and the checks
// that compare against the start are skipped.
func (tev *TimeEntryValidator) ValidateSubmission(entry domain.TimeEntry, hasStart bool, project *domain.Project) error {
	return tev.check(entry, hasStart, project)
}

func (tev *TimeEntryValidator) check(entry domain.TimeEntry, hasStart bool, project *domain.Project) error {
	validationError := NewValidationError()

	now := tev.clock.Now()
	today := domain.DateOf(now)
	nowTime := domain.TimeOfDayOf(now)

	if entry.Day.IsZero() {
		validationError.Required("day")
	} else if entry.Day.After(today) {
		validationError.Add("day", RuleRange,
			fmt.Sprintf("Ensure this value is less than or equal to %s.", today), entry.Day)
	}

	isToday := !entry.Day.IsZero() && entry.Day == today

	if !entry.Day.IsZero() && !isToday && entry.Stop == nil {
		validationError.Add("stop", RuleRequired, MsgStopRequiredForPastDay, nil)
	}

	if !hasStart {
		validationError.Required("start")
	} else {
		if !tev.validator.IsValidTimeRange(entry.Start, entry.Stop) {
			validationError.Add("stop", RuleRange, MsgStopBeforeStart, *entry.Stop)
		}
		if isToday && entry.Start > nowTime {
			validationError.Add("start", RuleRange, MsgStartInFuture, entry.Start)
		}
	}

	if isToday && entry.Stop != nil && *entry.Stop > nowTime {
		validationError.Add("stop", RuleRange, MsgStopInFuture, *entry.Stop)
	}

	if entry.ProjectID != nil && !projectSelectable(entry, project) {
		validationError.BadChoice("project", *entry.ProjectID)
	}

	if !tev.validator.IsValidDescriptionLength(entry.Description) {
		validationError.Length("description", len(entry.Description), 0, tev.validator.Limits().DescriptionMaxLength)
	}

	return validationError.ErrOrNil()
}

// ValidateTimeEntryID validates a time entry ID
func (tev *TimeEntryValidator) ValidateTimeEntryID(id int64) error {
	if !tev.validator.IsValidID(id) {
		validationError := NewValidationError()
		validationError.Invalid("id", id, "must be a positive integer")
		return validationError
	}
	return nil
}

// ValidateReportRange checks a report's day range and filters.
func (tev *TimeEntryValidator) ValidateReportRange(from, to *domain.Date) error {
	validationError := NewValidationError()
	if !tev.validator.IsValidDateRange(from, to) {
		validationError.OutOfRange("to", to, "must not be before the start of the range")
	}
	return validationError.ErrOrNil()
}

func projectSelectable(entry domain.TimeEntry, project *domain.Project) bool {
	return project != nil &&
		project.ID == *entry.ProjectID &&
		project.UserID == entry.UserID &&
		project.AcceptsTimeEntries()
}
