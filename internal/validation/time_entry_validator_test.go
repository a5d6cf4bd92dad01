package validation

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"tracker/internal/clock"
	"tracker/internal/domain"
)

func tod(h, m int) domain.TimeOfDay { return domain.NewTimeOfDay(h, m, 0) }

func todPtr(h, m int) *domain.TimeOfDay {
	t := tod(h, m)
	return &t
}

func newTestValidator() *TimeEntryValidator {
	// 2024-03-15 12:00
	c := clock.NewFake(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	return NewTimeEntryValidator(nil, c)
}

var (
	today     = domain.NewDate(2024, 3, 15)
	yesterday = domain.NewDate(2024, 3, 14)
	tomorrow  = domain.NewDate(2024, 3, 16)
)

func TestTimeEntryValidator_ValidateTimeEntry(t *testing.T) {
	validator := newTestValidator()

	tests := []struct {
		name     string
		entry    domain.TimeEntry
		expected map[string][]string
	}{
		{
			name:  "today without stop",
			entry: domain.TimeEntry{UserID: "u", Day: today, Start: tod(9, 0)},
		},
		{
			name:  "today closed in the past",
			entry: domain.TimeEntry{UserID: "u", Day: today, Start: tod(9, 0), Stop: todPtr(11, 30)},
		},
		{
			name:  "start equal to now",
			entry: domain.TimeEntry{UserID: "u", Day: today, Start: tod(12, 0)},
		},
		{
			name:  "past day closed",
			entry: domain.TimeEntry{UserID: "u", Day: yesterday, Start: tod(9, 0), Stop: todPtr(17, 0)},
		},
		{
			name:  "past day times later than now are fine",
			entry: domain.TimeEntry{UserID: "u", Day: yesterday, Start: tod(20, 0), Stop: todPtr(22, 0)},
		},
		{
			name:     "past day without stop",
			entry:    domain.TimeEntry{UserID: "u", Day: yesterday, Start: tod(9, 0)},
			expected: map[string][]string{"stop": {MsgStopRequiredForPastDay}},
		},
		{
			name:     "stop before start",
			entry:    domain.TimeEntry{UserID: "u", Day: today, Start: tod(10, 0), Stop: todPtr(9, 0)},
			expected: map[string][]string{"stop": {MsgStopBeforeStart}},
		},
		{
			name:     "start in the future",
			entry:    domain.TimeEntry{UserID: "u", Day: today, Start: tod(13, 0)},
			expected: map[string][]string{"start": {MsgStartInFuture}},
		},
		{
			name:     "stop in the future",
			entry:    domain.TimeEntry{UserID: "u", Day: today, Start: tod(11, 0), Stop: todPtr(12, 30)},
			expected: map[string][]string{"stop": {MsgStopInFuture}},
		},
		{
			name:  "all failures are collected",
			entry: domain.TimeEntry{UserID: "u", Day: today, Start: tod(14, 0), Stop: todPtr(13, 0)},
			expected: map[string][]string{
				"stop":  {MsgStopBeforeStart, MsgStopInFuture},
				"start": {MsgStartInFuture},
			},
		},
		{
			name:  "day in the future",
			entry: domain.TimeEntry{UserID: "u", Day: tomorrow, Start: tod(9, 0), Stop: todPtr(10, 0)},
			expected: map[string][]string{
				"day": {"Ensure this value is less than or equal to 2024-03-15."},
			},
		},
		{
			name:     "missing day",
			entry:    domain.TimeEntry{UserID: "u", Start: tod(9, 0)},
			expected: map[string][]string{"day": {"day is required"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateTimeEntry(tt.entry, nil)

			if tt.expected == nil {
				if err != nil {
					t.Fatalf("ValidateTimeEntry() unexpected error: %v", err)
				}
				return
			}

			ve, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("ValidateTimeEntry() = %v, expected ValidationError", err)
			}
			if got := ve.Fields(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ValidateTimeEntry() fields = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestTimeEntryValidator_ValidateSubmission(t *testing.T) {
	validator := newTestValidator()

	t.Run("missing start is required", func(t *testing.T) {
		err := validator.ValidateSubmission(domain.TimeEntry{UserID: "u", Day: today}, false, nil)

		ve, ok := AsValidationError(err)
		if !ok {
			t.Fatalf("ValidateSubmission() = %v, expected ValidationError", err)
		}
		expected := map[string][]string{"start": {"start is required"}}
		if got := ve.Fields(); !reflect.DeepEqual(got, expected) {
			t.Errorf("ValidateSubmission() fields = %v, expected %v", got, expected)
		}
	})

	t.Run("missing start skips the ordering check", func(t *testing.T) {
		entry := domain.TimeEntry{UserID: "u", Day: yesterday, Stop: todPtr(10, 0)}
		err := validator.ValidateSubmission(entry, false, nil)

		ve, ok := AsValidationError(err)
		if !ok {
			t.Fatalf("ValidateSubmission() = %v, expected ValidationError", err)
		}
		if got := ve.For("stop"); len(got) != 0 {
			t.Errorf("ValidateSubmission() stop errors = %v, expected none", got)
		}
	})

	t.Run("midnight start is accepted when given", func(t *testing.T) {
		entry := domain.TimeEntry{UserID: "u", Day: today, Start: tod(0, 0), Stop: todPtr(1, 0)}
		if err := validator.ValidateSubmission(entry, true, nil); err != nil {
			t.Fatalf("ValidateSubmission() unexpected error: %v", err)
		}
	})
}

func TestTimeEntryValidator_Project(t *testing.T) {
	validator := newTestValidator()
	projectID := int64(7)
	entry := domain.TimeEntry{UserID: "u", Day: today, Start: tod(9, 0), ProjectID: &projectID}

	active := domain.NewProject("u", "Site")
	active.ID = projectID

	monthly := active
	monthly.PaymentType = domain.PaymentMonth

	done := active
	done.Status = domain.ProjectDone

	foreign := active
	foreign.UserID = "someone-else"

	tests := []struct {
		name    string
		project *domain.Project
		valid   bool
	}{
		{"active hourly project of the user", &active, true},
		{"unresolved project", nil, false},
		{"monthly project", &monthly, false},
		{"finished project", &done, false},
		{"project of another user", &foreign, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateTimeEntry(entry, tt.project)
			if tt.valid {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			ve, ok := AsValidationError(err)
			if !ok || len(ve.For("project")) != 1 {
				t.Fatalf("expected a project error, got %v", err)
			}
			if ve.Errors[0].Rule != RuleChoice {
				t.Errorf("rule = %s, expected %s", ve.Errors[0].Rule, RuleChoice)
			}
		})
	}
}

func TestTimeEntryValidator_DescriptionLength(t *testing.T) {
	c := clock.NewFake(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	validator := NewTimeEntryValidator(NewValidatorWithLimits(Limits{DescriptionMaxLength: 10}), c)

	entry := domain.TimeEntry{UserID: "u", Day: today, Start: tod(9, 0), Description: strings.Repeat("x", 11)}
	err := validator.ValidateTimeEntry(entry, nil)

	ve, ok := AsValidationError(err)
	if !ok || len(ve.For("description")) != 1 {
		t.Fatalf("expected a description error, got %v", err)
	}
}

func TestTimeEntryValidator_ValidateTimeEntryID(t *testing.T) {
	validator := newTestValidator()

	if err := validator.ValidateTimeEntryID(1); err != nil {
		t.Errorf("ValidateTimeEntryID(1) unexpected error %v", err)
	}
	if err := validator.ValidateTimeEntryID(0); err == nil {
		t.Error("ValidateTimeEntryID(0) expected error")
	}
}

func TestTimeEntryValidator_ValidateReportRange(t *testing.T) {
	validator := newTestValidator()

	if err := validator.ValidateReportRange(&yesterday, &today); err != nil {
		t.Errorf("ordered range unexpected error %v", err)
	}
	if err := validator.ValidateReportRange(&today, &yesterday); err == nil {
		t.Error("reversed range expected error")
	}
	if err := validator.ValidateReportRange(nil, nil); err != nil {
		t.Errorf("open range unexpected error %v", err)
	}
}
