package domain

// TimeEntry represents a block of work recorded by a user.
// An entry without a stop time is the user's active timer.
type TimeEntry struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	ProjectID   *int64     `json:"project_id,omitempty"`
	Description string     `json:"description,omitempty"`
	Day         Date       `json:"day"`
	Start       TimeOfDay  `json:"start"`
	Stop        *TimeOfDay `json:"stop,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
}

// NewTimeEntry creates an active entry for the user starting at start on day.
func NewTimeEntry(userID string, day Date, start TimeOfDay) TimeEntry {
	return TimeEntry{
		UserID: userID,
		Day:    day,
		Start:  start,
	}
}

// IsActive returns true if the entry has no stop time yet.
func (te TimeEntry) IsActive() bool {
	return te.Stop == nil
}

// Close sets the stop time and recomputes the duration.
func (te TimeEntry) Close(stop TimeOfDay) TimeEntry {
	te.Stop = &stop
	return te.WithDuration()
}

// WithDuration returns the entry with Duration derived from Day, Start and
// Stop. Active entries carry no duration.
func (te TimeEntry) WithDuration() TimeEntry {
	if te.Stop == nil {
		te.Duration = nil
		return te
	}
	hours := DurationHours(te.Day, te.Start, *te.Stop)
	te.Duration = &hours
	return te
}

// ElapsedAt returns the HH:MM label of the entry as seen at now.
// Closed entries report their recorded span.
func (te TimeEntry) ElapsedAt(now TimeOfDay) string {
	if te.Stop != nil {
		return ElapsedLabel(te.Day, te.Start, *te.Stop)
	}
	return ElapsedLabel(te.Day, te.Start, now)
}

// IsValid checks the structural invariants that do not depend on the clock.
func (te TimeEntry) IsValid() bool {
	if te.UserID == "" || te.Day.IsZero() || !te.Start.Valid() {
		return false
	}
	if te.Stop != nil && (!te.Stop.Valid() || *te.Stop < te.Start) {
		return false
	}
	return true
}

// HasProject reports whether the entry is attached to a project.
func (te TimeEntry) HasProject() bool {
	return te.ProjectID != nil
}
