package clock

import (
	"sync"
	"time"

	"tracker/internal/domain"
)

// Clock provides the current wall-clock time.
// Business logic reads "now" only through a Clock so that tests can pin it.
type Clock interface {
	Now() time.Time
}

// Today returns the calendar day of c.Now().
func Today(c Clock) domain.Date {
	return domain.DateOf(c.Now())
}

// TimeOfDay returns the wall-clock time of c.Now().
func TimeOfDay(c Clock) domain.TimeOfDay {
	return domain.TimeOfDayOf(c.Now())
}

// System is the Clock backed by time.Now in the given location.
type System struct {
	Location *time.Location
}

// NewSystem creates a system clock. A nil location means time.Local.
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.Local
	}
	return System{Location: loc}
}

// Now returns the current time in the clock's location.
func (s System) Now() time.Time {
	if s.Location == nil {
		return time.Now()
	}
	return time.Now().In(s.Location)
}

// Fake is a settable Clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake creates a fake clock frozen at now.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

// Now returns the frozen time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
