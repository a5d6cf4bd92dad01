package services

import (
	"context"
	"log/slog"
	"sort"

	"tracker/internal/clock"
	"tracker/internal/domain"
	"tracker/internal/errors"
	"tracker/internal/notify"
	"tracker/internal/repository"
	"tracker/internal/validation"
)

// timerServiceImpl implements the TimerService interface
type timerServiceImpl struct {
	repo      repository.Repository
	mapper    *domain.Mapper
	validator *validation.TimeEntryValidator
	clock     clock.Clock
	dayEnd    domain.TimeOfDay
	logger    *slog.Logger
	notifier  notify.Notifier
}

// NewTimerService creates a new TimerService instance
func NewTimerService(repo repository.Repository, opts Options) TimerService {
	opts = opts.withDefaults()
	return &timerServiceImpl{
		repo:      repo,
		mapper:    domain.NewMapper(),
		validator: validation.NewTimeEntryValidator(validation.NewValidatorWithLimits(opts.Limits), opts.Clock),
		clock:     opts.Clock,
		dayEnd:    opts.DayEnd,
		logger:    opts.Logger,
		notifier:  opts.Notifier,
	}
}

// CreateEntry validates in, closes the user's stale timers and stores the
// new entry. Nothing is written when validation fails.
func (t *timerServiceImpl) CreateEntry(ctx context.Context, userID string, in EntryInput) (*domain.TimeEntry, error) {
	entry, closed, err := t.createEntry(ctx, userID, in)
	t.announce(ctx, closed)
	return entry, err
}

func (t *timerServiceImpl) createEntry(ctx context.Context, userID string, in EntryInput) (*domain.TimeEntry, []closedTimer, error) {
	unlock, err := t.repo.LockUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	entry := in.entry(userID)
	if err := t.validate(ctx, entry, in.Start != nil); err != nil {
		return nil, nil, err
	}

	closed, err := t.closeStale(ctx, userID, in, 0)
	if err != nil {
		return nil, closed, err
	}

	entry = entry.WithDuration()
	dbEntry := t.mapper.TimeEntry.ToDatabase(entry)
	if err := t.repo.CreateTimeEntry(ctx, &dbEntry); err != nil {
		return nil, closed, err
	}
	entry.ID = dbEntry.ID

	t.logger.InfoContext(ctx, "time entry created",
		"user_id", userID, "entry_id", entry.ID, "day", entry.Day.String(), "active", entry.IsActive())
	return &entry, closed, nil
}

// StartTimer creates an active entry starting now.
func (t *timerServiceImpl) StartTimer(ctx context.Context, userID string, projectID *int64, description string) (*domain.TimeEntry, error) {
	start := clock.TimeOfDay(t.clock)
	return t.CreateEntry(ctx, userID, EntryInput{
		Day:         clock.Today(t.clock),
		Start:       &start,
		ProjectID:   projectID,
		Description: description,
	})
}

// UpdateEntry replaces the fields of an existing entry. The edited entry is
// never auto-closed by its own update.
func (t *timerServiceImpl) UpdateEntry(ctx context.Context, userID string, id int64, in EntryInput) (*domain.TimeEntry, error) {
	if err := t.validator.ValidateTimeEntryID(id); err != nil {
		return nil, errors.NewValidationError("invalid time entry id", err)
	}

	entry, closed, err := t.updateEntry(ctx, userID, id, in)
	t.announce(ctx, closed)
	return entry, err
}

func (t *timerServiceImpl) updateEntry(ctx context.Context, userID string, id int64, in EntryInput) (*domain.TimeEntry, []closedTimer, error) {
	unlock, err := t.repo.LockUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	if _, err := t.repo.GetTimeEntry(ctx, userID, id); err != nil {
		return nil, nil, err
	}

	entry := in.entry(userID)
	entry.ID = id
	if err := t.validate(ctx, entry, in.Start != nil); err != nil {
		return nil, nil, err
	}

	closed, err := t.closeStale(ctx, userID, in, id)
	if err != nil {
		return nil, closed, err
	}

	entry = entry.WithDuration()
	dbEntry := t.mapper.TimeEntry.ToDatabase(entry)
	if err := t.repo.UpdateTimeEntry(ctx, &dbEntry); err != nil {
		return nil, closed, err
	}

	t.logger.InfoContext(ctx, "time entry updated", "user_id", userID, "entry_id", id)
	return &entry, closed, nil
}

// DeleteEntry removes an entry owned by the user.
func (t *timerServiceImpl) DeleteEntry(ctx context.Context, userID string, id int64) error {
	if err := t.validator.ValidateTimeEntryID(id); err != nil {
		return errors.NewValidationError("invalid time entry id", err)
	}
	if err := t.repo.DeleteTimeEntry(ctx, userID, id); err != nil {
		return err
	}
	t.logger.InfoContext(ctx, "time entry deleted", "user_id", userID, "entry_id", id)
	return nil
}

// GetEntry retrieves an entry owned by the user.
func (t *timerServiceImpl) GetEntry(ctx context.Context, userID string, id int64) (*domain.TimeEntry, error) {
	if err := t.validator.ValidateTimeEntryID(id); err != nil {
		return nil, errors.NewValidationError("invalid time entry id", err)
	}
	dbEntry, err := t.repo.GetTimeEntry(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	entry, err := t.mapper.TimeEntry.FromDatabase(*dbEntry)
	if err != nil {
		return nil, errors.NewDatabaseError("decode time entry", err)
	}
	return &entry, nil
}

// CloseStaleActiveTimers closes the user's active timers that in makes
// stale and returns the entries it closed.
func (t *timerServiceImpl) CloseStaleActiveTimers(ctx context.Context, userID string, in EntryInput) ([]*domain.TimeEntry, error) {
	closed, err := t.closeStaleLocked(ctx, userID, in)
	t.announce(ctx, closed)

	entries := make([]*domain.TimeEntry, 0, len(closed))
	for _, c := range closed {
		entries = append(entries, c.entry)
	}
	return entries, err
}

func (t *timerServiceImpl) closeStaleLocked(ctx context.Context, userID string, in EntryInput) ([]closedTimer, error) {
	unlock, err := t.repo.LockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return t.closeStale(ctx, userID, in, 0)
}

// closeStale runs with the user lock held. A timer from another day is closed
// at the configured day end; a timer from today is closed now when in
// starts a new timer today. exclude is skipped (0 skips nothing). The
// closed timers are announced by the caller once the lock is released.
func (t *timerServiceImpl) closeStale(ctx context.Context, userID string, in EntryInput, exclude int64) ([]closedTimer, error) {
	active, err := t.activeEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := clock.Today(t.clock)
	now := clock.TimeOfDay(t.clock)
	startsTimerToday := in.Day == today && in.Stop == nil

	var closed []closedTimer
	for _, candidate := range active {
		if candidate.ID == exclude {
			continue
		}

		var (
			stop   domain.TimeOfDay
			reason notify.Reason
		)
		switch {
		case candidate.Day != today:
			stop, reason = t.dayEnd, notify.ReasonPastDay
		case startsTimerToday:
			stop, reason = now, notify.ReasonNewTimer
		default:
			continue
		}

		entry, err := t.close(ctx, *candidate, stop)
		if err != nil {
			return closed, err
		}
		t.logger.InfoContext(ctx, "auto-closed active timer",
			"user_id", userID, "entry_id", entry.ID, "stop", entry.Stop.String(), "reason", string(reason))
		closed = append(closed, closedTimer{entry: entry, reason: reason})
	}
	return closed, nil
}

// StopActiveTimer closes the user's active timer now. A timer left running
// from an earlier day is closed at the configured day end instead, since
// "now" is not a time on that day. It returns nil when no timer is running,
// so stopping twice is the same as stopping once.
func (t *timerServiceImpl) StopActiveTimer(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	entry, err := t.stopActive(ctx, userID)
	if entry != nil {
		t.announce(ctx, []closedTimer{{entry: entry, reason: notify.ReasonStopRequest}})
	}
	return entry, err
}

func (t *timerServiceImpl) stopActive(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	unlock, err := t.repo.LockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	active, err := t.activeEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	candidate := *active[0]
	stop := clock.TimeOfDay(t.clock)
	if candidate.Day != clock.Today(t.clock) {
		stop = t.dayEnd
	}

	entry, err := t.close(ctx, candidate, stop)
	if err != nil {
		return nil, err
	}
	t.logger.InfoContext(ctx, "active timer stopped",
		"user_id", userID, "entry_id", entry.ID, "stop", entry.Stop.String())
	return entry, nil
}

// closedTimer is a timer closed under the user lock, waiting to be announced.
type closedTimer struct {
	entry  *domain.TimeEntry
	reason notify.Reason
}

// announce notifies about closed timers. It must be called without the user
// lock held: a slow notifier would otherwise stall every write for the user.
func (t *timerServiceImpl) announce(ctx context.Context, closed []closedTimer) {
	for _, c := range closed {
		t.notifier.TimerClosed(ctx, *c.entry, c.reason)
	}
}

// ActiveTimerDisplay reports the running timer and its elapsed HH:MM.
func (t *timerServiceImpl) ActiveTimerDisplay(ctx context.Context, userID string) (*ActiveTimerDisplay, error) {
	active, err := t.activeEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return &ActiveTimerDisplay{}, nil
	}

	entry := active[0]
	return &ActiveTimerDisplay{
		Active:       true,
		ElapsedLabel: entry.ElapsedAt(clock.TimeOfDay(t.clock)),
		Entry:        entry,
	}, nil
}

// close stops entry at stop and persists it with its duration. A stop
// earlier than the start is raised to the start.
func (t *timerServiceImpl) close(ctx context.Context, entry domain.TimeEntry, stop domain.TimeOfDay) (*domain.TimeEntry, error) {
	if stop < entry.Start {
		stop = entry.Start
	}
	entry = entry.Close(stop)
	dbEntry := t.mapper.TimeEntry.ToDatabase(entry)
	if err := t.repo.UpdateTimeEntry(ctx, &dbEntry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// activeEntries returns the user's running timers, earliest first.
func (t *timerServiceImpl) activeEntries(ctx context.Context, userID string) ([]*domain.TimeEntry, error) {
	dbEntries, err := t.repo.ListActiveTimeEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := t.mapper.TimeEntry.FromDatabaseSlice(dbEntries)
	if err != nil {
		return nil, errors.NewDatabaseError("decode time entries", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Day != b.Day {
			return a.Day.Before(b.Day)
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})
	return entries, nil
}

// validate runs the entry checks. The project, when given, is looked up in
// the user's own projects so foreign ids read as an invalid choice.
func (t *timerServiceImpl) validate(ctx context.Context, entry domain.TimeEntry, hasStart bool) error {
	var project *domain.Project
	if entry.ProjectID != nil {
		dbProject, err := t.repo.GetProject(ctx, entry.UserID, *entry.ProjectID)
		switch {
		case err == nil:
			p := t.mapper.Project.FromDatabase(*dbProject)
			project = &p
		case !errors.IsErrorType(err, errors.ErrorTypeNotFound):
			return err
		}
	}

	if err := t.validator.ValidateSubmission(entry, hasStart, project); err != nil {
		return errors.NewValidationError("invalid time entry", err)
	}
	return nil
}
