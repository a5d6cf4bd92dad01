package services

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tracker/internal/clock"
	"tracker/internal/domain"
	"tracker/internal/notify"
	"tracker/internal/repository"
	"tracker/internal/repository/sqlstore"
	"tracker/internal/validation"
)

const (
	aliceID = "11111111-1111-4111-8111-111111111111"
	bobID   = "22222222-2222-4222-8222-222222222222"
)

var (
	today     = domain.NewDate(2024, 3, 15)
	yesterday = today.AddDays(-1)
	tomorrow  = today.AddDays(1)
)

func ptr[T any](v T) *T { return &v }

func tod(h, m int) domain.TimeOfDay { return domain.NewTimeOfDay(h, m, 0) }

func todPtr(h, m int) *domain.TimeOfDay { return ptr(tod(h, m)) }

// at returns a moment of today in UTC.
func at(h, m int) time.Time {
	return time.Date(2024, 3, 15, h, m, 0, 0, time.UTC)
}

type recordedNotification struct {
	entry  domain.TimeEntry
	reason notify.Reason
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []recordedNotification
}

func (r *recordingNotifier) TimerClosed(_ context.Context, entry domain.TimeEntry, reason notify.Reason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, recordedNotification{entry: entry, reason: reason})
}

type testEnv struct {
	repo     repository.Repository
	clock    *clock.Fake
	notifier *recordingNotifier
	logs     *bytes.Buffer
	services *ServiceContainer
}

// setupTestEnv opens an in-memory store holding alice and bob, with the
// clock frozen at today 12:00 UTC.
func setupTestEnv(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()
	ctx := context.Background()

	repo, err := sqlstore.OpenSQLite(ctx, ":memory:", sqlstore.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.CreateUser(ctx, &repository.User{ID: aliceID, Name: "alice"}))
	require.NoError(t, repo.CreateUser(ctx, &repository.User{ID: bobID, Name: "bob"}))

	env := &testEnv{
		repo:     repo,
		clock:    clock.NewFake(at(12, 0)),
		notifier: &recordingNotifier{},
		logs:     &bytes.Buffer{},
	}
	o := Options{
		Clock:    env.clock,
		Logger:   slog.New(slog.NewTextHandler(env.logs, nil)),
		Notifier: env.notifier,
	}
	for _, opt := range opts {
		opt(&o)
	}
	env.services = NewServiceContainer(repo, o)
	return env
}

// seedEntry stores an entry directly, bypassing validation and
// reconciliation, so tests can start from states a user could have left.
func (e *testEnv) seedEntry(t *testing.T, userID string, day domain.Date, start domain.TimeOfDay, stop *domain.TimeOfDay) domain.TimeEntry {
	t.Helper()
	entry := domain.NewTimeEntry(userID, day, start)
	entry.Stop = stop
	entry = entry.WithDuration()
	dbEntry := domain.NewTimeEntryMapper().ToDatabase(entry)
	require.NoError(t, e.repo.CreateTimeEntry(context.Background(), &dbEntry))
	entry.ID = dbEntry.ID
	return entry
}

func (e *testEnv) activeEntries(t *testing.T, userID string) []*repository.TimeEntry {
	t.Helper()
	active, err := e.repo.ListActiveTimeEntries(context.Background(), userID)
	require.NoError(t, err)
	return active
}

func (e *testEnv) allEntries(t *testing.T, userID string) []*repository.TimeEntry {
	t.Helper()
	entries, err := e.repo.SearchTimeEntries(context.Background(), userID, repository.SearchOptions{})
	require.NoError(t, err)
	return entries
}

func (e *testEnv) createProject(t *testing.T, userID string, in ProjectInput) *domain.Project {
	t.Helper()
	project, err := e.services.CatalogService.CreateProject(context.Background(), userID, in)
	require.NoError(t, err)
	return project
}

// fieldMessages extracts the field-keyed messages of a validation failure.
func fieldMessages(t *testing.T, err error) map[string][]string {
	t.Helper()
	require.Error(t, err)
	ve, ok := validation.AsValidationError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	return ve.Fields()
}
