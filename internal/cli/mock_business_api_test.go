package cli

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tracker/internal/api"
	"tracker/internal/clock"
	"tracker/internal/config"
	"tracker/internal/domain"
	"tracker/internal/errors"
)

// mockBusinessAPI is an in-memory BusinessAPI. It keeps the one-timer rule
// but none of the validation.
type mockBusinessAPI struct {
	clock    clock.Clock
	users    []*domain.User
	entries  map[int64]*domain.TimeEntry
	clients  []*domain.Client
	projects []*domain.Project
	nextID   int64

	// failWith, when set, is returned by every write.
	failWith error

	lastInput    api.EntryInput
	lastCriteria api.ReportCriteria
	listedDay    domain.Date
}

var _ api.BusinessAPI = (*mockBusinessAPI)(nil)

func newMockBusinessAPI(c clock.Clock) *mockBusinessAPI {
	return &mockBusinessAPI{
		clock:   c,
		entries: make(map[int64]*domain.TimeEntry),
		nextID:  1,
	}
}

func (m *mockBusinessAPI) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockBusinessAPI) ResolveUser(ctx context.Context, ref string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == ref || u.Name == ref {
			return u, nil
		}
	}
	return nil, errors.NewPermissionError("resolve user", ref)
}

func (m *mockBusinessAPI) CreateUser(ctx context.Context, name string) (*domain.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	u := &domain.User{ID: fmt.Sprintf("user-%d", m.id()), Name: name}
	m.users = append(m.users, u)
	return u, nil
}

func (m *mockBusinessAPI) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return m.users, nil
}

func (m *mockBusinessAPI) active(userID string) *domain.TimeEntry {
	for _, e := range m.entries {
		if e.UserID == userID && e.Stop == nil {
			return e
		}
	}
	return nil
}

func (m *mockBusinessAPI) StartTimer(ctx context.Context, userID string, projectID *int64, description string) (*domain.TimeEntry, error) {
	start := clock.TimeOfDay(m.clock)
	return m.CreateEntry(ctx, userID, api.EntryInput{
		Day:         clock.Today(m.clock),
		Start:       &start,
		ProjectID:   projectID,
		Description: description,
	})
}

func (m *mockBusinessAPI) CreateEntry(ctx context.Context, userID string, in api.EntryInput) (*domain.TimeEntry, error) {
	m.lastInput = in
	if m.failWith != nil {
		return nil, m.failWith
	}
	if in.Stop == nil {
		if running := m.active(userID); running != nil {
			*running = running.Close(clock.TimeOfDay(m.clock))
		}
	}
	entry := domain.TimeEntry{
		ID:          m.id(),
		UserID:      userID,
		ProjectID:   in.ProjectID,
		Description: in.Description,
		Day:         in.Day,
		Start:       startOf(in),
		Stop:        in.Stop,
	}.WithDuration()
	m.entries[entry.ID] = &entry
	return &entry, nil
}

func (m *mockBusinessAPI) UpdateEntry(ctx context.Context, userID string, id int64, in api.EntryInput) (*domain.TimeEntry, error) {
	m.lastInput = in
	if m.failWith != nil {
		return nil, m.failWith
	}
	if _, err := m.GetEntry(ctx, userID, id); err != nil {
		return nil, err
	}
	entry := domain.TimeEntry{
		ID:          id,
		UserID:      userID,
		ProjectID:   in.ProjectID,
		Description: in.Description,
		Day:         in.Day,
		Start:       startOf(in),
		Stop:        in.Stop,
	}.WithDuration()
	m.entries[id] = &entry
	return &entry, nil
}

func (m *mockBusinessAPI) DeleteEntry(ctx context.Context, userID string, id int64) error {
	if _, err := m.GetEntry(ctx, userID, id); err != nil {
		return err
	}
	delete(m.entries, id)
	return nil
}

func (m *mockBusinessAPI) StopActiveTimer(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	running := m.active(userID)
	if running == nil {
		return nil, nil
	}
	*running = running.Close(clock.TimeOfDay(m.clock))
	return running, nil
}

func (m *mockBusinessAPI) GetEntry(ctx context.Context, userID string, id int64) (*domain.TimeEntry, error) {
	entry, ok := m.entries[id]
	if !ok || entry.UserID != userID {
		return nil, errors.NewNotFoundError("time entry", fmt.Sprintf("%d", id))
	}
	return entry, nil
}

func (m *mockBusinessAPI) ActiveTimerDisplay(ctx context.Context, userID string) (*api.ActiveTimerDisplay, error) {
	running := m.active(userID)
	if running == nil {
		return &api.ActiveTimerDisplay{}, nil
	}
	return &api.ActiveTimerDisplay{
		Active:       true,
		ElapsedLabel: running.ElapsedAt(clock.TimeOfDay(m.clock)),
		Entry:        running,
	}, nil
}

// sorted returns the user's entries matching keep, ordered by day and start.
func (m *mockBusinessAPI) sorted(userID string, keep func(*domain.TimeEntry) bool) []*domain.TimeEntry {
	var out []*domain.TimeEntry
	for _, e := range m.entries {
		if e.UserID == userID && keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].Start < out[j].Start
	})
	return out
}

func (m *mockBusinessAPI) ListEntries(ctx context.Context, userID string, day domain.Date) (*api.DayListing, error) {
	today := clock.Today(m.clock)
	if day.IsZero() {
		day = today
	}
	m.listedDay = day
	entries := m.sorted(userID, func(e *domain.TimeEntry) bool { return e.Day == day })
	listing := &api.DayListing{
		Day:      day,
		Previous: domain.NavigateDay(day, domain.Backward, today),
		Next:     domain.NavigateDay(day, domain.Forward, today),
		IsToday:  day == today,
		Entries:  entries,
	}
	for _, e := range entries {
		if e.Duration != nil {
			listing.TotalHours += *e.Duration
		}
	}
	return listing, nil
}

func (m *mockBusinessAPI) Report(ctx context.Context, userID string, criteria api.ReportCriteria) (*api.Report, error) {
	m.lastCriteria = criteria
	if m.failWith != nil {
		return nil, m.failWith
	}
	entries := m.sorted(userID, func(e *domain.TimeEntry) bool {
		if e.Stop == nil {
			return false
		}
		if criteria.From != nil && e.Day.Before(*criteria.From) {
			return false
		}
		if criteria.To != nil && e.Day.After(*criteria.To) {
			return false
		}
		if criteria.ProjectID != nil && (e.ProjectID == nil || *e.ProjectID != *criteria.ProjectID) {
			return false
		}
		return true
	})
	report := &api.Report{Criteria: criteria, Entries: entries}
	for _, e := range entries {
		report.TotalHours += *e.Duration
	}
	return report, nil
}

func (m *mockBusinessAPI) CreateClient(ctx context.Context, userID, name string) (*domain.Client, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	c := &domain.Client{ID: m.id(), UserID: userID, Name: name}
	m.clients = append(m.clients, c)
	return c, nil
}

func (m *mockBusinessAPI) ListClients(ctx context.Context, userID string) ([]*domain.Client, error) {
	var out []*domain.Client
	for _, c := range m.clients {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockBusinessAPI) CreateProject(ctx context.Context, userID string, in api.ProjectInput) (*domain.Project, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	paymentType, _ := domain.ParsePaymentType(string(in.PaymentType))
	p := domain.NewProject(userID, in.Name)
	p.ID = m.id()
	p.ClientID = in.ClientID
	p.PaymentType = paymentType
	p.Amount = in.Amount
	p.Billing = in.Billing
	m.projects = append(m.projects, &p)
	return &p, nil
}

func (m *mockBusinessAPI) ListProjects(ctx context.Context, userID string) ([]*domain.Project, error) {
	var out []*domain.Project
	for _, p := range m.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockBusinessAPI) SetProjectStatus(ctx context.Context, userID string, id int64, status domain.ProjectStatus) (*domain.Project, error) {
	for _, p := range m.projects {
		if p.ID == id && p.UserID == userID {
			p.Status = status
			return p, nil
		}
	}
	return nil, errors.NewNotFoundError("project", fmt.Sprintf("%d", id))
}

// testRoot runs commands against a mock with the clock at 2024-03-15 09:00.
type testRoot struct {
	api   *mockBusinessAPI
	clock *clock.Fake
	alice *domain.User
}

func setupTestRoot(t *testing.T) *testRoot {
	t.Helper()
	t.Setenv("TT_CONFIG", "")
	t.Setenv("TT_USER", "")

	fake := clock.NewFake(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	mock := newMockBusinessAPI(fake)
	alice, err := mock.CreateUser(context.Background(), "alice")
	require.NoError(t, err)

	return &testRoot{api: mock, clock: fake, alice: alice}
}

// run executes one command line with a fresh root and returns its output.
func (tr *testRoot) run(args ...string) (string, error) {
	var closed bool
	build := func(ctx context.Context, cfg *config.Config) (*Runtime, error) {
		return &Runtime{
			API:   tr.api,
			Clock: tr.clock,
			Close: func() error { closed = true; return nil },
		}, nil
	}

	root := NewRootCommand(config.NewLoaderWithFile(""), build)
	var out bytes.Buffer
	root.Command().SetOut(&out)
	root.Command().SetErr(&out)
	root.Command().SetArgs(args)

	err := root.Execute(context.Background())
	if root.runtime != nil && !closed {
		return out.String(), fmt.Errorf("runtime was not closed")
	}
	return out.String(), err
}

func apiInput(day domain.Date, start domain.TimeOfDay, stop *domain.TimeOfDay, project *int64, description string) api.EntryInput {
	return api.EntryInput{Day: day, Start: &start, Stop: stop, ProjectID: project, Description: description}
}

func startOf(in api.EntryInput) domain.TimeOfDay {
	if in.Start == nil {
		return 0
	}
	return *in.Start
}
