package services

import (
	"context"
	"log/slog"

	"tracker/internal/clock"
	"tracker/internal/domain"
	"tracker/internal/logging"
	"tracker/internal/notify"
	"tracker/internal/repository"
	"tracker/internal/validation"
)

// EntryInput is a submitted time entry, before validation. Start is a
// pointer so that an omitted start is reported instead of read as 00:00.
type EntryInput struct {
	Day         domain.Date       `json:"day"`
	Start       *domain.TimeOfDay `json:"start"`
	Stop        *domain.TimeOfDay `json:"stop,omitempty"`
	ProjectID   *int64            `json:"project,omitempty"`
	Description string            `json:"description,omitempty"`
}

// entry builds the unsaved entry the input describes for userID.
// A missing start is left at zero; validation rejects it.
func (in EntryInput) entry(userID string) domain.TimeEntry {
	entry := domain.TimeEntry{
		UserID:      userID,
		ProjectID:   in.ProjectID,
		Description: in.Description,
		Day:         in.Day,
		Stop:        in.Stop,
	}
	if in.Start != nil {
		entry.Start = *in.Start
	}
	return entry
}

// ActiveTimerDisplay is what a client shows for the running timer.
type ActiveTimerDisplay struct {
	Active       bool              `json:"active"`
	ElapsedLabel string            `json:"elapsed,omitempty"` // HH:MM since start
	Entry        *domain.TimeEntry `json:"entry,omitempty"`
}

// ProjectInput describes a project to create.
type ProjectInput struct {
	Name        string             `json:"name"`
	ClientID    *int64             `json:"client,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	Billing     bool               `json:"billing"`
	Amount      int                `json:"amount"`
	PaymentType domain.PaymentType `json:"payment_type"`
}

// DayListing is the entries of one day with links to its neighbours.
type DayListing struct {
	Day        domain.Date         `json:"day"`
	Previous   domain.Date         `json:"previous"`
	Next       domain.Date         `json:"next"`
	IsToday    bool                `json:"is_today"`
	Entries    []*domain.TimeEntry `json:"entries"`
	TotalHours int                 `json:"total_hours"`
}

// ReportCriteria narrows a report. Unset fields do not filter.
type ReportCriteria struct {
	From      *domain.Date `json:"from,omitempty"`
	To        *domain.Date `json:"to,omitempty"`
	ProjectID *int64       `json:"project,omitempty"`
	ClientID  *int64       `json:"client,omitempty"`
}

// Report lists closed entries and the sum of their durations.
type Report struct {
	Criteria   ReportCriteria      `json:"criteria"`
	Entries    []*domain.TimeEntry `json:"entries"`
	TotalHours int                 `json:"total_hours"`
}

// TimerService owns the time entry lifecycle and keeps at most one timer
// running per user.
type TimerService interface {
	// Entry lifecycle
	CreateEntry(ctx context.Context, userID string, in EntryInput) (*domain.TimeEntry, error)
	StartTimer(ctx context.Context, userID string, projectID *int64, description string) (*domain.TimeEntry, error)
	UpdateEntry(ctx context.Context, userID string, id int64, in EntryInput) (*domain.TimeEntry, error)
	DeleteEntry(ctx context.Context, userID string, id int64) error
	GetEntry(ctx context.Context, userID string, id int64) (*domain.TimeEntry, error)

	// Active timer reconciliation
	CloseStaleActiveTimers(ctx context.Context, userID string, in EntryInput) ([]*domain.TimeEntry, error)
	StopActiveTimer(ctx context.Context, userID string) (*domain.TimeEntry, error)
	ActiveTimerDisplay(ctx context.Context, userID string) (*ActiveTimerDisplay, error)
}

// CatalogService manages users and the clients and projects they own.
type CatalogService interface {
	// Users
	CreateUser(ctx context.Context, name string) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByName(ctx context.Context, name string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// Clients
	CreateClient(ctx context.Context, userID, name string) (*domain.Client, error)
	ListClients(ctx context.Context, userID string) ([]*domain.Client, error)

	// Projects
	CreateProject(ctx context.Context, userID string, in ProjectInput) (*domain.Project, error)
	GetProject(ctx context.Context, userID string, id int64) (*domain.Project, error)
	ListProjects(ctx context.Context, userID string) ([]*domain.Project, error)
	SelectableProjects(ctx context.Context, userID string) ([]*domain.Project, error)
	SetProjectStatus(ctx context.Context, userID string, id int64, status domain.ProjectStatus) (*domain.Project, error)
}

// ListingService produces the day-by-day view of a user's entries.
type ListingService interface {
	ListDay(ctx context.Context, userID string, day domain.Date) (*DayListing, error)
}

// ReportingService aggregates closed entries.
type ReportingService interface {
	Report(ctx context.Context, userID string, criteria ReportCriteria) (*Report, error)
}

// Options carries the collaborators shared by the services. Zero values
// fall back to the system clock, default limits, a 23:59 day end, a
// discarding logger and no notifications.
type Options struct {
	Clock    clock.Clock
	Limits   validation.Limits
	DayEnd   domain.TimeOfDay
	Logger   *slog.Logger
	Notifier notify.Notifier
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.NewSystem(nil)
	}
	if o.Limits == (validation.Limits{}) {
		o.Limits = validation.DefaultLimits()
	}
	// 00:00 reads as unset; configuration rejects it as a day end.
	if o.DayEnd == 0 {
		o.DayEnd = domain.EndOfDay
	}
	o.Logger = logging.OrDiscard(o.Logger)
	if o.Notifier == nil {
		o.Notifier = notify.Nop{}
	}
	return o
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	TimerService     TimerService
	CatalogService   CatalogService
	ListingService   ListingService
	ReportingService ReportingService
}

// NewServiceContainer wires every service to repo.
func NewServiceContainer(repo repository.Repository, opts Options) *ServiceContainer {
	opts = opts.withDefaults()
	catalog := NewCatalogService(repo, opts)
	return &ServiceContainer{
		TimerService:     NewTimerService(repo, opts),
		CatalogService:   catalog,
		ListingService:   NewListingService(repo, opts),
		ReportingService: NewReportingService(repo, catalog, opts),
	}
}
