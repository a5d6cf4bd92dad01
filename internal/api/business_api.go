package api

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"tracker/internal/domain"
	"tracker/internal/errors"
	"tracker/internal/repository"
	"tracker/internal/services"
)

// Business domain types shared with the services layer
type (
	EntryInput         = services.EntryInput
	ProjectInput       = services.ProjectInput
	ActiveTimerDisplay = services.ActiveTimerDisplay
	DayListing         = services.DayListing
	ReportCriteria     = services.ReportCriteria
	Report             = services.Report
)

// BusinessAPI defines the business-logic-only interface for time tracking
// operations. Every user-scoped call takes the ID of a user obtained from
// ResolveUser.
type BusinessAPI interface {
	// ========== Identity ==========

	// ResolveUser maps a user ID or name to a known user. Unknown
	// identities are rejected with a permission error.
	ResolveUser(ctx context.Context, ref string) (*domain.User, error)

	// CreateUser registers a new user
	CreateUser(ctx context.Context, name string) (*domain.User, error)

	// ListUsers returns every user
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// ========== Timer Workflows ==========

	// StartTimer starts a timer now, closing whatever was running
	StartTimer(ctx context.Context, userID string, projectID *int64, description string) (*domain.TimeEntry, error)

	// CreateEntry validates and stores an entry, closing stale timers first
	CreateEntry(ctx context.Context, userID string, in EntryInput) (*domain.TimeEntry, error)

	// UpdateEntry replaces an entry's fields
	UpdateEntry(ctx context.Context, userID string, id int64, in EntryInput) (*domain.TimeEntry, error)

	// DeleteEntry removes an entry
	DeleteEntry(ctx context.Context, userID string, id int64) error

	// StopActiveTimer stops the running timer; nil when nothing was running
	StopActiveTimer(ctx context.Context, userID string) (*domain.TimeEntry, error)

	// ========== Query Operations ==========

	// GetEntry returns a single entry by ID
	GetEntry(ctx context.Context, userID string, id int64) (*domain.TimeEntry, error)

	// ActiveTimerDisplay returns the running timer and its elapsed time
	ActiveTimerDisplay(ctx context.Context, userID string) (*ActiveTimerDisplay, error)

	// ListEntries returns the entries of a day; the zero day means today
	ListEntries(ctx context.Context, userID string, day domain.Date) (*DayListing, error)

	// Report sums closed entries matching the criteria
	Report(ctx context.Context, userID string, criteria ReportCriteria) (*Report, error)

	// ========== Clients and Projects ==========

	CreateClient(ctx context.Context, userID, name string) (*domain.Client, error)
	ListClients(ctx context.Context, userID string) ([]*domain.Client, error)
	CreateProject(ctx context.Context, userID string, in ProjectInput) (*domain.Project, error)
	ListProjects(ctx context.Context, userID string) ([]*domain.Project, error)
	SetProjectStatus(ctx context.Context, userID string, id int64, status domain.ProjectStatus) (*domain.Project, error)
}

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	timer     services.TimerService
	catalog   services.CatalogService
	listing   services.ListingService
	reporting services.ReportingService
}

// NewBusinessAPI creates a new BusinessAPI instance
func NewBusinessAPI(repo repository.Repository, opts services.Options) BusinessAPI {
	return NewBusinessAPIFromServices(services.NewServiceContainer(repo, opts))
}

// NewBusinessAPIFromServices creates a BusinessAPI over existing services
func NewBusinessAPIFromServices(container *services.ServiceContainer) BusinessAPI {
	return &businessAPIImpl{
		timer:     container.TimerService,
		catalog:   container.CatalogService,
		listing:   container.ListingService,
		reporting: container.ReportingService,
	}
}

// ========== Identity ==========

func (b *businessAPIImpl) ResolveUser(ctx context.Context, ref string) (*domain.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.NewPermissionError("resolve user", "no user given")
	}

	if _, err := uuid.Parse(ref); err == nil {
		user, err := b.catalog.GetUser(ctx, ref)
		if err == nil {
			return user, nil
		}
		if !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, err
		}
	}

	user, err := b.catalog.GetUserByName(ctx, ref)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, errors.NewPermissionError("resolve user", ref)
		}
		return nil, err
	}
	return user, nil
}

func (b *businessAPIImpl) CreateUser(ctx context.Context, name string) (*domain.User, error) {
	return b.catalog.CreateUser(ctx, name)
}

func (b *businessAPIImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return b.catalog.ListUsers(ctx)
}

// ========== Timer Workflows ==========

func (b *businessAPIImpl) StartTimer(ctx context.Context, userID string, projectID *int64, description string) (*domain.TimeEntry, error) {
	return b.timer.StartTimer(ctx, userID, projectID, description)
}

func (b *businessAPIImpl) CreateEntry(ctx context.Context, userID string, in EntryInput) (*domain.TimeEntry, error) {
	return b.timer.CreateEntry(ctx, userID, in)
}

func (b *businessAPIImpl) UpdateEntry(ctx context.Context, userID string, id int64, in EntryInput) (*domain.TimeEntry, error) {
	return b.timer.UpdateEntry(ctx, userID, id, in)
}

func (b *businessAPIImpl) DeleteEntry(ctx context.Context, userID string, id int64) error {
	return b.timer.DeleteEntry(ctx, userID, id)
}

func (b *businessAPIImpl) StopActiveTimer(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	return b.timer.StopActiveTimer(ctx, userID)
}

// ========== Query Operations ==========

func (b *businessAPIImpl) GetEntry(ctx context.Context, userID string, id int64) (*domain.TimeEntry, error) {
	return b.timer.GetEntry(ctx, userID, id)
}

func (b *businessAPIImpl) ActiveTimerDisplay(ctx context.Context, userID string) (*ActiveTimerDisplay, error) {
	return b.timer.ActiveTimerDisplay(ctx, userID)
}

func (b *businessAPIImpl) ListEntries(ctx context.Context, userID string, day domain.Date) (*DayListing, error) {
	return b.listing.ListDay(ctx, userID, day)
}

func (b *businessAPIImpl) Report(ctx context.Context, userID string, criteria ReportCriteria) (*Report, error) {
	return b.reporting.Report(ctx, userID, criteria)
}

// ========== Clients and Projects ==========

func (b *businessAPIImpl) CreateClient(ctx context.Context, userID, name string) (*domain.Client, error) {
	return b.catalog.CreateClient(ctx, userID, name)
}

func (b *businessAPIImpl) ListClients(ctx context.Context, userID string) ([]*domain.Client, error) {
	return b.catalog.ListClients(ctx, userID)
}

func (b *businessAPIImpl) CreateProject(ctx context.Context, userID string, in ProjectInput) (*domain.Project, error) {
	return b.catalog.CreateProject(ctx, userID, in)
}

func (b *businessAPIImpl) ListProjects(ctx context.Context, userID string) ([]*domain.Project, error) {
	return b.catalog.ListProjects(ctx, userID)
}

func (b *businessAPIImpl) SetProjectStatus(ctx context.Context, userID string, id int64, status domain.ProjectStatus) (*domain.Project, error) {
	return b.catalog.SetProjectStatus(ctx, userID, id, status)
}
