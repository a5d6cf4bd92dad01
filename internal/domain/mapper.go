package domain

import (
	"fmt"

	"tracker/internal/repository"
)

// TimeEntryMapper handles conversion between domain and stored TimeEntry models.
type TimeEntryMapper struct{}

// NewTimeEntryMapper creates a new TimeEntryMapper instance.
func NewTimeEntryMapper() *TimeEntryMapper {
	return &TimeEntryMapper{}
}

// ToDatabase converts a domain TimeEntry to its stored form.
func (m *TimeEntryMapper) ToDatabase(entry TimeEntry) repository.TimeEntry {
	var stop *string
	if entry.Stop != nil {
		s := entry.Stop.String()
		stop = &s
	}
	return repository.TimeEntry{
		ID:          entry.ID,
		UserID:      entry.UserID,
		ProjectID:   entry.ProjectID,
		Description: entry.Description,
		Day:         entry.Day.String(),
		Start:       entry.Start.String(),
		Stop:        stop,
		Duration:    entry.Duration,
	}
}

// FromDatabase converts a stored TimeEntry to the domain model.
func (m *TimeEntryMapper) FromDatabase(dbEntry repository.TimeEntry) (TimeEntry, error) {
	day, err := ParseDate(dbEntry.Day)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("time entry %d: %w", dbEntry.ID, err)
	}
	start, err := ParseTimeOfDay(dbEntry.Start)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("time entry %d: %w", dbEntry.ID, err)
	}
	entry := TimeEntry{
		ID:          dbEntry.ID,
		UserID:      dbEntry.UserID,
		ProjectID:   dbEntry.ProjectID,
		Description: dbEntry.Description,
		Day:         day,
		Start:       start,
		Duration:    dbEntry.Duration,
	}
	if dbEntry.Stop != nil {
		stop, err := ParseTimeOfDay(*dbEntry.Stop)
		if err != nil {
			return TimeEntry{}, fmt.Errorf("time entry %d: %w", dbEntry.ID, err)
		}
		entry.Stop = &stop
	}
	return entry, nil
}

// FromDatabaseSlice converts stored TimeEntries to domain pointers.
func (m *TimeEntryMapper) FromDatabaseSlice(dbEntries []*repository.TimeEntry) ([]*TimeEntry, error) {
	entries := make([]*TimeEntry, 0, len(dbEntries))
	for _, dbEntry := range dbEntries {
		entry, err := m.FromDatabase(*dbEntry)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

// ProjectMapper handles conversion between domain and stored Project models.
type ProjectMapper struct{}

// ToDatabase converts a domain Project to its stored form.
func (m *ProjectMapper) ToDatabase(p Project) repository.Project {
	return repository.Project{
		ID:          p.ID,
		UserID:      p.UserID,
		ClientID:    p.ClientID,
		Name:        p.Name,
		Notes:       p.Notes,
		Status:      string(p.Status),
		Billing:     p.Billing,
		Amount:      p.Amount,
		PaymentType: string(p.PaymentType),
	}
}

// FromDatabase converts a stored Project to the domain model.
func (m *ProjectMapper) FromDatabase(p repository.Project) Project {
	return Project{
		ID:          p.ID,
		UserID:      p.UserID,
		ClientID:    p.ClientID,
		Name:        p.Name,
		Notes:       p.Notes,
		Status:      ProjectStatus(p.Status),
		Billing:     p.Billing,
		Amount:      p.Amount,
		PaymentType: PaymentType(p.PaymentType),
	}
}

// FromDatabaseSlice converts stored Projects to domain pointers.
func (m *ProjectMapper) FromDatabaseSlice(dbProjects []*repository.Project) []*Project {
	projects := make([]*Project, len(dbProjects))
	for i, p := range dbProjects {
		project := m.FromDatabase(*p)
		projects[i] = &project
	}
	return projects
}

// ClientMapper handles conversion between domain and stored Client models.
type ClientMapper struct{}

// ToDatabase converts a domain Client to its stored form.
func (m *ClientMapper) ToDatabase(c Client) repository.Client {
	return repository.Client{ID: c.ID, UserID: c.UserID, Name: c.Name}
}

// FromDatabase converts a stored Client to the domain model.
func (m *ClientMapper) FromDatabase(c repository.Client) Client {
	return Client{ID: c.ID, UserID: c.UserID, Name: c.Name}
}

// FromDatabaseSlice converts stored Clients to domain pointers.
func (m *ClientMapper) FromDatabaseSlice(dbClients []*repository.Client) []*Client {
	clients := make([]*Client, len(dbClients))
	for i, c := range dbClients {
		client := m.FromDatabase(*c)
		clients[i] = &client
	}
	return clients
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	TimeEntry *TimeEntryMapper
	Project   *ProjectMapper
	Client    *ClientMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		TimeEntry: NewTimeEntryMapper(),
		Project:   &ProjectMapper{},
		Client:    &ClientMapper{},
	}
}
