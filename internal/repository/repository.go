// Package repository defines the storage contract of the tracker and the
// record shapes that cross it. Backends live in sub-packages.
package repository

import (
	"context"
)

// TimeEntry is the stored form of a time entry. Day is YYYY-MM-DD, Start
// and Stop are HH:MM:SS.
type TimeEntry struct {
	ID          int64
	UserID      string
	ProjectID   *int64
	Description string
	Day         string
	Start       string
	Stop        *string // nil while the entry is the active timer
	Duration    *int
}

// Project is the stored form of a project.
type Project struct {
	ID          int64
	UserID      string
	ClientID    *int64
	Name        string
	Notes       string
	Status      string
	Billing     bool
	Amount      int
	PaymentType string
}

// Client is the stored form of a client.
type Client struct {
	ID     int64
	UserID string
	Name   string
}

// User is the stored form of a tenant.
type User struct {
	ID   string
	Name string
}

// SearchOptions narrows a time entry search. All set fields must match.
// Day bounds are inclusive YYYY-MM-DD strings.
type SearchOptions struct {
	Day        *string
	From       *string
	To         *string
	ProjectID  *int64
	ClientID   *int64
	ClosedOnly bool
}

// Repository is implemented by every storage backend. Every entry, project
// and client operation is scoped to the owning user; records of other users
// are reported as not found.
type Repository interface {
	// Time entries
	CreateTimeEntry(ctx context.Context, entry *TimeEntry) error
	GetTimeEntry(ctx context.Context, userID string, id int64) (*TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, entry *TimeEntry) error
	DeleteTimeEntry(ctx context.Context, userID string, id int64) error
	ListActiveTimeEntries(ctx context.Context, userID string) ([]*TimeEntry, error)
	SearchTimeEntries(ctx context.Context, userID string, opts SearchOptions) ([]*TimeEntry, error)

	// Projects and clients
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, userID string, id int64) (*Project, error)
	ListProjects(ctx context.Context, userID string) ([]*Project, error)
	UpdateProject(ctx context.Context, project *Project) error
	CreateClient(ctx context.Context, client *Client) error
	GetClient(ctx context.Context, userID string, id int64) (*Client, error)
	ListClients(ctx context.Context, userID string) ([]*Client, error)

	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByName(ctx context.Context, name string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)

	Locker

	Close() error
}

// Locker serialises the writes of one user. The returned function releases
// the lock and must always be called.
type Locker interface {
	LockUser(ctx context.Context, userID string) (unlock func(), err error)
}
