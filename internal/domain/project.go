package domain

import "strings"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive ProjectStatus = "Active"
	ProjectDone   ProjectStatus = "Done"
)

// PaymentType describes how a project is billed.
type PaymentType string

const (
	PaymentHour  PaymentType = "Hour"
	PaymentMonth PaymentType = "Month"
)

// ParsePaymentType accepts "hour"/"month" in any case.
func ParsePaymentType(s string) (PaymentType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hour", "":
		return PaymentHour, true
	case "month":
		return PaymentMonth, true
	default:
		return "", false
	}
}

// Project is a unit of billable work owned by a user.
type Project struct {
	ID          int64         `json:"id"`
	UserID      string        `json:"user_id"`
	ClientID    *int64        `json:"client_id,omitempty"`
	Name        string        `json:"name"`
	Notes       string        `json:"notes,omitempty"`
	Status      ProjectStatus `json:"status"`
	Billing     bool          `json:"billing"`
	Amount      int           `json:"amount"`
	PaymentType PaymentType   `json:"payment_type"`
}

// NewProject creates an active, hourly project.
func NewProject(userID, name string) Project {
	return Project{
		UserID:      userID,
		Name:        name,
		Status:      ProjectActive,
		PaymentType: PaymentHour,
	}
}

// AcceptsTimeEntries reports whether time may be booked on the project.
// Only active projects paid per hour take time entries.
func (p Project) AcceptsTimeEntries() bool {
	return p.Status == ProjectActive && p.PaymentType == PaymentHour
}

// String returns the project name for display purposes.
func (p Project) String() string {
	return p.Name
}

// Client is a customer that projects can be grouped under.
type Client struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// String returns the client name for display purposes.
func (c Client) String() string {
	return c.Name
}

// User is a tenant of the tracker. Every other record belongs to one.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
