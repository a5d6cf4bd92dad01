package sqlstore

import (
	"database/sql"

	"tracker/internal/repository"
)

// Scanner is satisfied by *sql.Row, *sql.Rows and the pgx row types.
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows is satisfied by *sql.Rows and pgx.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanTimeEntry scans a single time entry from a database row
func ScanTimeEntry(scanner Scanner) (*repository.TimeEntry, error) {
	entry := &repository.TimeEntry{}
	var (
		projectID sql.NullInt64
		stop      sql.NullString
		duration  sql.NullInt64
	)

	err := scanner.Scan(
		&entry.ID,
		&entry.UserID,
		&projectID,
		&entry.Description,
		&entry.Day,
		&entry.Start,
		&stop,
		&duration,
	)
	if err != nil {
		return nil, err
	}

	if projectID.Valid {
		entry.ProjectID = &projectID.Int64
	}
	if stop.Valid {
		entry.Stop = &stop.String
	}
	if duration.Valid {
		d := int(duration.Int64)
		entry.Duration = &d
	}

	return entry, nil
}

// ScanTimeEntries scans multiple time entries from database rows
func ScanTimeEntries(rows Rows) ([]*repository.TimeEntry, error) {
	return scanAll(rows, ScanTimeEntry)
}

// ScanProject scans a single project from a database row
func ScanProject(scanner Scanner) (*repository.Project, error) {
	p := &repository.Project{}
	var clientID sql.NullInt64

	err := scanner.Scan(&p.ID, &p.UserID, &clientID, &p.Name, &p.Notes, &p.Status, &p.Billing, &p.Amount, &p.PaymentType)
	if err != nil {
		return nil, err
	}
	if clientID.Valid {
		p.ClientID = &clientID.Int64
	}
	return p, nil
}

// ScanProjects scans multiple projects from database rows
func ScanProjects(rows Rows) ([]*repository.Project, error) {
	return scanAll(rows, ScanProject)
}

// ScanClient scans a single client from a database row
func ScanClient(scanner Scanner) (*repository.Client, error) {
	c := &repository.Client{}
	if err := scanner.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
		return nil, err
	}
	return c, nil
}

// ScanClients scans multiple clients from database rows
func ScanClients(rows Rows) ([]*repository.Client, error) {
	return scanAll(rows, ScanClient)
}

// ScanUser scans a single user from a database row
func ScanUser(scanner Scanner) (*repository.User, error) {
	u := &repository.User{}
	if err := scanner.Scan(&u.ID, &u.Name); err != nil {
		return nil, err
	}
	return u, nil
}

// ScanUsers scans multiple users from database rows
func ScanUsers(rows Rows) ([]*repository.User, error) {
	return scanAll(rows, ScanUser)
}

func scanAll[T any](rows Rows, scan func(Scanner) (*T, error)) ([]*T, error) {
	var results []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
