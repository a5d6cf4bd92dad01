// Package sqlstore implements the repository on database/sql for the
// embedded SQLite backend and for MySQL.
package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"tracker/internal/errors"
	"tracker/internal/repository"
	"tracker/internal/repository/migrations"
)

// Options tunes a Store. Zero timeouts leave the caller's context alone.
type Options struct {
	QueryTimeout time.Duration
	WriteTimeout time.Duration
	MaxConns     int
}

// Store implements repository.Repository on a *sql.DB.
type Store struct {
	db       *sql.DB
	q        *Queries
	locker   repository.Locker
	classify ConflictClassifier
	opts     Options
}

var _ repository.Repository = (*Store)(nil)

// New wraps an already migrated database.
func New(db *sql.DB, d migrations.Dialect, locker repository.Locker, classify ConflictClassifier, opts Options) *Store {
	return &Store{
		db:       db,
		q:        NewQueries(d),
		locker:   locker,
		classify: classify,
		opts:     opts,
	}
}

// OpenSQLite opens (creating if needed) the SQLite database at path and
// migrates it. ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// One connection keeps ":memory:" databases alive and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, errors.NewDatabaseError("configure database", err)
		}
	}

	if err := migrations.Run(ctx, db, migrations.SQLite); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return New(db, migrations.SQLite, NewMemoryLocker(), IsSQLiteUniqueViolation, opts), nil
}

// OpenMySQL connects to dsn and migrates the schema.
func OpenMySQL(ctx context.Context, dsn string, opts Options) (*Store, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, errors.NewInvalidInputError("dsn", "<redacted>", err.Error())
	}
	// Report matched rather than changed rows so an update that rewrites the
	// same values is not mistaken for a missing record.
	cfg.ClientFoundRows = true
	cfg.ParseTime = false

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	db := sql.OpenDB(connector)
	if opts.MaxConns > 0 {
		db.SetMaxOpenConns(opts.MaxConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, HandleDatabaseError("connect", err)
	}

	if err := migrations.Run(ctx, db, migrations.MySQL); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return New(db, migrations.MySQL, NewMySQLLocker(db), IsMySQLUniqueViolation, opts), nil
}

// IsSQLiteUniqueViolation reports a UNIQUE constraint failure from modernc sqlite.
func IsSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !stderrors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE"))
}

// IsMySQLUniqueViolation reports ER_DUP_ENTRY.
func IsMySQLUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	return stderrors.As(err, &me) && me.Number == 1062
}

// ActiveTimerConflict rewrites a unique violation on time_entries into the
// conflict the services report to users.
func ActiveTimerConflict(err error) error {
	if errors.IsErrorType(err, errors.ErrorTypeConflict) {
		appErr, _ := errors.AsAppError(err)
		return errors.NewConflictError("time entry", "user already has an active timer", appErr.Cause)
	}
	return err
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// LockUser delegates to the backend's Locker.
func (s *Store) LockUser(ctx context.Context, userID string) (func(), error) {
	return s.locker.LockUser(ctx, userID)
}

func (s *Store) read(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.QueryTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.QueryTimeout)
	}
	return ctx, func() {}
}

func (s *Store) write(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.WriteTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.WriteTimeout)
	}
	return ctx, func() {}
}

func idString(id int64) string {
	return fmt.Sprintf("%d", id)
}

// CreateTimeEntry creates a new time entry
func (s *Store) CreateTimeEntry(ctx context.Context, entry *repository.TimeEntry) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	id, err := ExecuteWithLastInsertID(ctx, s.db, s.classify, s.q.InsertTimeEntry, TimeEntryArgs(entry)...)
	if err != nil {
		return ActiveTimerConflict(err)
	}

	entry.ID = id
	return nil
}

// GetTimeEntry retrieves a time entry of the user by ID
func (s *Store) GetTimeEntry(ctx context.Context, userID string, id int64) (*repository.TimeEntry, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return QuerySingle(ctx, s.db, s.q.GetTimeEntry, ScanTimeEntry, "time entry", idString(id), id, userID)
}

// UpdateTimeEntry updates an existing time entry
func (s *Store) UpdateTimeEntry(ctx context.Context, entry *repository.TimeEntry) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	err := ExecuteWithRowsAffected(ctx, s.db, s.classify, s.q.UpdateTimeEntry, "time entry", idString(entry.ID), UpdateTimeEntryArgs(entry)...)
	return ActiveTimerConflict(err)
}

// DeleteTimeEntry deletes a time entry of the user by ID
func (s *Store) DeleteTimeEntry(ctx context.Context, userID string, id int64) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	return ExecuteWithRowsAffected(ctx, s.db, s.classify, s.q.DeleteTimeEntry, "time entry", idString(id), id, userID)
}

// ListActiveTimeEntries returns the user's entries without a stop time,
// oldest first.
func (s *Store) ListActiveTimeEntries(ctx context.Context, userID string) ([]*repository.TimeEntry, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return QueryMultiple(ctx, s.db, s.q.ListActive, ScanTimeEntries, "time entries", userID)
}

// SearchTimeEntries searches the user's time entries
func (s *Store) SearchTimeEntries(ctx context.Context, userID string, opts repository.SearchOptions) ([]*repository.TimeEntry, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	query, args := s.q.Search(userID, opts)
	return QueryMultiple(ctx, s.db, query, ScanTimeEntries, "time entries", args...)
}

// CreateProject creates a new project
func (s *Store) CreateProject(ctx context.Context, project *repository.Project) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	id, err := ExecuteWithLastInsertID(ctx, s.db, s.classify, s.q.InsertProject, ProjectArgs(project)...)
	if err != nil {
		return err
	}
	project.ID = id
	return nil
}

// GetProject retrieves a project of the user by ID
func (s *Store) GetProject(ctx context.Context, userID string, id int64) (*repository.Project, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return QuerySingle(ctx, s.db, s.q.GetProject, ScanProject, "project", idString(id), id, userID)
}

// ListProjects retrieves the user's projects ordered by name
func (s *Store) ListProjects(ctx context.Context, userID string) ([]*repository.Project, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return QueryMultiple(ctx, s.db, s.q.ListProjects, ScanProjects, "projects", userID)
}

// UpdateProject updates an existing project
func (s *Store) UpdateProject(ctx context.Context, project *repository.Project) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	return ExecuteWithRowsAffected(ctx, s.db, s.classify, s.q.UpdateProject, "project", idString(project.ID), UpdateProjectArgs(project)...)
}

// CreateClient creates a new client
func (s *Store) CreateClient(ctx context.Context, client *repository.Client) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	id, err := ExecuteWithLastInsertID(ctx, s.db, s.classify, s.q.InsertClient, client.UserID, client.Name)
	if err != nil {
		return err
	}
	client.ID = id
	return nil
}

// GetClient retrieves a client of the user by ID
func (s *Store) GetClient(ctx context.Context, userID string, id int64) (*repository.Client, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return QuerySingle(ctx, s.db, s.q.GetClient, ScanClient, "client", idString(id), id, userID)
}

// ListClients retrieves the user's clients ordered by name
func (s *Store) ListClients(ctx context.Context, userID string) ([]*repository.Client, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return QueryMultiple(ctx, s.db, s.q.ListClients, ScanClients, "clients", userID)
}

// CreateUser stores a user whose ID is already assigned.
func (s *Store) CreateUser(ctx context.Context, user *repository.User) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, s.q.InsertUser, user.ID, user.Name); err != nil {
		if s.classify != nil && s.classify(err) {
			return errors.NewConflictError("user", fmt.Sprintf("name %q is already taken", user.Name), err)
		}
		return HandleDatabaseError("create user", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id string) (*repository.User, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return QuerySingle(ctx, s.db, s.q.GetUser, ScanUser, "user", id, id)
}

// GetUserByName retrieves a user by name
func (s *Store) GetUserByName(ctx context.Context, name string) (*repository.User, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return QuerySingle(ctx, s.db, s.q.GetUserByName, ScanUser, "user", name, name)
}

// ListUsers retrieves all users ordered by name
func (s *Store) ListUsers(ctx context.Context) ([]*repository.User, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return QueryMultiple(ctx, s.db, s.q.ListUsers, ScanUsers, "users")
}
