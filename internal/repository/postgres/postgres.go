// Package postgres implements the repository on a pgx connection pool.
// Schema migrations run through database/sql with the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"tracker/internal/errors"
	"tracker/internal/repository"
	"tracker/internal/repository/migrations"
	"tracker/internal/repository/sqlstore"
)

const uniqueViolation = "23505"

// Options tunes the pool and per-statement timeouts.
type Options struct {
	QueryTimeout time.Duration
	WriteTimeout time.Duration
	MaxConns     int32
}

// Store implements repository.Repository on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	q    *sqlstore.Queries
	opts Options
}

var _ repository.Repository = (*Store)(nil)

// Open migrates the database behind dsn and connects a pool to it.
func Open(ctx context.Context, dsn string, opts Options) (*Store, error) {
	if err := Migrate(ctx, dsn); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.NewInvalidInputError("dsn", "<redacted>", err.Error())
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.NewDatabaseError("create connection pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, handleError("connect", err)
	}

	return &Store{pool: pool, q: sqlstore.NewQueries(migrations.Postgres), opts: opts}, nil
}

// Migrate applies pending schema migrations to the database behind dsn.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return errors.NewDatabaseError("open database", err)
	}
	defer db.Close()

	if err := migrations.Run(ctx, db, migrations.Postgres); err != nil {
		return errors.NewDatabaseError("run migrations", err)
	}
	return nil
}

// IsUniqueViolation reports SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func handleError(operation string, err error) error {
	if IsUniqueViolation(err) {
		return errors.NewConflictError("record", "unique constraint violated", err)
	}
	return sqlstore.HandleDatabaseError(operation, err)
}

func notFoundOr(err error, entityType, id string) error {
	if stderrors.Is(err, pgx.ErrNoRows) {
		return errors.NewNotFoundError(entityType, id)
	}
	return handleError("scan "+entityType, err)
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

func querySingle[T any](ctx context.Context, pool *pgxpool.Pool, query string, scan func(sqlstore.Scanner) (*T, error), entityType, id string, args ...interface{}) (*T, error) {
	result, err := scan(pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err, entityType, id)
	}
	return result, nil
}

func queryMultiple[T any](ctx context.Context, pool *pgxpool.Pool, query string, scan func(sqlstore.Rows) ([]*T, error), entityType string, args ...interface{}) ([]*T, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, handleError("query "+entityType, err)
	}
	defer rows.Close()

	results, err := scan(rows)
	if err != nil {
		return nil, handleError("scan "+entityType, err)
	}
	return results, nil
}

func (s *Store) insertReturningID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := s.pool.QueryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, handleError("execute query", err)
	}
	return id, nil
}

func (s *Store) execAffectingOne(ctx context.Context, query, entityType, id string, args ...interface{}) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return handleError("execute query", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError(entityType, id)
	}
	return nil
}

func idString(id int64) string {
	return fmt.Sprintf("%d", id)
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// LockUser takes a session advisory lock keyed by the user on a dedicated
// connection. The connection returns to the pool on unlock.
func (s *Store) LockUser(ctx context.Context, userID string) (func(), error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, handleError("acquire lock connection", err)
	}

	name := sqlstore.LockName(userID)
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock(hashtext($1))", name); err != nil {
		conn.Release()
		return nil, handleError("advisory lock", err)
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		if _, err := conn.Exec(context.Background(), "SELECT pg_advisory_unlock(hashtext($1))", name); err != nil {
			// A failed unlock leaves the lock on the session; drop the
			// connection so the server releases it.
			conn.Conn().Close(context.Background())
		}
		conn.Release()
	}, nil
}

// CreateTimeEntry creates a new time entry
func (s *Store) CreateTimeEntry(ctx context.Context, entry *repository.TimeEntry) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	id, err := s.insertReturningID(ctx, s.q.InsertTimeEntry, sqlstore.TimeEntryArgs(entry)...)
	if err != nil {
		return sqlstore.ActiveTimerConflict(err)
	}
	entry.ID = id
	return nil
}

// GetTimeEntry retrieves a time entry of the user by ID
func (s *Store) GetTimeEntry(ctx context.Context, userID string, id int64) (*repository.TimeEntry, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return querySingle(ctx, s.pool, s.q.GetTimeEntry, sqlstore.ScanTimeEntry, "time entry", idString(id), id, userID)
}

// UpdateTimeEntry updates an existing time entry
func (s *Store) UpdateTimeEntry(ctx context.Context, entry *repository.TimeEntry) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	err := s.execAffectingOne(ctx, s.q.UpdateTimeEntry, "time entry", idString(entry.ID), sqlstore.UpdateTimeEntryArgs(entry)...)
	return sqlstore.ActiveTimerConflict(err)
}

// DeleteTimeEntry deletes a time entry of the user by ID
func (s *Store) DeleteTimeEntry(ctx context.Context, userID string, id int64) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	return s.execAffectingOne(ctx, s.q.DeleteTimeEntry, "time entry", idString(id), id, userID)
}

// ListActiveTimeEntries returns the user's entries without a stop time
func (s *Store) ListActiveTimeEntries(ctx context.Context, userID string) ([]*repository.TimeEntry, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return queryMultiple(ctx, s.pool, s.q.ListActive, sqlstore.ScanTimeEntries, "time entries", userID)
}

// SearchTimeEntries searches the user's time entries
func (s *Store) SearchTimeEntries(ctx context.Context, userID string, opts repository.SearchOptions) ([]*repository.TimeEntry, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	query, args := s.q.Search(userID, opts)
	return queryMultiple(ctx, s.pool, query, sqlstore.ScanTimeEntries, "time entries", args...)
}

// CreateProject creates a new project
func (s *Store) CreateProject(ctx context.Context, project *repository.Project) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	id, err := s.insertReturningID(ctx, s.q.InsertProject, sqlstore.ProjectArgs(project)...)
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

	return querySingle(ctx, s.pool, s.q.GetProject, sqlstore.ScanProject, "project", idString(id), id, userID)
}

// ListProjects retrieves the user's projects ordered by name
func (s *Store) ListProjects(ctx context.Context, userID string) ([]*repository.Project, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return queryMultiple(ctx, s.pool, s.q.ListProjects, sqlstore.ScanProjects, "projects", userID)
}

// UpdateProject updates an existing project
func (s *Store) UpdateProject(ctx context.Context, project *repository.Project) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	return s.execAffectingOne(ctx, s.q.UpdateProject, "project", idString(project.ID), sqlstore.UpdateProjectArgs(project)...)
}

// CreateClient creates a new client
func (s *Store) CreateClient(ctx context.Context, client *repository.Client) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	id, err := s.insertReturningID(ctx, s.q.InsertClient, client.UserID, client.Name)
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

	return querySingle(ctx, s.pool, s.q.GetClient, sqlstore.ScanClient, "client", idString(id), id, userID)
}

// ListClients retrieves the user's clients ordered by name
func (s *Store) ListClients(ctx context.Context, userID string) ([]*repository.Client, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return queryMultiple(ctx, s.pool, s.q.ListClients, sqlstore.ScanClients, "clients", userID)
}

// CreateUser stores a user whose ID is already assigned.
func (s *Store) CreateUser(ctx context.Context, user *repository.User) error {
	ctx, cancel := s.write(ctx)
	defer cancel()

	if _, err := s.pool.Exec(ctx, s.q.InsertUser, user.ID, user.Name); err != nil {
		if IsUniqueViolation(err) {
			return errors.NewConflictError("user", fmt.Sprintf("name %q is already taken", user.Name), err)
		}
		return handleError("create user", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id string) (*repository.User, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return querySingle(ctx, s.pool, s.q.GetUser, sqlstore.ScanUser, "user", id, id)
}

// GetUserByName retrieves a user by name
func (s *Store) GetUserByName(ctx context.Context, name string) (*repository.User, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return querySingle(ctx, s.pool, s.q.GetUserByName, sqlstore.ScanUser, "user", name, name)
}

// ListUsers retrieves all users ordered by name
func (s *Store) ListUsers(ctx context.Context) ([]*repository.User, error) {
	ctx, cancel := s.read(ctx)
	defer cancel()

	return queryMultiple(ctx, s.pool, s.q.ListUsers, sqlstore.ScanUsers, "users")
}
