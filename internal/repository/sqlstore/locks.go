package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"tracker/internal/errors"
)

// MemoryLocker serialises writes per user inside one process. It is enough
// for SQLite, where the database file has a single writer anyway.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewMemoryLocker creates an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]chan struct{})}
}

// LockUser blocks until the user's lock is free or ctx is done.
func (l *MemoryLocker) LockUser(ctx context.Context, userID string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[userID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[userID] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, errors.FromContext("lock user", ctx.Err())
	}
}

// defaultLockWait bounds GET_LOCK when the context has no deadline.
const defaultLockWait = 10 * time.Second

// MySQLLocker uses named locks, which belong to the session that took them,
// so each lock pins its own connection until released.
type MySQLLocker struct {
	db *sql.DB
}

// NewMySQLLocker creates a MySQLLocker on db.
func NewMySQLLocker(db *sql.DB) *MySQLLocker {
	return &MySQLLocker{db: db}
}

// LockUser acquires GET_LOCK('tracker:user:<id>').
func (l *MySQLLocker) LockUser(ctx context.Context, userID string) (func(), error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, HandleDatabaseError("acquire lock connection", err)
	}

	wait := defaultLockWait
	if deadline, ok := ctx.Deadline(); ok {
		wait = time.Until(deadline)
	}
	seconds := int(wait / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	name := LockName(userID)
	var acquired sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", name, seconds).Scan(&acquired); err != nil {
		conn.Close()
		return nil, HandleDatabaseError("get lock", err)
	}
	if !acquired.Valid || acquired.Int64 != 1 {
		conn.Close()
		return nil, errors.NewTimeoutError("lock user", fmt.Sprintf("%ds", seconds))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_, _ = conn.ExecContext(context.Background(), "DO RELEASE_LOCK(?)", name)
			conn.Close()
		})
	}, nil
}

// LockName is the named lock used for a user across backends.
func LockName(userID string) string {
	return "tracker:user:" + userID
}
