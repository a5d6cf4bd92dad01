package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func appliedVersions(t *testing.T, db *sql.DB) []int {
	t.Helper()
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	require.NoError(t, err)
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		require.NoError(t, rows.Scan(&v))
		versions = append(versions, v)
	}
	require.NoError(t, rows.Err())
	return versions
}

func TestLoad_AllDialects(t *testing.T) {
	for _, d := range []Dialect{SQLite, MySQL, Postgres} {
		t.Run(d.Name, func(t *testing.T) {
			migrations, err := Load(d)
			require.NoError(t, err)
			require.Len(t, migrations, 3)

			assert.Equal(t, 1, migrations[0].Version)
			assert.Equal(t, "init", migrations[0].Name)
			assert.NotEmpty(t, migrations[0].Up)
			assert.NotEmpty(t, migrations[0].Down)

			assert.Equal(t, 2, migrations[1].Version)
			assert.NotNil(t, migrations[1].UpFunc)

			assert.Equal(t, 3, migrations[2].Version)
			assert.Equal(t, "single_active_timer", migrations[2].Name)
		})
	}
}

func TestRun_SQLite(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	require.NoError(t, Run(ctx, db, SQLite))
	assert.Equal(t, []int{1, 2, 3}, appliedVersions(t, db))

	// Idempotent.
	require.NoError(t, Run(ctx, db, SQLite))
	assert.Equal(t, []int{1, 2, 3}, appliedVersions(t, db))
}

func TestRun_EnforcesSingleActiveTimer(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	require.NoError(t, Run(ctx, db, SQLite))

	_, err := db.Exec(`INSERT INTO users (id, name) VALUES ('u1', 'alice')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO time_entries (user_id, day, start) VALUES ('u1', '2024-03-15', '09:00:00')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO time_entries (user_id, day, start) VALUES ('u1', '2024-03-15', '10:00:00')`)
	assert.Error(t, err, "second active timer must be rejected")

	_, err = db.Exec(`INSERT INTO time_entries (user_id, day, start, stop, duration) VALUES ('u1', '2024-03-15', '07:00:00', '08:00:00', 1)`)
	assert.NoError(t, err, "closed entries are unrestricted")
}

func TestRun_DirtyDatabase(t *testing.T) {
	db := openSQLite(t)

	_, err := db.Exec(`
		CREATE TABLE schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			dirty BOOLEAN NOT NULL DEFAULT FALSE
		)
	`)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO schema_migrations (version, dirty) VALUES (1, TRUE)")
	require.NoError(t, err)

	err = Run(context.Background(), db, SQLite)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is in a dirty state")
	assert.Contains(t, err.Error(), "failed migration(s): [1]")
}

func TestBackfillDurations(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	migrations, err := Load(SQLite)
	require.NoError(t, err)
	require.NoError(t, createMigrationsTable(ctx, db))
	require.NoError(t, applyMigration(ctx, db, SQLite, migrations[0]))

	_, err = db.Exec(`INSERT INTO users (id, name) VALUES ('u1', 'alice')`)
	require.NoError(t, err)
	_, err = db.Exec(`
		INSERT INTO time_entries (user_id, day, start, stop, duration) VALUES
		('u1', '2024-03-14', '09:00', '11:45', NULL),
		('u1', '2024-03-14', '12:00:00', '12:20:00', 5),
		('u1', '2024-03-15', '08:00', NULL, 3)
	`)
	require.NoError(t, err)

	require.NoError(t, Run(ctx, db, SQLite))

	rows, err := db.Query("SELECT start, stop, duration FROM time_entries ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	type result struct {
		start    string
		stop     sql.NullString
		duration sql.NullInt64
	}
	var got []result
	for rows.Next() {
		var r result
		require.NoError(t, rows.Scan(&r.start, &r.stop, &r.duration))
		got = append(got, r)
	}
	require.Len(t, got, 3)

	assert.Equal(t, "09:00:00", got[0].start)
	assert.Equal(t, "11:45:00", got[0].stop.String)
	assert.Equal(t, int64(3), got[0].duration.Int64)

	assert.Equal(t, int64(5), got[1].duration.Int64, "existing durations are kept")

	assert.Equal(t, "08:00:00", got[2].start)
	assert.False(t, got[2].stop.Valid)
	assert.False(t, got[2].duration.Valid, "active entries carry no duration")
}

func TestDown(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	require.NoError(t, Run(ctx, db, SQLite))

	require.NoError(t, Down(ctx, db, SQLite, 1))
	assert.Equal(t, []int{1}, appliedVersions(t, db))

	require.NoError(t, Down(ctx, db, SQLite, 0))
	assert.Empty(t, appliedVersions(t, db))

	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'time_entries'").Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestParseFilename(t *testing.T) {
	v, name := parseFilename("0003_single_active_timer.up.sql")
	assert.Equal(t, 3, v)
	assert.Equal(t, "single_active_timer", name)

	v, _ = parseFilename("README.up.sql")
	assert.Equal(t, 0, v)
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("CREATE TABLE a (id INT);\n\n  CREATE INDEX i ON a(id);\n")
	assert.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE INDEX i ON a(id)"}, stmts)
}

func TestBinder(t *testing.T) {
	b := NewBinder(Postgres)
	assert.Equal(t, "$1", b.Add("x"))
	assert.Equal(t, "$2", b.Add(2))
	assert.Equal(t, []interface{}{"x", 2}, b.Args())

	q := NewBinder(MySQL)
	assert.Equal(t, "?", q.Add(1))
	assert.Equal(t, "DATE_FORMAT(day, '%Y-%m-%d')", MySQL.DateText("day"))
	assert.Equal(t, "to_char(start, 'HH24:MI:SS')", Postgres.TimeText("start"))
	assert.Equal(t, "$1::date", Postgres.DateArg("$1"))
}
