// Package migrations applies the schema of every storage backend. SQL
// migrations are embedded per dialect; data migrations are written in Go
// and registered by version.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed sqlite/*.sql mysql/*.sql postgres/*.sql
var migrationsFS embed.FS

// Migration is one schema version. Either the SQL fields or the Go
// functions are set.
type Migration struct {
	Version  int
	Name     string
	Up       string
	Down     string
	UpFunc   GoMigrationFunc
	DownFunc GoMigrationFunc
}

// GoMigrationFunc runs a data migration inside the migration transaction.
type GoMigrationFunc func(ctx context.Context, tx *sql.Tx, d Dialect) error

var goMigrations = map[int]Migration{}

func registerGoMigration(version int, name string, up, down GoMigrationFunc) {
	if _, exists := goMigrations[version]; exists {
		panic(fmt.Sprintf("duplicate go migration version %d", version))
	}
	goMigrations[version] = Migration{Version: version, Name: name, UpFunc: up, DownFunc: down}
}

// Run applies every pending migration of d in version order.
func Run(ctx context.Context, db *sql.DB, d Dialect) error {
	if err := createMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	dirty, err := getDirtyMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to check migration state: %w", err)
	}
	if len(dirty) > 0 {
		return fmt.Errorf("database is in a dirty state, failed migration(s): %v; repair the schema and remove the rows from schema_migrations", dirty)
	}

	migrations, err := Load(d)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := applyMigration(ctx, db, d, migration); err != nil {
			if !d.TransactionalDDL {
				markDirty(ctx, db, d, migration.Version)
			}
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}
	}

	return nil
}

// Down rolls back applied migrations newer than target, newest first.
func Down(ctx context.Context, db *sql.DB, d Dialect, target int) error {
	migrations, err := Load(d)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if migration.Version <= target || !applied[migration.Version] {
			continue
		}
		if err := revertMigration(ctx, db, d, migration); err != nil {
			return fmt.Errorf("failed to revert migration %d (%s): %w", migration.Version, migration.Name, err)
		}
	}

	return nil
}

// Load returns the SQL and Go migrations of d sorted by version.
func Load(d Dialect) ([]Migration, error) {
	entries, err := fs.ReadDir(migrationsFS, d.Dir)
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int]Migration, len(entries)/2+len(goMigrations))
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}

		version, name := parseFilename(entry.Name())
		if version == 0 {
			continue
		}

		upSQL, err := migrationsFS.ReadFile(path.Join(d.Dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		downFile := strings.Replace(entry.Name(), ".up.sql", ".down.sql", 1)
		downSQL, err := migrationsFS.ReadFile(path.Join(d.Dir, downFile))
		if err != nil {
			return nil, err
		}

		byVersion[version] = Migration{
			Version: version,
			Name:    name,
			Up:      string(upSQL),
			Down:    string(downSQL),
		}
	}

	for version, migration := range goMigrations {
		if _, clash := byVersion[version]; clash {
			return nil, fmt.Errorf("migration version %d defined twice for %s", version, d.Name)
		}
		byVersion[version] = migration
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, migration := range byVersion {
		migrations = append(migrations, migration)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func createMigrationsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		dirty BOOLEAN NOT NULL DEFAULT FALSE
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func getAppliedMigrations(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations WHERE dirty = FALSE")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func getDirtyMigrations(ctx context.Context, db *sql.DB) ([]int, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations WHERE dirty = TRUE ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dirty []int
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		dirty = append(dirty, version)
	}
	return dirty, rows.Err()
}

func markDirty(ctx context.Context, db *sql.DB, d Dialect, version int) {
	query := fmt.Sprintf("INSERT INTO schema_migrations (version, dirty) VALUES (%s, TRUE)", d.Bind(1))
	_, _ = db.ExecContext(ctx, query, version)
}

func applyMigration(ctx context.Context, db *sql.DB, d Dialect, migration Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if migration.UpFunc != nil {
		if err := migration.UpFunc(ctx, tx, d); err != nil {
			return err
		}
	} else if err := execStatements(ctx, tx, migration.Up); err != nil {
		return err
	}

	query := fmt.Sprintf("INSERT INTO schema_migrations (version) VALUES (%s)", d.Bind(1))
	if _, err := tx.ExecContext(ctx, query, migration.Version); err != nil {
		return err
	}

	return tx.Commit()
}

func revertMigration(ctx context.Context, db *sql.DB, d Dialect, migration Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if migration.DownFunc != nil {
		if err := migration.DownFunc(ctx, tx, d); err != nil {
			return err
		}
	} else if migration.UpFunc == nil {
		if err := execStatements(ctx, tx, migration.Down); err != nil {
			return err
		}
	}

	query := fmt.Sprintf("DELETE FROM schema_migrations WHERE version = %s", d.Bind(1))
	if _, err := tx.ExecContext(ctx, query, migration.Version); err != nil {
		return err
	}

	return tx.Commit()
}

// execStatements runs a migration file one statement at a time, so no
// driver needs multi-statement support.
func execStatements(ctx context.Context, tx *sql.Tx, script string) error {
	for _, stmt := range splitStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w\n%s", err, stmt)
		}
	}
	return nil
}

func splitStatements(script string) []string {
	var statements []string
	for _, part := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// parseFilename splits "0003_single_active_timer.up.sql" into 3 and
// "single_active_timer".
func parseFilename(filename string) (int, string) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, ""
	}
	name := strings.TrimSuffix(filename, ".up.sql")
	if i := strings.IndexByte(name, '_'); i >= 0 {
		name = name[i+1:]
	}
	return version, name
}
