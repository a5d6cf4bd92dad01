package config

import (
	"context"
	"fmt"
	"os"

	"tracker/internal/repository"
	"tracker/internal/repository/postgres"
	"tracker/internal/repository/sqlstore"
)

// CreateRepository opens the backend selected by config.Database.Driver and
// brings its schema up to date.
func CreateRepository(ctx context.Context, config *Config) (repository.Repository, error) {
	db := config.Database
	switch db.Driver {
	case DriverSQLite:
		if err := os.MkdirAll(db.Dir, os.FileMode(db.DirPermissions)); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		repo, err := sqlstore.OpenSQLite(ctx, config.GetDatabasePath(), sqlOptions(db))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	case DriverMySQL:
		repo, err := sqlstore.OpenMySQL(ctx, db.DSN, sqlOptions(db))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	case DriverPostgres:
		repo, err := postgres.Open(ctx, db.DSN, postgres.Options{
			QueryTimeout: db.QueryTimeout,
			WriteTimeout: db.WriteTimeout,
			MaxConns:     int32(db.MaxConns),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	default:
		return nil, &ConfigError{Field: "database.driver", Message: "unsupported driver " + db.Driver}
	}
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository(ctx context.Context) (repository.Repository, error) {
	repo, err := sqlstore.OpenSQLite(ctx, ":memory:", sqlstore.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	return repo, nil
}

func sqlOptions(db DatabaseConfig) sqlstore.Options {
	return sqlstore.Options{
		QueryTimeout: db.QueryTimeout,
		WriteTimeout: db.WriteTimeout,
		MaxConns:     db.MaxConns,
	}
}
