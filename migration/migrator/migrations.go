package migrator

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/stokaro/ora2pg/dbschema"
	"github.com/stokaro/ora2pg/internal/verify"
)

const migrationsSchemaSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	description TEXT NOT NULL,
	applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const getAppliedSQL = `SELECT version FROM schema_migrations ORDER BY version`

// recordMigrationSQL takes the version and the quoted description.
const recordMigrationSQL = `INSERT INTO schema_migrations (version, description) VALUES (%d, %s)`

const deleteMigrationSQL = `DELETE FROM schema_migrations WHERE version = %d`

// MigrationFunc represents a migration function that operates on a database connection
type MigrationFunc func(context.Context, *dbschema.DatabaseConnection) error

// SplitSQLStatements splits a script into statements with the PostgreSQL
// parser, so semicolons inside dollar-quoted routine bodies do not split.
func SplitSQLStatements(sql string) ([]string, error) {
	return verify.Split(sql)
}

// MigrationFuncFromSQLFilename returns a migration function that reads SQL from a file
// in the provided filesystem and executes it statement by statement through
// the connection writer, inside the migration transaction.
func MigrationFuncFromSQLFilename(filename string, fsys fs.FS) MigrationFunc {
	return func(ctx context.Context, conn *dbschema.DatabaseConnection) error {
		sql, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return fmt.Errorf("failed to read migration file: %w", err)
		}
		return executeSQLStatements(ctx, conn, string(sql))
	}
}

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	Up          MigrationFunc
	Down        MigrationFunc
}

// CreateMigrationFromSQL creates a migration from SQL strings, typically a
// transpiled script and its drop script.
func CreateMigrationFromSQL(version int, description, upSQL, downSQL string) *Migration {
	return &Migration{
		Version:     version,
		Description: description,
		Up: func(ctx context.Context, conn *dbschema.DatabaseConnection) error {
			return executeSQLStatements(ctx, conn, upSQL)
		},
		Down: func(ctx context.Context, conn *dbschema.DatabaseConnection) error {
			return executeSQLStatements(ctx, conn, downSQL)
		},
	}
}

func executeSQLStatements(ctx context.Context, conn *dbschema.DatabaseConnection, sql string) error {
	statements, err := SplitSQLStatements(sql)
	if err != nil {
		return err
	}
	for i, stmt := range statements {
		if err := conn.Writer().ExecuteSQL(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}
