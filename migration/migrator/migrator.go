package migrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lib/pq"

	"github.com/stokaro/ora2pg/dbschema"
	"github.com/stokaro/ora2pg/dbschema/postgres"
)

// MigrationStatus compares the known migrations with schema_migrations.
type MigrationStatus struct {
	CurrentVersion int   `json:"current_version"`
	Applied        []int `json:"applied"`
	Pending        []int `json:"pending"`
	// Orphaned lists applied versions that have no migration files.
	Orphaned []int `json:"orphaned,omitempty"`
}

// Migrator applies transpiled migrations to a PostgreSQL database and records
// them in schema_migrations. A migration is pending while its version is
// missing from that table, whatever the highest applied version is.
type Migrator struct {
	conn       *dbschema.DatabaseConnection
	migrations MigrationList
	logger     *slog.Logger
}

// NewMigrator creates a migrator over the migrations of provider.
func NewMigrator(conn *dbschema.DatabaseConnection, provider MigrationProvider) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: NewMigrationList(provider.Migrations()...),
		logger:     slog.Default(),
	}
}

// WithLogger returns a copy of the migrator that logs to l.
func (m *Migrator) WithLogger(l *slog.Logger) *Migrator {
	tmp := *m
	tmp.logger = l
	return &tmp
}

// Migrations returns the known migrations in version order.
func (m *Migrator) Migrations() []*Migration {
	return m.migrations
}

// Initialize creates schema_migrations if it does not exist. It runs on the
// connection directly, so a dry run still creates it.
func (m *Migrator) Initialize(ctx context.Context) error {
	if _, err := m.conn.ExecContext(ctx, migrationsSchemaSQL); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", postgres.WrapError(err))
	}
	return nil
}

// GetAppliedMigrations returns the applied versions in ascending order.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) ([]int, error) {
	if err := m.Initialize(ctx); err != nil {
		return nil, err
	}

	rows, err := m.conn.QueryContext(ctx, getAppliedSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", postgres.WrapError(err))
	}
	defer rows.Close()

	var applied []int
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied = append(applied, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migration rows: %w", err)
	}
	return applied, nil
}

// GetMigrationStatus reports applied, pending and orphaned versions.
func (m *Migrator) GetMigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status := &MigrationStatus{
		Applied: applied,
		Pending: m.pending(applied),
	}
	if n := len(applied); n > 0 {
		status.CurrentVersion = applied[n-1]
	}
	for _, version := range applied {
		if _, ok := m.migrations.Find(version); !ok {
			status.Orphaned = append(status.Orphaned, version)
		}
	}
	return status, nil
}

// MigrateUp applies every pending migration in version order.
func (m *Migrator) MigrateUp(ctx context.Context) error {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	return m.up(ctx, m.pending(applied))
}

// MigrateDown reverts the latest applied migration.
func (m *Migrator) MigrateDown(ctx context.Context) error {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return errors.New("no applied migrations to revert")
	}
	return m.down(ctx, applied[len(applied)-1:])
}

// MigrateTo reverts the applied migrations above version, newest first, and
// then applies the pending ones up to version. Version 0 reverts everything.
func (m *Migrator) MigrateTo(ctx context.Context, version int) error {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	var revert, apply []int
	for _, v := range applied {
		if v > version {
			revert = append(revert, v)
		}
	}
	for _, v := range m.pending(applied) {
		if v <= version {
			apply = append(apply, v)
		}
	}
	if len(revert) == 0 && len(apply) == 0 {
		m.logger.Info("Already at target version", "version", version)
		return nil
	}
	if err := m.down(ctx, revert); err != nil {
		return err
	}
	return m.up(ctx, apply)
}

func (m *Migrator) pending(applied []int) []int {
	var out []int
	for _, mig := range m.migrations {
		if !slices.Contains(applied, mig.Version) {
			out = append(out, mig.Version)
		}
	}
	return out
}

func (m *Migrator) up(ctx context.Context, versions []int) error {
	if len(versions) == 0 {
		m.logger.Info("No migrations to apply")
		return nil
	}
	for _, version := range versions {
		mig, _ := m.migrations.Find(version)
		m.logger.Info("Applying migration", "version", version, "description", mig.Description)
		record := fmt.Sprintf(recordMigrationSQL, version, pq.QuoteLiteral(mig.Description))
		if err := m.apply(ctx, mig.Up, record); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", version, err)
		}
	}
	m.logger.Info("Migrated up", "applied", len(versions))
	return nil
}

// down reverts versions from the last to the first. Every version needs its
// files; nothing is reverted when one is missing.
func (m *Migrator) down(ctx context.Context, versions []int) error {
	migs := make([]*Migration, len(versions))
	for i, version := range versions {
		mig, ok := m.migrations.Find(version)
		if !ok {
			return fmt.Errorf("migration %d is applied but has no migration files", version)
		}
		migs[i] = mig
	}
	for _, mig := range slices.Backward(migs) {
		m.logger.Info("Reverting migration", "version", mig.Version, "description", mig.Description)
		if err := m.apply(ctx, mig.Down, fmt.Sprintf(deleteMigrationSQL, mig.Version)); err != nil {
			return fmt.Errorf("failed to revert migration %d: %w", mig.Version, err)
		}
	}
	return nil
}

// apply runs one direction of a migration and its schema_migrations update
// in a single transaction.
func (m *Migrator) apply(ctx context.Context, fn MigrationFunc, bookkeeping string) error {
	writer := m.conn.Writer()
	if err := writer.BeginTransaction(ctx); err != nil {
		return err
	}
	if err := fn(ctx, m.conn); err != nil {
		_ = writer.RollbackTransaction()
		return err
	}
	if err := writer.ExecuteSQL(ctx, bookkeeping); err != nil {
		_ = writer.RollbackTransaction()
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return writer.CommitTransaction()
}
