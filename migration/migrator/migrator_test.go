package migrator_test

import (
	"errors"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ora2pg/dbschema"
	"github.com/stokaro/ora2pg/dbschema/types"
	"github.com/stokaro/ora2pg/migration/migrator"
)

func newMockConn(c *qt.C) (*dbschema.DatabaseConnection, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { _ = db.Close() })
	return dbschema.NewDatabaseConnection(db, types.DBInfo{}), mock
}

func testMigrations() migrator.MigrationList {
	return migrator.NewMigrationList(
		migrator.CreateMigrationFromSQL(2, "Create view", "CREATE OR REPLACE VIEW HR.EMP_V AS SELECT * FROM HR.EMPLOYEES;", "DROP VIEW IF EXISTS HR.EMP_V;"),
		migrator.CreateMigrationFromSQL(1, "Create package", "CREATE DOMAIN hr_cfg_pkg_money_t AS numeric;", "DROP DOMAIN IF EXISTS hr_cfg_pkg_money_t;"),
	)
}

// expectApplied expects the schema_migrations bootstrap and the applied
// versions query.
func expectApplied(mock sqlmock.Sqlmock, versions ...int) {
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"version"})
	for _, v := range versions {
		rows.AddRow(v)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations ORDER BY version")).WillReturnRows(rows)
}

func expectUp(mock sqlmock.Sqlmock, stmt, record string) {
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(record)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestNewMigrator_SortsMigrations(t *testing.T) {
	c := qt.New(t)

	m := migrator.NewMigrator(nil, testMigrations())
	c.Assert(m.Migrations(), qt.HasLen, 2)
	c.Assert(m.Migrations()[0].Version, qt.Equals, 1)
	c.Assert(m.Migrations()[1].Version, qt.Equals, 2)

	m2 := m.WithLogger(slog.Default())
	c.Assert(m2, qt.Not(qt.Equals), m)
	c.Assert(m2.Migrations(), qt.DeepEquals, m.Migrations())
}

func TestMigrator_MigrateUp(t *testing.T) {
	tests := []struct {
		name    string
		applied []int
		expect  func(sqlmock.Sqlmock)
	}{
		{
			name: "fresh database",
			expect: func(mock sqlmock.Sqlmock) {
				expectUp(mock, "CREATE DOMAIN hr_cfg_pkg_money_t AS numeric", "INSERT INTO schema_migrations (version, description) VALUES (1, 'Create package')")
				expectUp(mock, "CREATE OR REPLACE VIEW HR.EMP_V AS SELECT * FROM HR.EMPLOYEES", "INSERT INTO schema_migrations (version, description) VALUES (2, 'Create view')")
			},
		},
		{
			name:    "skips applied",
			applied: []int{1},
			expect: func(mock sqlmock.Sqlmock) {
				expectUp(mock, "CREATE OR REPLACE VIEW HR.EMP_V", "VALUES (2, 'Create view')")
			},
		},
		{
			name:    "lower version generated after a higher one",
			applied: []int{2},
			expect: func(mock sqlmock.Sqlmock) {
				expectUp(mock, "CREATE DOMAIN hr_cfg_pkg_money_t", "VALUES (1, 'Create package')")
			},
		},
		{
			name:    "nothing pending",
			applied: []int{1, 2},
			expect:  func(sqlmock.Sqlmock) {},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			conn, mock := newMockConn(c)

			expectApplied(mock, tt.applied...)
			tt.expect(mock)

			err := migrator.NewMigrator(conn, testMigrations()).MigrateUp(t.Context())
			c.Assert(err, qt.IsNil)
			c.Assert(mock.ExpectationsWereMet(), qt.IsNil)
		})
	}
}

func TestMigrator_MigrateUp_RollsBackOnFailure(t *testing.T) {
	c := qt.New(t)
	conn, mock := newMockConn(c)

	expectApplied(mock, 1)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE OR REPLACE VIEW HR.EMP_V")).WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	err := migrator.NewMigrator(conn, testMigrations()).MigrateUp(t.Context())
	c.Assert(err, qt.ErrorMatches, "failed to apply migration 2: statement 1: failed to execute SQL: relation does not exist")
	c.Assert(mock.ExpectationsWereMet(), qt.IsNil)
}

func TestMigrator_MigrateDown(t *testing.T) {
	c := qt.New(t)
	conn, mock := newMockConn(c)

	expectApplied(mock, 1, 2)
	expectUp(mock, "DROP VIEW IF EXISTS HR.EMP_V", "DELETE FROM schema_migrations WHERE version = 2")

	err := migrator.NewMigrator(conn, testMigrations()).MigrateDown(t.Context())
	c.Assert(err, qt.IsNil)
	c.Assert(mock.ExpectationsWereMet(), qt.IsNil)
}

func TestMigrator_MigrateDown_Errors(t *testing.T) {
	tests := []struct {
		name    string
		applied []int
		err     string
	}{
		{
			name: "nothing applied",
			err:  "no applied migrations to revert",
		},
		{
			name:    "files removed",
			applied: []int{1, 7},
			err:     "migration 7 is applied but has no migration files",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			conn, mock := newMockConn(c)

			expectApplied(mock, tt.applied...)

			err := migrator.NewMigrator(conn, testMigrations()).MigrateDown(t.Context())
			c.Assert(err, qt.ErrorMatches, tt.err)
			c.Assert(mock.ExpectationsWereMet(), qt.IsNil)
		})
	}
}

func TestMigrator_MigrateTo(t *testing.T) {
	tests := []struct {
		name    string
		applied []int
		target  int
		expect  func(sqlmock.Sqlmock)
	}{
		{
			name:    "revert everything",
			applied: []int{1, 2},
			target:  0,
			expect: func(mock sqlmock.Sqlmock) {
				expectUp(mock, "DROP VIEW IF EXISTS HR.EMP_V", "DELETE FROM schema_migrations WHERE version = 2")
				expectUp(mock, "DROP DOMAIN IF EXISTS hr_cfg_pkg_money_t", "DELETE FROM schema_migrations WHERE version = 1")
			},
		},
		{
			name:   "apply up to a version",
			target: 1,
			expect: func(mock sqlmock.Sqlmock) {
				expectUp(mock, "CREATE DOMAIN hr_cfg_pkg_money_t", "VALUES (1, 'Create package')")
			},
		},
		{
			name:    "revert above and fill below",
			applied: []int{2},
			target:  1,
			expect: func(mock sqlmock.Sqlmock) {
				expectUp(mock, "DROP VIEW IF EXISTS HR.EMP_V", "DELETE FROM schema_migrations WHERE version = 2")
				expectUp(mock, "CREATE DOMAIN hr_cfg_pkg_money_t", "VALUES (1, 'Create package')")
			},
		},
		{
			name:    "already there",
			applied: []int{1},
			target:  1,
			expect:  func(sqlmock.Sqlmock) {},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			conn, mock := newMockConn(c)

			expectApplied(mock, tt.applied...)
			tt.expect(mock)

			err := migrator.NewMigrator(conn, testMigrations()).MigrateTo(t.Context(), tt.target)
			c.Assert(err, qt.IsNil)
			c.Assert(mock.ExpectationsWereMet(), qt.IsNil)
		})
	}
}

func TestMigrator_GetMigrationStatus(t *testing.T) {
	c := qt.New(t)
	conn, mock := newMockConn(c)

	expectApplied(mock, 1, 9)

	status, err := migrator.NewMigrator(conn, testMigrations()).GetMigrationStatus(t.Context())
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.DeepEquals, &migrator.MigrationStatus{
		CurrentVersion: 9,
		Applied:        []int{1, 9},
		Pending:        []int{2},
		Orphaned:       []int{9},
	})
	c.Assert(mock.ExpectationsWereMet(), qt.IsNil)
}

func TestMigrator_GetAppliedMigrations(t *testing.T) {
	c := qt.New(t)
	conn, mock := newMockConn(c)

	expectApplied(mock, 1, 2)

	applied, err := migrator.NewMigrator(conn, testMigrations()).GetAppliedMigrations(t.Context())
	c.Assert(err, qt.IsNil)
	c.Assert(applied, qt.DeepEquals, []int{1, 2})
}

func TestMigrator_DryRun(t *testing.T) {
	c := qt.New(t)
	conn, mock := newMockConn(c)
	conn.Writer().SetDryRun(true)

	expectApplied(mock)

	err := migrator.NewMigrator(conn, testMigrations()).MigrateUp(t.Context())
	c.Assert(err, qt.IsNil)
	c.Assert(mock.ExpectationsWereMet(), qt.IsNil)
}
