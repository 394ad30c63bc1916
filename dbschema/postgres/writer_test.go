package postgres_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	qt "github.com/frankban/quicktest"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stokaro/ora2pg/dbschema/postgres"
)

func TestWriter_Transaction(t *testing.T) {
	c := qt.New(t)
	db, mock, err := sqlmock.New()
	c.Assert(err, qt.IsNil)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE t (id integer)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	w := postgres.NewWriter(db)
	c.Assert(w.BeginTransaction(t.Context()), qt.IsNil)
	c.Assert(w.InTransaction(), qt.IsTrue)
	c.Assert(w.BeginTransaction(t.Context()), qt.ErrorMatches, "transaction already in progress")
	c.Assert(w.ExecuteSQL(t.Context(), "CREATE TABLE t (id integer)"), qt.IsNil)
	c.Assert(w.CommitTransaction(), qt.IsNil)
	c.Assert(w.InTransaction(), qt.IsFalse)
	c.Assert(w.CommitTransaction(), qt.ErrorMatches, "no transaction in progress")
	c.Assert(mock.ExpectationsWereMet(), qt.IsNil)
}

func TestWriter_DryRun(t *testing.T) {
	c := qt.New(t)
	db, mock, err := sqlmock.New()
	c.Assert(err, qt.IsNil)
	defer db.Close()

	w := postgres.NewWriter(db)
	w.SetDryRun(true)
	c.Assert(w.IsDryRun(), qt.IsTrue)
	c.Assert(w.BeginTransaction(t.Context()), qt.IsNil)
	c.Assert(w.ExecuteSQL(t.Context(), "DROP TABLE t"), qt.IsNil)
	c.Assert(w.RollbackTransaction(), qt.IsNil)
	c.Assert(mock.ExpectationsWereMet(), qt.IsNil)
}

func TestWriter_EnsureSchemaAndSearchPath(t *testing.T) {
	c := qt.New(t)
	db, mock, err := sqlmock.New()
	c.Assert(err, qt.IsNil)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE SCHEMA IF NOT EXISTS "hr"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`SET search_path TO "hr", "sys"`)).WillReturnResult(sqlmock.NewResult(0, 0))

	w := postgres.NewWriter(db)
	c.Assert(w.EnsureSchema(t.Context(), "HR"), qt.IsNil)
	c.Assert(w.SetSearchPath(t.Context(), "HR", "sys"), qt.IsNil)
	c.Assert(w.SetSearchPath(t.Context()), qt.IsNil)
	c.Assert(mock.ExpectationsWereMet(), qt.IsNil)
}

func TestWriter_ServerError(t *testing.T) {
	c := qt.New(t)
	db, mock, err := sqlmock.New()
	c.Assert(err, qt.IsNil)
	defer db.Close()

	pgErr := &pgconn.PgError{Code: "42P01", Message: `relation "nope" does not exist`, Position: 15}
	mock.ExpectExec("SELECT").WillReturnError(pgErr)

	err = postgres.NewWriter(db).ExecuteSQL(t.Context(), "SELECT * FROM nope")
	c.Assert(err, qt.ErrorMatches, `failed to execute SQL: relation "nope" does not exist \(SQLSTATE 42P01 undefined_table\) at position 15`)
	c.Assert(err, qt.ErrorIs, error(pgErr))

	var serverErr *postgres.ServerError
	c.Assert(errors.As(err, &serverErr), qt.IsTrue)
	c.Assert(serverErr.Condition(), qt.Equals, "undefined_table")
}

func TestWrapError_PassesOtherErrors(t *testing.T) {
	c := qt.New(t)
	err := errors.New("plain")
	c.Assert(postgres.WrapError(err), qt.Equals, err)
}
