package dbschema_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ora2pg/core/platform"
	"github.com/stokaro/ora2pg/dbschema"
	"github.com/stokaro/ora2pg/dbschema/types"
)

func TestNewDatabaseConnection(t *testing.T) {
	c := qt.New(t)
	db, mock, err := sqlmock.New()
	c.Assert(err, qt.IsNil)

	conn := dbschema.NewDatabaseConnection(db, types.DBInfo{Schema: "public"})
	c.Assert(conn.Info().Dialect, qt.Equals, platform.Postgres)
	c.Assert(conn.Reader(), qt.IsNotNil)
	c.Assert(conn.Writer().IsDryRun(), qt.IsFalse)

	mock.ExpectClose()
	c.Assert(conn.Close(), qt.IsNil)
	c.Assert(mock.ExpectationsWereMet(), qt.IsNil)
}

func TestDatabaseConnection_CloseRollsBackOpenTransaction(t *testing.T) {
	c := qt.New(t)
	db, mock, err := sqlmock.New()
	c.Assert(err, qt.IsNil)
	conn := dbschema.NewDatabaseConnection(db, types.DBInfo{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectClose()

	c.Assert(conn.Writer().BeginTransaction(t.Context()), qt.IsNil)
	c.Assert(conn.Close(), qt.IsNil)
	c.Assert(mock.ExpectationsWereMet(), qt.IsNil)
}
