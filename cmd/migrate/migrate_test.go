package migrate_test

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ora2pg/cmd/migrate"
	"github.com/stokaro/ora2pg/dbschema"
	"github.com/stokaro/ora2pg/dbschema/types"
	"github.com/stokaro/ora2pg/migration/migrator"
)

func TestStatus(t *testing.T) {
	c := qt.New(t)
	db, mock, err := sqlmock.New()
	c.Assert(err, qt.IsNil)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations ORDER BY version")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1).AddRow(5))

	list := migrator.NewMigrationList(
		migrator.CreateMigrationFromSQL(2, "Views", "SELECT 1;", "SELECT 1;"),
		migrator.CreateMigrationFromSQL(1, "Hr Cfg Pkg", "SELECT 1;", "SELECT 1;"),
	)
	m := migrator.NewMigrator(dbschema.NewDatabaseConnection(db, types.DBInfo{}), list)

	var out bytes.Buffer
	c.Assert(migrate.Status(t.Context(), m, &out), qt.IsNil)
	c.Assert(mock.ExpectationsWereMet(), qt.IsNil)

	lines := strings.Split(out.String(), "\n")
	var hrLine, viewsLine, orphanLine string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "Hr Cfg Pkg"):
			hrLine = l
		case strings.Contains(l, "Views"):
			viewsLine = l
		case strings.Contains(l, "no migration files"):
			orphanLine = l
		}
	}
	c.Assert(hrLine, qt.Contains, "yes")
	c.Assert(viewsLine, qt.Not(qt.Contains), "yes")
	c.Assert(orphanLine, qt.Contains, "orphaned")
	c.Assert(out.String(), qt.Contains, "1 PENDING")
}

func TestNewMigrateCommand(t *testing.T) {
	c := qt.New(t)

	cmd := migrate.NewMigrateCommand()
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
		c.Assert(sub.Flags().Lookup("db-url"), qt.IsNotNil)
		c.Assert(sub.Flags().Lookup("dry-run"), qt.IsNotNil)
	}
	c.Assert(names, qt.DeepEquals, []string{"down", "status", "to", "up"})
}
