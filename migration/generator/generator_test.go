package generator_test

import (
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-extras/go-kit/must"
	"github.com/spf13/afero"

	"github.com/stokaro/ora2pg/core/transform"
	"github.com/stokaro/ora2pg/migration/generator"
	"github.com/stokaro/ora2pg/migration/migrator"
)

func TestWrite(t *testing.T) {
	c := qt.New(t)
	afs := afero.NewMemMapFs()

	files, err := generator.Write(afs, "migrations", "HR.CFG_PKG", "CREATE DOMAIN d AS numeric;\n", "DROP DOMAIN IF EXISTS d;\n")
	c.Assert(err, qt.IsNil)
	c.Assert(files.UpFile, qt.Equals, filepath.Join("migrations", migrator.GenerateMigrationFileName(files.Version, "HR.CFG_PKG", "up")))
	c.Assert(files.DownFile, qt.Equals, filepath.Join("migrations", migrator.GenerateMigrationFileName(files.Version, "HR.CFG_PKG", "down")))
	c.Assert(string(must.Must(afero.ReadFile(afs, files.UpFile))), qt.Equals, "CREATE DOMAIN d AS numeric;\n")
	c.Assert(string(must.Must(afero.ReadFile(afs, files.DownFile))), qt.Equals, "DROP DOMAIN IF EXISTS d;\n")

	// A second migration always sorts after the first.
	second, err := generator.Write(afs, "migrations", "views", "SELECT 1;\n", "SELECT 1;\n")
	c.Assert(err, qt.IsNil)
	c.Assert(second.Version > files.Version, qt.IsTrue)

	provider, err := migrator.LoadMigrationsFrom(afs, "migrations")
	c.Assert(err, qt.IsNil)
	c.Assert(provider.Migrations(), qt.HasLen, 2)
	c.Assert(provider.Migrations()[0].Description, qt.Equals, "Hr Cfg Pkg")
	c.Assert(provider.Migrations()[1].Description, qt.Equals, "Views")
}

func TestWrite_AfterFutureVersion(t *testing.T) {
	c := qt.New(t)
	afs := afero.NewMemMapFs()
	c.Assert(afero.WriteFile(afs, "out/9999999999_future.up.sql", []byte("SELECT 1;"), 0o644), qt.IsNil)

	files, err := generator.Write(afs, "out", "next", "SELECT 1;", "SELECT 1;")
	c.Assert(err, qt.IsNil)
	c.Assert(files.Version, qt.Equals, 10000000000)
}

func TestGenerateMigration(t *testing.T) {
	c := qt.New(t)
	afs := afero.NewMemMapFs()

	outputs := []transform.Output{
		{Phase: transform.PhaseTypes, Kind: transform.KindPackageType, Name: "HR.CFG_PKG", SQL: "CREATE DOMAIN hr_cfg_pkg_money_t AS numeric;", Drops: []string{"DROP DOMAIN IF EXISTS hr_cfg_pkg_money_t;"}},
		{Phase: transform.PhaseViews, Kind: transform.KindView, Name: "HR.EMP_V", SQL: "CREATE OR REPLACE VIEW HR.EMP_V AS SELECT 1;", Drops: []string{"DROP VIEW IF EXISTS HR.EMP_V;"}},
	}

	files, err := generator.GenerateMigration(afs, outputs, generator.GenerateMigrationOptions{OutputDir: "out", MigrationName: "hr"})
	c.Assert(err, qt.IsNil)

	up := string(must.Must(afero.ReadFile(afs, files.UpFile)))
	c.Assert(up, qt.Contains, "-- Direction: UP\n\nCREATE DOMAIN hr_cfg_pkg_money_t AS numeric;\n\nCREATE OR REPLACE VIEW HR.EMP_V AS SELECT 1;\n")

	down := string(must.Must(afero.ReadFile(afs, files.DownFile)))
	c.Assert(down, qt.Contains, "-- Direction: DOWN\n\nDROP VIEW IF EXISTS HR.EMP_V;\nDROP DOMAIN IF EXISTS hr_cfg_pkg_money_t;\n")
}

func TestGenerateMigration_NothingToWrite(t *testing.T) {
	c := qt.New(t)
	afs := afero.NewMemMapFs()

	files, err := generator.GenerateMigration(afs, nil, generator.GenerateMigrationOptions{OutputDir: "out"})
	c.Assert(err, qt.IsNil)
	c.Assert(files, qt.IsNil)

	exists, err := afero.DirExists(afs, "out")
	c.Assert(err, qt.IsNil)
	c.Assert(exists, qt.IsFalse)
}
