package migrator_test

import (
	"io/fs"
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"
	"github.com/spf13/afero"

	"github.com/stokaro/ora2pg/migration/migrator"
)

func TestMigrationList(t *testing.T) {
	c := qt.New(t)

	list := migrator.NewMigrationList(
		migrator.CreateMigrationFromSQL(3, "Triggers", "SELECT 1;", "SELECT 1;"),
		migrator.CreateMigrationFromSQL(1, "Types", "SELECT 1;", "SELECT 1;"),
		migrator.CreateMigrationFromSQL(2, "Bodies", "SELECT 1;", "SELECT 1;"),
	)
	var versions []int
	for _, m := range list.Migrations() {
		versions = append(versions, m.Version)
	}
	c.Assert(versions, qt.DeepEquals, []int{1, 2, 3})

	m, ok := list.Find(2)
	c.Assert(ok, qt.IsTrue)
	c.Assert(m.Description, qt.Equals, "Bodies")

	_, ok = list.Find(4)
	c.Assert(ok, qt.IsFalse)

	c.Assert(migrator.NewMigrationList().Migrations(), qt.HasLen, 0)
}

func TestLoadMigrations(t *testing.T) {
	c := qt.New(t)

	fsys := fstest.MapFS{
		"0000000002_create_emp_v.up.sql":        &fstest.MapFile{Data: []byte("CREATE OR REPLACE VIEW HR.EMP_V AS SELECT * FROM HR.EMPLOYEES;")},
		"0000000002_create_emp_v.down.sql":      &fstest.MapFile{Data: []byte("DROP VIEW IF EXISTS HR.EMP_V;")},
		"0000000001_create_hr_cfg_pkg.up.sql":   &fstest.MapFile{Data: []byte("CREATE DOMAIN hr_cfg_pkg_money_t AS numeric(10,2);")},
		"0000000001_create_hr_cfg_pkg.down.sql": &fstest.MapFile{Data: []byte("DROP DOMAIN IF EXISTS hr_cfg_pkg_money_t;")},
		"README.md":                             &fstest.MapFile{Data: []byte("# Migrations")},
		"notes/invalid_file.txt":                &fstest.MapFile{Data: []byte("ignored")},
	}

	list, err := migrator.LoadMigrations(fsys)
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 2)
	c.Assert(list[0].Version, qt.Equals, 1)
	c.Assert(list[0].Description, qt.Equals, "Create Hr Cfg Pkg")
	c.Assert(list[1].Version, qt.Equals, 2)
	c.Assert(list[1].Description, qt.Equals, "Create Emp V")

	empty, err := migrator.LoadMigrations(fstest.MapFS{})
	c.Assert(err, qt.IsNil)
	c.Assert(empty, qt.HasLen, 0)
}

// errorFS fails every open.
type errorFS struct{}

func (errorFS) Open(string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func TestLoadMigrations_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fs.FS
		err  string
	}{
		{
			name: "missing down file",
			fsys: fstest.MapFS{
				"0000000001_create_hr_cfg_pkg.up.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
				"0000000003_views.down.sql":           &fstest.MapFile{Data: []byte("SELECT 1;")},
			},
			err: `incomplete migrations found \(missing up or down files\): \[1 3\]`,
		},
		{
			name: "same direction twice",
			fsys: fstest.MapFS{
				"0000000001_create_hr_cfg_pkg.up.sql":   &fstest.MapFile{Data: []byte("SELECT 1;")},
				"0000000001_create_hr_cfg_pkg.down.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
				"more/0000000001_again.up.sql":          &fstest.MapFile{Data: []byte("SELECT 2;")},
			},
			err: "failed to scan migrations directory: duplicate up migration for version 1: .*",
		},
		{
			name: "unreadable filesystem",
			fsys: errorFS{},
			err:  "failed to scan migrations directory: .*",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			list, err := migrator.LoadMigrations(tt.fsys)
			c.Assert(err, qt.ErrorMatches, tt.err)
			c.Assert(list, qt.HasLen, 0)
		})
	}
}

func TestLoadMigrationsFrom(t *testing.T) {
	c := qt.New(t)

	afs := afero.NewMemMapFs()
	c.Assert(afero.WriteFile(afs, "out/0000000007_create_hr_cfg_pkg.up.sql", []byte("SELECT 1;"), 0o644), qt.IsNil)
	c.Assert(afero.WriteFile(afs, "out/0000000007_create_hr_cfg_pkg.down.sql", []byte("SELECT 1;"), 0o644), qt.IsNil)
	c.Assert(afero.WriteFile(afs, "elsewhere/0000000009_other.up.sql", []byte("SELECT 1;"), 0o644), qt.IsNil)

	list, err := migrator.LoadMigrationsFrom(afs, "out")
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 1)
	c.Assert(list[0].Version, qt.Equals, 7)
	c.Assert(list[0].Description, qt.Equals, "Create Hr Cfg Pkg")
}
