package migrator

import (
	"context"
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"
)

func TestCreateMigrationFromSQL(t *testing.T) {
	c := qt.New(t)

	migration := CreateMigrationFromSQL(1, "Create HR.CFG_PKG", "CREATE DOMAIN hr_cfg_pkg_money_t AS numeric;", "DROP DOMAIN hr_cfg_pkg_money_t;")

	c.Assert(migration.Version, qt.Equals, 1)
	c.Assert(migration.Description, qt.Equals, "Create HR.CFG_PKG")
	c.Assert(migration.Up, qt.IsNotNil)
	c.Assert(migration.Down, qt.IsNotNil)
}

func TestSplitSQLStatements(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []string
	}{
		{
			name:     "single statement",
			sql:      "CREATE DOMAIN hr_cfg_pkg_money_t AS numeric(10,2);",
			expected: []string{"CREATE DOMAIN hr_cfg_pkg_money_t AS numeric(10,2)"},
		},
		{
			name: "multiple statements",
			sql:  "CREATE DOMAIN hr_cfg_pkg_money_t AS numeric; CREATE OR REPLACE VIEW HR.EMP_V AS SELECT * FROM HR.EMPLOYEES;",
			expected: []string{
				"CREATE DOMAIN hr_cfg_pkg_money_t AS numeric",
				"CREATE OR REPLACE VIEW HR.EMP_V AS SELECT * FROM HR.EMPLOYEES",
			},
		},
		{
			name: "dollar-quoted body",
			sql:  "CREATE FUNCTION HR.f() RETURNS int LANGUAGE plpgsql AS $$\nBEGIN\n  RETURN 1;\nEND;\n$$;\nSELECT 1;",
			expected: []string{
				"CREATE FUNCTION HR.f() RETURNS int LANGUAGE plpgsql AS $$\nBEGIN\n  RETURN 1;\nEND;\n$$",
				"SELECT 1",
			},
		},
		{
			name:     "empty SQL",
			sql:      "",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			result, err := SplitSQLStatements(tt.sql)
			c.Assert(err, qt.IsNil)
			c.Assert(result, qt.HasLen, len(tt.expected))
			for i := range tt.expected {
				c.Assert(result[i], qt.Equals, tt.expected[i])
			}
		})
	}
}

func TestMigrationFuncFromSQLFilename_FileNotFound(t *testing.T) {
	c := qt.New(t)

	migrationFunc := MigrationFuncFromSQLFilename("nonexistent.sql", fstest.MapFS{})
	c.Assert(migrationFunc, qt.IsNotNil)

	err := migrationFunc(context.Background(), nil)
	c.Assert(err, qt.ErrorMatches, "failed to read migration file: .*")
}
