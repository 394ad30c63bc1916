package transpile_test

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-extras/go-kit/must"
	"github.com/spf13/afero"

	"github.com/stokaro/ora2pg/cmd/transpile"
	"github.com/stokaro/ora2pg/config"
	"github.com/stokaro/ora2pg/migration/migrator"
)

const unitFile = `
userSchemas: [HR]
catalog:
  tables:
    - schema: HR
      name: EMPLOYEES
      columns:
        - {name: SALARY, dataType: "NUMBER(8,2)"}
packages:
  - schema: HR
    name: CFG_PKG
    subTypes:
      - {name: money_t, base: "NUMBER(10,2)"}
    functions:
      - name: rate
        return: NUMBER
        body:
          - return: 1
views:
  - schema: HR
    name: EMP_V
    query:
      select: ["*"]
      from: [{table: employees}]
`

func newFs(c *qt.C) afero.Fs {
	afs := afero.NewMemMapFs()
	c.Assert(afero.WriteFile(afs, "hr.yaml", []byte(unitFile), 0o644), qt.IsNil)
	return afs
}

func TestRun_PrintsScript(t *testing.T) {
	c := qt.New(t)
	var stdout, stderr bytes.Buffer

	err := transpile.Run(t.Context(), transpile.Params{
		Fs:      newFs(c),
		Input:   "hr.yaml",
		Options: config.DefaultTranspileOptions(),
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(stdout.String(), qt.Contains, "CREATE DOMAIN hr_cfg_pkg_money_t AS numeric(10,2);")
	c.Assert(stdout.String(), qt.Contains, "CREATE OR REPLACE VIEW HR.EMP_V AS SELECT * FROM HR.EMPLOYEES;")
	c.Assert(stderr.String(), qt.Contains, "TOTAL")
	c.Assert(stderr.String(), qt.Contains, "views")
}

func TestRun_VerifiesAndWritesMigration(t *testing.T) {
	c := qt.New(t)
	afs := newFs(c)
	var stdout, stderr bytes.Buffer

	opts := config.DefaultTranspileOptions()
	opts.Verify = true
	opts.OutputDir = "out"
	err := transpile.Run(t.Context(), transpile.Params{
		Fs:            afs,
		Input:         "hr.yaml",
		Options:       opts,
		Write:         true,
		MigrationName: "hr",
		Stdout:        &stdout,
		Stderr:        &stderr,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(stdout.String(), qt.Equals, "")
	c.Assert(stderr.String(), qt.Contains, "Generated migration files:")

	provider := must.Must(migrator.LoadMigrationsFrom(afs, "out"))
	c.Assert(provider.Migrations(), qt.HasLen, 1)
	c.Assert(provider.Migrations()[0].Description, qt.Equals, "Hr")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		content string
		opts    *config.TranspileOptions
		err     string
	}{
		{
			name:  "missing file",
			input: "nope.yaml",
			err:   "error reading unit file nope.yaml: .*",
		},
		{
			name:    "no user schema",
			input:   "empty.yaml",
			content: "views: []\n",
			err:     "invalid options: at least one user schema is required",
		},
		{
			name:    "conflicting modes",
			input:   "hr.yaml",
			content: unitFile,
			opts:    &config.TranspileOptions{SpecOnly: true, TwoPass: true, RuntimeSchema: "sys"},
			err:     "invalid options: spec-only and two-pass modes are mutually exclusive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			afs := afero.NewMemMapFs()
			if tt.content != "" {
				c.Assert(afero.WriteFile(afs, tt.input, []byte(tt.content), 0o644), qt.IsNil)
			}
			var out bytes.Buffer
			err := transpile.Run(t.Context(), transpile.Params{Fs: afs, Input: tt.input, Options: tt.opts, Stdout: &out, Stderr: &out})
			c.Assert(err, qt.ErrorMatches, tt.err)
		})
	}
}
