package config_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ora2pg/config"
)

func TestDefaultTranspileOptions(t *testing.T) {
	c := qt.New(t)

	opts := config.DefaultTranspileOptions()

	c.Assert(opts, qt.IsNotNil)
	c.Assert(opts.Indent, qt.Equals, "  ")
	c.Assert(opts.RuntimeSchema, qt.Equals, "sys")
	c.Assert(opts.EmitPackageInit, qt.IsTrue)
	c.Assert(opts.UserSchemas, qt.HasLen, 0)
}

func TestWithUserSchemas(t *testing.T) {
	tests := []struct {
		name     string
		schemas  []string
		expected []string
	}{
		{
			name:     "single schema",
			schemas:  []string{"HR"},
			expected: []string{"HR"},
		},
		{
			name:     "multiple schemas",
			schemas:  []string{"HR", "PAYROLL"},
			expected: []string{"HR", "PAYROLL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			opts := config.WithUserSchemas(tt.schemas...)
			c.Assert(opts.UserSchemas, qt.DeepEquals, tt.expected)
			c.Assert(opts.RuntimeSchema, qt.Equals, config.DefaultRuntimeSchema)
		})
	}
}

func TestWithAdditionalUserSchemas(t *testing.T) {
	c := qt.New(t)

	base := config.WithUserSchemas("HR")
	opts := base.WithAdditionalUserSchemas("payroll", "hr", "SALES")

	c.Assert(opts.UserSchemas, qt.DeepEquals, []string{"HR", "payroll", "SALES"})
	c.Assert(base.UserSchemas, qt.DeepEquals, []string{"HR"})
}

func TestIsUserSchema(t *testing.T) {
	opts := config.WithUserSchemas("HR", "PAYROLL")

	tests := []struct {
		name     string
		expected bool
	}{
		{"HR", true},
		{"hr", true},
		{"Payroll", true},
		{"SYS", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(opts.IsUserSchema(tt.name), qt.Equals, tt.expected)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.TranspileOptions)
		err    string
	}{
		{
			name:   "valid",
			modify: func(*config.TranspileOptions) {},
		},
		{
			name:   "no user schema",
			modify: func(o *config.TranspileOptions) { o.UserSchemas = nil },
			err:    "at least one user schema is required",
		},
		{
			name:   "empty runtime schema",
			modify: func(o *config.TranspileOptions) { o.RuntimeSchema = "" },
			err:    "runtime schema must not be empty",
		},
		{
			name: "spec-only with two-pass",
			modify: func(o *config.TranspileOptions) {
				o.SpecOnly = true
				o.TwoPass = true
			},
			err: "spec-only and two-pass modes are mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			opts := config.WithUserSchemas("HR")
			tt.modify(opts)
			err := opts.Validate()
			if tt.err == "" {
				c.Assert(err, qt.IsNil)
				return
			}
			c.Assert(err, qt.ErrorMatches, tt.err)
		})
	}
}

func TestLoad(t *testing.T) {
	c := qt.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "ora2pg.yaml")
	err := os.WriteFile(path, []byte(`
user_schemas: [HR, PAYROLL]
two_pass: true
runtime_schema: pkgstate
output_dir: out
`), 0o600)
	c.Assert(err, qt.IsNil)

	opts, err := config.Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(opts.UserSchemas, qt.DeepEquals, []string{"HR", "PAYROLL"})
	c.Assert(opts.TwoPass, qt.IsTrue)
	c.Assert(opts.RuntimeSchema, qt.Equals, "pkgstate")
	c.Assert(opts.OutputDir, qt.Equals, "out")
	c.Assert(opts.Indent, qt.Equals, config.DefaultIndent)
	c.Assert(opts.EmitPackageInit, qt.IsTrue)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	c := qt.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "ora2pg.yaml")
	c.Assert(os.WriteFile(path, []byte("runtime_schema: pkgstate\n"), 0o600), qt.IsNil)

	t.Setenv("ORA2PG_RUNTIME_SCHEMA", "rt")
	t.Setenv("ORA2PG_USER_SCHEMAS", "HR, SALES")

	opts, err := config.Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(opts.RuntimeSchema, qt.Equals, "rt")
	c.Assert(opts.UserSchemas, qt.DeepEquals, []string{"HR", "SALES"})
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c := qt.New(t)

	opts, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	c.Assert(err, qt.IsNil)
	c.Assert(opts.RuntimeSchema, qt.Equals, config.DefaultRuntimeSchema)
	c.Assert(opts.OutputDir, qt.Equals, config.DefaultOutputDir)
}

func TestLoad_InvalidFile(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	c.Assert(os.WriteFile(path, []byte("user_schemas: [HR\n"), 0o600), qt.IsNil)

	_, err := config.Load(path)
	c.Assert(err, qt.ErrorMatches, "error reading config file .*")
}
