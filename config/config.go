// Package config provides configuration options for transpilation runs.
//
// Options are built programmatically with DefaultTranspileOptions and the
// With* helpers when ora2pg is used as a library, or loaded from a file and
// the environment with Load when it is run from the command line.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that override file values,
// e.g. ORA2PG_RUNTIME_SCHEMA.
const EnvPrefix = "ORA2PG"

// Defaults.
const (
	DefaultIndent        = "  "
	DefaultRuntimeSchema = "sys"
	DefaultOutputDir     = "migrations"
)

// TranspileOptions controls what a transpilation run generates.
type TranspileOptions struct {
	// UserSchemas are the schemas owning the transpiled code. The first one
	// is the default schema for unqualified table names.
	UserSchemas []string `mapstructure:"user_schemas"`
	// SpecOnly renders routine signatures with stub bodies.
	SpecOnly bool `mapstructure:"spec_only"`
	// TwoPass emits every routine twice: stubs first, then the bodies, so
	// that routines can reference each other regardless of order.
	TwoPass bool `mapstructure:"two_pass"`
	// Indent is the indentation unit of generated PL/pgSQL.
	Indent string `mapstructure:"indent"`
	// RuntimeSchema is the schema of the package-variable runtime functions.
	RuntimeSchema string `mapstructure:"runtime_schema"`
	// EmitPackageInit emits the variable initialiser of each package.
	EmitPackageInit bool `mapstructure:"emit_package_init"`
	// EmitRuntime prepends the package-variable runtime DDL to the output.
	EmitRuntime bool `mapstructure:"emit_runtime"`

	OutputDir   string `mapstructure:"output_dir"`
	DatabaseURL string `mapstructure:"database_url"`
	// Verify parses the generated SQL with the PostgreSQL parser.
	Verify bool `mapstructure:"verify"`
}

// DefaultTranspileOptions returns the options used when nothing is configured.
func DefaultTranspileOptions() *TranspileOptions {
	return &TranspileOptions{
		Indent:          DefaultIndent,
		RuntimeSchema:   DefaultRuntimeSchema,
		EmitPackageInit: true,
		OutputDir:       DefaultOutputDir,
	}
}

// WithUserSchemas returns default options with the given user schemas.
//
// Example:
//
//	opts := config.WithUserSchemas("HR", "PAYROLL")
func WithUserSchemas(schemas ...string) *TranspileOptions {
	opts := DefaultTranspileOptions()
	opts.UserSchemas = schemas
	return opts
}

// WithAdditionalUserSchemas returns a copy of o with schemas appended to its
// user schemas. Schemas already present are not added twice.
func (o *TranspileOptions) WithAdditionalUserSchemas(schemas ...string) *TranspileOptions {
	c := *o
	c.UserSchemas = slices.Clone(o.UserSchemas)
	for _, s := range schemas {
		if !c.IsUserSchema(s) {
			c.UserSchemas = append(c.UserSchemas, s)
		}
	}
	return &c
}

// IsUserSchema reports whether name is one of the user schemas, ignoring case.
func (o *TranspileOptions) IsUserSchema(name string) bool {
	for _, s := range o.UserSchemas {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// Validate checks the options for values no run can work with.
func (o *TranspileOptions) Validate() error {
	if len(o.UserSchemas) == 0 {
		return errors.New("at least one user schema is required")
	}
	if o.RuntimeSchema == "" {
		return errors.New("runtime schema must not be empty")
	}
	if o.SpecOnly && o.TwoPass {
		return errors.New("spec-only and two-pass modes are mutually exclusive")
	}
	return nil
}

// Load reads options from the YAML, JSON or TOML file at path, applies
// ORA2PG_* environment overrides and fills the rest with defaults. An empty
// path or a missing file skips the file.
func Load(path string) (*TranspileOptions, error) {
	v := viper.New()

	defaults := DefaultTranspileOptions()
	v.SetDefault("user_schemas", []string{})
	v.SetDefault("spec_only", defaults.SpecOnly)
	v.SetDefault("two_pass", defaults.TwoPass)
	v.SetDefault("indent", defaults.Indent)
	v.SetDefault("runtime_schema", defaults.RuntimeSchema)
	v.SetDefault("emit_package_init", defaults.EmitPackageInit)
	v.SetDefault("emit_runtime", defaults.EmitRuntime)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("database_url", "")
	v.SetDefault("verify", defaults.Verify)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" && fileExists(path) {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var opts TranspileOptions
	if err := v.Unmarshal(&opts); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	opts.UserSchemas = splitList(strings.Join(opts.UserSchemas, ","))
	return &opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
