package migrate

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/go-extras/cobraflags"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/stokaro/ora2pg/config"
	"github.com/stokaro/ora2pg/dbschema"
	"github.com/stokaro/ora2pg/internal/logger"
	"github.com/stokaro/ora2pg/migration/migrator"
)

const (
	databaseURLFlag   = "db-url"
	migrationsDirFlag = "migrations-dir"
	dryRunFlag        = "dry-run"
	runtimeSchemaFlag = "runtime-schema"
)

func newMigrateFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		databaseURLFlag: &cobraflags.StringFlag{
			Name:  databaseURLFlag,
			Value: "",
			Usage: "PostgreSQL URL (defaults to ORA2PG_DATABASE_URL)",
		},
		migrationsDirFlag: &cobraflags.StringFlag{
			Name:  migrationsDirFlag,
			Value: config.DefaultOutputDir,
			Usage: "Directory containing the migration files",
		},
		dryRunFlag: &cobraflags.BoolFlag{
			Name:  dryRunFlag,
			Value: false,
			Usage: "Log the statements instead of executing them",
		},
		runtimeSchemaFlag: &cobraflags.StringFlag{
			Name:  runtimeSchemaFlag,
			Value: "",
			Usage: "Create this schema before migrating, for the package variable runtime",
		},
	}
}

// NewMigrateCommand creates the migrate command with its up, down, to and
// status subcommands.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert transpiled migrations",
		Long: `Apply or revert the migrations written by "ora2pg transpile --write".
Each migration runs in its own transaction and is recorded in schema_migrations.

Examples:
  ora2pg migrate up --db-url postgres://localhost/hr
  ora2pg migrate down --db-url postgres://localhost/hr
  ora2pg migrate to 1760659200 --db-url postgres://localhost/hr
  ora2pg migrate status --migrations-dir ./migrations`,
	}
	cmd.AddCommand(
		newSubcommand("up", "Apply all pending migrations", cobra.NoArgs,
			func(ctx context.Context, m *migrator.Migrator, _ []string) error {
				return m.MigrateUp(ctx)
			}),
		newSubcommand("down", "Revert the latest applied migration", cobra.NoArgs,
			func(ctx context.Context, m *migrator.Migrator, _ []string) error {
				return m.MigrateDown(ctx)
			}),
		newSubcommand("to VERSION", "Migrate up or down to VERSION; 0 reverts everything", cobra.ExactArgs(1),
			func(ctx context.Context, m *migrator.Migrator, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil || version < 0 {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.MigrateTo(ctx, version)
			}),
		newSubcommand("status", "Show applied and pending migrations", cobra.NoArgs,
			func(ctx context.Context, m *migrator.Migrator, _ []string) error {
				return Status(ctx, m, os.Stdout)
			}),
	)
	return cmd
}

type migratorFunc func(ctx context.Context, m *migrator.Migrator, args []string) error

func newSubcommand(use, short string, args cobra.PositionalArgs, fn migratorFunc) *cobra.Command {
	flags := newMigrateFlags()
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runWithMigrator(cmd, flags, fn, args)
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func runWithMigrator(cmd *cobra.Command, flags map[string]cobraflags.Flag, fn migratorFunc, args []string) error {
	ctx := cmd.Context()
	dbURL := flags[databaseURLFlag].GetString()
	if dbURL == "" {
		opts, err := config.Load("")
		if err != nil {
			return err
		}
		dbURL = opts.DatabaseURL
	}
	if dbURL == "" {
		return fmt.Errorf("database URL is required (use --db-url flag)")
	}

	provider, err := migrator.LoadMigrationsFrom(afero.NewOsFs(), flags[migrationsDirFlag].GetString())
	if err != nil {
		return fmt.Errorf("error loading migrations: %w", err)
	}

	l := logger.Get()
	conn, err := dbschema.ConnectToDatabaseContext(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	conn = conn.WithLogger(l)
	defer conn.Close()

	conn.Writer().SetDryRun(flags[dryRunFlag].(*cobraflags.BoolFlag).GetBool())
	if schema := flags[runtimeSchemaFlag].GetString(); schema != "" && cmd.Name() != "status" {
		if err := conn.Writer().EnsureSchema(ctx, schema); err != nil {
			return err
		}
	}

	return fn(ctx, migrator.NewMigrator(conn, provider).WithLogger(l), args)
}

// Status writes one row per known migration, marking the applied ones.
// Applied versions without migration files are listed as orphaned.
func Status(ctx context.Context, m *migrator.Migrator, w io.Writer) error {
	status, err := m.GetMigrationStatus(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Version", "Description", "Applied"})
	for _, mig := range m.Migrations() {
		mark := ""
		if slices.Contains(status.Applied, mig.Version) {
			mark = "yes"
		}
		t.AppendRow(table.Row{mig.Version, mig.Description, mark})
	}
	for _, version := range status.Orphaned {
		t.AppendRow(table.Row{version, "(no migration files)", "orphaned"})
	}
	t.AppendFooter(table.Row{"Current", status.CurrentVersion, fmt.Sprintf("%d pending", len(status.Pending))})
	t.Render()
	return nil
}
