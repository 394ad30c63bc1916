package transpile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/stokaro/ora2pg/config"
	"github.com/stokaro/ora2pg/core/symtab"
	"github.com/stokaro/ora2pg/core/transform"
	"github.com/stokaro/ora2pg/dbschema"
	"github.com/stokaro/ora2pg/internal/logger"
	"github.com/stokaro/ora2pg/internal/unitfile"
	"github.com/stokaro/ora2pg/internal/verify"
	"github.com/stokaro/ora2pg/migration/generator"
)

const (
	inputFlag       = "input"
	configFlag      = "config"
	userSchemasFlag = "user-schemas"
	databaseURLFlag = "db-url"
	outputDirFlag   = "output-dir"
	nameFlag        = "name"
	writeFlag       = "write"
	specOnlyFlag    = "spec-only"
	twoPassFlag     = "two-pass"
	emitRuntimeFlag = "emit-runtime"
	verifyFlag      = "verify"
)

var transpileFlags = map[string]cobraflags.Flag{
	inputFlag: &cobraflags.StringFlag{
		Name:  inputFlag,
		Value: "",
		Usage: "Unit file (YAML or JSON) with the catalog and the parsed PL/SQL units (required)",
	},
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Configuration file (YAML, JSON or TOML)",
	},
	userSchemasFlag: &cobraflags.StringFlag{
		Name:  userSchemasFlag,
		Value: "",
		Usage: "Comma-separated user schemas, added to those of the config and unit files",
	},
	databaseURLFlag: &cobraflags.StringFlag{
		Name:  databaseURLFlag,
		Value: "",
		Usage: "PostgreSQL URL of an already migrated target; its tables and views are added to the catalog",
	},
	outputDirFlag: &cobraflags.StringFlag{
		Name:  outputDirFlag,
		Value: config.DefaultOutputDir,
		Usage: "Directory where migration files are written with --write",
	},
	nameFlag: &cobraflags.StringFlag{
		Name:  nameFlag,
		Value: "transpiled",
		Usage: "Migration name used with --write",
	},
	writeFlag: &cobraflags.BoolFlag{
		Name:  writeFlag,
		Value: false,
		Usage: "Write up/down migration files instead of printing the script",
	},
	specOnlyFlag: &cobraflags.BoolFlag{
		Name:  specOnlyFlag,
		Value: false,
		Usage: "Render routine signatures with stub bodies only",
	},
	twoPassFlag: &cobraflags.BoolFlag{
		Name:  twoPassFlag,
		Value: false,
		Usage: "Emit routine stubs before the full bodies",
	},
	emitRuntimeFlag: &cobraflags.BoolFlag{
		Name:  emitRuntimeFlag,
		Value: false,
		Usage: "Prepend the package variable runtime to the output",
	},
	verifyFlag: &cobraflags.BoolFlag{
		Name:  verifyFlag,
		Value: false,
		Usage: "Parse the generated SQL with the PostgreSQL parser before output",
	},
}

// NewTranspileCommand creates the transpile command.
func NewTranspileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transpile",
		Short: "Transpile PL/SQL units to PostgreSQL",
		Long: `Transpile the packages, object types, routines, views and triggers of a unit
file to PostgreSQL.

Examples:
  ora2pg transpile --input hr.yaml                       # print the script
  ora2pg transpile --input hr.yaml --verify --write      # write a verified migration
  ora2pg transpile --input hr.yaml --db-url postgres://localhost/hr`,
		RunE: transpileCommand,
	}
	cobraflags.RegisterMap(cmd, transpileFlags)
	return cmd
}

func transpileCommand(cmd *cobra.Command, _ []string) error {
	input := transpileFlags[inputFlag].GetString()
	if input == "" {
		return fmt.Errorf("input file is required (use --input flag)")
	}

	opts, err := config.Load(transpileFlags[configFlag].GetString())
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if schemas := transpileFlags[userSchemasFlag].GetString(); schemas != "" {
		opts = opts.WithAdditionalUserSchemas(strings.Split(schemas, ",")...)
	}
	if flags.Changed(databaseURLFlag) {
		opts.DatabaseURL = transpileFlags[databaseURLFlag].GetString()
	}
	if flags.Changed(outputDirFlag) {
		opts.OutputDir = transpileFlags[outputDirFlag].GetString()
	}
	if flags.Changed(specOnlyFlag) {
		opts.SpecOnly = transpileFlags[specOnlyFlag].(*cobraflags.BoolFlag).GetBool()
	}
	if flags.Changed(twoPassFlag) {
		opts.TwoPass = transpileFlags[twoPassFlag].(*cobraflags.BoolFlag).GetBool()
	}
	if flags.Changed(emitRuntimeFlag) {
		opts.EmitRuntime = transpileFlags[emitRuntimeFlag].(*cobraflags.BoolFlag).GetBool()
	}
	if flags.Changed(verifyFlag) {
		opts.Verify = transpileFlags[verifyFlag].(*cobraflags.BoolFlag).GetBool()
	}

	return Run(cmd.Context(), Params{
		Fs:            afero.NewOsFs(),
		Input:         input,
		Options:       opts,
		Write:         transpileFlags[writeFlag].(*cobraflags.BoolFlag).GetBool(),
		MigrationName: transpileFlags[nameFlag].GetString(),
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Logger:        logger.Get(),
	})
}

// Params are the inputs of one transpile run.
type Params struct {
	Fs            afero.Fs
	Input         string
	Options       *config.TranspileOptions
	Write         bool
	MigrationName string
	Stdout        io.Writer
	Stderr        io.Writer
	Logger        *slog.Logger
}

// Run loads the unit file, transpiles it and prints or writes the result,
// followed by a summary table on Stderr.
func Run(ctx context.Context, p Params) error {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Options == nil {
		p.Options = config.DefaultTranspileOptions()
	}

	file, err := unitfile.Load(p.Fs, p.Input)
	if err != nil {
		return err
	}
	opts := p.Options.WithAdditionalUserSchemas(file.UserSchemas...)
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	symbols := symtab.New(file.Catalog, opts.UserSchemas...).WithLogger(p.Logger)
	if opts.DatabaseURL != "" {
		if err := addTargetCatalog(ctx, symbols, opts); err != nil {
			return err
		}
	}

	t := transform.New(symbols, opts).WithLogger(p.Logger)
	t.Register(file.Units)
	outputs, err := t.Plan(file.Units)
	if err != nil {
		return fmt.Errorf("transpilation failed: %w", err)
	}

	script := transform.Script(outputs)
	if opts.Verify {
		n, err := verify.SQL(script)
		if err != nil {
			return fmt.Errorf("generated SQL does not parse: %w", err)
		}
		p.Logger.Info("Generated SQL verified", "statements", n)
	}

	if p.Write {
		files, err := generator.GenerateMigration(p.Fs, outputs, generator.GenerateMigrationOptions{
			OutputDir:     opts.OutputDir,
			MigrationName: p.MigrationName,
			Logger:        p.Logger,
		})
		if err != nil {
			return fmt.Errorf("error generating migration files: %w", err)
		}
		if files != nil {
			fmt.Fprintf(p.Stderr, "Generated migration files:\n  UP:   %s\n  DOWN: %s\n  Version: %d\n", files.UpFile, files.DownFile, files.Version)
		}
	} else {
		fmt.Fprint(p.Stdout, script)
	}

	renderSummary(p.Stderr, transform.Summarize(outputs))
	return nil
}

func addTargetCatalog(ctx context.Context, symbols *symtab.SymbolTable, opts *config.TranspileOptions) error {
	conn, err := dbschema.ConnectToDatabaseContext(ctx, opts.DatabaseURL)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer conn.Close()

	catalog, err := conn.Reader().ReadCatalog(ctx, opts.UserSchemas...)
	if err != nil {
		return fmt.Errorf("error reading target catalog: %w", err)
	}
	symbols.AddCatalog(catalog)
	return nil
}

func renderSummary(w io.Writer, summary []transform.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Phase", "Kind", "Blocks"})
	total := 0
	for _, s := range summary {
		t.AppendRow(table.Row{s.Phase.String(), s.Kind, s.Count})
		total += s.Count
	}
	t.AppendFooter(table.Row{"", "Total", total})
	t.Render()
}
