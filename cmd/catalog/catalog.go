package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stokaro/ora2pg/config"
	"github.com/stokaro/ora2pg/dbschema"
	"github.com/stokaro/ora2pg/dbschema/types"
)

const (
	databaseURLFlag = "db-url"
	schemasFlag     = "schemas"
	formatFlag      = "format"
)

// Output formats.
const (
	FormatYAML  = "yaml"
	FormatTable = "table"
)

var catalogFlags = map[string]cobraflags.Flag{
	databaseURLFlag: &cobraflags.StringFlag{
		Name:  databaseURLFlag,
		Value: "",
		Usage: "PostgreSQL URL (defaults to ORA2PG_DATABASE_URL)",
	},
	schemasFlag: &cobraflags.StringFlag{
		Name:  schemasFlag,
		Value: "",
		Usage: "Comma-separated schemas to read (required)",
	},
	formatFlag: &cobraflags.StringFlag{
		Name:  formatFlag,
		Value: FormatYAML,
		Usage: "Output format: yaml (usable as the catalog of a unit file) or table",
	},
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Read table and view metadata from a PostgreSQL database",
		Long: `Read the tables, views and columns of a migrated PostgreSQL database, with
column types mapped back to their Oracle names.

Examples:
  ora2pg catalog --db-url postgres://localhost/hr --schemas hr > catalog.yaml
  ora2pg catalog --db-url postgres://localhost/hr --schemas hr,payroll --format table`,
		RunE: catalogCommand,
	}
	cobraflags.RegisterMap(cmd, catalogFlags)
	return cmd
}

func catalogCommand(cmd *cobra.Command, _ []string) error {
	dbURL := catalogFlags[databaseURLFlag].GetString()
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
	schemas := catalogFlags[schemasFlag].GetString()
	if schemas == "" {
		return fmt.Errorf("at least one schema is required (use --schemas flag)")
	}

	conn, err := dbschema.ConnectToDatabaseContext(cmd.Context(), dbURL)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer conn.Close()

	return Run(cmd.Context(), conn.Reader(), strings.Split(schemas, ","), catalogFlags[formatFlag].GetString(), os.Stdout)
}

// Run reads the catalog of schemas and writes it to w in the given format.
func Run(ctx context.Context, reader types.CatalogReader, schemas []string, format string, w io.Writer) error {
	if format != FormatYAML && format != FormatTable {
		return fmt.Errorf("unsupported format %q: expected %s or %s", format, FormatYAML, FormatTable)
	}

	for i := range schemas {
		schemas[i] = strings.TrimSpace(schemas[i])
	}
	catalog, err := reader.ReadCatalog(ctx, schemas...)
	if err != nil {
		return fmt.Errorf("error reading catalog: %w", err)
	}

	if format == FormatTable {
		renderTable(w, catalog)
		return nil
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(struct {
		Catalog *types.Catalog `yaml:"catalog"`
	}{catalog}); err != nil {
		return fmt.Errorf("error encoding catalog: %w", err)
	}
	return enc.Close()
}

func renderTable(w io.Writer, catalog *types.Catalog) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "Schema", "Name", "Columns"})
	for _, tbl := range catalog.Tables {
		t.AppendRow(table.Row{"table", tbl.Schema, tbl.Name, len(tbl.Columns)})
	}
	for _, v := range catalog.Views {
		t.AppendRow(table.Row{"view", v.Schema, v.Name, len(v.Columns)})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(catalog.Tables) + len(catalog.Views)})
	t.Render()
}
