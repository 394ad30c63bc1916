package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stokaro/ora2pg/cmd/catalog"
	"github.com/stokaro/ora2pg/cmd/migrate"
	"github.com/stokaro/ora2pg/cmd/transpile"
	"github.com/stokaro/ora2pg/cmd/verify"
	"github.com/stokaro/ora2pg/internal/logger"
)

// Set via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func newRootCommand() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:   "ora2pg",
		Short: "Oracle PL/SQL to PostgreSQL transpiler",
		Long: fmt.Sprintf(`ora2pg transpiles Oracle PL/SQL packages, object types, routines, views
and triggers to PostgreSQL, and applies the result as migrations.

Version: %s@%s %s/%s

Commands:
  transpile  Transpile a unit file to PostgreSQL
  verify     Check SQL with the PostgreSQL parser
  catalog    Read table and view metadata from PostgreSQL
  migrate    Apply or revert transpiled migrations`, Version, GitCommit, runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logger.Setup(os.Stderr, debug)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.AddCommand(
		transpile.NewTranspileCommand(),
		verify.NewVerifyCommand(),
		catalog.NewCatalogCommand(),
		migrate.NewMigrateCommand(),
	)
	return root
}

func main() {
	// ORA2PG_* settings may come from a .env file.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
