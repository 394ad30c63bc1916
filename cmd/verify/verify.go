package verify

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	sqlverify "github.com/stokaro/ora2pg/internal/verify"
)

const fileFlag = "file"

var verifyFlags = map[string]cobraflags.Flag{
	fileFlag: &cobraflags.StringFlag{
		Name:  fileFlag,
		Value: "",
		Usage: "SQL file to verify; standard input when empty",
	},
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check generated SQL with the PostgreSQL parser",
		Long: `Parse a SQL script with the PostgreSQL grammar, and the body of every PL/pgSQL
function and procedure with the PL/pgSQL grammar, without a database.

Examples:
  ora2pg verify --file migrations/1760659200_hr.up.sql
  ora2pg transpile --input hr.yaml | ora2pg verify`,
		RunE: verifyCommand,
	}
	cobraflags.RegisterMap(cmd, verifyFlags)
	return cmd
}

func verifyCommand(cmd *cobra.Command, _ []string) error {
	return Run(afero.NewOsFs(), verifyFlags[fileFlag].GetString(), cmd.InOrStdin(), os.Stdout)
}

// Run verifies the script in path, or read from stdin when path is empty, and
// reports the statement count to w.
func Run(afs afero.Fs, path string, stdin io.Reader, w io.Writer) error {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = afero.ReadFile(afs, path)
	}
	if err != nil {
		return fmt.Errorf("error reading SQL: %w", err)
	}

	n, err := sqlverify.SQL(string(data))
	if err != nil {
		var verr *sqlverify.Error
		if errors.As(err, &verr) {
			fmt.Fprintf(w, "Failing statement:\n%s\n", verr.Statement)
		}
		return err
	}
	fmt.Fprintf(w, "✅ %d statements verified\n", n)
	return nil
}
