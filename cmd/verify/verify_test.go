package verify_test

import (
	"bytes"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/spf13/afero"

	"github.com/stokaro/ora2pg/cmd/verify"
)

func TestRun(t *testing.T) {
	c := qt.New(t)
	afs := afero.NewMemMapFs()
	c.Assert(afero.WriteFile(afs, "up.sql", []byte("CREATE DOMAIN d AS numeric;\nSELECT 1;\n"), 0o644), qt.IsNil)

	var out bytes.Buffer
	c.Assert(verify.Run(afs, "up.sql", nil, &out), qt.IsNil)
	c.Assert(out.String(), qt.Equals, "✅ 2 statements verified\n")
}

func TestRun_Stdin(t *testing.T) {
	c := qt.New(t)

	var out bytes.Buffer
	err := verify.Run(afero.NewMemMapFs(), "", strings.NewReader("SELECT 1;\nSELEC 2;\n"), &out)
	c.Assert(err, qt.ErrorMatches, "statement 2: .*")
	c.Assert(out.String(), qt.Contains, "SELEC 2")
}

func TestRun_MissingFile(t *testing.T) {
	c := qt.New(t)

	err := verify.Run(afero.NewMemMapFs(), "nope.sql", nil, &bytes.Buffer{})
	c.Assert(err, qt.ErrorMatches, "error reading SQL: .*")
}
