package verify_test

import (
	"errors"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ora2pg/internal/verify"
)

const validScript = `CREATE DOMAIN hr_cfg_pkg_money_t AS numeric;

CREATE OR REPLACE FUNCTION HR.CFG_PKG_rate()
RETURNS numeric
LANGUAGE plpgsql
AS $$
BEGIN
  IF sys.get_package_var_numeric('hr', 'cfg_pkg', 'g_rate') IS NULL THEN
    RETURN 0;
  END IF;
  RETURN sys.get_package_var_numeric('hr', 'cfg_pkg', 'g_rate');
END;
$$;

CREATE OR REPLACE VIEW HR.EMP_V AS SELECT * FROM HR.EMPLOYEES;
`

func TestSplit(t *testing.T) {
	c := qt.New(t)

	statements, err := verify.Split(validScript)
	c.Assert(err, qt.IsNil)
	c.Assert(statements, qt.HasLen, 3)
	c.Assert(statements[1], qt.Contains, "RETURN 0;")
	c.Assert(statements[2], qt.Equals, "CREATE OR REPLACE VIEW HR.EMP_V AS SELECT * FROM HR.EMPLOYEES")
}

func TestSplit_KeepsUnknownLeadingWords(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []string
	}{
		{
			name:     "misspelled keyword after a valid statement",
			sql:      "SELECT 1;\nSELEC 2;\n",
			expected: []string{"SELECT 1", "SELEC 2"},
		},
		{
			name:     "misspelled keyword alone",
			sql:      "SELEC 2;",
			expected: []string{"SELEC 2"},
		},
		{
			name:     "identifier without terminator",
			sql:      "SELECT 1; foo",
			expected: []string{"SELECT 1", "foo"},
		},
		{
			name:     "comment-only segments",
			sql:      "-- header\n;\n/* note; */ SELECT ';';\n-- trailer\n",
			expected: []string{"/* note; */ SELECT ';'"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			statements, err := verify.Split(tt.sql)
			c.Assert(err, qt.IsNil)
			c.Assert(statements, qt.DeepEquals, tt.expected)
		})
	}
}

func TestSQL(t *testing.T) {
	c := qt.New(t)

	n, err := verify.SQL(validScript)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 3)
}

func TestSQL_Errors(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		index int
		msg   string
	}{
		{
			name:  "statement syntax",
			sql:   "SELECT 1;\nCREATE VIEW v AS SELEC 1;",
			index: 1,
			msg:   "statement 2: .*",
		},
		{
			name:  "misspelled leading keyword",
			sql:   "SELECT 1;\nSELEC 2;\n",
			index: 1,
			msg:   "statement 2: .*",
		},
		{
			name:  "misspelled keyword only",
			sql:   "SELEC 2;",
			index: 0,
			msg:   "statement 1: .*",
		},
		{
			name: "plpgsql body",
			sql: `CREATE FUNCTION f() RETURNS int LANGUAGE plpgsql AS $$
BEGIN
  IF true THEN
    RETURN 1;
  END;
END;
$$;`,
			index: 0,
			msg:   "statement 1: plpgsql body: .*",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			_, err := verify.SQL(tt.sql)
			var verr *verify.Error
			c.Assert(errors.As(err, &verr), qt.IsTrue)
			c.Assert(verr.Index, qt.Equals, tt.index)
			c.Assert(err, qt.ErrorMatches, tt.msg)
		})
	}
}

func TestStatement_SQLFunctionBodyNotParsed(t *testing.T) {
	c := qt.New(t)

	err := verify.Statement("CREATE FUNCTION f() RETURNS int LANGUAGE sql AS $$ SELECT 1 $$")
	c.Assert(err, qt.IsNil)
}

func TestStatement_RaiseConditionNames(t *testing.T) {
	const fn = "CREATE PROCEDURE p() LANGUAGE plpgsql AS $$\nBEGIN\n  %s\nEND;\n$$"
	tests := []struct {
		name  string
		raise string
		ok    bool
	}{
		{name: "builtin condition", raise: "RAISE division_by_zero;", ok: true},
		{name: "user exception by name", raise: "RAISE my_error;", ok: false},
		{name: "user exception with level", raise: "RAISE EXCEPTION my_error;", ok: false},
		{name: "user exception as message", raise: "RAISE EXCEPTION 'my_error' USING ERRCODE = 'P0001';", ok: true},
		{name: "user exception with text", raise: "RAISE EXCEPTION 'my_error: 50%% off' USING ERRCODE = 'P0001';", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			err := verify.Statement(fmt.Sprintf(fn, tt.raise))
			if tt.ok {
				c.Assert(err, qt.IsNil)
				return
			}
			c.Assert(err, qt.ErrorMatches, "plpgsql body: .*")
		})
	}
}
