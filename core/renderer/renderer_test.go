package renderer_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/platform"
	"github.com/stokaro/ora2pg/core/renderer"
)

func TestRender(t *testing.T) {
	expr := ast.NewCall("NVL", ast.NewIdent("a"), ast.NewNumber("0"))

	tests := []struct {
		dialect string
		want    string
	}{
		{dialect: "postgres", want: "COALESCE(a, 0)\n"},
		{dialect: "pg", want: "COALESCE(a, 0)\n"},
		{dialect: "oracle", want: "NVL(a, 0)"},
		{dialect: "PLSQL", want: "NVL(a, 0)"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			c := qt.New(t)
			out, err := renderer.Render(expr, tt.dialect, nil)
			c.Assert(err, qt.IsNil)
			c.Assert(out, qt.Equals, tt.want)
		})
	}
}

func TestNew(t *testing.T) {
	c := qt.New(t)

	r, err := renderer.New("postgresql", nil)
	c.Assert(err, qt.IsNil)
	c.Assert(r.Dialect(), qt.Equals, platform.Postgres)

	r, err = renderer.New("ora", nil)
	c.Assert(err, qt.IsNil)
	c.Assert(r.Dialect(), qt.Equals, platform.Oracle)

	_, err = renderer.New("mysql", nil)
	c.Assert(err, qt.ErrorIs, renderer.ErrUnknownDialect)
}
