// Package renderer selects a dialect renderer and renders tree nodes with it.
package renderer

import (
	"errors"
	"fmt"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/platform"
	"github.com/stokaro/ora2pg/core/renderer/dialects/oracle"
	"github.com/stokaro/ora2pg/core/renderer/dialects/postgres"
	"github.com/stokaro/ora2pg/core/renderer/types"
	"github.com/stokaro/ora2pg/core/symtab"
)

// ErrUnknownDialect is returned for a dialect name NormalizeDialect does not know.
var ErrUnknownDialect = errors.New("unknown dialect")

// New returns the renderer for dialect. symbols is only used by the
// PostgreSQL renderer; Oracle rendering reproduces the source as written.
func New(dialect string, symbols *symtab.SymbolTable) (types.RenderVisitor, error) {
	switch platform.NormalizeDialect(dialect) {
	case platform.Postgres:
		return postgres.New(symbols), nil
	case platform.Oracle:
		return oracle.New(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
}

// Render renders node in dialect.
func Render(node ast.Node, dialect string, symbols *symtab.SymbolTable) (string, error) {
	r, err := New(dialect, symbols)
	if err != nil {
		return "", err
	}
	return r.Render(node)
}
