// Package types defines the contract shared by the dialect renderers.
package types

import (
	"errors"

	"github.com/stokaro/ora2pg/core/ast"
)

var (
	// ErrMissingChild reports a malformed tree: a required child is nil, or a
	// routine has no owning package, object type or schema.
	ErrMissingChild = errors.New("malformed AST: missing required child")
	// ErrUnsupportedNode reports a node kind the renderer does not know.
	ErrUnsupportedNode = errors.New("unsupported AST node")
)

// RenderVisitor is implemented by every dialect renderer.
type RenderVisitor interface {
	ast.Visitor

	// Render renders node and returns the produced text. The renderer is
	// reset before rendering.
	Render(node ast.Node) (string, error)
	// Dialect returns the dialect name, see core/platform.
	Dialect() string
	// Reset clears the accumulated output.
	Reset()
	// Output returns the accumulated output.
	Output() string
}
