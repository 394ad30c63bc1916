// Package postgres renders the PL/SQL tree as PostgreSQL DDL and PL/pgSQL.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/pkgvar"
	"github.com/stokaro/ora2pg/core/platform"
	"github.com/stokaro/ora2pg/core/renderer/dialects/internal/bufwriter"
	"github.com/stokaro/ora2pg/core/renderer/types"
	"github.com/stokaro/ora2pg/core/symtab"
)

var (
	_ types.RenderVisitor = (*Renderer)(nil)
)

// Renderer provides PostgreSQL rendering.
//
// The Visit methods render their node at the top level and append the result
// to the output buffer. Rendering state below the top level travels in an
// immutable scope, so a failed render never leaves indentation or CTE
// visibility behind for the next one.
type Renderer struct {
	symbols  *symtab.SymbolTable
	resolver *pkgvar.Resolver
	runtime  string
	unit     string
	specOnly bool
	w        bufwriter.Writer
	logger   *slog.Logger
}

// New creates a PostgreSQL renderer resolving names against symbols. A nil
// symbol table behaves like an empty one.
func New(symbols *symtab.SymbolTable) *Renderer {
	if symbols == nil {
		symbols = symtab.New(nil)
	}
	return &Renderer{
		symbols:  symbols,
		resolver: pkgvar.New(symbols, pkgvar.DefaultRuntimeSchema),
		runtime:  pkgvar.DefaultRuntimeSchema,
		unit:     bufwriter.DefaultIndent,
		logger:   slog.Default(),
	}
}

// WithLogger returns a copy of the renderer that logs to logger.
func (r *Renderer) WithLogger(logger *slog.Logger) *Renderer {
	return r.clone(func(c *Renderer) { c.logger = logger })
}

// WithIndent returns a copy of the renderer indenting with unit.
func (r *Renderer) WithIndent(unit string) *Renderer {
	return r.clone(func(c *Renderer) { c.unit = unit })
}

// WithRuntimeSchema returns a copy of the renderer whose package-variable
// accessors live in schema.
func (r *Renderer) WithRuntimeSchema(schema string) *Renderer {
	return r.clone(func(c *Renderer) {
		c.runtime = schema
		c.resolver = pkgvar.New(c.symbols, schema)
	})
}

// WithSpecOnly returns a copy of the renderer that renders routine
// signatures with stub bodies instead of the real bodies.
func (r *Renderer) WithSpecOnly(specOnly bool) *Renderer {
	return r.clone(func(c *Renderer) { c.specOnly = specOnly })
}

func (r *Renderer) clone(apply func(*Renderer)) *Renderer {
	c := &Renderer{
		symbols:  r.symbols,
		resolver: r.resolver,
		runtime:  r.runtime,
		unit:     r.unit,
		specOnly: r.specOnly,
		logger:   r.logger,
	}
	apply(c)
	return c
}

// Symbols returns the symbol table the renderer resolves against.
func (r *Renderer) Symbols() *symtab.SymbolTable {
	return r.symbols
}

func (r *Renderer) root() scope {
	return scope{unit: r.unit}
}

// Dialect returns the dialect name.
func (r *Renderer) Dialect() string {
	return platform.Postgres
}

// Reset clears the output buffer.
func (r *Renderer) Reset() {
	r.w.Reset()
}

// Output returns the rendered output.
func (r *Renderer) Output() string {
	return r.w.String()
}

// Render renders node to PostgreSQL and returns the result.
func (r *Renderer) Render(node ast.Node) (string, error) {
	r.Reset()
	if node == nil {
		return "", types.ErrMissingChild
	}
	if err := node.Accept(r); err != nil {
		return "", err
	}
	return r.Output(), nil
}

// RenderNode renders a single node at the top level without touching the
// output buffer.
func (r *Renderer) RenderNode(node ast.Node) (string, error) {
	return r.node(r.root(), node)
}

// RenderIn renders node as if it appeared inside routine, which supplies local
// declarations and the owning package for name resolution.
func (r *Renderer) RenderIn(routine *ast.Routine, node ast.Node) (string, error) {
	return r.node(r.root().withRoutine(routine), node)
}

// node dispatches on the node kind.
func (r *Renderer) node(s scope, node ast.Node) (string, error) {
	switch n := node.(type) {
	case ast.Expr:
		return r.expr(s, n)
	case ast.Statement:
		return r.stmt(s, n)
	case *ast.ExceptionBlock:
		return r.exceptionBlock(s, n)
	case ast.DataType:
		return r.dataType(s, n), nil
	case *ast.Function:
		return r.function(s, n)
	case *ast.Procedure:
		return r.procedure(s, n)
	case *ast.Package:
		return r.pkg(n)
	case *ast.ObjectType:
		return r.objectType(n)
	case *ast.Trigger:
		return r.trigger(n)
	case *ast.View:
		return r.view(n)
	case *ast.Variable:
		return r.variable(s, n)
	case *ast.Parameter:
		return r.parameter(s, n)
	case *ast.CursorDecl:
		return r.cursorDecl(s, n)
	case *ast.ExceptionDecl:
		return s.indent() + exceptionDeclComment(n.Name), nil
	case *ast.SelectStatement:
		return r.query(s, n)
	case *ast.RecordType:
		return r.recordTypeDDL(s, n, recordCompositeName(r.recordRef(s, n)))
	case *ast.VarrayType:
		return r.collectionDomainDDL(s, n.Name, n.Element)
	case *ast.NestedTableType:
		return r.collectionDomainDDL(s, n.Name, n.Element)
	case *ast.SubType:
		return r.subTypeDDL(s, n), nil
	case nil:
		return "", types.ErrMissingChild
	}
	return "", fmt.Errorf("postgres renderer: %T: %w", node, types.ErrUnsupportedNode)
}

func (r *Renderer) emit(node ast.Node) error {
	out, err := r.node(r.root(), node)
	if err != nil {
		return err
	}
	r.w.WriteString(out)
	if out != "" && out[len(out)-1] != '\n' {
		r.w.WriteString("\n")
	}
	return nil
}

// placeholder logs a construct that degrades to a comment and returns text.
func (r *Renderer) placeholder(construct, text string) string {
	r.logger.Debug("construct rendered as placeholder", "construct", construct)
	return text
}

// Visitor methods render the node at the top level and append it to the output.

func (r *Renderer) VisitLiteral(node *ast.Literal) error {
	return r.emit(node)
}

func (r *Renderer) VisitIdent(node *ast.Ident) error {
	return r.emit(node)
}

func (r *Renderer) VisitBinary(node *ast.BinaryExpr) error {
	return r.emit(node)
}

func (r *Renderer) VisitUnary(node *ast.UnaryExpr) error {
	return r.emit(node)
}

func (r *Renderer) VisitIs(node *ast.IsExpr) error {
	return r.emit(node)
}

func (r *Renderer) VisitLike(node *ast.LikeExpr) error {
	return r.emit(node)
}

func (r *Renderer) VisitIn(node *ast.InExpr) error {
	return r.emit(node)
}

func (r *Renderer) VisitBetween(node *ast.BetweenExpr) error {
	return r.emit(node)
}

func (r *Renderer) VisitMultiset(node *ast.MultisetExpr) error {
	return r.emit(node)
}

func (r *Renderer) VisitParen(node *ast.ParenExpr) error {
	return r.emit(node)
}

func (r *Renderer) VisitCall(node *ast.Call) error {
	return r.emit(node)
}

func (r *Renderer) VisitNamedArg(node *ast.NamedArg) error {
	return r.emit(node)
}

func (r *Renderer) VisitCollectionMethod(node *ast.CollectionMethod) error {
	return r.emit(node)
}

func (r *Renderer) VisitFieldAccess(node *ast.FieldAccess) error {
	return r.emit(node)
}

func (r *Renderer) VisitCase(node *ast.CaseExpr) error {
	return r.emit(node)
}

func (r *Renderer) VisitCursorExpr(node *ast.CursorExpr) error {
	return r.emit(node)
}

func (r *Renderer) VisitSubquery(node *ast.SubqueryExpr) error {
	return r.emit(node)
}

func (r *Renderer) VisitCursorAttr(node *ast.CursorAttr) error {
	return r.emit(node)
}

func (r *Renderer) VisitAtTimeZone(node *ast.AtTimeZone) error {
	return r.emit(node)
}

func (r *Renderer) VisitCollate(node *ast.Collate) error {
	return r.emit(node)
}

func (r *Renderer) VisitOverflow(node *ast.OverflowExpr) error {
	return r.emit(node)
}

func (r *Renderer) VisitAssignment(node *ast.Assignment) error {
	return r.emit(node)
}

func (r *Renderer) VisitIf(node *ast.IfStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitLoop(node *ast.LoopStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitWhile(node *ast.WhileStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitForRange(node *ast.ForRangeStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitForCursor(node *ast.ForCursorStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitExit(node *ast.ExitStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitContinue(node *ast.ContinueStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitSelectInto(node *ast.SelectInto) error {
	return r.emit(node)
}

func (r *Renderer) VisitBulkCollect(node *ast.BulkCollect) error {
	return r.emit(node)
}

func (r *Renderer) VisitInsert(node *ast.InsertStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitUpdate(node *ast.UpdateStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitDelete(node *ast.DeleteStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitOpen(node *ast.OpenStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitFetch(node *ast.FetchStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitClose(node *ast.CloseStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitRaise(node *ast.RaiseStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitReturn(node *ast.ReturnStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitCallStatement(node *ast.CallStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitNull(node *ast.NullStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitBlock(node *ast.Block) error {
	return r.emit(node)
}

func (r *Renderer) VisitComment(node *ast.Comment) error {
	return r.emit(node)
}

func (r *Renderer) VisitSelect(node *ast.SelectStatement) error {
	return r.emit(node)
}

func (r *Renderer) VisitExceptionBlock(node *ast.ExceptionBlock) error {
	return r.emit(node)
}

func (r *Renderer) VisitVariable(node *ast.Variable) error {
	return r.emit(node)
}

func (r *Renderer) VisitParameter(node *ast.Parameter) error {
	return r.emit(node)
}

func (r *Renderer) VisitCursorDecl(node *ast.CursorDecl) error {
	return r.emit(node)
}

func (r *Renderer) VisitExceptionDecl(node *ast.ExceptionDecl) error {
	return r.emit(node)
}

func (r *Renderer) VisitRecordType(node *ast.RecordType) error {
	return r.emit(node)
}

func (r *Renderer) VisitVarrayType(node *ast.VarrayType) error {
	return r.emit(node)
}

func (r *Renderer) VisitNestedTableType(node *ast.NestedTableType) error {
	return r.emit(node)
}

func (r *Renderer) VisitSubType(node *ast.SubType) error {
	return r.emit(node)
}

func (r *Renderer) VisitFunction(node *ast.Function) error {
	return r.emit(node)
}

func (r *Renderer) VisitProcedure(node *ast.Procedure) error {
	return r.emit(node)
}

func (r *Renderer) VisitPackage(node *ast.Package) error {
	return r.emit(node)
}

func (r *Renderer) VisitObjectType(node *ast.ObjectType) error {
	return r.emit(node)
}

func (r *Renderer) VisitTrigger(node *ast.Trigger) error {
	return r.emit(node)
}

func (r *Renderer) VisitView(node *ast.View) error {
	return r.emit(node)
}

func (r *Renderer) VisitNativeType(node *ast.NativeType) error {
	return r.emit(node)
}

func (r *Renderer) VisitCustomType(node *ast.CustomType) error {
	return r.emit(node)
}

func (r *Renderer) VisitRowType(node *ast.RowType) error {
	return r.emit(node)
}

func (r *Renderer) VisitColumnType(node *ast.ColumnType) error {
	return r.emit(node)
}
