// Package oracle renders the tree back to PL/SQL source. The PostgreSQL
// renderer uses it to quote untranslatable constructs inside comments, and
// the transpile command uses it to show the source next to the output.
package oracle

import (
	"fmt"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/platform"
	"github.com/stokaro/ora2pg/core/renderer/dialects/internal/bufwriter"
	"github.com/stokaro/ora2pg/core/renderer/types"
)

var (
	_ types.RenderVisitor = (*Renderer)(nil)
)

// Renderer provides PL/SQL rendering
type Renderer struct {
	w bufwriter.Writer
}

// New creates a new PL/SQL renderer
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Dialect() string {
	return platform.Oracle
}

func (r *Renderer) Reset() {
	r.w.Reset()
}

func (r *Renderer) Output() string {
	return r.w.String()
}

// Render renders an AST node to PL/SQL and returns the result. Expressions
// render on a single line without a trailing newline.
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

func (r *Renderer) writeExpr(e ast.Expr) error {
	out, err := expr(e)
	if err != nil {
		return err
	}
	r.w.WriteString(out)
	return nil
}

func (r *Renderer) VisitLiteral(node *ast.Literal) error                { return r.writeExpr(node) }
func (r *Renderer) VisitIdent(node *ast.Ident) error                    { return r.writeExpr(node) }
func (r *Renderer) VisitBinary(node *ast.BinaryExpr) error              { return r.writeExpr(node) }
func (r *Renderer) VisitUnary(node *ast.UnaryExpr) error                { return r.writeExpr(node) }
func (r *Renderer) VisitIs(node *ast.IsExpr) error                      { return r.writeExpr(node) }
func (r *Renderer) VisitLike(node *ast.LikeExpr) error                  { return r.writeExpr(node) }
func (r *Renderer) VisitIn(node *ast.InExpr) error                      { return r.writeExpr(node) }
func (r *Renderer) VisitBetween(node *ast.BetweenExpr) error            { return r.writeExpr(node) }
func (r *Renderer) VisitMultiset(node *ast.MultisetExpr) error          { return r.writeExpr(node) }
func (r *Renderer) VisitParen(node *ast.ParenExpr) error                { return r.writeExpr(node) }
func (r *Renderer) VisitCall(node *ast.Call) error                      { return r.writeExpr(node) }
func (r *Renderer) VisitNamedArg(node *ast.NamedArg) error              { return r.writeExpr(node) }
func (r *Renderer) VisitCollectionMethod(node *ast.CollectionMethod) error { return r.writeExpr(node) }
func (r *Renderer) VisitFieldAccess(node *ast.FieldAccess) error        { return r.writeExpr(node) }
func (r *Renderer) VisitCase(node *ast.CaseExpr) error                  { return r.writeExpr(node) }
func (r *Renderer) VisitCursorExpr(node *ast.CursorExpr) error          { return r.writeExpr(node) }
func (r *Renderer) VisitSubquery(node *ast.SubqueryExpr) error          { return r.writeExpr(node) }
func (r *Renderer) VisitCursorAttr(node *ast.CursorAttr) error          { return r.writeExpr(node) }
func (r *Renderer) VisitAtTimeZone(node *ast.AtTimeZone) error          { return r.writeExpr(node) }
func (r *Renderer) VisitCollate(node *ast.Collate) error                { return r.writeExpr(node) }
func (r *Renderer) VisitOverflow(node *ast.OverflowExpr) error          { return r.writeExpr(node) }

func (r *Renderer) VisitNativeType(node *ast.NativeType) error {
	r.w.WriteString(dataType(node))
	return nil
}

func (r *Renderer) VisitCustomType(node *ast.CustomType) error {
	r.w.WriteString(dataType(node))
	return nil
}

func (r *Renderer) VisitRowType(node *ast.RowType) error {
	r.w.WriteString(dataType(node))
	return nil
}

func (r *Renderer) VisitColumnType(node *ast.ColumnType) error {
	r.w.WriteString(dataType(node))
	return nil
}

// VisitSelect renders a query as a statement.
func (r *Renderer) VisitSelect(node *ast.SelectStatement) error {
	q, err := query(node)
	if err != nil {
		return err
	}
	r.w.WriteLine(q + ";")
	return nil
}

// body renders statements one level deeper.
func (r *Renderer) body(list []ast.Statement) error {
	r.w.Indent()
	defer r.w.Dedent()
	for _, st := range list {
		if st == nil {
			return types.ErrMissingChild
		}
		if err := st.Accept(r); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) line(format string, args ...any) error {
	r.w.WriteLinef(format, args...)
	return nil
}

func (r *Renderer) VisitAssignment(node *ast.Assignment) error {
	target, err := expr(node.Target)
	if err != nil {
		return err
	}
	value, err := expr(node.Value)
	if err != nil {
		return err
	}
	return r.line("%s := %s;", target, value)
}

func (r *Renderer) VisitIf(node *ast.IfStatement) error {
	cond, err := expr(node.Cond)
	if err != nil {
		return err
	}
	r.w.WriteLinef("IF %s THEN", cond)
	if err := r.body(node.Then); err != nil {
		return err
	}
	for _, elsif := range node.ElsIfs {
		cond, err := expr(elsif.Cond)
		if err != nil {
			return err
		}
		r.w.WriteLinef("ELSIF %s THEN", cond)
		if err := r.body(elsif.Body); err != nil {
			return err
		}
	}
	if len(node.Else) > 0 {
		r.w.WriteLine("ELSE")
		if err := r.body(node.Else); err != nil {
			return err
		}
	}
	return r.line("END IF;")
}

func (r *Renderer) loop(label, head string, body []ast.Statement) error {
	if label != "" {
		r.w.WriteLinef("<<%s>>", label)
	}
	r.w.WriteLine(head)
	if err := r.body(body); err != nil {
		return err
	}
	if label != "" {
		return r.line("END LOOP %s;", label)
	}
	return r.line("END LOOP;")
}

func (r *Renderer) VisitLoop(node *ast.LoopStatement) error {
	return r.loop(node.Label, "LOOP", node.Body)
}

func (r *Renderer) VisitWhile(node *ast.WhileStatement) error {
	cond, err := expr(node.Cond)
	if err != nil {
		return err
	}
	return r.loop(node.Label, "WHILE "+cond+" LOOP", node.Body)
}

func (r *Renderer) VisitForRange(node *ast.ForRangeStatement) error {
	low, err := expr(node.Low)
	if err != nil {
		return err
	}
	high, err := expr(node.High)
	if err != nil {
		return err
	}
	reverse := ""
	if node.Reverse {
		reverse = "REVERSE "
	}
	return r.loop(node.Label, fmt.Sprintf("FOR %s IN %s%s..%s LOOP", node.Var, reverse, low, high), node.Body)
}

func (r *Renderer) VisitForCursor(node *ast.ForCursorStatement) error {
	source := node.Cursor
	if node.Query != nil {
		q, err := query(node.Query)
		if err != nil {
			return err
		}
		source = "(" + q + ")"
	} else if len(node.Args) > 0 {
		args, err := exprList(node.Args)
		if err != nil {
			return err
		}
		source += "(" + strings.Join(args, ", ") + ")"
	}
	return r.loop(node.Label, fmt.Sprintf("FOR %s IN %s LOOP", node.Record, source), node.Body)
}

func (r *Renderer) exit(keyword, label string, when ast.Expr) error {
	out := keyword
	if label != "" {
		out += " " + label
	}
	if when != nil {
		cond, err := expr(when)
		if err != nil {
			return err
		}
		out += " WHEN " + cond
	}
	return r.line("%s;", out)
}

func (r *Renderer) VisitExit(node *ast.ExitStatement) error {
	return r.exit("EXIT", node.Label, node.When)
}

func (r *Renderer) VisitContinue(node *ast.ContinueStatement) error {
	return r.exit("CONTINUE", node.Label, node.When)
}

func (r *Renderer) selectInto(columns, into []string, bulk bool, schema, table string, where ast.Expr) error {
	keyword := "INTO"
	if bulk {
		keyword = "BULK COLLECT INTO"
	}
	out := fmt.Sprintf("SELECT %s %s %s FROM %s", strings.Join(columns, ", "), keyword, strings.Join(into, ", "), qualified(schema, table))
	if where != nil {
		cond, err := expr(where)
		if err != nil {
			return err
		}
		out += " WHERE " + cond
	}
	return r.line("%s;", out)
}

func (r *Renderer) VisitSelectInto(node *ast.SelectInto) error {
	return r.selectInto(node.Columns, node.Into, false, node.Schema, node.Table, node.Where)
}

func (r *Renderer) VisitBulkCollect(node *ast.BulkCollect) error {
	return r.selectInto(node.Columns, node.Into, true, node.Schema, node.Table, node.Where)
}

func (r *Renderer) VisitInsert(node *ast.InsertStatement) error {
	out := "INSERT INTO " + qualified(node.Schema, node.Table)
	if len(node.Columns) > 0 {
		out += " (" + strings.Join(node.Columns, ", ") + ")"
	}
	if node.Query != nil {
		q, err := query(node.Query)
		if err != nil {
			return err
		}
		return r.line("%s %s;", out, q)
	}
	values, err := exprList(node.Values)
	if err != nil {
		return err
	}
	return r.line("%s VALUES (%s);", out, strings.Join(values, ", "))
}

func where(cond ast.Expr, currentOf string) (string, error) {
	if currentOf != "" {
		return " WHERE CURRENT OF " + currentOf, nil
	}
	if cond == nil {
		return "", nil
	}
	out, err := expr(cond)
	if err != nil {
		return "", err
	}
	return " WHERE " + out, nil
}

func (r *Renderer) VisitUpdate(node *ast.UpdateStatement) error {
	sets := make([]string, 0, len(node.Set))
	for _, set := range node.Set {
		v, err := expr(set.Value)
		if err != nil {
			return err
		}
		sets = append(sets, set.Column+" = "+v)
	}
	w, err := where(node.Where, node.CurrentOf)
	if err != nil {
		return err
	}
	return r.line("UPDATE %s SET %s%s;", qualified(node.Schema, node.Table), strings.Join(sets, ", "), w)
}

func (r *Renderer) VisitDelete(node *ast.DeleteStatement) error {
	w, err := where(node.Where, node.CurrentOf)
	if err != nil {
		return err
	}
	return r.line("DELETE FROM %s%s;", qualified(node.Schema, node.Table), w)
}

func (r *Renderer) VisitOpen(node *ast.OpenStatement) error {
	if node.Query != nil {
		q, err := query(node.Query)
		if err != nil {
			return err
		}
		return r.line("OPEN %s FOR %s;", node.Cursor, q)
	}
	if len(node.Args) > 0 {
		args, err := exprList(node.Args)
		if err != nil {
			return err
		}
		return r.line("OPEN %s(%s);", node.Cursor, strings.Join(args, ", "))
	}
	return r.line("OPEN %s;", node.Cursor)
}

func (r *Renderer) VisitFetch(node *ast.FetchStatement) error {
	keyword := "INTO"
	if node.Bulk {
		keyword = "BULK COLLECT INTO"
	}
	out := fmt.Sprintf("FETCH %s %s %s", node.Cursor, keyword, strings.Join(node.Into, ", "))
	if node.Limit != nil {
		limit, err := expr(node.Limit)
		if err != nil {
			return err
		}
		out += " LIMIT " + limit
	}
	return r.line("%s;", out)
}

func (r *Renderer) VisitClose(node *ast.CloseStatement) error {
	return r.line("CLOSE %s;", node.Cursor)
}

func (r *Renderer) VisitRaise(node *ast.RaiseStatement) error {
	if node.Exception == "" {
		return r.line("RAISE;")
	}
	return r.line("RAISE %s;", node.Exception)
}

func (r *Renderer) VisitReturn(node *ast.ReturnStatement) error {
	if node.Value == nil {
		return r.line("RETURN;")
	}
	v, err := expr(node.Value)
	if err != nil {
		return err
	}
	return r.line("RETURN %s;", v)
}

func (r *Renderer) VisitCallStatement(node *ast.CallStatement) error {
	name := node.Routine
	if node.Package != "" {
		name = node.Package + "." + name
	}
	if node.Schema != "" {
		name = node.Schema + "." + name
	}
	args, err := exprList(node.Args)
	if err != nil {
		return err
	}
	call := name
	if len(args) > 0 {
		call += "(" + strings.Join(args, ", ") + ")"
	}
	if node.Into != nil {
		into, err := expr(node.Into)
		if err != nil {
			return err
		}
		return r.line("%s := %s;", into, call)
	}
	return r.line("%s;", call)
}

func (r *Renderer) VisitNull(*ast.NullStatement) error {
	return r.line("NULL;")
}

func (r *Renderer) VisitBlock(node *ast.Block) error {
	if node.Label != "" {
		r.w.WriteLinef("<<%s>>", node.Label)
	}
	if len(node.Variables) > 0 || len(node.Cursors) > 0 {
		r.w.WriteLine("DECLARE")
		if err := r.declarations(node.Variables, node.Cursors); err != nil {
			return err
		}
	}
	r.w.WriteLine("BEGIN")
	if err := r.body(node.Body); err != nil {
		return err
	}
	if node.Exception != nil {
		if err := node.Exception.Accept(r); err != nil {
			return err
		}
	}
	if node.Label != "" {
		return r.line("END %s;", node.Label)
	}
	return r.line("END;")
}

func (r *Renderer) VisitComment(node *ast.Comment) error {
	for _, l := range strings.Split(node.Text, "\n") {
		r.w.WriteLinef("-- %s", strings.TrimSpace(l))
	}
	return nil
}

func (r *Renderer) VisitExceptionBlock(node *ast.ExceptionBlock) error {
	r.w.WriteLine("EXCEPTION")
	r.w.Indent()
	defer r.w.Dedent()
	for _, h := range node.Handlers {
		names := "OTHERS"
		if len(h.Names) > 0 {
			names = strings.Join(h.Names, " OR ")
		}
		r.w.WriteLinef("WHEN %s THEN", names)
		if err := r.body(h.Body); err != nil {
			return err
		}
	}
	return nil
}
