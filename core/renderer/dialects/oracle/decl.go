package oracle

import (
	"fmt"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/renderer/types"
)

func variable(v *ast.Variable) (string, error) {
	var sb strings.Builder
	sb.WriteString(v.Name)
	if v.Constant {
		sb.WriteString(" CONSTANT")
	}
	sb.WriteString(" " + dataType(v.Type))
	if v.NotNull {
		sb.WriteString(" NOT NULL")
	}
	if v.Default != nil {
		d, err := expr(v.Default)
		if err != nil {
			return "", err
		}
		sb.WriteString(" := " + d)
	}
	return sb.String(), nil
}

func parameter(p *ast.Parameter) (string, error) {
	out := p.Name
	if p.Mode != "" && p.Mode != ast.ModeIn {
		out += " " + string(p.Mode)
	}
	if p.NoCopy {
		out += " NOCOPY"
	}
	out += " " + dataType(p.Type)
	if p.Default != nil {
		d, err := expr(p.Default)
		if err != nil {
			return "", err
		}
		out += " DEFAULT " + d
	}
	return out, nil
}

func parameters(list []*ast.Parameter) (string, error) {
	if len(list) == 0 {
		return "", nil
	}
	out := make([]string, 0, len(list))
	for _, p := range list {
		s, err := parameter(p)
		if err != nil {
			return "", err
		}
		out = append(out, s)
	}
	return "(" + strings.Join(out, ", ") + ")", nil
}

func cursor(c *ast.CursorDecl) (string, error) {
	params, err := parameters(c.Parameters)
	if err != nil {
		return "", err
	}
	out := "CURSOR " + c.Name + params
	if c.ReturnType != nil {
		out += " RETURN " + dataType(c.ReturnType)
	}
	if c.Query == nil {
		return out + ";", nil
	}
	q, err := query(c.Query)
	if err != nil {
		return "", err
	}
	return out + " IS " + q + ";", nil
}

func recordType(n *ast.RecordType) (string, error) {
	fields := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		field := f.Name + " " + dataType(f.Type)
		if f.NotNull {
			field += " NOT NULL"
		}
		if f.Default != nil {
			d, err := expr(f.Default)
			if err != nil {
				return "", err
			}
			field += " := " + d
		}
		fields = append(fields, field)
	}
	return fmt.Sprintf("TYPE %s IS RECORD (%s);", n.Name, strings.Join(fields, ", ")), nil
}

func varrayType(n *ast.VarrayType) (string, error) {
	size := ""
	if n.Size != nil {
		s, err := expr(n.Size)
		if err != nil {
			return "", err
		}
		size = s
	}
	return fmt.Sprintf("TYPE %s IS VARRAY(%s) OF %s;", n.Name, size, dataType(n.Element)), nil
}

func nestedTableType(n *ast.NestedTableType) string {
	out := fmt.Sprintf("TYPE %s IS TABLE OF %s", n.Name, dataType(n.Element))
	if n.IndexBy != nil {
		out += " INDEX BY " + dataType(n.IndexBy)
	}
	return out + ";"
}

func subType(n *ast.SubType) string {
	out := fmt.Sprintf("SUBTYPE %s IS %s", n.Name, dataType(n.Base))
	if n.NotNull {
		out += " NOT NULL"
	}
	return out + ";"
}

// declarations writes the declaration lines one level deeper than the
// current indentation.
func (r *Renderer) declarations(vars []*ast.Variable, cursors []*ast.CursorDecl) error {
	r.w.Indent()
	defer r.w.Dedent()
	for _, v := range vars {
		if err := r.VisitVariable(v); err != nil {
			return err
		}
	}
	for _, c := range cursors {
		if err := r.VisitCursorDecl(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) VisitVariable(node *ast.Variable) error {
	out, err := variable(node)
	if err != nil {
		return err
	}
	return r.line("%s;", out)
}

func (r *Renderer) VisitParameter(node *ast.Parameter) error {
	out, err := parameter(node)
	if err != nil {
		return err
	}
	r.w.WriteString(out)
	return nil
}

func (r *Renderer) VisitCursorDecl(node *ast.CursorDecl) error {
	out, err := cursor(node)
	if err != nil {
		return err
	}
	r.w.WriteLine(out)
	return nil
}

func (r *Renderer) VisitExceptionDecl(node *ast.ExceptionDecl) error {
	return r.line("%s EXCEPTION;", node.Name)
}

func (r *Renderer) VisitRecordType(node *ast.RecordType) error {
	out, err := recordType(node)
	if err != nil {
		return err
	}
	r.w.WriteLine(out)
	return nil
}

func (r *Renderer) VisitVarrayType(node *ast.VarrayType) error {
	out, err := varrayType(node)
	if err != nil {
		return err
	}
	r.w.WriteLine(out)
	return nil
}

func (r *Renderer) VisitNestedTableType(node *ast.NestedTableType) error {
	r.w.WriteLine(nestedTableType(node))
	return nil
}

func (r *Renderer) VisitSubType(node *ast.SubType) error {
	r.w.WriteLine(subType(node))
	return nil
}

// routineDeclarations writes the local types, exceptions, variables and
// cursors of a routine.
func (r *Renderer) routineDeclarations(routine *ast.Routine) error {
	r.w.Indent()
	for _, t := range routine.RecordTypes {
		if err := r.VisitRecordType(t); err != nil {
			r.w.Dedent()
			return err
		}
	}
	for _, t := range routine.VarrayTypes {
		if err := r.VisitVarrayType(t); err != nil {
			r.w.Dedent()
			return err
		}
	}
	for _, t := range routine.NestedTableTypes {
		r.w.WriteLine(nestedTableType(t))
	}
	for _, e := range routine.Exceptions {
		r.w.WriteLinef("%s EXCEPTION;", e.Name)
	}
	r.w.Dedent()
	return r.declarations(routine.Variables, routine.Cursors)
}

func (r *Renderer) routineBody(routine *ast.Routine) error {
	if err := r.routineDeclarations(routine); err != nil {
		return err
	}
	r.w.WriteLine("BEGIN")
	body := routine.Body
	if len(body) == 0 {
		body = []ast.Statement{&ast.NullStatement{}}
	}
	if err := r.body(body); err != nil {
		return err
	}
	if routine.Exception != nil {
		if err := r.VisitExceptionBlock(routine.Exception); err != nil {
			return err
		}
	}
	return r.line("END %s;", routine.Name)
}

func (r *Renderer) functionHead(fn *ast.Function, keyword string) (string, error) {
	if fn.ReturnType == nil {
		return "", fmt.Errorf("function %s: return type: %w", fn.Name, types.ErrMissingChild)
	}
	params, err := parameters(fn.Parameters)
	if err != nil {
		return "", err
	}
	head := fmt.Sprintf("%s %s%s RETURN %s", keyword, fn.Name, params, dataType(fn.ReturnType))
	if fn.Deterministic {
		head += " DETERMINISTIC"
	}
	if fn.Pipelined {
		head += " PIPELINED"
	}
	return head, nil
}

func (r *Renderer) procedureHead(proc *ast.Procedure) (string, error) {
	params, err := parameters(proc.Parameters)
	if err != nil {
		return "", err
	}
	return "PROCEDURE " + proc.Name + params, nil
}

func (r *Renderer) VisitFunction(node *ast.Function) error {
	head, err := r.functionHead(node, "FUNCTION")
	if err != nil {
		return err
	}
	r.w.WriteLine(head + " IS")
	return r.routineBody(&node.Routine)
}

func (r *Renderer) VisitProcedure(node *ast.Procedure) error {
	head, err := r.procedureHead(node)
	if err != nil {
		return err
	}
	r.w.WriteLine(head + " IS")
	return r.routineBody(&node.Routine)
}

// VisitPackage writes the package specification followed by its body.
func (r *Renderer) VisitPackage(node *ast.Package) error {
	name := qualified(node.Schema, node.Name)
	r.w.WriteLinef("CREATE OR REPLACE PACKAGE %s AS", name)
	if err := r.packageSpec(node); err != nil {
		return err
	}
	r.w.WriteLinef("END %s;", node.Name)
	r.w.WriteLine("/")

	r.w.WriteLinef("CREATE OR REPLACE PACKAGE BODY %s AS", name)
	if err := r.packageRoutines(node); err != nil {
		return err
	}
	if len(node.Body) > 0 {
		r.w.WriteLine("BEGIN")
		if err := r.body(node.Body); err != nil {
			return err
		}
	}
	r.w.WriteLinef("END %s;", node.Name)
	return r.line("/")
}

func (r *Renderer) packageSpec(node *ast.Package) error {
	r.w.Indent()
	defer r.w.Dedent()
	for _, t := range node.SubTypes {
		r.w.WriteLine(subType(t))
	}
	for _, t := range node.RecordTypes {
		if err := r.VisitRecordType(t); err != nil {
			return err
		}
	}
	for _, t := range node.VarrayTypes {
		if err := r.VisitVarrayType(t); err != nil {
			return err
		}
	}
	for _, t := range node.NestedTableTypes {
		r.w.WriteLine(nestedTableType(t))
	}
	for _, e := range node.Exceptions {
		r.w.WriteLinef("%s EXCEPTION;", e.Name)
	}
	for _, v := range node.Variables {
		if err := r.VisitVariable(v); err != nil {
			return err
		}
	}
	for _, c := range node.Cursors {
		if err := r.VisitCursorDecl(c); err != nil {
			return err
		}
	}
	for _, fn := range node.Functions {
		head, err := r.functionHead(fn, "FUNCTION")
		if err != nil {
			return err
		}
		r.w.WriteLine(head + ";")
	}
	for _, proc := range node.Procedures {
		head, err := r.procedureHead(proc)
		if err != nil {
			return err
		}
		r.w.WriteLine(head + ";")
	}
	return nil
}

func (r *Renderer) packageRoutines(node *ast.Package) error {
	r.w.Indent()
	defer r.w.Dedent()
	for _, fn := range node.Functions {
		if err := r.VisitFunction(fn); err != nil {
			return err
		}
	}
	for _, proc := range node.Procedures {
		if err := r.VisitProcedure(proc); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) VisitObjectType(node *ast.ObjectType) error {
	name := qualified(node.Schema, node.Name)
	switch {
	case node.Varray != nil:
		size := ""
		if node.Varray.Size != nil {
			s, err := expr(node.Varray.Size)
			if err != nil {
				return err
			}
			size = s
		}
		return r.line("CREATE OR REPLACE TYPE %s AS VARRAY(%s) OF %s;", name, size, dataType(node.Varray.Element))
	case node.NestedTable != nil:
		return r.line("CREATE OR REPLACE TYPE %s AS TABLE OF %s;", name, dataType(node.NestedTable.Element))
	}
	r.w.WriteLinef("CREATE OR REPLACE TYPE %s AS OBJECT (", name)
	r.w.Indent()
	members := make([]string, 0, len(node.Attributes))
	for _, a := range node.Attributes {
		members = append(members, a.Name+" "+dataType(a.Type))
	}
	for _, c := range node.Constructors {
		params, err := parameters(c.Parameters)
		if err != nil {
			r.w.Dedent()
			return err
		}
		members = append(members, fmt.Sprintf("CONSTRUCTOR FUNCTION %s%s RETURN SELF AS RESULT", c.Name, params))
	}
	for _, fn := range node.Functions {
		head, err := r.functionHead(fn, "MEMBER FUNCTION")
		if err != nil {
			r.w.Dedent()
			return err
		}
		members = append(members, head)
	}
	for _, proc := range node.Procedures {
		head, err := r.procedureHead(proc)
		if err != nil {
			r.w.Dedent()
			return err
		}
		members = append(members, "MEMBER "+head)
	}
	for i, m := range members {
		if i < len(members)-1 {
			m += ","
		}
		r.w.WriteLine(m)
	}
	r.w.Dedent()
	return r.line(");")
}

func (r *Renderer) VisitTrigger(node *ast.Trigger) error {
	events := make([]string, 0, len(node.Events))
	for _, e := range node.Events {
		if strings.EqualFold(e, "UPDATE") && len(node.UpdateColumns) > 0 {
			e += " OF " + strings.Join(node.UpdateColumns, ", ")
		}
		events = append(events, e)
	}
	r.w.WriteLinef("CREATE OR REPLACE TRIGGER %s", qualified(node.Schema, node.Name))
	r.w.WriteLinef("%s %s ON %s", node.Timing, strings.Join(events, " OR "), qualified(node.TableSchema, node.Table))
	if node.ForEachRow {
		r.w.WriteLine("FOR EACH ROW")
	}
	if node.When != nil {
		cond, err := expr(node.When)
		if err != nil {
			return err
		}
		r.w.WriteLinef("WHEN (%s)", cond)
	}
	block := &ast.Block{Variables: node.Variables, Body: node.Body, Exception: node.Exception}
	return r.VisitBlock(block)
}

func (r *Renderer) VisitView(node *ast.View) error {
	if node.Query == nil {
		return fmt.Errorf("view %s: %w", node.Name, types.ErrMissingChild)
	}
	q, err := query(node.Query)
	if err != nil {
		return err
	}
	cols := ""
	if len(node.Columns) > 0 {
		cols = " (" + strings.Join(node.Columns, ", ") + ")"
	}
	return r.line("CREATE OR REPLACE VIEW %s%s AS %s;", qualified(node.Schema, node.Name), cols, q)
}
