package postgres

import (
	"fmt"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/mapping"
	"github.com/stokaro/ora2pg/core/renderer/types"
)

func (r *Renderer) variable(s scope, v *ast.Variable) (string, error) {
	line := s.indent() + v.Name
	if v.Constant {
		line += " CONSTANT"
	}
	line += " " + r.dataType(s, v.Type)
	if v.NotNull {
		line += " NOT NULL"
	}
	switch {
	case v.Default != nil:
		def, err := r.expr(s, v.Default)
		if err != nil {
			return "", err
		}
		line += " := " + def
	case r.isTableOfRecords(s, v.Type):
		line += " := '{}'::jsonb"
	}
	return line + ";", nil
}

func (r *Renderer) isTableOfRecords(s scope, t ast.DataType) bool {
	_, _, ok := r.symbols.TableOfRecords(s.routine, s.pkg, t)
	return ok
}

func (r *Renderer) parameter(s scope, p *ast.Parameter) (string, error) {
	var b strings.Builder
	switch p.Mode {
	case ast.ModeOut:
		b.WriteString("OUT ")
	case ast.ModeInOut:
		b.WriteString("INOUT ")
	}
	b.WriteString(p.Name + " " + r.dataType(s, p.Type))
	if p.Default != nil {
		def, err := r.expr(s, p.Default)
		if err != nil {
			return "", err
		}
		b.WriteString(" DEFAULT " + def)
	}
	return b.String(), nil
}

func (r *Renderer) parameters(s scope, params []*ast.Parameter) (string, error) {
	out := make([]string, 0, len(params))
	for _, p := range params {
		text, err := r.parameter(s, p)
		if err != nil {
			return "", err
		}
		out = append(out, text)
	}
	return strings.Join(out, ", "), nil
}

func (r *Renderer) cursorDecl(s scope, c *ast.CursorDecl) (string, error) {
	if c.Query == nil {
		return "", types.ErrMissingChild
	}
	line := s.indent() + c.Name + " CURSOR"
	if len(c.Parameters) > 0 {
		params := make([]string, 0, len(c.Parameters))
		for _, p := range c.Parameters {
			params = append(params, p.Name+" "+r.dataType(s, p.Type))
		}
		line += " (" + strings.Join(params, ", ") + ")"
	}
	q, err := r.query(s, c.Query)
	if err != nil {
		return "", err
	}
	return line + " FOR " + q + ";", nil
}

// declarations renders variables and cursors one level deeper than s.
func (r *Renderer) declarations(s scope, vars []*ast.Variable, cursors []*ast.CursorDecl) ([]string, error) {
	inner := s.nested()
	var lines []string
	for _, v := range vars {
		line, err := r.variable(inner, v)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name, err)
		}
		lines = append(lines, line)
	}
	for _, c := range cursors {
		line, err := r.cursorDecl(inner, c)
		if err != nil {
			return nil, fmt.Errorf("cursor %s: %w", c.Name, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func exceptionDeclComment(name string) string {
	return fmt.Sprintf("-- exception %s declared (raise maps to SQLSTATE %s)", name, mapping.UserExceptionSQLState)
}

// loopRecords returns the record names of cursor and query FOR loops in body
// that the routine does not declare itself.
func loopRecords(routine *ast.Routine, body []ast.Statement) []string {
	var names []string
	seen := map[string]bool{}
	for _, st := range body {
		ast.Inspect(st, func(n ast.Node) bool {
			loop, ok := n.(*ast.ForCursorStatement)
			if !ok || loop.Record == "" {
				return true
			}
			key := fold(loop.Record)
			if seen[key] {
				return true
			}
			seen[key] = true
			if _, declared := routine.DeclaredType(loop.Record); !declared {
				names = append(names, loop.Record)
			}
			return true
		})
	}
	return names
}

// routineBody renders DECLARE ... END; for a routine at the level of s.
// In spec-only mode the body is replaced by stub.
func (r *Renderer) routineBody(s scope, routine *ast.Routine, stub string) (string, error) {
	in := s.indent()
	inner := s.nested()
	var lines []string
	if stub != "" {
		lines = append(lines, in+"BEGIN", inner.indent()+stub, in+"END;")
		return strings.Join(lines, "\n"), nil
	}

	decls, err := r.declarations(s, routine.Variables, routine.Cursors)
	if err != nil {
		return "", err
	}
	for _, name := range loopRecords(routine, routine.Body) {
		decls = append(decls, inner.indent()+name+" RECORD;")
	}
	for _, e := range routine.Exceptions {
		decls = append(decls, inner.indent()+exceptionDeclComment(e.Name))
	}
	for _, t := range routine.VarrayTypes {
		decls = append(decls, inner.indent()+fmt.Sprintf("-- VARRAY type %s is rendered as %s[]", t.Name, r.dataType(s, t.Element)))
	}
	for _, t := range routine.NestedTableTypes {
		decls = append(decls, inner.indent()+fmt.Sprintf("-- TABLE type %s is rendered as %s", t.Name, r.dataType(s, ast.NewCustomType(t.Name))))
	}
	for _, t := range routine.RecordTypes {
		decls = append(decls, inner.indent()+fmt.Sprintf("-- RECORD type %s is created as %s", t.Name, recordCompositeName(r.recordRef(s, t))))
	}
	if len(decls) > 0 {
		lines = append(lines, in+"DECLARE")
		lines = append(lines, decls...)
	}

	lines = append(lines, in+"BEGIN")
	body, err := r.statements(s, routine.Body)
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		body = []string{inner.indent() + "NULL;"}
	}
	lines = append(lines, body...)
	if routine.Exception != nil {
		exc, err := r.exceptionBlock(s, routine.Exception)
		if err != nil {
			return "", err
		}
		lines = append(lines, exc)
	}
	lines = append(lines, in+"END;")
	return strings.Join(lines, "\n"), nil
}

// selfParameter is the leading parameter of object type members.
func selfParameter(routine *ast.Routine) string {
	if routine.ObjectType == nil {
		return ""
	}
	return "self " + mapping.ObjectName(routine.ObjectType.Schema, routine.ObjectType.Name)
}

func (r *Renderer) signature(s scope, routine *ast.Routine, withSelf bool) (string, error) {
	params, err := r.parameters(s, routine.Parameters)
	if err != nil {
		return "", err
	}
	if self := selfParameter(routine); withSelf && self != "" {
		if params != "" {
			params = self + ", " + params
		} else {
			params = self
		}
	}
	return mapping.RoutineName(routine.OwnerSchema(), routine.OwnerName(), routine.Name) + "(" + params + ")", nil
}

func (r *Renderer) function(s scope, fn *ast.Function) (string, error) {
	return r.functionAs(s, fn, false)
}

// functionAs renders CREATE FUNCTION. Object type constructors return the
// object built in a local self variable and take no self parameter.
func (r *Renderer) functionAs(s scope, fn *ast.Function, constructor bool) (string, error) {
	if !fn.Linked() {
		return "", fmt.Errorf("function %s has no owning package, type or schema: %w", fn.Name, types.ErrMissingChild)
	}
	if fn.ReturnType == nil && !constructor {
		return "", fmt.Errorf("function %s return type: %w", fn.Name, types.ErrMissingChild)
	}
	routine := &fn.Routine
	if constructor && fn.ObjectType == nil {
		return "", fmt.Errorf("constructor %s has no object type: %w", fn.Name, types.ErrMissingChild)
	}
	if constructor {
		self := *routine
		self.Variables = append([]*ast.Variable{ast.NewVariable("self", ast.NewCustomType(fn.ObjectType.Schema+"."+fn.ObjectType.Name))}, routine.Variables...)
		routine = &self
		s = s.withConstructor(fn.ObjectType)
	}
	s = s.withRoutine(routine)

	sig, err := r.signature(s, routine, !constructor)
	if err != nil {
		return "", fmt.Errorf("function %s: %w", fn.Name, err)
	}
	var returns string
	if constructor {
		returns = mapping.ObjectName(fn.ObjectType.Schema, fn.ObjectType.Name)
	} else {
		returns = r.dataType(s, fn.ReturnType)
	}
	if fn.Pipelined {
		returns = "SETOF " + returns
	}

	stub := ""
	if r.specOnly {
		stub = "RETURN NULL;"
		if fn.Pipelined {
			stub = "RETURN;"
		}
	}
	body, err := r.routineBody(s, routine, stub)
	if err != nil {
		return "", fmt.Errorf("function %s: %w", fn.Name, err)
	}

	in := s.indent()
	lines := []string{
		in + "CREATE OR REPLACE FUNCTION " + sig,
		in + "RETURNS " + returns,
		in + "LANGUAGE plpgsql",
	}
	if fn.Deterministic {
		lines = append(lines, in+"IMMUTABLE")
	}
	lines = append(lines, in+"AS $$", body, in+"$$;")
	return strings.Join(lines, "\n"), nil
}

func (r *Renderer) procedure(s scope, proc *ast.Procedure) (string, error) {
	if !proc.Linked() {
		return "", fmt.Errorf("procedure %s has no owning package, type or schema: %w", proc.Name, types.ErrMissingChild)
	}
	s = s.withRoutine(&proc.Routine)
	sig, err := r.signature(s, &proc.Routine, true)
	if err != nil {
		return "", fmt.Errorf("procedure %s: %w", proc.Name, err)
	}
	stub := ""
	if r.specOnly {
		stub = "NULL;"
	}
	body, err := r.routineBody(s, &proc.Routine, stub)
	if err != nil {
		return "", fmt.Errorf("procedure %s: %w", proc.Name, err)
	}
	in := s.indent()
	return strings.Join([]string{
		in + "CREATE OR REPLACE PROCEDURE " + sig,
		in + "LANGUAGE plpgsql",
		in + "AS $$",
		body,
		in + "$$;",
	}, "\n"), nil
}

// RoutineTypes renders the composite types of the record types a routine
// declares locally. Functions referencing them must be created afterwards.
func (r *Renderer) RoutineTypes(routine *ast.Routine) (string, error) {
	s := r.root().withRoutine(routine)
	var out []string
	for _, rt := range routine.RecordTypes {
		ddl, err := r.recordTypeDDL(s, rt, recordCompositeName(r.recordRef(s, rt)))
		if err != nil {
			return "", err
		}
		out = append(out, ddl)
	}
	return strings.Join(out, "\n\n"), nil
}

func (r *Renderer) recordTypeDDL(s scope, rt *ast.RecordType, name string) (string, error) {
	if len(rt.Fields) == 0 {
		return "", fmt.Errorf("record type %s fields: %w", rt.Name, types.ErrMissingChild)
	}
	fields := make([]string, 0, len(rt.Fields))
	for _, f := range rt.Fields {
		fields = append(fields, s.nested().indent()+f.Name+" "+r.dataType(s, f.Type))
	}
	in := s.indent()
	return in + "CREATE TYPE " + name + " AS (\n" + strings.Join(fields, ",\n") + "\n" + in + ");", nil
}

func (r *Renderer) collectionDomainDDL(s scope, name string, elem ast.DataType) (string, error) {
	if elem == nil {
		return "", fmt.Errorf("collection type %s element: %w", name, types.ErrMissingChild)
	}
	domain := name
	if s.pkg != nil {
		domain = mapping.TypeName(s.pkg.Schema, s.pkg.Name, name)
	}
	base := r.dataType(s, elem) + "[]"
	if _, _, ok := r.symbols.TableOfRecords(s.routine, s.pkg, ast.NewCustomType(name)); ok {
		base = "jsonb"
	}
	return s.indent() + "CREATE DOMAIN " + domain + " AS " + base + ";", nil
}

func (r *Renderer) subTypeDDL(s scope, st *ast.SubType) string {
	name := st.Name
	if s.pkg != nil {
		name = mapping.TypeName(s.pkg.Schema, s.pkg.Name, st.Name)
	}
	line := s.indent() + "CREATE DOMAIN " + name + " AS " + r.dataType(s, st.Base)
	if st.NotNull {
		line += " NOT NULL"
	}
	return line + ";"
}

// Function renders CREATE OR REPLACE FUNCTION for a linked function.
func (r *Renderer) Function(fn *ast.Function) (string, error) {
	return r.function(r.root(), fn)
}

// Procedure renders CREATE OR REPLACE PROCEDURE for a linked procedure.
func (r *Renderer) Procedure(proc *ast.Procedure) (string, error) {
	return r.procedure(r.root(), proc)
}
