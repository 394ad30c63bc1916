package postgres

import (
	"fmt"
	"slices"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/mapping"
	"github.com/stokaro/ora2pg/core/renderer/types"
	"github.com/stokaro/ora2pg/core/symtab"
)

// stmt renders one statement as indented lines without a trailing newline.
func (r *Renderer) stmt(s scope, st ast.Statement) (string, error) {
	in := s.indent()
	switch n := st.(type) {
	case nil:
		return "", types.ErrMissingChild
	case *ast.Assignment:
		line, err := r.assignment(s, n)
		if err != nil {
			return "", err
		}
		return in + line, nil
	case *ast.IfStatement:
		return r.ifStmt(s, n)
	case *ast.LoopStatement:
		return r.loop(s, n.Label, "LOOP", n.Body)
	case *ast.WhileStatement:
		cond, err := r.expr(s, n.Cond)
		if err != nil {
			return "", err
		}
		return r.loop(s, n.Label, "WHILE "+cond+" LOOP", n.Body)
	case *ast.ForRangeStatement:
		low, err := r.expr(s, n.Low)
		if err != nil {
			return "", err
		}
		high, err := r.expr(s, n.High)
		if err != nil {
			return "", err
		}
		head := fmt.Sprintf("FOR %s IN %s..%s LOOP", n.Var, low, high)
		if n.Reverse {
			head = fmt.Sprintf("FOR %s IN REVERSE %s..%s LOOP", n.Var, high, low)
		}
		return r.loop(s, n.Label, head, n.Body)
	case *ast.ForCursorStatement:
		head, err := r.forCursorHead(s, n)
		if err != nil {
			return "", err
		}
		return r.loop(s, n.Label, head, n.Body)
	case *ast.ExitStatement:
		return r.exit(s, "EXIT", n.Label, n.When)
	case *ast.ContinueStatement:
		return r.exit(s, "CONTINUE", n.Label, n.When)
	case *ast.SelectInto:
		return r.selectInto(s, n)
	case *ast.BulkCollect:
		return r.bulkCollect(s, n)
	case *ast.InsertStatement:
		return r.insert(s, n)
	case *ast.UpdateStatement:
		return r.update(s, n)
	case *ast.DeleteStatement:
		where, err := r.dmlWhere(s, n.Where, n.CurrentOf)
		if err != nil {
			return "", err
		}
		return in + "DELETE FROM " + r.tableName(s, n.Schema, n.Table) + where + ";", nil
	case *ast.OpenStatement:
		return r.open(s, n)
	case *ast.FetchStatement:
		if n.Bulk {
			return in + r.placeholder("FETCH BULK COLLECT", fmt.Sprintf("-- FETCH %s BULK COLLECT INTO %s: manual conversion required", n.Cursor, strings.Join(n.Into, ", "))), nil
		}
		return in + fmt.Sprintf("FETCH %s INTO %s;", n.Cursor, strings.Join(n.Into, ", ")), nil
	case *ast.CloseStatement:
		return in + "CLOSE " + n.Cursor + ";", nil
	case *ast.RaiseStatement:
		return in + r.raise(n), nil
	case *ast.ReturnStatement:
		return r.returnStmt(s, n)
	case *ast.CallStatement:
		return r.callStatement(s, n)
	case *ast.NullStatement:
		return in + "NULL;", nil
	case *ast.Block:
		return r.block(s, n)
	case *ast.Comment:
		return comment(in, n.Text), nil
	}
	return "", fmt.Errorf("postgres renderer: statement %T: %w", st, types.ErrUnsupportedNode)
}

func comment(indent, text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = indent + "-- " + strings.TrimSpace(l)
	}
	return strings.Join(lines, "\n")
}

// statements renders a statement list one level deeper than s.
func (r *Renderer) statements(s scope, list []ast.Statement) ([]string, error) {
	inner := s.nested()
	out := make([]string, 0, len(list))
	for _, st := range list {
		line, err := r.stmt(inner, st)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

func (r *Renderer) assignment(s scope, n *ast.Assignment) (string, error) {
	if n.Target == nil {
		return "", types.ErrMissingChild
	}
	value, err := r.expr(s, n.Value)
	if err != nil {
		return "", err
	}
	if ref, ok := r.resolver.ResolveExpr(n.Target, s.routine, s.pkg); ok {
		return r.resolver.Write(ref, value) + ";", nil
	}
	if call, ok := n.Target.(*ast.Call); ok && len(call.Args) == 1 {
		if line, ok, err := r.elementAssignment(s, call, value); ok || err != nil {
			return line, err
		}
	}
	target, err := r.expr(s, n.Target)
	if err != nil {
		return "", err
	}
	return target + " := " + value + ";", nil
}

// elementAssignment renders coll(i) := value for tables of records, local
// arrays and package collection variables.
func (r *Renderer) elementAssignment(s scope, call *ast.Call, value string) (string, bool, error) {
	if len(call.Name) == 1 {
		name := call.Name[0]
		if composite, ok := r.tableOfRecords(s, name); ok {
			key, constant, err := r.jsonKey(s, call.Args[0])
			if err != nil {
				return "", true, err
			}
			path := "ARRAY[" + key + "]"
			if constant {
				path = jsonPath(key)
			}
			return fmt.Sprintf("%[1]s := jsonb_set(%[1]s, %[2]s, to_jsonb(%[3]s::%[4]s));", name, path, value, composite), true, nil
		}
		if _, ok := r.localCollection(s, name); ok {
			idx, err := r.expr(s, call.Args[0])
			if err != nil {
				return "", true, err
			}
			return fmt.Sprintf("%s[%s] := %s;", name, idx, value), true, nil
		}
		if s.isLocal(name) {
			return "", false, nil
		}
	}
	if ref, ok := r.resolver.Resolve(call.Name, s.routine, s.pkg); ok && ref.IsCollection() {
		idx, err := r.expr(s, call.Args[0])
		if err != nil {
			return "", true, err
		}
		return r.resolver.ElementWrite(ref, idx, value) + ";", true, nil
	}
	return "", false, nil
}

func (r *Renderer) ifStmt(s scope, n *ast.IfStatement) (string, error) {
	in := s.indent()
	cond, err := r.expr(s, n.Cond)
	if err != nil {
		return "", err
	}
	lines := []string{in + "IF " + cond + " THEN"}
	body, err := r.statements(s, n.Then)
	if err != nil {
		return "", err
	}
	lines = append(lines, body...)
	for _, elsif := range n.ElsIfs {
		cond, err := r.expr(s, elsif.Cond)
		if err != nil {
			return "", err
		}
		lines = append(lines, in+"ELSIF "+cond+" THEN")
		body, err := r.statements(s, elsif.Body)
		if err != nil {
			return "", err
		}
		lines = append(lines, body...)
	}
	if len(n.Else) > 0 {
		lines = append(lines, in+"ELSE")
		body, err := r.statements(s, n.Else)
		if err != nil {
			return "", err
		}
		lines = append(lines, body...)
	}
	lines = append(lines, in+"END IF;")
	return strings.Join(lines, "\n"), nil
}

func (r *Renderer) loop(s scope, label, head string, body []ast.Statement) (string, error) {
	in := s.indent()
	var lines []string
	if label != "" {
		lines = append(lines, in+"<<"+label+">>")
	}
	lines = append(lines, in+head)
	inner, err := r.statements(s, body)
	if err != nil {
		return "", err
	}
	lines = append(lines, inner...)
	end := in + "END LOOP"
	if label != "" {
		end += " " + label
	}
	lines = append(lines, end+";")
	return strings.Join(lines, "\n"), nil
}

func (r *Renderer) forCursorHead(s scope, n *ast.ForCursorStatement) (string, error) {
	if n.Query != nil {
		q, err := r.query(s, n.Query)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("FOR %s IN %s LOOP", n.Record, q), nil
	}
	if n.Cursor == "" {
		return "", types.ErrMissingChild
	}
	cursor := n.Cursor
	if len(n.Args) > 0 {
		args, err := r.exprList(s, n.Args)
		if err != nil {
			return "", err
		}
		cursor += "(" + strings.Join(args, ", ") + ")"
	}
	return fmt.Sprintf("FOR %s IN %s LOOP", n.Record, cursor), nil
}

func (r *Renderer) exit(s scope, keyword, label string, when ast.Expr) (string, error) {
	line := s.indent() + keyword
	if label != "" {
		line += " " + label
	}
	if when != nil {
		cond, err := r.expr(s, when)
		if err != nil {
			return "", err
		}
		line += " WHEN " + cond
	}
	return line + ";", nil
}

// fromWhere renders the shared FROM/WHERE tail of SELECT INTO and BULK COLLECT.
func (r *Renderer) fromWhere(s scope, schema, table string, where ast.Expr) (string, error) {
	out := " FROM " + r.tableName(s, schema, table)
	if where != nil {
		cond, err := r.expr(s, where)
		if err != nil {
			return "", err
		}
		out += " WHERE " + cond
	}
	return out, nil
}

func (r *Renderer) selectInto(s scope, n *ast.SelectInto) (string, error) {
	tail, err := r.fromWhere(s, n.Schema, n.Table, n.Where)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%sSELECT %s INTO STRICT %s%s;", s.indent(), strings.Join(n.Columns, ", "), strings.Join(n.Into, ", "), tail), nil
}

// bulkCollect expands SELECT a, b BULK COLLECT INTO x, y into one ARRAY
// subquery assignment per column.
func (r *Renderer) bulkCollect(s scope, n *ast.BulkCollect) (string, error) {
	in := s.indent()
	source := mapping.ObjectName(n.Schema, n.Table)
	if slices.Contains(n.Columns, "*") {
		return in + r.placeholder("BULK COLLECT", fmt.Sprintf("-- SELECT * BULK COLLECT INTO %s FROM %s: manual conversion required", strings.Join(n.Into, ", "), source)), nil
	}
	if len(n.Columns) != len(n.Into) || len(n.Columns) == 0 {
		return in + r.placeholder("BULK COLLECT", fmt.Sprintf("-- BULK COLLECT of %d columns INTO %d collections FROM %s: manual conversion required", len(n.Columns), len(n.Into), source)), nil
	}
	tail, err := r.fromWhere(s, n.Schema, n.Table, n.Where)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(n.Columns))
	for i, col := range n.Columns {
		lines[i] = fmt.Sprintf("%s%s := ARRAY(SELECT %s%s);", in, n.Into[i], col, tail)
	}
	return strings.Join(lines, "\n"), nil
}

func (r *Renderer) insert(s scope, n *ast.InsertStatement) (string, error) {
	line := s.indent() + "INSERT INTO " + r.tableName(s, n.Schema, n.Table)
	if len(n.Columns) > 0 {
		line += " (" + strings.Join(n.Columns, ", ") + ")"
	}
	if n.Query != nil {
		q, err := r.query(s, n.Query)
		if err != nil {
			return "", err
		}
		return line + " " + q + ";", nil
	}
	values, err := r.exprList(s, n.Values)
	if err != nil {
		return "", err
	}
	return line + " VALUES (" + strings.Join(values, ", ") + ");", nil
}

func (r *Renderer) update(s scope, n *ast.UpdateStatement) (string, error) {
	sets := make([]string, 0, len(n.Set))
	for _, set := range n.Set {
		v, err := r.expr(s, set.Value)
		if err != nil {
			return "", err
		}
		sets = append(sets, set.Column+" = "+v)
	}
	where, err := r.dmlWhere(s, n.Where, n.CurrentOf)
	if err != nil {
		return "", err
	}
	return s.indent() + "UPDATE " + r.tableName(s, n.Schema, n.Table) + " SET " + strings.Join(sets, ", ") + where + ";", nil
}

func (r *Renderer) dmlWhere(s scope, where ast.Expr, currentOf string) (string, error) {
	if currentOf != "" {
		return " WHERE CURRENT OF " + currentOf, nil
	}
	if where == nil {
		return "", nil
	}
	cond, err := r.expr(s, where)
	if err != nil {
		return "", err
	}
	return " WHERE " + cond, nil
}

func (r *Renderer) open(s scope, n *ast.OpenStatement) (string, error) {
	line := s.indent() + "OPEN " + n.Cursor
	if n.Query != nil {
		q, err := r.query(s, n.Query)
		if err != nil {
			return "", err
		}
		return line + " FOR " + q + ";", nil
	}
	if len(n.Args) > 0 {
		args, err := r.exprList(s, n.Args)
		if err != nil {
			return "", err
		}
		line += "(" + strings.Join(args, ", ") + ")"
	}
	return line + ";", nil
}

// raise maps predefined exceptions to their condition names. Other names,
// such as user-declared exceptions, keep their name and raise the user
// SQLSTATE.
func (r *Renderer) raise(n *ast.RaiseStatement) string {
	if n.Exception == "" {
		return "RAISE;"
	}
	if _, known := mapping.LookupException(n.Exception); known {
		line := "RAISE " + mapping.RaiseCondition(n.Exception)
		if n.Message != "" {
			line += " USING MESSAGE = " + quote(n.Message)
		}
		return line + ";"
	}
	msg := mapping.RaiseCondition(n.Exception)
	if n.Message != "" {
		msg += ": " + n.Message
	}
	return fmt.Sprintf("RAISE EXCEPTION %s USING ERRCODE = '%s';", quote(strings.ReplaceAll(msg, "%", "%%")), mapping.UserExceptionSQLState)
}

func (r *Renderer) returnStmt(s scope, n *ast.ReturnStatement) (string, error) {
	in := s.indent()
	if n.Value == nil {
		if s.self != nil {
			return in + "RETURN self;", nil
		}
		return in + "RETURN;", nil
	}
	v, err := r.expr(s, n.Value)
	if err != nil {
		return "", err
	}
	return in + "RETURN " + v + ";", nil
}

func (r *Renderer) callStatement(s scope, n *ast.CallStatement) (string, error) {
	in := s.indent()
	args, err := r.exprList(s, n.Args)
	if err != nil {
		return "", err
	}
	routine := strings.ToUpper(n.Routine)

	switch {
	case n.Package == "" && n.Schema == "" && routine == "RAISE_APPLICATION_ERROR" && len(args) >= 2:
		return in + fmt.Sprintf("RAISE EXCEPTION '%%', %s USING ERRCODE = '%s';", args[1], mapping.UserExceptionSQLState), nil
	case strings.EqualFold(n.Package, "DBMS_OUTPUT") && (routine == "PUT_LINE" || routine == "PUT"):
		if len(args) == 0 {
			return in + "RAISE NOTICE '';", nil
		}
		return in + fmt.Sprintf("RAISE NOTICE '%%', %s;", args[0]), nil
	case n.Schema == "" && strings.EqualFold(n.Package, "HTP") && (routine == "P" || routine == "PRINT" || routine == "PRN"):
		return in + r.htpCall(routine, n.Args, args) + ";", nil
	case routine == ast.MethodExtend || routine == ast.MethodDelete || routine == ast.MethodTrim:
		var target []string
		for _, part := range []string{n.Schema, n.Package} {
			if part != "" {
				target = append(target, part)
			}
		}
		if len(target) > 0 {
			line, err := r.collectionStatement(s, target, routine, n.Args, args)
			if err != nil {
				return "", err
			}
			return in + line, nil
		}
	}

	name, kind := r.callTarget(s, n)
	call := name + "(" + strings.Join(args, ", ") + ")"
	if n.Into != nil {
		if ref, ok := r.resolver.ResolveExpr(n.Into, s.routine, s.pkg); ok {
			return in + r.resolver.Write(ref, call) + ";", nil
		}
		into, err := r.expr(s, n.Into)
		if err != nil {
			return "", err
		}
		return in + into + " := " + call + ";", nil
	}
	if kind == symtab.KindFunction {
		return in + "PERFORM " + call + ";", nil
	}
	return in + "CALL " + call + ";", nil
}

// htpCall writes to the runtime's HTP buffer. htp.prn adds no line break.
// Non-literal arguments are cast, the buffer procedures take text.
func (r *Renderer) htpCall(routine string, raw []ast.Expr, args []string) string {
	proc := "htp_p"
	if routine == "PRN" {
		proc = "htp_prn"
	}
	arg := "''"
	if len(args) > 0 {
		arg = args[0]
		if lit, ok := raw[0].(*ast.Literal); !ok || lit.Kind != ast.LitString {
			arg = "(" + arg + ")::text"
		}
	}
	return "CALL " + r.runtime + "." + proc + "(" + arg + ")"
}

// callTarget qualifies the callee of a call statement and classifies it.
func (r *Renderer) callTarget(s scope, n *ast.CallStatement) (string, int) {
	var parts []string
	for _, part := range []string{n.Schema, n.Package, n.Routine} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	name, known := r.routineName(s, parts)
	if !known {
		return name, symtab.KindUnknown
	}
	switch len(parts) {
	case 1:
		if s.pkg != nil {
			if s.pkg.FindFunction(n.Routine) != nil {
				return name, symtab.KindFunction
			}
			if s.pkg.FindProcedure(n.Routine) != nil {
				return name, symtab.KindProcedure
			}
		}
		return name, r.symbols.RoutineKind(s.schema(), "", n.Routine)
	case 2:
		if kind := r.symbols.RoutineKind("", parts[0], n.Routine); kind != symtab.KindUnknown {
			return name, kind
		}
		return name, r.symbols.RoutineKind(parts[0], "", n.Routine)
	}
	return name, r.symbols.RoutineKind(parts[0], parts[1], n.Routine)
}

// collectionStatement renders EXTEND, DELETE and TRIM called as statements.
func (r *Renderer) collectionStatement(s scope, target []string, method string, rawArgs []ast.Expr, args []string) (string, error) {
	if ref, ok := r.resolver.Resolve(target, s.routine, s.pkg); ok && ref.IsCollection() {
		line := r.resolver.MethodStatement(ref, method, args)
		if strings.HasPrefix(line, "/*") {
			return line, nil
		}
		return line + ";", nil
	}
	name := strings.Join(target, ".")
	if len(target) == 1 {
		if _, ok := r.tableOfRecords(s, name); ok {
			return r.recordsStatement(s, name, method, rawArgs)
		}
	}
	switch method {
	case ast.MethodExtend:
		if len(args) == 0 {
			return fmt.Sprintf("%[1]s := array_append(%[1]s, NULL);", name), nil
		}
		elem := "text"
		if ct, ok := r.localCollection(s, name); ok && ct.Element != nil {
			elem = r.dataType(s, ct.Element)
		}
		return fmt.Sprintf("%[1]s := array_cat(%[1]s, array_fill(NULL::%[2]s, ARRAY[%[3]s]));", name, elem, args[0]), nil
	case ast.MethodDelete:
		if len(args) == 0 {
			return name + " := '{}';", nil
		}
		return fmt.Sprintf("%[1]s := %[1]s[:(%[2]s) - 1] || %[1]s[(%[2]s) + 1:];", name, args[0]), nil
	}
	n := "1"
	if len(args) > 0 {
		n = args[0]
	}
	return fmt.Sprintf("%[1]s := %[1]s[1:array_length(%[1]s, 1) - %[2]s];", name, n), nil
}

func (r *Renderer) recordsStatement(s scope, name, method string, args []ast.Expr) (string, error) {
	if method != ast.MethodDelete {
		return r.placeholder("collection method", fmt.Sprintf("-- %s.%s on a table of records: manual conversion required", name, method)), nil
	}
	if len(args) == 0 {
		return name + " := '{}'::jsonb;", nil
	}
	key, constant, err := r.jsonKey(s, args[0])
	if err != nil {
		return "", err
	}
	if constant {
		key = quote(key)
	}
	return fmt.Sprintf("%[1]s := %[1]s - %[2]s;", name, key), nil
}

func (r *Renderer) block(s scope, n *ast.Block) (string, error) {
	in := s.indent()
	inner := s.withRoutine(blockRoutine(s, n))
	var lines []string
	if n.Label != "" {
		lines = append(lines, in+"<<"+n.Label+">>")
	}
	decls, err := r.declarations(inner, n.Variables, n.Cursors)
	if err != nil {
		return "", err
	}
	if len(decls) > 0 {
		lines = append(lines, in+"DECLARE")
		lines = append(lines, decls...)
	}
	lines = append(lines, in+"BEGIN")
	body, err := r.statements(inner, n.Body)
	if err != nil {
		return "", err
	}
	lines = append(lines, body...)
	if n.Exception != nil {
		exc, err := r.exceptionBlock(inner, n.Exception)
		if err != nil {
			return "", err
		}
		lines = append(lines, exc)
	}
	end := in + "END"
	if n.Label != "" {
		end += " " + n.Label
	}
	lines = append(lines, end+";")
	return strings.Join(lines, "\n"), nil
}

// blockRoutine layers the declarations of a nested block over the enclosing
// routine so that they shadow outer names.
func blockRoutine(s scope, n *ast.Block) *ast.Routine {
	var br ast.Routine
	if s.routine != nil {
		br = *s.routine
	} else {
		br.Schema = s.schema()
		br.Package = s.pkg
	}
	br.Variables = append(slices.Clone(n.Variables), br.Variables...)
	br.Cursors = append(slices.Clone(n.Cursors), br.Cursors...)
	return &br
}

// exceptionBlock renders EXCEPTION with its handlers at the level of s.
func (r *Renderer) exceptionBlock(s scope, n *ast.ExceptionBlock) (string, error) {
	in := s.indent()
	handlerIn := s.nested()
	lines := []string{in + "EXCEPTION"}
	for _, h := range n.Handlers {
		lines = append(lines, handlerIn.indent()+"WHEN "+strings.Join(handlerConditions(h.Names), " OR ")+" THEN")
		body, err := r.statements(handlerIn, h.Body)
		if err != nil {
			return "", err
		}
		lines = append(lines, body...)
	}
	return strings.Join(lines, "\n"), nil
}

// handlerConditions maps WHEN names, dropping duplicates. Any name that maps
// to OTHERS makes the handler catch everything.
func handlerConditions(names []string) []string {
	if len(names) == 0 {
		return []string{mapping.OthersCondition}
	}
	var out []string
	for _, name := range names {
		cond := mapping.HandlerCondition(name)
		if cond == mapping.OthersCondition {
			return []string{mapping.OthersCondition}
		}
		if !slices.Contains(out, cond) {
			out = append(out, cond)
		}
	}
	return out
}
