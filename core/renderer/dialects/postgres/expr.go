package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/mapping"
	"github.com/stokaro/ora2pg/core/pkgvar"
	"github.com/stokaro/ora2pg/core/renderer/dialects/oracle"
	"github.com/stokaro/ora2pg/core/renderer/types"
	"github.com/stokaro/ora2pg/core/symtab"
)

const limitComment = "/* Oracle varray limit check - PostgreSQL arrays have no fixed limits */"

func (r *Renderer) expr(s scope, e ast.Expr) (string, error) {
	switch n := e.(type) {
	case nil:
		return "", types.ErrMissingChild
	case *ast.Literal:
		return literal(n), nil
	case *ast.Ident:
		return r.ident(s, n), nil
	case *ast.BinaryExpr:
		return r.binary(s, n)
	case *ast.UnaryExpr:
		return r.unary(s, n)
	case *ast.IsExpr:
		return r.isExpr(s, n)
	case *ast.LikeExpr:
		return r.like(s, n)
	case *ast.InExpr:
		return r.in(s, n)
	case *ast.BetweenExpr:
		return r.between(s, n)
	case *ast.MultisetExpr:
		return r.multiset(n)
	case *ast.ParenExpr:
		x, err := r.expr(s, n.X)
		if err != nil {
			return "", err
		}
		return "(" + x + ")", nil
	case *ast.Call:
		return r.call(s, n)
	case *ast.NamedArg:
		v, err := r.expr(s, n.Value)
		if err != nil {
			return "", err
		}
		return n.Name + " => " + v, nil
	case *ast.CollectionMethod:
		return r.collectionMethod(s, n)
	case *ast.FieldAccess:
		return r.fieldAccess(s, n)
	case *ast.CaseExpr:
		return r.caseExpr(s, n)
	case *ast.CursorExpr:
		if n.Query == nil {
			return "", types.ErrMissingChild
		}
		q, err := r.query(s, n.Query)
		if err != nil {
			return "", err
		}
		return "CURSOR FOR " + q, nil
	case *ast.SubqueryExpr:
		if n.Query == nil {
			return "", types.ErrMissingChild
		}
		q, err := r.query(s, n.Query)
		if err != nil {
			return "", err
		}
		return "(" + q + ")", nil
	case *ast.CursorAttr:
		return r.cursorAttr(n), nil
	case *ast.AtTimeZone:
		x, err := r.operand(s, n.X, ast.PrecUnary)
		if err != nil {
			return "", err
		}
		if n.Local {
			return x + " AT TIME ZONE 'localtime'", nil
		}
		zone, err := r.operand(s, n.Zone, ast.PrecUnary)
		if err != nil {
			return "", err
		}
		return x + " AT TIME ZONE " + zone, nil
	case *ast.Collate:
		x, err := r.operand(s, n.X, ast.PrecUnary)
		if err != nil {
			return "", err
		}
		return x + " COLLATE " + n.Collation, nil
	case *ast.OverflowExpr:
		x, err := r.expr(s, n.X)
		if err != nil {
			return "", err
		}
		action := strings.ToUpper(n.Action)
		return x + " " + r.placeholder("ON OVERFLOW", "/* ON OVERFLOW "+action+" - manual handling required */"), nil
	}
	return "", fmt.Errorf("postgres renderer: expression %T: %w", e, types.ErrUnsupportedNode)
}

// operand renders e, parenthesized when it binds looser than prec.
func (r *Renderer) operand(s scope, e ast.Expr, prec int) (string, error) {
	out, err := r.expr(s, e)
	if err != nil {
		return "", err
	}
	if ast.Precedence(e) < prec {
		return "(" + out + ")", nil
	}
	return out, nil
}

func (r *Renderer) exprList(s scope, list []ast.Expr) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, e := range list {
		v, err := r.expr(s, e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func literal(n *ast.Literal) string {
	switch n.Kind {
	case ast.LitString:
		q := quote(n.Value)
		if n.TypeName != "" {
			return n.TypeName + " " + q
		}
		return q
	case ast.LitNull:
		return "NULL"
	case ast.LitBoolean:
		return strings.ToUpper(n.Value)
	}
	return n.Value
}

// quote renders a string literal. pq prefixes literals needing the E''
// form with a space, which is trimmed here.
func quote(s string) string {
	return strings.TrimLeft(pq.QuoteLiteral(s), " ")
}

func (r *Renderer) ident(s scope, n *ast.Ident) string {
	parts := n.Parts
	if len(parts) == 0 {
		return ""
	}
	if s.trigger != nil {
		if out, ok := triggerIdent(parts); ok {
			return out
		}
	}
	if len(parts) == 1 {
		if s.isLocal(parts[0]) {
			return parts[0]
		}
		if obj := r.ownerType(s); obj != nil && isAttribute(obj, parts[0]) {
			return "self." + parts[0]
		}
		if strings.EqualFold(parts[0], "ROWNUM") {
			return r.placeholder("ROWNUM", "/* ROWNUM - use ROW_NUMBER() OVER () or LIMIT */")
		}
		if out, ok := mapping.KeywordBuiltin(parts[0]); ok {
			return out
		}
	}
	if out, ok := r.sequence(s, parts); ok {
		return out
	}
	if ref, ok := r.resolver.Resolve(parts, s.routine, s.pkg); ok {
		return r.resolver.Read(ref)
	}
	return n.Name()
}

// triggerIdent rewrites :NEW/:OLD correlation names and the DML predicates.
func triggerIdent(parts []string) (string, bool) {
	first := strings.ToUpper(strings.TrimPrefix(parts[0], ":"))
	if len(parts) > 1 && (first == "NEW" || first == "OLD") {
		return first + "." + strings.Join(parts[1:], "."), true
	}
	if len(parts) == 1 {
		switch first {
		case "INSERTING":
			return "TG_OP = 'INSERT'", true
		case "UPDATING":
			return "TG_OP = 'UPDATE'", true
		case "DELETING":
			return "TG_OP = 'DELETE'", true
		}
	}
	return "", false
}

func (r *Renderer) sequence(s scope, parts []string) (string, bool) {
	if len(parts) < 2 || len(parts) > 3 {
		return "", false
	}
	var fn string
	switch strings.ToUpper(parts[len(parts)-1]) {
	case "NEXTVAL":
		fn = "nextval"
	case "CURRVAL":
		fn = "currval"
	default:
		return "", false
	}
	schema, seq := s.schema(), parts[0]
	if len(parts) == 3 {
		schema, seq = parts[0], parts[1]
	}
	name := strings.ToLower(seq)
	if schema != "" {
		name = strings.ToLower(schema) + "." + name
	}
	return fmt.Sprintf("%s('%s')", fn, name), true
}

func (r *Renderer) binary(s scope, n *ast.BinaryExpr) (string, error) {
	if n.Left == nil || n.Right == nil {
		return "", types.ErrMissingChild
	}
	if n.Op.IsComparison() {
		if out, ok := r.limitComparison(n); ok {
			return out, nil
		}
	}
	prec := ast.Precedence(n)
	left, err := r.operand(s, n.Left, prec)
	if err != nil {
		return "", err
	}
	right, err := r.operand(s, n.Right, prec+1)
	if err != nil {
		return "", err
	}
	return left + " " + mapping.BinaryOperator(n.Op) + " " + right, nil
}

// limitComparison folds a comparison against a VARRAY .LIMIT to a constant.
// PostgreSQL arrays are unbounded, so "below the limit" is always true.
func (r *Renderer) limitComparison(n *ast.BinaryExpr) (string, bool) {
	limitLeft, limitRight := isLimit(n.Left), isLimit(n.Right)
	if !limitLeft && !limitRight {
		return "", false
	}
	result := "FALSE"
	switch n.Op {
	case ast.OpLt, ast.OpLe:
		if limitRight {
			result = "TRUE"
		}
	case ast.OpGt, ast.OpGe:
		if limitLeft {
			result = "TRUE"
		}
	case ast.OpNe, ast.OpNeBang, ast.OpNeCaret:
		result = "TRUE"
	}
	return r.placeholder("LIMIT comparison", result+" "+limitComment), true
}

func isLimit(e ast.Expr) bool {
	m, ok := e.(*ast.CollectionMethod)
	return ok && m.Method == ast.MethodLimit
}

func (r *Renderer) unary(s scope, n *ast.UnaryExpr) (string, error) {
	if n.X == nil {
		return "", types.ErrMissingChild
	}
	switch n.Op {
	case ast.OpNot:
		x, err := r.operand(s, n.X, ast.PrecNot)
		if err != nil {
			return "", err
		}
		return "NOT " + x, nil
	case ast.OpNeg, ast.OpPos:
		x, err := r.operand(s, n.X, ast.PrecUnary)
		if err != nil {
			return "", err
		}
		return string(n.Op) + x, nil
	case ast.OpPrior, ast.OpConnectByRoot:
		x, err := r.expr(s, n.X)
		if err != nil {
			return "", err
		}
		return x + " " + r.placeholder(string(n.Op), fmt.Sprintf("/* %s %s - hierarchical query requires recursive CTE */", n.Op, x)), nil
	case ast.OpNew:
		return r.expr(s, n.X)
	}
	x, err := r.expr(s, n.X)
	if err != nil {
		return "", err
	}
	return string(n.Op) + " " + x, nil
}

func (r *Renderer) isExpr(s scope, n *ast.IsExpr) (string, error) {
	x, err := r.operand(s, n.X, ast.PrecComparison+1)
	if err != nil {
		return "", err
	}
	not := ""
	if n.Not {
		not = "NOT "
	}
	if n.Test == ast.IsOfType {
		return fmt.Sprintf("%s IS %sOF (%s)", x, not, strings.Join(n.TypeNames, ", ")), nil
	}
	return fmt.Sprintf("%s IS %s%s", x, not, n.Test), nil
}

func (r *Renderer) like(s scope, n *ast.LikeExpr) (string, error) {
	x, err := r.operand(s, n.X, ast.PrecComparison+1)
	if err != nil {
		return "", err
	}
	pattern, err := r.operand(s, n.Pattern, ast.PrecComparison+1)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(x)
	if n.Not {
		b.WriteString(" NOT")
	}
	b.WriteString(" " + mapping.LikeOperator(n.Op) + " " + pattern)
	if n.Escape != nil {
		esc, err := r.expr(s, n.Escape)
		if err != nil {
			return "", err
		}
		b.WriteString(" ESCAPE " + esc)
	}
	return b.String(), nil
}

func (r *Renderer) in(s scope, n *ast.InExpr) (string, error) {
	x, err := r.operand(s, n.X, ast.PrecComparison+1)
	if err != nil {
		return "", err
	}
	op := " IN "
	if n.Not {
		op = " NOT IN "
	}
	if n.Query != nil {
		q, err := r.query(s, n.Query)
		if err != nil {
			return "", err
		}
		return x + op + "(" + q + ")", nil
	}
	list, err := r.exprList(s, n.List)
	if err != nil {
		return "", err
	}
	return x + op + "(" + strings.Join(list, ", ") + ")", nil
}

func (r *Renderer) between(s scope, n *ast.BetweenExpr) (string, error) {
	x, err := r.operand(s, n.X, ast.PrecComparison+1)
	if err != nil {
		return "", err
	}
	low, err := r.operand(s, n.Low, ast.PrecComparison+1)
	if err != nil {
		return "", err
	}
	high, err := r.operand(s, n.High, ast.PrecComparison+1)
	if err != nil {
		return "", err
	}
	op := " BETWEEN "
	if n.Not {
		op = " NOT BETWEEN "
	}
	return x + op + low + " AND " + high, nil
}

// multiset keeps the source text of a multiset operation inside a comment.
func (r *Renderer) multiset(n *ast.MultisetExpr) (string, error) {
	if n.Left == nil || n.Right == nil {
		return "", types.ErrMissingChild
	}
	src, err := oracle.New().Render(n)
	if err != nil {
		return "", err
	}
	return r.placeholder("MULTISET", fmt.Sprintf("/* MULTISET operation: %s - manual conversion required */", strings.TrimSpace(src))), nil
}

func (r *Renderer) caseExpr(s scope, n *ast.CaseExpr) (string, error) {
	var b strings.Builder
	b.WriteString("CASE")
	if n.Operand != nil {
		op, err := r.expr(s, n.Operand)
		if err != nil {
			return "", err
		}
		b.WriteString(" " + op)
	}
	for _, w := range n.Whens {
		cond, err := r.expr(s, w.Cond)
		if err != nil {
			return "", err
		}
		result, err := r.expr(s, w.Result)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHEN " + cond + " THEN " + result)
	}
	if n.Else != nil {
		e, err := r.expr(s, n.Else)
		if err != nil {
			return "", err
		}
		b.WriteString(" ELSE " + e)
	}
	b.WriteString(" END")
	return b.String(), nil
}

func (r *Renderer) cursorAttr(n *ast.CursorAttr) string {
	switch n.Attribute {
	case ast.AttrFound:
		return "FOUND"
	case ast.AttrNotFound:
		return "NOT FOUND"
	case ast.AttrRowCount:
		return r.placeholder("%ROWCOUNT", fmt.Sprintf("/* %s%%ROWCOUNT - use GET DIAGNOSTICS variable = ROW_COUNT */", n.Cursor))
	case ast.AttrIsOpen:
		return r.placeholder("%ISOPEN", fmt.Sprintf("/* %s%%ISOPEN - manual cursor state tracking required */", n.Cursor))
	}
	return r.placeholder("cursor attribute", fmt.Sprintf("/* %s%%%s not supported */", n.Cursor, n.Attribute))
}

func (r *Renderer) fieldAccess(s scope, n *ast.FieldAccess) (string, error) {
	if n.X == nil {
		return "", types.ErrMissingChild
	}
	if ref, ok := r.resolver.ResolveExpr(n, s.routine, s.pkg); ok {
		return r.resolver.Read(ref), nil
	}
	x, err := r.expr(s, n.X)
	if err != nil {
		return "", err
	}
	if _, plain := n.X.(*ast.Ident); plain {
		return x + "." + n.Field, nil
	}
	return "(" + x + ")." + n.Field, nil
}

// jsonKey renders a table-of-records index as a jsonb object key. Constant
// indexes become literal keys; anything else is cast to text at run time.
func (r *Renderer) jsonKey(s scope, index ast.Expr) (key string, constant bool, err error) {
	if lit, ok := index.(*ast.Literal); ok && (lit.Kind == ast.LitNumber || lit.Kind == ast.LitString) {
		return lit.Value, true, nil
	}
	out, err := r.expr(s, index)
	if err != nil {
		return "", false, err
	}
	return "(" + out + ")::text", false, nil
}

// jsonPath renders a constant key as a one-element text[] path for
// jsonb_set. Keys that would need array-literal escaping use the ARRAY form.
func jsonPath(key string) string {
	if key != "" && !strings.ContainsAny(key, "{}\",\\ \t\n'") {
		return "'{" + key + "}'"
	}
	return "ARRAY[" + quote(key) + "]"
}

// tableOfRecords reports whether the local name is a table of records and
// returns the composite type of its elements.
func (r *Renderer) tableOfRecords(s scope, name string) (string, bool) {
	typ, ok := s.localType(name)
	if !ok {
		return "", false
	}
	_, rec, ok := r.symbols.TableOfRecords(s.routine, s.pkg, typ)
	if !ok {
		return "", false
	}
	return recordCompositeName(rec), true
}

// localCollection returns the collection type of a local variable.
func (r *Renderer) localCollection(s scope, name string) (symtab.CollectionType, bool) {
	typ, ok := s.localType(name)
	if !ok {
		return symtab.CollectionType{}, false
	}
	custom, ok := typ.(*ast.CustomType)
	if !ok {
		return symtab.CollectionType{}, false
	}
	return r.symbols.LookupCollectionType(s.routine, s.pkg, custom.Name)
}

func (r *Renderer) collectionMethod(s scope, n *ast.CollectionMethod) (string, error) {
	if n.Target == nil {
		return "", types.ErrMissingChild
	}
	args, err := r.exprList(s, n.Args)
	if err != nil {
		return "", err
	}
	if ref, ok := r.resolver.ResolveExpr(n.Target, s.routine, s.pkg); ok && ref.IsCollection() {
		return r.resolver.Method(ref, n.Method, args), nil
	}
	if id, ok := n.Target.(*ast.Ident); ok && len(id.Parts) == 1 {
		if _, ok := r.tableOfRecords(s, id.Parts[0]); ok {
			return r.recordsMethod(s, id.Parts[0], n)
		}
	}
	arr, err := r.expr(s, n.Target)
	if err != nil {
		return "", err
	}
	length := fmt.Sprintf("array_length(%s, 1)", arr)
	switch n.Method {
	case ast.MethodCount, ast.MethodLast:
		return length, nil
	case ast.MethodFirst:
		return "1", nil
	case ast.MethodExists:
		if len(args) == 1 {
			return fmt.Sprintf("(%[1]s >= 1 AND %[1]s <= %[2]s)", args[0], length), nil
		}
	case ast.MethodNext:
		if len(args) == 1 {
			return fmt.Sprintf("(CASE WHEN %[1]s < %[2]s THEN %[1]s + 1 ELSE NULL END)", args[0], length), nil
		}
	case ast.MethodPrior:
		if len(args) == 1 {
			return fmt.Sprintf("(CASE WHEN %[1]s > 1 THEN %[1]s - 1 ELSE NULL END)", args[0]), nil
		}
	case ast.MethodLimit:
		return r.placeholder("LIMIT", pkgvar.LimitPlaceholder), nil
	}
	return r.placeholder("collection method", fmt.Sprintf("/* %s.%s(%s) not supported in expressions */", arr, n.Method, strings.Join(args, ", "))), nil
}

// recordsMethod renders a collection method of a jsonb-backed table of records.
func (r *Renderer) recordsMethod(s scope, name string, n *ast.CollectionMethod) (string, error) {
	keys := fmt.Sprintf("jsonb_object_keys(%s)", name)
	switch n.Method {
	case ast.MethodCount:
		return fmt.Sprintf("(SELECT count(*) FROM %s)", keys), nil
	case ast.MethodFirst:
		return fmt.Sprintf("(SELECT min(k::integer) FROM %s AS k)", keys), nil
	case ast.MethodLast:
		return fmt.Sprintf("(SELECT max(k::integer) FROM %s AS k)", keys), nil
	case ast.MethodExists:
		if len(n.Args) == 1 {
			key, constant, err := r.jsonKey(s, n.Args[0])
			if err != nil {
				return "", err
			}
			if constant {
				key = quote(key)
			}
			return fmt.Sprintf("(%s ? %s)", name, key), nil
		}
	}
	return r.placeholder("collection method", fmt.Sprintf("/* %s.%s on a table of records not supported */", name, n.Method)), nil
}

func (r *Renderer) call(s scope, n *ast.Call) (string, error) {
	if len(n.Name) == 0 {
		return "", types.ErrMissingChild
	}
	args, err := r.callArgs(s, n)
	if err != nil {
		return "", err
	}
	if out, ok, err := r.elementAccess(s, n); ok || err != nil {
		return out, err
	}
	if out, ok, err := r.constructor(s, n, args); ok || err != nil {
		return out, err
	}

	if s.trigger != nil && len(n.Name) == 1 && strings.EqualFold(n.Name[0], "UPDATING") && len(args) == 1 {
		col := strings.ToLower(strings.Trim(args[0], "'"))
		return fmt.Sprintf("(TG_OP = 'UPDATE' AND OLD.%[1]s IS DISTINCT FROM NEW.%[1]s)", col), nil
	}

	name, known := r.routineName(s, n.Name)
	out := name + "(" + strings.Join(args, ", ") + ")"
	if !known && len(n.Name) == 1 {
		if rewrite, ok := mapping.Builtin(n.Name[0]); ok {
			if v, ok := rewrite(args); ok {
				out = v
			}
		}
	}
	if n.Over != nil {
		over, err := r.over(s, n.Over)
		if err != nil {
			return "", err
		}
		out += " OVER (" + over + ")"
	}
	return out, nil
}

func (r *Renderer) callArgs(s scope, n *ast.Call) ([]string, error) {
	if n.Star {
		return []string{"*"}, nil
	}
	args, err := r.exprList(s, n.Args)
	if err != nil {
		return nil, err
	}
	if n.Distinct && len(args) > 0 {
		args[0] = "DISTINCT " + args[0]
	}
	return args, nil
}

// elementAccess renders name(i) when name is a collection variable.
func (r *Renderer) elementAccess(s scope, n *ast.Call) (string, bool, error) {
	if len(n.Args) != 1 {
		return "", false, nil
	}
	if len(n.Name) == 1 {
		name := n.Name[0]
		if composite, ok := r.tableOfRecords(s, name); ok {
			key, constant, err := r.jsonKey(s, n.Args[0])
			if err != nil {
				return "", true, err
			}
			if constant {
				key = quote(key)
			}
			return fmt.Sprintf("(%s->%s)::%s", name, key, composite), true, nil
		}
		if _, ok := r.localCollection(s, name); ok {
			idx, err := r.expr(s, n.Args[0])
			if err != nil {
				return "", true, err
			}
			return name + "[" + idx + "]", true, nil
		}
		if s.isLocal(name) {
			return "", false, nil
		}
	}
	if ref, ok := r.resolver.Resolve(n.Name, s.routine, s.pkg); ok && ref.IsCollection() {
		idx, err := r.expr(s, n.Args[0])
		if err != nil {
			return "", true, err
		}
		return r.resolver.ElementRead(ref, idx), true, nil
	}
	return "", false, nil
}

// constructor renders collection and object type constructors.
func (r *Renderer) constructor(s scope, n *ast.Call, args []string) (string, bool, error) {
	name := n.QualifiedName()
	if ct, ok := r.symbols.LookupCollectionType(s.routine, s.pkg, name); ok {
		if len(args) > 0 {
			return "ARRAY[" + strings.Join(args, ", ") + "]", true, nil
		}
		elem := mapping.EmptyConstructorElementType(ct.Name)
		if ct.Element != nil {
			elem = r.dataType(s, ct.Element)
		}
		return "ARRAY[]::" + elem + "[]", true, nil
	}
	var obj *ast.ObjectType
	var ok bool
	switch len(n.Name) {
	case 1:
		obj, ok = r.symbols.FindObjectType(n.Name[0], s.schema())
	case 2:
		obj, ok = r.symbols.ObjectType(n.Name[0], n.Name[1])
	}
	if !ok {
		return "", false, nil
	}
	if len(obj.Constructors) > 0 {
		return mapping.RoutineName(obj.Schema, obj.Name, obj.Name) + "(" + strings.Join(args, ", ") + ")", true, nil
	}
	return "ROW(" + strings.Join(args, ", ") + ")::" + mapping.ObjectName(obj.Schema, obj.Name), true, nil
}

// routineName qualifies a call of a known routine as SCHEMA.OWNER_routine.
// Unknown names are returned as written.
func (r *Renderer) routineName(s scope, name []string) (string, bool) {
	switch len(name) {
	case 1:
		if s.pkg != nil && (s.pkg.FindFunction(name[0]) != nil || s.pkg.FindProcedure(name[0]) != nil) {
			return mapping.RoutineName(s.pkg.Schema, s.pkg.Name, name[0]), true
		}
		if obj := r.ownerType(s); obj != nil && memberOf(obj, name[0]) {
			return mapping.RoutineName(obj.Schema, obj.Name, name[0]), true
		}
		if schema, ok := r.symbols.SchemaForRoutine(name[0], s.schema()); ok {
			return mapping.RoutineName(schema, "", name[0]), true
		}
	case 2:
		if p, ok := r.symbols.FindPackage(name[0], s.schema()); ok {
			return mapping.RoutineName(p.Schema, p.Name, name[1]), true
		}
		if obj, ok := r.symbols.FindObjectType(name[0], s.schema()); ok {
			return mapping.RoutineName(obj.Schema, obj.Name, name[1]), true
		}
		if r.symbols.RoutineKind(name[0], "", name[1]) != symtab.KindUnknown {
			return mapping.RoutineName(name[0], "", name[1]), true
		}
	case 3:
		if p, ok := r.symbols.Package(name[0], name[1]); ok {
			return mapping.RoutineName(p.Schema, p.Name, name[2]), true
		}
	}
	return strings.Join(name, "."), false
}

func (r *Renderer) ownerType(s scope) *ast.ObjectType {
	if s.routine != nil {
		return s.routine.ObjectType
	}
	return nil
}

func isAttribute(obj *ast.ObjectType, name string) bool {
	for _, a := range obj.Attributes {
		if strings.EqualFold(a.Name, name) {
			return true
		}
	}
	return false
}

func memberOf(obj *ast.ObjectType, name string) bool {
	for _, f := range obj.Functions {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	for _, p := range obj.Procedures {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (r *Renderer) over(s scope, o *ast.OverClause) (string, error) {
	var parts []string
	if len(o.PartitionBy) > 0 {
		list, err := r.exprList(s, o.PartitionBy)
		if err != nil {
			return "", err
		}
		parts = append(parts, "PARTITION BY "+strings.Join(list, ", "))
	}
	if len(o.OrderBy) > 0 {
		order, err := r.orderBy(s, o.OrderBy)
		if err != nil {
			return "", err
		}
		parts = append(parts, "ORDER BY "+order)
	}
	if o.Window != nil {
		start, err := r.frameBound(s, o.Window.Start)
		if err != nil {
			return "", err
		}
		frame := strings.ToUpper(o.Window.Unit) + " "
		if o.Window.End != nil {
			end, err := r.frameBound(s, *o.Window.End)
			if err != nil {
				return "", err
			}
			frame += "BETWEEN " + start + " AND " + end
		} else {
			frame += start
		}
		parts = append(parts, frame)
	}
	return strings.Join(parts, " "), nil
}

func (r *Renderer) frameBound(s scope, b ast.FrameBound) (string, error) {
	if b.Offset == nil {
		return strings.ToUpper(b.Kind), nil
	}
	off, err := r.expr(s, b.Offset)
	if err != nil {
		return "", err
	}
	return off + " " + strings.ToUpper(b.Kind), nil
}
