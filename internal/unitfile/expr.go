package unitfile

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stokaro/ora2pg/core/ast"
)

type typedDoc struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

type unaryDoc struct {
	Op string    `yaml:"op"`
	X  yaml.Node `yaml:"x"`
}

type isDoc struct {
	X     yaml.Node `yaml:"x"`
	Test  string    `yaml:"test"`
	Not   bool      `yaml:"not"`
	Types []string  `yaml:"types"`
}

type likeDoc struct {
	X       yaml.Node `yaml:"x"`
	Op      string    `yaml:"op"`
	Not     bool      `yaml:"not"`
	Pattern yaml.Node `yaml:"pattern"`
	Escape  yaml.Node `yaml:"escape"`
}

type inDoc struct {
	X     yaml.Node   `yaml:"x"`
	Not   bool        `yaml:"not"`
	List  []yaml.Node `yaml:"list"`
	Query yaml.Node   `yaml:"query"`
}

type betweenDoc struct {
	X    yaml.Node `yaml:"x"`
	Not  bool      `yaml:"not"`
	Low  yaml.Node `yaml:"low"`
	High yaml.Node `yaml:"high"`
}

type multisetDoc struct {
	Left       yaml.Node `yaml:"left"`
	Op         string    `yaml:"op"`
	Not        bool      `yaml:"not"`
	Of         bool      `yaml:"of"`
	Quantifier string    `yaml:"quantifier"`
	Right      yaml.Node `yaml:"right"`
}

type callDoc struct {
	Name     string      `yaml:"name"`
	Args     []yaml.Node `yaml:"args"`
	Star     bool        `yaml:"star"`
	Distinct bool        `yaml:"distinct"`
	Over     *overDoc    `yaml:"over"`
}

type overDoc struct {
	PartitionBy []yaml.Node `yaml:"partitionBy"`
	OrderBy     []orderDoc  `yaml:"orderBy"`
}

type namedDoc struct {
	Name  string    `yaml:"name"`
	Value yaml.Node `yaml:"value"`
}

type methodDoc struct {
	Target yaml.Node   `yaml:"target"`
	Name   string      `yaml:"name"`
	Args   []yaml.Node `yaml:"args"`
}

type fieldDoc struct {
	X    yaml.Node `yaml:"x"`
	Name string    `yaml:"name"`
}

type caseDoc struct {
	Operand yaml.Node `yaml:"operand"`
	Whens   []struct {
		When yaml.Node `yaml:"when"`
		Then yaml.Node `yaml:"then"`
	} `yaml:"whens"`
	Else yaml.Node `yaml:"else"`
}

type timeZoneDoc struct {
	X     yaml.Node `yaml:"x"`
	Zone  yaml.Node `yaml:"zone"`
	Local bool      `yaml:"local"`
}

type collateDoc struct {
	X         yaml.Node `yaml:"x"`
	Collation string    `yaml:"collation"`
}

type overflowDoc struct {
	X      yaml.Node `yaml:"x"`
	Action string    `yaml:"action"`
}

// singleKey returns the construct name and value of a single-key map.
func singleKey(n *yaml.Node, what string) (string, *yaml.Node, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, errorf(n, "%s must be a map with exactly one key", what)
	}
	return n.Content[0].Value, n.Content[1], nil
}

// expr decodes an optional expression; an absent node yields nil.
func expr(n *yaml.Node) (ast.Expr, error) {
	if !isSet(n) {
		return nil, nil
	}
	return requiredExpr(n)
}

func exprs(nodes []yaml.Node) ([]ast.Expr, error) {
	var out []ast.Expr
	for i := range nodes {
		e, err := requiredExpr(&nodes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func requiredExpr(n *yaml.Node) (ast.Expr, error) {
	if !isSet(n) {
		return nil, errorf(n, "expression is required")
	}
	if n.Kind == yaml.ScalarNode {
		return scalarExpr(n), nil
	}
	key, v, err := singleKey(n, "expression")
	if err != nil {
		return nil, err
	}

	switch key {
	case "ident":
		return ast.ParseIdent(v.Value), nil
	case "num":
		return ast.NewNumber(v.Value), nil
	case "str":
		return ast.NewString(v.Value), nil
	case "null":
		return ast.NewNull(), nil
	case "bool":
		var b bool
		if err := v.Decode(&b); err != nil {
			return nil, errorf(v, "bool: %v", err)
		}
		return ast.NewBool(b), nil
	case "typed":
		var d typedDoc
		if err := v.Decode(&d); err != nil {
			return nil, errorf(v, "typed: %v", err)
		}
		return ast.NewTypedString(d.Type, d.Value), nil
	case "bin":
		return binaryExpr(v)
	case "and", "or":
		return logicalExpr(key, v)
	case "not":
		x, err := requiredExpr(v)
		if err != nil {
			return nil, err
		}
		return ast.NewNot(x), nil
	case "neg":
		x, err := requiredExpr(v)
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.OpNeg, x), nil
	case "unary":
		var d unaryDoc
		if err := v.Decode(&d); err != nil {
			return nil, errorf(v, "unary: %v", err)
		}
		x, err := requiredExpr(&d.X)
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.UnaryOp(strings.ToUpper(d.Op)), x), nil
	case "isNull", "isNotNull":
		x, err := requiredExpr(v)
		if err != nil {
			return nil, err
		}
		if key == "isNull" {
			return ast.NewIsNull(x), nil
		}
		return ast.NewIsNotNull(x), nil
	case "is":
		return isExpr(v)
	case "like":
		return likeExpr(v)
	case "in":
		return inExpr(v)
	case "between":
		return betweenExpr(v)
	case "multiset":
		return multisetExpr(v)
	case "paren":
		x, err := requiredExpr(v)
		if err != nil {
			return nil, err
		}
		return ast.NewParen(x), nil
	case "call":
		return callExpr(v)
	case "named":
		var d namedDoc
		if err := v.Decode(&d); err != nil {
			return nil, errorf(v, "named: %v", err)
		}
		value, err := requiredExpr(&d.Value)
		if err != nil {
			return nil, err
		}
		return ast.NewNamedArg(d.Name, value), nil
	case "method":
		return methodExpr(v)
	case "field":
		var d fieldDoc
		if err := v.Decode(&d); err != nil {
			return nil, errorf(v, "field: %v", err)
		}
		x, err := requiredExpr(&d.X)
		if err != nil {
			return nil, err
		}
		return ast.NewFieldAccess(x, d.Name), nil
	case "case":
		return caseExpr(v)
	case "cursor", "subquery":
		q, err := query(v)
		if err != nil {
			return nil, err
		}
		if key == "cursor" {
			return ast.NewCursorExpr(q), nil
		}
		return ast.NewSubquery(q), nil
	case "attr":
		if attr, ok := cursorAttr(v.Value); ok {
			return attr, nil
		}
		return nil, errorf(v, "invalid cursor attribute %q", v.Value)
	case "atTimeZone":
		var d timeZoneDoc
		if err := v.Decode(&d); err != nil {
			return nil, errorf(v, "atTimeZone: %v", err)
		}
		x, err := requiredExpr(&d.X)
		if err != nil {
			return nil, err
		}
		zone, err := expr(&d.Zone)
		if err != nil {
			return nil, err
		}
		return &ast.AtTimeZone{X: x, Zone: zone, Local: d.Local}, nil
	case "collate":
		var d collateDoc
		if err := v.Decode(&d); err != nil {
			return nil, errorf(v, "collate: %v", err)
		}
		x, err := requiredExpr(&d.X)
		if err != nil {
			return nil, err
		}
		return &ast.Collate{X: x, Collation: d.Collation}, nil
	case "overflow":
		var d overflowDoc
		if err := v.Decode(&d); err != nil {
			return nil, errorf(v, "overflow: %v", err)
		}
		x, err := requiredExpr(&d.X)
		if err != nil {
			return nil, err
		}
		return &ast.OverflowExpr{X: x, Action: strings.ToUpper(d.Action)}, nil
	}
	return nil, errorf(n, "unknown expression %q", key)
}

func scalarExpr(n *yaml.Node) ast.Expr {
	switch n.ShortTag() {
	case "!!null":
		return ast.NewNull()
	case "!!int", "!!float":
		return ast.NewNumber(n.Value)
	case "!!bool":
		return ast.NewBool(strings.EqualFold(n.Value, "true"))
	}
	if attr, ok := cursorAttr(n.Value); ok {
		return attr
	}
	return ast.ParseIdent(n.Value)
}

// cursorAttr reads c%NOTFOUND and friends, SQL%ROWCOUNT included.
func cursorAttr(s string) (*ast.CursorAttr, bool) {
	cursor, attr, ok := strings.Cut(s, "%")
	if !ok || cursor == "" {
		return nil, false
	}
	a := ast.CursorAttribute(strings.ToUpper(attr))
	switch a {
	case ast.AttrFound, ast.AttrNotFound, ast.AttrRowCount, ast.AttrIsOpen:
		return ast.NewCursorAttr(cursor, a), true
	}
	return nil, false
}

func binaryExpr(v *yaml.Node) (ast.Expr, error) {
	if v.Kind != yaml.SequenceNode || len(v.Content) != 3 {
		return nil, errorf(v, "bin must be [left, operator, right]")
	}
	left, err := requiredExpr(v.Content[0])
	if err != nil {
		return nil, err
	}
	right, err := requiredExpr(v.Content[2])
	if err != nil {
		return nil, err
	}
	op := ast.BinaryOp(strings.ToUpper(v.Content[1].Value))
	switch op {
	case ast.OpOr, ast.OpAnd, ast.OpEq, ast.OpNe, ast.OpNeBang, ast.OpNeCaret,
		ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpConcat,
		ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpPow:
		return ast.NewBinary(op, left, right), nil
	}
	return nil, errorf(v.Content[1], "unknown operator %q", v.Content[1].Value)
}

func logicalExpr(key string, v *yaml.Node) (ast.Expr, error) {
	var nodes []yaml.Node
	if err := v.Decode(&nodes); err != nil || len(nodes) < 2 {
		return nil, errorf(v, "%s needs a list of at least two operands", key)
	}
	operands, err := exprs(nodes)
	if err != nil {
		return nil, err
	}
	if key == "and" {
		return ast.NewAnd(operands[0], operands[1:]...), nil
	}
	return ast.NewOr(operands[0], operands[1:]...), nil
}

func isExpr(v *yaml.Node) (ast.Expr, error) {
	var d isDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "is: %v", err)
	}
	x, err := requiredExpr(&d.X)
	if err != nil {
		return nil, err
	}
	test := ast.IsTest(strings.ToUpper(d.Test))
	switch test {
	case ast.IsNull, ast.IsNaN, ast.IsInfinite, ast.IsEmpty, ast.IsPresent, ast.IsASet, ast.IsOfType:
	default:
		return nil, errorf(v, "unknown IS test %q", d.Test)
	}
	return &ast.IsExpr{X: x, Not: d.Not, Test: test, TypeNames: d.Types}, nil
}

func likeExpr(v *yaml.Node) (ast.Expr, error) {
	var d likeDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "like: %v", err)
	}
	x, err := requiredExpr(&d.X)
	if err != nil {
		return nil, err
	}
	pattern, err := requiredExpr(&d.Pattern)
	if err != nil {
		return nil, err
	}
	escape, err := expr(&d.Escape)
	if err != nil {
		return nil, err
	}
	e := ast.NewLike(x, pattern)
	e.Not = d.Not
	e.Escape = escape
	if d.Op != "" {
		e.Op = ast.LikeOp(strings.ToUpper(d.Op))
	}
	return e, nil
}

func inExpr(v *yaml.Node) (ast.Expr, error) {
	var d inDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "in: %v", err)
	}
	x, err := requiredExpr(&d.X)
	if err != nil {
		return nil, err
	}
	list, err := exprs(d.List)
	if err != nil {
		return nil, err
	}
	e := ast.NewIn(x, list...)
	e.Not = d.Not
	if isSet(&d.Query) {
		if e.Query, err = query(&d.Query); err != nil {
			return nil, err
		}
	}
	if len(e.List) == 0 && e.Query == nil {
		return nil, errorf(v, "in needs a list or a query")
	}
	return e, nil
}

func betweenExpr(v *yaml.Node) (ast.Expr, error) {
	var d betweenDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "between: %v", err)
	}
	x, err := requiredExpr(&d.X)
	if err != nil {
		return nil, err
	}
	low, err := requiredExpr(&d.Low)
	if err != nil {
		return nil, err
	}
	high, err := requiredExpr(&d.High)
	if err != nil {
		return nil, err
	}
	e := ast.NewBetween(x, low, high)
	e.Not = d.Not
	return e, nil
}

func multisetExpr(v *yaml.Node) (ast.Expr, error) {
	var d multisetDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "multiset: %v", err)
	}
	left, err := requiredExpr(&d.Left)
	if err != nil {
		return nil, err
	}
	right, err := requiredExpr(&d.Right)
	if err != nil {
		return nil, err
	}
	return &ast.MultisetExpr{
		Left:       left,
		Op:         ast.MultisetOp(strings.ToUpper(d.Op)),
		Not:        d.Not,
		Of:         d.Of,
		Quantifier: strings.ToUpper(d.Quantifier),
		Right:      right,
	}, nil
}

func callExpr(v *yaml.Node) (ast.Expr, error) {
	var d callDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "call: %v", err)
	}
	if d.Name == "" {
		return nil, errorf(v, "call needs a name")
	}
	args, err := exprs(d.Args)
	if err != nil {
		return nil, err
	}
	call := ast.NewCall(d.Name, args...)
	call.Star = d.Star
	call.Distinct = d.Distinct
	if d.Over != nil {
		over := &ast.OverClause{}
		if over.PartitionBy, err = exprs(d.Over.PartitionBy); err != nil {
			return nil, err
		}
		if over.OrderBy, err = orderItems(d.Over.OrderBy); err != nil {
			return nil, err
		}
		call.SetOver(over)
	}
	return call, nil
}

func methodExpr(v *yaml.Node) (ast.Expr, error) {
	var d methodDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "method: %v", err)
	}
	if !ast.IsCollectionMethod(d.Name) {
		return nil, errorf(v, "unknown collection method %q", d.Name)
	}
	target, err := requiredExpr(&d.Target)
	if err != nil {
		return nil, err
	}
	args, err := exprs(d.Args)
	if err != nil {
		return nil, err
	}
	return ast.NewCollectionMethod(target, d.Name, args...), nil
}

func caseExpr(v *yaml.Node) (ast.Expr, error) {
	var d caseDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "case: %v", err)
	}
	operand, err := expr(&d.Operand)
	if err != nil {
		return nil, err
	}
	e := ast.NewCase(operand)
	for i := range d.Whens {
		cond, err := requiredExpr(&d.Whens[i].When)
		if err != nil {
			return nil, err
		}
		result, err := requiredExpr(&d.Whens[i].Then)
		if err != nil {
			return nil, err
		}
		e.When(cond, result)
	}
	if len(e.Whens) == 0 {
		return nil, errorf(v, "case needs at least one when")
	}
	elseExpr, err := expr(&d.Else)
	if err != nil {
		return nil, err
	}
	return e.SetElse(elseExpr), nil
}
