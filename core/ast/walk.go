package ast

// Precedence levels used by renderers to decide where parentheses are required.
// Higher binds tighter.
const (
	PrecOr = iota + 1
	PrecAnd
	PrecNot
	PrecComparison
	PrecConcat
	PrecAdditive
	PrecMultiplicative
	PrecPower
	PrecUnary
	PrecAtom
)

// Precedence returns the binding strength of e.
func Precedence(e Expr) int {
	switch v := e.(type) {
	case *BinaryExpr:
		return binaryPrecedence(v.Op)
	case *UnaryExpr:
		if v.Op == OpNot {
			return PrecNot
		}
		return PrecUnary
	case *IsExpr, *LikeExpr, *InExpr, *BetweenExpr, *MultisetExpr:
		return PrecComparison
	case *AtTimeZone, *Collate, *OverflowExpr:
		return PrecUnary
	}
	return PrecAtom
}

func binaryPrecedence(op BinaryOp) int {
	switch op {
	case OpOr:
		return PrecOr
	case OpAnd:
		return PrecAnd
	case OpConcat:
		return PrecConcat
	case OpAdd, OpSub:
		return PrecAdditive
	case OpMul, OpDiv, OpMod:
		return PrecMultiplicative
	case OpPow:
		return PrecPower
	}
	return PrecComparison
}

// Inspect traverses the tree rooted at node in depth-first order. It calls fn for
// every node; when fn returns false the children of that node are skipped.
// Nil nodes are ignored.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range children(node) {
		Inspect(child, fn)
	}
}

func children(node Node) []Node {
	var out []Node
	addExpr := func(es ...Expr) {
		for _, e := range es {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	addStmts := func(ss []Statement) {
		for _, s := range ss {
			if s != nil {
				out = append(out, s)
			}
		}
	}
	addQuery := func(q *SelectStatement) {
		if q != nil {
			out = append(out, q)
		}
	}
	addRoutine := func(r *Routine) {
		for _, v := range r.Variables {
			out = append(out, v)
		}
		for _, c := range r.Cursors {
			out = append(out, c)
		}
		addStmts(r.Body)
		if r.Exception != nil {
			out = append(out, r.Exception)
		}
	}

	switch v := node.(type) {
	case *BinaryExpr:
		addExpr(v.Left, v.Right)
	case *UnaryExpr:
		addExpr(v.X)
	case *IsExpr:
		addExpr(v.X)
	case *LikeExpr:
		addExpr(v.X, v.Pattern, v.Escape)
	case *InExpr:
		addExpr(v.X)
		addExpr(v.List...)
		addQuery(v.Query)
	case *BetweenExpr:
		addExpr(v.X, v.Low, v.High)
	case *MultisetExpr:
		addExpr(v.Left, v.Right)
	case *ParenExpr:
		addExpr(v.X)
	case *Call:
		addExpr(v.Args...)
	case *NamedArg:
		addExpr(v.Value)
	case *CollectionMethod:
		addExpr(v.Target)
		addExpr(v.Args...)
	case *FieldAccess:
		addExpr(v.X)
	case *CaseExpr:
		addExpr(v.Operand)
		for _, w := range v.Whens {
			addExpr(w.Cond, w.Result)
		}
		addExpr(v.Else)
	case *CursorExpr:
		addQuery(v.Query)
	case *SubqueryExpr:
		addQuery(v.Query)
	case *AtTimeZone:
		addExpr(v.X, v.Zone)
	case *Collate:
		addExpr(v.X)
	case *OverflowExpr:
		addExpr(v.X)

	case *Assignment:
		addExpr(v.Target, v.Value)
	case *IfStatement:
		addExpr(v.Cond)
		addStmts(v.Then)
		for _, e := range v.ElsIfs {
			addExpr(e.Cond)
			addStmts(e.Body)
		}
		addStmts(v.Else)
	case *LoopStatement:
		addStmts(v.Body)
	case *WhileStatement:
		addExpr(v.Cond)
		addStmts(v.Body)
	case *ForRangeStatement:
		addExpr(v.Low, v.High)
		addStmts(v.Body)
	case *ForCursorStatement:
		addExpr(v.Args...)
		addQuery(v.Query)
		addStmts(v.Body)
	case *ExitStatement:
		addExpr(v.When)
	case *ContinueStatement:
		addExpr(v.When)
	case *SelectInto:
		addExpr(v.Where)
	case *BulkCollect:
		addExpr(v.Where)
	case *InsertStatement:
		addExpr(v.Values...)
		addQuery(v.Query)
	case *UpdateStatement:
		for _, s := range v.Set {
			addExpr(s.Value)
		}
		addExpr(v.Where)
	case *DeleteStatement:
		addExpr(v.Where)
	case *OpenStatement:
		addExpr(v.Args...)
		addQuery(v.Query)
	case *FetchStatement:
		addExpr(v.Limit)
	case *ReturnStatement:
		addExpr(v.Value)
	case *CallStatement:
		addExpr(v.Args...)
		addExpr(v.Into)
	case *Block:
		for _, d := range v.Variables {
			out = append(out, d)
		}
		for _, c := range v.Cursors {
			out = append(out, c)
		}
		addStmts(v.Body)
		if v.Exception != nil {
			out = append(out, v.Exception)
		}
	case *ExceptionBlock:
		for _, h := range v.Handlers {
			addStmts(h.Body)
		}
	case *SelectStatement:
		for _, cte := range v.With {
			addQuery(cte.Query)
		}
		out = append(out, queryChildren(v.Body)...)
		for _, o := range v.OrderBy {
			addExpr(o.Expr)
		}
		addExpr(v.Offset, v.Fetch)

	case *Variable:
		addExpr(v.Default)
	case *Parameter:
		addExpr(v.Default)
	case *CursorDecl:
		addQuery(v.Query)
	case *Function:
		addRoutine(&v.Routine)
	case *Procedure:
		addRoutine(&v.Routine)
	case *Package:
		for _, pv := range v.Variables {
			out = append(out, pv)
		}
		for _, f := range v.Functions {
			out = append(out, f)
		}
		for _, p := range v.Procedures {
			out = append(out, p)
		}
		addStmts(v.Body)
	case *ObjectType:
		for _, f := range v.Constructors {
			out = append(out, f)
		}
		for _, f := range v.Functions {
			out = append(out, f)
		}
		for _, p := range v.Procedures {
			out = append(out, p)
		}
	case *Trigger:
		addExpr(v.When)
		for _, tv := range v.Variables {
			out = append(out, tv)
		}
		addStmts(v.Body)
		if v.Exception != nil {
			out = append(out, v.Exception)
		}
	case *View:
		addQuery(v.Query)
	}
	return out
}

func queryChildren(q QueryExpr) []Node {
	var out []Node
	switch v := q.(type) {
	case *QueryBlock:
		for _, item := range v.Items {
			if item.Expr != nil {
				out = append(out, item.Expr)
			}
		}
		for _, ref := range v.From {
			if ref.Subquery != nil {
				out = append(out, ref.Subquery)
			}
			if ref.On != nil {
				out = append(out, ref.On)
			}
		}
		for _, e := range append(append([]Expr{v.Where}, v.GroupBy...), v.Having) {
			if e != nil {
				out = append(out, e)
			}
		}
	case *SetOperation:
		out = append(out, queryChildren(v.Left)...)
		out = append(out, queryChildren(v.Right)...)
	}
	return out
}
