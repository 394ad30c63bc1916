package ast

import (
	"strings"
)

// Expr is the single expression variant of the tree.
//
// Oracle's grammar layers (logical, multiset, relational, compound, concatenation,
// unary and atoms) are collapsed into one sealed interface with one implementation
// per semantic operation. The cursor alternative of an Oracle expression is the
// CursorExpr variant, so an expression is always exactly one of them.
type Expr interface {
	Node
	exprNode()
}

// LiteralKind identifies the lexical class of a literal.
type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitString
	LitNull
	LitBoolean
)

// Literal is a constant value.
type Literal struct {
	Kind LiteralKind
	// Value holds the literal text. Strings are stored unquoted and unescaped.
	Value string
	// TypeName marks a typed string literal such as DATE '2024-01-01'.
	TypeName string
}

// NewNumber creates a numeric literal.
func NewNumber(value string) *Literal {
	return &Literal{Kind: LitNumber, Value: value}
}

// NewString creates a string literal from its unquoted value.
func NewString(value string) *Literal {
	return &Literal{Kind: LitString, Value: value}
}

// NewNull creates the NULL literal.
func NewNull() *Literal {
	return &Literal{Kind: LitNull, Value: "NULL"}
}

// NewBool creates a TRUE or FALSE literal.
func NewBool(value bool) *Literal {
	if value {
		return &Literal{Kind: LitBoolean, Value: "TRUE"}
	}
	return &Literal{Kind: LitBoolean, Value: "FALSE"}
}

// NewTypedString creates a typed string literal, for example DATE '2024-01-01'.
func NewTypedString(typeName, value string) *Literal {
	return &Literal{Kind: LitString, Value: value, TypeName: strings.ToUpper(typeName)}
}

func (n *Literal) Accept(visitor Visitor) error { return visitor.VisitLiteral(n) }
func (*Literal) exprNode() {}

// Ident is a possibly dotted name: a local variable, a package variable, a column,
// a record field path or a bind reference such as :NEW.salary.
type Ident struct {
	Parts []string
}

// NewIdent creates an identifier from its parts.
//
// Example:
//
//	NewIdent("emp_pkg", "g_counter")
func NewIdent(parts ...string) *Ident {
	return &Ident{Parts: parts}
}

// ParseIdent splits a dotted name into an identifier.
func ParseIdent(dotted string) *Ident {
	return &Ident{Parts: strings.Split(dotted, ".")}
}

// Name returns the dotted form of the identifier.
func (n *Ident) Name() string {
	return strings.Join(n.Parts, ".")
}

// Last returns the final part of the identifier.
func (n *Ident) Last() string {
	if len(n.Parts) == 0 {
		return ""
	}
	return n.Parts[len(n.Parts)-1]
}

func (n *Ident) Accept(visitor Visitor) error { return visitor.VisitIdent(n) }
func (*Ident) exprNode() {}

// BinaryOp is an infix operator as written in the source.
type BinaryOp string

const (
	OpOr      BinaryOp = "OR"
	OpAnd     BinaryOp = "AND"
	OpEq      BinaryOp = "="
	OpNe      BinaryOp = "<>"
	OpNeBang  BinaryOp = "!="
	OpNeCaret BinaryOp = "^="
	OpLt      BinaryOp = "<"
	OpLe      BinaryOp = "<="
	OpGt      BinaryOp = ">"
	OpGe      BinaryOp = ">="
	OpConcat  BinaryOp = "||"
	OpAdd     BinaryOp = "+"
	OpSub     BinaryOp = "-"
	OpMul     BinaryOp = "*"
	OpDiv     BinaryOp = "/"
	OpMod     BinaryOp = "MOD"
	OpPow     BinaryOp = "**"
)

// IsComparison reports whether op is a relational operator.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpNeBang, OpNeCaret, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// BinaryExpr is an operator applied to two operands. AND/OR chains are kept
// exactly as the builder folded them.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// NewBinary creates a binary expression.
func NewBinary(op BinaryOp, left, right Expr) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: left, Right: right}
}

// NewAnd joins the operands left to right with AND.
func NewAnd(first Expr, rest ...Expr) Expr {
	return fold(OpAnd, first, rest)
}

// NewOr joins the operands left to right with OR.
func NewOr(first Expr, rest ...Expr) Expr {
	return fold(OpOr, first, rest)
}

func fold(op BinaryOp, first Expr, rest []Expr) Expr {
	result := first
	for _, e := range rest {
		result = NewBinary(op, result, e)
	}
	return result
}

func (n *BinaryExpr) Accept(visitor Visitor) error { return visitor.VisitBinary(n) }
func (*BinaryExpr) exprNode() {}

// UnaryOp is a prefix operator.
type UnaryOp string

const (
	OpNeg           UnaryOp = "-"
	OpPos           UnaryOp = "+"
	OpNot           UnaryOp = "NOT"
	OpPrior         UnaryOp = "PRIOR"
	OpConnectByRoot UnaryOp = "CONNECT_BY_ROOT"
	OpNew           UnaryOp = "NEW"
	OpDistinct      UnaryOp = "DISTINCT"
	OpAll           UnaryOp = "ALL"
	OpExists        UnaryOp = "EXISTS"
)

// UnaryExpr is a prefix operator applied to one operand.
type UnaryExpr struct {
	Op UnaryOp
	X  Expr
}

// NewUnary creates a unary expression.
func NewUnary(op UnaryOp, x Expr) *UnaryExpr {
	return &UnaryExpr{Op: op, X: x}
}

// NewNot negates x.
func NewNot(x Expr) *UnaryExpr {
	return &UnaryExpr{Op: OpNot, X: x}
}

func (n *UnaryExpr) Accept(visitor Visitor) error { return visitor.VisitUnary(n) }
func (*UnaryExpr) exprNode() {}

// IsTest names the predicate of an IS expression.
type IsTest string

const (
	IsNull     IsTest = "NULL"
	IsNaN      IsTest = "NAN"
	IsInfinite IsTest = "INFINITE"
	IsEmpty    IsTest = "EMPTY"
	IsPresent  IsTest = "PRESENT"
	IsASet     IsTest = "A SET"
	IsOfType   IsTest = "OF TYPE"
)

// IsExpr is an IS [NOT] suffix predicate.
type IsExpr struct {
	X    Expr
	Not  bool
	Test IsTest
	// TypeNames lists the types of an IS OF TYPE (...) test.
	TypeNames []string
}

// NewIsNull creates X IS NULL.
func NewIsNull(x Expr) *IsExpr {
	return &IsExpr{X: x, Test: IsNull}
}

// NewIsNotNull creates X IS NOT NULL.
func NewIsNotNull(x Expr) *IsExpr {
	return &IsExpr{X: x, Not: true, Test: IsNull}
}

func (n *IsExpr) Accept(visitor Visitor) error { return visitor.VisitIs(n) }
func (*IsExpr) exprNode() {}

// LikeOp is one of the LIKE variants.
type LikeOp string

const (
	OpLike  LikeOp = "LIKE"
	OpLikeC LikeOp = "LIKEC"
	OpLike2 LikeOp = "LIKE2"
	OpLike4 LikeOp = "LIKE4"
)

// LikeExpr is X [NOT] LIKE pattern [ESCAPE e].
type LikeExpr struct {
	X       Expr
	Not     bool
	Op      LikeOp
	Pattern Expr
	Escape  Expr
}

// NewLike creates a plain LIKE predicate.
func NewLike(x, pattern Expr) *LikeExpr {
	return &LikeExpr{X: x, Op: OpLike, Pattern: pattern}
}

func (n *LikeExpr) Accept(visitor Visitor) error { return visitor.VisitLike(n) }
func (*LikeExpr) exprNode() {}

// InExpr is X [NOT] IN (list) or X [NOT] IN (subquery).
type InExpr struct {
	X     Expr
	Not   bool
	List  []Expr
	Query *SelectStatement
}

// NewIn creates an IN predicate over a value list.
func NewIn(x Expr, list ...Expr) *InExpr {
	return &InExpr{X: x, List: list}
}

func (n *InExpr) Accept(visitor Visitor) error { return visitor.VisitIn(n) }
func (*InExpr) exprNode() {}

// BetweenExpr is X [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	X    Expr
	Not  bool
	Low  Expr
	High Expr
}

// NewBetween creates a BETWEEN predicate.
func NewBetween(x, low, high Expr) *BetweenExpr {
	return &BetweenExpr{X: x, Low: low, High: high}
}

func (n *BetweenExpr) Accept(visitor Visitor) error { return visitor.VisitBetween(n) }
func (*BetweenExpr) exprNode() {}

// MultisetOp names a multiset operator.
type MultisetOp string

const (
	MultisetMember      MultisetOp = "MEMBER"
	MultisetSubmultiset MultisetOp = "SUBMULTISET"
	MultisetExcept      MultisetOp = "MULTISET EXCEPT"
	MultisetIntersect   MultisetOp = "MULTISET INTERSECT"
	MultisetUnion       MultisetOp = "MULTISET UNION"
)

// MultisetExpr is a nested-table multiset operation.
type MultisetExpr struct {
	Left Expr
	Op   MultisetOp
	Not  bool
	Of   bool
	// Quantifier is DISTINCT or ALL for the set operators.
	Quantifier string
	Right      Expr
}

func (n *MultisetExpr) Accept(visitor Visitor) error { return visitor.VisitMultiset(n) }
func (*MultisetExpr) exprNode() {}

// ParenExpr is an explicitly parenthesized expression.
type ParenExpr struct {
	X Expr
}

// NewParen wraps x in parentheses.
func NewParen(x Expr) *ParenExpr {
	return &ParenExpr{X: x}
}

func (n *ParenExpr) Accept(visitor Visitor) error { return visitor.VisitParen(n) }
func (*ParenExpr) exprNode() {}

// Call is name(args). Oracle spells function calls, collection element access and
// collection constructors identically, so the renderer decides which one it is
// from the declarations in scope.
type Call struct {
	Name     []string
	Args     []Expr
	Star     bool
	Distinct bool
	Over     *OverClause
}

// NewCall creates a call of a possibly qualified name.
//
// Example:
//
//	NewCall("emp_pkg.get_salary", NewIdent("p_id"))
func NewCall(name string, args ...Expr) *Call {
	return &Call{Name: strings.Split(name, "."), Args: args}
}

// QualifiedName returns the dotted callee name.
func (n *Call) QualifiedName() string {
	return strings.Join(n.Name, ".")
}

// SetOver attaches an analytic OVER clause and returns the call for chaining.
func (n *Call) SetOver(over *OverClause) *Call {
	n.Over = over
	return n
}

func (n *Call) Accept(visitor Visitor) error { return visitor.VisitCall(n) }
func (*Call) exprNode() {}

// OverClause is the analytic window of a call.
type OverClause struct {
	PartitionBy []Expr
	OrderBy     []*OrderItem
	Window      *WindowFrame
}

// WindowFrame is ROWS|RANGE [BETWEEN start AND end] | start.
type WindowFrame struct {
	Unit  string
	Start FrameBound
	End   *FrameBound
}

// FrameBound is one bound of a window frame.
type FrameBound struct {
	// Kind is UNBOUNDED PRECEDING, CURRENT ROW, UNBOUNDED FOLLOWING, PRECEDING or FOLLOWING.
	Kind   string
	Offset Expr
}

// NamedArg is name => value in a call argument list.
type NamedArg struct {
	Name  string
	Value Expr
}

// NewNamedArg creates a named call argument.
func NewNamedArg(name string, value Expr) *NamedArg {
	return &NamedArg{Name: name, Value: value}
}

func (n *NamedArg) Accept(visitor Visitor) error { return visitor.VisitNamedArg(n) }
func (*NamedArg) exprNode() {}

// Collection pseudo-method names.
const (
	MethodCount  = "COUNT"
	MethodFirst  = "FIRST"
	MethodLast   = "LAST"
	MethodLimit  = "LIMIT"
	MethodExists = "EXISTS"
	MethodNext   = "NEXT"
	MethodPrior  = "PRIOR"
	MethodExtend = "EXTEND"
	MethodDelete = "DELETE"
	MethodTrim   = "TRIM"
)

// IsCollectionMethod reports whether name is a collection pseudo-method.
func IsCollectionMethod(name string) bool {
	switch strings.ToUpper(name) {
	case MethodCount, MethodFirst, MethodLast, MethodLimit, MethodExists,
		MethodNext, MethodPrior, MethodExtend, MethodDelete, MethodTrim:
		return true
	}
	return false
}

// CollectionMethod is target.METHOD[(args)].
type CollectionMethod struct {
	Target Expr
	Method string
	Args   []Expr
}

// NewCollectionMethod creates a collection pseudo-method invocation.
func NewCollectionMethod(target Expr, method string, args ...Expr) *CollectionMethod {
	return &CollectionMethod{Target: target, Method: strings.ToUpper(method), Args: args}
}

func (n *CollectionMethod) Accept(visitor Visitor) error { return visitor.VisitCollectionMethod(n) }
func (*CollectionMethod) exprNode() {}

// FieldAccess is expr.field where expr is not a plain name, e.g. coll(i).salary.
type FieldAccess struct {
	X     Expr
	Field string
}

// NewFieldAccess creates a field access.
func NewFieldAccess(x Expr, field string) *FieldAccess {
	return &FieldAccess{X: x, Field: field}
}

func (n *FieldAccess) Accept(visitor Visitor) error { return visitor.VisitFieldAccess(n) }
func (*FieldAccess) exprNode() {}

// CaseWhen is one WHEN branch of a CASE expression.
type CaseWhen struct {
	Cond   Expr
	Result Expr
}

// CaseExpr is a simple (Operand set) or searched CASE expression.
type CaseExpr struct {
	Operand Expr
	Whens   []*CaseWhen
	Else    Expr
}

// NewCase creates a CASE expression; operand may be nil for the searched form.
func NewCase(operand Expr) *CaseExpr {
	return &CaseExpr{Operand: operand}
}

// When adds a branch and returns the expression for chaining.
func (n *CaseExpr) When(cond, result Expr) *CaseExpr {
	n.Whens = append(n.Whens, &CaseWhen{Cond: cond, Result: result})
	return n
}

// SetElse sets the ELSE result and returns the expression for chaining.
func (n *CaseExpr) SetElse(result Expr) *CaseExpr {
	n.Else = result
	return n
}

func (n *CaseExpr) Accept(visitor Visitor) error { return visitor.VisitCase(n) }
func (*CaseExpr) exprNode() {}

// CursorExpr is CURSOR(subquery).
type CursorExpr struct {
	Query *SelectStatement
}

// NewCursorExpr creates a cursor expression.
func NewCursorExpr(query *SelectStatement) *CursorExpr {
	return &CursorExpr{Query: query}
}

func (n *CursorExpr) Accept(visitor Visitor) error { return visitor.VisitCursorExpr(n) }
func (*CursorExpr) exprNode() {}

// SubqueryExpr is a parenthesized scalar or EXISTS subquery.
type SubqueryExpr struct {
	Query *SelectStatement
}

// NewSubquery creates a subquery expression.
func NewSubquery(query *SelectStatement) *SubqueryExpr {
	return &SubqueryExpr{Query: query}
}

func (n *SubqueryExpr) Accept(visitor Visitor) error { return visitor.VisitSubquery(n) }
func (*SubqueryExpr) exprNode() {}

// CursorAttribute names a cursor attribute.
type CursorAttribute string

const (
	AttrFound    CursorAttribute = "FOUND"
	AttrNotFound CursorAttribute = "NOTFOUND"
	AttrRowCount CursorAttribute = "ROWCOUNT"
	AttrIsOpen   CursorAttribute = "ISOPEN"
)

// CursorAttr is cursor%ATTRIBUTE, including the implicit SQL cursor.
type CursorAttr struct {
	Cursor    string
	Attribute CursorAttribute
}

// NewCursorAttr creates a cursor attribute reference.
func NewCursorAttr(cursor string, attr CursorAttribute) *CursorAttr {
	return &CursorAttr{Cursor: cursor, Attribute: attr}
}

func (n *CursorAttr) Accept(visitor Visitor) error { return visitor.VisitCursorAttr(n) }
func (*CursorAttr) exprNode() {}

// AtTimeZone is X AT TIME ZONE zone or X AT LOCAL.
type AtTimeZone struct {
	X     Expr
	Zone  Expr
	Local bool
}

func (n *AtTimeZone) Accept(visitor Visitor) error { return visitor.VisitAtTimeZone(n) }
func (*AtTimeZone) exprNode() {}

// Collate is X COLLATE name.
type Collate struct {
	X         Expr
	Collation string
}

func (n *Collate) Accept(visitor Visitor) error { return visitor.VisitCollate(n) }
func (*Collate) exprNode() {}

// OverflowExpr is X ON OVERFLOW TRUNCATE|ERROR.
type OverflowExpr struct {
	X      Expr
	Action string
}

func (n *OverflowExpr) Accept(visitor Visitor) error { return visitor.VisitOverflow(n) }
func (*OverflowExpr) exprNode() {}
