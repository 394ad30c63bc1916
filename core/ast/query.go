package ast

// SelectStatement is a complete query: an optional WITH list, a query body and
// the trailing ORDER BY, OFFSET/FETCH and FOR UPDATE clauses.
type SelectStatement struct {
	With      []*CommonTableExpr
	Recursive bool
	Body      QueryExpr
	OrderBy   []*OrderItem
	Offset    Expr
	Fetch     Expr
	// ForUpdate holds the lock clause text after FOR UPDATE (OF cols, NOWAIT, SKIP LOCKED), or nil.
	ForUpdate *string
}

// NewSelect creates a query from a single query block.
func NewSelect(block *QueryBlock) *SelectStatement {
	return &SelectStatement{Body: block}
}

// AddCTE adds a common table expression and returns the statement for chaining.
func (n *SelectStatement) AddCTE(cte *CommonTableExpr) *SelectStatement {
	n.With = append(n.With, cte)
	return n
}

// AddOrderBy adds an ORDER BY item and returns the statement for chaining.
func (n *SelectStatement) AddOrderBy(item *OrderItem) *SelectStatement {
	n.OrderBy = append(n.OrderBy, item)
	return n
}

// CTENames returns the names defined by the WITH list.
func (n *SelectStatement) CTENames() []string {
	names := make([]string, 0, len(n.With))
	for _, cte := range n.With {
		names = append(names, cte.Name)
	}
	return names
}

// Accept implements the Node interface for SelectStatement.
func (n *SelectStatement) Accept(visitor Visitor) error {
	return visitor.VisitSelect(n)
}

// QueryExpr is the body of a query: a query block or a set operation.
type QueryExpr interface {
	queryNode()
}

// CommonTableExpr is name [(columns)] AS (query).
type CommonTableExpr struct {
	Name    string
	Columns []string
	Query   *SelectStatement
}

// NewCTE creates a common table expression.
func NewCTE(name string, query *SelectStatement, columns ...string) *CommonTableExpr {
	return &CommonTableExpr{Name: name, Query: query, Columns: columns}
}

// SetOp is a query set operator.
type SetOp string

const (
	SetUnion     SetOp = "UNION"
	SetUnionAll  SetOp = "UNION ALL"
	SetIntersect SetOp = "INTERSECT"
	SetMinus     SetOp = "MINUS"
)

// SetOperation combines two query bodies.
type SetOperation struct {
	Op    SetOp
	Left  QueryExpr
	Right QueryExpr
}

func (*SetOperation) queryNode() {}

// QueryBlock is SELECT ... FROM ... WHERE ... GROUP BY ... HAVING ....
type QueryBlock struct {
	Distinct bool
	Items    []*SelectItem
	From     []*TableRef
	Where    Expr
	GroupBy  []Expr
	Having   Expr
}

// NewQueryBlock creates a query block selecting items.
func NewQueryBlock(items ...*SelectItem) *QueryBlock {
	return &QueryBlock{Items: items}
}

// AddFrom adds a table reference and returns the block for chaining.
func (n *QueryBlock) AddFrom(ref *TableRef) *QueryBlock {
	n.From = append(n.From, ref)
	return n
}

// SetWhere sets the WHERE condition and returns the block for chaining.
func (n *QueryBlock) SetWhere(cond Expr) *QueryBlock {
	n.Where = cond
	return n
}

func (*QueryBlock) queryNode() {}

// SelectItem is one entry of the select list.
type SelectItem struct {
	Expr  Expr
	Alias string
	// Star selects all columns; StarTable qualifies it (t.*).
	Star      bool
	StarTable string
}

// NewSelectItem creates a select-list expression with an optional alias.
func NewSelectItem(expr Expr, alias string) *SelectItem {
	return &SelectItem{Expr: expr, Alias: alias}
}

// NewStarItem creates SELECT * or SELECT table.*.
func NewStarItem(table string) *SelectItem {
	return &SelectItem{Star: true, StarTable: table}
}

// JoinKind is the join type of a table reference relative to the previous one.
type JoinKind string

const (
	JoinNone  JoinKind = ""
	JoinInner JoinKind = "JOIN"
	JoinLeft  JoinKind = "LEFT JOIN"
	JoinRight JoinKind = "RIGHT JOIN"
	JoinFull  JoinKind = "FULL JOIN"
	JoinCross JoinKind = "CROSS JOIN"
)

// TableRef is an entry of the FROM clause: a table, view, synonym, CTE name or
// a derived table.
type TableRef struct {
	Schema   string
	Name     string
	Alias    string
	Subquery *SelectStatement
	Join     JoinKind
	On       Expr
}

// NewTableRef creates a reference to a named table.
func NewTableRef(schema, name, alias string) *TableRef {
	return &TableRef{Schema: schema, Name: name, Alias: alias}
}

// OrderItem is one ORDER BY entry.
type OrderItem struct {
	Expr       Expr
	Desc       bool
	NullsFirst *bool
}

// NewOrderItem creates an ORDER BY entry.
func NewOrderItem(expr Expr, desc bool) *OrderItem {
	return &OrderItem{Expr: expr, Desc: desc}
}
