package ast

// Statement is an executable PL/SQL statement.
type Statement interface {
	Node
	stmtNode()
}

// Assignment is target := value. The target is an identifier, an element access
// written as a call (coll(i)) or a field access.
type Assignment struct {
	Target Expr
	Value  Expr
}

// NewAssignment creates an assignment statement.
func NewAssignment(target, value Expr) *Assignment {
	return &Assignment{Target: target, Value: value}
}

func (n *Assignment) Accept(visitor Visitor) error { return visitor.VisitAssignment(n) }
func (*Assignment) stmtNode() {}

// ElsIf is one ELSIF branch.
type ElsIf struct {
	Cond Expr
	Body []Statement
}

// IfStatement is IF ... THEN ... [ELSIF ...] [ELSE ...] END IF.
type IfStatement struct {
	Cond   Expr
	Then   []Statement
	ElsIfs []*ElsIf
	Else   []Statement
}

// NewIf creates an IF statement with its THEN branch.
func NewIf(cond Expr, then ...Statement) *IfStatement {
	return &IfStatement{Cond: cond, Then: then}
}

// AddElsIf adds an ELSIF branch and returns the statement for chaining.
func (n *IfStatement) AddElsIf(cond Expr, body ...Statement) *IfStatement {
	n.ElsIfs = append(n.ElsIfs, &ElsIf{Cond: cond, Body: body})
	return n
}

// SetElse sets the ELSE branch and returns the statement for chaining.
func (n *IfStatement) SetElse(body ...Statement) *IfStatement {
	n.Else = body
	return n
}

func (n *IfStatement) Accept(visitor Visitor) error { return visitor.VisitIf(n) }
func (*IfStatement) stmtNode() {}

// LoopStatement is a basic LOOP ... END LOOP.
type LoopStatement struct {
	Label string
	Body  []Statement
}

// NewLoop creates a basic loop.
func NewLoop(body ...Statement) *LoopStatement {
	return &LoopStatement{Body: body}
}

func (n *LoopStatement) Accept(visitor Visitor) error { return visitor.VisitLoop(n) }
func (*LoopStatement) stmtNode() {}

// WhileStatement is WHILE cond LOOP ... END LOOP.
type WhileStatement struct {
	Label string
	Cond  Expr
	Body  []Statement
}

// NewWhile creates a WHILE loop.
func NewWhile(cond Expr, body ...Statement) *WhileStatement {
	return &WhileStatement{Cond: cond, Body: body}
}

func (n *WhileStatement) Accept(visitor Visitor) error { return visitor.VisitWhile(n) }
func (*WhileStatement) stmtNode() {}

// ForRangeStatement is FOR i IN [REVERSE] low..high LOOP ... END LOOP.
type ForRangeStatement struct {
	Label   string
	Var     string
	Reverse bool
	Low     Expr
	High    Expr
	Body    []Statement
}

// NewForRange creates a numeric FOR loop.
func NewForRange(variable string, low, high Expr, body ...Statement) *ForRangeStatement {
	return &ForRangeStatement{Var: variable, Low: low, High: high, Body: body}
}

func (n *ForRangeStatement) Accept(visitor Visitor) error { return visitor.VisitForRange(n) }
func (*ForRangeStatement) stmtNode() {}

// ForCursorStatement is FOR rec IN cursor[(args)] LOOP or FOR rec IN (query) LOOP.
// Exactly one of Cursor and Query is set.
type ForCursorStatement struct {
	Label  string
	Record string
	Cursor string
	Args   []Expr
	Query  *SelectStatement
	Body   []Statement
}

// NewForQuery creates a query FOR loop.
func NewForQuery(record string, query *SelectStatement, body ...Statement) *ForCursorStatement {
	return &ForCursorStatement{Record: record, Query: query, Body: body}
}

// NewForCursor creates a cursor FOR loop over a declared cursor.
func NewForCursor(record, cursor string, args []Expr, body ...Statement) *ForCursorStatement {
	return &ForCursorStatement{Record: record, Cursor: cursor, Args: args, Body: body}
}

func (n *ForCursorStatement) Accept(visitor Visitor) error { return visitor.VisitForCursor(n) }
func (*ForCursorStatement) stmtNode() {}

// ExitStatement is EXIT [label] [WHEN cond].
type ExitStatement struct {
	Label string
	When  Expr
}

// NewExit creates an EXIT statement; when may be nil.
func NewExit(when Expr) *ExitStatement {
	return &ExitStatement{When: when}
}

func (n *ExitStatement) Accept(visitor Visitor) error { return visitor.VisitExit(n) }
func (*ExitStatement) stmtNode() {}

// ContinueStatement is CONTINUE [label] [WHEN cond].
type ContinueStatement struct {
	Label string
	When  Expr
}

func (n *ContinueStatement) Accept(visitor Visitor) error { return visitor.VisitContinue(n) }
func (*ContinueStatement) stmtNode() {}

// SelectInto is SELECT cols INTO vars FROM [schema.]table [WHERE cond].
// Table and column names are raw strings resolved at render time.
type SelectInto struct {
	Columns []string
	Into    []string
	Schema  string
	Table   string
	Where   Expr
}

// NewSelectInto creates a SELECT INTO statement.
func NewSelectInto(columns, into []string, schema, table string, where Expr) *SelectInto {
	return &SelectInto{Columns: columns, Into: into, Schema: schema, Table: table, Where: where}
}

func (n *SelectInto) Accept(visitor Visitor) error { return visitor.VisitSelectInto(n) }
func (*SelectInto) stmtNode() {}

// BulkCollect is SELECT cols BULK COLLECT INTO arrays FROM [schema.]table [WHERE cond].
type BulkCollect struct {
	Columns []string
	Into    []string
	Schema  string
	Table   string
	Where   Expr
}

// NewBulkCollect creates a BULK COLLECT statement.
func NewBulkCollect(columns, into []string, schema, table string, where Expr) *BulkCollect {
	return &BulkCollect{Columns: columns, Into: into, Schema: schema, Table: table, Where: where}
}

func (n *BulkCollect) Accept(visitor Visitor) error { return visitor.VisitBulkCollect(n) }
func (*BulkCollect) stmtNode() {}

// InsertStatement is INSERT INTO table [(cols)] VALUES (...) | query.
type InsertStatement struct {
	Schema  string
	Table   string
	Columns []string
	Values  []Expr
	Query   *SelectStatement
}

// NewInsert creates an INSERT ... VALUES statement.
func NewInsert(schema, table string, columns []string, values ...Expr) *InsertStatement {
	return &InsertStatement{Schema: schema, Table: table, Columns: columns, Values: values}
}

func (n *InsertStatement) Accept(visitor Visitor) error { return visitor.VisitInsert(n) }
func (*InsertStatement) stmtNode() {}

// SetClause is one column = value pair of an UPDATE.
type SetClause struct {
	Column string
	Value  Expr
}

// UpdateStatement is UPDATE table SET ... [WHERE cond | WHERE CURRENT OF cursor].
type UpdateStatement struct {
	Schema    string
	Table     string
	Set       []*SetClause
	Where     Expr
	CurrentOf string
}

// NewUpdate creates an UPDATE statement.
func NewUpdate(schema, table string) *UpdateStatement {
	return &UpdateStatement{Schema: schema, Table: table}
}

// AddSet adds a SET pair and returns the statement for chaining.
func (n *UpdateStatement) AddSet(column string, value Expr) *UpdateStatement {
	n.Set = append(n.Set, &SetClause{Column: column, Value: value})
	return n
}

// SetWhere sets the WHERE condition and returns the statement for chaining.
func (n *UpdateStatement) SetWhere(cond Expr) *UpdateStatement {
	n.Where = cond
	return n
}

func (n *UpdateStatement) Accept(visitor Visitor) error { return visitor.VisitUpdate(n) }
func (*UpdateStatement) stmtNode() {}

// DeleteStatement is DELETE FROM table [WHERE cond | WHERE CURRENT OF cursor].
type DeleteStatement struct {
	Schema    string
	Table     string
	Where     Expr
	CurrentOf string
}

// NewDelete creates a DELETE statement.
func NewDelete(schema, table string, where Expr) *DeleteStatement {
	return &DeleteStatement{Schema: schema, Table: table, Where: where}
}

func (n *DeleteStatement) Accept(visitor Visitor) error { return visitor.VisitDelete(n) }
func (*DeleteStatement) stmtNode() {}

// OpenStatement is OPEN cursor[(args)] or OPEN refcursor FOR query.
type OpenStatement struct {
	Cursor string
	Args   []Expr
	Query  *SelectStatement
}

// NewOpen creates an OPEN statement.
func NewOpen(cursor string, args ...Expr) *OpenStatement {
	return &OpenStatement{Cursor: cursor, Args: args}
}

func (n *OpenStatement) Accept(visitor Visitor) error { return visitor.VisitOpen(n) }
func (*OpenStatement) stmtNode() {}

// FetchStatement is FETCH cursor [BULK COLLECT] INTO vars [LIMIT n].
type FetchStatement struct {
	Cursor string
	Into   []string
	Bulk   bool
	Limit  Expr
}

// NewFetch creates a FETCH statement.
func NewFetch(cursor string, into ...string) *FetchStatement {
	return &FetchStatement{Cursor: cursor, Into: into}
}

func (n *FetchStatement) Accept(visitor Visitor) error { return visitor.VisitFetch(n) }
func (*FetchStatement) stmtNode() {}

// CloseStatement is CLOSE cursor.
type CloseStatement struct {
	Cursor string
}

// NewClose creates a CLOSE statement.
func NewClose(cursor string) *CloseStatement {
	return &CloseStatement{Cursor: cursor}
}

func (n *CloseStatement) Accept(visitor Visitor) error { return visitor.VisitClose(n) }
func (*CloseStatement) stmtNode() {}

// RaiseStatement is RAISE [exception]. An empty Exception re-raises the current one.
type RaiseStatement struct {
	Exception string
	Message   string
}

// NewRaise creates a RAISE statement.
func NewRaise(exception string) *RaiseStatement {
	return &RaiseStatement{Exception: exception}
}

func (n *RaiseStatement) Accept(visitor Visitor) error { return visitor.VisitRaise(n) }
func (*RaiseStatement) stmtNode() {}

// ReturnStatement is RETURN [expr].
type ReturnStatement struct {
	Value Expr
}

// NewReturn creates a RETURN statement; value may be nil.
func NewReturn(value Expr) *ReturnStatement {
	return &ReturnStatement{Value: value}
}

func (n *ReturnStatement) Accept(visitor Visitor) error { return visitor.VisitReturn(n) }
func (*ReturnStatement) stmtNode() {}

// CallStatement invokes a procedure, or a function whose result is stored in Into.
// Schema and Package are optional qualifiers as written in the source.
type CallStatement struct {
	Schema  string
	Package string
	Routine string
	Args    []Expr
	Into    Expr
}

// NewCallStatement creates a call statement.
func NewCallStatement(schema, pkg, routine string, args ...Expr) *CallStatement {
	return &CallStatement{Schema: schema, Package: pkg, Routine: routine, Args: args}
}

func (n *CallStatement) Accept(visitor Visitor) error { return visitor.VisitCallStatement(n) }
func (*CallStatement) stmtNode() {}

// NullStatement is NULL.
type NullStatement struct{}

func (n *NullStatement) Accept(visitor Visitor) error { return visitor.VisitNull(n) }
func (*NullStatement) stmtNode() {}

// Block is a nested [DECLARE ...] BEGIN ... [EXCEPTION ...] END.
type Block struct {
	Label     string
	Variables []*Variable
	Cursors   []*CursorDecl
	Body      []Statement
	Exception *ExceptionBlock
}

// NewBlock creates a nested block.
func NewBlock(body ...Statement) *Block {
	return &Block{Body: body}
}

func (n *Block) Accept(visitor Visitor) error { return visitor.VisitBlock(n) }
func (*Block) stmtNode() {}

// Comment is a source comment kept in the statement list.
type Comment struct {
	Text string
}

// NewComment creates a comment statement.
func NewComment(text string) *Comment {
	return &Comment{Text: text}
}

func (n *Comment) Accept(visitor Visitor) error { return visitor.VisitComment(n) }
func (*Comment) stmtNode() {}

// ExceptionHandler is WHEN name [OR name ...] THEN statements. An empty Names
// list means WHEN OTHERS.
type ExceptionHandler struct {
	Names []string
	Body  []Statement
}

// ExceptionBlock is the EXCEPTION section of a routine or block.
type ExceptionBlock struct {
	Handlers []*ExceptionHandler
}

// NewExceptionBlock creates an empty exception section.
func NewExceptionBlock() *ExceptionBlock {
	return &ExceptionBlock{}
}

// When adds a handler and returns the block for chaining.
//
// Example:
//
//	NewExceptionBlock().When([]string{"NO_DATA_FOUND"}, NewReturn(NewNull()))
func (n *ExceptionBlock) When(names []string, body ...Statement) *ExceptionBlock {
	n.Handlers = append(n.Handlers, &ExceptionHandler{Names: names, Body: body})
	return n
}

// Accept implements the Node interface for ExceptionBlock.
func (n *ExceptionBlock) Accept(visitor Visitor) error {
	return visitor.VisitExceptionBlock(n)
}
