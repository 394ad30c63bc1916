// Package ast defines the abstract syntax tree for Oracle PL/SQL schema objects.
//
// The tree is built once per parsed unit (package, object type, standalone routine,
// trigger or view) by an external builder and then rendered by the dialect renderers
// under core/renderer/dialects. Nodes never reference their parents, with the single
// exception of routines, which carry a link to the package or object type that owns
// them. Those links are attached in a second phase with Package.Link and ObjectType.Link.
package ast

// Node represents any PL/SQL AST node that can be visited by a Visitor.
//
// All AST nodes implement this interface to participate in the visitor pattern.
// The Accept method allows visitors to traverse the AST and generate
// dialect-specific output.
type Node interface {
	// Accept implements the visitor pattern for rendering
	Accept(visitor Visitor) error
}

// Visitor defines the interface for visiting PL/SQL AST nodes.
//
// Implementations include the Oracle renderer, which re-emits the tree in its
// source syntax, and test doubles in the mocks package.
type Visitor interface {
	ExprVisitor
	StatementVisitor
	DeclarationVisitor
	DataTypeVisitor
}

// ExprVisitor visits the expression variants.
type ExprVisitor interface {
	VisitLiteral(node *Literal) error
	VisitIdent(node *Ident) error
	VisitBinary(node *BinaryExpr) error
	VisitUnary(node *UnaryExpr) error
	VisitIs(node *IsExpr) error
	VisitLike(node *LikeExpr) error
	VisitIn(node *InExpr) error
	VisitBetween(node *BetweenExpr) error
	VisitMultiset(node *MultisetExpr) error
	VisitParen(node *ParenExpr) error
	VisitCall(node *Call) error
	VisitNamedArg(node *NamedArg) error
	VisitCollectionMethod(node *CollectionMethod) error
	VisitFieldAccess(node *FieldAccess) error
	VisitCase(node *CaseExpr) error
	VisitCursorExpr(node *CursorExpr) error
	VisitSubquery(node *SubqueryExpr) error
	VisitCursorAttr(node *CursorAttr) error
	VisitAtTimeZone(node *AtTimeZone) error
	VisitCollate(node *Collate) error
	VisitOverflow(node *OverflowExpr) error
}

// StatementVisitor visits executable statements and queries.
type StatementVisitor interface {
	VisitAssignment(node *Assignment) error
	VisitIf(node *IfStatement) error
	VisitLoop(node *LoopStatement) error
	VisitWhile(node *WhileStatement) error
	VisitForRange(node *ForRangeStatement) error
	VisitForCursor(node *ForCursorStatement) error
	VisitExit(node *ExitStatement) error
	VisitContinue(node *ContinueStatement) error
	VisitSelectInto(node *SelectInto) error
	VisitBulkCollect(node *BulkCollect) error
	VisitInsert(node *InsertStatement) error
	VisitUpdate(node *UpdateStatement) error
	VisitDelete(node *DeleteStatement) error
	VisitOpen(node *OpenStatement) error
	VisitFetch(node *FetchStatement) error
	VisitClose(node *CloseStatement) error
	VisitRaise(node *RaiseStatement) error
	VisitReturn(node *ReturnStatement) error
	VisitCallStatement(node *CallStatement) error
	VisitNull(node *NullStatement) error
	VisitBlock(node *Block) error
	VisitComment(node *Comment) error
	VisitSelect(node *SelectStatement) error
	VisitExceptionBlock(node *ExceptionBlock) error
}

// DeclarationVisitor visits the declarative layer: packages, types, routines and their parts.
type DeclarationVisitor interface {
	VisitVariable(node *Variable) error
	VisitParameter(node *Parameter) error
	VisitCursorDecl(node *CursorDecl) error
	VisitExceptionDecl(node *ExceptionDecl) error
	VisitRecordType(node *RecordType) error
	VisitVarrayType(node *VarrayType) error
	VisitNestedTableType(node *NestedTableType) error
	VisitSubType(node *SubType) error
	VisitFunction(node *Function) error
	VisitProcedure(node *Procedure) error
	VisitPackage(node *Package) error
	VisitObjectType(node *ObjectType) error
	VisitTrigger(node *Trigger) error
	VisitView(node *View) error
}

// DataTypeVisitor visits the four data type origins.
type DataTypeVisitor interface {
	VisitNativeType(node *NativeType) error
	VisitCustomType(node *CustomType) error
	VisitRowType(node *RowType) error
	VisitColumnType(node *ColumnType) error
}
