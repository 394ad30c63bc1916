package mocks

import (
	"errors"

	"github.com/stokaro/ora2pg/core/ast"
)

// MockVisitor implements the Visitor interface for testing.
//
// Every visit appends "Kind:label" to VisitedNodes. With ReturnError set each
// visit fails with "mock error".
type MockVisitor struct {
	VisitedNodes []string
	ReturnError  bool
}

var _ ast.Visitor = (*MockVisitor)(nil)

func (m *MockVisitor) record(kind, label string) error {
	m.VisitedNodes = append(m.VisitedNodes, kind+":"+label)
	if m.ReturnError {
		return errors.New("mock error")
	}
	return nil
}

func (m *MockVisitor) VisitLiteral(node *ast.Literal) error {
	return m.record("Literal", node.Value)
}

func (m *MockVisitor) VisitIdent(node *ast.Ident) error {
	return m.record("Ident", node.Name())
}

func (m *MockVisitor) VisitBinary(node *ast.BinaryExpr) error {
	return m.record("Binary", string(node.Op))
}

func (m *MockVisitor) VisitUnary(node *ast.UnaryExpr) error {
	return m.record("Unary", string(node.Op))
}

func (m *MockVisitor) VisitIs(node *ast.IsExpr) error {
	return m.record("Is", string(node.Test))
}

func (m *MockVisitor) VisitLike(node *ast.LikeExpr) error {
	return m.record("Like", string(node.Op))
}

func (m *MockVisitor) VisitIn(node *ast.InExpr) error {
	return m.record("In", "")
}

func (m *MockVisitor) VisitBetween(node *ast.BetweenExpr) error {
	return m.record("Between", "")
}

func (m *MockVisitor) VisitMultiset(node *ast.MultisetExpr) error {
	return m.record("Multiset", string(node.Op))
}

func (m *MockVisitor) VisitParen(node *ast.ParenExpr) error {
	return m.record("Paren", "")
}

func (m *MockVisitor) VisitCall(node *ast.Call) error {
	return m.record("Call", node.QualifiedName())
}

func (m *MockVisitor) VisitNamedArg(node *ast.NamedArg) error {
	return m.record("NamedArg", node.Name)
}

func (m *MockVisitor) VisitCollectionMethod(node *ast.CollectionMethod) error {
	return m.record("CollectionMethod", node.Method)
}

func (m *MockVisitor) VisitFieldAccess(node *ast.FieldAccess) error {
	return m.record("FieldAccess", node.Field)
}

func (m *MockVisitor) VisitCase(node *ast.CaseExpr) error {
	return m.record("Case", "")
}

func (m *MockVisitor) VisitCursorExpr(node *ast.CursorExpr) error {
	return m.record("CursorExpr", "")
}

func (m *MockVisitor) VisitSubquery(node *ast.SubqueryExpr) error {
	return m.record("Subquery", "")
}

func (m *MockVisitor) VisitCursorAttr(node *ast.CursorAttr) error {
	return m.record("CursorAttr", node.Cursor + "%" + string(node.Attribute))
}

func (m *MockVisitor) VisitAtTimeZone(node *ast.AtTimeZone) error {
	return m.record("AtTimeZone", "")
}

func (m *MockVisitor) VisitCollate(node *ast.Collate) error {
	return m.record("Collate", node.Collation)
}

func (m *MockVisitor) VisitOverflow(node *ast.OverflowExpr) error {
	return m.record("Overflow", node.Action)
}

func (m *MockVisitor) VisitAssignment(node *ast.Assignment) error {
	return m.record("Assignment", "")
}

func (m *MockVisitor) VisitIf(node *ast.IfStatement) error {
	return m.record("If", "")
}

func (m *MockVisitor) VisitLoop(node *ast.LoopStatement) error {
	return m.record("Loop", node.Label)
}

func (m *MockVisitor) VisitWhile(node *ast.WhileStatement) error {
	return m.record("While", node.Label)
}

func (m *MockVisitor) VisitForRange(node *ast.ForRangeStatement) error {
	return m.record("ForRange", node.Var)
}

func (m *MockVisitor) VisitForCursor(node *ast.ForCursorStatement) error {
	return m.record("ForCursor", node.Record)
}

func (m *MockVisitor) VisitExit(node *ast.ExitStatement) error {
	return m.record("Exit", node.Label)
}

func (m *MockVisitor) VisitContinue(node *ast.ContinueStatement) error {
	return m.record("Continue", node.Label)
}

func (m *MockVisitor) VisitSelectInto(node *ast.SelectInto) error {
	return m.record("SelectInto", node.Table)
}

func (m *MockVisitor) VisitBulkCollect(node *ast.BulkCollect) error {
	return m.record("BulkCollect", node.Table)
}

func (m *MockVisitor) VisitInsert(node *ast.InsertStatement) error {
	return m.record("Insert", node.Table)
}

func (m *MockVisitor) VisitUpdate(node *ast.UpdateStatement) error {
	return m.record("Update", node.Table)
}

func (m *MockVisitor) VisitDelete(node *ast.DeleteStatement) error {
	return m.record("Delete", node.Table)
}

func (m *MockVisitor) VisitOpen(node *ast.OpenStatement) error {
	return m.record("Open", node.Cursor)
}

func (m *MockVisitor) VisitFetch(node *ast.FetchStatement) error {
	return m.record("Fetch", node.Cursor)
}

func (m *MockVisitor) VisitClose(node *ast.CloseStatement) error {
	return m.record("Close", node.Cursor)
}

func (m *MockVisitor) VisitRaise(node *ast.RaiseStatement) error {
	return m.record("Raise", node.Exception)
}

func (m *MockVisitor) VisitReturn(node *ast.ReturnStatement) error {
	return m.record("Return", "")
}

func (m *MockVisitor) VisitCallStatement(node *ast.CallStatement) error {
	return m.record("CallStatement", node.Routine)
}

func (m *MockVisitor) VisitNull(node *ast.NullStatement) error {
	return m.record("Null", "")
}

func (m *MockVisitor) VisitBlock(node *ast.Block) error {
	return m.record("Block", node.Label)
}

func (m *MockVisitor) VisitComment(node *ast.Comment) error {
	return m.record("Comment", node.Text)
}

func (m *MockVisitor) VisitSelect(node *ast.SelectStatement) error {
	return m.record("Select", "")
}

func (m *MockVisitor) VisitExceptionBlock(node *ast.ExceptionBlock) error {
	return m.record("ExceptionBlock", "")
}

func (m *MockVisitor) VisitVariable(node *ast.Variable) error {
	return m.record("Variable", node.Name)
}

func (m *MockVisitor) VisitParameter(node *ast.Parameter) error {
	return m.record("Parameter", node.Name)
}

func (m *MockVisitor) VisitCursorDecl(node *ast.CursorDecl) error {
	return m.record("CursorDecl", node.Name)
}

func (m *MockVisitor) VisitExceptionDecl(node *ast.ExceptionDecl) error {
	return m.record("ExceptionDecl", node.Name)
}

func (m *MockVisitor) VisitRecordType(node *ast.RecordType) error {
	return m.record("RecordType", node.Name)
}

func (m *MockVisitor) VisitVarrayType(node *ast.VarrayType) error {
	return m.record("VarrayType", node.Name)
}

func (m *MockVisitor) VisitNestedTableType(node *ast.NestedTableType) error {
	return m.record("NestedTableType", node.Name)
}

func (m *MockVisitor) VisitSubType(node *ast.SubType) error {
	return m.record("SubType", node.Name)
}

func (m *MockVisitor) VisitFunction(node *ast.Function) error {
	return m.record("Function", node.Name)
}

func (m *MockVisitor) VisitProcedure(node *ast.Procedure) error {
	return m.record("Procedure", node.Name)
}

func (m *MockVisitor) VisitPackage(node *ast.Package) error {
	return m.record("Package", node.Name)
}

func (m *MockVisitor) VisitObjectType(node *ast.ObjectType) error {
	return m.record("ObjectType", node.Name)
}

func (m *MockVisitor) VisitTrigger(node *ast.Trigger) error {
	return m.record("Trigger", node.Name)
}

func (m *MockVisitor) VisitView(node *ast.View) error {
	return m.record("View", node.Name)
}

func (m *MockVisitor) VisitNativeType(node *ast.NativeType) error {
	return m.record("NativeType", node.Name)
}

func (m *MockVisitor) VisitCustomType(node *ast.CustomType) error {
	return m.record("CustomType", node.Name)
}

func (m *MockVisitor) VisitRowType(node *ast.RowType) error {
	return m.record("RowType", node.Table)
}

func (m *MockVisitor) VisitColumnType(node *ast.ColumnType) error {
	return m.record("ColumnType", node.Column)
}
