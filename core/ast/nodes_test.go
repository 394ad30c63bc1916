package ast_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/ast/mocks"
)

func TestAcceptDispatch(t *testing.T) {
	tests := []struct {
		name     string
		node     ast.Node
		expected string
	}{
		{name: "literal", node: ast.NewNumber("42"), expected: "Literal:42"},
		{name: "ident", node: ast.NewIdent("pkg", "g_count"), expected: "Ident:pkg.g_count"},
		{name: "binary", node: ast.NewBinary(ast.OpPow, ast.NewNumber("2"), ast.NewNumber("3")), expected: "Binary:**"},
		{name: "call", node: ast.NewCall("emp_pkg.get_salary"), expected: "Call:emp_pkg.get_salary"},
		{name: "collection method", node: ast.NewCollectionMethod(ast.NewIdent("arr"), "count"), expected: "CollectionMethod:COUNT"},
		{name: "cursor attribute", node: ast.NewCursorAttr("c_emp", ast.AttrNotFound), expected: "CursorAttr:c_emp%NOTFOUND"},
		{name: "assignment", node: ast.NewAssignment(ast.NewIdent("x"), ast.NewNumber("1")), expected: "Assignment:"},
		{name: "raise", node: ast.NewRaise("DUP_VAL_ON_INDEX"), expected: "Raise:DUP_VAL_ON_INDEX"},
		{name: "bulk collect", node: ast.NewBulkCollect([]string{"a"}, []string{"x"}, "", "emp", nil), expected: "BulkCollect:emp"},
		{name: "package", node: ast.NewPackage("HR", "EMP_PKG"), expected: "Package:EMP_PKG"},
		{name: "function", node: ast.NewFunction("get_total", ast.NewNativeType("number")), expected: "Function:get_total"},
		{name: "native type", node: ast.NewNativeType("varchar2"), expected: "NativeType:VARCHAR2"},
		{name: "column type", node: ast.NewColumnType("HR", "EMP", "SALARY"), expected: "ColumnType:SALARY"},
		{name: "trigger", node: ast.NewTrigger("HR", "trg_emp", "before", []string{"insert"}, "HR", "EMP"), expected: "Trigger:trg_emp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			visitor := &mocks.MockVisitor{}

			err := tt.node.Accept(visitor)

			c.Assert(err, qt.IsNil)
			c.Assert(visitor.VisitedNodes, qt.DeepEquals, []string{tt.expected})
		})
	}
}

func TestAcceptPropagatesVisitorErrors(t *testing.T) {
	c := qt.New(t)
	visitor := &mocks.MockVisitor{ReturnError: true}

	err := ast.NewIf(ast.NewBool(true)).Accept(visitor)

	c.Assert(err, qt.ErrorMatches, "mock error")
}

func TestPackageLink(t *testing.T) {
	c := qt.New(t)
	fn := ast.NewFunction("get_total", ast.NewNativeType("NUMBER"))
	proc := ast.NewProcedure("reset_total")
	pkg := ast.NewPackage("HR", "EMP_PKG")
	pkg.Functions = append(pkg.Functions, fn)
	pkg.Procedures = append(pkg.Procedures, proc)

	c.Assert(fn.Linked(), qt.IsFalse)

	pkg.Link()

	c.Assert(fn.Package, qt.Equals, pkg)
	c.Assert(proc.Package, qt.Equals, pkg)
	c.Assert(fn.OwnerSchema(), qt.Equals, "HR")
	c.Assert(proc.OwnerName(), qt.Equals, "EMP_PKG")
}

func TestObjectTypeLink(t *testing.T) {
	c := qt.New(t)
	member := ast.NewFunction("area", ast.NewNativeType("NUMBER"))
	obj := ast.NewObjectType("GEO", "SHAPE").AddAttribute("width", ast.NewNativeType("NUMBER"))
	obj.Functions = append(obj.Functions, member)

	obj.Link()

	c.Assert(member.ObjectType, qt.Equals, obj)
	c.Assert(member.OwnerSchema(), qt.Equals, "GEO")
	c.Assert(member.OwnerName(), qt.Equals, "SHAPE")
}

func TestStandaloneRoutineOwner(t *testing.T) {
	c := qt.New(t)
	proc := ast.NewProcedure("purge")
	proc.Schema = "HR"

	c.Assert(proc.Linked(), qt.IsTrue)
	c.Assert(proc.OwnerSchema(), qt.Equals, "HR")
	c.Assert(proc.OwnerName(), qt.Equals, "")
}

func TestRoutineLookupsAreCaseInsensitive(t *testing.T) {
	c := qt.New(t)
	fn := ast.NewFunction("f", ast.NewNativeType("NUMBER"))
	fn.Parameters = append(fn.Parameters, ast.NewParameter("P_ID", ast.NewNativeType("NUMBER")))
	fn.Variables = append(fn.Variables, ast.NewVariable("V_Name", ast.NewNativeType("VARCHAR2")))
	fn.RecordTypes = append(fn.RecordTypes, ast.NewRecordType("Emp_Rec"))

	typ, ok := fn.DeclaredType("p_id")
	c.Assert(ok, qt.IsTrue)
	c.Assert(ast.TypeName(typ), qt.Equals, "NUMBER")

	_, ok = fn.DeclaredType("v_name")
	c.Assert(ok, qt.IsTrue)

	_, ok = fn.DeclaredType("missing")
	c.Assert(ok, qt.IsFalse)

	c.Assert(fn.FindRecordType("EMP_REC"), qt.IsNotNil)
}

func TestNewAndFoldsLeftToRight(t *testing.T) {
	c := qt.New(t)
	a, b, d := ast.NewIdent("a"), ast.NewIdent("b"), ast.NewIdent("d")

	expr := ast.NewAnd(a, b, d)

	outer, ok := expr.(*ast.BinaryExpr)
	c.Assert(ok, qt.IsTrue)
	c.Assert(outer.Right, qt.Equals, ast.Expr(d))
	inner, ok := outer.Left.(*ast.BinaryExpr)
	c.Assert(ok, qt.IsTrue)
	c.Assert(inner.Left, qt.Equals, ast.Expr(a))
	c.Assert(inner.Right, qt.Equals, ast.Expr(b))
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		expr     ast.Expr
		expected int
	}{
		{name: "or", expr: ast.NewBinary(ast.OpOr, ast.NewIdent("a"), ast.NewIdent("b")), expected: ast.PrecOr},
		{name: "and", expr: ast.NewBinary(ast.OpAnd, ast.NewIdent("a"), ast.NewIdent("b")), expected: ast.PrecAnd},
		{name: "not", expr: ast.NewNot(ast.NewIdent("a")), expected: ast.PrecNot},
		{name: "comparison", expr: ast.NewBinary(ast.OpNeCaret, ast.NewIdent("a"), ast.NewIdent("b")), expected: ast.PrecComparison},
		{name: "is null", expr: ast.NewIsNull(ast.NewIdent("a")), expected: ast.PrecComparison},
		{name: "concat", expr: ast.NewBinary(ast.OpConcat, ast.NewIdent("a"), ast.NewIdent("b")), expected: ast.PrecConcat},
		{name: "mod", expr: ast.NewBinary(ast.OpMod, ast.NewIdent("a"), ast.NewIdent("b")), expected: ast.PrecMultiplicative},
		{name: "power", expr: ast.NewBinary(ast.OpPow, ast.NewIdent("a"), ast.NewIdent("b")), expected: ast.PrecPower},
		{name: "negation", expr: ast.NewUnary(ast.OpNeg, ast.NewIdent("a")), expected: ast.PrecUnary},
		{name: "call", expr: ast.NewCall("f"), expected: ast.PrecAtom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(ast.Precedence(tt.expr), qt.Equals, tt.expected)
		})
	}
}

func TestInspectVisitsNestedStatements(t *testing.T) {
	c := qt.New(t)
	query := ast.NewSelect(ast.NewQueryBlock(ast.NewStarItem("")).AddFrom(ast.NewTableRef("", "EMP", "")))
	proc := ast.NewProcedure("walk")
	proc.Body = []ast.Statement{
		ast.NewIf(ast.NewIsNull(ast.NewIdent("x")),
			ast.NewForQuery("rec", query,
				ast.NewAssignment(ast.NewIdent("y"), ast.NewIdent("rec", "id")),
			),
		),
	}

	var records []string
	var idents int
	ast.Inspect(proc, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.ForCursorStatement:
			records = append(records, v.Record)
		case *ast.Ident:
			idents++
		}
		return true
	})

	c.Assert(records, qt.DeepEquals, []string{"rec"})
	c.Assert(idents, qt.Equals, 3)
}

func TestInspectSkipsChildrenWhenFalse(t *testing.T) {
	c := qt.New(t)
	expr := ast.NewBinary(ast.OpAdd, ast.NewIdent("a"), ast.NewIdent("b"))

	var visited int
	ast.Inspect(expr, func(ast.Node) bool {
		visited++
		return false
	})

	c.Assert(visited, qt.Equals, 1)
}
