package symtab_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/symtab"
	"github.com/stokaro/ora2pg/dbschema/types"
)

func testCatalog() *types.Catalog {
	return &types.Catalog{
		Tables: []types.TableMetadata{
			{Schema: "HR", Name: "EMPLOYEES", Columns: []types.ColumnMetadata{
				{Name: "EMPLOYEE_ID", DataType: "NUMBER"},
				{Name: "LAST_NAME", DataType: "VARCHAR2(25)"},
			}},
			{Schema: "SALES", Name: "ORDERS"},
			{Schema: "SALES", Name: "SHARED"},
			{Schema: "HR", Name: "SHARED"},
		},
		Views: []types.TableMetadata{
			{Schema: "HR", Name: "EMP_V", Columns: []types.ColumnMetadata{{Name: "FULL_NAME", DataType: "VARCHAR2(60)"}}},
		},
		Synonyms: []types.SynonymMetadata{
			{Schema: "HR", Name: "ORD", TargetSchema: "SALES", TargetName: "ORDERS"},
			{Schema: "PUBLIC", Name: "ALL_ORDERS", TargetSchema: "SALES", TargetName: "ORDERS"},
		},
	}
}

func TestSchemaForTable(t *testing.T) {
	st := symtab.New(testCatalog(), "HR", "SALES")

	tests := []struct {
		name     string
		table    string
		hint     string
		expected string
		found    bool
	}{
		{name: "table in hint schema", table: "employees", hint: "hr", expected: "HR", found: true},
		{name: "view in hint schema", table: "EMP_V", hint: "HR", expected: "HR", found: true},
		{name: "private synonym", table: "ORD", hint: "HR", expected: "SALES", found: true},
		{name: "public synonym", table: "ALL_ORDERS", hint: "HR", expected: "SALES", found: true},
		{name: "unique match in user schemas", table: "ORDERS", hint: "HR", expected: "SALES", found: true},
		{name: "ambiguous falls back to hint", table: "SHARED", hint: "OTHER", expected: "OTHER", found: false},
		{name: "miss falls back to hint", table: "NOPE", hint: "HR", expected: "HR", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			schema, err := st.SchemaForTable(tt.table, tt.hint)
			c.Assert(schema, qt.Equals, tt.expected)
			if tt.found {
				c.Assert(err, qt.IsNil)
			} else {
				c.Assert(err, qt.ErrorIs, symtab.ErrNotFound)
			}
		})
	}
}

func TestColumnLookup(t *testing.T) {
	c := qt.New(t)
	st := symtab.New(testCatalog(), "HR")

	col, ok := st.Column("hr", "employees", "last_name")
	c.Assert(ok, qt.IsTrue)
	c.Assert(col.DataType, qt.Equals, "VARCHAR2(25)")

	col, ok = st.Column("HR", "EMP_V", "FULL_NAME")
	c.Assert(ok, qt.IsTrue)
	c.Assert(col.DataType, qt.Equals, "VARCHAR2(60)")

	_, ok = st.Column("HR", "EMPLOYEES", "SALARY")
	c.Assert(ok, qt.IsFalse)

	c.Assert(st.ResolveTableName("HR", "ORD"), qt.Equals, "ORDERS")
	c.Assert(st.ResolveTableName("HR", "EMPLOYEES"), qt.Equals, "EMPLOYEES")
}

func TestRoutineKind(t *testing.T) {
	c := qt.New(t)
	st := symtab.New(nil, "HR")

	pkg := ast.NewPackage("HR", "EMP_PKG").
		AddFunction(ast.NewFunction("get_name", ast.NewNativeType("VARCHAR2"))).
		AddProcedure(ast.NewProcedure("raise_salary"))
	st.RegisterPackage(pkg)

	fn := ast.NewFunction("calc_bonus", ast.NewNativeType("NUMBER"))
	fn.Schema = "HR"
	st.RegisterFunction(fn)

	c.Assert(st.RoutineKind("", "emp_pkg", "GET_NAME"), qt.Equals, symtab.KindFunction)
	c.Assert(st.RoutineKind("HR", "EMP_PKG", "raise_salary"), qt.Equals, symtab.KindProcedure)
	c.Assert(st.RoutineKind("", "EMP_PKG", "missing"), qt.Equals, symtab.KindUnknown)
	c.Assert(st.IsFunction("", "", "calc_bonus"), qt.IsTrue)

	schema, ok := st.SchemaForRoutine("CALC_BONUS", "")
	c.Assert(ok, qt.IsTrue)
	c.Assert(schema, qt.Equals, "HR")
}

func TestFindPackageVariable(t *testing.T) {
	c := qt.New(t)
	st := symtab.New(nil, "HR")

	first := ast.NewPackage("HR", "A_PKG").AddVariable(ast.NewVariable("g_counter", ast.NewNativeType("NUMBER")))
	second := ast.NewPackage("HR", "B_PKG").AddVariable(ast.NewVariable("G_COUNTER", ast.NewNativeType("NUMBER")))
	st.RegisterPackage(first)
	st.RegisterPackage(second)

	pkg, v, ok := st.FindPackageVariable("G_Counter", nil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(pkg, qt.Equals, first)
	c.Assert(v.Name, qt.Equals, "g_counter")

	pkg, _, ok = st.FindPackageVariable("g_counter", second)
	c.Assert(ok, qt.IsTrue)
	c.Assert(pkg, qt.Equals, second)

	_, _, ok = st.FindPackageVariable("nothing", nil)
	c.Assert(ok, qt.IsFalse)
}

func TestLookupCollectionType(t *testing.T) {
	c := qt.New(t)
	st := symtab.New(nil, "HR")

	pkg := ast.NewPackage("HR", "EMP_PKG")
	pkg.VarrayTypes = append(pkg.VarrayTypes, ast.NewVarrayType("t_names", ast.NewNumber("10"), ast.NewNativeType("VARCHAR2").SetLength(50)))
	st.RegisterPackage(pkg)

	proc := ast.NewProcedure("p")
	pkg.AddProcedure(proc)
	proc.NestedTableTypes = append(proc.NestedTableTypes, ast.NewNestedTableType("t_names", ast.NewNativeType("NUMBER")))

	ct, ok := st.LookupCollectionType(&proc.Routine, nil, "T_NAMES")
	c.Assert(ok, qt.IsTrue)
	c.Assert(ct.Kind, qt.Equals, symtab.NestedTable)
	c.Assert(ct.Routine, qt.Equals, &proc.Routine)

	ct, ok = st.LookupCollectionType(nil, pkg, "t_names")
	c.Assert(ok, qt.IsTrue)
	c.Assert(ct.Kind, qt.Equals, symtab.Varray)
	c.Assert(ct.Package, qt.Equals, pkg)

	ct, ok = st.LookupCollectionType(nil, nil, "EMP_PKG.T_NAMES")
	c.Assert(ok, qt.IsTrue)
	c.Assert(ct.Package, qt.Equals, pkg)

	obj := ast.NewObjectType("HR", "T_ID_LIST")
	obj.Varray = ast.NewVarrayType("T_ID_LIST", ast.NewNumber("5"), ast.NewNativeType("NUMBER"))
	st.RegisterObjectType(obj)

	ct, ok = st.LookupCollectionType(nil, nil, "t_id_list")
	c.Assert(ok, qt.IsTrue)
	c.Assert(ct.ObjectType, qt.Equals, obj)

	_, ok = st.LookupCollectionType(nil, nil, "unknown")
	c.Assert(ok, qt.IsFalse)
}

func TestTableOfRecords(t *testing.T) {
	c := qt.New(t)
	st := symtab.New(nil, "HR")

	pkg := ast.NewPackage("HR", "EMP_PKG")
	proc := ast.NewProcedure("load")
	pkg.AddProcedure(proc)
	proc.RecordTypes = append(proc.RecordTypes, ast.NewRecordType("t_emp").AddField("id", ast.NewNativeType("NUMBER")))
	proc.NestedTableTypes = append(proc.NestedTableTypes, ast.NewNestedTableType("t_emp_tab", ast.NewCustomType("t_emp")))
	proc.NestedTableTypes = append(proc.NestedTableTypes, ast.NewNestedTableType("t_num_tab", ast.NewNativeType("NUMBER")))

	ct, rec, ok := st.TableOfRecords(&proc.Routine, nil, ast.NewCustomType("T_EMP_TAB"))
	c.Assert(ok, qt.IsTrue)
	c.Assert(ct.Name, qt.Equals, "t_emp_tab")
	c.Assert(rec.Record.Name, qt.Equals, "t_emp")
	c.Assert(rec.Routine, qt.Equals, &proc.Routine)

	_, _, ok = st.TableOfRecords(&proc.Routine, nil, ast.NewCustomType("t_num_tab"))
	c.Assert(ok, qt.IsFalse)

	_, _, ok = st.TableOfRecords(&proc.Routine, nil, ast.NewNativeType("NUMBER"))
	c.Assert(ok, qt.IsFalse)
}
