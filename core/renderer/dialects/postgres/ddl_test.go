package postgres_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/renderer/dialects/postgres"
	"github.com/stokaro/ora2pg/core/symtab"
)

func configPackage() (*symtab.SymbolTable, *ast.Package) {
	pkg := ast.NewPackage("HR", "CFG_PKG").
		AddVariable(ast.NewVariable("g_rate", ast.NewNativeType("NUMBER")).SetDefault(ast.NewNumber("1.5")))
	fn := ast.NewFunction("rate", ast.NewNativeType("NUMBER"))
	fn.Body = []ast.Statement{ast.NewReturn(ast.NewIdent("g_rate"))}
	pkg.AddFunction(fn)

	symbols := symtab.New(nil, "HR")
	symbols.RegisterPackage(pkg)
	return symbols, pkg
}

func TestRenderer_Package(t *testing.T) {
	c := qt.New(t)
	symbols, pkg := configPackage()

	got, err := postgres.New(symbols).Render(pkg)
	c.Assert(err, qt.IsNil)

	want := `-- Package HR.CFG_PKG

CREATE OR REPLACE FUNCTION HR.CFG_PKG_init_variables()
RETURNS void
LANGUAGE plpgsql
AS $$
BEGIN
  PERFORM sys.set_package_var_numeric('hr', 'cfg_pkg', 'g_rate', 1.5);
END;
$$;

CREATE OR REPLACE FUNCTION HR.CFG_PKG_rate()
RETURNS numeric
LANGUAGE plpgsql
AS $$
BEGIN
  RETURN sys.get_package_var_numeric('hr', 'cfg_pkg', 'g_rate');
END;
$$;
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("package mismatch (-want +got):\n%s", diff)
	}
	c.Assert(postgres.InitFunctionName(pkg), qt.Equals, "HR.CFG_PKG_init_variables")
}

func TestRenderer_PackageSpecOnly(t *testing.T) {
	c := qt.New(t)
	symbols, pkg := configPackage()

	got, err := postgres.New(symbols).WithSpecOnly(true).Render(pkg)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, `-- Package HR.CFG_PKG

CREATE OR REPLACE FUNCTION HR.CFG_PKG_rate()
RETURNS numeric
LANGUAGE plpgsql
AS $$
BEGIN
  RETURN NULL;
END;
$$;
`)
}

func TestRenderer_PackageTypes(t *testing.T) {
	c := qt.New(t)
	pkg := ast.NewPackage("HR", "T_PKG")
	pkg.SubTypes = []*ast.SubType{{Name: "money_t", Base: ast.NewNativeType("NUMBER").SetPrecision(12, 2), NotNull: true}}
	pkg.RecordTypes = []*ast.RecordType{ast.NewRecordType("pair").AddField("k", ast.NewNativeType("VARCHAR2").SetLength(10)).AddField("v", ast.NewCustomType("money_t"))}
	pkg.VarrayTypes = []*ast.VarrayType{ast.NewVarrayType("names_t", ast.NewNumber("5"), ast.NewNativeType("VARCHAR2").SetLength(30))}
	symbols := symtab.New(nil, "HR")
	symbols.RegisterPackage(pkg)

	got, err := postgres.New(symbols).PackageTypes(pkg)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, `CREATE DOMAIN hr_t_pkg_money_t AS numeric(12,2) NOT NULL;

CREATE TYPE hr_t_pkg_pair AS (
  k varchar(10),
  v hr_t_pkg_money_t
);

CREATE DOMAIN hr_t_pkg_names_t AS varchar(30)[];`)
}

func TestRenderer_Trigger(t *testing.T) {
	c := qt.New(t)
	symbols, _ := fixture()

	trg := ast.NewTrigger("HR", "EMP_AUDIT", "before", []string{"insert", "update"}, "HR", "EMPLOYEES")
	trg.Body = []ast.Statement{
		ast.NewIf(ast.NewIdent("INSERTING"),
			ast.NewAssignment(ast.NewIdent(":NEW", "created_by"), ast.NewString("system"))),
	}

	got, err := postgres.New(symbols).Render(trg)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, `CREATE OR REPLACE FUNCTION HR.emp_audit_func()
RETURNS trigger
LANGUAGE plpgsql
AS $$
BEGIN
  IF TG_OP = 'INSERT' THEN
    NEW.created_by := 'system';
  END IF;
  RETURN NEW;
END;
$$;

CREATE OR REPLACE TRIGGER emp_audit
BEFORE INSERT OR UPDATE ON HR.EMPLOYEES
FOR EACH ROW
EXECUTE FUNCTION HR.emp_audit_func();
`)
}

func TestRenderer_TriggerReturn(t *testing.T) {
	tests := []struct {
		name   string
		timing string
		events []string
		row    bool
		want   string
	}{
		{"after row", "AFTER", []string{"INSERT", "UPDATE"}, true, "RETURN COALESCE(NEW, OLD);"},
		{"delete only", "BEFORE", []string{"DELETE"}, true, "RETURN OLD;"},
		{"statement level", "AFTER", []string{"INSERT"}, false, "RETURN NULL;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			trg := ast.NewTrigger("HR", "T1", tt.timing, tt.events, "HR", "EMPLOYEES")
			trg.ForEachRow = tt.row
			got, err := postgres.New(nil).Trigger(trg)
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Contains, "\n  "+tt.want+"\n")
		})
	}
}

func TestRenderer_ObjectType(t *testing.T) {
	c := qt.New(t)

	obj := ast.NewObjectType("HR", "POINT").
		AddAttribute("x", ast.NewNativeType("NUMBER")).
		AddAttribute("y", ast.NewNativeType("NUMBER"))
	ctor := ast.NewFunction("POINT", nil)
	ctor.Parameters = []*ast.Parameter{ast.NewParameter("p_x", ast.NewNativeType("NUMBER"))}
	ctor.Body = []ast.Statement{
		ast.NewAssignment(ast.NewIdent("x"), ast.NewIdent("p_x")),
		ast.NewAssignment(ast.NewIdent("y"), ast.NewNumber("0")),
		ast.NewReturn(nil),
	}
	norm := ast.NewFunction("norm", ast.NewNativeType("NUMBER"))
	norm.Body = []ast.Statement{ast.NewReturn(ast.NewBinary(ast.OpAdd, ast.NewIdent("x"), ast.NewIdent("y")))}
	obj.Constructors = []*ast.Function{ctor}
	obj.Functions = []*ast.Function{norm}

	symbols := symtab.New(nil, "HR")
	symbols.RegisterObjectType(obj)

	got, err := postgres.New(symbols).Render(obj)
	c.Assert(err, qt.IsNil)
	want := `CREATE TYPE HR.POINT AS (
  x numeric,
  y numeric
);

CREATE OR REPLACE FUNCTION HR.POINT_point(p_x numeric)
RETURNS HR.POINT
LANGUAGE plpgsql
AS $$
DECLARE
  self HR.POINT;
BEGIN
  self.x := p_x;
  self.y := 0;
  RETURN self;
END;
$$;

CREATE OR REPLACE FUNCTION HR.POINT_norm(self HR.POINT)
RETURNS numeric
LANGUAGE plpgsql
AS $$
BEGIN
  RETURN self.x + self.y;
END;
$$;
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("object type mismatch (-want +got):\n%s", diff)
	}

	call, err := postgres.New(symbols).RenderNode(ast.NewCall("point", ast.NewNumber("1")))
	c.Assert(err, qt.IsNil)
	c.Assert(call, qt.Equals, "HR.POINT_point(1)")
}

func TestRenderer_View(t *testing.T) {
	c := qt.New(t)
	symbols, _ := fixture()

	recent := ast.NewSelect(ast.NewQueryBlock(ast.NewStarItem("")).
		AddFrom(ast.NewTableRef("", "employees", "")).
		SetWhere(ast.NewBinary(ast.OpGt, ast.NewIdent("employee_id"), ast.NewNumber("100"))))
	q := ast.NewSelect(ast.NewQueryBlock(
		ast.NewSelectItem(ast.NewIdent("r", "employee_id"), "id"),
		ast.NewSelectItem(ast.NewCall("NVL", ast.NewIdent("r", "department_id"), ast.NewNumber("0")), "dept"),
	).AddFrom(ast.NewTableRef("", "recent", "r"))).
		AddCTE(ast.NewCTE("recent", recent))
	view := ast.NewView("HR", "EMP_V", q)
	view.Columns = []string{"id", "dept"}

	got, err := postgres.New(symbols).Render(view)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "CREATE OR REPLACE VIEW HR.EMP_V (id, dept) AS "+
		"WITH RECENT AS (SELECT * FROM HR.EMPLOYEES WHERE employee_id > 100) "+
		"SELECT r.employee_id AS id, COALESCE(r.department_id, 0) AS dept FROM RECENT r;\n")
}

func TestRenderer_SetOperationAndDual(t *testing.T) {
	c := qt.New(t)

	left := ast.NewQueryBlock(ast.NewSelectItem(ast.NewNumber("1"), "")).AddFrom(ast.NewTableRef("", "DUAL", ""))
	right := ast.NewQueryBlock(ast.NewSelectItem(ast.NewNumber("2"), "")).AddFrom(ast.NewTableRef("SYS", "dual", ""))
	q := &ast.SelectStatement{Body: &ast.SetOperation{Op: ast.SetMinus, Left: left, Right: right}}

	got, err := postgres.New(nil).RenderNode(q)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "SELECT 1 EXCEPT SELECT 2")
}
