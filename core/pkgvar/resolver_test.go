package pkgvar_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/pkgvar"
	"github.com/stokaro/ora2pg/core/symtab"
)

func setup() (*pkgvar.Resolver, *ast.Package, *ast.Procedure) {
	st := symtab.New(nil, "HR")
	pkg := ast.NewPackage("HR", "EMP_PKG").
		AddVariable(ast.NewVariable("g_counter", ast.NewNativeType("NUMBER"))).
		AddVariable(ast.NewVariable("g_name", ast.NewNativeType("VARCHAR2").SetLength(30))).
		AddVariable(ast.NewVariable("g_ids", ast.NewCustomType("t_ids"))).
		AddVariable(ast.NewVariable("g_flag", ast.NewCustomType("t_flag")))
	pkg.VarrayTypes = append(pkg.VarrayTypes, ast.NewVarrayType("t_ids", ast.NewNumber("100"), ast.NewNativeType("NUMBER")))
	pkg.SubTypes = append(pkg.SubTypes, &ast.SubType{Name: "t_flag", Base: ast.NewNativeType("BOOLEAN")})

	proc := ast.NewProcedure("run")
	proc.Variables = append(proc.Variables, ast.NewVariable("g_name", ast.NewNativeType("VARCHAR2")))
	pkg.AddProcedure(proc)
	st.RegisterPackage(pkg)
	return pkgvar.New(st, ""), pkg, proc
}

func TestResolve(t *testing.T) {
	r, pkg, proc := setup()

	tests := []struct {
		name     string
		parts    []string
		routine  *ast.Routine
		found    bool
		accessor string
	}{
		{name: "bare name", parts: []string{"G_COUNTER"}, routine: &proc.Routine, found: true, accessor: "numeric"},
		{name: "package qualified", parts: []string{"emp_pkg", "g_counter"}, found: true, accessor: "numeric"},
		{name: "schema qualified", parts: []string{"hr", "emp_pkg", "g_counter"}, found: true, accessor: "numeric"},
		{name: "local shadows package variable", parts: []string{"g_name"}, routine: &proc.Routine, found: false},
		{name: "package variable without routine", parts: []string{"g_name"}, found: true, accessor: "text"},
		{name: "collection", parts: []string{"g_ids"}, found: true, accessor: "collection"},
		{name: "subtype resolves to base", parts: []string{"g_flag"}, found: true, accessor: "boolean"},
		{name: "unknown", parts: []string{"nothing"}, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			ref, ok := r.Resolve(tt.parts, tt.routine, pkg)
			c.Assert(ok, qt.Equals, tt.found)
			if ok {
				c.Assert(ref.Accessor, qt.Equals, tt.accessor)
				c.Assert(ref.Package, qt.Equals, pkg)
			}
		})
	}
}

func TestEmitters(t *testing.T) {
	c := qt.New(t)
	r, pkg, _ := setup()

	scalar, ok := r.Resolve([]string{"g_counter"}, nil, pkg)
	c.Assert(ok, qt.IsTrue)
	c.Assert(r.Read(scalar), qt.Equals, "sys.get_package_var_numeric('hr', 'emp_pkg', 'g_counter')")
	c.Assert(r.Write(scalar, "5"), qt.Equals, "PERFORM sys.set_package_var_numeric('hr', 'emp_pkg', 'g_counter', 5)")

	coll, ok := r.Resolve([]string{"G_IDS"}, nil, pkg)
	c.Assert(ok, qt.IsTrue)
	c.Assert(coll.IsCollection(), qt.IsTrue)
	c.Assert(coll.ElementAccessor, qt.Equals, "numeric")
	c.Assert(r.Read(coll), qt.Equals, "sys.get_package_collection('hr', 'emp_pkg', 'g_ids')")
	c.Assert(r.ElementRead(coll, "i"), qt.Equals, "sys.get_package_collection_element_numeric('hr', 'emp_pkg', 'g_ids', i)")
	c.Assert(r.ElementWrite(coll, "1", "42"), qt.Equals, "PERFORM sys.set_package_collection_element_numeric('hr', 'emp_pkg', 'g_ids', 1, 42)")
	c.Assert(r.Method(coll, "count", nil), qt.Equals, "sys.get_package_collection_count('hr', 'emp_pkg', 'g_ids')")
	c.Assert(r.Method(coll, "FIRST", nil), qt.Equals, "sys.get_package_collection_first('hr', 'emp_pkg', 'g_ids')")
	c.Assert(r.Method(coll, "LAST", nil), qt.Equals, "sys.get_package_collection_last('hr', 'emp_pkg', 'g_ids')")
	c.Assert(r.Method(coll, "EXISTS", []string{"3"}), qt.Equals, "sys.package_collection_exists('hr', 'emp_pkg', 'g_ids', 3)")
	c.Assert(r.Method(coll, "LIMIT", nil), qt.Equals, pkgvar.LimitPlaceholder)
	c.Assert(r.MethodStatement(coll, "EXTEND", nil), qt.Equals, "PERFORM sys.extend_package_collection('hr', 'emp_pkg', 'g_ids', 1)")
	c.Assert(r.MethodStatement(coll, "EXTEND", []string{"3"}), qt.Equals, "PERFORM sys.extend_package_collection('hr', 'emp_pkg', 'g_ids', 3)")
	c.Assert(r.MethodStatement(coll, "DELETE", nil), qt.Equals, "PERFORM sys.delete_package_collection_all('hr', 'emp_pkg', 'g_ids')")
	c.Assert(r.MethodStatement(coll, "DELETE", []string{"2"}), qt.Equals, "PERFORM sys.delete_package_collection_element('hr', 'emp_pkg', 'g_ids', 2)")
	c.Assert(r.MethodStatement(coll, "TRIM", nil), qt.Equals, "PERFORM sys.trim_package_collection('hr', 'emp_pkg', 'g_ids', 1)")
}

func TestRuntimeSchema(t *testing.T) {
	c := qt.New(t)
	st := symtab.New(nil, "HR")
	pkg := ast.NewPackage("HR", "P").AddVariable(ast.NewVariable("v", ast.NewNativeType("DATE")))
	st.RegisterPackage(pkg)

	r := pkgvar.New(st, "pkgrt")
	ref, ok := r.Resolve([]string{"v"}, nil, nil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(r.Read(ref), qt.Equals, "pkgrt.get_package_var_timestamp('hr', 'p', 'v')")
}
