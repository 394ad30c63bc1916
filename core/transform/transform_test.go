package transform_test

import (
	"errors"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ora2pg/config"
	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/renderer/types"
	"github.com/stokaro/ora2pg/core/symtab"
	"github.com/stokaro/ora2pg/core/transform"
	dbtypes "github.com/stokaro/ora2pg/dbschema/types"
	"github.com/stokaro/ora2pg/internal/verify"
)

func testUnits() *transform.Units {
	pkg := ast.NewPackage("HR", "CFG_PKG").
		AddVariable(ast.NewVariable("g_rate", ast.NewNativeType("NUMBER")).SetDefault(ast.NewNumber("1.5")))
	pkg.SubTypes = []*ast.SubType{{Name: "money_t", Base: ast.NewNativeType("NUMBER")}}
	rate := ast.NewFunction("rate", ast.NewNativeType("NUMBER"))
	rate.Body = []ast.Statement{ast.NewReturn(ast.NewIdent("g_rate"))}
	pkg.AddFunction(rate)

	bonus := ast.NewFunction("bonus", ast.NewNativeType("NUMBER"))
	bonus.Schema = "HR"
	bonus.Body = []ast.Statement{ast.NewReturn(ast.NewBinary(ast.OpMul, ast.NewIdent("cfg_pkg", "g_rate"), ast.NewNumber("2")))}

	view := ast.NewView("HR", "EMP_V", ast.NewSelect(ast.NewQueryBlock(ast.NewStarItem("")).
		AddFrom(ast.NewTableRef("", "employees", ""))))

	trg := ast.NewTrigger("HR", "EMP_BI", "before", []string{"insert"}, "HR", "EMPLOYEES")
	trg.Body = []ast.Statement{&ast.NullStatement{}}

	return &transform.Units{
		Packages:  []*ast.Package{pkg},
		Functions: []*ast.Function{bonus},
		Views:     []*ast.View{view},
		Triggers:  []*ast.Trigger{trg},
	}
}

func newTransformer(opts *config.TranspileOptions, units *transform.Units) *transform.Transformer {
	catalog := &dbtypes.Catalog{Tables: []dbtypes.TableMetadata{{Schema: "HR", Name: "EMPLOYEES"}}}
	tr := transform.New(symtab.New(catalog, opts.UserSchemas...), opts)
	tr.Register(units)
	return tr
}

type planEntry struct {
	Phase transform.Phase
	Kind  string
	Name  string
}

func entries(outputs []transform.Output) []planEntry {
	out := make([]planEntry, 0, len(outputs))
	for _, o := range outputs {
		out = append(out, planEntry{o.Phase, o.Kind, o.Name})
	}
	return out
}

func TestPlan_Order(t *testing.T) {
	c := qt.New(t)
	units := testUnits()
	opts := config.WithUserSchemas("HR")
	opts.TwoPass = true

	outputs, err := newTransformer(opts, units).Plan(units)
	c.Assert(err, qt.IsNil)
	c.Assert(entries(outputs), qt.DeepEquals, []planEntry{
		{transform.PhaseTypes, transform.KindPackageType, "HR.CFG_PKG"},
		{transform.PhaseSpecs, transform.KindPackage, "HR.CFG_PKG"},
		{transform.PhaseSpecs, transform.KindFunction, "HR.bonus"},
		{transform.PhaseBodies, transform.KindPackage, "HR.CFG_PKG"},
		{transform.PhaseBodies, transform.KindFunction, "HR.bonus"},
		{transform.PhaseViews, transform.KindView, "HR.EMP_V"},
		{transform.PhaseTriggers, transform.KindTrigger, "HR.EMP_BI"},
	})

	c.Assert(outputs[0].SQL, qt.Equals, "CREATE DOMAIN hr_cfg_pkg_money_t AS numeric;")

	spec := outputs[1].SQL
	c.Assert(spec, qt.Contains, "RETURN NULL;")
	c.Assert(spec, qt.Not(qt.Contains), "init_variables")
	c.Assert(outputs[1].Drops, qt.HasLen, 0)

	body := outputs[3].SQL
	c.Assert(body, qt.Contains, "CREATE OR REPLACE FUNCTION HR.CFG_PKG_init_variables()")
	c.Assert(body, qt.Contains, "RETURN sys.get_package_var_numeric('hr', 'cfg_pkg', 'g_rate');")

	c.Assert(outputs[4].SQL, qt.Contains, "RETURN sys.get_package_var_numeric('hr', 'cfg_pkg', 'g_rate') * 2;")
	c.Assert(outputs[5].SQL, qt.Equals, "CREATE OR REPLACE VIEW HR.EMP_V AS SELECT * FROM HR.EMPLOYEES;")
	c.Assert(outputs[6].SQL, qt.Contains, "EXECUTE FUNCTION HR.emp_bi_func();")
}

func TestPlan_SinglePass(t *testing.T) {
	c := qt.New(t)
	units := testUnits()

	outputs, err := newTransformer(config.WithUserSchemas("HR"), units).Plan(units)
	c.Assert(err, qt.IsNil)
	for _, o := range outputs {
		c.Assert(o.Phase, qt.Not(qt.Equals), transform.PhaseSpecs)
	}
	c.Assert(outputs, qt.HasLen, 5)
}

func TestPlan_SpecOnly(t *testing.T) {
	c := qt.New(t)
	units := testUnits()
	opts := config.WithUserSchemas("HR")
	opts.SpecOnly = true

	outputs, err := newTransformer(opts, units).Plan(units)
	c.Assert(err, qt.IsNil)
	c.Assert(outputs[1].Phase, qt.Equals, transform.PhaseBodies)
	c.Assert(outputs[1].SQL, qt.Contains, "RETURN NULL;")
	c.Assert(outputs[1].SQL, qt.Not(qt.Contains), "init_variables")
	c.Assert(outputs[1].Drops, qt.DeepEquals, []string{"DROP FUNCTION IF EXISTS HR.CFG_PKG_rate;"})
}

func TestPlan_Runtime(t *testing.T) {
	c := qt.New(t)
	units := testUnits()
	opts := config.WithUserSchemas("HR")
	opts.EmitRuntime = true
	opts.RuntimeSchema = "rt"

	outputs, err := newTransformer(opts, units).Plan(units)
	c.Assert(err, qt.IsNil)
	c.Assert(outputs[0].Kind, qt.Equals, transform.KindRuntime)
	c.Assert(outputs[0].SQL, qt.Contains, "CREATE OR REPLACE FUNCTION rt.get_package_var_numeric(")
	c.Assert(outputs[3].SQL, qt.Contains, "rt.get_package_var_numeric('hr', 'cfg_pkg', 'g_rate')")
}

func TestRuntimeDDL(t *testing.T) {
	c := qt.New(t)

	ddl := transform.RuntimeDDL("rt")
	for _, want := range []string{
		"CREATE OR REPLACE FUNCTION rt.extend_package_collection(schema_name text, package_name text, variable_name text, n numeric)",
		"FROM generate_series(1, $4::int)",
		"CREATE UNLOGGED TABLE IF NOT EXISTS rt.htp_buffer (",
		"CREATE OR REPLACE PROCEDURE rt.htp_p(content text)",
		"CREATE OR REPLACE PROCEDURE rt.htp_prn(content text)",
		"CREATE OR REPLACE PROCEDURE rt.htp_init()",
		"CREATE OR REPLACE FUNCTION rt.htp_page()\nRETURNS text",
		"CREATE OR REPLACE FUNCTION rt.htp_buffer_size()\nRETURNS integer",
	} {
		c.Assert(ddl, qt.Contains, want)
	}
	c.Assert(ddl, qt.Not(qt.Contains), "jsonb_build_array($4)")

	n, err := verify.SQL(ddl)
	c.Assert(err, qt.IsNil)
	c.Assert(n > 0, qt.IsTrue)

	drops := transform.RuntimeDrops("rt")
	c.Assert(drops, qt.Contains, "DROP PROCEDURE IF EXISTS rt.htp_p(text);")
	c.Assert(drops, qt.Contains, "DROP FUNCTION IF EXISTS rt.htp_page();")
	c.Assert(drops, qt.Contains, "DROP FUNCTION IF EXISTS rt.extend_package_collection(text, text, text, numeric);")
	c.Assert(drops[len(drops)-1], qt.Equals, "DROP TABLE IF EXISTS rt.package_variables;")
	_, err = verify.SQL(strings.Join(drops, "\n"))
	c.Assert(err, qt.IsNil)
}

func TestPlan_MalformedUnit(t *testing.T) {
	c := qt.New(t)
	units := testUnits()
	units.Triggers[0].Events = nil

	_, err := newTransformer(config.WithUserSchemas("HR"), units).Plan(units)
	c.Assert(err, qt.ErrorIs, types.ErrMissingChild)
	c.Assert(err, qt.ErrorMatches, "trigger HR.EMP_BI: .*")
}

func TestScripts(t *testing.T) {
	c := qt.New(t)
	units := testUnits()

	outputs, err := newTransformer(config.WithUserSchemas("HR"), units).Plan(units)
	c.Assert(err, qt.IsNil)

	up := transform.Script(outputs)
	c.Assert(strings.Index(up, "CREATE DOMAIN"), qt.Equals, 0)
	c.Assert(strings.HasSuffix(up, "EXECUTE FUNCTION HR.emp_bi_func();\n"), qt.IsTrue)

	c.Assert(transform.DropScript(outputs), qt.Equals, `DROP TRIGGER IF EXISTS emp_bi ON HR.EMPLOYEES;
DROP FUNCTION IF EXISTS HR.emp_bi_func();
DROP VIEW IF EXISTS HR.EMP_V;
DROP FUNCTION IF EXISTS HR.bonus;
DROP FUNCTION IF EXISTS HR.CFG_PKG_rate;
DROP FUNCTION IF EXISTS HR.CFG_PKG_init_variables;
DROP DOMAIN IF EXISTS hr_cfg_pkg_money_t;
`)

	c.Assert(transform.Summarize(outputs), qt.DeepEquals, []transform.Summary{
		{Phase: transform.PhaseTypes, Kind: transform.KindPackageType, Count: 1},
		{Phase: transform.PhaseBodies, Kind: transform.KindPackage, Count: 1},
		{Phase: transform.PhaseBodies, Kind: transform.KindFunction, Count: 1},
		{Phase: transform.PhaseViews, Kind: transform.KindView, Count: 1},
		{Phase: transform.PhaseTriggers, Kind: transform.KindTrigger, Count: 1},
	})
}

type auditViews struct{}

func (auditViews) Name() string  { return "audit views" }
func (auditViews) Priority() int { return 10 }
func (auditViews) Supports(v *ast.View) bool {
	return strings.HasPrefix(strings.ToUpper(v.Name), "AUDIT_")
}
func (auditViews) Transform(_ *transform.Context, v *ast.View) (string, error) {
	return "-- view " + v.Name + " skipped", nil
}

type failing struct{}

func (failing) Name() string                 { return "failing" }
func (failing) Priority() int                { return -1 }
func (failing) Supports(*ast.View) bool      { return true }
func (failing) Transform(*transform.Context, *ast.View) (string, error) {
	return "", errors.New("unreachable")
}

func TestManager_Priority(t *testing.T) {
	c := qt.New(t)
	units := testUnits()
	units.Views = append(units.Views, ast.NewView("HR", "AUDIT_LOG_V", units.Views[0].Query))

	tr := newTransformer(config.WithUserSchemas("HR"), units)
	tr.Views.Register(failing{})
	tr.Views.Register(auditViews{})

	names := []string{}
	for _, s := range tr.Views.Strategies() {
		names = append(names, s.Name())
	}
	c.Assert(names, qt.DeepEquals, []string{"audit views", "standard", "failing"})

	outputs, err := tr.Plan(units)
	c.Assert(err, qt.IsNil)
	var views []string
	for _, o := range outputs {
		if o.Kind == transform.KindView {
			views = append(views, o.SQL)
		}
	}
	c.Assert(views, qt.DeepEquals, []string{
		"CREATE OR REPLACE VIEW HR.EMP_V AS SELECT * FROM HR.EMPLOYEES;",
		"-- view AUDIT_LOG_V skipped",
	})
}

func TestManager_NoStrategy(t *testing.T) {
	c := qt.New(t)

	m := transform.NewManager[*ast.View](transform.KindView)
	_, err := m.Transform(&transform.Context{}, ast.NewView("HR", "V", nil))
	c.Assert(err, qt.ErrorIs, transform.ErrNoStrategy)
	c.Assert(m.Kind(), qt.Equals, transform.KindView)
}

func TestPhase_String(t *testing.T) {
	c := qt.New(t)
	c.Assert(transform.PhaseSpecs.String(), qt.Equals, "specs")
	c.Assert(transform.Phase(42).String(), qt.Equals, "phase(42)")
}
