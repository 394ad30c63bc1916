package transform

import (
	"fmt"
	"log/slog"

	"github.com/stokaro/ora2pg/config"
	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/mapping"
	"github.com/stokaro/ora2pg/core/renderer/dialects/postgres"
	"github.com/stokaro/ora2pg/core/symtab"
)

// Units is the set of translation units of one run.
type Units struct {
	Packages    []*ast.Package
	ObjectTypes []*ast.ObjectType
	Functions   []*ast.Function
	Procedures  []*ast.Procedure
	Views       []*ast.View
	Triggers    []*ast.Trigger
}

// Count returns the number of units.
func (u *Units) Count() int {
	return len(u.Packages) + len(u.ObjectTypes) + len(u.Functions) + len(u.Procedures) + len(u.Views) + len(u.Triggers)
}

// Transformer turns translation units into ordered PostgreSQL output.
//
// # Usage Example
//
//	symbols := symtab.New(catalog, "HR")
//	t := transform.New(symbols, config.WithUserSchemas("HR"))
//	t.Register(units)
//	outputs, err := t.Plan(units)
//
// A Transformer is not safe for concurrent use.
type Transformer struct {
	Packages    *Manager[*ast.Package]
	Functions   *Manager[*ast.Function]
	Procedures  *Manager[*ast.Procedure]
	ObjectTypes *Manager[*ast.ObjectType]
	Views       *Manager[*ast.View]
	Triggers    *Manager[*ast.Trigger]

	symbols *symtab.SymbolTable
	opts    *config.TranspileOptions
	logger  *slog.Logger
}

// New creates a transformer with the standard strategies. A nil opts means
// config.DefaultTranspileOptions.
func New(symbols *symtab.SymbolTable, opts *config.TranspileOptions) *Transformer {
	if opts == nil {
		opts = config.DefaultTranspileOptions()
	}
	if symbols == nil {
		symbols = symtab.New(nil, opts.UserSchemas...)
	}
	return &Transformer{
		Packages:    NewManager[*ast.Package](KindPackage, StandardPackage{}),
		Functions:   NewManager[*ast.Function](KindFunction, StandardFunction{}),
		Procedures:  NewManager[*ast.Procedure](KindProcedure, StandardProcedure{}),
		ObjectTypes: NewManager[*ast.ObjectType](KindObjectType, StandardObjectType{}),
		Views:       NewManager[*ast.View](KindView, StandardView{}),
		Triggers:    NewManager[*ast.Trigger](KindTrigger, StandardTrigger{}),
		symbols:     symbols,
		opts:        opts,
		logger:      slog.Default(),
	}
}

// WithLogger returns a copy of the transformer that logs to logger.
func (t *Transformer) WithLogger(logger *slog.Logger) *Transformer {
	c := *t
	c.logger = logger
	return &c
}

// Register makes every package, object type and standalone routine of units
// known to the symbol table, linking routines to their owners. Units
// referencing each other must all be registered before Plan.
func (t *Transformer) Register(units *Units) {
	for _, p := range units.Packages {
		t.symbols.RegisterPackage(p)
	}
	for _, o := range units.ObjectTypes {
		t.symbols.RegisterObjectType(o)
	}
	for _, f := range units.Functions {
		t.symbols.RegisterFunction(f)
	}
	for _, p := range units.Procedures {
		t.symbols.RegisterProcedure(p)
	}
}

func (t *Transformer) renderer(specOnly bool) *postgres.Renderer {
	r := postgres.New(t.symbols).
		WithLogger(t.logger).
		WithRuntimeSchema(t.opts.RuntimeSchema).
		WithSpecOnly(specOnly)
	if t.opts.Indent != "" {
		r = r.WithIndent(t.opts.Indent)
	}
	return r
}

func (t *Transformer) context(specOnly bool) *Context {
	return &Context{
		Renderer:        t.renderer(specOnly),
		SpecOnly:        specOnly,
		EmitPackageInit: t.opts.EmitPackageInit,
		Logger:          t.logger,
	}
}

// Plan renders units in dependency order: the runtime (when enabled), types
// and domains, routine stubs (two-pass mode), routine bodies, views and
// finally triggers. The first unit that fails to render aborts the plan.
func (t *Transformer) Plan(units *Units) ([]Output, error) {
	var result []Output

	steps := []func([]Output, *Units) ([]Output, error){
		// 1. Runtime functions the package variable accessors call
		t.addRuntime,
		// 2. Domains and composite types used by routine signatures
		t.addTypes,
		// 3. Stubs so that bodies can reference routines declared later
		t.addSpecs,
		// 4. Routine bodies
		t.addBodies,
		// 5. Views, which may call routines
		t.addViews,
		// 6. Triggers last: their functions may use everything above
		t.addTriggers,
	}
	for _, step := range steps {
		var err error
		if result, err = step(result, units); err != nil {
			return nil, err
		}
	}
	t.logger.Info("transpilation planned", "units", units.Count(), "blocks", len(result))
	return result, nil
}

func (t *Transformer) addRuntime(result []Output, _ *Units) ([]Output, error) {
	if !t.opts.EmitRuntime {
		return result, nil
	}
	return append(result, Output{
		Phase: PhaseTypes,
		Kind:  KindRuntime,
		Name:  t.opts.RuntimeSchema,
		SQL:   RuntimeDDL(t.opts.RuntimeSchema),
		Drops: RuntimeDrops(t.opts.RuntimeSchema),
	}), nil
}

func (t *Transformer) addTypes(result []Output, units *Units) ([]Output, error) {
	r := t.renderer(false)
	for _, p := range units.Packages {
		p.Link()
		sql, err := r.PackageTypes(p)
		if err != nil {
			return nil, fmt.Errorf("package %s types: %w", packageName(p), err)
		}
		if sql != "" {
			result = append(result, Output{Phase: PhaseTypes, Kind: KindPackageType, Name: packageName(p), SQL: sql, Drops: packageTypeDrops(p)})
		}
	}
	ctx := t.context(false)
	for _, o := range units.ObjectTypes {
		sql, err := t.ObjectTypes.Transform(ctx, o)
		if err != nil {
			return nil, fmt.Errorf("object type %s: %w", mapping.ObjectName(o.Schema, o.Name), err)
		}
		result = append(result, Output{Phase: PhaseTypes, Kind: KindObjectType, Name: mapping.ObjectName(o.Schema, o.Name), SQL: sql, Drops: objectTypeDrops(o)})
	}
	for _, routine := range standaloneRoutines(units) {
		sql, err := r.RoutineTypes(routine)
		if err != nil {
			return nil, fmt.Errorf("routine %s types: %w", routineName(routine), err)
		}
		if sql != "" {
			result = append(result, Output{Phase: PhaseTypes, Kind: KindPackageType, Name: routineName(routine), SQL: sql, Drops: routineTypeDrops(routine)})
		}
	}
	return result, nil
}

func (t *Transformer) addSpecs(result []Output, units *Units) ([]Output, error) {
	if !t.opts.TwoPass {
		return result, nil
	}
	return t.addRoutines(result, units, PhaseSpecs, t.context(true))
}

func (t *Transformer) addBodies(result []Output, units *Units) ([]Output, error) {
	return t.addRoutines(result, units, PhaseBodies, t.context(t.opts.SpecOnly))
}

// addRoutines renders packages, then standalone functions, then standalone
// procedures. Drops are attached to the body phase only.
func (t *Transformer) addRoutines(result []Output, units *Units, phase Phase, ctx *Context) ([]Output, error) {
	withDrops := phase == PhaseBodies
	for _, p := range units.Packages {
		sql, err := t.Packages.Transform(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", packageName(p), err)
		}
		if sql == "" {
			continue
		}
		out := Output{Phase: phase, Kind: KindPackage, Name: packageName(p), SQL: sql}
		if withDrops {
			out.Drops = packageDrops(p, t.opts.EmitPackageInit && !ctx.SpecOnly)
		}
		result = append(result, out)
	}
	for _, f := range units.Functions {
		sql, err := t.Functions.Transform(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", routineName(&f.Routine), err)
		}
		out := Output{Phase: phase, Kind: KindFunction, Name: routineName(&f.Routine), SQL: sql}
		if withDrops {
			out.Drops = []string{dropFunction(&f.Routine)}
		}
		result = append(result, out)
	}
	for _, p := range units.Procedures {
		sql, err := t.Procedures.Transform(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("procedure %s: %w", routineName(&p.Routine), err)
		}
		out := Output{Phase: phase, Kind: KindProcedure, Name: routineName(&p.Routine), SQL: sql}
		if withDrops {
			out.Drops = []string{dropProcedure(&p.Routine)}
		}
		result = append(result, out)
	}
	return result, nil
}

func (t *Transformer) addViews(result []Output, units *Units) ([]Output, error) {
	ctx := t.context(false)
	for _, v := range units.Views {
		name := mapping.ObjectName(v.Schema, v.Name)
		sql, err := t.Views.Transform(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("view %s: %w", name, err)
		}
		result = append(result, Output{Phase: PhaseViews, Kind: KindView, Name: name, SQL: sql, Drops: []string{"DROP VIEW IF EXISTS " + name + ";"}})
	}
	return result, nil
}

func (t *Transformer) addTriggers(result []Output, units *Units) ([]Output, error) {
	ctx := t.context(false)
	for _, tr := range units.Triggers {
		name := mapping.ObjectName(tr.Schema, tr.Name)
		sql, err := t.Triggers.Transform(ctx, tr)
		if err != nil {
			return nil, fmt.Errorf("trigger %s: %w", name, err)
		}
		result = append(result, Output{Phase: PhaseTriggers, Kind: KindTrigger, Name: name, SQL: sql, Drops: triggerDrops(ctx.Renderer, tr)})
	}
	return result, nil
}

func standaloneRoutines(units *Units) []*ast.Routine {
	var out []*ast.Routine
	for _, f := range units.Functions {
		out = append(out, &f.Routine)
	}
	for _, p := range units.Procedures {
		out = append(out, &p.Routine)
	}
	return out
}
