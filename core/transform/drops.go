package transform

import (
	"slices"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/mapping"
	"github.com/stokaro/ora2pg/core/renderer/dialects/postgres"
)

func packageName(p *ast.Package) string {
	return mapping.ObjectName(p.Schema, p.Name)
}

func routineName(r *ast.Routine) string {
	return mapping.RoutineName(r.OwnerSchema(), r.OwnerName(), r.Name)
}

func dropFunction(r *ast.Routine) string {
	return "DROP FUNCTION IF EXISTS " + routineName(r) + ";"
}

func dropProcedure(r *ast.Routine) string {
	return "DROP PROCEDURE IF EXISTS " + routineName(r) + ";"
}

// packageDrops drops the routines of a package, procedures before functions
// since they were created after them.
func packageDrops(p *ast.Package, withInit bool) []string {
	var out []string
	for _, proc := range slices.Backward(p.Procedures) {
		out = append(out, dropProcedure(&proc.Routine))
	}
	for _, fn := range slices.Backward(p.Functions) {
		out = append(out, dropFunction(&fn.Routine))
	}
	if withInit {
		out = append(out, "DROP FUNCTION IF EXISTS "+postgres.InitFunctionName(p)+";")
	}
	return out
}

// packageTypeDrops mirrors PackageTypes in reverse.
func packageTypeDrops(p *ast.Package) []string {
	var out []string
	for _, r := range slices.Backward(packageRoutineList(p)) {
		out = append(out, routineTypeDrops(r)...)
	}
	for _, t := range slices.Backward(p.NestedTableTypes) {
		out = append(out, "DROP DOMAIN IF EXISTS "+mapping.TypeName(p.Schema, p.Name, t.Name)+";")
	}
	for _, t := range slices.Backward(p.VarrayTypes) {
		out = append(out, "DROP DOMAIN IF EXISTS "+mapping.TypeName(p.Schema, p.Name, t.Name)+";")
	}
	for _, t := range slices.Backward(p.RecordTypes) {
		out = append(out, "DROP TYPE IF EXISTS "+mapping.TypeName(p.Schema, p.Name, t.Name)+";")
	}
	for _, t := range slices.Backward(p.SubTypes) {
		out = append(out, "DROP DOMAIN IF EXISTS "+mapping.TypeName(p.Schema, p.Name, t.Name)+";")
	}
	return out
}

func routineTypeDrops(r *ast.Routine) []string {
	var out []string
	for _, t := range slices.Backward(r.RecordTypes) {
		out = append(out, "DROP TYPE IF EXISTS "+mapping.TypeName(r.OwnerSchema(), r.OwnerName(), r.Name, t.Name)+";")
	}
	return out
}

func packageRoutineList(p *ast.Package) []*ast.Routine {
	var out []*ast.Routine
	for _, f := range p.Functions {
		out = append(out, &f.Routine)
	}
	for _, proc := range p.Procedures {
		out = append(out, &proc.Routine)
	}
	return out
}

func objectTypeDrops(o *ast.ObjectType) []string {
	name := mapping.ObjectName(o.Schema, o.Name)
	if o.Varray != nil || o.NestedTable != nil {
		return []string{"DROP DOMAIN IF EXISTS " + name + ";"}
	}
	var out []string
	for _, p := range slices.Backward(o.Procedures) {
		out = append(out, dropProcedure(&p.Routine))
	}
	for _, f := range slices.Backward(o.Functions) {
		out = append(out, dropFunction(&f.Routine))
	}
	for _, f := range slices.Backward(o.Constructors) {
		out = append(out, dropFunction(&f.Routine))
	}
	return append(out, "DROP TYPE IF EXISTS "+name+" CASCADE;")
}

func triggerDrops(r *postgres.Renderer, t *ast.Trigger) []string {
	schema := t.TableSchema
	if schema == "" {
		schema = t.Schema
	}
	return []string{
		"DROP TRIGGER IF EXISTS " + strings.ToLower(t.Name) + " ON " + r.TableName(schema, t.Table) + ";",
		"DROP FUNCTION IF EXISTS " + postgres.TriggerFunctionName(t) + "();",
	}
}
