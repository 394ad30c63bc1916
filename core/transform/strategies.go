package transform

import (
	"errors"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
)

// ErrNoStrategy is returned when no registered strategy supports a unit.
var ErrNoStrategy = errors.New("no strategy supports the unit")

// StandardPriority is the priority of the built-in strategies. Custom
// strategies meant to take over should use a higher value.
const StandardPriority = 0

type standard struct{}

func (standard) Name() string  { return "standard" }
func (standard) Priority() int { return StandardPriority }

// StandardPackage renders the variable initialiser and the routines of a
// package. Package types are emitted by the plan in the types phase.
type StandardPackage struct{ standard }

// Supports implements Strategy.
func (StandardPackage) Supports(*ast.Package) bool { return true }

// Transform implements Strategy.
func (StandardPackage) Transform(ctx *Context, pkg *ast.Package) (string, error) {
	var parts []string
	if ctx.EmitPackageInit && !ctx.SpecOnly {
		init, err := ctx.Renderer.PackageInit(pkg)
		if err != nil {
			return "", err
		}
		if init != "" {
			parts = append(parts, init)
		}
	}
	routines, err := ctx.Renderer.PackageRoutines(pkg)
	if err != nil {
		return "", err
	}
	if routines != "" {
		parts = append(parts, routines)
	}
	return strings.Join(parts, "\n\n"), nil
}

// StandardFunction renders a standalone function.
type StandardFunction struct{ standard }

// Supports implements Strategy.
func (StandardFunction) Supports(*ast.Function) bool { return true }

// Transform implements Strategy.
func (StandardFunction) Transform(ctx *Context, fn *ast.Function) (string, error) {
	return ctx.Renderer.Function(fn)
}

// StandardProcedure renders a standalone procedure.
type StandardProcedure struct{ standard }

// Supports implements Strategy.
func (StandardProcedure) Supports(*ast.Procedure) bool { return true }

// Transform implements Strategy.
func (StandardProcedure) Transform(ctx *Context, proc *ast.Procedure) (string, error) {
	return ctx.Renderer.Procedure(proc)
}

// StandardObjectType renders an object type with its members.
type StandardObjectType struct{ standard }

// Supports implements Strategy.
func (StandardObjectType) Supports(*ast.ObjectType) bool { return true }

// Transform implements Strategy.
func (StandardObjectType) Transform(ctx *Context, obj *ast.ObjectType) (string, error) {
	return ctx.Renderer.ObjectType(obj)
}

// StandardView renders a view.
type StandardView struct{ standard }

// Supports implements Strategy.
func (StandardView) Supports(*ast.View) bool { return true }

// Transform implements Strategy.
func (StandardView) Transform(ctx *Context, v *ast.View) (string, error) {
	return ctx.Renderer.View(v)
}

// StandardTrigger renders a trigger function and its trigger.
type StandardTrigger struct{ standard }

// Supports implements Strategy.
func (StandardTrigger) Supports(*ast.Trigger) bool { return true }

// Transform implements Strategy.
func (StandardTrigger) Transform(ctx *Context, t *ast.Trigger) (string, error) {
	return ctx.Renderer.Trigger(t)
}
