// Package transform assembles the PostgreSQL output of whole translation
// units: packages, standalone functions and procedures, object types, views
// and triggers.
//
// Each unit kind has a Manager holding strategies sorted by priority. The
// first strategy whose Supports returns true transforms the unit. Every
// manager starts with a standard strategy that supports everything, so
// custom strategies only need to handle the units they care about.
package transform

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/renderer/dialects/postgres"
)

// Phase orders the output of a plan.
type Phase int

const (
	// PhaseTypes holds domains and composite types.
	PhaseTypes Phase = iota
	// PhaseSpecs holds routine stubs of the two-pass mode.
	PhaseSpecs
	// PhaseBodies holds full routine bodies.
	PhaseBodies
	// PhaseViews holds views.
	PhaseViews
	// PhaseTriggers holds trigger functions and triggers.
	PhaseTriggers
)

func (p Phase) String() string {
	switch p {
	case PhaseTypes:
		return "types"
	case PhaseSpecs:
		return "specs"
	case PhaseBodies:
		return "bodies"
	case PhaseViews:
		return "views"
	case PhaseTriggers:
		return "triggers"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Kind names the unit kinds.
const (
	KindPackage     = "package"
	KindFunction    = "function"
	KindProcedure   = "procedure"
	KindObjectType  = "object type"
	KindView        = "view"
	KindTrigger     = "trigger"
	KindRuntime     = "runtime"
	KindPackageType = "package types"
)

// Output is one block of generated SQL.
type Output struct {
	Phase Phase
	Kind  string
	// Name is the qualified name of the unit the block belongs to.
	Name string
	SQL  string
	// Drops undo the block, in the order they must run.
	Drops []string
}

// Context is handed to strategies. Renderer is already configured for the
// current pass: in the spec pass it renders stub bodies.
type Context struct {
	Renderer *postgres.Renderer
	// SpecOnly is true while stubs are rendered.
	SpecOnly bool
	// EmitPackageInit enables the package variable initialiser.
	EmitPackageInit bool
	Logger          *slog.Logger
}

// Strategy transforms units of type T.
type Strategy[T ast.Node] interface {
	// Name identifies the strategy in logs.
	Name() string
	// Priority orders strategies; higher runs first.
	Priority() int
	Supports(unit T) bool
	Transform(ctx *Context, unit T) (string, error)
}

// Manager dispatches units of one kind to the first supporting strategy.
type Manager[T ast.Node] struct {
	kind       string
	strategies []Strategy[T]
}

// NewManager creates a manager for kind with the given strategies.
func NewManager[T ast.Node](kind string, strategies ...Strategy[T]) *Manager[T] {
	m := &Manager[T]{kind: kind}
	for _, s := range strategies {
		m.Register(s)
	}
	return m
}

// Register adds a strategy. Strategies of equal priority keep registration
// order.
func (m *Manager[T]) Register(s Strategy[T]) {
	m.strategies = append(m.strategies, s)
	slices.SortStableFunc(m.strategies, func(a, b Strategy[T]) int {
		return cmp.Compare(b.Priority(), a.Priority())
	})
}

// Strategies returns the strategies in dispatch order.
func (m *Manager[T]) Strategies() []Strategy[T] {
	return slices.Clone(m.strategies)
}

// Kind returns the unit kind the manager handles.
func (m *Manager[T]) Kind() string {
	return m.kind
}

// Transform renders unit with the first strategy supporting it.
func (m *Manager[T]) Transform(ctx *Context, unit T) (string, error) {
	for _, s := range m.strategies {
		if !s.Supports(unit) {
			continue
		}
		if ctx.Logger != nil {
			ctx.Logger.Debug("transforming unit", "kind", m.kind, "strategy", s.Name())
		}
		return s.Transform(ctx, unit)
	}
	return "", fmt.Errorf("%s: %w", m.kind, ErrNoStrategy)
}

// Script joins the SQL of outputs, one blank line between blocks.
func Script(outputs []Output) string {
	blocks := make([]string, 0, len(outputs))
	for _, o := range outputs {
		if o.SQL != "" {
			blocks = append(blocks, o.SQL)
		}
	}
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// DropScript undoes outputs: the drops of the last block come first.
func DropScript(outputs []Output) string {
	var lines []string
	for _, o := range slices.Backward(outputs) {
		lines = append(lines, o.Drops...)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Summary counts outputs per phase and kind, in plan order.
type Summary struct {
	Phase Phase
	Kind  string
	Count int
}

// Summarize groups outputs into per phase and kind counts.
func Summarize(outputs []Output) []Summary {
	var out []Summary
	for _, o := range outputs {
		if n := len(out); n > 0 && out[n-1].Phase == o.Phase && out[n-1].Kind == o.Kind {
			out[n-1].Count++
			continue
		}
		out = append(out, Summary{Phase: o.Phase, Kind: o.Kind, Count: 1})
	}
	return out
}
