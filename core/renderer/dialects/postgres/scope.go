package postgres

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/stokaro/ora2pg/core/ast"
)

// scope is the immutable render context handed down the tree. Nested
// constructs derive a child scope instead of mutating shared state, so
// indentation and CTE visibility unwind on every return path.
type scope struct {
	depth   int
	unit    string
	ctes    map[string]struct{}
	routine *ast.Routine
	pkg     *ast.Package
	trigger *ast.Trigger
	// self is the object type whose constructor is being rendered.
	self *ast.ObjectType
}

func (s scope) indent() string {
	return strings.Repeat(s.unit, s.depth)
}

func (s scope) nested() scope {
	s.depth++
	return s
}

func (s scope) withCTEs(names []string) scope {
	if len(names) == 0 {
		return s
	}
	ctes := make(map[string]struct{}, len(s.ctes)+len(names))
	for name := range s.ctes {
		ctes[name] = struct{}{}
	}
	for _, name := range names {
		ctes[fold(name)] = struct{}{}
	}
	s.ctes = ctes
	return s
}

func (s scope) isCTE(name string) bool {
	_, ok := s.ctes[fold(name)]
	return ok
}

func (s scope) withRoutine(r *ast.Routine) scope {
	s.routine = r
	if r != nil && r.Package != nil {
		s.pkg = r.Package
	}
	return s
}

func (s scope) withPackage(p *ast.Package) scope {
	s.pkg = p
	return s
}

func (s scope) withConstructor(obj *ast.ObjectType) scope {
	s.self = obj
	return s
}

func (s scope) withTrigger(t *ast.Trigger) scope {
	s.trigger = t
	return s
}

// schema is the owning schema of the code being rendered.
func (s scope) schema() string {
	switch {
	case s.routine != nil && s.routine.OwnerSchema() != "":
		return s.routine.OwnerSchema()
	case s.pkg != nil:
		return s.pkg.Schema
	case s.trigger != nil:
		return s.trigger.Schema
	}
	return ""
}

// isLocal reports whether name is a parameter or variable of the routine.
func (s scope) isLocal(name string) bool {
	if s.routine == nil {
		return false
	}
	_, ok := s.routine.DeclaredType(name)
	return ok
}

func (s scope) localType(name string) (ast.DataType, bool) {
	if s.routine == nil {
		return nil, false
	}
	return s.routine.DeclaredType(name)
}

func fold(s string) string {
	return cases.Fold().String(s)
}
