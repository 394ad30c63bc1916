// Package symtab implements the symbol table consulted while rendering: catalog
// metadata for tables, views and synonyms, the known user schemas and the
// registered packages, object types and standalone routines.
//
// A SymbolTable is populated once per run and then only read. It is not safe
// for concurrent mutation.
package symtab

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/dbschema/types"
)

// ErrNotFound is returned by lookups that found no matching object.
var ErrNotFound = errors.New("symbol not found")

// PublicSchema is the owner of public synonyms.
const PublicSchema = "PUBLIC"

// SymbolTable is the global symbol table of a transpilation run.
type SymbolTable struct {
	userSchemas []string

	tables   map[string]*types.TableMetadata
	views    map[string]*types.TableMetadata
	synonyms map[string]types.SynonymMetadata

	packages    map[string]*ast.Package
	packageList []*ast.Package
	objectTypes map[string]*ast.ObjectType
	functions   map[string]*ast.Function
	procedures  map[string]*ast.Procedure

	logger *slog.Logger
}

// New creates a symbol table over catalog for the given user schemas. The first
// user schema is the default schema for unqualified names. catalog may be nil.
func New(catalog *types.Catalog, userSchemas ...string) *SymbolTable {
	s := &SymbolTable{
		userSchemas: append([]string(nil), userSchemas...),
		tables:      make(map[string]*types.TableMetadata),
		views:       make(map[string]*types.TableMetadata),
		synonyms:    make(map[string]types.SynonymMetadata),
		packages:    make(map[string]*ast.Package),
		objectTypes: make(map[string]*ast.ObjectType),
		functions:   make(map[string]*ast.Function),
		procedures:  make(map[string]*ast.Procedure),
		logger:      slog.Default(),
	}
	s.AddCatalog(catalog)
	return s
}

// WithLogger returns a copy of the symbol table that logs to logger.
func (s *SymbolTable) WithLogger(logger *slog.Logger) *SymbolTable {
	clone := *s
	clone.logger = logger
	return &clone
}

// key folds schema and name into a case-insensitive map key.
func key(parts ...string) string {
	return cases.Fold().String(strings.Join(parts, "."))
}

// AddCatalog merges catalog metadata into the table.
func (s *SymbolTable) AddCatalog(catalog *types.Catalog) {
	if catalog == nil {
		return
	}
	for i := range catalog.Tables {
		t := &catalog.Tables[i]
		s.tables[key(t.Schema, t.Name)] = t
	}
	for i := range catalog.Views {
		v := &catalog.Views[i]
		s.views[key(v.Schema, v.Name)] = v
	}
	for _, syn := range catalog.Synonyms {
		s.synonyms[key(syn.Schema, syn.Name)] = syn
	}
}

// UserSchemas returns the known user schemas in priority order.
func (s *SymbolTable) UserSchemas() []string {
	return append([]string(nil), s.userSchemas...)
}

// DefaultSchema returns the first user schema, or "" when none is known.
func (s *SymbolTable) DefaultSchema() string {
	if len(s.userSchemas) == 0 {
		return ""
	}
	return s.userSchemas[0]
}

// IsUserSchema reports whether name is one of the user schemas.
func (s *SymbolTable) IsUserSchema(name string) bool {
	for _, schema := range s.userSchemas {
		if strings.EqualFold(schema, name) {
			return true
		}
	}
	return false
}

// RegisterPackage makes a package known for cross-reference resolution. The
// package's routines are linked to it.
func (s *SymbolTable) RegisterPackage(pkg *ast.Package) {
	pkg.Link()
	k := key(pkg.Schema, pkg.Name)
	if _, exists := s.packages[k]; !exists {
		s.packageList = append(s.packageList, pkg)
	} else {
		for i, p := range s.packageList {
			if key(p.Schema, p.Name) == k {
				s.packageList[i] = pkg
			}
		}
	}
	s.packages[k] = pkg
}

// RegisterObjectType makes an object type known.
func (s *SymbolTable) RegisterObjectType(obj *ast.ObjectType) {
	obj.Link()
	s.objectTypes[key(obj.Schema, obj.Name)] = obj
}

// RegisterFunction makes a standalone function known.
func (s *SymbolTable) RegisterFunction(fn *ast.Function) {
	s.functions[key(fn.Schema, fn.Name)] = fn
}

// RegisterProcedure makes a standalone procedure known.
func (s *SymbolTable) RegisterProcedure(proc *ast.Procedure) {
	s.procedures[key(proc.Schema, proc.Name)] = proc
}

// Package returns the registered package schema.name.
func (s *SymbolTable) Package(schema, name string) (*ast.Package, bool) {
	p, ok := s.packages[key(schema, name)]
	return p, ok
}

// Packages returns all registered packages in registration order.
func (s *SymbolTable) Packages() []*ast.Package {
	return append([]*ast.Package(nil), s.packageList...)
}

// FindPackage looks a package up by name alone, preferring hint's schema and
// then the user schemas in order.
func (s *SymbolTable) FindPackage(name, hint string) (*ast.Package, bool) {
	for _, schema := range s.candidateSchemas(hint) {
		if p, ok := s.Package(schema, name); ok {
			return p, true
		}
	}
	return nil, false
}

// ObjectType returns the registered object type schema.name.
func (s *SymbolTable) ObjectType(schema, name string) (*ast.ObjectType, bool) {
	o, ok := s.objectTypes[key(schema, name)]
	return o, ok
}

// FindObjectType looks an object type up by name alone, preferring hint's schema.
func (s *SymbolTable) FindObjectType(name, hint string) (*ast.ObjectType, bool) {
	for _, schema := range s.candidateSchemas(hint) {
		if o, ok := s.ObjectType(schema, name); ok {
			return o, true
		}
	}
	return nil, false
}

func (s *SymbolTable) candidateSchemas(hint string) []string {
	out := make([]string, 0, len(s.userSchemas)+1)
	if hint != "" {
		out = append(out, hint)
	}
	for _, schema := range s.userSchemas {
		if !strings.EqualFold(schema, hint) {
			out = append(out, schema)
		}
	}
	return out
}

// Table returns the table metadata for schema.name.
func (s *SymbolTable) Table(schema, name string) (*types.TableMetadata, bool) {
	t, ok := s.tables[key(schema, name)]
	return t, ok
}

// View returns the view metadata for schema.name.
func (s *SymbolTable) View(schema, name string) (*types.TableMetadata, bool) {
	v, ok := s.views[key(schema, name)]
	return v, ok
}

// TableOrView returns the table or, failing that, the view schema.name.
func (s *SymbolTable) TableOrView(schema, name string) (*types.TableMetadata, bool) {
	if t, ok := s.Table(schema, name); ok {
		return t, true
	}
	return s.View(schema, name)
}

// SchemaForTable returns the schema owning the table, view or synonym target
// named name, as seen from schema hint. It checks, in order: an object of that
// name in hint, a synonym in hint, a public synonym, and a unique match among
// the user schemas. On a miss it returns hint together with ErrNotFound so
// that callers can fall back to it.
func (s *SymbolTable) SchemaForTable(name, hint string) (string, error) {
	if hint != "" {
		if t, ok := s.TableOrView(hint, name); ok {
			return t.Schema, nil
		}
		if syn, ok := s.synonyms[key(hint, name)]; ok {
			return syn.TargetSchema, nil
		}
	}
	if syn, ok := s.synonyms[key(PublicSchema, name)]; ok {
		return syn.TargetSchema, nil
	}

	var found []string
	for _, schema := range s.userSchemas {
		if t, ok := s.TableOrView(schema, name); ok {
			found = append(found, t.Schema)
		}
	}
	if len(found) == 1 {
		return found[0], nil
	}

	s.logger.Warn("table schema not resolved, using hint", "table", name, "hint", hint, "candidates", len(found))
	return hint, fmt.Errorf("schema for table %s: %w", name, ErrNotFound)
}

// ResolveTableName returns the target object name for name in schema,
// following a synonym when one matches. Unknown names are returned unchanged.
func (s *SymbolTable) ResolveTableName(schema, name string) string {
	if _, ok := s.TableOrView(schema, name); ok {
		return name
	}
	if syn, ok := s.synonyms[key(schema, name)]; ok {
		return syn.TargetName
	}
	if syn, ok := s.synonyms[key(PublicSchema, name)]; ok {
		return syn.TargetName
	}
	return name
}

// Column returns the metadata of schema.table.column, looking in tables first
// and then in views.
func (s *SymbolTable) Column(schema, table, column string) (types.ColumnMetadata, bool) {
	for _, lookup := range []func(string, string) (*types.TableMetadata, bool){s.Table, s.View} {
		t, ok := lookup(schema, table)
		if !ok {
			continue
		}
		for _, col := range t.Columns {
			if strings.EqualFold(col.Name, column) {
				return col, true
			}
		}
	}
	return types.ColumnMetadata{}, false
}

// Routine kinds returned by RoutineKind.
const (
	KindUnknown = iota
	KindFunction
	KindProcedure
)

// RoutineKind classifies a routine reference. pkg may be empty for standalone
// routines; schema may be empty to search the user schemas.
func (s *SymbolTable) RoutineKind(schema, pkg, name string) int {
	if pkg != "" {
		var p *ast.Package
		var ok bool
		if schema != "" {
			p, ok = s.Package(schema, pkg)
		} else {
			p, ok = s.FindPackage(pkg, "")
		}
		switch {
		case !ok:
			return KindUnknown
		case p.FindFunction(name) != nil:
			return KindFunction
		case p.FindProcedure(name) != nil:
			return KindProcedure
		}
		return KindUnknown
	}
	for _, candidate := range s.candidateSchemas(schema) {
		if _, ok := s.functions[key(candidate, name)]; ok {
			return KindFunction
		}
		if _, ok := s.procedures[key(candidate, name)]; ok {
			return KindProcedure
		}
	}
	return KindUnknown
}

// IsFunction reports whether the reference names a known function.
func (s *SymbolTable) IsFunction(schema, pkg, name string) bool {
	return s.RoutineKind(schema, pkg, name) == KindFunction
}

// SchemaForRoutine returns the schema of a standalone routine as seen from hint.
func (s *SymbolTable) SchemaForRoutine(name, hint string) (string, bool) {
	for _, candidate := range s.candidateSchemas(hint) {
		if fn, ok := s.functions[key(candidate, name)]; ok {
			return fn.Schema, true
		}
		if proc, ok := s.procedures[key(candidate, name)]; ok {
			return proc.Schema, true
		}
	}
	return hint, false
}

// FindPackageVariable returns the first registered package declaring a
// variable called name. The package of the current routine, when given, is
// searched first.
func (s *SymbolTable) FindPackageVariable(name string, current *ast.Package) (*ast.Package, *ast.Variable, bool) {
	if current != nil {
		if v := current.FindVariable(name); v != nil {
			return current, v, true
		}
	}
	for _, p := range s.packageList {
		if v := p.FindVariable(name); v != nil {
			return p, v, true
		}
	}
	return nil, nil, false
}
