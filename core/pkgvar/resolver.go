// Package pkgvar rewrites reads and writes of Oracle package variables into
// calls of the package-variable runtime functions.
//
// Every call site (assignment targets, element and method access, bare
// identifiers in expressions) goes through one Resolver, so the same
// (package, variable) pair always produces the same accessor name and
// arguments.
package pkgvar

import (
	"fmt"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/mapping"
	"github.com/stokaro/ora2pg/core/symtab"
)

// DefaultRuntimeSchema is the schema holding the runtime accessor functions.
const DefaultRuntimeSchema = "sys"

// Ref is a resolved package variable.
type Ref struct {
	Package  *ast.Package
	Variable *ast.Variable
	// Accessor is the accessor suffix of the variable itself; collection
	// variables have mapping.AccessorCollection.
	Accessor string
	// ElementAccessor is the accessor suffix of collection elements.
	ElementAccessor string
}

// IsCollection reports whether the variable holds a collection.
func (r Ref) IsCollection() bool {
	return r.Accessor == mapping.AccessorCollection
}

// Resolver finds package variables and emits their accessor calls.
type Resolver struct {
	symbols *symtab.SymbolTable
	runtime string
}

// New creates a resolver over symbols. An empty runtimeSchema selects
// DefaultRuntimeSchema.
func New(symbols *symtab.SymbolTable, runtimeSchema string) *Resolver {
	if runtimeSchema == "" {
		runtimeSchema = DefaultRuntimeSchema
	}
	return &Resolver{symbols: symbols, runtime: runtimeSchema}
}

// Resolve decides whether the identifier parts name a package variable as seen
// from routine (nil outside of routines) in package pkg (nil for standalone
// code). Accepted shapes are var, pkg.var and schema.pkg.var. A single name
// that is a parameter, variable or cursor of routine is local and never a
// package variable.
func (r *Resolver) Resolve(parts []string, routine *ast.Routine, pkg *ast.Package) (Ref, bool) {
	if pkg == nil && routine != nil {
		pkg = routine.Package
	}
	switch len(parts) {
	case 1:
		name := parts[0]
		if routine != nil {
			if _, local := routine.DeclaredType(name); local {
				return Ref{}, false
			}
			if routine.FindCursor(name) != nil {
				return Ref{}, false
			}
		}
		p, v, ok := r.symbols.FindPackageVariable(name, pkg)
		if !ok {
			return Ref{}, false
		}
		return r.ref(p, v), true
	case 2:
		hint := ""
		if pkg != nil {
			hint = pkg.Schema
		} else if routine != nil {
			hint = routine.OwnerSchema()
		}
		p, ok := r.symbols.FindPackage(parts[0], hint)
		if !ok {
			return Ref{}, false
		}
		if v := p.FindVariable(parts[1]); v != nil {
			return r.ref(p, v), true
		}
	case 3:
		p, ok := r.symbols.Package(parts[0], parts[1])
		if !ok {
			return Ref{}, false
		}
		if v := p.FindVariable(parts[2]); v != nil {
			return r.ref(p, v), true
		}
	}
	return Ref{}, false
}

// ResolveExpr resolves an identifier expression; other expressions never
// name a package variable.
func (r *Resolver) ResolveExpr(e ast.Expr, routine *ast.Routine, pkg *ast.Package) (Ref, bool) {
	switch v := e.(type) {
	case *ast.Ident:
		return r.Resolve(v.Parts, routine, pkg)
	case *ast.FieldAccess:
		if id, ok := v.X.(*ast.Ident); ok {
			return r.Resolve(append(append([]string(nil), id.Parts...), v.Field), routine, pkg)
		}
	}
	return Ref{}, false
}

func (r *Resolver) ref(p *ast.Package, v *ast.Variable) Ref {
	ref := Ref{Package: p, Variable: v, Accessor: mapping.AccessorText, ElementAccessor: mapping.AccessorText}
	switch t := v.Type.(type) {
	case *ast.NativeType:
		ref.Accessor = mapping.Accessor(t.Name)
	case *ast.CustomType:
		if ct, ok := r.symbols.LookupCollectionType(nil, p, t.Name); ok {
			ref.Accessor = mapping.AccessorCollection
			ref.ElementAccessor = r.elementAccessor(p, ct.Element)
		} else if st := p.FindSubType(t.Name); st != nil {
			ref.Accessor = mapping.Accessor(ast.TypeName(st.Base))
		}
	case *ast.ColumnType:
		if col, ok := r.symbols.Column(t.Schema, t.Table, t.Column); ok {
			ref.Accessor = mapping.Accessor(col.DataType)
		}
	}
	return ref
}

func (r *Resolver) elementAccessor(p *ast.Package, elem ast.DataType) string {
	switch t := elem.(type) {
	case *ast.NativeType:
		return mapping.Accessor(t.Name)
	case *ast.CustomType:
		if _, ok := r.symbols.LookupCollectionType(nil, p, t.Name); ok {
			return mapping.AccessorCollection
		}
		if st := p.FindSubType(t.Name); st != nil {
			return mapping.Accessor(ast.TypeName(st.Base))
		}
	}
	return mapping.AccessorText
}

// args renders the common leading arguments: schema, package and variable,
// all lowercase.
func (r *Resolver) args(ref Ref) string {
	return fmt.Sprintf("'%s', '%s', '%s'",
		strings.ToLower(ref.Package.Schema), strings.ToLower(ref.Package.Name), strings.ToLower(ref.Variable.Name))
}

func (r *Resolver) fn(name string) string {
	return r.runtime + "." + name
}

// Read renders a read of the whole variable.
func (r *Resolver) Read(ref Ref) string {
	if ref.IsCollection() {
		return fmt.Sprintf("%s(%s)", r.fn("get_package_collection"), r.args(ref))
	}
	return fmt.Sprintf("%s(%s)", r.fn("get_package_var_"+ref.Accessor), r.args(ref))
}

// Write renders a statement assigning value to the whole variable, without
// the terminating semicolon.
func (r *Resolver) Write(ref Ref, value string) string {
	if ref.IsCollection() {
		return fmt.Sprintf("PERFORM %s(%s, %s)", r.fn("set_package_collection"), r.args(ref), value)
	}
	return fmt.Sprintf("PERFORM %s(%s, %s)", r.fn("set_package_var_"+ref.Accessor), r.args(ref), value)
}

// ElementRead renders a read of element index of a collection variable.
func (r *Resolver) ElementRead(ref Ref, index string) string {
	if ref.ElementAccessor == mapping.AccessorCollection {
		return fmt.Sprintf("%s(%s, %s)", r.fn("get_package_collection_element"), r.args(ref), index)
	}
	return fmt.Sprintf("%s(%s, %s)", r.fn("get_package_collection_element_"+ref.ElementAccessor), r.args(ref), index)
}

// ElementWrite renders a statement assigning value to element index.
func (r *Resolver) ElementWrite(ref Ref, index, value string) string {
	if ref.ElementAccessor == mapping.AccessorCollection {
		return fmt.Sprintf("PERFORM %s(%s, %s, %s)", r.fn("set_package_collection_element"), r.args(ref), index, value)
	}
	return fmt.Sprintf("PERFORM %s(%s, %s, %s)", r.fn("set_package_collection_element_"+ref.ElementAccessor), r.args(ref), index, value)
}

// Method renders a collection method used as an expression (COUNT, FIRST,
// LAST, EXISTS, NEXT, PRIOR, LIMIT). args are the rendered method arguments.
func (r *Resolver) Method(ref Ref, method string, args []string) string {
	count := fmt.Sprintf("%s(%s)", r.fn("get_package_collection_count"), r.args(ref))
	switch strings.ToUpper(method) {
	case ast.MethodCount:
		return count
	case ast.MethodFirst:
		return fmt.Sprintf("%s(%s)", r.fn("get_package_collection_first"), r.args(ref))
	case ast.MethodLast:
		return fmt.Sprintf("%s(%s)", r.fn("get_package_collection_last"), r.args(ref))
	case ast.MethodExists:
		if len(args) == 1 {
			return fmt.Sprintf("%s(%s, %s)", r.fn("package_collection_exists"), r.args(ref), args[0])
		}
	case ast.MethodNext:
		if len(args) == 1 {
			return fmt.Sprintf("(CASE WHEN %[1]s < %[2]s THEN %[1]s + 1 ELSE NULL END)", args[0], count)
		}
	case ast.MethodPrior:
		if len(args) == 1 {
			return fmt.Sprintf("(CASE WHEN %[1]s > 1 THEN %[1]s - 1 ELSE NULL END)", args[0])
		}
	case ast.MethodLimit:
		return LimitPlaceholder
	}
	return fmt.Sprintf("/* collection method %s.%s(%s) on package %s not supported */",
		ref.Variable.Name, strings.ToUpper(method), strings.Join(args, ", "), ref.Package.Name)
}

// MethodStatement renders a collection method used as a statement (EXTEND,
// DELETE, TRIM), without the terminating semicolon.
func (r *Resolver) MethodStatement(ref Ref, method string, args []string) string {
	switch strings.ToUpper(method) {
	case ast.MethodExtend:
		// EXTEND(n) appends n NULL elements, like the local array form.
		n := "1"
		if len(args) > 0 {
			n = args[0]
		}
		return fmt.Sprintf("PERFORM %s(%s, %s)", r.fn("extend_package_collection"), r.args(ref), n)
	case ast.MethodDelete:
		if len(args) == 0 {
			return fmt.Sprintf("PERFORM %s(%s)", r.fn("delete_package_collection_all"), r.args(ref))
		}
		return fmt.Sprintf("PERFORM %s(%s, %s)", r.fn("delete_package_collection_element"), r.args(ref), args[0])
	case ast.MethodTrim:
		n := "1"
		if len(args) > 0 {
			n = args[0]
		}
		return fmt.Sprintf("PERFORM %s(%s, %s)", r.fn("trim_package_collection"), r.args(ref), n)
	}
	expr := r.Method(ref, method, args)
	if strings.HasPrefix(expr, "/*") {
		return expr
	}
	return "PERFORM " + expr
}

// LimitPlaceholder replaces VARRAY .LIMIT, which PostgreSQL arrays do not have.
const LimitPlaceholder = "/* LIMIT - no direct PostgreSQL equivalent for dynamic array limits */"
