package postgres

import (
	"fmt"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/mapping"
)

// Package renders the complete DDL of a package: its types, the variable
// initialiser and every routine. In spec-only mode the routines get stub
// bodies and the initialiser is left out.
func (r *Renderer) Package(pkg *ast.Package) (string, error) {
	return r.pkg(pkg)
}

func (r *Renderer) pkg(pkg *ast.Package) (string, error) {
	pkg.Link()
	sections := []string{fmt.Sprintf("-- Package %s", mapping.ObjectName(pkg.Schema, pkg.Name))}
	for _, part := range []func(*ast.Package) (string, error){r.PackageTypes, r.packageInitIfFull, r.PackageRoutines} {
		out, err := part(pkg)
		if err != nil {
			return "", fmt.Errorf("package %s.%s: %w", pkg.Schema, pkg.Name, err)
		}
		if out != "" {
			sections = append(sections, out)
		}
	}
	return strings.Join(sections, "\n\n"), nil
}

func (r *Renderer) packageInitIfFull(pkg *ast.Package) (string, error) {
	if r.specOnly {
		return "", nil
	}
	return r.PackageInit(pkg)
}

// PackageTypes renders the domains and composite types a package needs:
// collection domains, subtype domains, package record types and the record
// types declared inside its routines.
func (r *Renderer) PackageTypes(pkg *ast.Package) (string, error) {
	s := r.root().withPackage(pkg)
	var out []string
	for _, st := range pkg.SubTypes {
		out = append(out, r.subTypeDDL(s, st))
	}
	for _, rt := range pkg.RecordTypes {
		ddl, err := r.recordTypeDDL(s, rt, recordCompositeName(r.recordRef(s, rt)))
		if err != nil {
			return "", err
		}
		out = append(out, ddl)
	}
	for _, t := range pkg.VarrayTypes {
		ddl, err := r.collectionDomainDDL(s, t.Name, t.Element)
		if err != nil {
			return "", err
		}
		out = append(out, ddl)
	}
	for _, t := range pkg.NestedTableTypes {
		ddl, err := r.collectionDomainDDL(s, t.Name, t.Element)
		if err != nil {
			return "", err
		}
		out = append(out, ddl)
	}
	for _, routine := range packageRoutines(pkg) {
		ddl, err := r.RoutineTypes(routine)
		if err != nil {
			return "", err
		}
		if ddl != "" {
			out = append(out, ddl)
		}
	}
	return strings.Join(out, "\n\n"), nil
}

func packageRoutines(pkg *ast.Package) []*ast.Routine {
	routines := make([]*ast.Routine, 0, len(pkg.Functions)+len(pkg.Procedures))
	for _, f := range pkg.Functions {
		routines = append(routines, &f.Routine)
	}
	for _, p := range pkg.Procedures {
		routines = append(routines, &p.Routine)
	}
	return routines
}

// InitFunctionName is the name of the function that sets the package
// variables to their declared defaults.
func InitFunctionName(pkg *ast.Package) string {
	return mapping.RoutineName(pkg.Schema, pkg.Name, "init_variables")
}

// PackageInit renders the variable initialiser of a package, or "" when the
// package has neither variable defaults nor an initialisation section.
func (r *Renderer) PackageInit(pkg *ast.Package) (string, error) {
	s := r.root().withPackage(pkg)
	inner := s.nested()
	var body []string
	for _, v := range pkg.Variables {
		if v.Default == nil {
			continue
		}
		ref, ok := r.resolver.Resolve([]string{v.Name}, nil, pkg)
		if !ok {
			continue
		}
		value, err := r.expr(s, v.Default)
		if err != nil {
			return "", fmt.Errorf("variable %s default: %w", v.Name, err)
		}
		body = append(body, inner.indent()+r.resolver.Write(ref, value)+";")
	}
	init, err := r.statements(s, pkg.Body)
	if err != nil {
		return "", fmt.Errorf("initialisation section: %w", err)
	}
	body = append(body, init...)
	if len(body) == 0 {
		return "", nil
	}
	lines := []string{
		"CREATE OR REPLACE FUNCTION " + InitFunctionName(pkg) + "()",
		"RETURNS void",
		"LANGUAGE plpgsql",
		"AS $$",
		"BEGIN",
	}
	lines = append(lines, body...)
	lines = append(lines, "END;", "$$;")
	return strings.Join(lines, "\n"), nil
}

// PackageRoutines renders the functions and then the procedures of a package.
func (r *Renderer) PackageRoutines(pkg *ast.Package) (string, error) {
	pkg.Link()
	s := r.root().withPackage(pkg)
	var out []string
	for _, f := range pkg.Functions {
		ddl, err := r.function(s, f)
		if err != nil {
			return "", err
		}
		out = append(out, ddl)
	}
	for _, p := range pkg.Procedures {
		ddl, err := r.procedure(s, p)
		if err != nil {
			return "", err
		}
		out = append(out, ddl)
	}
	return strings.Join(out, "\n\n"), nil
}
