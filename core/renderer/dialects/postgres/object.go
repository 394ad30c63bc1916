package postgres

import (
	"fmt"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/mapping"
	"github.com/stokaro/ora2pg/core/renderer/types"
)

// ObjectType renders an object type as a composite type followed by its
// member routines, or a schema-level collection type as a domain.
func (r *Renderer) ObjectType(obj *ast.ObjectType) (string, error) {
	return r.objectType(obj)
}

func (r *Renderer) objectType(obj *ast.ObjectType) (string, error) {
	obj.Link()
	s := r.root()
	name := mapping.ObjectName(obj.Schema, obj.Name)

	switch {
	case obj.Varray != nil:
		return "CREATE DOMAIN " + name + " AS " + r.dataType(s, obj.Varray.Element) + "[];", nil
	case obj.NestedTable != nil:
		return "CREATE DOMAIN " + name + " AS " + r.dataType(s, obj.NestedTable.Element) + "[];", nil
	case len(obj.Attributes) == 0:
		return "", fmt.Errorf("object type %s attributes: %w", name, types.ErrMissingChild)
	}

	attrs := make([]string, 0, len(obj.Attributes))
	for _, a := range obj.Attributes {
		attrs = append(attrs, s.nested().indent()+a.Name+" "+r.dataType(s, a.Type))
	}
	out := []string{"CREATE TYPE " + name + " AS (\n" + strings.Join(attrs, ",\n") + "\n);"}

	for _, c := range obj.Constructors {
		ddl, err := r.functionAs(s, c, true)
		if err != nil {
			return "", fmt.Errorf("object type %s: %w", name, err)
		}
		out = append(out, ddl)
	}
	for _, f := range obj.Functions {
		ddl, err := r.function(s, f)
		if err != nil {
			return "", fmt.Errorf("object type %s: %w", name, err)
		}
		out = append(out, ddl)
	}
	for _, p := range obj.Procedures {
		ddl, err := r.procedure(s, p)
		if err != nil {
			return "", fmt.Errorf("object type %s: %w", name, err)
		}
		out = append(out, ddl)
	}
	return strings.Join(out, "\n\n"), nil
}

// View renders CREATE OR REPLACE VIEW.
func (r *Renderer) View(v *ast.View) (string, error) {
	return r.view(v)
}

func (r *Renderer) view(v *ast.View) (string, error) {
	if v.Query == nil {
		return "", fmt.Errorf("view %s query: %w", v.Name, types.ErrMissingChild)
	}
	q, err := r.query(r.root(), v.Query)
	if err != nil {
		return "", fmt.Errorf("view %s: %w", v.Name, err)
	}
	head := "CREATE OR REPLACE VIEW " + mapping.ObjectName(v.Schema, v.Name)
	if len(v.Columns) > 0 {
		head += " (" + strings.Join(v.Columns, ", ") + ")"
	}
	return head + " AS " + q + ";", nil
}
