package postgres

import (
	"fmt"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/mapping"
	"github.com/stokaro/ora2pg/core/symtab"
	dbtypes "github.com/stokaro/ora2pg/dbschema/types"
)

// dataType renders a declared type. Types that cannot be resolved render as
// text followed by a comment naming the source type, so that the generated
// DDL still parses.
func (r *Renderer) dataType(s scope, t ast.DataType) string {
	switch n := t.(type) {
	case *ast.NativeType:
		return mapping.NativeType(n)
	case *ast.RowType:
		return r.rowType(s, n)
	case *ast.ColumnType:
		return r.columnType(s, n)
	case *ast.CustomType:
		return r.customType(s, n)
	}
	return r.placeholder("data type", "text /* data type not implemented */")
}

func (r *Renderer) tableSchema(s scope, schema, table string) string {
	hint := schema
	if hint == "" {
		hint = s.schema()
	}
	if hint == "" {
		hint = r.symbols.DefaultSchema()
	}
	resolved, err := r.symbols.SchemaForTable(table, hint)
	if err != nil {
		return hint
	}
	return resolved
}

func (r *Renderer) rowType(s scope, n *ast.RowType) string {
	schema := r.tableSchema(s, n.Schema, n.Table)
	if t, ok := r.symbols.TableOrView(schema, n.Table); ok {
		return mapping.RowTypeName(t.Schema, t.Name)
	}
	return r.placeholder("%ROWTYPE", fmt.Sprintf("text /* could not resolve %s%%ROWTYPE */", mapping.ObjectName(n.Schema, n.Table)))
}

func (r *Renderer) columnType(s scope, n *ast.ColumnType) string {
	schema := r.tableSchema(s, n.Schema, n.Table)
	if col, ok := r.symbols.Column(schema, n.Table, n.Column); ok {
		return columnTypeString(col)
	}
	return r.placeholder("%TYPE", fmt.Sprintf("text /* could not resolve %s.%s%%TYPE */", mapping.ObjectName(n.Schema, n.Table), strings.ToUpper(n.Column)))
}

// columnTypeString maps catalog column metadata, which may carry the type
// parameters inline ("NUMBER(10,2)") or in separate fields.
func columnTypeString(col dbtypes.ColumnMetadata) string {
	if strings.Contains(col.DataType, "(") {
		return mapping.TypeString(col.DataType)
	}
	t := ast.NewNativeType(strings.TrimSpace(col.DataType))
	t.Length = col.Length
	t.Precision = col.Precision
	t.Scale = col.Scale
	return mapping.NativeType(t)
}

func (r *Renderer) customType(s scope, n *ast.CustomType) string {
	if _, _, ok := r.symbols.TableOfRecords(s.routine, s.pkg, n); ok {
		return "jsonb"
	}
	if ct, ok := r.symbols.LookupCollectionType(s.routine, s.pkg, n.Name); ok {
		switch {
		case ct.Routine != nil:
			return r.dataType(s, ct.Element) + "[]"
		case ct.Package != nil:
			return mapping.TypeName(ct.Package.Schema, ct.Package.Name, ct.Name)
		case ct.ObjectType != nil:
			return mapping.ObjectName(ct.ObjectType.Schema, ct.ObjectType.Name)
		}
	}
	if rec, ok := r.symbols.LookupRecordType(s.routine, s.pkg, n.Name); ok {
		return recordCompositeName(rec)
	}
	if p, st, ok := r.subType(s, n.Name); ok {
		return mapping.TypeName(p.Schema, p.Name, st.Name)
	}
	if obj, ok := r.findObjectType(s, n.Name); ok {
		return mapping.ObjectName(obj.Schema, obj.Name)
	}
	if s.pkg != nil {
		return mapping.TypeName(s.pkg.Schema, s.pkg.Name, n.Name)
	}
	return r.placeholder("custom type", fmt.Sprintf("text /* could not resolve type %s */", n.Name))
}

func (r *Renderer) subType(s scope, name string) (*ast.Package, *ast.SubType, bool) {
	if owner, typeName, dotted := strings.Cut(name, "."); dotted {
		p, ok := r.symbols.FindPackage(owner, s.schema())
		if !ok {
			return nil, nil, false
		}
		if st := p.FindSubType(typeName); st != nil {
			return p, st, true
		}
		return nil, nil, false
	}
	if s.pkg != nil {
		if st := s.pkg.FindSubType(name); st != nil {
			return s.pkg, st, true
		}
	}
	return nil, nil, false
}

func (r *Renderer) findObjectType(s scope, name string) (*ast.ObjectType, bool) {
	if schema, typeName, dotted := strings.Cut(name, "."); dotted {
		return r.symbols.ObjectType(schema, typeName)
	}
	return r.symbols.FindObjectType(name, s.schema())
}

// recordCompositeName is the composite type generated for a record type:
// schema_package_recordtype for package records and
// schema_package_routine_recordtype for routine-local ones.
func recordCompositeName(rec symtab.RecordTypeRef) string {
	var schema, owner, routine string
	switch {
	case rec.Routine != nil:
		schema, owner, routine = rec.Routine.OwnerSchema(), rec.Routine.OwnerName(), rec.Routine.Name
	case rec.Package != nil:
		schema, owner = rec.Package.Schema, rec.Package.Name
	}
	return mapping.TypeName(schema, owner, routine, rec.Record.Name)
}

// recordRef locates the declaring scope of a record type node.
func (r *Renderer) recordRef(s scope, rt *ast.RecordType) symtab.RecordTypeRef {
	if s.routine != nil && s.routine.FindRecordType(rt.Name) == rt {
		return symtab.RecordTypeRef{Record: rt, Routine: s.routine, Package: s.routine.Package}
	}
	return symtab.RecordTypeRef{Record: rt, Package: s.pkg}
}
