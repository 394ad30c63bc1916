package symtab

import (
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
)

// CollectionKind tells VARRAYs from nested tables.
type CollectionKind int

const (
	Varray CollectionKind = iota + 1
	NestedTable
)

// CollectionType is a resolved collection type declaration together with
// the scope that declares it. At most one of Routine, Package and
// ObjectType is set.
type CollectionType struct {
	Name       string
	Kind       CollectionKind
	Element    ast.DataType
	IndexBy    ast.DataType
	Routine    *ast.Routine
	Package    *ast.Package
	ObjectType *ast.ObjectType
}

// RecordTypeRef is a resolved record type declaration and its declaring scope.
type RecordTypeRef struct {
	Record  *ast.RecordType
	Routine *ast.Routine
	Package *ast.Package
}

// LookupCollectionType resolves a collection type name as seen from routine,
// which may be nil. Routine-level declarations shadow package-level ones.
// A dotted name pkg.type is looked up in that package; schema-level VARRAY and
// nested table object types are found last.
func (s *SymbolTable) LookupCollectionType(routine *ast.Routine, pkg *ast.Package, name string) (CollectionType, bool) {
	if owner, typeName, dotted := cutLast(name); dotted {
		if p, ok := s.packageRef(owner, schemaOf(routine, pkg)); ok {
			return collectionInPackage(p, typeName)
		}
		if obj, ok := s.ObjectType(owner, typeName); ok {
			return collectionInObjectType(obj)
		}
		return CollectionType{}, false
	}

	if routine != nil {
		if t := routine.FindVarrayType(name); t != nil {
			return CollectionType{Name: t.Name, Kind: Varray, Element: t.Element, Routine: routine}, true
		}
		if t := routine.FindNestedTableType(name); t != nil {
			return CollectionType{Name: t.Name, Kind: NestedTable, Element: t.Element, IndexBy: t.IndexBy, Routine: routine}, true
		}
	}
	if pkg == nil && routine != nil {
		pkg = routine.Package
	}
	if pkg != nil {
		if ct, ok := collectionInPackage(pkg, name); ok {
			return ct, true
		}
	}
	if obj, ok := s.FindObjectType(name, schemaOf(routine, pkg)); ok {
		return collectionInObjectType(obj)
	}
	return CollectionType{}, false
}

func collectionInPackage(p *ast.Package, name string) (CollectionType, bool) {
	if t := p.FindVarrayType(name); t != nil {
		return CollectionType{Name: t.Name, Kind: Varray, Element: t.Element, Package: p}, true
	}
	if t := p.FindNestedTableType(name); t != nil {
		return CollectionType{Name: t.Name, Kind: NestedTable, Element: t.Element, IndexBy: t.IndexBy, Package: p}, true
	}
	return CollectionType{}, false
}

func collectionInObjectType(obj *ast.ObjectType) (CollectionType, bool) {
	switch {
	case obj.Varray != nil:
		return CollectionType{Name: obj.Name, Kind: Varray, Element: obj.Varray.Element, ObjectType: obj}, true
	case obj.NestedTable != nil:
		return CollectionType{Name: obj.Name, Kind: NestedTable, Element: obj.NestedTable.Element, ObjectType: obj}, true
	}
	return CollectionType{}, false
}

// LookupRecordType resolves a record type name as seen from routine, searching
// the routine first and then its package (or pkg when routine is nil).
func (s *SymbolTable) LookupRecordType(routine *ast.Routine, pkg *ast.Package, name string) (RecordTypeRef, bool) {
	if owner, typeName, dotted := cutLast(name); dotted {
		if p, ok := s.packageRef(owner, schemaOf(routine, pkg)); ok {
			if rt := p.FindRecordType(typeName); rt != nil {
				return RecordTypeRef{Record: rt, Package: p}, true
			}
		}
		return RecordTypeRef{}, false
	}
	if routine != nil {
		if rt := routine.FindRecordType(name); rt != nil {
			return RecordTypeRef{Record: rt, Routine: routine, Package: routine.Package}, true
		}
	}
	if pkg == nil && routine != nil {
		pkg = routine.Package
	}
	if pkg != nil {
		if rt := pkg.FindRecordType(name); rt != nil {
			return RecordTypeRef{Record: rt, Package: pkg}, true
		}
	}
	return RecordTypeRef{}, false
}

// TableOfRecords reports whether typ, as seen from routine, is a nested table
// whose elements are a declared record type, and returns that record type.
func (s *SymbolTable) TableOfRecords(routine *ast.Routine, pkg *ast.Package, typ ast.DataType) (CollectionType, RecordTypeRef, bool) {
	custom, ok := typ.(*ast.CustomType)
	if !ok {
		return CollectionType{}, RecordTypeRef{}, false
	}
	ct, ok := s.LookupCollectionType(routine, pkg, custom.Name)
	if !ok || ct.Kind != NestedTable {
		return CollectionType{}, RecordTypeRef{}, false
	}
	elem, ok := ct.Element.(*ast.CustomType)
	if !ok {
		return CollectionType{}, RecordTypeRef{}, false
	}
	declRoutine := ct.Routine
	if declRoutine == nil {
		declRoutine = routine
	}
	declPackage := ct.Package
	if declPackage == nil {
		declPackage = pkg
	}
	rec, ok := s.LookupRecordType(declRoutine, declPackage, elem.Name)
	if !ok {
		return CollectionType{}, RecordTypeRef{}, false
	}
	return ct, rec, true
}

// packageRef resolves "pkg" or "schema.pkg".
func (s *SymbolTable) packageRef(ref, hint string) (*ast.Package, bool) {
	if schema, name, qualified := cutLast(ref); qualified {
		return s.Package(schema, name)
	}
	return s.FindPackage(ref, hint)
}

func schemaOf(routine *ast.Routine, pkg *ast.Package) string {
	switch {
	case routine != nil:
		return routine.OwnerSchema()
	case pkg != nil:
		return pkg.Schema
	}
	return ""
}

func cutLast(name string) (string, string, bool) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", name, false
	}
	return name[:i], name[i+1:], true
}
