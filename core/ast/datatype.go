package ast

import (
	"strings"
)

// DataType is the declared type of a variable, parameter, field or return value.
//
// It is one of four origins: a native Oracle type, a user-declared (custom) type,
// a table%ROWTYPE reference or a table.column%TYPE reference.
type DataType interface {
	Node
	dataTypeNode()
}

// NativeType is a built-in Oracle type with optional length, precision and scale.
type NativeType struct {
	// Name is the upper-case type name, e.g. VARCHAR2 or TIMESTAMP WITH TIME ZONE.
	Name      string
	Length    *int
	Precision *int
	Scale     *int
}

// NewNativeType creates a native type without parameters.
//
// Example:
//
//	NewNativeType("NUMBER").SetPrecision(10, 2)
func NewNativeType(name string) *NativeType {
	return &NativeType{Name: strings.ToUpper(name)}
}

// SetLength sets the length parameter and returns the type for chaining.
func (n *NativeType) SetLength(length int) *NativeType {
	n.Length = &length
	return n
}

// SetPrecision sets precision and scale and returns the type for chaining.
// A negative scale leaves the scale unset.
func (n *NativeType) SetPrecision(precision, scale int) *NativeType {
	n.Precision = &precision
	if scale >= 0 {
		n.Scale = &scale
	}
	return n
}

func (n *NativeType) Accept(visitor Visitor) error { return visitor.VisitNativeType(n) }
func (*NativeType) dataTypeNode() {}

// CustomType references a user-declared type by name: a package-level or
// routine-level record/collection type, a subtype or a schema object type.
type CustomType struct {
	Name string
}

// NewCustomType creates a custom type reference.
func NewCustomType(name string) *CustomType {
	return &CustomType{Name: name}
}

func (n *CustomType) Accept(visitor Visitor) error { return visitor.VisitCustomType(n) }
func (*CustomType) dataTypeNode() {}

// RowType is schema.table%ROWTYPE.
type RowType struct {
	Schema string
	Table  string
}

// NewRowType creates a %ROWTYPE reference.
func NewRowType(schema, table string) *RowType {
	return &RowType{Schema: schema, Table: table}
}

func (n *RowType) Accept(visitor Visitor) error { return visitor.VisitRowType(n) }
func (*RowType) dataTypeNode() {}

// ColumnType is schema.table.column%TYPE.
type ColumnType struct {
	Schema string
	Table  string
	Column string
}

// NewColumnType creates a %TYPE reference.
func NewColumnType(schema, table, column string) *ColumnType {
	return &ColumnType{Schema: schema, Table: table, Column: column}
}

func (n *ColumnType) Accept(visitor Visitor) error { return visitor.VisitColumnType(n) }
func (*ColumnType) dataTypeNode() {}

// TypeName returns a best-effort source spelling of t, used for accessor
// selection and diagnostics. It returns "" for a nil type.
func TypeName(t DataType) string {
	switch v := t.(type) {
	case *NativeType:
		return v.Name
	case *CustomType:
		return v.Name
	case *RowType:
		return v.Schema + "." + v.Table + "%ROWTYPE"
	case *ColumnType:
		return v.Schema + "." + v.Table + "." + v.Column + "%TYPE"
	}
	return ""
}
