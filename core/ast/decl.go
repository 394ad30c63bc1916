package ast

import (
	"strings"
)

// Variable is a variable or constant declaration: name [CONSTANT] type [NOT NULL] [:= default].
type Variable struct {
	Name     string
	Type     DataType
	Constant bool
	NotNull  bool
	Default  Expr
}

// NewVariable creates a variable declaration.
//
// Example:
//
//	NewVariable("v_total", NewNativeType("NUMBER")).SetDefault(NewNumber("0"))
func NewVariable(name string, typ DataType) *Variable {
	return &Variable{Name: name, Type: typ}
}

// SetDefault sets the initial value and returns the variable for chaining.
func (n *Variable) SetDefault(value Expr) *Variable {
	n.Default = value
	return n
}

// Accept implements the Node interface for Variable.
func (n *Variable) Accept(visitor Visitor) error {
	return visitor.VisitVariable(n)
}

// ParamMode is the direction of a routine parameter.
type ParamMode string

const (
	ModeIn    ParamMode = "IN"
	ModeOut   ParamMode = "OUT"
	ModeInOut ParamMode = "IN OUT"
)

// Parameter is a routine parameter.
type Parameter struct {
	Name    string
	Type    DataType
	Mode    ParamMode
	NoCopy  bool
	Default Expr
}

// NewParameter creates an IN parameter.
func NewParameter(name string, typ DataType) *Parameter {
	return &Parameter{Name: name, Type: typ, Mode: ModeIn}
}

// SetMode sets the parameter direction and returns the parameter for chaining.
func (n *Parameter) SetMode(mode ParamMode) *Parameter {
	n.Mode = mode
	return n
}

// Accept implements the Node interface for Parameter.
func (n *Parameter) Accept(visitor Visitor) error {
	return visitor.VisitParameter(n)
}

// CursorDecl is CURSOR name [(params)] [RETURN type] IS query.
type CursorDecl struct {
	Name       string
	Parameters []*Parameter
	ReturnType DataType
	Query      *SelectStatement
}

// NewCursorDecl creates a cursor declaration.
func NewCursorDecl(name string, query *SelectStatement, params ...*Parameter) *CursorDecl {
	return &CursorDecl{Name: name, Query: query, Parameters: params}
}

// Accept implements the Node interface for CursorDecl.
func (n *CursorDecl) Accept(visitor Visitor) error {
	return visitor.VisitCursorDecl(n)
}

// ExceptionDecl is a user exception declaration: name EXCEPTION.
type ExceptionDecl struct {
	Name string
}

// Accept implements the Node interface for ExceptionDecl.
func (n *ExceptionDecl) Accept(visitor Visitor) error {
	return visitor.VisitExceptionDecl(n)
}

// RecordField is one field of a record type.
type RecordField struct {
	Name    string
	Type    DataType
	NotNull bool
	Default Expr
}

// RecordType is TYPE name IS RECORD (fields).
type RecordType struct {
	Name   string
	Fields []*RecordField
}

// NewRecordType creates a record type declaration.
func NewRecordType(name string) *RecordType {
	return &RecordType{Name: name}
}

// AddField adds a field and returns the record type for chaining.
func (n *RecordType) AddField(name string, typ DataType) *RecordType {
	n.Fields = append(n.Fields, &RecordField{Name: name, Type: typ})
	return n
}

// Accept implements the Node interface for RecordType.
func (n *RecordType) Accept(visitor Visitor) error {
	return visitor.VisitRecordType(n)
}

// VarrayType is TYPE name IS VARRAY(size) OF element.
type VarrayType struct {
	Name    string
	Size    Expr
	Element DataType
}

// NewVarrayType creates a VARRAY type declaration.
func NewVarrayType(name string, size Expr, element DataType) *VarrayType {
	return &VarrayType{Name: name, Size: size, Element: element}
}

// Accept implements the Node interface for VarrayType.
func (n *VarrayType) Accept(visitor Visitor) error {
	return visitor.VisitVarrayType(n)
}

// NestedTableType is TYPE name IS TABLE OF element [INDEX BY key].
// A set IndexBy makes it an associative array.
type NestedTableType struct {
	Name    string
	Element DataType
	IndexBy DataType
}

// NewNestedTableType creates a TABLE OF type declaration.
func NewNestedTableType(name string, element DataType) *NestedTableType {
	return &NestedTableType{Name: name, Element: element}
}

// Accept implements the Node interface for NestedTableType.
func (n *NestedTableType) Accept(visitor Visitor) error {
	return visitor.VisitNestedTableType(n)
}

// SubType is SUBTYPE name IS base [NOT NULL].
type SubType struct {
	Name    string
	Base    DataType
	NotNull bool
}

// Accept implements the Node interface for SubType.
func (n *SubType) Accept(visitor Visitor) error {
	return visitor.VisitSubType(n)
}

// Routine holds what functions and procedures share: signature, declarations,
// body, exception section and the link to the owning package or object type.
//
// Package and ObjectType are attached after construction by Package.Link and
// ObjectType.Link. A standalone routine sets Schema instead.
type Routine struct {
	Name             string
	Schema           string
	Parameters       []*Parameter
	Variables        []*Variable
	Cursors          []*CursorDecl
	Exceptions       []*ExceptionDecl
	RecordTypes      []*RecordType
	VarrayTypes      []*VarrayType
	NestedTableTypes []*NestedTableType
	Body             []Statement
	Exception        *ExceptionBlock

	Package    *Package
	ObjectType *ObjectType
}

// OwnerSchema returns the schema of the owning package or object type, or the
// routine's own schema when standalone.
func (r *Routine) OwnerSchema() string {
	switch {
	case r.Package != nil:
		return r.Package.Schema
	case r.ObjectType != nil:
		return r.ObjectType.Schema
	}
	return r.Schema
}

// OwnerName returns the owning package or object type name, or "" when standalone.
func (r *Routine) OwnerName() string {
	switch {
	case r.Package != nil:
		return r.Package.Name
	case r.ObjectType != nil:
		return r.ObjectType.Name
	}
	return ""
}

// Linked reports whether the routine knows where it lives.
func (r *Routine) Linked() bool {
	return r.Package != nil || r.ObjectType != nil || r.Schema != ""
}

// FindParameter returns the parameter named name, case-insensitively.
func (r *Routine) FindParameter(name string) *Parameter {
	for _, p := range r.Parameters {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// FindVariable returns the local variable named name, case-insensitively.
func (r *Routine) FindVariable(name string) *Variable {
	for _, v := range r.Variables {
		if strings.EqualFold(v.Name, name) {
			return v
		}
	}
	return nil
}

// FindCursor returns the cursor declared as name.
func (r *Routine) FindCursor(name string) *CursorDecl {
	for _, c := range r.Cursors {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// FindRecordType returns the routine-level record type named name.
func (r *Routine) FindRecordType(name string) *RecordType {
	for _, t := range r.RecordTypes {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// FindVarrayType returns the routine-level VARRAY type named name.
func (r *Routine) FindVarrayType(name string) *VarrayType {
	for _, t := range r.VarrayTypes {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// FindNestedTableType returns the routine-level TABLE OF type named name.
func (r *Routine) FindNestedTableType(name string) *NestedTableType {
	for _, t := range r.NestedTableTypes {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// DeclaredType returns the declared type of a local variable or parameter.
func (r *Routine) DeclaredType(name string) (DataType, bool) {
	if v := r.FindVariable(name); v != nil {
		return v.Type, true
	}
	if p := r.FindParameter(name); p != nil {
		return p.Type, true
	}
	return nil, false
}

// Function is a routine with a return type.
type Function struct {
	Routine
	ReturnType    DataType
	Deterministic bool
	Pipelined     bool
}

// NewFunction creates a function returning returnType.
func NewFunction(name string, returnType DataType) *Function {
	return &Function{Routine: Routine{Name: name}, ReturnType: returnType}
}

// Accept implements the Node interface for Function.
func (n *Function) Accept(visitor Visitor) error {
	return visitor.VisitFunction(n)
}

// Procedure is a routine without a return value.
type Procedure struct {
	Routine
}

// NewProcedure creates a procedure.
func NewProcedure(name string) *Procedure {
	return &Procedure{Routine: Routine{Name: name}}
}

// Accept implements the Node interface for Procedure.
func (n *Procedure) Accept(visitor Visitor) error {
	return visitor.VisitProcedure(n)
}

// Package is an Oracle package: spec declarations and body routines merged.
type Package struct {
	Schema           string
	Name             string
	Variables        []*Variable
	SubTypes         []*SubType
	Cursors          []*CursorDecl
	Exceptions       []*ExceptionDecl
	RecordTypes      []*RecordType
	VarrayTypes      []*VarrayType
	NestedTableTypes []*NestedTableType
	Functions        []*Function
	Procedures       []*Procedure
	// Body holds the statements of the package initialization section.
	Body []Statement
}

// NewPackage creates an empty package.
func NewPackage(schema, name string) *Package {
	return &Package{Schema: schema, Name: name}
}

// AddVariable adds a package variable and returns the package for chaining.
func (n *Package) AddVariable(v *Variable) *Package {
	n.Variables = append(n.Variables, v)
	return n
}

// AddFunction adds a function, links it and returns the package for chaining.
func (n *Package) AddFunction(f *Function) *Package {
	f.Package = n
	n.Functions = append(n.Functions, f)
	return n
}

// AddProcedure adds a procedure, links it and returns the package for chaining.
func (n *Package) AddProcedure(p *Procedure) *Package {
	p.Package = n
	n.Procedures = append(n.Procedures, p)
	return n
}

// Link attaches the package to every routine it owns. Builders that append to
// Functions and Procedures directly must call it before rendering.
func (n *Package) Link() {
	for _, f := range n.Functions {
		f.Package = n
		f.ObjectType = nil
	}
	for _, p := range n.Procedures {
		p.Package = n
		p.ObjectType = nil
	}
}

// FindVariable returns the package variable named name, case-insensitively.
func (n *Package) FindVariable(name string) *Variable {
	for _, v := range n.Variables {
		if strings.EqualFold(v.Name, name) {
			return v
		}
	}
	return nil
}

// FindFunction returns the function named name.
func (n *Package) FindFunction(name string) *Function {
	for _, f := range n.Functions {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// FindProcedure returns the procedure named name.
func (n *Package) FindProcedure(name string) *Procedure {
	for _, p := range n.Procedures {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// FindRecordType returns the package-level record type named name.
func (n *Package) FindRecordType(name string) *RecordType {
	for _, t := range n.RecordTypes {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// FindVarrayType returns the package-level VARRAY type named name.
func (n *Package) FindVarrayType(name string) *VarrayType {
	for _, t := range n.VarrayTypes {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// FindNestedTableType returns the package-level TABLE OF type named name.
func (n *Package) FindNestedTableType(name string) *NestedTableType {
	for _, t := range n.NestedTableTypes {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// FindSubType returns the subtype named name.
func (n *Package) FindSubType(name string) *SubType {
	for _, t := range n.SubTypes {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// Accept implements the Node interface for Package.
func (n *Package) Accept(visitor Visitor) error {
	return visitor.VisitPackage(n)
}

// ObjectType is CREATE TYPE name AS OBJECT (...) with its body, or a schema-level
// VARRAY / nested table type.
type ObjectType struct {
	Schema       string
	Name         string
	Attributes   []*Variable
	Functions    []*Function
	Procedures   []*Procedure
	Constructors []*Function
	Varray       *VarrayType
	NestedTable  *NestedTableType
}

// NewObjectType creates an object type.
func NewObjectType(schema, name string) *ObjectType {
	return &ObjectType{Schema: schema, Name: name}
}

// AddAttribute adds an attribute and returns the type for chaining.
func (n *ObjectType) AddAttribute(name string, typ DataType) *ObjectType {
	n.Attributes = append(n.Attributes, NewVariable(name, typ))
	return n
}

// Link attaches the object type to every member routine.
func (n *ObjectType) Link() {
	for _, f := range n.Functions {
		f.ObjectType = n
		f.Package = nil
	}
	for _, f := range n.Constructors {
		f.ObjectType = n
		f.Package = nil
	}
	for _, p := range n.Procedures {
		p.ObjectType = n
		p.Package = nil
	}
}

// Accept implements the Node interface for ObjectType.
func (n *ObjectType) Accept(visitor Visitor) error {
	return visitor.VisitObjectType(n)
}

// Trigger is a DML trigger on a table or view.
type Trigger struct {
	Schema string
	Name   string
	// Timing is BEFORE, AFTER or INSTEAD OF.
	Timing        string
	Events        []string
	UpdateColumns []string
	TableSchema   string
	Table         string
	ForEachRow    bool
	When          Expr
	Variables     []*Variable
	Body          []Statement
	Exception     *ExceptionBlock
}

// NewTrigger creates a row-level trigger.
func NewTrigger(schema, name, timing string, events []string, tableSchema, table string) *Trigger {
	upper := make([]string, len(events))
	for i, e := range events {
		upper[i] = strings.ToUpper(e)
	}
	return &Trigger{
		Schema:      schema,
		Name:        name,
		Timing:      strings.ToUpper(timing),
		Events:      upper,
		TableSchema: tableSchema,
		Table:       table,
		ForEachRow:  true,
	}
}

// Accept implements the Node interface for Trigger.
func (n *Trigger) Accept(visitor Visitor) error {
	return visitor.VisitTrigger(n)
}

// View is CREATE VIEW name [(cols)] AS query.
type View struct {
	Schema  string
	Name    string
	Columns []string
	Query   *SelectStatement
}

// NewView creates a view.
func NewView(schema, name string, query *SelectStatement) *View {
	return &View{Schema: schema, Name: name, Query: query}
}

// Accept implements the Node interface for View.
func (n *View) Accept(visitor Visitor) error {
	return visitor.VisitView(n)
}
