package unitfile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stokaro/ora2pg/core/ast"
)

type variableDoc struct {
	Name     string    `yaml:"name"`
	Type     string    `yaml:"type"`
	Constant bool      `yaml:"constant"`
	NotNull  bool      `yaml:"notNull"`
	Default  yaml.Node `yaml:"default"`
}

type parameterDoc struct {
	Name    string    `yaml:"name"`
	Type    string    `yaml:"type"`
	Mode    string    `yaml:"mode"`
	NoCopy  bool      `yaml:"noCopy"`
	Default yaml.Node `yaml:"default"`
}

type cursorDoc struct {
	Name       string         `yaml:"name"`
	Parameters []parameterDoc `yaml:"parameters"`
	ReturnType string         `yaml:"returnType"`
	Query      yaml.Node      `yaml:"query"`
}

type recordDoc struct {
	Name   string        `yaml:"name"`
	Fields []variableDoc `yaml:"fields"`
}

type varrayDoc struct {
	Name    string    `yaml:"name"`
	Size    yaml.Node `yaml:"size"`
	Element string    `yaml:"element"`
}

type tableTypeDoc struct {
	Name    string `yaml:"name"`
	Element string `yaml:"element"`
	IndexBy string `yaml:"indexBy"`
}

type subTypeDoc struct {
	Name    string `yaml:"name"`
	Base    string `yaml:"base"`
	NotNull bool   `yaml:"notNull"`
}

// typeDecls are the type declarations packages and routines share.
type typeDecls struct {
	RecordTypes []recordDoc    `yaml:"recordTypes"`
	VarrayTypes []varrayDoc    `yaml:"varrayTypes"`
	TableTypes  []tableTypeDoc `yaml:"tableTypes"`
}

type routineDoc struct {
	typeDecls `yaml:",inline"`

	Name          string         `yaml:"name"`
	Schema        string         `yaml:"schema"`
	Return        string         `yaml:"return"`
	Deterministic bool           `yaml:"deterministic"`
	Pipelined     bool           `yaml:"pipelined"`
	Parameters    []parameterDoc `yaml:"parameters"`
	Variables     []variableDoc  `yaml:"variables"`
	Cursors       []cursorDoc    `yaml:"cursors"`
	Exceptions    []string       `yaml:"exceptions"`
	Body          []yaml.Node    `yaml:"body"`
	Exception     []handlerDoc   `yaml:"exception"`
}

type packageDoc struct {
	typeDecls `yaml:",inline"`

	Schema     string        `yaml:"schema"`
	Name       string        `yaml:"name"`
	Variables  []variableDoc `yaml:"variables"`
	SubTypes   []subTypeDoc  `yaml:"subTypes"`
	Cursors    []cursorDoc   `yaml:"cursors"`
	Exceptions []string      `yaml:"exceptions"`
	Functions  []routineDoc  `yaml:"functions"`
	Procedures []routineDoc  `yaml:"procedures"`
	Body       []yaml.Node   `yaml:"body"`
}

type objectTypeDoc struct {
	Schema       string        `yaml:"schema"`
	Name         string        `yaml:"name"`
	Attributes   []variableDoc `yaml:"attributes"`
	Functions    []routineDoc  `yaml:"functions"`
	Procedures   []routineDoc  `yaml:"procedures"`
	Constructors []routineDoc  `yaml:"constructors"`
	Varray       *varrayDoc    `yaml:"varray"`
	TableType    *tableTypeDoc `yaml:"tableType"`
}

type triggerDoc struct {
	Schema        string        `yaml:"schema"`
	Name          string        `yaml:"name"`
	Timing        string        `yaml:"timing"`
	Events        []string      `yaml:"events"`
	UpdateColumns []string      `yaml:"updateColumns"`
	Table         string        `yaml:"table"`
	ForEachRow    *bool         `yaml:"forEachRow"`
	When          yaml.Node     `yaml:"when"`
	Variables     []variableDoc `yaml:"variables"`
	Body          []yaml.Node   `yaml:"body"`
	Exception     []handlerDoc  `yaml:"exception"`
}

type viewDoc struct {
	Schema  string    `yaml:"schema"`
	Name    string    `yaml:"name"`
	Columns []string  `yaml:"columns"`
	Query   yaml.Node `yaml:"query"`
}

func dataType(what, name, s string) (ast.DataType, error) {
	t, err := ParseDataType(s)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("%s %s: %v", what, name, err)}
	}
	return t, nil
}

func variables(docs []variableDoc) ([]*ast.Variable, error) {
	var out []*ast.Variable
	for i := range docs {
		d := &docs[i]
		typ, err := dataType("variable", d.Name, d.Type)
		if err != nil {
			return nil, err
		}
		def, err := expr(&d.Default)
		if err != nil {
			return nil, err
		}
		v := ast.NewVariable(d.Name, typ).SetDefault(def)
		v.Constant = d.Constant
		v.NotNull = d.NotNull
		out = append(out, v)
	}
	return out, nil
}

func parameters(docs []parameterDoc) ([]*ast.Parameter, error) {
	var out []*ast.Parameter
	for i := range docs {
		d := &docs[i]
		typ, err := dataType("parameter", d.Name, d.Type)
		if err != nil {
			return nil, err
		}
		p := ast.NewParameter(d.Name, typ)
		switch mode := ast.ParamMode(strings.Join(strings.Fields(strings.ToUpper(d.Mode)), " ")); mode {
		case "":
		case ast.ModeIn, ast.ModeOut, ast.ModeInOut:
			p.SetMode(mode)
		default:
			return nil, &Error{Message: fmt.Sprintf("parameter %s: unknown mode %q", d.Name, d.Mode)}
		}
		p.NoCopy = d.NoCopy
		if p.Default, err = expr(&d.Default); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func cursors(docs []cursorDoc) ([]*ast.CursorDecl, error) {
	var out []*ast.CursorDecl
	for i := range docs {
		d := &docs[i]
		q, err := query(&d.Query)
		if err != nil {
			return nil, fmt.Errorf("cursor %s: %w", d.Name, err)
		}
		params, err := parameters(d.Parameters)
		if err != nil {
			return nil, err
		}
		c := ast.NewCursorDecl(d.Name, q, params...)
		if c.ReturnType, err = optionalType(d.ReturnType); err != nil {
			return nil, &Error{Message: fmt.Sprintf("cursor %s: %v", d.Name, err)}
		}
		out = append(out, c)
	}
	return out, nil
}

func exceptionDecls(names []string) []*ast.ExceptionDecl {
	var out []*ast.ExceptionDecl
	for _, name := range names {
		out = append(out, &ast.ExceptionDecl{Name: name})
	}
	return out
}

func (d *typeDecls) build() ([]*ast.RecordType, []*ast.VarrayType, []*ast.NestedTableType, error) {
	var records []*ast.RecordType
	for i := range d.RecordTypes {
		r, err := recordType(&d.RecordTypes[i])
		if err != nil {
			return nil, nil, nil, err
		}
		records = append(records, r)
	}
	var varrays []*ast.VarrayType
	for i := range d.VarrayTypes {
		v, err := varrayType(&d.VarrayTypes[i])
		if err != nil {
			return nil, nil, nil, err
		}
		varrays = append(varrays, v)
	}
	var tables []*ast.NestedTableType
	for i := range d.TableTypes {
		t, err := tableType(&d.TableTypes[i])
		if err != nil {
			return nil, nil, nil, err
		}
		tables = append(tables, t)
	}
	return records, varrays, tables, nil
}

func recordType(d *recordDoc) (*ast.RecordType, error) {
	r := ast.NewRecordType(d.Name)
	for i := range d.Fields {
		f := &d.Fields[i]
		typ, err := dataType("field", d.Name+"."+f.Name, f.Type)
		if err != nil {
			return nil, err
		}
		def, err := expr(&f.Default)
		if err != nil {
			return nil, err
		}
		r.Fields = append(r.Fields, &ast.RecordField{Name: f.Name, Type: typ, NotNull: f.NotNull, Default: def})
	}
	return r, nil
}

func varrayType(d *varrayDoc) (*ast.VarrayType, error) {
	elem, err := dataType("varray", d.Name, d.Element)
	if err != nil {
		return nil, err
	}
	size, err := expr(&d.Size)
	if err != nil {
		return nil, err
	}
	return ast.NewVarrayType(d.Name, size, elem), nil
}

func tableType(d *tableTypeDoc) (*ast.NestedTableType, error) {
	elem, err := dataType("table type", d.Name, d.Element)
	if err != nil {
		return nil, err
	}
	t := ast.NewNestedTableType(d.Name, elem)
	if t.IndexBy, err = optionalType(d.IndexBy); err != nil {
		return nil, &Error{Message: fmt.Sprintf("table type %s: %v", d.Name, err)}
	}
	return t, nil
}

func (d *routineDoc) routine() (ast.Routine, error) {
	r := ast.Routine{Name: d.Name, Schema: d.Schema}
	if d.Name == "" {
		return r, &Error{Message: "routine name is required"}
	}
	var err error
	if r.Parameters, err = parameters(d.Parameters); err != nil {
		return r, err
	}
	if r.Variables, err = variables(d.Variables); err != nil {
		return r, err
	}
	if r.Cursors, err = cursors(d.Cursors); err != nil {
		return r, err
	}
	r.Exceptions = exceptionDecls(d.Exceptions)
	if r.RecordTypes, r.VarrayTypes, r.NestedTableTypes, err = d.typeDecls.build(); err != nil {
		return r, err
	}
	if r.Body, err = statements(d.Body); err != nil {
		return r, err
	}
	if r.Exception, err = exceptionBlock(d.Exception); err != nil {
		return r, err
	}
	return r, nil
}

func (d *routineDoc) function() (*ast.Function, error) {
	r, err := d.routine()
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", d.Name, err)
	}
	ret, err := dataType("function", d.Name, d.Return)
	if err != nil {
		return nil, err
	}
	fn := ast.NewFunction(d.Name, ret)
	fn.Routine = r
	fn.Deterministic = d.Deterministic
	fn.Pipelined = d.Pipelined
	return fn, nil
}

func (d *routineDoc) procedure() (*ast.Procedure, error) {
	if d.Return != "" {
		return nil, &Error{Message: fmt.Sprintf("procedure %s: procedures have no return type", d.Name)}
	}
	r, err := d.routine()
	if err != nil {
		return nil, fmt.Errorf("procedure %s: %w", d.Name, err)
	}
	return &ast.Procedure{Routine: r}, nil
}

func (d *packageDoc) build() (*ast.Package, error) {
	if d.Name == "" {
		return nil, &Error{Message: "package name is required"}
	}
	p := ast.NewPackage(d.Schema, d.Name)
	wrap := func(err error) error {
		return fmt.Errorf("package %s: %w", d.Name, err)
	}
	var err error
	if p.Variables, err = variables(d.Variables); err != nil {
		return nil, wrap(err)
	}
	for _, st := range d.SubTypes {
		base, err := dataType("subtype", st.Name, st.Base)
		if err != nil {
			return nil, wrap(err)
		}
		p.SubTypes = append(p.SubTypes, &ast.SubType{Name: st.Name, Base: base, NotNull: st.NotNull})
	}
	if p.Cursors, err = cursors(d.Cursors); err != nil {
		return nil, wrap(err)
	}
	p.Exceptions = exceptionDecls(d.Exceptions)
	if p.RecordTypes, p.VarrayTypes, p.NestedTableTypes, err = d.typeDecls.build(); err != nil {
		return nil, wrap(err)
	}
	for i := range d.Functions {
		fn, err := d.Functions[i].function()
		if err != nil {
			return nil, wrap(err)
		}
		p.Functions = append(p.Functions, fn)
	}
	for i := range d.Procedures {
		proc, err := d.Procedures[i].procedure()
		if err != nil {
			return nil, wrap(err)
		}
		p.Procedures = append(p.Procedures, proc)
	}
	if p.Body, err = statements(d.Body); err != nil {
		return nil, wrap(err)
	}
	return p, nil
}

func (d *objectTypeDoc) build() (*ast.ObjectType, error) {
	if d.Name == "" {
		return nil, &Error{Message: "object type name is required"}
	}
	o := ast.NewObjectType(d.Schema, d.Name)
	wrap := func(err error) error {
		return fmt.Errorf("object type %s: %w", d.Name, err)
	}
	var err error
	switch {
	case d.Varray != nil:
		if o.Varray, err = varrayType(d.Varray); err != nil {
			return nil, wrap(err)
		}
		return o, nil
	case d.TableType != nil:
		if o.NestedTable, err = tableType(d.TableType); err != nil {
			return nil, wrap(err)
		}
		return o, nil
	}
	if o.Attributes, err = variables(d.Attributes); err != nil {
		return nil, wrap(err)
	}
	for i := range d.Functions {
		fn, err := d.Functions[i].function()
		if err != nil {
			return nil, wrap(err)
		}
		o.Functions = append(o.Functions, fn)
	}
	for i := range d.Constructors {
		c := &d.Constructors[i]
		if c.Return == "" {
			c.Return = d.Name
		}
		fn, err := c.function()
		if err != nil {
			return nil, wrap(err)
		}
		o.Constructors = append(o.Constructors, fn)
	}
	for i := range d.Procedures {
		proc, err := d.Procedures[i].procedure()
		if err != nil {
			return nil, wrap(err)
		}
		o.Procedures = append(o.Procedures, proc)
	}
	return o, nil
}

func (d *triggerDoc) build() (*ast.Trigger, error) {
	if d.Name == "" || d.Table == "" {
		return nil, &Error{Message: "trigger needs a name and a table"}
	}
	tableSchema, table := splitQualified(d.Table)
	t := ast.NewTrigger(d.Schema, d.Name, d.Timing, d.Events, tableSchema, table)
	t.UpdateColumns = d.UpdateColumns
	if d.ForEachRow != nil {
		t.ForEachRow = *d.ForEachRow
	}
	wrap := func(err error) error {
		return fmt.Errorf("trigger %s: %w", d.Name, err)
	}
	var err error
	if t.When, err = expr(&d.When); err != nil {
		return nil, wrap(err)
	}
	if t.Variables, err = variables(d.Variables); err != nil {
		return nil, wrap(err)
	}
	if t.Body, err = statements(d.Body); err != nil {
		return nil, wrap(err)
	}
	if t.Exception, err = exceptionBlock(d.Exception); err != nil {
		return nil, wrap(err)
	}
	return t, nil
}

func (d *viewDoc) build() (*ast.View, error) {
	q, err := query(&d.Query)
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", d.Name, err)
	}
	v := ast.NewView(d.Schema, d.Name, q)
	v.Columns = d.Columns
	return v, nil
}
