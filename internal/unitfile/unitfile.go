// Package unitfile decodes the YAML interchange format that carries parsed
// PL/SQL translation units and the catalog they are resolved against.
//
// A document looks like:
//
//	userSchemas: [HR]
//	catalog:
//	  tables:
//	    - {schema: HR, name: EMPLOYEES, columns: [{name: SALARY, dataType: NUMBER(10,2)}]}
//	packages:
//	  - schema: HR
//	    name: EMP_PKG
//	    variables:
//	      - {name: g_count, type: NUMBER, default: 0}
//	    functions:
//	      - name: next_count
//	        return: NUMBER
//	        body:
//	          - assign: [g_count, {bin: [g_count, "+", 1]}]
//	          - return: g_count
//
// Expressions and statements are single-key maps naming the construct
// (ident, num, str, bin, call, if, loop, ...). Plain scalars are shorthand:
// numbers and booleans are literals, null is NULL and any other string is a
// dotted identifier, or a cursor attribute when it contains a '%'.
package unitfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/transform"
	dbtypes "github.com/stokaro/ora2pg/dbschema/types"
)

// File is a decoded document.
type File struct {
	UserSchemas []string
	Catalog     *dbtypes.Catalog
	Units       *transform.Units
}

// Error reports a malformed construct together with its position.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

func errorf(n *yaml.Node, format string, args ...any) error {
	e := &Error{Message: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Line, e.Column = n.Line, n.Column
	}
	return e
}

type document struct {
	UserSchemas []string        `yaml:"userSchemas"`
	Catalog     dbtypes.Catalog `yaml:"catalog"`
	Packages    []packageDoc    `yaml:"packages"`
	ObjectTypes []objectTypeDoc `yaml:"objectTypes"`
	Functions   []routineDoc    `yaml:"functions"`
	Procedures  []routineDoc    `yaml:"procedures"`
	Triggers    []triggerDoc    `yaml:"triggers"`
	Views       []viewDoc       `yaml:"views"`
}

// Load reads and decodes the document at path.
func Load(fs afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading unit file %s: %w", path, err)
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode builds the translation units of data. Unknown fields are rejected.
// Routines are linked to their packages and object types once everything is
// built; standalone routines without a schema get the first user schema.
func Decode(data []byte) (*File, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	units := &transform.Units{}
	for i := range doc.Packages {
		p, err := doc.Packages[i].build()
		if err != nil {
			return nil, err
		}
		units.Packages = append(units.Packages, p)
	}
	for i := range doc.ObjectTypes {
		o, err := doc.ObjectTypes[i].build()
		if err != nil {
			return nil, err
		}
		units.ObjectTypes = append(units.ObjectTypes, o)
	}
	for i := range doc.Functions {
		f, err := doc.Functions[i].function()
		if err != nil {
			return nil, err
		}
		units.Functions = append(units.Functions, f)
	}
	for i := range doc.Procedures {
		p, err := doc.Procedures[i].procedure()
		if err != nil {
			return nil, err
		}
		units.Procedures = append(units.Procedures, p)
	}
	for i := range doc.Triggers {
		t, err := doc.Triggers[i].build()
		if err != nil {
			return nil, err
		}
		units.Triggers = append(units.Triggers, t)
	}
	for i := range doc.Views {
		v, err := doc.Views[i].build()
		if err != nil {
			return nil, err
		}
		units.Views = append(units.Views, v)
	}

	if err := link(units, doc.UserSchemas); err != nil {
		return nil, err
	}

	return &File{
		UserSchemas: doc.UserSchemas,
		Catalog:     &doc.Catalog,
		Units:       units,
	}, nil
}

// link is the second build phase: owners are attached to their routines.
func link(units *transform.Units, userSchemas []string) error {
	for _, p := range units.Packages {
		p.Link()
	}
	for _, o := range units.ObjectTypes {
		o.Link()
	}
	defaultSchema := ""
	if len(userSchemas) > 0 {
		defaultSchema = userSchemas[0]
	}
	for _, f := range units.Functions {
		if err := standalone(&f.Routine, "function", defaultSchema); err != nil {
			return err
		}
	}
	for _, p := range units.Procedures {
		if err := standalone(&p.Routine, "procedure", defaultSchema); err != nil {
			return err
		}
	}
	return nil
}

func standalone(r *ast.Routine, kind, defaultSchema string) error {
	if r.Schema != "" {
		return nil
	}
	if defaultSchema == "" {
		return &Error{Message: fmt.Sprintf("%s %s: schema is required when no user schema is declared", kind, r.Name)}
	}
	r.Schema = defaultSchema
	return nil
}

// splitQualified splits "SCHEMA.NAME" at the last dot.
func splitQualified(name string) (schema, object string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// isSet reports whether an optional node was present in the document.
func isSet(n *yaml.Node) bool {
	return n != nil && n.Kind != 0
}
