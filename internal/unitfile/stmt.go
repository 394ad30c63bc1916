package unitfile

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stokaro/ora2pg/core/ast"
)

type ifDoc struct {
	Cond  yaml.Node   `yaml:"cond"`
	Then  []yaml.Node `yaml:"then"`
	ElsIf []struct {
		Cond yaml.Node   `yaml:"cond"`
		Then []yaml.Node `yaml:"then"`
	} `yaml:"elsif"`
	Else []yaml.Node `yaml:"else"`
}

type loopDoc struct {
	Label   string      `yaml:"label"`
	Cond    yaml.Node   `yaml:"cond"`
	Var     string      `yaml:"var"`
	Reverse bool        `yaml:"reverse"`
	Low     yaml.Node   `yaml:"low"`
	High    yaml.Node   `yaml:"high"`
	Record  string      `yaml:"record"`
	Cursor  string      `yaml:"cursor"`
	Args    []yaml.Node `yaml:"args"`
	Query   yaml.Node   `yaml:"query"`
	Body    []yaml.Node `yaml:"body"`
}

type exitDoc struct {
	Label string    `yaml:"label"`
	When  yaml.Node `yaml:"when"`
}

type selectIntoDoc struct {
	Columns []string  `yaml:"columns"`
	Into    []string  `yaml:"into"`
	Table   string    `yaml:"table"`
	Where   yaml.Node `yaml:"where"`
}

type insertDoc struct {
	Table   string      `yaml:"table"`
	Columns []string    `yaml:"columns"`
	Values  []yaml.Node `yaml:"values"`
	Query   yaml.Node   `yaml:"query"`
}

type updateDoc struct {
	Table string `yaml:"table"`
	Set   []struct {
		Column string    `yaml:"column"`
		Value  yaml.Node `yaml:"value"`
	} `yaml:"set"`
	Where     yaml.Node `yaml:"where"`
	CurrentOf string    `yaml:"currentOf"`
}

type openDoc struct {
	Cursor string      `yaml:"cursor"`
	Args   []yaml.Node `yaml:"args"`
	Query  yaml.Node   `yaml:"query"`
}

type fetchDoc struct {
	Cursor string    `yaml:"cursor"`
	Into   []string  `yaml:"into"`
	Bulk   bool      `yaml:"bulk"`
	Limit  yaml.Node `yaml:"limit"`
}

type raiseDoc struct {
	Exception string `yaml:"exception"`
	Message   string `yaml:"message"`
}

type callStmtDoc struct {
	Name string      `yaml:"name"`
	Args []yaml.Node `yaml:"args"`
	Into yaml.Node   `yaml:"into"`
}

type blockDoc struct {
	Label     string        `yaml:"label"`
	Variables []variableDoc `yaml:"variables"`
	Cursors   []cursorDoc   `yaml:"cursors"`
	Body      []yaml.Node   `yaml:"body"`
	Exception []handlerDoc  `yaml:"exception"`
}

type handlerDoc struct {
	When []string    `yaml:"when"`
	Then []yaml.Node `yaml:"then"`
}

func statements(nodes []yaml.Node) ([]ast.Statement, error) {
	var out []ast.Statement
	for i := range nodes {
		s, err := statement(&nodes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// statement decodes one statement. The bare scalars null, return, raise,
// exit and continue stand for the argument-less forms.
func statement(n *yaml.Node) (ast.Statement, error) {
	if n.Kind == yaml.ScalarNode {
		if n.ShortTag() == "!!null" {
			return &ast.NullStatement{}, nil
		}
		switch strings.ToLower(n.Value) {
		case "null":
			return &ast.NullStatement{}, nil
		case "return":
			return ast.NewReturn(nil), nil
		case "raise":
			return ast.NewRaise(""), nil
		case "exit":
			return ast.NewExit(nil), nil
		case "continue":
			return &ast.ContinueStatement{}, nil
		}
		return nil, errorf(n, "unknown statement %q", n.Value)
	}
	key, v, err := singleKey(n, "statement")
	if err != nil {
		return nil, err
	}

	switch key {
	case "assign":
		if v.Kind != yaml.SequenceNode || len(v.Content) != 2 {
			return nil, errorf(v, "assign must be [target, value]")
		}
		target, err := requiredExpr(v.Content[0])
		if err != nil {
			return nil, err
		}
		value, err := requiredExpr(v.Content[1])
		if err != nil {
			return nil, err
		}
		return ast.NewAssignment(target, value), nil
	case "if":
		return ifStatement(v)
	case "loop", "while", "for", "forEach":
		return loopStatement(key, v)
	case "exit", "continue":
		var d exitDoc
		if isSet(v) && v.ShortTag() != "!!null" {
			if err := v.Decode(&d); err != nil {
				return nil, errorf(v, "%s: %v", key, err)
			}
		}
		when, err := expr(&d.When)
		if err != nil {
			return nil, err
		}
		if key == "exit" {
			return &ast.ExitStatement{Label: d.Label, When: when}, nil
		}
		return &ast.ContinueStatement{Label: d.Label, When: when}, nil
	case "selectInto", "bulkCollect":
		var d selectIntoDoc
		if err := v.Decode(&d); err != nil {
			return nil, errorf(v, "%s: %v", key, err)
		}
		if len(d.Columns) == 0 || len(d.Into) == 0 || d.Table == "" {
			return nil, errorf(v, "%s needs columns, into and table", key)
		}
		where, err := expr(&d.Where)
		if err != nil {
			return nil, err
		}
		schema, table := splitQualified(d.Table)
		if key == "selectInto" {
			return ast.NewSelectInto(d.Columns, d.Into, schema, table, where), nil
		}
		return ast.NewBulkCollect(d.Columns, d.Into, schema, table, where), nil
	case "insert":
		return insertStatement(v)
	case "update":
		return updateStatement(v)
	case "delete":
		var d updateDoc
		if err := v.Decode(&d); err != nil {
			return nil, errorf(v, "delete: %v", err)
		}
		where, err := expr(&d.Where)
		if err != nil {
			return nil, err
		}
		schema, table := splitQualified(d.Table)
		del := ast.NewDelete(schema, table, where)
		del.CurrentOf = d.CurrentOf
		return del, nil
	case "open":
		var d openDoc
		if err := v.Decode(&d); err != nil {
			return nil, errorf(v, "open: %v", err)
		}
		args, err := exprs(d.Args)
		if err != nil {
			return nil, err
		}
		open := ast.NewOpen(d.Cursor, args...)
		if isSet(&d.Query) {
			if open.Query, err = query(&d.Query); err != nil {
				return nil, err
			}
		}
		return open, nil
	case "fetch":
		var d fetchDoc
		if err := v.Decode(&d); err != nil {
			return nil, errorf(v, "fetch: %v", err)
		}
		limit, err := expr(&d.Limit)
		if err != nil {
			return nil, err
		}
		fetch := ast.NewFetch(d.Cursor, d.Into...)
		fetch.Bulk = d.Bulk
		fetch.Limit = limit
		return fetch, nil
	case "close":
		return ast.NewClose(v.Value), nil
	case "raise":
		if v.Kind == yaml.ScalarNode {
			return ast.NewRaise(v.Value), nil
		}
		var d raiseDoc
		if err := v.Decode(&d); err != nil {
			return nil, errorf(v, "raise: %v", err)
		}
		return &ast.RaiseStatement{Exception: d.Exception, Message: d.Message}, nil
	case "return":
		if v.ShortTag() == "!!null" {
			return ast.NewReturn(nil), nil
		}
		value, err := requiredExpr(v)
		if err != nil {
			return nil, err
		}
		return ast.NewReturn(value), nil
	case "call":
		return callStatement(v)
	case "block":
		return block(v)
	case "comment":
		return ast.NewComment(v.Value), nil
	}
	return nil, errorf(n, "unknown statement %q", key)
}

func ifStatement(v *yaml.Node) (ast.Statement, error) {
	var d ifDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "if: %v", err)
	}
	cond, err := requiredExpr(&d.Cond)
	if err != nil {
		return nil, err
	}
	then, err := statements(d.Then)
	if err != nil {
		return nil, err
	}
	stmt := ast.NewIf(cond, then...)
	for i := range d.ElsIf {
		c, err := requiredExpr(&d.ElsIf[i].Cond)
		if err != nil {
			return nil, err
		}
		body, err := statements(d.ElsIf[i].Then)
		if err != nil {
			return nil, err
		}
		stmt.AddElsIf(c, body...)
	}
	if stmt.Else, err = statements(d.Else); err != nil {
		return nil, err
	}
	return stmt, nil
}

func loopStatement(key string, v *yaml.Node) (ast.Statement, error) {
	var d loopDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "%s: %v", key, err)
	}
	body, err := statements(d.Body)
	if err != nil {
		return nil, err
	}

	switch key {
	case "while":
		cond, err := requiredExpr(&d.Cond)
		if err != nil {
			return nil, err
		}
		loop := ast.NewWhile(cond, body...)
		loop.Label = d.Label
		return loop, nil
	case "for":
		if d.Var == "" {
			return nil, errorf(v, "for needs var")
		}
		low, err := requiredExpr(&d.Low)
		if err != nil {
			return nil, err
		}
		high, err := requiredExpr(&d.High)
		if err != nil {
			return nil, err
		}
		loop := ast.NewForRange(d.Var, low, high, body...)
		loop.Label = d.Label
		loop.Reverse = d.Reverse
		return loop, nil
	case "forEach":
		if d.Record == "" {
			return nil, errorf(v, "forEach needs record")
		}
		var loop *ast.ForCursorStatement
		switch {
		case d.Cursor != "" && !isSet(&d.Query):
			args, err := exprs(d.Args)
			if err != nil {
				return nil, err
			}
			loop = ast.NewForCursor(d.Record, d.Cursor, args, body...)
		case d.Cursor == "" && isSet(&d.Query):
			q, err := query(&d.Query)
			if err != nil {
				return nil, err
			}
			loop = ast.NewForQuery(d.Record, q, body...)
		default:
			return nil, errorf(v, "forEach needs exactly one of cursor and query")
		}
		loop.Label = d.Label
		return loop, nil
	}
	loop := ast.NewLoop(body...)
	loop.Label = d.Label
	return loop, nil
}

func insertStatement(v *yaml.Node) (ast.Statement, error) {
	var d insertDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "insert: %v", err)
	}
	values, err := exprs(d.Values)
	if err != nil {
		return nil, err
	}
	schema, table := splitQualified(d.Table)
	ins := ast.NewInsert(schema, table, d.Columns, values...)
	if isSet(&d.Query) {
		if ins.Query, err = query(&d.Query); err != nil {
			return nil, err
		}
	}
	if len(ins.Values) == 0 && ins.Query == nil {
		return nil, errorf(v, "insert needs values or a query")
	}
	return ins, nil
}

func updateStatement(v *yaml.Node) (ast.Statement, error) {
	var d updateDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "update: %v", err)
	}
	schema, table := splitQualified(d.Table)
	upd := ast.NewUpdate(schema, table)
	for i := range d.Set {
		value, err := requiredExpr(&d.Set[i].Value)
		if err != nil {
			return nil, err
		}
		upd.AddSet(d.Set[i].Column, value)
	}
	if len(upd.Set) == 0 {
		return nil, errorf(v, "update needs at least one set entry")
	}
	where, err := expr(&d.Where)
	if err != nil {
		return nil, err
	}
	upd.SetWhere(where)
	upd.CurrentOf = d.CurrentOf
	return upd, nil
}

// callStatement splits name into schema, package and routine: a two-part
// name is package.routine.
func callStatement(v *yaml.Node) (ast.Statement, error) {
	var d callStmtDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "call: %v", err)
	}
	args, err := exprs(d.Args)
	if err != nil {
		return nil, err
	}
	var schema, pkg, routine string
	parts := strings.Split(d.Name, ".")
	switch len(parts) {
	case 1:
		routine = parts[0]
	case 2:
		pkg, routine = parts[0], parts[1]
	case 3:
		schema, pkg, routine = parts[0], parts[1], parts[2]
	default:
		return nil, errorf(v, "invalid routine name %q", d.Name)
	}
	if routine == "" {
		return nil, errorf(v, "call needs a name")
	}
	stmt := ast.NewCallStatement(schema, pkg, routine, args...)
	if stmt.Into, err = expr(&d.Into); err != nil {
		return nil, err
	}
	return stmt, nil
}

func block(v *yaml.Node) (ast.Statement, error) {
	var d blockDoc
	if err := v.Decode(&d); err != nil {
		return nil, errorf(v, "block: %v", err)
	}
	b := &ast.Block{Label: d.Label}
	var err error
	if b.Variables, err = variables(d.Variables); err != nil {
		return nil, err
	}
	if b.Cursors, err = cursors(d.Cursors); err != nil {
		return nil, err
	}
	if b.Body, err = statements(d.Body); err != nil {
		return nil, err
	}
	if b.Exception, err = exceptionBlock(d.Exception); err != nil {
		return nil, err
	}
	return b, nil
}

// exceptionBlock returns nil when there are no handlers. WHEN OTHERS is an
// empty name list.
func exceptionBlock(docs []handlerDoc) (*ast.ExceptionBlock, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	eb := ast.NewExceptionBlock()
	for i := range docs {
		body, err := statements(docs[i].Then)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, name := range docs[i].When {
			if strings.EqualFold(name, "OTHERS") {
				names = nil
				break
			}
			names = append(names, name)
		}
		eb.When(names, body...)
	}
	return eb, nil
}
