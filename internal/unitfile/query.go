package unitfile

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stokaro/ora2pg/core/ast"
)

type queryDoc struct {
	With      []cteDoc    `yaml:"with"`
	Recursive bool        `yaml:"recursive"`
	Distinct  bool        `yaml:"distinct"`
	Select    []yaml.Node `yaml:"select"`
	From      []fromDoc   `yaml:"from"`
	Where     yaml.Node   `yaml:"where"`
	GroupBy   []yaml.Node `yaml:"groupBy"`
	Having    yaml.Node   `yaml:"having"`
	SetOp     *setOpDoc   `yaml:"setOp"`
	OrderBy   []orderDoc  `yaml:"orderBy"`
	Offset    yaml.Node   `yaml:"offset"`
	Fetch     yaml.Node   `yaml:"fetch"`
	ForUpdate *string     `yaml:"forUpdate"`
}

type cteDoc struct {
	Name    string    `yaml:"name"`
	Columns []string  `yaml:"columns"`
	Query   yaml.Node `yaml:"query"`
}

type fromDoc struct {
	Table    string    `yaml:"table"`
	Alias    string    `yaml:"alias"`
	Subquery yaml.Node `yaml:"subquery"`
	Join     string    `yaml:"join"`
	On       yaml.Node `yaml:"on"`
}

type setOpDoc struct {
	Op    string    `yaml:"op"`
	Left  yaml.Node `yaml:"left"`
	Right yaml.Node `yaml:"right"`
}

type orderDoc struct {
	Expr       yaml.Node `yaml:"expr"`
	Desc       bool      `yaml:"desc"`
	NullsFirst *bool     `yaml:"nullsFirst"`
}

type selectItemDoc struct {
	Expr  yaml.Node `yaml:"expr"`
	Alias string    `yaml:"alias"`
}

// query decodes a full query. A query body is either a block (select, from,
// where, ...) or a setOp whose sides are blocks or set operations themselves.
func query(n *yaml.Node) (*ast.SelectStatement, error) {
	if !isSet(n) || n.Kind != yaml.MappingNode {
		return nil, errorf(n, "query must be a map")
	}
	var d queryDoc
	if err := n.Decode(&d); err != nil {
		return nil, errorf(n, "query: %v", err)
	}
	body, err := queryBody(n, &d)
	if err != nil {
		return nil, err
	}
	stmt := &ast.SelectStatement{Body: body, Recursive: d.Recursive, ForUpdate: d.ForUpdate}
	for i := range d.With {
		cte := &d.With[i]
		q, err := query(&cte.Query)
		if err != nil {
			return nil, err
		}
		stmt.AddCTE(ast.NewCTE(cte.Name, q, cte.Columns...))
	}
	if stmt.OrderBy, err = orderItems(d.OrderBy); err != nil {
		return nil, err
	}
	if stmt.Offset, err = expr(&d.Offset); err != nil {
		return nil, err
	}
	if stmt.Fetch, err = expr(&d.Fetch); err != nil {
		return nil, err
	}
	return stmt, nil
}

func queryBody(n *yaml.Node, d *queryDoc) (ast.QueryExpr, error) {
	if d.SetOp == nil {
		return queryBlock(n, d)
	}
	if len(d.Select) > 0 || len(d.From) > 0 {
		return nil, errorf(n, "a query has either select or setOp, not both")
	}
	op := ast.SetOp(strings.ToUpper(d.SetOp.Op))
	switch op {
	case ast.SetUnion, ast.SetUnionAll, ast.SetIntersect, ast.SetMinus:
	default:
		return nil, errorf(n, "unknown set operator %q", d.SetOp.Op)
	}
	left, err := setSide(&d.SetOp.Left)
	if err != nil {
		return nil, err
	}
	right, err := setSide(&d.SetOp.Right)
	if err != nil {
		return nil, err
	}
	return &ast.SetOperation{Op: op, Left: left, Right: right}, nil
}

func setSide(n *yaml.Node) (ast.QueryExpr, error) {
	if !isSet(n) {
		return nil, errorf(n, "set operation side is required")
	}
	var d queryDoc
	if err := n.Decode(&d); err != nil {
		return nil, errorf(n, "query: %v", err)
	}
	return queryBody(n, &d)
}

func queryBlock(n *yaml.Node, d *queryDoc) (*ast.QueryBlock, error) {
	if len(d.Select) == 0 {
		return nil, errorf(n, "query block needs a select list")
	}
	block := &ast.QueryBlock{Distinct: d.Distinct}
	for i := range d.Select {
		item, err := selectItem(&d.Select[i])
		if err != nil {
			return nil, err
		}
		block.Items = append(block.Items, item)
	}
	for i := range d.From {
		ref, err := tableRef(&d.From[i])
		if err != nil {
			return nil, err
		}
		block.AddFrom(ref)
	}
	var err error
	if block.Where, err = expr(&d.Where); err != nil {
		return nil, err
	}
	if block.GroupBy, err = exprs(d.GroupBy); err != nil {
		return nil, err
	}
	if block.Having, err = expr(&d.Having); err != nil {
		return nil, err
	}
	return block, nil
}

// selectItem reads "*", "t.*", {expr: e, alias: a} or a bare expression.
func selectItem(n *yaml.Node) (*ast.SelectItem, error) {
	if n.Kind == yaml.ScalarNode && strings.HasSuffix(n.Value, "*") {
		table := strings.TrimSuffix(strings.TrimSuffix(n.Value, "*"), ".")
		return ast.NewStarItem(table), nil
	}
	if n.Kind == yaml.MappingNode && hasKey(n, "expr") {
		var d selectItemDoc
		if err := n.Decode(&d); err != nil {
			return nil, errorf(n, "select item: %v", err)
		}
		e, err := requiredExpr(&d.Expr)
		if err != nil {
			return nil, err
		}
		return ast.NewSelectItem(e, d.Alias), nil
	}
	e, err := requiredExpr(n)
	if err != nil {
		return nil, err
	}
	return ast.NewSelectItem(e, ""), nil
}

func tableRef(d *fromDoc) (*ast.TableRef, error) {
	var ref *ast.TableRef
	switch {
	case isSet(&d.Subquery):
		q, err := query(&d.Subquery)
		if err != nil {
			return nil, err
		}
		ref = &ast.TableRef{Subquery: q, Alias: d.Alias}
	case d.Table != "":
		schema, name := splitQualified(d.Table)
		ref = ast.NewTableRef(schema, name, d.Alias)
	default:
		return nil, errorf(&d.On, "from entry needs a table or a subquery")
	}

	join := ast.JoinKind(strings.ToUpper(strings.TrimSpace(d.Join)))
	switch join {
	case ast.JoinNone, ast.JoinInner, ast.JoinLeft, ast.JoinRight, ast.JoinFull, ast.JoinCross:
	default:
		return nil, errorf(&d.On, "unknown join %q", d.Join)
	}
	ref.Join = join
	on, err := expr(&d.On)
	if err != nil {
		return nil, err
	}
	ref.On = on
	return ref, nil
}

func orderItems(docs []orderDoc) ([]*ast.OrderItem, error) {
	var out []*ast.OrderItem
	for i := range docs {
		e, err := requiredExpr(&docs[i].Expr)
		if err != nil {
			return nil, err
		}
		item := ast.NewOrderItem(e, docs[i].Desc)
		item.NullsFirst = docs[i].NullsFirst
		out = append(out, item)
	}
	return out, nil
}

func hasKey(n *yaml.Node, key string) bool {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}
