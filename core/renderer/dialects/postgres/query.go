package postgres

import (
	"fmt"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/mapping"
	"github.com/stokaro/ora2pg/core/renderer/types"
)

// query renders a complete query on a single line. CTE names of the WITH
// list are visible in the WITH bodies and in the main query only.
func (r *Renderer) query(s scope, q *ast.SelectStatement) (string, error) {
	if q == nil || q.Body == nil {
		return "", types.ErrMissingChild
	}
	s = s.withCTEs(q.CTENames())

	var b strings.Builder
	if len(q.With) > 0 {
		b.WriteString("WITH ")
		if q.Recursive {
			b.WriteString("RECURSIVE ")
		}
		for i, cte := range q.With {
			if i > 0 {
				b.WriteString(", ")
			}
			body, err := r.query(s, cte.Query)
			if err != nil {
				return "", fmt.Errorf("cte %s: %w", cte.Name, err)
			}
			b.WriteString(strings.ToUpper(cte.Name))
			if len(cte.Columns) > 0 {
				b.WriteString(" (" + strings.Join(cte.Columns, ", ") + ")")
			}
			b.WriteString(" AS (" + body + ")")
		}
		b.WriteString(" ")
	}

	body, err := r.queryExpr(s, q.Body)
	if err != nil {
		return "", err
	}
	b.WriteString(body)

	if len(q.OrderBy) > 0 {
		order, err := r.orderBy(s, q.OrderBy)
		if err != nil {
			return "", err
		}
		b.WriteString(" ORDER BY " + order)
	}
	if q.Offset != nil {
		off, err := r.expr(s, q.Offset)
		if err != nil {
			return "", err
		}
		b.WriteString(" OFFSET " + off + " ROWS")
	}
	if q.Fetch != nil {
		fetch, err := r.expr(s, q.Fetch)
		if err != nil {
			return "", err
		}
		b.WriteString(" FETCH FIRST " + fetch + " ROWS ONLY")
	}
	if q.ForUpdate != nil {
		b.WriteString(" FOR UPDATE")
		if lock := strings.TrimSpace(*q.ForUpdate); lock != "" {
			b.WriteString(" " + lock)
		}
	}
	return b.String(), nil
}

func (r *Renderer) queryExpr(s scope, q ast.QueryExpr) (string, error) {
	switch n := q.(type) {
	case *ast.QueryBlock:
		return r.queryBlock(s, n)
	case *ast.SetOperation:
		if n.Left == nil || n.Right == nil {
			return "", types.ErrMissingChild
		}
		left, err := r.queryExpr(s, n.Left)
		if err != nil {
			return "", err
		}
		right, err := r.queryExpr(s, n.Right)
		if err != nil {
			return "", err
		}
		if _, nested := n.Right.(*ast.SetOperation); nested {
			right = "(" + right + ")"
		}
		return left + " " + mapping.SetOperator(n.Op) + " " + right, nil
	case nil:
		return "", types.ErrMissingChild
	}
	return "", fmt.Errorf("postgres renderer: query %T: %w", q, types.ErrUnsupportedNode)
}

func (r *Renderer) queryBlock(s scope, n *ast.QueryBlock) (string, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	if n.Distinct {
		b.WriteString("DISTINCT ")
	}
	items := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		switch {
		case item.Star && item.StarTable != "":
			items = append(items, item.StarTable+".*")
		case item.Star:
			items = append(items, "*")
		default:
			e, err := r.expr(s, item.Expr)
			if err != nil {
				return "", err
			}
			if item.Alias != "" {
				e += " AS " + item.Alias
			}
			items = append(items, e)
		}
	}
	b.WriteString(strings.Join(items, ", "))

	from, err := r.from(s, n.From)
	if err != nil {
		return "", err
	}
	if from != "" {
		b.WriteString(" FROM " + from)
	}
	if n.Where != nil {
		where, err := r.expr(s, n.Where)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE " + where)
	}
	if len(n.GroupBy) > 0 {
		group, err := r.exprList(s, n.GroupBy)
		if err != nil {
			return "", err
		}
		b.WriteString(" GROUP BY " + strings.Join(group, ", "))
	}
	if n.Having != nil {
		having, err := r.expr(s, n.Having)
		if err != nil {
			return "", err
		}
		b.WriteString(" HAVING " + having)
	}
	return b.String(), nil
}

// from renders the FROM list. DUAL has no PostgreSQL counterpart and is dropped.
func (r *Renderer) from(s scope, refs []*ast.TableRef) (string, error) {
	var b strings.Builder
	for _, ref := range refs {
		if ref.Subquery == nil && isDual(ref) {
			continue
		}
		text, err := r.tableRef(s, ref)
		if err != nil {
			return "", err
		}
		switch {
		case b.Len() == 0:
			b.WriteString(text)
		case ref.Join == ast.JoinNone:
			b.WriteString(", " + text)
		default:
			b.WriteString(" " + string(ref.Join) + " " + text)
			if ref.On != nil {
				on, err := r.expr(s, ref.On)
				if err != nil {
					return "", err
				}
				b.WriteString(" ON " + on)
			}
		}
	}
	return b.String(), nil
}

func isDual(ref *ast.TableRef) bool {
	return strings.EqualFold(ref.Name, "DUAL") && (ref.Schema == "" || strings.EqualFold(ref.Schema, "SYS"))
}

func (r *Renderer) tableRef(s scope, ref *ast.TableRef) (string, error) {
	var text string
	if ref.Subquery != nil {
		q, err := r.query(s, ref.Subquery)
		if err != nil {
			return "", err
		}
		text = "(" + q + ")"
	} else {
		text = r.tableName(s, ref.Schema, ref.Name)
	}
	if ref.Alias != "" {
		text += " " + ref.Alias
	}
	return text, nil
}

// tableName resolves the schema of a table, view or synonym reference.
// Active CTE names stay bare. Without an explicit schema the first user
// schema is the starting point; lookups that fail fall back to the schema
// they started from.
func (r *Renderer) tableName(s scope, schema, table string) string {
	if schema == "" && s.isCTE(table) {
		return strings.ToUpper(table)
	}
	hint := schema
	if hint == "" {
		hint = r.symbols.DefaultSchema()
	}
	if hint == "" {
		hint = s.schema()
	}
	resolved, err := r.symbols.SchemaForTable(table, hint)
	if err != nil {
		resolved = hint
	}
	return mapping.ObjectName(resolved, r.symbols.ResolveTableName(hint, table))
}

func (r *Renderer) orderBy(s scope, items []*ast.OrderItem) (string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		e, err := r.expr(s, item.Expr)
		if err != nil {
			return "", err
		}
		if item.Desc {
			e += " DESC"
		}
		if item.NullsFirst != nil {
			if *item.NullsFirst {
				e += " NULLS FIRST"
			} else {
				e += " NULLS LAST"
			}
		}
		out = append(out, e)
	}
	return strings.Join(out, ", "), nil
}

// TableName resolves a table reference outside of any statement, the way
// FROM clauses and trigger targets are resolved.
func (r *Renderer) TableName(schema, table string) string {
	return r.tableName(r.root(), schema, table)
}
