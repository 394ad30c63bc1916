package oracle

import (
	"fmt"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/renderer/types"
)

func query(q *ast.SelectStatement) (string, error) {
	if q == nil || q.Body == nil {
		return "", types.ErrMissingChild
	}
	var b strings.Builder
	if len(q.With) > 0 {
		ctes := make([]string, 0, len(q.With))
		for _, cte := range q.With {
			body, err := query(cte.Query)
			if err != nil {
				return "", err
			}
			head := cte.Name
			if len(cte.Columns) > 0 {
				head += " (" + strings.Join(cte.Columns, ", ") + ")"
			}
			ctes = append(ctes, head+" AS ("+body+")")
		}
		b.WriteString("WITH ")
		if q.Recursive {
			b.WriteString("RECURSIVE ")
		}
		b.WriteString(strings.Join(ctes, ", ") + " ")
	}
	body, err := queryExpr(q.Body)
	if err != nil {
		return "", err
	}
	b.WriteString(body)
	if len(q.OrderBy) > 0 {
		order, err := orderBy(q.OrderBy)
		if err != nil {
			return "", err
		}
		b.WriteString(" ORDER BY " + order)
	}
	if q.Offset != nil {
		off, err := expr(q.Offset)
		if err != nil {
			return "", err
		}
		b.WriteString(" OFFSET " + off + " ROWS")
	}
	if q.Fetch != nil {
		fetch, err := expr(q.Fetch)
		if err != nil {
			return "", err
		}
		b.WriteString(" FETCH FIRST " + fetch + " ROWS ONLY")
	}
	if q.ForUpdate != nil {
		b.WriteString(strings.TrimRight(" FOR UPDATE "+*q.ForUpdate, " "))
	}
	return b.String(), nil
}

func queryExpr(q ast.QueryExpr) (string, error) {
	switch n := q.(type) {
	case *ast.QueryBlock:
		return queryBlock(n)
	case *ast.SetOperation:
		left, err := queryExpr(n.Left)
		if err != nil {
			return "", err
		}
		right, err := queryExpr(n.Right)
		if err != nil {
			return "", err
		}
		if _, nested := n.Right.(*ast.SetOperation); nested {
			right = "(" + right + ")"
		}
		return left + " " + string(n.Op) + " " + right, nil
	case nil:
		return "", types.ErrMissingChild
	}
	return "", fmt.Errorf("oracle renderer: query %T: %w", q, types.ErrUnsupportedNode)
}

func queryBlock(n *ast.QueryBlock) (string, error) {
	items := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		switch {
		case item.Star && item.StarTable != "":
			items = append(items, item.StarTable+".*")
		case item.Star:
			items = append(items, "*")
		default:
			e, err := expr(item.Expr)
			if err != nil {
				return "", err
			}
			if item.Alias != "" {
				e += " " + item.Alias
			}
			items = append(items, e)
		}
	}
	out := "SELECT "
	if n.Distinct {
		out += "DISTINCT "
	}
	out += strings.Join(items, ", ")

	var from strings.Builder
	for i, ref := range n.From {
		text := qualified(ref.Schema, ref.Name)
		if ref.Subquery != nil {
			q, err := query(ref.Subquery)
			if err != nil {
				return "", err
			}
			text = "(" + q + ")"
		}
		if ref.Alias != "" {
			text += " " + ref.Alias
		}
		switch {
		case i == 0:
			from.WriteString(text)
		case ref.Join == ast.JoinNone:
			from.WriteString(", " + text)
		default:
			from.WriteString(" " + string(ref.Join) + " " + text)
			if ref.On != nil {
				on, err := expr(ref.On)
				if err != nil {
					return "", err
				}
				from.WriteString(" ON " + on)
			}
		}
	}
	if from.Len() > 0 {
		out += " FROM " + from.String()
	}
	if n.Where != nil {
		where, err := expr(n.Where)
		if err != nil {
			return "", err
		}
		out += " WHERE " + where
	}
	if len(n.GroupBy) > 0 {
		group, err := exprList(n.GroupBy)
		if err != nil {
			return "", err
		}
		out += " GROUP BY " + strings.Join(group, ", ")
	}
	if n.Having != nil {
		having, err := expr(n.Having)
		if err != nil {
			return "", err
		}
		out += " HAVING " + having
	}
	return out, nil
}

func orderBy(items []*ast.OrderItem) (string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		e, err := expr(item.Expr)
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

func qualified(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}

func dataType(t ast.DataType) string {
	switch n := t.(type) {
	case *ast.NativeType:
		switch {
		case n.Length != nil:
			return fmt.Sprintf("%s(%d)", n.Name, *n.Length)
		case n.Precision != nil && n.Scale != nil:
			return fmt.Sprintf("%s(%d,%d)", n.Name, *n.Precision, *n.Scale)
		case n.Precision != nil:
			return fmt.Sprintf("%s(%d)", n.Name, *n.Precision)
		}
		return n.Name
	case *ast.CustomType:
		return n.Name
	case *ast.RowType:
		return qualified(n.Schema, n.Table) + "%ROWTYPE"
	case *ast.ColumnType:
		return qualified(n.Schema, n.Table) + "." + n.Column + "%TYPE"
	}
	return ""
}
