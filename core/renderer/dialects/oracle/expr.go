package oracle

import (
	"fmt"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/renderer/types"
)

// expr renders an expression in PL/SQL syntax on a single line.
func expr(e ast.Expr) (string, error) {
	switch n := e.(type) {
	case nil:
		return "", types.ErrMissingChild
	case *ast.Literal:
		return literal(n), nil
	case *ast.Ident:
		return n.Name(), nil
	case *ast.BinaryExpr:
		if n.Left == nil || n.Right == nil {
			return "", types.ErrMissingChild
		}
		prec := ast.Precedence(n)
		left, err := operand(n.Left, prec)
		if err != nil {
			return "", err
		}
		right, err := operand(n.Right, prec+1)
		if err != nil {
			return "", err
		}
		return left + " " + string(n.Op) + " " + right, nil
	case *ast.UnaryExpr:
		prec := ast.PrecUnary
		if n.Op == ast.OpNot {
			prec = ast.PrecNot
		}
		x, err := operand(n.X, prec)
		if err != nil {
			return "", err
		}
		if n.Op == ast.OpNeg || n.Op == ast.OpPos {
			return string(n.Op) + x, nil
		}
		return string(n.Op) + " " + x, nil
	case *ast.IsExpr:
		x, err := operand(n.X, ast.PrecComparison+1)
		if err != nil {
			return "", err
		}
		out := x + " IS "
		if n.Not {
			out += "NOT "
		}
		out += string(n.Test)
		if n.Test == ast.IsOfType {
			out += " (" + strings.Join(n.TypeNames, ", ") + ")"
		}
		return out, nil
	case *ast.LikeExpr:
		return like(n)
	case *ast.InExpr:
		return in(n)
	case *ast.BetweenExpr:
		x, err := operand(n.X, ast.PrecComparison+1)
		if err != nil {
			return "", err
		}
		low, err := operand(n.Low, ast.PrecComparison+1)
		if err != nil {
			return "", err
		}
		high, err := operand(n.High, ast.PrecComparison+1)
		if err != nil {
			return "", err
		}
		return x + not(n.Not) + " BETWEEN " + low + " AND " + high, nil
	case *ast.MultisetExpr:
		return multiset(n)
	case *ast.ParenExpr:
		x, err := expr(n.X)
		if err != nil {
			return "", err
		}
		return "(" + x + ")", nil
	case *ast.Call:
		return call(n)
	case *ast.NamedArg:
		v, err := expr(n.Value)
		if err != nil {
			return "", err
		}
		return n.Name + " => " + v, nil
	case *ast.CollectionMethod:
		target, err := expr(n.Target)
		if err != nil {
			return "", err
		}
		out := target + "." + n.Method
		if len(n.Args) > 0 {
			args, err := exprList(n.Args)
			if err != nil {
				return "", err
			}
			out += "(" + strings.Join(args, ", ") + ")"
		}
		return out, nil
	case *ast.FieldAccess:
		x, err := expr(n.X)
		if err != nil {
			return "", err
		}
		return x + "." + n.Field, nil
	case *ast.CaseExpr:
		return caseExpr(n)
	case *ast.CursorExpr:
		q, err := query(n.Query)
		if err != nil {
			return "", err
		}
		return "CURSOR(" + q + ")", nil
	case *ast.SubqueryExpr:
		q, err := query(n.Query)
		if err != nil {
			return "", err
		}
		return "(" + q + ")", nil
	case *ast.CursorAttr:
		return n.Cursor + "%" + string(n.Attribute), nil
	case *ast.AtTimeZone:
		x, err := operand(n.X, ast.PrecUnary)
		if err != nil {
			return "", err
		}
		if n.Local {
			return x + " AT LOCAL", nil
		}
		zone, err := operand(n.Zone, ast.PrecUnary)
		if err != nil {
			return "", err
		}
		return x + " AT TIME ZONE " + zone, nil
	case *ast.Collate:
		x, err := operand(n.X, ast.PrecUnary)
		if err != nil {
			return "", err
		}
		return x + " COLLATE " + n.Collation, nil
	case *ast.OverflowExpr:
		x, err := expr(n.X)
		if err != nil {
			return "", err
		}
		return x + " ON OVERFLOW " + strings.ToUpper(n.Action), nil
	}
	return "", fmt.Errorf("oracle renderer: expression %T: %w", e, types.ErrUnsupportedNode)
}

func operand(e ast.Expr, prec int) (string, error) {
	out, err := expr(e)
	if err != nil {
		return "", err
	}
	if ast.Precedence(e) < prec {
		return "(" + out + ")", nil
	}
	return out, nil
}

func exprList(list []ast.Expr) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, e := range list {
		v, err := expr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func not(negated bool) string {
	if negated {
		return " NOT"
	}
	return ""
}

func literal(n *ast.Literal) string {
	if n.Kind != ast.LitString {
		return n.Value
	}
	q := "'" + strings.ReplaceAll(n.Value, "'", "''") + "'"
	if n.TypeName != "" {
		return n.TypeName + " " + q
	}
	return q
}

func like(n *ast.LikeExpr) (string, error) {
	x, err := operand(n.X, ast.PrecComparison+1)
	if err != nil {
		return "", err
	}
	pattern, err := operand(n.Pattern, ast.PrecComparison+1)
	if err != nil {
		return "", err
	}
	out := x + not(n.Not) + " " + string(n.Op) + " " + pattern
	if n.Escape != nil {
		esc, err := expr(n.Escape)
		if err != nil {
			return "", err
		}
		out += " ESCAPE " + esc
	}
	return out, nil
}

func in(n *ast.InExpr) (string, error) {
	x, err := operand(n.X, ast.PrecComparison+1)
	if err != nil {
		return "", err
	}
	if n.Query != nil {
		q, err := query(n.Query)
		if err != nil {
			return "", err
		}
		return x + not(n.Not) + " IN (" + q + ")", nil
	}
	list, err := exprList(n.List)
	if err != nil {
		return "", err
	}
	return x + not(n.Not) + " IN (" + strings.Join(list, ", ") + ")", nil
}

func multiset(n *ast.MultisetExpr) (string, error) {
	left, err := operand(n.Left, ast.PrecComparison+1)
	if err != nil {
		return "", err
	}
	right, err := operand(n.Right, ast.PrecComparison+1)
	if err != nil {
		return "", err
	}
	switch n.Op {
	case ast.MultisetMember, ast.MultisetSubmultiset:
		op := string(n.Op)
		if n.Of {
			op += " OF"
		}
		return left + not(n.Not) + " " + op + " " + right, nil
	}
	op := string(n.Op)
	if n.Quantifier != "" {
		op += " " + strings.ToUpper(n.Quantifier)
	}
	return left + " " + op + " " + right, nil
}

func call(n *ast.Call) (string, error) {
	if len(n.Name) == 0 {
		return "", types.ErrMissingChild
	}
	var args []string
	if n.Star {
		args = []string{"*"}
	} else {
		var err error
		args, err = exprList(n.Args)
		if err != nil {
			return "", err
		}
		if n.Distinct && len(args) > 0 {
			args[0] = "DISTINCT " + args[0]
		}
	}
	out := n.QualifiedName() + "(" + strings.Join(args, ", ") + ")"
	if n.Over == nil {
		return out, nil
	}
	var parts []string
	if len(n.Over.PartitionBy) > 0 {
		list, err := exprList(n.Over.PartitionBy)
		if err != nil {
			return "", err
		}
		parts = append(parts, "PARTITION BY "+strings.Join(list, ", "))
	}
	if len(n.Over.OrderBy) > 0 {
		order, err := orderBy(n.Over.OrderBy)
		if err != nil {
			return "", err
		}
		parts = append(parts, "ORDER BY "+order)
	}
	if w := n.Over.Window; w != nil {
		start, err := bound(w.Start)
		if err != nil {
			return "", err
		}
		frame := strings.ToUpper(w.Unit) + " " + start
		if w.End != nil {
			end, err := bound(*w.End)
			if err != nil {
				return "", err
			}
			frame = strings.ToUpper(w.Unit) + " BETWEEN " + start + " AND " + end
		}
		parts = append(parts, frame)
	}
	return out + " OVER (" + strings.Join(parts, " ") + ")", nil
}

func bound(b ast.FrameBound) (string, error) {
	if b.Offset == nil {
		return strings.ToUpper(b.Kind), nil
	}
	off, err := expr(b.Offset)
	if err != nil {
		return "", err
	}
	return off + " " + strings.ToUpper(b.Kind), nil
}

func caseExpr(n *ast.CaseExpr) (string, error) {
	var b strings.Builder
	b.WriteString("CASE")
	if n.Operand != nil {
		op, err := expr(n.Operand)
		if err != nil {
			return "", err
		}
		b.WriteString(" " + op)
	}
	for _, w := range n.Whens {
		cond, err := expr(w.Cond)
		if err != nil {
			return "", err
		}
		result, err := expr(w.Result)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHEN " + cond + " THEN " + result)
	}
	if n.Else != nil {
		e, err := expr(n.Else)
		if err != nil {
			return "", err
		}
		b.WriteString(" ELSE " + e)
	}
	b.WriteString(" END")
	return b.String(), nil
}
