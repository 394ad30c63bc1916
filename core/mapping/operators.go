package mapping

import (
	"github.com/stokaro/ora2pg/core/ast"
)

// BinaryOperator returns the PostgreSQL spelling of an Oracle binary operator.
// Only the power, modulo and not-equal variants differ.
func BinaryOperator(op ast.BinaryOp) string {
	switch op {
	case ast.OpPow:
		return "^"
	case ast.OpMod:
		return "%"
	case ast.OpNe, ast.OpNeBang, ast.OpNeCaret:
		return "<>"
	}
	return string(op)
}

// LikeOperator normalizes the character-set LIKE variants to plain LIKE.
func LikeOperator(ast.LikeOp) string {
	return "LIKE"
}

// SetOperator returns the PostgreSQL set operator; MINUS becomes EXCEPT.
func SetOperator(op ast.SetOp) string {
	if op == ast.SetMinus {
		return "EXCEPT"
	}
	return string(op)
}
