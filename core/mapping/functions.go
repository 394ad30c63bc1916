package mapping

import (
	"fmt"
	"strings"
)

var keywordBuiltins = map[string]string{
	"SYSDATE":      "CURRENT_TIMESTAMP",
	"SYSTIMESTAMP": "CURRENT_TIMESTAMP",
	"CURRENT_DATE": "CURRENT_DATE",
	"USER":         "CURRENT_USER",
	"UID":          "CURRENT_USER",
}

// KeywordBuiltin returns the PostgreSQL replacement of an argument-less Oracle
// builtin such as SYSDATE or USER.
func KeywordBuiltin(name string) (string, bool) {
	v, ok := keywordBuiltins[strings.ToUpper(name)]
	return v, ok
}

// BuiltinFunc rewrites a builtin call from its rendered arguments. It returns
// false when the arity is not supported, in which case the caller renders the
// call unchanged.
type BuiltinFunc func(args []string) (string, bool)

var renamedBuiltins = map[string]string{
	"NVL":     "COALESCE",
	"TO_DATE": "TO_TIMESTAMP",
	"SUBSTRB": "SUBSTRING",
	"LENGTHB": "OCTET_LENGTH",
}

var builtins = map[string]BuiltinFunc{
	"SUBSTR":         substr,
	"INSTR":          instr,
	"NVL2":           nvl2,
	"DECODE":         decode,
	"ADD_MONTHS":     addMonths,
	"MONTHS_BETWEEN": monthsBetween,
	"LAST_DAY":       lastDay,
}

// Builtin returns the rewrite for a known Oracle builtin function.
func Builtin(name string) (BuiltinFunc, bool) {
	upper := strings.ToUpper(name)
	if f, ok := builtins[upper]; ok {
		return f, true
	}
	if renamed, ok := renamedBuiltins[upper]; ok {
		return func(args []string) (string, bool) {
			return renamed + "(" + strings.Join(args, ", ") + ")", true
		}, true
	}
	return nil, false
}

func substr(args []string) (string, bool) {
	switch len(args) {
	case 2:
		return fmt.Sprintf("SUBSTRING(%s FROM %s)", args[0], args[1]), true
	case 3:
		return fmt.Sprintf("SUBSTRING(%s FROM %s FOR %s)", args[0], args[1], args[2]), true
	}
	return "", false
}

func instr(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("POSITION(%s IN %s)", args[1], args[0]), true
}

func nvl2(args []string) (string, bool) {
	if len(args) != 3 {
		return "", false
	}
	return fmt.Sprintf("CASE WHEN %s IS NOT NULL THEN %s ELSE %s END", args[0], args[1], args[2]), true
}

// decode(expr, search1, result1, ..., [default]) becomes a searched CASE using
// IS NOT DISTINCT FROM, which keeps DECODE's NULL = NULL matching.
func decode(args []string) (string, bool) {
	if len(args) < 3 {
		return "", false
	}
	var b strings.Builder
	b.WriteString("CASE")
	rest := args[1:]
	for len(rest) >= 2 {
		fmt.Fprintf(&b, " WHEN %s IS NOT DISTINCT FROM %s THEN %s", args[0], rest[0], rest[1])
		rest = rest[2:]
	}
	if len(rest) == 1 {
		fmt.Fprintf(&b, " ELSE %s", rest[0])
	}
	b.WriteString(" END")
	return b.String(), true
}

func addMonths(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("(%s + (%s) * INTERVAL '1 month')", args[0], args[1]), true
}

func monthsBetween(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("(EXTRACT(YEAR FROM age(%[1]s, %[2]s)) * 12 + EXTRACT(MONTH FROM age(%[1]s, %[2]s)))", args[0], args[1]), true
}

func lastDay(args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	return fmt.Sprintf("(date_trunc('month', %s) + INTERVAL '1 month' - INTERVAL '1 day')", args[0]), true
}
