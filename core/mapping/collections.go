package mapping

import (
	"strings"
)

// EmptyConstructorElementType guesses the element type of an empty collection
// constructor such as t_numbers() from the type name alone. The guess is a
// substring match and is often wrong for real type names; it is only used when
// the collection type declaration cannot be found.
func EmptyConstructorElementType(typeName string) string {
	lower := strings.ToLower(typeName)
	switch {
	case strings.Contains(lower, "string"), strings.Contains(lower, "varchar"),
		strings.Contains(lower, "text"), strings.Contains(lower, "char"):
		return "TEXT"
	case strings.Contains(lower, "number"), strings.Contains(lower, "numeric"),
		strings.Contains(lower, "num"):
		return "NUMERIC"
	case strings.Contains(lower, "int"):
		return "INTEGER"
	case strings.Contains(lower, "date"), strings.Contains(lower, "time"):
		return "TIMESTAMP"
	case strings.Contains(lower, "bool"), strings.Contains(lower, "flag"):
		return "BOOLEAN"
	}
	return "TEXT"
}
