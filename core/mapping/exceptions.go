package mapping

import (
	"slices"
	"strings"
)

// OthersCondition is the catch-all handler condition.
const OthersCondition = "OTHERS"

// Exception describes how a predefined Oracle exception is expressed in PL/pgSQL.
type Exception struct {
	// Condition is the PL/pgSQL condition name used in WHEN and RAISE.
	Condition string
	// SQLState is the SQLSTATE PostgreSQL reports for the condition.
	SQLState string
}

var exceptions = map[string]Exception{
	"NO_DATA_FOUND":           {"NO_DATA_FOUND", "P0002"},
	"TOO_MANY_ROWS":           {"TOO_MANY_ROWS", "P0003"},
	"DUP_VAL_ON_INDEX":        {"unique_violation", "23505"},
	"INVALID_CURSOR":          {"invalid_cursor_state", "24000"},
	"INVALID_NUMBER":          {"invalid_text_representation", "22P02"},
	"VALUE_ERROR":             {"data_exception", "22000"},
	"ZERO_DIVIDE":             {"division_by_zero", "22012"},
	"STORAGE_ERROR":           {"insufficient_resources", "53000"},
	"PROGRAM_ERROR":           {"internal_error", "XX000"},
	"CURSOR_ALREADY_OPEN":     {"duplicate_cursor", "42P03"},
	"ACCESS_INTO_NULL":        {"null_value_not_allowed", "22004"},
	"COLLECTION_IS_NULL":      {"null_value_not_allowed", "22004"},
	"SUBSCRIPT_BEYOND_COUNT":  {"array_subscript_error", "2202E"},
	"SUBSCRIPT_OUTSIDE_LIMIT": {"array_subscript_error", "2202E"},
	"CASE_NOT_FOUND":          {"case_not_found", "20000"},
	"SELF_IS_NULL":            {"null_value_not_allowed", "22004"},
	"TIMEOUT_ON_RESOURCE":     {"lock_not_available", "55P03"},
}

// UserExceptionSQLState is the SQLSTATE used when raising user-declared exceptions.
const UserExceptionSQLState = "P0001"

// LookupException returns the mapping of a predefined Oracle exception.
func LookupException(name string) (Exception, bool) {
	e, ok := exceptions[strings.ToUpper(strings.TrimSpace(name))]
	return e, ok
}

// HandlerCondition maps an exception name in a WHEN clause. Names the table
// does not know, including user-declared exceptions, collapse to OTHERS.
func HandlerCondition(name string) string {
	if strings.EqualFold(name, OthersCondition) {
		return OthersCondition
	}
	if e, ok := LookupException(name); ok {
		return e.Condition
	}
	return OthersCondition
}

// RaiseCondition maps an exception name in a RAISE statement. Unknown names
// are kept verbatim so that re-raising a user exception keeps its identity.
func RaiseCondition(name string) string {
	if e, ok := LookupException(name); ok {
		return e.Condition
	}
	return name
}

// ExceptionForSQLState returns the Oracle exception names that map to the
// given SQLSTATE, sorted by name.
func ExceptionForSQLState(code string) []string {
	var names []string
	for name, e := range exceptions {
		if e.SQLState == code {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
