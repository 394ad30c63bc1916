// Package mapping holds the fixed Oracle to PostgreSQL lookup tables used by the
// renderers: native types, package-variable accessor suffixes, operators,
// exception names, builtin functions and the generated-name conventions.
package mapping

import (
	"fmt"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
)

// typeParams tells which parameters of a native type survive the conversion.
type typeParams int

const (
	paramsNone typeParams = iota
	paramsLength
	paramsPrecisionScale
	paramsPrecision
)

type nativeMapping struct {
	name   string
	params typeParams
}

var nativeTypes = map[string]nativeMapping{
	// character
	"VARCHAR2":  {"varchar", paramsLength},
	"NVARCHAR2": {"varchar", paramsLength},
	"VARCHAR":   {"varchar", paramsLength},
	"STRING":    {"varchar", paramsLength},
	"LONG":      {"text", paramsNone},
	"CHAR":      {"char", paramsLength},
	"NCHAR":     {"char", paramsLength},
	"CHARACTER": {"char", paramsLength},
	"CLOB":      {"text", paramsNone},
	"NCLOB":     {"text", paramsNone},

	// numeric
	"NUMBER":         {"numeric", paramsPrecisionScale},
	"NUMERIC":        {"numeric", paramsPrecisionScale},
	"DEC":            {"decimal", paramsPrecisionScale},
	"DECIMAL":        {"decimal", paramsPrecisionScale},
	"BINARY_INTEGER": {"integer", paramsNone},
	"PLS_INTEGER":    {"integer", paramsNone},
	"NATURAL":        {"integer", paramsNone},
	"NATURALN":       {"integer", paramsNone},
	"POSITIVE":       {"integer", paramsNone},
	"POSITIVEN":      {"integer", paramsNone},
	"SIMPLE_INTEGER": {"integer", paramsNone},
	"INTEGER":        {"integer", paramsNone},
	"INT":            {"integer", paramsNone},
	"SIGNTYPE":       {"smallint", paramsNone},
	"SMALLINT":       {"smallint", paramsNone},
	"BINARY_FLOAT":   {"real", paramsNone},
	"FLOAT":          {"real", paramsNone},
	"REAL":           {"real", paramsNone},
	"BINARY_DOUBLE":  {"double precision", paramsNone},
	"DOUBLE":         {"double precision", paramsNone},

	"BOOLEAN": {"boolean", paramsNone},

	// date and time
	"DATE":                           {"timestamp", paramsNone},
	"TIMESTAMP":                      {"timestamp", paramsPrecision},
	"TIMESTAMP WITH TIME ZONE":       {"timestamp with time zone", paramsPrecision},
	"TIMESTAMP WITH LOCAL TIME ZONE": {"timestamp with time zone", paramsPrecision},
	"INTERVAL YEAR TO MONTH":         {"interval", paramsNone},
	"INTERVAL DAY TO SECOND":         {"interval", paramsNone},

	// binary and large objects
	"BLOB":     {"bytea", paramsNone},
	"RAW":      {"bytea", paramsNone},
	"LONG RAW": {"bytea", paramsNone},
	"BFILE":    {"text", paramsNone},

	"ROWID":  {"text", paramsNone},
	"UROWID": {"text", paramsNone},

	"XMLTYPE":       {"xml", paramsNone},
	"ANYDATA":       {"jsonb", paramsNone},
	"JSON":          {"jsonb", paramsNone},
	"SDO_GEOMETRY":  {"geometry", paramsNone},
	"SYS_REFCURSOR": {"refcursor", paramsNone},
	"SYS.ANYDATA":   {"jsonb", paramsNone},
	"SYS.XMLTYPE":   {"xml", paramsNone},
}

// IsNativeType reports whether name is a native Oracle type known to the table.
func IsNativeType(name string) bool {
	_, ok := lookupNative(name)
	return ok
}

func lookupNative(name string) (nativeMapping, bool) {
	upper := strings.ToUpper(strings.Join(strings.Fields(name), " "))
	if m, ok := nativeTypes[upper]; ok {
		return m, true
	}
	switch {
	case strings.HasPrefix(upper, "TIMESTAMP") && strings.Contains(upper, "TIME ZONE"):
		return nativeTypes["TIMESTAMP WITH TIME ZONE"], true
	case strings.HasPrefix(upper, "INTERVAL"):
		return nativeMapping{"interval", paramsNone}, true
	case strings.HasPrefix(upper, "AQ$"):
		return nativeMapping{"jsonb", paramsNone}, true
	}
	return nativeMapping{}, false
}

// NativeType renders a native Oracle type as its PostgreSQL equivalent,
// preserving length, precision and scale where the target type accepts them.
// Unknown names are lowercased and passed through.
func NativeType(t *ast.NativeType) string {
	m, ok := lookupNative(t.Name)
	if !ok {
		return strings.ToLower(t.Name)
	}
	switch m.params {
	case paramsLength:
		if t.Length != nil {
			return fmt.Sprintf("%s(%d)", m.name, *t.Length)
		}
	case paramsPrecisionScale:
		if t.Precision != nil && t.Scale != nil {
			return fmt.Sprintf("%s(%d,%d)", m.name, *t.Precision, *t.Scale)
		}
		if t.Precision != nil {
			return fmt.Sprintf("%s(%d)", m.name, *t.Precision)
		}
	case paramsPrecision:
		if t.Precision != nil {
			return insertPrecision(m.name, *t.Precision)
		}
	}
	return m.name
}

// insertPrecision places (p) after the leading keyword: timestamp(3) with time zone.
func insertPrecision(name string, p int) string {
	head, tail, found := strings.Cut(name, " ")
	if !found {
		return fmt.Sprintf("%s(%d)", name, p)
	}
	return fmt.Sprintf("%s(%d) %s", head, p, tail)
}

// TypeString maps a raw source type string such as "VARCHAR2(100)" or
// "NUMBER(10,2)", as found in catalog metadata, to PostgreSQL.
func TypeString(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "text"
	}
	return NativeType(ParseNativeType(raw))
}

// ParseNativeType splits a raw type string into name and parameters. The
// parameter list may sit inside the name, as in TIMESTAMP(6) WITH TIME ZONE.
// Whether a lone parameter is a length or a precision follows the type table.
func ParseNativeType(raw string) *ast.NativeType {
	raw = strings.TrimSpace(raw)
	open := strings.IndexByte(raw, '(')
	closing := strings.LastIndexByte(raw, ')')
	if open < 0 || closing < open {
		return ast.NewNativeType(strings.Join(strings.Fields(raw), " "))
	}
	name := strings.Join(strings.Fields(raw[:open]+" "+raw[closing+1:]), " ")
	t := ast.NewNativeType(name)
	// trailing modifiers such as "BYTE" or "CHAR" in VARCHAR2(10 CHAR)
	first, second, twoArgs := strings.Cut(raw[open+1:closing], ",")
	n, ok := leadingInt(first)
	if !ok {
		return t
	}
	m, _ := lookupNative(t.Name)
	switch {
	case m.params == paramsLength:
		t.SetLength(n)
	case twoArgs:
		if s, ok := leadingInt(second); ok {
			t.SetPrecision(n, s)
		} else {
			t.SetPrecision(n, -1)
		}
	default:
		t.SetPrecision(n, -1)
	}
	return t
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
	}
	return n, digits > 0
}
