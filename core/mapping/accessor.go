package mapping

import (
	"strings"
)

// Accessor suffixes of the package-variable runtime functions
// (get_package_var_<suffix>, set_package_var_<suffix>, ...).
const (
	AccessorNumeric    = "numeric"
	AccessorText       = "text"
	AccessorBoolean    = "boolean"
	AccessorTimestamp  = "timestamp"
	AccessorCollection = "collection"
)

var accessors = map[string]string{
	"NUMBER":         AccessorNumeric,
	"INTEGER":        AccessorNumeric,
	"INT":            AccessorNumeric,
	"NUMERIC":        AccessorNumeric,
	"DECIMAL":        AccessorNumeric,
	"FLOAT":          AccessorNumeric,
	"REAL":           AccessorNumeric,
	"DOUBLE":         AccessorNumeric,
	"PLS_INTEGER":    AccessorNumeric,
	"BINARY_INTEGER": AccessorNumeric,
	"SIMPLE_INTEGER": AccessorNumeric,
	"NATURAL":        AccessorNumeric,
	"POSITIVE":       AccessorNumeric,
	"BINARY_FLOAT":   AccessorNumeric,
	"BINARY_DOUBLE":  AccessorNumeric,

	"VARCHAR2":  AccessorText,
	"VARCHAR":   AccessorText,
	"CHAR":      AccessorText,
	"NCHAR":     AccessorText,
	"NVARCHAR2": AccessorText,
	"CLOB":      AccessorText,
	"NCLOB":     AccessorText,

	"BOOLEAN": AccessorBoolean,

	"DATE":                           AccessorTimestamp,
	"TIMESTAMP":                      AccessorTimestamp,
	"TIMESTAMP WITH TIME ZONE":       AccessorTimestamp,
	"TIMESTAMP WITH LOCAL TIME ZONE": AccessorTimestamp,

	"VARRAY":       AccessorCollection,
	"TABLE":        AccessorCollection,
	"NESTED TABLE": AccessorCollection,
}

// Accessor returns the runtime accessor suffix for an Oracle type spelling.
// Parameters are ignored, so VARCHAR2(100) and VARCHAR2 both map to text.
// Collection spellings (VARRAY, TABLE OF, a trailing []) map to collection.
// Anything unknown falls back to text.
func Accessor(oracleType string) string {
	upper := strings.ToUpper(strings.TrimSpace(oracleType))
	if upper == "" {
		return AccessorText
	}
	if strings.Contains(upper, "VARRAY") || strings.Contains(upper, "TABLE OF") ||
		strings.Contains(upper, "NESTED TABLE") || strings.HasSuffix(upper, "[]") {
		return AccessorCollection
	}
	if i := strings.IndexByte(upper, '('); i >= 0 {
		upper = strings.TrimSpace(upper[:i])
	}
	if a, ok := accessors[upper]; ok {
		return a
	}
	return AccessorText
}
