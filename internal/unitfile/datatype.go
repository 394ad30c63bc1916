package unitfile

import (
	"fmt"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/mapping"
)

// ParseDataType reads a declared type as written in PL/SQL:
//
//	NUMBER(10,2)            native type
//	HR.EMPLOYEES%ROWTYPE    row type, schema optional
//	EMPLOYEES.SALARY%TYPE   column type, schema optional
//	emp_tab                 anything else is a declared type
func ParseDataType(s string) (ast.DataType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty data type")
	}
	upper := strings.ToUpper(s)

	switch {
	case strings.HasSuffix(upper, "%ROWTYPE"):
		parts := strings.Split(s[:len(s)-len("%ROWTYPE")], ".")
		switch len(parts) {
		case 1:
			return ast.NewRowType("", parts[0]), nil
		case 2:
			return ast.NewRowType(parts[0], parts[1]), nil
		}
		return nil, fmt.Errorf("invalid %%ROWTYPE reference %q", s)
	case strings.HasSuffix(upper, "%TYPE"):
		parts := strings.Split(s[:len(s)-len("%TYPE")], ".")
		switch len(parts) {
		case 2:
			return ast.NewColumnType("", parts[0], parts[1]), nil
		case 3:
			return ast.NewColumnType(parts[0], parts[1], parts[2]), nil
		}
		return nil, fmt.Errorf("unsupported %%TYPE reference %q: expected table.column or schema.table.column", s)
	}

	native := mapping.ParseNativeType(s)
	if mapping.IsNativeType(native.Name) {
		return native, nil
	}
	return ast.NewCustomType(s), nil
}

func optionalType(s string) (ast.DataType, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return ParseDataType(s)
}
