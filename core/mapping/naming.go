package mapping

import (
	"strings"
)

// RoutineName is the qualified name of a generated function or procedure:
// SCHEMA.OWNER_routine for package and object type members, SCHEMA.routine
// for standalone routines.
func RoutineName(schema, owner, routine string) string {
	name := strings.ToLower(routine)
	if owner != "" {
		name = strings.ToUpper(owner) + "_" + name
	}
	return strings.ToUpper(schema) + "." + name
}

// TypeName joins parts into a lowercase, underscore-joined type name, the
// convention for generated domains and composite types
// (schema_package_typename, schema_package_routine_recordtype).
func TypeName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, strings.ToLower(p))
		}
	}
	return strings.Join(kept, "_")
}

// RowTypeName is the composite type standing for schema.table%ROWTYPE.
func RowTypeName(schema, table string) string {
	return TypeName(schema, table, "rowtype")
}

// ObjectName renders a schema object reference in the generated DDL's
// uppercase convention.
func ObjectName(schema, name string) string {
	if schema == "" {
		return strings.ToUpper(name)
	}
	return strings.ToUpper(schema) + "." + strings.ToUpper(name)
}
