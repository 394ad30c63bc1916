package transform

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/stokaro/ora2pg/core/mapping"
)

// runtimeTypes maps accessor suffixes to the PostgreSQL type they store.
var runtimeTypes = []struct {
	accessor string
	pgType   string
}{
	{mapping.AccessorNumeric, "numeric"},
	{mapping.AccessorText, "text"},
	{mapping.AccessorBoolean, "boolean"},
	{mapping.AccessorTimestamp, "timestamp"},
}

type runtimeFunc struct {
	name    string
	params  []string
	returns string
	body    string
	// volatility is STABLE for readers and empty for writers.
	volatility string
}

// keyParams are the leading parameters of every accessor.
var keyParams = []string{"schema_name text", "package_name text", "variable_name text"}

func (f runtimeFunc) signature(schema string) string {
	return schema + "." + f.name + "(" + strings.Join(append(append([]string(nil), keyParams...), f.params...), ", ") + ")"
}

func (f runtimeFunc) argTypes() string {
	var types []string
	for _, p := range append(append([]string(nil), keyParams...), f.params...) {
		types = append(types, p[strings.LastIndexByte(p, ' ')+1:])
	}
	return strings.Join(types, ", ")
}

func runtimeFuncs(schema string) []runtimeFunc {
	value := schema + ".package_var_value($1, $2, $3)"
	coll := "COALESCE(" + value + ", '[]'::jsonb)"
	store := func(v string) string {
		return "SELECT " + schema + ".store_package_var($1, $2, $3, " + v + ")"
	}
	count := "COALESCE(jsonb_array_length(" + value + "), 0)"

	var out []runtimeFunc
	for _, t := range runtimeTypes {
		out = append(out,
			runtimeFunc{
				name:       "get_package_var_" + t.accessor,
				returns:    t.pgType,
				body:       fmt.Sprintf("SELECT (%s #>> '{}')::%s", value, t.pgType),
				volatility: "STABLE",
			},
			runtimeFunc{
				name:    "set_package_var_" + t.accessor,
				params:  []string{"value " + t.pgType},
				returns: "void",
				body:    store("to_jsonb($4)"),
			},
			runtimeFunc{
				name:       "get_package_collection_element_" + t.accessor,
				params:     []string{"idx numeric"},
				returns:    t.pgType,
				body:       fmt.Sprintf("SELECT (%s -> ($4::int - 1) #>> '{}')::%s", value, t.pgType),
				volatility: "STABLE",
			},
			runtimeFunc{
				name:    "set_package_collection_element_" + t.accessor,
				params:  []string{"idx numeric", "value " + t.pgType},
				returns: "void",
				body:    store("jsonb_set(" + coll + ", ARRAY[($4::int - 1)::text], to_jsonb($5), true)"),
			},
		)
	}
	out = append(out,
		runtimeFunc{name: "get_package_collection", returns: "jsonb", body: "SELECT " + coll, volatility: "STABLE"},
		runtimeFunc{name: "set_package_collection", params: []string{"value anyelement"}, returns: "void", body: store("to_jsonb($4)")},
		runtimeFunc{
			name:       "get_package_collection_element",
			params:     []string{"idx numeric"},
			returns:    "jsonb",
			body:       "SELECT " + value + " -> ($4::int - 1)",
			volatility: "STABLE",
		},
		runtimeFunc{
			name:    "set_package_collection_element",
			params:  []string{"idx numeric", "value jsonb"},
			returns: "void",
			body:    store("jsonb_set(" + coll + ", ARRAY[($4::int - 1)::text], $5, true)"),
		},
		runtimeFunc{name: "get_package_collection_count", returns: "integer", body: "SELECT " + count, volatility: "STABLE"},
		runtimeFunc{
			name:       "get_package_collection_first",
			returns:    "integer",
			body:       "SELECT CASE WHEN " + count + " > 0 THEN 1 END",
			volatility: "STABLE",
		},
		runtimeFunc{name: "get_package_collection_last", returns: "integer", body: "SELECT NULLIF(" + count + ", 0)", volatility: "STABLE"},
		runtimeFunc{
			name:       "package_collection_exists",
			params:     []string{"idx numeric"},
			returns:    "boolean",
			body:       "SELECT $4 BETWEEN 1 AND " + count,
			volatility: "STABLE",
		},
		runtimeFunc{
			name:    "extend_package_collection",
			params:  []string{"n numeric"},
			returns: "void",
			body:    store(coll + " || (SELECT COALESCE(jsonb_agg('null'::jsonb), '[]'::jsonb) FROM generate_series(1, $4::int))"),
		},
		runtimeFunc{name: "delete_package_collection_all", returns: "void", body: store("'[]'::jsonb")},
		runtimeFunc{
			name:    "delete_package_collection_element",
			params:  []string{"idx numeric"},
			returns: "void",
			body:    store(coll + " - ($4::int - 1)"),
		},
		runtimeFunc{
			name:    "trim_package_collection",
			params:  []string{"n numeric"},
			returns: "void",
			body: store("(SELECT COALESCE(jsonb_agg(e ORDER BY i), '[]'::jsonb) FROM jsonb_array_elements(" + coll +
				") WITH ORDINALITY AS t(e, i) WHERE i <= " + count + " - $4::int)"),
		},
	)
	return out
}

// RuntimeTable is the table holding package variable values. Rows are keyed
// by the backend process, so values live as long as the session.
const RuntimeTable = "package_variables"

// RuntimeDDL renders the runtime in schema: the package-variable table with
// every accessor function the rendered code calls, and the HTP buffer.
func RuntimeDDL(schema string) string {
	table := schema + "." + RuntimeTable
	blocks := []string{
		"CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(schema) + ";",
		strings.Join([]string{
			"CREATE UNLOGGED TABLE IF NOT EXISTS " + table + " (",
			"  session_pid integer NOT NULL DEFAULT pg_backend_pid(),",
			"  schema_name text NOT NULL,",
			"  package_name text NOT NULL,",
			"  variable_name text NOT NULL,",
			"  value jsonb,",
			"  PRIMARY KEY (session_pid, schema_name, package_name, variable_name)",
			");",
		}, "\n"),
		strings.Join([]string{
			"CREATE OR REPLACE FUNCTION " + schema + ".package_var_value(schema_name text, package_name text, variable_name text)",
			"RETURNS jsonb",
			"LANGUAGE sql STABLE",
			"AS $$",
			"  SELECT value FROM " + table,
			"  WHERE session_pid = pg_backend_pid() AND schema_name = $1 AND package_name = $2 AND variable_name = $3",
			"$$;",
		}, "\n"),
		strings.Join([]string{
			"CREATE OR REPLACE FUNCTION " + schema + ".store_package_var(schema_name text, package_name text, variable_name text, value jsonb)",
			"RETURNS void",
			"LANGUAGE sql",
			"AS $$",
			"  INSERT INTO " + table + " (schema_name, package_name, variable_name, value)",
			"  VALUES ($1, $2, $3, $4)",
			"  ON CONFLICT (session_pid, schema_name, package_name, variable_name) DO UPDATE SET value = EXCLUDED.value",
			"$$;",
		}, "\n"),
	}
	for _, f := range runtimeFuncs(schema) {
		lang := "LANGUAGE sql"
		if f.volatility != "" {
			lang += " " + f.volatility
		}
		blocks = append(blocks, strings.Join([]string{
			"CREATE OR REPLACE FUNCTION " + f.signature(schema),
			"RETURNS " + f.returns,
			lang,
			"AS $$",
			"  " + f.body,
			"$$;",
		}, "\n"))
	}
	blocks = append(blocks, htpDDL(schema)...)
	return strings.Join(blocks, "\n\n")
}

// RuntimeDrops undoes RuntimeDDL, leaving the schema in place.
func RuntimeDrops(schema string) []string {
	out := htpDrops(schema)
	for _, f := range runtimeFuncs(schema) {
		out = append(out, "DROP FUNCTION IF EXISTS "+schema+"."+f.name+"("+f.argTypes()+");")
	}
	return append(out,
		"DROP FUNCTION IF EXISTS "+schema+".store_package_var(text, text, text, jsonb);",
		"DROP FUNCTION IF EXISTS "+schema+".package_var_value(text, text, text);",
		"DROP TABLE IF EXISTS "+schema+"."+RuntimeTable+";",
	)
}
