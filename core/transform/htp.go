package transform

import (
	"strings"
)

// HTPTable buffers the page written through the htp_* procedures, one row
// per call, keyed by backend process like the package variables.
const HTPTable = "htp_buffer"

type htpRoutine struct {
	name string
	// params holds "name type" pairs.
	params []string
	// returns is empty for procedures.
	returns string
	body    string
}

func htpRoutines(schema string) []htpRoutine {
	table := schema + "." + HTPTable
	own := "session_pid = pg_backend_pid()"
	return []htpRoutine{
		{name: "htp_init", body: "DELETE FROM " + table + " WHERE " + own},
		{name: "htp_p", params: []string{"content text"}, body: "INSERT INTO " + table + " (content) VALUES (COALESCE($1, '') || E'\\n')"},
		{name: "htp_prn", params: []string{"content text"}, body: "INSERT INTO " + table + " (content) VALUES (COALESCE($1, ''))"},
		{name: "htp_flush", body: "DELETE FROM " + table + " WHERE " + own},
		{
			name:    "htp_page",
			returns: "text",
			body:    "SELECT COALESCE(string_agg(content, '' ORDER BY line_no), '') FROM " + table + " WHERE " + own,
		},
		{name: "htp_buffer_size", returns: "integer", body: "SELECT count(*)::integer FROM " + table + " WHERE " + own},
	}
}

func (h htpRoutine) kind() string {
	if h.returns == "" {
		return "PROCEDURE"
	}
	return "FUNCTION"
}

func (h htpRoutine) argTypes() string {
	var types []string
	for _, p := range h.params {
		types = append(types, p[strings.LastIndexByte(p, ' ')+1:])
	}
	return strings.Join(types, ", ")
}

// htpDDL renders the HTP output buffer: the table and the procedures that
// calls to htp.p, htp.print and htp.prn are rewritten to.
func htpDDL(schema string) []string {
	blocks := []string{strings.Join([]string{
		"CREATE UNLOGGED TABLE IF NOT EXISTS " + schema + "." + HTPTable + " (",
		"  session_pid integer NOT NULL DEFAULT pg_backend_pid(),",
		"  line_no bigserial,",
		"  content text NOT NULL,",
		"  PRIMARY KEY (session_pid, line_no)",
		");",
	}, "\n")}
	for _, h := range htpRoutines(schema) {
		lines := []string{"CREATE OR REPLACE " + h.kind() + " " + schema + "." + h.name + "(" + strings.Join(h.params, ", ") + ")"}
		lang := "LANGUAGE sql"
		if h.returns != "" {
			lines = append(lines, "RETURNS "+h.returns)
			lang += " STABLE"
		}
		lines = append(lines, lang, "AS $$", "  "+h.body, "$$;")
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return blocks
}

func htpDrops(schema string) []string {
	var out []string
	for _, h := range htpRoutines(schema) {
		out = append(out, "DROP "+h.kind()+" IF EXISTS "+schema+"."+h.name+"("+h.argTypes()+");")
	}
	return append(out, "DROP TABLE IF EXISTS "+schema+"."+HTPTable+";")
}
