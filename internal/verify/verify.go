// Package verify checks generated SQL with the PostgreSQL parser.
//
// Statements are parsed with the server's own grammar, and the bodies of
// PL/pgSQL functions and procedures with the PL/pgSQL grammar, so syntax
// errors in generated code surface before it reaches a database.
package verify

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Error reports the first statement that failed to parse.
type Error struct {
	// Index is the zero-based position of the statement in the script.
	Index     int
	Statement string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("statement %d: %v", e.Index+1, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Split splits a script into statements at top-level semicolons. Semicolons
// inside quoted strings, dollar-quoted bodies and comments do not split. The
// script is tokenized rather than parsed, so a statement that does not parse
// is still returned and reported by SQL. Segments holding only comments are
// dropped.
func Split(sql string) ([]string, error) {
	scanned, err := pg_query.Scan(sql)
	if err != nil {
		return nil, fmt.Errorf("split statements: %w", err)
	}

	var (
		out   []string
		start int
		code  bool
	)
	for _, tok := range scanned.GetTokens() {
		switch tok.GetToken() {
		case pg_query.Token_ASCII_59:
			if code {
				out = append(out, strings.TrimSpace(sql[start:tok.GetStart()]))
			}
			start, code = int(tok.GetEnd()), false
		case pg_query.Token_SQL_COMMENT, pg_query.Token_C_COMMENT:
		default:
			code = true
		}
	}
	if code {
		out = append(out, strings.TrimSpace(sql[start:]))
	}
	return out, nil
}

// SQL parses every statement of the script and returns the number of
// statements. Parse failures are returned as *Error.
func SQL(sql string) (int, error) {
	statements, err := Split(sql)
	if err != nil {
		return 0, err
	}
	for i, stmt := range statements {
		if err := Statement(stmt); err != nil {
			return i, &Error{Index: i, Statement: stmt, Err: err}
		}
	}
	return len(statements), nil
}

// Statement parses a single statement. A PL/pgSQL function or procedure also
// gets its body parsed.
func Statement(stmt string) error {
	result, err := pg_query.Parse(stmt)
	if err != nil {
		return err
	}
	for _, raw := range result.Stmts {
		if raw.Stmt == nil {
			continue
		}
		fn, ok := raw.Stmt.Node.(*pg_query.Node_CreateFunctionStmt)
		if !ok || !isPlPgSQL(fn.CreateFunctionStmt) {
			continue
		}
		if _, err := pg_query.ParsePlPgSqlToJSON(stmt); err != nil {
			return fmt.Errorf("plpgsql body: %w", err)
		}
	}
	return nil
}

func isPlPgSQL(fn *pg_query.CreateFunctionStmt) bool {
	for _, opt := range fn.Options {
		def := opt.GetDefElem()
		if def == nil || def.Defname != "language" {
			continue
		}
		return strings.EqualFold(def.Arg.GetString_().GetSval(), "plpgsql")
	}
	return false
}
