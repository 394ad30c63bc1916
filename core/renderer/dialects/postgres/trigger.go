package postgres

import (
	"fmt"
	"slices"
	"strings"

	"github.com/stokaro/ora2pg/core/ast"
	"github.com/stokaro/ora2pg/core/mapping"
	"github.com/stokaro/ora2pg/core/renderer/types"
)

// Trigger renders the trigger function followed by CREATE TRIGGER.
func (r *Renderer) Trigger(t *ast.Trigger) (string, error) {
	return r.trigger(t)
}

// TriggerFunctionName is the name of the function backing a trigger.
func TriggerFunctionName(t *ast.Trigger) string {
	return mapping.RoutineName(t.Schema, "", t.Name+"_func")
}

func (r *Renderer) trigger(t *ast.Trigger) (string, error) {
	if t.Table == "" || len(t.Events) == 0 {
		return "", fmt.Errorf("trigger %s table or events: %w", t.Name, types.ErrMissingChild)
	}
	routine := &ast.Routine{
		Name:      t.Name,
		Schema:    t.Schema,
		Variables: t.Variables,
		Body:      append(slices.Clone(t.Body), triggerReturn(t)),
		Exception: t.Exception,
	}
	s := r.root().withRoutine(routine).withTrigger(t)
	fnBody, err := r.routineBody(s, routine, "")
	if err != nil {
		return "", fmt.Errorf("trigger %s: %w", t.Name, err)
	}

	fn := strings.Join([]string{
		"CREATE OR REPLACE FUNCTION " + TriggerFunctionName(t) + "()",
		"RETURNS trigger",
		"LANGUAGE plpgsql",
		"AS $$",
		fnBody,
		"$$;",
	}, "\n")

	events := make([]string, 0, len(t.Events))
	for _, e := range t.Events {
		if e == "UPDATE" && len(t.UpdateColumns) > 0 {
			e += " OF " + strings.Join(t.UpdateColumns, ", ")
		}
		events = append(events, e)
	}
	tableSchema := t.TableSchema
	if tableSchema == "" {
		tableSchema = t.Schema
	}
	lines := []string{
		"CREATE OR REPLACE TRIGGER " + strings.ToLower(t.Name),
		t.Timing + " " + strings.Join(events, " OR ") + " ON " + r.tableName(s, tableSchema, t.Table),
	}
	if t.ForEachRow {
		lines = append(lines, "FOR EACH ROW")
	} else {
		lines = append(lines, "FOR EACH STATEMENT")
	}
	if t.When != nil {
		cond, err := r.expr(s, t.When)
		if err != nil {
			return "", fmt.Errorf("trigger %s when: %w", t.Name, err)
		}
		lines = append(lines, "WHEN ("+cond+")")
	}
	lines = append(lines, "EXECUTE FUNCTION "+TriggerFunctionName(t)+"();")
	return fn + "\n\n" + strings.Join(lines, "\n"), nil
}

// triggerReturn picks the row a trigger function hands back to the executor.
func triggerReturn(t *ast.Trigger) *ast.ReturnStatement {
	if !t.ForEachRow {
		return ast.NewReturn(ast.NewNull())
	}
	onlyDelete := true
	for _, e := range t.Events {
		if e != "DELETE" {
			onlyDelete = false
		}
	}
	switch {
	case onlyDelete:
		return ast.NewReturn(ast.NewIdent("OLD"))
	case t.Timing == "BEFORE" || t.Timing == "INSTEAD OF":
		return ast.NewReturn(ast.NewIdent("NEW"))
	}
	return ast.NewReturn(ast.NewCall("COALESCE", ast.NewIdent("NEW"), ast.NewIdent("OLD")))
}
