package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Writer executes generated SQL, optionally inside a transaction. In dry-run
// mode statements are logged instead of executed.
type Writer struct {
	db     *sql.DB
	tx     *sql.Tx
	dryRun bool
	logger *slog.Logger
}

// NewWriter creates a writer over db.
func NewWriter(db *sql.DB) *Writer {
	return &Writer{
		db:     db,
		logger: slog.Default(),
	}
}

// WithLogger returns a copy of the writer using logger. The copy does not
// share the open transaction, if any.
func (w *Writer) WithLogger(logger *slog.Logger) *Writer {
	return &Writer{
		db:     w.db,
		dryRun: w.dryRun,
		logger: logger,
	}
}

// ExecuteSQL executes one or more statements in the current transaction, or
// directly on the database when none is open.
func (w *Writer) ExecuteSQL(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if w.dryRun {
		w.logger.Info("[DRY RUN] Would execute SQL", "sql", query)
		return nil
	}
	w.logger.Debug("Executing SQL", "sql", query)

	var err error
	if w.tx != nil {
		_, err = w.tx.ExecContext(ctx, query)
	} else {
		_, err = w.db.ExecContext(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", WrapError(err))
	}
	return nil
}

// BeginTransaction opens a transaction. Nested transactions are not supported.
func (w *Writer) BeginTransaction(ctx context.Context) error {
	if w.tx != nil {
		return errors.New("transaction already in progress")
	}
	if w.dryRun {
		w.logger.Info("[DRY RUN] Would begin transaction")
		return nil
	}
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", WrapError(err))
	}
	w.tx = tx
	return nil
}

// CommitTransaction commits the open transaction.
func (w *Writer) CommitTransaction() error {
	if w.dryRun {
		w.logger.Info("[DRY RUN] Would commit transaction")
		return nil
	}
	if w.tx == nil {
		return errors.New("no transaction in progress")
	}
	err := w.tx.Commit()
	w.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", WrapError(err))
	}
	return nil
}

// RollbackTransaction rolls back the open transaction.
func (w *Writer) RollbackTransaction() error {
	if w.dryRun {
		w.logger.Info("[DRY RUN] Would rollback transaction")
		return nil
	}
	if w.tx == nil {
		return errors.New("no transaction in progress")
	}
	err := w.tx.Rollback()
	w.tx = nil
	if err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// InTransaction reports whether a transaction is open.
func (w *Writer) InTransaction() bool {
	return w.tx != nil
}

func (w *Writer) SetDryRun(dryRun bool) {
	w.dryRun = dryRun
}

func (w *Writer) IsDryRun() bool {
	return w.dryRun
}

// EnsureSchema creates the schema if it does not exist. Unquoted identifiers
// in generated code fold to lower case, so the schema is created lowercased.
func (w *Writer) EnsureSchema(ctx context.Context, name string) error {
	return w.ExecuteSQL(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(strings.ToLower(name)))
}

// SetSearchPath sets the search_path of the current session or transaction.
func (w *Writer) SetSearchPath(ctx context.Context, schemas ...string) error {
	if len(schemas) == 0 {
		return nil
	}
	quoted := make([]string, len(schemas))
	for i, s := range schemas {
		quoted[i] = pq.QuoteIdentifier(strings.ToLower(s))
	}
	return w.ExecuteSQL(ctx, "SET search_path TO "+strings.Join(quoted, ", "))
}

// WrapError adds the SQLSTATE condition name and position to server errors.
// Other errors are returned unchanged.
func WrapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	msg := fmt.Sprintf("%s (SQLSTATE %s %s)", pgErr.Message, pgErr.Code, pq.ErrorCode(pgErr.Code).Name())
	if pgErr.Detail != "" {
		msg += ": " + pgErr.Detail
	}
	if pgErr.Position > 0 {
		msg += fmt.Sprintf(" at position %d", pgErr.Position)
	}
	return &ServerError{Message: msg, Code: pgErr.Code, Err: err}
}

// ServerError is a server-reported error with its SQLSTATE.
type ServerError struct {
	Message string
	Code    string
	Err     error
}

func (e *ServerError) Error() string {
	return e.Message
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// Condition returns the SQLSTATE condition name, such as "undefined_table".
func (e *ServerError) Condition() string {
	return pq.ErrorCode(e.Code).Name()
}
