// Package dbschema connects to the PostgreSQL target database and exposes
// its catalog reader and SQL writer.
package dbschema

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/stokaro/ora2pg/core/platform"
	"github.com/stokaro/ora2pg/dbschema/postgres"
	"github.com/stokaro/ora2pg/dbschema/types"
)

// DatabaseConnection is an open target database together with its reader and
// writer. The embedded *sql.DB serves ad-hoc queries outside a transaction.
type DatabaseConnection struct {
	*sql.DB
	info   types.DBInfo
	reader *postgres.CatalogReader
	writer *postgres.Writer
}

// ConnectToDatabase opens a PostgreSQL connection from a postgres:// URL and
// pings it.
func ConnectToDatabase(dbURL string) (*DatabaseConnection, error) {
	return ConnectToDatabaseContext(context.Background(), dbURL)
}

// ConnectToDatabaseContext is ConnectToDatabase with a context for the ping
// and version query.
func ConnectToDatabaseContext(ctx context.Context, dbURL string) (*DatabaseConnection, error) {
	dsn, err := driverURL(dbURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", postgres.WrapError(err))
	}

	var version string
	if err := db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read server version: %w", postgres.WrapError(err))
	}

	info := types.DBInfo{
		Dialect: platform.Postgres,
		Version: version,
		Schema:  "public",
		URL:     redact(dbURL),
	}
	slog.Debug("Connected to database", "url", info.URL, "version", version)
	return NewDatabaseConnection(db, info), nil
}

// NewDatabaseConnection wraps an already open *sql.DB.
func NewDatabaseConnection(db *sql.DB, info types.DBInfo) *DatabaseConnection {
	if info.Dialect == "" {
		info.Dialect = platform.Postgres
	}
	return &DatabaseConnection{
		DB:     db,
		info:   info,
		reader: postgres.NewCatalogReader(db),
		writer: postgres.NewWriter(db),
	}
}

// Info returns the connection metadata. The URL has its password removed.
func (c *DatabaseConnection) Info() types.DBInfo {
	return c.info
}

// Reader returns the catalog reader of the connection.
func (c *DatabaseConnection) Reader() types.CatalogReader {
	return c.reader
}

// Writer returns the SQL writer of the connection. The writer is shared, so a
// transaction begun through it is visible to every caller of Writer.
func (c *DatabaseConnection) Writer() types.SchemaWriter {
	return c.writer
}

// WithLogger sets the logger of the reader and writer.
func (c *DatabaseConnection) WithLogger(logger *slog.Logger) *DatabaseConnection {
	conn := *c
	conn.reader = c.reader.WithLogger(logger)
	conn.writer = c.writer.WithLogger(logger)
	return &conn
}

// Close rolls back a pending transaction and closes the database.
func (c *DatabaseConnection) Close() error {
	if c.writer.InTransaction() {
		_ = c.writer.RollbackTransaction()
	}
	return c.DB.Close()
}

// poolParams are understood by pgxpool only; the database/sql driver sends
// them to the server as runtime parameters, which fails.
var poolParams = []string{"pool_max_conns", "pool_min_conns"}

// driverURL checks that dbURL is a PostgreSQL URL and returns it without
// pool parameters.
func driverURL(dbURL string) (string, error) {
	u, err := url.Parse(dbURL)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return "", fmt.Errorf("unsupported database URL %q: expected postgres:// or postgresql://", redact(dbURL))
	}
	q := u.Query()
	found := false
	for _, p := range poolParams {
		if q.Has(p) {
			q.Del(p)
			found = true
		}
	}
	if !found {
		return dbURL, nil
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func redact(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return dbURL
	}
	return u.Redacted()
}
