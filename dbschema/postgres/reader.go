package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/stokaro/ora2pg/dbschema/types"
)

// CatalogReader reads table, view and column metadata of already migrated
// schemas from information_schema. Names are returned uppercased and column
// types are expressed in source-type terms (VARCHAR2, NUMBER, ...), so the
// result can be fed to the symbol table like an extracted source catalog.
type CatalogReader struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCatalogReader creates a reader over db.
func NewCatalogReader(db *sql.DB) *CatalogReader {
	return &CatalogReader{
		db:     db,
		logger: slog.Default(),
	}
}

// WithLogger returns a copy of the reader using logger.
func (r *CatalogReader) WithLogger(logger *slog.Logger) *CatalogReader {
	reader := *r
	reader.logger = logger
	return &reader
}

const relationsQuery = `
	SELECT table_schema, table_name, table_type
	FROM information_schema.tables
	WHERE lower(table_schema) = ANY($1)
	  AND table_name NOT IN ('schema_migrations')
	ORDER BY table_schema, table_name`

const columnsQuery = `
	SELECT
		table_schema,
		table_name,
		column_name,
		data_type,
		udt_name,
		is_nullable,
		character_maximum_length,
		numeric_precision,
		numeric_scale,
		datetime_precision
	FROM information_schema.columns
	WHERE lower(table_schema) = ANY($1)
	ORDER BY table_schema, table_name, ordinal_position`

type relation struct {
	schema, name, kind string
}

type column struct {
	schema, table string
	meta          types.ColumnMetadata
}

// ReadCatalog reads the relations of the given schemas. Schema names match
// case-insensitively. Relations and columns are read concurrently.
func (r *CatalogReader) ReadCatalog(ctx context.Context, schemas ...string) (*types.Catalog, error) {
	if len(schemas) == 0 {
		return nil, fmt.Errorf("at least one schema is required")
	}
	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = strings.ToLower(s)
	}

	var (
		relations []relation
		columns   []column
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		relations, err = r.readRelations(gctx, names)
		if err != nil {
			return fmt.Errorf("failed to read tables: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		columns, err = r.readColumns(gctx, names)
		if err != nil {
			return fmt.Errorf("failed to read columns: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := assemble(relations, columns)
	r.logger.Debug("Read catalog", "schemas", schemas, "tables", len(catalog.Tables), "views", len(catalog.Views))
	return catalog, nil
}

func (r *CatalogReader) readRelations(ctx context.Context, schemas []string) ([]relation, error) {
	rows, err := r.db.QueryContext(ctx, relationsQuery, pq.Array(schemas))
	if err != nil {
		return nil, WrapError(err)
	}
	defer rows.Close()

	var out []relation
	for rows.Next() {
		var rel relation
		if err := rows.Scan(&rel.schema, &rel.name, &rel.kind); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}

func (r *CatalogReader) readColumns(ctx context.Context, schemas []string) ([]column, error) {
	rows, err := r.db.QueryContext(ctx, columnsQuery, pq.Array(schemas))
	if err != nil {
		return nil, WrapError(err)
	}
	defer rows.Close()

	var out []column
	for rows.Next() {
		var (
			col                                     column
			dataType, udtName, nullable             string
			length, precision, scale, timePrecision sql.NullInt64
		)
		err := rows.Scan(
			&col.schema,
			&col.table,
			&col.meta.Name,
			&dataType,
			&udtName,
			&nullable,
			&length,
			&precision,
			&scale,
			&timePrecision,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.meta.Name = strings.ToUpper(col.meta.Name)
		col.meta.Nullable = nullable == "YES"
		sourceColumnType(&col.meta, dataType, udtName, length, precision, scale, timePrecision)
		out = append(out, col)
	}
	return out, rows.Err()
}

func assemble(relations []relation, columns []column) *types.Catalog {
	byTable := make(map[string][]types.ColumnMetadata)
	for _, col := range columns {
		key := col.schema + "." + col.table
		byTable[key] = append(byTable[key], col.meta)
	}

	catalog := &types.Catalog{}
	for _, rel := range relations {
		t := types.TableMetadata{
			Schema:  strings.ToUpper(rel.schema),
			Name:    strings.ToUpper(rel.name),
			Columns: byTable[rel.schema+"."+rel.name],
		}
		if rel.kind == "VIEW" {
			catalog.Views = append(catalog.Views, t)
		} else {
			catalog.Tables = append(catalog.Tables, t)
		}
	}
	sort.SliceStable(catalog.Tables, func(i, j int) bool { return less(catalog.Tables[i], catalog.Tables[j]) })
	sort.SliceStable(catalog.Views, func(i, j int) bool { return less(catalog.Views[i], catalog.Views[j]) })
	return catalog
}

func less(a, b types.TableMetadata) bool {
	if a.Schema != b.Schema {
		return a.Schema < b.Schema
	}
	return a.Name < b.Name
}

// sourceTypes maps information_schema data_type values back to the source
// type whose conversion yields them.
var sourceTypes = map[string]string{
	"character varying":           "VARCHAR2",
	"character":                   "CHAR",
	"text":                        "CLOB",
	"numeric":                     "NUMBER",
	"integer":                     "INTEGER",
	"bigint":                      "NUMBER",
	"smallint":                    "SMALLINT",
	"real":                        "BINARY_FLOAT",
	"double precision":            "BINARY_DOUBLE",
	"boolean":                     "BOOLEAN",
	"date":                        "DATE",
	"timestamp without time zone": "TIMESTAMP",
	"timestamp with time zone":    "TIMESTAMP WITH TIME ZONE",
	"interval":                    "INTERVAL DAY TO SECOND",
	"bytea":                       "BLOB",
	"jsonb":                       "JSON",
	"json":                        "JSON",
	"xml":                         "XMLTYPE",
}

func sourceColumnType(meta *types.ColumnMetadata, dataType, udtName string, length, precision, scale, timePrecision sql.NullInt64) {
	source, ok := sourceTypes[dataType]
	if !ok {
		// USER-DEFINED, ARRAY and anything else keep the underlying type name.
		meta.DataType = udtName
		return
	}
	meta.DataType = source
	switch source {
	case "VARCHAR2", "CHAR":
		meta.Length = intPtr(length)
	case "NUMBER":
		if dataType == "bigint" {
			p := 19
			meta.Precision = &p
			return
		}
		meta.Precision = intPtr(precision)
		if meta.Precision != nil {
			meta.Scale = intPtr(scale)
		}
	case "TIMESTAMP", "TIMESTAMP WITH TIME ZONE":
		// 6 is the server default and is left implicit.
		if timePrecision.Valid && timePrecision.Int64 != 6 {
			meta.Precision = intPtr(timePrecision)
		}
	}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
