package types

import (
	"context"
)

// Catalog is the table, view and synonym metadata the transpiler resolves
// names and %TYPE/%ROWTYPE references against.
type Catalog struct {
	Tables   []TableMetadata   `json:"tables" yaml:"tables"`
	Views    []TableMetadata   `json:"views" yaml:"views"`
	Synonyms []SynonymMetadata `json:"synonyms" yaml:"synonyms"`
}

// TableMetadata describes a table or a view.
type TableMetadata struct {
	Schema  string           `json:"schema" yaml:"schema"`
	Name    string           `json:"name" yaml:"name"`
	Columns []ColumnMetadata `json:"columns" yaml:"columns"`
}

// ColumnMetadata describes a column in source-type terms (VARCHAR2, NUMBER, ...).
type ColumnMetadata struct {
	Name      string `json:"name" yaml:"name"`
	DataType  string `json:"data_type" yaml:"dataType"`
	Length    *int   `json:"length,omitempty" yaml:"length,omitempty"`
	Precision *int   `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale     *int   `json:"scale,omitempty" yaml:"scale,omitempty"`
	Nullable  bool   `json:"nullable" yaml:"nullable"`
}

// SynonymMetadata is a synonym Schema.Name pointing at TargetSchema.TargetName.
type SynonymMetadata struct {
	Schema       string `json:"schema" yaml:"schema"`
	Name         string `json:"name" yaml:"name"`
	TargetSchema string `json:"target_schema" yaml:"targetSchema"`
	TargetName   string `json:"target_name" yaml:"targetName"`
}

// DBInfo contains connection and metadata information
type DBInfo struct {
	Dialect string `json:"dialect"`
	Version string `json:"version"`
	Schema  string `json:"schema"`
	URL     string `json:"url"`
}

// CatalogReader reads catalog metadata for a set of schemas.
type CatalogReader interface {
	ReadCatalog(ctx context.Context, schemas ...string) (*Catalog, error)
}

// SchemaWriter executes generated SQL against a database
type SchemaWriter interface {
	ExecuteSQL(ctx context.Context, sql string) error
	BeginTransaction(ctx context.Context) error
	CommitTransaction() error
	RollbackTransaction() error
	SetDryRun(dryRun bool)
	IsDryRun() bool
	EnsureSchema(ctx context.Context, name string) error
}
