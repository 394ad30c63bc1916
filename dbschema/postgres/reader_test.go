package postgres_test

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ora2pg/dbschema/postgres"
	"github.com/stokaro/ora2pg/dbschema/types"
)

func intp(n int) *int { return &n }

func TestCatalogReader_ReadCatalog(t *testing.T) {
	c := qt.New(t)
	db, mock, err := sqlmock.New()
	c.Assert(err, qt.IsNil)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`FROM information_schema\.tables`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"table_schema", "table_name", "table_type"}).
			AddRow("hr", "employees", "BASE TABLE").
			AddRow("hr", "emp_v", "VIEW").
			AddRow("hr", "audit_log", "BASE TABLE"))
	mock.ExpectQuery(`FROM information_schema\.columns`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"table_schema", "table_name", "column_name", "data_type", "udt_name", "is_nullable",
			"character_maximum_length", "numeric_precision", "numeric_scale", "datetime_precision",
		}).
			AddRow("hr", "employees", "emp_id", "numeric", "numeric", "NO", nil, int64(10), int64(0), nil).
			AddRow("hr", "employees", "name", "character varying", "varchar", "YES", int64(100), nil, nil, nil).
			AddRow("hr", "employees", "hired", "timestamp without time zone", "timestamp", "YES", nil, nil, nil, int64(6)).
			AddRow("hr", "employees", "tags", "ARRAY", "_text", "YES", nil, nil, nil, nil).
			AddRow("hr", "emp_v", "emp_id", "numeric", "numeric", "YES", nil, nil, nil, nil).
			AddRow("hr", "audit_log", "id", "bigint", "int8", "NO", nil, int64(64), int64(0), nil).
			AddRow("hr", "audit_log", "at", "timestamp with time zone", "timestamptz", "NO", nil, nil, nil, int64(3)))

	catalog, err := postgres.NewCatalogReader(db).ReadCatalog(t.Context(), "HR")
	c.Assert(err, qt.IsNil)
	c.Assert(mock.ExpectationsWereMet(), qt.IsNil)

	c.Assert(catalog, qt.DeepEquals, &types.Catalog{
		Tables: []types.TableMetadata{
			{Schema: "HR", Name: "AUDIT_LOG", Columns: []types.ColumnMetadata{
				{Name: "ID", DataType: "NUMBER", Precision: intp(19)},
				{Name: "AT", DataType: "TIMESTAMP WITH TIME ZONE", Precision: intp(3)},
			}},
			{Schema: "HR", Name: "EMPLOYEES", Columns: []types.ColumnMetadata{
				{Name: "EMP_ID", DataType: "NUMBER", Precision: intp(10), Scale: intp(0)},
				{Name: "NAME", DataType: "VARCHAR2", Length: intp(100), Nullable: true},
				{Name: "HIRED", DataType: "TIMESTAMP", Nullable: true},
				{Name: "TAGS", DataType: "_text", Nullable: true},
			}},
		},
		Views: []types.TableMetadata{
			{Schema: "HR", Name: "EMP_V", Columns: []types.ColumnMetadata{
				{Name: "EMP_ID", DataType: "NUMBER", Nullable: true},
			}},
		},
	})
}

func TestCatalogReader_RequiresSchema(t *testing.T) {
	c := qt.New(t)
	db, _, err := sqlmock.New()
	c.Assert(err, qt.IsNil)
	defer db.Close()

	_, err = postgres.NewCatalogReader(db).ReadCatalog(t.Context())
	c.Assert(err, qt.ErrorMatches, "at least one schema is required")
}

func TestCatalogReader_QueryError(t *testing.T) {
	c := qt.New(t)
	db, mock, err := sqlmock.New()
	c.Assert(err, qt.IsNil)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`FROM information_schema\.tables`).WillReturnError(boom)
	mock.ExpectQuery(`FROM information_schema\.columns`).
		WillReturnRows(sqlmock.NewRows([]string{
			"table_schema", "table_name", "column_name", "data_type", "udt_name", "is_nullable",
			"character_maximum_length", "numeric_precision", "numeric_scale", "datetime_precision",
		}))

	_, err = postgres.NewCatalogReader(db).ReadCatalog(t.Context(), "hr")
	c.Assert(err, qt.ErrorIs, boom)
	c.Assert(err, qt.ErrorMatches, "failed to read tables: connection reset")
}
