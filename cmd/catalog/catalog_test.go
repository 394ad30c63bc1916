package catalog_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"gopkg.in/yaml.v3"

	"github.com/stokaro/ora2pg/cmd/catalog"
	"github.com/stokaro/ora2pg/dbschema/types"
)

type fakeReader struct {
	catalog *types.Catalog
	err     error
	schemas []string
}

func (r *fakeReader) ReadCatalog(_ context.Context, schemas ...string) (*types.Catalog, error) {
	r.schemas = schemas
	return r.catalog, r.err
}

func hrCatalog() *types.Catalog {
	return &types.Catalog{
		Tables: []types.TableMetadata{{
			Schema:  "HR",
			Name:    "EMPLOYEES",
			Columns: []types.ColumnMetadata{{Name: "SALARY", DataType: "NUMBER"}},
		}},
		Views: []types.TableMetadata{{Schema: "HR", Name: "EMP_V"}},
	}
}

func TestRun_YAML(t *testing.T) {
	c := qt.New(t)
	reader := &fakeReader{catalog: hrCatalog()}

	var out bytes.Buffer
	c.Assert(catalog.Run(t.Context(), reader, []string{" hr", "payroll "}, catalog.FormatYAML, &out), qt.IsNil)
	c.Assert(reader.schemas, qt.DeepEquals, []string{"hr", "payroll"})

	var decoded struct {
		Catalog types.Catalog `yaml:"catalog"`
	}
	c.Assert(yaml.Unmarshal(out.Bytes(), &decoded), qt.IsNil)
	c.Assert(decoded.Catalog.Tables, qt.DeepEquals, hrCatalog().Tables)
	c.Assert(decoded.Catalog.Views[0].Name, qt.Equals, "EMP_V")
}

func TestRun_Table(t *testing.T) {
	c := qt.New(t)

	var out bytes.Buffer
	c.Assert(catalog.Run(t.Context(), &fakeReader{catalog: hrCatalog()}, []string{"hr"}, catalog.FormatTable, &out), qt.IsNil)
	c.Assert(out.String(), qt.Contains, "EMPLOYEES")
	c.Assert(out.String(), qt.Contains, "EMP_V")
	c.Assert(out.String(), qt.Contains, "TOTAL")
}

func TestRun_Errors(t *testing.T) {
	c := qt.New(t)

	err := catalog.Run(t.Context(), &fakeReader{}, []string{"hr"}, "json", &bytes.Buffer{})
	c.Assert(err, qt.ErrorMatches, `unsupported format "json": expected yaml or table`)

	err = catalog.Run(t.Context(), &fakeReader{err: errors.New("boom")}, []string{"hr"}, catalog.FormatYAML, &bytes.Buffer{})
	c.Assert(err, qt.ErrorMatches, "error reading catalog: boom")
}
