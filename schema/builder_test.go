package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() *Rows {
	return &Rows{
		Schemas: []SchemaRow{{Name: "sales", Owner: "dbadmin"}},
		Tables: []TableRow{
			{Schema: "sales", Name: "orders", Owner: "dbadmin"},
			{Schema: "sales", Name: "staging", Owner: "dbadmin", IsTemp: true},
		},
		Columns: []ColumnRow{
			{Schema: "sales", Table: "orders", Name: "id", DataType: "int", Nullable: false, Position: 1},
			{Schema: "sales", Table: "orders", Name: "amount", DataType: "NUMERIC(10, 2)", Nullable: true, Position: 2},
			{Schema: "sales", Table: "orders", Name: "status", DataType: "varchar(10)", Nullable: true,
				Default: "'new'::varchar(10)", Position: 3},
			{Schema: "sales", Table: "staging", Name: "id", DataType: "int", Nullable: true, Position: 1},
		},
		Views: []ViewRow{
			{Schema: "sales", Name: "order_totals", Owner: "dbadmin", Definition: "SELECT  id,  amount FROM orders"},
		},
		Sequences: []SequenceRow{
			{Schema: "sales", Name: "order_seq", Increment: 1, Minimum: 1, Maximum: 1 << 40, Cache: 250000},
		},
		Projections: []ProjectionRow{
			{Schema: "sales", Name: "orders_super", AnchorTable: "orders", SegmentExpr: "hash(id)"},
		},
		ProjectionColumns: []ProjectionColumnRow{
			{Schema: "sales", Projection: "orders_super", Column: "id", Encoding: "RLE", SortPosition: 0},
			{Schema: "sales", Projection: "orders_super", Column: "amount", Encoding: "AUTO", SortPosition: -1},
		},
		Constraints: []ConstraintRow{
			{Schema: "sales", Table: "orders", Name: "pk_orders", Type: "p", Column: "id"},
		},
	}
}

func TestBuildNesting(t *testing.T) {
	model, warnings := Build(sampleRows())
	assert.Empty(t, warnings)
	assert.Equal(t, ModelVersion, model.Version)

	s := model.Schema("sales")
	require.NotNil(t, s)
	assert.Equal(t, "dbadmin", s.Owner)
	assert.Len(t, s.Tables, 2)

	orders := s.Table("orders")
	require.NotNil(t, orders)
	assert.Equal(t, TableRegular, orders.Kind)
	assert.Equal(t, []string{"id", "amount", "status"}, orders.ColumnNames())

	staging := s.Table("staging")
	require.NotNil(t, staging)
	assert.Equal(t, TableTemporary, staging.Kind)
}

func TestBuildNormalizesColumns(t *testing.T) {
	model, _ := Build(sampleRows())
	orders := model.Schema("sales").Table("orders")

	amount := orders.Column("amount")
	require.NotNil(t, amount)
	assert.Equal(t, "numeric(10,2)", amount.Type)

	status := orders.Column("status")
	require.NotNil(t, status)
	assert.Equal(t, "'new'", status.Default)
}

func TestBuildProjections(t *testing.T) {
	model, _ := Build(sampleRows())
	orders := model.Schema("sales").Table("orders")

	require.Len(t, orders.Projections, 1)
	p := orders.Projections[0]
	assert.Equal(t, "orders_super", p.Name)
	assert.Equal(t, "hash(id)", p.SegmentedBy)
	assert.Equal(t, []string{"id"}, p.SortOrder)
	// Encodings sorted by column name regardless of catalog order.
	assert.Equal(t, []ColumnEncoding{
		{Column: "amount", Encoding: "AUTO"},
		{Column: "id", Encoding: "RLE"},
	}, p.Encodings)
}

func TestBuildConstraints(t *testing.T) {
	model, _ := Build(sampleRows())
	orders := model.Schema("sales").Table("orders")

	require.Len(t, orders.Constraints, 1)
	assert.Equal(t, ConstraintPrimaryKey, orders.Constraints[0].Kind)
	assert.Equal(t, []string{"id"}, orders.Constraints[0].Columns)
}

func TestBuildIsOrderInsensitive(t *testing.T) {
	a, _ := Build(sampleRows())

	rows := sampleRows()
	// Reverse every row slice to simulate catalog nondeterminism.
	for i, j := 0, len(rows.Columns)-1; i < j; i, j = i+1, j-1 {
		rows.Columns[i], rows.Columns[j] = rows.Columns[j], rows.Columns[i]
	}
	rows.Tables[0], rows.Tables[1] = rows.Tables[1], rows.Tables[0]
	b, _ := Build(rows)

	assert.True(t, a.Equal(b), "model must not depend on catalog row order")
}

func TestBuildSkipsMalformedRows(t *testing.T) {
	rows := sampleRows()
	rows.Columns = append(rows.Columns, ColumnRow{Schema: "sales", Table: "orders", Name: "", Position: 4})
	rows.Columns = append(rows.Columns, ColumnRow{Schema: "sales", Table: "orders", Name: "bad_pos", Position: 0})

	model, warnings := Build(rows)
	assert.Len(t, warnings, 2)
	assert.Equal(t, []string{"id", "amount", "status"},
		model.Schema("sales").Table("orders").ColumnNames())
}

func TestBuildRecordsUnavailableObjectTypes(t *testing.T) {
	rows := sampleRows()
	rows.Projections = nil
	rows.ProjectionColumns = nil
	rows.Unavailable = []string{"projections"}

	model, warnings := Build(rows)
	require.Len(t, warnings, 1)
	assert.Equal(t, "projections", warnings[0].Object)

	// Everything else still captured.
	assert.NotNil(t, model.Schema("sales").Table("orders"))
	assert.NotNil(t, model.Schema("sales").View("order_totals"))
}

func TestBuildColumnForUnknownTableWarns(t *testing.T) {
	rows := &Rows{
		Columns: []ColumnRow{
			{Schema: "sales", Table: "ghost", Name: "id", DataType: "int", Position: 1},
		},
	}
	model, warnings := Build(rows)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "unknown table")
	assert.Nil(t, model.Schema("sales"))
}

func TestViewDefinitionWhitespaceCollapsed(t *testing.T) {
	model, _ := Build(sampleRows())
	v := model.Schema("sales").View("order_totals")
	require.NotNil(t, v)
	assert.Equal(t, "SELECT id, amount FROM orders", v.Definition)
}
