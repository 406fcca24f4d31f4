package catalog

import (
	"context"
	"database/sql"

	"github.com/radcom-pso/vdrift/schema"
)

func (r *Reader) fetchSchemas(ctx context.Context) ([]schema.SchemaRow, error) {
	query := `
	SELECT schema_name, schema_owner
	FROM v_catalog.schemata
	WHERE NOT is_system_schema
	ORDER BY schema_name;
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var out []schema.SchemaRow
	for rows.Next() {
		var row schema.SchemaRow
		var owner sql.NullString
		if err := rows.Scan(&row.Name, &owner); err != nil {
			return nil, err
		}
		row.Owner = owner.String
		if r.includeSchema(row.Name) {
			out = append(out, row)
		}
	}
	return out, wrapQueryErr(rows.Err())
}

func (r *Reader) fetchTables(ctx context.Context) ([]schema.TableRow, error) {
	query := `
	SELECT table_schema, table_name, owner_name, is_temp_table, table_definition
	FROM v_catalog.tables
	WHERE NOT is_system_table
	ORDER BY table_schema, table_name;
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var out []schema.TableRow
	for rows.Next() {
		var row schema.TableRow
		var owner, definition sql.NullString
		if err := rows.Scan(&row.Schema, &row.Name, &owner, &row.IsTemp, &definition); err != nil {
			return nil, err
		}
		row.Owner = owner.String
		row.Definition = definition.String
		if r.includeSchema(row.Schema) {
			out = append(out, row)
		}
	}
	return out, wrapQueryErr(rows.Err())
}

func (r *Reader) fetchColumns(ctx context.Context) ([]schema.ColumnRow, error) {
	query := `
	SELECT table_schema, table_name, column_name, data_type,
	       is_nullable, column_default, ordinal_position
	FROM v_catalog.columns
	ORDER BY table_schema, table_name, ordinal_position;
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var out []schema.ColumnRow
	for rows.Next() {
		var row schema.ColumnRow
		var def sql.NullString
		if err := rows.Scan(&row.Schema, &row.Table, &row.Name, &row.DataType,
			&row.Nullable, &def, &row.Position); err != nil {
			return nil, err
		}
		row.Default = def.String
		if r.includeSchema(row.Schema) {
			out = append(out, row)
		}
	}
	return out, wrapQueryErr(rows.Err())
}

func (r *Reader) fetchViews(ctx context.Context) ([]schema.ViewRow, error) {
	query := `
	SELECT table_schema, table_name, owner_name, view_definition
	FROM v_catalog.views
	WHERE NOT is_system_view
	ORDER BY table_schema, table_name;
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var out []schema.ViewRow
	for rows.Next() {
		var row schema.ViewRow
		var owner, definition sql.NullString
		if err := rows.Scan(&row.Schema, &row.Name, &owner, &definition); err != nil {
			return nil, err
		}
		row.Owner = owner.String
		row.Definition = definition.String
		if r.includeSchema(row.Schema) {
			out = append(out, row)
		}
	}
	return out, wrapQueryErr(rows.Err())
}

func (r *Reader) fetchSequences(ctx context.Context) ([]schema.SequenceRow, error) {
	query := `
	SELECT sequence_schema, sequence_name, increment_by,
	       minimum, maximum, session_cache_count
	FROM v_catalog.sequences
	ORDER BY sequence_schema, sequence_name;
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var out []schema.SequenceRow
	for rows.Next() {
		var row schema.SequenceRow
		if err := rows.Scan(&row.Schema, &row.Name, &row.Increment,
			&row.Minimum, &row.Maximum, &row.Cache); err != nil {
			return nil, err
		}
		if r.includeSchema(row.Schema) {
			out = append(out, row)
		}
	}
	return out, wrapQueryErr(rows.Err())
}

func (r *Reader) fetchProjections(ctx context.Context) ([]schema.ProjectionRow, []schema.ProjectionColumnRow, error) {
	projQuery := `
	SELECT projection_schema, projection_name, anchor_table_name, segment_expression
	FROM v_catalog.projections
	ORDER BY projection_schema, projection_name;
	`

	rows, err := r.db.QueryContext(ctx, projQuery)
	if err != nil {
		return nil, nil, wrapQueryErr(err)
	}

	var projections []schema.ProjectionRow
	for rows.Next() {
		var row schema.ProjectionRow
		var segment sql.NullString
		if err := rows.Scan(&row.Schema, &row.Name, &row.AnchorTable, &segment); err != nil {
			rows.Close()
			return nil, nil, err
		}
		row.SegmentExpr = segment.String
		if r.includeSchema(row.Schema) {
			projections = append(projections, row)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, nil, wrapQueryErr(err)
	}
	rows.Close()

	colQuery := `
	SELECT projection_schema, projection_name, table_column_name,
	       encoding_type, sort_position
	FROM v_catalog.projection_columns
	ORDER BY projection_schema, projection_name, column_position;
	`

	rows, err = r.db.QueryContext(ctx, colQuery)
	if err != nil {
		return nil, nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var cols []schema.ProjectionColumnRow
	for rows.Next() {
		var row schema.ProjectionColumnRow
		var encoding sql.NullString
		var sortPos sql.NullInt64
		if err := rows.Scan(&row.Schema, &row.Projection, &row.Column, &encoding, &sortPos); err != nil {
			return nil, nil, err
		}
		row.Encoding = encoding.String
		if sortPos.Valid {
			row.SortPosition = int(sortPos.Int64)
		} else {
			row.SortPosition = -1
		}
		if r.includeSchema(row.Schema) {
			cols = append(cols, row)
		}
	}
	return projections, cols, wrapQueryErr(rows.Err())
}

func (r *Reader) fetchConstraints(ctx context.Context) ([]schema.ConstraintRow, error) {
	query := `
	SELECT cc.table_schema, cc.table_name, cc.constraint_name, cc.constraint_type,
	       cc.column_name, cc.reference_table_schema, cc.reference_table_name,
	       tc.predicate
	FROM v_catalog.constraint_columns cc
	LEFT JOIN v_catalog.table_constraints tc
		ON tc.constraint_id = cc.constraint_id
	ORDER BY cc.table_schema, cc.table_name, cc.constraint_name, cc.column_name;
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var out []schema.ConstraintRow
	for rows.Next() {
		var row schema.ConstraintRow
		var col, refSchema, refTable, predicate sql.NullString
		if err := rows.Scan(&row.Schema, &row.Table, &row.Name, &row.Type,
			&col, &refSchema, &refTable, &predicate); err != nil {
			return nil, err
		}
		row.Column = col.String
		row.RefSchema = refSchema.String
		row.RefTable = refTable.String
		row.Predicate = predicate.String
		if r.includeSchema(row.Schema) {
			out = append(out, row)
		}
	}
	return out, wrapQueryErr(rows.Err())
}
