package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Build normalizes raw catalog rows into an immutable Model. It is a pure
// transformation: no I/O, no dependence on row ordering. Rows missing
// required fields are skipped and reported as build-log warnings rather than
// failing the whole capture.
func Build(rows *Rows) (*Model, []Warning) {
	b := &builder{
		schemas: map[string]*SchemaNode{},
		tables:  map[string]*TableNode{},
	}

	b.addSchemas(rows.Schemas)
	b.addTables(rows.Tables)
	b.addColumns(rows.Columns)
	b.addConstraints(rows.Constraints)
	b.addProjections(rows.Projections, rows.ProjectionColumns)
	b.addViews(rows.Views)
	b.addSequences(rows.Sequences)

	for _, kind := range rows.Unavailable {
		b.warn("capture", kind, "catalog data unavailable, omitted from snapshot")
	}

	return b.finish(), b.warnings
}

type builder struct {
	schemas  map[string]*SchemaNode
	tables   map[string]*TableNode // keyed schema.table
	warnings []Warning
}

func (b *builder) warn(source, object, format string, args ...interface{}) {
	b.warnings = append(b.warnings, Warning{
		Source:  source,
		Object:  object,
		Message: fmt.Sprintf(format, args...),
	})
}

// schemaFor returns the node for a schema name, creating it on first use so
// that objects survive even when the schemata query itself was unavailable.
func (b *builder) schemaFor(name string) *SchemaNode {
	if s, ok := b.schemas[name]; ok {
		return s
	}
	s := &SchemaNode{Name: name}
	b.schemas[name] = s
	return s
}

func (b *builder) addSchemas(rows []SchemaRow) {
	for _, r := range rows {
		if r.Name == "" {
			b.warn("build", "schema", "skipping schema row with empty name")
			continue
		}
		b.schemaFor(r.Name).Owner = r.Owner
	}
}

func (b *builder) addTables(rows []TableRow) {
	for _, r := range rows {
		if r.Schema == "" || r.Name == "" {
			b.warn("build", "table", "skipping malformed table row %q.%q", r.Schema, r.Name)
			continue
		}
		kind := TableRegular
		switch {
		case r.IsTemp:
			kind = TableTemporary
		case r.Definition != "":
			kind = TableExternal
		}
		key := r.Schema + "." + r.Name
		b.tables[key] = &TableNode{Name: r.Name, Owner: r.Owner, Kind: kind}
	}
}

func (b *builder) addColumns(rows []ColumnRow) {
	for _, r := range rows {
		if r.Schema == "" || r.Table == "" || r.Name == "" || r.Position <= 0 {
			b.warn("build", r.Schema+"."+r.Table, "skipping malformed column row %q", r.Name)
			continue
		}
		t, ok := b.tables[r.Schema+"."+r.Table]
		if !ok {
			b.warn("build", r.Schema+"."+r.Table, "column %q references unknown table", r.Name)
			continue
		}
		t.Columns = append(t.Columns, ColumnNode{
			Name:     r.Name,
			Type:     NormalizeType(r.DataType),
			Nullable: r.Nullable,
			Default:  NormalizeDefault(r.Default),
			Position: r.Position,
		})
	}
}

func (b *builder) addConstraints(rows []ConstraintRow) {
	// The catalog emits one row per constrained column; group by
	// (schema, table, name) keeping column order as reported.
	type key struct{ schema, table, name string }
	grouped := map[key]*ConstraintNode{}
	var order []key

	for _, r := range rows {
		if r.Schema == "" || r.Table == "" || r.Name == "" {
			b.warn("build", r.Schema+"."+r.Table, "skipping malformed constraint row %q", r.Name)
			continue
		}
		kind, ok := constraintKind(r.Type)
		if !ok {
			// Not-null and "determines" rows carry no information the
			// column nodes don't already hold.
			continue
		}
		k := key{r.Schema, r.Table, r.Name}
		node, seen := grouped[k]
		if !seen {
			node = &ConstraintNode{Name: r.Name, Kind: kind, Predicate: r.Predicate}
			if kind == ConstraintForeignKey && r.RefTable != "" {
				node.References = r.RefSchema + "." + r.RefTable
			}
			grouped[k] = node
			order = append(order, k)
		}
		if r.Column != "" {
			node.Columns = append(node.Columns, r.Column)
		}
	}

	for _, k := range order {
		t, ok := b.tables[k.schema+"."+k.table]
		if !ok {
			b.warn("build", k.schema+"."+k.table, "constraint %q references unknown table", k.name)
			continue
		}
		t.Constraints = append(t.Constraints, *grouped[key{k.schema, k.table, k.name}])
	}
}

func constraintKind(catalogType string) (ConstraintKind, bool) {
	switch strings.ToLower(strings.TrimSpace(catalogType)) {
	case "p":
		return ConstraintPrimaryKey, true
	case "f":
		return ConstraintForeignKey, true
	case "u":
		return ConstraintUnique, true
	case "c":
		return ConstraintCheck, true
	default:
		return "", false
	}
}

func (b *builder) addProjections(rows []ProjectionRow, cols []ProjectionColumnRow) {
	type key struct{ schema, name string }
	colsByProjection := map[key][]ProjectionColumnRow{}
	for _, c := range cols {
		k := key{c.Schema, c.Projection}
		colsByProjection[k] = append(colsByProjection[k], c)
	}

	for _, r := range rows {
		if r.Schema == "" || r.Name == "" || r.AnchorTable == "" {
			b.warn("build", r.Schema+"."+r.Name, "skipping malformed projection row")
			continue
		}
		t, ok := b.tables[r.Schema+"."+r.AnchorTable]
		if !ok {
			b.warn("build", r.Schema+"."+r.AnchorTable, "projection %q references unknown table", r.Name)
			continue
		}

		node := ProjectionNode{Name: r.Name, SegmentedBy: r.SegmentExpr}
		pcols := colsByProjection[key{r.Schema, r.Name}]
		var sorted []ProjectionColumnRow
		for _, c := range pcols {
			node.Encodings = append(node.Encodings, ColumnEncoding{Column: c.Column, Encoding: c.Encoding})
			if c.SortPosition >= 0 {
				sorted = append(sorted, c)
			}
		}
		sort.Slice(node.Encodings, func(i, j int) bool {
			return node.Encodings[i].Column < node.Encodings[j].Column
		})
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].SortPosition < sorted[j].SortPosition })
		for _, c := range sorted {
			node.SortOrder = append(node.SortOrder, c.Column)
		}
		t.Projections = append(t.Projections, node)
	}
}

func (b *builder) addViews(rows []ViewRow) {
	for _, r := range rows {
		if r.Schema == "" || r.Name == "" {
			b.warn("build", "view", "skipping malformed view row %q.%q", r.Schema, r.Name)
			continue
		}
		s := b.schemaFor(r.Schema)
		s.Views = append(s.Views, ViewNode{
			Name:       r.Name,
			Owner:      r.Owner,
			Definition: collapseSpaces(r.Definition),
		})
	}
}

func (b *builder) addSequences(rows []SequenceRow) {
	for _, r := range rows {
		if r.Schema == "" || r.Name == "" {
			b.warn("build", "sequence", "skipping malformed sequence row %q.%q", r.Schema, r.Name)
			continue
		}
		s := b.schemaFor(r.Schema)
		s.Sequences = append(s.Sequences, SequenceNode{
			Name:      r.Name,
			Increment: r.Increment,
			Minimum:   r.Minimum,
			Maximum:   r.Maximum,
			Cache:     r.Cache,
		})
	}
}

// finish attaches tables to their schemas and sorts every collection so the
// model serializes identically no matter how the catalog returned its rows.
// Column order inside a table stays ordinal: position is data.
func (b *builder) finish() *Model {
	for key, t := range b.tables {
		schemaName := key[:strings.Index(key, ".")]
		sort.SliceStable(t.Columns, func(i, j int) bool {
			return t.Columns[i].Position < t.Columns[j].Position
		})
		sort.Slice(t.Constraints, func(i, j int) bool {
			return t.Constraints[i].Name < t.Constraints[j].Name
		})
		sort.Slice(t.Projections, func(i, j int) bool {
			return t.Projections[i].Name < t.Projections[j].Name
		})
		s := b.schemaFor(schemaName)
		s.Tables = append(s.Tables, *t)
	}

	m := &Model{Version: ModelVersion}
	for _, s := range b.schemas {
		sort.Slice(s.Tables, func(i, j int) bool { return s.Tables[i].Name < s.Tables[j].Name })
		sort.Slice(s.Views, func(i, j int) bool { return s.Views[i].Name < s.Views[j].Name })
		sort.Slice(s.Sequences, func(i, j int) bool { return s.Sequences[i].Name < s.Sequences[j].Name })
		m.Schemas = append(m.Schemas, *s)
	}
	sort.Slice(m.Schemas, func(i, j int) bool { return m.Schemas[i].Name < m.Schemas[j].Name })
	return m
}
