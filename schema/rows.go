package schema

// Raw catalog rows, mapped from v_catalog queries at the reader boundary.
// The builder is the only consumer; nothing downstream of Build sees them.

type Rows struct {
	Schemas           []SchemaRow
	Tables            []TableRow
	Columns           []ColumnRow
	Views             []ViewRow
	Sequences         []SequenceRow
	Projections       []ProjectionRow
	ProjectionColumns []ProjectionColumnRow
	Constraints       []ConstraintRow

	// Unavailable lists object types whose catalog query failed or timed
	// out; the capture continues without them.
	Unavailable []string
}

type SchemaRow struct {
	Name  string
	Owner string
}

type TableRow struct {
	Schema     string
	Name       string
	Owner      string
	IsTemp     bool
	Definition string // non-empty for external tables
}

type ColumnRow struct {
	Schema   string
	Table    string
	Name     string
	DataType string
	Nullable bool
	Default  string
	Position int
}

type ViewRow struct {
	Schema     string
	Name       string
	Owner      string
	Definition string
}

type SequenceRow struct {
	Schema    string
	Name      string
	Increment int64
	Minimum   int64
	Maximum   int64
	Cache     int64
}

type ProjectionRow struct {
	Schema      string
	Name        string
	AnchorTable string
	SegmentExpr string
}

type ProjectionColumnRow struct {
	Schema       string
	Projection   string
	Column       string
	Encoding     string
	SortPosition int // -1 when the column is not part of the sort order
}

type ConstraintRow struct {
	Schema    string
	Table     string
	Name      string
	Type      string // v_catalog constraint_type: p, f, u, c, n, d
	Column    string
	RefSchema string
	RefTable  string
	Predicate string
}
