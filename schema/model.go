package schema

import (
	"bytes"
	"encoding/json"
)

// ModelVersion is the current schema-model format version. Snapshot artifacts
// written by this build carry this version; older artifacts are upgraded on
// load where an upgrade path exists.
const ModelVersion = 2

// Model is the canonical representation of a database's logical schema.
// All object collections are kept sorted by name so that serialization is
// deterministic regardless of catalog query ordering. A Model is immutable
// once built.
type Model struct {
	Version int          `json:"version"`
	Schemas []SchemaNode `json:"schemas,omitempty"`
}

type SchemaNode struct {
	Name      string         `json:"name"`
	Owner     string         `json:"owner,omitempty"`
	Tables    []TableNode    `json:"tables,omitempty"`
	Views     []ViewNode     `json:"views,omitempty"`
	Sequences []SequenceNode `json:"sequences,omitempty"`
}

type TableKind string

const (
	TableRegular   TableKind = "regular"
	TableTemporary TableKind = "temporary"
	TableExternal  TableKind = "external"
)

type TableNode struct {
	Name  string    `json:"name"`
	Owner string    `json:"owner,omitempty"`
	Kind  TableKind `json:"kind"`
	// Columns are ordered by ordinal position; position is schema data,
	// not a storage artifact.
	Columns     []ColumnNode     `json:"columns,omitempty"`
	Constraints []ConstraintNode `json:"constraints,omitempty"`
	Projections []ProjectionNode `json:"projections,omitempty"`
}

type ColumnNode struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Default  string `json:"default,omitempty"`
	Position int    `json:"position"`
}

type ConstraintKind string

const (
	ConstraintPrimaryKey ConstraintKind = "primary"
	ConstraintForeignKey ConstraintKind = "foreign"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintCheck      ConstraintKind = "check"
)

type ConstraintNode struct {
	Name    string         `json:"name"`
	Kind    ConstraintKind `json:"kind"`
	Columns []string       `json:"columns,omitempty"`
	// References holds "schema.table" for foreign keys.
	References string `json:"references,omitempty"`
	Predicate  string `json:"predicate,omitempty"`
}

// ProjectionNode describes one of Vertica's physical storage definitions for
// a table. Encoding changes never alter the logical schema but can silently
// change query performance, so they are captured and diffed.
type ProjectionNode struct {
	Name        string           `json:"name"`
	Encodings   []ColumnEncoding `json:"encodings,omitempty"`
	SortOrder   []string         `json:"sort_order,omitempty"`
	SegmentedBy string           `json:"segmented_by,omitempty"`
}

type ColumnEncoding struct {
	Column   string `json:"column"`
	Encoding string `json:"encoding"`
}

type ViewNode struct {
	Name       string `json:"name"`
	Owner      string `json:"owner,omitempty"`
	Definition string `json:"definition,omitempty"`
}

// SequenceNode captures the stable parameters of a sequence. The current
// value is deliberately excluded: it advances with normal inserts and would
// make two captures of an unchanged schema differ.
type SequenceNode struct {
	Name      string `json:"name"`
	Increment int64  `json:"increment"`
	Minimum   int64  `json:"minimum"`
	Maximum   int64  `json:"maximum"`
	Cache     int64  `json:"cache"`
}

// Warning is a non-fatal problem recorded while capturing or building a
// model. Warnings travel with the snapshot artifact so they are never lost
// to console output.
type Warning struct {
	Source  string `json:"source"`
	Object  string `json:"object,omitempty"`
	Message string `json:"message"`
}

// Equal reports whether two models describe the same schema. Because every
// collection is name-sorted, canonical JSON equality is exact and treats nil
// and empty slices the same way the serialized artifact does.
func (m *Model) Equal(other *Model) bool {
	if m == nil || other == nil {
		return m == other
	}
	a, err := json.Marshal(m)
	if err != nil {
		return false
	}
	b, err := json.Marshal(other)
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// Schema returns the named schema node, or nil.
func (m *Model) Schema(name string) *SchemaNode {
	for i := range m.Schemas {
		if m.Schemas[i].Name == name {
			return &m.Schemas[i]
		}
	}
	return nil
}

// Table returns the named table node, or nil.
func (s *SchemaNode) Table(name string) *TableNode {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// View returns the named view node, or nil.
func (s *SchemaNode) View(name string) *ViewNode {
	for i := range s.Views {
		if s.Views[i].Name == name {
			return &s.Views[i]
		}
	}
	return nil
}

// Sequence returns the named sequence node, or nil.
func (s *SchemaNode) Sequence(name string) *SequenceNode {
	for i := range s.Sequences {
		if s.Sequences[i].Name == name {
			return &s.Sequences[i]
		}
	}
	return nil
}

// Column returns the named column node, or nil.
func (t *TableNode) Column(name string) *ColumnNode {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the table's column names in ordinal order.
func (t *TableNode) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
