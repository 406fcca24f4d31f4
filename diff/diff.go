package diff

import (
	"errors"
	"fmt"
	"sort"

	"github.com/radcom-pso/vdrift/schema"
)

// ErrIncompatibleModelVersion means the two models carry different format
// versions and no upgrade path exists between them.
var ErrIncompatibleModelVersion = errors.New("schema models have incompatible format versions")

type Kind string

const (
	Added     Kind = "added"
	Modified  Kind = "modified"
	Removed   Kind = "removed"
	Reordered Kind = "reordered"
)

type Severity int

const (
	Informational Severity = iota
	Additive
	Breaking
)

func (s Severity) String() string {
	switch s {
	case Breaking:
		return "BREAKING"
	case Additive:
		return "ADDITIVE"
	default:
		return "INFO"
	}
}

// ObjectType orders change output: containers before their contents, logical
// objects before physical ones.
type ObjectType int

const (
	ObjectSchema ObjectType = iota
	ObjectTable
	ObjectColumn
	ObjectConstraint
	ObjectProjection
	ObjectView
	ObjectSequence
)

func (o ObjectType) String() string {
	switch o {
	case ObjectSchema:
		return "schema"
	case ObjectTable:
		return "table"
	case ObjectColumn:
		return "column"
	case ObjectConstraint:
		return "constraint"
	case ObjectProjection:
		return "projection"
	case ObjectView:
		return "view"
	case ObjectSequence:
		return "sequence"
	default:
		return "object"
	}
}

// FieldDiff is one attribute-level difference inside a Modified change.
type FieldDiff struct {
	Field  string
	Before string
	After  string
}

func (f FieldDiff) String() string {
	return fmt.Sprintf("%s: %s → %s", f.Field, f.Before, f.After)
}

// Change is one detected drift. Object identity is the (schema, object type,
// name) tuple; catalog object ids are never consulted, so a drop/recreate
// under the same name with identical structure is a no-op and a rename is
// Removed + Added.
type Change struct {
	Schema     string
	ObjectType ObjectType
	Object     string
	Kind       Kind
	Severity   Severity
	Details    []FieldDiff
}

// Compute diffs two models into a deterministically ordered change set.
func Compute(pre, post *schema.Model) ([]Change, error) {
	if pre.Version != post.Version {
		return nil, fmt.Errorf("%w: pre is v%d, post is v%d",
			ErrIncompatibleModelVersion, pre.Version, post.Version)
	}

	d := &differ{}
	for _, name := range unionKeys(schemaNames(pre), schemaNames(post)) {
		d.compareSchema(pre.Schema(name), post.Schema(name), name)
	}

	changes := d.changes
	sort.Slice(changes, func(i, j int) bool {
		a, b := changes[i], changes[j]
		if a.Schema != b.Schema {
			return a.Schema < b.Schema
		}
		if a.ObjectType != b.ObjectType {
			return a.ObjectType < b.ObjectType
		}
		if a.Object != b.Object {
			return a.Object < b.Object
		}
		return a.Kind < b.Kind
	})
	return changes, nil
}

type differ struct {
	changes []Change
}

func (d *differ) emit(c Change) {
	d.changes = append(d.changes, c)
}

func (d *differ) compareSchema(pre, post *schema.SchemaNode, name string) {
	// One-sided schemas still contribute their contained identities: every
	// object under them is present in only one model.
	if pre == nil {
		d.emit(Change{Schema: name, ObjectType: ObjectSchema, Object: name, Kind: Added, Severity: Additive})
		pre = &schema.SchemaNode{Name: name}
	} else if post == nil {
		d.emit(Change{Schema: name, ObjectType: ObjectSchema, Object: name, Kind: Removed, Severity: Breaking})
		post = &schema.SchemaNode{Name: name}
	} else if pre.Owner != post.Owner {
		d.emit(Change{
			Schema: name, ObjectType: ObjectSchema, Object: name,
			Kind: Modified, Severity: Informational,
			Details: []FieldDiff{{Field: "owner", Before: pre.Owner, After: post.Owner}},
		})
	}

	for _, t := range unionKeys(tableNames(pre), tableNames(post)) {
		d.compareTable(name, pre.Table(t), post.Table(t), t)
	}
	for _, v := range unionKeys(viewNames(pre), viewNames(post)) {
		d.compareView(name, pre.View(v), post.View(v), v)
	}
	for _, q := range unionKeys(sequenceNames(pre), sequenceNames(post)) {
		d.compareSequence(name, pre.Sequence(q), post.Sequence(q), q)
	}
}

func (d *differ) compareTable(schemaName string, pre, post *schema.TableNode, name string) {
	if pre == nil {
		d.emit(Change{Schema: schemaName, ObjectType: ObjectTable, Object: name, Kind: Added, Severity: Additive})
		return
	}
	if post == nil {
		d.emit(Change{Schema: schemaName, ObjectType: ObjectTable, Object: name, Kind: Removed, Severity: Breaking})
		return
	}

	var details []FieldDiff
	if pre.Owner != post.Owner {
		details = append(details, FieldDiff{Field: "owner", Before: pre.Owner, After: post.Owner})
	}
	if pre.Kind != post.Kind {
		details = append(details, FieldDiff{Field: "kind", Before: string(pre.Kind), After: string(post.Kind)})
	}
	if len(details) > 0 {
		d.emit(Change{
			Schema: schemaName, ObjectType: ObjectTable, Object: name,
			Kind: Modified, Severity: Informational, Details: details,
		})
	}

	d.compareColumns(schemaName, name, pre, post)
	d.compareConstraints(schemaName, name, pre.Constraints, post.Constraints)
	d.compareProjections(schemaName, name, pre.Projections, post.Projections)
}

func (d *differ) compareColumns(schemaName, tableName string, pre, post *schema.TableNode) {
	sameSet := true
	for _, name := range unionKeys(pre.ColumnNames(), post.ColumnNames()) {
		before, after := pre.Column(name), post.Column(name)
		object := tableName + "." + name
		switch {
		case before == nil:
			d.emit(Change{
				Schema: schemaName, ObjectType: ObjectColumn, Object: object,
				Kind: Added, Severity: addedColumnSeverity(after),
				Details: []FieldDiff{{Field: "type", After: after.Type}},
			})
			sameSet = false
		case after == nil:
			d.emit(Change{
				Schema: schemaName, ObjectType: ObjectColumn, Object: object,
				Kind: Removed, Severity: Breaking,
			})
			sameSet = false
		default:
			d.compareColumn(schemaName, object, before, after)
		}
	}

	// Reordering is only meaningful over an unchanged column set; when
	// columns were added or removed, position drift of the survivors is a
	// storage artifact, not drift.
	if sameSet {
		if moved := reorderedColumns(pre, post); len(moved) > 0 {
			d.emit(Change{
				Schema: schemaName, ObjectType: ObjectTable, Object: tableName,
				Kind: Reordered, Severity: Informational, Details: moved,
			})
		}
	}
}

func (d *differ) compareColumn(schemaName, object string, before, after *schema.ColumnNode) {
	var details []FieldDiff
	severity := Informational

	if before.Type != after.Type {
		details = append(details, FieldDiff{Field: "type", Before: before.Type, After: after.Type})
		severity = maxSeverity(severity, typeChangeSeverity(before.Type, after.Type))
	}
	if before.Nullable != after.Nullable {
		details = append(details, FieldDiff{
			Field:  "nullable",
			Before: fmt.Sprintf("%t", before.Nullable),
			After:  fmt.Sprintf("%t", after.Nullable),
		})
		// Tightening to NOT NULL without a default breaks existing writers.
		if !after.Nullable && after.Default == "" {
			severity = maxSeverity(severity, Breaking)
		}
	}
	if before.Default != after.Default {
		details = append(details, FieldDiff{Field: "default", Before: before.Default, After: after.Default})
	}

	if len(details) > 0 {
		d.emit(Change{
			Schema: schemaName, ObjectType: ObjectColumn, Object: object,
			Kind: Modified, Severity: severity, Details: details,
		})
	}
}

func addedColumnSeverity(col *schema.ColumnNode) Severity {
	if !col.Nullable && col.Default == "" {
		return Breaking
	}
	return Additive
}

// reorderedColumns returns position diffs when the same column set appears
// in a different ordinal order.
func reorderedColumns(pre, post *schema.TableNode) []FieldDiff {
	if len(pre.Columns) != len(post.Columns) {
		return nil
	}
	var moved []FieldDiff
	for i := range pre.Columns {
		if pre.Columns[i].Name != post.Columns[i].Name {
			moved = append(moved, FieldDiff{
				Field:  pre.Columns[i].Name,
				Before: fmt.Sprintf("position %d", i+1),
				After:  fmt.Sprintf("position %d", positionOf(post, pre.Columns[i].Name)),
			})
		}
	}
	return moved
}

func (d *differ) compareConstraints(schemaName, tableName string, pre, post []schema.ConstraintNode) {
	byName := func(nodes []schema.ConstraintNode) map[string]*schema.ConstraintNode {
		m := make(map[string]*schema.ConstraintNode, len(nodes))
		for i := range nodes {
			m[nodes[i].Name] = &nodes[i]
		}
		return m
	}
	before, after := byName(pre), byName(post)

	for _, name := range unionKeys(keys(before), keys(after)) {
		object := tableName + "." + name
		b, a := before[name], after[name]
		switch {
		case b == nil:
			d.emit(Change{Schema: schemaName, ObjectType: ObjectConstraint, Object: object, Kind: Added, Severity: Informational})
		case a == nil:
			d.emit(Change{Schema: schemaName, ObjectType: ObjectConstraint, Object: object, Kind: Removed, Severity: Informational})
		default:
			var details []FieldDiff
			if b.Kind != a.Kind {
				details = append(details, FieldDiff{Field: "kind", Before: string(b.Kind), After: string(a.Kind)})
			}
			if joined(b.Columns) != joined(a.Columns) {
				details = append(details, FieldDiff{Field: "columns", Before: joined(b.Columns), After: joined(a.Columns)})
			}
			if b.References != a.References {
				details = append(details, FieldDiff{Field: "references", Before: b.References, After: a.References})
			}
			if b.Predicate != a.Predicate {
				details = append(details, FieldDiff{Field: "predicate", Before: b.Predicate, After: a.Predicate})
			}
			if len(details) > 0 {
				d.emit(Change{
					Schema: schemaName, ObjectType: ObjectConstraint, Object: object,
					Kind: Modified, Severity: Informational, Details: details,
				})
			}
		}
	}
}

func (d *differ) compareProjections(schemaName, tableName string, pre, post []schema.ProjectionNode) {
	byName := func(nodes []schema.ProjectionNode) map[string]*schema.ProjectionNode {
		m := make(map[string]*schema.ProjectionNode, len(nodes))
		for i := range nodes {
			m[nodes[i].Name] = &nodes[i]
		}
		return m
	}
	before, after := byName(pre), byName(post)

	for _, name := range unionKeys(keys(before), keys(after)) {
		object := tableName + "." + name
		b, a := before[name], after[name]
		switch {
		case b == nil:
			d.emit(Change{Schema: schemaName, ObjectType: ObjectProjection, Object: object, Kind: Added, Severity: Informational})
		case a == nil:
			d.emit(Change{Schema: schemaName, ObjectType: ObjectProjection, Object: object, Kind: Removed, Severity: Informational})
		default:
			var details []FieldDiff
			if be, ae := encodings(b), encodings(a); be != ae {
				details = append(details, FieldDiff{Field: "encodings", Before: be, After: ae})
			}
			if joined(b.SortOrder) != joined(a.SortOrder) {
				details = append(details, FieldDiff{Field: "sort order", Before: joined(b.SortOrder), After: joined(a.SortOrder)})
			}
			if b.SegmentedBy != a.SegmentedBy {
				details = append(details, FieldDiff{Field: "segmentation", Before: b.SegmentedBy, After: a.SegmentedBy})
			}
			if len(details) > 0 {
				d.emit(Change{
					Schema: schemaName, ObjectType: ObjectProjection, Object: object,
					Kind: Modified, Severity: Informational, Details: details,
				})
			}
		}
	}
}

func (d *differ) compareView(schemaName string, pre, post *schema.ViewNode, name string) {
	switch {
	case pre == nil:
		d.emit(Change{Schema: schemaName, ObjectType: ObjectView, Object: name, Kind: Added, Severity: Additive})
	case post == nil:
		// Consumers of a dropped view break exactly like those of a
		// dropped table.
		d.emit(Change{Schema: schemaName, ObjectType: ObjectView, Object: name, Kind: Removed, Severity: Breaking})
	default:
		var details []FieldDiff
		if pre.Definition != post.Definition {
			details = append(details, FieldDiff{Field: "definition", Before: pre.Definition, After: post.Definition})
		}
		if pre.Owner != post.Owner {
			details = append(details, FieldDiff{Field: "owner", Before: pre.Owner, After: post.Owner})
		}
		if len(details) > 0 {
			d.emit(Change{
				Schema: schemaName, ObjectType: ObjectView, Object: name,
				Kind: Modified, Severity: Informational, Details: details,
			})
		}
	}
}

func (d *differ) compareSequence(schemaName string, pre, post *schema.SequenceNode, name string) {
	switch {
	case pre == nil:
		d.emit(Change{Schema: schemaName, ObjectType: ObjectSequence, Object: name, Kind: Added, Severity: Additive})
	case post == nil:
		d.emit(Change{Schema: schemaName, ObjectType: ObjectSequence, Object: name, Kind: Removed, Severity: Informational})
	default:
		var details []FieldDiff
		diffInt := func(field string, b, a int64) {
			if b != a {
				details = append(details, FieldDiff{
					Field:  field,
					Before: fmt.Sprintf("%d", b),
					After:  fmt.Sprintf("%d", a),
				})
			}
		}
		diffInt("increment", pre.Increment, post.Increment)
		diffInt("minimum", pre.Minimum, post.Minimum)
		diffInt("maximum", pre.Maximum, post.Maximum)
		diffInt("cache", pre.Cache, post.Cache)
		if len(details) > 0 {
			d.emit(Change{
				Schema: schemaName, ObjectType: ObjectSequence, Object: name,
				Kind: Modified, Severity: Informational, Details: details,
			})
		}
	}
}
