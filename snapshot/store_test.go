package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radcom-pso/vdrift/schema"
)

func testModel() *schema.Model {
	return &schema.Model{
		Version: schema.ModelVersion,
		Schemas: []schema.SchemaNode{
			{
				Name:  "sales",
				Owner: "dbadmin",
				Tables: []schema.TableNode{
					{
						Name: "orders",
						Kind: schema.TableRegular,
						Columns: []schema.ColumnNode{
							{Name: "id", Type: "int", Position: 1},
							{Name: "status", Type: "varchar(10)", Nullable: true, Default: "'new'", Position: 2},
						},
						Constraints: []schema.ConstraintNode{
							{Name: "pk_orders", Kind: schema.ConstraintPrimaryKey, Columns: []string{"id"}},
						},
						Projections: []schema.ProjectionNode{
							{
								Name:        "orders_super",
								Encodings:   []schema.ColumnEncoding{{Column: "id", Encoding: "RLE"}},
								SortOrder:   []string{"id"},
								SegmentedBy: "hash(id)",
							},
						},
					},
				},
				Views: []schema.ViewNode{
					{Name: "open_orders", Definition: "SELECT id FROM orders WHERE status = 'new'"},
				},
				Sequences: []schema.SequenceNode{
					{Name: "order_seq", Increment: 1, Minimum: 1, Maximum: 1000000, Cache: 250000},
				},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	model := testModel()
	warnings := []schema.Warning{{Source: "capture", Object: "projections", Message: "timed out"}}

	snap := New(model, "prod", "pre", warnings)
	handle, err := store.Save(snap)
	require.NoError(t, err)

	loaded, err := store.Load(handle)
	require.NoError(t, err)
	assert.True(t, model.Equal(loaded.Model), "round-tripped model must equal the saved one")
	assert.Equal(t, "prod", loaded.Stack)
	assert.Equal(t, "pre", loaded.Role)
	assert.Equal(t, warnings, loaded.Warnings)
	assert.Equal(t, snap.CapturedAt, loaded.CapturedAt)
}

func TestLoadResolvesBareName(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	handle, err := store.Save(New(testModel(), "prod", "pre", nil))
	require.NoError(t, err)

	loaded, err := store.Load(Handle(filepath.Base(string(handle))))
	require.NoError(t, err)
	assert.True(t, testModel().Equal(loaded.Model))
}

func TestLoadNotFound(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Load("missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	handle, err := store.Save(New(testModel(), "prod", "pre", nil))
	require.NoError(t, err)

	// Flip the serialized model without updating the checksum.
	data, err := os.ReadFile(string(handle))
	require.NoError(t, err)
	tampered := strings.Replace(string(data), `"orders"`, `"orderz"`, 1)
	require.NoError(t, os.WriteFile(string(handle), []byte(tampered), 0o644))

	_, err = store.Load(handle)
	assert.ErrorIs(t, err, ErrCorruptArtifact)
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "future.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"format_version": 99}`), 0o644))

	_, err := NewStore(dir).Load(Handle(path))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestLoadUpgradesV1(t *testing.T) {
	old := v1Snapshot{
		FormatVersion: 1,
		CapturedAt:    time.Date(2025, 5, 22, 10, 0, 0, 0, time.UTC),
		Stack:         "prod",
		Role:          "pre",
		Warnings:      []string{"projections unavailable"},
		Model: &v1Model{
			Version: 1,
			Schemas: []v1Schema{
				{
					Name: "sales",
					Tables: []v1Table{
						{
							Name: "orders",
							Columns: []schema.ColumnNode{
								{Name: "id", Type: "int", Position: 1},
							},
						},
					},
					Sequences: []v1Sequence{
						{Name: "order_seq", Increment: 1, Minimum: 1, Maximum: 1000000},
					},
				},
			},
		},
	}
	old.Checksum = v1Checksum(old.Model)

	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.json")
	data, err := json.Marshal(old)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := NewStore(dir).Load(Handle(path))
	require.NoError(t, err)

	assert.Equal(t, schema.ModelVersion, loaded.FormatVersion)
	assert.Equal(t, schema.ModelVersion, loaded.Model.Version)

	orders := loaded.Model.Schema("sales").Table("orders")
	require.NotNil(t, orders)
	assert.Equal(t, schema.TableRegular, orders.Kind, "v1 tables default to regular kind")

	seq := loaded.Model.Schema("sales").Sequence("order_seq")
	require.NotNil(t, seq)
	assert.Zero(t, seq.Cache, "v1 sequences had no cache count")

	require.Len(t, loaded.Warnings, 1)
	assert.Equal(t, "projections unavailable", loaded.Warnings[0].Message)
}

func TestChecksumIgnoresMetadata(t *testing.T) {
	a := New(testModel(), "prod", "pre", nil)
	b := New(testModel(), "staging", "post", []schema.Warning{{Source: "capture", Message: "x"}})
	assert.Equal(t, a.Checksum, b.Checksum, "checksum covers the model only")
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	handles, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, handles)

	_, err = store.Save(New(testModel(), "prod", "pre", nil))
	require.NoError(t, err)
	_, err = store.Save(New(testModel(), "prod", "post", nil))
	require.NoError(t, err)

	handles, err = store.List()
	require.NoError(t, err)
	assert.Len(t, handles, 2)
}
