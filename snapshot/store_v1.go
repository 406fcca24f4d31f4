package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/radcom-pso/vdrift/schema"
)

// Format v1 predates table kinds, sequence cache counts, and structured
// warnings. The upgrade transform fills the v2 fields with their v1-era
// implicit values so v1 artifacts stay loadable.

type v1Snapshot struct {
	FormatVersion int       `json:"format_version"`
	CapturedAt    time.Time `json:"captured_at"`
	Stack         string    `json:"stack"`
	Role          string    `json:"role"`
	Warnings      []string  `json:"warnings,omitempty"`
	Checksum      string    `json:"checksum"`
	Model         *v1Model  `json:"model"`
}

type v1Model struct {
	Version int        `json:"version"`
	Schemas []v1Schema `json:"schemas,omitempty"`
}

type v1Schema struct {
	Name      string            `json:"name"`
	Owner     string            `json:"owner,omitempty"`
	Tables    []v1Table         `json:"tables,omitempty"`
	Views     []schema.ViewNode `json:"views,omitempty"`
	Sequences []v1Sequence      `json:"sequences,omitempty"`
}

type v1Table struct {
	Name        string                  `json:"name"`
	Owner       string                  `json:"owner,omitempty"`
	Columns     []schema.ColumnNode     `json:"columns,omitempty"`
	Constraints []schema.ConstraintNode `json:"constraints,omitempty"`
	Projections []schema.ProjectionNode `json:"projections,omitempty"`
}

type v1Sequence struct {
	Name      string `json:"name"`
	Increment int64  `json:"increment"`
	Minimum   int64  `json:"minimum"`
	Maximum   int64  `json:"maximum"`
}

func upgradeV1(data []byte) (*Snapshot, error) {
	var old v1Snapshot
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, err
	}
	if old.Model == nil {
		return nil, fmt.Errorf("missing model")
	}
	if got := v1Checksum(old.Model); got != old.Checksum {
		return nil, fmt.Errorf("checksum mismatch")
	}

	model := &schema.Model{Version: schema.ModelVersion}
	for _, s := range old.Model.Schemas {
		node := schema.SchemaNode{Name: s.Name, Owner: s.Owner, Views: s.Views}
		for _, t := range s.Tables {
			node.Tables = append(node.Tables, schema.TableNode{
				Name:        t.Name,
				Owner:       t.Owner,
				Kind:        schema.TableRegular,
				Columns:     t.Columns,
				Constraints: t.Constraints,
				Projections: t.Projections,
			})
		}
		for _, q := range s.Sequences {
			node.Sequences = append(node.Sequences, schema.SequenceNode{
				Name:      q.Name,
				Increment: q.Increment,
				Minimum:   q.Minimum,
				Maximum:   q.Maximum,
			})
		}
		model.Schemas = append(model.Schemas, node)
	}

	snap := &Snapshot{
		FormatVersion: schema.ModelVersion,
		CapturedAt:    old.CapturedAt,
		Stack:         old.Stack,
		Role:          old.Role,
		Checksum:      checksum(model),
		Model:         model,
	}
	for _, w := range old.Warnings {
		snap.Warnings = append(snap.Warnings, schema.Warning{Source: "capture", Message: w})
	}
	return snap, nil
}

func v1Checksum(m *v1Model) string {
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return hexSum(data)
}
