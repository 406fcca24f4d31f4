// Package runner exposes the capture and diff operations as plain callable
// services so any front end (CLI, scheduled job, API) can drive them without
// console coupling.
package runner

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/radcom-pso/vdrift/catalog"
	"github.com/radcom-pso/vdrift/config"
	"github.com/radcom-pso/vdrift/diff"
	"github.com/radcom-pso/vdrift/report"
	"github.com/radcom-pso/vdrift/schema"
	"github.com/radcom-pso/vdrift/snapshot"
)

// Capture reflects the target database's schema and persists it as a
// snapshot artifact for the given role ("pre" or "post").
func Capture(ctx context.Context, db *sql.DB, cfg *config.Config, role string) (snapshot.Handle, *snapshot.Snapshot, error) {
	reader := catalog.NewReader(db, cfg)
	rows, captureWarnings, err := reader.Read(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("capturing catalog: %w", err)
	}

	model, buildWarnings := schema.Build(rows)
	warnings := append(captureWarnings, buildWarnings...)

	snap := snapshot.New(model, cfg.Stack, role, warnings)
	store := snapshot.NewStore(cfg.SnapshotDir)
	handle, err := store.Save(snap)
	if err != nil {
		return "", nil, fmt.Errorf("saving snapshot: %w", err)
	}
	return handle, snap, nil
}

// DiffResult is what a front end needs to present a comparison: the change
// set, the rendered report, and where the report artifact was written.
type DiffResult struct {
	Changes    []diff.Change
	Report     string
	ReportPath string
	Warnings   []schema.Warning
}

// Diff loads two snapshots, computes their drift, and writes the report
// artifact. An empty outPath derives the path from the two handles.
func Diff(cfg *config.Config, preHandle, postHandle snapshot.Handle, outPath string) (*DiffResult, error) {
	store := snapshot.NewStore(cfg.SnapshotDir)

	pre, err := store.Load(preHandle)
	if err != nil {
		return nil, fmt.Errorf("loading pre snapshot: %w", err)
	}
	post, err := store.Load(postHandle)
	if err != nil {
		return nil, fmt.Errorf("loading post snapshot: %w", err)
	}

	changes, err := diff.Compute(pre.Model, post.Model)
	if err != nil {
		return nil, err
	}

	warnings := append(append([]schema.Warning{}, pre.Warnings...), post.Warnings...)
	rendered := report.Render(report.Input{
		PreHandle:  string(preHandle),
		PostHandle: string(postHandle),
		Stack:      post.Stack,
		Warnings:   warnings,
		Changes:    changes,
	})

	if outPath == "" {
		outPath = report.DefaultPath(string(preHandle), string(postHandle))
	}
	if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
		return nil, fmt.Errorf("writing report artifact: %w", err)
	}

	return &DiffResult{
		Changes:    changes,
		Report:     rendered,
		ReportPath: outPath,
		Warnings:   warnings,
	}, nil
}
