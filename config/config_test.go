package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Stack)
	assert.Equal(t, "snapshots", cfg.SnapshotDir)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout.Std())
	assert.Equal(t, 4, cfg.CaptureWorkers)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vdrift.yaml")
	content := `
stack: prod
snapshot_dir: /data/snapshots
schema_filter:
  include: [sales, billing]
  exclude: [scratch]
query_timeout: 45s
capture_workers: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Stack)
	assert.Equal(t, "/data/snapshots", cfg.SnapshotDir)
	assert.Equal(t, []string{"sales", "billing"}, cfg.SchemaFilter.Include)
	assert.Equal(t, 45*time.Second, cfg.QueryTimeout.Std())
	assert.Equal(t, 2, cfg.CaptureWorkers)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vdrift.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query_timeout: soon\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		schema string
		want   bool
	}{
		{"empty filter includes all", Filter{}, "sales", true},
		{"include list hit", Filter{Include: []string{"sales"}}, "sales", true},
		{"include list miss", Filter{Include: []string{"sales"}}, "billing", false},
		{"exclude wins", Filter{Include: []string{"sales"}, Exclude: []string{"sales"}}, "sales", false},
		{"exclude only", Filter{Exclude: []string{"scratch"}}, "scratch", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.schema))
		})
	}
}
