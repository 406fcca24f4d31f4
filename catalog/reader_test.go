package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radcom-pso/vdrift/config"
)

func TestWrapQueryErr(t *testing.T) {
	assert.NoError(t, wrapQueryErr(nil))

	err := wrapQueryErr(errors.New("ERROR 4367: Permission denied for schema v_catalog"))
	assert.ErrorIs(t, err, ErrPermission)

	err = wrapQueryErr(errors.New("Insufficient privileges to query projections"))
	assert.ErrorIs(t, err, ErrPermission)

	err = wrapQueryErr(errors.New("context deadline exceeded"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	plain := errors.New("syntax error at or near")
	assert.Equal(t, plain, wrapQueryErr(plain))
}

func TestIncludeSchema(t *testing.T) {
	cfg := config.Default()
	r := NewReader(nil, cfg)

	assert.True(t, r.includeSchema("sales"))
	assert.False(t, r.includeSchema("v_catalog"))
	assert.False(t, r.includeSchema("v_internal"))

	cfg.SchemaFilter = config.Filter{Include: []string{"sales", "v_monitor"}, Exclude: []string{"staging"}}
	r = NewReader(nil, cfg)

	assert.True(t, r.includeSchema("sales"))
	assert.False(t, r.includeSchema("staging"))
	assert.False(t, r.includeSchema("public"), "include list is exhaustive when set")
	assert.False(t, r.includeSchema("v_monitor"), "system schemas stay out even when included")
}

func TestNewReaderClampsWorkers(t *testing.T) {
	cfg := config.Default()
	cfg.CaptureWorkers = 0
	r := NewReader(nil, cfg)
	assert.Equal(t, 1, r.workers)
}
