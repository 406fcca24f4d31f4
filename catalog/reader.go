package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/radcom-pso/vdrift/config"
	"github.com/radcom-pso/vdrift/schema"
)

var (
	// ErrConnection means the supplied connection is unusable; the whole
	// capture aborts.
	ErrConnection = errors.New("database connection unusable")

	// ErrPermission marks a per-object-type catalog query the current user
	// may not run. It is recovered locally: the object type is marked
	// unavailable and the capture continues.
	ErrPermission = errors.New("catalog access denied")
)

// Vertica's own schemas never belong in a drift snapshot.
var systemSchemas = map[string]bool{
	"v_catalog":  true,
	"v_monitor":  true,
	"v_internal": true,
	"v_func":     true,
	"v_txtindex": true,
}

// Reader pulls raw metadata rows out of the v_catalog system tables. It only
// ever issues read-only queries and holds no locks across calls.
type Reader struct {
	db      *sql.DB
	filter  config.Filter
	timeout config.Duration
	workers int
}

func NewReader(db *sql.DB, cfg *config.Config) *Reader {
	workers := cfg.CaptureWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Reader{
		db:      db,
		filter:  cfg.SchemaFilter,
		timeout: cfg.QueryTimeout,
		workers: workers,
	}
}

// Read captures raw rows for every object type. The per-type queries are
// independent, so they run on a bounded worker pool, each under its own
// timeout. A permission failure or timeout marks that object type
// unavailable (surfaced as a snapshot warning) instead of failing the run;
// any other query error aborts the capture.
func (r *Reader) Read(ctx context.Context) (*schema.Rows, []schema.Warning, error) {
	if err := r.db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	rows := &schema.Rows{}
	tasks := []struct {
		kind string
		fn   func(context.Context) error
	}{
		{"schemas", func(ctx context.Context) (err error) { rows.Schemas, err = r.fetchSchemas(ctx); return }},
		{"tables", func(ctx context.Context) (err error) { rows.Tables, err = r.fetchTables(ctx); return }},
		{"columns", func(ctx context.Context) (err error) { rows.Columns, err = r.fetchColumns(ctx); return }},
		{"views", func(ctx context.Context) (err error) { rows.Views, err = r.fetchViews(ctx); return }},
		{"sequences", func(ctx context.Context) (err error) { rows.Sequences, err = r.fetchSequences(ctx); return }},
		{"projections", func(ctx context.Context) (err error) {
			rows.Projections, rows.ProjectionColumns, err = r.fetchProjections(ctx)
			return
		}},
		{"constraints", func(ctx context.Context) (err error) { rows.Constraints, err = r.fetchConstraints(ctx); return }},
	}

	var (
		mu       sync.Mutex
		warnings []schema.Warning
		fatal    error
		wg       sync.WaitGroup
		sem      = make(chan struct{}, r.workers)
	)

	for _, task := range tasks {
		wg.Add(1)
		go func(kind string, fn func(context.Context) error) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			qctx, cancel := context.WithTimeout(ctx, r.timeout.Std())
			defer cancel()

			err := fn(qctx)
			if err == nil {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrPermission), errors.Is(err, context.DeadlineExceeded):
				rows.Unavailable = append(rows.Unavailable, kind)
				warnings = append(warnings, schema.Warning{
					Source:  "capture",
					Object:  kind,
					Message: err.Error(),
				})
			default:
				if fatal == nil {
					fatal = fmt.Errorf("querying %s: %w", kind, err)
				}
			}
		}(task.kind, task.fn)
	}
	wg.Wait()

	if fatal != nil {
		return nil, nil, fatal
	}
	return rows, warnings, nil
}

// wrapQueryErr classifies driver errors at the reader boundary. Vertica
// reports missing catalog privileges with "permission denied" or
// "insufficient privileges" in the message text.
func wrapQueryErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission denied") || strings.Contains(msg, "insufficient privilege") {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	if strings.Contains(msg, "deadline exceeded") {
		return context.DeadlineExceeded
	}
	return err
}

func (r *Reader) includeSchema(name string) bool {
	return !systemSchemas[name] && r.filter.Match(name)
}
