package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is loaded from vdrift.yaml. Every field has a usable default so the
// tool runs with no config file at all.
type Config struct {
	Stack          string   `yaml:"stack"`
	SnapshotDir    string   `yaml:"snapshot_dir"`
	SchemaFilter   Filter   `yaml:"schema_filter"`
	QueryTimeout   Duration `yaml:"query_timeout"`
	CaptureWorkers int      `yaml:"capture_workers"`
}

// Filter scopes a capture to an allow-list or deny-list of schema names.
// An empty include list means all non-system schemas.
type Filter struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Match reports whether a schema name passes the filter.
func (f Filter) Match(schema string) bool {
	for _, e := range f.Exclude {
		if e == schema {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, i := range f.Include {
		if i == schema {
			return true
		}
	}
	return false
}

// Duration lets timeouts be written as "45s" or "2m" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the plain time.Duration value.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no vdrift.yaml exists.
func Default() *Config {
	return &Config{
		Stack:          "default",
		SnapshotDir:    "snapshots",
		QueryTimeout:   Duration(30 * time.Second),
		CaptureWorkers: 4,
	}
}

// Load reads a config file, filling in defaults for anything unset. A
// missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	if cfg.Stack == "" {
		cfg.Stack = "default"
	}
	if cfg.SnapshotDir == "" {
		cfg.SnapshotDir = "snapshots"
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = Duration(30 * time.Second)
	}
	if cfg.CaptureWorkers <= 0 {
		cfg.CaptureWorkers = 4
	}
	return cfg, nil
}
