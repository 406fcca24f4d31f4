package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/radcom-pso/vdrift/schema"
)

var (
	ErrNotFound           = errors.New("snapshot not found")
	ErrCorruptArtifact    = errors.New("snapshot artifact failed integrity check")
	ErrUnsupportedVersion = errors.New("snapshot format version not supported")
)

// Snapshot wraps a schema model with its capture metadata. It is created
// once at capture time and never mutated afterwards.
type Snapshot struct {
	FormatVersion int              `json:"format_version"`
	CapturedAt    time.Time        `json:"captured_at"`
	Stack         string           `json:"stack"`
	Role          string           `json:"role"`
	Warnings      []schema.Warning `json:"warnings,omitempty"`
	Checksum      string           `json:"checksum"`
	Model         *schema.Model    `json:"model"`
}

// New stamps a freshly built model with capture metadata.
func New(model *schema.Model, stack, role string, warnings []schema.Warning) *Snapshot {
	return &Snapshot{
		FormatVersion: schema.ModelVersion,
		CapturedAt:    time.Now().UTC().Truncate(time.Second),
		Stack:         stack,
		Role:          role,
		Warnings:      warnings,
		Checksum:      checksum(model),
		Model:         model,
	}
}

// checksum is a sha256 over the canonical model JSON. The capture timestamp
// is metadata, not content, so it never participates.
func checksum(model *schema.Model) string {
	data, err := json.Marshal(model)
	if err != nil {
		return ""
	}
	return hexSum(data)
}

func hexSum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Handle identifies a stored snapshot artifact.
type Handle string

// Store reads and writes snapshot artifacts under a single directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes a durable artifact and returns its handle. The filename embeds
// the content checksum so unchanged schemas produce recognizably identical
// artifacts.
func (s *Store) Save(snap *Snapshot) (Handle, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s_%s.json",
		snap.Stack,
		snap.Role,
		snap.CapturedAt.Format("20060102-150405"),
		snap.Checksum[:12],
	)
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot artifact: %w", err)
	}
	return Handle(path), nil
}

// Load reads an artifact back. The returned model is equal to the saved one;
// v1 artifacts are upgraded to the current format in memory. Fails with
// ErrNotFound, ErrUnsupportedVersion, or ErrCorruptArtifact.
func (s *Store) Load(h Handle) (*Snapshot, error) {
	path := s.resolve(h)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, h)
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot artifact: %w", err)
	}

	var header struct {
		FormatVersion int `json:"format_version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArtifact, h, err)
	}

	var snap *Snapshot
	switch header.FormatVersion {
	case schema.ModelVersion:
		snap = &Snapshot{}
		if err := json.Unmarshal(data, snap); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArtifact, h, err)
		}
	case 1:
		snap, err = upgradeV1(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArtifact, h, err)
		}
	default:
		return nil, fmt.Errorf("%w: artifact is v%d, reader supports v%d and v1",
			ErrUnsupportedVersion, header.FormatVersion, schema.ModelVersion)
	}

	if snap.Model == nil {
		return nil, fmt.Errorf("%w: %s: missing model", ErrCorruptArtifact, h)
	}
	if got := checksum(snap.Model); got != snap.Checksum {
		return nil, fmt.Errorf("%w: %s: checksum mismatch", ErrCorruptArtifact, h)
	}
	return snap, nil
}

// resolve accepts either a bare artifact name or a full path as a handle.
func (s *Store) resolve(h Handle) string {
	p := string(h)
	if filepath.Dir(p) == "." {
		return filepath.Join(s.dir, p)
	}
	return p
}

// List returns the handles of every artifact in the store, newest name last.
func (s *Store) List() ([]Handle, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing snapshot directory: %w", err)
	}

	var handles []Handle
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		handles = append(handles, Handle(filepath.Join(s.dir, e.Name())))
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles, nil
}
