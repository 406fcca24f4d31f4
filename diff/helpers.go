package diff

import (
	"sort"
	"strings"

	"github.com/radcom-pso/vdrift/schema"
)

// unionKeys merges two name lists into a sorted, deduplicated union.
func unionKeys(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for _, k := range a {
		seen[k] = true
	}
	for _, k := range b {
		seen[k] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func keys[T any](m map[string]*T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func schemaNames(m *schema.Model) []string {
	out := make([]string, len(m.Schemas))
	for i := range m.Schemas {
		out[i] = m.Schemas[i].Name
	}
	return out
}

func tableNames(s *schema.SchemaNode) []string {
	out := make([]string, len(s.Tables))
	for i := range s.Tables {
		out[i] = s.Tables[i].Name
	}
	return out
}

func viewNames(s *schema.SchemaNode) []string {
	out := make([]string, len(s.Views))
	for i := range s.Views {
		out[i] = s.Views[i].Name
	}
	return out
}

func sequenceNames(s *schema.SchemaNode) []string {
	out := make([]string, len(s.Sequences))
	for i := range s.Sequences {
		out[i] = s.Sequences[i].Name
	}
	return out
}

func positionOf(t *schema.TableNode, column string) int {
	for i := range t.Columns {
		if t.Columns[i].Name == column {
			return i + 1
		}
	}
	return 0
}

func joined(items []string) string {
	return strings.Join(items, ", ")
}

func encodings(p *schema.ProjectionNode) string {
	parts := make([]string, len(p.Encodings))
	for i, e := range p.Encodings {
		parts[i] = e.Column + "=" + e.Encoding
	}
	return strings.Join(parts, ", ")
}

func maxSeverity(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}
