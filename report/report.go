package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/radcom-pso/vdrift/diff"
	"github.com/radcom-pso/vdrift/schema"
)

// Input is everything the renderer may look at. Capture timestamps are
// deliberately absent: the report is a pure function of the change set, so
// two runs over the same snapshots produce byte-identical files.
type Input struct {
	PreHandle  string
	PostHandle string
	Stack      string
	Warnings   []schema.Warning
	Changes    []diff.Change
}

// Render produces the drift report. Summary counts per severity come first,
// then full detail grouped by schema, severity, object.
func Render(in Input) string {
	var b strings.Builder

	b.WriteString("VERTICA SCHEMA DRIFT REPORT\n")
	b.WriteString("===========================\n")
	fmt.Fprintf(&b, "stack : %s\n", in.Stack)
	fmt.Fprintf(&b, "pre   : %s\n", filepath.Base(in.PreHandle))
	fmt.Fprintf(&b, "post  : %s\n", filepath.Base(in.PostHandle))
	b.WriteString("\n")

	writeSummary(&b, in.Changes)

	if len(in.Warnings) > 0 {
		b.WriteString("\nCapture warnings\n")
		b.WriteString("----------------\n")
		for _, w := range in.Warnings {
			if w.Object != "" {
				fmt.Fprintf(&b, "  [%s] %s: %s\n", w.Source, w.Object, w.Message)
			} else {
				fmt.Fprintf(&b, "  [%s] %s\n", w.Source, w.Message)
			}
		}
	}

	if len(in.Changes) == 0 {
		b.WriteString("\nNo schema drift detected.\n")
		return b.String()
	}

	writeDetail(&b, in.Changes)
	return b.String()
}

func writeSummary(b *strings.Builder, changes []diff.Change) {
	counts := map[diff.Severity]int{}
	for _, c := range changes {
		counts[c.Severity]++
	}
	b.WriteString("Summary\n")
	b.WriteString("-------\n")
	fmt.Fprintf(b, "  total changes : %d\n", len(changes))
	fmt.Fprintf(b, "  breaking      : %d\n", counts[diff.Breaking])
	fmt.Fprintf(b, "  additive      : %d\n", counts[diff.Additive])
	fmt.Fprintf(b, "  informational : %d\n", counts[diff.Informational])
}

func writeDetail(b *strings.Builder, changes []diff.Change) {
	bySchema := map[string][]diff.Change{}
	var schemas []string
	for _, c := range changes {
		if _, seen := bySchema[c.Schema]; !seen {
			schemas = append(schemas, c.Schema)
		}
		bySchema[c.Schema] = append(bySchema[c.Schema], c)
	}
	sort.Strings(schemas)

	for _, schemaName := range schemas {
		fmt.Fprintf(b, "\nSchema: %s\n", schemaName)
		fmt.Fprintf(b, "%s\n", strings.Repeat("-", len(schemaName)+8))

		group := bySchema[schemaName]
		for _, sev := range []diff.Severity{diff.Breaking, diff.Additive, diff.Informational} {
			var section []diff.Change
			for _, c := range group {
				if c.Severity == sev {
					section = append(section, c)
				}
			}
			if len(section) == 0 {
				continue
			}
			fmt.Fprintf(b, "  [%s]\n", sev)
			for _, c := range section {
				fmt.Fprintf(b, "    %s %s %s\n", verb(c.Kind), c.ObjectType, c.Object)
				for _, fd := range c.Details {
					fmt.Fprintf(b, "      %s\n", fd)
				}
			}
		}
	}
}

func verb(k diff.Kind) string {
	switch k {
	case diff.Added:
		return "+"
	case diff.Removed:
		return "-"
	case diff.Reordered:
		return "~"
	default:
		return "*"
	}
}

// DefaultPath derives the report artifact path from the two snapshot
// handles it compares.
func DefaultPath(preHandle, postHandle string) string {
	trim := func(h string) string {
		return strings.TrimSuffix(filepath.Base(h), ".json")
	}
	return fmt.Sprintf("drift_%s_vs_%s.txt", trim(preHandle), trim(postHandle))
}
