package diff

import (
	"strconv"
	"strings"
)

// Rank within a family means a larger value can represent every value of a
// smaller one. Types are normalized before they reach the differ, so keys
// are canonical spellings.
var typeFamilies = map[string]struct {
	family string
	rank   int
}{
	"tinyint":  {"integer", 1},
	"smallint": {"integer", 2},
	"int":      {"integer", 3},
	"bigint":   {"integer", 4},
	"float":    {"floating", 1},
	"char":     {"character", 1},
	"varchar":  {"character", 2},
}

// typeChangeSeverity classifies a declared-type change. Widening (longer
// varchar, higher-ranked integer, more numeric precision) is Additive;
// anything that can lose values, i.e. narrowing or a cross-family rewrite,
// is Breaking.
func typeChangeSeverity(before, after string) Severity {
	bBase, bParams := splitType(before)
	aBase, aParams := splitType(after)

	if bBase == aBase {
		return paramSeverity(bParams, aParams)
	}

	b, bOK := typeFamilies[bBase]
	a, aOK := typeFamilies[aBase]
	if bOK && aOK && b.family == a.family {
		if a.rank > b.rank {
			// Family widening still has to widen the length params,
			// e.g. char(10) -> varchar(5) narrows.
			if sev := paramSeverity(bParams, aParams); sev == Breaking {
				return Breaking
			}
			return Additive
		}
		return Breaking
	}
	return Breaking
}

func paramSeverity(before, after []int) Severity {
	if len(before) != len(after) {
		return Breaking
	}
	widened := false
	for i := range before {
		switch {
		case after[i] < before[i]:
			return Breaking
		case after[i] > before[i]:
			widened = true
		}
	}
	if widened {
		return Additive
	}
	return Informational
}

func splitType(t string) (base string, params []int) {
	base = t
	open := strings.Index(t, "(")
	if open < 0 {
		return base, nil
	}
	base = t[:open]
	inner := strings.TrimSuffix(t[open+1:], ")")
	for _, p := range strings.Split(inner, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return t, nil // unparseable params: compare as opaque text
		}
		params = append(params, n)
	}
	return base, params
}
