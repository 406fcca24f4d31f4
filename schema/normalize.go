package schema

import "strings"

// Canonical spellings for type names the catalog reports inconsistently.
// Keys and values are lower case with single internal spaces.
var typeSynonyms = map[string]string{
	"character varying": "varchar",
	"char varying":      "varchar",
	"character":         "char",
	"integer":           "int",
	"int8":              "int",
	"float8":            "float",
	"double precision":  "float",
	"timestamptz":       "timestamp with time zone",
	"timetz":            "time with time zone",
	"decimal":           "numeric",
}

// NormalizeType collapses a declared type to one canonical form so that
// `VARCHAR (32)` and `varchar(32)` compare equal. The result is
// base-type[(params)] in lower case with no internal whitespace around the
// parameter list.
func NormalizeType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = collapseSpaces(t)

	base, params := t, ""
	if i := strings.Index(t, "("); i >= 0 {
		base = strings.TrimSpace(t[:i])
		params = t[i:]
	}
	if canonical, ok := typeSynonyms[base]; ok {
		base = canonical
	}
	if params == "" {
		return base
	}

	params = strings.TrimSuffix(strings.TrimPrefix(params, "("), ")")
	parts := strings.Split(params, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return base + "(" + strings.Join(parts, ",") + ")"
}

// NormalizeDefault strips the wrapping the catalog adds around default
// expressions (implicit casts, redundant parentheses) so that semantically
// identical defaults compare equal. An empty result means no default.
func NormalizeDefault(raw string) string {
	d := collapseSpaces(strings.TrimSpace(raw))

	// Casts and parentheses nest, so peel until nothing changes:
	// ((0))::int -> (0) -> 0.
	for {
		prev := d

		// Redundant outer parentheses: (('x')) -> 'x'.
		for strings.HasPrefix(d, "(") && strings.HasSuffix(d, ")") && balanced(d[1:len(d)-1]) {
			d = strings.TrimSpace(d[1 : len(d)-1])
		}

		// Trailing catalog-generated cast: 'active'::varchar(10) -> 'active'.
		if i := strings.LastIndex(d, "::"); i > 0 && balanced(d[:i]) {
			d = strings.TrimSpace(d[:i])
		}

		if d == prev {
			return d
		}
	}
}

// balanced reports whether parentheses pair up and quotes close within s,
// so trimming around it cannot split a literal.
func balanced(s string) bool {
	depth := 0
	inQuote := false
	for _, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0 && !inQuote
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
