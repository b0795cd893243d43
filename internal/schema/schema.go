// Package schema discovers the frontmatter field values present in a
// document library and renders advisory filter hints for tool descriptions.
// The result is built once at startup and injected; it never gates queries
// or rejects documents.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/folios/internal/parser"
	"github.com/starford/folios/internal/storage"
)

// MaxEnumerableValues is the cutoff above which a field is summarized as
// free text instead of having its values listed.
const MaxEnumerableValues = 10

// Values maps frontmatter field names to the set of values observed across
// the library. Integer values are stringified.
type Values map[string]map[string]struct{}

// Discover scans every catalog entry and aggregates frontmatter field
// values. Unreadable or malformed documents contribute nothing.
func Discover(cat storage.Catalog) Values {
	out := Values{}
	for _, e := range cat.Entries() {
		data, err := cat.Read(e.Name)
		if err != nil {
			continue
		}
		fm, _, err := parser.Split(string(data), parser.ModePermissive)
		if err != nil {
			continue
		}
		for pair := fm.Oldest(); pair != nil; pair = pair.Next() {
			set := out[pair.Key]
			if set == nil {
				set = map[string]struct{}{}
				out[pair.Key] = set
			}
			set[fmt.Sprint(pair.Value)] = struct{}{}
		}
	}
	return out
}

// FilterHints renders the discovered schema as human-readable description
// text. Fields are sorted by name; low-cardinality fields list their values
// sorted, high-cardinality fields show a count. Values declared in the
// sidecar take precedence, in their declared order, for the fields it names.
func FilterHints(values Values, sidecar *Sidecar) string {
	fields := make(map[string]struct{}, len(values))
	for f := range values {
		fields[f] = struct{}{}
	}
	for _, f := range sidecar.FieldNames() {
		fields[f] = struct{}{}
	}
	if len(fields) == 0 {
		return ""
	}

	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Discovered filters:")
	for _, f := range names {
		if declared := sidecar.FieldValues(f); declared != nil {
			fmt.Fprintf(&b, "\n  - %s: %s", f, strings.Join(declared, ", "))
			continue
		}
		set := values[f]
		if len(set) > MaxEnumerableValues {
			fmt.Fprintf(&b, "\n  - %s: free text (%d unique values)", f, len(set))
			continue
		}
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		fmt.Fprintf(&b, "\n  - %s: %s", f, strings.Join(vals, ", "))
	}
	return b.String()
}
