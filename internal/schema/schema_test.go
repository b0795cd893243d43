package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/folios/internal/testutil"
)

func TestDiscover_AggregatesFieldValues(t *testing.T) {
	dir, cat := testutil.TestLibrary(t)
	testutil.WriteDoc(t, dir, 1, 1, "---\nstatus: draft\ndocument_type: report\n---\n# A\n")
	testutil.WriteDoc(t, dir, 1, 2, "---\nstatus: final\ndocument_type: report\n---\n# A\n")
	testutil.WriteDoc(t, dir, 2, 1, "---\nstatus: draft\nrevision: 42\n---\n# B\n")
	testutil.WriteDoc(t, dir, 3, 1, "no frontmatter, contributes nothing")

	values := Discover(cat)

	if got := values["status"]; len(got) != 2 {
		t.Errorf("status values = %v", got)
	}
	if _, ok := values["status"]["final"]; !ok {
		t.Error("missing status=final")
	}
	if got := values["document_type"]; len(got) != 1 {
		t.Errorf("document_type values = %v", got)
	}
	// Integer values are stringified.
	if _, ok := values["revision"]["42"]; !ok {
		t.Errorf("revision values = %v", values["revision"])
	}
}

func TestFilterHints_Empty(t *testing.T) {
	if got := FilterHints(Values{}, nil); got != "" {
		t.Errorf("expected empty hints, got %q", got)
	}
}

func TestFilterHints_SortedEnumerated(t *testing.T) {
	values := Values{
		"status": {"draft": {}, "final": {}},
		"author": {"Jane Smith": {}},
	}
	hints := FilterHints(values, nil)

	if !strings.HasPrefix(hints, "Discovered filters:") {
		t.Errorf("hints = %q", hints)
	}
	// Fields sorted by name, values sorted within a field.
	authorIdx := strings.Index(hints, "author:")
	statusIdx := strings.Index(hints, "status:")
	if authorIdx < 0 || statusIdx < 0 || authorIdx > statusIdx {
		t.Errorf("field order wrong:\n%s", hints)
	}
	if !strings.Contains(hints, "status: draft, final") {
		t.Errorf("status line:\n%s", hints)
	}
}

func TestFilterHints_FreeTextAboveThreshold(t *testing.T) {
	set := map[string]struct{}{}
	for i := 0; i <= MaxEnumerableValues; i++ {
		set[fmt.Sprintf("v%d", i)] = struct{}{}
	}
	hints := FilterHints(Values{"title": set}, nil)
	want := fmt.Sprintf("free text (%d unique values)", MaxEnumerableValues+1)
	if !strings.Contains(hints, want) {
		t.Errorf("hints = %q", hints)
	}
}

func TestFilterHints_SidecarPrecedence(t *testing.T) {
	values := Values{"status": {"zeta": {}, "alpha": {}}}
	sidecar := &Sidecar{Fields: map[string]FieldSpec{
		"status":   {Values: []string{"draft", "review", "final"}},
		"priority": {Values: []string{"low", "high"}},
	}}
	hints := FilterHints(values, sidecar)

	// Declared values win over observed ones, in declared order.
	if !strings.Contains(hints, "status: draft, review, final") {
		t.Errorf("status line:\n%s", hints)
	}
	// Sidecar-only fields appear even with no observed values.
	if !strings.Contains(hints, "priority: low, high") {
		t.Errorf("priority line:\n%s", hints)
	}
}

func TestLoadSidecar_Missing(t *testing.T) {
	s, err := LoadSidecar(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil sidecar, got %+v", s)
	}
	// Nil sidecar is safe to query.
	if s.FieldValues("status") != nil || s.FieldNames() != nil {
		t.Error("nil sidecar should return nil values")
	}
}

func TestLoadSidecar_Parses(t *testing.T) {
	dir := t.TempDir()
	content := "[fields.status]\nvalues = [\"draft\", \"final\"]\n"
	if err := os.WriteFile(filepath.Join(dir, SidecarName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSidecar(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := s.FieldValues("status")
	if len(got) != 2 || got[0] != "draft" || got[1] != "final" {
		t.Errorf("values = %v", got)
	}
	if s.FieldValues("unknown") != nil {
		t.Error("undeclared field should return nil")
	}
}

func TestLoadSidecar_Malformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SidecarName), []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSidecar(dir); err == nil {
		t.Error("expected parse error")
	}
}
