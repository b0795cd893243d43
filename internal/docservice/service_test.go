package docservice

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/starford/folios/internal/apperr"
	"github.com/starford/folios/internal/models"
	"github.com/starford/folios/internal/parser"
	"github.com/starford/folios/internal/testutil"
)

func newService(t *testing.T) (string, *Service) {
	t.Helper()
	dir, cat := testutil.TestLibrary(t)
	return dir, NewService(cat, parser.ModePermissive)
}

func TestContent_LatestAndPinned(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 1, testutil.DocV1)
	testutil.WriteDoc(t, dir, 1001, 2, testutil.DocV2)

	content, err := svc.Content(1001, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != testutil.DocV2 {
		t.Error("latest content should be v2")
	}

	content, err = svc.Content(1001, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != testutil.DocV1 {
		t.Error("pinned content should be v1")
	}
}

func TestContent_MalformedStillFetches(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 5, 1, "no frontmatter, no title")

	content, err := svc.Content(5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "no frontmatter, no title" {
		t.Errorf("content = %q", content)
	}
}

func TestContent_NotFound(t *testing.T) {
	_, svc := newService(t)
	if _, err := svc.Content(9999, 0); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestMetadata_FullRecord(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 1, testutil.DocV1)
	testutil.WriteDoc(t, dir, 1001, 2, testutil.DocV2)

	meta, err := svc.Metadata(1001, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.ID != 1001 || meta.Version != 2 {
		t.Errorf("id/version = %d/%d", meta.ID, meta.Version)
	}
	if meta.Title != "Quarterly Report" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Author != "Jane Smith" || meta.Date != "2024-02-20" {
		t.Errorf("author = %q, date = %q", meta.Author, meta.Date)
	}
	if len(meta.Chapters) != 3 || meta.Chapters[2].Title != "Risks" {
		t.Errorf("chapters = %v", meta.Chapters)
	}
	if v, ok := meta.Field("status"); !ok || v != "final" {
		t.Errorf("status field = %v, %v", v, ok)
	}
	// author and date are consumed into named fields, not duplicated.
	if _, ok := meta.Field("author"); ok {
		t.Error("author should not appear in pass-through fields")
	}
	if _, ok := meta.Field("date"); ok {
		t.Error("date should not appear in pass-through fields")
	}
}

func TestMetadata_ReservedKeysFromFilename(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 1,
		"---\nid: 5\nversion: 9\ntitle: Impostor\nchapters: 2\nstatus: draft\n---\n# Real Title\n")

	meta, err := svc.Metadata(1001, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.ID != 1001 || meta.Version != 1 || meta.Title != "Real Title" {
		t.Errorf("meta = %+v", meta)
	}
	// Frontmatter spellings of the named record fields are dropped so the
	// serialized record never carries duplicate keys.
	for _, key := range []string{"id", "version", "title", "chapters"} {
		if _, ok := meta.Field(key); ok {
			t.Errorf("%s should not appear in pass-through fields", key)
		}
	}
	if v, ok := meta.Field("status"); !ok || v != "draft" {
		t.Errorf("status field = %v, %v", v, ok)
	}

	out, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire struct {
		ID      int    `json:"id"`
		Version int    `json:"version"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(out, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wire.ID != 1001 || wire.Version != 1 || wire.Title != "Real Title" {
		t.Errorf("wire = %+v", wire)
	}
}

func TestMetadata_NADefaults(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 2, 1, "# Bare Document\n\ntext\n")

	meta, err := svc.Metadata(2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Author != models.NA || meta.Date != models.NA {
		t.Errorf("author = %q, date = %q, want NA", meta.Author, meta.Date)
	}
	if len(meta.Chapters) != 0 {
		t.Errorf("chapters = %v", meta.Chapters)
	}
}

func TestMetadata_MissingTitle(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 3, 1, "---\nstatus: draft\n---\nno heading here\n")

	if _, err := svc.Metadata(3, 0); !apperr.Is(err, apperr.CodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestMetadata_StrictMode(t *testing.T) {
	dir, cat := testutil.TestLibrary(t)
	svc := NewService(cat, parser.ModeStrict)
	testutil.WriteDoc(t, dir, 4, 1, "# No Frontmatter\n")

	if _, err := svc.Metadata(4, 0); !apperr.Is(err, apperr.CodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT in strict mode, got %v", err)
	}
}

func TestChapter_ExactAndCaseInsensitive(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 1, testutil.DocV1)

	ch, err := svc.Chapter(1001, "Summary", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.ChapterTitle != "Summary" {
		t.Errorf("title = %q", ch.ChapterTitle)
	}
	if !strings.Contains(ch.Content, "Q1 revenue was flat.") {
		t.Errorf("content = %q", ch.Content)
	}

	ch, err = svc.Chapter(1001, "summary", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.ChapterTitle != "Summary" {
		t.Errorf("case-insensitive match returned %q", ch.ChapterTitle)
	}
}

func TestChapter_NotFound(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 1, testutil.DocV1)

	_, err := svc.Chapter(1001, "Nonexistent", 0)
	if !apperr.Is(err, apperr.CodeChapterNotFound) {
		t.Errorf("expected CHAPTER_NOT_FOUND, got %v", err)
	}
	if _, err := svc.Chapter(9999, "Summary", 0); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("unknown document: expected NOT_FOUND, got %v", err)
	}
}

func TestList_LatestVersionsSortedByID(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 1, testutil.DocV1)
	testutil.WriteDoc(t, dir, 1001, 2, testutil.DocV2)
	testutil.WriteDoc(t, dir, 7, 1, "# Small Doc\n")

	items := svc.List(Filters{})
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(items), items)
	}
	if items[0].ID != 7 || items[1].ID != 1001 {
		t.Errorf("order = %d, %d", items[0].ID, items[1].ID)
	}
	if items[1].LatestVersion != 2 || items[1].Status != "final" || items[1].Type != "report" {
		t.Errorf("summary = %+v", items[1])
	}
	if items[0].Status != models.NA || items[0].Type != models.NA {
		t.Errorf("bare doc summary = %+v", items[0])
	}
}

// Documents whose field is NA pass an active filter: absence never
// excludes, only a present non-matching value does.
func TestList_Filters(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 2, testutil.DocV2) // status final, type report, Jane Smith
	testutil.WriteDoc(t, dir, 1002, 1, "---\nstatus: draft\nauthor: Bob Lee\n---\n# Draft Doc\n")
	testutil.WriteDoc(t, dir, 1003, 1, "# No Frontmatter Doc\n")

	if got := svc.List(Filters{Status: "final"}); len(got) != 2 {
		// 1001 matches; 1003 has status NA and is skipped by the filter rule.
		t.Errorf("status=final: %v", got)
	}
	if got := svc.List(Filters{Status: "draft"}); len(got) != 2 {
		t.Errorf("status=draft: %v", got)
	}
	if got := svc.List(Filters{Type: "report"}); len(got) != 3 {
		// 1002 and 1003 have type NA and pass through.
		t.Errorf("type=report: %v", got)
	}
	if got := svc.List(Filters{Author: "jane"}); len(got) != 2 {
		t.Errorf("author=jane: %v", got)
	}
	if got := svc.List(Filters{Status: "final", Author: "bob"}); len(got) != 1 || got[0].ID != 1003 {
		t.Errorf("combined filters: %v", got)
	}
}

func TestList_SkipsUnparseableLatest(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 1, testutil.DocV1)
	testutil.WriteDoc(t, dir, 1001, 2, "no title at all")

	items := svc.List(Filters{})
	if len(items) != 0 {
		t.Errorf("expected empty list, got %v", items)
	}
}

func TestVersions_AscendingWithFields(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 2, testutil.DocV2)
	testutil.WriteDoc(t, dir, 1001, 1, testutil.DocV1)

	versions, err := svc.Versions(1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("len = %d, want 2", len(versions))
	}
	if versions[0].Version != 1 || versions[1].Version != 2 {
		t.Errorf("order = %d, %d", versions[0].Version, versions[1].Version)
	}
	if versions[0].Status != "draft" || versions[0].Date != "2024-01-15" || versions[0].Author != "Jane Smith" {
		t.Errorf("v1 = %+v", versions[0])
	}
	if versions[1].Status != "final" {
		t.Errorf("v2 = %+v", versions[1])
	}
}

func TestVersions_SkipsMalformed(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 1, testutil.DocV1)
	testutil.WriteDoc(t, dir, 1001, 2, "no title")

	versions, err := svc.Versions(1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions) != 1 || versions[0].Version != 1 {
		t.Errorf("versions = %v", versions)
	}
}

func TestVersions_NotFound(t *testing.T) {
	_, svc := newService(t)
	if _, err := svc.Versions(9999); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestDiff_ByChapter(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 1, testutil.DocV1)
	testutil.WriteDoc(t, dir, 1001, 2, testutil.DocV2)

	changes, err := svc.Diff(1001, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := map[string]bool{}
	for _, c := range changes {
		names[c.Chapter] = true
		if !strings.Contains(c.Diff, "1001_v1.md") {
			t.Errorf("diff for %q missing old label:\n%s", c.Chapter, c.Diff)
		}
	}
	if !names["Metadata"] || !names["Summary"] || !names["Risks"] {
		t.Errorf("changed chapters = %v", names)
	}
	if names["Outlook"] {
		t.Error("unchanged Outlook should be absent")
	}
}

func TestDiff_IdenticalVersions(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 1, testutil.DocV1)

	changes, err := svc.Diff(1001, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changes == nil || len(changes) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", changes)
	}
}

func TestDiff_MissingVersion(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 1, testutil.DocV1)

	if _, err := svc.Diff(1001, 1, 9); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestDiffWhole_Sentinel(t *testing.T) {
	dir, svc := newService(t)
	testutil.WriteDoc(t, dir, 1001, 1, testutil.DocV1)
	testutil.WriteDoc(t, dir, 1001, 2, testutil.DocV2)

	d, err := svc.DiffWhole(1001, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != NoChanges {
		t.Errorf("identical versions: got %q", d)
	}

	d, err = svc.DiffWhole(1001, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(d, "+## Risks") {
		t.Errorf("whole diff:\n%s", d)
	}
}
