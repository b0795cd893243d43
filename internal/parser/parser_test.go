package parser

import (
	"testing"

	"github.com/starford/folios/internal/apperr"
)

func TestSplit_FrontmatterAndBody(t *testing.T) {
	raw := "---\nauthor: Jane Smith\nstatus: draft\n---\n# Hello\nBody text.\n"
	fm, body, err := Split(raw, ModePermissive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := StringField(fm, "author", ""); got != "Jane Smith" {
		t.Errorf("author = %q, want %q", got, "Jane Smith")
	}
	if got := StringField(fm, "status", ""); got != "draft" {
		t.Errorf("status = %q, want %q", got, "draft")
	}
	if body != "# Hello\nBody text." {
		t.Errorf("body = %q", body)
	}
}

func TestSplit_NoFrontmatterPermissive(t *testing.T) {
	fm, body, err := Split("# Just a heading\nSome text.\n", ModePermissive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Len() != 0 {
		t.Errorf("expected empty frontmatter, got %d keys", fm.Len())
	}
	if body != "# Just a heading\nSome text." {
		t.Errorf("body = %q", body)
	}
}

func TestSplit_NoFrontmatterStrict(t *testing.T) {
	_, _, err := Split("# Just a heading\n", ModeStrict)
	if !apperr.Is(err, apperr.CodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestSplit_UnterminatedFrontmatter(t *testing.T) {
	_, _, err := Split("---\nstatus: draft\n# Title\n", ModePermissive)
	if !apperr.Is(err, apperr.CodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestSplit_TolerantLines(t *testing.T) {
	raw := "---\n# a comment\n\nnot a pair\nstatus: draft\n---\n# T\n"
	fm, _, err := Split(raw, ModePermissive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Len() != 1 {
		t.Errorf("expected 1 key, got %d", fm.Len())
	}
	if got := StringField(fm, "status", ""); got != "draft" {
		t.Errorf("status = %q", got)
	}
}

func TestSplit_QuotedValues(t *testing.T) {
	raw := "---\na: \"double\"\nb: 'single'\nc: \"mismatched'\n---\n# T\n"
	fm, _, err := Split(raw, ModePermissive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := StringField(fm, "a", ""); got != "double" {
		t.Errorf("a = %q", got)
	}
	if got := StringField(fm, "b", ""); got != "single" {
		t.Errorf("b = %q", got)
	}
	if got := StringField(fm, "c", ""); got != "\"mismatched'" {
		t.Errorf("c = %q", got)
	}
}

func TestSplit_IntCoercion(t *testing.T) {
	raw := "---\nrevision: 42\ndate: 2024-01-15\n---\n# T\n"
	fm, _, err := Split(raw, ModePermissive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := fm.Get("revision")
	if !ok {
		t.Fatal("revision missing")
	}
	if n, isInt := v.(int); !isInt || n != 42 {
		t.Errorf("revision = %v (%T), want int 42", v, v)
	}
	// Dates contain dashes and stay strings.
	if d, _ := fm.Get("date"); d != "2024-01-15" {
		t.Errorf("date = %v", d)
	}
}

func TestSplit_HugeDigitValueStaysString(t *testing.T) {
	serial := "123456789012345678901234567890"
	raw := "---\nserial: " + serial + "\n---\n# T\n"
	fm, _, err := Split(raw, ModePermissive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// All-digit values beyond the int range are kept verbatim instead of
	// being coerced to a wrapped-around number.
	if v, _ := fm.Get("serial"); v != serial {
		t.Errorf("serial = %v (%T), want string %q", v, v, serial)
	}
}

func TestSplit_DuplicateKeyOverwrites(t *testing.T) {
	raw := "---\nstatus: draft\nstatus: final\n---\n# T\n"
	fm, _, err := Split(raw, ModePermissive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := StringField(fm, "status", ""); got != "final" {
		t.Errorf("status = %q, want final", got)
	}
	if fm.Len() != 1 {
		t.Errorf("len = %d, want 1", fm.Len())
	}
}

func TestStringField_Stringifies(t *testing.T) {
	fm := NewFrontmatter()
	fm.Set("n", 42)
	if got := StringField(fm, "n", ""); got != "42" {
		t.Errorf("n = %q, want 42", got)
	}
	if got := StringField(fm, "missing", "NA"); got != "NA" {
		t.Errorf("missing = %q, want NA", got)
	}
}

func TestTitle_FirstH1(t *testing.T) {
	title, err := Title("some preamble\n# First\ntext\n# Second\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "First" {
		t.Errorf("title = %q, want First", title)
	}
}

func TestTitle_Missing(t *testing.T) {
	_, err := Title("## Only a chapter\ntext\n")
	if !apperr.Is(err, apperr.CodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestChapters_H2Only(t *testing.T) {
	body := "# Title\n## One\ntext\n### Deep\n## Two\n#### Deeper\n"
	chapters := Chapters(body)
	if len(chapters) != 2 {
		t.Fatalf("len = %d, want 2", len(chapters))
	}
	if chapters[0].Title != "One" || chapters[1].Title != "Two" {
		t.Errorf("chapters = %v", chapters)
	}
}

func TestChapters_None(t *testing.T) {
	if got := Chapters("# Title\njust text\n"); len(got) != 0 {
		t.Errorf("expected no chapters, got %v", got)
	}
}

func TestSectionSpans_Partition(t *testing.T) {
	raw := "---\nstatus: x\n---\n# T\nintro\n## A\na1\n## B\nb1"
	spans := SectionSpans(raw)
	if len(spans) != 3 {
		t.Fatalf("len = %d, want 3", len(spans))
	}
	if spans[0].Name != MetadataSection || spans[0].Start != 1 || spans[0].End != 5 {
		t.Errorf("metadata span = %+v", spans[0])
	}
	if spans[1].Name != "A" || spans[1].Start != 6 || spans[1].End != 7 {
		t.Errorf("span A = %+v", spans[1])
	}
	if spans[2].Name != "B" || spans[2].Start != 8 || spans[2].End != 9 {
		t.Errorf("span B = %+v", spans[2])
	}
}

func TestSectionSpans_NoChapters(t *testing.T) {
	spans := SectionSpans("# T\njust text")
	if len(spans) != 1 {
		t.Fatalf("len = %d, want 1", len(spans))
	}
	if spans[0].Name != MetadataSection || spans[0].Start != 1 || spans[0].End != 2 {
		t.Errorf("span = %+v", spans[0])
	}
}

func TestSectionSpans_ChapterOnFirstLine(t *testing.T) {
	spans := SectionSpans("## A\ntext")
	if len(spans) != 2 {
		t.Fatalf("len = %d, want 2", len(spans))
	}
	// The metadata span collapses to an empty range before line 1.
	if spans[0].End != 0 {
		t.Errorf("metadata end = %d, want 0", spans[0].End)
	}
	if spans[1].Start != 1 || spans[1].End != 2 {
		t.Errorf("span A = %+v", spans[1])
	}
}

func TestExtractChapter_Exact(t *testing.T) {
	body := "# T\nintro\n## A\na1\n\n## B\nb1"
	matched, content, ok := ExtractChapter(body, "A")
	if !ok {
		t.Fatal("chapter not found")
	}
	if matched != "A" {
		t.Errorf("matched = %q", matched)
	}
	if content != "## A\na1" {
		t.Errorf("content = %q", content)
	}
}

func TestExtractChapter_CaseInsensitiveFallback(t *testing.T) {
	body := "# T\n## Section One\ntext"
	matched, _, ok := ExtractChapter(body, "section one")
	if !ok {
		t.Fatal("chapter not found")
	}
	if matched != "Section One" {
		t.Errorf("matched = %q, want original casing", matched)
	}
}

func TestExtractChapter_ExactBeatsCaseVariant(t *testing.T) {
	body := "# T\n## section\nlower\n## Section\nupper"
	matched, content, ok := ExtractChapter(body, "Section")
	if !ok {
		t.Fatal("chapter not found")
	}
	if matched != "Section" || content != "## Section\nupper" {
		t.Errorf("matched = %q, content = %q", matched, content)
	}
}

func TestExtractChapter_MetadataSection(t *testing.T) {
	body := "# T\nintro\n## A\na1"
	matched, content, ok := ExtractChapter(body, "Metadata")
	if !ok {
		t.Fatal("metadata section not found")
	}
	if matched != MetadataSection {
		t.Errorf("matched = %q", matched)
	}
	if content != "# T\nintro" {
		t.Errorf("content = %q", content)
	}
}

func TestExtractChapter_EmptyChapter(t *testing.T) {
	body := "# T\n## Empty\n## Next\ntext"
	_, content, ok := ExtractChapter(body, "Empty")
	if !ok {
		t.Fatal("chapter not found")
	}
	if content != "## Empty" {
		t.Errorf("content = %q", content)
	}
}

func TestExtractChapter_LastChapterToEOF(t *testing.T) {
	body := "# T\n## A\na1\n## B\nb1\nb2"
	_, content, ok := ExtractChapter(body, "B")
	if !ok {
		t.Fatal("chapter not found")
	}
	if content != "## B\nb1\nb2" {
		t.Errorf("content = %q", content)
	}
}

func TestExtractChapter_Missing(t *testing.T) {
	if _, _, ok := ExtractChapter("# T\n## A\n", "Nope"); ok {
		t.Error("expected miss")
	}
}
