package parser

import (
	"regexp"
	"strings"

	"github.com/starford/folios/internal/apperr"
	"github.com/starford/folios/internal/models"
)

var (
	titleRe   = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	chapterRe = regexp.MustCompile(`^##\s+(.+)$`)
)

// MetadataSection is the synthetic section name covering everything before
// the first H2 heading: frontmatter, the title line, and any preamble text.
const MetadataSection = "Metadata"

// Title extracts the document title from the first H1 heading anywhere in
// the body. A document without an H1 heading is malformed.
func Title(body string) (string, error) {
	m := titleRe.FindStringSubmatch(body)
	if m == nil {
		return "", apperr.InvalidFormat("document missing title (H1 heading)")
	}
	return strings.TrimSpace(m[1]), nil
}

// Chapters enumerates the H2 headings of the body in document order. H1 and
// H3+ headings are excluded. Duplicate titles are kept; they are
// distinguishable only by position.
func Chapters(body string) []models.Chapter {
	var chapters []models.Chapter
	for _, line := range strings.Split(body, "\n") {
		if m := chapterRe.FindStringSubmatch(line); m != nil {
			chapters = append(chapters, models.Chapter{Title: strings.TrimSpace(m[1])})
		}
	}
	return chapters
}

// SectionSpan is a named range of lines in the original text, 1-indexed and
// inclusive on both ends.
type SectionSpan struct {
	Name  string
	Start int
	End   int
}

// SectionSpans partitions the full raw text (frontmatter included) into
// chapter sections. The first span is always the Metadata section, covering
// line 1 through the line before the first H2 heading, or the whole text
// when no H2 heading exists. Each further span runs from its heading line to
// the line before the next H2 heading or the last line.
func SectionSpans(raw string) []SectionSpan {
	lines := strings.Split(raw, "\n")

	spans := []SectionSpan{{Name: MetadataSection, Start: 1, End: len(lines)}}
	for i, line := range lines {
		if m := chapterRe.FindStringSubmatch(line); m != nil {
			spans[len(spans)-1].End = i // line before the heading, 1-indexed
			spans = append(spans, SectionSpan{
				Name:  strings.TrimSpace(m[1]),
				Start: i + 1,
				End:   len(lines),
			})
		}
	}
	return spans
}

// ExtractChapter returns the text of the chapter whose heading matches title,
// from its heading line through the line before the next H2 heading or the
// end of the body. An exact match is preferred; failing that the comparison
// is case-insensitive. The first occurrence wins in either pass. The matched
// heading text is returned alongside the content. The synthetic Metadata
// section is addressable by its name like any chapter.
func ExtractChapter(body, title string) (string, string, bool) {
	spans := SectionSpans(body)
	lines := strings.Split(body, "\n")

	match := -1
	for i, s := range spans {
		if s.Name == title {
			match = i
			break
		}
	}
	if match < 0 {
		for i, s := range spans {
			if strings.EqualFold(s.Name, title) {
				match = i
				break
			}
		}
	}
	if match < 0 {
		return "", "", false
	}

	s := spans[match]
	content := strings.TrimRight(strings.Join(lines[s.Start-1:s.End], "\n"), "\n")
	return s.Name, content, true
}
