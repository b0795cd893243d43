// Package diff computes unified diffs between document revisions, optionally
// partitioned by chapter.
package diff

import (
	"strings"

	udiff "github.com/aymanbagabas/go-udiff"

	"github.com/starford/folios/internal/models"
	"github.com/starford/folios/internal/parser"
)

// Unified returns the line-based unified diff between old and new, or the
// empty string when the texts are identical.
func Unified(oldLabel, newLabel, old, new string) string {
	return udiff.Unified(oldLabel, newLabel, old, new)
}

// ByChapter diffs two revisions section by section. Each side's lines are
// bucketed by its own chapter map (the whole file, frontmatter included;
// everything before the first H2 heading belongs to the synthetic Metadata
// section). The emitted order is the union of section names, first seen
// scanning the old revision then the new one, so a renamed chapter produces
// two entries: the old name as removals and the new name as additions.
// Sections with identical content on both sides are omitted.
func ByChapter(oldRaw, newRaw, oldLabel, newLabel string) []models.ChapterChange {
	oldSpans := parser.SectionSpans(oldRaw)
	newSpans := parser.SectionSpans(newRaw)

	seen := make(map[string]struct{})
	var names []string
	for _, spans := range [][]parser.SectionSpan{oldSpans, newSpans} {
		for _, s := range spans {
			if _, ok := seen[s.Name]; ok {
				continue
			}
			seen[s.Name] = struct{}{}
			names = append(names, s.Name)
		}
	}

	oldLines := strings.Split(oldRaw, "\n")
	newLines := strings.Split(newRaw, "\n")

	changes := []models.ChapterChange{}
	for _, name := range names {
		oldText := sectionText(oldLines, oldSpans, name)
		newText := sectionText(newLines, newSpans, name)
		if oldText == newText {
			continue
		}
		if d := udiff.Unified(oldLabel, newLabel, oldText, newText); d != "" {
			changes = append(changes, models.ChapterChange{Chapter: name, Diff: d})
		}
	}
	return changes
}

// sectionText joins the subsequence of lines belonging to the named section.
// Duplicate section names contribute all of their spans, in document order.
func sectionText(lines []string, spans []parser.SectionSpan, name string) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Name != name {
			continue
		}
		for i := s.Start; i <= s.End && i <= len(lines); i++ {
			b.WriteString(lines[i-1])
			b.WriteByte('\n')
		}
	}
	return b.String()
}
