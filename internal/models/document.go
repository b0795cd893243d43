// Package models defines the domain types for Folios.
package models

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NA is the sentinel value for conventionally-consumed frontmatter fields
// (author, date, status, document type) that are absent from a document.
const NA = "NA"

// Chapter represents one document section, introduced by an H2 heading.
type Chapter struct {
	Title string `json:"title"`
}

// Metadata is the assembled, read-only description of one document version.
// ID and Version are taken from the filename (authoritative), Title from the
// first H1 heading of the body. Fields carries every frontmatter key without
// a dedicated accessor, in the order the keys appear in the file.
type Metadata struct {
	ID       int
	Version  int
	Title    string
	Author   string
	Date     string
	Chapters []Chapter
	Fields   *orderedmap.OrderedMap[string, any]
}

// MarshalJSON inlines the pass-through frontmatter fields next to the named
// ones, so a record with `document_type: TRS` serializes with a top-level
// "document_type" key rather than a nested object.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeField := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if err := writeField("id", m.ID); err != nil {
		return nil, err
	}
	if err := writeField("version", m.Version); err != nil {
		return nil, err
	}
	if err := writeField("title", m.Title); err != nil {
		return nil, err
	}
	if err := writeField("author", m.Author); err != nil {
		return nil, err
	}
	if err := writeField("date", m.Date); err != nil {
		return nil, err
	}
	if m.Fields != nil {
		for pair := m.Fields.Oldest(); pair != nil; pair = pair.Next() {
			if err := writeField(pair.Key, pair.Value); err != nil {
				return nil, err
			}
		}
	}
	chapters := m.Chapters
	if chapters == nil {
		chapters = []Chapter{}
	}
	if err := writeField("chapters", chapters); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Field returns a pass-through frontmatter value by key.
func (m Metadata) Field(key string) (any, bool) {
	if m.Fields == nil {
		return nil, false
	}
	return m.Fields.Get(key)
}

// Summary is a one-line catalog listing entry for a document's latest version.
type Summary struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	LatestVersion int    `json:"latest_version"`
	Status        string `json:"status"`
	Type          string `json:"type"`
}

// VersionInfo describes one revision in a version listing.
type VersionInfo struct {
	Version int    `json:"version"`
	Date    string `json:"date"`
	Status  string `json:"status"`
	Author  string `json:"author"`
}

// ChapterChange is one entry of a chapter-partitioned diff: the section name
// and the unified diff of the lines belonging to it.
type ChapterChange struct {
	Chapter string `json:"chapter"`
	Diff    string `json:"diff"`
}

// ChapterContent is the result of extracting a single chapter from a document.
type ChapterContent struct {
	ChapterTitle string `json:"chapter_title"`
	Content      string `json:"content"`
}
