// Package docservice assembles catalog entries, parsed frontmatter, and
// heading structure into the document records served by the operation layer.
package docservice

import (
	"sort"
	"strings"

	"github.com/starford/folios/internal/apperr"
	"github.com/starford/folios/internal/diff"
	"github.com/starford/folios/internal/models"
	"github.com/starford/folios/internal/parser"
	"github.com/starford/folios/internal/storage"
)

// NoChanges is returned by DiffWhole when two revisions are identical.
const NoChanges = "No changes between versions."

// Service coordinates catalog scans and document parsing. All operations are
// pure functions of current filesystem state; nothing is cached.
type Service struct {
	cat  storage.Catalog
	mode parser.Mode
}

// NewService creates a document service. The parser mode controls whether a
// missing frontmatter block is tolerated (permissive) or fatal (strict).
func NewService(cat storage.Catalog, mode parser.Mode) *Service {
	return &Service{cat: cat, mode: mode}
}

// Catalog exposes the underlying catalog to adjacent layers (index sync,
// resource enumeration).
func (s *Service) Catalog() storage.Catalog {
	return s.cat
}

// Content returns the raw file text for (id, version), version 0 meaning
// latest. It is parse-agnostic: malformed documents still fetch.
func (s *Service) Content(id, version int) (string, error) {
	name, _, err := s.cat.Resolve(id, version)
	if err != nil {
		return "", err
	}
	data, err := s.cat.Read(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Metadata assembles the full metadata record for (id, version), version 0
// meaning latest. The title is required; author and date default to NA; all
// other frontmatter keys pass through in order.
func (s *Service) Metadata(id, version int) (*models.Metadata, error) {
	name, resolved, err := s.cat.Resolve(id, version)
	if err != nil {
		return nil, err
	}
	data, err := s.cat.Read(name)
	if err != nil {
		return nil, err
	}
	meta, _, err := s.assemble(string(data), id, resolved)
	return meta, err
}

// Chapter extracts a single chapter from (id, version) by heading title,
// exact match preferred, else case-insensitive, first occurrence winning.
func (s *Service) Chapter(id int, title string, version int) (*models.ChapterContent, error) {
	name, _, err := s.cat.Resolve(id, version)
	if err != nil {
		return nil, err
	}
	data, err := s.cat.Read(name)
	if err != nil {
		return nil, err
	}
	_, body, err := parser.Split(string(data), s.mode)
	if err != nil {
		return nil, err
	}
	matched, content, ok := parser.ExtractChapter(body, title)
	if !ok {
		return nil, apperr.ChapterNotFound("chapter %q not found in document %d", title, id)
	}
	return &models.ChapterContent{ChapterTitle: matched, Content: content}, nil
}

// Filters narrows a catalog listing. Zero-valued filters match everything;
// set filters combine with AND semantics.
type Filters struct {
	// Status matches exactly, skipped for documents whose status is NA.
	Status string
	// Type matches the document_type (or legacy type) field exactly, with
	// the same NA skip rule.
	Type string
	// Author is a case-insensitive substring match, same NA skip rule.
	Author string
}

// List enumerates the latest version of every document, parses it, applies
// the filters, and returns summaries ordered by id. Documents whose latest
// version fails to parse are excluded, not defaulted.
func (s *Service) List(f Filters) []models.Summary {
	latest := map[int]storage.Entry{}
	for _, e := range s.cat.Entries() {
		if cur, ok := latest[e.ID]; !ok || e.Version > cur.Version {
			latest[e.ID] = e
		}
	}

	summaries := []models.Summary{}
	for _, e := range latest {
		data, err := s.cat.Read(e.Name)
		if err != nil {
			continue
		}
		fm, body, err := parser.Split(string(data), s.mode)
		if err != nil {
			continue
		}
		title, err := parser.Title(body)
		if err != nil {
			continue
		}

		status := parser.StringField(fm, "status", models.NA)
		docType := typeField(fm)
		author := parser.StringField(fm, "author", models.NA)

		if f.Status != "" && status != models.NA && status != f.Status {
			continue
		}
		if f.Type != "" && docType != models.NA && docType != f.Type {
			continue
		}
		if f.Author != "" && author != models.NA &&
			!strings.Contains(strings.ToLower(author), strings.ToLower(f.Author)) {
			continue
		}

		summaries = append(summaries, models.Summary{
			ID:            e.ID,
			Title:         title,
			LatestVersion: e.Version,
			Status:        status,
			Type:          docType,
		})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries
}

// Versions lists every parseable revision of a document in ascending version
// order. Malformed revisions are skipped; a document with none parseable (or
// none at all) is NOT_FOUND.
func (s *Service) Versions(id int) ([]models.VersionInfo, error) {
	var versions []models.VersionInfo
	for _, e := range s.cat.Entries() {
		if e.ID != id {
			continue
		}
		data, err := s.cat.Read(e.Name)
		if err != nil {
			continue
		}
		meta, _, err := s.assemble(string(data), e.ID, e.Version)
		if err != nil {
			continue
		}
		versions = append(versions, models.VersionInfo{
			Version: e.Version,
			Date:    meta.Date,
			Status:  parser.StringField(meta.Fields, "status", models.NA),
			Author:  meta.Author,
		})
	}
	if len(versions) == 0 {
		return nil, apperr.NotFound("document %d not found", id)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].Version < versions[j].Version })
	return versions, nil
}

// Diff compares two revisions chapter by chapter. Identical revisions yield
// an empty change list, not an error.
func (s *Service) Diff(id, from, to int) ([]models.ChapterChange, error) {
	oldRaw, newRaw, from, to, err := s.revisionPair(id, from, to)
	if err != nil {
		return nil, err
	}
	return diff.ByChapter(oldRaw, newRaw, storage.FileName(id, from), storage.FileName(id, to)), nil
}

// DiffWhole compares two revisions as single texts, substituting the
// NoChanges sentinel when they are identical.
func (s *Service) DiffWhole(id, from, to int) (string, error) {
	oldRaw, newRaw, from, to, err := s.revisionPair(id, from, to)
	if err != nil {
		return "", err
	}
	d := diff.Unified(storage.FileName(id, from), storage.FileName(id, to), oldRaw, newRaw)
	if d == "" {
		return NoChanges, nil
	}
	return d, nil
}

// revisionPair reads both revisions, resolving version 0 to the latest so
// diff labels always carry concrete version numbers.
func (s *Service) revisionPair(id, from, to int) (string, string, int, int, error) {
	oldName, from, err := s.cat.Resolve(id, from)
	if err != nil {
		return "", "", 0, 0, err
	}
	newName, to, err := s.cat.Resolve(id, to)
	if err != nil {
		return "", "", 0, 0, err
	}
	oldData, err := s.cat.Read(oldName)
	if err != nil {
		return "", "", 0, 0, err
	}
	newData, err := s.cat.Read(newName)
	if err != nil {
		return "", "", 0, 0, err
	}
	return string(oldData), string(newData), from, to, nil
}

// assemble parses raw content into a metadata record. The id and version
// come from the caller (filename-derived, authoritative); frontmatter keys
// that collide with the named record fields are dropped, everything else
// passes through untouched.
func (s *Service) assemble(raw string, id, version int) (*models.Metadata, string, error) {
	fm, body, err := parser.Split(raw, s.mode)
	if err != nil {
		return nil, "", err
	}
	title, err := parser.Title(body)
	if err != nil {
		return nil, "", err
	}

	fields := parser.NewFrontmatter()
	for pair := fm.Oldest(); pair != nil; pair = pair.Next() {
		switch pair.Key {
		// author and date are consumed into named fields. id, version,
		// title and chapters are filename- and heading-derived; a
		// frontmatter spelling must never shadow them on the wire.
		case "author", "date", "id", "version", "title", "chapters":
			continue
		}
		fields.Set(pair.Key, pair.Value)
	}

	return &models.Metadata{
		ID:       id,
		Version:  version,
		Title:    title,
		Author:   parser.StringField(fm, "author", models.NA),
		Date:     parser.StringField(fm, "date", models.NA),
		Chapters: parser.Chapters(body),
		Fields:   fields,
	}, body, nil
}

// typeField reads the document type, preferring document_type over the
// legacy type spelling.
func typeField(fm *parser.Frontmatter) string {
	if v := parser.StringField(fm, "document_type", ""); v != "" {
		return v
	}
	return parser.StringField(fm, "type", models.NA)
}
