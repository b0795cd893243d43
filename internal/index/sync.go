package index

import (
	"log/slog"
	"time"

	"github.com/starford/folios/internal/checksum"
	"github.com/starford/folios/internal/models"
	"github.com/starford/folios/internal/parser"
	"github.com/starford/folios/internal/storage"
)

// Sync walks the library and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db DocumentIndex, cat storage.Catalog, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	entries := cat.Entries()
	disk := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		disk[e.Name] = struct{}{}

		data, err := cat.Read(e.Name)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("file", e.Name), slog.String("error", err.Error()))
			continue
		}
		if checksums[e.Name] == checksum.Sum(data) {
			continue
		}
		if err := indexDocument(db, e, data); err != nil {
			logger.Warn("sync: index failed", slog.String("file", e.Name), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("file", e.Name))
		}
	}

	// Remove stale entries.
	for name := range checksums {
		if _, ok := disk[name]; !ok {
			if err := db.Delete(name); err != nil {
				logger.Warn("sync: delete failed", slog.String("file", name), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("file", name))
			}
		}
	}

	return nil
}

// indexDocument parses data and upserts it into the index. Parsing is
// always permissive here: the index is advisory, so a file the strict
// mode would reject still gets a best-effort row as long as it has a
// title.
func indexDocument(db DocumentIndex, e storage.Entry, data []byte) error {
	raw := string(data)
	fm, body, err := parser.Split(raw, parser.ModePermissive)
	if err != nil {
		return err
	}
	title, err := parser.Title(body)
	if err != nil {
		return err
	}

	docType := parser.StringField(fm, "document_type", "")
	if docType == "" {
		docType = parser.StringField(fm, "type", models.NA)
	}

	row := DocumentRow{
		Name:      e.Name,
		DocID:     e.ID,
		Version:   e.Version,
		Title:     title,
		Author:    parser.StringField(fm, "author", models.NA),
		Status:    parser.StringField(fm, "status", models.NA),
		Type:      docType,
		Date:      parser.StringField(fm, "date", models.NA),
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now().UTC(),
	}
	return db.Upsert(row, body)
}
