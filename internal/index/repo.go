package index

import (
	"fmt"
	"time"
)

// DocumentRow represents a row in the documents table: one indexed document
// version, keyed by filename.
type DocumentRow struct {
	Name      string
	DocID     int
	Version   int
	Title     string
	Author    string
	Status    string
	Type      string
	Date      string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	DocID   int    `json:"id"`
	Version int    `json:"version"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Upsert inserts or replaces a document row and its FTS entry within a
// transaction.
func (db *DB) Upsert(row DocumentRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO documents (name, doc_id, version, title, author, status, doc_type, date, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			doc_id     = excluded.doc_id,
			version    = excluded.version,
			title      = excluded.title,
			author     = excluded.author,
			status     = excluded.status,
			doc_type   = excluded.doc_type,
			date       = excluded.date,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, row.Name, row.DocID, row.Version, row.Title, row.Author, row.Status, row.Type, row.Date, row.Checksum, body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Name, row.Title, body); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a document row and its FTS entry.
func (db *DB) Delete(name string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, name)
	_, _ = tx.Exec(`DELETE FROM documents WHERE name = ?`, name)

	return tx.Commit()
}

// AllChecksums returns the stored checksum for every indexed document,
// keyed by filename.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT name, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, cs string
		if err := rows.Scan(&name, &cs); err != nil {
			return nil, err
		}
		out[name] = cs
	}
	return out, rows.Err()
}
