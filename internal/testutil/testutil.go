// Package testutil provides shared test helpers for setting up document
// libraries and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/folios/internal/index"
	"github.com/starford/folios/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "folios-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary creates a temporary library directory with a storage.Catalog.
func TestLibrary(t *testing.T) (string, storage.Catalog) {
	t.Helper()
	dir := t.TempDir()
	cat, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, cat
}

// WriteDoc writes a versioned document file into dir.
func WriteDoc(t *testing.T, dir string, id, version int, content string) {
	t.Helper()
	name := storage.FileName(id, version)
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Canonical two-version fixture used across packages.
const (
	DocV1 = `---
author: Jane Smith
date: 2024-01-15
status: draft
document_type: report
---

# Quarterly Report

Introduction paragraph.

## Summary

Q1 revenue was flat.

## Outlook

Cautious optimism.
`

	DocV2 = `---
author: Jane Smith
date: 2024-02-20
status: final
document_type: report
---

# Quarterly Report

Introduction paragraph.

## Summary

Q1 revenue grew 4 percent.

## Outlook

Cautious optimism.

## Risks

Supply chain exposure.
`
)
