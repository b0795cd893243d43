package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/starford/folios/internal/apperr"
)

// filenameRe matches the document naming convention {id}_v{version}.md,
// against the full filename and with a case-sensitive extension.
var filenameRe = regexp.MustCompile(`^(\d+)_v(\d+)\.md$`)

// FS implements Catalog backed by a flat library directory. The directory is
// not required to exist; an unreachable library presents as empty.
type FS struct {
	root string
}

// NewFS creates a catalog rooted at the given directory.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute library directory path.
func (f *FS) Root() string {
	return f.root
}

// Entries lists every regular file matching the naming convention. Listing
// failures yield an empty result; per-entry stat failures skip that entry.
func (f *FS) Entries() []Entry {
	dirents, err := os.ReadDir(f.root)
	if err != nil {
		return nil
	}

	var out []Entry
	for _, d := range dirents {
		m := filenameRe.FindStringSubmatch(d.Name())
		if m == nil {
			continue
		}
		// A directory or special file with a matching name is excluded.
		// Stat follows symlinks so a link to a regular file still counts.
		info, err := os.Stat(filepath.Join(f.root, d.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		version, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		out = append(out, Entry{ID: id, Version: version, Name: d.Name()})
	}
	return out
}

// Latest returns the highest version number recorded for id.
func (f *FS) Latest(id int) (int, bool) {
	latest, found := 0, false
	for _, e := range f.Entries() {
		if e.ID == id && e.Version > latest {
			latest, found = e.Version, true
		}
	}
	return latest, found
}

// Resolve maps (id, version) to a filename, resolving version 0 to the
// latest. The file must exist at resolution time: an id with no versions at
// all is "document not found", a missing explicit version is "version not
// found".
func (f *FS) Resolve(id, version int) (string, int, error) {
	if version == 0 {
		latest, ok := f.Latest(id)
		if !ok {
			return "", 0, apperr.NotFound("document %d not found", id)
		}
		version = latest
	}

	name := FileName(id, version)
	if _, err := os.Stat(filepath.Join(f.root, name)); err != nil {
		return "", 0, apperr.NotFound("document %d version %d not found", id, version)
	}
	return name, version, nil
}

// Read returns the raw bytes of a library file. A file that vanished after
// enumeration surfaces as NOT_FOUND; other OS failures as READ_ERROR.
func (f *FS) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound("document file %s not found", name)
		}
		return nil, apperr.ReadError("reading %s: %v", name, err)
	}
	return data, nil
}

// FileName builds the canonical filename for a document version.
func FileName(id, version int) string {
	return fmt.Sprintf("%d_v%d.md", id, version)
}

// ParseFileName extracts the (id, version) pair from a filename, reporting
// whether it matches the naming convention.
func ParseFileName(name string) (int, int, bool) {
	m := filenameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	version, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return id, version, true
}
