// Package storage implements the document catalog over a library directory.
package storage

// Entry is one enumerated document file: its identity pair and the filename
// relative to the library root.
type Entry struct {
	ID      int
	Version int
	Name    string
}

// Catalog is the interface for document enumeration and resolution. The scan
// runs against current filesystem state on every call; isolating it behind
// an interface leaves room for a caching layer without touching callers.
type Catalog interface {
	// Entries returns every file in the library matching {id}_v{version}.md.
	// I/O failures degrade to an empty result, never an error.
	Entries() []Entry
	// Latest returns the highest version for id, or false if id has no entries.
	Latest(id int) (int, bool)
	// Resolve returns the filename and resolved version for (id, version).
	// Version 0 selects the latest version.
	Resolve(id, version int) (string, int, error)
	// Read returns the raw bytes of a library file by name.
	Read(name string) ([]byte, error)
	// Root returns the absolute library directory path.
	Root() string
}
