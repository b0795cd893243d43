// Package parser extracts frontmatter, titles, and chapter sections from
// Markdown document content.
package parser

import (
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/folios/internal/apperr"
)

// Mode selects how a document without a frontmatter block is treated.
type Mode int

const (
	// ModePermissive treats missing frontmatter as an empty mapping with the
	// whole text as body. This is the default.
	ModePermissive Mode = iota
	// ModeStrict treats missing frontmatter as a format error. Legacy option
	// kept for callers whose error-handling depends on the old behavior.
	ModeStrict
)

const delimiter = "---"

// Frontmatter is the ordered key/value mapping parsed from a document's
// frontmatter block. Values are either string or int.
type Frontmatter = orderedmap.OrderedMap[string, any]

// NewFrontmatter returns an empty frontmatter mapping.
func NewFrontmatter() *Frontmatter {
	return orderedmap.New[string, any]()
}

// Split separates the frontmatter block (between leading --- delimiters)
// from the document body.
//
// The block is scanned line by line as tolerant key:value pairs: blank lines
// and #-comments are skipped, lines without a colon are skipped, symmetric
// quotes around values are stripped, and all-digit values are coerced to int.
// A later duplicate key overwrites an earlier one.
func Split(raw string, mode Mode) (*Frontmatter, string, error) {
	if !strings.HasPrefix(raw, delimiter) {
		if mode == ModeStrict {
			return nil, "", apperr.InvalidFormat("document missing frontmatter")
		}
		return NewFrontmatter(), strings.TrimSpace(raw), nil
	}

	parts := strings.SplitN(raw, delimiter, 3)
	if len(parts) < 3 {
		return nil, "", apperr.InvalidFormat("invalid frontmatter format")
	}

	fm := NewFrontmatter()
	for _, line := range strings.Split(parts[1], "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))
		if n, isInt := asInt(value); isInt {
			fm.Set(key, n)
		} else {
			fm.Set(key, value)
		}
	}

	return fm, strings.TrimSpace(parts[2]), nil
}

// unquote strips one pair of symmetric surrounding quotes, if present.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// asInt coerces a non-empty all-digit string to an int. Values too large
// to represent stay strings.
func asInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// StringField returns the frontmatter value for key as a string (ints are
// stringified), or def if the key is absent.
func StringField(fm *Frontmatter, key, def string) string {
	if fm == nil {
		return def
	}
	v, ok := fm.Get(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	default:
		return def
	}
}
