package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SidecarName is the optional per-library configuration file declaring
// allowed values for frontmatter fields.
const SidecarName = "folios.toml"

// Sidecar holds the parsed sidecar declarations. It is advisory: declared
// values feed hint text, they never reject documents or queries.
type Sidecar struct {
	Fields map[string]FieldSpec `toml:"fields"`
}

// FieldSpec declares the allowed values for one frontmatter field.
type FieldSpec struct {
	Values []string `toml:"values"`
}

// LoadSidecar reads folios.toml from the library directory. A missing file
// is not an error and yields a nil sidecar; a file that exists but does not
// parse is reported.
func LoadSidecar(dir string) (*Sidecar, error) {
	var s Sidecar
	if _, err := toml.DecodeFile(filepath.Join(dir, SidecarName), &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("schema: parse %s: %w", SidecarName, err)
	}
	return &s, nil
}

// FieldValues returns the declared values for a field, or nil when the
// sidecar is absent, the field is not declared, or it declares no values.
func (s *Sidecar) FieldValues(name string) []string {
	if s == nil {
		return nil
	}
	spec, ok := s.Fields[name]
	if !ok || len(spec.Values) == 0 {
		return nil
	}
	return spec.Values
}

// FieldNames returns the declared field names, nil-safe.
func (s *Sidecar) FieldNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Fields))
	for f := range s.Fields {
		names = append(names, f)
	}
	return names
}
