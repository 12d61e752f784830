package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moffa90/go-hateep/errcode"
)

// TemplateLookup resolves a template name to its parsed contents.
type TemplateLookup interface {
	LookupTemplate(name string) (*Template, error)
}

// TemplateLookupFunc adapts a function to TemplateLookup.
type TemplateLookupFunc func(name string) (*Template, error)

// LookupTemplate calls f(name).
func (f TemplateLookupFunc) LookupTemplate(name string) (*Template, error) {
	return f(name)
}

// MapLookup serves templates from memory.
type MapLookup map[string]*Template

// LookupTemplate returns the template registered under name.
func (m MapLookup) LookupTemplate(name string) (*Template, error) {
	t, ok := m[name]
	if !ok {
		return nil, errcode.Field(errcode.Resolution, "include", "template %q not found", name)
	}
	return t, nil
}

// DirLookup reads templates from JSON files in dir. A name without an
// extension gets ".json" appended; names containing path separators are
// rejected so a definition cannot reach outside dir.
func DirLookup(dir string) TemplateLookup {
	return TemplateLookupFunc(func(name string) (*Template, error) {
		if name == "" || name == "." || name == ".." ||
			strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
			return nil, errcode.Field(errcode.Resolution, "include", "invalid template name %q", name)
		}
		if filepath.Ext(name) == "" {
			name += ".json"
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, &errcode.E{
					C:      errcode.Resolution,
					Op:     "lookup template",
					Field:  "include",
					Index:  -1,
					Offset: -1,
					Msg:    fmt.Sprintf("template %q not found in %s", name, dir),
					Err:    err,
				}
			}
			return nil, fmt.Errorf("failed to read template: %w", err)
		}

		t, err := ParseTemplate(data)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", path, err)
		}
		return t, nil
	})
}
