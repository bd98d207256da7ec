// Package banks provides a static bank resolver backed by a TOML table,
// mapping short bank aliases to canonical instrument names and flagging
// pitched (soundfont style) banks.
package banks

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Entry describes one bank: its canonical name and whether it plays pitched
// instruments rather than one-shot samples.
type Entry struct {
	Name    string `toml:"name"`
	Pitched bool   `toml:"pitched"`
}

// Static is a read-only alias table.
type Static struct {
	byAlias map[string]Entry
	byName  map[string]Entry
}

// New builds a resolver from an alias table.
func New(entries map[string]Entry) *Static {
	s := &Static{
		byAlias: make(map[string]Entry, len(entries)),
		byName:  make(map[string]Entry, len(entries)),
	}
	for alias, e := range entries {
		s.byAlias[alias] = e
		if e.Name != "" {
			s.byName[e.Name] = e
		}
	}
	return s
}

type bankFile struct {
	Banks map[string]Entry `toml:"banks"`
}

// Load reads an alias table from a TOML file of the form
//
//	[banks.tr909]
//	name = "RolandTR909"
//	pitched = false
func Load(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading bank table")
	}
	var file bankFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrapf(err, "parsing bank table %s", path)
	}
	return New(file.Banks), nil
}

// Resolve maps an alias to its canonical name.
func (s *Static) Resolve(alias string) (string, bool) {
	e, ok := s.byAlias[alias]
	if !ok || e.Name == "" {
		return "", false
	}
	return e.Name, true
}

// IsPitched reports whether the bank plays pitched instruments. The name may
// be either a canonical name or an alias.
func (s *Static) IsPitched(name string) bool {
	if e, ok := s.byName[name]; ok {
		return e.Pitched
	}
	if e, ok := s.byAlias[name]; ok {
		return e.Pitched
	}
	return false
}
