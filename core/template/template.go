// Package template provides the named LaTeX snippets wrapped around
// generated exam content.
//
// Snippet files come in three formats, chosen by extension:
//
//   - .tex: labelled LaTeX, each snippet starting at a "%% name" line
//   - .xml: <templates><snippet name="preamble">...</snippet></templates>
//   - .yaml, .yml: a "snippets" mapping of name to text
//
// A file only needs the snippets it overrides; Load layers it over the
// embedded default.
package template

import (
	_ "embed"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/FocuswithJustin/ExamTeX/core/errors"
)

// Well-known snippet names.
const (
	Preamble  = "preamble"
	AnswerKey = "answerkey"
	WordBank  = "wordbank"
)

//go:embed default.tex
var defaultTeX string

// Provider looks up snippets by name.
type Provider interface {
	Lookup(name string) (string, bool)
}

// Set is an in-memory snippet table.
type Set map[string]string

// Lookup implements Provider.
func (s Set) Lookup(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Names returns the snippet names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Chain consults its providers in order; the first hit wins.
type Chain []Provider

// Lookup implements Provider.
func (c Chain) Lookup(name string) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if v, ok := p.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

// Default returns the embedded template.
func Default() Set {
	s, err := ParseTeX(defaultTeX)
	if err != nil {
		panic("template: embedded default: " + err.Error())
	}
	return s
}

// Parse decodes data in the format named by ext (".tex", ".xml",
// ".yaml" or ".yml").
func Parse(ext string, data []byte) (Set, error) {
	switch strings.ToLower(ext) {
	case ".tex":
		return ParseTeX(string(data))
	case ".xml":
		return ParseXML(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	return nil, errors.NewConfig("template", ext, "unsupported template format")
}

// Load reads a template file and layers it over the default. An empty
// path yields the default alone.
func Load(path string) (Provider, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read template", path, err)
	}
	set, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, errors.Wrapf(err, "template %s", path)
	}
	return Chain{set, Default()}, nil
}

// Get returns a snippet or the empty string.
func Get(p Provider, name string) string {
	v, _ := p.Lookup(name)
	return v
}
