package template

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/ExamTeX/core/errors"
)

// labelLine starts a snippet in a .tex template.
var labelLine = regexp.MustCompile(`^\s*%%\s*([A-Za-z][\w-]*)\s*$`)

// ParseTeX reads a labelled LaTeX template. Lines before the first label
// are ignored, as are blank lines around each snippet.
func ParseTeX(src string) (Set, error) {
	set := Set{}
	label := ""
	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if m := labelLine.FindStringSubmatch(line); m != nil {
			label = strings.ToLower(m[1])
			if _, dup := set[label]; dup {
				return nil, errors.NewConfig("template", label, "duplicate snippet")
			}
			set[label] = ""
			continue
		}
		if label != "" {
			set[label] += line + "\n"
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewIO("scan template", "", err)
	}
	for k, v := range set {
		set[k] = trimSnippet(v)
	}
	return set, nil
}

// snippetPath selects the named snippets of an XML template.
var snippetPath = xpath.MustCompile("/templates/snippet[@name]")

// ParseXML reads an XML template.
func ParseXML(data []byte) (Set, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewConfig("template", "", "parsing XML: "+err.Error())
	}
	set := Set{}
	for _, n := range xmlquery.QuerySelectorAll(root, snippetPath) {
		name := strings.ToLower(strings.TrimSpace(n.SelectAttr("name")))
		if name == "" {
			continue
		}
		if _, dup := set[name]; dup {
			return nil, errors.NewConfig("template", name, "duplicate snippet")
		}
		set[name] = trimSnippet(n.InnerText())
	}
	if len(set) == 0 {
		return nil, errors.NewConfig("template", "", "no snippets found")
	}
	return set, nil
}

// yamlTemplate is the document shape of a YAML template.
type yamlTemplate struct {
	Snippets map[string]string `yaml:"snippets"`
}

// ParseYAML reads a YAML template.
func ParseYAML(data []byte) (Set, error) {
	var doc yamlTemplate
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewConfig("template", "", "parsing YAML: "+err.Error())
	}
	if len(doc.Snippets) == 0 {
		return nil, errors.NewConfig("template", "", "no snippets found")
	}
	set := make(Set, len(doc.Snippets))
	for k, v := range doc.Snippets {
		set[strings.ToLower(k)] = trimSnippet(v)
	}
	return set, nil
}

// trimSnippet drops the indentation-only lines around a snippet body and
// ends it with one newline.
func trimSnippet(s string) string {
	s = strings.Trim(s, "\n")
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
