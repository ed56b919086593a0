package directive

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/ExamTeX/core/errors"
)

// Setting is one option assignment. A setting without values is a flag.
type Setting struct {
	Key    string
	Values []string
	Line   int
}

// IsFlag reports whether the setting carries no value.
func (s Setting) IsFlag() bool {
	return len(s.Values) == 0
}

// Value returns the first value, or "" for a flag.
func (s Setting) Value() string {
	if len(s.Values) == 0 {
		return ""
	}
	return s.Values[0]
}

// Settings returns the flag or key=value pairs of an !options or
// !ans-options directive.
func (d *Directive) Settings() ([]Setting, error) {
	if !d.IsOption() {
		return nil, errors.NewDirective(d.Line, string(d.Name), "not an option directive")
	}
	if len(d.Args) == 0 {
		return nil, errors.NewDirective(d.Line, string(d.Name), "expected arguments")
	}

	settings := make([]Setting, 0, len(d.Args))
	for _, arg := range d.Args {
		s := Setting{Line: d.Line}
		if key, value, ok := strings.Cut(arg, "="); ok {
			s.Key = strings.ToLower(strings.TrimSpace(key))
			s.Values = []string{strings.TrimSpace(value)}
		} else {
			s.Key = strings.ToLower(arg)
		}
		settings = append(settings, s)
	}
	return settings, nil
}

// separator ends a leading option block.
var separator = regexp.MustCompile(`^\s*-{5,}\s*$`)

// IsSeparator reports whether line ends an option block.
func IsSeparator(line string) bool {
	return separator.MatchString(line)
}

//nolint:govet // participle grammar tags are not standard struct tags
type optionGrammar struct {
	Key    string   `parser:"@Key Assign"`
	Values []string `parser:"( @Value | ValueSep )*"`
}

var optionLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Key", Pattern: `[A-Za-z][A-Za-z0-9_-]*`},
		{Name: "Assign", Pattern: `::`, Action: lexer.Push("Values")},
	},
	"Values": {
		{Name: "ValueSep", Pattern: `;;`},
		{Name: "Value", Pattern: `(?:[^;]|;[^;])+`},
	},
})

var optionParser = participle.MustBuild[optionGrammar](
	participle.Lexer(optionLexer),
	participle.Elide("Whitespace"),
)

// ParseOptionLine parses a `key:: value;;value` option-block line. ok is
// false when the line does not have that shape.
func ParseOptionLine(text string, line int) (Setting, bool) {
	parsed, err := optionParser.ParseString("", strings.TrimSpace(text))
	if err != nil {
		return Setting{}, false
	}

	s := Setting{Key: strings.ToLower(parsed.Key), Line: line}
	for _, v := range parsed.Values {
		if v = strings.TrimSpace(v); v != "" {
			s.Values = append(s.Values, v)
		}
	}
	return s, true
}
