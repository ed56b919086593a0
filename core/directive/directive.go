// Package directive recognizes and interprets bang lines such as
// `!gap{0.5 in}` and the option-registration lines that configure
// modules.
//
// # Directives
//
//   - !newpage            page break
//   - !gap[{length}]      vertical space, 0.10 in by default
//   - !img{path[, width]} image inclusion
//   - !pkg{name, ...}     preamble package imports
//   - !hrule              horizontal rule
//   - !txt{a, b}          flush-left paragraph
//   - !newcol             column break, handled by the caller
//   - !options{...}       module options (flag or key=value)
//   - !ans-options{...}   answer-artifact options
//
// Arguments are the comma-separated text between the first `{` and the
// first `}`, trimmed, with empty entries dropped.
package directive

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/ExamTeX/core/errors"
)

// Name identifies a directive.
type Name string

// Known directives.
const (
	NewPage       Name = "newpage"
	Options       Name = "options"
	AnswerOptions Name = "ans-options"
	Gap           Name = "gap"
	Img           Name = "img"
	Pkg           Name = "pkg"
	NewCol        Name = "newcol"
	HRule         Name = "hrule"
	Txt           Name = "txt"
)

// recognizer matches the directive names at line start. Lines starting
// with an unknown `!word` are ordinary text.
var recognizer = regexp.MustCompile(`(?i)^\s*!(newpage|ans-options|options|gap|img|pkg|newcol|hrule|txt)(?:[^A-Za-z0-9-]|$)`)

// Directive is a parsed bang line.
type Directive struct {
	Name    Name
	Args    []string
	Braced  bool // an argument list was present, possibly empty
	Trailer string
	Line    int
}

// Recognize reports whether line is a directive line.
func Recognize(line string) bool {
	return recognizer.MatchString(line)
}

//nolint:govet // participle grammar tags are not standard struct tags
type directiveGrammar struct {
	Name string       `parser:"Bang @Name"`
	Args *argsGrammar `parser:"@@?"`
	Tail []string     `parser:"( @Name | @Tail | @Bang )*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type argsGrammar struct {
	Items []string `parser:"LBrace ( @Arg | Comma )* RBrace"`
}

// directiveLexer switches into the Args state after `{` so argument text
// may contain spaces, backslashes and `=`.
var directiveLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Bang", Pattern: `!`},
		{Name: "Name", Pattern: `[A-Za-z][A-Za-z0-9-]*`},
		{Name: "LBrace", Pattern: `\{`, Action: lexer.Push("Args")},
		{Name: "Tail", Pattern: `[^\s{!]+`},
	},
	"Args": {
		{Name: "RBrace", Pattern: `\}`, Action: lexer.Pop()},
		{Name: "Comma", Pattern: `,`},
		{Name: "Arg", Pattern: `[^,}]+`},
	},
})

var directiveParser = participle.MustBuild[directiveGrammar](
	participle.Lexer(directiveLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a directive line. line is the 1-based source line used
// in error reports.
func Parse(text string, line int) (*Directive, error) {
	if !Recognize(text) {
		return nil, errors.NewDirective(line, "", "not a directive: "+strings.TrimSpace(text))
	}

	parsed, err := directiveParser.ParseString("", strings.TrimSpace(text))
	if err != nil {
		return nil, errors.NewDirective(line, "", "malformed directive "+strings.TrimSpace(text)+": "+err.Error())
	}

	d := &Directive{
		Name:    Name(strings.ToLower(parsed.Name)),
		Trailer: strings.Join(parsed.Tail, " "),
		Line:    line,
	}
	if parsed.Args != nil {
		d.Braced = true
		for _, a := range parsed.Args.Items {
			if a = strings.TrimSpace(a); a != "" {
				d.Args = append(d.Args, a)
			}
		}
	}
	return d, nil
}

// String renders the directive back in source form.
func (d *Directive) String() string {
	if !d.Braced {
		return "!" + string(d.Name)
	}
	return "!" + string(d.Name) + "{" + strings.Join(d.Args, ", ") + "}"
}

// IsOption reports whether the directive registers options.
func (d *Directive) IsOption() bool {
	return d.Name == Options || d.Name == AnswerOptions
}
