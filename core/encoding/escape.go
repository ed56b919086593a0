// Package encoding provides the text transforms applied to exam markup
// before it reaches LaTeX.
package encoding

import (
	"regexp"
	"strings"
)

var (
	doubleQuoted = regexp.MustCompile(`"([^"]*)"`)
	singleQuoted = regexp.MustCompile(`\s'([^']+)'\s`)
	italicMarker = regexp.MustCompile(`\\i\s*\{`)
	boldMarker   = regexp.MustCompile(`\\b\s*\{`)
)

// Latexify makes a line of authored text safe for LaTeX while leaving
// other commands untouched. It escapes percent signs, turns "x" and 'x'
// into directional quotes, and expands the \i{...} and \b{...} emphasis
// markers. It is not idempotent: apply it once per line.
func Latexify(line string) string {
	line = strings.ReplaceAll(line, "%", `\%`)
	line = doubleQuoted.ReplaceAllString(line, "``$1''")

	// Matches share their surrounding whitespace, so rescan after each
	// replacement instead of using ReplaceAll.
	for {
		loc := singleQuoted.FindStringSubmatchIndex(line)
		if loc == nil {
			break
		}
		line = line[:loc[0]+1] + "`" + line[loc[2]:loc[3]] + "'" + line[loc[1]-1:]
	}

	line = italicMarker.ReplaceAllLiteralString(line, `\textit{`)
	line = boldMarker.ReplaceAllLiteralString(line, `\textbf{`)
	return line
}

// latexSpecials maps each character LaTeX treats specially to text that
// prints it literally.
var latexSpecials = map[rune]string{
	'\\': `\textbackslash{}`,
	'{':  `\{`,
	'}':  `\}`,
	'$':  `\$`,
	'%':  `\%`,
	'&':  `\&`,
	'#':  `\#`,
	'_':  `\_`,
	'^':  `\^{}`,
	'~':  `\~{}`,
}

// EscapeLaTeX quotes a value that does not come from exam markup, such
// as a source file name, so it prints verbatim.
func EscapeLaTeX(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if esc, ok := latexSpecials[r]; ok {
			b.WriteString(esc)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IndentDepth returns the indentation of a line in tab-equivalents:
// the number of leading tabs, or leading spaces divided by four.
func IndentDepth(line string) int {
	if n := len(line) - len(strings.TrimLeft(line, "\t")); n > 0 {
		return n
	}
	return (len(line) - len(strings.TrimLeft(line, " "))) / 4
}

// Dedent removes the longest leading whitespace prefix shared by all
// non-blank lines.
func Dedent(lines []string) []string {
	prefix := ""
	first := true
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lead := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			prefix, first = lead, false
			continue
		}
		for !strings.HasPrefix(lead, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimPrefix(l, prefix)
	}
	return out
}
