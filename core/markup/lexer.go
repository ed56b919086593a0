package markup

import (
	"regexp"
	"strings"

	"github.com/FocuswithJustin/ExamTeX/core/directive"
)

var (
	sectionTag = regexp.MustCompile(`(?i)^\s*\[(cover|section|header)\]`)
	moduleTag  = regexp.MustCompile(`(?i)^\s*\[(title|subtitle|author|info|instructions|text|latex|table|image|mc|frq|match|tf)\]`)
)

// TokenType classifies a raw input line.
type TokenType int

// Token types.
const (
	TokenText TokenType = iota
	TokenBlank
	TokenSection
	TokenModule
	TokenDirective
)

// Token is a classified input line.
type Token struct {
	Type      TokenType
	Section   SectionKind // for TokenSection
	Module    Kind        // for TokenModule
	Remainder string      // text after a tag's closing bracket
}

// Lex classifies one line. Tags are matched at line start, ignoring
// leading whitespace and case.
func Lex(line string) Token {
	if strings.TrimSpace(line) == "" {
		return Token{Type: TokenBlank}
	}
	if m := sectionTag.FindStringSubmatchIndex(line); m != nil {
		kind, _ := ParseSectionKind(line[m[2]:m[3]])
		return Token{Type: TokenSection, Section: kind, Remainder: line[m[1]:]}
	}
	if m := moduleTag.FindStringSubmatchIndex(line); m != nil {
		kind, _ := ParseKind(line[m[2]:m[3]])
		return Token{Type: TokenModule, Module: kind, Remainder: line[m[1]:]}
	}
	if directive.Recognize(line) {
		return Token{Type: TokenDirective}
	}
	return Token{Type: TokenText}
}
