// Package markup parses exam markup into a tree of sections and modules.
//
// # Structure
//
//	[cover]            optional, must come first
//	[title] Final Exam
//	[header]           optional, three elements
//	Course
//	Exam 2
//	Name
//	[section]
//	[mc]
//	What is 2+2?
//		3
//		4 {C}
//
// Section tags are [cover], [section] and [header]; module tags name a
// Kind. Lines before the first section tag are comments. The rest of a
// tag line becomes the first content line of the new section or module.
//
// # Options
//
// A module may open with an option block ended by a line of dashes:
//
//	[match]
//	qworth:: 2
//	name:: Capitals
//	-----
//	Paris::Capital of France
//
// or set options with !options{...} and !ans-options{...} directives.
package markup

import "github.com/FocuswithJustin/ExamTeX/core/directive"

// Line is one non-blank content line.
type Line struct {
	Number    int    // 1-based source line
	Text      string // right-trimmed, indentation kept
	Directive *directive.Directive
}

// IsDirective reports whether the line is a directive.
func (l Line) IsDirective() bool {
	return l.Directive != nil
}

// Module is a typed content block.
type Module struct {
	Kind    Kind
	Line    int
	Lines   []Line // content in source order, directives included
	Options Options
	Answer  AnswerOptions
}

// Ordinary returns the content lines that are not directives.
func (m *Module) Ordinary() []Line {
	var out []Line
	for _, l := range m.Lines {
		if !l.IsDirective() {
			out = append(out, l)
		}
	}
	return out
}

// Directives returns the directive lines.
func (m *Module) Directives() []Line {
	var out []Line
	for _, l := range m.Lines {
		if l.IsDirective() {
			out = append(out, l)
		}
	}
	return out
}

// Section is a top-level grouping of modules.
type Section struct {
	Kind    SectionKind
	Line    int
	Lines   []Line // section-level content before the first module
	Modules []*Module
}

// Exam is the parsed document.
type Exam struct {
	Sections []*Section
}

// Cover returns the cover section, or nil.
func (e *Exam) Cover() *Section {
	return e.find(SectionCover)
}

// Header returns the header section, or nil.
func (e *Exam) Header() *Section {
	return e.find(SectionHeader)
}

func (e *Exam) find(kind SectionKind) *Section {
	for _, s := range e.Sections {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

// Modules returns every module in document order.
func (e *Exam) Modules() []*Module {
	var out []*Module
	for _, s := range e.Sections {
		out = append(out, s.Modules...)
	}
	return out
}
