package markup

import (
	"strings"

	"github.com/FocuswithJustin/ExamTeX/core/directive"
	"github.com/FocuswithJustin/ExamTeX/core/errors"
)

// Parse splits src into lines and parses them.
func Parse(src string) (*Exam, error) {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	return ParseLines(strings.Split(src, "\n"))
}

type rawLine struct {
	number int
	text   string
}

// parser accumulates the content of the construct being read.
type parser struct {
	exam    *Exam
	section *Section
	module  *Module
	pending []rawLine
	covers  int
	headers int
}

// ParseLines builds the exam tree in one pass over lines.
func ParseLines(lines []string) (*Exam, error) {
	p := &parser{exam: &Exam{}}

	for i, text := range lines {
		number := i + 1
		text = strings.TrimRight(text, " \t\r")
		tok := Lex(text)

		switch tok.Type {
		case TokenSection:
			if err := p.finishModule(); err != nil {
				return nil, err
			}
			if err := p.finishSection(); err != nil {
				return nil, err
			}
			if err := p.startSection(tok.Section, number); err != nil {
				return nil, err
			}
			p.add(number, tok.Remainder)

		case TokenModule:
			if p.section == nil {
				continue
			}
			if err := p.finishModule(); err != nil {
				return nil, err
			}
			if err := p.finishSection(); err != nil {
				return nil, err
			}
			p.module = &Module{
				Kind:    tok.Module,
				Line:    number,
				Options: DefaultOptions(),
			}
			p.add(number, strings.TrimLeft(tok.Remainder, " \t"))

		default:
			if p.section == nil {
				continue
			}
			p.add(number, text)
		}
	}

	if err := p.finishModule(); err != nil {
		return nil, err
	}
	if err := p.finishSection(); err != nil {
		return nil, err
	}
	if len(p.exam.Sections) == 0 {
		return nil, errors.NewStructural(0, "no sections found")
	}
	return p.exam, nil
}

func (p *parser) add(number int, text string) {
	text = strings.TrimRight(text, " \t")
	if strings.TrimSpace(text) == "" {
		return
	}
	p.pending = append(p.pending, rawLine{number: number, text: text})
}

func (p *parser) startSection(kind SectionKind, number int) error {
	switch kind {
	case SectionCover:
		p.covers++
		if p.covers > 1 {
			return errors.NewStructural(number, "only one cover/header allowed")
		}
		if len(p.exam.Sections) > 0 {
			return errors.NewStructural(number, "cover must be first")
		}
	case SectionHeader:
		p.headers++
		if p.headers > 1 {
			return errors.NewStructural(number, "only one cover/header allowed")
		}
	}

	p.section = &Section{Kind: kind, Line: number}
	p.exam.Sections = append(p.exam.Sections, p.section)
	return nil
}

// finishSection stores section-level content read before the first
// module. It is a no-op once a module has started.
func (p *parser) finishSection() error {
	if p.section == nil || p.module != nil || len(p.pending) == 0 {
		return nil
	}
	for _, raw := range p.pending {
		line := Line{Number: raw.number, Text: raw.text}
		if directive.Recognize(raw.text) {
			d, err := directive.Parse(raw.text, raw.number)
			if err != nil {
				return err
			}
			if d.IsOption() {
				return errors.NewDirective(raw.number, string(d.Name), "only allowed inside a module")
			}
			line.Directive = d
		}
		p.section.Lines = append(p.section.Lines, line)
	}
	p.pending = nil
	return nil
}

func (p *parser) finishModule() error {
	m := p.module
	if m == nil {
		return nil
	}
	pending := p.pending
	p.module, p.pending = nil, nil

	if m.Kind == KindLatex {
		// raw LaTeX is passed through untouched
		for _, raw := range pending {
			m.Lines = append(m.Lines, Line{Number: raw.number, Text: raw.text})
		}
		p.section.Modules = append(p.section.Modules, m)
		return nil
	}

	rest, err := m.applyOptionBlock(pending)
	if err != nil {
		return err
	}

	for _, raw := range rest {
		line := Line{Number: raw.number, Text: raw.text}
		if directive.Recognize(raw.text) {
			d, err := directive.Parse(raw.text, raw.number)
			if err != nil {
				return err
			}
			if d.IsOption() {
				if err := m.applyDirective(d); err != nil {
					return err
				}
			}
			line.Directive = d
		}
		m.Lines = append(m.Lines, line)
	}

	p.section.Modules = append(p.section.Modules, m)
	return nil
}

// applyOptionBlock consumes a leading `key:: value` block. The block is
// only recognized when every line before the first separator has that
// shape and at least one key is a known option, so that match rows and
// table rules are left alone.
func (m *Module) applyOptionBlock(lines []rawLine) ([]rawLine, error) {
	sep := -1
	for i, raw := range lines {
		if directive.IsSeparator(raw.text) {
			sep = i
			break
		}
	}
	if sep <= 0 {
		return lines, nil
	}

	settings := make([]directive.Setting, 0, sep)
	known := false
	for _, raw := range lines[:sep] {
		s, ok := directive.ParseOptionLine(raw.text, raw.number)
		if !ok {
			return lines, nil
		}
		known = known || IsKnownOption(s.Key)
		settings = append(settings, s)
	}
	if !known {
		return lines, nil
	}

	for _, s := range settings {
		var err error
		if key, ok := strings.CutPrefix(s.Key, answerPrefix); ok {
			s.Key = key
			err = m.Answer.apply(m.Kind, s)
		} else {
			err = m.Options.apply(m.Kind, s)
		}
		if err != nil {
			return nil, err
		}
	}
	return lines[sep+1:], nil
}

func (m *Module) applyDirective(d *directive.Directive) error {
	settings, err := d.Settings()
	if err != nil {
		return err
	}
	for _, s := range settings {
		if d.Name == directive.AnswerOptions {
			err = m.Answer.apply(m.Kind, s)
		} else {
			err = m.Options.apply(m.Kind, s)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
