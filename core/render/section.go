package render

import (
	"strings"

	"github.com/FocuswithJustin/ExamTeX/core/directive"
	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/core/markup"
)

// SectionResult is the output of one section.
type SectionResult struct {
	Body     string
	Answers  []*Answers // question modules in document order
	Packages []string   // !pkg imports for the preamble
}

// sectionDirectives renders section-level directives. !pkg imports are
// collected instead of emitted.
func sectionDirectives(s *markup.Section, res *SectionResult) error {
	var b strings.Builder
	for _, l := range s.Lines {
		if !l.IsDirective() {
			continue
		}
		frag, err := directive.Render(l.Directive, directive.Context{Preamble: true})
		if err != nil {
			return err
		}
		if l.Directive.Name == directive.Pkg {
			res.Packages = append(res.Packages, frag.Packages...)
			continue
		}
		b.WriteString(frag.Text)
	}
	res.Body += b.String()
	return nil
}

// Section renders a [section]: a page break, the section directives and
// every module.
func Section(s *markup.Section, ctx *Context) (SectionResult, error) {
	res := SectionResult{Body: "\n\\newpage\n"}
	if err := sectionDirectives(s, &res); err != nil {
		return SectionResult{}, err
	}

	var b strings.Builder
	b.WriteString(res.Body)
	for _, m := range s.Modules {
		if m.Kind == markup.KindInfo {
			return SectionResult{}, errors.NewValidation(m.Line, m.Kind.String(), "invalid module in section")
		}
		out, err := Module(m, ctx)
		if err != nil {
			return SectionResult{}, err
		}
		b.WriteString(out.Body)
		if out.Answers != nil {
			res.Answers = append(res.Answers, out.Answers)
		}
	}
	res.Body = b.String()
	return res, nil
}

// coverSpacing is the vertical space around each cover module, in inches.
var coverSpacing = map[markup.Kind]string{
	markup.KindTitle:        "0.10",
	markup.KindSubtitle:     "0.05",
	markup.KindAuthor:       "0.05",
	markup.KindInfo:         "0.15",
	markup.KindInstructions: "0.10",
	markup.KindText:         "0.10",
	markup.KindLatex:        "0.00",
	markup.KindTable:        "0.05",
	markup.KindImage:        "0.05",
}

func centeredOnCover(k markup.Kind) bool {
	switch k {
	case markup.KindTitle, markup.KindSubtitle, markup.KindAuthor, markup.KindInfo:
		return true
	}
	return false
}

// Cover renders the [cover] section. Runs of title, subtitle, author and
// info modules share one center environment.
func Cover(s *markup.Section, ctx *Context) (SectionResult, error) {
	res := SectionResult{Body: "\\begin{coverpages}\n"}
	if err := sectionDirectives(s, &res); err != nil {
		return SectionResult{}, err
	}

	var b strings.Builder
	b.WriteString(res.Body)
	centered := false
	for _, m := range s.Modules {
		spacing, ok := coverSpacing[m.Kind]
		if !ok {
			return SectionResult{}, errors.NewValidation(m.Line, m.Kind.String(), "invalid module in cover")
		}
		if len(m.Lines) == 0 {
			return SectionResult{}, errors.NewValidation(m.Line, m.Kind.String(), "empty module")
		}

		wantCenter := centeredOnCover(m.Kind)
		if wantCenter && !centered {
			b.WriteString("\t\\begin{center}\n")
		} else if !wantCenter && centered {
			b.WriteString("\t\\end{center}\n")
		}
		centered = wantCenter

		inner := *ctx
		inner.Centered = wantCenter
		out, err := Module(m, &inner)
		if err != nil {
			return SectionResult{}, err
		}
		b.WriteString("\t\t\\vspace{" + spacing + " in}\n")
		b.WriteString(out.Body)
		b.WriteString("\t\t\\vspace{" + spacing + " in}\n")
	}
	if centered {
		b.WriteString("\t\\end{center}\n")
	}
	b.WriteString("\\end{coverpages}\n")
	res.Body = b.String()
	return res, nil
}

// headerElements is the number of lines a [header] section must have.
const headerElements = 3

// Header renders the running page header declared by a [header]
// section. Lines starting with // stand for empty elements.
func Header(s *markup.Section) (SectionResult, error) {
	if len(s.Modules) > 0 {
		m := s.Modules[0]
		return SectionResult{}, errors.NewValidation(m.Line, m.Kind.String(), "invalid module in header")
	}
	res := SectionResult{}
	if err := sectionDirectives(s, &res); err != nil {
		return SectionResult{}, err
	}

	var elems []string
	for _, l := range s.Lines {
		if l.IsDirective() {
			continue
		}
		e := strings.TrimSpace(l.Text)
		if strings.HasPrefix(e, "//") {
			e = ""
		}
		elems = append(elems, e)
	}
	if len(elems) != headerElements {
		return SectionResult{}, errors.NewValidation(s.Line, "header", "header must have 3 elements")
	}

	left, center, right := elems[0], elems[1], elems[2]
	if center != "" {
		center += " - Page \\thepage"
	}
	if right != "" {
		right += ":\\kern .5 in"
	}
	// header directives other than !pkg have no page to land on
	res.Body = "\n\\pagestyle{head}\n\\header{" + left + "}{" + center + "}{" + right + "}\n\\headrule\n"
	return res, nil
}
