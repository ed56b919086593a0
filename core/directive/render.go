package directive

import (
	"strings"

	"github.com/FocuswithJustin/ExamTeX/core/errors"
)

// Context describes where a directive is rendered.
type Context struct {
	Centered bool // inside a centered group, such as a cover or a table
	Preamble bool // section level, where !pkg imports reach the preamble
}

// Fragment is the output of one directive.
type Fragment struct {
	Text        string
	ColumnBreak bool     // !newcol: the caller decides how to break
	PageBreak   bool     // !newpage
	Packages    []string // !pkg: names for the preamble
}

// Render interprets d. Option directives produce an empty fragment; they
// are applied when the module is built.
func Render(d *Directive, ctx Context) (Fragment, error) {
	var b strings.Builder
	frag := Fragment{}

	switch d.Name {
	case Img:
		if len(d.Args) == 0 {
			return frag, errors.NewDirective(d.Line, string(d.Name), "expected arguments")
		}
		img := "\t\t\\includegraphics{" + d.Args[0] + "}\n"
		if len(d.Args) > 1 {
			img = "\t\t\\includegraphics[width=" + d.Args[1] + "]{" + d.Args[0] + "}\n"
		}
		b.WriteString("\t\t\\par\\noindent\n")
		if !ctx.Centered {
			b.WriteString("\t\\begin{center}\n")
			b.WriteString(img)
			b.WriteString("\t\\end{center}\n")
		} else {
			b.WriteString("\t\t\\vspace{0.05 in}\n")
			b.WriteString("\t\t\\par\\noindent\n")
			b.WriteString("\t\t" + img)
			b.WriteString("\t\t\\vspace{0.05 in}\n")
		}

	case NewPage:
		b.WriteString("\t\t\\newpage\n")
		frag.PageBreak = true

	case Gap:
		if len(d.Args) > 0 {
			b.WriteString("\t\t\\vspace{" + d.Args[0] + "}\n")
		} else {
			b.WriteString("\t\t\\vspace{0.10 in}\n")
		}

	case Pkg:
		if len(d.Args) == 0 {
			return frag, errors.NewDirective(d.Line, string(d.Name), "expected arguments")
		}
		if !ctx.Preamble {
			return frag, errors.NewDirective(d.Line, string(d.Name), "only allowed at section level")
		}
		for _, arg := range d.Args {
			b.WriteString("\\usepackage{" + arg + "}\n")
		}
		frag.Packages = append(frag.Packages, d.Args...)

	case HRule:
		b.WriteString("\t\t\\par\n")
		b.WriteString("\t\t\\hrulefill\n")
		b.WriteString("\t\t\\vspace{0.05 in}\n")

	case Txt:
		if len(d.Args) == 0 {
			return frag, errors.NewDirective(d.Line, string(d.Name), "expected arguments")
		}
		b.WriteString("\t\\begin{flushleft}\n")
		b.WriteString("\t\\par " + strings.Join(d.Args, ", ") + "\n")
		b.WriteString("\t\\end{flushleft}\n")

	case NewCol:
		frag.ColumnBreak = true

	case Options, AnswerOptions:
		if len(d.Args) == 0 {
			return frag, errors.NewDirective(d.Line, string(d.Name), "expected arguments")
		}

	default:
		return frag, errors.NewDirective(d.Line, string(d.Name), "unknown directive")
	}

	frag.Text = b.String()
	return frag, nil
}
