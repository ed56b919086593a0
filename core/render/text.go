package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/ExamTeX/core/encoding"
	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/core/markup"
)

var (
	tableRule  = regexp.MustCompile(`^\s*-*\s*$`)
	cellSplit  = regexp.MustCompile(`\t+| {2,}`)
	percentage = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*%$`)
)

// lineFunc formats the i-th ordinary line of a module.
type lineFunc func(b *strings.Builder, i int, text string)

// eachLine walks m in source order, rendering directives in place and
// passing latexified ordinary lines to fn.
func eachLine(m *markup.Module, ctx *Context, fn lineFunc) (string, error) {
	var b strings.Builder
	i := 0
	for _, l := range m.Lines {
		if l.IsDirective() {
			if _, err := emitDirective(&b, l, ctx); err != nil {
				return "", err
			}
			continue
		}
		fn(&b, i, strings.TrimSpace(encoding.Latexify(l.Text)))
		i++
	}
	return b.String(), nil
}

func bodyOnly(s string, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	return Result{Body: s}, nil
}

func renderTitle(m *markup.Module, ctx *Context) (Result, error) {
	return bodyOnly(eachLine(m, ctx, func(b *strings.Builder, _ int, text string) {
		if ctx.Centered {
			b.WriteString("\t\t\\par\\noindent\\textbf{\\Huge  " + text + "}\n")
			return
		}
		b.WriteString("\\par\\noindent \\textbf{\\large " + text + "}\n")
	}))
}

func renderSubtitle(m *markup.Module, ctx *Context) (Result, error) {
	return bodyOnly(eachLine(m, ctx, func(b *strings.Builder, _ int, text string) {
		if ctx.Centered {
			b.WriteString("\t\t\\par\\noindent\\textbf{\\large " + text + "}\n")
			return
		}
		b.WriteString("\\par\\noindent \\textbf{" + text + "}\n")
	}))
}

const (
	coverTableOpen  = "\t\t\\par\n\t\t\\def\\arraystretch{2}\\tabcolsep=3pt\n\t\t\\begin{tabular}{r r}\n"
	coverTableClose = "\t\t\\end{tabular}\n"
)

// renderAuthor lists authors as "Name, contact" rows under a
// "Written by:" label.
func renderAuthor(m *markup.Module, ctx *Context) (Result, error) {
	body, err := eachLine(m, ctx, func(b *strings.Builder, _ int, text string) {
		name, contact, ok := strings.Cut(text, ",")
		if ok {
			b.WriteString("\t\t\t & \\textbf{" + strings.TrimSpace(name) + "}, \\textit{" + strings.TrimSpace(contact) + "} \\\\\n")
			return
		}
		b.WriteString("\t\t\t & \\textbf{" + text + "} \\\\\n")
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Body: coverTableOpen + "\t\t\t\\textbf{Written by:}\n" + body + coverTableClose}, nil
}

// renderInfo renders one labelled blank per line, for names and dates.
func renderInfo(m *markup.Module, ctx *Context) (Result, error) {
	body, err := eachLine(m, ctx, func(b *strings.Builder, _ int, text string) {
		b.WriteString("\t\t\t\\textbf{" + text + ":} & \\makebox[4in]{\\hrulefill} \\\\\n")
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Body: coverTableOpen + body + coverTableClose}, nil
}

func renderInstructions(m *markup.Module, ctx *Context) (Result, error) {
	return bodyOnly(eachLine(m, ctx, func(b *strings.Builder, i int, text string) {
		if i == 0 {
			b.WriteString("\t\\par\\noindent \\textbf{Instructions:} " + text + "\n")
			return
		}
		b.WriteString("\t\\par " + text + "\n")
	}))
}

func renderText(m *markup.Module, ctx *Context) (Result, error) {
	return bodyOnly(eachLine(m, ctx, func(b *strings.Builder, i int, text string) {
		if i == 0 {
			b.WriteString("\t\\par\\noindent " + text + "\n")
			return
		}
		b.WriteString("\t\\par " + text + "\n")
	}))
}

// renderLatex passes the module through, dedented and unescaped.
func renderLatex(m *markup.Module, _ *Context) (Result, error) {
	lines := make([]string, len(m.Lines))
	for i, l := range m.Lines {
		lines[i] = l.Text
	}
	return Result{Body: strings.Join(encoding.Dedent(lines), "\n") + "\n"}, nil
}

func renderTable(m *markup.Module, ctx *Context) (Result, error) {
	opts := m.Options
	if opts.Pattern == "" {
		return Result{}, errors.NewValidation(m.Line, "table", "missing pattern option")
	}
	pattern := opts.Pattern
	if opts.Boxed {
		pattern = "|" + pattern + "|"
	}

	var b strings.Builder
	b.WriteString("\\begin{center}\n")
	if opts.LineSpace != "" {
		b.WriteString("\\def\\arraystretch{" + opts.LineSpace + "}\n")
	}
	b.WriteString("\\begin{tabular}{" + pattern + "}\n")
	if opts.Boxed {
		b.WriteString("\\hline\n")
	}

	// directives inside a tabular are always inline
	inner := *ctx
	inner.Centered = true
	for _, l := range m.Lines {
		if l.IsDirective() {
			if _, err := emitDirective(&b, l, &inner); err != nil {
				return Result{}, err
			}
			continue
		}
		if tableRule.MatchString(l.Text) {
			b.WriteString("\t\\hline\n")
			continue
		}
		var cells []string
		for _, c := range cellSplit.Split(encoding.Latexify(l.Text), -1) {
			if c != "" {
				cells = append(cells, c)
			}
		}
		b.WriteString("\t" + strings.Join(cells, " & ") + "\\\\\n")
	}

	if opts.Boxed {
		b.WriteString("\\hline\n")
	}
	b.WriteString("\\end{tabular}\n")
	b.WriteString("\\end{center}\n")
	return Result{Body: b.String()}, nil
}

// imageWidth converts the width option into an includegraphics width.
// Percentages are fractions of \textwidth.
func imageWidth(w string) (string, error) {
	w = strings.TrimSpace(w)
	if w == "" {
		return "\\textwidth", nil
	}
	if p := percentage.FindStringSubmatch(w); p != nil {
		f, err := strconv.ParseFloat(p[1], 64)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%.2f\\textwidth", f/100), nil
	}
	return w, nil
}

func renderImage(m *markup.Module, ctx *Context) (Result, error) {
	width, err := imageWidth(m.Options.Width)
	if err != nil {
		return Result{}, errors.NewConfig("width", m.Options.Width, "expected a percentage or a length")
	}

	var b strings.Builder
	seen := false
	for _, l := range m.Lines {
		if l.IsDirective() {
			if _, err := emitDirective(&b, l, ctx); err != nil {
				return Result{}, err
			}
			continue
		}
		if seen {
			return Result{}, errors.NewValidation(l.Number, "image", "expected a single image path")
		}
		seen = true
		inc := "\\includegraphics[width=" + width + "]{" + strings.TrimSpace(l.Text) + "}\n"
		if ctx.Centered {
			b.WriteString("\t\t\\par\\noindent\n\t\t" + inc)
			continue
		}
		b.WriteString("\t\\begin{center}\n\t\t" + inc + "\t\\end{center}\n")
	}
	if !seen {
		return Result{}, errors.NewValidation(m.Line, "image", "missing image path")
	}
	return Result{Body: b.String()}, nil
}
