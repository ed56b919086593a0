// Package compiler assembles the exam, answer sheet and answer key
// documents from exam markup.
package compiler

import (
	"encoding/hex"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/ExamTeX/core/encoding"
	"github.com/FocuswithJustin/ExamTeX/core/markup"
	"github.com/FocuswithJustin/ExamTeX/core/render"
	"github.com/FocuswithJustin/ExamTeX/core/template"
)

// blockSeparator follows every answer block in the sheet and key.
const blockSeparator = "\\par\\vspace{.05in}\n"

// Options configures one compilation.
type Options struct {
	Seed        int64             // shuffler seed; 0 means render.DefaultSeed
	Templates   template.Provider // nil means template.Default()
	AttachSheet bool              // append the full answer sheet to the exam
	Source      string            // source name labelled in the answer key; empty omits the label
	Logger      *slog.Logger
}

// Documents is the output of a compilation.
type Documents struct {
	Exam        string
	AnswerSheet string
	AnswerKey   string

	Records     []render.AnswerRecord
	Questions   int      // top-level questions numbered
	Packages    []string // hoisted !pkg imports, deduplicated
	Fingerprint string   // BLAKE3 of the source, hex
	Seed        int64
}

// Fingerprint returns the hex BLAKE3 digest of src.
func Fingerprint(src string) string {
	sum := blake3.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Compile parses src and renders the three documents. The first error
// aborts compilation.
func Compile(src string, opts Options) (*Documents, error) {
	exam, err := markup.Parse(src)
	if err != nil {
		return nil, err
	}
	return Assemble(exam, src, opts)
}

// Assemble renders a parsed exam. src is only used for the fingerprint.
func Assemble(exam *markup.Exam, src string, opts Options) (*Documents, error) {
	if opts.Seed == 0 {
		opts.Seed = render.DefaultSeed
	}
	if opts.Templates == nil {
		opts.Templates = template.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx := render.NewContext(opts.Seed, logger)

	var (
		body     strings.Builder
		header   string
		packages []string
		answers  []*render.Answers
	)
	for _, s := range exam.Sections {
		var (
			res render.SectionResult
			err error
		)
		switch s.Kind {
		case markup.SectionCover:
			res, err = render.Cover(s, ctx)
		case markup.SectionHeader:
			res, err = render.Header(s)
			header = res.Body
			res.Body = ""
		default:
			res, err = render.Section(s, ctx)
		}
		if err != nil {
			return nil, err
		}
		body.WriteString(res.Body)
		for _, p := range res.Packages {
			if !slices.Contains(packages, p) {
				packages = append(packages, p)
			}
		}
		answers = append(answers, res.Answers...)
		logger.Debug("section rendered", "kind", s.Kind.String(), "line", s.Line, "modules", len(s.Modules))
	}

	docs := &Documents{
		Questions:   ctx.Counter.Value(),
		Packages:    packages,
		Fingerprint: Fingerprint(src),
		Seed:        opts.Seed,
	}
	for _, a := range answers {
		docs.Records = append(docs.Records, a.Records...)
	}

	preamble := buildPreamble(opts.Templates, packages, header)
	sections := body.String()

	var sheetBlocks, attached, keyBlocks strings.Builder
	for _, a := range answers {
		keyBlocks.WriteString(a.Key + blockSeparator)
		if a.Condensed {
			continue
		}
		sheetBlocks.WriteString(a.Sheet + blockSeparator)
		if a.OnSheet || opts.AttachSheet {
			attached.WriteString(a.Sheet + blockSeparator)
		}
	}

	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\\begin{document}\n")
	b.WriteString(sections)
	if attached.Len() > 0 {
		b.WriteString("\\newpage\n\\section*{Answer Sheet}\n")
		b.WriteString(attached.String())
	}
	b.WriteString("\\end{document}\n")
	docs.Exam = b.String()

	b.Reset()
	b.WriteString(preamble)
	b.WriteString("\n\\begin{document}\n")
	b.WriteString("\\section*{Answer Sheet}\n")
	b.WriteString(sheetBlocks.String())
	b.WriteString("\\end{document}\n")
	docs.AnswerSheet = b.String()

	b.Reset()
	b.WriteString(preamble)
	b.WriteString(template.Get(opts.Templates, template.AnswerKey))
	b.WriteString("\n\\begin{document}\n")
	b.WriteString(sections)
	b.WriteString("\\newpage\n\\section*{Answer Key}\n")
	if opts.Source != "" {
		b.WriteString(sourceLabel(opts.Source, opts.Seed))
	}
	b.WriteString(keyBlocks.String())
	b.WriteString("\\end{document}\n")
	docs.AnswerKey = b.String()

	logger.Debug("exam assembled",
		"questions", docs.Questions,
		"records", len(docs.Records),
		"packages", len(packages),
	)
	return docs, nil
}

// sourceLabel names the source and seed a key was built from.
func sourceLabel(source string, seed int64) string {
	return "\\noindent Source: \\texttt{" + encoding.EscapeLaTeX(source) + "}, seed " + strconv.FormatInt(seed, 10) + "\\par\n"
}

// buildPreamble joins the preamble and word bank snippets, the hoisted
// package imports and the running header.
func buildPreamble(p template.Provider, packages []string, header string) string {
	var b strings.Builder
	b.WriteString(template.Get(p, template.Preamble))
	b.WriteString(template.Get(p, template.WordBank))
	b.WriteString("\n")
	for _, pkg := range packages {
		b.WriteString("\\usepackage{" + pkg + "}\n")
	}
	b.WriteString(header)
	return b.String()
}
