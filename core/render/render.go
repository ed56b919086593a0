// Package render turns parsed modules into LaTeX fragments and answer
// artifacts.
//
// Each module kind has one renderer, selected through a table indexed by
// markup.Kind. Renderers share a Context that carries the question
// Counter and the Shuffler, so numbering and answer order depend only on
// the input and the seed.
package render

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/ExamTeX/core/directive"
	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/core/markup"
)

// Context is the state threaded through every render call.
type Context struct {
	Counter  *Counter
	Shuffler *Shuffler
	Centered bool // inside a centered group; affects !img
	Logger   *slog.Logger
}

// NewContext returns a context with a fresh counter and a shuffler
// seeded with seed.
func NewContext(seed int64, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Context{
		Counter:  NewCounter(0),
		Shuffler: NewShuffler(seed),
		Logger:   logger,
	}
}

// AnswerRecord is the answer to one numbered item.
type AnswerRecord struct {
	Number  int         `json:"number"`
	Part    int         `json:"part,omitempty"`
	Subpart int         `json:"subpart,omitempty"`
	Kind    markup.Kind `json:"-"`
	Module  string      `json:"module"`
	Letter  string      `json:"letter,omitempty"`
	Text    string      `json:"text,omitempty"`
}

// Answers is the answer artifact of a question module.
type Answers struct {
	Key       string // block for the answer key
	Sheet     string // blank block for the answer sheet
	OnSheet   bool   // the module asked for an answer sheet entry
	Condensed bool   // Sheet already follows the module body
	Records   []AnswerRecord
}

// Result is the output of rendering one module.
type Result struct {
	Body    string
	Answers *Answers // nil for modules without questions
}

type renderFunc func(m *markup.Module, ctx *Context) (Result, error)

// renderers is the kind to renderer dispatch table.
var renderers = [markup.NumKinds]renderFunc{
	markup.KindTitle:        renderTitle,
	markup.KindSubtitle:     renderSubtitle,
	markup.KindAuthor:       renderAuthor,
	markup.KindInfo:         renderInfo,
	markup.KindInstructions: renderInstructions,
	markup.KindText:         renderText,
	markup.KindLatex:        renderLatex,
	markup.KindTable:        renderTable,
	markup.KindImage:        renderImage,
	markup.KindMC:           renderMC,
	markup.KindFRQ:          renderFRQ,
	markup.KindMatch:        renderMatch,
	markup.KindTF:           renderTF,
}

// Module renders m with the renderer for its kind.
func Module(m *markup.Module, ctx *Context) (Result, error) {
	if m.Kind < 0 || int(m.Kind) >= markup.NumKinds || renderers[m.Kind] == nil {
		return Result{}, errors.NewValidation(m.Line, m.Kind.String(), "unknown module kind")
	}

	start := ctx.Counter.Value()
	res, err := renderers[m.Kind](m, ctx)
	if err != nil {
		return Result{}, err
	}

	if res.Answers != nil && m.Options.Condense {
		res.Body += res.Answers.Sheet
		res.Answers.Condensed = true
	}
	if m.Kind.IsQuestion() && m.Options.Name != "" {
		res.Body = "\\section*{" + m.Options.Name + "}\n" + res.Body
	}

	ctx.Logger.Debug("module rendered",
		"kind", m.Kind.String(),
		"line", m.Line,
		"first_question", start+1,
		"questions", ctx.Counter.Value()-start,
	)
	return res, nil
}

// emitDirective appends the fragment of a directive line.
func emitDirective(b *strings.Builder, l markup.Line, ctx *Context) (directive.Fragment, error) {
	frag, err := directive.Render(l.Directive, directive.Context{Centered: ctx.Centered})
	if err != nil {
		return frag, err
	}
	b.WriteString(frag.Text)
	return frag, nil
}

// choiceBlanks renders the compact letter list used by the answer sheet
// and key for mc, match and tf modules.
func choiceBlanks(first int, letters []string, a markup.AnswerOptions) string {
	var b strings.Builder
	b.WriteString("\t\\raggedcolumns\n")
	b.WriteString("\t\\begin{multicols}{5}\n")
	b.WriteString("\t\\begin{enumerate}\n")
	b.WriteString("\t\\setcounter{enumi}{" + strconv.Itoa(first) + "}\n")
	for _, l := range letters {
		b.WriteString("\t\\item \\choiceblank{" + l + "}\n")
	}
	b.WriteString("\t\\end{enumerate}\n")
	if len(letters)%5 != 0 {
		b.WriteString("\t\\fixcolspacing\n")
	}
	b.WriteString("\t\\end{multicols}\n")
	if a.Break {
		b.WriteString("\t\\newpage\n")
	}
	return b.String()
}

// letterAnswers builds the artifact of a module answered by letters.
func letterAnswers(m *markup.Module, first int, letters, texts []string) *Answers {
	block := choiceBlanks(first, letters, m.Answer)
	ans := &Answers{Key: block, Sheet: block, OnSheet: m.Answer.Sheet}
	for i, l := range letters {
		ans.Records = append(ans.Records, AnswerRecord{
			Number: first + i + 1,
			Kind:   m.Kind,
			Module: m.Kind.String(),
			Letter: l,
			Text:   texts[i],
		})
	}
	return ans
}

// pointLabel renders a points option as an exam-class optional argument.
func pointLabel(points string) string {
	if points == "" {
		return ""
	}
	return "[" + points + "]"
}
