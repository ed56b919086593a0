package render

import (
	"strconv"
	"strings"

	"github.com/FocuswithJustin/ExamTeX/core/encoding"
	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/core/markup"
)

// correctMark flags the correct choice of a multiple-choice question.
const correctMark = "{C}"

// mcQuestion is one multiple-choice question. Correct indexes Choices.
type mcQuestion struct {
	Line    int
	Prompt  string
	Choices []string
	Correct int
}

// Letter returns the answer letter of the correct choice.
func (q *mcQuestion) Letter() string {
	return string(rune('A' + q.Correct))
}

// mcItem is a question or a directive line, kept in emission order.
type mcItem struct {
	question  *mcQuestion
	directive markup.Line
}

// mcBuilder accumulates questions while walking a module's lines.
type mcBuilder struct {
	items   []mcItem
	pending []markup.Line // directives waiting for the current question to end
	cur     *mcQuestion
	marked  bool
}

func (b *mcBuilder) flush() {
	for _, d := range b.pending {
		b.items = append(b.items, mcItem{directive: d})
	}
	b.pending = nil
}

// finish closes the current question. Unmarked questions take their
// first authored choice as correct and are shuffled afterwards.
func (b *mcBuilder) finish(ctx *Context, noShuffle bool) error {
	q := b.cur
	if q == nil {
		return nil
	}
	if len(q.Choices) == 0 {
		return errors.NewValidation(q.Line, "mc", "no answer choices found: "+q.Prompt)
	}
	if !b.marked && !noShuffle {
		ctx.Shuffler.Shuffle(len(q.Choices), func(i, j int) {
			q.Choices[i], q.Choices[j] = q.Choices[j], q.Choices[i]
			switch q.Correct {
			case i:
				q.Correct = j
			case j:
				q.Correct = i
			}
		})
	}
	b.items = append(b.items, mcItem{question: q})
	b.cur, b.marked = nil, false
	return nil
}

func (b *mcBuilder) addChoice(l markup.Line, text string) error {
	q := b.cur
	if i := strings.Index(text, correctMark); i >= 0 {
		if b.marked {
			return errors.NewValidation(l.Number, "mc", "more than one correct choice")
		}
		text = text[:i]
		q.Correct = len(q.Choices)
		b.marked = true
	}
	q.Choices = append(q.Choices, strings.TrimSpace(text))
	return nil
}

// parseMC groups a module's lines into questions. A question line is
// unindented; the indented lines after it are its choices.
func parseMC(m *markup.Module, ctx *Context) ([]mcItem, error) {
	b := &mcBuilder{}
	for _, l := range m.Lines {
		if l.IsDirective() {
			if !l.Directive.IsOption() {
				b.pending = append(b.pending, l)
			}
			continue
		}
		text := encoding.Latexify(l.Text)
		switch {
		case b.cur == nil:
			b.flush()
			b.cur = &mcQuestion{Line: l.Number, Prompt: strings.TrimSpace(text)}
		case encoding.IndentDepth(text) != 0:
			if err := b.addChoice(l, text); err != nil {
				return nil, err
			}
		default:
			if err := b.finish(ctx, m.Options.NoShuffle); err != nil {
				return nil, err
			}
			b.flush()
			b.cur = &mcQuestion{Line: l.Number, Prompt: strings.TrimSpace(text)}
		}
	}
	if b.cur == nil {
		return nil, errors.NewValidation(m.Line, "mc", "no questions found")
	}
	if err := b.finish(ctx, m.Options.NoShuffle); err != nil {
		return nil, err
	}
	b.flush()
	return b.items, nil
}

func (q *mcQuestion) tex(points string) string {
	var b strings.Builder
	b.WriteString("\t\\question" + points + " " + q.Prompt + "\n")
	b.WriteString("\t\\begin{choices}\n")
	for i, c := range q.Choices {
		if i == q.Correct {
			b.WriteString("\t\t\\CorrectChoice " + c + "\n")
		} else {
			b.WriteString("\t\t\\choice " + c + "\n")
		}
	}
	b.WriteString("\t\\end{choices}\n")
	return b.String()
}

func renderMC(m *markup.Module, ctx *Context) (Result, error) {
	items, err := parseMC(m, ctx)
	if err != nil {
		return Result{}, err
	}
	opts := m.Options
	points := pointLabel(opts.QWorth)
	pointLen := 0
	if points != "" {
		pointLen = pointLabelLength
	}
	widths := singleColumnWidths
	if opts.TwoColumn {
		widths = twoColumnWidths
	}
	pages := newPaginator(opts.TwoColumn, opts.IntroHeight, opts.HasIntroHeight)

	var b strings.Builder
	if opts.TwoColumn {
		b.WriteString("\\setlength{\\columnsep}{0.40 in}\n")
		b.WriteString("\\begin{multicols*}{2}\n")
		b.WriteString("\\renewcommand{\\choiceshook}{\\setlength{\\leftmargin}{0.40 in}}\n")
		b.WriteString("\\renewcommand{\\questionshook}{\\setlength{\\leftmargin}{0.0 in}}\n")
	}
	first := ctx.Counter.Value()
	b.WriteString("\\begin{questions}\n")
	b.WriteString("\\setcounter{question}{" + strconv.Itoa(first) + "}\n")

	var letters, texts []string
	for _, it := range items {
		if q := it.question; q != nil {
			if pages.place(questionHeight(q.Prompt, q.Choices, pointLen, widths)) {
				b.WriteString(pages.breakText())
			}
			b.WriteString(q.tex(points))
			ctx.Counter.Next()
			letters = append(letters, q.Letter())
			texts = append(texts, q.Choices[q.Correct])
			continue
		}
		frag, err := emitDirective(&b, it.directive, ctx)
		if err != nil {
			return Result{}, err
		}
		switch {
		case frag.ColumnBreak:
			b.WriteString(pages.breakText())
			pages.forceBreak()
		case frag.PageBreak:
			pages.forcePage()
		}
	}

	b.WriteString("\\end{questions}\n")
	if opts.TwoColumn {
		b.WriteString("\\end{multicols*}\n")
		b.WriteString("\\renewcommand{\\choiceshook}{}\n")
		b.WriteString("\\renewcommand{\\questionshook}{}\n")
	}
	return Result{Body: b.String(), Answers: letterAnswers(m, first, letters, texts)}, nil
}
