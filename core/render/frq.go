package render

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/FocuswithJustin/ExamTeX/core/encoding"
	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/core/markup"
)

const (
	answerMark     = "//"
	emptyPrompt    = "*"
	maxFRQDepth    = 2
	answerWrap     = 75 // characters per answer line
	answerLineSize = 16 // points per answer line
)

var (
	frqPoints    = regexp.MustCompile(`^\{\s*(\d+)\s*\}`)
	answerHeight = regexp.MustCompile(`^\{\s*([\d.]+)\s*\}`)

	frqStubs = [...]string{"\\question", "\\part", "\\subpart"}
	frqEnvs  = [...]string{"questions", "parts", "subparts"}
	frqTabs  = [...]string{"\t", "\t\t", "\t\t\t"}
	// groupTabs indents the begin/end markers of each level's group.
	groupTabs = [...]string{"\t", "\t", "\t\t"}
)

func beginGroup(level int) string {
	return groupTabs[level] + "\\begin{" + frqEnvs[level] + "}\n"
}

func endGroup(level int) string {
	return groupTabs[level] + "\\end{" + frqEnvs[level] + "}\n"
}

// Hierarchy is the (question, part, subpart) position of a free-response
// item. Unused levels are zero.
type Hierarchy [3]int

// frqAnswer is the solution attached to a free-response item.
type frqAnswer struct {
	Height string // LaTeX length reserved on the answer sheet
	Text   string
}

// frqNode is a question, part or subpart.
type frqNode struct {
	Level    int
	Position Hierarchy
	Answer   *frqAnswer
	Children []*frqNode
}

// tracker maps indentation to the free-response hierarchy and emits the
// parts/subparts markers of every transition.
type tracker struct {
	pos  Hierarchy
	prev int // indent of the previous item
}

func newTracker(start int) *tracker {
	return &tracker{pos: Hierarchy{start, 0, 0}}
}

// step moves to an item at depth indent and returns the markers that
// must precede it.
func (t *tracker) step(indent, line int) (string, error) {
	var b strings.Builder
	switch delta := indent - t.prev; {
	case delta == -2:
		b.WriteString(endGroup(2))
		b.WriteString(endGroup(1))
		t.pos = Hierarchy{t.pos[0] + 1, 0, 0}
	case delta == -1 && indent == 0:
		b.WriteString(endGroup(1))
		t.pos = Hierarchy{t.pos[0] + 1, 0, 0}
	case delta == -1:
		b.WriteString(endGroup(2))
		t.pos = Hierarchy{t.pos[0], t.pos[1] + 1, 0}
	case delta == 0:
		t.pos[indent]++
	case delta == 1 && indent == 1:
		b.WriteString(beginGroup(1))
		t.pos[1]++
	case delta == 1 && indent == 2:
		b.WriteString(beginGroup(2))
		t.pos[2]++
	default:
		return "", errors.NewStructural(line, "too many indents")
	}
	t.prev = indent
	return b.String(), nil
}

// close returns the markers that end every open group.
func (t *tracker) close() string {
	switch t.prev {
	case 2:
		return endGroup(2) + endGroup(1)
	case 1:
		return endGroup(1)
	}
	return ""
}

// parseAnswerLine reads a `// [{height}] text` line.
func parseAnswerLine(text string) frqAnswer {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), answerMark))
	if m := answerHeight.FindStringSubmatch(text); m != nil {
		if h, err := strconv.ParseFloat(m[1], 64); err == nil {
			return frqAnswer{
				Height: strconv.Itoa(int(h*answerLineSize)-12) + " pt",
				Text:   strings.TrimSpace(text[len(m[0]):]),
			}
		}
	}
	lines := int(math.Ceil(float64(utf8.RuneCountInString(text)) / answerWrap))
	return frqAnswer{Height: strconv.Itoa(answerLineSize*lines) + " pt", Text: text}
}

// frqBuilder renders the exam body of a free-response module and keeps
// the item tree for the answer blocks.
type frqBuilder struct {
	b     strings.Builder
	track *tracker
	roots []*frqNode
	last  [maxFRQDepth + 1]*frqNode
	cur   *frqNode
}

func (f *frqBuilder) item(l markup.Line, text string, ctx *Context) error {
	indent := encoding.IndentDepth(text)
	if f.cur == nil && indent != 0 {
		return errors.NewStructural(l.Number, "first question must not be indented")
	}
	markers, err := f.track.step(indent, l.Number)
	if err != nil {
		return err
	}
	f.b.WriteString(markers)

	text = strings.TrimSpace(text)
	points := ""
	if m := frqPoints.FindStringSubmatch(text); m != nil {
		points = pointLabel(m[1])
		text = strings.TrimSpace(text[len(m[0]):])
	}
	if text == emptyPrompt {
		text = ""
	}

	node := &frqNode{Level: indent, Position: f.track.pos}
	if indent == 0 {
		ctx.Counter.Next()
		f.roots = append(f.roots, node)
	} else {
		parent := f.last[indent-1]
		if parent.Answer != nil {
			return errors.NewValidation(l.Number, "frq", "an answered question cannot have parts")
		}
		parent.Children = append(parent.Children, node)
	}
	f.last[indent] = node
	f.cur = node

	f.b.WriteString(frqTabs[indent] + frqStubs[indent] + points + " " + text + "\n")
	return nil
}

func (f *frqBuilder) answer(l markup.Line, text string, sheet bool) error {
	if f.cur == nil {
		return errors.NewStructural(l.Number, "answer before the first question")
	}
	if f.cur.Answer != nil {
		return errors.NewValidation(l.Number, "frq", "question already has an answer")
	}
	if len(f.cur.Children) > 0 {
		return errors.NewValidation(l.Number, "frq", "an answered question cannot have parts")
	}
	a := parseAnswerLine(text)
	f.cur.Answer = &a
	if !sheet {
		tab := strings.Repeat("\t", f.cur.Level+2)
		f.b.WriteString(tab + "\\begin{solution}[" + a.Height + "]\n")
		f.b.WriteString(tab + a.Text + "\n")
		f.b.WriteString(tab + "\\end{solution}\n")
	}
	return nil
}

func renderFRQ(m *markup.Module, ctx *Context) (Result, error) {
	first := ctx.Counter.Value()
	f := &frqBuilder{track: newTracker(first)}
	f.b.WriteString("\\begin{questions}\n")
	f.b.WriteString("\t\\setcounter{question}{" + strconv.Itoa(first) + "}\n")

	for _, l := range m.Lines {
		if l.IsDirective() {
			if _, err := emitDirective(&f.b, l, ctx); err != nil {
				return Result{}, err
			}
			continue
		}
		text := encoding.Latexify(l.Text)
		var err error
		if strings.HasPrefix(strings.TrimSpace(text), answerMark) {
			err = f.answer(l, text, m.Answer.Sheet)
		} else {
			err = f.item(l, text, ctx)
		}
		if err != nil {
			return Result{}, err
		}
	}
	if len(f.roots) == 0 {
		return Result{}, errors.NewValidation(m.Line, "frq", "no questions found")
	}

	f.b.WriteString(f.track.close())
	f.b.WriteString("\\end{questions}\n")

	ans := &Answers{
		Key:     frqAnswers(f.roots, first, m.Answer, false),
		Sheet:   frqAnswers(f.roots, first, m.Answer, true),
		OnSheet: m.Answer.Sheet,
	}
	walkFRQ(f.roots, func(n *frqNode) {
		if n.Answer == nil {
			return
		}
		ans.Records = append(ans.Records, AnswerRecord{
			Number:  n.Position[0],
			Part:    n.Position[1],
			Subpart: n.Position[2],
			Kind:    m.Kind,
			Module:  m.Kind.String(),
			Text:    n.Answer.Text,
		})
	})
	return Result{Body: f.b.String(), Answers: ans}, nil
}

func walkFRQ(nodes []*frqNode, fn func(*frqNode)) {
	for _, n := range nodes {
		fn(n)
		walkFRQ(n.Children, fn)
	}
}

// frqAnswers renders the answer block of a free-response module. Every
// item is listed so the numbering matches the exam; sheet blocks replace
// answers with blank space of the answer's height.
func frqAnswers(roots []*frqNode, first int, opts markup.AnswerOptions, sheet bool) string {
	var b strings.Builder
	if opts.TwoColumn {
		b.WriteString("\\setlength{\\columnsep}{0.40 in}\n")
		b.WriteString("\\setlength{\\columnseprule}{0.2 pt}\n")
		b.WriteString("\\begin{multicols*}{2}\n")
		b.WriteString("\\renewcommand{\\questionshook}{\\setlength{\\leftmargin}{0.15 in}}\n")
	}
	b.WriteString(beginGroup(0))
	b.WriteString("\t\\setcounter{question}{" + strconv.Itoa(first) + "}\n")
	writeFRQLevel(&b, roots, 0, sheet)
	b.WriteString(endGroup(0))
	if opts.TwoColumn {
		b.WriteString("\t\\end{multicols*}\n")
		b.WriteString("\\renewcommand{\\questionshook}{}\n")
	}
	if opts.Break {
		b.WriteString("\t\\newpage\n")
	}
	return b.String()
}

func writeFRQLevel(b *strings.Builder, nodes []*frqNode, level int, sheet bool) {
	for _, n := range nodes {
		b.WriteString(frqTabs[level] + frqStubs[level] + "\n")
		if a := n.Answer; a != nil {
			if sheet {
				b.WriteString("\t" + frqTabs[level] + "\\ \\vspace{" + a.Height + "}\n")
			} else {
				b.WriteString("\t" + frqTabs[level] + a.Text + "\n")
			}
		}
		if len(n.Children) > 0 {
			child := level + 1
			b.WriteString(beginGroup(child))
			writeFRQLevel(b, n.Children, child, sheet)
			b.WriteString(endGroup(child))
		}
	}
}
