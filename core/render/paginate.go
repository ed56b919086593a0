package render

import "unicode/utf8"

// Layout constants for the multiple-choice height estimate, in points.
const (
	lineHeight         = 11
	questionOverhead   = 10
	choiceOverhead     = 5
	fullColumnHeight   = 672
	defaultFirstHeight = 500
	pointLabelLength   = 11 // width of "(2 points) " in characters
)

// wrapWidths are characters per line for prompts and choices.
type wrapWidths struct {
	question, choice int
}

var (
	singleColumnWidths = wrapWidths{question: 100, choice: 80}
	twoColumnWidths    = wrapWidths{question: 50, choice: 43}
)

// wrappedHeight estimates the height of text wrapped at width.
func wrappedHeight(length, width, overhead int) int {
	lines := (length + width - 1) / width
	return lines*lineHeight + overhead
}

// questionHeight estimates the rendered height of one question.
func questionHeight(prompt string, choices []string, pointLen int, w wrapWidths) int {
	h := wrappedHeight(utf8.RuneCountInString(prompt)+pointLen, w.question, questionOverhead)
	for _, c := range choices {
		h += wrappedHeight(utf8.RuneCountInString(c), w.choice, choiceOverhead)
	}
	return h
}

// paginator tracks the filled height of the current column and decides
// where column or page breaks go.
type paginator struct {
	twoColumn bool
	firstPage int // budget while on the first page
	current   int
	column    int
	forced    bool // the column was opened by !newcol or !newpage
}

func newPaginator(twoColumn bool, introHeight int, hasIntro bool) *paginator {
	first := defaultFirstHeight
	if hasIntro {
		first = fullColumnHeight - introHeight
	}
	return &paginator{twoColumn: twoColumn, firstPage: first, column: 1}
}

// budget is the usable height of the current column. Both columns of the
// first page share the space left below the introduction.
func (p *paginator) budget() int {
	onFirstPage := p.column <= 1
	if p.twoColumn {
		onFirstPage = p.column <= 2
	}
	if onFirstPage {
		return p.firstPage
	}
	return fullColumnHeight
}

// place accounts for a question of height h and reports whether a break
// must be emitted before it. A column just opened by a directive already
// starts fresh and takes the question without a second break.
func (p *paginator) place(h int) bool {
	fresh := p.forced && p.current == 0
	p.forced = false
	if !fresh && p.current+h > p.budget() {
		p.column++
		p.current = h
		return true
	}
	p.current += h
	return false
}

// forceBreak starts a new column, for !newcol.
func (p *paginator) forceBreak() {
	p.column++
	p.current = 0
	p.forced = true
}

// forcePage starts the first column of the next page, for !newpage.
func (p *paginator) forcePage() {
	if p.twoColumn && p.column%2 == 1 {
		p.column++
	}
	p.forceBreak()
}

func (p *paginator) breakText() string {
	if p.twoColumn {
		return "\t\\vfill\\null\\columnbreak\n"
	}
	return "\t\\newpage\n"
}
