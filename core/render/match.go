package render

import (
	"slices"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/ExamTeX/core/encoding"
	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/core/markup"
)

const (
	matchSeparator = "::"
	maxWordBank    = 26
	distractorMark = "//"
)

// matchRow is one `answer::question` line.
type matchRow struct {
	Line     int
	Answer   string
	Question string
}

// distractor reports whether the row only contributes to the word bank.
func (r matchRow) distractor() bool {
	return strings.HasPrefix(r.Question, distractorMark)
}

// parseRows returns the rows of a module and its layout: the module's
// lines in source order, where a nil entry is a row slot and the others
// are directives.
func parseRows(m *markup.Module) ([]matchRow, []*markup.Line, error) {
	var (
		rows   []matchRow
		layout []*markup.Line
	)
	for i := range m.Lines {
		l := m.Lines[i]
		if l.IsDirective() {
			if !l.Directive.IsOption() {
				layout = append(layout, &m.Lines[i])
			}
			continue
		}
		layout = append(layout, nil)
		text := encoding.Latexify(l.Text)
		parts := strings.Split(text, matchSeparator)
		if len(parts) != 2 {
			return nil, nil, errors.NewSyntax(l.Number, "invalid match syntax", l.Text)
		}
		rows = append(rows, matchRow{
			Line:     l.Number,
			Answer:   strings.TrimSpace(parts[0]),
			Question: strings.TrimSpace(parts[1]),
		})
	}
	if len(rows) == 0 {
		return nil, nil, errors.NewValidation(m.Line, m.Kind.String(), "no questions found")
	}
	return rows, layout, nil
}

// wordBank returns the sorted distinct answers.
func wordBank(rows []matchRow) []string {
	bank := make([]string, 0, len(rows))
	for _, r := range rows {
		bank = append(bank, r.Answer)
	}
	slices.Sort(bank)
	return slices.Compact(bank)
}

// normalizeTF maps the accepted spellings of true and false.
func normalizeTF(answer string) (string, bool) {
	switch strings.ToLower(answer) {
	case "t", "true", "yes":
		return "true", true
	case "f", "false", "no":
		return "false", true
	}
	return "", false
}

func renderMatch(m *markup.Module, ctx *Context) (Result, error) {
	return renderRows(m, ctx, false)
}

func renderTF(m *markup.Module, ctx *Context) (Result, error) {
	return renderRows(m, ctx, true)
}

// renderRows renders match and tf modules. Rows are shuffled as whole
// pairs so every question keeps its answer; directives keep their place
// between row slots.
func renderRows(m *markup.Module, ctx *Context, tf bool) (Result, error) {
	rows, layout, err := parseRows(m)
	if err != nil {
		return Result{}, err
	}
	if !m.Options.NoShuffle {
		ctx.Shuffler.Shuffle(len(rows), func(i, j int) {
			rows[i], rows[j] = rows[j], rows[i]
		})
	}

	if tf {
		for i, r := range rows {
			v, ok := normalizeTF(r.Answer)
			if !ok {
				return Result{}, errors.NewValidation(r.Line, "tf", "answer must be true or false: "+r.Answer)
			}
			rows[i].Answer = v
		}
	}

	var b strings.Builder
	bank := wordBank(rows)
	switch {
	case tf && len(bank) != 2:
		return Result{}, errors.NewValidation(m.Line, "tf", "true/false needs both answers")
	case !tf && len(bank) > maxWordBank:
		return Result{}, errors.NewValidation(m.Line, "match", "too many choices in word bank")
	case !tf:
		b.WriteString("\\begin{wordbank}{" + strconv.Itoa(m.Options.Columns) + "}\n")
		for _, w := range bank {
			b.WriteString("\t\\wbelem{" + w + "}\n")
		}
		b.WriteString("\\end{wordbank}\n")
	}

	first := ctx.Counter.Value()
	points := pointLabel(m.Options.QWorth)
	b.WriteString("\\begin{questions}\n")
	b.WriteString("\\setcounter{question}{" + strconv.Itoa(first) + "}\n")

	var letters, texts []string
	next := 0
	for _, l := range layout {
		if l != nil {
			frag, err := emitDirective(&b, *l, ctx)
			if err != nil {
				return Result{}, err
			}
			if frag.ColumnBreak {
				return Result{}, errors.NewDirective(l.Number, string(l.Directive.Name), "no columns to break in "+m.Kind.String())
			}
			continue
		}
		r := rows[next]
		next++
		if r.distractor() {
			continue
		}
		var letter string
		if tf {
			letter = strings.ToUpper(r.Answer[:1])
		} else {
			i, _ := slices.BinarySearch(bank, r.Answer)
			letter = string(rune('A' + i))
		}
		b.WriteString("\t\\question" + points + "\\match{" + letter + "}{" + r.Question + "}\n")
		ctx.Counter.Next()
		letters = append(letters, letter)
		texts = append(texts, r.Answer)
	}
	b.WriteString("\\end{questions}\n")

	if len(letters) == 0 {
		return Result{}, errors.NewValidation(m.Line, m.Kind.String(), "no questions found")
	}
	return Result{Body: b.String(), Answers: letterAnswers(m, first, letters, texts)}, nil
}
