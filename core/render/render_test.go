package render

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/core/markup"
)

// parseModule parses src as the only section and returns its first
// module.
func parseModule(t *testing.T, src string) *markup.Module {
	t.Helper()
	exam, err := markup.Parse("[section]\n" + src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	mods := exam.Sections[0].Modules
	if len(mods) == 0 {
		t.Fatalf("no module in %q", src)
	}
	return mods[0]
}

func renderModule(t *testing.T, src string) Result {
	t.Helper()
	res, err := Module(parseModule(t, src), NewContext(DefaultSeed, nil))
	if err != nil {
		t.Fatalf("Module(%q): %v", src, err)
	}
	return res
}

func TestDispatchTableComplete(t *testing.T) {
	for k := range markup.NumKinds {
		if renderers[k] == nil {
			t.Errorf("no renderer for %s", markup.Kind(k))
		}
	}
}

func TestModuleUnknownKind(t *testing.T) {
	_, err := Module(&markup.Module{Kind: markup.Kind(99)}, NewContext(DefaultSeed, nil))
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Module() error = %v, want ValidationError", err)
	}
}

func TestMCMarkedChoice(t *testing.T) {
	res := renderModule(t, "[mc]\nWhat is 2+2?\n\t3\n\t4 {C}\n\t5")

	want := "\\begin{questions}\n" +
		"\\setcounter{question}{0}\n" +
		"\t\\question What is 2+2?\n" +
		"\t\\begin{choices}\n" +
		"\t\t\\choice 3\n" +
		"\t\t\\CorrectChoice 4\n" +
		"\t\t\\choice 5\n" +
		"\t\\end{choices}\n" +
		"\\end{questions}\n"
	if res.Body != want {
		t.Errorf("Body =\n%s\nwant\n%s", res.Body, want)
	}

	recs := res.Answers.Records
	if len(recs) != 1 || recs[0].Letter != "B" || recs[0].Text != "4" || recs[0].Number != 1 {
		t.Errorf("Records = %+v", recs)
	}
}

func TestMCUnmarkedShuffle(t *testing.T) {
	res := renderModule(t, "[mc]\nPick four\n\t4\n\t3\n\t5\n\t6")

	recs := res.Answers.Records
	if len(recs) != 1 || recs[0].Text != "4" {
		t.Fatalf("Records = %+v", recs)
	}
	if !strings.Contains(res.Body, "\t\t\\CorrectChoice 4\n") {
		t.Errorf("correct choice not marked:\n%s", res.Body)
	}
	// the letter must point at the rendered position of the answer
	var choices []string
	for _, line := range strings.Split(res.Body, "\n") {
		if c, ok := strings.CutPrefix(line, "\t\t\\choice "); ok {
			choices = append(choices, c)
		} else if c, ok := strings.CutPrefix(line, "\t\t\\CorrectChoice "); ok {
			choices = append(choices, c)
		}
	}
	idx := int(recs[0].Letter[0] - 'A')
	if idx >= len(choices) || choices[idx] != "4" {
		t.Errorf("letter %s does not match choices %v", recs[0].Letter, choices)
	}
}

func TestMCNoShuffle(t *testing.T) {
	res := renderModule(t, "[mc]\n!options{noshuffle}\nQ\n\tfirst\n\tsecond")
	if !strings.Contains(res.Body, "\t\t\\CorrectChoice first\n\t\t\\choice second\n") {
		t.Errorf("Body =\n%s", res.Body)
	}
	if res.Answers.Records[0].Letter != "A" {
		t.Errorf("Letter = %q, want A", res.Answers.Records[0].Letter)
	}
}

func TestMCErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"two correct marks", "[mc]\nQ\n\ta {C}\n\tb {C}", errors.ErrValidation},
		{"no choices", "[mc]\nQ1\nQ2\n\ta", errors.ErrValidation},
		{"no questions", "[mc]\n!gap", errors.ErrValidation},
		{"package in module", "[mc]\nQ\n\ta\n!pkg{amsmath}", errors.ErrDirective},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Module(parseModule(t, tt.src), NewContext(DefaultSeed, nil))
			if !errors.Is(err, tt.want) {
				t.Errorf("Module() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMCPointsAndTwoColumn(t *testing.T) {
	res := renderModule(t, "[mc]\n!options{qworth=2, twocolumn}\nQ\n\ta {C}")
	if !strings.HasPrefix(res.Body, "\\setlength{\\columnsep}{0.40 in}\n\\begin{multicols*}{2}\n") {
		t.Errorf("missing two-column preamble:\n%s", res.Body)
	}
	if !strings.Contains(res.Body, "\t\\question[2] Q\n") {
		t.Errorf("missing point label:\n%s", res.Body)
	}
	if !strings.HasSuffix(res.Body, "\\end{multicols*}\n\\renewcommand{\\choiceshook}{}\n\\renewcommand{\\questionshook}{}\n") {
		t.Errorf("missing two-column close:\n%s", res.Body)
	}
}

func TestMCDirectivesKeepOrder(t *testing.T) {
	res := renderModule(t, "[mc]\nQ1\n\ta {C}\n!hrule\nQ2\n\tb {C}")
	i := strings.Index(res.Body, "Q1")
	j := strings.Index(res.Body, "\\hrulefill")
	k := strings.Index(res.Body, "Q2")
	if i < 0 || j < i || k < j {
		t.Errorf("directive out of place:\n%s", res.Body)
	}
}

func TestMCColumnBreaks(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		n    int
	}{
		{"newcol single column", "[mc]\nQ1\n\ta {C}\n!newcol\nQ2\n\tb {C}", "\n\t\\newpage\n", 1},
		{"newcol two columns", "[mc]\n!options{twocolumn}\nQ1\n\ta {C}\n!newcol\nQ2\n\tb {C}", "\t\\vfill\\null\\columnbreak\n", 1},
		{"newpage adds no break", "[mc]\nQ1\n\ta {C}\n!newpage\nQ2\n\tb {C}", "\n\t\\newpage\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := renderModule(t, tt.src)
			if got := strings.Count(res.Body, tt.want); got != tt.n {
				t.Errorf("count(%q) = %d, want %d\n%s", tt.want, got, tt.n, res.Body)
			}
		})
	}
}

func TestMCPagination(t *testing.T) {
	// each question is 11+10 + 2*(11+5) = 53 points: nine fit in the
	// default first column of 500, the tenth breaks
	var b strings.Builder
	b.WriteString("[mc]\n")
	for i := range 10 {
		fmt.Fprintf(&b, "Question %d\n\tyes {C}\n\tno\n", i+1)
	}
	res := renderModule(t, b.String())
	if got := strings.Count(res.Body, "\t\\newpage\n"); got != 1 {
		t.Fatalf("breaks = %d, want 1\n%s", got, res.Body)
	}
	if strings.Index(res.Body, "\t\\newpage\n") > strings.Index(res.Body, "Question 10") {
		t.Error("break must come before the tenth question")
	}
}

func TestMatchDirectivesKeepPlace(t *testing.T) {
	res := renderModule(t, "[match]\n!options{noshuffle}\nRome::Capital of Italy\n!newpage\nParis::Capital of France")
	want := "\t\\question\\match{B}{Capital of Italy}\n" +
		"\t\t\\newpage\n" +
		"\t\\question\\match{A}{Capital of France}\n"
	if !strings.Contains(res.Body, want) {
		t.Errorf("Body =\n%s", res.Body)
	}

	// shuffled rows still leave the directive between the two row slots
	res = renderModule(t, "[tf]\ntrue::a\nfalse::b\n!gap\ntrue::c\nfalse::d")
	lines := strings.Split(res.Body, "\n")
	gap := slices.Index(lines, "\t\t\\vspace{0.10 in}")
	if gap < 0 {
		t.Fatalf("gap dropped:\n%s", res.Body)
	}
	before, after := 0, 0
	for i, line := range lines {
		if strings.HasPrefix(line, "\t\\question") {
			if i < gap {
				before++
			} else {
				after++
			}
		}
	}
	if before != 2 || after != 2 {
		t.Errorf("gap after %d questions and before %d, want 2 and 2:\n%s", before, after, res.Body)
	}
}

func TestMatchDirectiveErrors(t *testing.T) {
	for _, src := range []string{
		"[match]\na::1\n!newcol\nb::2",
		"[tf]\ntrue::a\n!pkg{tikz}\nfalse::b",
	} {
		_, err := Module(parseModule(t, src), NewContext(DefaultSeed, nil))
		if !errors.Is(err, errors.ErrDirective) {
			t.Errorf("Module(%q) error = %v, want ErrDirective", src, err)
		}
	}
}

func TestMCIntroHeightOverflow(t *testing.T) {
	// 69 points against the 22 left below a 650 point introduction
	res := renderModule(t, "[mc]\n!options{intro-height=650, noshuffle}\nWhat is 2+2?\n\t3\n\t4 {C}\n\t5")
	want := "\\setcounter{question}{0}\n\t\\newpage\n\t\\question What is 2+2?\n"
	if !strings.Contains(res.Body, want) {
		t.Errorf("no break before a question taller than the first column:\n%s", res.Body)
	}
}

func TestMCNewPageTwoColumn(t *testing.T) {
	// after !newpage on the first page the next page has full columns:
	// twelve 53 point questions fit in 672
	var b strings.Builder
	b.WriteString("[mc]\n!options{twocolumn}\nQuestion 0\n\tyes {C}\n\tno\n!newpage\n")
	for i := range 12 {
		fmt.Fprintf(&b, "Question %d\n\tyes {C}\n\tno\n", i+1)
	}
	res := renderModule(t, b.String())
	if got := strings.Count(res.Body, "\\columnbreak"); got != 0 {
		t.Errorf("column breaks = %d, want 0\n%s", got, res.Body)
	}
}

func TestMatchWordBank(t *testing.T) {
	res := renderModule(t, "[match]\n!options{noshuffle}\nRome::Capital of Italy\nParis::Capital of France")

	want := "\\begin{wordbank}{3}\n" +
		"\t\\wbelem{Paris}\n" +
		"\t\\wbelem{Rome}\n" +
		"\\end{wordbank}\n" +
		"\\begin{questions}\n" +
		"\\setcounter{question}{0}\n" +
		"\t\\question\\match{B}{Capital of Italy}\n" +
		"\t\\question\\match{A}{Capital of France}\n" +
		"\\end{questions}\n"
	if res.Body != want {
		t.Errorf("Body =\n%s\nwant\n%s", res.Body, want)
	}
	recs := res.Answers.Records
	if len(recs) != 2 || recs[0].Letter != "B" || recs[1].Letter != "A" {
		t.Errorf("Records = %+v", recs)
	}
}

func TestMatchDistractor(t *testing.T) {
	res := renderModule(t, "[match]\n!options{noshuffle, qworth=1}\nParis::Capital of France\nBerlin:: // unused")
	if !strings.Contains(res.Body, "\\wbelem{Berlin}") {
		t.Error("distractor missing from word bank")
	}
	if strings.Count(res.Body, "\t\\question") != 1 || len(res.Answers.Records) != 1 {
		t.Errorf("distractor must not be numbered:\n%s", res.Body)
	}
	if !strings.Contains(res.Body, "\t\\question[1]\\match{B}{Capital of France}\n") {
		t.Errorf("Body =\n%s", res.Body)
	}
}

func TestMatchWordBankLimit(t *testing.T) {
	build := func(n int) string {
		var b strings.Builder
		b.WriteString("[match]\n")
		for i := range n {
			fmt.Fprintf(&b, "word%02d::question %d\n", i, i)
		}
		return b.String()
	}

	if _, err := Module(parseModule(t, build(26)), NewContext(DefaultSeed, nil)); err != nil {
		t.Errorf("26 answers: %v", err)
	}
	_, err := Module(parseModule(t, build(27)), NewContext(DefaultSeed, nil))
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("27 answers error = %v, want ValidationError", err)
	}
}

func TestMatchSyntax(t *testing.T) {
	_, err := Module(parseModule(t, "[match]\nParis - France"), NewContext(DefaultSeed, nil))
	if !errors.Is(err, errors.ErrSyntax) {
		t.Errorf("error = %v, want SyntaxError", err)
	}
}

func TestTF(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
		letters string
	}{
		{"yes and no", "[tf]\n!options{noshuffle}\nyes::Sky is blue\nno::Grass is red", nil, "TF"},
		{"short forms", "[tf]\n!options{noshuffle}\nF::Two is odd\nT::Three is odd", nil, "FT"},
		{"maybe", "[tf]\ntrue::a\nfalse::b\nmaybe::c", errors.ErrValidation, ""},
		{"one value", "[tf]\ntrue::a\ntrue::b", errors.ErrValidation, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Module(parseModule(t, tt.src), NewContext(DefaultSeed, nil))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Module(): %v", err)
			}
			if strings.Contains(res.Body, "wordbank") {
				t.Error("tf must not have a word bank")
			}
			var got string
			for _, r := range res.Answers.Records {
				got += r.Letter
			}
			if got != tt.letters {
				t.Errorf("letters = %q, want %q", got, tt.letters)
			}
		})
	}
}

func TestShuffleDeterministic(t *testing.T) {
	src := "[match]\na::1\nb::2\nc::3\nd::4\ne::5\nf::6"
	first := renderModule(t, src)
	second := renderModule(t, src)
	if first.Body != second.Body {
		t.Error("same seed must give identical output")
	}

	other, err := Module(parseModule(t, src), NewContext(DefaultSeed+1, nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(other.Answers.Records) != 6 {
		t.Errorf("Records = %d, want 6", len(other.Answers.Records))
	}
}

func TestAnswerBlock(t *testing.T) {
	res := renderModule(t, "[tf]\n!ans-options{sheet, break}\ntrue::a\nfalse::b")
	want := "\t\\raggedcolumns\n" +
		"\t\\begin{multicols}{5}\n" +
		"\t\\begin{enumerate}\n" +
		"\t\\setcounter{enumi}{0}\n"
	if !strings.HasPrefix(res.Answers.Key, want) {
		t.Errorf("Key =\n%s", res.Answers.Key)
	}
	if !strings.HasSuffix(res.Answers.Key, "\t\\fixcolspacing\n\t\\end{multicols}\n\t\\newpage\n") {
		t.Errorf("Key =\n%s", res.Answers.Key)
	}
	if !res.Answers.OnSheet || res.Answers.Sheet != res.Answers.Key {
		t.Errorf("Answers = %+v", res.Answers)
	}
}

func TestNameAndCondense(t *testing.T) {
	res := renderModule(t, "[tf]\n!options{name=Part A, condense}\ntrue::a\nfalse::b")
	if !strings.HasPrefix(res.Body, "\\section*{Part A}\n\\begin{questions}\n") {
		t.Errorf("Body =\n%s", res.Body)
	}
	if !strings.HasSuffix(res.Body, res.Answers.Sheet) || !res.Answers.Condensed {
		t.Error("condensed answers must follow the body")
	}
}

func TestCounterContinuity(t *testing.T) {
	exam, err := markup.Parse("[section]\n[mc]\nQ1\n\ta\nQ2\n\tb\n[frq]\nExplain\n\tpart\n[tf]\ntrue::a\nfalse::b")
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewContext(DefaultSeed, nil)
	res, err := Section(exam.Sections[0], ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Counter.Value() != 5 {
		t.Errorf("Counter = %d, want 5", ctx.Counter.Value())
	}
	for _, want := range []string{"\\setcounter{question}{0}", "\\setcounter{question}{2}", "\\setcounter{question}{3}"} {
		if !strings.Contains(res.Body, want) {
			t.Errorf("missing %q", want)
		}
	}

	var numbers []int
	for _, a := range res.Answers {
		for _, r := range a.Records {
			numbers = append(numbers, r.Number)
		}
	}
	want := []int{1, 2, 4, 5}
	if fmt.Sprint(numbers) != fmt.Sprint(want) {
		t.Errorf("record numbers = %v, want %v", numbers, want)
	}
}

func TestTextModules(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "text",
			src:  "[text] Read \"carefully\" 100%\nSecond line",
			want: "\t\\par\\noindent Read ``carefully'' 100\\%\n\t\\par Second line\n",
		},
		{
			name: "text with directive",
			src:  "[text]\nOne\n!gap{1in}\nTwo",
			want: "\t\\par\\noindent One\n\t\t\\vspace{1in}\n\t\\par Two\n",
		},
		{
			name: "title",
			src:  "[title] Part \\b{One}",
			want: "\\par\\noindent \\textbf{\\large Part \\textbf{One}}\n",
		},
		{
			name: "latex",
			src:  "[latex]\n\t\\vspace{1in}\n\t\t\\hfill",
			want: "\\vspace{1in}\n\t\\hfill\n",
		},
		{
			name: "table",
			src:  "[table]\n!options{pattern=ll, boxed, linespace=1.5}\nA  B\n---\nC\tD",
			want: "\\begin{center}\n\\def\\arraystretch{1.5}\n\\begin{tabular}{|ll|}\n\\hline\n" +
				"\tA & B\\\\\n\t\\hline\n\tC & D\\\\\n\\hline\n\\end{tabular}\n\\end{center}\n",
		},
		{
			name: "image",
			src:  "[image]\n!options{width=50%}\nfig.png",
			want: "\t\\begin{center}\n\t\t\\includegraphics[width=0.50\\textwidth]{fig.png}\n\t\\end{center}\n",
		},
		{
			name: "instructions",
			src:  "[instructions] Show work.\nNo notes.",
			want: "\t\\par\\noindent \\textbf{Instructions:} Show work.\n\t\\par No notes.\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := renderModule(t, tt.src)
			if res.Body != tt.want {
				t.Errorf("Body =\n%q\nwant\n%q", res.Body, tt.want)
			}
			if res.Answers != nil {
				t.Error("non-question module produced answers")
			}
		})
	}
}

func TestContentErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"table without pattern", "[table]\nA  B"},
		{"image without path", "[image]\n!options{width=10%}"},
		{"image with two paths", "[image]\na.png\nb.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Module(parseModule(t, tt.src), NewContext(DefaultSeed, nil))
			if !errors.Is(err, errors.ErrValidation) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}
}

func TestImageWidth(t *testing.T) {
	tests := map[string]string{
		"":     "\\textwidth",
		"50%":  "0.50\\textwidth",
		"12 %": "0.12\\textwidth",
		"3in":  "3in",
	}
	for in, want := range tests {
		got, err := imageWidth(in)
		if err != nil || got != want {
			t.Errorf("imageWidth(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}
