package render

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/core/markup"
)

func parseSection(t *testing.T, src string) *markup.Section {
	t.Helper()
	exam, err := markup.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return exam.Sections[0]
}

func TestCover(t *testing.T) {
	s := parseSection(t, "[cover]\n[title] Final Exam\n[info]\nName\n[text] Good luck.")
	res, err := Cover(s, NewContext(DefaultSeed, nil))
	if err != nil {
		t.Fatal(err)
	}

	want := "\\begin{coverpages}\n" +
		"\t\\begin{center}\n" +
		"\t\t\\vspace{0.10 in}\n" +
		"\t\t\\par\\noindent\\textbf{\\Huge  Final Exam}\n" +
		"\t\t\\vspace{0.10 in}\n" +
		"\t\t\\vspace{0.15 in}\n" +
		"\t\t\\par\n" +
		"\t\t\\def\\arraystretch{2}\\tabcolsep=3pt\n" +
		"\t\t\\begin{tabular}{r r}\n" +
		"\t\t\t\\textbf{Name:} & \\makebox[4in]{\\hrulefill} \\\\\n" +
		"\t\t\\end{tabular}\n" +
		"\t\t\\vspace{0.15 in}\n" +
		"\t\\end{center}\n" +
		"\t\t\\vspace{0.10 in}\n" +
		"\t\\par\\noindent Good luck.\n" +
		"\t\t\\vspace{0.10 in}\n" +
		"\\end{coverpages}\n"
	if res.Body != want {
		t.Errorf("Body =\n%q\nwant\n%q", res.Body, want)
	}
}

func TestCoverAuthor(t *testing.T) {
	s := parseSection(t, "[cover]\n[author]\nAda Lovelace, Instructor\nCharles Babbage")
	res, err := Cover(s, NewContext(DefaultSeed, nil))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"\t\t\t\\textbf{Written by:}\n",
		"\t\t\t & \\textbf{Ada Lovelace}, \\textit{Instructor} \\\\\n",
		"\t\t\t & \\textbf{Charles Babbage} \\\\\n",
	} {
		if !strings.Contains(res.Body, want) {
			t.Errorf("missing %q in\n%s", want, res.Body)
		}
	}
}

func TestCoverImageCentered(t *testing.T) {
	s := parseSection(t, "[cover]\n[title] Exam\n!img{logo.png, 2in}")
	res, err := Cover(s, NewContext(DefaultSeed, nil))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(res.Body, "\\begin{center}") != 1 {
		t.Errorf("center environments must not nest:\n%s", res.Body)
	}
	if !strings.Contains(res.Body, "\t\t\t\t\\includegraphics[width=2in]{logo.png}\n") {
		t.Errorf("Body =\n%s", res.Body)
	}
}

func TestCoverErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"question module", "[cover]\n[mc]\nQ\n\tA", "invalid module in cover"},
		{"empty module", "[cover]\n[title]", "empty module"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Cover(parseSection(t, tt.src), NewContext(DefaultSeed, nil))
			var ve *errors.ValidationError
			if !errors.As(err, &ve) || ve.Message != tt.wantMsg {
				t.Errorf("Cover() error = %v, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestSection(t *testing.T) {
	s := parseSection(t, "[section] !newpage\n!pkg{amsmath, graphicx}\n[text] Hello")
	res, err := Section(s, NewContext(DefaultSeed, nil))
	if err != nil {
		t.Fatal(err)
	}
	want := "\n\\newpage\n\t\t\\newpage\n\t\\par\\noindent Hello\n"
	if res.Body != want {
		t.Errorf("Body = %q, want %q", res.Body, want)
	}
	if strings.Join(res.Packages, ",") != "amsmath,graphicx" {
		t.Errorf("Packages = %v", res.Packages)
	}
	if len(res.Answers) != 0 {
		t.Errorf("Answers = %d, want 0", len(res.Answers))
	}
}

func TestSectionRejectsInfo(t *testing.T) {
	_, err := Section(parseSection(t, "[section]\n[info]\nName"), NewContext(DefaultSeed, nil))
	var ve *errors.ValidationError
	if !errors.As(err, &ve) || ve.Message != "invalid module in section" {
		t.Errorf("Section() error = %v", err)
	}
}

func TestHeader(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "all elements",
			src:  "[header]\nMath 101\nExam 2\nName",
			want: "\n\\pagestyle{head}\n\\header{Math 101}{Exam 2 - Page \\thepage}{Name:\\kern .5 in}\n\\headrule\n",
		},
		{
			name: "empty elements",
			src:  "[header] // left\n//\nName\n!pkg{tikz}",
			want: "\n\\pagestyle{head}\n\\header{}{}{Name:\\kern .5 in}\n\\headrule\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Header(parseSection(t, tt.src))
			if err != nil {
				t.Fatal(err)
			}
			if res.Body != tt.want {
				t.Errorf("Body = %q, want %q", res.Body, tt.want)
			}
		})
	}
}

func TestHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"two elements", "[header]\nA\nB"},
		{"module in header", "[header]\nA\nB\nC\n[text] x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Header(parseSection(t, tt.src))
			if !errors.Is(err, errors.ErrValidation) {
				t.Errorf("Header() error = %v, want ValidationError", err)
			}
		})
	}
}
