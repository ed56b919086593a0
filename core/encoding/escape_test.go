package encoding

import (
	"reflect"
	"testing"
)

func TestLatexify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "What is 2+2?", "What is 2+2?"},
		{"percent", "50% off", `50\% off`},
		{"double quotes", `say "hi" now`, "say ``hi'' now"},
		{"two double quoted", `"a" and "b"`, "``a'' and ``b''"},
		{"single quotes", "it is 'quoted' here", "it is `quoted' here"},
		{"adjacent single quotes", "a 'x' 'y' b", "a `x' `y' b"},
		{"apostrophe untouched", "don't stop", "don't stop"},
		{"single quote at line end", "end 'x'", "end 'x'"},
		{"italic marker", `\i{word}`, `\textit{word}`},
		{"bold marker with space", `\b {bold}`, `\textbf{bold}`},
		{"other commands untouched", `\begin{center}`, `\begin{center}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Latexify(tt.input); got != tt.want {
				t.Errorf("Latexify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLatexifyAppliedTwice(t *testing.T) {
	once := Latexify("5%")
	if twice := Latexify(once); twice == once {
		t.Errorf("Latexify should not be idempotent on %q", once)
	}
}

func TestEscapeLaTeX(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"a_b", `a\_b`},
		{"100%", `100\%`},
		{`C:\tmp`, `C:\textbackslash{}tmp`},
		{"{x}", `\{x\}`},
		{"~^", `\~{}\^{}`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := EscapeLaTeX(tt.input); got != tt.want {
				t.Errorf("EscapeLaTeX(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIndentDepth(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"x", 0},
		{"\tx", 1},
		{"\t\tx", 2},
		{"    x", 1},
		{"       x", 1},
		{"        x", 2},
		{"  x", 0},
	}

	for _, tt := range tests {
		if got := IndentDepth(tt.input); got != tt.want {
			t.Errorf("IndentDepth(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestDedent(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "spaces",
			input: []string{"    a", "      b", "", "    c"},
			want:  []string{"a", "  b", "", "c"},
		},
		{
			name:  "tabs",
			input: []string{"\t\\x", "\t\t\\y"},
			want:  []string{"\\x", "\t\\y"},
		},
		{
			name:  "no common prefix",
			input: []string{"a", "\tb"},
			want:  []string{"a", "\tb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dedent(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dedent() = %q, want %q", got, tt.want)
			}
		})
	}
}
