package render

import "testing"

func TestQuestionHeight(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		choices  []string
		pointLen int
		w        wrapWidths
		want     int
	}{
		{"one line", "Q", []string{"a", "b"}, 0, singleColumnWidths, 21 + 2*16},
		{"wrapped prompt", string(make([]byte, 101)), nil, 0, singleColumnWidths, 2*11 + 10},
		{"point label wraps", string(make([]byte, 95)), nil, pointLabelLength, singleColumnWidths, 2*11 + 10},
		{"two column choice", "Q", []string{string(make([]byte, 44))}, 0, twoColumnWidths, 21 + 2*11 + 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := questionHeight(tt.prompt, tt.choices, tt.pointLen, tt.w); got != tt.want {
				t.Errorf("questionHeight() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPaginatorSingleColumn(t *testing.T) {
	p := newPaginator(false, 0, false)
	if p.place(300) {
		t.Error("first question must not break")
	}
	if !p.place(300) {
		t.Error("second question exceeds the 500 point first page")
	}
	// later pages have the full column
	if p.place(372) {
		t.Error("672 points fit after the first page")
	}
	if !p.place(1) {
		t.Error("column is full")
	}
	if p.breakText() != "\t\\newpage\n" {
		t.Errorf("breakText() = %q", p.breakText())
	}
}

func TestPaginatorIntroHeight(t *testing.T) {
	p := newPaginator(false, 600, true)
	if p.budget() != 72 {
		t.Errorf("budget() = %d, want 72", p.budget())
	}
	// a question taller than the room left below the introduction moves on
	if !p.place(100) {
		t.Error("expected break before an oversized first question")
	}
	if p.budget() != fullColumnHeight {
		t.Errorf("budget() = %d after first page", p.budget())
	}
	if p.place(10) {
		t.Error("110 points fit a full column")
	}
}

func TestPaginatorForcedColumn(t *testing.T) {
	p := newPaginator(false, 0, false)
	p.place(100)
	p.forceBreak()
	// the forced column takes even an oversized question without breaking
	if p.place(700) {
		t.Error("question after a forced break must not break again")
	}
	if !p.place(10) {
		t.Error("column is over budget")
	}
}

func TestPaginatorForcePage(t *testing.T) {
	tests := []struct {
		name      string
		twoColumn bool
		columns   int // columns filled before !newpage
		want      int
	}{
		{"single column", false, 1, 2},
		{"two columns from first column", true, 1, 3},
		{"two columns from second column", true, 2, 3},
		{"two columns from third column", true, 3, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPaginator(tt.twoColumn, 0, false)
			for p.column < tt.columns {
				p.forceBreak()
			}
			p.forcePage()
			if p.column != tt.want || p.current != 0 {
				t.Errorf("after forcePage: column=%d current=%d, want column %d", p.column, p.current, tt.want)
			}
			if p.budget() != fullColumnHeight {
				t.Errorf("budget() = %d on the second page", p.budget())
			}
		})
	}
}

func TestPaginatorTwoColumn(t *testing.T) {
	p := newPaginator(true, 0, false)
	p.place(400)
	if !p.place(200) {
		t.Fatal("expected column break")
	}
	if p.column != 2 || p.budget() != defaultFirstHeight {
		t.Errorf("second column: column=%d budget=%d", p.column, p.budget())
	}
	p.forceBreak()
	if p.column != 3 || p.current != 0 || p.budget() != fullColumnHeight {
		t.Errorf("after forceBreak: %+v budget=%d", p, p.budget())
	}
	if p.breakText() != "\t\\vfill\\null\\columnbreak\n" {
		t.Errorf("breakText() = %q", p.breakText())
	}
}

func TestCounterAndShuffler(t *testing.T) {
	c := NewCounter(3)
	if c.Next() != 4 || c.Value() != 4 {
		t.Errorf("counter = %d", c.Value())
	}

	perm := func(seed int64) []int {
		s := NewShuffler(seed)
		xs := []int{0, 1, 2, 3, 4, 5, 6, 7}
		s.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
		return xs
	}
	a, b := perm(DefaultSeed), perm(DefaultSeed)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed gave %v and %v", a, b)
		}
	}
}
