package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantBase error
		wantKind string
	}{
		{
			name:     "structural without line",
			err:      NewStructural(0, "no sections found"),
			wantMsg:  "structural error: no sections found",
			wantBase: ErrStructural,
			wantKind: "StructuralError",
		},
		{
			name:     "structural with line",
			err:      NewStructural(7, "cover must be first"),
			wantMsg:  "structural error at line 7: cover must be first",
			wantBase: ErrStructural,
			wantKind: "StructuralError",
		},
		{
			name:     "syntax with text",
			err:      NewSyntax(3, "invalid match syntax", "Paris"),
			wantMsg:  `syntax error at line 3: invalid match syntax: "Paris"`,
			wantBase: ErrSyntax,
			wantKind: "SyntaxError",
		},
		{
			name:     "directive",
			err:      NewDirective(2, "img", "expected arguments"),
			wantMsg:  "directive error at line 2: !img: expected arguments",
			wantBase: ErrDirective,
			wantKind: "DirectiveError",
		},
		{
			name:     "validation with construct",
			err:      NewValidation(0, "cover", "empty module"),
			wantMsg:  "validation error: [cover]: empty module",
			wantBase: ErrValidation,
			wantKind: "ValidationError",
		},
		{
			name:     "config with key and value",
			err:      NewConfig("intro-height", "tall", "expected a number"),
			wantMsg:  `config error: intro-height="tall": expected a number`,
			wantBase: ErrConfig,
			wantKind: "ConfigError",
		},
		{
			name:     "config with key",
			err:      NewConfig("pattern", "", "required"),
			wantMsg:  "config error: pattern: required",
			wantBase: ErrConfig,
			wantKind: "ConfigError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, tt.wantBase) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.wantBase)
			}
			if got := Kind(tt.err); got != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", got, tt.wantKind)
			}
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := Wrap(NewValidation(0, "tf", "expected two answers"), "section 2")
	if got := Kind(err); got != "ValidationError" {
		t.Errorf("Kind() = %q, want ValidationError", got)
	}
	if got := Kind(fmt.Errorf("plain")); got != "" {
		t.Errorf("Kind(plain) = %q, want empty", got)
	}
}

func TestUnderlyingError(t *testing.T) {
	underlying := fmt.Errorf("bad lexer state")
	err := &DirectiveError{Directive: "gap", Message: "malformed", Err: underlying}
	if got := err.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}
}

func TestNotFoundError(t *testing.T) {
	if got := NewNotFound("snippet", "preamble").Error(); got != "snippet not found: preamble" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&NotFoundError{Resource: "build"}).Error(); got != "build not found" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(NewNotFound("build", "x"), ErrNotFound) {
		t.Error("expected ErrNotFound")
	}
}

func TestIOError(t *testing.T) {
	underlying := fmt.Errorf("permission denied")
	tests := []struct {
		name    string
		err     *IOError
		wantMsg string
	}{
		{"with path", NewIO("read", "exam.txt", underlying), "failed to read exam.txt: permission denied"},
		{"without path", NewIO("write", "", underlying), "failed to write: permission denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, underlying) {
				t.Error("expected wrapped underlying error")
			}
			if !errors.Is(tt.err, ErrIO) {
				t.Error("expected ErrIO")
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	base := NewSyntax(1, "bad", "")
	err := Wrapf(base, "module %d", 3)
	if got := err.Error(); got != "module 3: syntax error at line 1: bad" {
		t.Errorf("Wrapf() = %q", got)
	}
	var se *SyntaxError
	if !As(err, &se) || se.Line != 1 {
		t.Errorf("As() did not recover SyntaxError")
	}
	if !Is(err, ErrSyntax) {
		t.Error("Is() should find ErrSyntax")
	}
}
