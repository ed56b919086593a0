package markup

import (
	"slices"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/ExamTeX/core/directive"
	"github.com/FocuswithJustin/ExamTeX/core/errors"
)

// Options is the typed configuration of a module. Only the fields that
// are recognized for the module's kind can be set.
type Options struct {
	Name           string // \section* heading before a question module
	Condense       bool   // answer block follows the module body
	NoShuffle      bool
	TwoColumn      bool
	IntroHeight    int // points reserved above the first questions
	HasIntroHeight bool
	QWorth         string // points per question
	Columns        int    // word bank columns
	Pattern        string // tabular column spec
	Boxed          bool
	LineSpace      string // \arraystretch
	Width          string // image width
}

// AnswerOptions configures a module's answer artifacts.
type AnswerOptions struct {
	Sheet     bool // include the module in the answer sheet
	Break     bool // page break after the module's answer block
	TwoColumn bool // two-column free-response answers
}

// DefaultOptions returns the options of a module with no settings.
func DefaultOptions() Options {
	return Options{Columns: 3}
}

type valueType int

const (
	boolValue valueType = iota
	intValue
	numberValue
	stringValue
)

type optionValue struct {
	b bool
	n int
	s string
}

type optionSpec struct {
	typ   valueType
	kinds []Kind
	set   func(o *Options, v optionValue)
}

var questionKinds = []Kind{KindMC, KindFRQ, KindMatch, KindTF}

var moduleOptions = map[string]optionSpec{
	"twocolumn": {boolValue, []Kind{KindMC},
		func(o *Options, v optionValue) { o.TwoColumn = v.b }},
	"intro-height": {intValue, []Kind{KindMC},
		func(o *Options, v optionValue) { o.IntroHeight, o.HasIntroHeight = v.n, true }},
	"qworth": {numberValue, []Kind{KindMC, KindMatch, KindTF},
		func(o *Options, v optionValue) { o.QWorth = v.s }},
	"noshuffle": {boolValue, []Kind{KindMC, KindMatch, KindTF},
		func(o *Options, v optionValue) { o.NoShuffle = v.b }},
	"condense": {boolValue, questionKinds,
		func(o *Options, v optionValue) { o.Condense = v.b }},
	"name": {stringValue, questionKinds,
		func(o *Options, v optionValue) { o.Name = v.s }},
	"columns": {intValue, []Kind{KindMatch},
		func(o *Options, v optionValue) { o.Columns = v.n }},
	"pattern": {stringValue, []Kind{KindTable},
		func(o *Options, v optionValue) { o.Pattern = v.s }},
	"boxed": {boolValue, []Kind{KindTable},
		func(o *Options, v optionValue) { o.Boxed = v.b }},
	"linespace": {numberValue, []Kind{KindTable},
		func(o *Options, v optionValue) { o.LineSpace = v.s }},
	"width": {stringValue, []Kind{KindImage},
		func(o *Options, v optionValue) { o.Width = v.s }},
}

var answerOptions = map[string]func(a *AnswerOptions, b bool){
	"sheet":     func(a *AnswerOptions, b bool) { a.Sheet = b },
	"break":     func(a *AnswerOptions, b bool) { a.Break = b },
	"twocolumn": func(a *AnswerOptions, b bool) { a.TwoColumn = b },
}

// answerPrefix marks answer options inside an option block.
const answerPrefix = "ans-"

// IsKnownOption reports whether key names any module or answer option.
func IsKnownOption(key string) bool {
	key = strings.ToLower(key)
	if _, ok := moduleOptions[key]; ok {
		return true
	}
	_, ok := answerOptions[strings.TrimPrefix(key, answerPrefix)]
	return ok
}

func parseValue(typ valueType, s directive.Setting) (optionValue, error) {
	if typ == boolValue {
		if s.IsFlag() {
			return optionValue{b: true}, nil
		}
		b, err := parseBool(s.Value())
		if err != nil {
			return optionValue{}, errors.NewConfig(s.Key, s.Value(), "expected true or false")
		}
		return optionValue{b: b}, nil
	}

	if s.IsFlag() || s.Value() == "" {
		return optionValue{}, errors.NewConfig(s.Key, "", "expected a value")
	}
	v := s.Value()
	switch typ {
	case intValue:
		n, err := strconv.Atoi(v)
		if err != nil {
			return optionValue{}, errors.NewConfig(s.Key, v, "expected an integer")
		}
		return optionValue{n: n, s: v}, nil
	case numberValue:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return optionValue{}, errors.NewConfig(s.Key, v, "expected a number")
		}
	}
	return optionValue{s: v}, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

// apply validates one module setting against kind and stores it.
func (o *Options) apply(kind Kind, s directive.Setting) error {
	spec, ok := moduleOptions[s.Key]
	if !ok || !slices.Contains(spec.kinds, kind) {
		return errors.NewConfig(s.Key, "", "unknown option for ["+kind.String()+"]")
	}
	v, err := parseValue(spec.typ, s)
	if err != nil {
		return err
	}
	spec.set(o, v)
	return nil
}

// apply validates one answer setting against kind and stores it.
func (a *AnswerOptions) apply(kind Kind, s directive.Setting) error {
	set, ok := answerOptions[s.Key]
	if !ok || !kind.IsQuestion() {
		return errors.NewConfig(s.Key, "", "unknown answer option for ["+kind.String()+"]")
	}
	v, err := parseValue(boolValue, s)
	if err != nil {
		return err
	}
	set(a, v.b)
	return nil
}
