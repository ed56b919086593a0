package markup

import "strings"

// SectionKind is the kind of a top-level section.
type SectionKind int

// Section kinds.
const (
	SectionCover SectionKind = iota
	SectionBody
	SectionHeader
)

var sectionNames = [...]string{
	SectionCover:  "cover",
	SectionBody:   "section",
	SectionHeader: "header",
}

func (k SectionKind) String() string {
	if int(k) < len(sectionNames) {
		return sectionNames[k]
	}
	return "unknown"
}

// ParseSectionKind looks up a section tag name, case-insensitively.
func ParseSectionKind(s string) (SectionKind, bool) {
	s = strings.ToLower(s)
	for i, name := range sectionNames {
		if name == s {
			return SectionKind(i), true
		}
	}
	return 0, false
}

// Kind is the kind of a module.
type Kind int

// Module kinds.
const (
	KindTitle Kind = iota
	KindSubtitle
	KindAuthor
	KindInfo
	KindInstructions
	KindText
	KindLatex
	KindTable
	KindImage
	KindMC
	KindFRQ
	KindMatch
	KindTF

	kindCount
)

// NumKinds is the number of module kinds, for tables indexed by Kind.
const NumKinds = int(kindCount)

var kindNames = [NumKinds]string{
	KindTitle:        "title",
	KindSubtitle:     "subtitle",
	KindAuthor:       "author",
	KindInfo:         "info",
	KindInstructions: "instructions",
	KindText:         "text",
	KindLatex:        "latex",
	KindTable:        "table",
	KindImage:        "image",
	KindMC:           "mc",
	KindFRQ:          "frq",
	KindMatch:        "match",
	KindTF:           "tf",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind looks up a module tag name, case-insensitively.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(s)
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// IsQuestion reports whether modules of this kind number questions and
// produce answer artifacts.
func (k Kind) IsQuestion() bool {
	switch k {
	case KindMC, KindFRQ, KindMatch, KindTF:
		return true
	}
	return false
}
