// Package phoneextract locates the contact phone number inside the free-text
// dump of a claim record.
//
// Extraction walks a fixed list of labels in priority order. Free-text
// sections are bounded and tokenized into phone-shaped candidates, field
// labels yield a single captured value. Every candidate is normalized to a
// canonical form and classified; the first mobile-capable number wins.
//
// The package performs no I/O and holds no mutable state, so an Extractor can
// be shared across goroutines.
package phoneextract

import "strings"

// SectionLabel is a marker used to locate a span of the claim text.
type SectionLabel string

const (
	LabelManualNotes SectionLabel = "OBSERVACIONES MANUALES:"
	LabelDescription SectionLabel = "DESCRIPCION:"
	LabelPhone1      SectionLabel = "TELEF-1:"
	LabelPhone2      SectionLabel = "TELEF-2:"
)

// PriorityOrder is the order in which labels are tried.
var PriorityOrder = []SectionLabel{
	LabelManualNotes,
	LabelDescription,
	LabelPhone1,
	LabelPhone2,
}

// LabelKind selects the extraction rule for a label.
type LabelKind int

const (
	// KindSection labels introduce free text; the last occurrence wins.
	KindSection LabelKind = iota
	// KindField labels are followed by a single value; the first occurrence wins.
	KindField
)

// Kind reports how the label is extracted.
func (l SectionLabel) Kind() LabelKind {
	switch l {
	case LabelPhone1, LabelPhone2:
		return KindField
	default:
		return KindSection
	}
}

// Name returns the label without its trailing colon.
func (l SectionLabel) Name() string {
	return strings.TrimSpace(strings.TrimSuffix(string(l), ":"))
}

// CanonicalNumber is either a bare 9-digit Spanish number or "+" followed by
// 8 to 15 digits.
type CanonicalNumber string

// IsInternational reports whether the number carries a "+" prefix.
func (n CanonicalNumber) IsInternational() bool {
	return strings.HasPrefix(string(n), "+")
}

func (n CanonicalNumber) String() string {
	return string(n)
}

// Match is an accepted number together with where it was found.
type Match struct {
	Number CanonicalNumber
	Label  SectionLabel
	// Raw is the candidate text before normalization.
	Raw string
}
