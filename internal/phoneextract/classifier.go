package phoneextract

import "claim_contact_backend/platform/phone"

// Classification is the verdict on a canonical number.
type Classification int

const (
	Invalid Classification = iota
	NotMobile
	// MobileOrAmbiguous covers confirmed mobiles and ranges shared by mobile
	// and fixed lines.
	MobileOrAmbiguous
)

// Accepted reports whether the number is usable as a contact phone.
func (c Classification) Accepted() bool {
	return c == MobileOrAmbiguous
}

func (c Classification) String() string {
	switch c {
	case MobileOrAmbiguous:
		return "mobile_or_ambiguous"
	case NotMobile:
		return "not_mobile"
	default:
		return "invalid"
	}
}

// Classifier decides whether a canonical number can receive contact.
type Classifier interface {
	Classify(n CanonicalNumber) Classification
}

// NewClassifier returns a metadata-backed classifier, or the permissive one
// when meta is nil.
func NewClassifier(meta phone.Metadata) Classifier {
	if meta == nil {
		return PermissiveClassifier{}
	}
	return MetadataClassifier{meta: meta}
}

// IsMobile reports whether c accepts n. A panicking classifier rejects.
func IsMobile(c Classifier, n CanonicalNumber) bool {
	return classify(c, n).Accepted()
}

func classify(c Classifier, n CanonicalNumber) (result Classification) {
	defer func() {
		if recover() != nil {
			result = Invalid
		}
	}()
	return c.Classify(n)
}

// MetadataClassifier checks international numbers against phone metadata.
type MetadataClassifier struct {
	meta phone.Metadata
}

// Classify implements Classifier.
func (c MetadataClassifier) Classify(n CanonicalNumber) (result Classification) {
	if !n.IsInternational() {
		return classifyNational(n)
	}
	if !hasInternationalShape(n) {
		return Invalid
	}

	defer func() {
		if recover() != nil {
			result = Invalid
		}
	}()

	lineType, err := c.meta.LineType(string(n))
	if err != nil {
		return Invalid
	}

	switch lineType {
	case phone.LineMobile, phone.LineFixedLineOrMobile:
		return MobileOrAmbiguous
	default:
		return NotMobile
	}
}

// PermissiveClassifier accepts every well-formed international number. It
// stands in when no metadata is available and will let foreign landlines
// through.
type PermissiveClassifier struct{}

// Classify implements Classifier.
func (PermissiveClassifier) Classify(n CanonicalNumber) Classification {
	if !n.IsInternational() {
		return classifyNational(n)
	}
	if !hasInternationalShape(n) {
		return Invalid
	}
	return MobileOrAmbiguous
}

func classifyNational(n CanonicalNumber) Classification {
	s := string(n)
	if len(s) != nationalDigits || digitsOnly(s) != s {
		return Invalid
	}
	if s[0] == '6' || s[0] == '7' {
		return MobileOrAmbiguous
	}
	return NotMobile
}

func hasInternationalShape(n CanonicalNumber) bool {
	digits := string(n)[1:]
	if digitsOnly(digits) != digits {
		return false
	}
	return len(digits) >= minInternationalDigits && len(digits) <= maxInternationalDigits
}
