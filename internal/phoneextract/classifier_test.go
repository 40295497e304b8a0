package phoneextract

import (
	"errors"
	"testing"

	"claim_contact_backend/platform/phone"
)

type fakeMetadata map[string]phone.LineType

func (f fakeMetadata) LineType(number string) (phone.LineType, error) {
	lt, ok := f[number]
	if !ok {
		return phone.LineUnknown, phone.ErrInvalidNumber
	}
	return lt, nil
}

type panickingMetadata struct{}

func (panickingMetadata) LineType(string) (phone.LineType, error) {
	panic("metadata tables not loaded")
}

type failingMetadata struct{}

func (failingMetadata) LineType(string) (phone.LineType, error) {
	return phone.LineUnknown, errors.New("parse failure")
}

func TestClassifyNational(t *testing.T) {
	c := NewClassifier(fakeMetadata{})

	cases := map[CanonicalNumber]Classification{
		"612345678": MobileOrAmbiguous,
		"712345678": MobileOrAmbiguous,
		"912345678": NotMobile,
		"812345678": NotMobile,
		"61234567":  Invalid,
		"61234567x": Invalid,
	}
	for n, want := range cases {
		if got := c.Classify(n); got != want {
			t.Errorf("Classify(%q) = %s, want %s", n, got, want)
		}
	}
}

func TestMetadataClassifierLineTypes(t *testing.T) {
	meta := fakeMetadata{
		"+33612345678":  phone.LineMobile,
		"+12025550143":  phone.LineFixedLineOrMobile,
		"+33123456789":  phone.LineFixedLine,
		"+448001234567": phone.LineOther,
	}
	c := NewClassifier(meta)

	cases := map[CanonicalNumber]Classification{
		"+33612345678":  MobileOrAmbiguous,
		"+12025550143":  MobileOrAmbiguous,
		"+33123456789":  NotMobile,
		"+448001234567": NotMobile,
		"+99999999999":  Invalid,
		"+1234":         Invalid,
	}
	for n, want := range cases {
		if got := c.Classify(n); got != want {
			t.Errorf("Classify(%q) = %s, want %s", n, got, want)
		}
	}
}

func TestMetadataClassifierRecoversFromCollaborator(t *testing.T) {
	if got := NewClassifier(panickingMetadata{}).Classify("+33612345678"); got != Invalid {
		t.Fatalf("expected panic to map to invalid, got %s", got)
	}
	if got := NewClassifier(failingMetadata{}).Classify("+33612345678"); got != Invalid {
		t.Fatalf("expected error to map to invalid, got %s", got)
	}
}

func TestPermissiveClassifier(t *testing.T) {
	c := NewClassifier(nil)
	if _, ok := c.(PermissiveClassifier); !ok {
		t.Fatalf("expected nil metadata to select PermissiveClassifier, got %T", c)
	}

	if !IsMobile(c, "+33123456789") {
		t.Fatal("expected permissive classifier to accept an international landline")
	}
	if IsMobile(c, "+1234") {
		t.Fatal("expected permissive classifier to reject a malformed number")
	}
	if IsMobile(c, "912345678") {
		t.Fatal("expected domestic landline to stay rejected")
	}
}

type panickingClassifier struct{}

func (panickingClassifier) Classify(CanonicalNumber) Classification {
	panic("boom")
}

func TestIsMobileRecovers(t *testing.T) {
	if IsMobile(panickingClassifier{}, "612345678") {
		t.Fatal("expected panicking classifier to reject")
	}
}
