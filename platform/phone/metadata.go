package phone

import (
	"errors"
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// unknownRegion makes Parse rely on the number's own country calling code.
const unknownRegion = "ZZ"

// ErrInvalidNumber is returned when a number parses but is not a valid
// number for its country.
var ErrInvalidNumber = errors.New("invalid phone number")

// LineType is the coarse line classification reported by the metadata.
type LineType int

const (
	LineUnknown LineType = iota
	LineMobile
	LineFixedLineOrMobile
	LineFixedLine
	LineOther
)

func (t LineType) String() string {
	switch t {
	case LineMobile:
		return "mobile"
	case LineFixedLineOrMobile:
		return "fixed_line_or_mobile"
	case LineFixedLine:
		return "fixed_line"
	case LineOther:
		return "other"
	default:
		return "unknown"
	}
}

// Metadata resolves the line type of an international (+-prefixed) number.
type Metadata interface {
	LineType(number string) (LineType, error)
}

// LibMetadata implements Metadata with the bundled libphonenumber tables.
type LibMetadata struct{}

// NewLibMetadata returns the libphonenumber-backed metadata.
func NewLibMetadata() LibMetadata {
	return LibMetadata{}
}

// LineType parses number without a default region and classifies it.
// Panics raised inside the library are returned as errors.
func (LibMetadata) LineType(number string) (lt LineType, err error) {
	defer func() {
		if r := recover(); r != nil {
			lt = LineUnknown
			err = fmt.Errorf("phone metadata panic for %q: %v", number, r)
		}
	}()

	parsed, err := phonenumbers.Parse(number, unknownRegion)
	if err != nil {
		return LineUnknown, fmt.Errorf("parse %q: %w", number, err)
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return LineUnknown, ErrInvalidNumber
	}

	switch phonenumbers.GetNumberType(parsed) {
	case phonenumbers.MOBILE:
		return LineMobile, nil
	case phonenumbers.FIXED_LINE_OR_MOBILE:
		return LineFixedLineOrMobile, nil
	case phonenumbers.FIXED_LINE:
		return LineFixedLine, nil
	default:
		return LineOther, nil
	}
}
