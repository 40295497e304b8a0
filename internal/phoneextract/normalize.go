package phoneextract

import "strings"

const (
	minInternationalDigits = 8
	maxInternationalDigits = 15
	nationalDigits         = 9
)

// Normalize converts a raw candidate into its canonical form. It returns
// false when the candidate does not have a usable shape; that is a normal
// outcome, not an error.
func Normalize(raw string) (CanonicalNumber, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))

	// Portals prepend a stray "00" to domestic numbers, so 00 + 9 Spanish
	// digits stays national.
	if strings.HasPrefix(s, "00") {
		rest := digitsOnly(s[2:])
		if len(rest) == nationalDigits && strings.ContainsRune("6789", rune(rest[0])) {
			return CanonicalNumber(rest), true
		}
		return international(rest)
	}

	if strings.HasPrefix(s, "+") {
		return international(digitsOnly(s[1:]))
	}

	digits := digitsOnly(s)

	// Trunk prefix: 0 + 9 digits.
	if len(digits) == nationalDigits+1 && digits[0] == '0' && strings.ContainsRune("6789", rune(digits[1])) {
		digits = digits[1:]
	}

	// Spain country code without "+". A "+34" prefix is kept as-is above.
	if len(digits) == nationalDigits+2 && strings.HasPrefix(digits, "34") && strings.ContainsRune("6789", rune(digits[2])) {
		return CanonicalNumber(digits[2:]), true
	}

	if len(digits) == nationalDigits {
		// "00xxxxxxx" would re-read as an international prefix.
		if strings.HasPrefix(digits, "00") {
			return "", false
		}
		return CanonicalNumber(digits), true
	}

	return international(digits)
}

func international(digits string) (CanonicalNumber, bool) {
	if len(digits) < minInternationalDigits || len(digits) > maxInternationalDigits {
		return "", false
	}
	return CanonicalNumber("+" + digits), true
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
