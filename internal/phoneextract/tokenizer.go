package phoneextract

import (
	"iter"
	"regexp"
)

// candidatePattern matches an optional "+" or "00" prefix followed by a digit,
// at least six digits or separators, and a closing digit.
var candidatePattern = regexp.MustCompile(`(?:\+|00)?[\s\x{00A0}]*\d[\d\s\x{00A0}().,\-]{6,}\d`)

// Candidates yields the phone-shaped substrings of span from left to right.
// Matches never overlap. The sequence can be ranged over more than once.
func Candidates(span string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := span
		for rest != "" {
			loc := candidatePattern.FindStringIndex(rest)
			if loc == nil {
				return
			}
			if !yield(rest[loc[0]:loc[1]]) {
				return
			}
			rest = rest[loc[1]:]
		}
	}
}
