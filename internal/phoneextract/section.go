package phoneextract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxSectionLength caps a free-text section, in characters.
const MaxSectionLength = 400

// ws is whitespace including U+00A0, which decoded &nbsp; leaves behind.
const ws = `[\s\x{00A0}]`

// cutPatterns mark where a note ends and tabular content begins.
var cutPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\n` + ws + `*-{10,}` + ws + `*\n`),
	regexp.MustCompile(`(?i)\n` + ws + `*SINIESTROS` + ws + `*\n`),
	regexp.MustCompile(`(?i)\n` + ws + `*NUMERO` + ws + `+FECHA` + ws + `+RESERVA` + ws + `+`),
}

var fieldPatterns = map[SectionLabel]*regexp.Regexp{
	LabelPhone1: compileFieldPattern(LabelPhone1),
	LabelPhone2: compileFieldPattern(LabelPhone2),
}

func compileFieldPattern(label SectionLabel) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label.Name()) +
		ws + `*:?` + ws + `*([+0-9][0-9\s\x{00A0}().,\-]{6,})`)
}

// Section returns the span that follows the last occurrence of label, cut at
// the earliest delimiter and capped at MaxSectionLength characters.
func Section(text string, label SectionLabel) (string, bool) {
	pos := strings.LastIndex(text, string(label))
	if pos < 0 {
		return "", false
	}

	chunk := text[pos+len(label):]

	cut := -1
	for _, pattern := range cutPatterns {
		if loc := pattern.FindStringIndex(chunk); loc != nil && (cut < 0 || loc[0] < cut) {
			cut = loc[0]
		}
	}
	if cut >= 0 {
		chunk = chunk[:cut]
	}

	return truncateRunes(chunk, MaxSectionLength), true
}

// Field returns the phone-shaped value that follows the first occurrence of
// label, matched case-insensitively and with or without its colon.
func Field(text string, label SectionLabel) (string, bool) {
	pattern, ok := fieldPatterns[label]
	if !ok {
		pattern = compileFieldPattern(label)
	}

	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	// The capture stops at the first letter, so a trailing "HORA 10:30"
	// never reaches the value.
	value := strings.TrimSpace(m[1])
	return value, value != ""
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
