package features

import (
	"regexp"
	"strings"
	"unicode"
)

// space lists every rune treated as whitespace by the resume cleaner,
// including the information separators and Unicode spaces.
const space = `\s\x0b\x1c-\x1f\x85\p{Z}`

var (
	emailPattern  = regexp.MustCompile(`[^` + space + `]+@[^` + space + `]+`)
	urlPattern    = regexp.MustCompile(`http[^` + space + `]+|www.[^` + space + `]+`)
	symbolPattern = regexp.MustCompile(`[^a-z` + space + `]`)
)

// Normalize lowercases text, blanks out emails, URLs and every non-letter,
// then collapses whitespace. Normalizing twice yields the same string.
func Normalize(text string) string {
	// U+0130 lowercases to i plus a combining dot, which then splits the word
	text = strings.ReplaceAll(text, "\u0130", "i\u0307")
	text = strings.ToLower(text)
	text = emailPattern.ReplaceAllString(text, " ")
	text = urlPattern.ReplaceAllString(text, " ")
	text = symbolPattern.ReplaceAllString(text, " ")

	return strings.Join(tokens(text), " ")
}

func tokens(text string) []string {
	return strings.FieldsFunc(text, isSpace)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
