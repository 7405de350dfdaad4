package textmatch

import (
	"regexp"
	"strings"
	"unicode"
)

// LooseMatcher builds a case-insensitive pattern for applying an accepted
// correction across a whole document. Runs of whitespace in the original
// match any whitespace, and every rune boundary except the final one
// tolerates trailing punctuation or combining marks, so a fragment still
// matches after minor re-punctuation by the model.
func LooseMatcher(original string) (*regexp.Regexp, error) {
	runes := []rune(original)
	var sb strings.Builder
	sb.WriteString("(?i)")
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if unicode.IsSpace(r) {
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
			sb.WriteString(`\s+`)
			continue
		}
		sb.WriteString(regexp.QuoteMeta(string(r)))
		if i < len(runes)-1 {
			sb.WriteString(`[\p{P}\p{M}]?`)
		}
	}
	return regexp.Compile(sb.String())
}
