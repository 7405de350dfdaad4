// Package textmatch anchors model-reported text fragments inside the user's
// source text. Models rarely echo the exact bytes of the input; the dominant
// drift is quote style (curly vs straight) and whitespace. Matching degrades
// from exact to "close enough to anchor unambiguously", never to a guess.
package textmatch

import (
	"strings"
	"unicode"
)

// Span is a byte range into the original haystack.
type Span struct {
	Start int
	End   int
}

// normalizeRune maps typographic punctuation to its plain ASCII equivalent,
// one rune to one rune, so offsets found in a normalized rune sequence remain
// valid offsets in the original.
func normalizeRune(r rune) rune {
	switch r {
	case '“', '”', '„', '«', '»': // curly double quotes, guillemets
		return '"'
	case '‘', '’', '‚', '‹', '›': // curly single quotes, apostrophes
		return '\''
	case ' ', ' ', ' ': // non-breaking spaces
		return ' '
	}
	return r
}

// Normalize applies the rune-for-rune quote/space normalization to s.
func Normalize(s string) string {
	return strings.Map(normalizeRune, s)
}

// Locate finds needle inside haystack and returns its byte span. It tries,
// in order: exact match, quote/space-normalized match, case-insensitive
// normalized match. The returned span always slices the original haystack.
func Locate(haystack, needle string) (Span, bool) {
	if needle == "" {
		return Span{}, false
	}
	if idx := strings.Index(haystack, needle); idx >= 0 {
		return Span{Start: idx, End: idx + len(needle)}, true
	}

	hay := []rune(haystack)
	normHay := make([]rune, len(hay))
	for i, r := range hay {
		normHay[i] = normalizeRune(r)
	}
	normNeedle := []rune(Normalize(needle))

	if start, ok := runeIndex(normHay, normNeedle, false); ok {
		return runeSpanToBytes(hay, start, len(normNeedle)), true
	}
	if start, ok := runeIndex(normHay, normNeedle, true); ok {
		return runeSpanToBytes(hay, start, len(normNeedle)), true
	}
	return Span{}, false
}

// runeIndex is a naive rune-level substring scan. Needles are short model
// fragments, so the quadratic worst case does not matter.
func runeIndex(hay, needle []rune, foldCase bool) (int, bool) {
	if len(needle) == 0 || len(needle) > len(hay) {
		return 0, false
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j, nr := range needle {
			hr := hay[i+j]
			if foldCase {
				hr = unicode.ToLower(hr)
				nr = unicode.ToLower(nr)
			}
			if hr != nr {
				match = false
				break
			}
		}
		if match {
			return i, true
		}
	}
	return 0, false
}

func runeSpanToBytes(hay []rune, start, length int) Span {
	byteStart := len(string(hay[:start]))
	byteEnd := byteStart + len(string(hay[start:start+length]))
	return Span{Start: byteStart, End: byteEnd}
}
