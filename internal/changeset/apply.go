package changeset

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"

	"correctnow/internal/domain"
	"correctnow/internal/textmatch"
)

const (
	nameMinLen          = 2
	nameMaxOriginalLen  = 48
	nameMaxCorrectedLen = 64
)

// ApplyOne applies a single accepted change to text. A fragment occurring
// exactly once and not looking like a proper-noun correction is replaced in
// place (fast path). Otherwise the loose matcher rewrites every occurrence,
// so a misspelled name corrected once is corrected everywhere.
func ApplyOne(text string, ch domain.Change) string {
	count := strings.Count(text, ch.Original)
	if count == 1 && !nameLike(ch.Original, ch.Corrected) {
		return strings.Replace(text, ch.Original, ch.Corrected, 1)
	}
	re, err := textmatch.LooseMatcher(ch.Original)
	if err != nil {
		return strings.ReplaceAll(text, ch.Original, ch.Corrected)
	}
	if !re.MatchString(text) {
		return strings.ReplaceAll(text, ch.Original, ch.Corrected)
	}
	return re.ReplaceAllLiteralString(text, ch.Corrected)
}

// ApplyAll folds every accepted change over base in the order received.
// When the model supplied a full corrected text that differs from the fold
// result, the model text wins: its output is globally coherent in ways a
// mechanical replay is not.
func ApplyAll(base, modelCorrected string, changes []domain.Change) string {
	folded := base
	for _, c := range changes {
		if c.Status != domain.ChangeAccepted {
			continue
		}
		folded = ApplyOne(folded, c)
	}
	if modelCorrected != "" && modelCorrected != folded {
		return modelCorrected
	}
	return folded
}

// EditDistance reports the Levenshtein distance between the source and the
// fully corrected text, surfaced to clients as a rough severity signal.
func EditDistance(original, corrected string) int {
	return matchr.Levenshtein(original, corrected)
}

// nameLike guesses whether a change corrects a proper noun: a single short
// token containing a letter, capitalized or written in a script that does
// not distinguish case. Such corrections always apply globally.
func nameLike(original, corrected string) bool {
	if strings.ContainsFunc(original, unicode.IsSpace) || strings.ContainsFunc(corrected, unicode.IsSpace) {
		return false
	}
	origLen := len([]rune(original))
	corrLen := len([]rune(corrected))
	if origLen < nameMinLen || origLen > nameMaxOriginalLen {
		return false
	}
	if corrLen < nameMinLen || corrLen > nameMaxCorrectedLen {
		return false
	}
	if !strings.ContainsFunc(original, unicode.IsLetter) {
		return false
	}
	return isCapitalized(original) || isCapitalized(corrected) || hasUncasedScript(original)
}

func isCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// hasUncasedScript reports whether s contains letters from a script without
// a case distinction (Devanagari, Han, Arabic, ...), where capitalization is
// meaningless as a proper-noun signal.
func hasUncasedScript(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.In(r, unicode.Lu, unicode.Ll, unicode.Lt) {
			return true
		}
	}
	return false
}
