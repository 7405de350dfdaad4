package lang

import (
	"fmt"
	"hash/fnv"
	"time"
	"unicode"

	"golang.org/x/sync/singleflight"

	"correctnow/internal/cache"
)

const (
	detectSample = 512 // runes inspected per detection
	detectTTL    = 30 * time.Minute
)

// Detector guesses the dominant language of a text from its script. Results
// are cached by content hash; concurrent detections of the same text are
// collapsed with singleflight so repeated checks of one document (the common
// client pattern) cost one pass.
type Detector struct {
	results *cache.Store[string]
	group   singleflight.Group
	clock   func() time.Time
}

// NewDetector builds a detector with a bounded result cache.
func NewDetector(maxEntries int, clock func() time.Time) *Detector {
	if clock == nil {
		clock = time.Now
	}
	return &Detector{
		results: cache.New[string](maxEntries),
		clock:   clock,
	}
}

// Detect returns the best-guess language code for text, or Default when the
// text carries no usable script signal.
func (d *Detector) Detect(text string) string {
	if text == "" {
		return Default
	}
	key := contentKey(text)
	now := d.clock()
	if code, ok := d.results.Get(key, now); ok {
		return code
	}
	v, _, _ := d.group.Do(key, func() (any, error) {
		code := detectByScript(text)
		d.results.Set(key, code, now.Add(detectTTL))
		return code, nil
	})
	return v.(string)
}

func contentKey(text string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return fmt.Sprintf("%x", h.Sum64())
}

// detectByScript tallies the writing scripts of the first detectSample runes
// and maps the dominant non-Latin script to a language. Latin-script text
// stays Default: distinguishing Latin-script languages needs the caller's
// explicit language field, not a guess.
func detectByScript(text string) string {
	counts := map[string]int{}
	seen := 0
	for _, r := range text {
		if seen >= detectSample {
			break
		}
		if !unicode.IsLetter(r) {
			continue
		}
		seen++
		switch {
		case unicode.Is(unicode.Devanagari, r):
			counts["hi"]++
		case unicode.Is(unicode.Cyrillic, r):
			counts["ru"]++
		case unicode.Is(unicode.Arabic, r):
			counts["ar"]++
		case unicode.Is(unicode.Hangul, r):
			counts["ko"]++
		case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
			counts["ja"]++
		case unicode.Is(unicode.Han, r):
			counts["zh"]++
		}
	}
	best, bestCount := Default, 0
	for code, n := range counts {
		if n > bestCount {
			best, bestCount = code, n
		}
	}
	if bestCount*5 < seen { // weak signal, mostly Latin text
		return Default
	}
	// Han runes inside Japanese text: kana presence wins.
	if best == "zh" && counts["ja"] > 0 {
		return "ja"
	}
	return best
}
