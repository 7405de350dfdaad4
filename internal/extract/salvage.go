package extract

import (
	"fmt"
	"regexp"
	"strings"

	"correctnow/internal/domain"
)

const placeholderExplanation = "Suggested correction."

// jsonStr matches the body of a complete double-quoted JSON string.
const jsonStr = `((?:[^"\\]|\\.)*)`

var (
	correctedTextRe = regexp.MustCompile(`"corrected_text"\s*:\s*"` + jsonStr + `"`)
	changeTripleRe  = regexp.MustCompile(
		`\{\s*"original"\s*:\s*"` + jsonStr + `"\s*,\s*"corrected"\s*:\s*"` + jsonStr +
			`"\s*,\s*"explanation"\s*:\s*"` + jsonStr + `"\s*\}`)
	changePairRe = regexp.MustCompile(
		`\{\s*"original"\s*:\s*"` + jsonStr + `"\s*,\s*"corrected"\s*:\s*"` + jsonStr + `"`)
	correctedTextOpenRe = regexp.MustCompile(`"corrected_text"\s*:\s*"(.*)`)
)

// salvage is the last-resort stage for truncated output. It pulls whatever
// complete fields it can find with regular expressions: the corrected text,
// then full change triples, then original/corrected pairs with a placeholder
// explanation, and finally an unterminated corrected_text capture. At least
// one of corrected text or changes must come out non-empty.
func salvage(text string) (*Result, error) {
	res := &Result{}

	if m := correctedTextRe.FindStringSubmatch(text); m != nil {
		res.CorrectedText = unescapeJSON(m[1])
	}

	if triples := changeTripleRe.FindAllStringSubmatch(text, -1); len(triples) > 0 {
		for _, m := range triples {
			res.Changes = append(res.Changes, domain.ChangeCandidate{
				Original:    unescapeJSON(m[1]),
				Corrected:   unescapeJSON(m[2]),
				Explanation: unescapeJSON(m[3]),
			})
		}
	} else if pairs := changePairRe.FindAllStringSubmatch(text, -1); len(pairs) > 0 {
		for _, m := range pairs {
			res.Changes = append(res.Changes, domain.ChangeCandidate{
				Original:    unescapeJSON(m[1]),
				Corrected:   unescapeJSON(m[2]),
				Explanation: placeholderExplanation,
			})
		}
	}

	if res.CorrectedText == "" && len(res.Changes) == 0 {
		if m := correctedTextOpenRe.FindStringSubmatch(text); m != nil {
			capture := m[1]
			if idx := strings.Index(capture, `",`); idx >= 0 {
				capture = capture[:idx]
			}
			res.CorrectedText = unescapeJSON(capture)
		}
	}

	if res.CorrectedText == "" && len(res.Changes) == 0 {
		return nil, fmt.Errorf("nothing recoverable")
	}
	return res, nil
}

var jsonUnescaper = strings.NewReplacer(
	`\\`, `\`,
	`\"`, `"`,
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
)

func unescapeJSON(s string) string {
	return jsonUnescaper.Replace(s)
}
