package extract

import (
	"regexp"
	"strings"
)

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// sanitize normalizes raw model output before any parse attempt: BOM and
// Markdown fences stripped, disallowed control characters removed (tab,
// newline and carriage return kept), literal newlines inside quoted strings
// re-escaped, trailing commas removed.
func sanitize(raw string) string {
	text := strings.TrimPrefix(raw, "\uFEFF")
	text = trimCodeFence(text)
	text = stripControl(text)
	text = escapeNewlinesInStrings(text)
	return trailingCommaRe.ReplaceAllString(text, "$1")
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}

// escapeNewlinesInStrings rewrites literal newlines that occur inside a
// double-quoted JSON string as the two-character escape \n. The scan tracks
// quote and escape state character by character so newlines outside strings
// are untouched.
func escapeNewlinesInStrings(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			case c == '\n':
				sb.WriteString(`\n`)
				continue
			case c == '\r':
				sb.WriteString(`\r`)
				continue
			}
		} else if c == '"' {
			inString = true
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
