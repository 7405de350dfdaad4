// Package extract recovers a structured proofreading result from raw model
// output. The upstream model is instructed to emit JSON but is not a
// guaranteed-valid JSON emitter, especially under output-length truncation.
// Extraction is an ordered chain of parser strategies, strictest first;
// losing a user's correction pass entirely is worse than recovering a
// partial one, so the last strategy trades strictness for availability.
package extract

import (
	"encoding/json"
	"fmt"

	"correctnow/internal/domain"
)

// Result is the best-effort structure recovered from model output.
type Result struct {
	CorrectedText string                   `json:"corrected_text"`
	Changes       []domain.ChangeCandidate `json:"changes"`
}

type strategy struct {
	name string
	run  func(string) (*Result, error)
}

var strategies = []strategy{
	{name: "direct", run: parseDirect},
	{name: "balanced", run: parseBalanced},
	{name: "salvage", run: salvage},
}

// Extract sanitizes raw model output and runs the strategy chain, first
// success wins. Callers must treat an error as a retryable upstream failure.
func Extract(raw string) (*Result, error) {
	cleaned := sanitize(raw)
	var firstErr error
	for _, s := range strategies {
		res, err := s.run(cleaned)
		if err == nil {
			return res, nil
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil, fmt.Errorf("extract: %w", firstErr)
}

func parseDirect(text string) (*Result, error) {
	var res Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// parseBalanced extracts the substring from the first '{' to its matching
// '}' at depth zero, skipping over quoted string contents so braces inside
// strings do not count, then parses that substring strictly.
func parseBalanced(text string) (*Result, error) {
	fragment, ok := balancedObject(text)
	if !ok {
		return nil, fmt.Errorf("no balanced object found")
	}
	return parseDirect(fragment)
}

func balancedObject(text string) (string, bool) {
	start := -1
	depth := 0
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
			}
			continue
		}
		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
