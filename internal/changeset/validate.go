// Package changeset filters raw model-reported edits down to actionable
// changes anchored in the literal source text, and applies accepted changes
// back onto it. It exclusively owns text mutation: nothing else in the
// service rewrites user text.
package changeset

import (
	"strings"

	"correctnow/internal/domain"
	"correctnow/internal/textmatch"
)

// Validate keeps only candidates that are structurally sound and whose
// original fragment can actually be anchored in text. Anchorable fragments
// have their Original rewritten to the exact slice of the input, so all
// downstream code operates on literal text. No-op edits are dropped, and
// when several candidates flag the identical span only the first survives.
func Validate(text string, raw []domain.ChangeCandidate) []domain.Change {
	seen := make(map[string]struct{}, len(raw))
	var out []domain.Change
	for _, c := range raw {
		if c.Original == "" {
			continue
		}
		if textmatch.Normalize(c.Original) == textmatch.Normalize(c.Corrected) {
			continue
		}
		original := c.Original
		if !strings.Contains(text, original) {
			span, ok := textmatch.Locate(text, original)
			if !ok {
				continue
			}
			original = text[span.Start:span.End]
		}
		if textmatch.Normalize(original) == textmatch.Normalize(c.Corrected) {
			continue
		}
		if _, dup := seen[original]; dup {
			continue
		}
		seen[original] = struct{}{}
		out = append(out, domain.Change{
			Original:    original,
			Corrected:   c.Corrected,
			Explanation: c.Explanation,
			Status:      domain.ChangePending,
		})
	}
	return out
}

// Revalidate reclassifies pending changes whose original fragment can no
// longer be found in the current text (exactly or case-insensitively) as
// ignored. Stale corrections must never be presented as actionable.
func Revalidate(text string, changes []domain.Change) []domain.Change {
	lower := strings.ToLower(text)
	out := make([]domain.Change, len(changes))
	for i, c := range changes {
		out[i] = c
		if c.Status != domain.ChangePending {
			continue
		}
		if strings.Contains(text, c.Original) {
			continue
		}
		if strings.Contains(lower, strings.ToLower(c.Original)) {
			continue
		}
		out[i].Status = domain.ChangeIgnored
	}
	return out
}
