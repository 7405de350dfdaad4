// Package proof calls the upstream language model that performs the actual
// proofreading. The model is a black box returning text that should be JSON
// but often is not; parsing is delegated to the extract package and a parse
// failure is retried exactly once with a larger output budget.
package proof

import (
	"context"
	"fmt"
	"strings"

	"correctnow/internal/extract"
)

// Request is one proofreading call.
type Request struct {
	Text           string
	Language       string
	ProtectedWords []string // proper nouns the model must not flag
}

// Checker proofreads text via an upstream model.
type Checker interface {
	Check(ctx context.Context, req Request) (*extract.Result, error)
}

func buildPrompt(req Request) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You are a professional proofreader. Correct all spelling, grammar and punctuation errors in the following %s text. ", languageName(req.Language))
	sb.WriteString("Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"corrected_text":string,"changes":[{"original":string,"corrected":string,"explanation":string}]}`)
	sb.WriteString(". Each \"original\" must quote the exact text being replaced. Do not rewrite style, only fix errors. If the text is already correct, return it unchanged with an empty changes array.")
	if len(req.ProtectedWords) > 0 {
		fmt.Fprintf(sb, " The following are proper nouns spelled correctly; never flag them: %s.", strings.Join(req.ProtectedWords, ", "))
	}
	sb.WriteString("\n\nText:\n")
	sb.WriteString(req.Text)
	return sb.String()
}

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"pt": "Portuguese",
	"it": "Italian",
	"nl": "Dutch",
	"id": "Indonesian",
	"ru": "Russian",
	"hi": "Hindi",
	"ar": "Arabic",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"tr": "Turkish",
	"vi": "Vietnamese",
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return "English"
}
