package extract

import (
	"encoding/json"
	"testing"

	"correctnow/internal/domain"
)

func TestExtractValidJSON(t *testing.T) {
	want := Result{
		CorrectedText: "Hello world",
		Changes: []domain.ChangeCandidate{
			{Original: "helo", Corrected: "hello", Explanation: "typo"},
		},
	}
	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	got, err := Extract(string(raw))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got.CorrectedText != want.CorrectedText {
		t.Fatalf("CorrectedText = %q, want %q", got.CorrectedText, want.CorrectedText)
	}
	if len(got.Changes) != 1 || got.Changes[0] != want.Changes[0] {
		t.Fatalf("Changes = %+v, want %+v", got.Changes, want.Changes)
	}
}

func TestExtractCodeFence(t *testing.T) {
	raw := "```json\n{\"corrected_text\": \"Fixed.\", \"changes\": []}\n```"
	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got.CorrectedText != "Fixed." {
		t.Fatalf("CorrectedText = %q, want %q", got.CorrectedText, "Fixed.")
	}
}

func TestExtractSurroundingProse(t *testing.T) {
	raw := `Here is the result you asked for:
{"corrected_text": "All good", "changes": [{"original": "teh", "corrected": "the", "explanation": "typo"}]}
Let me know if you need anything else.`
	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got.CorrectedText != "All good" {
		t.Fatalf("CorrectedText = %q, want %q", got.CorrectedText, "All good")
	}
	if len(got.Changes) != 1 || got.Changes[0].Original != "teh" {
		t.Fatalf("Changes = %+v", got.Changes)
	}
}

func TestExtractTrailingCommas(t *testing.T) {
	raw := `{"corrected_text": "ok", "changes": [{"original": "a", "corrected": "b", "explanation": "c"},],}`
	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got.CorrectedText != "ok" || len(got.Changes) != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestExtractLiteralNewlineInString(t *testing.T) {
	raw := "{\"corrected_text\": \"line one\nline two\", \"changes\": []}"
	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got.CorrectedText != "line one\nline two" {
		t.Fatalf("CorrectedText = %q", got.CorrectedText)
	}
}

func TestExtractTruncatedSalvage(t *testing.T) {
	raw := `{"corrected_text": "Hello world", "changes": [{"original": "helo", "corrected": "hello", "explanation": "typo"`
	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got.CorrectedText != "Hello world" {
		t.Fatalf("CorrectedText = %q, want %q", got.CorrectedText, "Hello world")
	}
	// The trailing change is incomplete; pair salvage may or may not recover
	// it, but it must never fail the whole extraction.
	for _, c := range got.Changes {
		if c.Original == "" {
			t.Fatalf("salvaged change with empty original: %+v", c)
		}
	}
}

func TestExtractTruncatedPairsBackfillExplanation(t *testing.T) {
	raw := `{"corrected_text": "done", "changes": [{"original": "foo", "corrected": "bar", "explan`
	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(got.Changes) != 1 {
		t.Fatalf("Changes = %+v, want one pair", got.Changes)
	}
	if got.Changes[0].Explanation == "" {
		t.Fatalf("pair salvage must backfill explanation")
	}
}

func TestExtractUnterminatedCorrectedText(t *testing.T) {
	raw := `{"corrected_text": "partial output that never clo`
	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got.CorrectedText == "" {
		t.Fatalf("expected last-ditch corrected_text capture")
	}
}

func TestExtractHopeless(t *testing.T) {
	if _, err := Extract("I could not process that request."); err == nil {
		t.Fatalf("Extract() expected failure on non-JSON prose")
	}
}

func TestSanitizeBOM(t *testing.T) {
	raw := "\uFEFF{\"corrected_text\": \"x\", \"changes\": []}"
	if _, err := Extract(raw); err != nil {
		t.Fatalf("Extract() error on BOM input: %v", err)
	}
}

func TestBalancedObjectSkipsBracesInStrings(t *testing.T) {
	text := `noise {"corrected_text": "use } carefully", "changes": []} trailing`
	fragment, ok := balancedObject(text)
	if !ok {
		t.Fatalf("balancedObject() not found")
	}
	if fragment != `{"corrected_text": "use } carefully", "changes": []}` {
		t.Fatalf("balancedObject() = %q", fragment)
	}
}
