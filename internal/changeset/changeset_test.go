package changeset

import (
	"testing"

	"correctnow/internal/domain"
)

func TestValidateDropsNoOps(t *testing.T) {
	text := "He said “hello” today"
	raw := []domain.ChangeCandidate{
		{Original: "hello", Corrected: "hello", Explanation: "same"},
		{Original: `"hello"`, Corrected: "“hello”", Explanation: "quote style only"},
	}
	if got := Validate(text, raw); len(got) != 0 {
		t.Fatalf("Validate() = %+v, want empty", got)
	}
}

func TestValidateAnchorsToLiteralText(t *testing.T) {
	text := "She said “teh cat” quietly"
	raw := []domain.ChangeCandidate{
		{Original: `"teh cat"`, Corrected: `"the cat"`, Explanation: "typo"},
	}
	got := Validate(text, raw)
	if len(got) != 1 {
		t.Fatalf("Validate() = %+v, want one change", got)
	}
	if got[0].Original != "“teh cat”" {
		t.Fatalf("Original not rewritten to literal slice: %q", got[0].Original)
	}
	if got[0].Status != domain.ChangePending {
		t.Fatalf("Status = %q, want pending", got[0].Status)
	}
}

func TestValidateDropsUnanchorable(t *testing.T) {
	raw := []domain.ChangeCandidate{
		{Original: "zebra", Corrected: "zebras", Explanation: "plural"},
		{Original: "", Corrected: "x", Explanation: "empty"},
	}
	if got := Validate("no such animals here", raw); len(got) != 0 {
		t.Fatalf("Validate() = %+v, want empty", got)
	}
}

func TestValidateDedupesIdenticalSpans(t *testing.T) {
	text := "teh cat"
	raw := []domain.ChangeCandidate{
		{Original: "teh", Corrected: "the", Explanation: "first"},
		{Original: "teh", Corrected: "then", Explanation: "second"},
	}
	got := Validate(text, raw)
	if len(got) != 1 {
		t.Fatalf("Validate() kept %d changes, want 1", len(got))
	}
	if got[0].Explanation != "first" {
		t.Fatalf("Validate() kept %q, want the first duplicate", got[0].Explanation)
	}
}

func TestApplyOneSingleGenericOccurrence(t *testing.T) {
	got := ApplyOne("cat sat", domain.Change{Original: "cat", Corrected: "bat"})
	if got != "bat sat" {
		t.Fatalf("ApplyOne() = %q, want %q", got, "bat sat")
	}
}

func TestApplyOneNameLikeReplacesEverywhere(t *testing.T) {
	got := ApplyOne("Naresh met naresh", domain.Change{Original: "naresh", Corrected: "Naresh"})
	if got != "Naresh met Naresh" {
		t.Fatalf("ApplyOne() = %q, want %q", got, "Naresh met Naresh")
	}
}

func TestApplyOneRepeatedOccurrences(t *testing.T) {
	got := ApplyOne("teh cat and teh dog", domain.Change{Original: "teh", Corrected: "the"})
	if got != "the cat and the dog" {
		t.Fatalf("ApplyOne() = %q, want %q", got, "the cat and the dog")
	}
}

func TestApplyAllModelTextWins(t *testing.T) {
	base := "teh cat sat"
	changes := []domain.Change{
		{Original: "teh", Corrected: "the", Status: domain.ChangeAccepted},
	}
	got := ApplyAll(base, "The cat sat.", changes)
	if got != "The cat sat." {
		t.Fatalf("ApplyAll() = %q, want model text", got)
	}
}

func TestApplyAllFoldWithoutModelText(t *testing.T) {
	base := "teh cat sat"
	changes := []domain.Change{
		{Original: "teh", Corrected: "the", Status: domain.ChangeAccepted},
		{Original: "sat", Corrected: "slept", Status: domain.ChangePending},
	}
	got := ApplyAll(base, "", changes)
	if got != "the cat sat" {
		t.Fatalf("ApplyAll() = %q, want %q", got, "the cat sat")
	}
}

func TestRevalidateIgnoresStalePending(t *testing.T) {
	changes := []domain.Change{
		{Original: "vanished", Corrected: "gone", Status: domain.ChangePending},
		{Original: "still", Corrected: "yet", Status: domain.ChangePending},
	}
	got := Revalidate("it is still here", changes)
	if got[0].Status != domain.ChangeIgnored {
		t.Fatalf("stale change status = %q, want ignored", got[0].Status)
	}
	if got[1].Status != domain.ChangePending {
		t.Fatalf("live change status = %q, want pending", got[1].Status)
	}
}

func TestRevalidateCaseInsensitiveKeepsPending(t *testing.T) {
	changes := []domain.Change{
		{Original: "Hello", Corrected: "Hi", Status: domain.ChangePending},
	}
	got := Revalidate("well hello there", changes)
	if got[0].Status != domain.ChangePending {
		t.Fatalf("status = %q, want pending via case-insensitive match", got[0].Status)
	}
}

func TestEditDistance(t *testing.T) {
	if d := EditDistance("kitten", "sitting"); d != 3 {
		t.Fatalf("EditDistance() = %d, want 3", d)
	}
	if d := EditDistance("same", "same"); d != 0 {
		t.Fatalf("EditDistance() = %d, want 0", d)
	}
}
