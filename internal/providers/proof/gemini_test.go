package proof

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"correctnow/internal/domain"
)

func geminiReply(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
	return string(body)
}

func newTestChecker(t *testing.T, handler http.HandlerFunc) *GeminiChecker {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewGeminiChecker(GeminiOptions{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewGeminiChecker() error: %v", err)
	}
	return c
}

func TestCheckParsesFirstReply(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiReply(`{"corrected_text": "The cat sat.", "changes": []}`)))
	})
	res, err := c.Check(context.Background(), Request{Text: "Teh cat sat.", Language: "en"})
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if res.CorrectedText != "The cat sat." {
		t.Fatalf("CorrectedText = %q", res.CorrectedText)
	}
}

func TestCheckRetriesOnceWithLargerBudget(t *testing.T) {
	var budgets []int
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		budgets = append(budgets, req.GenerationConfig.MaxOutputTokens)
		if len(budgets) == 1 {
			_, _ = w.Write([]byte(geminiReply("not json at all")))
			return
		}
		_, _ = w.Write([]byte(geminiReply(`{"corrected_text": "ok", "changes": []}`)))
	})

	res, err := c.Check(context.Background(), Request{Text: "x", Language: "en"})
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if res.CorrectedText != "ok" {
		t.Fatalf("CorrectedText = %q", res.CorrectedText)
	}
	if len(budgets) != 2 || budgets[1] != 2*budgets[0] {
		t.Fatalf("budgets = %v, want one retry with doubled budget", budgets)
	}
}

func TestCheckUnparsableAfterRetry(t *testing.T) {
	calls := 0
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(geminiReply("still not json")))
	})
	_, err := c.Check(context.Background(), Request{Text: "x", Language: "en"})
	if !errors.Is(err, domain.ErrUnparsableOutput) {
		t.Fatalf("Check() error = %v, want ErrUnparsableOutput", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want exactly 2 (one retry)", calls)
	}
}

func TestCheckTransportErrorNotRetried(t *testing.T) {
	calls := 0
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Check(context.Background(), Request{Text: "x", Language: "en"})
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("Check() error = %v, want ErrProviderFailure", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, transport errors must not be retried", calls)
	}
}

func TestBuildPromptProtectedWords(t *testing.T) {
	p := buildPrompt(Request{
		Text:           "Naresh went home",
		Language:       "en",
		ProtectedWords: []string{"Naresh"},
	})
	if !strings.Contains(p, "Naresh") || !strings.Contains(p, "proper nouns") {
		t.Fatalf("prompt missing protected words section:\n%s", p)
	}
	if !strings.Contains(p, "English") {
		t.Fatalf("prompt missing language name")
	}
}
