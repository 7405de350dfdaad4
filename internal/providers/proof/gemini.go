package proof

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"correctnow/internal/domain"
	"correctnow/internal/extract"
)

const (
	geminiDefaultTimeout = 60 * time.Second
	defaultOutputTokens  = 4096
	maxOutputTokens      = 16384
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiChecker proofreads via the Gemini generateContent endpoint.
type GeminiChecker struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func NewGeminiChecker(opts GeminiOptions) (*GeminiChecker, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiChecker{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

// Check performs one proofreading pass. Transport failures surface
// immediately as domain.ErrProviderFailure and are never retried; an
// extraction failure triggers exactly one retry with a doubled output-token
// budget before the call fails with domain.ErrUnparsableOutput.
func (g *GeminiChecker) Check(ctx context.Context, req Request) (*extract.Result, error) {
	prompt := buildPrompt(req)

	raw, err := g.generate(ctx, prompt, defaultOutputTokens)
	if err != nil {
		return nil, err
	}
	res, extractErr := extract.Extract(raw)
	if extractErr == nil {
		return res, nil
	}

	raw, err = g.generate(ctx, prompt, 2*defaultOutputTokens)
	if err != nil {
		return nil, err
	}
	res, extractErr = extract.Extract(raw)
	if extractErr != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnparsableOutput, extractErr)
	}
	return res, nil
}

func (g *GeminiChecker) generate(ctx context.Context, prompt string, outputTokens int) (string, error) {
	if outputTokens > maxOutputTokens {
		outputTokens = maxOutputTokens
	}
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0,
			CandidateCount:   1,
			MaxOutputTokens:  outputTokens,
			ResponseMimeType: "application/json",
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%w: encode request: %s", domain.ErrProviderFailure, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrProviderFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrProviderFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", domain.ErrProviderFailure, resp.StatusCode)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %s", domain.ErrProviderFailure, err)
	}
	text := extractText(out)
	if text == "" {
		return "", fmt.Errorf("%w: empty candidate", domain.ErrProviderFailure)
	}
	return text, nil
}

func (g *GeminiChecker) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func extractText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

var _ Checker = (*GeminiChecker)(nil)
