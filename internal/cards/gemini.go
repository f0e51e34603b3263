// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cards

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when the gemini provider has no model configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiBackend calls the Gemini API through google.golang.org/genai.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini client for apiKey. An empty baseURL
// targets the public Gemini API. It performs no network request.
func NewGeminiBackend(ctx context.Context, apiKey, model, baseURL string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", ErrInvalidConfig)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating Gemini client: %v", ErrInvalidConfig, err)
	}

	return &GeminiBackend{client: client, model: model}, nil
}

// Complete sends req with its system instruction and returns the text of
// the first candidate.
func (g *GeminiBackend) Complete(ctx context.Context, req Request) (string, error) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: req.User}}},
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.System}}},
		Temperature:       genai.Ptr(req.Temperature),
		MaxOutputTokens:   int32(req.MaxTokens),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", &BackendError{Op: "Complete", Message: "Gemini API call failed", Err: err}
	}

	return candidateText(resp)
}

// candidateText returns the concatenated text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &BackendError{Op: "Complete", Message: "no candidates returned", Err: ErrEmptyResponse}
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", &BackendError{Op: "Complete", Message: "candidate withheld", Err: ErrContentBlocked}
	}
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", &BackendError{Op: "Complete", Message: "candidate has no content", Err: ErrEmptyResponse}
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}
