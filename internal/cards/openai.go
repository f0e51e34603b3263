// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cards

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.GPT3Dot5Turbo

// OpenAIBackend calls an OpenAI-compatible chat-completions endpoint.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend builds a backend for apiKey. An empty baseURL targets the
// OpenAI API; doer, when non-nil, sends every HTTP request.
func NewOpenAIBackend(apiKey, model, baseURL string, doer openai.HTTPDoer) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", ErrInvalidConfig)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if doer != nil {
		cfg.HTTPClient = doer
	}

	return &OpenAIBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Complete sends req as a system and a user message and returns the content
// of the first choice.
func (o *OpenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", handleOpenAIError("Complete", err)
	}

	if len(resp.Choices) == 0 {
		return "", &BackendError{Op: "Complete", Message: "no response choices returned", Err: ErrEmptyResponse}
	}

	return resp.Choices[0].Message.Content, nil
}

func handleOpenAIError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusBadRequest:
			return &BackendError{Op: op, Message: "invalid request", Err: err}
		case apiErr.HTTPStatusCode == http.StatusUnauthorized:
			return &BackendError{Op: op, Message: "invalid API key", Err: err}
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &BackendError{Op: op, Message: "rate limit exceeded", Err: err}
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return &BackendError{Op: op, Message: "server error", Err: err}
		}
	}

	return &BackendError{Op: op, Message: "unexpected error", Err: err}
}
