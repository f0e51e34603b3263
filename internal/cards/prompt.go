// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cards

import (
	"bytes"
	"fmt"
	"text/template"
)

const (
	// SystemPrompt is the system message of every request.
	SystemPrompt = "You are a helpful assistant."

	// Temperature is the sampling temperature of every request.
	Temperature float32 = 0.3

	// MaxTokens is the output token budget of every request.
	MaxTokens = 2048
)

// userPromptTmpl embeds the chunk verbatim after the card format instruction.
var userPromptTmpl = template.Must(template.New("flashcards").Parse(
	`Create anki flashcards with the provided text using a format: question;answer next line question;answer etc. Keep question and the corresponding answer on the same line {{.Chunk}}`))

// NewRequest builds the completion request for one chunk.
func NewRequest(chunk string) (Request, error) {
	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, struct{ Chunk string }{Chunk: chunk}); err != nil {
		return Request{}, fmt.Errorf("rendering prompt: %w", err)
	}
	return Request{
		System:      SystemPrompt,
		User:        buf.String(),
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}, nil
}
