// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cards turns text chunks into Anki flashcards by sending each chunk
// to a chat-completion backend with a fixed prompt. The model output is kept
// as raw text; the question;answer layout is requested, never parsed.
package cards

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/flashcard-engine/pkg/types"
)

// Backend abstracts the chat-completion API so tests can supply a mock.
// Each call handles a single chunk and returns the text of the top choice.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is one chat-style completion request.
type Request struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// ChunkError reports which chunk aborted a generation run.
type ChunkError struct {
	Index int // zero-based
	Total int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("generating cards for chunk %d/%d: %v", e.Index+1, e.Total, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// Generate sends every chunk to backend in order and concatenates the
// responses, each followed by a blank line. The first failing request aborts
// the run: no partial text is returned and no later chunk is sent.
func Generate(ctx context.Context, backend Backend, chunks []types.Chunk, w io.Writer) (string, []types.FlashcardBatch, error) {
	fmt.Fprintf(w, "processing %d chunks\n", len(chunks))

	var out strings.Builder
	batches := make([]types.FlashcardBatch, 0, len(chunks))

	for i, c := range chunks {
		fmt.Fprintf(w, "processing chunk %d/%d\n", i+1, len(chunks))

		req, err := NewRequest(c.Text)
		if err != nil {
			return "", nil, &ChunkError{Index: i, Total: len(chunks), Err: err}
		}

		text, err := backend.Complete(ctx, req)
		if err != nil {
			return "", nil, &ChunkError{Index: i, Total: len(chunks), Err: err}
		}

		batches = append(batches, types.FlashcardBatch{ChunkIndex: c.Index, Text: text})
		out.WriteString(text)
		out.WriteString("\n\n")
	}

	return out.String(), batches, nil
}
