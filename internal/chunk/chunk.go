// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk splits extracted document text into fixed-size pieces that
// are sent to the card generator one at a time.
package chunk

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/pdiddy/flashcard-engine/pkg/types"
)

// Size is the number of characters per chunk. It is fixed; every run uses it.
const Size = 1000

// ErrInvalidSize is returned when the requested chunk size is not positive.
var ErrInvalidSize = errors.New("chunk size must be positive")

// Split cuts text into consecutive, non-overlapping chunks of size
// characters (Unicode code points), left to right. Every chunk except
// possibly the last has exactly size characters. Empty text yields no chunks.
func Split(text string, size int) ([]types.Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if text == "" {
		return nil, nil
	}

	chunks := make([]types.Chunk, 0, Count(text, size))
	start, n := 0, 0
	for i := range text {
		if n == size {
			chunks = append(chunks, types.Chunk{Index: len(chunks), Text: text[start:i]})
			start, n = i, 0
		}
		n++
	}
	chunks = append(chunks, types.Chunk{Index: len(chunks), Text: text[start:]})
	return chunks, nil
}

// Count returns how many chunks Split produces for text and size without
// allocating them. It returns 0 for a non-positive size.
func Count(text string, size int) int {
	if size <= 0 {
		return 0
	}
	runes := utf8.RuneCountInString(text)
	return (runes + size - 1) / size
}
