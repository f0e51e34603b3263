// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output persists generated flashcards.
package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the flashcard file written when none is configured.
const DefaultFileName = "flashcards.txt"

// Write stores content as dir/name, replacing any existing file, and
// returns the absolute path written. dir is created if missing.
func Write(dir, name, content string) (string, error) {
	if name == "" {
		name = DefaultFileName
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	path, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("resolving output path: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
