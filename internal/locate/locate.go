// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locate resolves the input PDF for a flashcard run.
//
// The default document is used when it exists in the source directory.
// Otherwise the PDFs found there are listed and a DocumentSelector picks one.
package locate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/flashcard-engine/pkg/types"
)

var (
	// ErrNoDocuments is returned when the source directory holds no PDFs.
	ErrNoDocuments = errors.New("no PDF documents found")

	// ErrInvalidSelection is returned for an empty, non-numeric or
	// out-of-range choice.
	ErrInvalidSelection = errors.New("invalid document selection")
)

// DocumentSelector picks one of the candidate documents. The returned
// string is the raw 1-based choice as typed by the user.
type DocumentSelector interface {
	Select(candidates []types.Document) (string, error)
}

// Locate returns the PDF to process. An explicit cfg.Path wins; then
// SourceDir/DefaultName; otherwise the user selects from the PDFs in
// SourceDir. Progress and the candidate list are printed to w.
func Locate(cfg types.DocumentConfig, sel DocumentSelector, w io.Writer) (types.Document, error) {
	if cfg.Path != "" {
		info, err := os.Stat(cfg.Path)
		if err != nil {
			return types.Document{}, fmt.Errorf("checking %s: %w", cfg.Path, err)
		}
		if info.IsDir() {
			return types.Document{}, fmt.Errorf("%s is a directory, not a PDF", cfg.Path)
		}
		return types.Document{Name: filepath.Base(cfg.Path), Path: cfg.Path}, nil
	}

	if err := ensureSourceDir(cfg.SourceDir, w); err != nil {
		return types.Document{}, err
	}

	defaultPath := filepath.Join(cfg.SourceDir, cfg.DefaultName)
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return types.Document{Name: cfg.DefaultName, Path: defaultPath}, nil
	}

	candidates, err := ListPDFs(cfg.SourceDir)
	if err != nil {
		return types.Document{}, err
	}
	if len(candidates) == 0 {
		return types.Document{}, fmt.Errorf("%w in %s", ErrNoDocuments, cfg.SourceDir)
	}

	fmt.Fprintf(w, "%q not found in %s. Available documents:\n", cfg.DefaultName, cfg.SourceDir)
	for i, doc := range candidates {
		fmt.Fprintf(w, "  %d. %s\n", i+1, doc.Name)
	}

	choice, err := sel.Select(candidates)
	if err != nil {
		return types.Document{}, fmt.Errorf("reading selection: %w", err)
	}
	idx, err := parseChoice(choice, len(candidates))
	if err != nil {
		return types.Document{}, err
	}
	return candidates[idx], nil
}

// ListPDFs returns the files in dir whose name ends in .pdf (any case),
// sorted by name. Symlinks are followed; directories and dangling links
// are skipped.
func ListPDFs(dir string) ([]types.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var docs []types.Document
	for _, entry := range entries {
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		docs = append(docs, types.Document{Name: name, Path: path})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

func ensureSourceDir(dir string, w io.Writer) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	fmt.Fprintf(w, "Created %s/. Place your PDF documents there.\n", dir)
	return nil
}

// parseChoice converts a 1-based choice into an index into n candidates.
func parseChoice(choice string, n int) (int, error) {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return 0, fmt.Errorf("%w: no document chosen", ErrInvalidSelection)
	}
	k, err := strconv.Atoi(choice)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, choice)
	}
	if k < 1 || k > n {
		return 0, fmt.Errorf("%w: %d is not between 1 and %d", ErrInvalidSelection, k, n)
	}
	return k - 1, nil
}
