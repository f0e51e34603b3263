// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts plain text from PDF documents.
package pdftext

import (
	"errors"
	"fmt"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// ErrNotFound is returned when the PDF does not exist.
var ErrNotFound = errors.New("pdf not found")

// Extractor turns a PDF file into one string of text. Tests supply fakes;
// PDFExtractor is the production implementation.
type Extractor interface {
	// Extract reads the PDF at path and returns the text of all pages.
	Extract(path string) (string, error)
}

// pageSource is the subset of a PDF reader needed to walk its pages.
type pageSource interface {
	NumPage() int
	PageText(n int) (string, error)
}

// PDFExtractor extracts text with github.com/ledongthuc/pdf.
type PDFExtractor struct{}

// Extract opens the PDF at path and joins the text of every page with a
// single space, in page order.
func (PDFExtractor) Extract(path string) (text string, err error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parsing PDF %s: %v", path, r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	text, err = joinPages(ledongthucPages{reader})
	if err != nil {
		return "", fmt.Errorf("reading PDF %s: %w", path, err)
	}
	return text, nil
}

// joinPages concatenates the text of pages 1..NumPage separated by one space.
func joinPages(src pageSource) (string, error) {
	n := src.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		t, err := src.PageText(i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, t)
	}
	return strings.Join(pages, " "), nil
}

// ledongthucPages adapts *pdflib.Reader to pageSource.
type ledongthucPages struct {
	r *pdflib.Reader
}

func (p ledongthucPages) NumPage() int { return p.r.NumPage() }

// PageText returns the plain text of page n. A page without a page object
// contributes an empty string so page positions stay aligned.
func (p ledongthucPages) PageText(n int) (string, error) {
	page := p.r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
