// Package extract turns uploaded PDF bytes into a single text blob.
package extract

import (
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/job-assistant/internal/apperrors"
)

const (
	// DefaultMaxBytes is the largest accepted upload (10 MiB).
	DefaultMaxBytes = 10 * 1024 * 1024
	// DefaultMaxPages is the largest accepted page count.
	DefaultMaxPages = 30
)

// Document is a parsed PDF whose pages can be read one at a time.
type Document interface {
	// NumPage returns the document's page count.
	NumPage() int
	// PageText returns the plain text of page n, counted from 1.
	PageText(n int) (string, error)
}

// Opener parses raw bytes into a Document.
type Opener func(data []byte) (Document, error)

// Extractor enforces upload caps and concatenates readable page text.
type Extractor struct {
	maxBytes int
	maxPages int
	open     Opener
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxBytes overrides the byte cap.
func WithMaxBytes(n int) Option {
	return func(e *Extractor) { e.maxBytes = n }
}

// WithMaxPages overrides the page cap.
func WithMaxPages(n int) Option {
	return func(e *Extractor) { e.maxPages = n }
}

// WithOpener replaces the PDF parser.
func WithOpener(open Opener) Option {
	return func(e *Extractor) { e.open = open }
}

// New creates an Extractor backed by OpenPDF.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		maxBytes: DefaultMaxBytes,
		maxPages: DefaultMaxPages,
		open:     OpenPDF,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxBytes returns the byte cap.
func (e *Extractor) MaxBytes() int {
	return e.maxBytes
}

// Extract returns the text of every readable page joined by single spaces.
// Pages that fail are skipped; if none yields text the call fails with
// ErrExtractionFailed.
func (e *Extractor) Extract(data []byte) (string, error) {
	if len(data) > e.maxBytes {
		return "", apperrors.InvalidInput("File size exceeds maximum limit of %gMB", float64(e.maxBytes)/1024/1024)
	}

	doc, err := e.open(data)
	if err != nil {
		return "", &apperrors.ErrProcessing{Op: "Error processing PDF", Cause: err}
	}

	pages := doc.NumPage()
	if pages > e.maxPages {
		return "", apperrors.InvalidInput("PDF exceeds maximum page limit of %d", e.maxPages)
	}

	texts := make([]string, 0, pages)
	for n := 1; n <= pages; n++ {
		text, err := readPage(doc, n)
		if err != nil {
			log.Printf("[extract] skipping page %d: %v", n, err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}

	if len(texts) == 0 {
		return "", &apperrors.ErrExtractionFailed{}
	}
	return strings.Join(texts, " "), nil
}

// readPage converts a panic inside the parser into an error for that page.
func readPage(doc Document, n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic reading page: %v", r)
		}
	}()
	return doc.PageText(n)
}
