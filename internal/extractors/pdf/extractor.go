// Package pdf provides an Extractor for PDF documents built on ledongthuc/pdf.
// Each page is extracted independently; a page that fails or panics is
// skipped so one damaged page does not lose the whole article.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// MIMEType is the PDF media type.
const MIMEType = "application/pdf"

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract returns the text of every readable page, joined with "\n".
func (e *Extractor) Extract(ctx context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty pdf", domain.ErrExtractionFailure)
	}

	reader, err := openReader(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailure, err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	failed := 0
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := pageText(ctx, page)
		if err != nil {
			logger.Warn("pdf page %d: %v", i, err)
			failed++
			continue
		}
		pages = append(pages, text)
	}

	if numPages > 0 && failed == numPages {
		return "", fmt.Errorf("%w: no readable pages", domain.ErrExtractionFailure)
	}
	return strings.Join(pages, "\n"), nil
}

func openReader(content []byte) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", p)
		}
	}()
	return pdf.NewReader(bytes.NewReader(content), int64(len(content)))
}

// pageText extracts one page, returning early if ctx ends.
func pageText(ctx context.Context, page pdf.Page) (string, error) {
	type result struct {
		text string
		err  error
	}
	resCh := make(chan result, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				resCh <- result{err: fmt.Errorf("parser panic: %v", p)}
			}
		}()
		text, err := page.GetPlainText(nil)
		resCh <- result{text, err}
	}()

	select {
	case r := <-resCh:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
