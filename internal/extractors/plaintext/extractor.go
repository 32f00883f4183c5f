// Package plaintext provides the fallback Extractor for text formats.
package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const byteOrderMark = "\uFEFF"

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
// "text/*" makes it the fallback for any other text type.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/x-markdown",
		"text/*",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Extract decodes content as UTF-8.
// Invalid byte sequences become U+FFFD and line endings become "\n".
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	text := strings.ToValidUTF8(string(content), "\uFFFD")
	text = strings.TrimPrefix(text, byteOrderMark)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}
