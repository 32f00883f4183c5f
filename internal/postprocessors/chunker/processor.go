// Package chunker provides a paragraph-packing text chunking processor.
//
// Text is split into lines, short lines and figure or table captions are
// dropped, and the surviving paragraphs are packed greedily into chunks
// under a character budget. A paragraph longer than the budget is emitted
// whole as its own chunk.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultMaxChars is the default chunk budget in characters.
const DefaultMaxChars = domain.DefaultMaxChunkChars

// DefaultMinParagraphChars is the default length a paragraph must exceed to be kept.
const DefaultMinParagraphChars = 80

// DefaultSkipPrefixes returns the default caption prefixes that drop a paragraph.
func DefaultSkipPrefixes() []string {
	return []string{"FIG.", "TABLE"}
}

// Processor packs paragraphs into bounded chunks.
// It implements the PostProcessor interface.
type Processor struct {
	maxChars          int
	minParagraphChars int
	skipPrefixes      []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxChars sets the chunk budget in characters.
func WithMaxChars(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxChars = n
		}
	}
}

// WithMinParagraphChars sets the length a paragraph must exceed to be kept.
func WithMinParagraphChars(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minParagraphChars = n
		}
	}
}

// WithSkipPrefixes replaces the caption prefixes. Matching is case-sensitive.
func WithSkipPrefixes(prefixes []string) Option {
	return func(p *Processor) {
		p.skipPrefixes = append([]string(nil), prefixes...)
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxChars:          DefaultMaxChars,
		minParagraphChars: DefaultMinParagraphChars,
		skipPrefixes:      DefaultSkipPrefixes(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits text into chunks.
// Incoming fragments are ignored; this processor creates chunks from text.
func (p *Processor) Process(_ context.Context, text string, _ []string) ([]string, error) {
	return p.Split(text), nil
}

// Split returns the chunks of text in order. It never returns an empty chunk.
func (p *Processor) Split(text string) []string {
	var chunks []string
	var acc strings.Builder
	accLen := 0

	emit := func() {
		if c := strings.TrimSpace(acc.String()); c != "" {
			chunks = append(chunks, c)
		}
		acc.Reset()
		accLen = 0
	}

	for _, para := range p.paragraphs(text) {
		paraLen := utf8.RuneCountInString(para)
		if accLen+paraLen >= p.maxChars {
			emit()
		}
		acc.WriteString(para)
		acc.WriteByte('\n')
		accLen += paraLen + 1
	}
	emit()

	return chunks
}

// paragraphs returns the trimmed lines that survive the length and caption filters.
func (p *Processor) paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= p.minParagraphChars || p.isCaption(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

func (p *Processor) isCaption(line string) bool {
	for _, prefix := range p.skipPrefixes {
		if prefix != "" && strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
