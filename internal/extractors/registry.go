package extractors

import (
	"context"
	"fmt"
	"mime"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/extractors/html"
	"github.com/custodia-labs/litrag/internal/extractors/pdf"
	"github.com/custodia-labs/litrag/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches extraction by MIME type.
// Exact types are matched first, then "type/*" wildcards.
// Among matches the highest priority wins.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.Extractor
}

// NewRegistry creates a registry with the given extractors.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// DefaultRegistry returns a registry with the PDF, HTML and plain text extractors.
func DefaultRegistry() *Registry {
	return NewRegistry(pdf.New(), html.New(), plaintext.New())
}

// Register adds an extractor to the registry.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, extractor)
	sort.SliceStable(r.extractors, func(i, j int) bool {
		return r.extractors[i].Priority() > r.extractors[j].Priority()
	})
}

// Extract converts content using the best matching extractor.
func (r *Registry) Extract(ctx context.Context, mimeType string, content []byte) (string, error) {
	e := r.find(mimeType)
	if e == nil {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, mimeType)
	}
	return e.Extract(ctx, content)
}

// SupportedMIMETypes returns all MIME types that can be extracted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var types []string
	for _, e := range r.extractors {
		for _, t := range e.SupportedMIMETypes() {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	sort.Strings(types)
	return types
}

func (r *Registry) find(mimeType string) driven.Extractor {
	base := baseType(mimeType)
	if base == "" {
		return nil
	}
	wildcard := ""
	if major, _, ok := strings.Cut(base, "/"); ok {
		wildcard = major + "/*"
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var fallback driven.Extractor
	for _, e := range r.extractors {
		for _, t := range e.SupportedMIMETypes() {
			if t == base {
				return e
			}
			if fallback == nil && t == wildcard {
				fallback = e
			}
		}
	}
	return fallback
}

// baseType strips parameters such as charset and lowercases the type.
func baseType(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
