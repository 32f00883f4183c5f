package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

type stubExtractor struct {
	types    []string
	priority int
	out      string
}

func (s *stubExtractor) SupportedMIMETypes() []string { return s.types }
func (s *stubExtractor) Priority() int                 { return s.priority }
func (s *stubExtractor) Extract(context.Context, []byte) (string, error) {
	return s.out, nil
}

func TestRegistry_ExactMatch(t *testing.T) {
	r := DefaultRegistry()

	text, err := r.Extract(context.Background(), "text/html; charset=utf-8", []byte("<p>Hello</p>"))

	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
}

func TestRegistry_WildcardFallback(t *testing.T) {
	r := DefaultRegistry()

	text, err := r.Extract(context.Background(), "text/csv", []byte("a,b\r\n1,2"))

	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2", text)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Extract(context.Background(), "image/png", []byte{0x89})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Extract(context.Background(), "", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_PriorityWins(t *testing.T) {
	r := NewRegistry(
		&stubExtractor{types: []string{"text/plain"}, priority: 1, out: "low"},
		&stubExtractor{types: []string{"text/plain"}, priority: 90, out: "high"},
	)

	text, err := r.Extract(context.Background(), "TEXT/PLAIN", nil)

	require.NoError(t, err)
	assert.Equal(t, "high", text)
}

func TestRegistry_ExactBeatsWildcard(t *testing.T) {
	r := NewRegistry(
		&stubExtractor{types: []string{"text/*"}, priority: 90, out: "wildcard"},
		&stubExtractor{types: []string{"text/markdown"}, priority: 10, out: "exact"},
	)

	text, err := r.Extract(context.Background(), "text/markdown", nil)

	require.NoError(t, err)
	assert.Equal(t, "exact", text)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	types := DefaultRegistry().SupportedMIMETypes()

	assert.Contains(t, types, "application/pdf")
	assert.Contains(t, types, "text/html")
	assert.Contains(t, types, "text/plain")
	assert.IsIncreasing(t, types)
}
