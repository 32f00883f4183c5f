// Package hash provides a deterministic, offline embedding service based on
// feature hashing. It needs no model download or network access, which makes
// it the default for fresh installs and the embedder used in tests.
package hash

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "hash-384"
	DefaultDimensions = 384
)

// EmbeddingService maps each lower-cased word and adjacent word pair to a
// signed bucket and L2-normalises the resulting count vector.
// Texts that share vocabulary end up with a high cosine similarity.
type EmbeddingService struct {
	dimensions int
	model      string
}

// NewEmbeddingService creates a hashing embedder with the given dimensions.
// Zero selects DefaultDimensions.
func NewEmbeddingService(dimensions int) (*EmbeddingService, error) {
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}
	if dimensions < 0 {
		return nil, fmt.Errorf("hash: dimensions must be positive, got %d", dimensions)
	}
	model := DefaultModel
	if dimensions != DefaultDimensions {
		model = fmt.Sprintf("hash-%d", dimensions)
	}
	return &EmbeddingService{dimensions: dimensions, model: model}, nil
}

// Embed hashes text into a unit vector. Text without words gives a zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, s.dimensions)
	tokens := tokenize(text)
	for i, tok := range tokens {
		s.add(vec, tok, 1)
		if i > 0 {
			s.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, s.dimensions)
	if norm == 0 {
		return out, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns "hash-<dimensions>".
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// add accumulates a feature into its bucket. One hash bit picks the sign so
// collisions tend to cancel rather than pile up.
func (s *EmbeddingService) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	bucket := int(sum % uint64(s.dimensions))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
