package hash

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestNewEmbeddingService(t *testing.T) {
	svc, err := NewEmbeddingService(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultModel, svc.ModelName())

	svc, err = NewEmbeddingService(64)
	require.NoError(t, err)
	assert.Equal(t, "hash-64", svc.ModelName())

	_, err = NewEmbeddingService(-1)
	assert.Error(t, err)
}

func TestEmbed_DeterministicAndUnitLength(t *testing.T) {
	svc, err := NewEmbeddingService(0)
	require.NoError(t, err)
	ctx := context.Background()

	a, err := svc.Embed(ctx, "Contingency management reduces stimulant use.")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "Contingency management reduces stimulant use.")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, DefaultDimensions)
	assert.InDelta(t, 1.0, math.Sqrt(dot(a, a)), 1e-5)
}

func TestEmbed_SimilarTextScoresHigher(t *testing.T) {
	svc, err := NewEmbeddingService(0)
	require.NoError(t, err)
	ctx := context.Background()

	query, _ := svc.Embed(ctx, "methadone maintenance for opioid dependence")
	near, _ := svc.Embed(ctx, "Methadone maintenance treatment in opioid dependence trials")
	far, _ := svc.Embed(ctx, "family support during adolescent recovery programs")

	assert.Greater(t, dot(query, near), dot(query, far))
}

func TestEmbed_NoWordsGivesZeroVector(t *testing.T) {
	svc, err := NewEmbeddingService(8)
	require.NoError(t, err)

	vec, err := svc.Embed(context.Background(), " -- ... ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

func TestEmbedBatch(t *testing.T) {
	svc, err := NewEmbeddingService(16)
	require.NoError(t, err)
	ctx := context.Background()

	vecs, err := svc.EmbedBatch(ctx, []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	single, _ := svc.Embed(ctx, "two")
	assert.Equal(t, single, vecs[1])

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.EmbedBatch(cancelled, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, svc.Ping(ctx))
	assert.NoError(t, svc.Close())
}
