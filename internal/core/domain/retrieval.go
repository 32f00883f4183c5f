package domain

// EmbeddingRecord pairs a chunk with its L2-normalised vector.
type EmbeddingRecord struct {
	// Chunk is the embedded chunk.
	Chunk Chunk

	// Vector has unit length, so cosine similarity is a dot product.
	Vector []float32
}

// Dimensions returns the vector size.
func (r *EmbeddingRecord) Dimensions() int {
	return len(r.Vector)
}

// ScoredChunk is a single retrieval hit.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity in [-1, 1].
	Score float64
}

// RetrievalResult holds hits in descending score order.
type RetrievalResult []ScoredChunk

// Chunks returns the chunks in result order.
func (r RetrievalResult) Chunks() []Chunk {
	chunks := make([]Chunk, len(r))
	for i := range r {
		chunks[i] = r[i].Chunk
	}
	return chunks
}
