package domain

import (
	"strconv"

	"github.com/google/uuid"
)

// chunkNamespace scopes chunk IDs so they never collide with other SHA1 UUIDs.
var chunkNamespace = uuid.MustParse("6f1c5b0e-3d1a-5e7b-9a43-1f2d6c8e0a57")

// DefaultMaxChunkChars is the default soft size budget per chunk.
const DefaultMaxChunkChars = 1000

// ChunkMetadata is the provenance attached to every chunk of a source.
// Field tags define the persisted chunk store format.
type ChunkMetadata struct {
	// SearchTerm is the query that surfaced the source.
	SearchTerm string `json:"search_term"`

	// Source is the document title.
	Source string `json:"source"`

	// URL is the origin of the document.
	URL string `json:"url"`

	// Year is the publication year, null when unknown.
	Year *int `json:"year"`
}

// Chunk is the atomic retrievable unit.
// Chunks are never mutated after creation.
type Chunk struct {
	// ID is the stable identifier derived from Ordinal and Text.
	ID string `json:"-"`

	// Ordinal is the 0-based line position in the chunk store.
	Ordinal int `json:"-"`

	// Position is the 0-based ordinal within the source document.
	// Only known while the corpus is being built.
	Position int `json:"-"`

	// Text is the bounded chunk content.
	Text string `json:"text"`

	// Metadata carries provenance.
	Metadata ChunkMetadata `json:"metadata"`
}

// MetadataFor builds the chunk metadata shared by every chunk of a source.
func MetadataFor(src *DocumentSource) ChunkMetadata {
	return ChunkMetadata{
		SearchTerm: src.SearchTerm,
		Source:     src.Title,
		URL:        src.URL,
		Year:       src.Year,
	}
}

// Identify sets the chunk's store ordinal and derives its stable ID.
// The same ordinal and text always give the same ID.
func (c *Chunk) Identify(ordinal int) {
	c.Ordinal = ordinal
	c.ID = ChunkID(ordinal, c.Text)
}

// ChunkID derives a chunk identifier from its store ordinal and text.
func ChunkID(ordinal int, text string) string {
	return uuid.NewSHA1(chunkNamespace, []byte(strconv.Itoa(ordinal)+"\x00"+text)).String()
}
