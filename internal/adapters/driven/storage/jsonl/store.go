package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// DefaultFileName is the chunk file name inside the data directory.
const DefaultFileName = "chunks.jsonl"

// record is the persisted line format.
// Pointers let the decoder tell a missing field from an empty one.
type record struct {
	Text     *string               `json:"text"`
	Metadata *domain.ChunkMetadata `json:"metadata"`
}

// ChunkStore appends chunk records to a JSONL file.
// Appends are serialised by a mutex and each batch is written with a single
// write call, so concurrent writers never interleave partial lines.
type ChunkStore struct {
	mu    sync.Mutex
	path  string
	count int
	ready bool
}

// NewChunkStore creates a store at path, creating the parent directory.
// If path is empty, defaults to ~/.litrag/data/chunks.jsonl.
// The file itself is created on the first append.
func NewChunkStore(path string) (*ChunkStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".litrag", "data", DefaultFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &ChunkStore{path: path}, nil
}

// Append writes chunks to the end of the file and assigns their ordinals.
func (s *ChunkStore) Append(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureCount(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		text, meta := c.Text, c.Metadata
		if err := enc.Encode(record{Text: &text, Metadata: &meta}); err != nil {
			return nil, fmt.Errorf("encoding chunk %d: %w", i, err)
		}
		c.Identify(s.count + i)
		out[i] = c
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening chunk file: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing chunk file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing chunk file: %w", err)
	}

	s.count += len(chunks)
	return out, nil
}

// All reads every chunk in file order.
// Blank lines are ignored. A line that is not a valid record fails with
// domain.ErrInvalidArgument and names the 1-based line number.
func (s *ChunkStore) All(ctx context.Context) ([]domain.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var chunks []domain.Chunk
	err := s.scan(func(lineNo int, line []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("%w: %s line %d: %v", domain.ErrInvalidArgument, s.path, lineNo, err)
		}
		if rec.Text == nil || rec.Metadata == nil {
			return fmt.Errorf("%w: %s line %d: missing text or metadata", domain.ErrInvalidArgument, s.path, lineNo)
		}
		c := domain.Chunk{Text: *rec.Text, Metadata: *rec.Metadata}
		c.Identify(len(chunks))
		chunks = append(chunks, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.count, s.ready = len(chunks), true
	return chunks, nil
}

// Count returns the number of records in the file.
func (s *ChunkStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureCount(); err != nil {
		return 0, err
	}
	return s.count, nil
}

// Path returns the chunk file path.
func (s *ChunkStore) Path() string {
	return s.path
}

// ensureCount counts existing records once (caller must hold lock).
func (s *ChunkStore) ensureCount() error {
	if s.ready {
		return nil
	}
	n := 0
	if err := s.scan(func(int, []byte) error {
		n++
		return nil
	}); err != nil {
		return err
	}
	s.count, s.ready = n, true
	return nil
}

// scan calls fn for every non-blank line. A missing file has no lines.
func (s *ChunkStore) scan(fn func(lineNo int, line []byte) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("opening chunk file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for lineNo := 1; ; lineNo++ {
		line, err := r.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			if ferr := fn(lineNo, trimmed); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading chunk file: %w", err)
		}
	}
}
