package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/litrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.EmbeddingIndex = (*Index)(nil)

// DefaultFileName is the database file name inside the data directory.
const DefaultFileName = "index.db"

// Index is a SQLite-backed embedding index.
type Index struct {
	db   *sql.DB
	path string
}

// NewIndex opens (or creates) the index in dataDir.
// If dataDir is empty, defaults to ~/.litrag/data/index.db.
func NewIndex(dataDir string) (*Index, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".litrag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DefaultFileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	x := &Index{
		db:   db,
		path: dbPath,
	}

	if err := x.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return x, nil
}

// Close closes the database connection.
func (x *Index) Close() error {
	return x.db.Close()
}

// Path returns the database file path.
func (x *Index) Path() string {
	return x.path
}

// metaModel is the index_meta key holding the embedding model name.
const metaModel = "embedding_model"

// Reset removes all records and forgets the embedding model.
func (x *Index) Reset(ctx context.Context) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM embeddings"); err != nil {
		return fmt.Errorf("clearing embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta WHERE key = ?", metaModel); err != nil {
		return fmt.Errorf("clearing index model: %w", err)
	}
	return tx.Commit()
}

// Replace deletes every record and inserts records in one transaction,
// so readers see either the old index or the new one.
func (x *Index) Replace(ctx context.Context, model string, records []domain.EmbeddingRecord) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM embeddings"); err != nil {
		return fmt.Errorf("clearing embeddings: %w", err)
	}
	if err := insertRecords(ctx, tx, records); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, metaModel, model); err != nil {
		return fmt.Errorf("recording index model: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing embeddings: %w", err)
	}
	return nil
}

// Model returns the embedding model that built the index, or "".
func (x *Index) Model(ctx context.Context) (string, error) {
	var model string
	err := x.db.QueryRowContext(ctx, "SELECT value FROM index_meta WHERE key = ?", metaModel).Scan(&model)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading index model: %w", err)
	}
	return model, nil
}

// Add appends records in a single transaction.
func (x *Index) Add(ctx context.Context, records []domain.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := insertRecords(ctx, tx, records); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing embeddings: %w", err)
	}
	return nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, records []domain.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embeddings (chunk_id, ordinal, text, metadata, dimensions, vector)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		metadataJSON, err := json.Marshal(r.Chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, r.Chunk.ID, r.Chunk.Ordinal, r.Chunk.Text,
			string(metadataJSON), len(r.Vector), float32SliceToBytes(r.Vector)); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", r.Chunk.ID, err)
		}
	}
	return nil
}

// Lookup returns the record for a chunk ID.
func (x *Index) Lookup(ctx context.Context, chunkID string) (*domain.EmbeddingRecord, error) {
	row := x.db.QueryRowContext(ctx, `
		SELECT chunk_id, ordinal, text, metadata, dimensions, vector
		FROM embeddings WHERE chunk_id = ?
	`, chunkID)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// All returns every record in insertion order.
func (x *Index) All(ctx context.Context) ([]domain.EmbeddingRecord, error) {
	rows, err := x.db.QueryContext(ctx, `
		SELECT chunk_id, ordinal, text, metadata, dimensions, vector
		FROM embeddings ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var records []domain.EmbeddingRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// Len returns the number of records.
func (x *Index) Len(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return n, nil
}

// migrate runs all pending migrations and records each applied version.
func (x *Index) migrate(fsys embed.FS) error {
	_, err := x.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := x.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_embedding_index.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := x.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := x.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Helper Functions ====================

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans one embeddings row.
func scanRecord(row scanner) (*domain.EmbeddingRecord, error) {
	var r domain.EmbeddingRecord
	var metadataJSON string
	var dims int
	var blob []byte

	if err := row.Scan(&r.Chunk.ID, &r.Chunk.Ordinal, &r.Chunk.Text, &metadataJSON, &dims, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning embedding: %w", err)
	}

	if err := json.Unmarshal([]byte(metadataJSON), &r.Chunk.Metadata); err != nil {
		return nil, fmt.Errorf("%w: chunk %s metadata: %v", domain.ErrInvalidArgument, r.Chunk.ID, err)
	}

	r.Vector = bytesToFloat32Slice(blob)
	if len(r.Vector) != dims {
		return nil, fmt.Errorf("%w: chunk %s has %d of %d dimensions",
			domain.ErrInvalidArgument, r.Chunk.ID, len(r.Vector), dims)
	}

	return &r, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
