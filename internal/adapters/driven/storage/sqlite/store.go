package sqlite

import (
	"context"
	"database/sql"
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
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// IndexStore saves and loads vector indexes as SQLite files.
type IndexStore struct {
	builder driven.VectorIndexBuilder
}

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// NewIndexStore creates a store. Loaded chunks are re-indexed with builder.
func NewIndexStore(builder driven.VectorIndexBuilder) *IndexStore {
	return &IndexStore{builder: builder}
}

// openDB opens the database at path, creating the file if needed.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps the temporary file free of stray handles at rename time.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Save writes idx to path, replacing any existing file.
func (s *IndexStore) Save(ctx context.Context, path string, idx driven.VectorIndex) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.db")
	if err != nil {
		return fmt.Errorf("creating temporary index file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("creating temporary index file: %w", err)
	}

	if err := writeIndex(ctx, tmpPath, idx); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing index file: %w", err)
	}
	return nil
}

func writeIndex(ctx context.Context, path string, idx driven.VectorIndex) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	info := idx.Info()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO index_info (singleton, build_id, model, chunk_count, dimensionality, created_at)
		VALUES (1, ?, ?, ?, ?, ?)
	`, info.BuildID, info.Model, idx.Count(), idx.Dimensionality(),
		info.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("saving index info: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, content, metadata, embedding)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range idx.Chunks() {
		metadataJSON, err := json.Marshal(chunk.Chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Chunk.Content,
			string(metadataJSON), float32SliceToBytes(chunk.Embedding)); err != nil {
			return fmt.Errorf("saving chunk %d: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load reads the index at path and rebuilds it in memory.
func (s *IndexStore) Load(ctx context.Context, path string) (driven.VectorIndex, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer db.Close()

	info, err := readInfo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrIndexUnavailable, path, err)
	}
	chunks, err := readChunks(ctx, db, info.Count)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrIndexUnavailable, path, err)
	}

	idx, err := s.builder.Build(ctx, chunks, info)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrIndexUnavailable, path, err)
	}
	return idx, nil
}

func readInfo(ctx context.Context, db *sql.DB) (domain.IndexInfo, error) {
	var info domain.IndexInfo
	var createdAt string
	row := db.QueryRowContext(ctx, `
		SELECT build_id, model, chunk_count, dimensionality, created_at
		FROM index_info WHERE singleton = 1
	`)
	if err := row.Scan(&info.BuildID, &info.Model, &info.Count, &info.Dimensionality, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return info, errors.New("index info missing")
		}
		return info, fmt.Errorf("reading index info: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return info, fmt.Errorf("parsing created_at: %w", err)
	}
	info.CreatedAt = t
	return info, nil
}

func readChunks(ctx context.Context, db *sql.DB, count int) ([]domain.IndexedChunk, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, content, metadata, embedding
		FROM chunks ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := make([]domain.IndexedChunk, 0, count)
	for rows.Next() {
		var chunk domain.IndexedChunk
		var metadataJSON string
		var embeddingBlob []byte

		if err := rows.Scan(&chunk.ID, &chunk.Chunk.Content, &metadataJSON, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if len(embeddingBlob)%4 != 0 {
			return nil, fmt.Errorf("chunk %d: embedding blob has %d bytes", chunk.ID, len(embeddingBlob))
		}
		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	if len(chunks) != count {
		return nil, fmt.Errorf("index info lists %d chunks, found %d", count, len(chunks))
	}
	return chunks, nil
}

// migrate runs all pending migrations.
func migrate(db *sql.DB, fsys fs.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_index.up.sql" -> 1
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
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
