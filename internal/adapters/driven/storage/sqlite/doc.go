// Package sqlite persists vector indexes as single SQLite files.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files. A file holds
// exactly one index: an index_info row and one chunks row per indexed chunk, with
// embeddings stored as little-endian float32 blobs.
//
// # Atomicity
//
// Save writes a temporary database next to the destination and renames it into
// place, so readers never see a partially written index.
package sqlite
