// Package domain defines the core entities of the docrag pipeline.
//
// This package is the innermost layer of the hexagon. It has no
// dependencies outside the standard library and defines:
//
//   - Document: a parsed source file as ordered page texts
//   - Chunk: the unit of embedding and retrieval, with attribution metadata
//   - IndexedChunk: a chunk with its dense index id and embedding
//   - RetrieverConfig: typed retrieval strategy options
//   - Settings: the validated application configuration
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
