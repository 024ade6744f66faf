package domain

import (
	"path/filepath"
	"strings"
)

// Metadata keys attached to every chunk.
const (
	// MetaOriginalFilename is the human-readable name of the source document.
	MetaOriginalFilename = "original_filename"

	// MetaSource is the path the document was parsed from.
	MetaSource = "source"

	// MetaPage is the 1-based page number the chunk was cut from.
	MetaPage = "page"

	// MetaTotalPages is the page count reported by the parser.
	MetaTotalPages = "total_pages"
)

// UnknownFilename is used when a document path has no mapped filename.
const UnknownFilename = "unknown"

// Page is one page-level text segment of a parsed document.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted page text.
	Text string
}

// Document is one parsed source file.
// It is produced by a DocumentParser and owned by the chunk pipeline
// while it is being processed. Documents are never persisted.
type Document struct {
	// Path is the file-system path the document was read from.
	Path string

	// Pages holds the page texts in reading order.
	Pages []Page

	// Metadata holds parser-level attributes copied onto every chunk.
	Metadata map[string]string
}

// Chunk is the unit of retrieval.
type Chunk struct {
	// Content is the chunk text after sanitization.
	Content string `json:"content"`

	// Metadata always carries original_filename once the chunk leaves the pipeline.
	Metadata map[string]string `json:"metadata"`
}

// OriginalFilename returns the attributed filename or UnknownFilename.
func (c Chunk) OriginalFilename() string {
	if name := c.Metadata[MetaOriginalFilename]; name != "" {
		return name
	}
	return UnknownFilename
}

// SourceName returns the original filename stripped of its extension.
func (c Chunk) SourceName() string {
	name := c.OriginalFilename()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Clone returns a copy of the chunk with its own metadata map.
func (c Chunk) Clone() Chunk {
	return Chunk{Content: c.Content, Metadata: CopyMetadata(c.Metadata)}
}

// IndexedChunk is a chunk owned by a vector index.
type IndexedChunk struct {
	// ID is dense, starts at 0 and follows the input order of the build.
	ID int

	// Chunk is the indexed content and metadata.
	Chunk Chunk

	// Embedding has the index's fixed dimensionality.
	Embedding []float32
}

// CopyMetadata returns a shallow copy of m. A nil map stays nil.
func CopyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
