// Package normalisers turns source files into page-level documents.
//
// Each subpackage implements driven.DocumentParser for one format. The
// Registry dispatches on file extension and falls back to the PDF parser,
// since PDFs are the primary corpus format.
package normalisers
