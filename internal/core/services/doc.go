// Package services holds the chunking, indexing, ingest and query
// workflows. They depend only on the driven ports, so every adapter can be
// swapped in tests.
package services
