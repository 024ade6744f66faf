// Package connectors holds the document sources docrag reads its corpus
// from. The filesystem connector resolves local paths and watches them for
// changes so the index can be rebuilt.
package connectors
