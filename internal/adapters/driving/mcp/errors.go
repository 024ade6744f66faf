// Package mcp provides an MCP (Model Context Protocol) server adapter for docrag.
// It lets AI assistants pull attributed document context for a question.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
