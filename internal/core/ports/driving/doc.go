// Package driving declares the operations the CLI, HTTP API, MCP server and
// TUI call into: chunk a corpus, build an index, and retrieve context.
package driving
