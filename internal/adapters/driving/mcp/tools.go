package mcp

import (
	"context"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve_context tool.
type RetrieveInput struct {
	Question string `json:"question" jsonschema:"the question to find supporting document passages for"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"maximum number of passages to return (default from config)"`
}

// RetrieveOutput is the output schema for the retrieve_context tool.
type RetrieveOutput struct {
	Context string        `json:"context"`
	Chunks  []ChunkOutput `json:"chunks"`
	Count   int           `json:"count"`
}

// ChunkOutput is one retrieved passage.
type ChunkOutput struct {
	ID      int     `json:"id"`
	Source  string  `json:"source"`
	Page    int     `json:"page,omitempty"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "retrieve_context",
		Description: "Retrieve the document passages most relevant to a question, " +
			"ready to paste into a prompt with a Source header per passage",
	}, s.handleRetrieve)
}

// handleRetrieve handles the retrieve_context tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	answer, err := s.ports.Query.Ask(ctx, input.Question, max(input.TopK, 0))
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Context: answer.Context,
		Chunks:  make([]ChunkOutput, len(answer.Results)),
		Count:   len(answer.Results),
	}
	for i, r := range answer.Results {
		page, _ := strconv.Atoi(r.Chunk.Metadata[domain.MetaPage])
		output.Chunks[i] = ChunkOutput{
			ID:      r.ID,
			Source:  r.Chunk.OriginalFilename(),
			Page:    page,
			Score:   r.Score,
			Content: r.Chunk.Content,
		}
	}

	return nil, output, nil
}
