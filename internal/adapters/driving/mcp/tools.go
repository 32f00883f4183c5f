package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

// defaultTopK is used when a tool call omits top_k.
const defaultTopK = 5

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question or phrase to match against the literature"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of chunks to return (default 5)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	Rank       int     `json:"rank"`
	ChunkID    string  `json:"chunk_id"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	URL        string  `json:"url,omitempty"`
	Year       *int    `json:"year,omitempty"`
	SearchTerm string  `json:"search_term,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the literature"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of excerpts given to the model (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string        `json:"answer"`
	Model   string        `json:"model"`
	Sources []ChunkOutput `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve the passages of addiction treatment literature closest to a query",
	}, s.handleRetrieve)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using only retrieved literature excerpts",
		}, s.handleAsk)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, RetrieveOutput{}, fmt.Errorf("%w: query is required", domain.ErrInvalidArgument)
	}

	result, err := s.ports.Retrieval.Search(ctx, input.Query, topK(input.TopK))
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Results: chunkOutputs(result),
		Count:   len(result),
	}
	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Answer == nil {
		return nil, AskOutput{}, errors.New("ask is not available without an LLM")
	}
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, fmt.Errorf("%w: question is required", domain.ErrInvalidArgument)
	}

	answer, err := s.ports.Answer.Ask(ctx, input.Question, topK(input.TopK))
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:  answer.Text,
		Model:   answer.Model,
		Sources: chunkOutputs(answer.Sources),
	}, nil
}

func topK(k int) int {
	if k <= 0 {
		return defaultTopK
	}
	return k
}

func chunkOutputs(result domain.RetrievalResult) []ChunkOutput {
	out := make([]ChunkOutput, len(result))
	for i := range result {
		c := &result[i].Chunk
		out[i] = ChunkOutput{
			Rank:       i + 1,
			ChunkID:    c.ID,
			Score:      result[i].Score,
			Text:       c.Text,
			Source:     c.Metadata.Source,
			URL:        c.Metadata.URL,
			Year:       c.Metadata.Year,
			SearchTerm: c.Metadata.SearchTerm,
		}
	}
	return out
}
