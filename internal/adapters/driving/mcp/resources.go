package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for litrag resources.
	uriScheme = "litrag://"

	statsURI    = uriScheme + "corpus/stats"
	chunkPrefix = uriScheme + "chunks/"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         statsURI,
		Name:        "corpus-stats",
		Description: "Chunk store and vector index sizes",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: chunkPrefix + "{chunkId}",
		Name:        "chunk",
		Description: "An indexed chunk with its provenance",
		MIMEType:    "application/json",
	}, s.handleChunkResource)
}

// handleStatsResource returns corpus statistics.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting corpus stats: %w", err)
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling stats: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// chunkInfo is the JSON form of a chunk resource.
type chunkInfo struct {
	ID       string               `json:"id"`
	Ordinal  int                  `json:"ordinal"`
	Text     string               `json:"text"`
	Metadata domain.ChunkMetadata `json:"metadata"`
}

// handleChunkResource returns a single indexed chunk.
func (s *Server) handleChunkResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	chunkID := extractChunkID(req.Params.URI)
	if chunkID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunk, err := s.ports.Index.Lookup(ctx, chunkID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up chunk: %w", err)
	}

	data, err := json.MarshalIndent(chunkInfo{
		ID:       chunk.ID,
		Ordinal:  chunk.Ordinal,
		Text:     chunk.Text,
		Metadata: chunk.Metadata,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling chunk: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractChunkID extracts the chunk ID from a URI like litrag://chunks/{chunkId}.
func extractChunkID(uri string) string {
	if !strings.HasPrefix(uri, chunkPrefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, chunkPrefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
