package mcp

import (
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval ranks chunks against a query.
	Retrieval driving.RetrievalService

	// Answer generates grounded answers. Optional; the ask tool is omitted without it.
	Answer driving.AnswerService

	// Index serves chunk lookups and corpus stats.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Index == nil {
		return ErrMissingIndexService
	}
	return nil
}
