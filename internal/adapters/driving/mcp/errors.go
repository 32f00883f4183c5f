// Package mcp provides an MCP (Model Context Protocol) server adapter for litrag.
// It lets AI assistants retrieve passages from the indexed literature and ask
// grounded questions.
package mcp

import "errors"

var (
	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

	// ErrMissingIndexService is returned when the index service is not provided.
	ErrMissingIndexService = errors.New("mcp: index service is required")
)
