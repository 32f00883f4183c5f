// Package driving declares what the CLI, the TUI and the MCP server call:
// building the corpus, indexing it, retrieving chunks, asking questions and
// editing settings.
//
// internal/core/services implements every interface here.
package driving
