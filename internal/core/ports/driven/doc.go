// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Connector: Searches a literature source and fetches documents
//   - ExtractorRegistry: Converts fetched bytes to text by MIME type
//   - Normaliser: Cleans extracted text before chunking
//   - PostProcessorPipeline: Splits normalised text into chunks
//   - ChunkStore: Append-only chunk persistence (JSONL)
//   - EmbeddingIndex: Vector persistence (SQLite or memory)
//   - ModelRegistry: Owns the embedding and LLM services
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Without it, answering and intake analysis are disabled.
//   - PromptStore: Without it, built-in prompt templates are used.
//   - Watcher: Only connectors that can observe new documents implement it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
