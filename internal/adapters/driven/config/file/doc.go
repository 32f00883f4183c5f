// Package file keeps litrag's on-disk configuration.
//
// ConfigStore reads and writes ~/.litrag/config.toml with go-toml. PromptStore
// seeds ~/.litrag/prompts with the answer and intake templates on first use
// and serves any edits made to them afterwards.
package file
