package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - max_chars (int): Chunk budget in characters (default: 1000)
//   - min_paragraph_chars (int): Paragraphs this short or shorter are dropped (default: 80)
//   - skip_prefixes ([]string): Caption prefixes that drop a paragraph (default: FIG., TABLE)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size, ok := getIntFromConfig(cfg, "max_chars"); ok {
			if size <= 0 {
				return nil, fmt.Errorf("chunker: max_chars must be positive, got %d", size)
			}
			opts = append(opts, chunker.WithMaxChars(size))
		}
		if minChars, ok := getIntFromConfig(cfg, "min_paragraph_chars"); ok {
			if minChars < 0 {
				return nil, fmt.Errorf("chunker: min_paragraph_chars must not be negative, got %d", minChars)
			}
			opts = append(opts, chunker.WithMinParagraphChars(minChars))
		}
		if prefixes, ok := getStringsFromConfig(cfg, "skip_prefixes"); ok {
			opts = append(opts, chunker.WithSkipPrefixes(prefixes))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// getStringsFromConfig extracts a string list from generic config map.
// TOML arrays decode as []any.
func getStringsFromConfig(cfg map[string]any, key string) ([]string, bool) {
	val, ok := cfg[key]
	if !ok {
		return nil, false
	}

	switch v := val.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
