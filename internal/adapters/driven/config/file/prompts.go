package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// defaults holds the built-in templates and the README copied into a new
// prompt directory.
//
//go:embed defaults
var defaults embed.FS

// placeholders is the number of %s verbs each template must contain.
var placeholders = map[string]int{
	driven.PromptAnswerSystem:   0,
	driven.PromptAnswer:         2,
	driven.PromptIntakeAnalysis: 1,
}

// PromptStore loads prompt templates from <dir>/<name>.txt. The directory is
// seeded with the built-in templates on the first Load; a missing, unreadable
// or malformed file falls back to the built-in template.
type PromptStore struct {
	promptDir string

	initOnce sync.Once
	initErr  error

	mu    sync.Mutex
	cache map[string]string
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.litrag/prompts/.
// No I/O happens until the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".litrag", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.seed)

	builtin, known := builtinPrompt(name)
	if s.initErr != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prompt, ok := s.cache[name]; ok {
		return prompt, nil
	}

	prompt, err := s.readUserPrompt(name)
	switch {
	case err == nil:
	case known:
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Prompt %s: %v; using the built-in template", name, err)
		}
		prompt = builtin
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// readUserPrompt reads <dir>/<name>.txt and checks its placeholder count.
func (s *PromptStore) readUserPrompt(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))

	if want, ok := placeholders[name]; ok {
		if got := strings.Count(prompt, "%s"); got != want {
			return "", fmt.Errorf("template has %d %%s placeholders, want %d", got, want)
		}
	}
	return prompt, nil
}

// seed creates the prompt directory and copies in every built-in file that
// does not exist yet. Existing files are never overwritten.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	entries, err := defaults.ReadDir("defaults")
	if err != nil {
		s.initErr = err
		return
	}
	for _, entry := range entries {
		target := filepath.Join(s.promptDir, entry.Name())
		if _, err := os.Stat(target); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		data, err := defaults.ReadFile(path.Join("defaults", entry.Name()))
		if err != nil {
			s.initErr = err
			return
		}
		if err := os.WriteFile(target, data, 0600); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", entry.Name(), err)
			return
		}
	}
}

// builtinPrompt returns the embedded template for name.
func builtinPrompt(name string) (string, bool) {
	if _, ok := placeholders[name]; !ok {
		return "", false
	}
	data, err := defaults.ReadFile(path.Join("defaults", name+".txt"))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}
