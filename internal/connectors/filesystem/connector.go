package filesystem

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/extractors/html"
	"github.com/custodia-labs/litrag/internal/logger"
)

// Ensure Connector implements the interfaces.
var (
	_ driven.Connector = (*Connector)(nil)
	_ driven.Watcher   = (*Connector)(nil)
)

// DefaultDebounce is the quiet period before a changed file is emitted.
const DefaultDebounce = 200 * time.Millisecond

// titleProbeBytes is how much of an HTML file is read to find its <title>.
const titleProbeBytes = 64 << 10

// supportedExtensions lists the file types Search and Watch report.
var supportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
}

// Connector reads documents from a local directory.
type Connector struct {
	rootPath string
	debounce time.Duration

	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// New creates a new filesystem connector rooted at rootPath.
func New(rootPath string) *Connector {
	if abs, err := filepath.Abs(rootPath); err == nil && rootPath != "" {
		rootPath = abs
	}
	return &Connector{
		rootPath: rootPath,
		debounce: DefaultDebounce,
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() domain.ConnectorType {
	return domain.ConnectorFilesystem
}

// Root returns the absolute root directory.
func (c *Connector) Root() string {
	return c.rootPath
}

// Capabilities returns the connector's capabilities.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsWatch:        true,
		SupportsBinary:       true,
		RequiresAPIKey:       false,
		SupportsRateLimiting: false,
		SupportsAbstracts:    false,
	}
}

// Validate checks that the root path exists and is a readable directory.
func (c *Connector) Validate(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("root path does not exist: %s", c.rootPath)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("root path permission denied: %s", c.rootPath)
		}
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path is not a directory: %s", c.rootPath)
	}

	f, err := os.Open(c.rootPath)
	if err != nil {
		return fmt.Errorf("root path not readable: %w", err)
	}
	_ = f.Close()
	return nil
}

// Search lists supported files whose relative path contains query,
// case-insensitively, in lexical order. An empty query lists every file.
func (c *Connector) Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidArgument)
	}
	if err := c.Validate(ctx); err != nil {
		return nil, fmt.Errorf("%w: root path error: %w", domain.ErrAcquisitionFailure, err)
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	var paths []string

	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("filesystem: skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == c.rootPath {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !isSupported(path) {
			return nil
		}

		rel, _ := filepath.Rel(c.rootPath, path)
		if needle == "" || strings.Contains(strings.ToLower(filepath.ToSlash(rel)), needle) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(paths)
	if len(paths) > limit {
		paths = paths[:limit]
	}

	candidates := make([]domain.Candidate, 0, len(paths))
	for _, p := range paths {
		candidates = append(candidates, c.candidate(p))
	}
	return candidates, nil
}

// Fetch reads a file under the root. url may be a path or a file:// URI.
func (c *Connector) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if err := c.checkOpen(); err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	path, err := c.resolve(url)
	if err != nil {
		return nil, "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: read %s: %w", domain.ErrAcquisitionFailure, path, err)
	}
	return content, DetectMIMEType(path), nil
}

// Watch emits a candidate for every supported file created or rewritten
// under the root. The channel closes when ctx is cancelled or the
// connector is closed.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.Candidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("watch: %w", domain.ErrConnectorClosed)
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := addTree(watcher, c.rootPath); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}
	c.watchers = append(c.watchers, watcher)

	out := make(chan domain.Candidate)
	go c.watchLoop(ctx, watcher, out)
	return out, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- domain.Candidate) {
	defer close(out)
	defer func() { _ = watcher.Close() }()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(c.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && !isHidden(filepath.Base(event.Name)) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Warn("filesystem: watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			if cand := c.handleFsEvent(event); cand != nil {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("filesystem: watcher error: %v", err)

		case now := <-ticker.C:
			for _, path := range readyPaths(pending, now, c.debounce) {
				delete(pending, path)
				cand := c.handleFsEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
				if cand == nil {
					continue
				}
				select {
				case out <- *cand:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// readyPaths returns, in lexical order, the paths quiet for at least debounce.
func readyPaths(pending map[string]time.Time, now time.Time, debounce time.Duration) []string {
	var ready []string
	for path, at := range pending {
		if now.Sub(at) >= debounce {
			ready = append(ready, path)
		}
	}
	slices.Sort(ready)
	return ready
}

// handleFsEvent converts a filesystem event into a candidate.
// Only creates and writes of supported, visible, regular files count;
// removals are ignored because the corpus never deletes chunks.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.Candidate {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil
	}

	rel, err := filepath.Rel(c.rootPath, event.Name)
	if err != nil || isHidden(rel) || !isSupported(event.Name) {
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}

	cand := c.candidate(event.Name)
	return &cand
}

// Close stops any active watches. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	for _, w := range c.watchers {
		_ = w.Close()
	}
	c.watchers = nil
	return nil
}

func (c *Connector) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrConnectorClosed
	}
	return nil
}

// candidate describes a file. PDFURL holds the absolute path for Fetch.
func (c *Connector) candidate(path string) domain.Candidate {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return domain.Candidate{
		ID:     filepath.ToSlash(rel),
		Title:  fileTitle(path),
		URL:    "file://" + filepath.ToSlash(path),
		PDFURL: path,
	}
}

// resolve maps url to an absolute path inside the root.
func (c *Connector) resolve(url string) (string, error) {
	path := ResolvePath(url)
	if path == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidArgument)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.rootPath, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside %s", domain.ErrInvalidArgument, path, c.rootPath)
	}
	return path, nil
}

// addTree watches dir and every visible directory below it.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return fs.SkipDir
		}
		return watcher.Add(path)
	})
}

// fileTitle returns an HTML file's <title>, or the base name without extension.
func fileTitle(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" {
		if f, err := os.Open(path); err == nil {
			head, _ := io.ReadAll(io.LimitReader(f, titleProbeBytes))
			_ = f.Close()
			if title := html.Title(string(head)); title != "" {
				return title
			}
		}
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func isSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}

// fallbackMIMETypes covers extensions the platform MIME table may not know.
var fallbackMIMETypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".htm":      "text/html",
	".html":     "text/html",
	".pdf":      "application/pdf",
}

// DetectMIMEType returns the bare MIME type for a file name.
// Files without an extension are treated as plain text.
func DetectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}
	if mt, ok := fallbackMIMETypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		if base, _, err := mime.ParseMediaType(mt); err == nil {
			return base
		}
		return mt
	}
	return "application/octet-stream"
}
