package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/litrag/internal/connectors/filesystem"
	"github.com/custodia-labs/litrag/internal/core/domain"
)

// readSource loads a local file as a source awaiting extraction.
func readSource(path, searchTerm string) (*domain.DocumentSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &domain.DocumentSource{
		ID:         abs,
		URL:        "file://" + filepath.ToSlash(abs),
		PDFURL:     abs,
		Title:      strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
		SearchTerm: searchTerm,
		Content:    content,
		MIMEType:   filesystem.DetectMIMEType(abs),
	}, nil
}

// printBuildReport writes a build summary and, when verbose, each failure.
func printBuildReport(p printer, report domain.BuildReport) {
	p.Printf("Sources processed: %d\n", report.SourcesProcessed)
	p.Printf("Sources skipped:   %d\n", report.SourcesSkipped)
	p.Printf("Sources empty:     %d\n", report.SourcesEmpty)
	p.Printf("Chunks produced:   %d\n", report.ChunksProduced)
	if verbose {
		for _, f := range report.Failures {
			p.Printf("  - %v\n", f)
		}
	}
}

// printer is the subset of *cobra.Command used for output.
type printer interface {
	Printf(format string, args ...any)
	Println(args ...any)
}

// yearLabel formats an optional year.
func yearLabel(year *int) string {
	if year == nil {
		return "n.d."
	}
	return fmt.Sprintf("%d", *year)
}

// snippet shortens text to at most n runes on one line.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
