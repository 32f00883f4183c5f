package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// filesystemLimit caps how many files one filesystem ingest lists.
const filesystemLimit = 10000

var (
	ingestConnector string
	ingestTerms     []string
	ingestLimit     int
	ingestDir       string
	ingestWatch     bool
	ingestWorkers   int
	ingestTimeout   int
	ingestIndex     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Acquire literature and add it to the corpus",
	Long: `Searches a literature source for each term, downloads open-access PDFs
(falling back to abstracts), and appends cleaned chunks to the chunk store.

Without --term, the configured acquisition.search_terms are used. The
filesystem connector lists every supported file under --dir instead.

Chunks are never deduplicated: running ingest twice over the same papers
appends their chunks twice. Start from an empty chunk file to rebuild.

Examples:
  litrag ingest --term "contingency management" --limit 5
  litrag ingest --connector pubmed --term "naloxone distribution"
  litrag ingest --connector filesystem --dir ./papers --watch`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestConnector, "connector", "", "semanticscholar, pubmed or filesystem")
	ingestCmd.Flags().StringArrayVarP(&ingestTerms, "term", "t", nil, "search term (repeatable)")
	ingestCmd.Flags().IntVarP(&ingestLimit, "limit", "n", 0, "candidates per term")
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "directory for the filesystem connector")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep ingesting new files as they appear")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "parallel downloads")
	ingestCmd.Flags().IntVar(&ingestTimeout, "timeout", 0, "per-source timeout in seconds")
	ingestCmd.Flags().BoolVar(&ingestIndex, "index", false, "rebuild the vector index afterwards")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if settingsService == nil || ingestFactory == nil {
		return errors.New("ingest service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	acq := ingestSettings(settings.Acquisition)

	svc, closeConnector, err := ingestFactory(acq)
	if err != nil {
		return fmt.Errorf("failed to create %s connector: %w", acq.Connector, err)
	}
	defer func() { _ = closeConnector() }()

	ctx := cmd.Context()
	if ingestWatch {
		return watchIngest(ctx, cmd, svc, acq)
	}

	req := driving.IngestRequest{Terms: ingestTerms, Limit: ingestLimit}
	if acq.Connector == domain.ConnectorFilesystem && len(req.Terms) == 0 {
		req.Terms = []string{""}
		if req.Limit <= 0 {
			req.Limit = filesystemLimit
		}
	}

	cmd.Printf("Ingesting from %s...\n", acq.Connector)
	report, err := svc.Ingest(ctx, req)
	printBuildReport(cmd, report)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	if report.ChunksProduced == 0 {
		return fmt.Errorf("ingest: %w", domain.ErrEmptyCorpus)
	}

	if ingestIndex {
		return rebuildIndex(ctx, cmd)
	}
	cmd.Println("Run 'litrag index' to make the new chunks searchable.")
	return nil
}

func watchIngest(ctx context.Context, cmd *cobra.Command, svc driving.IngestService, acq domain.AcquisitionSettings) error {
	cmd.Printf("Watching %s for new documents (Ctrl+C to stop)...\n", acq.Directory)

	var total domain.BuildReport
	err := svc.Watch(ctx, func(report domain.BuildReport) {
		total.Merge(report)
		cmd.Printf("Added %d chunks (%d total)\n", report.ChunksProduced, total.ChunksProduced)
		if ingestIndex && report.ChunksProduced > 0 {
			if err := rebuildIndex(ctx, cmd); err != nil {
				cmd.Printf("Index rebuild failed: %v\n", err)
			}
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	printBuildReport(cmd, total)
	return nil
}

// ingestSettings overlays command flags on the configured acquisition settings.
func ingestSettings(acq domain.AcquisitionSettings) domain.AcquisitionSettings {
	if ingestConnector != "" {
		acq.Connector = domain.ConnectorType(ingestConnector)
	}
	if ingestDir != "" {
		acq.Directory = ingestDir
		if ingestConnector == "" {
			acq.Connector = domain.ConnectorFilesystem
		}
	}
	if ingestLimit > 0 {
		acq.Limit = ingestLimit
	}
	if ingestWorkers > 0 {
		acq.Workers = ingestWorkers
	}
	if ingestTimeout > 0 {
		acq.SourceTimeout = time.Duration(ingestTimeout) * time.Second
	}
	if len(ingestTerms) > 0 {
		acq.SearchTerms = ingestTerms
	}
	return acq
}
