package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the vector index from the chunk store",
	Long: `Embeds every stored chunk and replaces the vector index.

The previous index is kept if embedding fails. Batches that time out are
skipped and reported; rerun the command to fill them in.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().IntVar(&options.BatchSize, "batch-size", 0, "chunks per embedding request (default index.batch_size)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	return rebuildIndex(cmd.Context(), cmd)
}

func rebuildIndex(ctx context.Context, p printer) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	p.Println("Rebuilding vector index...")
	report, err := indexService.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	p.Printf("Indexed %d chunks (%d dimensions)\n", report.Indexed, report.Dimensions)
	if report.Skipped > 0 {
		p.Printf("Skipped %d chunks whose embedding batch failed\n", report.Skipped)
	}
	return nil
}
