package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and index sizes",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output stats as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	stats, err := indexService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Chunk file:      %s\n", stats.ChunkFile)
	cmd.Printf("Chunks stored:   %d\n", stats.Chunks)
	cmd.Printf("Chunks indexed:  %d\n", stats.Indexed)
	cmd.Printf("Embedding model: %s\n", stats.EmbeddingModel)
	if stats.IndexModel != "" {
		cmd.Printf("Index model:     %s\n", stats.IndexModel)
	}
	if stats.ModelMismatch() {
		cmd.Printf("The index was built with %s, not %s. Run 'litrag index' to rebuild it.\n",
			stats.IndexModel, stats.EmbeddingModel)
		return nil
	}
	if stats.IsStale() {
		cmd.Println("The index is out of date. Run 'litrag index' to rebuild it.")
	}
	return nil
}
