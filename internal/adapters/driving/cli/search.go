package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

var (
	searchK    int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Retrieve the chunks closest to a query",
	Long: `Embeds the query and ranks every indexed chunk by cosine similarity.
No LLM is involved; use 'litrag ask' for a generated answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchK, "top-k", "k", 0, "number of chunks (default retrieval.top_k)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// searchHit is the JSON form of a retrieval hit.
type searchHit struct {
	Rank     int                  `json:"rank"`
	Score    float64              `json:"score"`
	ChunkID  string               `json:"chunk_id"`
	Text     string               `json:"text"`
	Metadata domain.ChunkMetadata `json:"metadata"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	result, err := retrievalService.Search(cmd.Context(), args[0], topK(searchK))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, result)
	}
	outputSearchTable(cmd, result)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, result domain.RetrievalResult) error {
	hits := make([]searchHit, len(result))
	for i, r := range result {
		hits[i] = searchHit{
			Rank:     i + 1,
			Score:    r.Score,
			ChunkID:  r.Chunk.ID,
			Text:     r.Chunk.Text,
			Metadata: r.Chunk.Metadata,
		}
	}
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(p printer, result domain.RetrievalResult) {
	if len(result) == 0 {
		p.Println("No results found. Run 'litrag index' if the corpus is new.")
		return
	}

	p.Println("Results:")
	p.Println()
	for i, r := range result {
		title := r.Chunk.Metadata.Source
		if title == "" {
			title = "Untitled"
		}
		p.Printf("  [%d] %s (%s) %.3f\n", i+1, title, yearLabel(r.Chunk.Metadata.Year), r.Score)
		if r.Chunk.Metadata.URL != "" {
			p.Printf("      %s\n", r.Chunk.Metadata.URL)
		}
		p.Printf("      %s\n", snippet(r.Chunk.Text, 200))
		p.Println()
	}
}
