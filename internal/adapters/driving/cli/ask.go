package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askK    int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed literature",
	Long: `Retrieves the closest chunks and asks the configured LLM to answer using
only those excerpts. The excerpts are listed after the answer.

Requires an LLM provider; see 'litrag settings llm'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "top-k", "k", 0, "number of excerpts (default retrieval.top_k)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON form of an answer.
type askOutput struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Model    string      `json:"model"`
	Sources  []searchHit `json:"sources"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	question := strings.Join(args, " ")
	answer, err := answerService.Ask(cmd.Context(), question, topK(askK))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		out := askOutput{Question: answer.Question, Answer: answer.Text, Model: answer.Model}
		for i, s := range answer.Sources {
			out.Sources = append(out.Sources, searchHit{
				Rank: i + 1, Score: s.Score, ChunkID: s.Chunk.ID, Text: s.Chunk.Text, Metadata: s.Chunk.Metadata,
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(strings.TrimSpace(answer.Text))
	cmd.Println()
	cmd.Println("Sources:")
	for i, s := range answer.Sources {
		cmd.Printf("  [%d] %s (%s)\n", i+1, s.Chunk.Metadata.Source, yearLabel(s.Chunk.Metadata.Year))
	}
	return nil
}
