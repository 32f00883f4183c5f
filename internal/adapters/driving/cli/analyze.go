package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Summarise a rehab intake document",
	Long: `Extracts the text of an intake document (PDF, HTML or text) and asks the
LLM for five sections: occupation, rehab experience, psychological insights,
family support and relapse probability. Sections the model omits are blank.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the assessment as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if intakeService == nil {
		return errors.New("intake service not configured")
	}

	src, err := readSource(args[0], "intake")
	if err != nil {
		return err
	}

	assessment, err := intakeService.Analyze(cmd.Context(), src)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if analyzeJSON {
		data, err := json.MarshalIndent(assessment, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal assessment: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	sections := []struct{ title, body string }{
		{"Occupation", assessment.Occupation},
		{"Rehab Experience", assessment.RehabExperience},
		{"Psychological Insights", assessment.PsychologicalInsights},
		{"Family Support", assessment.FamilySupport},
		{"Relapse Probability", assessment.RelapseProbability},
	}
	for _, s := range sections {
		cmd.Printf("[%s]\n", s.title)
		if s.body == "" {
			cmd.Println("  (not found)")
		} else {
			cmd.Printf("  %s\n", s.body)
		}
		cmd.Println()
	}
	return nil
}
