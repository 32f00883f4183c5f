package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

var (
	buildTerm  string
	buildIndex bool
)

var buildCmd = &cobra.Command{
	Use:   "build <file>...",
	Short: "Add local documents to the corpus",
	Long: `Extracts, cleans and chunks local PDF, HTML, Markdown or text files and
appends the chunks to the chunk store, without contacting any connector.

Files that cannot be read or extracted are reported and skipped. Chunks are
never deduplicated, so building the same file twice stores it twice.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildTerm, "term", "t", "local", "search term recorded in chunk metadata")
	buildCmd.Flags().BoolVar(&buildIndex, "index", false, "rebuild the vector index afterwards")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if corpusBuilder == nil {
		return errors.New("corpus builder not configured")
	}

	var (
		sources []domain.DocumentSource
		report  domain.BuildReport
	)
	for _, path := range args {
		src, err := readSource(path, buildTerm)
		if err != nil {
			cmd.Printf("Skipping %s: %v\n", path, err)
			report.SourcesSkipped++
			report.Failures = append(report.Failures, fmt.Errorf("%w: %w", domain.ErrAcquisitionFailure, err))
			continue
		}
		sources = append(sources, *src)
	}

	if len(sources) > 0 {
		_, built, err := corpusBuilder.Build(cmd.Context(), sources)
		report.Merge(built)
		if err != nil {
			printBuildReport(cmd, report)
			return fmt.Errorf("build failed: %w", err)
		}
	}

	printBuildReport(cmd, report)
	if report.ChunksProduced == 0 {
		return fmt.Errorf("build: %w", domain.ErrEmptyCorpus)
	}
	if buildIndex {
		return rebuildIndex(cmd.Context(), cmd)
	}
	return nil
}
