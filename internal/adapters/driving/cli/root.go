// Package cli provides the cobra command tree for litrag.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
	"github.com/custodia-labs/litrag/internal/logger"
)

// version is set at build time with -ldflags "-X".
var version = "dev"

// annotationNoServices marks commands that run without building services.
const annotationNoServices = "no-services"

// Options are the root flags that shape how services are built.
type Options struct {
	// ConfigDir overrides the configuration directory.
	ConfigDir string

	// BatchSize overrides index.batch_size for this run.
	BatchSize int
}

// IngestFactory builds an ingest service over the connector described by
// acquisition settings. The returned func releases the connector.
type IngestFactory func(acq domain.AcquisitionSettings) (driving.IngestService, func() error, error)

// Services holds everything the commands drive.
type Services struct {
	Settings  driving.SettingsService
	Builder   driving.CorpusBuilder
	Index     driving.IndexService
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
	Intake    driving.IntakeService
	NewIngest IngestFactory

	// Close releases the model registry and stores.
	Close func() error
}

// Bootstrap builds services once flags are parsed.
type Bootstrap func(opts Options) (*Services, error)

var (
	settingsService  driving.SettingsService
	corpusBuilder    driving.CorpusBuilder
	indexService     driving.IndexService
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	intakeService    driving.IntakeService
	ingestFactory    IngestFactory
	closeServices    func() error

	bootstrap Bootstrap
	options   Options
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "litrag",
	Short: "Retrieval-augmented answers from addiction treatment literature",
	Long: `litrag builds a searchable corpus from addiction treatment research.

It acquires papers from Semantic Scholar, PubMed or a local directory,
cleans and chunks their text into a JSONL chunk store, embeds the chunks
into a vector index, and answers questions grounded in the closest chunks.

Typical flow:
  litrag ingest --term "opioid use disorder MAT"
  litrag index
  litrag ask "What improves retention in methadone programmes?"`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
	rootCmd.PersistentFlags().StringVar(&options.ConfigDir, "config-dir", "", "configuration directory (default ~/.litrag)")
}

// SetBootstrap registers the function that builds services for a run.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	corpusBuilder = s.Builder
	indexService = s.Index
	retrievalService = s.Retrieval
	answerService = s.Answer
	intakeService = s.Intake
	ingestFactory = s.NewIngest
	closeServices = s.Close
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		err = errors.Join(err, closeServices())
		closeServices = nil
	}
	return err
}

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if bootstrap == nil || cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}
	svc, err := bootstrap(options)
	if err != nil {
		return err
	}
	SetServices(svc)
	return nil
}

// topK resolves a -k flag, falling back to retrieval.top_k.
func topK(k int) int {
	if k > 0 {
		return k
	}
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s.Retrieval.TopK > 0 {
			return s.Retrieval.TopK
		}
	}
	return domain.DefaultAppSettings().Retrieval.TopK
}
