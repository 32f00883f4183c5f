package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure embedding and LLM providers, acquisition, retry and
index options. Settings live in config.toml under the config directory.

Use subcommands to change a value or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Persist one configuration value. Lists take comma-separated values.

Examples:
  litrag settings set acquisition.connector pubmed
  litrag settings set acquisition.search_terms "naloxone,methadone clinics"
  litrag settings set pipeline.chunker.max_chars 800

Run 'litrag settings keys' for every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key <provider>",
	Short: "Store an API key without echoing it",
	Long: `Read an API key from the terminal and store it for a provider.

Providers: openai, anthropic, ollama, semanticscholar, pubmed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsSetKey,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure providers and acquisition step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index and search chunks.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used by 'ask' and 'analyze'.`,
	RunE:  runSettingsLLM,
}

// stdin is the wizard input, replaced in tests.
var stdin io.Reader = os.Stdin

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	if settings.Embedding.Provider == domain.AIProviderOllama {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", keyLabel(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredLabel(settings.Embedding.IsConfigured()))
	cmd.Println()

	// LLM settings
	cmd.Println("[LLM]")
	if settings.LLM.Provider == "" {
		cmd.Println("  Provider: (none)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
	}
	if settings.LLM.Provider == domain.AIProviderOllama {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", keyLabel(settings.LLM.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredLabel(settings.LLM.IsConfigured()))
	cmd.Println()

	// Acquisition settings
	acq := settings.Acquisition
	cmd.Println("[Acquisition]")
	cmd.Printf("  Connector: %s\n", acq.Connector)
	if acq.Connector == domain.ConnectorFilesystem {
		cmd.Printf("  Directory: %s\n", acq.Directory)
	}
	if acq.Connector == domain.ConnectorPubMed {
		cmd.Printf("  Years: %d-%d\n", acq.PubMedStartYear, acq.PubMedEndYear)
	}
	if acq.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(acq.APIKey))
	}
	cmd.Printf("  Limit per term: %d\n", acq.Limit)
	cmd.Printf("  Requests/second: %g\n", acq.RequestsPerSecond)
	cmd.Printf("  Workers: %d\n", acq.Workers)
	cmd.Printf("  Source timeout: %s\n", acq.SourceTimeout)
	cmd.Printf("  Search terms: %d configured\n", len(acq.SearchTerms))
	cmd.Println()

	cmd.Println("[Retry]")
	cmd.Printf("  Max retries: %d\n", settings.Retry.MaxRetries)
	cmd.Printf("  Delay: %s to %s (x%g)\n", settings.Retry.BaseDelay, settings.Retry.MaxDelay, settings.Retry.Multiplier)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend)
	cmd.Printf("  Batch size: %d\n", settings.Index.BatchSize)
	cmd.Printf("  Batch timeout: %s\n", settings.Index.BatchTimeout)
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Println()

	cmd.Println("[Corpus]")
	chunkFile := settings.Corpus.ChunkFile
	if chunkFile == "" {
		chunkFile = "(default)"
	}
	cmd.Printf("  Chunk file: %s\n", chunkFile)
	cmd.Printf("  Pipeline: %s\n", strings.Join(settings.Pipeline.Processors, " -> "))
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'litrag settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	provider := domain.AIProvider(strings.ToLower(args[0]))
	cmd.Printf("Enter API key for %s: ", provider)
	key := readPassword(bufio.NewReader(stdin))
	cmd.Println()
	if key == "" {
		return errors.New("API key is required")
	}

	if err := settingsService.SetAPIKey(provider, key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	cmd.Printf("API key stored for %s (%s)\n", provider, maskAPIKey(key))
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("litrag Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(stdin)

	// Step 1: Embedding provider
	cmd.Println("Step 1: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	// Step 2: LLM provider (optional)
	cmd.Println("Step 2: Configure LLM Provider")
	cmd.Println("------------------------------")
	cmd.Print("An LLM is needed for 'ask' and 'analyze'. Configure one now? [Y/n]: ")
	if answer := strings.ToLower(readLine(reader)); answer == "" || answer == "y" || answer == "yes" {
		if err := configureLLMProvider(cmd, reader); err != nil {
			return err
		}
	} else {
		cmd.Println("Skipped.")
		cmd.Println()
	}

	// Step 3: Literature source
	cmd.Println("Step 3: Select Literature Source")
	cmd.Println("--------------------------------")
	if err := configureConnector(cmd, reader); err != nil {
		return err
	}

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(stdin))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureLLMProvider(cmd, bufio.NewReader(stdin))
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[selectedProvider]
	model := defaultModel
	if selectedProvider != domain.AIProviderHash {
		cmd.Printf("Enter model name [%s]: ", defaultModel)
		if input := readLine(reader); input != "" {
			model = input
		}
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	cmd.Println("Run 'litrag index' to re-embed the corpus with the new model.")
	cmd.Println()
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func configureConnector(cmd *cobra.Command, reader *bufio.Reader) error {
	connectors := []domain.ConnectorType{
		domain.ConnectorSemanticScholar,
		domain.ConnectorPubMed,
		domain.ConnectorFilesystem,
	}
	for i, c := range connectors {
		cmd.Printf("  %d. %s\n", i+1, c)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(connectors), 1)
	selected := connectors[idx-1]

	if selected == domain.ConnectorFilesystem {
		cmd.Print("Enter directory: ")
		dir := readLine(reader)
		if dir == "" {
			return errors.New("a directory is required for the filesystem connector")
		}
		if err := settingsService.Set("acquisition.directory", dir); err != nil {
			return fmt.Errorf("failed to set directory: %w", err)
		}
	}

	if err := settingsService.Set("acquisition.connector", string(selected)); err != nil {
		return fmt.Errorf("failed to set connector: %w", err)
	}
	cmd.Printf("Literature source: %s\n\n", selected)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo from a terminal, else a line from reader.
func readPassword(reader *bufio.Reader) string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func keyLabel(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
