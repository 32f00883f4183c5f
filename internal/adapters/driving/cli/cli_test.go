package cli

import (
	"bytes"
	"context"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService.
type mockSettingsService struct {
	settings  domain.AppSettings
	setCalls  map[string]any
	apiKeys   map[domain.AIProvider]string
	validErr  error
	setErr    error
	embedding []string
	llm       []string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		setCalls: make(map[string]any),
		apiKeys:  make(map[domain.AIProvider]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"acquisition.connector", "retrieval.top_k"}
}

func (m *mockSettingsService) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setCalls[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, _ string) error {
	m.embedding = []string{string(provider), model}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, _ string) error {
	m.llm = []string{string(provider), model}
	return nil
}

func (m *mockSettingsService) SetAPIKey(provider domain.AIProvider, apiKey string) error {
	m.apiKeys[provider] = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error                 { return m.validErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error        { return nil }

// mockCorpusBuilder implements driving.CorpusBuilder.
type mockCorpusBuilder struct {
	sources []domain.DocumentSource
	err     error
}

func (m *mockCorpusBuilder) Build(
	_ context.Context, sources []domain.DocumentSource,
) ([]domain.Chunk, domain.BuildReport, error) {
	m.sources = append(m.sources, sources...)
	report := domain.BuildReport{SourcesProcessed: len(sources), ChunksProduced: 2 * len(sources)}
	return make([]domain.Chunk, report.ChunksProduced), report, m.err
}

// mockIndexService implements driving.IndexService.
type mockIndexService struct {
	rebuilds int
	report   domain.IndexReport
	stats    driving.CorpusStats
	err      error
}

func (m *mockIndexService) Rebuild(context.Context) (domain.IndexReport, error) {
	m.rebuilds++
	return m.report, m.err
}

func (m *mockIndexService) Index(_ context.Context, chunks []domain.Chunk) (domain.IndexReport, error) {
	return domain.IndexReport{Indexed: len(chunks)}, m.err
}

func (m *mockIndexService) Lookup(context.Context, string) (*domain.Chunk, error) {
	return nil, domain.ErrNotFound
}

func (m *mockIndexService) All(context.Context) ([]domain.EmbeddingRecord, error) {
	return nil, nil
}

func (m *mockIndexService) Stats(context.Context) (*driving.CorpusStats, error) {
	s := m.stats
	return &s, m.err
}

// mockRetrievalService implements driving.RetrievalService.
type mockRetrievalService struct {
	result domain.RetrievalResult
	query  string
	k      int
	err    error
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ []float32, k int) (domain.RetrievalResult, error) {
	m.k = k
	return m.result, m.err
}

func (m *mockRetrievalService) Search(_ context.Context, query string, k int) (domain.RetrievalResult, error) {
	m.query, m.k = query, k
	return m.result, m.err
}

// mockAnswerService implements driving.AnswerService.
type mockAnswerService struct {
	question string
	k        int
	sources  domain.RetrievalResult
	err      error
}

func (m *mockAnswerService) Ask(_ context.Context, question string, k int) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.question, m.k = question, k
	return &domain.Answer{Question: question, Text: "Methadone improves retention.", Sources: m.sources, Model: "test-llm"}, nil
}

// mockIntakeService implements driving.IntakeService.
type mockIntakeService struct {
	src *domain.DocumentSource
}

func (m *mockIntakeService) Analyze(_ context.Context, src *domain.DocumentSource) (*domain.IntakeAssessment, error) {
	m.src = src
	return &domain.IntakeAssessment{Occupation: "Nurse", RelapseProbability: "Moderate"}, nil
}

// mockIngestService implements driving.IngestService.
type mockIngestService struct {
	requests []driving.IngestRequest
	report   domain.BuildReport
	watches  []domain.BuildReport
	err      error
}

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (domain.BuildReport, error) {
	m.requests = append(m.requests, req)
	return m.report, m.err
}

func (m *mockIngestService) Watch(_ context.Context, onBuild func(domain.BuildReport)) error {
	for _, r := range m.watches {
		onBuild(r)
	}
	return context.Canceled
}

// testServices bundles the mocks installed by setupTestServices.
type testServices struct {
	settings  *mockSettingsService
	builder   *mockCorpusBuilder
	index     *mockIndexService
	retrieval *mockRetrievalService
	answer    *mockAnswerService
	intake    *mockIntakeService
	ingest    *mockIngestService

	// acq records the settings passed to the ingest factory.
	acq *domain.AcquisitionSettings
}

func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		settings:  newMockSettingsService(),
		builder:   &mockCorpusBuilder{},
		index:     &mockIndexService{report: domain.IndexReport{Indexed: 4, Dimensions: 384}},
		retrieval: &mockRetrievalService{},
		answer:    &mockAnswerService{},
		intake:    &mockIntakeService{},
		ingest:    &mockIngestService{report: domain.BuildReport{SourcesProcessed: 1, ChunksProduced: 3}},
	}
	SetServices(&Services{
		Settings:  ts.settings,
		Builder:   ts.builder,
		Index:     ts.index,
		Retrieval: ts.retrieval,
		Answer:    ts.answer,
		Intake:    ts.intake,
		NewIngest: func(acq domain.AcquisitionSettings) (driving.IngestService, func() error, error) {
			ts.acq = &acq
			return ts.ingest, func() error { return nil }, nil
		},
	})
	resetFlags()

	return ts, func() {
		SetServices(nil)
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
}

// resetFlags restores command flag variables between executions.
func resetFlags() {
	verbose = false
	options = Options{}
	ingestConnector, ingestTerms, ingestLimit, ingestDir = "", nil, 0, ""
	ingestWatch, ingestWorkers, ingestTimeout, ingestIndex = false, 0, 0, false
	buildTerm, buildIndex = "local", false
	searchK, searchJSON = 0, false
	askK, askJSON = 0, false
	analyzeJSON, statsJSON = false, false
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
