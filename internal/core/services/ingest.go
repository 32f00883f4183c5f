package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
	"github.com/custodia-labs/litrag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Ingest defaults.
const (
	DefaultIngestLimit   = 10
	DefaultIngestWorkers = 4
	DefaultSourceTimeout = 30 * time.Second
)

// IngestConfig tunes acquisition.
type IngestConfig struct {
	// Terms are searched when a request names none.
	Terms []string
	// Limit is the candidates per term when a request gives none.
	Limit int
	// Workers bounds parallel downloads.
	Workers int
	// SourceTimeout bounds each download.
	SourceTimeout time.Duration
}

// IngestService searches a connector, downloads candidates and hands the
// resulting sources to the corpus builder one search term at a time.
type IngestService struct {
	connector driven.Connector
	builder   driving.CorpusBuilder
	cfg       IngestConfig
}

// NewIngestService creates an ingest service. Zero config values use the defaults.
func NewIngestService(connector driven.Connector, builder driving.CorpusBuilder, cfg IngestConfig) *IngestService {
	if len(cfg.Terms) == 0 {
		cfg.Terms = domain.DefaultSearchTerms()
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultIngestLimit
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultIngestWorkers
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultSourceTimeout
	}
	return &IngestService{connector: connector, builder: builder, cfg: cfg}
}

// Ingest runs every term through the connector and builds the corpus.
// A failed search skips its term. Cancellation is checked between terms.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (domain.BuildReport, error) {
	terms := req.Terms
	if len(terms) == 0 {
		terms = s.cfg.Terms
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.Limit
	}

	var report domain.BuildReport
	for i, term := range terms {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		logger.Section(fmt.Sprintf("[%d/%d] %s", i+1, len(terms), term))
		candidates, err := s.connector.Search(ctx, term, limit)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			err = fmt.Errorf("%w: search %q: %w", domain.ErrAcquisitionFailure, term, err)
			logger.Warn("%v", err)
			report.Failures = append(report.Failures, err)
			continue
		}
		logger.Info("Found %d candidates for %q", len(candidates), term)

		termReport, err := s.ingestCandidates(ctx, s.searchTerm(term), candidates)
		report.Merge(termReport)
		if err != nil {
			return report, err
		}
	}

	return report, nil
}

// Watch ingests each document the connector reports until ctx ends.
func (s *IngestService) Watch(ctx context.Context, onBuild func(domain.BuildReport)) error {
	watcher, ok := s.connector.(driven.Watcher)
	if !ok || !s.connector.Capabilities().SupportsWatch {
		return fmt.Errorf("%w: %s connector cannot watch", domain.ErrUnsupportedType, s.connector.Type())
	}

	candidates, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("start watch: %w", err)
	}

	term := s.searchTerm("")
	for candidate := range candidates {
		logger.Info("New document: %s", candidate.Title)
		report, err := s.ingestCandidates(ctx, term, []domain.Candidate{candidate})
		if err != nil && ctx.Err() == nil {
			return err
		}
		if onBuild != nil {
			onBuild(report)
		}
	}
	return nil
}

// searchTerm is the provenance recorded for term. An empty term, which
// lists everything, is recorded as the connector type.
func (s *IngestService) searchTerm(term string) string {
	if term == "" {
		return string(s.connector.Type())
	}
	return term
}

// ingestCandidates downloads candidates and builds their sources.
func (s *IngestService) ingestCandidates(ctx context.Context, term string, candidates []domain.Candidate) (domain.BuildReport, error) {
	sources, report := s.fetchAll(ctx, term, candidates)
	if len(sources) == 0 {
		return report, nil
	}

	_, built, err := s.builder.Build(ctx, sources)
	report.Merge(built)
	return report, err
}

// fetchAll downloads candidates with bounded parallelism.
// Sources keep candidate order. Failures are reported, never returned.
func (s *IngestService) fetchAll(ctx context.Context, term string, candidates []domain.Candidate) ([]domain.DocumentSource, domain.BuildReport) {
	results := make([]*domain.DocumentSource, len(candidates))
	failures := make([]error, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range candidates {
		g.Go(func() error {
			results[i], failures[i] = s.fetch(gctx, term, &candidates[i])
			return nil
		})
	}
	_ = g.Wait()

	var (
		sources []domain.DocumentSource
		report  domain.BuildReport
	)
	for i := range candidates {
		if failures[i] != nil {
			logger.Warn("%v", failures[i])
			report.SourcesSkipped++
			report.Failures = append(report.Failures, failures[i])
			continue
		}
		sources = append(sources, *results[i])
	}
	return sources, report
}

// fetch turns a candidate into a source. A candidate without a PDF falls
// back to its abstract. One with neither is an acquisition failure.
func (s *IngestService) fetch(ctx context.Context, term string, c *domain.Candidate) (*domain.DocumentSource, error) {
	src := &domain.DocumentSource{
		ID:         c.ID,
		URL:        c.URL,
		PDFURL:     c.PDFURL,
		Title:      c.Title,
		Year:       c.Year,
		SearchTerm: term,
	}
	if src.URL == "" {
		src.URL = c.PDFURL
	}

	if !c.HasPDF() {
		if c.Abstract == "" {
			return nil, fmt.Errorf("%w: %s: no PDF or abstract", domain.ErrAcquisitionFailure, labelOf(c))
		}
		src.Text = c.Abstract
		return src, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
	defer cancel()

	body, mimeType, err := s.connector.Fetch(ctx, c.PDFURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrAcquisitionFailure, labelOf(c), err)
	}
	logger.Debug("Downloaded %s (%d bytes)", labelOf(c), len(body))

	src.Content = body
	src.MIMEType = mimeType
	return src, nil
}

func labelOf(c *domain.Candidate) string {
	if c.Title != "" {
		return c.Title
	}
	if c.URL != "" {
		return c.URL
	}
	return c.ID
}
