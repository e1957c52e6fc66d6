// Package app builds the extraction service from configuration so every
// binary runs the same pipeline.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/backend"
	"github.com/mlisboa17/assistente-pessoal/internal/categorizer"
	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/confirmation"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/gcsuploader"
	infra "github.com/mlisboa17/assistente-pessoal/internal/infra/bigquery"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"github.com/mlisboa17/assistente-pessoal/internal/metrics"
	"github.com/mlisboa17/assistente-pessoal/internal/notionsync"
	"github.com/mlisboa17/assistente-pessoal/internal/orchestrator"
	"github.com/mlisboa17/assistente-pessoal/internal/pipeline"
	"github.com/mlisboa17/assistente-pessoal/internal/validator"
)

// Options select which external services are connected.
type Options struct {
	// Offline skips GCS, BigQuery and Notion. Documents are then extracted,
	// validated and categorized but not stored.
	Offline bool
}

// App holds the wired components. Repo, Storage and Exporter are nil when
// their service is not configured.
type App struct {
	Config      *config.Config
	Metrics     *metrics.Metrics
	Categorizer *categorizer.Categorizer
	Pending     *confirmation.MemoryStore
	Repo        *infra.Repository
	Storage     *gcsuploader.Storage
	Exporter    *notionsync.Exporter
	Processor   *pipeline.Processor

	closers []func() error
}

// New connects the configured services and builds the processor.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger.FromContext(ctx)
	m := metrics.Get()

	a := &App{
		Config:      cfg,
		Metrics:     m,
		Categorizer: categorizer.New(cfg.Categorizer, categorizer.DefaultKeywords()),
		Pending: confirmation.NewMemoryStore(func(n int) {
			m.PendingConfirmation.Set(float64(n))
		}),
	}

	backends, err := NewBackends(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Extractor:     orchestrator.New(cfg.Extraction, backends, orchestrator.WithMetrics(m)),
		Validator:     validator.New(cfg.Validation, nil),
		Categorizer:   a.Categorizer,
		Confirmations: a.Pending,
		Metrics:       m,
		Clock:         time.Now,
	}

	if !opts.Offline {
		if err := a.connect(ctx, &deps); err != nil {
			_ = a.Close()
			return nil, err
		}
	} else {
		log.Info().Msg("Running offline: documents will not be stored")
	}

	a.Processor = pipeline.NewProcessor(deps)
	return a, nil
}

func (a *App) connect(ctx context.Context, deps *pipeline.Deps) error {
	log := logger.FromContext(ctx)
	cfg := a.Config

	storage, err := gcsuploader.NewStorage(ctx)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	a.Storage = storage
	a.closers = append(a.closers, storage.Close)
	deps.Fetcher = storage

	if cfg.GCP.ProjectID != "" {
		repo, err := infra.NewRepository(ctx, cfg.GCP)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		a.Repo = repo
		a.closers = append(a.closers, repo.Close)
		deps.Documents = repo
		deps.Runs = repo
	} else {
		log.Warn().Msg("No GCP project configured - documents will not be stored")
	}

	if token := cfg.Notion.Token.Value(); token != "" && cfg.Notion.DatabaseID != "" {
		a.Exporter = notionsync.NewExporter(notionsync.NewNotionClient(token, cfg.Notion.DatabaseID))
		deps.Exporter = a.Exporter
		deps.Reminders = a.Exporter
	}
	return nil
}

// Close releases the external clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewBackends builds every extraction backend. The vision backend is left
// out when disabled; the orchestrator then records it as skipped.
func NewBackends(ctx context.Context, cfg *config.Config) (map[domain.Method]backend.Backend, error) {
	ocr := backend.NewOCR(nil, cfg.OCR)
	backends := map[domain.Method]backend.Backend{
		domain.MethodTextLayer:          backend.NewTextLayer(backend.ReadPDFText, cfg.Extraction.MinTextPerPage),
		domain.MethodOCR:                ocr,
		domain.MethodPatternSpecialized: backend.NewSpecialized(nil, cfg.OCR.Zbarimg, ocr),
	}

	if cfg.Vision.Enabled {
		submitter, err := backend.NewGeminiSubmitter(ctx, cfg.Vision)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		backends[domain.MethodVisionAI] = backend.NewVision(submitter, cfg.Vision.RequestsPerMinute)
	}
	return backends, nil
}
