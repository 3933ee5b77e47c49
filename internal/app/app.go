// Package app wires configuration into a ready-to-use store, pipelines and
// background queue.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/async"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/export"
	"github.com/joseph-ayodele/reportai/internal/extract"
	"github.com/joseph-ayodele/reportai/internal/generate"
	"github.com/joseph-ayodele/reportai/internal/generate/gemini"
	"github.com/joseph-ayodele/reportai/internal/generate/langchain"
	"github.com/joseph-ayodele/reportai/internal/generate/openai"
	"github.com/joseph-ayodele/reportai/internal/ingest"
	"github.com/joseph-ayodele/reportai/internal/persistence"
	"github.com/joseph-ayodele/reportai/internal/persistence/jsonfile"
	"github.com/joseph-ayodele/reportai/internal/persistence/s3store"
	"github.com/joseph-ayodele/reportai/internal/persistence/sqlstore"
	"github.com/joseph-ayodele/reportai/internal/report"
	"github.com/joseph-ayodele/reportai/internal/store"
)

type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	Store     *store.Store
	Extractor *extract.Extractor
	Generator *generate.Router
	Ingest    *ingest.Pipeline
	Reports   *report.Pipeline
	Queue     *async.ReportQueue
	Export    *export.Service

	persister persistence.Persister
	closers   []func() error
}

// New opens the configured medium, loads the store and builds every
// pipeline. A load failure does not fail New; it is reported by
// Store.LoadError and the store starts empty.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p, err := OpenPersister(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, persister: p}

	a.Store = store.New(ctx, p, logger)
	if err := a.Store.LoadError(); err != nil {
		logger.Warn("app.store.load_failed", "backend", cfg.Store.Backend, "error", err)
	}

	a.Extractor = extract.New(extract.Config{
		Pdftotext: cfg.Extract.Pdftotext,
		Antiword:  cfg.Extract.Antiword,
		Xls2csv:   cfg.Extract.Xls2csv,
		TempDir:   cfg.Extract.TempDir,
		Timeout:   cfg.Extract.Timeout,
	}, logger)

	templates, err := generate.LoadTemplates(cfg.LLM.TemplatesFile)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	backends, closers := BuildGenerators(ctx, cfg, templates, logger)
	a.closers = closers
	a.Generator = generate.NewRouter(func() constants.Backend {
		return a.Store.Settings().Backend
	}, backends, logger)

	a.Ingest = ingest.New(a.Store, a.Extractor, logger)
	a.Reports = report.New(a.Store, a.Generator, logger)
	a.Queue = async.NewReportQueue(a.Reports, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.Timeout),
	)
	a.Export = export.NewService(logger)

	logger.Info("app.ready",
		"store_backend", cfg.Store.Backend,
		"documents", len(a.Store.Documents()),
		"reports", len(a.Store.Reports()),
		"generator", a.Store.Settings().Backend,
	)
	return a, nil
}

// OpenPersister opens the medium named by cfg.Store.Backend.
func OpenPersister(ctx context.Context, cfg *common.Config, logger *slog.Logger) (persistence.Persister, error) {
	switch cfg.Store.Backend {
	case common.StoreSQLite:
		return sqlstore.OpenSQLite(ctx, cfg.Store.SQLitePath, logger)
	case common.StorePostgres:
		return sqlstore.OpenPostgres(ctx, sqlstore.PostgresConfig{
			DSN:              cfg.Store.DSN,
			MaxConns:         cfg.Store.MaxConns,
			MinConns:         cfg.Store.MinConns,
			MaxConnLifetime:  cfg.Store.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Store.MaxConnIdleTime,
			DialTimeout:      cfg.Store.DialTimeout,
			StatementTimeout: cfg.Store.StatementTimeout,
		}, logger)
	case common.StoreFile:
		return jsonfile.New(cfg.Store.FilePath, logger), nil
	case common.StoreS3:
		return s3store.Open(ctx, s3store.Config{
			Bucket:    cfg.S3.Bucket,
			Key:       cfg.S3.Key,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q: %w", cfg.Store.Backend, common.ErrInvalidInput)
	}
}

// BuildGenerators constructs every backend the config has credentials for.
// The local backend is always present. Backends that fail to construct are
// logged and left out, so selecting them fails at generation time.
func BuildGenerators(ctx context.Context, cfg *common.Config, templates generate.Templates, logger *slog.Logger) (map[constants.Backend]generate.Generator, []func() error) {
	backends := map[constants.Backend]generate.Generator{
		constants.BackendLocal: generate.NewLocal(templates, logger),
	}
	var closers []func() error
	llm := cfg.LLM

	if llm.OpenAI.APIKey != "" {
		backends[constants.BackendOpenAI] = openai.NewClient(openai.Config{
			APIKey:      llm.OpenAI.APIKey,
			BaseURL:     llm.OpenAI.BaseURL,
			Model:       llm.OpenAI.Model,
			Temperature: llm.Temperature,
			Timeout:     llm.Timeout,
		}, templates, logger)
	}
	if llm.Anthropic.APIKey != "" {
		g, err := langchain.NewAnthropic(llm.Anthropic.APIKey, llm.Anthropic.Model, logger,
			langchain.WithTemperature(llm.Temperature), langchain.WithTemplates(templates))
		if err != nil {
			logger.Warn("app.generator.unavailable", "backend", constants.BackendClaude, "error", err)
		} else {
			backends[constants.BackendClaude] = g
		}
	}
	if llm.Ollama.ServerURL != "" {
		g, err := langchain.NewOllama(llm.Ollama.ServerURL, llm.Ollama.Model, logger,
			langchain.WithTemperature(llm.Temperature), langchain.WithTemplates(templates))
		if err != nil {
			logger.Warn("app.generator.unavailable", "backend", constants.BackendOllama, "error", err)
		} else {
			backends[constants.BackendOllama] = g
		}
	}
	if llm.Vertex.ProjectID != "" {
		g, err := gemini.New(ctx, gemini.Config{
			ProjectID:   llm.Vertex.ProjectID,
			Location:    llm.Vertex.Location,
			Model:       llm.Vertex.Model,
			Temperature: llm.Temperature,
		}, templates, logger)
		if err != nil {
			logger.Warn("app.generator.unavailable", "backend", constants.BackendGemini, "error", err)
		} else {
			backends[constants.BackendGemini] = g
			closers = append(closers, g.Close)
		}
	}
	return backends, closers
}

// Close drains the queue, then releases generators and the medium.
func (a *App) Close(ctx context.Context) error {
	a.Queue.Shutdown(ctx)
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	if err := a.persister.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
