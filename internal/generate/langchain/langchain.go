// Package langchain generates report content through langchaingo models
// (Anthropic Claude and Ollama).
package langchain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/generate"
)

// Generator wraps a langchaingo model.
type Generator struct {
	llm         llms.Model
	provider    string
	modelName   string
	temperature float64
	jsonMode    bool
	templates   generate.Templates
	logger      *slog.Logger
}

var _ generate.Generator = (*Generator)(nil)

type Option func(*Generator)

func WithTemperature(t float32) Option {
	return func(g *Generator) { g.temperature = float64(t) }
}

func WithTemplates(ts generate.Templates) Option {
	return func(g *Generator) {
		if ts != nil {
			g.templates = ts
		}
	}
}

// New wraps an already constructed model; provider and modelName are only
// used for logging.
func New(model llms.Model, provider, modelName string, logger *slog.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{
		llm:       model,
		provider:  provider,
		modelName: modelName,
		templates: generate.DefaultTemplates(),
		logger:    logger,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// NewAnthropic creates a Claude backed generator.
func NewAnthropic(apiKey, modelName string, logger *slog.Logger, opts ...Option) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key required")
	}
	model, err := anthropic.New(
		anthropic.WithToken(apiKey),
		anthropic.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("create anthropic model: %w", err)
	}
	return New(model, "claude", modelName, logger, opts...), nil
}

// NewOllama creates a generator against a local Ollama server.
func NewOllama(serverURL, modelName string, logger *slog.Logger, opts ...Option) (*Generator, error) {
	model, err := ollama.New(
		ollama.WithModel(modelName),
		ollama.WithServerURL(serverURL),
		ollama.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama model: %w", err)
	}
	g := New(model, "ollama", modelName, logger, opts...)
	g.jsonMode = true
	return g, nil
}

func (g *Generator) Generate(ctx context.Context, kind constants.ReportKind, docs []generate.DocumentSummary) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	tmpl, err := g.templates.For(kind)
	if err != nil {
		return "", err
	}

	g.logger.Info("llm.generate.start",
		"req_id", rid,
		"provider", g.provider,
		"model", g.modelName,
		"kind", kind,
		"documents", len(docs),
	)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, generate.BuildSystemPrompt(kind, tmpl)+"\n\n"+generate.SchemaPrompt(tmpl)),
		llms.TextParts(llms.ChatMessageTypeHuman, generate.BuildUserPrompt(kind, docs)+"\n\nReturn ONLY JSON that matches the provided schema."),
	}
	callOpts := []llms.CallOption{llms.WithTemperature(g.temperature)}
	if g.jsonMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	resp, err := g.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		g.logger.Error("llm.generate.call_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("%w: %s: %w", generate.ErrGeneration, g.provider, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", generate.ErrGeneration, g.provider)
	}

	sections, err := generate.DecodeSections(resp.Choices[0].Content, tmpl, g.logger.With("req_id", rid))
	if err != nil {
		return "", err
	}
	g.logger.Info("llm.generate.ok",
		"req_id", rid,
		"provider", g.provider,
		"sections", len(sections),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return generate.Render(kind, sections), nil
}
