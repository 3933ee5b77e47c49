// Package gemini generates report content with Gemini on Vertex AI.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/generate"
)

// ContentGenerator is the slice of *genai.GenerativeModel we call.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// ModelFactory returns a model configured with the given system instruction.
type ModelFactory func(systemPrompt string) ContentGenerator

type Config struct {
	ProjectID   string
	Location    string
	Model       string
	Temperature float32
}

type Generator struct {
	newModel  ModelFactory
	modelName string
	templates generate.Templates
	logger    *slog.Logger
	close     func() error
}

var _ generate.Generator = (*Generator)(nil)

// New connects to Vertex AI. Close releases the client.
func New(ctx context.Context, cfg Config, templates generate.Templates, logger *slog.Logger) (*Generator, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("gemini: project id and location cannot be empty")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	factory := func(systemPrompt string) ContentGenerator {
		model := client.GenerativeModel(cfg.Model)
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
		model.GenerationConfig = genai.GenerationConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr(cfg.Temperature),
		}
		return model
	}
	g := NewWithFactory(factory, cfg.Model, templates, logger)
	g.close = client.Close
	return g, nil
}

// NewWithFactory builds a generator over any model source.
func NewWithFactory(factory ModelFactory, modelName string, templates generate.Templates, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if templates == nil {
		templates = generate.DefaultTemplates()
	}
	return &Generator{newModel: factory, modelName: modelName, templates: templates, logger: logger}
}

func (g *Generator) Close() error {
	if g.close != nil {
		return g.close()
	}
	return nil
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
		"provider", "gemini",
		"model", g.modelName,
		"kind", kind,
		"documents", len(docs),
	)

	model := g.newModel(generate.BuildSystemPrompt(kind, tmpl) + "\n\n" + generate.SchemaPrompt(tmpl))
	resp, err := model.GenerateContent(ctx, genai.Text(generate.BuildUserPrompt(kind, docs)))
	if err != nil {
		g.logger.Error("llm.generate.call_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("%w: gemini: %w", generate.ErrGeneration, err)
	}

	answer := responseText(resp)
	if answer == "" {
		return "", fmt.Errorf("%w: gemini returned an empty response", generate.ErrGeneration)
	}
	sections, err := generate.DecodeSections(answer, tmpl, g.logger.With("req_id", rid))
	if err != nil {
		return "", err
	}
	g.logger.Info("llm.generate.ok",
		"req_id", rid,
		"provider", "gemini",
		"sections", len(sections),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return generate.Render(kind, sections), nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
