package langchain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/generate"
)

type fakeModel struct {
	answer string
	err    error

	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, o := range options {
		o(&m.opts)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.answer}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

var docs = []generate.DocumentSummary{{Name: "pump.docx", SizeBytes: 4096, MediaType: constants.MediaDOCX, Text: "Pump rated at 40 bar."}}

func TestGenerate(t *testing.T) {
	m := &fakeModel{answer: "```json\n" + `{"sections":[
		{"heading":"Introduction","body":"Pump overview."},
		{"heading":"Analysis","body":"Rated at 40 bar."},
		{"heading":"Conclusions","body":"Fit for purpose."}]}` + "\n```"}
	g := New(m, "claude", "claude-test", nil, WithTemperature(0.2))

	content, err := g.Generate(context.Background(), constants.KindCustom, docs)
	require.NoError(t, err)
	assert.Equal(t, "# Custom Report\n\n## Introduction\nPump overview.\n\n## Analysis\nRated at 40 bar.\n\n## Conclusions\nFit for purpose.", content)

	require.Len(t, m.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, m.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, m.messages[1].Role)
	assert.InDelta(t, 0.2, m.opts.Temperature, 1e-6)
	assert.False(t, m.opts.JSONMode)
}

func TestGenerate_ModelError(t *testing.T) {
	g := New(&fakeModel{err: errors.New("rate limited")}, "ollama", "llama", nil)

	_, err := g.Generate(context.Background(), constants.KindCustom, docs)
	assert.ErrorIs(t, err, generate.ErrGeneration)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGenerate_BadAnswer(t *testing.T) {
	g := New(&fakeModel{answer: "I cannot help with that."}, "claude", "claude-test", nil)

	_, err := g.Generate(context.Background(), constants.KindCustom, docs)
	assert.ErrorIs(t, err, generate.ErrGeneration)
}

func TestNewAnthropic_RequiresKey(t *testing.T) {
	_, err := NewAnthropic("", "claude-test", nil)
	assert.Error(t, err)
}
