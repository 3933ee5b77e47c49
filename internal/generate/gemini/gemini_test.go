package gemini

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/generate"
)

type fakeModel struct {
	parts []genai.Part
	err   error
	got   []genai.Part
}

func (m *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	m.got = parts
	if m.err != nil {
		return nil, m.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: m.parts}}},
	}, nil
}

var docs = []generate.DocumentSummary{{Name: "sales.xlsx", SizeBytes: 9000, MediaType: constants.MediaXLSX, Text: "Sheet: Q1\nnorth\t42"}}

func TestGenerate(t *testing.T) {
	m := &fakeModel{parts: []genai.Part{
		genai.Text(`{"sections":[{"heading":"Key Points","body":"North sold 42."},`),
		genai.Text(`{"heading":"Main Findings","body":"Stable."},{"heading":"Summary","body":"Fine."}]}`),
	}}
	var system string
	g := NewWithFactory(func(s string) ContentGenerator { system = s; return m }, "gemini-test", nil, nil)

	content, err := g.Generate(context.Background(), constants.KindSummary, docs)
	require.NoError(t, err)
	assert.Contains(t, content, "## Key Points\nNorth sold 42.")
	assert.Contains(t, system, "concise and clear")
	assert.Contains(t, system, "JSON Schema")
	require.Len(t, m.got, 1)
	assert.Contains(t, string(m.got[0].(genai.Text)), "sales.xlsx")
}

func TestGenerate_Failures(t *testing.T) {
	tests := map[string]*fakeModel{
		"call error":     {err: errors.New("permission denied")},
		"empty response": {parts: nil},
		"bad json":       {parts: []genai.Part{genai.Text("no")}},
	}
	for name, m := range tests {
		t.Run(name, func(t *testing.T) {
			g := NewWithFactory(func(string) ContentGenerator { return m }, "gemini-test", nil, nil)
			_, err := g.Generate(context.Background(), constants.KindSummary, docs)
			assert.ErrorIs(t, err, generate.ErrGeneration)
		})
	}
}

func TestNew_RequiresProject(t *testing.T) {
	_, err := New(context.Background(), Config{Location: "us-central1"}, nil, nil)
	assert.Error(t, err)
}
