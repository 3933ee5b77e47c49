package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/reportai/constants"
)

var testDocs = []DocumentSummary{
	{Name: "q1.txt", SizeBytes: 2048, MediaType: constants.MediaTXT, Text: "Revenue grew in the first quarter."},
	{Name: "q2.csv", SizeBytes: 1000, MediaType: constants.MediaCSV, Text: "region | sales\nnorth | 42"},
}

func TestDefaultTemplates(t *testing.T) {
	ts := DefaultTemplates()

	require.Len(t, ts, len(constants.ReportKinds()))
	tech, err := ts.For(constants.KindTechnical)
	require.NoError(t, err)
	assert.Equal(t, []string{"Executive Summary", "Technical Analysis", "Findings", "Recommendations", "Conclusion"}, tech.Sections)
	assert.Equal(t, "formal and technical", tech.Tone)

	summary, err := ts.For(constants.KindSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Key Points", "Main Findings", "Summary"}, summary.Sections)

	_, err = ts.For("memo")
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestLoadTemplates_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
Summary:
  sections: [TL;DR, Details]
  tone: terse
  focus: the bottom line
`), 0o644))

	ts, err := LoadTemplates(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"TL;DR", "Details"}, ts[constants.KindSummary].Sections)
	assert.Len(t, ts[constants.KindTechnical].Sections, 5)
}

func TestLoadTemplates_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown kind":    "memo:\n  sections: [A]\n",
		"no sections":     "custom:\n  tone: plain\n",
		"not yaml at all": "custom: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadTemplates(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadTemplates(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLocal_FollowsTemplate(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	l := NewLocal(nil, nil, WithClock(func() time.Time { return now }))

	for _, kind := range constants.ReportKinds() {
		t.Run(string(kind), func(t *testing.T) {
			content, err := l.Generate(context.Background(), kind, testDocs)
			require.NoError(t, err)

			tmpl, _ := DefaultTemplates().For(kind)
			assert.True(t, strings.HasPrefix(content, "# "+kind.Title()+" Report\n"))
			last := -1
			for _, h := range tmpl.Sections {
				i := strings.Index(content, "\n## "+h+"\n")
				require.GreaterOrEqual(t, i, 0, "missing section %q", h)
				assert.Greater(t, i, last, "section %q out of order", h)
				last = i
			}
			assert.Equal(t, len(tmpl.Sections), strings.Count(content, "\n## "))
			assert.Contains(t, content, "2026-03-04")
		})
	}
}

func TestLocal_Inventory(t *testing.T) {
	l := NewLocal(nil, nil)

	content, err := l.Generate(context.Background(), constants.KindTechnical, testDocs)
	require.NoError(t, err)
	assert.Contains(t, content, "Document: q1.txt (2KB) - Revenue grew in the first quarter....")
	assert.Contains(t, content, "- Total documents processed: 2")
	assert.Contains(t, content, "- Combined file size: 3KB")
	assert.Contains(t, content, "- Document types: text/plain, text/csv")
}

func TestLocal_Errors(t *testing.T) {
	l := NewLocal(nil, nil)

	_, err := l.Generate(context.Background(), constants.KindSummary, nil)
	assert.ErrorIs(t, err, ErrGeneration)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Generate(ctx, constants.KindSummary, testDocs)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeSections(t *testing.T) {
	tmpl := Template{Sections: []string{"Key Points", "Summary"}}

	tests := []struct {
		name    string
		answer  string
		want    []Section
		wantErr bool
	}{
		{
			name:   "strict",
			answer: `{"sections":[{"heading":"Key Points","body":"a"},{"heading":"Summary","body":"b"}]}`,
			want:   []Section{{"Key Points", "a"}, {"Summary", "b"}},
		},
		{
			name:   "fenced",
			answer: "```json\n{\"sections\":[{\"heading\":\"Key Points\",\"body\":\"a\"},{\"heading\":\"Summary\",\"body\":\"b\"}]}\n```",
			want:   []Section{{"Key Points", "a"}, {"Summary", "b"}},
		},
		{
			name:   "lenient array with synonyms",
			answer: `[{"title":"## key points","content":" a "},{"section":"Summary","text":"b","extra":1}]`,
			want:   []Section{{"Key Points", "a"}, {"Summary", "b"}},
		},
		{
			name:    "wrong order",
			answer:  `{"sections":[{"heading":"Summary","body":"b"},{"heading":"Key Points","body":"a"}]}`,
			wantErr: true,
		},
		{
			name:    "missing section",
			answer:  `{"sections":[{"heading":"Key Points","body":"a"}]}`,
			wantErr: true,
		},
		{
			name:    "unknown heading",
			answer:  `{"sections":[{"heading":"Key Points","body":"a"},{"heading":"Epilogue","body":"b"}]}`,
			wantErr: true,
		},
		{
			name:    "empty body",
			answer:  `{"sections":[{"heading":"Key Points","body":"a"},{"heading":"Summary","body":"  "}]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			answer:  "Here is your report!",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSections(tt.answer, tmpl, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrGeneration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender(t *testing.T) {
	got := Render(constants.KindAnalysis, []Section{{"Overview", "  text\n"}, {"Next Steps", "- go"}})
	assert.Equal(t, "# Analysis Report\n\n## Overview\ntext\n\n## Next Steps\n- go", got)
}

func TestBuildUserPrompt_ClipsLongText(t *testing.T) {
	long := strings.Repeat("é", MaxPromptCharsPerDocument) // two bytes per rune
	p := BuildUserPrompt(constants.KindCustom, []DocumentSummary{{Name: "big.txt", SizeBytes: 10 << 10, MediaType: constants.MediaTXT, Text: long}})

	assert.Contains(t, p, "### Document 1: big.txt (10KB, text/plain)")
	assert.Contains(t, p, "[...truncated]")
	assert.True(t, strings.Contains(p, strings.Repeat("é", MaxPromptCharsPerDocument/2)))
	assert.False(t, strings.Contains(p, strings.Repeat("é", MaxPromptCharsPerDocument/2+1)))
}

func TestBuildSystemPrompt(t *testing.T) {
	tmpl, _ := DefaultTemplates().For(constants.KindAnalysis)
	p := BuildSystemPrompt(constants.KindAnalysis, tmpl)

	assert.Contains(t, p, "analytical and data-driven")
	assert.Contains(t, p, "Overview; Data Analysis; Key Metrics; Insights; Next Steps")
}

func TestRouter(t *testing.T) {
	backend := constants.BackendLocal
	failing := Func(func(context.Context, constants.ReportKind, []DocumentSummary) (string, error) {
		return "", errors.New("quota exceeded")
	})
	r := NewRouter(func() constants.Backend { return backend }, map[constants.Backend]Generator{
		constants.BackendLocal:  NewLocal(nil, nil),
		constants.BackendOpenAI: failing,
	}, nil)

	content, err := r.Generate(context.Background(), constants.KindSummary, testDocs)
	require.NoError(t, err)
	assert.Contains(t, content, "# Summary Report")

	backend = constants.BackendOpenAI
	_, err = r.Generate(context.Background(), constants.KindSummary, testDocs)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Contains(t, err.Error(), "quota exceeded")

	backend = constants.BackendGemini
	_, err = r.Generate(context.Background(), constants.KindSummary, testDocs)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.False(t, r.Has(constants.BackendGemini))
}
