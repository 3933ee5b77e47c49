package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/entity"
	"github.com/joseph-ayodele/reportai/internal/generate"
	"github.com/joseph-ayodele/reportai/internal/persistence"
	"github.com/joseph-ayodele/reportai/internal/persistence/jsonfile"
	"github.com/joseph-ayodele/reportai/internal/store"
)

var testDay = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	p := jsonfile.New(filepath.Join(t.TempDir(), "state.json"), nil)
	return store.New(context.Background(), p, nil)
}

func addDoc(t *testing.T, st *store.Store, name string, status constants.DocumentStatus) string {
	t.Helper()
	d := entity.Document{
		ID:         entity.NewDocumentID(),
		Name:       name,
		SizeBytes:  2048,
		MediaType:  constants.MediaTXT,
		Status:     constants.DocumentUploading,
		UploadedAt: testDay,
	}
	require.NoError(t, st.InsertDocument(context.Background(), d))
	if status == constants.DocumentUploading {
		return d.ID
	}
	_, err := st.ApplyDocument(context.Background(), d.ID, entity.DocumentUpdate{Status: entity.Ptr(constants.DocumentProcessing)})
	require.NoError(t, err)
	switch status {
	case constants.DocumentCompleted:
		text := "text of " + name
		_, err = st.ApplyDocument(context.Background(), d.ID, entity.DocumentUpdate{
			Status: entity.Ptr(status), ExtractedText: &text, Content: &text,
		})
	case constants.DocumentError:
		_, err = st.ApplyDocument(context.Background(), d.ID, entity.DocumentUpdate{
			Status: entity.Ptr(status), ErrorMessage: entity.Ptr("broken"),
		})
	}
	require.NoError(t, err)
	return d.ID
}

func newPipeline(t *testing.T, gen generate.Generator) (*Pipeline, *store.Store) {
	t.Helper()
	st := newStore(t)
	if gen == nil {
		gen = generate.NewLocal(generate.DefaultTemplates(), nil)
	}
	return New(st, gen, nil, WithClock(func() time.Time { return testDay })), st
}

func TestEstimatePages(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  int
	}{
		{"empty", 0, 1},
		{"one word", 1, 1},
		{"exactly one page", 500, 1},
		{"one over", 501, 2},
		{"three pages", 1500, 3},
		{"just past three", 1501, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.TrimSpace(strings.Repeat("word\n ", tt.words))
			assert.Equal(t, tt.want, EstimatePages(content))
		})
	}
}

func TestDefaultTitle(t *testing.T) {
	assert.Equal(t, "Technical Report - 2026-03-14", DefaultTitle(constants.KindTechnical, testDay))
	assert.Equal(t, "Summary Report - 2026-03-14", DefaultTitle(constants.KindSummary, testDay))
}

func TestGenerate_TwoCompletedDocuments(t *testing.T) {
	p, st := newPipeline(t, nil)
	a := addDoc(t, st, "alpha.txt", constants.DocumentCompleted)
	b := addDoc(t, st, "beta.txt", constants.DocumentCompleted)

	r, err := p.Generate(context.Background(), Request{DocumentIDs: []string{a, b}, Kind: constants.KindAnalysis})
	require.NoError(t, err)

	reports := st.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, r, reports[0])
	assert.Equal(t, constants.ReportCompleted, r.Status)
	assert.Equal(t, []string{a, b}, r.DocumentIDs)
	assert.GreaterOrEqual(t, r.PageEstimate, 1)
	assert.Equal(t, EstimatePages(r.Content), r.PageEstimate)
	assert.Equal(t, "Analysis Report - 2026-03-14", r.Title)
	assert.Equal(t, "alpha.txt, beta.txt", r.DocumentSource)
	assert.True(t, strings.HasPrefix(r.Content, "# Analysis Report"))
	assert.Contains(t, r.Content, "alpha.txt")
	assert.Empty(t, r.ErrorMessage)
}

func TestGenerate_NoReadyDocuments(t *testing.T) {
	p, st := newPipeline(t, nil)
	bad := addDoc(t, st, "bad.txt", constants.DocumentError)
	pending := addDoc(t, st, "pending.txt", constants.DocumentUploading)

	tests := map[string][]string{
		"error document":   {bad},
		"pending document": {pending},
		"unknown id":       {"doc_missing"},
	}
	for name, ids := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := p.Generate(context.Background(), Request{DocumentIDs: ids})
			assert.ErrorIs(t, err, common.ErrNoReadyDocuments)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
	assert.Empty(t, st.Reports())
}

func TestGenerate_FiltersToReadyDocuments(t *testing.T) {
	p, st := newPipeline(t, nil)
	ok := addDoc(t, st, "ok.txt", constants.DocumentCompleted)
	bad := addDoc(t, st, "bad.txt", constants.DocumentError)

	r, err := p.Generate(context.Background(), Request{DocumentIDs: []string{bad, ok, ok, "doc_missing"}, Title: "  Mine  "})
	require.NoError(t, err)
	assert.Equal(t, []string{ok}, r.DocumentIDs)
	assert.Equal(t, "ok.txt", r.DocumentSource)
	assert.Equal(t, "Mine", r.Title)
}

func TestGenerate_KindResolution(t *testing.T) {
	var got constants.ReportKind
	gen := generate.Func(func(_ context.Context, kind constants.ReportKind, _ []generate.DocumentSummary) (string, error) {
		got = kind
		return "body", nil
	})
	p, st := newPipeline(t, gen)
	id := addDoc(t, st, "a.txt", constants.DocumentCompleted)

	_, err := p.Generate(context.Background(), Request{DocumentIDs: []string{id}})
	require.NoError(t, err)
	assert.Equal(t, constants.KindTechnical, got)

	_, err = st.UpdateSettings(context.Background(), entity.SettingsUpdate{DefaultReportKind: entity.Ptr(constants.KindSummary)})
	require.NoError(t, err)
	r, err := p.Generate(context.Background(), Request{DocumentIDs: []string{id}})
	require.NoError(t, err)
	assert.Equal(t, constants.KindSummary, got)
	assert.Equal(t, constants.KindSummary, r.Kind)

	_, err = p.Generate(context.Background(), Request{DocumentIDs: []string{id}, Kind: "CUSTOM"})
	require.NoError(t, err)
	assert.Equal(t, constants.KindCustom, got)

	_, err = p.Generate(context.Background(), Request{DocumentIDs: []string{id}, Kind: "poetry"})
	var verr common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Field)

	_, err = p.Generate(context.Background(), Request{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "document_ids", verr.Field)
	assert.Len(t, st.Reports(), 3)
}

func TestGenerate_SummariesCarryDocumentText(t *testing.T) {
	var got []generate.DocumentSummary
	gen := generate.Func(func(_ context.Context, _ constants.ReportKind, docs []generate.DocumentSummary) (string, error) {
		got = docs
		return "ok", nil
	})
	p, st := newPipeline(t, gen)
	a := addDoc(t, st, "a.txt", constants.DocumentCompleted)
	b := addDoc(t, st, "b.txt", constants.DocumentCompleted)

	_, err := p.Generate(context.Background(), Request{DocumentIDs: []string{b, a}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, generate.DocumentSummary{Name: "b.txt", SizeBytes: 2048, MediaType: constants.MediaTXT, Text: "text of b.txt"}, got[0])
	assert.Equal(t, "a.txt", got[1].Name)
}

func TestGenerate_GeneratorFailureLeavesErrorReport(t *testing.T) {
	gen := generate.Func(func(context.Context, constants.ReportKind, []generate.DocumentSummary) (string, error) {
		return "", errors.Join(generate.ErrGeneration, errors.New("model unavailable"))
	})
	p, st := newPipeline(t, gen)
	id := addDoc(t, st, "a.txt", constants.DocumentCompleted)

	r, err := p.Generate(context.Background(), Request{DocumentIDs: []string{id}})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrGenerationFailed)
	assert.ErrorIs(t, err, generate.ErrGeneration)
	var gerr *common.GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, r.ID, gerr.ReportID)

	reports := st.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, constants.ReportError, reports[0].Status)
	assert.Contains(t, reports[0].ErrorMessage, "model unavailable")
	assert.Empty(t, reports[0].Content)
	assert.Equal(t, []string{id}, reports[0].DocumentIDs)
}

func TestGenerate_CancelledDuringGeneration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := generate.Func(func(context.Context, constants.ReportKind, []generate.DocumentSummary) (string, error) {
		cancel()
		return "late content", nil
	})
	p, st := newPipeline(t, gen)
	id := addDoc(t, st, "a.txt", constants.DocumentCompleted)

	_, err := p.Generate(ctx, Request{DocumentIDs: []string{id}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, common.ErrGenerationFailed)
	require.Len(t, st.Reports(), 1)
	assert.Equal(t, constants.ReportError, st.Reports()[0].Status)
	assert.Empty(t, st.Reports()[0].Content)
}

func TestStartFinish(t *testing.T) {
	release := make(chan struct{})
	gen := generate.Func(func(ctx context.Context, _ constants.ReportKind, _ []generate.DocumentSummary) (string, error) {
		<-release
		return "done", nil
	})
	p, st := newPipeline(t, gen)
	id := addDoc(t, st, "a.txt", constants.DocumentCompleted)

	r, err := p.Start(context.Background(), Request{DocumentIDs: []string{id}})
	require.NoError(t, err)
	assert.Equal(t, constants.ReportProcessing, r.Status)
	got, ok := st.Report(r.ID)
	require.True(t, ok)
	assert.Equal(t, constants.ReportProcessing, got.Status)

	_, err = p.Edit(context.Background(), r.ID, Edit{Title: entity.Ptr("x")})
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	close(release)
	done, err := p.Finish(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.ReportCompleted, done.Status)

	_, err = p.Finish(context.Background(), r.ID)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
	_, err = p.Finish(context.Background(), "report_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEdit(t *testing.T) {
	p, st := newPipeline(t, nil)
	id := addDoc(t, st, "a.txt", constants.DocumentCompleted)
	r, err := p.Generate(context.Background(), Request{DocumentIDs: []string{id}})
	require.NoError(t, err)

	long := strings.TrimSpace(strings.Repeat("lorem ", 1200))
	draft, err := p.Edit(context.Background(), r.ID, Edit{
		Content: &long,
		Status:  entity.Ptr(constants.ReportDraft),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.ReportDraft, draft.Status)
	assert.Equal(t, 3, draft.PageEstimate)
	assert.Equal(t, r.CreatedAt, draft.CreatedAt)
	assert.Equal(t, r.DocumentIDs, draft.DocumentIDs)

	saved, err := p.Edit(context.Background(), r.ID, Edit{
		Title:  entity.Ptr("Final"),
		Kind:   entity.Ptr(constants.ReportKind("Summary")),
		Status: entity.Ptr(constants.ReportCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", saved.Title)
	assert.Equal(t, constants.KindSummary, saved.Kind)
	assert.Equal(t, constants.ReportCompleted, saved.Status)
	assert.Equal(t, 3, saved.PageEstimate)

	t.Run("invalid", func(t *testing.T) {
		_, err := p.Edit(context.Background(), r.ID, Edit{Title: entity.Ptr("  ")})
		assert.ErrorIs(t, err, common.ErrValidation)
		_, err = p.Edit(context.Background(), r.ID, Edit{Status: entity.Ptr(constants.ReportError)})
		assert.ErrorIs(t, err, common.ErrValidation)
		_, err = p.Edit(context.Background(), r.ID, Edit{Kind: entity.Ptr(constants.ReportKind("poem"))})
		assert.ErrorIs(t, err, common.ErrValidation)
		_, err = p.Edit(context.Background(), "report_missing", Edit{Title: entity.Ptr("x")})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	after, ok := st.Report(r.ID)
	require.True(t, ok)
	assert.Equal(t, saved, after)
}

func TestEdit_ErrorReportIsFinal(t *testing.T) {
	gen := generate.Func(func(context.Context, constants.ReportKind, []generate.DocumentSummary) (string, error) {
		return "", errors.New("boom")
	})
	p, st := newPipeline(t, gen)
	id := addDoc(t, st, "a.txt", constants.DocumentCompleted)
	r, err := p.Generate(context.Background(), Request{DocumentIDs: []string{id}})
	require.Error(t, err)

	_, err = p.Edit(context.Background(), r.ID, Edit{Title: entity.Ptr("retitled")})
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

// switchDisk saves nowhere and fails every save once broken is set.
type switchDisk struct {
	broken atomic.Bool
}

func (d *switchDisk) Load(context.Context) (*entity.Snapshot, error) { return nil, nil }

func (d *switchDisk) Save(context.Context, *entity.Snapshot, ...persistence.Change) error {
	if d.broken.Load() {
		return errors.New("disk full")
	}
	return nil
}

func (d *switchDisk) Close() error { return nil }

func TestGenerate_SaveFailureOnRegisterLeavesErrorReport(t *testing.T) {
	disk := &switchDisk{}
	st := store.New(context.Background(), disk, nil)
	p := New(st, generate.NewLocal(generate.DefaultTemplates(), nil), nil, WithClock(func() time.Time { return testDay }))
	id := addDoc(t, st, "a.txt", constants.DocumentCompleted)

	disk.broken.Store(true)
	r, err := p.Generate(context.Background(), Request{DocumentIDs: []string{id}})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrPersistence)
	assert.ErrorIs(t, err, common.ErrGenerationFailed)
	require.NotEmpty(t, r.ID)
	assert.Equal(t, constants.ReportError, r.Status)
	assert.Contains(t, r.ErrorMessage, "disk full")

	stored, ok := st.Report(r.ID)
	require.True(t, ok)
	assert.Equal(t, constants.ReportError, stored.Status)
	assert.Empty(t, stored.Content)

	_, err = p.Finish(context.Background(), r.ID)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestFinish_OnlyOneCallerCompletes(t *testing.T) {
	var inside sync.WaitGroup
	inside.Add(2)
	var calls atomic.Int32
	gen := generate.Func(func(context.Context, constants.ReportKind, []generate.DocumentSummary) (string, error) {
		n := calls.Add(1)
		inside.Done()
		inside.Wait()
		return fmt.Sprintf("content %d", n), nil
	})
	p, st := newPipeline(t, gen)
	id := addDoc(t, st, "a.txt", constants.DocumentCompleted)
	r, err := p.Start(context.Background(), Request{DocumentIDs: []string{id}})
	require.NoError(t, err)

	type outcome struct {
		report entity.Report
		err    error
	}
	results := make(chan outcome, 2)
	for range 2 {
		go func() {
			rep, err := p.Finish(context.Background(), r.ID)
			results <- outcome{rep, err}
		}()
	}

	var won []entity.Report
	var lost []error
	for range 2 {
		o := <-results
		if o.err == nil {
			won = append(won, o.report)
		} else {
			lost = append(lost, o.err)
		}
	}
	require.Len(t, won, 1)
	require.Len(t, lost, 1)
	assert.ErrorIs(t, lost[0], common.ErrInvalidTransition)

	stored, ok := st.Report(r.ID)
	require.True(t, ok)
	assert.Equal(t, constants.ReportCompleted, stored.Status)
	assert.Equal(t, won[0].Content, stored.Content)
}

func TestTitleLength(t *testing.T) {
	p, st := newPipeline(t, nil)
	id := addDoc(t, st, "a.txt", constants.DocumentCompleted)

	long := strings.Repeat("é", MaxTitleLength+1)
	_, err := p.Start(context.Background(), Request{DocumentIDs: []string{id}, Title: long})
	require.ErrorIs(t, err, common.ErrValidation)
	var verr common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
	assert.Empty(t, st.Reports())

	r, err := p.Generate(context.Background(), Request{DocumentIDs: []string{id}, Title: long[:2*MaxTitleLength]})
	require.NoError(t, err)
	assert.Equal(t, MaxTitleLength, utf8.RuneCountInString(r.Title))

	_, err = p.Edit(context.Background(), r.ID, Edit{Title: &long})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAbort(t *testing.T) {
	p, st := newPipeline(t, nil)
	id := addDoc(t, st, "a.txt", constants.DocumentCompleted)
	r, err := p.Start(context.Background(), Request{DocumentIDs: []string{id}})
	require.NoError(t, err)

	aborted, err := p.Abort(context.Background(), r.ID, errors.New("queue closed"))
	assert.ErrorIs(t, err, common.ErrGenerationFailed)
	assert.Equal(t, constants.ReportError, aborted.Status)
	assert.Equal(t, "queue closed", aborted.ErrorMessage)

	_, err = p.Finish(context.Background(), r.ID)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
	_, err = p.Abort(context.Background(), "report_missing", errors.New("x"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}
