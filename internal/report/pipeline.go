// Package report drives ready documents through content generation into
// stored reports, and applies user edits to finished reports.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/entity"
	"github.com/joseph-ayodele/reportai/internal/generate"
)

// WordsPerPage is the divisor for the page estimate.
const WordsPerPage = 500

// Store is the part of the store the pipeline reads and mutates.
type Store interface {
	Document(id string) (entity.Document, bool)
	Report(id string) (entity.Report, bool)
	Settings() entity.Settings
	InsertReport(ctx context.Context, r entity.Report) error
	ApplyReport(ctx context.Context, id string, u entity.ReportUpdate) (entity.Report, error)
}

// Request asks for one report. An empty Kind uses the settings default;
// an empty Title gets "<Kind> Report - <date>".
type Request struct {
	DocumentIDs []string
	Kind        constants.ReportKind
	Title       string
}

type Pipeline struct {
	store     Store
	generator generate.Generator
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Pipeline)

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

func New(store Store, generator generate.Generator, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		store:     store,
		generator: generator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Round(0) },
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Generate creates a report and runs generation to a terminal state.
// On generator failure the report stays in the store with status error and
// a *common.GenerationError is returned together with it.
func (p *Pipeline) Generate(ctx context.Context, req Request) (entity.Report, error) {
	r, err := p.Start(ctx, req)
	if err != nil {
		return r, err
	}
	return p.Finish(ctx, r.ID)
}

// Start selects the ready documents of req and registers a processing
// report over them. Nothing is stored when no requested document is ready.
// When the registering save fails the report is already in memory; it is
// marked error and returned with a *common.GenerationError.
func (p *Pipeline) Start(ctx context.Context, req Request) (entity.Report, error) {
	if err := ctx.Err(); err != nil {
		return entity.Report{}, err
	}
	if len(req.DocumentIDs) == 0 {
		return entity.Report{}, common.ValidationError{Field: "document_ids", Value: req.DocumentIDs, Message: "at least one document is required"}
	}
	kind, err := p.resolveKind(req.Kind)
	if err != nil {
		return entity.Report{}, err
	}

	docs := p.readyDocuments(req.DocumentIDs)
	if len(docs) == 0 {
		p.logger.Warn("report.start.rejected", "requested", len(req.DocumentIDs), "error", common.ErrNoReadyDocuments)
		return entity.Report{}, common.ErrNoReadyDocuments
	}

	now := p.now()
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultTitle(kind, now)
	}
	if err := validateTitle(title); err != nil {
		return entity.Report{}, err
	}
	ids := make([]string, len(docs))
	names := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		names[i] = d.Name
	}
	r := entity.Report{
		ID:             entity.NewReportID(),
		Title:          title,
		Kind:           kind,
		Status:         constants.ReportProcessing,
		DocumentIDs:    ids,
		DocumentSource: strings.Join(names, ", "),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := p.store.InsertReport(ctx, r); err != nil {
		if !errors.Is(err, common.ErrPersistence) {
			return entity.Report{}, fmt.Errorf("register report: %w", err)
		}
		return p.markError(ctx, r, p.logger.With("report_id", r.ID, "kind", kind), time.Now(), fmt.Errorf("register: %w", err))
	}
	p.logger.Info("report.start", "report_id", r.ID, "kind", kind, "documents", len(ids),
		"skipped", len(req.DocumentIDs)-len(ids))
	return r, nil
}

// markError moves a processing report to error and returns the failure as
// a *common.GenerationError.
func (p *Pipeline) markError(ctx context.Context, r entity.Report, log *slog.Logger, start time.Time, cause error) (entity.Report, error) {
	// the error state must land even when ctx is what failed
	updated, err := p.store.ApplyReport(context.WithoutCancel(ctx), r.ID, entity.ReportUpdate{
		Expect:       entity.Ptr(constants.ReportProcessing),
		Status:       entity.Ptr(constants.ReportError),
		ErrorMessage: entity.Ptr(cause.Error()),
	})
	if updated.ID != "" {
		r = updated
	}
	if err != nil {
		log.Error("report.mark_error_failed", "error", err)
	}
	log.Warn("report.failed", "error", cause, "elapsed_ms", time.Since(start).Milliseconds())
	gerr := &common.GenerationError{ReportID: r.ID, Cause: cause}
	if err != nil {
		return r, errors.Join(gerr, err)
	}
	return r, gerr
}

// Abort moves a processing report that will not be finished to error.
func (p *Pipeline) Abort(ctx context.Context, id string, cause error) (entity.Report, error) {
	r, ok := p.store.Report(id)
	if !ok {
		return entity.Report{}, fmt.Errorf("report %q: %w", id, common.ErrNotFound)
	}
	return p.markError(ctx, r, p.logger.With("report_id", id, "kind", r.Kind), time.Now(), cause)
}

// Finish runs the generator for a processing report and records the outcome.
func (p *Pipeline) Finish(ctx context.Context, id string) (entity.Report, error) {
	r, ok := p.store.Report(id)
	if !ok {
		return entity.Report{}, fmt.Errorf("report %q: %w", id, common.ErrNotFound)
	}
	if r.Status != constants.ReportProcessing {
		return r, fmt.Errorf("report %q is %s: %w", id, r.Status, common.ErrInvalidTransition)
	}
	log := p.logger.With("report_id", id, "kind", r.Kind)
	start := time.Now()

	fail := func(cause error) (entity.Report, error) {
		return p.markError(ctx, r, log, start, cause)
	}

	summaries, err := p.summaries(r.DocumentIDs)
	if err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	content, err := p.generator.Generate(ctx, r.Kind, summaries)
	if err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	pages := EstimatePages(content)
	// only one caller may finish a given report
	done, err := p.store.ApplyReport(ctx, id, entity.ReportUpdate{
		Expect:       entity.Ptr(constants.ReportProcessing),
		Status:       entity.Ptr(constants.ReportCompleted),
		Content:      entity.Ptr(content),
		PageEstimate: entity.Ptr(pages),
	})
	if done.ID != "" {
		r = done
	}
	if err != nil {
		return r, fmt.Errorf("complete report %s: %w", id, err)
	}
	log.Info("report.ok", "pages", pages, "chars", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return r, nil
}

func (p *Pipeline) resolveKind(k constants.ReportKind) (constants.ReportKind, error) {
	if k == "" {
		k = p.store.Settings().DefaultReportKind
	}
	kind, ok := constants.ParseReportKind(string(k))
	if !ok {
		return "", common.ValidationError{Field: "kind", Value: k, Message: "unknown report kind"}
	}
	return kind, nil
}

// readyDocuments keeps the completed documents among ids, in request order
// and without duplicates.
func (p *Pipeline) readyDocuments(ids []string) []entity.Document {
	seen := make(map[string]struct{}, len(ids))
	out := make([]entity.Document, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if d, ok := p.store.Document(id); ok && d.Ready() {
			out = append(out, d)
		}
	}
	return out
}

func (p *Pipeline) summaries(ids []string) ([]generate.DocumentSummary, error) {
	out := make([]generate.DocumentSummary, 0, len(ids))
	for _, id := range ids {
		d, ok := p.store.Document(id)
		if !ok {
			return nil, fmt.Errorf("source document %q: %w", id, common.ErrNotFound)
		}
		text := ""
		switch {
		case d.Content != nil:
			text = *d.Content
		case d.ExtractedText != nil:
			text = *d.ExtractedText
		}
		out = append(out, generate.DocumentSummary{
			Name:      d.Name,
			SizeBytes: d.SizeBytes,
			MediaType: d.MediaType,
			Text:      text,
		})
	}
	return out, nil
}

// MaxTitleLength caps report titles, in runes.
const MaxTitleLength = 200

func validateTitle(title string) error {
	return common.NewValidator().
		Field("title", title, common.Required, common.MaxLength(MaxTitleLength)).
		Error()
}

// DefaultTitle is "<Kind> Report - YYYY-MM-DD".
func DefaultTitle(kind constants.ReportKind, at time.Time) string {
	return fmt.Sprintf("%s Report - %s", kind.Title(), at.Format(time.DateOnly))
}

// EstimatePages is max(1, ceil(words/WordsPerPage)).
func EstimatePages(content string) int {
	words := len(strings.Fields(content))
	pages := (words + WordsPerPage - 1) / WordsPerPage
	return max(pages, 1)
}
