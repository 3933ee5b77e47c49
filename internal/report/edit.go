package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/entity"
)

// Edit is a user change to a generated report. Nil fields are untouched.
// Status may only be draft (autosave) or completed (explicit save).
type Edit struct {
	Title   *string
	Kind    *constants.ReportKind
	Content *string
	Status  *constants.ReportStatus
}

func (e Edit) IsZero() bool {
	return e.Title == nil && e.Kind == nil && e.Content == nil && e.Status == nil
}

// Edit applies e to the report with the given id. Reports still generating
// cannot be edited. A content change recomputes the page estimate.
func (p *Pipeline) Edit(ctx context.Context, id string, e Edit) (entity.Report, error) {
	r, ok := p.store.Report(id)
	if !ok {
		return entity.Report{}, fmt.Errorf("report %q: %w", id, common.ErrNotFound)
	}
	if r.Status == constants.ReportProcessing {
		return r, fmt.Errorf("report %q is still generating: %w", id, common.ErrInvalidTransition)
	}
	if e.IsZero() {
		return r, nil
	}

	var u entity.ReportUpdate
	if e.Title != nil {
		title := strings.TrimSpace(*e.Title)
		if err := validateTitle(title); err != nil {
			return r, err
		}
		u.Title = &title
	}
	if e.Kind != nil {
		kind, ok := constants.ParseReportKind(string(*e.Kind))
		if !ok {
			return r, common.ValidationError{Field: "kind", Value: *e.Kind, Message: "unknown report kind"}
		}
		u.Kind = &kind
	}
	if e.Content != nil {
		u.Content = entity.Ptr(*e.Content)
		u.PageEstimate = entity.Ptr(EstimatePages(*e.Content))
	}
	if e.Status != nil {
		if *e.Status != constants.ReportDraft && *e.Status != constants.ReportCompleted {
			return r, common.ValidationError{Field: "status", Value: *e.Status, Message: "edits may only set draft or completed"}
		}
		u.Status = e.Status
	}

	updated, err := p.store.ApplyReport(ctx, id, u)
	if err != nil {
		return updated, fmt.Errorf("edit report %s: %w", id, err)
	}
	p.logger.Info("report.edit", "report_id", id, "status", updated.Status,
		"content_changed", e.Content != nil, "pages", updated.PageEstimate)
	return updated, nil
}
