package store

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/entity"
	"github.com/joseph-ayodele/reportai/internal/persistence"
)

// InsertReport adds r. Every referenced document must exist and be completed
// at the moment of insertion. Zero timestamps are filled from the store clock.
func (s *Store) InsertReport(ctx context.Context, r entity.Report) error {
	if err := validateReport(r); err != nil {
		return err
	}
	r = r.Clone()
	if r.DocumentIDs == nil {
		r.DocumentIDs = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if cur.ReportIndex(r.ID) >= 0 {
		return fmt.Errorf("report %q: %w", r.ID, common.ErrDuplicateID)
	}
	for _, docID := range r.DocumentIDs {
		i := cur.DocumentIndex(docID)
		if i < 0 || !cur.Documents[i].Ready() {
			return fmt.Errorf("report %q references document %q: %w", r.ID, docID, common.ErrNoReadyDocuments)
		}
	}

	now := s.now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	next := shallow(cur)
	next.Reports = append(next.Reports, r)
	s.logger.Debug("store.report.insert", "report_id", r.ID, "status", r.Status, "documents", len(r.DocumentIDs))
	return s.commit(ctx, next, persistence.Change{Kind: constants.EntityReport, ID: r.ID})
}

// ApplyReport merges u into the report with the given id and bumps updated_at.
func (s *Store) ApplyReport(ctx context.Context, id string, u entity.ReportUpdate) (entity.Report, error) {
	if u.Kind != nil && !u.Kind.Valid() {
		return entity.Report{}, common.ValidationError{Field: "kind", Value: *u.Kind, Message: "unknown report kind"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	i := cur.ReportIndex(id)
	if i < 0 {
		return entity.Report{}, fmt.Errorf("report %q: %w", id, common.ErrNotFound)
	}
	old := cur.Reports[i]
	if u.Expect != nil && old.Status != *u.Expect {
		return old.Clone(), fmt.Errorf("report %q is %s, expected %s: %w", id, old.Status, *u.Expect, common.ErrInvalidTransition)
	}
	if u.IsZero() {
		return old.Clone(), nil
	}
	if old.Status == constants.ReportError {
		return entity.Report{}, fmt.Errorf("report %q is %s: %w", id, old.Status, common.ErrInvalidTransition)
	}

	r := old.Clone()
	if u.Status != nil {
		if !old.Status.CanTransition(*u.Status) {
			return entity.Report{}, fmt.Errorf("report %q %s -> %s: %w", id, old.Status, *u.Status, common.ErrInvalidTransition)
		}
		r.Status = *u.Status
	}
	if u.Kind != nil && *u.Kind != old.Kind {
		if old.Status == constants.ReportProcessing {
			return entity.Report{}, fmt.Errorf("report %q kind is fixed while generating: %w", id, common.ErrInvalidTransition)
		}
		r.Kind = *u.Kind
	}
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Content != nil {
		r.Content = *u.Content
	}
	if u.PageEstimate != nil {
		r.PageEstimate = *u.PageEstimate
	}
	if u.ErrorMessage != nil {
		r.ErrorMessage = *u.ErrorMessage
	}
	r.UpdatedAt = s.now()
	if r.UpdatedAt.Before(old.UpdatedAt) {
		r.UpdatedAt = old.UpdatedAt
	}

	next := shallow(cur)
	next.Reports[i] = r
	s.logger.Debug("store.report.apply", "report_id", id, "from", old.Status, "to", r.Status)
	if err := s.commit(ctx, next, persistence.Change{Kind: constants.EntityReport, ID: id}); err != nil {
		return r.Clone(), err
	}
	return r.Clone(), nil
}

func validateReport(r entity.Report) error {
	return common.NewValidator().
		Field("id", r.ID, common.Required).
		Field("kind", r.Kind, common.OneOf(kindNames()...)).
		Field("status", r.Status, common.OneOf(
			string(constants.ReportDraft), string(constants.ReportProcessing),
			string(constants.ReportCompleted), string(constants.ReportError))).
		Error()
}

func kindNames() []string {
	kinds := constants.ReportKinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
