package store

import (
	"context"
	"slices"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/persistence"
)

// Remove deletes a document or report. Removing a missing id is a no-op.
func (s *Store) Remove(ctx context.Context, kind constants.EntityKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	next := shallow(cur)
	switch kind {
	case constants.EntityDocument:
		i := cur.DocumentIndex(id)
		if i < 0 {
			return nil
		}
		next.Documents = slices.Delete(next.Documents, i, i+1)
	case constants.EntityReport:
		i := cur.ReportIndex(id)
		if i < 0 {
			return nil
		}
		next.Reports = slices.Delete(next.Reports, i, i+1)
	default:
		return common.ValidationError{Field: "kind", Value: kind, Message: "only documents and reports can be removed"}
	}

	s.logger.Debug("store.remove", "kind", kind, "id", id)
	return s.commit(ctx, next, persistence.Change{Kind: kind, ID: id, Removed: true})
}
