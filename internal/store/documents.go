package store

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/entity"
	"github.com/joseph-ayodele/reportai/internal/persistence"
)

// InsertDocument adds d at the end of the collection.
func (s *Store) InsertDocument(ctx context.Context, d entity.Document) error {
	if err := validateDocument(d); err != nil {
		return err
	}
	d = d.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if cur.DocumentIndex(d.ID) >= 0 {
		return fmt.Errorf("document %q: %w", d.ID, common.ErrDuplicateID)
	}
	next := shallow(cur)
	next.Documents = append(next.Documents, d)

	s.logger.Debug("store.document.insert", "document_id", d.ID, "status", d.Status)
	return s.commit(ctx, next, persistence.Change{Kind: constants.EntityDocument, ID: d.ID})
}

// ApplyDocument merges u into the document with the given id and returns the result.
func (s *Store) ApplyDocument(ctx context.Context, id string, u entity.DocumentUpdate) (entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	i := cur.DocumentIndex(id)
	if i < 0 {
		return entity.Document{}, fmt.Errorf("document %q: %w", id, common.ErrNotFound)
	}
	old := cur.Documents[i]
	if u.IsZero() {
		return old.Clone(), nil
	}
	if old.Status.IsTerminal() {
		return entity.Document{}, fmt.Errorf("document %q is %s: %w", id, old.Status, common.ErrInvalidTransition)
	}

	d := old.Clone()
	if u.Status != nil {
		if !old.Status.CanTransition(*u.Status) {
			return entity.Document{}, fmt.Errorf("document %q %s -> %s: %w", id, old.Status, *u.Status, common.ErrInvalidTransition)
		}
		d.Status = *u.Status
	}
	if u.ExtractedText != nil {
		d.ExtractedText = entity.Ptr(*u.ExtractedText)
	}
	if u.Content != nil {
		d.Content = entity.Ptr(*u.Content)
	}
	if u.Checksum != nil {
		d.Checksum = *u.Checksum
	}
	if u.ErrorMessage != nil {
		d.ErrorMessage = *u.ErrorMessage
	}
	if err := checkDocumentText(d); err != nil {
		return entity.Document{}, err
	}

	next := shallow(cur)
	next.Documents[i] = d
	s.logger.Debug("store.document.apply", "document_id", id, "from", old.Status, "to", d.Status)
	if err := s.commit(ctx, next, persistence.Change{Kind: constants.EntityDocument, ID: id}); err != nil {
		return d.Clone(), err
	}
	return d.Clone(), nil
}

func validateDocument(d entity.Document) error {
	v := common.NewValidator().
		Field("id", d.ID, common.Required).
		Field("name", d.Name, common.Required).
		Field("media_type", d.MediaType, common.Required).
		Field("size_bytes", d.SizeBytes, common.NonNegative).
		Field("status", d.Status, common.OneOf(
			string(constants.DocumentUploading), string(constants.DocumentProcessing),
			string(constants.DocumentCompleted), string(constants.DocumentError)))
	if err := v.Error(); err != nil {
		return err
	}
	return checkDocumentText(d)
}

// checkDocumentText holds the rule that text and content exist exactly when completed.
func checkDocumentText(d entity.Document) error {
	completed := d.Status == constants.DocumentCompleted
	if (d.ExtractedText != nil) != completed || (d.Content != nil) != completed {
		return common.ValidationError{
			Field:   "extracted_text",
			Value:   d.Status,
			Message: "extracted text and content must be set exactly when the document is completed",
		}
	}
	return nil
}
