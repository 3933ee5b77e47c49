package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/dbx"
	"github.com/joseph-ayodele/reportai/internal/entity"
)

const upsertDocumentSQL = `
INSERT INTO documents (id, position, name, size_bytes, media_type, checksum, status, uploaded_at, extracted_text, content, error_message)
VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM documents), ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    checksum = excluded.checksum,
    status = excluded.status,
    extracted_text = excluded.extracted_text,
    content = excluded.content,
    error_message = excluded.error_message`

const listDocumentsSQL = `
SELECT id, name, size_bytes, media_type, checksum, status, uploaded_at, extracted_text, content, error_message
FROM documents
ORDER BY position`

func (s *Store) upsertDocument(ctx context.Context, tx dbx.DBTX, d entity.Document) error {
	_, err := tx.ExecContext(ctx, s.rebind(upsertDocumentSQL),
		d.ID,
		d.Name,
		d.SizeBytes,
		d.MediaType,
		d.Checksum,
		string(d.Status),
		d.UploadedAt.UnixNano(),
		nullString(d.ExtractedText),
		nullString(d.Content),
		d.ErrorMessage,
	)
	return err
}

func (s *Store) listDocuments(ctx context.Context, db dbx.DBTX) ([]entity.Document, error) {
	rows, err := db.QueryContext(ctx, listDocumentsSQL)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []entity.Document{}
	for rows.Next() {
		var (
			d          entity.Document
			status     string
			uploadedAt int64
			text, body sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.SizeBytes, &d.MediaType, &d.Checksum, &status, &uploadedAt, &text, &body, &d.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.Status = constants.DocumentStatus(status)
		d.UploadedAt = fromNanos(uploadedAt)
		d.ExtractedText = stringPtr(text)
		d.Content = stringPtr(body)
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
