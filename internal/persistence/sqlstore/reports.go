package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/dbx"
	"github.com/joseph-ayodele/reportai/internal/entity"
)

// document_ids and created_at are never touched by the update branch.
const upsertReportSQL = `
INSERT INTO reports (id, position, title, kind, status, content, document_ids, document_source, page_estimate, error_message, created_at, updated_at)
VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM reports), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    title = excluded.title,
    kind = excluded.kind,
    status = excluded.status,
    content = excluded.content,
    document_source = excluded.document_source,
    page_estimate = excluded.page_estimate,
    error_message = excluded.error_message,
    updated_at = excluded.updated_at`

const listReportsSQL = `
SELECT id, title, kind, status, content, document_ids, document_source, page_estimate, error_message, created_at, updated_at
FROM reports
ORDER BY position`

func (s *Store) upsertReport(ctx context.Context, tx dbx.DBTX, r entity.Report) error {
	ids := r.DocumentIDs
	if ids == nil {
		ids = []string{}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode document ids: %w", err)
	}
	_, err = tx.ExecContext(ctx, s.rebind(upsertReportSQL),
		r.ID,
		r.Title,
		string(r.Kind),
		string(r.Status),
		r.Content,
		string(idsJSON),
		r.DocumentSource,
		r.PageEstimate,
		r.ErrorMessage,
		r.CreatedAt.UnixNano(),
		r.UpdatedAt.UnixNano(),
	)
	return err
}

func (s *Store) listReports(ctx context.Context, db dbx.DBTX) ([]entity.Report, error) {
	rows, err := db.QueryContext(ctx, listReportsSQL)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []entity.Report{}
	for rows.Next() {
		var (
			r                    entity.Report
			kind, status, idsRaw string
			created, updated     int64
		)
		if err := rows.Scan(&r.ID, &r.Title, &kind, &status, &r.Content, &idsRaw, &r.DocumentSource, &r.PageEstimate, &r.ErrorMessage, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if err := json.Unmarshal([]byte(idsRaw), &r.DocumentIDs); err != nil {
			return nil, fmt.Errorf("decode document ids of %s: %w", r.ID, err)
		}
		r.Kind = constants.ReportKind(kind)
		r.Status = constants.ReportStatus(status)
		r.CreatedAt = fromNanos(created)
		r.UpdatedAt = fromNanos(updated)
		out = append(out, r)
	}
	return out, rows.Err()
}
