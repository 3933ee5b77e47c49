package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/dbx"
	"github.com/joseph-ayodele/reportai/internal/entity"
)

const upsertSettingsSQL = `
INSERT INTO settings (id, theme, auto_save, default_report_kind, export_template, backend)
VALUES (1, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    theme = excluded.theme,
    auto_save = excluded.auto_save,
    default_report_kind = excluded.default_report_kind,
    export_template = excluded.export_template,
    backend = excluded.backend`

func (s *Store) upsertSettings(ctx context.Context, tx dbx.DBTX, st entity.Settings) error {
	_, err := tx.ExecContext(ctx, s.rebind(upsertSettingsSQL),
		string(st.Theme),
		st.AutoSave,
		string(st.DefaultReportKind),
		string(st.ExportTemplate),
		string(st.Backend),
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (s *Store) getSettings(ctx context.Context, db dbx.DBTX) (entity.Settings, bool, error) {
	var (
		st                                   entity.Settings
		theme, kind, exportTemplate, backend string
	)
	err := db.QueryRowContext(ctx,
		`SELECT theme, auto_save, default_report_kind, export_template, backend FROM settings WHERE id = 1`,
	).Scan(&theme, &st.AutoSave, &kind, &exportTemplate, &backend)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Settings{}, false, nil
	}
	if err != nil {
		return entity.Settings{}, false, fmt.Errorf("query settings: %w", err)
	}
	st.Theme = constants.Theme(theme)
	st.DefaultReportKind = constants.ReportKind(kind)
	st.ExportTemplate = constants.ExportTemplate(exportTemplate)
	st.Backend = constants.Backend(backend)
	return st, true, nil
}
