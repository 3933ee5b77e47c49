package store

import (
	"context"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/entity"
	"github.com/joseph-ayodele/reportai/internal/persistence"
)

// UpdateSettings applies a partial settings update.
func (s *Store) UpdateSettings(ctx context.Context, u entity.SettingsUpdate) (entity.Settings, error) {
	v := common.NewValidator()
	if u.Theme != nil {
		v.Field("theme", *u.Theme, common.OneOf(
			string(constants.ThemeLight), string(constants.ThemeDark), string(constants.ThemeSystem)))
	}
	if u.DefaultReportKind != nil {
		v.Field("default_report_kind", *u.DefaultReportKind, common.OneOf(kindNames()...))
	}
	if u.ExportTemplate != nil {
		v.Field("export_template", *u.ExportTemplate, common.OneOf(
			string(constants.ExportMinimal), string(constants.ExportStandard), string(constants.ExportDetailed)))
	}
	if u.Backend != nil {
		v.Field("backend", *u.Backend, common.OneOf(
			string(constants.BackendLocal), string(constants.BackendOpenAI), string(constants.BackendClaude),
			string(constants.BackendGemini), string(constants.BackendOllama)))
	}
	if err := v.Error(); err != nil {
		return entity.Settings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	next := shallow(cur)
	next.Settings = cur.Settings.Apply(u)
	s.logger.Debug("store.settings.update")
	if err := s.commit(ctx, next, persistence.Change{Kind: constants.EntitySettings}); err != nil {
		return next.Settings, err
	}
	return next.Settings, nil
}
