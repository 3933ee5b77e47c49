package entity

import "github.com/joseph-ayodele/reportai/constants"

// Settings is the flat user configuration record.
type Settings struct {
	Theme             constants.Theme          `json:"theme"`
	AutoSave          bool                     `json:"auto_save"`
	DefaultReportKind constants.ReportKind     `json:"default_report_kind"`
	ExportTemplate    constants.ExportTemplate `json:"export_template"`
	Backend           constants.Backend        `json:"backend"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:             constants.ThemeSystem,
		AutoSave:          true,
		DefaultReportKind: constants.KindTechnical,
		ExportTemplate:    constants.ExportStandard,
		Backend:           constants.BackendLocal,
	}
}

type SettingsUpdate struct {
	Theme             *constants.Theme
	AutoSave          *bool
	DefaultReportKind *constants.ReportKind
	ExportTemplate    *constants.ExportTemplate
	Backend           *constants.Backend
}

// Apply returns s with every non-nil field of u applied.
func (s Settings) Apply(u SettingsUpdate) Settings {
	if u.Theme != nil {
		s.Theme = *u.Theme
	}
	if u.AutoSave != nil {
		s.AutoSave = *u.AutoSave
	}
	if u.DefaultReportKind != nil {
		s.DefaultReportKind = *u.DefaultReportKind
	}
	if u.ExportTemplate != nil {
		s.ExportTemplate = *u.ExportTemplate
	}
	if u.Backend != nil {
		s.Backend = *u.Backend
	}
	return s
}
