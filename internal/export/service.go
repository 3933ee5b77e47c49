// Package export renders reports and the document/report index into
// downloadable files.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/entity"
)

const (
	SheetDocuments = "Documents"
	SheetReports   = "Reports"
)

// Service produces export bytes from store snapshots.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

type column[T any] struct {
	header string
	width  float64
	value  func(T) any
}

// IndexXLSX returns a workbook with one sheet for documents and one for
// reports. The template picks how many columns each sheet carries.
func (s *Service) IndexXLSX(snap *entity.Snapshot, tmpl constants.ExportTemplate) ([]byte, error) {
	start := time.Now()
	if !tmpl.Valid() {
		return nil, fmt.Errorf("unknown export template %q", tmpl)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// the default sheet becomes the documents sheet
	if err := f.SetSheetName(f.GetSheetName(0), SheetDocuments); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetReports); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	if err := writeSheet(f, SheetDocuments, documentColumns(tmpl), snap.Documents); err != nil {
		return nil, err
	}
	if err := writeSheet(f, SheetReports, reportColumns(tmpl), snap.Reports); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"template", tmpl,
		"documents", len(snap.Documents),
		"reports", len(snap.Reports),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSheet[T any](f *excelize.File, sheet string, cols []column[T], rows []T) error {
	for i, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, c.header); err != nil {
			return fmt.Errorf("xlsx %s header: %w", sheet, err)
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, name, name, c.width)
	}
	for r, row := range rows {
		for i, c := range cols {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(sheet, cell, c.value(row)); err != nil {
				return fmt.Errorf("xlsx %s row %d: %w", sheet, r+1, err)
			}
		}
	}
	return nil
}

func documentColumns(tmpl constants.ExportTemplate) []column[entity.Document] {
	cols := []column[entity.Document]{
		{"Name", 32, func(d entity.Document) any { return d.Name }},
		{"Status", 12, func(d entity.Document) any { return string(d.Status) }},
	}
	if tmpl == constants.ExportMinimal {
		return cols
	}
	cols = append(cols,
		column[entity.Document]{"Type", 10, func(d entity.Document) any { return formatLabel(d.MediaType) }},
		column[entity.Document]{"Size (KB)", 10, func(d entity.Document) any { return (d.SizeBytes + 512) / 1024 }},
		column[entity.Document]{"Uploaded", 20, func(d entity.Document) any { return d.UploadedAt.UTC().Format(time.DateTime) }},
	)
	if tmpl == constants.ExportStandard {
		return cols
	}
	return append(cols,
		column[entity.Document]{"ID", 44, func(d entity.Document) any { return d.ID }},
		column[entity.Document]{"Checksum", 66, func(d entity.Document) any { return d.Checksum }},
		column[entity.Document]{"Words", 10, func(d entity.Document) any {
			if d.Content == nil {
				return 0
			}
			return len(strings.Fields(*d.Content))
		}},
		column[entity.Document]{"Error", 48, func(d entity.Document) any { return truncate(d.ErrorMessage, 140) }},
	)
}

func reportColumns(tmpl constants.ExportTemplate) []column[entity.Report] {
	cols := []column[entity.Report]{
		{"Title", 40, func(r entity.Report) any { return r.Title }},
		{"Status", 12, func(r entity.Report) any { return string(r.Status) }},
	}
	if tmpl == constants.ExportMinimal {
		return cols
	}
	cols = append(cols,
		column[entity.Report]{"Kind", 12, func(r entity.Report) any { return r.Kind.Title() }},
		column[entity.Report]{"Pages", 8, func(r entity.Report) any { return r.PageEstimate }},
		column[entity.Report]{"Sources", 48, func(r entity.Report) any { return truncate(r.DocumentSource, 140) }},
		column[entity.Report]{"Updated", 20, func(r entity.Report) any { return r.UpdatedAt.UTC().Format(time.DateTime) }},
	)
	if tmpl == constants.ExportStandard {
		return cols
	}
	return append(cols,
		column[entity.Report]{"ID", 44, func(r entity.Report) any { return r.ID }},
		column[entity.Report]{"Created", 20, func(r entity.Report) any { return r.CreatedAt.UTC().Format(time.DateTime) }},
		column[entity.Report]{"Documents", 10, func(r entity.Report) any { return len(r.DocumentIDs) }},
		column[entity.Report]{"Error", 48, func(r entity.Report) any { return truncate(r.ErrorMessage, 140) }},
	)
}

func formatLabel(mediaType string) string {
	if f, ok := constants.FormatForMediaType(mediaType); ok {
		return string(f)
	}
	return mediaType
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
