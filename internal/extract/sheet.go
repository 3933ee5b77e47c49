package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX renders every sheet as a titled block of tab-separated rows.
func extractXLSX(raw []byte) (Result, error) {
	res := Result{Method: "xlsx"}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return res, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return res, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		res.Pages++
		if len(rows) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Sheet: " + sheet)
		for _, row := range rows {
			b.WriteByte('\n')
			b.WriteString(strings.Join(row, "\t"))
		}
	}
	res.Text = b.String()
	return res, nil
}

// extractXLS converts legacy BIFF workbooks with xls2csv; sheets come back
// separated by form feeds.
func (e *Extractor) extractXLS(ctx context.Context, raw []byte) (Result, error) {
	res := Result{Method: "xls2csv"}
	err := e.withTempFile(raw, ".xls", func(path string) error {
		out, errb, err := e.runner.Run(ctx, e.cfg.Xls2csv, path)
		if err != nil {
			if msg := strings.TrimSpace(string(errb)); msg != "" {
				res.Warnings = append(res.Warnings, msg)
			}
			return fmt.Errorf("xls2csv: %w", err)
		}
		res.Text = strings.TrimRight(string(out), "\f\n")
		return nil
	})
	if err != nil {
		return res, err
	}
	res.Pages = 1 + strings.Count(res.Text, "\f")
	return res, nil
}
