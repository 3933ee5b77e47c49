package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/export"
)

func newExportCmd(e *env) *cobra.Command {
	var (
		xlsxPath string
		reportID string
		outDir   string
		tmpl     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the index workbook or a report text file",
		Long: `Export an XLSX index of every document and report, or one report as a
text file named after its title.

Examples:
  reportai export --xlsx index.xlsx
  reportai export --xlsx index.xlsx --template detailed
  reportai export --report report_0192... --out ./downloads`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (xlsxPath == "") == (reportID == "") {
				return errors.New("exactly one of --xlsx or --report is required")
			}
			t := e.app.Store.Settings().ExportTemplate
			if tmpl != "" {
				t = constants.ExportTemplate(tmpl)
			}

			if xlsxPath != "" {
				b, err := e.app.Export.IndexXLSX(e.app.Store.Snapshot(), t)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxPath, b, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", xlsxPath, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", xlsxPath)
				return nil
			}

			r, ok := e.app.Store.Report(reportID)
			if !ok {
				return fmt.Errorf("report %q: %w", reportID, common.ErrNotFound)
			}
			if !t.Valid() {
				return fmt.Errorf("unknown template %q", t)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", outDir, err)
			}
			path := filepath.Join(outDir, export.FileName(r.Title, "txt"))
			if err := os.WriteFile(path, []byte(export.ReportText(r, t)), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the index workbook here")
	cmd.Flags().StringVar(&reportID, "report", "", "report id to export as text")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory for the report text file")
	cmd.Flags().StringVar(&tmpl, "template", "", "minimal, standard or detailed (default from settings)")
	return cmd
}
