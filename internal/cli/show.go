package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/export"
)

func newShowCmd(e *env) *cobra.Command {
	var tmpl string
	cmd := &cobra.Command{
		Use:   "show <report-id>",
		Short: "Print a report",
		Long: `Print a report as plain text. The export template from settings decides
how much metadata surrounds the content unless --template is given.

Examples:
  reportai show report_0192...
  reportai show report_0192... --template minimal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := e.app.Store.Report(args[0])
			if !ok {
				return fmt.Errorf("report %q: %w", args[0], common.ErrNotFound)
			}
			t := e.app.Store.Settings().ExportTemplate
			if tmpl != "" {
				t = constants.ExportTemplate(tmpl)
				if !t.Valid() {
					return fmt.Errorf("unknown template %q", tmpl)
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), export.ReportText(r, t))
			return nil
		},
	}
	cmd.Flags().StringVar(&tmpl, "template", "", "minimal, standard or detailed")
	return cmd
}
