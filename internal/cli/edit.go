package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/report"
)

func newEditCmd(e *env) *cobra.Command {
	var (
		title       string
		kind        string
		contentFile string
		draft       bool
	)
	cmd := &cobra.Command{
		Use:   "edit <report-id>",
		Short: "Change a report's title, kind or content",
		Long: `Edit a generated report. Content is read from a file, or from stdin
when the file is "-". The report is saved as completed unless --draft is set.

Examples:
  reportai edit report_0192... --title "Q3 review"
  reportai edit report_0192... --content-file revised.md
  cat revised.md | reportai edit report_0192... --content-file - --draft`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ed report.Edit
			if cmd.Flags().Changed("title") {
				ed.Title = &title
			}
			if cmd.Flags().Changed("kind") {
				k := constants.ReportKind(kind)
				ed.Kind = &k
			}
			if contentFile != "" {
				b, err := readContent(cmd.InOrStdin(), contentFile)
				if err != nil {
					return err
				}
				s := string(b)
				ed.Content = &s
			}
			status := constants.ReportCompleted
			if draft {
				status = constants.ReportDraft
			}
			ed.Status = &status

			r, err := e.app.Reports.Edit(cmd.Context(), args[0], ed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s  %s (%d pages)\n", r.ID, r.Status, r.Title, r.PageEstimate)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "new kind")
	cmd.Flags().StringVar(&contentFile, "content-file", "", `file with the new content ("-" for stdin)`)
	cmd.Flags().BoolVar(&draft, "draft", false, "keep the report as a draft")
	return cmd
}

func readContent(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return b, nil
}
