package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/async"
	"github.com/joseph-ayodele/reportai/internal/report"
)

func newGenerateCmd(e *env) *cobra.Command {
	var (
		docs       []string
		kind       string
		title      string
		background bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a report from completed documents",
		Long: `Generate a report over the given documents. Documents that are not
completed are skipped; with no --docs every completed document is used.
The kind defaults to the one in settings.

Examples:
  reportai generate
  reportai generate --docs doc_1,doc_2 --kind analysis
  reportai generate --kind summary --title "Weekly digest" --async`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(docs) == 0 {
				for _, d := range e.app.Store.Documents() {
					if d.Ready() {
						docs = append(docs, d.ID)
					}
				}
			}
			req := report.Request{DocumentIDs: docs, Kind: constants.ReportKind(kind), Title: title}

			if !background {
				r, err := e.app.Reports.Generate(ctx, req)
				if r.ID != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s  %s (%d pages)\n", r.ID, r.Status, r.Title, r.PageEstimate)
				}
				return err
			}

			r, err := e.app.Reports.Start(ctx, req)
			if err != nil {
				if r.ID != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s  %s\n", r.ID, r.Status, r.Title)
				}
				return err
			}
			if err := e.app.Queue.Enqueue(ctx, async.Job{ReportID: r.ID}); err != nil {
				r, err = e.app.Reports.Abort(ctx, r.ID, fmt.Errorf("enqueue: %w", err))
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s  %s\n", r.ID, r.Status, r.Title)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  queued  %s\n", r.ID, r.Title)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&docs, "docs", nil, "document ids (default: all completed)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "technical, analysis, summary or custom")
	cmd.Flags().StringVarP(&title, "title", "t", "", "report title")
	cmd.Flags().BoolVar(&background, "async", false, "generate on the background queue")
	return cmd
}
