package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/reportai/internal/entity"
)

const recentReports = 5

func newListCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [documents|reports]",
		Short: "List documents and reports",
		Long: `List stored documents, reports, or both. Without an argument the
listing starts with a summary and the most recent reports.

Examples:
  reportai list
  reportai list reports`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"documents", "reports"},
		RunE: func(cmd *cobra.Command, args []string) error {
			what := ""
			if len(args) == 1 {
				what = args[0]
			}
			out := cmd.OutOrStdout()
			switch what {
			case "":
				printOverview(out, e.app.Store.Snapshot().Overview(recentReports))
				fmt.Fprintln(out)
				listDocuments(out, e.app.Store.Documents(), e.verbose)
				fmt.Fprintln(out)
				listReports(out, e.app.Store.Reports(), e.verbose)
			case "documents":
				listDocuments(out, e.app.Store.Documents(), e.verbose)
			case "reports":
				listReports(out, e.app.Store.Reports(), e.verbose)
			default:
				return fmt.Errorf("unknown collection %q", what)
			}
			return nil
		},
	}
	return cmd
}

func printOverview(w io.Writer, o entity.Overview) {
	fmt.Fprintf(w, "Documents: %d total, %d completed (%d%%), %d in progress, %.1f MB\n",
		o.Documents, o.CompletedDocuments, o.CompletedPercent(), o.PendingDocuments, float64(o.TotalBytes)/(1<<20))
	fmt.Fprintf(w, "Reports:   %d total, %d completed, %d generating\n",
		o.Reports, o.CompletedReports, o.ProcessingReports)
	if len(o.Recent) == 0 {
		return
	}
	fmt.Fprintln(w, "\nRecent reports:")
	for _, r := range o.Recent {
		fmt.Fprintf(w, "- %s  %s  %s\n", r.CreatedAt.Local().Format(time.DateOnly), r.Title, r.Status)
	}
}

func listDocuments(w io.Writer, docs []entity.Document, verbose bool) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return
	}
	fmt.Fprintf(w, "Documents (%d):\n\n", len(docs))
	for _, d := range docs {
		fmt.Fprintf(w, "- %s  %-10s  %s  %d KB\n", d.ID, d.Status, d.Name, (d.SizeBytes+512)/1024)
		if verbose {
			fmt.Fprintf(w, "  uploaded %s  %s\n", d.UploadedAt.Local().Format(time.DateTime), d.MediaType)
			if d.ErrorMessage != "" {
				fmt.Fprintf(w, "  error: %s\n", d.ErrorMessage)
			}
		}
	}
}

func listReports(w io.Writer, reports []entity.Report, verbose bool) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports found.")
		return
	}
	fmt.Fprintf(w, "Reports (%d):\n\n", len(reports))
	for _, r := range reports {
		fmt.Fprintf(w, "- %s  %-10s  %s [%s]\n", r.ID, r.Status, r.Title, r.Kind)
		if verbose {
			fmt.Fprintf(w, "  %d pages  sources: %s\n", r.PageEstimate, r.DocumentSource)
			if r.ErrorMessage != "" {
				fmt.Fprintf(w, "  error: %s\n", r.ErrorMessage)
			}
		}
	}
}
