package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/reportai/internal/ingest"
)

func newIngestCmd(e *env) *cobra.Command {
	var includeHidden bool
	cmd := &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Ingest files or directories",
		Long: `Ingest files in the order given. Directories are walked and every
supported file inside is ingested in walk order.

The batch stops at the first file that fails; files before it stay stored.

Examples:
  reportai ingest notes.txt budget.xlsx
  reportai ingest ./inbox
  reportai ingest ./inbox --include-hidden`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var files []ingest.File
			for _, p := range args {
				st, err := os.Stat(p)
				if err != nil {
					return err
				}
				if st.IsDir() {
					found, err := ingest.FilesFromDir(ctx, p, !includeHidden)
					if err != nil {
						return err
					}
					files = append(files, found...)
					continue
				}
				f, err := ingest.FileFromPath(p)
				if err != nil {
					return err
				}
				files = append(files, f)
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No supported files found.")
				return nil
			}

			results, err := e.app.Ingest.Ingest(ctx, files)
			printResults(cmd.OutOrStdout(), results)
			if err != nil {
				return fmt.Errorf("ingest stopped after %d of %d files: %w", len(results), len(files), err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "also ingest hidden files and directories")
	return cmd
}

func printResults(w io.Writer, results []ingest.Result) {
	for _, r := range results {
		d := r.Document
		fmt.Fprintf(w, "%s  %-10s  %s", d.ID, d.Status, d.Name)
		if r.Pages > 0 {
			fmt.Fprintf(w, "  (%d pages)", r.Pages)
		}
		fmt.Fprintln(w)
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warn)
		}
	}
}
