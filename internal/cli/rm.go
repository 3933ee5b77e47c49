package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/reportai/constants"
)

func newRmCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove documents or reports",
		Long: `Remove documents (doc_...) or reports (report_...) by id. Unknown ids
are ignored. Reports keep their document ids even when a source document
is removed.

Examples:
  reportai rm doc_0192...
  reportai rm report_0192... report_0193...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				kind, err := entityKindOf(id)
				if err != nil {
					return err
				}
				if err := e.app.Store.Remove(cmd.Context(), kind, id); err != nil {
					return fmt.Errorf("remove %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			}
			return nil
		},
	}
	return cmd
}

func entityKindOf(id string) (constants.EntityKind, error) {
	switch {
	case strings.HasPrefix(id, "doc_"):
		return constants.EntityDocument, nil
	case strings.HasPrefix(id, "report_"):
		return constants.EntityReport, nil
	default:
		return "", fmt.Errorf("cannot tell what %q is; ids start with doc_ or report_", id)
	}
}
