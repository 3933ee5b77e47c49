package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/entity"
)

func newSettingsCmd(e *env) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		Long: `Show settings, or change them with --set key=value.

Keys: theme, auto_save, default_kind, export_template, backend.

Examples:
  reportai settings
  reportai settings --set backend=claude --set default_kind=summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sets) == 0 {
				printSettings(cmd.OutOrStdout(), e.app.Store.Settings())
				return nil
			}
			u, err := parseSettings(sets)
			if err != nil {
				return err
			}
			s, err := e.app.Store.UpdateSettings(cmd.Context(), u)
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "key=value to change (repeatable)")
	return cmd
}

func parseSettings(pairs []string) (entity.SettingsUpdate, error) {
	var u entity.SettingsUpdate
	for _, kv := range pairs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return u, common.ValidationError{Field: "set", Value: kv, Message: "expected key=value"}
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "theme":
			u.Theme = entity.Ptr(constants.Theme(value))
		case "auto_save":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return u, common.ValidationError{Field: "auto_save", Value: value, Message: "expected true or false"}
			}
			u.AutoSave = &b
		case "default_kind":
			u.DefaultReportKind = entity.Ptr(constants.ReportKind(value))
		case "export_template":
			u.ExportTemplate = entity.Ptr(constants.ExportTemplate(value))
		case "backend":
			u.Backend = entity.Ptr(constants.Backend(value))
		default:
			return u, common.ValidationError{Field: "set", Value: key, Message: "unknown setting"}
		}
	}
	return u, nil
}

func printSettings(w io.Writer, s entity.Settings) {
	fmt.Fprintf(w, "theme:           %s\n", s.Theme)
	fmt.Fprintf(w, "auto_save:       %t\n", s.AutoSave)
	fmt.Fprintf(w, "default_kind:    %s\n", s.DefaultReportKind)
	fmt.Fprintf(w, "export_template: %s\n", s.ExportTemplate)
	fmt.Fprintf(w, "backend:         %s\n", s.Backend)
}
