package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/reportai/internal/ingest"
)

func newWatchCmd(e *env) *cobra.Command {
	var (
		initial  bool
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Ingest supported files as they appear",
		Long: `Watch directories recursively and ingest every supported file that is
created or written. Each file is its own batch, so one failure does not
stop the watch. Runs until interrupted.

Examples:
  reportai watch ./inbox
  reportai watch ./inbox --initial=false --debounce 2s`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			events, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
				Roots:       args,
				InitialScan: initial,
				Debounce:    debounce,
				SkipHidden:  true,
			}, e.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d directories. Press Ctrl+C to stop.\n", len(args))

			for {
				select {
				case p, ok := <-events:
					if !ok {
						return nil
					}
					f, err := ingest.FileFromPath(p)
					if err != nil {
						e.logger.Warn("watch.stat_failed", "path", p, "error", err)
						continue
					}
					results, err := e.app.Ingest.Ingest(ctx, []ingest.File{f})
					printResults(cmd.OutOrStdout(), results)
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", p, err)
					}
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().BoolVar(&initial, "initial", true, "ingest files already present at start")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "wait for writes to settle")
	return cmd
}
