// Package cli provides the command-line interface for reportai.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/reportai/internal/app"
	"github.com/joseph-ayodele/reportai/internal/common"
)

// Version is set at build time.
var Version = "0.1.0"

// env is the state shared by every subcommand of one invocation.
type env struct {
	verbose bool
	cfg     *common.Config
	logger  *slog.Logger
	app     *app.App
	cleanup func() error
}

// NewRootCmd builds the command tree. The app is opened before any
// subcommand runs and closed when it returns.
func NewRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "reportai",
		Short: "Turn uploaded documents into generated reports",
		Long: `reportai ingests PDF, Word, Excel, text and CSV files, extracts their text,
and generates technical, analysis, summary or custom reports from them.

State lives in the configured store (sqlite by default). Settings choose the
default report kind, export template and generation backend.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return e.open(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newIngestCmd(e),
		newWatchCmd(e),
		newGenerateCmd(e),
		newListCmd(e),
		newShowCmd(e),
		newEditCmd(e),
		newRmCmd(e),
		newSettingsCmd(e),
		newExportCmd(e),
		newDoctorCmd(e),
	)
	for _, c := range root.Commands() {
		if c.RunE != nil {
			c.RunE = e.closing(c.RunE)
		}
	}
	return root
}

// closing closes the app after fn, whether or not fn failed.
func (e *env) closing(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := e.close(context.WithoutCancel(cmd.Context())); err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args)
	}
}

// Execute runs the root command until it finishes or the process is signalled.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func (e *env) open(ctx context.Context) error {
	cfg, err := common.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if e.verbose {
		cfg.Log.Level = "debug"
	}
	logger, cleanup := common.SetupLogger(cfg.Log)
	slog.SetDefault(logger)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		_ = cleanup()
		return fmt.Errorf("open app: %w", err)
	}
	e.cfg, e.logger, e.app, e.cleanup = cfg, logger, a, cleanup
	return nil
}

func (e *env) close(ctx context.Context) error {
	if e.app == nil {
		return nil
	}
	err := e.app.Close(ctx)
	if cerr := e.cleanup(); cerr != nil && err == nil {
		err = cerr
	}
	e.app = nil
	return err
}
