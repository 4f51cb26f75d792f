package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mlccheck/internal/checker"
	"mlccheck/internal/report"
	"mlccheck/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE...",
	Short: "Re-run the check whenever one of the files changes",
	Long: `Runs the check once, then again after every change to any of the given
files. Each re-run starts from an empty struct registry. Violations are
reported but do not stop watching; press Ctrl-C to exit.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return watchFiles(ctx, cmd, args)
}

// watchFiles blocks until ctx is done.
func watchFiles(ctx context.Context, cmd *cobra.Command, args []string) error {
	rep := report.New(cmd.ErrOrStderr(), cfg.Report.Color)
	r, closeRunner, err := newRunner(rep)
	if err != nil {
		return err
	}
	defer closeRunner()

	checkOnce := func(ctx context.Context) {
		sum, err := r.Run(ctx, args)
		switch {
		case err == nil:
			rep.Summary(sum.Files, sum.Annotations)
		case errors.Is(err, context.Canceled):
		default:
			var d *checker.Diagnostic
			if errors.As(err, &d) {
				rep.Diagnostic(d)
			} else {
				rep.Plain("%v", err)
			}
		}
	}

	w, err := watch.New(args, cfg.Watch.GetDebounce(), func(ctx context.Context, changed []string) {
		logger.Info("files changed", zap.Strings("files", changed))
		rep.Plain("--- change detected, re-checking %d file(s)", len(args))
		checkOnce(ctx)
	})
	if err != nil {
		return err
	}

	checkOnce(ctx)
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer func() {
		w.Stop()
		st := w.Stats()
		logger.Info("watch stopped", zap.Int("events", st.Events), zap.Int("triggers", st.Triggers), zap.Int("errors", st.Errors))
	}()

	<-ctx.Done()
	return nil
}
