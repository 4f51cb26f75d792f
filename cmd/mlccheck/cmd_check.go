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
	"mlccheck/internal/extract"
	"mlccheck/internal/history"
	"mlccheck/internal/report"
	"mlccheck/internal/runner"
)

// newRunner wires a runner from the resolved config. The returned closer
// releases the history store, if one was opened.
func newRunner(rep *report.Reporter) (*runner.Runner, func(), error) {
	ex, err := extract.New(cfg.Extractor)
	if err != nil {
		return nil, nil, err
	}

	opts := runner.Options{
		Extractor: ex,
		Settings:  checker.Settings{AllowUndeclaredStructs: cfg.AllowUndeclaredStructs},
		Workers:   cfg.Concurrency,
		OnWarning: rep.Diagnostic,
	}
	closer := func() {}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, nil, err
		}
		opts.Recorder = store
		closer = func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close history store", zap.Error(err))
			}
		}
	}
	return runner.New(opts), closer, nil
}

// runCheck is the default command: check all files once.
func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rep := report.New(cmd.ErrOrStderr(), cfg.Report.Color)
	r, closeRunner, err := newRunner(rep)
	if err != nil {
		return err
	}
	defer closeRunner()

	logger.Debug("starting run", zap.Strings("files", args), zap.String("extractor", cfg.Extractor))
	sum, err := r.Run(ctx, args)
	if err != nil {
		var d *checker.Diagnostic
		if errors.As(err, &d) {
			rep.Diagnostic(d)
			return errCheckFailed
		}
		return err
	}

	rep.Summary(sum.Files, sum.Annotations)
	return nil
}
