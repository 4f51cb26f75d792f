// Package runner drives a full checker run over a list of files.
//
// Extraction is I/O bound and runs concurrently; checking is strictly
// sequential in argument order because every file of a run shares one struct
// declaration registry. The first violation aborts the run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mlccheck/internal/checker"
	"mlccheck/internal/extract"
	"mlccheck/internal/history"
	"mlccheck/internal/logging"
)

// Recorder persists run outcomes. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, r *history.Run) error
}

// Options configure a Runner.
type Options struct {
	Extractor extract.Extractor
	Settings  checker.Settings
	// Workers bounds concurrent extraction; zero picks a default.
	Workers int
	// OnWarning receives non-fatal diagnostics. Nil logs them.
	OnWarning checker.WarningHandler
	// Recorder, when set, stores every run's outcome.
	Recorder Recorder
}

// Summary describes a finished (or aborted) run.
type Summary struct {
	RunID       string
	Files       int
	Annotations int
	Warnings    int
	// Structs is the number of struct declarations known at the end of the run.
	Structs  int
	Duration time.Duration
}

// slowFileThreshold is the per-file check time above which a warning is logged.
const slowFileThreshold = time.Second

// Runner executes runs. Each call to Run uses a fresh registry.
type Runner struct {
	opts Options
}

// New creates a runner. A nil extractor defaults to the line extractor.
func New(opts Options) *Runner {
	if opts.Extractor == nil {
		opts.Extractor = extract.LineExtractor{}
	}
	return &Runner{opts: opts}
}

// Run checks paths in order. On a lifecycle violation the returned error is a
// *checker.Diagnostic and the summary counts what was processed before it.
func (r *Runner) Run(ctx context.Context, paths []string) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: history.NewRunID()}
	log := logging.Get(logging.CategoryCheck).With("run_id", sum.RunID)

	warn := func(d *checker.Diagnostic) {
		sum.Warnings++
		if r.opts.OnWarning != nil {
			r.opts.OnWarning(d)
		} else {
			log.Warn("%s", d.Error())
		}
	}

	err := r.run(ctx, paths, sum, warn)
	sum.Duration = time.Since(start)

	if err != nil {
		log.Info("run aborted after %d files: %v", sum.Files, err)
	} else {
		log.Info("run complete: %d files, %d annotations", sum.Files, sum.Annotations)
	}
	r.record(ctx, start, paths, sum, err)
	return sum, err
}

func (r *Runner) run(ctx context.Context, paths []string, sum *Summary, warn checker.WarningHandler) error {
	// Per-file extraction errors surface below in argument order, so a
	// violation in an earlier file wins over an unreadable later one.
	files, _ := extract.Files(ctx, r.opts.Extractor, paths, r.opts.Workers)

	c := checker.New(r.opts.Settings, checker.NewRegistry(), warn)
	defer func() {
		sum.Structs = c.Registry().Len()
		logging.RegistryDebug("run %s declared structs: %v", sum.RunID, c.Registry().Names())
	}()

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Err != nil {
			return f.Err
		}
		timer := logging.StartTimer(logging.CategoryCheck, "check "+f.Path)
		n, err := c.CheckFile(f.Tokens)
		timer.StopWithThreshold(slowFileThreshold)
		sum.Annotations += n
		if err != nil {
			return err
		}
		sum.Files++
		logging.Check("%s: %d annotations ok", f.Path, n)
	}
	return nil
}

func (r *Runner) record(ctx context.Context, start time.Time, paths []string, sum *Summary, runErr error) {
	if r.opts.Recorder == nil {
		return
	}
	rec := &history.Run{
		ID:          sum.RunID,
		StartedAt:   start,
		Duration:    sum.Duration,
		Files:       paths,
		Annotations: sum.Annotations,
		Warnings:    sum.Warnings,
		Status:      history.StatusOK,
	}
	if runErr != nil {
		rec.Message = runErr.Error()
		var d *checker.Diagnostic
		if errors.As(runErr, &d) {
			rec.Status = history.StatusFailed
			rec.Message = fmt.Sprintf("%s: %s", d.Class, d.Error())
		} else {
			rec.Status = history.StatusError
		}
	}
	// The outcome is recorded even when ctx was cancelled mid-run.
	if err := r.opts.Recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
		logging.HistoryError("failed to record run %s: %v", sum.RunID, err)
	}
}
