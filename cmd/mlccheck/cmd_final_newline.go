package main

import (
	"github.com/spf13/cobra"

	"mlccheck/internal/lint"
	"mlccheck/internal/report"
)

var finalNewlineCmd = &cobra.Command{
	Use:   "final-newline FILE...",
	Short: "Check that every non-empty file ends with a newline",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFinalNewline,
}

func runFinalNewline(cmd *cobra.Command, args []string) error {
	rep := report.New(cmd.ErrOrStderr(), cfg.Report.Color)

	missing, err := lint.MissingFinalNewline(args)
	for _, p := range missing {
		rep.MissingNewline(p)
	}
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return errCheckFailed
	}
	return nil
}
