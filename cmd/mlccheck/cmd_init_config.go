package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mlccheck/internal/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config [PATH]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInitConfig,
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
