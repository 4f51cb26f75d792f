// Command mlccheck verifies MLC_* lifecycle annotations in C sources.
//
// Every resource initialized in a scope must be deinitialized exactly once on
// every mode path, and struct init/deinit stages must match the struct's
// declaration. Files are checked in the order given; struct declarations seen
// in earlier files are visible to later ones.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mlccheck/internal/config"
	"mlccheck/internal/logging"
)

var (
	// Global flags
	verbose       bool
	configPath    string
	allowUndecl   bool
	extractorName string
	colorMode     string
	recordHistory bool

	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

// errCheckFailed signals that a finding was already reported and only the exit status remains.
var errCheckFailed = errors.New("check failed")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mlccheck [flags] FILE...",
	Short: "Check MLC_* lifecycle annotations",
	Long: `mlccheck scans source files for lifecycle markers:

  MLC_PUSH_SCOPE("func") / MLC_PUSH_SCOPE("Struct:decl|init|deinit")
  MLC_POP_SCOPE()
  MLC_DECL("x")  MLC_INIT("x")  MLC_DEINIT("x")  MLC_RETURN("x")
  MLC_MODE("path")

and verifies that every declared or initialized value is deinitialized exactly
once on every mode path. The first violation is reported and the run stops.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		opts := logging.Options{Level: cfg.Logging.Level, JSON: cfg.Logging.IsJSON()}
		if verbose {
			opts.Level = "debug"
		}
		l, err := logging.Initialize(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		logging.Boot("mlccheck %s: %d argument(s)", cmd.Name(), len(args))
		logging.BootDebug("config %s resolved: extractor=%s allow_undecl=%v", configPath, cfg.Extractor, cfg.AllowUndeclaredStructs)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runCheck,
}

func flagChanged(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Changed(name) || cmd.InheritedFlags().Changed(name)
}

// applyFlagOverrides lets explicitly set flags win over the config file.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	if flagChanged(cmd, "allow-undecl") {
		c.AllowUndeclaredStructs = allowUndecl
	}
	if flagChanged(cmd, "extractor") {
		c.Extractor = extractorName
	}
	if flagChanged(cmd, "color") {
		c.Report.Color = colorMode
	}
	if flagChanged(cmd, "history") {
		c.History.Enabled = recordHistory
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Colorize diagnostics: auto, always, never")

	for _, c := range []*cobra.Command{rootCmd, watchCmd} {
		c.Flags().BoolVar(&allowUndecl, "allow-undecl", false, "Allow undeclared structs (learn the declaration from the first init stage)")
		c.Flags().StringVar(&extractorName, "extractor", "line", "Marker extractor: line, c-comments")
		c.Flags().BoolVar(&recordHistory, "history", false, "Record the run in the history database")
	}

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(finalNewlineCmd)
	rootCmd.AddCommand(initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
