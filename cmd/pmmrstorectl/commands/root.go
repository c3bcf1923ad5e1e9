// Package commands implements the pmmrstorectl CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/sumtree/pmmrstore/internal/storeconfig"
	"github.com/sumtree/pmmrstore/internal/telemetry/logging"
	"github.com/sumtree/pmmrstore/record"
	"github.com/sumtree/pmmrstore/store"
)

var (
	cfgFile   string
	dataDir   string
	sumWidth  int
	maxLogLen int
)

// rootCmd is the base command when pmmrstorectl is called without a
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "pmmrstorectl",
	Short: "Inspect and operate a pmmrstore data directory",
	Long: `pmmrstorectl operates directly on a PMMR storage engine's data directory:
appending records, reading them back by position, staging removals,
flushing the write buffer, and compacting the data file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to rootCmd and runs it. Called once
// from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: none, use flags/env)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().IntVar(&sumWidth, "sum-width", 0, "sum width in bytes (overrides config)")

	rootCmd.AddCommand(appendCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(compactCmd)
	rootCmd.AddCommand(statCmd)
}

// loadConfig resolves configuration (flags override config file override
// defaults) and initializes the package-level logger from it. Every
// subcommand goes through this so --data-dir/--config/--sum-width behave
// consistently across the whole tree.
func loadConfig() (*storeconfig.Config, error) {
	cfg, err := storeconfig.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if sumWidth != 0 {
		cfg.SumWidth = sumWidth
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	return cfg, nil
}

// openBackend loads configuration and opens the backend at the resolved
// data directory.
func openBackend() (*store.Backend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	width := cfg.SumWidth
	newSum := func() record.Sum {
		return record.NewFixedWidthSum(width)
	}
	return store.Open(cfg.DataDir, newSum)
}
