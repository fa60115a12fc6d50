package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nvandessel/snpsim/internal/config"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "snpsim",
		Short: "Spiking Neural P system simulator",
		Long: `snpsim simulates Spiking Neural P systems: neurons holding spike counts
fire guarded rules and send spikes along directed synapses, with an
optional refractory delay after firing.

Each round runs a decision phase against the state frozen at the start of
the round, then a propagation phase that delivers spikes for the next one.
The run stops at the first round in which no rule applies.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.snpsim/config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

// loadConfig loads the config named by --config, or the default locations.
// A --config file that does not exist yet yields the defaults, so that
// "config set" can create it.
func loadConfig(cmd *cobra.Command) (*config.SimConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Load()
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}
