// Command rfc-cli is the command-line front end to the rainflow
// cycle-counting engine, grounded on
// _examples/jhkimqd-chaos-utils cmd/chaos-runner/main.go's
// cobra root command with persistent --config/--verbose flags.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	version = "dev" // set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "rfc-cli",
	Short: "Rainflow cycle-counting engine",
	Long: `rfc-cli counts closed and half cycles out of one or more load
histories using the four-point rainflow rule, accumulates them into a
from/to rainflow matrix, a range-pair histogram and a level-crossing
histogram, and applies a Miner's-rule S-N damage calculation.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(synthCmd)
}

// Commands are defined in separate files:
// - runCmd in run.go
// - batchCmd in batch.go
// - synthCmd in synth.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
