// veladem drives a vela2d World from the command line.
//
// Usage:
//
//	veladem run [--scenario <path>] [--steps <n>] [--dt <seconds>]
//	veladem watch [--scenario <path>] [--fps <rate>]
//
// Global flags:
//
//	--scenario <path>  - Path to a scenario YAML file (default: built-in demo scene)
//	--tuning <path>    - Path to a tuning YAML file (defaults are folded into scenario)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagScenario string
	flagTuning   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "veladem",
	Short: "vela2d demo driver",
	Long: `veladem loads a scenario into a vela2d.World and steps it, either
headlessly (run) or live in the terminal (watch).

Examples:
  veladem run --steps 300
  veladem watch --scenario ./configs/scenario.yaml`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagScenario, "scenario", "", "Path to a scenario YAML file")
	rootCmd.PersistentFlags().StringVar(&flagTuning, "tuning", "", "Path to a tuning YAML file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
}
