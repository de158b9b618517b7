// Command brpld drives a BRPL core (internal/objective, internal/dagstate,
// internal/trust, internal/scoring) through a synthetic network topology,
// logging the spec.md §6 CSV records and exporting Prometheus metrics along
// the way. There is no real routing stack or link layer behind it: brpld
// exists to exercise the core end to end the way the surrounding Contiki-NG
// node normally would, the routing-protocol driver itself being out of
// scope per spec.md §1.
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
	Use:   "brpld",
	Short: "BRPL objective function simulator",
	Long: `brpld loads a network topology manifest and drives a BRPL parent-
selection objective through it tick by tick, reporting queue pressure,
neighbor churn, trust scores and the resulting best-parent decisions.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "BRPL parameter file (default: built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

// Subcommands are defined in separate files:
// - runCmd in run.go
// - validateCmd in validate.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
