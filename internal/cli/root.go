// Package cli wires the daemon's commands: the server itself plus small
// operational helpers.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const buildVersion = "0.1.0-dev"

var (
	// Global flags
	configFile string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ammd",
	Short: "ammd - constant-product market maker daemon",
	Long: `ammd keeps a three-asset pool ledger (base, token and liquidity shares)
and applies liquidity deposits, withdrawals and fee-bearing constant-product
trades as atomic state transitions. State is served over HTTP JSON-RPC with a
WebSocket event stream, snapshotted to a local key-value store and journaled
to a relational event log.`,
	Version: buildVersion,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}
