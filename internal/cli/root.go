// Package cli implements the command-line interface for the recap CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/aewiki/recap-cli/internal/core"
	"github.com/spf13/cobra"
)

// Global flags
var (
	verbose  bool
	quiet    bool
	raw      bool
	cacheDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "recap",
	Short:   "aewiki recap – daily contributor leaderboards",
	Long:    `A command-line utility for fetching and browsing daily contributor recap snapshots from the aewiki data repository.`,
	Version: core.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress progress messages")
	rootCmd.PersistentFlags().BoolVar(&raw, "raw", false, "Emit raw JSON instead of a formatted leaderboard")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Cache directory for the filesystem backend")
}
