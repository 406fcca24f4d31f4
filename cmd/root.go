package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vdrift",
	Short: "Schema drift detection for Vertica",
	Long: `vdrift captures snapshots of a Vertica database's schema and compares
them to detect unintended drift across a change window.

Examples:

  vdrift capture --role pre
  vdrift capture --role post
  vdrift diff snapshots/prod_pre_*.json snapshots/prod_post_*.json
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
}
