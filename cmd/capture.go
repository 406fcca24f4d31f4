package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/radcom-pso/vdrift/config"
	"github.com/radcom-pso/vdrift/database"
	"github.com/radcom-pso/vdrift/runner"
)

var (
	captureRole   string
	captureConfig string
	captureDir    string
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a schema snapshot for pre or post validation",
	Long: `Capture the current schema of the target Vertica database and store
it as an immutable snapshot artifact.

Examples:
  vdrift capture --role pre               # Snapshot before a deployment
  vdrift capture --role post              # Snapshot after a deployment
  vdrift capture --role pre --dir /data   # Custom snapshot directory
`,
	Run: func(cmd *cobra.Command, args []string) {
		if captureRole != "pre" && captureRole != "post" {
			fmt.Fprintln(os.Stderr, "❌ --role must be 'pre' or 'post'")
			os.Exit(1)
		}

		cfg, err := config.Load(captureConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error loading config: %v\n", err)
			os.Exit(1)
		}
		if captureDir != "" {
			cfg.SnapshotDir = captureDir
		}

		db, err := database.Get()
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error connecting to Vertica: %v\n", err)
			os.Exit(1)
		}

		handle, snap, err := runner.Capture(context.Background(), db, cfg, captureRole)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Capture failed: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen, color.Bold)
		green.Printf("✅ Captured %s snapshot for stack %q\n", captureRole, snap.Stack)
		fmt.Println("   📄", handle)

		if len(snap.Warnings) > 0 {
			yellow := color.New(color.FgYellow)
			yellow.Printf("⚠️  %d warning(s) recorded in the snapshot:\n", len(snap.Warnings))
			for _, w := range snap.Warnings {
				yellow.Printf("   - [%s] %s %s\n", w.Source, w.Object, w.Message)
			}
		}
	},
}

func init() {
	captureCmd.Flags().StringVarP(&captureRole, "role", "r", "", "Snapshot role: pre or post (required)")
	captureCmd.Flags().StringVarP(&captureConfig, "config", "c", "vdrift.yaml", "Config file to use")
	captureCmd.Flags().StringVarP(&captureDir, "dir", "d", "", "Snapshot directory (overrides config)")
	captureCmd.MarkFlagRequired("role")
}
