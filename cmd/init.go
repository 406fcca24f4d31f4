package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter vdrift.yaml config",
	Long: `Create a vdrift.yaml in the current directory with the default
configuration spelled out.

Examples:
  vdrift init
`,
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat("vdrift.yaml"); err == nil {
			fmt.Println("❌ vdrift.yaml already exists!")
			return
		}

		content := `# vdrift configuration
# The Vertica DSN comes from the VERTICA_DSN environment variable
# (a .env file in the working directory is also read).

# Identifier for the stack being validated; stamped into every snapshot.
stack: default

# Where snapshot artifacts are written and read.
snapshot_dir: snapshots

# Scope the capture to specific schemas. An empty include list means all
# non-system schemas.
schema_filter:
  include: []
  exclude: []

# Per-object-type catalog query timeout. A timed-out object type is recorded
# as a snapshot warning instead of failing the capture.
query_timeout: 30s

# Catalog queries for independent object types run concurrently.
capture_workers: 4
`

		if err := os.WriteFile("vdrift.yaml", []byte(content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error writing vdrift.yaml: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("✅ Created vdrift.yaml")
		fmt.Println("   Set VERTICA_DSN and run 'vdrift check' to verify connectivity")
	},
}
