package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/radcom-pso/vdrift/database"
)

var checkTimeout time.Duration

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check Vertica connectivity",
	Long: `Check if the target Vertica database is accessible and the catalog
is readable.

Examples:
  vdrift check                    # Check default connection
  vdrift check --timeout 10s      # Set custom timeout
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkConnection(); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Connection check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Vertica is reachable and the catalog is readable")
	},
}

func init() {
	checkCmd.Flags().DurationVarP(&checkTimeout, "timeout", "t", 5*time.Second, "Timeout for connection check")
}

func checkConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	db, err := database.Get()
	if err != nil {
		return fmt.Errorf("failed to connect: %v", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	// A trivial catalog read proves the user can see v_catalog at all.
	var count int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM v_catalog.schemata WHERE NOT is_system_schema").Scan(&count); err != nil {
		return fmt.Errorf("failed to read catalog: %v", err)
	}

	fmt.Printf("📊 Found %d user schema(s)\n", count)
	return nil
}
