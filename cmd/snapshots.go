package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/radcom-pso/vdrift/config"
	"github.com/radcom-pso/vdrift/snapshot"
)

var (
	snapshotsConfig string
	snapshotsDir    string
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored schema snapshots",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(snapshotsConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error loading config: %v\n", err)
			os.Exit(1)
		}

		if snapshotsDir != "" {
			cfg.SnapshotDir = snapshotsDir
		}

		store := snapshot.NewStore(cfg.SnapshotDir)
		handles, err := store.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error listing snapshots: %v\n", err)
			os.Exit(1)
		}

		if len(handles) == 0 {
			fmt.Println("🕒 No snapshots found in", cfg.SnapshotDir)
			return
		}

		fmt.Println("✅ Stored snapshots:")
		for _, h := range handles {
			snap, err := store.Load(h)
			if err != nil {
				fmt.Printf("   - %s (unreadable: %v)\n", h, err)
				continue
			}
			fmt.Printf("   - %s  stack=%s role=%s captured=%s warnings=%d\n",
				h, snap.Stack, snap.Role,
				snap.CapturedAt.Format("2006-01-02 15:04:05"),
				len(snap.Warnings))
		}
	},
}

func init() {
	snapshotsCmd.Flags().StringVarP(&snapshotsConfig, "config", "c", "vdrift.yaml", "Config file to use")
	snapshotsCmd.Flags().StringVarP(&snapshotsDir, "dir", "d", "", "Snapshot directory (overrides config)")
}
