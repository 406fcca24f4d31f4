package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/radcom-pso/vdrift/config"
	"github.com/radcom-pso/vdrift/diff"
	"github.com/radcom-pso/vdrift/runner"
	"github.com/radcom-pso/vdrift/snapshot"
)

var (
	diffVisual bool
	diffOut    string
	diffConfig string
)

var diffCmd = &cobra.Command{
	Use:   "diff <pre-snapshot> <post-snapshot>",
	Short: "Compare two schema snapshots",
	Long: `Compare a pre-validation snapshot with a post-validation snapshot and
write a drift report.

Examples:
  vdrift diff pre.json post.json              # Write report, print summary
  vdrift diff pre.json post.json --visual     # Colored change tree
  vdrift diff pre.json post.json --out r.txt  # Custom report path
`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(diffConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error loading config: %v\n", err)
			os.Exit(1)
		}

		result, err := runner.Diff(cfg, snapshot.Handle(args[0]), snapshot.Handle(args[1]), diffOut)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Diff failed: %v\n", err)
			os.Exit(1)
		}

		if len(result.Changes) == 0 {
			fmt.Println("✅ No schema drift detected between snapshots")
			fmt.Println("   📄 Report written to", result.ReportPath)
			return
		}

		if diffVisual {
			showVisualDiff(result.Changes)
		} else {
			showSummary(result.Changes)
		}
		fmt.Println("\n📄 Report written to", result.ReportPath)

		for _, c := range result.Changes {
			if c.Severity == diff.Breaking {
				os.Exit(2)
			}
		}
	},
}

func showSummary(changes []diff.Change) {
	counts := map[diff.Severity]int{}
	for _, c := range changes {
		counts[c.Severity]++
	}
	fmt.Printf("📋 %d schema change(s) detected: %d breaking, %d additive, %d informational\n",
		len(changes), counts[diff.Breaking], counts[diff.Additive], counts[diff.Informational])
}

func showVisualDiff(changes []diff.Change) {
	fmt.Println("🌳 Schema Drift (Visual)")
	fmt.Println(strings.Repeat("=", 50))

	red := color.New(color.FgRed, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	blue := color.New(color.FgBlue)

	currentSchema := ""
	for _, c := range changes {
		if c.Schema != currentSchema {
			currentSchema = c.Schema
			fmt.Printf("\n📋 %s:\n", currentSchema)
		}

		line := fmt.Sprintf("  %s %s %s [%s]", symbol(c.Kind), c.ObjectType, c.Object, c.Severity)
		switch c.Severity {
		case diff.Breaking:
			red.Println(line)
		case diff.Additive:
			green.Println(line)
		default:
			yellow.Println(line)
		}
		for _, fd := range c.Details {
			blue.Printf("      🔄 %s\n", fd)
		}
	}
}

func symbol(k diff.Kind) string {
	switch k {
	case diff.Added:
		return "➕"
	case diff.Removed:
		return "❌"
	case diff.Reordered:
		return "↕️"
	default:
		return "⚡"
	}
}

func init() {
	diffCmd.Flags().BoolVarP(&diffVisual, "visual", "v", false, "Show changes in visual tree format")
	diffCmd.Flags().StringVarP(&diffOut, "out", "o", "", "Report output path (default: derived from snapshot names)")
	diffCmd.Flags().StringVarP(&diffConfig, "config", "c", "vdrift.yaml", "Config file to use")
}
