package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"patchmatch/internal/logging"
	"patchmatch/internal/report"
	"patchmatch/internal/storage"
)

var (
	reportRun    string
	reportFormat string
	reportDelta  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a stored comparison run",
	Long: `Report renders the results of a previous compare or batch run from
the results database.

Examples:
  patchmatch report                  # latest run
  patchmatch report --run <id> --format yaml
  patchmatch report --delta          # unified diffs for near matches`,
	Run: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportRun, "run", "", "Run ID (default: latest)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "json", "Output format (json, yaml, human)")
	reportCmd.Flags().BoolVar(&reportDelta, "delta", false, "Append unified diffs between similar/partial pairs")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) {
	bootLogger := logging.NewLogger(logging.Config{Format: "human", Level: "info"})
	cfg := mustLoadConfig(bootLogger)
	logger := newLogger(cfg)

	db, err := storage.Open(cfg.Store.Path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	runID := reportRun
	if runID == "" {
		runID, err = db.LatestRunID()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding latest run: %v\n", err)
			os.Exit(1)
		}
		if runID == "" {
			fmt.Fprintln(os.Stderr, "No stored runs found")
			os.Exit(1)
		}
	}

	stored, err := db.ListComparisons(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading run %s: %v\n", runID, err)
		os.Exit(1)
	}

	packages := make([]report.PackageReport, 0, len(stored))
	for i := range stored {
		packages = append(packages, report.FromStored(&stored[i]))
	}

	rr := report.BuildRun(runID, packages)
	output, err := report.Format(rr, reportFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	if reportDelta {
		printDeltas(db, stored)
	}
}

// printDeltas renders a unified diff for every near-match pair so the
// divergence is visible without re-reading the source trees.
func printDeltas(db *storage.DB, stored []storage.StoredComparison) {
	for _, c := range stored {
		for _, m := range c.Matches {
			if m.Category != "similar" && m.Category != "partial" {
				continue
			}
			rawA, errA := db.PatchRaw(c.Package, c.DistroA, m.PatchA)
			rawB, errB := db.PatchRaw(c.Package, c.DistroB, m.PatchB)
			if errA != nil || errB != nil {
				continue
			}
			delta, oversize := report.PatchDelta(
				c.DistroA+"/"+m.PatchA, c.DistroB+"/"+m.PatchB,
				rawA, rawB, report.DeltaOptions{MaxBytes: 1 << 20})
			if oversize || delta == "" {
				continue
			}
			fmt.Printf("\n# %s: %s vs %s (%.2f)\n%s", c.Package, m.PatchA, m.PatchB, m.Score, delta)
		}
	}
}
