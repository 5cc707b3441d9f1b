package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"patchmatch/internal/collect"
	"patchmatch/internal/distro"
	"patchmatch/internal/engine"
	"patchmatch/internal/logging"
	"patchmatch/internal/report"
	"patchmatch/internal/storage"
)

var (
	comparePackage string
	compareDistroA string
	compareDistroB string
	compareRootA   string
	compareRootB   string
	compareFormat  string
	compareSave    bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare one package's patches across two distributions",
	Long: `Compare reads the patch collections of a single source package from
two unpacked source trees and aligns them.

Examples:
  patchmatch compare --package zlib \
    --distro-a fedora --root-a ~/rpmbuild/zlib \
    --distro-b debian --root-b ~/packages/zlib
  patchmatch compare --package zlib ... --format=yaml
  patchmatch compare --package zlib ... --save`,
	Run: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&comparePackage, "package", "", "Source package name (required)")
	compareCmd.Flags().StringVar(&compareDistroA, "distro-a", "fedora", "Distro tag for side A")
	compareCmd.Flags().StringVar(&compareDistroB, "distro-b", "debian", "Distro tag for side B")
	compareCmd.Flags().StringVar(&compareRootA, "root-a", "", "Package root for side A (required)")
	compareCmd.Flags().StringVar(&compareRootB, "root-b", "", "Package root for side B (required)")
	compareCmd.Flags().StringVar(&compareFormat, "format", "json", "Output format (json, yaml, human)")
	compareCmd.Flags().BoolVar(&compareSave, "save", false, "Persist the comparison to the results database")
	_ = compareCmd.MarkFlagRequired("package")
	_ = compareCmd.MarkFlagRequired("root-a")
	_ = compareCmd.MarkFlagRequired("root-b")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) {
	start := time.Now()
	bootLogger := logging.NewLogger(logging.Config{Format: "human", Level: "info"})
	cfg := mustLoadConfig(bootLogger)
	logger := newLogger(cfg)

	registry, err := distro.LoadRegistry(registryFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading distro registry: %v\n", err)
		os.Exit(1)
	}

	distroA, ok := registry.Lookup(compareDistroA)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown distro tag: %s\n", compareDistroA)
		os.Exit(1)
	}
	distroB, ok := registry.Lookup(compareDistroB)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown distro tag: %s\n", compareDistroB)
		os.Exit(1)
	}

	collector := collect.NewCollector(logger)
	colA, err := collector.Collect(distroA, comparePackage, compareRootA)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error collecting side A: %v\n", err)
		os.Exit(1)
	}
	colB, err := collector.Collect(distroB, comparePackage, compareRootB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error collecting side B: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(cfg, logger)
	result := eng.Compare(colA, colB)

	if compareSave {
		saveComparison(cfg.Store.Path, cfg.Store.CompressRaw, colA, colB, result, logger)
	}

	pr := report.FromComparison(result)
	output, err := report.Format(&pr, compareFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	logger.Debug("Compare completed", map[string]interface{}{
		"package":  comparePackage,
		"matches":  len(result.Results),
		"duration": time.Since(start).Milliseconds(),
	})
}

// saveComparison persists patches and the comparison under a one-off run
func saveComparison(dbPath string, compress bool, colA, colB *collect.Collection, result *engine.ComparisonResult, logger *logging.Logger) {
	db, err := storage.Open(dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	runID := uuid.New().String()
	if err := db.CreateRun(runID, result.DistroA, result.DistroB, 1); err != nil {
		fmt.Fprintf(os.Stderr, "Error recording run: %v\n", err)
		os.Exit(1)
	}
	if err := db.SavePatches(colA.Patches, compress); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving patches: %v\n", err)
		os.Exit(1)
	}
	if err := db.SavePatches(colB.Patches, compress); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving patches: %v\n", err)
		os.Exit(1)
	}
	if err := db.SaveComparison(runID, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving comparison: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Comparison saved", map[string]interface{}{
		"runId":   runID,
		"package": result.Package,
	})
}
