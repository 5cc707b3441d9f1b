package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"patchmatch/internal/collect"
	"patchmatch/internal/distro"
	"patchmatch/internal/engine"
	"patchmatch/internal/logging"
	"patchmatch/internal/report"
	"patchmatch/internal/storage"
)

var (
	batchManifest string
	batchDistroA  string
	batchDistroB  string
	batchWorkers  int
	batchFormat   string
	batchNoSave   bool
)

// manifestEntry is one package in a batch manifest file
type manifestEntry struct {
	Package string `json:"package"`
	RootA   string `json:"rootA"`
	RootB   string `json:"rootB"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Compare many packages from a manifest on a worker pool",
	Long: `Batch reads a JSON manifest listing packages and their two source
roots, runs every comparison on a bounded worker pool, persists the
results, and prints the run report.

The manifest is a JSON array:
  [{"package": "zlib", "rootA": "/srv/fedora/zlib", "rootB": "/srv/debian/zlib"}, ...]

Examples:
  patchmatch batch --manifest packages.json --distro-a fedora --distro-b debian
  patchmatch batch --manifest packages.json --workers 8 --format yaml`,
	Run: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchManifest, "manifest", "", "Manifest file path (required)")
	batchCmd.Flags().StringVar(&batchDistroA, "distro-a", "fedora", "Distro tag for side A")
	batchCmd.Flags().StringVar(&batchDistroB, "distro-b", "debian", "Distro tag for side B")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Worker count (default from config)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "json", "Output format (json, yaml, human)")
	batchCmd.Flags().BoolVar(&batchNoSave, "no-save", false, "Skip persisting results to the database")
	_ = batchCmd.MarkFlagRequired("manifest")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) {
	start := time.Now()
	bootLogger := logging.NewLogger(logging.Config{Format: "human", Level: "info"})
	cfg := mustLoadConfig(bootLogger)
	logger := newLogger(cfg)

	entries, err := loadManifest(batchManifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading manifest: %v\n", err)
		os.Exit(1)
	}

	registry, err := distro.LoadRegistry(registryFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading distro registry: %v\n", err)
		os.Exit(1)
	}

	workers := cfg.Batch.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}

	collector := collect.NewCollector(logger)
	eng := engine.New(cfg, logger)
	batch := engine.NewBatch(eng, collector, registry, logger, workers, cfg.Batch.QueueSize)

	units := make([]engine.Unit, 0, len(entries))
	for _, e := range entries {
		units = append(units, engine.Unit{
			Package: e.Package,
			DistroA: batchDistroA,
			DistroB: batchDistroB,
			RootA:   e.RootA,
			RootB:   e.RootB,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("Starting batch run", map[string]interface{}{
		"runId":    batch.ID,
		"packages": len(units),
		"workers":  workers,
	})

	unitResults := batch.Run(ctx, units)

	var db *storage.DB
	if !batchNoSave {
		db, err = storage.Open(cfg.Store.Path, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening results database: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		if err := db.CreateRun(batch.ID, batchDistroA, batchDistroB, len(units)); err != nil {
			fmt.Fprintf(os.Stderr, "Error recording run: %v\n", err)
			os.Exit(1)
		}
	}

	var packages []report.PackageReport
	failed := 0
	for _, ur := range unitResults {
		if ur.Err != nil {
			failed++
			logger.Warn("Package comparison failed", map[string]interface{}{
				"package": ur.Unit.Package,
				"error":   ur.Err.Error(),
			})
			continue
		}
		packages = append(packages, report.FromComparison(ur.Result))
		if db != nil {
			if err := db.SavePatches(ur.ColA.Patches, cfg.Store.CompressRaw); err != nil {
				logger.Error("Failed to save patches", map[string]interface{}{
					"package": ur.Unit.Package,
					"error":   err.Error(),
				})
			}
			if err := db.SavePatches(ur.ColB.Patches, cfg.Store.CompressRaw); err != nil {
				logger.Error("Failed to save patches", map[string]interface{}{
					"package": ur.Unit.Package,
					"error":   err.Error(),
				})
			}
			if err := db.SaveComparison(batch.ID, ur.Result); err != nil {
				logger.Error("Failed to save comparison", map[string]interface{}{
					"package": ur.Unit.Package,
					"error":   err.Error(),
				})
			}
		}
	}

	runReport := report.BuildRun(batch.ID, packages)
	output, err := report.Format(runReport, batchFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	logger.Info("Batch run complete", map[string]interface{}{
		"runId":    batch.ID,
		"packages": len(packages),
		"failed":   failed,
		"duration": time.Since(start).String(),
	})
}

func loadManifest(path string) ([]manifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []manifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
