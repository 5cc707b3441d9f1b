package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"patchmatch/internal/collect"
	"patchmatch/internal/distro"
	"patchmatch/internal/errors"
)

func writeQuiltPackage(t *testing.T, root, patchName, content string) {
	t.Helper()
	patchDir := filepath.Join(root, "debian", "patches")
	if err := os.MkdirAll(patchDir, 0755); err != nil {
		t.Fatalf("Failed to create patch dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(patchDir, "series"), []byte(patchName+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write series: %v", err)
	}
	if err := os.WriteFile(filepath.Join(patchDir, patchName), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write patch: %v", err)
	}
}

func newTestBatch(workers, queueSize int) *Batch {
	logger := newTestLogger()
	return NewBatch(
		newTestEngine(),
		collect.NewCollector(logger),
		distro.BuiltinRegistry(),
		logger,
		workers,
		queueSize,
	)
}

func TestBatchRun(t *testing.T) {
	rootA1, rootB1 := t.TempDir(), t.TempDir()
	rootA2, rootB2 := t.TempDir(), t.TempDir()
	writeQuiltPackage(t, rootA1, "fix.patch", diffFlat)
	writeQuiltPackage(t, rootB1, "fix.patch", diffFlat)
	writeQuiltPackage(t, rootA2, "fix.patch", diffFlat)
	writeQuiltPackage(t, rootB2, "other.patch", diffOther)

	units := []Unit{
		{Package: "zlib", DistroA: "debian", DistroB: "ubuntu", RootA: rootA1, RootB: rootB1},
		{Package: "bzip2", DistroA: "debian", DistroB: "ubuntu", RootA: rootA2, RootB: rootB2},
	}

	batch := newTestBatch(2, 0)
	if batch.ID == "" {
		t.Fatal("Expected a generated run ID")
	}

	results := batch.Run(context.Background(), units)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	// Input order is preserved regardless of worker scheduling.
	if results[0].Unit.Package != "zlib" || results[1].Unit.Package != "bzip2" {
		t.Errorf("Expected input order, got %s then %s",
			results[0].Unit.Package, results[1].Unit.Package)
	}

	if results[0].Err != nil {
		t.Fatalf("Unit zlib failed: %v", results[0].Err)
	}
	if results[0].ColA == nil || results[0].ColB == nil {
		t.Error("Expected collections attached to the unit result")
	}
	if results[0].Result.Summary.Identical != 1 {
		t.Errorf("Expected zlib identical match, got %+v", results[0].Result.Summary)
	}

	if results[1].Err != nil {
		t.Fatalf("Unit bzip2 failed: %v", results[1].Err)
	}
	if results[1].Result.Summary.UniqueA != 1 || results[1].Result.Summary.UniqueB != 1 {
		t.Errorf("Expected bzip2 patches unique, got %+v", results[1].Result.Summary)
	}
}

func TestBatchRunFailingUnit(t *testing.T) {
	rootA, rootB := t.TempDir(), t.TempDir()
	writeQuiltPackage(t, rootA, "fix.patch", diffFlat)
	writeQuiltPackage(t, rootB, "fix.patch", diffFlat)

	units := []Unit{
		{Package: "missing", DistroA: "debian", DistroB: "ubuntu", RootA: t.TempDir(), RootB: t.TempDir()},
		{Package: "zlib", DistroA: "debian", DistroB: "ubuntu", RootA: rootA, RootB: rootB},
	}

	results := newTestBatch(1, 0).Run(context.Background(), units)

	if results[0].Err == nil {
		t.Fatal("Expected error for the unit with no patch directory")
	}
	if errors.CodeOf(results[0].Err) != errors.PatchDirMissing {
		t.Errorf("Expected PATCH_DIR_MISSING, got %s", errors.CodeOf(results[0].Err))
	}

	// A failing sibling never stops the rest of the batch.
	if results[1].Err != nil {
		t.Fatalf("Expected zlib to succeed: %v", results[1].Err)
	}
	if results[1].Result.Summary.Identical != 1 {
		t.Errorf("Expected identical match, got %+v", results[1].Result.Summary)
	}
}

func TestBatchRunUnknownDistro(t *testing.T) {
	units := []Unit{
		{Package: "zlib", DistroA: "slackware", DistroB: "debian", RootA: t.TempDir(), RootB: t.TempDir()},
	}

	results := newTestBatch(1, 0).Run(context.Background(), units)

	if results[0].Err == nil {
		t.Fatal("Expected error for unknown distro tag")
	}
	if errors.CodeOf(results[0].Err) != errors.RegistryInvalid {
		t.Errorf("Expected REGISTRY_INVALID, got %s", errors.CodeOf(results[0].Err))
	}
}

func TestBatchWorkerFloor(t *testing.T) {
	if b := newTestBatch(0, 0); b.workers != 1 {
		t.Errorf("Expected worker count floored to 1, got %d", b.workers)
	}
	if b := newTestBatch(1, -4); b.queueSize != 0 {
		t.Errorf("Expected negative queue size clamped to 0, got %d", b.queueSize)
	}
}

func TestBatchRunBufferedQueue(t *testing.T) {
	units := make([]Unit, 4)
	for i := range units {
		rootA, rootB := t.TempDir(), t.TempDir()
		writeQuiltPackage(t, rootA, "fix.patch", diffFlat)
		writeQuiltPackage(t, rootB, "fix.patch", diffFlat)
		units[i] = Unit{Package: "zlib", DistroA: "debian", DistroB: "ubuntu", RootA: rootA, RootB: rootB}
	}

	// One worker with a buffered dispatch channel drains every unit.
	results := newTestBatch(1, 8).Run(context.Background(), units)

	if len(results) != len(units) {
		t.Fatalf("Expected %d results, got %d", len(units), len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("Unit %d failed: %v", i, r.Err)
		}
		if r.Result.Summary.Identical != 1 {
			t.Errorf("Unit %d: expected identical match, got %+v", i, r.Result.Summary)
		}
	}
}
