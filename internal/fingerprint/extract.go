package fingerprint

import (
	"patchmatch/internal/diffparse"
)

// Extract builds the fingerprint of a patch at the given strip level.
// Deterministic: the same patch and level always produce an identical
// fingerprint.
func Extract(patch *diffparse.Patch, stripLevel int) *Fingerprint {
	fp := &Fingerprint{
		Paths:        make(map[string]bool),
		AddedLines:   make(map[string]bool),
		RemovedLines: make(map[string]bool),
		HunkCount:    len(patch.Hunks),
	}

	for _, tp := range patch.Paths {
		if norm := NormalizePath(tp.Path, stripLevel); norm != "" {
			fp.Paths[norm] = true
		}
	}

	for i := range patch.Hunks {
		h := &patch.Hunks[i]
		fp.AddedCount += len(h.Added)
		fp.RemovedCount += len(h.Removed)

		for _, line := range h.Added {
			if norm := NormalizeLine(line); norm != "" {
				fp.AddedLines[norm] = true
			}
		}
		for _, line := range h.Removed {
			if norm := NormalizeLine(line); norm != "" {
				fp.RemovedLines[norm] = true
			}
		}
	}

	return fp
}

// RawPaths returns the touched paths of a patch before normalization,
// as input to the strip-level search.
func RawPaths(patch *diffparse.Patch) []string {
	out := make([]string, 0, len(patch.Paths))
	for _, tp := range patch.Paths {
		out = append(out, tp.Path)
	}
	return out
}

// AdjustStripHint converts a recipe strip level (which counts a git
// a/ b/ prefix as one component) to the level used on parsed paths,
// where that marker is already gone.
func AdjustStripHint(patch *diffparse.Patch, hint int) int {
	if hint > 0 && patch.MarkerShare() {
		return hint - 1
	}
	return hint
}
