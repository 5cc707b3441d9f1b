package fingerprint

// Fingerprint is the normalized, comparable feature set of one patch.
// Sets are stored as string-keyed maps; values are never mutated after
// Extract returns.
type Fingerprint struct {
	// Paths is the set of normalized touched file paths
	Paths map[string]bool

	// AddedLines and RemovedLines are sets of normalized change lines
	AddedLines   map[string]bool
	RemovedLines map[string]bool

	// Raw size metrics, taken before normalization so near-duplicates
	// keep a signal even when the content sets drift
	AddedCount   int
	RemovedCount int
	HunkCount    int
}

// Empty reports whether the fingerprint carries no comparable content
// at all: no paths and no change lines.
func (f *Fingerprint) Empty() bool {
	return len(f.Paths) == 0 && len(f.AddedLines) == 0 && len(f.RemovedLines) == 0
}
