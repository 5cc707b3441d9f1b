package fingerprint

// DefaultMaxStripLevel bounds the brute-force strip search
const DefaultMaxStripLevel = 6

// DefaultFallbackLevel is used when no candidate level yields overlap;
// dropping a single top-level directory is the common convention.
const DefaultFallbackLevel = 1

// Resolver infers strip levels by brute-force search over small
// integer levels, maximizing the path overlap between the two sides.
type Resolver struct {
	MaxLevel int
	Fallback int
}

// NewResolver returns a resolver with the conventional bounds
func NewResolver() *Resolver {
	return &Resolver{MaxLevel: DefaultMaxStripLevel, Fallback: DefaultFallbackLevel}
}

// Resolve picks one strip level per side. The two sides may nest their
// source trees to different depths, so levels are searched
// independently: every (levelA, levelB) pair within bounds is scored
// by the size of the shared normalized path set, smaller levels win
// ties to avoid over-merging distinct files that share a suffix.
// When nothing overlaps at any pair, both sides fall back and
// ambiguous is reported instead of an error.
func (r *Resolver) Resolve(pathsA, pathsB []string) (levelA, levelB int, ambiguous bool) {
	maxA := r.searchBound(pathsA)
	maxB := r.searchBound(pathsB)

	if len(pathsA) == 0 || len(pathsB) == 0 {
		return r.Fallback, r.Fallback, true
	}

	candidatesA := candidateSets(pathsA, maxA)
	candidatesB := candidateSets(pathsB, maxB)

	bestOverlap := 0
	bestA, bestB := 0, 0
	for la := 0; la <= maxA; la++ {
		for lb := 0; lb <= maxB; lb++ {
			overlap := intersectionSize(candidatesA[la], candidatesB[lb])
			if overlap > bestOverlap {
				bestOverlap = overlap
				bestA, bestB = la, lb
			}
		}
	}

	if bestOverlap == 0 {
		return r.Fallback, r.Fallback, true
	}
	return bestA, bestB, false
}

// searchBound caps the candidate levels at the deepest observed path
func (r *Resolver) searchBound(paths []string) int {
	maxDepth := 0
	for _, p := range paths {
		if d := PathDepth(p); d > maxDepth {
			maxDepth = d
		}
	}
	bound := maxDepth - 1
	if bound < 0 {
		bound = 0
	}
	if bound > r.MaxLevel {
		bound = r.MaxLevel
	}
	return bound
}

// candidateSets precomputes the normalized path set per strip level
func candidateSets(paths []string, maxLevel int) []map[string]bool {
	sets := make([]map[string]bool, maxLevel+1)
	for level := 0; level <= maxLevel; level++ {
		set := make(map[string]bool, len(paths))
		for _, p := range paths {
			if norm := NormalizePath(p, level); norm != "" {
				set[norm] = true
			}
		}
		sets[level] = set
	}
	return sets
}

func intersectionSize(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if b[k] {
			n++
		}
	}
	return n
}
