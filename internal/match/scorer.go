package match

import (
	"patchmatch/internal/fingerprint"
)

// Weights splits the similarity score across the three sub-scores.
// Added lines carry the new behavior and weigh heaviest; removed lines
// and path overlap corroborate that the same location is changing.
type Weights struct {
	Path    float64
	Added   float64
	Removed float64
}

// DefaultWeights returns the standard weight split
func DefaultWeights() Weights {
	return Weights{Path: 0.3, Added: 0.4, Removed: 0.3}
}

// Thresholds maps scores to categories. Pairs scoring below Partial
// are rejected rather than forced into a low-confidence pairing.
type Thresholds struct {
	Identical float64
	Similar   float64
	Partial   float64
}

// DefaultThresholds returns the standard category boundaries
func DefaultThresholds() Thresholds {
	return Thresholds{Identical: 0.95, Similar: 0.8, Partial: 0.5}
}

// Scorer computes symmetric similarity scores between fingerprints
type Scorer struct {
	Weights    Weights
	Thresholds Thresholds
}

// NewScorer returns a scorer with the default weights and thresholds
func NewScorer() *Scorer {
	return &Scorer{Weights: DefaultWeights(), Thresholds: DefaultThresholds()}
}

// Score returns a similarity in [0,1]. Symmetric by construction. A
// fingerprint with no paths and no change lines scores 0.0 against
// everything, itself included; empty-vs-empty is only 1.0 per
// sub-score when the other sub-scores still carry content.
func (s *Scorer) Score(a, b *fingerprint.Fingerprint) float64 {
	if a.Empty() || b.Empty() {
		return 0.0
	}

	pathScore := jaccard(a.Paths, b.Paths)
	addedScore := jaccard(a.AddedLines, b.AddedLines)
	removedScore := jaccard(a.RemovedLines, b.RemovedLines)

	return s.Weights.Path*pathScore +
		s.Weights.Added*addedScore +
		s.Weights.Removed*removedScore
}

// Categorize maps an accepted score to its category. Scores below the
// partial threshold are not valid matches.
func (s *Scorer) Categorize(score float64) (Category, bool) {
	switch {
	case score >= s.Thresholds.Identical:
		return CategoryIdentical, true
	case score >= s.Thresholds.Similar:
		return CategorySimilar, true
	case score >= s.Thresholds.Partial:
		return CategoryPartial, true
	default:
		return CategoryUnique, false
	}
}

// jaccard is |intersection| / |union|, defined as 1.0 when both sets
// are empty.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	inter := 0
	small, large := a, b
	if len(large) < len(small) {
		small, large = large, small
	}
	for k := range small {
		if large[k] {
			inter++
		}
	}

	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
