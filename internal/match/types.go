// Package match aligns two patch collections for one package: it
// scores every cross pair, assigns patches greedily from the highest
// score down, and classifies each pair or leftover.
package match

import (
	"patchmatch/internal/diffparse"
)

// Category classifies one match result
type Category string

const (
	// CategoryIdentical means the two patches are the same change
	CategoryIdentical Category = "identical"
	// CategorySimilar means the same change with content drift
	CategorySimilar Category = "similar"
	// CategoryPartial means only some hunks overlap
	CategoryPartial Category = "partial"
	// CategoryUnique means the patch exists on one side only
	CategoryUnique Category = "unique"
)

// Result pairs one patch from each side; either side may be nil,
// denoting a patch unique to the other side.
type Result struct {
	A *diffparse.Patch
	B *diffparse.Patch

	Score    float64
	Category Category
}

// Summary counts results per category for one package comparison
type Summary struct {
	Identical int `json:"identical"`
	Similar   int `json:"similar"`
	Partial   int `json:"partial"`
	UniqueA   int `json:"uniqueA"`
	UniqueB   int `json:"uniqueB"`
}

// Add updates the summary with one result
func (s *Summary) Add(r Result) {
	switch r.Category {
	case CategoryIdentical:
		s.Identical++
	case CategorySimilar:
		s.Similar++
	case CategoryPartial:
		s.Partial++
	case CategoryUnique:
		if r.A != nil {
			s.UniqueA++
		} else {
			s.UniqueB++
		}
	}
}
