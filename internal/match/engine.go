package match

import (
	"sort"

	"patchmatch/internal/diffparse"
	"patchmatch/internal/fingerprint"
)

// Side is one collection's patches with their precomputed fingerprints,
// index-aligned.
type Side struct {
	Patches []*diffparse.Patch
	Prints  []*fingerprint.Fingerprint
}

// Engine computes the one-to-one-or-none assignment between two sides
type Engine struct {
	scorer *Scorer
}

// NewEngine creates an engine using the given scorer
func NewEngine(scorer *Scorer) *Engine {
	if scorer == nil {
		scorer = NewScorer()
	}
	return &Engine{scorer: scorer}
}

// candidate is one scored cross pair
type candidate struct {
	ia, ib  int
	score   float64
	lineSum int
}

// Match covers every patch on both sides exactly once. Pairs are
// processed in descending score order and accepted greedily; ties
// prefer the larger combined line count, then the earlier collection
// positions, so results are deterministic. Pairs under the partial
// threshold are rejected and both patches report unique. Results come
// out in side-A collection order followed by the unmatched side-B
// patches in their order.
func (e *Engine) Match(a, b Side) ([]Result, Summary) {
	candidates := make([]candidate, 0, len(a.Patches)*len(b.Patches))
	for ia := range a.Patches {
		for ib := range b.Patches {
			score := e.scorer.Score(a.Prints[ia], b.Prints[ib])
			if score <= 0 {
				continue
			}
			candidates = append(candidates, candidate{
				ia:      ia,
				ib:      ib,
				score:   score,
				lineSum: a.Patches[ia].LineTotal() + b.Patches[ib].LineTotal(),
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.score != cj.score {
			return ci.score > cj.score
		}
		if ci.lineSum != cj.lineSum {
			return ci.lineSum > cj.lineSum
		}
		if ci.ia != cj.ia {
			return ci.ia < cj.ia
		}
		return ci.ib < cj.ib
	})

	assignedA := make([]int, len(a.Patches))
	assignedB := make([]int, len(b.Patches))
	for i := range assignedA {
		assignedA[i] = -1
	}
	for i := range assignedB {
		assignedB[i] = -1
	}

	pairScore := make(map[int]float64, len(a.Patches))
	pairCategory := make(map[int]Category, len(a.Patches))

	for _, c := range candidates {
		if assignedA[c.ia] != -1 || assignedB[c.ib] != -1 {
			continue
		}
		category, ok := e.scorer.Categorize(c.score)
		if !ok {
			// Below the confidence floor; later candidates only score
			// lower, but other pairs for these patches may still exist,
			// so just skip this pairing.
			continue
		}
		assignedA[c.ia] = c.ib
		assignedB[c.ib] = c.ia
		pairScore[c.ia] = c.score
		pairCategory[c.ia] = category
	}

	results := make([]Result, 0, len(a.Patches)+len(b.Patches))
	var summary Summary

	for ia, patch := range a.Patches {
		var r Result
		if ib := assignedA[ia]; ib != -1 {
			r = Result{
				A:        patch,
				B:        b.Patches[ib],
				Score:    pairScore[ia],
				Category: pairCategory[ia],
			}
		} else {
			r = Result{A: patch, Score: 0.0, Category: CategoryUnique}
		}
		results = append(results, r)
		summary.Add(r)
	}

	for ib, patch := range b.Patches {
		if assignedB[ib] != -1 {
			continue
		}
		r := Result{B: patch, Score: 0.0, Category: CategoryUnique}
		results = append(results, r)
		summary.Add(r)
	}

	return results, summary
}
