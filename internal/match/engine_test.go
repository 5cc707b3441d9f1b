package match

import (
	"testing"

	"patchmatch/internal/diffparse"
	"patchmatch/internal/fingerprint"
)

func patchNamed(name string, lineTotal int) *diffparse.Patch {
	p := &diffparse.Patch{Filename: name, Status: diffparse.StatusParsed}
	if lineTotal > 0 {
		added := make([]string, lineTotal)
		for i := range added {
			added[i] = "line"
		}
		p.Hunks = []diffparse.Hunk{{Added: added}}
	}
	return p
}

func TestMatchExactPairs(t *testing.T) {
	a := Side{
		Patches: []*diffparse.Patch{patchNamed("0001-fix.patch", 2)},
		Prints:  []*fingerprint.Fingerprint{fp([]string{"x.c"}, []string{"one", "two"}, nil)},
	}
	b := Side{
		Patches: []*diffparse.Patch{patchNamed("fix-x.patch", 2)},
		Prints:  []*fingerprint.Fingerprint{fp([]string{"x.c"}, []string{"one", "two"}, nil)},
	}

	results, summary := NewEngine(nil).Match(a, b)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Category != CategoryIdentical {
		t.Errorf("Expected identical, got %s", r.Category)
	}
	if r.A == nil || r.B == nil {
		t.Fatal("Expected both sides assigned")
	}
	if r.A.Filename != "0001-fix.patch" || r.B.Filename != "fix-x.patch" {
		t.Errorf("Unexpected pairing: %s | %s", r.A.Filename, r.B.Filename)
	}
	if summary.Identical != 1 {
		t.Errorf("Expected summary identical=1, got %+v", summary)
	}
}

func TestMatchDisjointSides(t *testing.T) {
	a := Side{
		Patches: []*diffparse.Patch{patchNamed("a.patch", 1)},
		Prints:  []*fingerprint.Fingerprint{fp([]string{"a.c"}, []string{"alpha"}, nil)},
	}
	b := Side{
		Patches: []*diffparse.Patch{patchNamed("b.patch", 1)},
		Prints:  []*fingerprint.Fingerprint{fp([]string{"b.c"}, []string{"beta"}, nil)},
	}

	results, summary := NewEngine(nil).Match(a, b)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Category != CategoryUnique {
			t.Errorf("Expected unique, got %s", r.Category)
		}
		if r.Score != 0.0 {
			t.Errorf("Expected score 0.0 for unique results, got %f", r.Score)
		}
	}
	if summary.UniqueA != 1 || summary.UniqueB != 1 {
		t.Errorf("Expected 1 unique per side, got %+v", summary)
	}
}

func TestMatchEmptySides(t *testing.T) {
	results, summary := NewEngine(nil).Match(Side{}, Side{})
	if len(results) != 0 {
		t.Errorf("Expected no results for empty sides, got %d", len(results))
	}
	if summary != (Summary{}) {
		t.Errorf("Expected zero summary, got %+v", summary)
	}
}

func TestMatchOneSideEmpty(t *testing.T) {
	a := Side{
		Patches: []*diffparse.Patch{patchNamed("a.patch", 1), patchNamed("b.patch", 1)},
		Prints: []*fingerprint.Fingerprint{
			fp([]string{"a.c"}, []string{"alpha"}, nil),
			fp([]string{"b.c"}, []string{"beta"}, nil),
		},
	}

	results, summary := NewEngine(nil).Match(a, Side{})

	if len(results) != 2 || summary.UniqueA != 2 {
		t.Fatalf("Expected every patch unique to A, got %d results, summary %+v",
			len(results), summary)
	}
}

func TestMatchGreedyAssignment(t *testing.T) {
	// a0 matches b0 perfectly and b1 partially; a1 only matches b1.
	// Greedy must give a0 its perfect partner and leave b1 for a1.
	a := Side{
		Patches: []*diffparse.Patch{patchNamed("a0.patch", 2), patchNamed("a1.patch", 2)},
		Prints: []*fingerprint.Fingerprint{
			fp([]string{"x.c"}, []string{"one", "two"}, nil),
			fp([]string{"x.c"}, []string{"two", "three"}, nil),
		},
	}
	b := Side{
		Patches: []*diffparse.Patch{patchNamed("b0.patch", 2), patchNamed("b1.patch", 2)},
		Prints: []*fingerprint.Fingerprint{
			fp([]string{"x.c"}, []string{"one", "two"}, nil),
			fp([]string{"x.c"}, []string{"two", "three"}, nil),
		},
	}

	results, summary := NewEngine(nil).Match(a, b)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].B == nil || results[0].B.Filename != "b0.patch" {
		t.Errorf("Expected a0 paired with b0, got %+v", results[0])
	}
	if results[1].B == nil || results[1].B.Filename != "b1.patch" {
		t.Errorf("Expected a1 paired with b1, got %+v", results[1])
	}
	if summary.Identical != 2 {
		t.Errorf("Expected 2 identical pairs, got %+v", summary)
	}
}

func TestMatchRejectsLowScores(t *testing.T) {
	// Shared path only: 0.3, which is below the partial threshold, so
	// the pair must not be forced together.
	a := Side{
		Patches: []*diffparse.Patch{patchNamed("a.patch", 2)},
		Prints:  []*fingerprint.Fingerprint{fp([]string{"x.c"}, []string{"alpha"}, []string{"old-a"})},
	}
	b := Side{
		Patches: []*diffparse.Patch{patchNamed("b.patch", 2)},
		Prints:  []*fingerprint.Fingerprint{fp([]string{"x.c"}, []string{"beta"}, []string{"old-b"})},
	}

	results, summary := NewEngine(nil).Match(a, b)

	if summary.UniqueA != 1 || summary.UniqueB != 1 {
		t.Errorf("Expected both patches unique, got %+v", summary)
	}
	for _, r := range results {
		if r.Category != CategoryUnique {
			t.Errorf("Expected unique, got %s at %f", r.Category, r.Score)
		}
	}
}

func TestMatchResultOrder(t *testing.T) {
	a := Side{
		Patches: []*diffparse.Patch{patchNamed("a0.patch", 1), patchNamed("a1.patch", 1)},
		Prints: []*fingerprint.Fingerprint{
			fp([]string{"only-a.c"}, []string{"a"}, nil),
			fp([]string{"shared.c"}, []string{"s"}, nil),
		},
	}
	b := Side{
		Patches: []*diffparse.Patch{patchNamed("b0.patch", 1), patchNamed("b1.patch", 1)},
		Prints: []*fingerprint.Fingerprint{
			fp([]string{"shared.c"}, []string{"s"}, nil),
			fp([]string{"only-b.c"}, []string{"b"}, nil),
		},
	}

	results, _ := NewEngine(nil).Match(a, b)

	// Side-A order first, then unmatched side-B patches.
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].A == nil || results[0].A.Filename != "a0.patch" || results[0].B != nil {
		t.Errorf("Expected a0 unique first, got %+v", results[0])
	}
	if results[1].A == nil || results[1].A.Filename != "a1.patch" || results[1].B == nil {
		t.Errorf("Expected a1 matched second, got %+v", results[1])
	}
	if results[2].A != nil || results[2].B == nil || results[2].B.Filename != "b1.patch" {
		t.Errorf("Expected unmatched b1 last, got %+v", results[2])
	}
}

func TestSummaryAdd(t *testing.T) {
	var s Summary
	s.Add(Result{A: patchNamed("a", 0), B: patchNamed("b", 0), Category: CategoryIdentical})
	s.Add(Result{A: patchNamed("a", 0), Category: CategoryUnique})
	s.Add(Result{B: patchNamed("b", 0), Category: CategoryUnique})

	if s.Identical != 1 || s.UniqueA != 1 || s.UniqueB != 1 {
		t.Errorf("Unexpected summary %+v", s)
	}
}
