package match

import (
	"math"
	"testing"

	"patchmatch/internal/fingerprint"
)

func fp(paths, added, removed []string) *fingerprint.Fingerprint {
	f := &fingerprint.Fingerprint{
		Paths:        make(map[string]bool),
		AddedLines:   make(map[string]bool),
		RemovedLines: make(map[string]bool),
	}
	for _, p := range paths {
		f.Paths[p] = true
	}
	for _, l := range added {
		f.AddedLines[l] = true
	}
	for _, l := range removed {
		f.RemovedLines[l] = true
	}
	f.AddedCount = len(added)
	f.RemovedCount = len(removed)
	return f
}

func TestScoreIdenticalFingerprints(t *testing.T) {
	a := fp([]string{"inflate.c"}, []string{"state->flags = 0;"}, []string{"state->flags = 1;"})
	b := fp([]string{"inflate.c"}, []string{"state->flags = 0;"}, []string{"state->flags = 1;"})

	score := NewScorer().Score(a, b)
	if math.Abs(score-1.0) > 1e-9 {
		t.Errorf("Expected score 1.0 for identical fingerprints, got %f", score)
	}
}

func TestScoreEmptyFingerprint(t *testing.T) {
	empty := fp(nil, nil, nil)
	full := fp([]string{"x.c"}, []string{"line"}, nil)
	s := NewScorer()

	if score := s.Score(empty, empty); score != 0.0 {
		t.Errorf("Expected a content-less fingerprint to score 0.0 against itself, got %f", score)
	}
	if score := s.Score(empty, full); score != 0.0 {
		t.Errorf("Expected 0.0 against an empty side, got %f", score)
	}
	if score := s.Score(full, empty); score != 0.0 {
		t.Errorf("Expected 0.0 against an empty side, got %f", score)
	}
}

func TestScoreSymmetric(t *testing.T) {
	a := fp([]string{"a.c", "b.c"}, []string{"x", "y"}, []string{"z"})
	b := fp([]string{"b.c", "c.c"}, []string{"y"}, []string{"z", "w"})

	s := NewScorer()
	if s.Score(a, b) != s.Score(b, a) {
		t.Error("Score must be symmetric")
	}
}

func TestScoreEmptySubscoreCountsAsAgreement(t *testing.T) {
	// Neither patch removes anything: the removed sub-score is full
	// agreement, not a penalty.
	a := fp([]string{"x.c"}, []string{"new line"}, nil)
	b := fp([]string{"x.c"}, []string{"new line"}, nil)

	score := NewScorer().Score(a, b)
	if math.Abs(score-1.0) > 1e-9 {
		t.Errorf("Expected 1.0 when both removed sets are empty, got %f", score)
	}
}

func TestScoreWeighting(t *testing.T) {
	// Paths match fully, change lines are disjoint: only the path
	// weight survives.
	a := fp([]string{"x.c"}, []string{"one"}, []string{"two"})
	b := fp([]string{"x.c"}, []string{"three"}, []string{"four"})

	score := NewScorer().Score(a, b)
	if math.Abs(score-0.3) > 1e-9 {
		t.Errorf("Expected 0.3, got %f", score)
	}
}

func TestScoreSupersetNeverIdentical(t *testing.T) {
	// B carries everything A does plus extra lines in a second file;
	// the drift must keep the pair out of the identical band.
	shared := []string{"l0", "l1", "l2", "l3", "l4", "l5", "l6", "l7", "l8", "l9"}
	extra := append(append([]string{}, shared...), "e0", "e1", "e2", "e3", "e4")

	a := fp([]string{"a.c"}, shared, nil)
	b := fp([]string{"a.c", "b.c"}, extra, nil)

	s := NewScorer()
	score := s.Score(a, b)
	category, accepted := s.Categorize(score)

	if !accepted {
		t.Fatalf("Expected an accepted pairing, got score %f", score)
	}
	if category != CategorySimilar && category != CategoryPartial {
		t.Errorf("Expected similar or partial, got %s at %f", category, score)
	}
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		score    float64
		category Category
		accepted bool
	}{
		{1.0, CategoryIdentical, true},
		{0.95, CategoryIdentical, true},
		{0.94, CategorySimilar, true},
		{0.8, CategorySimilar, true},
		{0.79, CategoryPartial, true},
		{0.5, CategoryPartial, true},
		{0.49, CategoryUnique, false},
		{0.0, CategoryUnique, false},
	}

	s := NewScorer()
	for _, tc := range cases {
		category, accepted := s.Categorize(tc.score)
		if category != tc.category || accepted != tc.accepted {
			t.Errorf("Categorize(%f) = (%s, %v), expected (%s, %v)",
				tc.score, category, accepted, tc.category, tc.accepted)
		}
	}
}

func TestJaccard(t *testing.T) {
	set := func(items ...string) map[string]bool {
		m := make(map[string]bool)
		for _, it := range items {
			m[it] = true
		}
		return m
	}

	cases := []struct {
		name     string
		a, b     map[string]bool
		expected float64
	}{
		{"identical", set("x", "y"), set("x", "y"), 1.0},
		{"disjoint", set("x"), set("y"), 0.0},
		{"half", set("x", "y"), set("y", "z"), 1.0 / 3.0},
		{"both empty", set(), set(), 1.0},
		{"one empty", set("x"), set(), 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := jaccard(tc.a, tc.b); math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("Expected %f, got %f", tc.expected, got)
			}
		})
	}
}
