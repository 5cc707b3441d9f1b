package report

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DeltaOptions controls near-match delta rendering
type DeltaOptions struct {
	// Context is the number of context lines in the rendered hunks
	Context int
	// MaxBytes guards against pathological inputs; 0 means no limit
	MaxBytes int
}

// PatchDelta renders a unified diff between the raw text of two
// near-matching patches, so a reviewer can see exactly where a
// similar or partial pair diverges. Returns empty output and
// oversize=true when the inputs exceed MaxBytes.
func PatchDelta(nameA, nameB, rawA, rawB string, opt DeltaOptions) (string, bool) {
	if opt.MaxBytes > 0 && len(rawA)+len(rawB) > opt.MaxBytes {
		return "", true
	}

	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(rawA),
		B:        splitLinesKeepNL(rawB),
		FromFile: nameA,
		ToFile:   nameB,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", false
	}
	return s, false
}

// splitLinesKeepNL splits into lines keeping the newline characters,
// which produces cleaner unified hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}
