// Package fingerprint derives comparable feature sets from parsed
// patches: canonical touched paths plus whitespace-normalized change
// lines. A fingerprint is a pure function of (patch, strip level);
// recomputing from the same inputs yields an identical value.
package fingerprint

import (
	"strings"
)

// NormalizePath canonicalizes a diff file path for comparison: drops
// the first stripLevel components, lower-cases the remainder, and
// collapses redundant separators and "./" noise. Git-style a/ b/
// markers are already removed at parse time, so normalizing an
// already-normalized path at level 0 is a no-op.
func NormalizePath(path string, stripLevel int) string {
	if path == "" || path == "/dev/null" {
		return ""
	}

	path = strings.ToLower(path)
	path = strings.ReplaceAll(path, "\\", "/")

	segments := make([]string, 0, 8)
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." {
			continue
		}
		segments = append(segments, seg)
	}

	if stripLevel > 0 {
		if stripLevel >= len(segments) {
			// Never strip away the filename itself
			segments = segments[len(segments)-1:]
		} else {
			segments = segments[stripLevel:]
		}
	}

	return strings.Join(segments, "/")
}

// PathDepth returns the number of components a path has after marker
// and separator cleanup. Used to bound the strip-level search.
func PathDepth(path string) int {
	norm := NormalizePath(path, 0)
	if norm == "" {
		return 0
	}
	return strings.Count(norm, "/") + 1
}

// NormalizeLine prepares a change line for set comparison: trailing
// whitespace is stripped and interior whitespace runs collapse to a
// single space, tolerating reformatting-only noise.
func NormalizeLine(line string) string {
	var b strings.Builder
	b.Grow(len(line))

	inSpace := false
	for _, r := range line {
		if r == ' ' || r == '\t' || r == '\r' {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}

	return b.String()
}
