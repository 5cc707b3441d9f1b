// Package diffparse parses raw unified-diff text into structured patches.
// Parsing never fails hard: undecodable or syntactically broken input
// degrades to a hunk-less patch that still participates in matching.
package diffparse

// ParseStatus describes how far a patch file got through parsing
type ParseStatus string

const (
	// StatusParsed means the diff text yielded structured hunks
	StatusParsed ParseStatus = "parsed"
	// StatusMalformed means no valid hunk header was found anywhere
	StatusMalformed ParseStatus = "malformed"
	// StatusUnreadable means the content was not valid UTF-8
	StatusUnreadable ParseStatus = "unreadable"
)

// Hunk is one contiguous change block from a unified diff.
// Removed and Added carry line content without the leading marker;
// Context counts the shared lines so that
// OldLines == len(Removed)+Context and NewLines == len(Added)+Context.
type Hunk struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`

	OldStart int `json:"oldStart"`
	OldLines int `json:"oldLines"`
	NewStart int `json:"newStart"`
	NewLines int `json:"newLines"`

	Removed []string `json:"removed"`
	Added   []string `json:"added"`
	Context int      `json:"context"`
}

// Consistent reports whether the hunk's line ranges agree with its content
func (h *Hunk) Consistent() bool {
	return h.OldLines == len(h.Removed)+h.Context &&
		h.NewLines == len(h.Added)+h.Context
}

// TouchedPath describes one file a patch touches. HadMarker records
// whether the diff carried a git-style a/ or b/ prefix, which strip
// levels from build recipes count as one path component.
type TouchedPath struct {
	Path      string `json:"path"`
	HadMarker bool   `json:"hadMarker,omitempty"`
}

// Patch is one parsed patch file from one distribution.
// Immutable once built; fingerprints are derived, never stored back.
type Patch struct {
	Distro   string `json:"distro"`
	Package  string `json:"package"`
	Filename string `json:"filename"`

	Raw    string      `json:"-"`
	Status ParseStatus `json:"status"`

	// Hunks is the ordered change content. Empty for malformed or
	// unreadable patches.
	Hunks []Hunk `json:"hunks,omitempty"`

	// Paths lists every touched file in first-seen order, including
	// hunk-less entries (pure renames, mode changes).
	Paths []TouchedPath `json:"paths,omitempty"`
}

// HasContent reports whether the patch carries comparable content
func (p *Patch) HasContent() bool {
	return p.Status == StatusParsed && (len(p.Hunks) > 0 || len(p.Paths) > 0)
}

// TotalAdded returns the raw added-line count across all hunks
func (p *Patch) TotalAdded() int {
	n := 0
	for i := range p.Hunks {
		n += len(p.Hunks[i].Added)
	}
	return n
}

// TotalRemoved returns the raw removed-line count across all hunks
func (p *Patch) TotalRemoved() int {
	n := 0
	for i := range p.Hunks {
		n += len(p.Hunks[i].Removed)
	}
	return n
}

// LineTotal is the added plus removed line count, used by the match
// engine to prefer pairing the more substantial patch first.
func (p *Patch) LineTotal() int {
	return p.TotalAdded() + p.TotalRemoved()
}

// MarkerShare reports whether at least half of the touched paths carried
// a git-style a/ b/ prefix. Recipe strip hints count that prefix as one
// component; callers use this to adjust hints after the marker is gone.
func (p *Patch) MarkerShare() bool {
	if len(p.Paths) == 0 {
		return false
	}
	marked := 0
	for _, tp := range p.Paths {
		if tp.HadMarker {
			marked++
		}
	}
	return marked*2 >= len(p.Paths)
}
