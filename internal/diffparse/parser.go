package diffparse

import (
	"strings"
	"unicode/utf8"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// Parser parses unified diff text into Patch values
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses one patch file's text. It always returns a Patch: broken
// input degrades the status instead of failing, so a batch over many
// packages never aborts on one bad file.
func (p *Parser) Parse(distro, pkg, filename, text string) *Patch {
	patch := &Patch{
		Distro:   distro,
		Package:  pkg,
		Filename: filename,
		Raw:      text,
		Status:   StatusParsed,
	}

	if !utf8.ValidString(text) {
		patch.Status = StatusUnreadable
		return patch
	}

	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(text))
	if err != nil || len(fileDiffs) == 0 {
		patch.Status = StatusMalformed
		return patch
	}

	seen := make(map[string]bool)
	for _, fd := range fileDiffs {
		oldPath, oldMarker := cleanPath(fd.OrigName)
		newPath, newMarker := cleanPath(fd.NewName)

		effective, marker := effectivePath(oldPath, oldMarker, newPath, newMarker)
		if effective != "" && !seen[effective] {
			seen[effective] = true
			patch.Paths = append(patch.Paths, TouchedPath{Path: effective, HadMarker: marker})
		}

		for _, hunk := range fd.Hunks {
			h := Hunk{
				OldPath:  oldPath,
				NewPath:  newPath,
				OldStart: int(hunk.OrigStartLine),
				OldLines: int(hunk.OrigLines),
				NewStart: int(hunk.NewStartLine),
				NewLines: int(hunk.NewLines),
			}
			splitHunkBody(string(hunk.Body), &h)
			patch.Hunks = append(patch.Hunks, h)
		}
	}

	if len(patch.Paths) == 0 && len(patch.Hunks) == 0 {
		patch.Status = StatusMalformed
	}

	return patch
}

// splitHunkBody classifies each body line by its leading marker
func splitHunkBody(body string, h *Hunk) {
	lines := strings.Split(body, "\n")
	for _, line := range lines {
		if len(line) == 0 {
			// go-diff strips the trailing newline; a truly empty body
			// line is a context line with no content
			h.Context++
			continue
		}
		switch line[0] {
		case '+':
			h.Added = append(h.Added, line[1:])
		case '-':
			h.Removed = append(h.Removed, line[1:])
		case ' ':
			h.Context++
		case '\\':
			// "\ No newline at end of file"
		}
	}
	// The split above yields a final empty element for bodies ending in
	// a newline; it was counted as context, undo that.
	if strings.HasSuffix(body, "\n") {
		h.Context--
	}
}

// effectivePath picks the most relevant path for a file entry, the new
// side unless the file was deleted.
func effectivePath(oldPath string, oldMarker bool, newPath string, newMarker bool) (string, bool) {
	if newPath != "" && newPath != "/dev/null" {
		return newPath, newMarker
	}
	if oldPath != "" && oldPath != "/dev/null" {
		return oldPath, oldMarker
	}
	return "", false
}

// cleanPath removes the a/ or b/ prefix from git-style diff paths and
// reports whether one was present.
func cleanPath(path string) (string, bool) {
	if path == "" || path == "/dev/null" {
		return path, false
	}
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		return path[2:], true
	}
	return path, false
}
