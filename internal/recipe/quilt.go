package recipe

import (
	"strconv"
	"strings"
)

// QuiltDefaultStrip is the quilt convention: one leading directory
const QuiltDefaultStrip = 1

// ParseSeries parses a quilt series file into ordered patch entries.
// Blank lines and comments are skipped. A per-line "-pN" option
// overrides the quilt default strip level of 1.
func ParseSeries(content string) []PatchEntry {
	var entries []PatchEntry

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		name := fields[0]
		strip := QuiltDefaultStrip

		for _, opt := range fields[1:] {
			if strings.HasPrefix(opt, "-p") {
				if level, err := strconv.Atoi(opt[2:]); err == nil {
					strip = level
				}
			}
		}

		entries = append(entries, PatchEntry{
			Name:       name,
			Number:     -1,
			StripLevel: strip,
		})
	}

	return entries
}
