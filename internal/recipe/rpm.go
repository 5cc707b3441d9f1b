// Package recipe extracts patch lists and strip-level hints from build
// recipes: RPM spec files on one side, quilt series files on the other.
// Hints let the engine skip strip-level inference when the ecosystem
// already states its convention.
package recipe

import (
	"regexp"
	"strconv"
	"strings"
)

// PatchEntry is one patch referenced by a build recipe, in application
// order. StripLevel is -1 when the recipe does not state one.
type PatchEntry struct {
	Name       string
	Number     int // -1 for unnumbered declarations
	StripLevel int
}

var (
	defineRe     = regexp.MustCompile(`(?m)^\s*(?:%define|%global)\s+(\w+)\s+(.+)$`)
	headerFields = []string{"name", "version", "release", "url"}
	patchDeclRe  = regexp.MustCompile(`^[Pp]atch(\d+)\s*:\s*(.+)$`)
	macroRe      = regexp.MustCompile(`%\{(\??[a-zA-Z0-9_]+)\}`)
	autosetupRe  = regexp.MustCompile(`%autosetup\b.*?-p\s*([0-9]+)`)
	patchCmdRe   = regexp.MustCompile(`%[Pp]atch\s+(?:-P\s*(\d+))?(?:\s+-p\s*(\d+))?`)
	prepRe       = regexp.MustCompile(`(?s)%prep\s*(.*?)(?:%(?:build|install|check|files|clean|changelog|description)|$)`)
)

// ParseSpec extracts the ordered patch list from an RPM spec file:
// macro definitions are expanded into PatchN declarations, and the
// %prep section is scanned for %autosetup / %patch strip levels.
func ParseSpec(content string) []PatchEntry {
	defines := parseDefines(content)

	var entries []PatchEntry
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "#") {
			continue
		}

		if m := patchDeclRe.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[2])
			if isRemoteRef(name) {
				name = remoteBasename(name)
			}
			num, _ := strconv.Atoi(m[1])
			entries = append(entries, PatchEntry{
				Name:       expandMacros(name, defines),
				Number:     num,
				StripLevel: -1,
			})
			continue
		}

		if strings.HasPrefix(strings.ToLower(line), "patch:") {
			name := strings.TrimSpace(line[len("patch:"):])
			if isRemoteRef(name) {
				name = remoteBasename(name)
			}
			entries = append(entries, PatchEntry{
				Name:       expandMacros(name, defines),
				Number:     -1,
				StripLevel: -1,
			})
		}
	}

	applyPrepLevels(content, entries)
	return entries
}

// parseDefines collects %define/%global macros plus the spec header
// fields that commonly appear inside patch names.
func parseDefines(content string) map[string]string {
	defines := make(map[string]string)
	for _, m := range defineRe.FindAllStringSubmatch(content, -1) {
		defines[m[1]] = strings.TrimSpace(m[2])
	}
	for _, field := range headerFields {
		re := regexp.MustCompile(`(?mi)^` + field + `:\s*(.+)$`)
		if m := re.FindStringSubmatch(content); m != nil {
			defines[field] = strings.TrimSpace(m[1])
		}
	}
	return defines
}

// expandMacros substitutes %{name} and %{?name} references, iterating
// because macro values may themselves contain macros. Bounded to avoid
// definition cycles.
func expandMacros(text string, defines map[string]string) string {
	for iteration := 0; iteration < 10; iteration++ {
		next := macroRe.ReplaceAllStringFunc(text, func(ref string) string {
			name := macroRe.FindStringSubmatch(ref)[1]
			optional := strings.HasPrefix(name, "?")
			if optional {
				name = name[1:]
			}
			if value, ok := defines[name]; ok {
				return value
			}
			if optional {
				return ""
			}
			return ref
		})
		if next == text {
			break
		}
		text = next
	}
	return text
}

// applyPrepLevels fills StripLevel from the %prep section: a single
// %autosetup -pN sets the default for every patch, and explicit
// %patch -PN -pM commands override per patch number. Patches with no
// stated level get the default (0 when %prep says nothing).
func applyPrepLevels(content string, entries []PatchEntry) {
	defaultStrip := 0

	if m := prepRe.FindStringSubmatch(content); m != nil {
		prep := m[1]

		for _, line := range strings.Split(prep, "\n") {
			if am := autosetupRe.FindStringSubmatch(line); am != nil {
				defaultStrip, _ = strconv.Atoi(am[1])
				break
			}
		}

		for _, cm := range patchCmdRe.FindAllStringSubmatch(prep, -1) {
			if cm[1] == "" || cm[2] == "" {
				continue
			}
			num, _ := strconv.Atoi(cm[1])
			level, _ := strconv.Atoi(cm[2])
			for i := range entries {
				if entries[i].Number == num {
					entries[i].StripLevel = level
				}
			}
		}
	}

	for i := range entries {
		if entries[i].StripLevel < 0 {
			entries[i].StripLevel = defaultStrip
		}
	}
}

func isRemoteRef(name string) bool {
	return strings.HasPrefix(name, "http://") ||
		strings.HasPrefix(name, "https://") ||
		strings.HasPrefix(name, "ftp://")
}

// remoteBasename reduces a URL patch reference to its local filename:
// the #fragment when present, the last path segment otherwise.
func remoteBasename(ref string) string {
	if idx := strings.LastIndex(ref, "#"); idx != -1 && idx+1 < len(ref) {
		return strings.TrimPrefix(ref[idx+1:], "/")
	}
	trimmed := strings.TrimSuffix(ref, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx != -1 {
		return trimmed[idx+1:]
	}
	return ref
}
