// Package report renders comparison results in the stable structured
// form consumers read: one record per package with a match list and
// category counts, plus a corpus-level rollup across packages.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"patchmatch/internal/engine"
	"patchmatch/internal/match"
	"patchmatch/internal/storage"
)

// MatchRecord is one match in the serialized output. Absent sides are
// null, denoting a patch unique to the other side.
type MatchRecord struct {
	PatchA   *string `json:"patchA" yaml:"patchA"`
	PatchB   *string `json:"patchB" yaml:"patchB"`
	Score    float64 `json:"score" yaml:"score"`
	Category string  `json:"category" yaml:"category"`
}

// PackageReport is the per-package record of the output contract
type PackageReport struct {
	Package string        `json:"package" yaml:"package"`
	DistroA string        `json:"distroA" yaml:"distroA"`
	DistroB string        `json:"distroB" yaml:"distroB"`
	Matches []MatchRecord `json:"matches" yaml:"matches"`
	Summary match.Summary `json:"summary" yaml:"summary"`

	AmbiguousStripLevel bool `json:"ambiguousStripLevel,omitempty" yaml:"ambiguousStripLevel,omitempty"`
}

// Rollup aggregates category counts across a whole run
type Rollup struct {
	Packages  int `json:"packages" yaml:"packages"`
	Identical int `json:"identical" yaml:"identical"`
	Similar   int `json:"similar" yaml:"similar"`
	Partial   int `json:"partial" yaml:"partial"`
	UniqueA   int `json:"uniqueA" yaml:"uniqueA"`
	UniqueB   int `json:"uniqueB" yaml:"uniqueB"`

	// AmbiguousPackages counts packages where strip-level inference
	// fell back to the default
	AmbiguousPackages int `json:"ambiguousPackages,omitempty" yaml:"ambiguousPackages,omitempty"`
}

// RunReport is the full serialized output of one run
type RunReport struct {
	RunID    string          `json:"runId,omitempty" yaml:"runId,omitempty"`
	Packages []PackageReport `json:"packages" yaml:"packages"`
	Rollup   Rollup          `json:"rollup" yaml:"rollup"`
}

// FromComparison converts an in-memory comparison result
func FromComparison(r *engine.ComparisonResult) PackageReport {
	pr := PackageReport{
		Package:             r.Package,
		DistroA:             r.DistroA,
		DistroB:             r.DistroB,
		Matches:             make([]MatchRecord, 0, len(r.Results)),
		Summary:             r.Summary,
		AmbiguousStripLevel: r.AmbiguousStripLevel,
	}
	for _, m := range r.Results {
		rec := MatchRecord{Score: m.Score, Category: string(m.Category)}
		if m.A != nil {
			name := m.A.Filename
			rec.PatchA = &name
		}
		if m.B != nil {
			name := m.B.Filename
			rec.PatchB = &name
		}
		pr.Matches = append(pr.Matches, rec)
	}
	return pr
}

// FromStored converts a comparison read back from the database
func FromStored(c *storage.StoredComparison) PackageReport {
	pr := PackageReport{
		Package:             c.Package,
		DistroA:             c.DistroA,
		DistroB:             c.DistroB,
		Matches:             make([]MatchRecord, 0, len(c.Matches)),
		Summary:             c.Summary,
		AmbiguousStripLevel: c.AmbiguousStripLevel,
	}
	for _, m := range c.Matches {
		rec := MatchRecord{Score: m.Score, Category: m.Category}
		if m.PatchA != "" {
			name := m.PatchA
			rec.PatchA = &name
		}
		if m.PatchB != "" {
			name := m.PatchB
			rec.PatchB = &name
		}
		pr.Matches = append(pr.Matches, rec)
	}
	return pr
}

// BuildRun assembles the run-level report with its rollup
func BuildRun(runID string, packages []PackageReport) *RunReport {
	rr := &RunReport{
		RunID:    runID,
		Packages: packages,
	}
	rr.Rollup.Packages = len(packages)
	for _, p := range packages {
		rr.Rollup.Identical += p.Summary.Identical
		rr.Rollup.Similar += p.Summary.Similar
		rr.Rollup.Partial += p.Summary.Partial
		rr.Rollup.UniqueA += p.Summary.UniqueA
		rr.Rollup.UniqueB += p.Summary.UniqueB
		if p.AmbiguousStripLevel {
			rr.Rollup.AmbiguousPackages++
		}
	}
	return rr
}

// Format renders any report value in the requested output format
func Format(v interface{}, format string) (string, error) {
	switch format {
	case "json", "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(data), nil
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return string(data), nil
	case "human":
		return formatHuman(v), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatHuman renders a compact terminal view
func formatHuman(v interface{}) string {
	var b strings.Builder

	switch r := v.(type) {
	case *RunReport:
		for i := range r.Packages {
			b.WriteString(formatHuman(&r.Packages[i]))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "total: %d packages, %d identical, %d similar, %d partial, %d/%d unique\n",
			r.Rollup.Packages, r.Rollup.Identical, r.Rollup.Similar,
			r.Rollup.Partial, r.Rollup.UniqueA, r.Rollup.UniqueB)
	case *PackageReport:
		fmt.Fprintf(&b, "%s (%s vs %s)\n", r.Package, r.DistroA, r.DistroB)
		for _, m := range r.Matches {
			fmt.Fprintf(&b, "  %-10s %.2f  %s | %s\n",
				m.Category, m.Score, nameOrDash(m.PatchA), nameOrDash(m.PatchB))
		}
		if r.AmbiguousStripLevel {
			b.WriteString("  (strip level ambiguous, fell back to default)\n")
		}
		fmt.Fprintf(&b, "  summary: %d identical, %d similar, %d partial, %d/%d unique\n",
			r.Summary.Identical, r.Summary.Similar, r.Summary.Partial,
			r.Summary.UniqueA, r.Summary.UniqueB)
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err == nil {
			b.Write(data)
		}
	}

	return b.String()
}

func nameOrDash(name *string) string {
	if name == nil {
		return "-"
	}
	return *name
}
