// Package engine runs one comparison per (package, distro pair):
// resolve strip levels, fingerprint both collections, score the cross
// matrix, and align. Units are independent; a batch runs them on a
// bounded worker pool.
package engine

import (
	"patchmatch/internal/collect"
	"patchmatch/internal/config"
	"patchmatch/internal/fingerprint"
	"patchmatch/internal/logging"
	"patchmatch/internal/match"
)

// ComparisonResult is the full outcome for one package
type ComparisonResult struct {
	Package string
	DistroA string
	DistroB string

	Results []match.Result
	Summary match.Summary

	// StripA/StripB are the levels applied to patches without recipe
	// hints. AmbiguousStripLevel records the resolver's fallback; it is
	// a condition on the result, never an error.
	StripA              int
	StripB              int
	AmbiguousStripLevel bool
}

// Engine wires the core components together
type Engine struct {
	scorer        *match.Scorer
	matcher       *match.Engine
	resolver      *fingerprint.Resolver
	logger        *logging.Logger
	maxPatchLines int
}

// New builds an engine from configuration
func New(cfg *config.Config, logger *logging.Logger) *Engine {
	scorer := &match.Scorer{
		Weights: match.Weights{
			Path:    cfg.Similarity.PathWeight,
			Added:   cfg.Similarity.AddedWeight,
			Removed: cfg.Similarity.RemovedWeight,
		},
		Thresholds: match.Thresholds{
			Identical: cfg.Similarity.IdenticalThreshold,
			Similar:   cfg.Similarity.SimilarThreshold,
			Partial:   cfg.Similarity.PartialThreshold,
		},
	}
	return &Engine{
		scorer:  scorer,
		matcher: match.NewEngine(scorer),
		resolver: &fingerprint.Resolver{
			MaxLevel: cfg.StripLevel.MaxLevel,
			Fallback: cfg.StripLevel.Fallback,
		},
		logger:        logger,
		maxPatchLines: cfg.Batch.MaxPatchLines,
	}
}

// Compare aligns two collections for one package. Pure computation:
// inputs are already read from disk, nothing here blocks.
func (e *Engine) Compare(a, b *collect.Collection) *ComparisonResult {
	result := &ComparisonResult{
		Package: a.Package,
		DistroA: a.Distro,
		DistroB: b.Distro,
	}

	levelA, levelB, ambiguous := e.resolveLevels(a, b)
	result.StripA = levelA
	result.StripB = levelB
	result.AmbiguousStripLevel = ambiguous

	sideA := e.buildSide(a, levelA)
	sideB := e.buildSide(b, levelB)

	result.Results, result.Summary = e.matcher.Match(sideA, sideB)

	e.logger.Debug("Package comparison complete", map[string]interface{}{
		"package":   a.Package,
		"patchesA":  len(a.Patches),
		"patchesB":  len(b.Patches),
		"identical": result.Summary.Identical,
		"similar":   result.Summary.Similar,
		"partial":   result.Summary.Partial,
	})

	return result
}

// resolveLevels infers side-wide strip levels for patches the recipes
// left unhinted. When every patch on both sides carries a hint, the
// resolver never runs and no ambiguity can arise.
func (e *Engine) resolveLevels(a, b *collect.Collection) (int, int, bool) {
	if allHinted(a) && allHinted(b) {
		return 0, 0, false
	}

	var pathsA, pathsB []string
	for _, p := range a.Patches {
		pathsA = append(pathsA, fingerprint.RawPaths(p)...)
	}
	for _, p := range b.Patches {
		pathsB = append(pathsB, fingerprint.RawPaths(p)...)
	}

	return e.resolver.Resolve(pathsA, pathsB)
}

func allHinted(c *collect.Collection) bool {
	if len(c.Patches) == 0 {
		return true
	}
	for _, hint := range c.Hints {
		if hint < 0 {
			return false
		}
	}
	return true
}

// buildSide fingerprints a collection, preferring per-patch recipe
// hints over the resolved side level. Recipe levels count a git a/ b/
// prefix as a component, so hints are adjusted for parsed paths.
// Patches over the configured line limit get an empty fingerprint so
// they classify unique instead of dominating the score matrix.
func (e *Engine) buildSide(c *collect.Collection, sideLevel int) match.Side {
	side := match.Side{
		Patches: c.Patches,
		Prints:  make([]*fingerprint.Fingerprint, len(c.Patches)),
	}

	for i, patch := range c.Patches {
		if e.maxPatchLines > 0 && patch.LineTotal() > e.maxPatchLines {
			e.logger.Warn("Patch exceeds line limit, excluded from scoring", map[string]interface{}{
				"package": patch.Package,
				"distro":  patch.Distro,
				"patch":   patch.Filename,
				"lines":   patch.LineTotal(),
				"limit":   e.maxPatchLines,
			})
			side.Prints[i] = &fingerprint.Fingerprint{}
			continue
		}

		level := sideLevel
		if i < len(c.Hints) && c.Hints[i] >= 0 {
			level = fingerprint.AdjustStripHint(patch, c.Hints[i])
		}
		side.Prints[i] = fingerprint.Extract(patch, level)
	}

	return side
}
