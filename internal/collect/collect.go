// Package collect builds patch collections from unpacked source
// packages on disk. The recipe (spec or series) decides which files
// belong and in what order; a directory scan is the fallback when no
// recipe is found. Unreadable files degrade to content-less patches
// rather than aborting the package.
package collect

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"patchmatch/internal/diffparse"
	"patchmatch/internal/distro"
	"patchmatch/internal/errors"
	"patchmatch/internal/logging"
	"patchmatch/internal/recipe"
)

// Collection is one package's patches from one distribution, in
// recipe application order. Hints is index-aligned with Patches and
// carries the recipe's strip level, -1 when the recipe said nothing.
type Collection struct {
	Package string
	Distro  string
	Patches []*diffparse.Patch
	Hints   []int
}

// Collector reads patch collections from the filesystem
type Collector struct {
	parser *diffparse.Parser
	logger *logging.Logger
}

// NewCollector creates a collector
func NewCollector(logger *logging.Logger) *Collector {
	return &Collector{
		parser: diffparse.NewParser(),
		logger: logger,
	}
}

// Collect reads the patch collection for one package root under the
// layout the distro entry describes.
func (c *Collector) Collect(d *distro.Distro, pkg, root string) (*Collection, error) {
	patchDir := filepath.Join(root, filepath.FromSlash(d.PatchDir))
	if _, err := os.Stat(patchDir); err != nil {
		return nil, errors.New(errors.PatchDirMissing,
			"patch directory not found for "+pkg+" ("+d.Tag+")", err)
	}

	entries := c.recipeEntries(d, root, patchDir)
	if entries == nil {
		entries = c.scanEntries(d, patchDir)
	}

	col := &Collection{Package: pkg, Distro: d.Tag}
	for _, entry := range entries {
		path := filepath.Join(patchDir, filepath.FromSlash(entry.Name))
		data, err := os.ReadFile(path)
		if err != nil {
			c.logger.Warn("Skipping unreadable patch file", map[string]interface{}{
				"package": pkg,
				"distro":  d.Tag,
				"patch":   entry.Name,
				"error":   err.Error(),
			})
			continue
		}

		patch := c.parser.Parse(d.Tag, pkg, entry.Name, string(data))
		if patch.Status != diffparse.StatusParsed {
			c.logger.Debug("Patch degraded during parse", map[string]interface{}{
				"package": pkg,
				"distro":  d.Tag,
				"patch":   entry.Name,
				"status":  string(patch.Status),
			})
		}

		col.Patches = append(col.Patches, patch)
		col.Hints = append(col.Hints, entry.StripLevel)
	}

	return col, nil
}

// recipeEntries parses the distro's build recipe when one exists.
// Returns nil (not an empty slice) when no recipe was found, so the
// caller can fall back to scanning.
func (c *Collector) recipeEntries(d *distro.Distro, root, patchDir string) []recipe.PatchEntry {
	if d.RecipeGlob == "" {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(d.RecipeGlob)))
	if err != nil || len(matches) == 0 {
		return nil
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		c.logger.Warn("Cannot read recipe file", map[string]interface{}{
			"recipe": matches[0],
			"error":  err.Error(),
		})
		return nil
	}

	var entries []recipe.PatchEntry
	switch d.Kind {
	case distro.KindRPM:
		entries = recipe.ParseSpec(string(data))
	case distro.KindQuilt:
		entries = recipe.ParseSeries(string(data))
	}

	if len(entries) == 0 {
		return nil
	}

	// Keep only entries whose file actually exists; a recipe can
	// declare patches that conditionals exclude from the tarball.
	kept := entries[:0]
	for _, entry := range entries {
		if _, err := os.Stat(filepath.Join(patchDir, filepath.FromSlash(entry.Name))); err == nil {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// scanEntries lists *.patch and *.diff files under the patch dir,
// sorted for determinism, with the distro's default strip hint.
func (c *Collector) scanEntries(d *distro.Distro, patchDir string) []recipe.PatchEntry {
	var names []string
	_ = filepath.WalkDir(patchDir, func(path string, de os.DirEntry, err error) error {
		if err != nil || de.IsDir() {
			return nil
		}
		name := de.Name()
		if strings.HasSuffix(name, ".patch") || strings.HasSuffix(name, ".diff") {
			if rel, relErr := filepath.Rel(patchDir, path); relErr == nil {
				names = append(names, filepath.ToSlash(rel))
			}
		}
		return nil
	})
	sort.Strings(names)

	entries := make([]recipe.PatchEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, recipe.PatchEntry{
			Name:       name,
			Number:     -1,
			StripLevel: d.DefaultStrip,
		})
	}
	return entries
}
