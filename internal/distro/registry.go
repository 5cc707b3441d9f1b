// Package distro describes the packaging ecosystems patchmatch can
// compare. The registry lives in distros.toml; each entry names a
// distribution tag, its ecosystem kind, and where its patches live
// relative to an unpacked source package.
package distro

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"patchmatch/internal/errors"
)

// Kind identifies how an ecosystem references its patches
type Kind string

const (
	// KindRPM means patches are declared in a spec file and applied
	// as single unified-diff files
	KindRPM Kind = "rpm"
	// KindQuilt means patches are applied as an ordered quilt series
	KindQuilt Kind = "quilt"
)

// Distro is one registry entry
type Distro struct {
	// Tag is the short identifier used in results (e.g. "fedora")
	Tag string `toml:"tag"`

	// Kind selects the recipe parser and collection layout
	Kind Kind `toml:"kind"`

	// PatchDir is the patch location relative to a package root
	// (e.g. "SOURCES" for rpm, "debian/patches" for quilt)
	PatchDir string `toml:"patch_dir"`

	// RecipeGlob locates the build recipe relative to a package root
	// (e.g. "SPECS/*.spec" or "debian/patches/series")
	RecipeGlob string `toml:"recipe_glob,omitempty"`

	// DefaultStrip is this ecosystem's conventional strip level, used
	// when the recipe states nothing. Negative means "infer".
	DefaultStrip int `toml:"default_strip"`
}

// Registry is the set of known distributions
type Registry struct {
	Distros []Distro `toml:"distros"`
}

// BuiltinRegistry returns the registry shipped by default
func BuiltinRegistry() *Registry {
	return &Registry{
		Distros: []Distro{
			{Tag: "fedora", Kind: KindRPM, PatchDir: "SOURCES", RecipeGlob: "SPECS/*.spec", DefaultStrip: -1},
			{Tag: "openeuler", Kind: KindRPM, PatchDir: "SOURCES", RecipeGlob: "SPECS/*.spec", DefaultStrip: -1},
			{Tag: "debian", Kind: KindQuilt, PatchDir: "debian/patches", RecipeGlob: "debian/patches/series", DefaultStrip: 1},
			{Tag: "ubuntu", Kind: KindQuilt, PatchDir: "debian/patches", RecipeGlob: "debian/patches/series", DefaultStrip: 1},
		},
	}
}

// LoadRegistry reads a distros.toml file, falling back to the builtin
// registry when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return BuiltinRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.RegistryInvalid, "cannot read distro registry", err)
	}

	var reg Registry
	if err := toml.Unmarshal(data, &reg); err != nil {
		return nil, errors.New(errors.RegistryInvalid, "cannot parse distro registry", err)
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks registry entries for the fields the collectors need
func (r *Registry) Validate() error {
	seen := make(map[string]bool)
	for i, d := range r.Distros {
		if d.Tag == "" {
			return errors.New(errors.RegistryInvalid,
				fmt.Sprintf("distro entry %d has no tag", i), nil)
		}
		if seen[d.Tag] {
			return errors.New(errors.RegistryInvalid,
				fmt.Sprintf("duplicate distro tag %q", d.Tag), nil)
		}
		seen[d.Tag] = true
		if d.Kind != KindRPM && d.Kind != KindQuilt {
			return errors.New(errors.RegistryInvalid,
				fmt.Sprintf("distro %q has unknown kind %q", d.Tag, d.Kind), nil)
		}
		if d.PatchDir == "" {
			return errors.New(errors.RegistryInvalid,
				fmt.Sprintf("distro %q has no patch_dir", d.Tag), nil)
		}
	}
	return nil
}

// Lookup finds a distro by tag
func (r *Registry) Lookup(tag string) (*Distro, bool) {
	for i := range r.Distros {
		if r.Distros[i].Tag == tag {
			return &r.Distros[i], true
		}
	}
	return nil, false
}
