package distro

import (
	"os"
	"path/filepath"
	"testing"

	"patchmatch/internal/errors"
)

func TestBuiltinRegistry(t *testing.T) {
	reg := BuiltinRegistry()
	if err := reg.Validate(); err != nil {
		t.Fatalf("Builtin registry must validate: %v", err)
	}

	fedora, ok := reg.Lookup("fedora")
	if !ok {
		t.Fatal("Expected fedora in the builtin registry")
	}
	if fedora.Kind != KindRPM || fedora.PatchDir != "SOURCES" {
		t.Errorf("Unexpected fedora entry %+v", fedora)
	}
	if fedora.DefaultStrip != -1 {
		t.Errorf("Expected rpm entries to infer strip levels, got %d", fedora.DefaultStrip)
	}

	debian, ok := reg.Lookup("debian")
	if !ok {
		t.Fatal("Expected debian in the builtin registry")
	}
	if debian.Kind != KindQuilt || debian.DefaultStrip != 1 {
		t.Errorf("Unexpected debian entry %+v", debian)
	}

	if _, ok := reg.Lookup("gentoo"); ok {
		t.Error("Expected lookup miss for unknown tag")
	}
}

func TestLoadRegistryEmptyPath(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("Empty path must yield the builtin registry: %v", err)
	}
	if len(reg.Distros) == 0 {
		t.Error("Expected builtin entries")
	}
}

func TestLoadRegistryFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "distros.toml")
	content := `[[distros]]
tag = "suse"
kind = "rpm"
patch_dir = "SOURCES"
recipe_glob = "*.spec"
default_strip = -1

[[distros]]
tag = "devuan"
kind = "quilt"
patch_dir = "debian/patches"
recipe_glob = "debian/patches/series"
default_strip = 1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write registry file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}
	if len(reg.Distros) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(reg.Distros))
	}

	suse, ok := reg.Lookup("suse")
	if !ok || suse.Kind != KindRPM {
		t.Errorf("Unexpected suse entry %+v", suse)
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("Expected error for missing registry file")
	}
	if errors.CodeOf(err) != errors.RegistryInvalid {
		t.Errorf("Expected REGISTRY_INVALID, got %s", errors.CodeOf(err))
	}
}

func TestValidateRejectsBadEntries(t *testing.T) {
	cases := []struct {
		name string
		reg  Registry
	}{
		{"no tag", Registry{Distros: []Distro{{Kind: KindRPM, PatchDir: "SOURCES"}}}},
		{"duplicate tag", Registry{Distros: []Distro{
			{Tag: "x", Kind: KindRPM, PatchDir: "SOURCES"},
			{Tag: "x", Kind: KindQuilt, PatchDir: "debian/patches"},
		}}},
		{"unknown kind", Registry{Distros: []Distro{{Tag: "x", Kind: "portage", PatchDir: "files"}}}},
		{"no patch dir", Registry{Distros: []Distro{{Tag: "x", Kind: KindRPM}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.reg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if errors.CodeOf(err) != errors.RegistryInvalid {
				t.Errorf("Expected REGISTRY_INVALID, got %s", errors.CodeOf(err))
			}
		})
	}
}
