package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the manifest file looked for at the project root.
const ManifestName = "mica.toml"

// Manifest describes one project: the mica.toml file at its root.
type Manifest struct {
	Package PackageSection `toml:"package"`

	// Dir is the directory the manifest was loaded from. Not part of the
	// file.
	Dir string `toml:"-"`
}

// PackageSection is the [package] table.
type PackageSection struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	// Entry is the path of the unit holding main, relative to the
	// manifest directory. Empty means every unit in the directory.
	Entry string `toml:"entry"`
}

// LoadManifest reads and decodes a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("project: decoding %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("project: %s: unknown key %q", path, undecoded[0].String())
	}
	if m.Package.Name == "" {
		return nil, fmt.Errorf("project: %s: package.name is required", path)
	}
	m.Dir = filepath.Dir(path)
	return &m, nil
}

// FindManifest walks from dir upward to the filesystem root looking for
// mica.toml. It returns os.ErrNotExist when no manifest is found.
func FindManifest(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		candidate := filepath.Join(abs, ManifestName)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return LoadManifest(candidate)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return nil, fmt.Errorf("project: no %s found above %s: %w", ManifestName, dir, os.ErrNotExist)
		}
		abs = parent
	}
}
