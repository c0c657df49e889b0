// Package project loads .hemtt/project.toml, HEMTT's project-level
// configuration.
//
// Parsing uses github.com/BurntSushi/toml, the same library
// holocm/holo-build reaches for to parse its declarative package build
// spec from a config file.
package project

import (
	"os"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"
)

// Signing describes where to find the signing authority's key pair,
// grounded on original_source/bin/libs/config/src/project/signing.rs.
type Signing struct {
	Authority      string `toml:"authority"`
	PrivateKey     string `toml:"key"`
	Version        string `toml:"version"` // "2" or "3", defaults to "3"
}

// Files describes the include/exclude glob lists consulted by
// internal/release's post_release hook, grounded on
// original_source/bin/libs/config/src/project/files.rs.
type Files struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Config is the full .hemtt/project.toml schema.
type Config struct {
	Name       string   `toml:"name"`
	Prefix     string   `toml:"prefix"`
	MainPrefix string   `toml:"mainprefix"`
	Version    string   `toml:"version"`
	Author     string   `toml:"author"`

	Files   Files   `toml:"files"`
	Signing Signing `toml:"signing"`

	// Pedantic promotes warnings to build-breaking errors. It lives in project config rather than a flag because
	// the core has no CLI surface of its own.
	Pedantic bool `toml:"pedantic"`
}

// Load parses path (typically "<root>/.hemtt/project.toml") and applies
// the documented defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("project: reading %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return nil, xerrors.Errorf("project: parsing %s: %w", path, err)
	}
	if cfg.Signing.Version == "" {
		cfg.Signing.Version = "3"
	}
	if cfg.MainPrefix == "" {
		cfg.MainPrefix = "z"
	}
	return &cfg, nil
}
