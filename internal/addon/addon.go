// Package addon implements the addon scanner and its data model:
// discovery of addons/, optionals/, compats/, per-addon config loading,
// and the dependency-aware build-order graph.
package addon

import (
	"strings"
	"sync"

	"github.com/BrettMayson/hemtt/internal/workspace"
)

// Location is the directory an addon was discovered under.
type Location int

const (
	Addons Location = iota
	Optionals
	Compats
)

func (l Location) String() string {
	switch l {
	case Addons:
		return "addons"
	case Optionals:
		return "optionals"
	case Compats:
		return "compats"
	default:
		return "unknown"
	}
}

func (l Location) folderName() string {
	return l.String()
}

// Config is the per-addon configuration (file addon.toml), with the
// documented defaults.
type Config struct {
	Preprocess bool     `toml:"preprocess"`
	NoBin      []string `toml:"no_bin"`
}

// DefaultConfig returns the documented defaults: { preprocess: true,
// no_bin: [] }.
func DefaultConfig() Config {
	return Config{Preprocess: true}
}

// BuildData accumulates derived facts about an addon across phases (e.g.
// the requiredVersion learned from CfgPatches in the check phase). It is
// the only part of Addon that may mutate after scanning, and is guarded
// by its own lock.
type BuildData struct {
	mu sync.Mutex

	requiredVersion float64
	dependencies    []string // addon names from CfgPatches::requiredAddons
	skipBuild       bool     // set by the modtime pre_build gate
}

// SetSkipBuild marks the addon as unchanged since its last build output,
// set by internal/executor's modtime pre_build gate.
func (d *BuildData) SetSkipBuild(skip bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.skipBuild = skip
}

// SkipBuild reports whether a later build-phase module should skip this
// addon.
func (d *BuildData) SkipBuild() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.skipBuild
}

func (d *BuildData) SetRequiredVersion(v float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v > d.requiredVersion {
		d.requiredVersion = v
	}
}

func (d *BuildData) RequiredVersion() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requiredVersion
}

func (d *BuildData) SetDependencies(deps []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dependencies = append([]string(nil), deps...)
}

func (d *BuildData) Dependencies() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dependencies...)
}

// Addon is a unit of mod content built into a single PBO.
type Addon struct {
	Name     string
	Location Location
	Folder   *workspace.Path

	Config    Config
	BuildData BuildData
}

// PBOName is the filename the addon packages into, before prefix
// stamping.
func (a *Addon) PBOName() string {
	return a.Name + ".pbo"
}

// pboPrefixSentinels mirrors internal/workspace's sentinel file names,
// in the same preference order.
var pboPrefixSentinels = []string{"$PBOPREFIX$", "$PBOPREFIX", "pboprefix.txt"}

// Prefix reads the addon's PBOPREFIX sentinel file, the logical prefix
// internal/sign hashes into H3 and internal/release stamps onto the
// packaged filename. Returns false if no sentinel file is present.
func (a *Addon) Prefix() (string, bool) {
	for _, name := range pboPrefixSentinels {
		p := a.Folder.Join(name)
		if !p.Exists() {
			continue
		}
		text, err := p.ReadToString()
		if err != nil {
			continue
		}
		prefix := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
		if prefix != "" {
			return prefix, true
		}
	}
	return "", false
}
