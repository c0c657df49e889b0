// Package release implements HEMTT's post-build staging: copying each
// built PBO (and its detached signature) into the versioned release
// tree, and archiving that tree into a distributable zip. Grounded on
// src/addons/mod.rs's release_target/release naming scheme and
// src/build/postbuild/release.rs's release-directory preparation.
package release

import (
	"strings"

	"github.com/BrettMayson/hemtt/internal/addon"
	"github.com/BrettMayson/hemtt/internal/workspace"
	"golang.org/x/xerrors"
)

// Folder returns the release subdirectory name for version, defaulting
// to "release" when the project declares no version.
func Folder(version string) string {
	if version == "" {
		return "release"
	}
	return version
}

// StageAddon copies a's built PBO (and its .bisign, if present) from
// buildFolder/addons into releaseRoot/<folder>/addons, stamping the
// addon's PBOPREFIX onto the output filename as
// "<prefix>_<name>.pbo" (or just "<name>.pbo" when the addon carries no
// prefix sentinel).
func StageAddon(buildFolder, releaseRoot *workspace.Path, folder string, a *addon.Addon) error {
	src := buildFolder.Join("addons").Join(a.PBOName())
	if !src.Exists() {
		return xerrors.Errorf("release: %s: no built PBO at %s", a.Name, src)
	}
	data, err := src.ReadToString()
	if err != nil {
		return xerrors.Errorf("release: reading %s: %w", src, err)
	}

	dstDir := releaseRoot.Join(folder).Join("addons")
	target := dstDir.Join(targetName(a))
	if err := dstDir.CreateDir(); err != nil {
		return xerrors.Errorf("release: preparing %s: %w", dstDir, err)
	}
	if err := target.CreateFile([]byte(data)); err != nil {
		return xerrors.Errorf("release: writing %s: %w", target, err)
	}

	sigSrc := buildFolder.Join("addons").Join(a.PBOName() + ".bisign")
	if sigSrc.Exists() {
		sigData, err := sigSrc.ReadToString()
		if err != nil {
			return xerrors.Errorf("release: reading %s: %w", sigSrc, err)
		}
		sigTarget := dstDir.Join(targetName(a) + ".bisign")
		if err := sigTarget.CreateFile([]byte(sigData)); err != nil {
			return xerrors.Errorf("release: writing %s: %w", sigTarget, err)
		}
	}
	return nil
}

func targetName(a *addon.Addon) string {
	if prefix, ok := a.Prefix(); ok {
		return prefix + "_" + a.Name + ".pbo"
	}
	return a.Name + ".pbo"
}

// StageFile copies an extra file (e.g. a mod.cpp, a license, a readme
// matched by the project's include globs) into the release folder,
// preserving relPath underneath it.
func StageFile(releaseRoot *workspace.Path, folder, relPath string, data []byte) error {
	rel := strings.TrimPrefix(relPath, "/")
	target := releaseRoot.Join(folder).Join(rel)
	if err := target.Parent().CreateDir(); err != nil {
		return xerrors.Errorf("release: preparing %s: %w", target.Parent(), err)
	}
	return target.CreateFile(data)
}
