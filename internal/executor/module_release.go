package executor

import (
	"strings"

	"github.com/BrettMayson/hemtt/internal/addon"
	"github.com/BrettMayson/hemtt/internal/release"
	"github.com/BrettMayson/hemtt/internal/workspace"
)

// ReleaseModule stages every addon's built PBO (and detached signature,
// if SignModule produced one) into the versioned release tree during
// PreRelease, then copies the project's declared include globs in
// PostRelease. Archiving the staged tree into a zip is left to the
// caller (e.g. a CLI release command) via release.Archive, since not
// every invocation that reaches PostRelease wants an archive written.
type ReleaseModule struct {
	Version string
}

func (ReleaseModule) Name() string { return "release" }

func (m ReleaseModule) PreRelease(ctx *Context) Report {
	folder := release.Folder(m.Version)
	return ParallelAddons(ctx.Addons, func(a *addon.Addon) Report {
		var r Report
		if err := release.StageAddon(ctx.BuildFolder, ctx.ReleaseRoot, folder, a); err != nil {
			r.AddError(wrapErr(a.Name, "staging release", err))
		}
		return r
	})
}

func (m ReleaseModule) PostRelease(ctx *Context) Report {
	var r Report
	if len(ctx.Project.Files.Include) == 0 {
		return r
	}
	folder := release.Folder(m.Version)
	root := ctx.Workspace.Root()

	_ = root.WalkDir(func(p *workspace.Path) error {
		rel := relPath(root.String(), p.String())
		if rel == "" || !matchesAny(ctx.Project.Files.Include, rel) {
			return nil
		}
		if matchesAny(ctx.Project.Files.Exclude, rel) {
			return nil
		}
		text, err := p.ReadToString()
		if err != nil {
			r.AddError(wrapErr("release", "reading "+rel, err))
			return nil
		}
		if err := release.StageFile(ctx.ReleaseRoot, folder, rel, []byte(text)); err != nil {
			r.AddError(wrapErr("release", "staging "+rel, err))
		}
		return nil
	})
	return r
}

func relPath(root, p string) string {
	if len(p) <= len(root) || p[:len(root)] != root {
		return ""
	}
	rel := strings.TrimPrefix(p[len(root):], "/")
	return rel
}
