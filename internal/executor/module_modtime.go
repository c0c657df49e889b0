package executor

import (
	"time"

	"github.com/BrettMayson/hemtt/internal/addon"
	"github.com/BrettMayson/hemtt/internal/workspace"
)

// ModtimeModule gates build-phase work on whether an addon has changed
// since its last build output, grounded on
// hemtt-app/src/tasks/checks/modtime.rs. It compares the addon folder's
// newest source file mtime against the existing output PBO's mtime; a
// memory-layer file (no persistent mtime) always counts as changed.
type ModtimeModule struct{}

func (ModtimeModule) Name() string { return "modtime" }

func (ModtimeModule) PreBuild(ctx *Context) Report {
	return ParallelAddons(ctx.Addons, func(a *addon.Addon) Report {
		outPath := ctx.BuildFolder.Join("addons").Join(a.PBOName())
		outTime, outExists := outPath.ModTime()
		if !outExists {
			a.BuildData.SetSkipBuild(false)
			return Report{}
		}

		newest, hasMemoryFile := newestModTime(a.Folder)
		skip := !hasMemoryFile && !newest.IsZero() && !newest.After(outTime)
		a.BuildData.SetSkipBuild(skip)
		return Report{}
	})
}

// newestModTime returns the most recent physical-layer modification time
// found under folder, and whether any memory-layer (mtime-less) file was
// encountered — a memory-layer file always forces a rebuild.
func newestModTime(folder *workspace.Path) (time.Time, bool) {
	var newest time.Time
	hasMemoryFile := false
	_ = folder.WalkDir(func(p *workspace.Path) error {
		t, ok := p.ModTime()
		if !ok {
			return nil
		}
		if t.IsZero() {
			hasMemoryFile = true
			return nil
		}
		if t.After(newest) {
			newest = t
		}
		return nil
	})
	return newest, hasMemoryFile
}
