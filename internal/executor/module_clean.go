package executor

import (
	"strings"

	"github.com/BrettMayson/hemtt/internal/diag"
	"github.com/BrettMayson/hemtt/internal/workspace"
)

// ClearModule is a check-phase module that warns about stray .pbo leftovers
// under .hemttout/build/addons — output from an addon that has since
// been removed or renamed, or from a build interrupted mid-write — since
// a leftover could otherwise be mistaken for current output. Grounded on
// hemtt-app/src/tasks/clear.rs and tasks/checks/clear.rs, adapted from
// "remove it silently" to "warn, since the core has no destructive
// default".
type ClearModule struct{}

func (ClearModule) Name() string { return "clear" }

func (ClearModule) Check(ctx *Context) Report {
	var r Report
	known := make(map[string]bool, len(ctx.Addons))
	for _, a := range ctx.Addons {
		known[a.PBOName()] = true
	}

	addonsDir := ctx.BuildFolder.Join("addons")
	if !addonsDir.Exists() {
		return r
	}
	_ = addonsDir.WalkDir(func(p *workspace.Path) error {
		name := p.String()
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		if strings.HasSuffix(name, ".pbo") && !known[name] {
			r.AddWarning(diag.New("EXEC2", diag.Warning,
				".hemttout/build/addons/"+name+": stray PBO with no matching addon"))
		}
		return nil
	})
	return r
}

// Clean removes .hemttout entirely, a standalone operation (not a phase
// hook) grounded on hemtt-app/src/tasks/clean.rs/checks/clean.rs — there,
// cleaning one addon's stale output; here, generalized to the whole
// build-output tree, removed with a single Path.RemoveAll.
func Clean(ws *workspace.Workspace) error {
	out := ws.Root().Join(".hemttout")
	if !out.Exists() {
		return nil
	}
	return out.RemoveAll()
}
