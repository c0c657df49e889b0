package executor

import (
	"regexp"
	"strings"

	"github.com/BrettMayson/hemtt/internal/diag"
	"github.com/BrettMayson/hemtt/internal/workspace"
)

// folderNameRE mirrors internal/addon's own scan filter; NamesModule
// re-walks the raw addons/optionals/compats directories (rather than the
// already-filtered Addon list) so a folder the scanner silently skipped
// is reported instead of disappearing from the build with no diagnostic.
var folderNameRE = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// NamesModule is a check-phase lint on addon folder naming, grounded on
// hemtt-app/src/tasks/checks/names.rs.
type NamesModule struct{}

func (NamesModule) Name() string { return "names" }

func (NamesModule) Check(ctx *Context) Report {
	var r Report
	for _, top := range []string{"addons", "optionals", "compats"} {
		dir := ctx.Workspace.Root().Join(top)
		if !dir.Exists() || !dir.IsDir() {
			continue
		}
		names, err := immediateChildNames(dir)
		if err != nil {
			r.AddError(wrapErr(top, "listing", err))
			continue
		}
		for _, name := range names {
			if !folderNameRE.MatchString(name) {
				r.AddWarning(diag.New("EXEC1", diag.Warning,
					top+"/"+name+": addon folder name must match [A-Za-z0-9_]+"))
			}
		}
	}
	return r
}

func immediateChildNames(dir *workspace.Path) ([]string, error) {
	seen := make(map[string]bool)
	if err := dir.WalkDir(func(p *workspace.Path) error {
		rel := strings.TrimPrefix(p.String(), dir.String()+"/")
		if rel == "" {
			return nil
		}
		first := rel
		if idx := strings.Index(rel, "/"); idx >= 0 {
			first = rel[:idx]
		}
		seen[first] = true
		return nil
	}); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	return out, nil
}
