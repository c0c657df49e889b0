package executor

import (
	"path"
	"strings"

	"github.com/BrettMayson/hemtt/internal/preprocessor"
	"github.com/BrettMayson/hemtt/internal/workspace"
)

// pathResolver adapts *workspace.Path to preprocessor.Resolver, the
// production-code side of the interface seam internal/preprocessor
// documents in its own Resolver doc comment.
type pathResolver struct {
	ws *workspace.Workspace
}

func newPathResolver(ws *workspace.Workspace) *pathResolver {
	return &pathResolver{ws: ws}
}

// Locate resolves an #include target relative to from. A target
// starting with "\" or "/" is workspace-rooted (the common
// "\prefix\path\to\file.hpp" form); anything else is relative to from's
// directory, matching the game engine's own #include search order.
func (r *pathResolver) Locate(from, target string) (resolved string, caseWarning bool, ok bool) {
	clean := strings.ReplaceAll(target, "\\", "/")

	var p *workspace.Path
	if strings.HasPrefix(clean, "/") {
		p = r.resolveFrom(r.ws.Root(), strings.TrimPrefix(clean, "/"))
	} else {
		fromPath := r.pathOf(from)
		p = r.resolveFrom(fromPath.Parent(), clean)
	}
	if p == nil || !p.Exists() {
		return "", false, false
	}
	return p.String(), r.caseMismatch(p, clean), true
}

func (r *pathResolver) resolveFrom(base *workspace.Path, rel string) *workspace.Path {
	cur := base
	for _, seg := range strings.Split(rel, "/") {
		if seg == "" || seg == "." {
			continue
		}
		cur = cur.Join(seg)
	}
	return cur
}

// caseMismatch reports PW4: the target resolved, but only because the
// filesystem or workspace lookup was case-insensitive (e.g. on a
// case-insensitive host filesystem) and the on-disk case differs from
// what was written in the #include.
func (r *pathResolver) caseMismatch(p *workspace.Path, requested string) bool {
	want := path.Base(requested)
	got := path.Base(p.String())
	return want != got && strings.EqualFold(want, got)
}

func (r *pathResolver) pathOf(resolved string) *workspace.Path {
	p := r.ws.Root()
	for _, seg := range strings.Split(strings.TrimPrefix(resolved, "/"), "/") {
		if seg == "" {
			continue
		}
		p = p.Join(seg)
	}
	return p
}

func (r *pathResolver) Read(resolved string) (string, error) {
	return r.pathOf(resolved).ReadToString()
}

var _ preprocessor.Resolver = (*pathResolver)(nil)
