package workspace

import (
	"path"
	"strings"
)

// Locate resolves a `\`-separated prefix-relative reference to a concrete
// path inside the workspace. Ordering:
//  1. absolute target (starts with / or \) is joined directly from root;
//  2. the longest matching entry in the prefix index;
//  3. sibling-relative fallback from `from`.
//
// CaseWarning is set when the resolved path differs only in case from what
// is actually on disk.
func (ws *Workspace) Locate(from *Path, target string) (resolved *Path, caseWarning bool, ok bool) {
	norm := strings.ReplaceAll(target, "\\", "/")

	if strings.HasPrefix(norm, "/") {
		p := ws.Root().Join(norm)
		if p.Exists() {
			return p, ws.caseMismatch(p), true
		}
		return nil, false, false
	}

	if dir, rest, found := ws.lookupPrefix(norm); found {
		p := ws.Root().Join(dir).Join(rest)
		if p.Exists() {
			return p, ws.caseMismatch(p), true
		}
	}

	if from != nil {
		sib := from.Parent().Join(norm)
		if sib.Exists() {
			return sib, ws.caseMismatch(sib), true
		}
	}
	return nil, false, false
}

// caseMismatch reports whether any physical layer has the same path under
// a different case than p carries, by comparing lowercased components
// against a case-sensitive on-disk walk. This is necessarily an
// approximation: only physical layers are checked, since memory-layer keys
// are always written in the caller's exact case.
func (ws *Workspace) caseMismatch(p *Path) bool {
	rel := toRel(p.p)
	wantLower := strings.ToLower(rel)
	for _, l := range ws.layers {
		if l.kind != Physical {
			continue
		}
		if l.existsPhysical(rel) {
			return false // exact case exists; no mismatch for this layer
		}
		found := false
		_ = l.walkPhysical(path.Dir(rel), func(relPath string, isDir bool) error {
			if isDir {
				return nil
			}
			if strings.ToLower(relPath) == wantLower {
				found = true
			}
			return nil
		})
		if found {
			return true
		}
	}
	return false
}
