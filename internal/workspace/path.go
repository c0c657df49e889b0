package workspace

import (
	"path"
	"strings"
	"time"

	"golang.org/x/xerrors"
)

// Path is a value type combining a workspace reference with a path inside
// it. Instances are cheap to copy.
type Path struct {
	ws *Workspace
	p  string
}

// Join returns a new Path with name appended.
func (p *Path) Join(name string) *Path {
	return &Path{ws: p.ws, p: path.Join(p.p, name)}
}

// Parent returns the parent Path, or the root if p is already "/".
func (p *Path) Parent() *Path {
	dir := path.Dir(p.p)
	return &Path{ws: p.ws, p: dir}
}

// String returns the absolute workspace-rooted path.
func (p *Path) String() string { return p.p }

func (p *Path) Workspace() *Workspace { return p.ws }

// ReadToString reads the file, searching layers top-to-bottom and
// stopping at the first match.
func (p *Path) ReadToString() (string, error) {
	b, err := p.read()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *Path) read() ([]byte, error) {
	for _, l := range p.ws.layers {
		if l.kind == Memory {
			if b, ok := l.readMemory(p.p); ok {
				return b, nil
			}
			continue
		}
		rel := toRel(p.p)
		if l.existsPhysical(rel) {
			return l.readPhysical(rel)
		}
	}
	return nil, xerrors.Errorf("workspace: %s: %w", p.p, errNotExist)
}

var errNotExist = xerrors.New("no such file in any layer")

// CreateFile writes data to the top writable layer.
func (p *Path) CreateFile(data []byte) error {
	top := p.ws.topWritable()
	if top.kind == Memory {
		top.writeMemory(p.p, data)
		return nil
	}
	return top.writePhysical(toRel(p.p), data, 0o644)
}

// CreateDir is a no-op for the memory layer (directories are implicit)
// and creates the directory on disk for a physical top layer.
func (p *Path) CreateDir() error {
	top := p.ws.topWritable()
	if top.kind == Memory {
		return nil
	}
	return top.writePhysical(toRel(p.p)+"/.keep", nil, 0o644)
}

// RemoveAll deletes p (and, if it is a directory, everything under it)
// from the top writable layer.
func (p *Path) RemoveAll() error {
	top := p.ws.topWritable()
	if top.kind == Memory {
		top.removeMemoryPrefix(p.p)
		return nil
	}
	return top.removePhysical(toRel(p.p))
}

// Exists reports whether the path resolves in any layer.
func (p *Path) Exists() bool {
	for _, l := range p.ws.layers {
		if l.kind == Memory {
			if l.existsMemory(p.p) {
				return true
			}
			continue
		}
		if l.existsPhysical(toRel(p.p)) {
			return true
		}
	}
	return false
}

// IsFile reports whether the topmost layer in which the path exists
// considers it a file. Memory-layer entries are always files.
func (p *Path) IsFile() bool {
	for _, l := range p.ws.layers {
		if l.kind == Memory {
			if l.existsMemory(p.p) {
				return true
			}
			continue
		}
		st, err := l.statPhysical(toRel(p.p))
		if err == nil {
			return !st.IsDir()
		}
	}
	return false
}

// IsDir reports whether the topmost layer in which the path exists
// considers it a directory.
func (p *Path) IsDir() bool {
	for _, l := range p.ws.layers {
		if l.kind == Memory {
			prefix := strings.TrimSuffix(p.p, "/") + "/"
			hasChild := false
			l.memMu.RLock()
			for k := range l.mem {
				if strings.HasPrefix(k, prefix) {
					hasChild = true
					break
				}
			}
			l.memMu.RUnlock()
			if hasChild {
				return true
			}
			continue
		}
		st, err := l.statPhysical(toRel(p.p))
		if err == nil {
			return st.IsDir()
		}
	}
	return false
}

// ModTime returns the modification time of p's topmost occurrence across
// layers. Memory-layer entries report the zero time (they have no
// persistent mtime), which internal/executor's modtime gate treats as
// "always rebuild".
func (p *Path) ModTime() (t time.Time, ok bool) {
	for _, l := range p.ws.layers {
		if l.kind == Memory {
			if l.existsMemory(p.p) {
				return time.Time{}, true
			}
			continue
		}
		rel := toRel(p.p)
		if st, err := l.statPhysical(rel); err == nil {
			return st.ModTime(), true
		}
	}
	return time.Time{}, false
}

// WalkDir visits every file reachable under p across all layers, de-duped
// by path, shallowest layer wins (matching read semantics).
func (p *Path) WalkDir(fn func(*Path) error) error {
	seen := make(map[string]bool)
	for _, l := range p.ws.layers {
		if l.kind == Memory {
			if err := l.walkMemory(p.p, func(absPath string) error {
				if seen[absPath] {
					return nil
				}
				seen[absPath] = true
				return fn(&Path{ws: p.ws, p: absPath})
			}); err != nil {
				return err
			}
			continue
		}
		if err := l.walkPhysical(toRel(p.p), func(relPath string, isDir bool) error {
			if isDir {
				return nil
			}
			abs := "/" + relPath
			if seen[abs] {
				return nil
			}
			seen[abs] = true
			return fn(&Path{ws: p.ws, p: abs})
		}); err != nil {
			return err
		}
	}
	return nil
}
