package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"golang.org/x/xerrors"
)

// readPhysical reads relPath (slash-separated, relative to the layer
// root) from a physical layer.
func (l *layer) readPhysical(relPath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(l.phys, filepath.FromSlash(relPath)))
}

// writePhysical writes relPath atomically, grounded on
// internal/build/build.go's renameio.WriteFile use for every generated
// build output — avoids partial files if the process is interrupted
// mid-write.
func (l *layer) writePhysical(relPath string, data []byte, perm fs.FileMode) error {
	full := filepath.Join(l.phys, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return xerrors.Errorf("mkdir: %w", err)
	}
	return renameio.WriteFile(full, data, perm)
}

func (l *layer) existsPhysical(relPath string) bool {
	_, err := os.Stat(filepath.Join(l.phys, filepath.FromSlash(relPath)))
	return err == nil
}

func (l *layer) statPhysical(relPath string) (fs.FileInfo, error) {
	return os.Stat(filepath.Join(l.phys, filepath.FromSlash(relPath)))
}

// walkPhysical walks a physical layer from relRoot down, invoking fn with
// paths relative to the layer root, slash-separated.
func (l *layer) walkPhysical(relRoot string, fn func(relPath string, isDir bool) error) error {
	root := filepath.Join(l.phys, filepath.FromSlash(relRoot))
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(l.phys, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		return fn(rel, d.IsDir())
	})
}

// Memory layer operations. Keys are absolute workspace paths ("/a/b.cpp").

func (l *layer) readMemory(absPath string) ([]byte, bool) {
	l.memMu.RLock()
	defer l.memMu.RUnlock()
	b, ok := l.mem[absPath]
	return b, ok
}

func (l *layer) writeMemory(absPath string, data []byte) {
	l.memMu.Lock()
	defer l.memMu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	l.mem[absPath] = cp
}

func (l *layer) existsMemory(absPath string) bool {
	l.memMu.RLock()
	defer l.memMu.RUnlock()
	_, ok := l.mem[absPath]
	return ok
}

func (l *layer) walkMemory(absRoot string, fn func(absPath string) error) error {
	l.memMu.RLock()
	prefix := strings.TrimSuffix(absRoot, "/") + "/"
	var matches []string
	for k := range l.mem {
		if k == absRoot || strings.HasPrefix(k, prefix) {
			matches = append(matches, k)
		}
	}
	l.memMu.RUnlock()
	for _, m := range matches {
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

func toRel(absPath string) string {
	return strings.TrimPrefix(absPath, "/")
}

func (l *layer) removePhysical(relPath string) error {
	return os.RemoveAll(filepath.Join(l.phys, filepath.FromSlash(relPath)))
}

func (l *layer) removeMemoryPrefix(absRoot string) {
	l.memMu.Lock()
	defer l.memMu.Unlock()
	prefix := strings.TrimSuffix(absRoot, "/") + "/"
	for k := range l.mem {
		if k == absRoot || strings.HasPrefix(k, prefix) {
			delete(l.mem, k)
		}
	}
}
