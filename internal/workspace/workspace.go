// Package workspace implements a layered virtual filesystem: an ordered
// stack of layers (physical directories or an in-memory overlay) searched
// top-down for reads, with writes always
// targeting the top writable layer, plus the prefix index used to resolve
// `$PBOPREFIX$`-style logical paths.
//
// The layering and atomic-write idiom is grounded on
// internal/build/build.go's use of github.com/google/renameio for every
// generated output; the builder-pattern construction mirrors
// cmd/distri/fuse.go's layered mount setup.
package workspace

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/xerrors"
)

// LayerKind distinguishes a physical on-disk root from the in-memory
// overlay used to inject preprocessed output.
type LayerKind int

const (
	Physical LayerKind = iota
	Memory
)

type layer struct {
	kind LayerKind
	// phys is the on-disk root for Physical layers.
	phys string
	// mem holds file contents for Memory layers, keyed by absolute
	// workspace path ("/addons/foo/config.cpp").
	mem   map[string][]byte
	memMu sync.RWMutex
}

func newMemoryLayer() *layer {
	return &layer{kind: Memory, mem: make(map[string][]byte)}
}

// Workspace is a process-scoped handle bundling the layer stack, the
// prefix index, and the sets of discovered addons/missions. It is
// immutable after construction except through the top memory layer,
// which is internally synchronized.
type Workspace struct {
	layers []*layer // top-to-bottom search order; layers[0] is the top (writable) layer

	prefixMu sync.RWMutex
	prefixes map[string]string // logical prefix (lowercased, slash-separated) -> concrete workspace path

	devMode   bool
	pdrive    string
	projectFn func() (projectPrefix string, ok bool)
}

// Builder constructs a Workspace one layer at a time, top layer pushed
// last (Finish reverses so the most-recently-added layer is searched
// first, matching a stack).
type Builder struct {
	layers  []*layer
	devMode bool
	pdrive  string
}

func NewBuilder() *Builder { return &Builder{} }

// Physical adds an on-disk root as a layer. root must already exist.
func (b *Builder) Physical(root string, kind LayerKind) *Builder {
	if kind != Physical {
		panic("workspace: Physical layer must use LayerKind Physical")
	}
	b.layers = append(b.layers, &layer{kind: Physical, phys: root})
	return b
}

// Memory adds an in-memory overlay layer, used to make preprocessed
// output visible to later modules without touching disk.
func (b *Builder) Memory() *Builder {
	b.layers = append(b.layers, newMemoryLayer())
	return b
}

func (b *Builder) DevMode(dev bool) *Builder {
	b.devMode = dev
	return b
}

func (b *Builder) PDrive(pdrive string) *Builder {
	b.pdrive = pdrive
	return b
}

// Finish builds the Workspace and scans every physical layer for prefix
// sentinel files ($PBOPREFIX$, $PBOPREFIX, pboprefix.txt), building the
// prefix index.
func (b *Builder) Finish() (*Workspace, error) {
	if len(b.layers) == 0 {
		return nil, xerrors.New("workspace: at least one layer is required")
	}
	// The layer added last is searched first: reverse into search order.
	search := make([]*layer, len(b.layers))
	for i, l := range b.layers {
		search[len(b.layers)-1-i] = l
	}
	ws := &Workspace{
		layers:   search,
		prefixes: make(map[string]string),
		devMode:  b.devMode,
		pdrive:   b.pdrive,
	}
	if err := ws.scanPrefixes(); err != nil {
		return nil, xerrors.Errorf("workspace: scanning prefixes: %w", err)
	}
	return ws, nil
}

// topWritable returns the first layer in search order, which always
// receives writes.
func (ws *Workspace) topWritable() *layer {
	return ws.layers[0]
}

// Root returns the WorkspacePath rooted at "/".
func (ws *Workspace) Root() *Path {
	return &Path{ws: ws, p: "/"}
}

var sentinelNames = []string{"$PBOPREFIX$", "$PBOPREFIX", "pboprefix.txt"}

func normalizePrefix(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.Trim(p, "/")
	return strings.ToLower(p)
}

// scanPrefixes walks every physical layer looking for sentinel files at
// any depth and records the mapping from logical prefix to concrete
// workspace directory.
func (ws *Workspace) scanPrefixes() error {
	for _, l := range ws.layers {
		if l.kind != Physical {
			continue
		}
		if err := l.walkPhysical("", func(relPath string, isDir bool) error {
			if isDir {
				return nil
			}
			base := relPath[strings.LastIndex(relPath, "/")+1:]
			for _, sentinel := range sentinelNames {
				if base == sentinel {
					dir := strings.TrimSuffix(relPath, "/"+base)
					if dir == relPath {
						dir = ""
					}
					content, err := l.readPhysical(relPath)
					if err != nil {
						return err
					}
					prefix := normalizePrefix(string(content))
					if prefix == "" {
						break
					}
					ws.prefixMu.Lock()
					ws.prefixes[prefix] = "/" + dir
					ws.prefixMu.Unlock()
					break
				}
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// lookupPrefix finds the longest prefix-index entry that is a prefix of
// the (slash-separated, lowercased) target.
func (ws *Workspace) lookupPrefix(target string) (dir string, rest string, ok bool) {
	norm := normalizePrefix(target)
	ws.prefixMu.RLock()
	defer ws.prefixMu.RUnlock()
	var candidates []string
	for prefix := range ws.prefixes {
		if norm == prefix || strings.HasPrefix(norm, prefix+"/") {
			candidates = append(candidates, prefix)
		}
	}
	if len(candidates) == 0 {
		return "", "", false
	}
	sort.Slice(candidates, func(i, j int) bool { return len(candidates[i]) > len(candidates[j]) })
	best := candidates[0]
	dir = ws.prefixes[best]
	rest = strings.TrimPrefix(norm, best)
	rest = strings.TrimPrefix(rest, "/")
	return dir, rest, true
}

func (ws *Workspace) String() string {
	return fmt.Sprintf("workspace(%d layers, %d prefixes)", len(ws.layers), len(ws.prefixes))
}
