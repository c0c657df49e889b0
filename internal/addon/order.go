package addon

import (
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// orderedNode pairs a graph.Node id with the addon it represents, mirroring
// cmd/distri/batch.go's node type (which pairs an int64 id with a package
// name) used to build a simple.DirectedGraph for dependency ordering.
type orderedNode struct {
	id    int64
	addon *Addon
}

func (n *orderedNode) ID() int64 { return n.id }

// CycleError is a structural error reporting a dependency cycle detected
// while computing build order.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	msg := "addon: dependency cycle:"
	for _, n := range e.Cycle {
		msg += " " + n + " ->"
	}
	return msg
}

// BuildOrder returns addons topologically sorted by their declared
// CfgPatches requiredAddons dependencies (populated into
// Addon.BuildData during the check phase; see internal/executor's
// requiredversion module). Addons with no declared dependency edges keep
// their scan order relative to one another.
func BuildOrder(addons []*Addon) ([]*Addon, error) {
	g := simple.NewDirectedGraph()
	byName := make(map[string]*orderedNode, len(addons))

	for i, a := range addons {
		n := &orderedNode{id: int64(i), addon: a}
		byName[a.Name] = n
		g.AddNode(n)
	}
	for _, a := range addons {
		from := byName[a.Name]
		for _, dep := range a.BuildData.Dependencies() {
			to, ok := byName[dep]
			if !ok {
				continue // dependency outside this workspace; nothing to order against
			}
			if !g.HasEdgeFromTo(to.ID(), from.ID()) {
				g.SetEdge(g.NewEdge(to, from))
			}
		}
	}

	sorted, err := topo.SortStabilized(g, nil)
	if err != nil {
		if uErr, ok := err.(topo.Unorderable); ok {
			var names []string
			for _, cycle := range uErr {
				for _, n := range cycle {
					names = append(names, n.(*orderedNode).addon.Name)
				}
			}
			return nil, &CycleError{Cycle: names}
		}
		return nil, xerrors.Errorf("addon: computing build order: %w", err)
	}

	out := make([]*Addon, 0, len(sorted))
	for _, n := range sorted {
		out = append(out, n.(*orderedNode).addon)
	}
	return out, nil
}

var _ graph.Node = (*orderedNode)(nil)
