package explorer

import (
	"github.com/matzehuels/callscope/pkg/cluster"
	"github.com/matzehuels/callscope/pkg/graph"
	"github.com/matzehuels/callscope/pkg/overlap"
	"github.com/matzehuels/callscope/pkg/visibility"
)

// View is the renderer-facing snapshot of the current visible graph.
type View struct {
	GraphID      string            `json:"graphId"`
	ShowIsolated bool              `json:"showIsolated"`
	MaxDepth     int               `json:"maxDepth,omitempty"`
	Focus        string            `json:"focus,omitempty"`
	Nodes        []ViewNode        `json:"nodes"`
	Edges        []ViewEdge        `json:"edges"`
	Clusters     []cluster.Cluster `json:"clusters"`
}

// ViewNode is one visible node with its provisional position.
type ViewNode struct {
	ID                   string                   `json:"id"`
	Label                string                   `json:"label"`
	Package              string                   `json:"package"`
	SourceFile           string                   `json:"sourceFile,omitempty"`
	SourceLine           int                      `json:"sourceLine,omitempty"`
	X                    float64                  `json:"x"`
	Y                    float64                  `json:"y"`
	Collapse             visibility.CollapseState `json:"collapse"`
	Style                visibility.StyleTag      `json:"style"`
	PackageIndex         int                      `json:"packageIndex"`
	Depth                int                      `json:"depth"`
	LongestIncomingChain int                      `json:"longestIncomingChain"`
	LongestOutgoingChain int                      `json:"longestOutgoingChain"`
}

// ViewEdge is one visible edge.
type ViewEdge struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// View plans the visible nodes into package clusters and returns the
// snapshot. Nodes stack inside their column by longest outgoing chain, and
// the planned positions are passed through the overlap resolver once.
// Before the first load View returns an empty view.
func (x *Explorer) View() *View {
	v := &View{
		GraphID:      x.id,
		ShowIsolated: x.showIsolated,
		MaxDepth:     x.maxDepth,
		Nodes:        []ViewNode{},
		Edges:        []ViewEdge{},
		Clusters:     []cluster.Cluster{},
	}
	if x.engine == nil {
		return v
	}
	if focus, ok := x.engine.Focus(); ok {
		v.Focus = focus
	}

	ids := x.engine.VisibleNodeIDs()
	edges := x.engine.VisibleEdges()

	opts := x.Config.ClusterOptions()
	opts.Priority = func(n *graph.Node) int { return n.LongestOutgoingChain }
	plan := cluster.Build(x.graph, ids, edges, opts)
	v.Clusters = plan.Clusters

	positions := make([]overlap.Position, len(ids))
	for i, id := range ids {
		p := plan.Placements[id]
		positions[i] = overlap.Position{ID: id, X: p.X, Y: p.Y}
	}
	positions = x.ResolveOverlaps(positions)

	v.Nodes = make([]ViewNode, len(ids))
	for i, id := range ids {
		n, _ := x.graph.Node(id)
		p := plan.Placements[id]
		state := x.engine.State(id)
		v.Nodes[i] = ViewNode{
			ID:                   id,
			Label:                n.DisplayLabel(),
			Package:              n.Package,
			SourceFile:           n.SourceFile,
			SourceLine:           n.SourceLine,
			X:                    positions[i].X,
			Y:                    positions[i].Y,
			Collapse:             state,
			Style:                visibility.StyleFor(state),
			PackageIndex:         p.PackageIndex,
			Depth:                p.Depth,
			LongestIncomingChain: n.LongestIncomingChain,
			LongestOutgoingChain: n.LongestOutgoingChain,
		}
	}

	v.Edges = make([]ViewEdge, len(edges))
	for i, e := range edges {
		v.Edges[i] = ViewEdge{ID: e.ID, From: e.From, To: e.To}
	}
	return v
}

// Node returns the visible node with the given id.
func (v *View) Node(id string) (ViewNode, bool) {
	for _, n := range v.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return ViewNode{}, false
}
