package graph

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	apperrors "github.com/matzehuels/callscope/pkg/errors"
)

// UnknownPackage is the package assigned to nodes whose source file has no
// resolvable directory component.
const UnknownPackage = "unknown"

var (
	// ErrInvalidNodeID is returned by [Load] when a node ID is empty or
	// contains characters that cannot be displayed.
	ErrInvalidNodeID = errors.New("invalid node ID")

	// ErrDuplicateNodeID is returned by [Load] when two nodes share an ID.
	// Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateEdgeID is returned by [Load] when two edges share an ID,
	// including IDs assigned automatically to edges that omit one.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownSourceNode is returned by [Load] when an edge's From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Load] when an edge's To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Node is a function or method in the analyzed codebase.
//
// ID, Label, SourceFile and SourceLine come from the graph producer. Package
// is derived from SourceFile at load time and the chain lengths are filled in
// once by the metrics package; nothing else mutates a loaded node.
type Node struct {
	ID         string // Unique, stable identifier
	Label      string // Display label (defaults to ID)
	SourceFile string // Optional path of the defining file
	SourceLine int    // Optional 1-based line of the definition

	// Package is the folder component of SourceFile, or UnknownPackage.
	Package string

	LongestIncomingChain int
	LongestOutgoingChain int
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a call from one node to another. Parallel edges between the same
// pair of nodes are allowed and kept apart by their IDs.
type Edge struct {
	ID   string // Unique identifier (assigned as "e<index>" when empty, suffixed if taken)
	From string // Caller node ID
	To   string // Callee node ID
}

// Graph is the immutable ground truth of a loaded call graph.
//
// The zero value is not usable - use [Load] to create a Graph. Graph is not
// safe for concurrent use while the metrics package annotates it; afterwards
// it is read-only.
type Graph struct {
	nodes     []*Node
	index     map[string]*Node
	edges     []Edge
	edgeIndex map[string]int
	outgoing  map[string][]Edge // nodeID -> edges leaving it
	incoming  map[string][]Edge // nodeID -> edges entering it
	packages  []string
}

// Load validates nodes and edges and builds a Graph from them.
//
// Load is all-or-nothing: on any violation it returns a nil Graph and an
// error coded [apperrors.ErrCodeInvalidGraph] that wraps one of the sentinel
// errors of this package, so both of these hold for a duplicate node:
//
//	apperrors.Is(err, apperrors.ErrCodeInvalidGraph)
//	errors.Is(err, graph.ErrDuplicateNodeID)
//
// The input slices are copied; later changes to them do not affect the Graph.
func Load(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		nodes:     make([]*Node, 0, len(nodes)),
		index:     make(map[string]*Node, len(nodes)),
		edges:     make([]Edge, 0, len(edges)),
		edgeIndex: make(map[string]int, len(edges)),
		outgoing:  make(map[string][]Edge),
		incoming:  make(map[string][]Edge),
	}

	seenPkg := make(map[string]bool)
	for i, n := range nodes {
		if err := apperrors.ValidateNodeID(n.ID); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrInvalidNodeID, "node %d: %s", i, apperrors.UserMessage(err))
		}
		if _, exists := g.index[n.ID]; exists {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrDuplicateNodeID, "node %q", n.ID)
		}
		node := n
		node.Package = PackageOf(n.SourceFile)
		node.LongestIncomingChain = 0
		node.LongestOutgoingChain = 0
		g.nodes = append(g.nodes, &node)
		g.index[node.ID] = &node
		if !seenPkg[node.Package] {
			seenPkg[node.Package] = true
			g.packages = append(g.packages, node.Package)
		}
	}

	explicit := make(map[string]bool, len(edges))
	for _, e := range edges {
		if e.ID != "" {
			explicit[e.ID] = true
		}
	}

	for i, e := range edges {
		if e.ID == "" {
			e.ID = autoEdgeID(i, explicit, g.edgeIndex)
		}
		if _, ok := g.index[e.From]; !ok {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrUnknownSourceNode, "edge %s: %q", e.ID, e.From)
		}
		if _, ok := g.index[e.To]; !ok {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrUnknownTargetNode, "edge %s: %q", e.ID, e.To)
		}
		if _, exists := g.edgeIndex[e.ID]; exists {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrDuplicateEdgeID, "edge %q", e.ID)
		}
		g.edgeIndex[e.ID] = len(g.edges)
		g.edges = append(g.edges, e)
		g.outgoing[e.From] = append(g.outgoing[e.From], e)
		g.incoming[e.To] = append(g.incoming[e.To], e)
	}

	return g, nil
}

// autoEdgeID returns "e<i>", or "e<i>_<n>" with the smallest n free when an
// explicit or earlier edge ID already uses it.
func autoEdgeID(i int, explicit map[string]bool, assigned map[string]int) string {
	base := fmt.Sprintf("e%d", i)
	id := base
	for n := 1; ; n++ {
		if _, used := assigned[id]; !used && !explicit[id] {
			return id
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

// PackageOf derives a package name from a source file path: the last
// directory component, accepting both slash and backslash separators.
// It returns [UnknownPackage] when the path is empty or has no directory.
//
//	PackageOf("example-project/utils/utils.go") // "utils"
//	PackageOf("main.go")                         // "unknown"
func PackageOf(sourceFile string) string {
	p := strings.ReplaceAll(strings.TrimSpace(sourceFile), `\`, "/")
	if p == "" {
		return UnknownPackage
	}
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return UnknownPackage
	}
	return path.Base(dir)
}

// Node returns the node with the given ID and true, or nil and false if not found.
// The returned pointer refers to the node inside the graph.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// HasNode reports whether a node with the given ID was loaded.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Nodes returns all nodes in load order. The slice is a copy but the node
// pointers refer to the graph's nodes.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Edges returns a copy of all edges in load order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Edge returns the edge with the given ID and true, or the zero Edge and false.
func (g *Graph) Edge(id string) (Edge, bool) {
	i, ok := g.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// OutEdges returns the edges leaving the node, in load order.
// The returned slice should not be modified - use it as a read-only view.
func (g *Graph) OutEdges(id string) []Edge { return g.outgoing[id] }

// InEdges returns the edges entering the node, in load order.
// The returned slice should not be modified - use it as a read-only view.
func (g *Graph) InEdges(id string) []Edge { return g.incoming[id] }

// Children returns the IDs of the nodes this node calls, one entry per edge.
func (g *Graph) Children(id string) []string {
	out := g.outgoing[id]
	if len(out) == 0 {
		return nil
	}
	ids := make([]string, len(out))
	for i, e := range out {
		ids[i] = e.To
	}
	return ids
}

// Parents returns the IDs of the nodes calling this node, one entry per edge.
func (g *Graph) Parents(id string) []string {
	in := g.incoming[id]
	if len(in) == 0 {
		return nil
	}
	ids := make([]string, len(in))
	for i, e := range in {
		ids[i] = e.From
	}
	return ids
}

// OutDegree returns the number of outgoing edges. Returns 0 for unknown nodes.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges. Returns 0 for unknown nodes.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// IsIsolated reports whether the node has no edges at all in the graph.
func (g *Graph) IsIsolated(id string) bool {
	return len(g.outgoing[id]) == 0 && len(g.incoming[id]) == 0
}

// EntryNodes returns the nodes with no incoming edges, in load order.
// These are typically program entry points such as main functions.
func (g *Graph) EntryNodes() []*Node {
	var entries []*Node
	for _, n := range g.nodes {
		if len(g.incoming[n.ID]) == 0 {
			entries = append(entries, n)
		}
	}
	return entries
}

// Packages returns the distinct package names in order of first appearance.
func (g *Graph) Packages() []string { return slices.Clone(g.packages) }

// VisibleNodes returns the nodes not present in hiddenNodes, in load order.
// It has no side effects.
func (g *Graph) VisibleNodes(hiddenNodes map[string]bool) []*Node {
	visible := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if !hiddenNodes[n.ID] {
			visible = append(visible, n)
		}
	}
	return visible
}

// VisibleEdges returns the edges that are neither hidden themselves nor
// touching a hidden node, in load order. An edge is therefore only returned
// when both of its endpoints are visible.
func (g *Graph) VisibleEdges(hiddenNodes, hiddenEdges map[string]bool) []Edge {
	visible := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if hiddenEdges[e.ID] || hiddenNodes[e.From] || hiddenNodes[e.To] {
			continue
		}
		visible = append(visible, e)
	}
	return visible
}
