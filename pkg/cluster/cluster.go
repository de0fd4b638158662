// Package cluster groups visible call graph nodes into left-to-right package
// columns and assigns each node a provisional position.
//
// Packages are ordered so that a package calling another sits to its left.
// Within a package, nodes move right with their intra-package call depth and
// stack vertically in priority order. The positions are a starting point for
// an external renderer, which may refine them and then correct collisions
// with the overlap package.
package cluster

import (
	"cmp"
	"slices"

	"github.com/matzehuels/callscope/pkg/graph"
)

// Default spacings, in renderer units.
const (
	DefaultPackageSpacing      = 420.0
	DefaultIntraPackageSpacing = 180.0
	DefaultRowSpacing          = 70.0
)

// Options controls the spacing of a plan and the vertical order of nodes.
type Options struct {
	// PackageSpacing is the horizontal distance between package columns.
	PackageSpacing float64
	// IntraPackageSpacing is the horizontal distance between depth levels
	// inside a package.
	IntraPackageSpacing float64
	// RowSpacing is the vertical distance between nodes of one column.
	RowSpacing float64
	// Priority ranks nodes inside a column; higher values come first. Nil
	// keeps load order.
	Priority func(*graph.Node) int
}

// DefaultOptions returns the default spacings without a priority.
func DefaultOptions() Options {
	return Options{
		PackageSpacing:      DefaultPackageSpacing,
		IntraPackageSpacing: DefaultIntraPackageSpacing,
		RowSpacing:          DefaultRowSpacing,
	}
}

// Cluster is one package column of a plan.
type Cluster struct {
	Name string `json:"name"`
	// NodeIDs lists the visible members in load order.
	NodeIDs []string `json:"nodeIds"`
	// DependsOn lists the other packages of the plan this one calls.
	DependsOn []string `json:"dependsOn,omitempty"`
}

// Placement is the provisional position of one visible node.
type Placement struct {
	PackageIndex int     `json:"packageIndex"`
	Depth        int     `json:"depth"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
}

// Plan is the result of [Build]. Clusters are in left-to-right order and
// PackageIndex values index into it.
type Plan struct {
	Clusters   []Cluster            `json:"clusters"`
	Placements map[string]Placement `json:"placements"`
}

// Build plans the given visible nodes and edges of g.
//
// Build groups visibleIDs by package, orders the packages, computes
// intra-package depths and assigns positions:
//
//	X = packageIndex*PackageSpacing + depth*IntraPackageSpacing
//	Y = slot*RowSpacing
//
// where slot enumerates the nodes sharing a package and depth, highest
// priority first and then in load order.
//
// # Package Order
//
// Package A depends on package B when any edge of the original graph goes
// from a node of A to a node of B. Using the original edges keeps the order
// stable while nodes are revealed and hidden. Packages are visited depth
// first in order of first appearance, dependencies before dependents, and the
// post-order is reversed. A dependency cycle is broken at the package where
// the visit started, so the result is deterministic for any input.
//
// # Depth
//
// Depth follows visible edges between members of the same package. Nodes
// without an incoming intra-package edge start at depth 0 and depths relax
// breadth first, re-enqueueing a node only when its depth strictly grows.
// Depths are capped at the package size minus one so call cycles terminate.
// Nodes unreachable from any such root keep depth 0.
//
// Unknown ids in visibleIDs and edges touching nodes outside visibleIDs are
// ignored.
func Build(g *graph.Graph, visibleIDs []string, visibleEdges []graph.Edge, opts Options) Plan {
	visible := make(map[string]bool, len(visibleIDs))
	for _, id := range visibleIDs {
		if g.HasNode(id) {
			visible[id] = true
		}
	}

	var (
		names   []string
		members = make(map[string][]*graph.Node)
	)
	for _, n := range g.Nodes() {
		if !visible[n.ID] {
			continue
		}
		pkg := packageOf(n)
		if _, ok := members[pkg]; !ok {
			names = append(names, pkg)
		}
		members[pkg] = append(members[pkg], n)
	}

	deps := dependencies(g, members)
	order := orderPackages(names, deps)

	plan := Plan{
		Clusters:   make([]Cluster, len(order)),
		Placements: make(map[string]Placement, len(visible)),
	}
	for i, pkg := range order {
		nodes := members[pkg]
		ids := make([]string, len(nodes))
		for j, n := range nodes {
			ids[j] = n.ID
		}
		plan.Clusters[i] = Cluster{Name: pkg, NodeIDs: ids, DependsOn: deps[pkg]}

		depths := depthsWithin(nodes, visible, visibleEdges)
		place(plan.Placements, i, nodes, depths, opts)
	}
	return plan
}

func packageOf(n *graph.Node) string {
	if n.Package == "" {
		return graph.UnknownPackage
	}
	return n.Package
}

// dependencies returns, for each planned package, the other planned packages
// it calls in the original graph, in order of first edge.
func dependencies(g *graph.Graph, members map[string][]*graph.Node) map[string][]string {
	deps := make(map[string][]string, len(members))
	seen := make(map[[2]string]bool)
	for _, e := range g.Edges() {
		from, _ := g.Node(e.From)
		to, _ := g.Node(e.To)
		a, b := packageOf(from), packageOf(to)
		if a == b || members[a] == nil || members[b] == nil || seen[[2]string{a, b}] {
			continue
		}
		seen[[2]string{a, b}] = true
		deps[a] = append(deps[a], b)
	}
	return deps
}

// orderPackages returns names in reverse depth-first post-order over deps.
func orderPackages(names []string, deps map[string][]string) []string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(names))
	post := make([]string, 0, len(names))

	var visit func(string)
	visit = func(p string) {
		state[p] = visiting
		for _, d := range deps[p] {
			if state[d] == unvisited {
				visit(d)
			}
		}
		state[p] = done
		post = append(post, p)
	}

	for _, p := range names {
		if state[p] == unvisited {
			visit(p)
		}
	}
	slices.Reverse(post)
	return post
}

// depthsWithin computes intra-package call depths for one package.
func depthsWithin(nodes []*graph.Node, visible map[string]bool, edges []graph.Edge) map[string]int {
	inPkg := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		inPkg[n.ID] = true
	}

	children := make(map[string][]string)
	hasParent := make(map[string]bool)
	for _, e := range edges {
		if e.From == e.To || !inPkg[e.From] || !inPkg[e.To] || !visible[e.From] || !visible[e.To] {
			continue
		}
		children[e.From] = append(children[e.From], e.To)
		hasParent[e.To] = true
	}

	limit := len(nodes) - 1
	depth := make(map[string]int, len(nodes))
	var queue []string
	for _, n := range nodes {
		if !hasParent[n.ID] {
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		next := depth[curr] + 1
		if next > limit {
			continue
		}
		for _, child := range children[curr] {
			if next > depth[child] {
				depth[child] = next
				queue = append(queue, child)
			}
		}
	}
	return depth
}

func place(out map[string]Placement, pkgIndex int, nodes []*graph.Node, depths map[string]int, opts Options) {
	ordered := slices.Clone(nodes)
	if opts.Priority != nil {
		slices.SortStableFunc(ordered, func(a, b *graph.Node) int {
			return cmp.Compare(opts.Priority(b), opts.Priority(a))
		})
	}

	slots := make(map[int]int)
	for _, n := range ordered {
		d := depths[n.ID]
		slot := slots[d]
		slots[d]++
		out[n.ID] = Placement{
			PackageIndex: pkgIndex,
			Depth:        d,
			X:            float64(pkgIndex)*opts.PackageSpacing + float64(d)*opts.IntraPackageSpacing,
			Y:            float64(slot) * opts.RowSpacing,
		}
	}
}
