// Package visibility decides which nodes and edges of a call graph are shown.
//
// # Collapse State
//
// Each node may be collapsed in the outgoing direction (its callees are
// hidden), the incoming direction (its callers are hidden) or both. The state
// lives in a map keyed by node id; a node absent from the map is fully
// expanded and entries with both flags cleared are deleted immediately.
//
// # Reference Rule
//
// Collapsing a node does not unconditionally hide its neighbors. A callee
// stays visible as long as some other visible caller that is not collapsed
// outgoing still calls it, and symmetrically for callers. Hidden nodes do not
// count as references, so hiding cascades down a chain and a call cycle behind
// a collapsed node cannot keep itself visible.
//
// # Bulk Operations
//
// [Engine.CollapseAll] reduces the view to the entry points of the graph,
// [Engine.ExpandAll] restores everything and [Engine.HideOthers] limits the
// view to a single node and everything connected to it. The isolated view
// ignores collapse state until the next collapse or expand.
//
// [Engine.SetMaxDepth] additionally hides everything more than a given
// number of calls away from the entry points.
//
// # Cost
//
// Every operation rebuilds the hidden sets in O(V+E): one pass finds the
// nodes shadowed by any collapse and one pass walks the open directions.
//
// # Usage
//
//	e := visibility.New(g, visibility.Options{})
//	e.CollapseAll()
//	e.Expand("main.main", visibility.Outgoing)
//	for _, id := range e.VisibleNodeIDs() {
//	    fmt.Println(id, visibility.StyleFor(e.State(id)))
//	}
package visibility
