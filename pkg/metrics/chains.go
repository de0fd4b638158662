// Package metrics computes per-node call chain lengths over a call graph.
//
// The longest outgoing chain of a node is the number of edges on the longest
// call sequence starting at it; the longest incoming chain is the same
// measure following calls backwards. Cycles are ordinary input: a traversal
// never revisits a node already on its current path, so a call that closes a
// cycle simply contributes nothing.
//
// Chains are defined over the full graph and computed once per load with
// [Annotate]; visibility changes never affect them.
package metrics

import (
	"cmp"
	"slices"

	"github.com/matzehuels/callscope/pkg/graph"
)

// DefaultMaxExpansions is the default traversal budget per node inside cyclic
// components. See [Options.MaxExpansions].
const DefaultMaxExpansions = 200_000

// Direction selects which adjacency a chain follows.
type Direction int

const (
	// Outgoing follows calls from caller to callee.
	Outgoing Direction = iota
	// Incoming follows calls from callee back to caller.
	Incoming
)

// String returns "outgoing" or "incoming".
func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// Chains holds the longest chain lengths of one node.
type Chains struct {
	Incoming int
	Outgoing int
}

// Options tunes the chain computation.
type Options struct {
	// MaxExpansions bounds how many nodes a single root's traversal may
	// expand inside strongly connected components. Longest simple paths in
	// cyclic components are exponential to enumerate; once the budget is
	// spent the best chain found so far is kept. Zero means
	// DefaultMaxExpansions.
	MaxExpansions int
}

// Compute returns the longest incoming and outgoing chain of every node.
// The graph is not modified.
func Compute(g *graph.Graph, opts Options) map[string]Chains {
	budget := opts.MaxExpansions
	if budget <= 0 {
		budget = DefaultMaxExpansions
	}

	acyclic := acyclicNodes(g)
	out := longestChains(g, g.Children, acyclic, budget)
	in := longestChains(g, g.Parents, acyclic, budget)

	result := make(map[string]Chains, g.NodeCount())
	for _, n := range g.Nodes() {
		result[n.ID] = Chains{Incoming: in[n.ID], Outgoing: out[n.ID]}
	}
	return result
}

// Annotate computes chains with [Compute] and stores them in the graph's
// nodes. It is meant to run once right after [graph.Load].
func Annotate(g *graph.Graph, opts Options) map[string]Chains {
	chains := Compute(g, opts)
	for _, n := range g.Nodes() {
		c := chains[n.ID]
		n.LongestIncomingChain = c.Incoming
		n.LongestOutgoingChain = c.Outgoing
	}
	return chains
}

// Longest returns up to limit nodes ordered by their annotated chain length in
// the given direction, longest first, ties broken by ID. Nodes with a zero
// chain are left out.
func Longest(g *graph.Graph, dir Direction, limit int) []*graph.Node {
	length := func(n *graph.Node) int {
		if dir == Incoming {
			return n.LongestIncomingChain
		}
		return n.LongestOutgoingChain
	}

	nodes := slices.DeleteFunc(g.Nodes(), func(n *graph.Node) bool { return length(n) == 0 })
	slices.SortStableFunc(nodes, func(a, b *graph.Node) int {
		if c := cmp.Compare(length(b), length(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit >= 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes
}

// longestChains computes the longest simple path from every node along next.
//
// A node outside every multi-node strongly connected component cannot reach
// any node on the path that led to it, so its chain is path-independent and
// memoized. Nodes inside a cyclic component are searched per path, bounded by
// budget expansions per root.
func longestChains(g *graph.Graph, next func(string) []string, acyclic map[string]bool, budget int) map[string]int {
	memo := make(map[string]int, g.NodeCount())
	onPath := make(map[string]bool)

	var (
		remaining int
		exhausted bool
	)

	var walk func(id string) int
	walk = func(id string) int {
		if v, ok := memo[id]; ok {
			return v
		}
		if !acyclic[id] {
			remaining--
			if remaining < 0 {
				exhausted = true
			}
		}

		onPath[id] = true
		best := 0
		for _, nb := range next(id) {
			if onPath[nb] {
				continue
			}
			if exhausted {
				if v, ok := memo[nb]; ok && v+1 > best {
					best = v + 1
				}
				continue
			}
			if c := walk(nb) + 1; c > best {
				best = c
			}
		}
		delete(onPath, id)

		if acyclic[id] && !exhausted {
			memo[id] = best
		}
		return best
	}

	result := make(map[string]int, g.NodeCount())
	for _, n := range g.Nodes() {
		remaining = budget
		exhausted = false
		result[n.ID] = walk(n.ID)
	}
	return result
}

// acyclicNodes reports, for every node, whether it sits outside all
// strongly connected components with more than one member. Components are
// found with Tarjan's algorithm.
func acyclicNodes(g *graph.Graph) map[string]bool {
	var (
		index   = make(map[string]int, g.NodeCount())
		low     = make(map[string]int, g.NodeCount())
		onStack = make(map[string]bool)
		stack   []string
		counter int
		result  = make(map[string]bool, g.NodeCount())
	)

	var connect func(id string)
	connect = func(id string) {
		index[id] = counter
		low[id] = counter
		counter++
		stack = append(stack, id)
		onStack[id] = true

		for _, child := range g.Children(id) {
			if _, seen := index[child]; !seen {
				connect(child)
				low[id] = min(low[id], low[child])
			} else if onStack[child] {
				low[id] = min(low[id], index[child])
			}
		}

		if low[id] != index[id] {
			return
		}
		var members []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			members = append(members, top)
			if top == id {
				break
			}
		}
		for _, m := range members {
			result[m] = len(members) == 1
		}
	}

	for _, n := range g.Nodes() {
		if _, seen := index[n.ID]; !seen {
			connect(n.ID)
		}
	}
	return result
}
