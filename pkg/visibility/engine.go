package visibility

import (
	"maps"
	"slices"

	"github.com/matzehuels/callscope/pkg/graph"
)

// Options configures a new [Engine].
type Options struct {
	// ShowIsolated keeps nodes without any edge in the original graph in the
	// visible set.
	ShowIsolated bool

	// MaxDepth hides nodes more than MaxDepth calls away from the nearest
	// entry node. Zero means no limit.
	MaxDepth int
}

// Engine owns the collapse state of one loaded graph and the hidden sets
// derived from it.
//
// Visibility is a pure function of the engine state: the collapse map, the
// isolate scope, the nodes put to sleep by [Engine.CollapseAll], the depth
// limit and the isolated-node flag. Every operation updates that state and rebuilds the
// hidden sets from scratch.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	g *graph.Graph

	collapsed map[string]CollapseState

	// scope is nil unless HideOthers is active; focus is its center.
	scope map[string]bool
	focus string

	// scopeOnly is set by HideOthers: the hidden sets follow the scope alone
	// until the next collapse or expand applies the collapse map again.
	scopeOnly bool

	// dormant holds nodes not reachable from any entry node after
	// CollapseAll. They stay hidden until ExpandAll or HideOthers.
	dormant map[string]bool

	// disclosed holds every node visible at least once since the last load
	// or CollapseAll.
	disclosed map[string]bool

	showIsolated bool

	// maxDepth is the depth limit; levels holds the call distance from the
	// nearest entry node and is built on first use.
	maxDepth int
	levels   map[string]int

	hiddenNodes map[string]bool
	hiddenEdges map[string]bool
}

// New returns an engine with every node expanded.
func New(g *graph.Graph, opts Options) *Engine {
	e := &Engine{
		g:            g,
		collapsed:    make(map[string]CollapseState),
		dormant:      make(map[string]bool),
		disclosed:    make(map[string]bool, g.NodeCount()),
		showIsolated: opts.ShowIsolated,
		maxDepth:     max(opts.MaxDepth, 0),
	}
	for _, n := range g.Nodes() {
		e.disclosed[n.ID] = true
	}
	e.recompute()
	return e
}

// Graph returns the graph the engine was built for.
func (e *Engine) Graph() *graph.Graph { return e.g }

// =============================================================================
// Operations
// =============================================================================

// Collapse sets the collapse flags selected by mode on id. It reports whether
// the state changed; unknown ids and already collapsed directions are no-ops,
// except right after HideOthers where collapsing re-applies the collapse map.
func (e *Engine) Collapse(id string, mode Mode) bool {
	if !e.g.HasNode(id) {
		return false
	}
	before := e.collapsed[id]
	after := before.with(mode, true)
	if after == before && !e.scopeOnly {
		return false
	}
	e.collapsed[id] = after
	e.scopeOnly = false
	e.recompute()
	e.disclose()
	return true
}

// Expand clears the collapse flags selected by mode on id and deletes the
// entry once both are clear. After HideOthers it also puts the rest of the
// collapse map back into effect. Nodes revealed for the first time that have
// callees of their own come back collapsed outgoing so that one expand shows
// one level. Expanding incoming applies the same policy to revealed callers.
func (e *Engine) Expand(id string, mode Mode) bool {
	before, ok := e.collapsed[id]
	if !ok {
		return false
	}
	after := before.with(mode, false)
	if after == before {
		return false
	}
	e.setState(id, after)
	e.scopeOnly = false

	wasVisible := e.visibleSet()
	e.recompute()

	revealed := make(map[string]bool)
	for _, n := range e.g.Nodes() {
		if !e.hiddenNodes[n.ID] && !wasVisible[n.ID] && !e.disclosed[n.ID] {
			revealed[n.ID] = true
		}
	}
	if len(revealed) > 0 {
		e.progressiveDisclosure(id, mode, before, revealed)
	}
	e.disclose()
	return true
}

// Toggle collapses both directions of id when it has no collapse entry and
// expands both otherwise.
func (e *Engine) Toggle(id string) bool {
	if !e.g.HasNode(id) {
		return false
	}
	if _, ok := e.collapsed[id]; ok {
		return e.Expand(id, Both)
	}
	return e.Collapse(id, Both)
}

// CollapseAll reduces the view to the entry nodes of the graph: every entry
// with callees is collapsed outgoing, every other node and every edge is
// hidden. Nodes that no entry reaches, such as call cycles without an entry
// point, stay hidden until ExpandAll or HideOthers.
func (e *Engine) CollapseAll() {
	clear(e.collapsed)
	e.scope, e.focus, e.scopeOnly = nil, "", false

	entries := e.g.EntryNodes()
	start := make([]string, 0, len(entries))
	for _, n := range entries {
		start = append(start, n.ID)
		if e.g.OutDegree(n.ID) > 0 {
			e.collapsed[n.ID] = CollapseState{Outgoing: true}
		}
	}

	reached := bfs(start, e.g.Children)
	clear(e.dormant)
	for _, n := range e.g.Nodes() {
		if !reached[n.ID] {
			e.dormant[n.ID] = true
		}
	}

	e.recompute()
	clear(e.disclosed)
	e.disclose()
}

// ExpandAll clears all collapse state, the isolate scope and dormant nodes.
func (e *Engine) ExpandAll() {
	clear(e.collapsed)
	clear(e.dormant)
	e.scope, e.focus, e.scopeOnly = nil, "", false
	e.recompute()
	for _, n := range e.g.Nodes() {
		e.disclosed[n.ID] = true
	}
}

// HideOthers restricts the view to id and every node reachable from it
// forwards or backwards in the original graph. The result replaces the
// current hidden sets: everything in scope is shown regardless of collapse
// state. The collapse map itself is kept and takes effect again, inside the
// scope, with the next Collapse, Expand or Toggle. id always stays visible.
func (e *Engine) HideOthers(id string) bool {
	if !e.g.HasNode(id) {
		return false
	}
	scope := bfs([]string{id}, e.g.Children)
	maps.Copy(scope, bfs([]string{id}, e.g.Parents))

	e.scope, e.focus, e.scopeOnly = scope, id, true
	clear(e.dormant)
	e.recompute()
	e.disclose()
	return true
}

// SetShowIsolated switches the isolated-node display policy.
func (e *Engine) SetShowIsolated(show bool) {
	if e.showIsolated == show {
		return
	}
	e.showIsolated = show
	e.recompute()
	e.disclose()
}

// SetMaxDepth hides every node more than depth calls away from the nearest
// entry node. Nodes no entry reaches count as too deep. Zero or a negative
// depth removes the limit.
func (e *Engine) SetMaxDepth(depth int) {
	depth = max(depth, 0)
	if e.maxDepth == depth {
		return
	}
	e.maxDepth = depth
	e.recompute()
	e.disclose()
}

// =============================================================================
// Queries
// =============================================================================

// ShowIsolated reports the isolated-node display policy.
func (e *Engine) ShowIsolated() bool { return e.showIsolated }

// MaxDepth returns the depth limit, 0 when there is none.
func (e *Engine) MaxDepth() int { return e.maxDepth }

// Focus returns the node HideOthers is centered on, if any.
func (e *Engine) Focus() (string, bool) { return e.focus, e.scope != nil }

// State returns the collapse state of id. Unknown and expanded nodes return
// the zero state.
func (e *Engine) State(id string) CollapseState { return e.collapsed[id] }

// CollapsedNodes returns a copy of the collapse map.
func (e *Engine) CollapsedNodes() map[string]CollapseState { return maps.Clone(e.collapsed) }

// HiddenNodes returns a copy of the hidden node set.
func (e *Engine) HiddenNodes() map[string]bool { return maps.Clone(e.hiddenNodes) }

// HiddenEdges returns a copy of the hidden edge set.
func (e *Engine) HiddenEdges() map[string]bool { return maps.Clone(e.hiddenEdges) }

// IsNodeVisible reports whether id is a known, visible node.
func (e *Engine) IsNodeVisible(id string) bool {
	return e.g.HasNode(id) && !e.hiddenNodes[id]
}

// IsEdgeVisible reports whether the edge with the given id is visible.
func (e *Engine) IsEdgeVisible(id string) bool {
	_, ok := e.g.Edge(id)
	return ok && !e.hiddenEdges[id]
}

// VisibleNodeIDs returns the visible node ids in load order.
func (e *Engine) VisibleNodeIDs() []string {
	nodes := e.g.VisibleNodes(e.hiddenNodes)
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// VisibleEdgeIDs returns the visible edge ids in load order.
func (e *Engine) VisibleEdgeIDs() []string {
	edges := e.g.VisibleEdges(e.hiddenNodes, e.hiddenEdges)
	ids := make([]string, len(edges))
	for i, ed := range edges {
		ids[i] = ed.ID
	}
	return ids
}

// VisibleEdges returns the visible edges in load order.
func (e *Engine) VisibleEdges() []graph.Edge {
	return e.g.VisibleEdges(e.hiddenNodes, e.hiddenEdges)
}

// =============================================================================
// Internals
// =============================================================================

func (e *Engine) setState(id string, s CollapseState) {
	if s.IsZero() {
		delete(e.collapsed, id)
		return
	}
	e.collapsed[id] = s
}

func (e *Engine) visibleSet() map[string]bool {
	vis := make(map[string]bool, e.g.NodeCount())
	for _, n := range e.g.Nodes() {
		if !e.hiddenNodes[n.ID] {
			vis[n.ID] = true
		}
	}
	return vis
}

func (e *Engine) disclose() {
	for _, n := range e.g.Nodes() {
		if !e.hiddenNodes[n.ID] {
			e.disclosed[n.ID] = true
		}
	}
}

// progressiveDisclosure collapses newly revealed nodes one level below (or
// above) the expanded node. Revealed nodes are classified by walking from id
// through revealed nodes only, in each expanded direction.
func (e *Engine) progressiveDisclosure(id string, mode Mode, before CollapseState, revealed map[string]bool) {
	within := func(next func(string) []string) func(string) []string {
		return func(n string) []string {
			var out []string
			for _, m := range next(n) {
				if revealed[m] {
					out = append(out, m)
				}
			}
			return out
		}
	}

	auto := make(map[string]CollapseState)
	if mode.has(Outgoing) && before.Outgoing {
		for n := range bfs(within(e.g.Children)(id), within(e.g.Children)) {
			if _, ok := e.collapsed[n]; !ok && e.g.OutDegree(n) > 0 {
				auto[n] = CollapseState{Outgoing: true}
			}
		}
	}
	if mode.has(Incoming) && before.Incoming {
		for n := range bfs(within(e.g.Parents)(id), within(e.g.Parents)) {
			if _, ok := e.collapsed[n]; !ok && e.g.InDegree(n) > 0 {
				s := auto[n]
				s.Incoming = true
				auto[n] = s
			}
		}
	}
	if len(auto) == 0 {
		return
	}

	maps.Copy(e.collapsed, auto)
	e.recompute()

	// Nodes hidden again behind another auto-collapsed node keep no state of
	// their own; they are handled when their turn to be revealed comes.
	pruned := false
	for n := range auto {
		if e.hiddenNodes[n] {
			delete(e.collapsed, n)
			pruned = true
		}
	}
	if pruned {
		e.recompute()
	}
}

// recompute rebuilds hiddenNodes and hiddenEdges from the engine state.
//
// A node is visible when it is reachable in both directions: downwards from
// some node that no outgoing collapse shadows, walking only through nodes
// that are not collapsed outgoing, and upwards in the same way with incoming
// collapses. A node is shadowed by a collapsed node c when it is reachable
// from c's callees (callers) without passing c. This is the reference rule
// applied transitively: a hidden node does not keep its own neighbors alive.
// Right after HideOthers the collapse map is ignored.
func (e *Engine) recompute() {
	if e.maxDepth > 0 && e.levels == nil {
		e.levels = levels(e.g)
	}
	active := func(id string) bool {
		if e.dormant[id] {
			return false
		}
		if e.maxDepth > 0 {
			if d, ok := e.levels[id]; !ok || d > e.maxDepth {
				return false
			}
		}
		return e.scope == nil || e.scope[id]
	}
	collapsed := func(id string) CollapseState {
		if e.scopeOnly {
			return CollapseState{}
		}
		return e.collapsed[id]
	}

	down := e.reach(e.g.Children, func(id string) bool { return collapsed(id).Outgoing }, active)
	up := e.reach(e.g.Parents, func(id string) bool { return collapsed(id).Incoming }, active)

	hidden := make(map[string]bool)
	for _, n := range e.g.Nodes() {
		visible := active(n.ID) && down[n.ID] && up[n.ID]
		if !e.showIsolated && e.g.IsIsolated(n.ID) {
			visible = false
		}
		if e.scope != nil && n.ID == e.focus {
			visible = true
		}
		if !visible {
			hidden[n.ID] = true
		}
	}

	hiddenEdges := make(map[string]bool)
	for _, ed := range e.g.Edges() {
		if hidden[ed.From] || hidden[ed.To] || collapsed(ed.From).Outgoing || collapsed(ed.To).Incoming {
			hiddenEdges[ed.ID] = true
		}
	}

	e.hiddenNodes = hidden
	e.hiddenEdges = hiddenEdges
}

// reach returns the nodes reachable from unshadowed active nodes along next,
// never leaving a closed node. The isolate focus always counts as a start.
//
// A node is shadowed by a closed node c when it can be reached from c's
// neighbors without passing c. All closed nodes are walked in one pass that
// carries at most two distinct origins per node: a closed node never counts
// as its own origin, and of two origins at least one is foreign, so keeping
// two is enough to tell whether anyone else shadows it.
func (e *Engine) reach(next func(string) []string, closed, active func(string) bool) map[string]bool {
	nodes := e.g.Nodes()

	type visit struct{ id, origin string }
	origins := make(map[string][]string)
	var queue []visit
	mark := func(id, origin string) {
		if id == origin || !active(id) {
			return
		}
		got := origins[id]
		if len(got) == 2 || slices.Contains(got, origin) {
			return
		}
		origins[id] = append(got, origin)
		queue = append(queue, visit{id, origin})
	}
	for _, c := range nodes {
		if active(c.ID) && closed(c.ID) {
			for _, nb := range next(c.ID) {
				mark(nb, c.ID)
			}
		}
	}
	for head := 0; head < len(queue); head++ {
		v := queue[head]
		if closed(v.id) {
			continue
		}
		for _, nb := range next(v.id) {
			mark(nb, v.origin)
		}
	}

	reached := make(map[string]bool, len(nodes))
	var starts []string
	for _, n := range nodes {
		if active(n.ID) && (len(origins[n.ID]) == 0 || (e.scope != nil && n.ID == e.focus)) {
			reached[n.ID] = true
			starts = append(starts, n.ID)
		}
	}
	for head := 0; head < len(starts); head++ {
		id := starts[head]
		if closed(id) {
			continue
		}
		for _, nb := range next(id) {
			if active(nb) && !reached[nb] {
				reached[nb] = true
				starts = append(starts, nb)
			}
		}
	}
	return reached
}

// levels returns the call distance of every node reachable from an entry
// node.
func levels(g *graph.Graph) map[string]int {
	dist := make(map[string]int, g.NodeCount())
	var queue []string
	for _, n := range g.EntryNodes() {
		dist[n.ID] = 0
		queue = append(queue, n.ID)
	}
	for head := 0; head < len(queue); head++ {
		id := queue[head]
		for _, nb := range g.Children(id) {
			if _, ok := dist[nb]; !ok {
				dist[nb] = dist[id] + 1
				queue = append(queue, nb)
			}
		}
	}
	return dist
}

// bfs returns every node reachable from start along next, start included.
func bfs(start []string, next func(string) []string) map[string]bool {
	seen := make(map[string]bool, len(start))
	queue := append([]string(nil), start...)
	for _, id := range start {
		seen[id] = true
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, nb := range next(id) {
			if !seen[nb] {
				seen[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return seen
}
