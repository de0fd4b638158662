package explorer

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/callscope/pkg/config"
	"github.com/matzehuels/callscope/pkg/graph"
	"github.com/matzehuels/callscope/pkg/metrics"
	"github.com/matzehuels/callscope/pkg/observability"
	"github.com/matzehuels/callscope/pkg/overlap"
	"github.com/matzehuels/callscope/pkg/visibility"
)

// Explorer drives interactive exploration of one call graph at a time.
//
// It owns the loaded graph, its metrics and the visibility engine built for
// it. Loading a new graph replaces all three; a failed load keeps the
// previous graph. Operations before the first successful load are no-ops.
//
// Explorer is not safe for concurrent use.
type Explorer struct {
	Logger *log.Logger
	Config config.Config
	Hooks  observability.ExplorerHooks

	graph        *graph.Graph
	engine       *visibility.Engine
	id           string
	showIsolated bool
	maxDepth     int
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(x *Explorer) {
		if l != nil {
			x.Logger = l
		}
	}
}

// WithConfig sets spacing, footprint, metrics and display settings.
func WithConfig(c config.Config) Option {
	return func(x *Explorer) { x.Config = c }
}

// WithHooks sets the observability hooks. The default is the hooks
// registered with observability.SetExplorerHooks at the time of the call.
func WithHooks(h observability.ExplorerHooks) Option {
	return func(x *Explorer) {
		if h != nil {
			x.Hooks = h
		}
	}
}

// New creates an Explorer with no graph loaded.
func New(opts ...Option) *Explorer {
	x := &Explorer{
		Logger: log.Default(),
		Config: config.Default(),
		Hooks:  observability.Explorer(),
	}
	for _, opt := range opts {
		opt(x)
	}
	x.showIsolated = x.Config.View.ShowIsolated
	x.maxDepth = x.Config.View.MaxDepth
	return x
}

// Load validates and installs a new graph.
//
// Load is all-or-nothing: the graph is validated, annotated with chain
// metrics and given a fresh visibility engine and generation id. On error
// the previously loaded graph, its collapse state and id are untouched.
func (x *Explorer) Load(nodes []graph.Node, edges []graph.Edge) error {
	start := time.Now()
	g, err := graph.Load(nodes, edges)
	if err != nil {
		x.Hooks.OnLoad("", len(nodes), len(edges), time.Since(start), err)
		x.Logger.Warn("graph rejected", "err", err)
		return err
	}

	metrics.Annotate(g, x.Config.MetricsOptions())
	engine := visibility.New(g, visibility.Options{ShowIsolated: x.showIsolated, MaxDepth: x.maxDepth})

	x.graph, x.engine, x.id = g, engine, uuid.NewString()

	x.Hooks.OnLoad(x.id, g.NodeCount(), g.EdgeCount(), time.Since(start), nil)
	x.Logger.Info("graph loaded",
		"id", x.id,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"packages", len(g.Packages()),
		"duration", time.Since(start).Round(time.Microsecond))
	return nil
}

// Loaded reports whether a graph has been loaded.
func (x *Explorer) Loaded() bool { return x.graph != nil }

// GraphID returns the generation id of the loaded graph, or "" before the
// first load. Renderers compare it to drop views of a replaced graph.
func (x *Explorer) GraphID() string { return x.id }

// Graph returns the loaded graph, or nil.
func (x *Explorer) Graph() *graph.Graph { return x.graph }

// Engine returns the visibility engine of the loaded graph, or nil.
func (x *Explorer) Engine() *visibility.Engine { return x.engine }

// =============================================================================
// Operations
// =============================================================================

// Collapse collapses id in the given direction(s).
func (x *Explorer) Collapse(id string, mode visibility.Mode) bool {
	return x.run(OpCollapse, id, func(e *visibility.Engine) bool { return e.Collapse(id, mode) }, "mode", mode)
}

// Expand expands id in the given direction(s).
func (x *Explorer) Expand(id string, mode visibility.Mode) bool {
	return x.run(OpExpand, id, func(e *visibility.Engine) bool { return e.Expand(id, mode) }, "mode", mode)
}

// Toggle collapses id in both directions, or expands it when it already has
// collapse state.
func (x *Explorer) Toggle(id string) bool {
	return x.run(OpToggle, id, func(e *visibility.Engine) bool { return e.Toggle(id) })
}

// CollapseAll reduces the view to the entry nodes.
func (x *Explorer) CollapseAll() {
	x.run(OpCollapseAll, "", func(e *visibility.Engine) bool { e.CollapseAll(); return true })
}

// ExpandAll shows every node again.
func (x *Explorer) ExpandAll() {
	x.run(OpExpandAll, "", func(e *visibility.Engine) bool { e.ExpandAll(); return true })
}

// HideOthers isolates id and everything connected to it.
func (x *Explorer) HideOthers(id string) bool {
	return x.run(OpIsolate, id, func(e *visibility.Engine) bool { return e.HideOthers(id) })
}

// SetShowIsolated switches the isolated-node display policy. The setting
// survives reloads.
func (x *Explorer) SetShowIsolated(show bool) {
	x.showIsolated = show
	x.run(OpShowIsolated, "", func(e *visibility.Engine) bool {
		changed := e.ShowIsolated() != show
		e.SetShowIsolated(show)
		return changed
	}, "show", show)
}

// ShowIsolated reports the isolated-node display policy.
func (x *Explorer) ShowIsolated() bool { return x.showIsolated }

// SetMaxDepth hides functions more than depth calls below an entry point.
// Zero removes the limit. Like the isolated policy it survives reloads.
func (x *Explorer) SetMaxDepth(depth int) {
	depth = max(depth, 0)
	x.maxDepth = depth
	x.run(OpDepth, "", func(e *visibility.Engine) bool {
		changed := e.MaxDepth() != depth
		e.SetMaxDepth(depth)
		return changed
	}, "depth", depth)
}

// MaxDepth returns the depth limit, 0 when there is none.
func (x *Explorer) MaxDepth() int { return x.maxDepth }

// Apply runs a parsed operation.
func (x *Explorer) Apply(op Operation) bool {
	switch op.Kind {
	case OpCollapse:
		return x.Collapse(op.NodeID, op.Mode)
	case OpExpand:
		return x.Expand(op.NodeID, op.Mode)
	case OpToggle:
		return x.Toggle(op.NodeID)
	case OpIsolate:
		return x.HideOthers(op.NodeID)
	case OpCollapseAll:
		x.CollapseAll()
		return x.Loaded()
	case OpExpandAll:
		x.ExpandAll()
		return x.Loaded()
	case OpShowIsolated:
		changed := x.showIsolated != op.Show
		x.SetShowIsolated(op.Show)
		return changed
	case OpDepth:
		changed := x.maxDepth != op.Depth
		x.SetMaxDepth(op.Depth)
		return changed
	default:
		return false
	}
}

func (x *Explorer) run(kind OpKind, id string, fn func(*visibility.Engine) bool, kv ...any) bool {
	if x.engine == nil {
		x.Logger.Debug("no graph loaded", "op", kind)
		return false
	}

	start := time.Now()
	changed := fn(x.engine)
	visible := len(x.engine.VisibleNodeIDs())
	x.Hooks.OnOperation(x.id, string(kind), id, changed, visible, time.Since(start))

	args := append([]any{"node", id, "changed", changed, "visible", visible}, kv...)
	x.Logger.Debug(string(kind), args...)
	return changed
}

// ResolveOverlaps moves colliding node boxes apart using the configured
// footprint and margin. Renderers call it after free-form drags.
func (x *Explorer) ResolveOverlaps(positions []overlap.Position) []overlap.Position {
	return overlap.Resolve(positions, x.Config.Footprint(), x.Config.Overlap.Margin)
}
