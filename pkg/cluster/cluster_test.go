package cluster

import (
	"slices"
	"testing"

	"github.com/matzehuels/callscope/pkg/graph"
)

// node is a shorthand: id plus the source file that decides its package.
type node struct{ id, file string }

func build(t *testing.T, nodes []node, edges [][2]string) *graph.Graph {
	t.Helper()
	ns := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		ns[i] = graph.Node{ID: n.id, SourceFile: n.file}
	}
	es := make([]graph.Edge, len(edges))
	for i, e := range edges {
		es[i] = graph.Edge{From: e[0], To: e[1]}
	}
	g, err := graph.Load(ns, es)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return g
}

func allIDs(g *graph.Graph) []string {
	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	return ids
}

func clusterNames(p Plan) []string {
	names := make([]string, len(p.Clusters))
	for i, c := range p.Clusters {
		names[i] = c.Name
	}
	return names
}

func TestBuildPackageOrder(t *testing.T) {
	tests := []struct {
		name  string
		nodes []node
		edges [][2]string
		want  []string
	}{
		{
			name:  "CallerLeftOfCallee",
			nodes: []node{{"a", "p1/a.go"}, {"b", "p2/b.go"}},
			edges: [][2]string{{"a", "b"}},
			want:  []string{"p1", "p2"},
		},
		{
			name:  "CalleeAppearsFirst",
			nodes: []node{{"b", "p2/b.go"}, {"a", "p1/a.go"}},
			edges: [][2]string{{"a", "b"}},
			want:  []string{"p1", "p2"},
		},
		{
			name:  "Chain",
			nodes: []node{{"c", "p3/c.go"}, {"b", "p2/b.go"}, {"a", "p1/a.go"}},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			want:  []string{"p1", "p2", "p3"},
		},
		{
			name:  "CycleBrokenAtFirstVisited",
			nodes: []node{{"a", "p1/a.go"}, {"b", "p2/b.go"}},
			edges: [][2]string{{"a", "b"}, {"b", "a"}},
			want:  []string{"p1", "p2"},
		},
		{
			name:  "Independent",
			nodes: []node{{"a", "p1/a.go"}, {"b", "p2/b.go"}},
			want:  []string{"p2", "p1"},
		},
		{
			name:  "UnknownBucket",
			nodes: []node{{"a", "p1/a.go"}, {"b", ""}, {"c", "main.go"}},
			edges: [][2]string{{"a", "b"}},
			want:  []string{"p1", graph.UnknownPackage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.nodes, tt.edges)
			plan := Build(g, allIDs(g), g.Edges(), DefaultOptions())
			if got := clusterNames(plan); !slices.Equal(got, tt.want) {
				t.Errorf("cluster order = %v, want %v", got, tt.want)
			}
			for id, p := range plan.Placements {
				if p.PackageIndex < 0 || p.PackageIndex >= len(plan.Clusters) {
					t.Errorf("Placements[%s].PackageIndex = %d out of range", id, p.PackageIndex)
				}
			}
		})
	}
}

func TestBuildOrderUsesOriginalEdges(t *testing.T) {
	// p2 appears first; only the original edge a -> b says p1 calls p2.
	g := build(t, []node{{"b", "p2/b.go"}, {"a", "p1/a.go"}}, [][2]string{{"a", "b"}})
	plan := Build(g, allIDs(g), nil, DefaultOptions())

	if got := clusterNames(plan); !slices.Equal(got, []string{"p1", "p2"}) {
		t.Errorf("cluster order = %v, want [p1 p2]", got)
	}
	if got := plan.Clusters[0].DependsOn; !slices.Equal(got, []string{"p2"}) {
		t.Errorf("DependsOn = %v, want [p2]", got)
	}
}

func TestBuildDepth(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges [][2]string
		want  map[string]int
	}{
		{
			name:  "Chain",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "LongestPathWins",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "c"}, {"a", "b"}, {"b", "c"}},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "CycleFromRootTerminates",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "b"}},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "PureCycleStaysAtZero",
			nodes: []string{"a", "b"},
			edges: [][2]string{{"a", "b"}, {"b", "a"}},
			want:  map[string]int{"a": 0, "b": 0},
		},
		{
			name:  "SelfCallIgnored",
			nodes: []string{"a"},
			edges: [][2]string{{"a", "a"}},
			want:  map[string]int{"a": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := make([]node, len(tt.nodes))
			for i, id := range tt.nodes {
				nodes[i] = node{id, "pkg/f.go"}
			}
			g := build(t, nodes, tt.edges)
			plan := Build(g, allIDs(g), g.Edges(), DefaultOptions())
			for id, want := range tt.want {
				if got := plan.Placements[id].Depth; got != want {
					t.Errorf("Depth(%s) = %d, want %d", id, got, want)
				}
			}
		})
	}
}

func TestBuildDepthUsesVisibleEdgesOnly(t *testing.T) {
	g := build(t, []node{{"a", "p/a.go"}, {"b", "p/b.go"}}, [][2]string{{"a", "b"}})
	plan := Build(g, allIDs(g), nil, DefaultOptions())
	if got := plan.Placements["b"].Depth; got != 0 {
		t.Errorf("Depth(b) = %d, want 0 without visible edges", got)
	}
}

func TestBuildPositions(t *testing.T) {
	g := build(t, []node{
		{"main", "app/main.go"},
		{"init", "app/main.go"},
		{"run", "app/main.go"},
		{"read", "app/util/io.go"},
	}, [][2]string{{"main", "init"}, {"main", "run"}, {"run", "read"}})

	opts := Options{PackageSpacing: 400, IntraPackageSpacing: 100, RowSpacing: 50}
	plan := Build(g, allIDs(g), g.Edges(), opts)

	want := map[string]Placement{
		"main": {PackageIndex: 0, Depth: 0, X: 0, Y: 0},
		"init": {PackageIndex: 0, Depth: 1, X: 100, Y: 0},
		"run":  {PackageIndex: 0, Depth: 1, X: 100, Y: 50},
		"read": {PackageIndex: 1, Depth: 0, X: 400, Y: 0},
	}
	for id, w := range want {
		if got := plan.Placements[id]; got != w {
			t.Errorf("Placements[%s] = %+v, want %+v", id, got, w)
		}
	}
}

func TestBuildPriority(t *testing.T) {
	g := build(t, []node{{"a", "p/f.go"}, {"b", "p/f.go"}, {"c", "p/f.go"}}, nil)
	rank := map[string]int{"a": 1, "b": 5, "c": 1}

	opts := DefaultOptions()
	opts.Priority = func(n *graph.Node) int { return rank[n.ID] }
	plan := Build(g, allIDs(g), nil, opts)

	for id, slot := range map[string]int{"b": 0, "a": 1, "c": 2} {
		if got := plan.Placements[id].Y; got != float64(slot)*opts.RowSpacing {
			t.Errorf("Y(%s) = %v, want slot %d", id, got, slot)
		}
	}
	if got := plan.Clusters[0].NodeIDs; !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("NodeIDs = %v, want load order", got)
	}
}

func TestBuildSkipsHiddenAndUnknown(t *testing.T) {
	g := build(t, []node{{"a", "p1/a.go"}, {"b", "p2/b.go"}}, [][2]string{{"a", "b"}})
	plan := Build(g, []string{"a", "ghost"}, nil, DefaultOptions())

	if got := clusterNames(plan); !slices.Equal(got, []string{"p1"}) {
		t.Errorf("clusters = %v, want [p1]", got)
	}
	if len(plan.Placements) != 1 {
		t.Errorf("len(Placements) = %d, want 1", len(plan.Placements))
	}
	if len(plan.Clusters[0].DependsOn) != 0 {
		t.Errorf("DependsOn = %v, want none for packages outside the plan", plan.Clusters[0].DependsOn)
	}
}
