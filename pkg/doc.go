// Package pkg provides the core libraries for callscope call graph exploration.
//
// # Overview
//
// Callscope takes a call graph (functions and the calls between them) and
// lets a user narrow it down: collapse callees or callers of a function,
// isolate one function's neighborhood, and see the rest grouped by package.
// The pkg directory is organized into three areas:
//
//  1. Engine - [graph], [visibility], [metrics], [cluster], [overlap]
//  2. Facade - [explorer] ties the engine together and produces views
//  3. Adapters - [io], [render/nodelink], [config], [observability]
//
// # Architecture
//
// The typical data flow through callscope:
//
//	graph.json / graph.yaml
//	         ↓
//	    [io] package (decode and shape checks)
//	         ↓
//	    [graph] package (validation, adjacency, packages)
//	         ↓
//	    [metrics] package (longest call chains)
//	         ↓
//	    [visibility] package (collapse, isolate, hidden sets)
//	         ↓
//	    [cluster] + [overlap] packages (package order, positions)
//	         ↓
//	    View JSON / DOT / SVG
//
// # Quick Start
//
//	doc, err := io.Import("graph.json")
//	if err != nil {
//	    return err
//	}
//	x := explorer.New()
//	if err := x.Load(doc.Graph()); err != nil {
//	    return err
//	}
//	x.CollapseAll()
//	x.Expand("main.main", visibility.Outgoing)
//	svg, err := nodelink.Render(ctx, x.View(), nodelink.FormatSVG, nodelink.Options{})
//
// # Main Packages
//
//   - [graph]: Immutable call graph with validation and package derivation
//   - [visibility]: Collapse state and the hidden node and edge sets
//   - [metrics]: Longest incoming and outgoing call chains
//   - [cluster]: Package ordering and intra-package depth placement
//   - [overlap]: Pushes colliding node boxes apart
//   - [explorer]: One loaded graph plus its engine, operations and views
//   - [io]: JSON and YAML graph files, JSON output, file watching
//   - [render/nodelink]: Graphviz DOT and SVG output of a view
//   - [config]: TOML settings for spacing, footprint and display
//   - [errors]: Structured error codes
//   - [observability]: Hooks for load, operation and render events
//
// [graph]: github.com/matzehuels/callscope/pkg/graph
// [visibility]: github.com/matzehuels/callscope/pkg/visibility
// [metrics]: github.com/matzehuels/callscope/pkg/metrics
// [cluster]: github.com/matzehuels/callscope/pkg/cluster
// [overlap]: github.com/matzehuels/callscope/pkg/overlap
// [explorer]: github.com/matzehuels/callscope/pkg/explorer
// [io]: github.com/matzehuels/callscope/pkg/io
// [render/nodelink]: github.com/matzehuels/callscope/pkg/render/nodelink
// [config]: github.com/matzehuels/callscope/pkg/config
// [errors]: github.com/matzehuels/callscope/pkg/errors
// [observability]: github.com/matzehuels/callscope/pkg/observability
package pkg
