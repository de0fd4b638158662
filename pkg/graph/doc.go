// Package graph provides the immutable call graph model explored by callscope.
//
// # Overview
//
// A call graph has functions and methods as nodes and calls as edges. It is
// produced elsewhere (a source analyzer or a DOT converter) and handed to
// [Load] as plain node and edge records. Load validates the records and
// returns a [Graph] that never changes afterwards, apart from the chain
// metrics written once by the metrics package.
//
// # Basic Usage
//
//	g, err := graph.Load(
//	    []graph.Node{
//	        {ID: "main.main", SourceFile: "cmd/app/main.go"},
//	        {ID: "utils.ReadFile", SourceFile: "utils/utils.go"},
//	    },
//	    []graph.Edge{{From: "main.main", To: "utils.ReadFile"}},
//	)
//
// Query the structure with [Graph.OutEdges], [Graph.InEdges],
// [Graph.Children], [Graph.Parents] and [Graph.EntryNodes]. Use
// [Graph.VisibleNodes] and [Graph.VisibleEdges] to filter the graph through
// the hidden sets maintained by the visibility package.
//
// # Packages
//
// Each node's Package is the folder its source file lives in (see
// [PackageOf]). Nodes without a source file fall into [UnknownPackage].
// Packages drive the left-to-right clustering in the cluster package.
//
// # Validation
//
// Load refuses duplicate node IDs, duplicate edge IDs, empty or unprintable
// node IDs, and edges referencing unknown nodes. Errors carry the
// INVALID_GRAPH code from the errors package and wrap the sentinel errors
// defined here. Cycles, self-calls and parallel edges are valid.
//
// # Concurrency
//
// A Graph is safe for concurrent reads once metrics have been annotated.
package graph
