// Package io reads call graphs from JSON or YAML files and writes explorer
// output as JSON.
//
// # Input Format
//
// A graph document has two top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "main.main", "label": "main", "sourceFile": "cmd/app/main.go", "sourceLine": 12},
//	    {"id": "utils.ReadFile", "sourceFile": "internal/utils/utils.go"}
//	  ],
//	  "edges": [
//	    {"from": "main.main", "to": "utils.ReadFile"}
//	  ]
//	}
//
// The YAML form uses the same keys:
//
//	nodes:
//	  - id: main.main
//	    sourceFile: cmd/app/main.go
//	edges:
//	  - from: main.main
//	    to: utils.ReadFile
//
// Only "id" is required for nodes and "from"/"to" for edges. Edges may carry
// an "id"; edges without one are numbered by position when the graph is
// loaded.
//
// # Import
//
// Use [Import] to read a file, choosing the decoder from its extension, or
// [ReadJSON] and [ReadYAML] to read from any io.Reader:
//
//	doc, err := io.Import("calls.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	nodes, edges := doc.Graph()
//
// Decoding checks the document shape only. Graph validation (unique ids,
// edges between existing nodes) is done by graph.Load.
//
// # Export
//
// [WriteJSON] and [ExportJSON] encode any value, typically an explorer view,
// as indented JSON.
//
// # Watching
//
// [Watch] re-imports a file whenever it changes on disk and hands the result
// to a callback, so interactive front ends can hot-reload a graph that is
// being regenerated.
package io
