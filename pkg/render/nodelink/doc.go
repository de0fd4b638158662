// Package nodelink renders explorer views as node-link diagrams.
//
// # Overview
//
// This package turns an [explorer.View] into Graphviz DOT source, where each
// visible function is a box, each visible call an arrow and each package a
// cluster. The DOT source can be written out as is or rendered to SVG.
//
// # Usage
//
// Convert a view to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(x.View(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Or let [Render] pick the format and report to the observability hooks:
//
//	format, err := nodelink.FormatOf("graph.svg")
//	data, err := nodelink.Render(ctx, x.View(), format, nodelink.Options{Detailed: true})
//
// # Styling
//
// Collapse state follows the view's style tags: collapsed outgoing nodes get a
// thick border, collapsed incoming nodes a grey fill, and nodes collapsed both
// ways get both. The node focused by an isolate operation is outlined in blue.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. No external tools are needed.
package nodelink
