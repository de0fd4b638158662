package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	apperrors "github.com/matzehuels/callscope/pkg/errors"
	"github.com/matzehuels/callscope/pkg/explorer"
	"github.com/matzehuels/callscope/pkg/observability"
	"github.com/matzehuels/callscope/pkg/visibility"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the source location and chain lengths to node labels.
	// When false, only the display label is shown.
	Detailed bool
}

// Format is an output format of [Render].
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
)

// FormatOf picks the output format from a file extension (.dot, .gv or .svg).
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dot", ".gv":
		return FormatDOT, nil
	case ".svg":
		return FormatSVG, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeUnsupported, "unsupported output format %q (want .dot or .svg)", ext)
	}
}

// ToDOT converts a view to Graphviz DOT format.
//
// Each package cluster becomes a "cluster_<index>" subgraph in cluster order,
// and calls flow left to right. Collapse state shows on the node: a thick
// border for collapsed outgoing and a grey fill for collapsed incoming.
func ToDOT(v *explorer.View, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")

	nodes := make(map[string]explorer.ViewNode, len(v.Nodes))
	for _, n := range v.Nodes {
		nodes[n.ID] = n
	}

	for i, c := range v.Clusters {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", c.Name)
		buf.WriteString("    style=\"rounded,dashed\";\n")
		for _, id := range c.NodeIDs {
			n, ok := nodes[id]
			if !ok {
				continue
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed), n.ID == v.Focus), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range v.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n explorer.ViewNode, detailed bool) string {
	if !detailed {
		return n.Label
	}

	parts := []string{n.Label}
	if n.SourceFile != "" {
		loc := n.SourceFile
		if n.SourceLine > 0 {
			loc += ":" + strconv.Itoa(n.SourceLine)
		}
		parts = append(parts, loc)
	}
	parts = append(parts, fmt.Sprintf("in: %d  out: %d", n.LongestIncomingChain, n.LongestOutgoingChain))
	return strings.Join(parts, "\n")
}

func fmtAttrs(n explorer.ViewNode, label string, focus bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Style {
	case visibility.StyleCollapsedOutgoing:
		attrs = append(attrs, "penwidth=3")
	case visibility.StyleCollapsedIncoming:
		attrs = append(attrs, "fillcolor=lightgrey")
	case visibility.StyleCollapsedBoth:
		attrs = append(attrs, "penwidth=3", "fillcolor=lightgrey")
	}
	if focus {
		attrs = append(attrs, "color=blue")
	}
	return attrs
}

// Render converts a view to the given format and reports the render to the
// registered observability hooks.
func Render(ctx context.Context, v *explorer.View, format Format, opts Options) ([]byte, error) {
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, string(format), len(v.Nodes))
	start := time.Now()

	var (
		data []byte
		err  error
	)
	dot := ToDOT(v, opts)
	switch format {
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG:
		data, err = RenderSVG(ctx, dot)
	default:
		err = apperrors.New(apperrors.ErrCodeUnsupported, "unsupported output format %q", format)
	}

	hooks.OnRenderComplete(ctx, string(format), time.Since(start), err)
	return data, err
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing starts at the
// origin and carries explicit pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}
