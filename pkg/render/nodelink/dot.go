package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/teamtree/pkg/errors"
	"github.com/matzehuels/teamtree/pkg/render"
	"github.com/matzehuels/teamtree/pkg/render/styles"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds package and metrics to node labels.
	// When false, only the member name is shown.
	Detailed bool

	// Depth limits how many levels are drawn. Empty slots above the limit
	// are drawn as dashed placeholders. Zero draws the whole tree without
	// placeholders.
	Depth int
}

// ToDOT converts a team tree to Graphviz DOT format. Nodes are keyed by slot
// path and children keep their left/right order.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(root *tree.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	var visit func(n *tree.Node, slot string, level int)
	visit = func(n *tree.Node, slot string, level int) {
		if n == nil {
			if opts.Depth > 0 {
				fmt.Fprintf(&buf, "  %q [label=\"Empty\", style=\"rounded,dashed\", fontcolor=grey, color=grey];\n", nodeID(slot))
			}
			return
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(slot), strings.Join(fmtAttrs(n, opts.Detailed), ", "))
		if opts.Depth > 0 && level+1 >= opts.Depth {
			return
		}
		for _, pos := range []tree.Position{tree.PositionLeft, tree.PositionRight} {
			child := n.Child(pos)
			if child == nil && opts.Depth == 0 {
				continue
			}
			cs := slot + string(pos)
			attr := ""
			if child == nil {
				attr = " [style=dashed, color=grey]"
			}
			edges = append(edges, fmt.Sprintf("  %q -> %q%s;\n", nodeID(slot), nodeID(cs), attr))
			visit(child, cs, level+1)
		}
	}
	visit(root, "", 0)

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(slot string) string {
	if slot == "" {
		return "root"
	}
	return slot
}

func fmtLabel(n *tree.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}

	parts := []string{n.Name}
	if n.Package != "" {
		parts = append(parts, n.Package)
	}
	parts = append(parts,
		"earnings: "+styles.FormatAmount(n.Metrics.Earnings),
		fmt.Sprintf("left: %d  right: %d", n.Metrics.LeftCount, n.Metrics.RightCount),
		fmt.Sprintf("team: %d", n.Metrics.TeamSize),
	)
	for _, k := range slices.Sorted(maps.Keys(n.Extra)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, n.Extra[k]))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *tree.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	if n.Leader {
		attrs = append(attrs, "fillcolor=\"#fff4cc\"", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
