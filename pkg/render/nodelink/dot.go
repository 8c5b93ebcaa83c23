package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/typeviz/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed uses hover labels (type and iid) instead of the short default
	// labels and lists provenance on edges.
	Detailed bool
}

// ToDOT converts a render graph to Graphviz DOT source. Node colors, shapes
// and edge colors come from the graph; highlighted edges are drawn bold.
func ToDOT(g *render.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fontsize=14, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [fontsize=11, fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(edgeAttrs(e, opts.Detailed), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *render.Node, detailed bool) []string {
	label := n.Label
	if detailed {
		label = n.HoverLabel
	}
	shape := "ellipse"
	if n.Shape == render.ShapeSquare {
		shape = "box"
	}
	return []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("shape=%s", shape),
		fmt.Sprintf("fillcolor=%q", n.Color),
		fmt.Sprintf("width=%s", inches(n.Size)),
	}
}

func edgeAttrs(e *render.Edge, detailed bool) []string {
	label := e.Label
	if detailed {
		answers := make([]string, 0, len(e.Provenance))
		for _, p := range e.Provenance {
			answers = append(answers, strconv.Itoa(p.AnswerIndex)+p.Coordinates.String())
		}
		label += "\n" + strings.Join(answers, " ")
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("color=%q", e.Color),
		fmt.Sprintf("penwidth=%d", max(1, e.Size/2)),
	}
	if e.Highlighted {
		attrs = append(attrs, "style=bold")
	}
	return attrs
}

// inches maps a node size in render units to a Graphviz width.
func inches(size int) string {
	return strconv.FormatFloat(float64(size)/10, 'f', 2, 64)
}

// Format is an output format Graphviz can produce for a DOT graph.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

// Render renders dot in the given format.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(ctx, dot)
	case FormatPNG:
		return RenderPNG(ctx, dot)
	default:
		return nil, fmt.Errorf("unsupported graphviz format %q", format)
	}
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales from a
// zero origin, whatever offset Graphviz chose.
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
