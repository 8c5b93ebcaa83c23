// Package nodelink renders a styled query graph as a Graphviz node-link
// diagram.
//
// Convert a [render.Graph] to DOT, then render it in-process:
//
//	dot := nodelink.ToDOT(b.Graph(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Relations and relation types are drawn as boxes, everything else as
// ellipses, filled with the node's style color. With Options.Detailed the
// nodes show their hover labels (type and iid) and edges list the answers
// and structure coordinates that produced them.
//
// Rendering uses [github.com/goccy/go-graphviz], a WebAssembly build of
// Graphviz, so no system binaries are required.
package nodelink
