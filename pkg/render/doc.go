// Package render turns a logical graph into a styled graph ready to draw.
//
// A [Builder] is a [convert.Visitor]: pass it to [convert.Replay] and it
// collects one [Node] per distinct vertex and one [Edge] per distinct
// (source, target, label) triple into a [Graph]. Edges remember which answers
// produced them, which lets callers highlight a single answer or a single
// structure edge after the fact.
//
//	b := render.NewBuilder(render.DefaultStyle())
//	err := convert.Replay(g, convert.EdgesToDraw(s, convert.DefaultStructureParameters()), b)
//	b.Highlight(0)
//	data, err := json.Marshal(b.Graph())
//
// The [nodelink] subpackage renders a [Graph] with Graphviz.
//
// [nodelink]: github.com/matzehuels/typeviz/pkg/render/nodelink
package render
