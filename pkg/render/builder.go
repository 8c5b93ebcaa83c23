package render

import (
	"slices"

	"github.com/matzehuels/typeviz/pkg/concept"
	"github.com/matzehuels/typeviz/pkg/convert"
	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/query"
)

// Builder is a [convert.Visitor] that draws a replayed logical graph into a
// [Graph]. Repeated vertices and edges are merged; a repeated edge records
// the extra provenance.
type Builder struct {
	graph *Graph
	style Style
}

var _ convert.Visitor = (*Builder)(nil)

// NewBuilder returns a builder drawing into a fresh graph with style.
func NewBuilder(style Style) *Builder {
	return &Builder{graph: NewGraph(), style: style}
}

// Graph returns the graph built so far.
func (b *Builder) Graph() *Graph { return b.graph }

// Reset discards everything drawn so far.
func (b *Builder) Reset() { b.graph.Clear() }

// Highlight marks the edges contributed by the answer at index and returns
// how many were marked. Other edges are reset to the plain edge color.
func (b *Builder) Highlight(answerIndex int) int {
	return b.highlight(func(p convert.Provenance) bool { return p.AnswerIndex == answerIndex })
}

// HighlightCoordinates marks the edges produced by the structure edge at c
// in any answer and returns how many were marked.
func (b *Builder) HighlightCoordinates(c query.Coordinates) int {
	return b.highlight(func(p convert.Provenance) bool { return p.Coordinates == c })
}

// ClearHighlight resets every edge to the plain edge color.
func (b *Builder) ClearHighlight() {
	b.highlight(func(convert.Provenance) bool { return false })
}

func (b *Builder) highlight(match func(convert.Provenance) bool) int {
	n := 0
	for _, e := range b.graph.Edges() {
		e.Highlighted = slices.ContainsFunc(e.Provenance, match)
		if e.Highlighted {
			e.Color = b.style.EdgeHighlightColor
			n++
		} else {
			e.Color = b.style.EdgeColor
		}
	}
	return n
}

func (b *Builder) putNode(v concept.Vertex) error {
	id := v.Key()
	if b.graph.HasNode(id) {
		return nil
	}
	return b.graph.AddNode(Node{
		ID:         id,
		Kind:       v.Kind(),
		Label:      DefaultLabel(v),
		HoverLabel: HoverLabel(v),
		Color:      b.style.Color(v.Kind()),
		Shape:      b.style.Shape(v.Kind()),
		Size:       b.style.VertexSize,
	})
}

func (b *Builder) putEdge(p convert.Provenance, kind query.EdgeKind, from, to concept.Vertex, label string) error {
	key := EdgeKey(from.Key(), to.Key(), label)
	if e, ok := b.graph.Edge(key); ok {
		if !slices.Contains(e.Provenance, p) {
			e.Provenance = append(e.Provenance, p)
		}
		return nil
	}
	err := b.graph.AddEdge(Edge{
		Key:        key,
		From:       from.Key(),
		To:         to.Key(),
		Kind:       kind,
		Label:      label,
		Color:      b.style.EdgeColor,
		Size:       b.style.EdgeSize,
		Provenance: []convert.Provenance{p},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "draw %s edge %s", kind, key)
	}
	return nil
}

func (b *Builder) PutEntity(_ convert.Provenance, v concept.Entity) error     { return b.putNode(v) }
func (b *Builder) PutRelation(_ convert.Provenance, v concept.Relation) error { return b.putNode(v) }
func (b *Builder) PutAttribute(_ convert.Provenance, v concept.Attribute) error {
	return b.putNode(v)
}
func (b *Builder) PutEntityType(_ convert.Provenance, v concept.EntityType) error {
	return b.putNode(v)
}
func (b *Builder) PutRelationType(_ convert.Provenance, v concept.RelationType) error {
	return b.putNode(v)
}
func (b *Builder) PutAttributeType(_ convert.Provenance, v concept.AttributeType) error {
	return b.putNode(v)
}
func (b *Builder) PutValue(_ convert.Provenance, v concept.Value) error { return b.putNode(v) }
func (b *Builder) PutUnavailable(_ convert.Provenance, v concept.Unavailable) error {
	return b.putNode(v)
}

// PutRoleType draws role types as small faded nodes; they are scaffolding
// for the relation they belong to.
func (b *Builder) PutRoleType(_ convert.Provenance, v concept.RoleType) error {
	if b.graph.HasNode(v.Key()) {
		return nil
	}
	return b.graph.AddNode(Node{
		ID:         v.Key(),
		Kind:       v.Kind(),
		Label:      v.Label,
		HoverLabel: v.Label,
		Color:      Fade(b.style.Color(v.Kind()), 0.5),
		Shape:      b.style.Shape(v.Kind()),
		Size:       max(1, b.style.VertexSize/2),
	})
}

func (b *Builder) PutIsa(p convert.Provenance, thing, typ concept.Vertex) error {
	return b.putEdge(p, query.EdgeIsa, thing, typ, string(query.EdgeIsa))
}

func (b *Builder) PutHas(p convert.Provenance, owner, attribute concept.Vertex) error {
	return b.putEdge(p, query.EdgeHas, owner, attribute, string(query.EdgeHas))
}

// PutLinks labels the edge with the role name. When the role itself is an
// unbound variable the label is derived from the structure coordinates, so
// two role players of one relation stay distinct.
func (b *Builder) PutLinks(p convert.Provenance, relation, player, role concept.Vertex) error {
	label := "links_" + p.Coordinates.String()
	if r, ok := role.(concept.RoleType); ok {
		label = r.Label
	}
	return b.putEdge(p, query.EdgeLinks, relation, player, label)
}

func (b *Builder) PutSub(p convert.Provenance, subtype, supertype concept.Vertex) error {
	return b.putEdge(p, query.EdgeSub, subtype, supertype, string(query.EdgeSub))
}

func (b *Builder) PutOwns(p convert.Provenance, owner, attributeType concept.Vertex) error {
	return b.putEdge(p, query.EdgeOwns, owner, attributeType, string(query.EdgeOwns))
}

func (b *Builder) PutRelates(p convert.Provenance, relation, role concept.Vertex) error {
	return b.putEdge(p, query.EdgeRelates, relation, role, string(query.EdgeRelates))
}

func (b *Builder) PutPlays(p convert.Provenance, player, role concept.Vertex) error {
	return b.putEdge(p, query.EdgePlays, player, role, string(query.EdgePlays))
}

func (b *Builder) PutIsaExact(p convert.Provenance, thing, typ concept.Vertex) error {
	return b.putEdge(p, query.EdgeIsaExact, thing, typ, string(query.EdgeIsaExact))
}

func (b *Builder) PutSubExact(p convert.Provenance, subtype, supertype concept.Vertex) error {
	return b.putEdge(p, query.EdgeSubExact, subtype, supertype, string(query.EdgeSubExact))
}
