package convert

import (
	"slices"

	"github.com/matzehuels/typeviz/pkg/query"
)

// StructureParameters configure which structure edges are drawn.
type StructureParameters struct {
	// IgnoreEdgesInvolvingLabels lists edge kinds that are hidden when
	// either end of the structure edge is a label literal.
	IgnoreEdgesInvolvingLabels []query.EdgeKind `toml:"ignore_edges_involving_labels" json:"ignoreEdgesInvolvingLabels"`
}

// DefaultStructureParameters hides schema scaffolding: isa, sub, relates and
// plays edges that point at a fixed type label.
func DefaultStructureParameters() StructureParameters {
	return StructureParameters{
		IgnoreEdgesInvolvingLabels: []query.EdgeKind{
			query.EdgeIsa,
			query.EdgeSub,
			query.EdgeRelates,
			query.EdgePlays,
		},
	}
}

// DrawSet is the set of structure coordinates whose edges are drawn.
type DrawSet map[query.Coordinates]struct{}

// Contains reports whether edges at c are drawn.
func (d DrawSet) Contains(c query.Coordinates) bool {
	_, ok := d[c]
	return ok
}

// Sorted returns the drawn coordinates in structure order.
func (d DrawSet) Sorted() []query.Coordinates {
	out := make([]query.Coordinates, 0, len(d))
	for c := range d {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b query.Coordinates) int {
		if a.Branch != b.Branch {
			return a.Branch - b.Branch
		}
		return a.Constraint - b.Constraint
	})
	return out
}

// EdgesToDraw computes the draw set from the structure alone. A structure
// edge is drawn unless it touches a label literal and its kind is listed in
// params.IgnoreEdgesInvolvingLabels.
func EdgesToDraw(s *query.Structure, params StructureParameters) DrawSet {
	draw := make(DrawSet)
	for c, e := range s.All() {
		if mustDraw(e, params) {
			draw[c] = struct{}{}
		}
	}
	return draw
}

// DrawAll returns a draw set containing every structure edge.
func DrawAll(s *query.Structure) DrawSet {
	return EdgesToDraw(s, StructureParameters{})
}

func mustDraw(e query.StructureEdge, params StructureParameters) bool {
	labelled := e.From.Kind == query.VertexLabel || e.To.Kind == query.VertexLabel
	return !labelled || !slices.Contains(params.IgnoreEdgesInvolvingLabels, e.Kind)
}
