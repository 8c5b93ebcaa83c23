package logical

import (
	"github.com/matzehuels/typeviz/pkg/concept"
	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/query"
)

// FromResponse materializes the rows of a concept-row response against its
// query structure. Responses of other answer types are rejected.
func FromResponse(resp *query.Response) (*Graph, error) {
	if resp == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil response")
	}
	if resp.AnswerType != query.AnswerConceptRows {
		return nil, errors.New(errors.ErrCodeUnsupported, "cannot build a graph from %q answers", resp.AnswerType)
	}
	return Build(resp.Answers, resp.Structure)
}

// Build materializes rows into a logical graph.
//
// For each row, branch 0 and every branch in the row's provenance are
// instantiated in ascending order, edge by edge in declared order. Edge
// ends resolve to the row's bindings, to concepts built from label and value
// literals, or to an [concept.Unavailable] placeholder scoped to the row.
// Vertices are deduplicated by [concept.Vertex.Key] across all rows.
//
// Build fails on template violations: a provenance branch the structure does
// not have, an unknown edge or vertex kind, or a links edge without a role.
// On failure no graph is returned.
func Build(rows []query.Row, structure *query.Structure) (*Graph, error) {
	g := New()
	g.Answers = make([][]Edge, len(rows))
	for i, row := range rows {
		edges, err := g.materialize(i, row, structure)
		if err != nil {
			return nil, err
		}
		g.Answers[i] = edges
	}
	return g, nil
}

func (g *Graph) materialize(answer int, row query.Row, structure *query.Structure) ([]Edge, error) {
	edges := []Edge{}
	if structure.Len() == 0 {
		return edges, nil
	}
	for _, b := range row.Branches() {
		if b < 0 || b >= structure.Len() {
			return nil, errors.New(errors.ErrCodeInvalidStructure,
				"answer %d: provenance names branch %d, structure has %d", answer, b, structure.Len())
		}
		for j, se := range structure.Branches[b].Edges {
			c := query.Coordinates{Branch: b, Constraint: j}
			e, err := g.instantiate(answer, row, c, se)
			if err != nil {
				return nil, errors.Wrap(errors.GetCode(err), err, "answer %d edge %s", answer, c)
			}
			edges = append(edges, e)
		}
	}
	return edges, nil
}

func (g *Graph) instantiate(answer int, row query.Row, c query.Coordinates, se query.StructureEdge) (Edge, error) {
	if !se.Kind.Valid() {
		return Edge{}, errors.New(errors.ErrCodeUnsupported, "unknown edge kind %q", se.Kind)
	}
	switch {
	case se.Kind.HasParam() && se.Param == nil:
		return Edge{}, errors.New(errors.ErrCodeInvalidStructure, "%s edge without parameter", se.Kind)
	case !se.Kind.HasParam() && se.Param != nil:
		return Edge{}, errors.New(errors.ErrCodeInvalidStructure, "%s edge with unexpected parameter", se.Kind)
	}

	from, err := resolve(answer, row, se.From)
	if err != nil {
		return Edge{}, err
	}
	to, err := resolve(answer, row, se.To)
	if err != nil {
		return Edge{}, err
	}
	var param concept.Vertex
	if se.Param != nil {
		if param, err = resolve(answer, row, *se.Param); err != nil {
			return Edge{}, err
		}
		g.put(param)
	}

	return Edge{
		Kind:        se.Kind,
		Param:       param,
		From:        g.put(from),
		To:          g.put(to),
		Coordinates: c,
	}, nil
}

// resolve turns a structure vertex into the vertex it denotes for one row.
func resolve(answer int, row query.Row, sv query.StructureVertex) (concept.Vertex, error) {
	switch sv.Kind {
	case query.VertexVariable:
		if c, ok := row.Data[sv.Variable]; ok && c != nil {
			return c, nil
		}
		return concept.Unavailable{Variable: sv.Variable, AnswerIndex: answer}, nil
	case query.VertexLabel:
		t, err := concept.NewType(sv.LabelKind, sv.Label)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "label %q", sv.Label)
		}
		return t, nil
	case query.VertexValue:
		return sv.Value, nil
	case query.VertexUnavailable:
		return concept.Unavailable{Variable: sv.Variable, AnswerIndex: answer}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported structure vertex kind %q", sv.Kind)
	}
}
