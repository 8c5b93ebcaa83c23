package logical

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/matzehuels/typeviz/pkg/concept"
	"github.com/matzehuels/typeviz/pkg/query"
)

var (
	// ErrDanglingEdge is returned by [Graph.Validate] when an edge endpoint
	// or parameter is missing from the vertex table.
	ErrDanglingEdge = errors.New("edge references unknown vertex")

	// ErrVertexKeyMismatch is returned by [Graph.Validate] when a vertex is
	// stored under an id other than its own [concept.Vertex.Key].
	ErrVertexKeyMismatch = errors.New("vertex stored under foreign id")
)

// VertexID is the canonical id of a vertex, as returned by
// [concept.Vertex.Key].
type VertexID = string

// Edge is a concrete edge produced for one answer.
//
// Param is non-nil only for links edges, where it holds the role type or a
// placeholder for an unbound role variable. Coordinates name the structure
// edge the edge was instantiated from.
type Edge struct {
	Kind        query.EdgeKind
	Param       concept.Vertex
	From        VertexID
	To          VertexID
	Coordinates query.Coordinates
}

// Graph is the deduplicated logical graph of a query response.
//
// Vertices maps every canonical id to its vertex. Answers holds, for each
// answer row in input order, the edges instantiated for that row. The
// zero value is an empty graph.
type Graph struct {
	Vertices map[VertexID]concept.Vertex
	Answers  [][]Edge
}

// New returns an empty graph with an initialized vertex table.
func New() *Graph {
	return &Graph{Vertices: make(map[VertexID]concept.Vertex)}
}

// put registers v under its canonical id and returns the id. Registering a
// vertex twice is a no-op.
func (g *Graph) put(v concept.Vertex) VertexID {
	id := v.Key()
	if _, ok := g.Vertices[id]; !ok {
		g.Vertices[id] = v
	}
	return id
}

// Vertex returns the vertex stored under id.
func (g *Graph) Vertex(id VertexID) (concept.Vertex, bool) {
	v, ok := g.Vertices[id]
	return v, ok
}

// VertexIDs returns all vertex ids in sorted order.
func (g *Graph) VertexIDs() []VertexID {
	ids := make([]VertexID, 0, len(g.Vertices))
	for id := range g.Vertices {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// EdgeCount returns the number of edges across all answers.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, a := range g.Answers {
		n += len(a)
	}
	return n
}

// PlaceholderCount returns the number of unavailable placeholder vertices.
func (g *Graph) PlaceholderCount() int {
	n := 0
	for _, v := range g.Vertices {
		if v.Kind() == concept.KindUnavailable {
			n++
		}
	}
	return n
}

// Validate checks that every vertex is stored under its own key and that
// every edge endpoint and parameter resolves in the vertex table.
func (g *Graph) Validate() error {
	for id, v := range g.Vertices {
		if v.Key() != id {
			return ErrVertexKeyMismatch
		}
	}
	for _, answer := range g.Answers {
		for _, e := range answer {
			if _, ok := g.Vertices[e.From]; !ok {
				return ErrDanglingEdge
			}
			if _, ok := g.Vertices[e.To]; !ok {
				return ErrDanglingEdge
			}
			if e.Param != nil {
				if _, ok := g.Vertices[e.Param.Key()]; !ok {
					return ErrDanglingEdge
				}
			}
		}
	}
	return nil
}

// =============================================================================
// JSON
// =============================================================================

type vertexJSON struct {
	ID     VertexID       `json:"id"`
	Vertex concept.Vertex `json:"vertex"`
}

type edgeJSON struct {
	Kind        query.EdgeKind    `json:"kind"`
	Param       *VertexID         `json:"param,omitempty"`
	From        VertexID          `json:"from"`
	To          VertexID          `json:"to"`
	Coordinates query.Coordinates `json:"coordinates"`
}

// MarshalJSON writes vertices sorted by id so output is byte-stable.
// Edge parameters are written as vertex ids.
func (g *Graph) MarshalJSON() ([]byte, error) {
	vertices := make([]vertexJSON, 0, len(g.Vertices))
	for _, id := range g.VertexIDs() {
		vertices = append(vertices, vertexJSON{ID: id, Vertex: g.Vertices[id]})
	}
	answers := make([][]edgeJSON, len(g.Answers))
	for i, a := range g.Answers {
		answers[i] = make([]edgeJSON, len(a))
		for j, e := range a {
			out := edgeJSON{Kind: e.Kind, From: e.From, To: e.To, Coordinates: e.Coordinates}
			if e.Param != nil {
				key := e.Param.Key()
				out.Param = &key
			}
			answers[i][j] = out
		}
	}
	return json.Marshal(struct {
		Vertices []vertexJSON `json:"vertices"`
		Answers  [][]edgeJSON `json:"answers"`
	}{vertices, answers})
}
