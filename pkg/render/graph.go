package render

import (
	"encoding/json"
	"errors"

	"github.com/matzehuels/typeviz/pkg/concept"
	"github.com/matzehuels/typeviz/pkg/convert"
	"github.com/matzehuels/typeviz/pkg/query"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateEdgeKey is returned by [Graph.AddEdge] when an edge with the
	// same key already exists.
	ErrDuplicateEdgeKey = errors.New("duplicate edge key")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Shape is the marker a node is drawn with.
type Shape string

const (
	ShapeCircle Shape = "circle"
	ShapeSquare Shape = "square"
)

// Node is a drawable vertex. ID is the canonical vertex id from the logical
// graph, so nodes of different answers that denote the same concept merge.
type Node struct {
	ID         string       // Canonical vertex id
	Kind       concept.Kind // Vertex kind the node was built from
	Label      string       // Label shown by default
	HoverLabel string       // Label shown on hover
	Color      string       // Fill color as #rrggbb
	Shape      Shape
	Size       int
}

// Edge is a drawable directed edge. Its Key is "<from>:<to>:<label>", so
// parallel edges with different labels between two nodes are kept apart.
type Edge struct {
	Key   string
	From  string
	To    string
	Kind  query.EdgeKind
	Label string
	Color string
	Size  int

	// Highlighted is set by [Builder.Highlight] and friends.
	Highlighted bool

	// Provenance lists every (answer, structure edge) pair that produced
	// this edge, in replay order.
	Provenance []convert.Provenance
}

// EdgeKey builds the key of the edge from -> to with the given label.
func EdgeKey(from, to, label string) string {
	return from + ":" + to + ":" + label
}

// Graph is an insertion-ordered directed multigraph of styled nodes and
// edges. Nodes are addressed by ID and edges by key.
//
// The zero value is not usable; use [NewGraph]. Graph is not safe for
// concurrent use.
type Graph struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]*Edge
	edgeOrder []string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	g := &Graph{}
	g.Clear()
	return g
}

// Clear removes every node and edge.
func (g *Graph) Clear() {
	g.nodes = make(map[string]*Node)
	g.nodeOrder = nil
	g.edges = make(map[string]*Edge)
	g.edgeOrder = nil
}

// AddNode adds n. It returns ErrInvalidNodeID for an empty ID and
// ErrDuplicateNodeID when the ID is taken.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, ok := g.nodes[n.ID]; ok {
		return ErrDuplicateNodeID
	}
	g.nodes[n.ID] = &n
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return nil
}

// AddEdge adds e between two existing nodes. An empty key is filled in with
// [EdgeKey]. It returns ErrUnknownSourceNode or ErrUnknownTargetNode when an
// endpoint is missing and ErrDuplicateEdgeKey when the key is taken.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Key == "" {
		e.Key = EdgeKey(e.From, e.To, e.Label)
	}
	if _, ok := g.edges[e.Key]; ok {
		return ErrDuplicateEdgeKey
	}
	g.edges[e.Key] = &e
	g.edgeOrder = append(g.edgeOrder, e.Key)
	return nil
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasEdge reports whether an edge with the given key exists.
func (g *Graph) HasEdge(key string) bool {
	_, ok := g.edges[key]
	return ok
}

// Edge returns the edge with the given key.
func (g *Graph) Edge(key string) (*Edge, bool) {
	e, ok := g.edges[key]
	return e, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		out[i] = g.nodes[id]
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, len(g.edgeOrder))
	for i, k := range g.edgeOrder {
		out[i] = g.edges[k]
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

type jsonNode struct {
	Key        string         `json:"key"`
	Attributes nodeAttributes `json:"attributes"`
}

type nodeAttributes struct {
	Kind       concept.Kind `json:"kind"`
	Label      string       `json:"label"`
	Color      string       `json:"color"`
	Size       int          `json:"size"`
	Type       Shape        `json:"type"`
	HoverLabel string       `json:"hoverLabel"`
}

type jsonEdge struct {
	Key        string         `json:"key"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Attributes edgeAttributes `json:"attributes"`
}

type edgeAttributes struct {
	Kind        query.EdgeKind       `json:"kind"`
	Label       string               `json:"label"`
	Color       string               `json:"color"`
	Size        int                  `json:"size"`
	Type        string               `json:"type"`
	Highlighted bool                 `json:"highlighted,omitempty"`
	Provenance  []convert.Provenance `json:"provenance"`
}

// MarshalJSON encodes the graph in the node/edge list layout used by
// graphology's export format.
func (g *Graph) MarshalJSON() ([]byte, error) {
	out := jsonGraph{
		Nodes: make([]jsonNode, 0, len(g.nodeOrder)),
		Edges: make([]jsonEdge, 0, len(g.edgeOrder)),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, jsonNode{
			Key: n.ID,
			Attributes: nodeAttributes{
				Kind:       n.Kind,
				Label:      n.Label,
				Color:      n.Color,
				Size:       n.Size,
				Type:       n.Shape,
				HoverLabel: n.HoverLabel,
			},
		})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, jsonEdge{
			Key:    e.Key,
			Source: e.From,
			Target: e.To,
			Attributes: edgeAttributes{
				Kind:        e.Kind,
				Label:       e.Label,
				Color:       e.Color,
				Size:        e.Size,
				Type:        "arrow",
				Highlighted: e.Highlighted,
				Provenance:  e.Provenance,
			},
		})
	}
	return json.Marshal(out)
}
