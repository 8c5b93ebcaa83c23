package query

import (
	"encoding/json"
	"iter"
	"strconv"
	"strings"

	"github.com/matzehuels/typeviz/pkg/concept"
	"github.com/matzehuels/typeviz/pkg/errors"
)

// EdgeKind is the constraint kind of a structure edge.
type EdgeKind string

const (
	EdgeIsa      EdgeKind = "isa"
	EdgeHas      EdgeKind = "has"
	EdgeLinks    EdgeKind = "links"
	EdgeSub      EdgeKind = "sub"
	EdgeOwns     EdgeKind = "owns"
	EdgeRelates  EdgeKind = "relates"
	EdgePlays    EdgeKind = "plays"
	EdgeIsaExact EdgeKind = "isaExact"
	EdgeSubExact EdgeKind = "subExact"
)

// EdgeKinds lists every known edge kind in a stable order.
var EdgeKinds = []EdgeKind{
	EdgeIsa, EdgeHas, EdgeLinks, EdgeSub, EdgeOwns,
	EdgeRelates, EdgePlays, EdgeIsaExact, EdgeSubExact,
}

// Valid reports whether k is a known edge kind.
func (k EdgeKind) Valid() bool {
	switch k {
	case EdgeIsa, EdgeHas, EdgeLinks, EdgeSub, EdgeOwns, EdgeRelates, EdgePlays, EdgeIsaExact, EdgeSubExact:
		return true
	}
	return false
}

// HasParam reports whether edges of kind k carry a parameter vertex.
// Only links edges do: the parameter is the role played.
func (k EdgeKind) HasParam() bool {
	return k == EdgeLinks
}

// normalizeEdgeKind maps the TypeQL spellings of exact constraints onto
// their wire names.
func normalizeEdgeKind(k EdgeKind) EdgeKind {
	switch k {
	case "isa!":
		return EdgeIsaExact
	case "sub!":
		return EdgeSubExact
	}
	return k
}

// VertexKind is the kind of a structure vertex.
type VertexKind string

const (
	VertexVariable     VertexKind = "variable"
	VertexLabel        VertexKind = "label"
	VertexValue        VertexKind = "value"
	VertexUnavailable  VertexKind = "unavailableVariable"
	VertexExpression   VertexKind = "expression"
	VertexFunctionCall VertexKind = "functionCall"
)

// =============================================================================
// Structure
// =============================================================================

// Structure is the query-derived template shared by every answer row.
// Branch 0 holds the unconditional constraints; each further branch is one
// disjunctive alternative.
type Structure struct {
	Branches []Branch `json:"branches"`
}

// Branch is an ordered list of structure edges.
type Branch struct {
	Edges []StructureEdge `json:"edges"`
}

// Coordinates identify one structure edge: its branch and its position
// within that branch.
type Coordinates struct {
	Branch     int `json:"branch"`
	Constraint int `json:"constraint"`
}

func (c Coordinates) String() string {
	return "[" + strconv.Itoa(c.Branch) + "," + strconv.Itoa(c.Constraint) + "]"
}

// ParseCoordinates parses "branch,constraint", with or without the
// brackets String adds.
func ParseCoordinates(s string) (Coordinates, error) {
	b, c, ok := strings.Cut(strings.Trim(strings.TrimSpace(s), "[]"), ",")
	if !ok {
		return Coordinates{}, errors.New(errors.ErrCodeInvalidInput, "coordinates %q: want branch,constraint", s)
	}
	branch, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil || branch < 0 {
		return Coordinates{}, errors.New(errors.ErrCodeInvalidInput, "coordinates %q: bad branch", s)
	}
	constraint, err := strconv.Atoi(strings.TrimSpace(c))
	if err != nil || constraint < 0 {
		return Coordinates{}, errors.New(errors.ErrCodeInvalidInput, "coordinates %q: bad constraint", s)
	}
	return Coordinates{Branch: branch, Constraint: constraint}, nil
}

// Span locates a constraint in the query text.
type Span struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

// StructureEdge is one constraint of a branch. Param is set only for
// kinds where [EdgeKind.HasParam] is true.
type StructureEdge struct {
	Kind  EdgeKind
	From  StructureVertex
	To    StructureVertex
	Param *StructureVertex
	Span  *Span
}

// StructureVertex is one end of a structure edge.
//
// Variable is set for variable and unavailableVariable vertices. LabelKind
// and Label are set for label literals. Value is set for value literals.
// Repr holds the source text of expressions and function calls, which the
// materializer does not support.
type StructureVertex struct {
	Kind      VertexKind
	Variable  string
	LabelKind concept.Kind
	Label     string
	Value     concept.Value
	Repr      string
}

// Var returns a variable structure vertex.
func Var(name string) StructureVertex {
	return StructureVertex{Kind: VertexVariable, Variable: name}
}

// Label returns a label literal structure vertex.
func Label(kind concept.Kind, label string) StructureVertex {
	return StructureVertex{Kind: VertexLabel, LabelKind: kind, Label: label}
}

// Len returns the number of branches.
func (s *Structure) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Branches)
}

// Edge returns the structure edge at c.
func (s *Structure) Edge(c Coordinates) (StructureEdge, bool) {
	if c.Branch < 0 || c.Branch >= s.Len() {
		return StructureEdge{}, false
	}
	edges := s.Branches[c.Branch].Edges
	if c.Constraint < 0 || c.Constraint >= len(edges) {
		return StructureEdge{}, false
	}
	return edges[c.Constraint], true
}

// All iterates every structure edge in declared order, branch by branch.
func (s *Structure) All() iter.Seq2[Coordinates, StructureEdge] {
	return func(yield func(Coordinates, StructureEdge) bool) {
		for b := 0; b < s.Len(); b++ {
			for j, e := range s.Branches[b].Edges {
				if !yield(Coordinates{Branch: b, Constraint: j}, e) {
					return
				}
			}
		}
	}
}

// =============================================================================
// JSON
// =============================================================================

type edgeJSON struct {
	Type  *edgeTypeJSON   `json:"type,omitempty"`
	Kind  EdgeKind        `json:"kind,omitempty"`
	Param json.RawMessage `json:"param,omitempty"`
	From  StructureVertex `json:"from"`
	To    StructureVertex `json:"to"`
	Span  *Span           `json:"span,omitempty"`
}

type edgeTypeJSON struct {
	Kind  EdgeKind        `json:"kind"`
	Param json.RawMessage `json:"param"`
}

// UnmarshalJSON accepts both {"type":{"kind","param"},...} and the flat
// {"kind","param",...} layout.
func (e *StructureEdge) UnmarshalJSON(data []byte) error {
	var raw edgeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, param := raw.Kind, raw.Param
	if raw.Type != nil {
		kind, param = raw.Type.Kind, raw.Type.Param
	}
	*e = StructureEdge{
		Kind: normalizeEdgeKind(kind),
		From: raw.From,
		To:   raw.To,
		Span: raw.Span,
	}
	p, err := decodeParam(param)
	if err != nil {
		return err
	}
	e.Param = p
	return nil
}

// MarshalJSON writes the nested "type" layout.
func (e StructureEdge) MarshalJSON() ([]byte, error) {
	var param json.RawMessage = []byte("null")
	if e.Param != nil {
		b, err := json.Marshal(e.Param)
		if err != nil {
			return nil, err
		}
		param = b
	}
	return json.Marshal(edgeJSON{
		Type: &edgeTypeJSON{Kind: e.Kind, Param: param},
		From: e.From,
		To:   e.To,
		Span: e.Span,
	})
}

// decodeParam reads an edge parameter. Older servers sent a bare role
// label string instead of a structure vertex.
func decodeParam(raw json.RawMessage) (*StructureVertex, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var label string
		if err := json.Unmarshal(raw, &label); err != nil {
			return nil, err
		}
		v := Label(concept.KindRoleType, label)
		return &v, nil
	}
	var v StructureVertex
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

type vertexJSON struct {
	Kind  VertexKind      `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

type vertexValueJSON struct {
	Variable        string            `json:"variable,omitempty"`
	Kind            concept.Kind      `json:"kind,omitempty"`
	Label           string            `json:"label,omitempty"`
	Value           json.RawMessage   `json:"value,omitempty"`
	ValueType       concept.ValueType `json:"valueType,omitempty"`
	LegacyValueType concept.ValueType `json:"value_type,omitempty"`
	Repr            string            `json:"repr,omitempty"`
}

// UnmarshalJSON decodes {"kind":..., "value":{...}}. Kinds outside the
// known set decode without error; the materializer rejects them.
func (v *StructureVertex) UnmarshalJSON(data []byte) error {
	var raw vertexJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = StructureVertex{Kind: raw.Kind}
	var inner vertexValueJSON
	if len(raw.Value) > 0 && string(raw.Value) != "null" {
		if err := json.Unmarshal(raw.Value, &inner); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s structure vertex", raw.Kind)
		}
	}
	switch raw.Kind {
	case VertexVariable, VertexUnavailable:
		v.Variable = inner.Variable
	case VertexLabel:
		v.LabelKind = inner.Kind
		v.Label = inner.Label
	case VertexValue:
		c, err := concept.UnmarshalVertex(withValueKind(raw.Value))
		if err != nil {
			return err
		}
		val, ok := c.(concept.Value)
		if !ok {
			return errors.New(errors.ErrCodeInvalidFormat, "value structure vertex holds %s", c.Kind())
		}
		v.Value = val
	case VertexExpression, VertexFunctionCall:
		v.Repr = inner.Repr
	}
	return nil
}

// withValueKind tags a bare {"value","valueType"} object as a value concept.
func withValueKind(raw json.RawMessage) []byte {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return raw
	}
	m["kind"] = json.RawMessage(`"value"`)
	b, err := json.Marshal(m)
	if err != nil {
		return raw
	}
	return b
}

// MarshalJSON writes the {"kind", "value"} layout.
func (v StructureVertex) MarshalJSON() ([]byte, error) {
	var value any
	switch v.Kind {
	case VertexVariable, VertexUnavailable:
		value = vertexValueJSON{Variable: v.Variable}
	case VertexLabel:
		value = vertexValueJSON{Kind: v.LabelKind, Label: v.Label}
	case VertexValue:
		value = v.Value
	case VertexExpression, VertexFunctionCall:
		value = vertexValueJSON{Repr: v.Repr}
	}
	return json.Marshal(struct {
		Kind  VertexKind `json:"kind"`
		Value any        `json:"value"`
	}{v.Kind, value})
}
