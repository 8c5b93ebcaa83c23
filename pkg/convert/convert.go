package convert

import (
	"github.com/matzehuels/typeviz/pkg/concept"
	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/logical"
	"github.com/matzehuels/typeviz/pkg/query"
)

// Provenance tells a visitor which answer and which structure edge caused a
// call.
type Provenance struct {
	AnswerIndex int               `json:"answer"`
	Coordinates query.Coordinates `json:"coordinates"`
}

// Visitor receives a logical graph one vertex and one edge at a time.
//
// Vertex methods may be called many times for the same vertex, once per
// edge that touches it; implementations must treat repeats as no-ops. Edge
// ends are [concept.Vertex] values because either end may be an
// [concept.Unavailable] placeholder.
type Visitor interface {
	PutEntity(p Provenance, v concept.Entity) error
	PutRelation(p Provenance, v concept.Relation) error
	PutAttribute(p Provenance, v concept.Attribute) error
	PutEntityType(p Provenance, v concept.EntityType) error
	PutRelationType(p Provenance, v concept.RelationType) error
	PutAttributeType(p Provenance, v concept.AttributeType) error
	PutRoleType(p Provenance, v concept.RoleType) error
	PutValue(p Provenance, v concept.Value) error
	PutUnavailable(p Provenance, v concept.Unavailable) error

	PutIsa(p Provenance, thing, typ concept.Vertex) error
	PutHas(p Provenance, owner, attribute concept.Vertex) error
	PutLinks(p Provenance, relation, player, role concept.Vertex) error
	PutSub(p Provenance, subtype, supertype concept.Vertex) error
	PutOwns(p Provenance, owner, attributeType concept.Vertex) error
	PutRelates(p Provenance, relation, role concept.Vertex) error
	PutPlays(p Provenance, player, role concept.Vertex) error
	PutIsaExact(p Provenance, thing, typ concept.Vertex) error
	PutSubExact(p Provenance, subtype, supertype concept.Vertex) error
}

// Replay walks g answer by answer and edge by edge. Each edge whose
// coordinates are in draw is delivered to v after its two end vertices.
// The first error from v stops the replay and is returned wrapped.
//
// An edge that names a vertex missing from the table, or an edge kind the
// visitor contract does not cover, is an INTERNAL_ERROR.
func Replay(g *logical.Graph, draw DrawSet, v Visitor) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil graph")
	}
	for i, answer := range g.Answers {
		for _, e := range answer {
			if !draw.Contains(e.Coordinates) {
				continue
			}
			p := Provenance{AnswerIndex: i, Coordinates: e.Coordinates}
			if err := replayEdge(g, p, e, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func replayEdge(g *logical.Graph, p Provenance, e logical.Edge, v Visitor) error {
	from, ok := g.Vertex(e.From)
	if !ok {
		return errors.New(errors.ErrCodeInternal, "answer %d edge %s: unknown vertex %q", p.AnswerIndex, p.Coordinates, e.From)
	}
	to, ok := g.Vertex(e.To)
	if !ok {
		return errors.New(errors.ErrCodeInternal, "answer %d edge %s: unknown vertex %q", p.AnswerIndex, p.Coordinates, e.To)
	}
	if err := putVertex(v, p, from); err != nil {
		return wrapVisitor(err, p, from.Key())
	}
	if err := putVertex(v, p, to); err != nil {
		return wrapVisitor(err, p, to.Key())
	}
	if err := putEdge(v, p, e, from, to); err != nil {
		return wrapVisitor(err, p, string(e.Kind))
	}
	return nil
}

func wrapVisitor(err error, p Provenance, what string) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(code, err, "answer %d edge %s: visit %s", p.AnswerIndex, p.Coordinates, what)
}

func putVertex(v Visitor, p Provenance, x concept.Vertex) error {
	switch x := x.(type) {
	case concept.Entity:
		return v.PutEntity(p, x)
	case concept.Relation:
		return v.PutRelation(p, x)
	case concept.Attribute:
		return v.PutAttribute(p, x)
	case concept.EntityType:
		return v.PutEntityType(p, x)
	case concept.RelationType:
		return v.PutRelationType(p, x)
	case concept.AttributeType:
		return v.PutAttributeType(p, x)
	case concept.RoleType:
		return v.PutRoleType(p, x)
	case concept.Value:
		return v.PutValue(p, x)
	case concept.Unavailable:
		return v.PutUnavailable(p, x)
	default:
		return errors.New(errors.ErrCodeInternal, "no visitor method for vertex %T", x)
	}
}

func putEdge(v Visitor, p Provenance, e logical.Edge, from, to concept.Vertex) error {
	switch e.Kind {
	case query.EdgeIsa:
		return v.PutIsa(p, from, to)
	case query.EdgeHas:
		return v.PutHas(p, from, to)
	case query.EdgeLinks:
		if e.Param == nil {
			return errors.New(errors.ErrCodeInternal, "links edge without role")
		}
		return v.PutLinks(p, from, to, e.Param)
	case query.EdgeSub:
		return v.PutSub(p, from, to)
	case query.EdgeOwns:
		return v.PutOwns(p, from, to)
	case query.EdgeRelates:
		return v.PutRelates(p, from, to)
	case query.EdgePlays:
		return v.PutPlays(p, from, to)
	case query.EdgeIsaExact:
		return v.PutIsaExact(p, from, to)
	case query.EdgeSubExact:
		return v.PutSubExact(p, from, to)
	default:
		return errors.New(errors.ErrCodeInternal, "no visitor method for edge kind %q", e.Kind)
	}
}
