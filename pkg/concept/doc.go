// Package concept defines the vertices of a logical query graph.
//
// # Overview
//
// A TypeDB answer binds query variables to concepts: schema types
// ([EntityType], [RelationType], [AttributeType], [RoleType]), instances
// ([Entity], [Relation], [Attribute]) and computed [Value]s. When an answer
// leaves a variable unbound, the graph materializer stands in an
// [Unavailable] placeholder. Together these nine variants form the closed
// [Vertex] set; the unexported marker method keeps other packages from
// adding variants, so a type switch over them can be exhaustive.
//
// # Identity
//
// [Vertex.Key] is the canonical vertex id and the sole basis for
// deduplication:
//
//   - type-level concepts: their label
//   - entities and relations: their iid
//   - attributes: "<type label>:<value>"
//   - values: "<value type>:<value>"
//   - placeholders: "unavailable[<variable>][<answer index>]"
//
// # JSON
//
// Concepts use the kind-tagged form TypeDB's HTTP API returns:
//
//	{"kind":"entity","iid":"0x1e00","type":{"kind":"entityType","label":"person"}}
//
// Use [Unmarshal] or [UnmarshalVertex] to decode. Numeric literals decode
// to json.Number so that ids reproduce the server's textual form.
package concept
