// Package logical materializes query answers into a deduplicated logical
// graph.
//
// # Overview
//
// [Build] walks each answer row against the query structure. For every
// active branch of the row (branch 0 plus the row's provenance) it
// instantiates each structure edge, resolving the edge's ends to concepts,
// and records the result as an [Edge] tagged with its structure
// coordinates. Vertices are keyed by [concept.Vertex.Key], so an entity
// that appears in many answers is a single vertex.
//
//	resp, _ := query.Decode(r)
//	g, err := logical.FromResponse(resp)
//
// # Placeholders
//
// A variable the row does not bind becomes a [concept.Unavailable] keyed by
// the variable and the answer index. Placeholders never merge across answers.
//
// # Errors
//
// Missing bindings are data, not errors. A malformed template is: unknown
// edge or vertex kinds, links edges without a role, and provenance branches
// outside the structure abort the whole build with a coded error from
// [github.com/matzehuels/typeviz/pkg/errors].
package logical
