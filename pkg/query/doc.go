// Package query decodes TypeDB query responses and the query structure that
// accompanies them.
//
// A concept-row [Response] carries a list of [Row]s and a [Structure]. The
// structure is a template derived from the query text: a list of branches,
// each an ordered list of [StructureEdge]s whose ends are variables, label
// literals, value literals or explicit unavailable markers. Branch 0 holds
// the constraints every answer satisfies; each further branch is one
// alternative of a disjunction, and a row's provenance names the
// alternatives it came from.
//
// Servers have reported provenance three ways over time. [Row] decoding
// accepts all of them and always exposes an explicit branch list.
package query
