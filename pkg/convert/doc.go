// Package convert replays a logical graph through a [Visitor].
//
// A presentation layer implements [Visitor] once; [Replay] then delivers
// every drawn edge of every answer, preceded by its two end vertices, with
// the [Provenance] that produced it. Which edges are drawn is decided up
// front from the query structure by [EdgesToDraw], so the same query always
// draws the same constraints no matter what the answers contain.
//
//	draw := convert.EdgesToDraw(resp.Structure, convert.DefaultStructureParameters())
//	err := convert.Replay(graph, draw, builder)
package convert
