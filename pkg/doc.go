// Package pkg provides the core libraries for typeviz, which draws the
// answers of TypeDB queries as graphs.
//
// # Overview
//
// A TypeDB read query returns concept rows: one map from variable to concept
// per answer. Together with the query structure, the edge pattern the query
// matched, each row describes a small graph. typeviz merges those graphs into
// one deduplicated logical graph and renders it. The pkg directory is
// organized into four areas:
//
//  1. Domain logic: [query], [concept], [logical], [convert]
//  2. Rendering: [render], [render/nodelink]
//  3. Orchestration: [pipeline], [typedb]
//  4. Infrastructure: [cache], [config], [errors], [observability], [session]
//
// # Architecture
//
// The typical data flow through typeviz:
//
//	TypeDB HTTP API or saved response
//	         ↓
//	    [query] package (decode rows and structure)
//	         ↓
//	    [logical] package (materialize answers into one graph)
//	         ↓
//	    [convert] package (replay drawable edges through a visitor)
//	         ↓
//	    [render] package (style vertices and edges)
//	         ↓
//	    DOT/SVG/PNG/JSON output
//
// # Quick Start
//
// Materialize a saved response and render it as DOT:
//
//	resp, _ := query.Decode(f)
//	g, _ := logical.FromResponse(resp)
//
//	b := render.NewBuilder(render.DefaultStyle())
//	draw := convert.EdgesToDraw(resp.Structure, convert.DefaultStructureParameters())
//	_ = convert.Replay(g, draw, b)
//
//	dot := nodelink.ToDOT(b.Graph(), nodelink.Options{})
//
// [pipeline.Runner] wraps these steps with caching and logging and is what
// the CLI and the HTTP server use.
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/logical/...   # Specific package
//	go test -run Example        # Examples only
//
// [query]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/query
// [concept]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/concept
// [logical]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/logical
// [convert]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/convert
// [render]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/pipeline#Runner
// [typedb]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/typedb
// [cache]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/observability
// [session]: https://pkg.go.dev/github.com/matzehuels/typeviz/pkg/session
package pkg
