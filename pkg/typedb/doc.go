// Package typedb is a small client for the TypeDB HTTP API.
//
// It covers what typeviz needs: signing in, managing databases and running
// a query whose response carries the query structure used to materialize a
// logical graph.
//
//	c, err := typedb.SignIn(ctx, "http://localhost:8000", "admin", "password",
//	    typedb.WithCache(fileCache, cache.QueryTTL))
//	resp, err := c.Query(ctx, "social", "match $p isa person, has name $n;", query.QueryRead)
//	g, err := logical.FromResponse(resp)
//
// Read queries are cached when a cache is configured; write and schema
// queries never are. Transport failures and 5xx responses are retried with
// exponential backoff. Status codes map onto [errors.Code] values so the
// CLI and server can report them uniformly.
package typedb
