// Package observability lets a binary watch materialization, cache traffic
// and TypeDB calls without the libraries depending on a metrics or tracing
// backend.
//
// Libraries look up the current hooks at the point of the event:
//
//	observability.Pipeline().OnMaterializeStart(ctx, len(rows))
//
// A binary swaps in its own implementation once at startup:
//
//	observability.Register(observability.Hooks{Cache: myCacheMetrics})
//
// Until then every hook is a no-op.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the materialize, replay and render stages.
type PipelineHooks interface {
	OnMaterializeStart(ctx context.Context, rows int)
	OnMaterializeComplete(ctx context.Context, vertices, edges int, duration time.Duration, err error)

	// drawn is the number of structure edges that pass the draw filter.
	OnReplayStart(ctx context.Context, drawn int)
	OnReplayComplete(ctx context.Context, nodes, edges int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType names the wrapped
// cache, for example "query" or "artifact".
type CacheHooks interface {
	OnHit(ctx context.Context, keyType string)
	OnMiss(ctx context.Context, keyType string)
	OnSet(ctx context.Context, keyType string, size int)
}

// ClientHooks receives calls made by the TypeDB client. path excludes the
// server address.
type ClientHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, status int, duration time.Duration)
	OnError(ctx context.Context, method, path string, err error)
}

// Hooks groups one implementation per event family.
type Hooks struct {
	Pipeline PipelineHooks
	Cache    CacheHooks
	Client   ClientHooks
}

// Nop implements every hook interface and ignores all events. Embed it to
// implement only some methods.
type Nop struct{}

func (Nop) OnMaterializeStart(context.Context, int)                               {}
func (Nop) OnMaterializeComplete(context.Context, int, int, time.Duration, error) {}
func (Nop) OnReplayStart(context.Context, int)                                    {}
func (Nop) OnReplayComplete(context.Context, int, int, time.Duration, error)      {}
func (Nop) OnRenderStart(context.Context, []string)                               {}
func (Nop) OnRenderComplete(context.Context, []string, time.Duration, error)      {}
func (Nop) OnHit(context.Context, string)                                         {}
func (Nop) OnMiss(context.Context, string)                                        {}
func (Nop) OnSet(context.Context, string, int)                                    {}
func (Nop) OnRequest(context.Context, string, string)                             {}
func (Nop) OnResponse(context.Context, string, string, int, time.Duration)        {}
func (Nop) OnError(context.Context, string, string, error)                        {}

var current atomic.Pointer[Hooks]

func init() { Reset() }

// Register replaces the hooks set in h. Nil fields keep what is registered.
func Register(h Hooks) {
	for {
		old := current.Load()
		next := *old
		if h.Pipeline != nil {
			next.Pipeline = h.Pipeline
		}
		if h.Cache != nil {
			next.Cache = h.Cache
		}
		if h.Client != nil {
			next.Client = h.Client
		}
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Reset restores the no-op hooks.
func Reset() {
	current.Store(&Hooks{Pipeline: Nop{}, Cache: Nop{}, Client: Nop{}})
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().Pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().Cache }

// Client returns the registered TypeDB client hooks.
func Client() ClientHooks { return current.Load().Client }
