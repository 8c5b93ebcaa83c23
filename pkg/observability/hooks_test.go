package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type countingPipeline struct {
	Nop
	materialized int
}

func (c *countingPipeline) OnMaterializeComplete(context.Context, int, int, time.Duration, error) {
	c.materialized++
}

type countingCache struct {
	Nop
	hits int
}

func (c *countingCache) OnHit(context.Context, string) { c.hits++ }

func TestDefaultsAreNop(t *testing.T) {
	Reset()
	ctx := context.Background()

	for name, h := range map[string]any{"Pipeline": Pipeline(), "Cache": Cache(), "Client": Client()} {
		if _, ok := h.(Nop); !ok {
			t.Errorf("%s() = %T, want Nop", name, h)
		}
	}

	Pipeline().OnMaterializeComplete(ctx, 3, 2, time.Second, nil)
	Cache().OnSet(ctx, "query", 1024)
	Client().OnError(ctx, "POST", "/v1/query", nil)
}

func TestRegister(t *testing.T) {
	Reset()
	defer Reset()
	ctx := context.Background()

	p := &countingPipeline{}
	Register(Hooks{Pipeline: p})

	c := &countingCache{}
	Register(Hooks{Cache: c})

	Pipeline().OnMaterializeComplete(ctx, 1, 1, time.Millisecond, nil)
	Cache().OnHit(ctx, "artifact")
	Cache().OnMiss(ctx, "artifact")

	if p.materialized != 1 {
		t.Errorf("materialized = %d, want 1", p.materialized)
	}
	if c.hits != 1 {
		t.Errorf("hits = %d, want 1", c.hits)
	}
	if Pipeline() != PipelineHooks(p) {
		t.Error("registering cache hooks should keep the pipeline hooks")
	}
	if _, ok := Client().(Nop); !ok {
		t.Errorf("Client() = %T, want Nop", Client())
	}

	Reset()
	if _, ok := Cache().(Nop); !ok {
		t.Errorf("after Reset Cache() = %T, want Nop", Cache())
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	NewLogHooks(logger).Install()

	ctx := context.Background()
	Pipeline().OnMaterializeComplete(ctx, 3, 2, time.Millisecond, nil)
	Cache().OnMiss(ctx, "query")
	Client().OnError(ctx, "POST", "/v1/query", errors.New("refused"))

	out := buf.String()
	for _, want := range []string{"materialized", "vertices=3", "cache miss", "typedb call failed", "refused"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
